// Package signal provides the out-of-band channel peers use to exchange
// session descriptions before a direct connection exists: a small TCP relay
// server and a client implementing the transport.Signaler contract.
package signal

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"
)

type frameKind uint8

const (
	frameRegister frameKind = 1
	frameRelay    frameKind = 2
)

// frame is the unit exchanged with the relay. Register announces the
// sender's peer ID; Relay carries an opaque payload to the target peer.
type frame struct {
	Kind    frameKind
	PeerID  string
	Target  string
	Payload []byte
}

const maxFrameSize = 1 << 20

func writeFrame(w io.Writer, f *frame) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(f); err != nil {
		return fmt.Errorf("failed to encode frame: %w", err)
	}

	if err := binary.Write(w, binary.BigEndian, uint32(buf.Len())); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func readFrame(r io.Reader) (*frame, error) {
	var length uint32
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		return nil, err
	}
	if length > maxFrameSize {
		return nil, fmt.Errorf("frame too large: %d bytes", length)
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, err
	}

	f := &frame{}
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(f); err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}
	return f, nil
}
