// Package transport defines the peer connection contract the session layer
// builds on: reliable, ordered, binary-capable delivery once a connection
// reports open.
package transport

import (
	"context"
	"io"
)

type Transport interface {
	// Connect dials the remote peer and returns once the data channel is
	// usable.
	Connect(ctx context.Context, peerID string) (Conn, error)
	// Accept yields connections initiated by remote peers.
	Accept() <-chan Conn
	Close() error
}

// Conn is one established channel to a peer. Recv's channel is closed when
// the connection ends, however that happens.
type Conn interface {
	PeerID() string
	Send(data []byte) error
	Recv() <-chan []byte
	Close() error
}

// Signaler carries opaque session-establishment payloads between peers that
// are not yet connected. NAT traversal itself is the transport's concern.
type Signaler interface {
	SendSignal(ctx context.Context, peerID string, signal []byte) error
	RecvSignal() <-chan Signal
	io.Closer
}

type Signal struct {
	PeerID  string
	Payload []byte
}
