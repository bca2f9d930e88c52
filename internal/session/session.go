// Package session implements the transfer protocol on top of an open
// connection: the one-shot key exchange, the sender and receiver state
// machines, and the connection manager owning session lifecycles.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ArteenM/File-Sharing/internal/crypto"
	"github.com/ArteenM/File-Sharing/internal/metrics"
	"github.com/ArteenM/File-Sharing/internal/protocol"
	"github.com/ArteenM/File-Sharing/internal/transport"
)

type ConnState int

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
)

func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}

type KeyState int

const (
	KeyNone KeyState = iota
	KeySent
	KeyReceived
	KeyReady
)

func (s KeyState) String() string {
	switch s {
	case KeyNone:
		return "no-key"
	case KeySent:
		return "key-sent"
	case KeyReceived:
		return "key-received"
	case KeyReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Handlers are the callbacks a session surfaces events through. All are
// optional and are invoked outside the session lock.
type Handlers struct {
	OnProgress        func(peerID, fileName string, filled, total uint32)
	OnSendProgress    func(peerID, fileName string, sent, total uint32)
	OnReceiveComplete func(peerID, fileName string, payload []byte, m metrics.PerformanceMetrics)
	OnError           func(peerID string, err error)
	OnClose           func(peerID string)
}

// Session is one peer-to-peer connection. All mutable state is guarded by
// mu; message handling runs on the session's single reader goroutine and
// SendFile runs on the caller's goroutine.
type Session struct {
	localID   string
	remoteID  string
	conn      transport.Conn
	codec     *protocol.Codec
	logger    *logrus.Logger
	encrypt   bool
	chunkSize int
	paceDelay time.Duration
	handlers  Handlers

	mu        sync.Mutex
	connState ConnState
	keyState  KeyState
	key       *crypto.Key
	sending   bool
	inbound   *inboundTransfer
}

func newSession(conn transport.Conn, localID string, encrypt bool, chunkSize int, paceDelay time.Duration, logger *logrus.Logger, handlers Handlers) *Session {
	keyState := KeyNone
	if !encrypt {
		// No key exchange to run; the session is usable immediately.
		keyState = KeyReady
	}

	return &Session{
		localID:   localID,
		remoteID:  conn.PeerID(),
		conn:      conn,
		codec:     protocol.NewCodec(),
		logger:    logger,
		encrypt:   encrypt,
		chunkSize: chunkSize,
		paceDelay: paceDelay,
		handlers:  handlers,
		connState: StateConnected,
		keyState:  keyState,
	}
}

// start launches the reader goroutine and, on the initiating side of an
// encrypted session, runs the key exchange.
func (s *Session) start(initiator bool) {
	go s.readLoop()

	if s.encrypt && initiator {
		if err := s.sendKey(); err != nil {
			s.logger.Errorf("Key exchange with %s failed: %v", s.remoteID, err)
			s.reportError(err)
		}
	}
}

func (s *Session) RemoteID() string {
	return s.remoteID
}

func (s *Session) State() ConnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connState
}

func (s *Session) KeyState() KeyState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keyState
}

func (s *Session) Close() error {
	return s.conn.Close()
}

// sendKey generates the session key and transmits it. Ready is claimed as
// soon as the key is on the wire: the protocol has no acknowledgment, so
// the sender cannot know whether the peer imported it successfully.
func (s *Session) sendKey() error {
	key, err := crypto.GenerateKey()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.key = key
	s.keyState = KeySent
	s.mu.Unlock()

	if err := s.send(&protocol.KeyExchange{KeyData: key.Export()}); err != nil {
		return fmt.Errorf("failed to send key: %w", err)
	}

	s.mu.Lock()
	s.keyState = KeyReady
	s.mu.Unlock()

	s.logger.Debugf("Key exchange with %s ready (sent)", s.remoteID)
	return nil
}

func (s *Session) handleKeyExchange(msg *protocol.KeyExchange) {
	key, err := crypto.ImportKey(msg.KeyData)
	if err != nil {
		s.logger.Errorf("Failed to import key from %s: %v", s.remoteID, err)
		s.reportError(err)
		return
	}

	// KeyReceived is instantaneous: importing is the only step between
	// receipt and Ready.
	s.mu.Lock()
	s.key = key
	s.keyState = KeyReady
	s.mu.Unlock()

	s.logger.Debugf("Key exchange with %s ready (received)", s.remoteID)
}

func (s *Session) send(msg protocol.Message) error {
	data, err := s.codec.EncodeToBytes(msg)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", msg.Type(), err)
	}
	if err := s.conn.Send(data); err != nil {
		return fmt.Errorf("failed to send %s: %w", msg.Type(), err)
	}
	return nil
}

func (s *Session) readLoop() {
	for data := range s.conn.Recv() {
		msg, err := s.codec.DecodeFromBytes(data)
		if err != nil {
			s.logger.Warnf("Failed to decode message from %s: %v", s.remoteID, err)
			continue
		}
		s.handleMessage(msg)
	}

	s.mu.Lock()
	s.connState = StateDisconnected
	s.inbound = nil
	s.mu.Unlock()

	s.logger.Infof("Session with %s closed", s.remoteID)
	if s.handlers.OnClose != nil {
		s.handlers.OnClose(s.remoteID)
	}
}

func (s *Session) handleMessage(msg protocol.Message) {
	switch m := msg.(type) {
	case *protocol.KeyExchange:
		s.handleKeyExchange(m)
	case *protocol.FileStart:
		s.handleFileStart(m)
	case *protocol.Chunk:
		s.handleChunk(m)
	case *protocol.FileEnd:
		s.handleFileEnd(m)
	default:
		s.logger.Warnf("Unknown message type %s from %s", msg.Type(), s.remoteID)
	}
}

func (s *Session) reportError(err error) {
	if s.handlers.OnError != nil {
		s.handlers.OnError(s.remoteID, err)
	}
}
