package signal

import (
	"context"
	"net"
	"sync"

	"github.com/sirupsen/logrus"
)

type Config struct {
	Addr   string
	Logger *logrus.Logger
}

// Server relays signaling payloads between registered peers. It never
// inspects payloads; a peer that is not registered simply doesn't receive.
type Server struct {
	listener net.Listener
	logger   *logrus.Logger

	mu    sync.Mutex
	peers map[string]*peerLink
}

// peerLink serializes frame writes to one registered peer; relays from
// different connections would otherwise interleave mid-frame.
type peerLink struct {
	conn net.Conn
	mu   sync.Mutex
}

func NewServer(cfg Config) (*Server, error) {
	listener, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logrus.New()
	}

	return &Server{
		listener: listener,
		logger:   logger,
		peers:    make(map[string]*peerLink),
	}, nil
}

func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

func (s *Server) Shutdown() error {
	s.logger.Info("Shutting down signaling server")
	return s.listener.Close()
}

func (s *Server) Start(ctx context.Context) error {
	s.logger.Infof("Signaling server started on %s", s.Addr())

	go func() {
		<-ctx.Done()
		_ = s.listener.Close()
	}()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	remoteAddr := conn.RemoteAddr().String()
	s.logger.Debugf("Connection from %s", remoteAddr)

	peerID := ""
	defer func() {
		if peerID != "" {
			s.mu.Lock()
			if link, ok := s.peers[peerID]; ok && link.conn == conn {
				delete(s.peers, peerID)
			}
			s.mu.Unlock()
			s.logger.Infof("Peer %s disconnected", peerID)
		}
		_ = conn.Close()
	}()

	for {
		f, err := readFrame(conn)
		if err != nil {
			s.logger.Debugf("Connection %s ended: %v", remoteAddr, err)
			return
		}

		switch f.Kind {
		case frameRegister:
			peerID = f.PeerID
			s.mu.Lock()
			s.peers[peerID] = &peerLink{conn: conn}
			s.mu.Unlock()
			s.logger.Infof("Peer %s registered from %s", peerID, remoteAddr)

		case frameRelay:
			s.relay(peerID, f)

		default:
			s.logger.Warnf("Unknown frame kind %d from %s", f.Kind, remoteAddr)
		}
	}
}

func (s *Server) relay(from string, f *frame) {
	s.mu.Lock()
	link, exists := s.peers[f.Target]
	s.mu.Unlock()

	if !exists {
		s.logger.Warnf("Relay target %s not registered", f.Target)
		return
	}

	out := &frame{Kind: frameRelay, PeerID: from, Payload: f.Payload}
	link.mu.Lock()
	err := writeFrame(link.conn, out)
	link.mu.Unlock()
	if err != nil {
		s.logger.Warnf("Failed to relay to %s: %v", f.Target, err)
	}
}
