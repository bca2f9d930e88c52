package session

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ArteenM/File-Sharing/internal/config"
	"github.com/ArteenM/File-Sharing/internal/metrics"
	"github.com/ArteenM/File-Sharing/internal/store"
	"github.com/ArteenM/File-Sharing/internal/transport"
)

// ManagerOptions configures a connection manager. History and Deliver are
// optional; Deliver defaults to writing received files under DownloadDir.
type ManagerOptions struct {
	LocalID     string
	Transport   transport.Transport
	Logger      *logrus.Logger
	Config      config.Config
	History     *store.TransferStore
	Handlers    Handlers
	Deliver     func(fileName string, payload []byte) error
	DownloadDir string
}

// Manager owns the peer-to-peer session lifecycle: it dials peers, accepts
// incoming connections, and tears sessions down when their connections
// close.
type Manager struct {
	opts   ManagerOptions
	logger *logrus.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(opts ManagerOptions) *Manager {
	if opts.DownloadDir == "" {
		opts.DownloadDir = "downloads"
	}

	m := &Manager{
		opts:     opts,
		logger:   opts.Logger,
		sessions: make(map[string]*Session),
	}
	if opts.Deliver == nil {
		m.opts.Deliver = m.deliverToDisk
	}
	return m
}

// Run accepts incoming connections until the context ends or the transport
// closes.
func (m *Manager) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case conn, ok := <-m.opts.Transport.Accept():
			if !ok {
				return
			}
			m.logger.Infof("Incoming connection from %s", conn.PeerID())
			m.addSession(conn, false)
		}
	}
}

// Connect establishes a session with the remote peer, running the key
// exchange if encryption is enabled. An existing session is reused.
func (m *Manager) Connect(ctx context.Context, remoteID string) (*Session, error) {
	m.mu.Lock()
	if s, exists := m.sessions[remoteID]; exists {
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	conn, err := m.opts.Transport.Connect(ctx, remoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", remoteID, err)
	}

	return m.addSession(conn, true), nil
}

func (m *Manager) addSession(conn transport.Conn, initiator bool) *Session {
	handlers := m.wrapHandlers(m.opts.Handlers)
	cfg := m.opts.Config

	s := newSession(conn, m.opts.LocalID, cfg.Encrypt, cfg.ChunkSize, cfg.PaceDelay, m.logger, handlers)

	m.mu.Lock()
	m.sessions[s.RemoteID()] = s
	m.mu.Unlock()

	s.start(initiator)
	return s
}

// SendFile sends through the session with peerID and records the outcome
// in history when a store is configured.
func (m *Manager) SendFile(ctx context.Context, peerID, fileName string, payload []byte) (metrics.PerformanceMetrics, error) {
	m.mu.Lock()
	s, exists := m.sessions[peerID]
	m.mu.Unlock()
	if !exists {
		return metrics.PerformanceMetrics{}, fmt.Errorf("%w: no session with %s", ErrNotConnected, peerID)
	}

	pm, err := s.SendFile(ctx, fileName, payload)
	if m.opts.History != nil {
		status := store.StatusComplete
		if err != nil {
			status = store.StatusFailed
		}
		m.recordHistory(peerID, fileName, store.DirectionSend, status, payload, pm)
	}
	return pm, err
}

func (m *Manager) Session(peerID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, exists := m.sessions[peerID]
	return s, exists
}

func (m *Manager) Close() error {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		_ = s.Close()
	}
	return m.opts.Transport.Close()
}

// wrapHandlers layers delivery, history recording, and session cleanup on
// top of the caller's handlers.
func (m *Manager) wrapHandlers(h Handlers) Handlers {
	wrapped := h

	wrapped.OnReceiveComplete = func(peerID, fileName string, payload []byte, pm metrics.PerformanceMetrics) {
		if err := m.opts.Deliver(fileName, payload); err != nil {
			m.logger.Errorf("Failed to deliver %s: %v", fileName, err)
			if h.OnError != nil {
				h.OnError(peerID, err)
			}
			return
		}
		if m.opts.History != nil {
			m.recordHistory(peerID, fileName, store.DirectionReceive, store.StatusComplete, payload, pm)
		}
		if h.OnReceiveComplete != nil {
			h.OnReceiveComplete(peerID, fileName, payload, pm)
		}
	}

	wrapped.OnError = func(peerID string, err error) {
		if m.opts.History != nil {
			m.recordHistory(peerID, "", store.DirectionReceive, store.StatusFailed, nil, metrics.PerformanceMetrics{})
		}
		if h.OnError != nil {
			h.OnError(peerID, err)
		}
	}

	wrapped.OnClose = func(peerID string) {
		m.mu.Lock()
		delete(m.sessions, peerID)
		m.mu.Unlock()
		if h.OnClose != nil {
			h.OnClose(peerID)
		}
	}

	return wrapped
}

func (m *Manager) recordHistory(peerID, fileName, direction, status string, payload []byte, pm metrics.PerformanceMetrics) {
	record := &store.Transfer{
		PeerID:         peerID,
		FileName:       fileName,
		FileSize:       int64(len(payload)),
		Bytes:          pm.BytesTransferred,
		Direction:      direction,
		Encrypted:      m.opts.Config.Encrypt,
		ThroughputMBps: pm.ThroughputMBps,
		AvgLatencyMs:   pm.AvgLatencyMs,
		P95LatencyMs:   pm.P95LatencyMs,
		P99LatencyMs:   pm.P99LatencyMs,
		StartedAt:      pm.StartTime.Unix(),
		FinishedAt:     pm.EndTime.Unix(),
		Status:         status,
	}
	if payload != nil {
		record.Checksum = checksum(payload)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.opts.History.Record(ctx, record); err != nil {
		m.logger.Warnf("Failed to record transfer history: %v", err)
	}
}

func (m *Manager) deliverToDisk(fileName string, payload []byte) error {
	if err := os.MkdirAll(m.opts.DownloadDir, 0755); err != nil {
		return fmt.Errorf("failed to create download dir: %w", err)
	}
	// Strip any path components a peer might smuggle into the name.
	path := filepath.Join(m.opts.DownloadDir, filepath.Base(fileName))
	if err := os.WriteFile(path, payload, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	m.logger.Infof("Saved %s (%d bytes)", path, len(payload))
	return nil
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%x", sum)
}
