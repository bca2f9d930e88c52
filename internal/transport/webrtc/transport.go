// Package webrtc implements the transport contract over pion WebRTC data
// channels. Session descriptions travel through the configured Signaler;
// STUN servers handle NAT traversal.
package webrtc

import (
	"context"
	"fmt"
	"sync"

	"github.com/pion/webrtc/v3"
	"github.com/sirupsen/logrus"

	"github.com/ArteenM/File-Sharing/internal/transport"
)

type webrtcTransport struct {
	config      webrtc.Configuration
	signaler    transport.Signaler
	logger      *logrus.Logger
	connections map[string]*connection
	incoming    chan transport.Conn
	done        chan struct{}
	mu          sync.RWMutex
}

// New creates a WebRTC transport and starts routing incoming signals.
func New(signaler transport.Signaler, stunServers []string, logger *logrus.Logger) transport.Transport {
	iceServers := make([]webrtc.ICEServer, 0, len(stunServers))
	for _, server := range stunServers {
		iceServers = append(iceServers, webrtc.ICEServer{URLs: []string{server}})
	}

	t := &webrtcTransport{
		config: webrtc.Configuration{
			ICEServers:         iceServers,
			ICETransportPolicy: webrtc.ICETransportPolicyAll,
		},
		signaler:    signaler,
		logger:      logger,
		connections: make(map[string]*connection),
		incoming:    make(chan transport.Conn, 16),
		done:        make(chan struct{}),
	}

	go t.routeSignals()
	return t
}

func (t *webrtcTransport) routeSignals() {
	for {
		select {
		case <-t.done:
			return
		case signal, ok := <-t.signaler.RecvSignal():
			if !ok {
				return
			}
			if err := t.handleSignal(signal); err != nil {
				t.logger.Warnf("Failed to handle signal from %s: %v", signal.PeerID, err)
			}
		}
	}
}

func (t *webrtcTransport) Connect(ctx context.Context, peerID string) (transport.Conn, error) {
	pc, err := webrtc.NewPeerConnection(t.config)
	if err != nil {
		return nil, fmt.Errorf("failed to create peer connection: %w", err)
	}

	conn := newConnection(peerID, pc, t.signaler, true)

	opened := make(chan struct{})
	conn.onOpen = func() { close(opened) }

	t.mu.Lock()
	t.connections[peerID] = conn
	t.mu.Unlock()

	if err := conn.createDataChannel(); err != nil {
		return nil, err
	}

	offer, err := pc.CreateOffer(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create offer: %w", err)
	}

	gathered := webrtc.GatheringCompletePromise(pc)
	if err := pc.SetLocalDescription(offer); err != nil {
		return nil, fmt.Errorf("failed to set local description: %w", err)
	}

	select {
	case <-gathered:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	local := pc.LocalDescription()
	if err := t.signaler.SendSignal(ctx, peerID, []byte(local.SDP)); err != nil {
		return nil, fmt.Errorf("failed to send offer: %w", err)
	}

	select {
	case <-opened:
		return conn, nil
	case <-ctx.Done():
		_ = conn.Close()
		return nil, ctx.Err()
	}
}

func (t *webrtcTransport) Accept() <-chan transport.Conn {
	return t.incoming
}

func (t *webrtcTransport) handleSignal(signal transport.Signal) error {
	t.mu.RLock()
	conn, exists := t.connections[signal.PeerID]
	t.mu.RUnlock()

	if !exists {
		pc, err := webrtc.NewPeerConnection(t.config)
		if err != nil {
			return fmt.Errorf("failed to create peer connection: %w", err)
		}

		conn = newConnection(signal.PeerID, pc, t.signaler, false)
		conn.onOpen = func() {
			t.incoming <- conn
		}

		t.mu.Lock()
		t.connections[signal.PeerID] = conn
		t.mu.Unlock()
	}

	return conn.handleSignal(signal.Payload)
}

func (t *webrtcTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	close(t.done)
	for _, conn := range t.connections {
		_ = conn.Close()
	}
	t.connections = make(map[string]*connection)
	close(t.incoming)
	return nil
}
