package signal

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ArteenM/File-Sharing/internal/transport"
)

// Client connects to a relay server and implements transport.Signaler.
type Client struct {
	conn    net.Conn
	logger  *logrus.Logger
	recv    chan transport.Signal
	writeMu sync.Mutex

	closeOnce sync.Once
}

// Dial connects to the relay at addr and registers localID so other peers
// can reach this client.
func Dial(addr, localID string, logger *logrus.Logger) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to signaling server: %w", err)
	}

	c := &Client{
		conn:   conn,
		logger: logger,
		recv:   make(chan transport.Signal, 16),
	}

	if err := writeFrame(conn, &frame{Kind: frameRegister, PeerID: localID}); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to register with signaling server: %w", err)
	}

	go c.readLoop()
	return c, nil
}

func (c *Client) readLoop() {
	defer c.closeOnce.Do(func() { close(c.recv) })

	for {
		f, err := readFrame(c.conn)
		if err != nil {
			c.logger.Debugf("Signaling connection ended: %v", err)
			return
		}
		if f.Kind != frameRelay {
			c.logger.Warnf("Unexpected frame kind %d from relay", f.Kind)
			continue
		}
		c.recv <- transport.Signal{PeerID: f.PeerID, Payload: f.Payload}
	}
}

func (c *Client) SendSignal(ctx context.Context, peerID string, signal []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return writeFrame(c.conn, &frame{Kind: frameRelay, Target: peerID, Payload: signal})
}

func (c *Client) RecvSignal() <-chan transport.Signal {
	return c.recv
}

func (c *Client) Close() error {
	return c.conn.Close()
}
