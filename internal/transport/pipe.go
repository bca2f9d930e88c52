package transport

import (
	"errors"
	"sync"
)

var ErrConnClosed = errors.New("connection closed")

const pipeBuffer = 1024

// Pipe returns two connected in-memory Conns, one per peer. Data written to
// one side arrives on the other in order. Used by tests and loopback
// transfers; either side's Close tears down both directions. The receive
// channels must be drained or sends will eventually block.
func Pipe(peerA, peerB string) (Conn, Conn) {
	pair := &pipePair{
		aToB: make(chan []byte, pipeBuffer),
		bToA: make(chan []byte, pipeBuffer),
	}

	a := &pipeConn{peerID: peerB, pair: pair, out: pair.aToB, in: pair.bToA}
	b := &pipeConn{peerID: peerA, pair: pair, out: pair.bToA, in: pair.aToB}
	return a, b
}

type pipePair struct {
	mu     sync.Mutex
	closed bool
	aToB   chan []byte
	bToA   chan []byte
}

type pipeConn struct {
	peerID string
	pair   *pipePair
	out    chan []byte
	in     chan []byte
}

func (c *pipeConn) PeerID() string {
	return c.peerID
}

func (c *pipeConn) Send(data []byte) error {
	buf := make([]byte, len(data))
	copy(buf, data)

	c.pair.mu.Lock()
	defer c.pair.mu.Unlock()

	if c.pair.closed {
		return ErrConnClosed
	}
	c.out <- buf
	return nil
}

func (c *pipeConn) Recv() <-chan []byte {
	return c.in
}

func (c *pipeConn) Close() error {
	c.pair.mu.Lock()
	defer c.pair.mu.Unlock()

	if c.pair.closed {
		return nil
	}
	c.pair.closed = true
	close(c.pair.aToB)
	close(c.pair.bToA)
	return nil
}
