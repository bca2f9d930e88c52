package signal

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ArteenM/File-Sharing/internal/transport"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return log
}

func startTestServer(t *testing.T) *Server {
	t.Helper()

	srv, err := NewServer(Config{Addr: "127.0.0.1:0", Logger: testLogger()})
	if err != nil {
		t.Fatalf("failed to start server: %v", err)
	}
	go func() { _ = srv.Start(context.Background()) }()
	t.Cleanup(func() { _ = srv.Shutdown() })
	return srv
}

func dialTestClient(t *testing.T, addr, localID string) *Client {
	t.Helper()

	c, err := Dial(addr, localID, testLogger())
	if err != nil {
		t.Fatalf("failed to dial relay as %s: %v", localID, err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func recvSignal(t *testing.T, c *Client) transport.Signal {
	t.Helper()
	select {
	case sig, ok := <-c.RecvSignal():
		if !ok {
			t.Fatal("signal channel closed")
		}
		return sig
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for signal")
		return transport.Signal{}
	}
}

func TestRelayBetweenTwoPeers(t *testing.T) {
	srv := startTestServer(t)
	alice := dialTestClient(t, srv.Addr(), "alice")
	bob := dialTestClient(t, srv.Addr(), "bob")

	offer := []byte(`{"type":"offer","sdp":"v=0"}`)
	if err := alice.SendSignal(context.Background(), "bob", offer); err != nil {
		t.Fatalf("SendSignal failed: %v", err)
	}

	got := recvSignal(t, bob)
	if got.PeerID != "alice" {
		t.Errorf("sender: expected alice, got %s", got.PeerID)
	}
	if !bytes.Equal(got.Payload, offer) {
		t.Errorf("payload mismatch: %q", got.Payload)
	}

	answer := []byte(`{"type":"answer","sdp":"v=0"}`)
	if err := bob.SendSignal(context.Background(), "alice", answer); err != nil {
		t.Fatalf("SendSignal failed: %v", err)
	}

	got = recvSignal(t, alice)
	if got.PeerID != "bob" {
		t.Errorf("sender: expected bob, got %s", got.PeerID)
	}
	if !bytes.Equal(got.Payload, answer) {
		t.Errorf("payload mismatch: %q", got.Payload)
	}
}

func TestRelayToUnknownPeerIsDropped(t *testing.T) {
	srv := startTestServer(t)
	alice := dialTestClient(t, srv.Addr(), "alice")
	bob := dialTestClient(t, srv.Addr(), "bob")

	if err := alice.SendSignal(context.Background(), "nobody", []byte("lost")); err != nil {
		t.Fatalf("SendSignal failed: %v", err)
	}

	// The relay must stay healthy for registered peers.
	if err := alice.SendSignal(context.Background(), "bob", []byte("still here")); err != nil {
		t.Fatalf("SendSignal failed: %v", err)
	}
	got := recvSignal(t, bob)
	if string(got.Payload) != "still here" {
		t.Errorf("payload mismatch: %q", got.Payload)
	}
}

func TestRelayLargePayload(t *testing.T) {
	srv := startTestServer(t)
	alice := dialTestClient(t, srv.Addr(), "alice")
	bob := dialTestClient(t, srv.Addr(), "bob")

	payload := bytes.Repeat([]byte("s"), 64*1024)
	if err := alice.SendSignal(context.Background(), "bob", payload); err != nil {
		t.Fatalf("SendSignal failed: %v", err)
	}
	got := recvSignal(t, bob)
	if !bytes.Equal(got.Payload, payload) {
		t.Errorf("expected %d bytes, got %d", len(payload), len(got.Payload))
	}
}

func TestSendSignalCancelledContext(t *testing.T) {
	srv := startTestServer(t)
	alice := dialTestClient(t, srv.Addr(), "alice")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := alice.SendSignal(ctx, "bob", []byte("x")); err == nil {
		t.Error("expected error from cancelled context")
	}
}

func TestClientRecvClosesOnDisconnect(t *testing.T) {
	srv := startTestServer(t)
	alice := dialTestClient(t, srv.Addr(), "alice")

	_ = alice.Close()
	select {
	case _, ok := <-alice.RecvSignal():
		if ok {
			t.Error("expected closed signal channel")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("signal channel never closed")
	}
}

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	in := &frame{Kind: frameRelay, PeerID: "alice", Target: "bob", Payload: []byte("sdp")}
	if err := writeFrame(&buf, in); err != nil {
		t.Fatalf("writeFrame failed: %v", err)
	}

	out, err := readFrame(&buf)
	if err != nil {
		t.Fatalf("readFrame failed: %v", err)
	}
	if out.Kind != in.Kind || out.PeerID != in.PeerID || out.Target != in.Target {
		t.Errorf("frame fields mismatch: %+v", out)
	}
	if !bytes.Equal(out.Payload, in.Payload) {
		t.Errorf("payload mismatch: %q", out.Payload)
	}
}
