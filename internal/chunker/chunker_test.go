package chunker

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"
)

func TestSplitChunkCounts(t *testing.T) {
	c := 1024

	tests := []struct {
		name    string
		payload int
		want    int
	}{
		{"exact multiple", c * 10, 10},
		{"one byte over", c*10 + 1, 11},
		{"single byte", 1, 1},
		{"smaller than chunk", c - 1, 1},
		{"empty payload", 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := make([]byte, tt.payload)
			chunks := Split(payload, c)
			if len(chunks) != tt.want {
				t.Errorf("expected %d chunks, got %d", tt.want, len(chunks))
			}
			if got := TotalChunks(int64(tt.payload), int64(c)); got != tt.want {
				t.Errorf("TotalChunks: expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestSplitAssembleRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for _, size := range []int{0, 1, 100, 1023, 1024, 1025, 10240, 100000} {
		for _, chunkSize := range []int{1, 7, 256, 1024} {
			payload := make([]byte, size)
			rng.Read(payload)

			chunks := Split(payload, chunkSize)
			got, err := Assemble(chunks, len(chunks))
			if err != nil {
				t.Fatalf("size=%d chunkSize=%d: Assemble failed: %v", size, chunkSize, err)
			}
			if !bytes.Equal(got, payload) {
				t.Fatalf("size=%d chunkSize=%d: payload mismatch", size, chunkSize)
			}
		}
	}
}

func TestSplitLastChunkShorter(t *testing.T) {
	payload := []byte("abcdefghij")
	chunks := Split(payload, 4)

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if !bytes.Equal(chunks[0], []byte("abcd")) {
		t.Errorf("chunk 0 mismatch: %q", chunks[0])
	}
	if !bytes.Equal(chunks[2], []byte("ij")) {
		t.Errorf("chunk 2 mismatch: %q", chunks[2])
	}
}

func TestSplitZeroBytePayload(t *testing.T) {
	chunks := Split([]byte{}, 1024)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if len(chunks[0]) != 0 {
		t.Errorf("expected empty chunk, got %d bytes", len(chunks[0]))
	}
	if chunks[0] == nil {
		t.Error("expected non-nil empty chunk")
	}
}

func TestSplitInvalidChunkSize(t *testing.T) {
	if chunks := Split([]byte("data"), 0); chunks != nil {
		t.Errorf("expected nil for chunk size 0, got %d chunks", len(chunks))
	}
	if got := TotalChunks(100, 0); got != 0 {
		t.Errorf("expected 0 total chunks, got %d", got)
	}
}

func TestAssembleOutOfOrderIndices(t *testing.T) {
	payload := []byte("the quick brown fox jumps over the lazy dog")
	chunks := Split(payload, 9)
	if len(chunks) != 5 {
		t.Fatalf("expected 5 chunks, got %d", len(chunks))
	}

	// Fill slots in arrival order 2,0,4,1,3; assembly is by index.
	slots := make([][]byte, 5)
	for _, i := range []int{2, 0, 4, 1, 3} {
		slots[i] = chunks[i]
	}

	got, err := Assemble(slots, 5)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("payload mismatch: %q", got)
	}
}

func TestAssembleMissingSlot(t *testing.T) {
	slots := [][]byte{[]byte("ab"), nil, []byte("ef")}

	_, err := Assemble(slots, 3)
	if !errors.Is(err, ErrIncompleteTransfer) {
		t.Errorf("expected ErrIncompleteTransfer, got %v", err)
	}
}

func TestAssembleWrongSlotCount(t *testing.T) {
	slots := [][]byte{[]byte("ab")}

	_, err := Assemble(slots, 3)
	if !errors.Is(err, ErrIncompleteTransfer) {
		t.Errorf("expected ErrIncompleteTransfer, got %v", err)
	}
}

func TestAssembleEmptyChunkIsFilled(t *testing.T) {
	got, err := Assemble([][]byte{{}}, 1)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty payload, got %d bytes", len(got))
	}
}
