// Package chunker splits payloads into fixed-size chunks and reassembles
// them. All functions are pure; ordering is always by chunk index.
package chunker

import (
	"errors"
	"fmt"
)

var ErrIncompleteTransfer = errors.New("incomplete transfer")

// TotalChunks returns ceil(payloadSize/chunkSize). An empty payload still
// occupies exactly one zero-length chunk so that a transfer always carries
// at least one chunk message.
func TotalChunks(payloadSize, chunkSize int64) int {
	if chunkSize <= 0 {
		return 0
	}
	if payloadSize == 0 {
		return 1
	}
	return int((payloadSize + chunkSize - 1) / chunkSize)
}

// Split partitions payload into contiguous slices of chunkSize bytes; the
// final slice may be shorter. The returned slices alias payload.
func Split(payload []byte, chunkSize int) [][]byte {
	if chunkSize <= 0 {
		return nil
	}
	if len(payload) == 0 {
		return [][]byte{{}}
	}

	chunks := make([][]byte, 0, TotalChunks(int64(len(payload)), int64(chunkSize)))
	for offset := 0; offset < len(payload); offset += chunkSize {
		end := offset + chunkSize
		if end > len(payload) {
			end = len(payload)
		}
		chunks = append(chunks, payload[offset:end])
	}
	return chunks
}

// Assemble concatenates slots strictly by index. A nil slot means the chunk
// never arrived and assembly fails; a zero-length non-nil slot is a valid
// empty chunk.
func Assemble(slots [][]byte, totalChunks int) ([]byte, error) {
	if len(slots) != totalChunks {
		return nil, fmt.Errorf("%w: have %d slots, want %d", ErrIncompleteTransfer, len(slots), totalChunks)
	}

	size := 0
	for i, slot := range slots {
		if slot == nil {
			return nil, fmt.Errorf("%w: missing chunk %d", ErrIncompleteTransfer, i)
		}
		size += len(slot)
	}

	payload := make([]byte, 0, size)
	for _, slot := range slots {
		payload = append(payload, slot...)
	}
	return payload, nil
}
