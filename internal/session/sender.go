package session

import (
	"context"
	"fmt"
	"time"

	"github.com/ArteenM/File-Sharing/internal/chunker"
	"github.com/ArteenM/File-Sharing/internal/metrics"
	"github.com/ArteenM/File-Sharing/internal/protocol"
)

// SendFile streams payload to the peer as file-start, paced chunks, and
// file-end, and blocks until the last message is sent. Inbound messages
// keep flowing on the session's reader goroutine while it runs. At most
// one send may be active per session.
func (s *Session) SendFile(ctx context.Context, fileName string, payload []byte) (metrics.PerformanceMetrics, error) {
	s.mu.Lock()
	if s.connState != StateConnected {
		s.mu.Unlock()
		return metrics.PerformanceMetrics{}, ErrNotConnected
	}
	if s.encrypt && s.keyState != KeyReady {
		s.mu.Unlock()
		return metrics.PerformanceMetrics{}, ErrKeyExchangeIncomplete
	}
	if s.sending {
		s.mu.Unlock()
		return metrics.PerformanceMetrics{}, ErrBusy
	}
	s.sending = true
	key := s.key
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.sending = false
		s.mu.Unlock()
	}()

	chunks := chunker.Split(payload, s.chunkSize)
	total := uint32(len(chunks))
	fileSize := uint64(len(payload))
	collector := metrics.NewCollector()

	s.logger.Infof("Sending %s (%d bytes, %d chunks) to %s", fileName, fileSize, total, s.remoteID)

	err := s.send(&protocol.FileStart{
		Encrypted:   s.encrypt,
		FileName:    fileName,
		FileSize:    fileSize,
		TotalChunks: total,
	})
	if err != nil {
		return metrics.PerformanceMetrics{}, err
	}

	for i, data := range chunks {
		if err := ctx.Err(); err != nil {
			return metrics.PerformanceMetrics{}, err
		}

		out := data
		var nonce []byte
		if s.encrypt {
			out, nonce, err = key.Encrypt(data)
			if err != nil {
				return metrics.PerformanceMetrics{}, fmt.Errorf("failed to encrypt chunk %d: %w", i, err)
			}
		}

		msg := &protocol.Chunk{
			ChunkIndex:  uint32(i),
			Data:        out,
			FileName:    fileName,
			FileSize:    fileSize,
			Nonce:       nonce,
			Timestamp:   time.Now().UnixMilli(),
			TotalChunks: total,
		}
		if err := s.send(msg); err != nil {
			return metrics.PerformanceMetrics{}, err
		}
		collector.AddBytes(int64(len(data)))

		if s.handlers.OnSendProgress != nil {
			s.handlers.OnSendProgress(s.remoteID, fileName, uint32(i+1), total)
		}

		if i+1 < len(chunks) {
			// Fixed pacing between sends so the channel's buffer isn't
			// overrun. Not adaptive.
			select {
			case <-time.After(s.paceDelay):
			case <-ctx.Done():
				return metrics.PerformanceMetrics{}, ctx.Err()
			}
		}
	}

	if err := s.send(&protocol.FileEnd{FileName: fileName}); err != nil {
		return metrics.PerformanceMetrics{}, err
	}

	m := collector.Finalize()
	s.logger.Infof("Sent %s to %s: %.2f MB/s", fileName, s.remoteID, m.ThroughputMBps)
	return m, nil
}
