package session

import (
	"fmt"
	"time"

	"github.com/ArteenM/File-Sharing/internal/chunker"
	"github.com/ArteenM/File-Sharing/internal/metrics"
	"github.com/ArteenM/File-Sharing/internal/protocol"
)

// inboundTransfer is the receiver-side reconstruction buffer. Slots are
// addressed by chunk index, never by arrival order, so duplicate and
// out-of-order chunks cannot corrupt neighboring slots.
type inboundTransfer struct {
	fileName    string
	fileSize    uint64
	totalChunks uint32
	encrypted   bool
	slots       [][]byte
	filled      uint32
	collector   *metrics.Collector
}

func (s *Session) handleFileStart(msg *protocol.FileStart) {
	s.logger.Infof("Receiving %s (%d bytes, %d chunks) from %s", msg.FileName, msg.FileSize, msg.TotalChunks, s.remoteID)

	in := &inboundTransfer{
		fileName:    msg.FileName,
		fileSize:    msg.FileSize,
		totalChunks: msg.TotalChunks,
		encrypted:   msg.Encrypted,
		slots:       make([][]byte, msg.TotalChunks),
		collector:   metrics.NewCollector(),
	}

	s.mu.Lock()
	if s.inbound != nil {
		s.logger.Warnf("New file-start from %s while receiving %s, dropping previous state", s.remoteID, s.inbound.fileName)
	}
	s.inbound = in
	s.mu.Unlock()

	// A well-formed sender never declares zero chunks; guard against it
	// so the transfer can't sit incomplete forever.
	if msg.TotalChunks == 0 {
		s.mu.Lock()
		s.inbound = nil
		s.mu.Unlock()
		s.finishInbound(in)
	}
}

func (s *Session) handleChunk(msg *protocol.Chunk) {
	now := time.Now().UnixMilli()

	s.mu.Lock()
	in := s.inbound
	key := s.key
	s.mu.Unlock()

	if in == nil {
		s.logger.Warnf("Chunk %d from %s with no transfer in progress", msg.ChunkIndex, s.remoteID)
		return
	}
	if msg.ChunkIndex >= in.totalChunks {
		s.logger.Warnf("Chunk index %d out of range (total %d) from %s", msg.ChunkIndex, in.totalChunks, s.remoteID)
		return
	}

	data := msg.Data
	if in.encrypted {
		if key == nil {
			s.failInbound(fmt.Errorf("encrypted chunk %d but no session key: %w", msg.ChunkIndex, ErrKeyExchangeIncomplete))
			return
		}
		plain, err := key.Decrypt(msg.Data, msg.Nonce)
		if err != nil {
			// One bad chunk fails the whole transfer rather than leaving
			// it silently stuck short of totalChunks.
			s.failInbound(fmt.Errorf("chunk %d: %w", msg.ChunkIndex, err))
			return
		}
		data = plain
	}
	if data == nil {
		data = []byte{}
	}

	s.mu.Lock()
	if s.inbound != in {
		s.mu.Unlock()
		return
	}
	in.collector.Record(float64(now - msg.Timestamp))
	if in.slots[msg.ChunkIndex] == nil {
		in.filled++
		in.collector.AddBytes(int64(len(data)))
	}
	in.slots[msg.ChunkIndex] = data
	filled := in.filled
	complete := filled == in.totalChunks
	if complete {
		s.inbound = nil
	}
	s.mu.Unlock()

	if s.handlers.OnProgress != nil {
		s.handlers.OnProgress(s.remoteID, in.fileName, filled, in.totalChunks)
	}
	if complete {
		s.finishInbound(in)
	}
}

// handleFileEnd is informational only: completion is driven by the chunk
// count, not by this marker.
func (s *Session) handleFileEnd(msg *protocol.FileEnd) {
	s.mu.Lock()
	in := s.inbound
	s.mu.Unlock()

	if in != nil && in.fileName == msg.FileName {
		s.logger.Warnf("File-end for %s from %s before all chunks arrived (%d/%d), still receiving", msg.FileName, s.remoteID, in.filled, in.totalChunks)
		return
	}
	s.logger.Debugf("File-end for %s from %s", msg.FileName, s.remoteID)
}

func (s *Session) finishInbound(in *inboundTransfer) {
	m := in.collector.Finalize()

	payload, err := chunker.Assemble(in.slots, int(in.totalChunks))
	if err != nil {
		// Cannot happen under the count-driven completion trigger, but
		// assembly stays guarded anyway.
		s.logger.Errorf("Assembly of %s failed: %v", in.fileName, err)
		s.reportError(err)
		return
	}

	s.logger.Infof("Received %s from %s: %d bytes, %.2f MB/s, avg latency %.1f ms",
		in.fileName, s.remoteID, m.BytesTransferred, m.ThroughputMBps, m.AvgLatencyMs)

	if s.handlers.OnReceiveComplete != nil {
		s.handlers.OnReceiveComplete(s.remoteID, in.fileName, payload, m)
	}
}

func (s *Session) failInbound(err error) {
	s.mu.Lock()
	s.inbound = nil
	s.mu.Unlock()

	s.logger.Errorf("Transfer from %s failed: %v", s.remoteID, err)
	s.reportError(err)
}
