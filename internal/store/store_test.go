package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *TransferStore {
	t.Helper()
	s, err := NewTransferStore(":memory:")
	require.NoError(t, err)
	return s
}

func TestRecordAndList(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	first := &Transfer{
		PeerID:         "bob",
		FileName:       "a.bin",
		FileSize:       1024,
		Bytes:          1024,
		Direction:      DirectionSend,
		Encrypted:      true,
		Checksum:       "abc123",
		ThroughputMBps: 4.2,
		StartedAt:      100,
		FinishedAt:     101,
		Status:         StatusComplete,
	}
	second := &Transfer{
		PeerID:     "carol",
		FileName:   "b.bin",
		Direction:  DirectionReceive,
		StartedAt:  200,
		FinishedAt: 201,
		Status:     StatusFailed,
	}

	require.NoError(t, s.Record(ctx, first))
	require.NoError(t, s.Record(ctx, second))

	transfers, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, transfers, 2)

	// Newest first.
	assert.Equal(t, "carol", transfers[0].PeerID)
	assert.Equal(t, "bob", transfers[1].PeerID)

	got := transfers[1]
	assert.Equal(t, "a.bin", got.FileName)
	assert.Equal(t, int64(1024), got.Bytes)
	assert.True(t, got.Encrypted)
	assert.Equal(t, "abc123", got.Checksum)
	assert.Equal(t, 4.2, got.ThroughputMBps)
}

func TestListByPeer(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for i, peer := range []string{"bob", "carol", "bob"} {
		err := s.Record(ctx, &Transfer{
			PeerID:    peer,
			FileName:  "f.bin",
			Direction: DirectionSend,
			StartedAt: int64(i),
			Status:    StatusComplete,
		})
		require.NoError(t, err)
	}

	transfers, err := s.ListByPeer(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, transfers, 2)
	for _, tr := range transfers {
		assert.Equal(t, "bob", tr.PeerID)
	}
}

func TestEmptyStore(t *testing.T) {
	s := setupTestStore(t)

	transfers, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, transfers)
}

func TestStorePersistsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.sqlite3")
	ctx := context.Background()

	s, err := NewTransferStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Record(ctx, &Transfer{PeerID: "bob", FileName: "x", Direction: DirectionSend, Status: StatusComplete}))

	// A second open against the same file sees the earlier record.
	reopened, err := NewTransferStore(path)
	require.NoError(t, err)
	transfers, err := reopened.List(ctx)
	require.NoError(t, err)
	assert.Len(t, transfers, 1)
}
