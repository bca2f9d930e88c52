// Package store persists transfer history so completed and failed
// transfers can be reviewed after the fact.
package store

import (
	"context"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DirectionReceive = "receive"
	DirectionSend    = "send"

	StatusComplete = "complete"
	StatusFailed   = "failed"
)

type Transfer struct {
	ID             uint `gorm:"primaryKey"`
	PeerID         string
	FileName       string
	FileSize       int64
	Bytes          int64
	Direction      string
	Encrypted      bool
	Checksum       string
	ThroughputMBps float64
	AvgLatencyMs   float64
	P95LatencyMs   float64
	P99LatencyMs   float64
	StartedAt      int64
	FinishedAt     int64
	Status         string
}

type TransferStore struct {
	db *gorm.DB
}

// NewTransferStore opens (or creates) the history database at path.
// Use ":memory:" for an ephemeral store.
func NewTransferStore(path string) (*TransferStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&Transfer{}); err != nil {
		return nil, err
	}

	return &TransferStore{db: db}, nil
}

func (s *TransferStore) Record(ctx context.Context, t *Transfer) error {
	return s.db.WithContext(ctx).Create(t).Error
}

func (s *TransferStore) List(ctx context.Context) ([]Transfer, error) {
	var transfers []Transfer
	err := s.db.WithContext(ctx).Order("started_at desc").Find(&transfers).Error
	return transfers, err
}

func (s *TransferStore) ListByPeer(ctx context.Context, peerID string) ([]Transfer, error) {
	var transfers []Transfer
	err := s.db.WithContext(ctx).Where("peer_id = ?", peerID).Order("started_at desc").Find(&transfers).Error
	return transfers, err
}
