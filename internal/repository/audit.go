package repository

import (
	"context"

	"jobsite-timeclock/internal/models"
)

// NextAuditSeq returns the next sequence number of an entry's trail. It is
// meant to run inside the transaction that appends the record; the unique
// (entry, seq) index rejects a concurrent duplicate.
func (s *Store) NextAuditSeq(ctx context.Context, entryID string) (int, error) {
	var maxSeq int64
	err := s.conn(ctx).Model(&models.TimeEntryAudit{}).
		Where("time_entry_id = ?", entryID).
		Select("COALESCE(MAX(seq), 0)").
		Row().Scan(&maxSeq)
	if err != nil {
		return 0, s.storageErr("next audit seq", err)
	}
	return int(maxSeq) + 1, nil
}

// AppendAudit inserts a record. There is no update or delete counterpart.
func (s *Store) AppendAudit(ctx context.Context, rec *models.TimeEntryAudit) error {
	if err := s.conn(ctx).Create(rec).Error; err != nil {
		return s.storageErr("append audit", err)
	}
	return nil
}

func (s *Store) ListAudit(ctx context.Context, entryID string) ([]models.TimeEntryAudit, error) {
	var recs []models.TimeEntryAudit
	if err := s.conn(ctx).Where("time_entry_id = ?", entryID).Order("seq ASC").Find(&recs).Error; err != nil {
		return nil, s.storageErr("list audit", err)
	}
	return recs, nil
}
