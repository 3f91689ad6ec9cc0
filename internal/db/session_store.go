package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/Taiyaki256/discord-kintai/internal/models"
	"github.com/Taiyaki256/discord-kintai/internal/timeutil"
)

// ReplaceSessions swaps the stored session set for one user and date. The
// replace is atomic: delete and insert share a transaction even when called
// outside one.
func (s *Store) ReplaceSessions(userID uint, date timeutil.Date, sessions []models.WorkSession) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("user_id = ? AND date = ?", userID, date).
			Delete(&models.WorkSession{}).Error; err != nil {
			return err
		}
		if len(sessions) == 0 {
			return nil
		}
		return tx.Create(&sessions).Error
	})
	if err != nil {
		return fmt.Errorf("failed to replace sessions for %s: %w", date, err)
	}
	return nil
}

// ListSessions returns sessions with from <= date <= to, by date then start.
func (s *Store) ListSessions(userID uint, from, to timeutil.Date) ([]models.WorkSession, error) {
	var sessions []models.WorkSession
	err := s.readWithRetry(func() error {
		sessions = nil
		return s.db.
			Where("user_id = ? AND date >= ? AND date <= ?", userID, from, to).
			Order("date ASC, start_time ASC").
			Find(&sessions).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}
