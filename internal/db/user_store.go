package db

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Taiyaki256/discord-kintai/internal/models"
)

// CreateOrGetUser resolves an external identity to a ledger user, creating it
// on first sight. The stored username is refreshed when it changed upstream.
func (s *Store) CreateOrGetUser(externalID, username string) (models.User, error) {
	var user models.User
	err := s.db.Where("external_id = ?", externalID).First(&user).Error
	if err == nil {
		if user.Username != username && username != "" {
			if err := s.db.Model(&user).Update("username", username).Error; err != nil {
				return models.User{}, fmt.Errorf("failed to update username: %w", err)
			}
			user.Username = username
		}
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, fmt.Errorf("failed to look up user: %w", err)
	}

	user = models.User{ExternalID: externalID, Username: username}
	if err := s.db.Create(&user).Error; err != nil {
		return models.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}
