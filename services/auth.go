package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"law_office_desk/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	// SessionTokenLength is the length of the session token in bytes (64 chars hex)
	SessionTokenLength = 32
	// DefaultSessionDuration is used when no TTL is configured
	DefaultSessionDuration = 12 * time.Hour
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)

// GenerateSessionToken generates a cryptographically secure random token
func GenerateSessionToken() (string, error) {
	bytes := make([]byte, SessionTokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// CreateSession stores a new session holding a snapshot of id.
func CreateSession(db *gorm.DB, id models.Identity, ttl time.Duration, ipAddress, userAgent string) (*models.Session, error) {
	token, err := GenerateSessionToken()
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = DefaultSessionDuration
	}

	session := &models.Session{
		ID:        uuid.New().String(),
		Token:     token,
		ExpiresAt: time.Now().Add(ttl),
		IPAddress: ipAddress,
		UserAgent: userAgent,
		Username:  id.Username,
		Name:      id.Name,
		Role:      id.Role,
		Office:    id.Office,
		Areas:     id.Areas.String(),
	}

	if err := db.Create(session).Error; err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

// ValidateSession validates a session token and returns the session if valid
func ValidateSession(db *gorm.DB, token string) (*models.Session, error) {
	var session models.Session

	err := db.Where("token = ?", token).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to validate session: %w", err)
	}

	if session.IsExpired() {
		db.Delete(&session)
		return nil, ErrSessionExpired
	}

	return &session, nil
}

// DeleteSession deletes a session (logout)
func DeleteSession(db *gorm.DB, token string) error {
	result := db.Where("token = ?", token).Delete(&models.Session{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete session: %w", result.Error)
	}
	return nil
}

// CleanupExpiredSessions removes all expired sessions from the database
func CleanupExpiredSessions(db *gorm.DB) error {
	result := db.Where("expires_at < ?", time.Now()).Delete(&models.Session{})
	if result.Error != nil {
		return fmt.Errorf("failed to cleanup expired sessions: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		log.Info().Int64("count", result.RowsAffected).Msg("Cleaned up expired sessions")
	}
	return nil
}

// DeleteUserSessions ends every session of username. Used after a permission
// change so the next request picks up the new areas.
func DeleteUserSessions(db *gorm.DB, username string) error {
	result := db.Where("username = ?", username).Delete(&models.Session{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete user sessions: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		log.Info().Int64("count", result.RowsAffected).Str("username", username).Msg("Deleted user sessions")
	}
	return nil
}

// LogSecurityEvent logs security-related events
func LogSecurityEvent(eventType, username, details string) {
	log.Info().
		Str("event", "security").
		Str("type", eventType).
		Str("username", username).
		Msg(details)
}
