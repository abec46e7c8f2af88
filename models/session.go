package models

import (
	"time"
)

// Session is the explicit login state of one user. It is created at login,
// deleted at logout, and lives in the in-memory session database only.
type Session struct {
	ID        string    `gorm:"primarykey;type:varchar(36)" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Token     string    `gorm:"uniqueIndex;not null;type:varchar(128)" json:"-"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	IPAddress string    `gorm:"type:varchar(45)" json:"ip_address"`
	UserAgent string    `gorm:"type:text" json:"user_agent"`

	// Identity snapshot taken at login
	Username string `gorm:"not null;index" json:"username"`
	Name     string `json:"name"`
	Role     Role   `gorm:"type:varchar(20);not null" json:"role"`
	Office   string `json:"office"`
	Areas    string `json:"areas"` // comma-joined
}

// TableName specifies the table name for Session model
func (Session) TableName() string {
	return "sessions"
}

// IsExpired checks if the session has expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Identity returns the identity captured when the session was created.
func (s *Session) Identity() Identity {
	return Identity{
		Username: s.Username,
		Name:     s.Name,
		Role:     s.Role,
		Office:   s.Office,
		Areas:    ParseAreaList(s.Areas),
	}
}
