// models/profile.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// Profile holds the play history of one player, or of the machine itself
// (IsMachine). Only persistent profiles receive unlock grants.
type Profile struct {
	ID         string `json:"id" gorm:"primaryKey"`
	Name       string `json:"name"`
	IsMachine  bool   `json:"is_machine" gorm:"default:false"`
	Persistent bool   `json:"persistent"`

	// Indexed by unlock.Grade / unlock.PlayMode
	StagesPassedByGrade []int `json:"stages_passed_by_grade" gorm:"type:jsonb;serializer:json"`
	SongsPlayedByMode   []int `json:"songs_played_by_mode" gorm:"type:jsonb;serializer:json"`

	TotalDancePoints   int `json:"total_dance_points" gorm:"default:0"`
	TotalSongsPassed   int `json:"total_songs_passed" gorm:"default:0"`
	ExtraStagesCleared int `json:"extra_stages_cleared" gorm:"default:0"`
	ExtraStagesFailed  int `json:"extra_stages_failed" gorm:"default:0"`
	Toasties           int `json:"toasties" gorm:"default:0"`

	LastPlayedAt *time.Time `json:"last_played_at,omitempty"`

	Timestamps
}

// UnlockGrant records that a profile permanently unlocked an entry id.
type UnlockGrant struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	ProfileID string    `json:"profile_id" gorm:"not null;uniqueIndex:idx_grant_profile_entry"`
	EntryID   int       `json:"entry_id" gorm:"not null;uniqueIndex:idx_grant_profile_entry"`
	GrantedAt time.Time `json:"granted_at" gorm:"autoCreateTime"`
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// AllModels lists every table for AutoMigrate.
func AllModels() []interface{} {
	return []interface{}{
		&Song{},
		&Course{},
		&Profile{},
		&UnlockGrant{},
	}
}
