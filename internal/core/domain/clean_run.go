package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Clean run statuses
const (
	RunStatusQueued    = "queued"
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// CleanRun records one dataset cleaning job
type CleanRun struct {
	ID              uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	SourceFile      string     `gorm:"type:text;not null" json:"source_file"`
	FileHash        string     `gorm:"type:varchar(64);index" json:"file_hash"`
	Status          string     `gorm:"type:varchar(20);not null;default:'queued';index" json:"status"`
	RefineryVersion string     `gorm:"type:varchar(50)" json:"refinery_version"`
	TextColumn      string     `gorm:"type:varchar(255);not null;default:'text'" json:"text_column"`
	OutputColumn    string     `gorm:"type:varchar(255);not null;default:'clean_text'" json:"output_column"`
	TotalRows       int        `gorm:"default:0" json:"total_rows"`
	SkippedRows     int        `gorm:"default:0" json:"skipped_rows"`
	OutputPath      string     `gorm:"type:text" json:"output_path,omitempty"`
	Error           string     `gorm:"type:text" json:"error,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

// TableName specifies the table name for GORM
func (CleanRun) TableName() string {
	return "clean_runs"
}

// BeforeCreate GORM hook - called before creating a record
func (r *CleanRun) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// IsFinished reports whether the run reached a terminal status
func (r *CleanRun) IsFinished() bool {
	return r.Status == RunStatusCompleted || r.Status == RunStatusFailed
}

// Duration is the time from creation to completion, zero while unfinished
func (r *CleanRun) Duration() time.Duration {
	if r.CompletedAt == nil {
		return 0
	}
	return r.CompletedAt.Sub(r.CreatedAt)
}

// ValidRunStatuses returns the statuses a run can be in
func ValidRunStatuses() []string {
	return []string{
		RunStatusQueued,
		RunStatusRunning,
		RunStatusCompleted,
		RunStatusFailed,
	}
}

// IsValidRunStatus checks if a status is valid
func IsValidRunStatus(status string) bool {
	for _, s := range ValidRunStatuses() {
		if s == status {
			return true
		}
	}
	return false
}
