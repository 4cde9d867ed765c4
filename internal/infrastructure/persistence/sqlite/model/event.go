package model

import "time"

type ExportStatus string

const (
	ExportStatusPending   ExportStatus = "pending"
	ExportStatusCompleted ExportStatus = "completed"
	ExportStatusFailed    ExportStatus = "failed"
)

// EntityType identifies which record kind an event log row points at.
type EntityType string

const (
	EntityProject       EntityType = "project"
	EntityFile          EntityType = "file"
	EntityFileVersion   EntityType = "file_version"
	EntityAnnotationJob EntityType = "annotation_job"
)

type EventType string

const (
	EventUploaded            EventType = "uploaded"
	EventReuploaded          EventType = "reuploaded"
	EventAnnotationStarted   EventType = "annotation_started"
	EventAnnotationCompleted EventType = "annotation_completed"
	EventReviewed            EventType = "reviewed"
	EventDeleted             EventType = "deleted"
	EventStatusChanged       EventType = "status_changed"
)

type ExportLog struct {
	ExportID    uint64 `gorm:"column:export_id;primaryKey;autoIncrement"`
	ProjectID   uint64 `gorm:"column:project_id;not null;index"`
	RequestedBy uint64 `gorm:"column:requested_by;not null"`

	// Object-store key of the final package; an opaque string to this layer.
	StoragePath string  `gorm:"column:storage_path;type:text;not null"`
	Checksum    *string `gorm:"column:checksum;type:text"`

	Status ExportStatus `gorm:"column:status;type:text;not null;default:pending"`

	DateRequested time.Time  `gorm:"column:date_requested;not null"`
	DateCompleted *time.Time `gorm:"column:date_completed"`
	CreatedAt     time.Time  `gorm:"column:created_at;not null"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;not null"`

	Project       *Project       `gorm:"foreignKey:ProjectID;references:ProjectID"`
	RequestedUser *User          `gorm:"foreignKey:RequestedBy;references:UserID"`
	ExportedFiles []ExportedFile `gorm:"foreignKey:ExportID;references:ExportID;constraint:OnDelete:CASCADE"`
}

func (ExportLog) TableName() string {
	return "export_log"
}

type ExportedFile struct {
	ExportID      uint64    `gorm:"column:export_id;primaryKey"`
	FileVersionID uint64    `gorm:"column:file_version_id;primaryKey"`
	IncludedAt    time.Time `gorm:"column:included_at;not null"`

	Export      *ExportLog   `gorm:"foreignKey:ExportID;references:ExportID;constraint:OnDelete:CASCADE"`
	FileVersion *FileVersion `gorm:"foreignKey:FileVersionID;references:VersionID;constraint:OnDelete:CASCADE"`
}

func (ExportedFile) TableName() string {
	return "exported_file"
}

// EventLog is the append-only audit trail. Rows are never updated, so the
// table carries no updated_at and sits outside the audit policy.
type EventLog struct {
	EventID uint64 `gorm:"column:event_id;primaryKey;autoIncrement"`

	EntityType EntityType `gorm:"column:entity_type;type:text;not null;index:ix_eventlog_entity,priority:1"`
	EntityID   uint64     `gorm:"column:entity_id;not null;index:ix_eventlog_entity,priority:2"`

	EventType EventType `gorm:"column:event_type;type:text;not null"`

	UserID *uint64 `gorm:"column:user_id"`

	// Free-form context, e.g. {"old_status":"pending","new_status":"in_progress"}.
	EventMetadata *string `gorm:"column:event_metadata;type:text"`

	EventTime time.Time `gorm:"column:event_time;not null"`

	// Direct links for efficient joins alongside the generic entity pointer.
	FileID        *uint64 `gorm:"column:file_id"`
	FileVersionID *uint64 `gorm:"column:file_version_id"`
	ProjectID     *uint64 `gorm:"column:project_id"`
	JobID         *uint64 `gorm:"column:job_id"`
	ExportID      *uint64 `gorm:"column:export_id"`
	ReviewID      *uint64 `gorm:"column:review_id"`

	User *User `gorm:"foreignKey:UserID;references:UserID;constraint:OnDelete:SET NULL"`
}

func (EventLog) TableName() string {
	return "event_log"
}
