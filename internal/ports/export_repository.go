package ports

import (
	"context"
	"errors"
	"time"
)

var ErrExportNotFound = errors.New("export not found")

type ExportLog struct {
	ExportID      uint64
	ProjectID     uint64
	RequestedBy   uint64
	StoragePath   string
	Checksum      *string
	Status        string
	DateRequested time.Time
	DateCompleted *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type ExportCreate struct {
	ProjectID   uint64
	RequestedBy uint64
	StoragePath string
}

type ExportPatch struct {
	Status        *string
	StoragePath   *string
	Checksum      *string
	DateCompleted *time.Time
}

type AuditEvent struct {
	EventID       uint64
	EntityType    string
	EntityID      uint64
	EventType     string
	UserID        *uint64
	EventMetadata *string
	EventTime     time.Time
	FileID        *uint64
	FileVersionID *uint64
	ProjectID     *uint64
	JobID         *uint64
	ExportID      *uint64
	ReviewID      *uint64
}

type AuditEventCreate struct {
	EntityType    string
	EntityID      uint64
	EventType     string
	UserID        *uint64
	EventMetadata *string
	FileID        *uint64
	FileVersionID *uint64
	ProjectID     *uint64
	JobID         *uint64
	ExportID      *uint64
	ReviewID      *uint64
}

type ExportRepository interface {
	CreateExport(ctx context.Context, in ExportCreate) (ExportLog, error)
	GetExport(ctx context.Context, exportID uint64) (ExportLog, error)
	UpdateExport(ctx context.Context, exportID uint64, patch ExportPatch) (ExportLog, error)
	AttachFileVersion(ctx context.Context, exportID, fileVersionID uint64) error

	// AppendEvent writes to the append-only audit trail; rows never update.
	AppendEvent(ctx context.Context, in AuditEventCreate) (AuditEvent, error)
	ListEvents(ctx context.Context, entityType string, entityID uint64) ([]AuditEvent, error)
	ListRecentEvents(ctx context.Context, limit int) ([]AuditEvent, error)
}
