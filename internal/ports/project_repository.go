package ports

import (
	"context"
	"errors"
	"time"
)

var (
	ErrProjectNotFound     = errors.New("project not found")
	ErrFileNotFound        = errors.New("file not found")
	ErrFileVersionNotFound = errors.New("file version not found")
)

type Project struct {
	ProjectID        uint64
	OrgID            uint64
	Name             string
	Description      *string
	RequirementsText *string
	Status           string
	IsActive         bool
	ClientPMID       uint64
	OurPMID          *uint64
	CompletedAt      *time.Time
	DeletedAt        *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type ProjectCreate struct {
	OrgID            uint64
	Name             string
	Description      *string
	RequirementsText *string
	ClientPMID       uint64
	OurPMID          *uint64
}

type ProjectPatch struct {
	Status           *string
	Name             *string
	Description      *string
	RequirementsText *string
	ClientPMID       *uint64
	OurPMID          *uint64
	IsActive         *bool
	CompletedAt      *time.Time
	DeletedAt        *time.Time
}

type ProjectFilter struct {
	OrgID      *uint64
	Status     string
	ActiveOnly bool
}

type File struct {
	FileID          uint64
	ProjectID       uint64
	Name            string
	Description     *string
	UploadedBy      uint64
	Status          string
	FileType        string
	SizeBytes       *int64
	MimeType        *string
	ActiveVersionID *uint64
	IsActive        bool
	DeletedAt       *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type FileCreate struct {
	ProjectID   uint64
	Name        string
	Description *string
	UploadedBy  uint64
	FileType    string
	SizeBytes   *int64
	MimeType    *string
}

type FilePatch struct {
	Status          *string
	Name            *string
	Description     *string
	ActiveVersionID *uint64
	SizeBytes       *int64
	MimeType        *string
	IsActive        *bool
	DeletedAt       *time.Time
}

type FileVersion struct {
	VersionID           uint64
	FileID              uint64
	VersionNumber       int
	StoragePath         string
	Checksum            *string
	SizeBytes           *int64
	MimeType            *string
	UploadedBy          *uint64
	UploadedAt          time.Time
	SourceFileVersionID *uint64
	GenerationMethod    string
	LLMModel            *string
	LLMParams           *string
	IsActive            bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

type FileVersionCreate struct {
	FileID              uint64
	StoragePath         string
	Checksum            *string
	SizeBytes           *int64
	MimeType            *string
	UploadedBy          *uint64
	SourceFileVersionID *uint64
	GenerationMethod    string
	LLMModel            *string
	LLMParams           *string
}

type FileVersionPatch struct {
	IsActive         *bool
	GenerationMethod *string
	LLMModel         *string
	LLMParams        *string
	Checksum         *string
	SizeBytes        *int64
}

type ProjectRepository interface {
	CreateProject(ctx context.Context, in ProjectCreate) (Project, error)
	GetProject(ctx context.Context, projectID uint64) (Project, error)
	ListProjects(ctx context.Context, filter ProjectFilter) ([]Project, error)
	UpdateProject(ctx context.Context, projectID uint64, patch ProjectPatch) (Project, error)

	CreateFile(ctx context.Context, in FileCreate) (File, error)
	GetFile(ctx context.Context, fileID uint64) (File, error)
	UpdateFile(ctx context.Context, fileID uint64, patch FilePatch) (File, error)
	// SetActiveVersion points the file at one of its own versions.
	SetActiveVersion(ctx context.Context, fileID, versionID uint64) (File, error)

	// AddFileVersion assigns the next version_number for the file.
	AddFileVersion(ctx context.Context, in FileVersionCreate) (FileVersion, error)
	GetFileVersion(ctx context.Context, versionID uint64) (FileVersion, error)
	UpdateFileVersion(ctx context.Context, versionID uint64, patch FileVersionPatch) (FileVersion, error)
}
