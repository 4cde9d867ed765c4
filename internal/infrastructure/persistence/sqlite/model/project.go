package model

import "time"

type ProjectStatus string

const (
	ProjectStatusDraft       ProjectStatus = "draft"
	ProjectStatusReady       ProjectStatus = "ready_for_annotation"
	ProjectStatusInProgress  ProjectStatus = "in_progress"
	ProjectStatusCompleted   ProjectStatus = "completed"
	ProjectStatusArchived    ProjectStatus = "archived"
)

type FileStatus string

const (
	FileStatusPending    FileStatus = "pending"
	FileStatusReady      FileStatus = "ready_for_annotation"
	FileStatusInProgress FileStatus = "in_progress"
	FileStatusCompleted  FileStatus = "completed"
	FileStatusArchived   FileStatus = "archived"
)

type FileType string

const (
	FileTypeDataset     FileType = "dataset"
	FileTypeRequirement FileType = "requirement"
	FileTypeReport      FileType = "annotation_results"
	FileTypeLLMOutput   FileType = "llm_output"
)

type GenerationMethod string

const (
	GenerationUpload GenerationMethod = "upload"
	GenerationOCR    GenerationMethod = "ocr"
	GenerationLLM    GenerationMethod = "llm"
)

type Project struct {
	ProjectID   uint64  `gorm:"column:project_id;primaryKey;autoIncrement"`
	OrgID       uint64  `gorm:"column:org_id;not null;index:ix_project_org_id;uniqueIndex:uq_org_project_name"`
	Name        string  `gorm:"column:name;type:text;not null;uniqueIndex:uq_org_project_name"`
	Description *string `gorm:"column:description;type:text"`

	// Plain-text annotation instructions; not part of the audit policy.
	RequirementsText *string `gorm:"column:requirements_text;type:text"`

	Status   ProjectStatus `gorm:"column:status;type:text;not null;default:draft;index:ix_project_status"`
	IsActive bool          `gorm:"column:is_active;not null;default:1;index:ix_project_is_active"`

	ClientPMID uint64  `gorm:"column:client_pm_id;not null;index:ix_project_client_pm_id"`
	OurPMID    *uint64 `gorm:"column:our_pm_id"`

	CompletedAt *time.Time `gorm:"column:completed_at"`
	DeletedAt   *time.Time `gorm:"column:deleted_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;not null"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;not null"`

	Organization *Organization   `gorm:"foreignKey:OrgID;references:OrgID"`
	ClientPM     *User           `gorm:"foreignKey:ClientPMID;references:UserID"`
	OurPM        *User           `gorm:"foreignKey:OurPMID;references:UserID"`
	Files        []File          `gorm:"foreignKey:ProjectID;references:ProjectID"`
	Jobs         []AnnotationJob `gorm:"foreignKey:ProjectID;references:ProjectID;constraint:OnDelete:CASCADE"`
	Exports      []ExportLog     `gorm:"foreignKey:ProjectID;references:ProjectID"`
}

func (Project) TableName() string {
	return "project"
}

type File struct {
	FileID      uint64  `gorm:"column:file_id;primaryKey;autoIncrement"`
	ProjectID   uint64  `gorm:"column:project_id;not null;index:ix_file_project_id;uniqueIndex:uq_project_file_name"`
	Name        string  `gorm:"column:name;type:text;not null;uniqueIndex:uq_project_file_name"`
	Description *string `gorm:"column:description;type:text"`
	UploadedBy  uint64  `gorm:"column:uploaded_by;not null"`

	Status   FileStatus `gorm:"column:status;type:text;not null;default:pending;index:ix_file_status"`
	FileType FileType   `gorm:"column:file_type;type:text;not null;default:dataset;index:ix_file_type"`

	// Storage metadata for upload validation; not part of the audit policy.
	SizeBytes *int64  `gorm:"column:size_bytes"`
	MimeType  *string `gorm:"column:mime_type;type:text"`

	ActiveVersionID *uint64 `gorm:"column:active_version_id"`

	IsActive  bool       `gorm:"column:is_active;not null;default:1"`
	DeletedAt *time.Time `gorm:"column:deleted_at"`
	CreatedAt time.Time  `gorm:"column:created_at;not null"`
	UpdatedAt time.Time  `gorm:"column:updated_at;not null"`

	Project       *Project        `gorm:"foreignKey:ProjectID;references:ProjectID"`
	Uploader      *User           `gorm:"foreignKey:UploadedBy;references:UserID"`
	Versions      []FileVersion   `gorm:"foreignKey:FileID;references:FileID;constraint:OnDelete:CASCADE"`
	ActiveVersion *FileVersion    `gorm:"foreignKey:ActiveVersionID;references:VersionID"`
	Jobs          []AnnotationJob `gorm:"foreignKey:FileID;references:FileID;constraint:OnDelete:CASCADE"`
}

func (File) TableName() string {
	return "file"
}

type FileVersion struct {
	VersionID     uint64 `gorm:"column:version_id;primaryKey;autoIncrement"`
	FileID        uint64 `gorm:"column:file_id;not null;index:ix_fileversion_file_id"`
	VersionNumber int    `gorm:"column:version_number;not null"`

	StoragePath string  `gorm:"column:storage_path;type:text;not null"`
	Checksum    *string `gorm:"column:checksum;type:text"`
	SizeBytes   *int64  `gorm:"column:size_bytes"`
	MimeType    *string `gorm:"column:mime_type;type:text"`

	UploadedBy *uint64   `gorm:"column:uploaded_by"`
	UploadedAt time.Time `gorm:"column:uploaded_at;not null"`

	SourceFileVersionID *uint64          `gorm:"column:source_file_version_id"`
	GenerationMethod    GenerationMethod `gorm:"column:generation_method;type:text;not null;default:upload"`
	LLMModel            *string          `gorm:"column:llm_model;type:text"`
	LLMParams           *string          `gorm:"column:llm_params;type:text"`

	IsActive  bool      `gorm:"column:is_active;not null;default:1"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`

	File          *File        `gorm:"foreignKey:FileID;references:FileID"`
	SourceVersion *FileVersion `gorm:"foreignKey:SourceFileVersionID;references:VersionID"`
}

func (FileVersion) TableName() string {
	return "file_version"
}
