package model

import "time"

type JobStatus string

const (
	JobStatusNotStarted JobStatus = "not_started"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusSubmitted  JobStatus = "submitted"
	JobStatusReviewed   JobStatus = "reviewed"
)

type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusRejected ReviewStatus = "rejected"
)

type AssignmentRole string

const (
	RoleAnnotator AssignmentRole = "annotator"
	RoleReviewer  AssignmentRole = "reviewer"
	RoleQC        AssignmentRole = "qc"
)

type AssignmentStatus string

const (
	AssignmentStatusAssigned   AssignmentStatus = "assigned"
	AssignmentStatusAccepted   AssignmentStatus = "accepted"
	AssignmentStatusInProgress AssignmentStatus = "in_progress"
	AssignmentStatusSubmitted  AssignmentStatus = "submitted"
	AssignmentStatusCompleted  AssignmentStatus = "completed"
)

type JobPriority string

const (
	PriorityLow    JobPriority = "low"
	PriorityMedium JobPriority = "medium"
	PriorityHigh   JobPriority = "high"
)

// Language codes supported for annotation jobs.
type Language string

const (
	LanguageEN Language = "en"
	LanguageZH Language = "zh"
	LanguageFR Language = "fr"
	LanguageDE Language = "de"
	LanguageES Language = "es"
	LanguageAR Language = "ar"
)

type AnnotationJob struct {
	JobID     uint64 `gorm:"column:job_id;primaryKey;autoIncrement"`
	FileID    uint64 `gorm:"column:file_id;not null;index"`
	ProjectID uint64 `gorm:"column:project_id;not null;index"`

	Language Language    `gorm:"column:language;type:text"`
	Priority JobPriority `gorm:"column:priority;type:text;not null;default:medium"`

	Status       JobStatus    `gorm:"column:status;type:text;not null;default:not_started"`
	ReviewStatus ReviewStatus `gorm:"column:review_status;type:text;not null;default:pending"`

	DueDate *time.Time `gorm:"column:due_date"`

	// CompletedAt is bookkeeping, not part of the audit policy.
	CompletedAt *time.Time `gorm:"column:completed_at"`

	IsActive  bool       `gorm:"column:is_active;not null;default:1"`
	DeletedAt *time.Time `gorm:"column:deleted_at"`
	CreatedAt time.Time  `gorm:"column:created_at;not null"`
	UpdatedAt time.Time  `gorm:"column:updated_at;not null"`

	File        *File        `gorm:"foreignKey:FileID;references:FileID;constraint:OnDelete:CASCADE"`
	Project     *Project     `gorm:"foreignKey:ProjectID;references:ProjectID;constraint:OnDelete:CASCADE"`
	Reviews     []Review     `gorm:"foreignKey:JobID;references:JobID;constraint:OnDelete:CASCADE"`
	Assignments []Assignment `gorm:"foreignKey:JobID;references:JobID;constraint:OnDelete:CASCADE"`
}

func (AnnotationJob) TableName() string {
	return "annotation_job"
}

// JobPreviousAnnotator records which annotators have worked a job before,
// for feedback loops and reassignment tracking.
type JobPreviousAnnotator struct {
	JobID      uint64    `gorm:"column:job_id;primaryKey"`
	UserID     uint64    `gorm:"column:user_id;primaryKey"`
	AssignedAt time.Time `gorm:"column:assigned_at;not null"`
}

func (JobPreviousAnnotator) TableName() string {
	return "job_previous_annotators"
}

type Assignment struct {
	AssignmentID uint64 `gorm:"column:assignment_id;primaryKey;autoIncrement"`
	JobID        uint64 `gorm:"column:job_id;not null;index:ix_assignment_job_id"`
	UserID       uint64 `gorm:"column:user_id;not null;index:ix_assignment_user_id"`

	Role   AssignmentRole   `gorm:"column:role;type:text;not null;index:ix_assignment_role"`
	Status AssignmentStatus `gorm:"column:status;type:text;not null;default:assigned"`

	IsActive    bool       `gorm:"column:is_active;not null;default:1"`
	CompletedAt *time.Time `gorm:"column:completed_at"`

	AssignedAt time.Time `gorm:"column:assigned_at;not null"`
	UpdatedAt  time.Time `gorm:"column:updated_at;not null"`

	Job  *AnnotationJob `gorm:"foreignKey:JobID;references:JobID;constraint:OnDelete:CASCADE"`
	User *User          `gorm:"foreignKey:UserID;references:UserID;constraint:OnDelete:CASCADE"`
}

func (Assignment) TableName() string {
	return "assignment"
}

type Review struct {
	ReviewID   uint64  `gorm:"column:review_id;primaryKey;autoIncrement"`
	JobID      uint64  `gorm:"column:job_id;not null;index:ix_review_job_id"`
	ReviewerID *uint64 `gorm:"column:reviewer_id"`

	Status   ReviewStatus `gorm:"column:status;type:text;not null;default:pending;index:ix_review_status"`
	Feedback *string      `gorm:"column:feedback;type:text"`

	IsActive  bool       `gorm:"column:is_active;not null;default:1"`
	DeletedAt *time.Time `gorm:"column:deleted_at"`
	CreatedAt time.Time  `gorm:"column:created_at;not null"`
	UpdatedAt time.Time  `gorm:"column:updated_at;not null"`

	Job      *AnnotationJob `gorm:"foreignKey:JobID;references:JobID;constraint:OnDelete:CASCADE"`
	Reviewer *User          `gorm:"foreignKey:ReviewerID;references:UserID;constraint:OnDelete:SET NULL"`
}

func (Review) TableName() string {
	return "review"
}
