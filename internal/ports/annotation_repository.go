package ports

import (
	"context"
	"errors"
	"time"
)

var (
	ErrJobNotFound        = errors.New("annotation job not found")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrReviewNotFound     = errors.New("review not found")
)

type AnnotationJob struct {
	JobID        uint64
	FileID       uint64
	ProjectID    uint64
	Language     string
	Priority     string
	Status       string
	ReviewStatus string
	DueDate      *time.Time
	CompletedAt  *time.Time
	IsActive     bool
	DeletedAt    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type AnnotationJobCreate struct {
	FileID    uint64
	ProjectID uint64
	Language  string
	Priority  string
	DueDate   *time.Time
}

type AnnotationJobPatch struct {
	Status       *string
	ReviewStatus *string
	Priority     *string
	Language     *string
	DueDate      *time.Time
	CompletedAt  *time.Time
	IsActive     *bool
}

type Assignment struct {
	AssignmentID uint64
	JobID        uint64
	UserID       uint64
	Role         string
	Status       string
	IsActive     bool
	CompletedAt  *time.Time
	AssignedAt   time.Time
	UpdatedAt    time.Time
}

type AssignmentCreate struct {
	JobID  uint64
	UserID uint64
	Role   string
}

type AssignmentPatch struct {
	Status      *string
	Role        *string
	UserID      *uint64
	IsActive    *bool
	CompletedAt *time.Time
}

type Review struct {
	ReviewID   uint64
	JobID      uint64
	ReviewerID *uint64
	Status     string
	Feedback   *string
	IsActive   bool
	DeletedAt  *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type ReviewCreate struct {
	JobID      uint64
	ReviewerID *uint64
}

type ReviewPatch struct {
	Status    *string
	Feedback  *string
	IsActive  *bool
	DeletedAt *time.Time
}

type AnnotationRepository interface {
	CreateJob(ctx context.Context, in AnnotationJobCreate) (AnnotationJob, error)
	GetJob(ctx context.Context, jobID uint64) (AnnotationJob, error)
	ListJobs(ctx context.Context, projectID uint64) ([]AnnotationJob, error)
	UpdateJob(ctx context.Context, jobID uint64, patch AnnotationJobPatch) (AnnotationJob, error)

	// RecordPreviousAnnotator is idempotent per (job, user) pair.
	RecordPreviousAnnotator(ctx context.Context, jobID, userID uint64) error

	CreateAssignment(ctx context.Context, in AssignmentCreate) (Assignment, error)
	GetAssignment(ctx context.Context, assignmentID uint64) (Assignment, error)
	UpdateAssignment(ctx context.Context, assignmentID uint64, patch AssignmentPatch) (Assignment, error)

	CreateReview(ctx context.Context, in ReviewCreate) (Review, error)
	GetReview(ctx context.Context, reviewID uint64) (Review, error)
	UpdateReview(ctx context.Context, reviewID uint64, patch ReviewPatch) (Review, error)
}
