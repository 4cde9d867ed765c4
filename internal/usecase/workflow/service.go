package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"annoflow/internal/ports"
)

var (
	errFileRequired     = errors.New("file_id is required")
	errUserRequired     = errors.New("user_id is required")
	errNoVersions       = errors.New("export requires at least one file version")
	errReviewDecision   = errors.New("review decision must be approved or rejected")
	errVersionMismatch  = errors.New("file version does not belong to the export's project")
	errJobNotSubmitted  = errors.New("job must be submitted before review")
	errJobAlreadyClosed = errors.New("job is already reviewed")
)

// Service orchestrates the annotation workflow on top of the repositories.
// Every multi-row operation runs inside one unit of work so the entity
// writes and their audit events commit together.
type Service struct {
	orgs        ports.OrganizationRepository
	projects    ports.ProjectRepository
	annotations ports.AnnotationRepository
	exports     ports.ExportRepository
	uow         ports.UnitOfWork
}

func NewService(
	orgs ports.OrganizationRepository,
	projects ports.ProjectRepository,
	annotations ports.AnnotationRepository,
	exports ports.ExportRepository,
	uow ports.UnitOfWork,
) *Service {
	return &Service{
		orgs:        orgs,
		projects:    projects,
		annotations: annotations,
		exports:     exports,
		uow:         uow,
	}
}

type UploadVersionInput struct {
	FileID      uint64
	UploadedBy  uint64
	StoragePath string
	Checksum    *string
	SizeBytes   *int64
	MimeType    *string
	// SourceVersionID marks a derived version (OCR or LLM regeneration).
	SourceVersionID  *uint64
	GenerationMethod string
	LLMModel         *string
	LLMParams        *string
}

// UploadVersion stores a new file version, makes it the file's active
// version, and logs an uploaded (first version) or reuploaded event.
func (s *Service) UploadVersion(ctx context.Context, in UploadVersionInput) (ports.FileVersion, error) {
	if in.FileID == 0 {
		return ports.FileVersion{}, errFileRequired
	}
	if in.UploadedBy == 0 {
		return ports.FileVersion{}, errUserRequired
	}

	var version ports.FileVersion
	err := s.uow.WithTx(ctx, func(ctx context.Context) error {
		created, err := s.projects.AddFileVersion(ctx, ports.FileVersionCreate{
			FileID:              in.FileID,
			StoragePath:         in.StoragePath,
			Checksum:            in.Checksum,
			SizeBytes:           in.SizeBytes,
			MimeType:            in.MimeType,
			UploadedBy:          &in.UploadedBy,
			SourceFileVersionID: in.SourceVersionID,
			GenerationMethod:    in.GenerationMethod,
			LLMModel:            in.LLMModel,
			LLMParams:           in.LLMParams,
		})
		if err != nil {
			return err
		}
		version = created

		if _, err := s.projects.SetActiveVersion(ctx, in.FileID, created.VersionID); err != nil {
			return err
		}

		eventType := "uploaded"
		if created.VersionNumber > 1 {
			eventType = "reuploaded"
		}
		_, err = s.exports.AppendEvent(ctx, ports.AuditEventCreate{
			EntityType:    "file",
			EntityID:      in.FileID,
			EventType:     eventType,
			UserID:        &in.UploadedBy,
			FileID:        &in.FileID,
			FileVersionID: &created.VersionID,
		})
		return err
	})
	if err != nil {
		return ports.FileVersion{}, err
	}
	return version, nil
}

// StartAnnotation moves the job and the annotator's assignment to
// in_progress and records the annotator in the job's history.
func (s *Service) StartAnnotation(ctx context.Context, jobID, assignmentID uint64) (ports.AnnotationJob, error) {
	var job ports.AnnotationJob
	err := s.uow.WithTx(ctx, func(ctx context.Context) error {
		assignment, err := s.annotations.GetAssignment(ctx, assignmentID)
		if err != nil {
			return err
		}
		if assignment.JobID != jobID {
			return fmt.Errorf("assignment %d does not belong to job %d", assignmentID, jobID)
		}

		current, err := s.annotations.GetJob(ctx, jobID)
		if err != nil {
			return err
		}
		if current.Status == "reviewed" {
			return errJobAlreadyClosed
		}

		status := "in_progress"
		updated, err := s.annotations.UpdateJob(ctx, jobID, ports.AnnotationJobPatch{Status: &status})
		if err != nil {
			return err
		}
		job = updated

		if _, err := s.annotations.UpdateAssignment(ctx, assignmentID, ports.AssignmentPatch{Status: &status}); err != nil {
			return err
		}
		if err := s.annotations.RecordPreviousAnnotator(ctx, jobID, assignment.UserID); err != nil {
			return err
		}

		meta, err := statusMeta(current.Status, status)
		if err != nil {
			return err
		}
		_, err = s.exports.AppendEvent(ctx, ports.AuditEventCreate{
			EntityType:    "annotation_job",
			EntityID:      jobID,
			EventType:     "annotation_started",
			UserID:        &assignment.UserID,
			EventMetadata: meta,
			JobID:         &jobID,
		})
		return err
	})
	if err != nil {
		return ports.AnnotationJob{}, err
	}
	return job, nil
}

// SubmitAnnotation marks the job submitted and the assignment completed.
func (s *Service) SubmitAnnotation(ctx context.Context, jobID, assignmentID uint64) (ports.AnnotationJob, error) {
	var job ports.AnnotationJob
	err := s.uow.WithTx(ctx, func(ctx context.Context) error {
		assignment, err := s.annotations.GetAssignment(ctx, assignmentID)
		if err != nil {
			return err
		}

		current, err := s.annotations.GetJob(ctx, jobID)
		if err != nil {
			return err
		}

		jobStatus := "submitted"
		updated, err := s.annotations.UpdateJob(ctx, jobID, ports.AnnotationJobPatch{Status: &jobStatus})
		if err != nil {
			return err
		}
		job = updated

		assignmentStatus := "submitted"
		if _, err := s.annotations.UpdateAssignment(ctx, assignmentID, ports.AssignmentPatch{Status: &assignmentStatus}); err != nil {
			return err
		}

		meta, err := statusMeta(current.Status, jobStatus)
		if err != nil {
			return err
		}
		_, err = s.exports.AppendEvent(ctx, ports.AuditEventCreate{
			EntityType:    "annotation_job",
			EntityID:      jobID,
			EventType:     "annotation_completed",
			UserID:        &assignment.UserID,
			EventMetadata: meta,
			JobID:         &jobID,
		})
		return err
	})
	if err != nil {
		return ports.AnnotationJob{}, err
	}
	return job, nil
}

type ReviewDecisionInput struct {
	ReviewID uint64
	Decision string // approved or rejected
	Feedback *string
}

// ApplyReviewDecision records the reviewer's verdict on a submitted job and
// propagates it to the job's review_status.
func (s *Service) ApplyReviewDecision(ctx context.Context, in ReviewDecisionInput) (ports.Review, error) {
	if in.Decision != "approved" && in.Decision != "rejected" {
		return ports.Review{}, errReviewDecision
	}

	var review ports.Review
	err := s.uow.WithTx(ctx, func(ctx context.Context) error {
		current, err := s.annotations.GetReview(ctx, in.ReviewID)
		if err != nil {
			return err
		}

		job, err := s.annotations.GetJob(ctx, current.JobID)
		if err != nil {
			return err
		}
		if job.Status != "submitted" && job.Status != "reviewed" {
			return errJobNotSubmitted
		}

		updated, err := s.annotations.UpdateReview(ctx, in.ReviewID, ports.ReviewPatch{
			Status:   &in.Decision,
			Feedback: in.Feedback,
		})
		if err != nil {
			return err
		}
		review = updated

		jobStatus := "reviewed"
		if _, err := s.annotations.UpdateJob(ctx, current.JobID, ports.AnnotationJobPatch{
			Status:       &jobStatus,
			ReviewStatus: &in.Decision,
		}); err != nil {
			return err
		}

		meta, err := statusMeta(job.ReviewStatus, in.Decision)
		if err != nil {
			return err
		}
		_, err = s.exports.AppendEvent(ctx, ports.AuditEventCreate{
			EntityType:    "annotation_job",
			EntityID:      current.JobID,
			EventType:     "reviewed",
			UserID:        current.ReviewerID,
			EventMetadata: meta,
			JobID:         &current.JobID,
			ReviewID:      &in.ReviewID,
		})
		return err
	})
	if err != nil {
		return ports.Review{}, err
	}
	return review, nil
}

type RequestExportInput struct {
	ProjectID      uint64
	RequestedBy    uint64
	FileVersionIDs []uint64
}

// RequestExport opens a pending export for the given file versions. The
// storage key is generated here; producing the actual package is someone
// else's job.
func (s *Service) RequestExport(ctx context.Context, in RequestExportInput) (ports.ExportLog, error) {
	if len(in.FileVersionIDs) == 0 {
		return ports.ExportLog{}, errNoVersions
	}

	var export ports.ExportLog
	err := s.uow.WithTx(ctx, func(ctx context.Context) error {
		if _, err := s.projects.GetProject(ctx, in.ProjectID); err != nil {
			return err
		}

		storagePath := fmt.Sprintf("exports/%d/%s.zip", in.ProjectID, uuid.NewString())
		created, err := s.exports.CreateExport(ctx, ports.ExportCreate{
			ProjectID:   in.ProjectID,
			RequestedBy: in.RequestedBy,
			StoragePath: storagePath,
		})
		if err != nil {
			return err
		}
		export = created

		for _, versionID := range in.FileVersionIDs {
			version, err := s.projects.GetFileVersion(ctx, versionID)
			if err != nil {
				return err
			}
			file, err := s.projects.GetFile(ctx, version.FileID)
			if err != nil {
				return err
			}
			if file.ProjectID != in.ProjectID {
				return errVersionMismatch
			}
			if err := s.exports.AttachFileVersion(ctx, created.ExportID, versionID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return ports.ExportLog{}, err
	}
	return export, nil
}

// CompleteExport closes a pending export with its package checksum.
func (s *Service) CompleteExport(ctx context.Context, exportID uint64, checksum string) (ports.ExportLog, error) {
	status := "completed"
	patch := ports.ExportPatch{Status: &status}
	if checksum != "" {
		patch.Checksum = &checksum
	}
	return s.exports.UpdateExport(ctx, exportID, patch)
}

// FailExport marks a pending export failed.
func (s *Service) FailExport(ctx context.Context, exportID uint64) (ports.ExportLog, error) {
	status := "failed"
	return s.exports.UpdateExport(ctx, exportID, ports.ExportPatch{Status: &status})
}

// ArchiveProject soft-deletes a project and logs the deletion.
func (s *Service) ArchiveProject(ctx context.Context, projectID, userID uint64) (ports.Project, error) {
	var project ports.Project
	err := s.uow.WithTx(ctx, func(ctx context.Context) error {
		status := "archived"
		inactive := false
		updated, err := s.projects.UpdateProject(ctx, projectID, ports.ProjectPatch{
			Status:   &status,
			IsActive: &inactive,
		})
		if err != nil {
			return err
		}
		project = updated

		_, err = s.exports.AppendEvent(ctx, ports.AuditEventCreate{
			EntityType: "project",
			EntityID:   projectID,
			EventType:  "deleted",
			UserID:     &userID,
			ProjectID:  &projectID,
		})
		return err
	})
	if err != nil {
		return ports.Project{}, err
	}
	return project, nil
}

// RecentEvents exposes the tail of the audit trail for inspection.
func (s *Service) RecentEvents(ctx context.Context, limit int) ([]ports.AuditEvent, error) {
	return s.exports.ListRecentEvents(ctx, limit)
}

func statusMeta(oldStatus, newStatus string) (*string, error) {
	raw, err := json.Marshal(map[string]string{
		"old_status": oldStatus,
		"new_status": newStatus,
	})
	if err != nil {
		return nil, err
	}
	meta := string(raw)
	return &meta, nil
}
