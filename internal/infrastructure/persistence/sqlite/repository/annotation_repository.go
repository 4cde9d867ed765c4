package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"annoflow/internal/domain/audit"
	"annoflow/internal/errs"
	"annoflow/internal/infrastructure/persistence/sqlite/model"
	"annoflow/internal/ports"
)

type AnnotationRepository struct {
	db     *gorm.DB
	policy audit.Policy
	now    func() time.Time
}

func NewAnnotationRepository(db *gorm.DB, policy audit.Policy) *AnnotationRepository {
	return &AnnotationRepository{db: db, policy: policy, now: utcNow}
}

func (r *AnnotationRepository) CreateJob(ctx context.Context, in ports.AnnotationJobCreate) (ports.AnnotationJob, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.AnnotationJob{}, err
	}

	if in.FileID == 0 || in.ProjectID == 0 {
		return ports.AnnotationJob{}, errors.New("file_id and project_id are required")
	}

	priority := model.JobPriority(in.Priority)
	if priority == "" {
		priority = model.PriorityMedium
	}

	now := r.now()
	row := model.AnnotationJob{
		FileID:       in.FileID,
		ProjectID:    in.ProjectID,
		Language:     model.Language(in.Language),
		Priority:     priority,
		Status:       model.JobStatusNotStarted,
		ReviewStatus: model.ReviewStatusPending,
		DueDate:      in.DueDate,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.AnnotationJob{}, errs.Wrap(err, "insert annotation job")
	}
	return mapJob(row), nil
}

func (r *AnnotationRepository) GetJob(ctx context.Context, jobID uint64) (ports.AnnotationJob, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.AnnotationJob{}, err
	}
	var row model.AnnotationJob
	if err := db.First(&row, "job_id = ?", jobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.AnnotationJob{}, ports.ErrJobNotFound
		}
		return ports.AnnotationJob{}, errs.Wrap(err, "query annotation job")
	}
	return mapJob(row), nil
}

func (r *AnnotationRepository) ListJobs(ctx context.Context, projectID uint64) ([]ports.AnnotationJob, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var rows []model.AnnotationJob
	if err := db.Where("project_id = ?", projectID).Order("job_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query annotation jobs")
	}

	items := make([]ports.AnnotationJob, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapJob(row))
	}
	return items, nil
}

func (r *AnnotationRepository) UpdateJob(ctx context.Context, jobID uint64, patch ports.AnnotationJobPatch) (ports.AnnotationJob, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.AnnotationJob{}, err
	}

	var row model.AnnotationJob
	if err := db.First(&row, "job_id = ?", jobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.AnnotationJob{}, ports.ErrJobNotFound
		}
		return ports.AnnotationJob{}, errs.Wrap(err, "load annotation job")
	}

	ch := audit.NewChanges()
	if patch.Status != nil {
		ch.Set("status", *patch.Status, string(row.Status))
	}
	if patch.ReviewStatus != nil {
		ch.Set("review_status", *patch.ReviewStatus, string(row.ReviewStatus))
	}
	if patch.Priority != nil {
		ch.Set("priority", *patch.Priority, string(row.Priority))
	}
	if patch.Language != nil {
		ch.Set("language", *patch.Language, string(row.Language))
	}
	if patch.DueDate != nil {
		ch.Set("due_date", patch.DueDate, row.DueDate)
	}
	if patch.CompletedAt != nil {
		ch.Set("completed_at", patch.CompletedAt, row.CompletedAt)
	}
	if patch.IsActive != nil {
		ch.Set("is_active", *patch.IsActive, row.IsActive)
	}
	if ch.Empty() {
		return mapJob(row), nil
	}

	values := applyTouch(r.policy, model.AnnotationJob{}.TableName(), ch, row.UpdatedAt, r.now())
	if err := db.Model(&model.AnnotationJob{}).Where("job_id = ?", jobID).Updates(values).Error; err != nil {
		return ports.AnnotationJob{}, errs.Wrap(err, "update annotation job")
	}

	if err := db.First(&row, "job_id = ?", jobID).Error; err != nil {
		return ports.AnnotationJob{}, errs.Wrap(err, "reload annotation job")
	}
	return mapJob(row), nil
}

func (r *AnnotationRepository) RecordPreviousAnnotator(ctx context.Context, jobID, userID uint64) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}
	link := model.JobPreviousAnnotator{
		JobID:      jobID,
		UserID:     userID,
		AssignedAt: r.now(),
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error; err != nil {
		return errs.Wrap(err, "insert previous annotator")
	}
	return nil
}

func (r *AnnotationRepository) CreateAssignment(ctx context.Context, in ports.AssignmentCreate) (ports.Assignment, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.Assignment{}, err
	}

	role := model.AssignmentRole(in.Role)
	switch role {
	case model.RoleAnnotator, model.RoleReviewer, model.RoleQC:
	default:
		return ports.Assignment{}, errors.New("assignment role must be annotator, reviewer or qc")
	}

	now := r.now()
	row := model.Assignment{
		JobID:      in.JobID,
		UserID:     in.UserID,
		Role:       role,
		Status:     model.AssignmentStatusAssigned,
		IsActive:   true,
		AssignedAt: now,
		UpdatedAt:  now,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.Assignment{}, errs.Wrap(err, "insert assignment")
	}
	return mapAssignment(row), nil
}

func (r *AnnotationRepository) GetAssignment(ctx context.Context, assignmentID uint64) (ports.Assignment, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.Assignment{}, err
	}
	var row model.Assignment
	if err := db.First(&row, "assignment_id = ?", assignmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Assignment{}, ports.ErrAssignmentNotFound
		}
		return ports.Assignment{}, errs.Wrap(err, "query assignment")
	}
	return mapAssignment(row), nil
}

func (r *AnnotationRepository) UpdateAssignment(ctx context.Context, assignmentID uint64, patch ports.AssignmentPatch) (ports.Assignment, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.Assignment{}, err
	}

	var row model.Assignment
	if err := db.First(&row, "assignment_id = ?", assignmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Assignment{}, ports.ErrAssignmentNotFound
		}
		return ports.Assignment{}, errs.Wrap(err, "load assignment")
	}

	ch := audit.NewChanges()
	if patch.Status != nil {
		ch.Set("status", *patch.Status, string(row.Status))
	}
	if patch.Role != nil {
		ch.Set("role", *patch.Role, string(row.Role))
	}
	if patch.UserID != nil {
		ch.Set("user_id", *patch.UserID, row.UserID)
	}
	if patch.IsActive != nil {
		ch.Set("is_active", *patch.IsActive, row.IsActive)
	}
	if patch.CompletedAt != nil {
		ch.Set("completed_at", patch.CompletedAt, row.CompletedAt)
	}
	if ch.Empty() {
		return mapAssignment(row), nil
	}

	values := applyTouch(r.policy, model.Assignment{}.TableName(), ch, row.UpdatedAt, r.now())
	if err := db.Model(&model.Assignment{}).Where("assignment_id = ?", assignmentID).Updates(values).Error; err != nil {
		return ports.Assignment{}, errs.Wrap(err, "update assignment")
	}

	if err := db.First(&row, "assignment_id = ?", assignmentID).Error; err != nil {
		return ports.Assignment{}, errs.Wrap(err, "reload assignment")
	}
	return mapAssignment(row), nil
}

func (r *AnnotationRepository) CreateReview(ctx context.Context, in ports.ReviewCreate) (ports.Review, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.Review{}, err
	}

	now := r.now()
	row := model.Review{
		JobID:      in.JobID,
		ReviewerID: in.ReviewerID,
		Status:     model.ReviewStatusPending,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.Review{}, errs.Wrap(err, "insert review")
	}
	return mapReview(row), nil
}

func (r *AnnotationRepository) GetReview(ctx context.Context, reviewID uint64) (ports.Review, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.Review{}, err
	}
	var row model.Review
	if err := db.First(&row, "review_id = ?", reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Review{}, ports.ErrReviewNotFound
		}
		return ports.Review{}, errs.Wrap(err, "query review")
	}
	return mapReview(row), nil
}

func (r *AnnotationRepository) UpdateReview(ctx context.Context, reviewID uint64, patch ports.ReviewPatch) (ports.Review, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.Review{}, err
	}

	var row model.Review
	if err := db.First(&row, "review_id = ?", reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Review{}, ports.ErrReviewNotFound
		}
		return ports.Review{}, errs.Wrap(err, "load review")
	}

	ch := audit.NewChanges()
	if patch.Status != nil {
		ch.Set("status", *patch.Status, string(row.Status))
	}
	if patch.Feedback != nil {
		ch.Set("feedback", patch.Feedback, row.Feedback)
	}
	if patch.IsActive != nil {
		ch.Set("is_active", *patch.IsActive, row.IsActive)
	}
	if patch.DeletedAt != nil {
		ch.Set("deleted_at", patch.DeletedAt, row.DeletedAt)
	}
	if ch.Empty() {
		return mapReview(row), nil
	}

	values := applyTouch(r.policy, model.Review{}.TableName(), ch, row.UpdatedAt, r.now())
	if err := db.Model(&model.Review{}).Where("review_id = ?", reviewID).Updates(values).Error; err != nil {
		return ports.Review{}, errs.Wrap(err, "update review")
	}

	if err := db.First(&row, "review_id = ?", reviewID).Error; err != nil {
		return ports.Review{}, errs.Wrap(err, "reload review")
	}
	return mapReview(row), nil
}

func mapJob(row model.AnnotationJob) ports.AnnotationJob {
	return ports.AnnotationJob{
		JobID:        row.JobID,
		FileID:       row.FileID,
		ProjectID:    row.ProjectID,
		Language:     string(row.Language),
		Priority:     string(row.Priority),
		Status:       string(row.Status),
		ReviewStatus: string(row.ReviewStatus),
		DueDate:      row.DueDate,
		CompletedAt:  row.CompletedAt,
		IsActive:     row.IsActive,
		DeletedAt:    row.DeletedAt,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func mapAssignment(row model.Assignment) ports.Assignment {
	return ports.Assignment{
		AssignmentID: row.AssignmentID,
		JobID:        row.JobID,
		UserID:       row.UserID,
		Role:         string(row.Role),
		Status:       string(row.Status),
		IsActive:     row.IsActive,
		CompletedAt:  row.CompletedAt,
		AssignedAt:   row.AssignedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func mapReview(row model.Review) ports.Review {
	return ports.Review{
		ReviewID:   row.ReviewID,
		JobID:      row.JobID,
		ReviewerID: row.ReviewerID,
		Status:     string(row.Status),
		Feedback:   row.Feedback,
		IsActive:   row.IsActive,
		DeletedAt:  row.DeletedAt,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}
