package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"annoflow/internal/domain/audit"
	"annoflow/internal/errs"
	"annoflow/internal/infrastructure/persistence/sqlite/model"
	"annoflow/internal/ports"
)

type ExportRepository struct {
	db     *gorm.DB
	policy audit.Policy
	now    func() time.Time
}

func NewExportRepository(db *gorm.DB, policy audit.Policy) *ExportRepository {
	return &ExportRepository{db: db, policy: policy, now: utcNow}
}

func (r *ExportRepository) CreateExport(ctx context.Context, in ports.ExportCreate) (ports.ExportLog, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.ExportLog{}, err
	}

	if strings.TrimSpace(in.StoragePath) == "" {
		return ports.ExportLog{}, errors.New("storage_path is required")
	}

	now := r.now()
	row := model.ExportLog{
		ProjectID:     in.ProjectID,
		RequestedBy:   in.RequestedBy,
		StoragePath:   in.StoragePath,
		Status:        model.ExportStatusPending,
		DateRequested: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.ExportLog{}, errs.Wrap(err, "insert export log")
	}
	return mapExport(row), nil
}

func (r *ExportRepository) GetExport(ctx context.Context, exportID uint64) (ports.ExportLog, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.ExportLog{}, err
	}
	var row model.ExportLog
	if err := db.First(&row, "export_id = ?", exportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.ExportLog{}, ports.ErrExportNotFound
		}
		return ports.ExportLog{}, errs.Wrap(err, "query export log")
	}
	return mapExport(row), nil
}

func (r *ExportRepository) UpdateExport(ctx context.Context, exportID uint64, patch ports.ExportPatch) (ports.ExportLog, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.ExportLog{}, err
	}

	var row model.ExportLog
	if err := db.First(&row, "export_id = ?", exportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.ExportLog{}, ports.ErrExportNotFound
		}
		return ports.ExportLog{}, errs.Wrap(err, "load export log")
	}

	ch := audit.NewChanges()
	if patch.Status != nil {
		ch.Set("status", *patch.Status, string(row.Status))
	}
	if patch.StoragePath != nil {
		ch.Set("storage_path", *patch.StoragePath, row.StoragePath)
	}
	if patch.Checksum != nil {
		ch.Set("checksum", patch.Checksum, row.Checksum)
	}
	if patch.DateCompleted != nil {
		ch.Set("date_completed", patch.DateCompleted, row.DateCompleted)
	}
	if ch.Empty() {
		return mapExport(row), nil
	}

	values := applyTouch(r.policy, model.ExportLog{}.TableName(), ch, row.UpdatedAt, r.now())
	if err := db.Model(&model.ExportLog{}).Where("export_id = ?", exportID).Updates(values).Error; err != nil {
		return ports.ExportLog{}, errs.Wrap(err, "update export log")
	}

	if err := db.First(&row, "export_id = ?", exportID).Error; err != nil {
		return ports.ExportLog{}, errs.Wrap(err, "reload export log")
	}
	return mapExport(row), nil
}

func (r *ExportRepository) AttachFileVersion(ctx context.Context, exportID, fileVersionID uint64) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}
	link := model.ExportedFile{
		ExportID:      exportID,
		FileVersionID: fileVersionID,
		IncludedAt:    r.now(),
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error; err != nil {
		return errs.Wrap(err, "insert exported file")
	}
	return nil
}

func (r *ExportRepository) AppendEvent(ctx context.Context, in ports.AuditEventCreate) (ports.AuditEvent, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.AuditEvent{}, err
	}

	if in.EntityType == "" || in.EventType == "" {
		return ports.AuditEvent{}, errors.New("entity_type and event_type are required")
	}

	row := model.EventLog{
		EntityType:    model.EntityType(in.EntityType),
		EntityID:      in.EntityID,
		EventType:     model.EventType(in.EventType),
		UserID:        in.UserID,
		EventMetadata: in.EventMetadata,
		EventTime:     r.now(),
		FileID:        in.FileID,
		FileVersionID: in.FileVersionID,
		ProjectID:     in.ProjectID,
		JobID:         in.JobID,
		ExportID:      in.ExportID,
		ReviewID:      in.ReviewID,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.AuditEvent{}, errs.Wrap(err, "insert event log")
	}
	return mapEvent(row), nil
}

func (r *ExportRepository) ListEvents(ctx context.Context, entityType string, entityID uint64) ([]ports.AuditEvent, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var rows []model.EventLog
	if err := db.
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("event_id asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query event log")
	}
	return mapEvents(rows), nil
}

func (r *ExportRepository) ListRecentEvents(ctx context.Context, limit int) ([]ports.AuditEvent, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.EventLog{}).Order("event_id desc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []model.EventLog
	if err := query.Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query recent events")
	}
	return mapEvents(rows), nil
}

func mapExport(row model.ExportLog) ports.ExportLog {
	return ports.ExportLog{
		ExportID:      row.ExportID,
		ProjectID:     row.ProjectID,
		RequestedBy:   row.RequestedBy,
		StoragePath:   row.StoragePath,
		Checksum:      row.Checksum,
		Status:        string(row.Status),
		DateRequested: row.DateRequested,
		DateCompleted: row.DateCompleted,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

func mapEvent(row model.EventLog) ports.AuditEvent {
	return ports.AuditEvent{
		EventID:       row.EventID,
		EntityType:    string(row.EntityType),
		EntityID:      row.EntityID,
		EventType:     string(row.EventType),
		UserID:        row.UserID,
		EventMetadata: row.EventMetadata,
		EventTime:     row.EventTime,
		FileID:        row.FileID,
		FileVersionID: row.FileVersionID,
		ProjectID:     row.ProjectID,
		JobID:         row.JobID,
		ExportID:      row.ExportID,
		ReviewID:      row.ReviewID,
	}
}

func mapEvents(rows []model.EventLog) []ports.AuditEvent {
	items := make([]ports.AuditEvent, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapEvent(row))
	}
	return items
}
