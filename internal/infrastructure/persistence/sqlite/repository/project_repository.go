package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"annoflow/internal/domain/audit"
	"annoflow/internal/errs"
	"annoflow/internal/infrastructure/persistence/sqlite/model"
	"annoflow/internal/ports"
)

type ProjectRepository struct {
	db     *gorm.DB
	policy audit.Policy
	now    func() time.Time
}

func NewProjectRepository(db *gorm.DB, policy audit.Policy) *ProjectRepository {
	return &ProjectRepository{db: db, policy: policy, now: utcNow}
}

func (r *ProjectRepository) CreateProject(ctx context.Context, in ports.ProjectCreate) (ports.Project, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.Project{}, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return ports.Project{}, errors.New("project name is required")
	}
	if in.OrgID == 0 {
		return ports.Project{}, errors.New("org_id is required")
	}
	if in.ClientPMID == 0 {
		return ports.Project{}, errors.New("client_pm_id is required")
	}

	now := r.now()
	row := model.Project{
		OrgID:            in.OrgID,
		Name:             name,
		Description:      in.Description,
		RequirementsText: in.RequirementsText,
		Status:           model.ProjectStatusDraft,
		IsActive:         true,
		ClientPMID:       in.ClientPMID,
		OurPMID:          in.OurPMID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.Project{}, errs.Wrap(err, "insert project")
	}
	return mapProject(row), nil
}

func (r *ProjectRepository) GetProject(ctx context.Context, projectID uint64) (ports.Project, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.Project{}, err
	}
	var row model.Project
	if err := db.First(&row, "project_id = ?", projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Project{}, ports.ErrProjectNotFound
		}
		return ports.Project{}, errs.Wrap(err, "query project")
	}
	return mapProject(row), nil
}

func (r *ProjectRepository) ListProjects(ctx context.Context, filter ports.ProjectFilter) ([]ports.Project, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Project{})
	if filter.OrgID != nil {
		query = query.Where("org_id = ?", *filter.OrgID)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	var rows []model.Project
	if err := query.Order("project_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query projects")
	}

	items := make([]ports.Project, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapProject(row))
	}
	return items, nil
}

func (r *ProjectRepository) UpdateProject(ctx context.Context, projectID uint64, patch ports.ProjectPatch) (ports.Project, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.Project{}, err
	}

	var row model.Project
	if err := db.First(&row, "project_id = ?", projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Project{}, ports.ErrProjectNotFound
		}
		return ports.Project{}, errs.Wrap(err, "load project")
	}

	ch := audit.NewChanges()
	if patch.Status != nil {
		ch.Set("status", *patch.Status, string(row.Status))
	}
	if patch.Name != nil {
		ch.Set("name", *patch.Name, row.Name)
	}
	if patch.Description != nil {
		ch.Set("description", patch.Description, row.Description)
	}
	if patch.RequirementsText != nil {
		ch.Set("requirements_text", patch.RequirementsText, row.RequirementsText)
	}
	if patch.ClientPMID != nil {
		ch.Set("client_pm_id", *patch.ClientPMID, row.ClientPMID)
	}
	if patch.OurPMID != nil {
		ch.Set("our_pm_id", patch.OurPMID, row.OurPMID)
	}
	if patch.IsActive != nil {
		ch.Set("is_active", *patch.IsActive, row.IsActive)
	}
	if patch.CompletedAt != nil {
		ch.Set("completed_at", patch.CompletedAt, row.CompletedAt)
	}
	if patch.DeletedAt != nil {
		ch.Set("deleted_at", patch.DeletedAt, row.DeletedAt)
	}
	if ch.Empty() {
		return mapProject(row), nil
	}

	values := applyTouch(r.policy, model.Project{}.TableName(), ch, row.UpdatedAt, r.now())
	if err := db.Model(&model.Project{}).Where("project_id = ?", projectID).Updates(values).Error; err != nil {
		return ports.Project{}, errs.Wrap(err, "update project")
	}

	if err := db.First(&row, "project_id = ?", projectID).Error; err != nil {
		return ports.Project{}, errs.Wrap(err, "reload project")
	}
	return mapProject(row), nil
}

func (r *ProjectRepository) CreateFile(ctx context.Context, in ports.FileCreate) (ports.File, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.File{}, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return ports.File{}, errors.New("file name is required")
	}

	fileType := model.FileType(in.FileType)
	if fileType == "" {
		fileType = model.FileTypeDataset
	}

	now := r.now()
	row := model.File{
		ProjectID:   in.ProjectID,
		Name:        name,
		Description: in.Description,
		UploadedBy:  in.UploadedBy,
		Status:      model.FileStatusPending,
		FileType:    fileType,
		SizeBytes:   in.SizeBytes,
		MimeType:    in.MimeType,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.File{}, errs.Wrap(err, "insert file")
	}
	return mapFile(row), nil
}

func (r *ProjectRepository) GetFile(ctx context.Context, fileID uint64) (ports.File, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.File{}, err
	}
	var row model.File
	if err := db.First(&row, "file_id = ?", fileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.File{}, ports.ErrFileNotFound
		}
		return ports.File{}, errs.Wrap(err, "query file")
	}
	return mapFile(row), nil
}

func (r *ProjectRepository) UpdateFile(ctx context.Context, fileID uint64, patch ports.FilePatch) (ports.File, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.File{}, err
	}

	var row model.File
	if err := db.First(&row, "file_id = ?", fileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.File{}, ports.ErrFileNotFound
		}
		return ports.File{}, errs.Wrap(err, "load file")
	}

	ch := audit.NewChanges()
	if patch.Status != nil {
		ch.Set("status", *patch.Status, string(row.Status))
	}
	if patch.Name != nil {
		ch.Set("name", *patch.Name, row.Name)
	}
	if patch.Description != nil {
		ch.Set("description", patch.Description, row.Description)
	}
	if patch.ActiveVersionID != nil {
		ch.Set("active_version_id", patch.ActiveVersionID, row.ActiveVersionID)
	}
	if patch.SizeBytes != nil {
		ch.Set("size_bytes", patch.SizeBytes, row.SizeBytes)
	}
	if patch.MimeType != nil {
		ch.Set("mime_type", patch.MimeType, row.MimeType)
	}
	if patch.IsActive != nil {
		ch.Set("is_active", *patch.IsActive, row.IsActive)
	}
	if patch.DeletedAt != nil {
		ch.Set("deleted_at", patch.DeletedAt, row.DeletedAt)
	}
	if ch.Empty() {
		return mapFile(row), nil
	}

	values := applyTouch(r.policy, model.File{}.TableName(), ch, row.UpdatedAt, r.now())
	if err := db.Model(&model.File{}).Where("file_id = ?", fileID).Updates(values).Error; err != nil {
		return ports.File{}, errs.Wrap(err, "update file")
	}

	if err := db.First(&row, "file_id = ?", fileID).Error; err != nil {
		return ports.File{}, errs.Wrap(err, "reload file")
	}
	return mapFile(row), nil
}

func (r *ProjectRepository) SetActiveVersion(ctx context.Context, fileID, versionID uint64) (ports.File, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.File{}, err
	}

	var version model.FileVersion
	if err := db.First(&version, "version_id = ?", versionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.File{}, ports.ErrFileVersionNotFound
		}
		return ports.File{}, errs.Wrap(err, "load file version")
	}
	if version.FileID != fileID {
		return ports.File{}, errors.New("version belongs to a different file")
	}

	return r.UpdateFile(ctx, fileID, ports.FilePatch{
		ActiveVersionID: &versionID,
		SizeBytes:       version.SizeBytes,
		MimeType:        version.MimeType,
	})
}

func (r *ProjectRepository) AddFileVersion(ctx context.Context, in ports.FileVersionCreate) (ports.FileVersion, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.FileVersion{}, err
	}

	if strings.TrimSpace(in.StoragePath) == "" {
		return ports.FileVersion{}, errors.New("storage_path is required")
	}

	var file model.File
	if err := db.First(&file, "file_id = ?", in.FileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.FileVersion{}, ports.ErrFileNotFound
		}
		return ports.FileVersion{}, errs.Wrap(err, "load file for version")
	}

	var maxVersion int
	if err := db.Model(&model.FileVersion{}).
		Where("file_id = ?", in.FileID).
		Select("coalesce(max(version_number), 0)").
		Scan(&maxVersion).Error; err != nil {
		return ports.FileVersion{}, errs.Wrap(err, "query max version number")
	}

	method := model.GenerationMethod(in.GenerationMethod)
	if method == "" {
		method = model.GenerationUpload
	}

	now := r.now()
	row := model.FileVersion{
		FileID:              in.FileID,
		VersionNumber:       maxVersion + 1,
		StoragePath:         in.StoragePath,
		Checksum:            in.Checksum,
		SizeBytes:           in.SizeBytes,
		MimeType:            in.MimeType,
		UploadedBy:          in.UploadedBy,
		UploadedAt:          now,
		SourceFileVersionID: in.SourceFileVersionID,
		GenerationMethod:    method,
		LLMModel:            in.LLMModel,
		LLMParams:           in.LLMParams,
		IsActive:            true,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.FileVersion{}, errs.Wrap(err, "insert file version")
	}
	return mapFileVersion(row), nil
}

func (r *ProjectRepository) GetFileVersion(ctx context.Context, versionID uint64) (ports.FileVersion, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.FileVersion{}, err
	}
	var row model.FileVersion
	if err := db.First(&row, "version_id = ?", versionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.FileVersion{}, ports.ErrFileVersionNotFound
		}
		return ports.FileVersion{}, errs.Wrap(err, "query file version")
	}
	return mapFileVersion(row), nil
}

func (r *ProjectRepository) UpdateFileVersion(ctx context.Context, versionID uint64, patch ports.FileVersionPatch) (ports.FileVersion, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.FileVersion{}, err
	}

	var row model.FileVersion
	if err := db.First(&row, "version_id = ?", versionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.FileVersion{}, ports.ErrFileVersionNotFound
		}
		return ports.FileVersion{}, errs.Wrap(err, "load file version")
	}

	ch := audit.NewChanges()
	if patch.IsActive != nil {
		ch.Set("is_active", *patch.IsActive, row.IsActive)
	}
	if patch.GenerationMethod != nil {
		ch.Set("generation_method", *patch.GenerationMethod, string(row.GenerationMethod))
	}
	if patch.LLMModel != nil {
		ch.Set("llm_model", patch.LLMModel, row.LLMModel)
	}
	if patch.LLMParams != nil {
		ch.Set("llm_params", patch.LLMParams, row.LLMParams)
	}
	if patch.Checksum != nil {
		ch.Set("checksum", patch.Checksum, row.Checksum)
	}
	if patch.SizeBytes != nil {
		ch.Set("size_bytes", patch.SizeBytes, row.SizeBytes)
	}
	if ch.Empty() {
		return mapFileVersion(row), nil
	}

	values := applyTouch(r.policy, model.FileVersion{}.TableName(), ch, row.UpdatedAt, r.now())
	if err := db.Model(&model.FileVersion{}).Where("version_id = ?", versionID).Updates(values).Error; err != nil {
		return ports.FileVersion{}, errs.Wrap(err, "update file version")
	}

	if err := db.First(&row, "version_id = ?", versionID).Error; err != nil {
		return ports.FileVersion{}, errs.Wrap(err, "reload file version")
	}
	return mapFileVersion(row), nil
}

func mapProject(row model.Project) ports.Project {
	return ports.Project{
		ProjectID:        row.ProjectID,
		OrgID:            row.OrgID,
		Name:             row.Name,
		Description:      row.Description,
		RequirementsText: row.RequirementsText,
		Status:           string(row.Status),
		IsActive:         row.IsActive,
		ClientPMID:       row.ClientPMID,
		OurPMID:          row.OurPMID,
		CompletedAt:      row.CompletedAt,
		DeletedAt:        row.DeletedAt,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
}

func mapFile(row model.File) ports.File {
	return ports.File{
		FileID:          row.FileID,
		ProjectID:       row.ProjectID,
		Name:            row.Name,
		Description:     row.Description,
		UploadedBy:      row.UploadedBy,
		Status:          string(row.Status),
		FileType:        string(row.FileType),
		SizeBytes:       row.SizeBytes,
		MimeType:        row.MimeType,
		ActiveVersionID: row.ActiveVersionID,
		IsActive:        row.IsActive,
		DeletedAt:       row.DeletedAt,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}

func mapFileVersion(row model.FileVersion) ports.FileVersion {
	return ports.FileVersion{
		VersionID:           row.VersionID,
		FileID:              row.FileID,
		VersionNumber:       row.VersionNumber,
		StoragePath:         row.StoragePath,
		Checksum:            row.Checksum,
		SizeBytes:           row.SizeBytes,
		MimeType:            row.MimeType,
		UploadedBy:          row.UploadedBy,
		UploadedAt:          row.UploadedAt,
		SourceFileVersionID: row.SourceFileVersionID,
		GenerationMethod:    string(row.GenerationMethod),
		LLMModel:            row.LLMModel,
		LLMParams:           row.LLMParams,
		IsActive:            row.IsActive,
		CreatedAt:           row.CreatedAt,
		UpdatedAt:           row.UpdatedAt,
	}
}
