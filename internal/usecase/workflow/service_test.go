package workflow

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"annoflow/internal/domain/audit"
	"annoflow/internal/infrastructure/persistence/sqlite/model"
	sqliterepo "annoflow/internal/infrastructure/persistence/sqlite/repository"
	"annoflow/internal/infrastructure/persistence/sqlite/uow"
	"annoflow/internal/ports"
)

type fixture struct {
	svc         *Service
	db          *gorm.DB
	orgs        ports.OrganizationRepository
	projects    ports.ProjectRepository
	annotations ports.AnnotationRepository
	exports     ports.ExportRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "annoflow.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	policy := audit.Default()
	orgs := sqliterepo.NewOrganizationRepository(db, policy)
	projects := sqliterepo.NewProjectRepository(db, policy)
	annotations := sqliterepo.NewAnnotationRepository(db, policy)
	exports := sqliterepo.NewExportRepository(db, policy)

	return &fixture{
		svc:         NewService(orgs, projects, annotations, exports, uow.NewUnitOfWork(db)),
		db:          db,
		orgs:        orgs,
		projects:    projects,
		annotations: annotations,
		exports:     exports,
	}
}

type seeded struct {
	pm        ports.User
	annotator ports.User
	project   ports.Project
	file      ports.File
	job       ports.AnnotationJob
}

func (f *fixture) seed(t *testing.T, label string) seeded {
	t.Helper()
	ctx := context.Background()

	org, err := f.orgs.CreateOrganization(ctx, ports.OrganizationCreate{Name: "org-" + label})
	if err != nil {
		t.Fatalf("create organization: %v", err)
	}
	pm, err := f.orgs.CreateUser(ctx, ports.UserCreate{Email: label + "-pm@example.com", OrgID: &org.OrgID})
	if err != nil {
		t.Fatalf("create pm: %v", err)
	}
	annotator, err := f.orgs.CreateUser(ctx, ports.UserCreate{Email: label + "-annotator@example.com"})
	if err != nil {
		t.Fatalf("create annotator: %v", err)
	}
	project, err := f.projects.CreateProject(ctx, ports.ProjectCreate{
		OrgID:      org.OrgID,
		Name:       "project-" + label,
		ClientPMID: pm.UserID,
	})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	file, err := f.projects.CreateFile(ctx, ports.FileCreate{
		ProjectID:  project.ProjectID,
		Name:       "dataset.jsonl",
		UploadedBy: pm.UserID,
		FileType:   "dataset",
	})
	if err != nil {
		t.Fatalf("create file: %v", err)
	}
	job, err := f.annotations.CreateJob(ctx, ports.AnnotationJobCreate{
		FileID:    file.FileID,
		ProjectID: project.ProjectID,
		Language:  "en",
	})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	return seeded{pm: pm, annotator: annotator, project: project, file: file, job: job}
}

func (f *fixture) assign(t *testing.T, jobID, userID uint64) ports.Assignment {
	t.Helper()
	assignment, err := f.annotations.CreateAssignment(context.Background(), ports.AssignmentCreate{
		JobID:  jobID,
		UserID: userID,
		Role:   "annotator",
	})
	if err != nil {
		t.Fatalf("create assignment: %v", err)
	}
	return assignment
}

func (f *fixture) lastEvent(t *testing.T, entityType string, entityID uint64) ports.AuditEvent {
	t.Helper()
	events, err := f.exports.ListEvents(context.Background(), entityType, entityID)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) == 0 {
		t.Fatalf("no events for %s %d", entityType, entityID)
	}
	return events[len(events)-1]
}

func TestUploadVersionActivatesAndLogs(t *testing.T) {
	f := newFixture(t)
	s := f.seed(t, "alpha")
	ctx := context.Background()

	first, err := f.svc.UploadVersion(ctx, UploadVersionInput{
		FileID:      s.file.FileID,
		UploadedBy:  s.pm.UserID,
		StoragePath: "files/1/v1",
	})
	if err != nil {
		t.Fatalf("UploadVersion() error = %v", err)
	}
	if first.VersionNumber != 1 {
		t.Fatalf("version_number = %d, want 1", first.VersionNumber)
	}

	file, err := f.projects.GetFile(ctx, s.file.FileID)
	if err != nil {
		t.Fatalf("GetFile() error = %v", err)
	}
	if file.ActiveVersionID == nil || *file.ActiveVersionID != first.VersionID {
		t.Fatalf("active_version_id = %v, want %d", file.ActiveVersionID, first.VersionID)
	}
	if event := f.lastEvent(t, "file", s.file.FileID); event.EventType != "uploaded" {
		t.Fatalf("event_type = %q, want uploaded", event.EventType)
	}

	second, err := f.svc.UploadVersion(ctx, UploadVersionInput{
		FileID:      s.file.FileID,
		UploadedBy:  s.pm.UserID,
		StoragePath: "files/1/v2",
	})
	if err != nil {
		t.Fatalf("UploadVersion() error = %v", err)
	}
	if second.VersionNumber != 2 {
		t.Fatalf("version_number = %d, want 2", second.VersionNumber)
	}

	file, err = f.projects.GetFile(ctx, s.file.FileID)
	if err != nil {
		t.Fatalf("GetFile() error = %v", err)
	}
	if file.ActiveVersionID == nil || *file.ActiveVersionID != second.VersionID {
		t.Fatalf("active_version_id = %v, want %d", file.ActiveVersionID, second.VersionID)
	}
	if event := f.lastEvent(t, "file", s.file.FileID); event.EventType != "reuploaded" {
		t.Fatalf("event_type = %q, want reuploaded", event.EventType)
	}
}

func TestStartAnnotationMovesJobAndAssignment(t *testing.T) {
	f := newFixture(t)
	s := f.seed(t, "alpha")
	ctx := context.Background()

	assignment := f.assign(t, s.job.JobID, s.annotator.UserID)

	job, err := f.svc.StartAnnotation(ctx, s.job.JobID, assignment.AssignmentID)
	if err != nil {
		t.Fatalf("StartAnnotation() error = %v", err)
	}
	if job.Status != "in_progress" {
		t.Fatalf("job status = %q, want in_progress", job.Status)
	}

	got, err := f.annotations.GetAssignment(ctx, assignment.AssignmentID)
	if err != nil {
		t.Fatalf("GetAssignment() error = %v", err)
	}
	if got.Status != "in_progress" {
		t.Fatalf("assignment status = %q, want in_progress", got.Status)
	}

	event := f.lastEvent(t, "annotation_job", s.job.JobID)
	if event.EventType != "annotation_started" {
		t.Fatalf("event_type = %q, want annotation_started", event.EventType)
	}
	if event.EventMetadata == nil || !strings.Contains(*event.EventMetadata, `"old_status":"not_started"`) {
		t.Fatalf("event_metadata = %v, want old_status not_started", event.EventMetadata)
	}
}

func TestStartAnnotationRejectsForeignAssignment(t *testing.T) {
	f := newFixture(t)
	s := f.seed(t, "alpha")
	other := f.seed(t, "beta")
	ctx := context.Background()

	assignment := f.assign(t, other.job.JobID, s.annotator.UserID)

	if _, err := f.svc.StartAnnotation(ctx, s.job.JobID, assignment.AssignmentID); err == nil {
		t.Fatal("StartAnnotation() with another job's assignment should fail")
	}
}

func TestApplyReviewDecisionApproved(t *testing.T) {
	f := newFixture(t)
	s := f.seed(t, "alpha")
	ctx := context.Background()

	assignment := f.assign(t, s.job.JobID, s.annotator.UserID)
	if _, err := f.svc.StartAnnotation(ctx, s.job.JobID, assignment.AssignmentID); err != nil {
		t.Fatalf("StartAnnotation() error = %v", err)
	}
	if _, err := f.svc.SubmitAnnotation(ctx, s.job.JobID, assignment.AssignmentID); err != nil {
		t.Fatalf("SubmitAnnotation() error = %v", err)
	}

	review, err := f.annotations.CreateReview(ctx, ports.ReviewCreate{JobID: s.job.JobID, ReviewerID: &s.pm.UserID})
	if err != nil {
		t.Fatalf("CreateReview() error = %v", err)
	}

	decided, err := f.svc.ApplyReviewDecision(ctx, ReviewDecisionInput{
		ReviewID: review.ReviewID,
		Decision: "approved",
	})
	if err != nil {
		t.Fatalf("ApplyReviewDecision() error = %v", err)
	}
	if decided.Status != "approved" {
		t.Fatalf("review status = %q, want approved", decided.Status)
	}

	job, err := f.annotations.GetJob(ctx, s.job.JobID)
	if err != nil {
		t.Fatalf("GetJob() error = %v", err)
	}
	if job.Status != "reviewed" {
		t.Fatalf("job status = %q, want reviewed", job.Status)
	}
	if job.ReviewStatus != "approved" {
		t.Fatalf("job review_status = %q, want approved", job.ReviewStatus)
	}
}

func TestApplyReviewDecisionValidation(t *testing.T) {
	f := newFixture(t)
	s := f.seed(t, "alpha")
	ctx := context.Background()

	review, err := f.annotations.CreateReview(ctx, ports.ReviewCreate{JobID: s.job.JobID})
	if err != nil {
		t.Fatalf("CreateReview() error = %v", err)
	}

	if _, err := f.svc.ApplyReviewDecision(ctx, ReviewDecisionInput{ReviewID: review.ReviewID, Decision: "maybe"}); !errors.Is(err, errReviewDecision) {
		t.Fatalf("decision maybe: error = %v, want errReviewDecision", err)
	}
	// Job still not_started: a verdict makes no sense yet.
	if _, err := f.svc.ApplyReviewDecision(ctx, ReviewDecisionInput{ReviewID: review.ReviewID, Decision: "approved"}); !errors.Is(err, errJobNotSubmitted) {
		t.Fatalf("unsubmitted job: error = %v, want errJobNotSubmitted", err)
	}
}

func TestRequestExportGeneratesStorageKey(t *testing.T) {
	f := newFixture(t)
	s := f.seed(t, "alpha")
	ctx := context.Background()

	version, err := f.svc.UploadVersion(ctx, UploadVersionInput{
		FileID:      s.file.FileID,
		UploadedBy:  s.pm.UserID,
		StoragePath: "files/1/v1",
	})
	if err != nil {
		t.Fatalf("UploadVersion() error = %v", err)
	}

	export, err := f.svc.RequestExport(ctx, RequestExportInput{
		ProjectID:      s.project.ProjectID,
		RequestedBy:    s.pm.UserID,
		FileVersionIDs: []uint64{version.VersionID},
	})
	if err != nil {
		t.Fatalf("RequestExport() error = %v", err)
	}
	if export.Status != "pending" {
		t.Fatalf("status = %q, want pending", export.Status)
	}
	wantPrefix := "exports/"
	if !strings.HasPrefix(export.StoragePath, wantPrefix) || !strings.HasSuffix(export.StoragePath, ".zip") {
		t.Fatalf("storage_path = %q, want %s<uuid>.zip", export.StoragePath, wantPrefix)
	}

	completed, err := f.svc.CompleteExport(ctx, export.ExportID, "sha256:deadbeef")
	if err != nil {
		t.Fatalf("CompleteExport() error = %v", err)
	}
	if completed.Status != "completed" {
		t.Fatalf("status = %q, want completed", completed.Status)
	}
	if completed.Checksum == nil || *completed.Checksum != "sha256:deadbeef" {
		t.Fatalf("checksum = %v, want sha256:deadbeef", completed.Checksum)
	}
}

func TestRequestExportRejectsForeignVersionAndRollsBack(t *testing.T) {
	f := newFixture(t)
	s := f.seed(t, "alpha")
	other := f.seed(t, "beta")
	ctx := context.Background()

	version, err := f.svc.UploadVersion(ctx, UploadVersionInput{
		FileID:      other.file.FileID,
		UploadedBy:  other.pm.UserID,
		StoragePath: "files/2/v1",
	})
	if err != nil {
		t.Fatalf("UploadVersion() error = %v", err)
	}

	_, err = f.svc.RequestExport(ctx, RequestExportInput{
		ProjectID:      s.project.ProjectID,
		RequestedBy:    s.pm.UserID,
		FileVersionIDs: []uint64{version.VersionID},
	})
	if !errors.Is(err, errVersionMismatch) {
		t.Fatalf("RequestExport() error = %v, want errVersionMismatch", err)
	}

	// The export row created before the mismatch must not survive the
	// transaction.
	var count int64
	if err := f.db.Model(&model.ExportLog{}).Count(&count).Error; err != nil {
		t.Fatalf("count export logs: %v", err)
	}
	if count != 0 {
		t.Fatalf("export_log rows = %d, want 0 after rollback", count)
	}
}

func TestRequestExportRequiresVersions(t *testing.T) {
	f := newFixture(t)
	s := f.seed(t, "alpha")

	_, err := f.svc.RequestExport(context.Background(), RequestExportInput{
		ProjectID:   s.project.ProjectID,
		RequestedBy: s.pm.UserID,
	})
	if !errors.Is(err, errNoVersions) {
		t.Fatalf("RequestExport() error = %v, want errNoVersions", err)
	}
}

func TestArchiveProjectLogsDeletion(t *testing.T) {
	f := newFixture(t)
	s := f.seed(t, "alpha")
	ctx := context.Background()

	project, err := f.svc.ArchiveProject(ctx, s.project.ProjectID, s.pm.UserID)
	if err != nil {
		t.Fatalf("ArchiveProject() error = %v", err)
	}
	if project.Status != "archived" {
		t.Fatalf("status = %q, want archived", project.Status)
	}
	if project.IsActive {
		t.Fatal("project still active after archive")
	}

	event := f.lastEvent(t, "project", s.project.ProjectID)
	if event.EventType != "deleted" {
		t.Fatalf("event_type = %q, want deleted", event.EventType)
	}
	if event.UserID == nil || *event.UserID != s.pm.UserID {
		t.Fatalf("event user_id = %v, want %d", event.UserID, s.pm.UserID)
	}
}

func TestRecentEventsTail(t *testing.T) {
	f := newFixture(t)
	s := f.seed(t, "alpha")
	ctx := context.Background()

	if _, err := f.svc.UploadVersion(ctx, UploadVersionInput{
		FileID:      s.file.FileID,
		UploadedBy:  s.pm.UserID,
		StoragePath: "files/1/v1",
	}); err != nil {
		t.Fatalf("UploadVersion() error = %v", err)
	}
	if _, err := f.svc.ArchiveProject(ctx, s.project.ProjectID, s.pm.UserID); err != nil {
		t.Fatalf("ArchiveProject() error = %v", err)
	}

	events, err := f.svc.RecentEvents(ctx, 1)
	if err != nil {
		t.Fatalf("RecentEvents() error = %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}
	if events[0].EventType != "deleted" {
		t.Fatalf("event_type = %q, want deleted (newest)", events[0].EventType)
	}
}
