package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"annoflow/internal/domain/audit"
	"annoflow/internal/infrastructure/persistence/sqlite/model"
	"annoflow/internal/ports"
)

var (
	testT0 = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	testT1 = testT0.Add(time.Hour)
)

func setupDB(t *testing.T) *gorm.DB {
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
	return db
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

// seedProject creates org -> pm user -> project with the repository clock
// frozen at testT0 and returns the project.
func seedProject(t *testing.T, orgs *OrganizationRepository, projects *ProjectRepository) ports.Project {
	t.Helper()
	ctx := context.Background()

	org, err := orgs.CreateOrganization(ctx, ports.OrganizationCreate{Name: "org-" + t.Name()})
	if err != nil {
		t.Fatalf("create organization: %v", err)
	}
	pm, err := orgs.CreateUser(ctx, ports.UserCreate{Email: t.Name() + "-pm@example.com", OrgID: &org.OrgID})
	if err != nil {
		t.Fatalf("create pm user: %v", err)
	}
	project, err := projects.CreateProject(ctx, ports.ProjectCreate{
		OrgID:      org.OrgID,
		Name:       "project-" + t.Name(),
		ClientPMID: pm.UserID,
	})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	return project
}

func seedFile(t *testing.T, orgs *OrganizationRepository, projects *ProjectRepository) ports.File {
	t.Helper()
	ctx := context.Background()

	project := seedProject(t, orgs, projects)
	file, err := projects.CreateFile(ctx, ports.FileCreate{
		ProjectID:  project.ProjectID,
		Name:       "dataset.jsonl",
		UploadedBy: project.ClientPMID,
		FileType:   "dataset",
	})
	if err != nil {
		t.Fatalf("create file: %v", err)
	}
	return file
}

func newTestRepos(t *testing.T) (*OrganizationRepository, *ProjectRepository, *AnnotationRepository, *ExportRepository) {
	t.Helper()

	db := setupDB(t)
	policy := audit.Default()

	orgs := NewOrganizationRepository(db, policy)
	projects := NewProjectRepository(db, policy)
	annotations := NewAnnotationRepository(db, policy)
	exports := NewExportRepository(db, policy)

	orgs.now = fixedClock(testT0)
	projects.now = fixedClock(testT0)
	annotations.now = fixedClock(testT0)
	exports.now = fixedClock(testT0)

	return orgs, projects, annotations, exports
}
