package repository

import (
	"context"
	"errors"
	"testing"

	"annoflow/internal/ports"
)

func TestUpdateOrganizationNameAdvancesUpdatedAt(t *testing.T) {
	orgs, _, _, _ := newTestRepos(t)
	ctx := context.Background()

	org, err := orgs.CreateOrganization(ctx, ports.OrganizationCreate{Name: "Acme"})
	if err != nil {
		t.Fatalf("CreateOrganization() error = %v", err)
	}
	if !org.UpdatedAt.Equal(testT0) {
		t.Fatalf("created org updated_at = %v, want %v", org.UpdatedAt, testT0)
	}

	orgs.now = fixedClock(testT1)
	name := "Acme Research"
	updated, err := orgs.UpdateOrganization(ctx, org.OrgID, ports.OrganizationPatch{Name: &name})
	if err != nil {
		t.Fatalf("UpdateOrganization() error = %v", err)
	}

	if updated.Name != name {
		t.Fatalf("name = %q, want %q", updated.Name, name)
	}
	if !updated.UpdatedAt.Equal(testT1) {
		t.Fatalf("updated_at = %v, want advanced to %v", updated.UpdatedAt, testT1)
	}
}

func TestUpdateOrganizationDeletedAtKeepsUpdatedAt(t *testing.T) {
	orgs, _, _, _ := newTestRepos(t)
	ctx := context.Background()

	org, err := orgs.CreateOrganization(ctx, ports.OrganizationCreate{Name: "Acme"})
	if err != nil {
		t.Fatalf("CreateOrganization() error = %v", err)
	}

	orgs.now = fixedClock(testT1)
	deletedAt := testT1
	updated, err := orgs.UpdateOrganization(ctx, org.OrgID, ports.OrganizationPatch{DeletedAt: &deletedAt})
	if err != nil {
		t.Fatalf("UpdateOrganization() error = %v", err)
	}

	if updated.DeletedAt == nil {
		t.Fatal("deleted_at not persisted")
	}
	if !updated.UpdatedAt.Equal(testT0) {
		t.Fatalf("updated_at = %v, want unchanged %v", updated.UpdatedAt, testT0)
	}
}

func TestUpdateUserCounterKeepsUpdatedAt(t *testing.T) {
	orgs, _, _, _ := newTestRepos(t)
	ctx := context.Background()

	user, err := orgs.CreateUser(ctx, ports.UserCreate{Email: "annotator@example.com"})
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	orgs.now = fixedClock(testT1)
	count := int64(12)
	updated, err := orgs.UpdateUser(ctx, user.UserID, ports.UserPatch{CompletedTaskCount: &count})
	if err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}

	if updated.CompletedTaskCount != count {
		t.Fatalf("completed_task_count = %d, want %d", updated.CompletedTaskCount, count)
	}
	if !updated.UpdatedAt.Equal(testT0) {
		t.Fatalf("updated_at = %v, want unchanged %v", updated.UpdatedAt, testT0)
	}
}

func TestUpdateUserSkillScoreAdvancesUpdatedAt(t *testing.T) {
	orgs, _, _, _ := newTestRepos(t)
	ctx := context.Background()

	user, err := orgs.CreateUser(ctx, ports.UserCreate{Email: "annotator@example.com"})
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	orgs.now = fixedClock(testT1)
	score := 4.2
	updated, err := orgs.UpdateUser(ctx, user.UserID, ports.UserPatch{SkillScore: &score})
	if err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}
	if !updated.UpdatedAt.Equal(testT1) {
		t.Fatalf("updated_at = %v, want advanced to %v", updated.UpdatedAt, testT1)
	}
}

func TestUpdateUserExpertiseSameContentKeepsUpdatedAt(t *testing.T) {
	orgs, _, _, _ := newTestRepos(t)
	ctx := context.Background()

	expertise := `{"en": 4.5}`
	user, err := orgs.CreateUser(ctx, ports.UserCreate{
		Email:             "annotator@example.com",
		LanguageExpertise: &expertise,
	})
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	orgs.now = fixedClock(testT1)
	// Distinct pointer, identical JSON document: not a change.
	same := `{"en": 4.5}`
	updated, err := orgs.UpdateUser(ctx, user.UserID, ports.UserPatch{LanguageExpertise: &same})
	if err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}
	if !updated.UpdatedAt.Equal(testT0) {
		t.Fatalf("updated_at = %v, want unchanged %v", updated.UpdatedAt, testT0)
	}
}

func TestUpdateRoleAlwaysAdvancesUpdatedAt(t *testing.T) {
	orgs, _, _, _ := newTestRepos(t)
	ctx := context.Background()

	role, err := orgs.CreateRole(ctx, "annotator", nil)
	if err != nil {
		t.Fatalf("CreateRole() error = %v", err)
	}

	orgs.now = fixedClock(testT1)
	// role is not in the audit policy: even a same-value write touches.
	name := role.Name
	updated, err := orgs.UpdateRole(ctx, role.RoleID, ports.RolePatch{Name: &name})
	if err != nil {
		t.Fatalf("UpdateRole() error = %v", err)
	}
	if !updated.UpdatedAt.Equal(testT1) {
		t.Fatalf("updated_at = %v, want advanced to %v for untracked table", updated.UpdatedAt, testT1)
	}
}

func TestAssignRoleIsIdempotent(t *testing.T) {
	orgs, _, _, _ := newTestRepos(t)
	ctx := context.Background()

	user, err := orgs.CreateUser(ctx, ports.UserCreate{Email: "annotator@example.com"})
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	role, err := orgs.CreateRole(ctx, "annotator", nil)
	if err != nil {
		t.Fatalf("CreateRole() error = %v", err)
	}

	if err := orgs.AssignRole(ctx, user.UserID, role.RoleID); err != nil {
		t.Fatalf("AssignRole() error = %v", err)
	}
	if err := orgs.AssignRole(ctx, user.UserID, role.RoleID); err != nil {
		t.Fatalf("AssignRole() second call error = %v", err)
	}
}

func TestGetUserByEmail(t *testing.T) {
	orgs, _, _, _ := newTestRepos(t)
	ctx := context.Background()

	created, err := orgs.CreateUser(ctx, ports.UserCreate{Email: "pm@example.com"})
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	got, err := orgs.GetUserByEmail(ctx, "pm@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	if got.UserID != created.UserID {
		t.Fatalf("user_id = %d, want %d", got.UserID, created.UserID)
	}

	if _, err := orgs.GetUserByEmail(ctx, "missing@example.com"); !errors.Is(err, ports.ErrUserNotFound) {
		t.Fatalf("GetUserByEmail(missing) error = %v, want ErrUserNotFound", err)
	}
}
