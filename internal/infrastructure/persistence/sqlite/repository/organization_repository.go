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

type OrganizationRepository struct {
	db     *gorm.DB
	policy audit.Policy
	now    func() time.Time
}

func NewOrganizationRepository(db *gorm.DB, policy audit.Policy) *OrganizationRepository {
	return &OrganizationRepository{db: db, policy: policy, now: utcNow}
}

func (r *OrganizationRepository) CreateOrganization(ctx context.Context, in ports.OrganizationCreate) (ports.Organization, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.Organization{}, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return ports.Organization{}, errors.New("organization name is required")
	}

	now := r.now()
	row := model.Organization{
		Name:        name,
		Description: in.Description,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.Organization{}, errs.Wrap(err, "insert organization")
	}
	return mapOrganization(row), nil
}

func (r *OrganizationRepository) GetOrganization(ctx context.Context, orgID uint64) (ports.Organization, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.Organization{}, err
	}

	var row model.Organization
	if err := db.First(&row, "org_id = ?", orgID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Organization{}, ports.ErrOrganizationNotFound
		}
		return ports.Organization{}, errs.Wrap(err, "query organization")
	}
	return mapOrganization(row), nil
}

func (r *OrganizationRepository) ListOrganizations(ctx context.Context, activeOnly bool) ([]ports.Organization, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Organization{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var rows []model.Organization
	if err := query.Order("org_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query organizations")
	}

	items := make([]ports.Organization, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapOrganization(row))
	}
	return items, nil
}

func (r *OrganizationRepository) UpdateOrganization(ctx context.Context, orgID uint64, patch ports.OrganizationPatch) (ports.Organization, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.Organization{}, err
	}

	var row model.Organization
	if err := db.First(&row, "org_id = ?", orgID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Organization{}, ports.ErrOrganizationNotFound
		}
		return ports.Organization{}, errs.Wrap(err, "load organization")
	}

	ch := audit.NewChanges()
	if patch.Name != nil {
		ch.Set("name", *patch.Name, row.Name)
	}
	if patch.Description != nil {
		ch.Set("description", patch.Description, row.Description)
	}
	if patch.IsActive != nil {
		ch.Set("is_active", *patch.IsActive, row.IsActive)
	}
	if patch.DeletedAt != nil {
		ch.Set("deleted_at", patch.DeletedAt, row.DeletedAt)
	}
	if ch.Empty() {
		return mapOrganization(row), nil
	}

	values := applyTouch(r.policy, model.Organization{}.TableName(), ch, row.UpdatedAt, r.now())
	if err := db.Model(&model.Organization{}).Where("org_id = ?", orgID).Updates(values).Error; err != nil {
		return ports.Organization{}, errs.Wrap(err, "update organization")
	}

	if err := db.First(&row, "org_id = ?", orgID).Error; err != nil {
		return ports.Organization{}, errs.Wrap(err, "reload organization")
	}
	return mapOrganization(row), nil
}

func (r *OrganizationRepository) CreateUser(ctx context.Context, in ports.UserCreate) (ports.User, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.User{}, err
	}

	email := strings.TrimSpace(in.Email)
	if email == "" {
		return ports.User{}, errors.New("user email is required")
	}

	now := r.now()
	row := model.User{
		Email:             email,
		OrgID:             in.OrgID,
		Availability:      in.Availability,
		LanguageExpertise: in.LanguageExpertise,
		SkillLevel:        in.SkillLevel,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.User{}, errs.Wrap(err, "insert user")
	}
	return mapUser(row), nil
}

func (r *OrganizationRepository) GetUser(ctx context.Context, userID uint64) (ports.User, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.User{}, err
	}
	var row model.User
	if err := db.First(&row, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.User{}, ports.ErrUserNotFound
		}
		return ports.User{}, errs.Wrap(err, "query user")
	}
	return mapUser(row), nil
}

func (r *OrganizationRepository) GetUserByEmail(ctx context.Context, email string) (ports.User, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.User{}, err
	}
	var row model.User
	if err := db.First(&row, "email = ?", strings.TrimSpace(email)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.User{}, ports.ErrUserNotFound
		}
		return ports.User{}, errs.Wrap(err, "query user by email")
	}
	return mapUser(row), nil
}

func (r *OrganizationRepository) UpdateUser(ctx context.Context, userID uint64, patch ports.UserPatch) (ports.User, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.User{}, err
	}

	var row model.User
	if err := db.First(&row, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.User{}, ports.ErrUserNotFound
		}
		return ports.User{}, errs.Wrap(err, "load user")
	}

	ch := audit.NewChanges()
	if patch.Email != nil {
		ch.Set("email", *patch.Email, row.Email)
	}
	if patch.OrgID != nil {
		ch.Set("org_id", patch.OrgID, row.OrgID)
	}
	if patch.Availability != nil {
		ch.Set("availability", patch.Availability, row.Availability)
	}
	if patch.LanguageExpertise != nil {
		ch.Set("language_expertise", patch.LanguageExpertise, row.LanguageExpertise)
	}
	if patch.SkillScore != nil {
		ch.Set("skill_score", patch.SkillScore, row.SkillScore)
	}
	if patch.SkillLevel != nil {
		ch.Set("skill_level", patch.SkillLevel, row.SkillLevel)
	}
	if patch.QAApprovalRate != nil {
		ch.Set("qa_approval_rate", patch.QAApprovalRate, row.QAApprovalRate)
	}
	if patch.CompletedTaskCount != nil {
		ch.Set("completed_task_count", *patch.CompletedTaskCount, row.CompletedTaskCount)
	}
	if patch.IsActive != nil {
		ch.Set("is_active", *patch.IsActive, row.IsActive)
	}
	if ch.Empty() {
		return mapUser(row), nil
	}

	values := applyTouch(r.policy, model.User{}.TableName(), ch, row.UpdatedAt, r.now())
	if err := db.Model(&model.User{}).Where("user_id = ?", userID).Updates(values).Error; err != nil {
		return ports.User{}, errs.Wrap(err, "update user")
	}

	if err := db.First(&row, "user_id = ?", userID).Error; err != nil {
		return ports.User{}, errs.Wrap(err, "reload user")
	}
	return mapUser(row), nil
}

func (r *OrganizationRepository) CreateRole(ctx context.Context, name string, description *string) (ports.RoleRecord, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.RoleRecord{}, err
	}

	now := r.now()
	row := model.Role{
		Name:        strings.TrimSpace(name),
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if row.Name == "" {
		return ports.RoleRecord{}, errors.New("role name is required")
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.RoleRecord{}, errs.Wrap(err, "insert role")
	}
	return mapRole(row), nil
}

// UpdateRole: role is untracked by the audit policy, so any update advances
// updated_at. The write still goes through applyTouch to keep the path
// uniform.
func (r *OrganizationRepository) UpdateRole(ctx context.Context, roleID uint64, patch ports.RolePatch) (ports.RoleRecord, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.RoleRecord{}, err
	}

	var row model.Role
	if err := db.First(&row, "role_id = ?", roleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.RoleRecord{}, ports.ErrRoleNotFound
		}
		return ports.RoleRecord{}, errs.Wrap(err, "load role")
	}

	ch := audit.NewChanges()
	if patch.Name != nil {
		ch.Set("name", *patch.Name, row.Name)
	}
	if patch.Description != nil {
		ch.Set("description", patch.Description, row.Description)
	}
	if ch.Empty() {
		return mapRole(row), nil
	}

	values := applyTouch(r.policy, model.Role{}.TableName(), ch, row.UpdatedAt, r.now())
	if err := db.Model(&model.Role{}).Where("role_id = ?", roleID).Updates(values).Error; err != nil {
		return ports.RoleRecord{}, errs.Wrap(err, "update role")
	}

	if err := db.First(&row, "role_id = ?", roleID).Error; err != nil {
		return ports.RoleRecord{}, errs.Wrap(err, "reload role")
	}
	return mapRole(row), nil
}

func (r *OrganizationRepository) CreatePermission(ctx context.Context, name string, description *string) (ports.PermissionRecord, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.PermissionRecord{}, err
	}

	now := r.now()
	row := model.Permission{
		Name:        strings.TrimSpace(name),
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if row.Name == "" {
		return ports.PermissionRecord{}, errors.New("permission name is required")
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.PermissionRecord{}, errs.Wrap(err, "insert permission")
	}
	return mapPermission(row), nil
}

func (r *OrganizationRepository) UpdatePermission(ctx context.Context, permissionID uint64, patch ports.PermissionPatch) (ports.PermissionRecord, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.PermissionRecord{}, err
	}

	var row model.Permission
	if err := db.First(&row, "permission_id = ?", permissionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.PermissionRecord{}, ports.ErrPermissionNotFound
		}
		return ports.PermissionRecord{}, errs.Wrap(err, "load permission")
	}

	ch := audit.NewChanges()
	if patch.Name != nil {
		ch.Set("name", *patch.Name, row.Name)
	}
	if patch.Description != nil {
		ch.Set("description", patch.Description, row.Description)
	}
	if ch.Empty() {
		return mapPermission(row), nil
	}

	values := applyTouch(r.policy, model.Permission{}.TableName(), ch, row.UpdatedAt, r.now())
	if err := db.Model(&model.Permission{}).Where("permission_id = ?", permissionID).Updates(values).Error; err != nil {
		return ports.PermissionRecord{}, errs.Wrap(err, "update permission")
	}

	if err := db.First(&row, "permission_id = ?", permissionID).Error; err != nil {
		return ports.PermissionRecord{}, errs.Wrap(err, "reload permission")
	}
	return mapPermission(row), nil
}

func (r *OrganizationRepository) AssignRole(ctx context.Context, userID, roleID uint64) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}
	link := model.UserRole{UserID: userID, RoleID: roleID}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error; err != nil {
		return errs.Wrap(err, "insert user role")
	}
	return nil
}

func (r *OrganizationRepository) GrantPermission(ctx context.Context, roleID, permissionID uint64) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}
	link := model.RolePermission{RoleID: roleID, PermissionID: permissionID}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error; err != nil {
		return errs.Wrap(err, "insert role permission")
	}
	return nil
}

func mapOrganization(row model.Organization) ports.Organization {
	return ports.Organization{
		OrgID:       row.OrgID,
		Name:        row.Name,
		Description: row.Description,
		IsActive:    row.IsActive,
		DeletedAt:   row.DeletedAt,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func mapUser(row model.User) ports.User {
	return ports.User{
		UserID:             row.UserID,
		Email:              row.Email,
		OrgID:              row.OrgID,
		Availability:       row.Availability,
		LanguageExpertise:  row.LanguageExpertise,
		SkillScore:         row.SkillScore,
		SkillLevel:         row.SkillLevel,
		QAApprovalRate:     row.QAApprovalRate,
		CompletedTaskCount: row.CompletedTaskCount,
		IsActive:           row.IsActive,
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}
}

func mapRole(row model.Role) ports.RoleRecord {
	return ports.RoleRecord{
		RoleID:      row.RoleID,
		Name:        row.Name,
		Description: row.Description,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func mapPermission(row model.Permission) ports.PermissionRecord {
	return ports.PermissionRecord{
		PermissionID: row.PermissionID,
		Name:         row.Name,
		Description:  row.Description,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}
