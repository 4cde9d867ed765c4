package ports

import (
	"context"
	"errors"
	"time"
)

var (
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrRoleNotFound         = errors.New("role not found")
	ErrPermissionNotFound   = errors.New("permission not found")
)

type Organization struct {
	OrgID       uint64
	Name        string
	Description *string
	IsActive    bool
	DeletedAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type OrganizationCreate struct {
	Name        string
	Description *string
}

// Patch types follow one convention everywhere: nil leaves the column
// unchanged; a set pointer is an intended write of that column.
type OrganizationPatch struct {
	Name        *string
	Description *string
	IsActive    *bool
	DeletedAt   *time.Time
}

type User struct {
	UserID             uint64
	Email              string
	OrgID              *uint64
	Availability       *string
	LanguageExpertise  *string
	SkillScore         *float64
	SkillLevel         *string
	QAApprovalRate     *float64
	CompletedTaskCount int64
	IsActive           bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type UserCreate struct {
	Email             string
	OrgID             *uint64
	Availability      *string
	LanguageExpertise *string
	SkillLevel        *string
}

type UserPatch struct {
	Email              *string
	OrgID              *uint64
	Availability       *string
	LanguageExpertise  *string
	SkillScore         *float64
	SkillLevel         *string
	QAApprovalRate     *float64
	CompletedTaskCount *int64
	IsActive           *bool
}

type RoleRecord struct {
	RoleID      uint64
	Name        string
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type RolePatch struct {
	Name        *string
	Description *string
}

type PermissionRecord struct {
	PermissionID uint64
	Name         string
	Description  *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type PermissionPatch struct {
	Name        *string
	Description *string
}

type OrganizationRepository interface {
	CreateOrganization(ctx context.Context, in OrganizationCreate) (Organization, error)
	GetOrganization(ctx context.Context, orgID uint64) (Organization, error)
	ListOrganizations(ctx context.Context, activeOnly bool) ([]Organization, error)
	UpdateOrganization(ctx context.Context, orgID uint64, patch OrganizationPatch) (Organization, error)

	CreateUser(ctx context.Context, in UserCreate) (User, error)
	GetUser(ctx context.Context, userID uint64) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	UpdateUser(ctx context.Context, userID uint64, patch UserPatch) (User, error)

	CreateRole(ctx context.Context, name string, description *string) (RoleRecord, error)
	UpdateRole(ctx context.Context, roleID uint64, patch RolePatch) (RoleRecord, error)
	CreatePermission(ctx context.Context, name string, description *string) (PermissionRecord, error)
	UpdatePermission(ctx context.Context, permissionID uint64, patch PermissionPatch) (PermissionRecord, error)
	AssignRole(ctx context.Context, userID, roleID uint64) error
	GrantPermission(ctx context.Context, roleID, permissionID uint64) error
}
