package model

import "time"

type Organization struct {
	OrgID       uint64     `gorm:"column:org_id;primaryKey;autoIncrement"`
	Name        string     `gorm:"column:name;type:text;not null;uniqueIndex:uq_org_name"`
	Description *string    `gorm:"column:description;type:text"`
	IsActive    bool       `gorm:"column:is_active;not null;default:1"`
	DeletedAt   *time.Time `gorm:"column:deleted_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;not null"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;not null"`

	Users    []User    `gorm:"foreignKey:OrgID;references:OrgID"`
	Projects []Project `gorm:"foreignKey:OrgID;references:OrgID"`
}

func (Organization) TableName() string {
	return "organization"
}

type User struct {
	UserID uint64  `gorm:"column:user_id;primaryKey;autoIncrement"`
	Email  string  `gorm:"column:email;type:text;not null;uniqueIndex:uq_user_email"`
	OrgID  *uint64 `gorm:"column:org_id;index"`

	// Availability and LanguageExpertise hold opaque JSON documents, e.g.
	// {"en": 4.5, "zh": 3.0} for expertise.
	Availability       *string  `gorm:"column:availability;type:text"`
	LanguageExpertise  *string  `gorm:"column:language_expertise;type:text"`
	SkillScore         *float64 `gorm:"column:skill_score"`
	SkillLevel         *string  `gorm:"column:skill_level;type:text"`
	QAApprovalRate     *float64 `gorm:"column:qa_approval_rate"`
	CompletedTaskCount int64    `gorm:"column:completed_task_count;not null;default:0"`

	IsActive  bool      `gorm:"column:is_active;not null;default:1"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`

	Organization *Organization `gorm:"foreignKey:OrgID;references:OrgID;constraint:OnDelete:SET NULL"`
	Assignments  []Assignment  `gorm:"foreignKey:UserID;references:UserID;constraint:OnDelete:CASCADE"`
	Roles        []Role        `gorm:"many2many:user_roles;foreignKey:UserID;joinForeignKey:UserID;references:RoleID;joinReferences:RoleID"`
}

func (User) TableName() string {
	return "user"
}

// Role and Permission are deliberately absent from the audit policy: every
// update to them advances updated_at.
type Role struct {
	RoleID      uint64    `gorm:"column:role_id;primaryKey;autoIncrement"`
	Name        string    `gorm:"column:name;type:text;not null;uniqueIndex:uq_role_name"`
	Description *string   `gorm:"column:description;type:text"`
	CreatedAt   time.Time `gorm:"column:created_at;not null"`
	UpdatedAt   time.Time `gorm:"column:updated_at;not null"`

	Permissions []Permission `gorm:"many2many:role_permissions;foreignKey:RoleID;joinForeignKey:RoleID;references:PermissionID;joinReferences:PermissionID"`
}

func (Role) TableName() string {
	return "role"
}

type Permission struct {
	PermissionID uint64    `gorm:"column:permission_id;primaryKey;autoIncrement"`
	Name         string    `gorm:"column:name;type:text;not null;uniqueIndex:uq_permission_name"`
	Description  *string   `gorm:"column:description;type:text"`
	CreatedAt    time.Time `gorm:"column:created_at;not null"`
	UpdatedAt    time.Time `gorm:"column:updated_at;not null"`
}

func (Permission) TableName() string {
	return "permission"
}

type UserRole struct {
	UserID uint64 `gorm:"column:user_id;primaryKey"`
	RoleID uint64 `gorm:"column:role_id;primaryKey"`
}

func (UserRole) TableName() string {
	return "user_roles"
}

type RolePermission struct {
	RoleID       uint64 `gorm:"column:role_id;primaryKey"`
	PermissionID uint64 `gorm:"column:permission_id;primaryKey"`
}

func (RolePermission) TableName() string {
	return "role_permissions"
}
