package model

// All returns every model in migration-safe order (referenced tables first).
// Used by schema migration and by policy validation at startup.
func All() []any {
	return []any{
		&Organization{},
		&User{},
		&Role{},
		&Permission{},
		&UserRole{},
		&RolePermission{},
		&Project{},
		&File{},
		&FileVersion{},
		&AnnotationJob{},
		&JobPreviousAnnotator{},
		&Assignment{},
		&Review{},
		&ExportLog{},
		&ExportedFile{},
		&EventLog{},
	}
}
