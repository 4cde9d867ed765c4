package schema

import (
	"fmt"
	"sync"

	gormschema "gorm.io/gorm/schema"

	"annoflow/internal/domain/audit"
	"annoflow/internal/infrastructure/persistence/sqlite/model"
)

// ValidatePolicy checks the audit policy against the parsed model schemas:
// every tracked table must have a model, every configured column must exist
// on it, and the table must carry an updated_at column for the rule to
// rewrite. Called once at bootstrap; a mismatch aborts startup rather than
// silently freezing timestamps at runtime.
func ValidatePolicy(policy audit.Policy) error {
	namer := gormschema.NamingStrategy{}
	cache := &sync.Map{}

	columnsByTable := make(map[string]map[string]struct{})
	for _, m := range model.All() {
		s, err := gormschema.Parse(m, cache, namer)
		if err != nil {
			return fmt.Errorf("parse model schema %T: %w", m, err)
		}
		cols := make(map[string]struct{}, len(s.Fields))
		for _, f := range s.Fields {
			if f.DBName != "" {
				cols[f.DBName] = struct{}{}
			}
		}
		columnsByTable[s.Table] = cols
	}

	for _, table := range policy.Tables() {
		cols, ok := columnsByTable[table]
		if !ok {
			return fmt.Errorf("audit policy tracks table %q but no model maps to it", table)
		}
		if _, ok := cols["updated_at"]; !ok {
			return fmt.Errorf("audit policy tracks table %q which has no updated_at column", table)
		}
		tracked, _ := policy.Tracked(table)
		for _, col := range tracked {
			if _, ok := cols[col]; !ok {
				return fmt.Errorf("audit policy column %q does not exist on table %q", col, table)
			}
		}
	}
	return nil
}
