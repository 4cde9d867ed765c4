package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"annoflow/internal/domain/audit"
	"annoflow/internal/ports"
)

// dbFromContext joins an in-flight transaction when the unit of work put one
// in the context, otherwise uses the repository's base connection.
func dbFromContext(ctx context.Context, base *gorm.DB) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return base.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

// applyTouch is the single point in the write path where the audit policy
// runs: after the caller's intended mutation is fully collected in ch, before
// the UPDATE is built. It returns the final update map, with updated_at set
// to now when a meaningful column changed (or the table is untracked) and to
// the stored value otherwise, so the write carries the old timestamp forward
// unchanged.
//
// The updated_at key must always be present in the map: gorm only auto-bumps
// auto-update-time columns that the update map does not name.
func applyTouch(policy audit.Policy, table string, ch *audit.Changes, storedUpdatedAt, now time.Time) map[string]any {
	values := ch.Values()
	if policy.ShouldTouch(table, ch.Changed) {
		values["updated_at"] = now
	} else {
		values["updated_at"] = storedUpdatedAt
	}
	return values
}

func utcNow() time.Time {
	return time.Now().UTC()
}
