// Package ordering implements the display-order protocol shared by every
// orderable resource: next-position assignment on create and transactional
// batch reorder.
package ordering

import (
	"database/sql"
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrSetMismatch is returned when a reorder names ids that do not all
// resolve within the target scope.
var ErrSetMismatch = errors.New("one or more items do not exist in the target scope")

// Item is one position assignment in a reorder request.
type Item struct {
	ID           string `json:"id"           binding:"required"`
	DisplayOrder int    `json:"displayOrder"`
}

// NextDisplayOrder computes COALESCE(MAX(display_order), 0) + 1 over the
// given scoped query. Read-then-write with no lock; two concurrent creates
// on the same scope can race to the same value. Ordering is advisory and
// list queries tiebreak on created_at, so the duplicate is tolerated.
func NextDisplayOrder(tx *gorm.DB) (int, error) {
	var max sql.NullInt64
	if err := tx.Select("MAX(display_order)").Scan(&max).Error; err != nil {
		return 0, err
	}
	if !max.Valid {
		return 1, nil
	}
	return int(max.Int64) + 1, nil
}

// Reorder applies a batch of position updates to the model behind scope,
// atomically. Existence is checked by comparing the count of rows matching
// the requested id set with the number of requested ids; the per-row
// updates are dispatched concurrently within one transaction, which is safe
// because the id set is disjoint per call.
func Reorder(db *gorm.DB, model interface{}, scope func(*gorm.DB) *gorm.DB, items []Item) error {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}

	var found int64
	count := db.Model(model).Where("id IN ?", ids)
	if scope != nil {
		count = scope(count)
	}
	if err := count.Count(&found).Error; err != nil {
		return err
	}
	if found != int64(len(ids)) {
		return ErrSetMismatch
	}

	now := time.Now()
	return db.Transaction(func(tx *gorm.DB) error {
		errCh := make(chan error, len(items))
		for _, it := range items {
			go func(it Item) {
				errCh <- tx.Model(model).
					Where("id = ?", it.ID).
					Updates(map[string]interface{}{
						"display_order": it.DisplayOrder,
						"updated_at":    now,
					}).Error
			}(it)
		}
		for range items {
			if err := <-errCh; err != nil {
				return err
			}
		}
		return nil
	})
}
