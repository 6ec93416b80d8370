package workers

import (
	"time"

	"gorm.io/gorm"
)

// process makes one pass over the queue rows matched by scope, handing each
// to fn. A row whose fn call fails has its attempt bookkeeping updated and
// stays queued for the next pass; a row handled without error is removed.
func process[T any](db *gorm.DB, scope func(*gorm.DB) *gorm.DB, fn func(*gorm.DB, T) error) error {
	var rows []T
	return db.Scopes(scope).FindInBatches(&rows, 100, func(db *gorm.DB, batch int) error {
		return forEach(rows, func(row T) error {
			start := time.Now()
			if err := fn(db, row); err != nil {
				return db.Model(row).UpdateColumns(map[string]any{
					"attempts":     gorm.Expr("attempts + 1"),
					"last_attempt": start,
					"last_result":  err.Error(),
				}).Error
			}
			return db.Delete(row).Error
		})
	}).Error
}

// forEach applies fn to each element, stopping at the first error.
func forEach[T any](a []T, fn func(T) error) error {
	for _, v := range a {
		if err := fn(v); err != nil {
			return err
		}
	}
	return nil
}
