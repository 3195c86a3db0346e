package repository

import (
	"fmt"

	"gorm.io/gorm"
)

// Initialize resets the store to its benchmark fixture: rows above the
// seeded id bounds are dropped and every 50th seeded user is re-banned.
// Destructive, test harness use only.
func Initialize(db *gorm.DB) error {
	stmts := []string{
		"DELETE FROM users WHERE id > 1000",
		"DELETE FROM posts WHERE id > 10000",
		"DELETE FROM comments WHERE id > 100000",
		"UPDATE users SET del_flg = 0",
		"UPDATE users SET del_flg = 1 WHERE id % 50 = 0",
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("initialize statement failed: %w", err)
		}
	}
	return nil
}
