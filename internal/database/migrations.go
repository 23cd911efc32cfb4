package database

import (
	"fmt"

	"gorm.io/gorm"
)

// AddIndexes adds the composite indexes AutoMigrate cannot express through
// struct tags alone. Existing indexes are left untouched.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Drives listWorkspaces ordering
		{"workspace_members", "idx_workspace_members_user_accessed", "user_id, last_accessed_at"},
		// Active invite listing per workspace
		{"workspace_invites", "idx_workspace_invites_workspace_expires", "workspace_id, expires_at"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}
