package cache

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const NamespacePricing = "pricing"

// CacheNamespace is the durable version counter behind cache invalidation.
type CacheNamespace struct {
	ID           snowflake.ID `gorm:"primaryKey"`
	NamespaceKey string       `gorm:"type:text;not null;uniqueIndex"`
	VersionNo    int64        `gorm:"not null"`
	UpdatedAt    time.Time    `gorm:"not null"`
	UpdatedBy    *string      `gorm:"type:text"`
	Note         *string      `gorm:"type:text"`
}

func (CacheNamespace) TableName() string { return "cache_namespaces" }

// BumpNamespace increments the namespace version, creating it at 1, and
// returns the new version.
func BumpNamespace(ctx context.Context, db *gorm.DB, id snowflake.ID, key, updatedBy, note string, at time.Time) (int64, error) {
	row := CacheNamespace{
		ID:           id,
		NamespaceKey: key,
		VersionNo:    1,
		UpdatedAt:    at,
		UpdatedBy:    optional(updatedBy),
		Note:         optional(note),
	}
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "namespace_key"}},
		DoUpdates: clause.Assignments(map[string]any{
			"version_no": gorm.Expr("cache_namespaces.version_no + 1"),
			"updated_at": at,
			"updated_by": row.UpdatedBy,
			"note":       row.Note,
		}),
	}).Create(&row).Error
	if err != nil {
		return 0, err
	}

	var current CacheNamespace
	if err := db.WithContext(ctx).Where("namespace_key = ?", key).Take(&current).Error; err != nil {
		return 0, err
	}
	return current.VersionNo, nil
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
