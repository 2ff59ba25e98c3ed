package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestBumpNamespaceIncrements(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&CacheNamespace{}))

	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	v1, err := BumpNamespace(ctx, db, 1, NamespacePricing, "ops", "first publish", now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v1)

	v2, err := BumpNamespace(ctx, db, 2, NamespacePricing, "", "", now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), v2)

	var count int64
	require.NoError(t, db.Model(&CacheNamespace{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestNoopNeverHits(t *testing.T) {
	var c ReferenceCache = Noop{}
	var out string

	require.NoError(t, c.Set(context.Background(), "k", "v"))
	hit, err := c.Get(context.Background(), "k", &out)
	require.NoError(t, err)
	assert.False(t, hit)
}
