package migrations_test

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/app/models"
	_ "github.com/shashiranjanraj/storefront/database/migrations"
	"github.com/shashiranjanraj/storefront/pkg/migration"
	"github.com/shashiranjanraj/storefront/pkg/testkit"
)

func TestMigrateUpAndDown(t *testing.T) {
	db := testkit.SQLite(t)
	r := migration.New(db, io.Discard)

	n, err := r.Run()
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	for _, m := range models.All() {
		assert.True(t, db.Migrator().HasTable(m), "%T", m)
	}

	n, err = r.Run()
	require.NoError(t, err)
	assert.Zero(t, n, "second run is a no-op")

	n, err = r.Rollback()
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.False(t, db.Migrator().HasTable(&models.Order{}))
	assert.False(t, db.Migrator().HasTable(&models.User{}))
}
