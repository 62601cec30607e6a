package db_test

import (
	"context"
	"testing"

	"github.com/habiliai/edudash/entity"
	"github.com/habiliai/edudash/errors"
	"github.com/habiliai/edudash/internal/db"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	gormDB, err := db.OpenDB("sqlite::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, db.CloseDB(gormDB)) })
	require.NoError(t, db.AutoMigrate(context.Background(), gormDB))
	return gormDB
}

func TestOpenSessionReusesContextSession(t *testing.T) {
	gormDB := openTestDB(t)

	ctx, first := db.OpenSession(context.Background(), gormDB)
	_, second := db.OpenSession(ctx, gormDB)
	require.Same(t, first, second)
}

func TestInTransactionJoinsNestedSessions(t *testing.T) {
	gormDB := openTestDB(t)
	ctx := context.Background()

	err := db.InTransaction(ctx, gormDB, func(ctx context.Context, tx *gorm.DB) error {
		_, nested := db.OpenSession(ctx, gormDB)
		require.Same(t, tx, nested)

		if err := nested.Create(&entity.Profile{ID: "parent-1", FirstName: "Pat"}).Error; err != nil {
			return err
		}
		return errors.New("abort")
	})
	require.EqualError(t, err, "abort")

	var count int64
	require.NoError(t, gormDB.Model(&entity.Profile{}).Count(&count).Error)
	require.Zero(t, count)

	require.NoError(t, db.InTransaction(ctx, gormDB, func(ctx context.Context, tx *gorm.DB) error {
		return tx.Create(&entity.Profile{ID: "parent-1", FirstName: "Pat"}).Error
	}))
	require.NoError(t, gormDB.Model(&entity.Profile{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}
