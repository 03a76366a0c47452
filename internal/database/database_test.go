package database

import (
	"errors"
	"testing"

	"github.com/perkstack/core/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Services pre-check slugs before inserting, but two concurrent creates can
// both pass the pre-check and race to the unique index. The loser must come
// back as gorm.ErrDuplicatedKey so handlers can answer 400 instead of 500,
// which only happens when the dialect error is translated.
func TestDuplicateKeyTranslation(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, Migrate(db))

	require.NoError(t, db.Create(&models.CategoryModel{Name: "First", Slug: "same-slug"}).Error)

	err = db.Create(&models.CategoryModel{Name: "Second", Slug: "same-slug"}).Error
	require.Error(t, err)
	require.True(t, errors.Is(err, gorm.ErrDuplicatedKey))
}
