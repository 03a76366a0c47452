package ordering

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type orderedRow struct {
	ID           string `gorm:"primaryKey"`
	ScopeKey     string
	DisplayOrder int
	UpdatedAt    time.Time
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&orderedRow{}))
	return db
}

func TestNextDisplayOrderEmpty(t *testing.T) {
	db := newTestDB(t)
	next, err := NextDisplayOrder(db.Model(&orderedRow{}))
	require.NoError(t, err)
	assert.Equal(t, 1, next)
}

func TestNextDisplayOrderMaxPlusOne(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&orderedRow{ID: "a", DisplayOrder: 4}).Error)
	require.NoError(t, db.Create(&orderedRow{ID: "b", DisplayOrder: 9}).Error)

	next, err := NextDisplayOrder(db.Model(&orderedRow{}))
	require.NoError(t, err)
	assert.Equal(t, 10, next)
}

func TestNextDisplayOrderScoped(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&orderedRow{ID: "a", ScopeKey: "x", DisplayOrder: 7}).Error)
	require.NoError(t, db.Create(&orderedRow{ID: "b", ScopeKey: "y", DisplayOrder: 2}).Error)

	next, err := NextDisplayOrder(db.Model(&orderedRow{}).Where("scope_key = ?", "y"))
	require.NoError(t, err)
	assert.Equal(t, 3, next)
}

func TestReorder(t *testing.T) {
	db := newTestDB(t)
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, db.Create(&orderedRow{ID: id}).Error)
	}

	err := Reorder(db, &orderedRow{}, nil, []Item{
		{ID: "a", DisplayOrder: 3},
		{ID: "b", DisplayOrder: 1},
		{ID: "c", DisplayOrder: 2},
	})
	require.NoError(t, err)

	var rows []orderedRow
	require.NoError(t, db.Order("display_order ASC").Find(&rows).Error)
	require.Len(t, rows, 3)
	assert.Equal(t, "b", rows[0].ID)
	assert.Equal(t, "c", rows[1].ID)
	assert.Equal(t, "a", rows[2].ID)
}

func TestReorderUnknownID(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&orderedRow{ID: "a"}).Error)

	err := Reorder(db, &orderedRow{}, nil, []Item{
		{ID: "a", DisplayOrder: 1},
		{ID: "ghost", DisplayOrder: 2},
	})
	assert.ErrorIs(t, err, ErrSetMismatch)

	var row orderedRow
	require.NoError(t, db.First(&row, "id = ?", "a").Error)
	assert.Equal(t, 0, row.DisplayOrder)
}

func TestReorderOutOfScope(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&orderedRow{ID: "a", ScopeKey: "x"}).Error)
	require.NoError(t, db.Create(&orderedRow{ID: "b", ScopeKey: "y"}).Error)

	scope := func(tx *gorm.DB) *gorm.DB { return tx.Where("scope_key = ?", "x") }
	err := Reorder(db, &orderedRow{}, scope, []Item{
		{ID: "a", DisplayOrder: 1},
		{ID: "b", DisplayOrder: 2},
	})
	assert.ErrorIs(t, err, ErrSetMismatch)
}

type cappedRow struct {
	ID           string `gorm:"primaryKey"`
	ScopeKey     string
	DisplayOrder int
	UpdatedAt    time.Time
}

func (cappedRow) TableName() string { return "capped_rows" }

// A failure partway through the batch must leave every position untouched.
// The check constraint rejects one of the requested positions after the
// id pre-check has already passed.
func TestReorderRollsBackOnPartialFailure(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Exec(
		`CREATE TABLE capped_rows (
			id text PRIMARY KEY,
			scope_key text,
			display_order integer CHECK (display_order < 100),
			updated_at datetime
		)`).Error)

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, db.Create(&cappedRow{ID: id, DisplayOrder: i + 1}).Error)
	}

	err := Reorder(db, &cappedRow{}, nil, []Item{
		{ID: "a", DisplayOrder: 3},
		{ID: "b", DisplayOrder: 100},
		{ID: "c", DisplayOrder: 1},
	})
	require.Error(t, err)

	var rows []cappedRow
	require.NoError(t, db.Order("id ASC").Find(&rows).Error)
	require.Len(t, rows, 3)
	for i, row := range rows {
		assert.Equal(t, i+1, row.DisplayOrder, row.ID)
	}
}
