package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListSites(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, name FROM sites ORDER BY name`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(2, "Alpha Estate").
			AddRow(1, "Brookside Village"))

	repo := NewSiteRepo(db)
	sites, err := repo.ListSites(context.Background())
	require.NoError(t, err)

	require.Len(t, sites, 2)
	assert.Equal(t, Site{ID: 2, Name: "Alpha Estate"}, sites[0])
	assert.Equal(t, Site{ID: 1, Name: "Brookside Village"}, sites[1])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListSitesEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, name FROM sites ORDER BY name`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	repo := NewSiteRepo(db)
	sites, err := repo.ListSites(context.Background())
	require.NoError(t, err)

	// Empty result is a non-nil slice so it encodes as [] not null
	assert.NotNil(t, sites)
	assert.Empty(t, sites)
}

func TestListInactiveUnits(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT s.unit_number`).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"unit_number"}).
			AddRow("101").
			AddRow("102").
			AddRow("12B"))

	repo := NewSiteRepo(db)
	units, err := repo.ListInactiveUnits(context.Background(), 3)
	require.NoError(t, err)

	assert.Equal(t, []string{"101", "102", "12B"}, units)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListInactiveUnitsNone(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT s.unit_number`).
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows([]string{"unit_number"}))

	repo := NewSiteRepo(db)
	units, err := repo.ListInactiveUnits(context.Background(), 99)
	require.NoError(t, err)

	assert.NotNil(t, units)
	assert.Empty(t, units)
}

func TestGetSiteName(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT name FROM sites WHERE id = \$1`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Alpha Estate"))

	repo := NewSiteRepo(db)
	name, err := repo.GetSiteName(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Alpha Estate", name)
}

func TestGetSiteNameNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT name FROM sites WHERE id = \$1`).
		WithArgs(99999).
		WillReturnRows(sqlmock.NewRows([]string{"name"}))

	repo := NewSiteRepo(db)
	_, err = repo.GetSiteName(context.Background(), 99999)
	assert.ErrorIs(t, err, ErrSiteNotFound)
}
