package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"summitly-data/internal/domain"
)

func setupUnitsMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresUnitsRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewPostgresUnitsRepository(db)

	return db, mock, repo
}

// unitTestColumns 与 unitColumns 的列顺序保持一致
var unitTestColumns = []string{
	"unit_id", "project_id", "mls_number", "unit_number",
	"model_name", "beds", "baths", "area_sqft", "price",
	"floor", "exposure", "floor_plan_url", "available",
	"created_at", "updated_at",
}

func TestGetUnit_Success(t *testing.T) {
	db, mock, repo := setupUnitsMockDB(t)
	defer db.Close()

	unitID := "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"
	projectID := "11111111-1111-1111-1111-111111111111"

	rows := sqlmock.NewRows(unitTestColumns).AddRow(
		unitID, projectID, "C5551234", "1203",
		"The Birch", 2.0, 2.0, 840, 724900.0,
		"12", "SE", "https://cdn.summitly.ca/plans/birch.pdf", true,
		"2026-02-10T12:00:00Z", "2026-02-10T12:00:00Z",
	)

	mock.ExpectQuery(`SELECT`).
		WithArgs(unitID).
		WillReturnRows(rows)

	unit, err := repo.GetUnit(context.Background(), unitID)

	require.NoError(t, err)
	assert.Equal(t, unitID, unit.UnitID)
	assert.Equal(t, projectID, unit.ProjectID)
	assert.True(t, unit.MLSNumber.Valid)
	assert.Equal(t, "C5551234", unit.MLSNumber.String)
	assert.Equal(t, "1203", unit.UnitNumber)
	assert.InDelta(t, 2.0, unit.Beds, 1e-9)
	assert.Equal(t, 840, unit.AreaSqft)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUnit_NullMLSNumber(t *testing.T) {
	db, mock, repo := setupUnitsMockDB(t)
	defer db.Close()

	unitID := "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"

	rows := sqlmock.NewRows(unitTestColumns).AddRow(
		unitID, "11111111-1111-1111-1111-111111111111", nil, "PH01",
		"", 3.0, 2.5, 1210, 1399000.0,
		"PH", "NW", "", true,
		"2026-02-10T12:00:00Z", "2026-02-10T12:00:00Z",
	)

	mock.ExpectQuery(`SELECT`).
		WithArgs(unitID).
		WillReturnRows(rows)

	unit, err := repo.GetUnit(context.Background(), unitID)

	require.NoError(t, err)
	assert.False(t, unit.MLSNumber.Valid)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListUnits_AvailableFilter(t *testing.T) {
	db, mock, repo := setupUnitsMockDB(t)
	defer db.Close()

	projectID := "11111111-1111-1111-1111-111111111111"

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM units`).
		WithArgs(projectID, true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	rows := sqlmock.NewRows(unitTestColumns).
		AddRow("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa", projectID, nil, "805",
			"The Alder", 1.0, 1.0, 550, 559900.0,
			"8", "E", "", true,
			"2026-02-10T12:00:00Z", "2026-02-10T12:00:00Z").
		AddRow("bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb", projectID, nil, "902",
			"The Birch", 2.0, 2.0, 840, 734900.0,
			"9", "S", "", true,
			"2026-02-10T12:00:00Z", "2026-02-10T12:00:00Z")

	mock.ExpectQuery(`ORDER BY floor, unit_number`).
		WithArgs(projectID, true, 50, 0).
		WillReturnRows(rows)

	available := true
	units, total, err := repo.ListUnits(context.Background(), projectID, UnitFilters{Available: &available}, 1, 50)

	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, units, 2)
	assert.Equal(t, "805", units[0].UnitNumber)
	assert.Equal(t, "902", units[1].UnitNumber)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUnit_DuplicateMLS(t *testing.T) {
	db, mock, repo := setupUnitsMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO units`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "units_mls_number_key"})

	unit := &domain.Unit{
		ProjectID:  "11111111-1111-1111-1111-111111111111",
		UnitNumber: "1203",
		MLSNumber:  sql.NullString{String: "C5551234", Valid: true},
	}

	_, err := repo.CreateUnit(context.Background(), unit)

	assert.ErrorIs(t, err, ErrDuplicateMLS)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUnit_ProjectGone(t *testing.T) {
	db, mock, repo := setupUnitsMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO units`).
		WillReturnError(&pq.Error{Code: "23503", Constraint: "units_project_id_fkey"})

	unit := &domain.Unit{
		ProjectID:  "99999999-9999-9999-9999-999999999999",
		UnitNumber: "101",
	}

	_, err := repo.CreateUnit(context.Background(), unit)

	assert.ErrorIs(t, err, ErrProjectGone)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertUnitByNumber_ReturnsExistingID(t *testing.T) {
	db, mock, repo := setupUnitsMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`ON CONFLICT \(project_id, unit_number\)`).
		WillReturnRows(sqlmock.NewRows([]string{"unit_id"}).AddRow("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"))

	unit := &domain.Unit{
		ProjectID:  "11111111-1111-1111-1111-111111111111",
		UnitNumber: "1203",
		Price:      719900,
	}

	unitID, err := repo.UpsertUnitByNumber(context.Background(), unit)

	require.NoError(t, err)
	assert.Equal(t, "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa", unitID)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateUnit_NotFound(t *testing.T) {
	db, mock, repo := setupUnitsMockDB(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE units SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateUnit(context.Background(), "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa", &domain.Unit{UnitNumber: "1203"})

	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteUnit_Success(t *testing.T) {
	db, mock, repo := setupUnitsMockDB(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM units`).
		WithArgs("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.DeleteUnit(context.Background(), "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa")

	require.NoError(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}
