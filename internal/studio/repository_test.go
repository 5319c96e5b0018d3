package studio

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(mockDB, "sqlmock")
	return NewRepository(sqlxDB), mock, func() { mockDB.Close() }
}

func TestRepository_CreateLocation(t *testing.T) {
	repo, mock, closer := setupMockRepo(t)
	defer closer()

	rows := sqlmock.NewRows([]string{"id", "name", "address", "timezone", "created_at"}).
		AddRow(1, "Downtown", "1 Main St", "America/New_York", time.Now())

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO locations (name, address, timezone)")).
		WithArgs("Downtown", "1 Main St", "America/New_York").
		WillReturnRows(rows)

	location, err := repo.CreateLocation(context.Background(), "Downtown", "1 Main St", "America/New_York")
	require.NoError(t, err)
	assert.Equal(t, 1, location.ID)
	assert.Equal(t, "Downtown", location.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetLocationByID(t *testing.T) {
	repo, mock, closer := setupMockRepo(t)
	defer closer()

	rows := sqlmock.NewRows([]string{"id", "name", "address", "timezone", "created_at"}).
		AddRow(2, "Uptown", "9 High St", "America/Chicago", time.Now())

	mock.ExpectQuery(regexp.QuoteMeta("FROM locations")).
		WithArgs(2).
		WillReturnRows(rows)

	location, err := repo.GetLocationByID(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Uptown", location.Name)
}

func TestRepository_CreateCoach(t *testing.T) {
	repo, mock, closer := setupMockRepo(t)
	defer closer()

	rows := sqlmock.NewRows([]string{"id", "location_id", "name", "email", "active", "created_at"}).
		AddRow(3, 1, "Sam Ortiz", "sam@fitify.io", true, time.Now())

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO coaches (location_id, name, email)")).
		WithArgs(1, "Sam Ortiz", "sam@fitify.io").
		WillReturnRows(rows)

	coach, err := repo.CreateCoach(context.Background(), 1, "Sam Ortiz", "sam@fitify.io")
	require.NoError(t, err)
	assert.True(t, coach.Active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SetCoachActive(t *testing.T) {
	repo, mock, closer := setupMockRepo(t)
	defer closer()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE coaches SET active = $1 WHERE id = $2")).
		WithArgs(false, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SetCoachActive(context.Background(), 3, false)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SetCoachActive_NotFound(t *testing.T) {
	repo, mock, closer := setupMockRepo(t)
	defer closer()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE coaches SET active = $1 WHERE id = $2")).
		WithArgs(false, 99).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetCoachActive(context.Background(), 99, false)
	assert.ErrorIs(t, err, ErrCoachNotFoundOrUnchanged)
}

func TestRepository_ListCoachesByLocation(t *testing.T) {
	repo, mock, closer := setupMockRepo(t)
	defer closer()

	rows := sqlmock.NewRows([]string{"id", "location_id", "name", "email", "active", "created_at"}).
		AddRow(3, 1, "Alex Kim", "alex@fitify.io", true, time.Now()).
		AddRow(4, 1, "Sam Ortiz", "sam@fitify.io", false, time.Now())

	mock.ExpectQuery(regexp.QuoteMeta("FROM coaches")).
		WithArgs(1).
		WillReturnRows(rows)

	coaches, err := repo.ListCoachesByLocation(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, coaches, 2)
	assert.Equal(t, "Alex Kim", coaches[0].Name)
}
