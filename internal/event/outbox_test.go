package event

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

func setupMockOutbox(t *testing.T) (*Outbox, *sqlx.DB, sqlmock.Sqlmock, func()) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(mockDB, "sqlmock")
	return NewOutbox(sqlxDB), sqlxDB, mock, func() { mockDB.Close() }
}

func TestOutbox_AppendTx(t *testing.T) {
	outbox, sqlxDB, mock, closer := setupMockOutbox(t)
	defer closer()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO domain_events (event_type, payload)")).
		WithArgs(TypeClassBooked, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO domain_events (event_type, payload)")).
		WithArgs(TypeClassFull, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	tx, err := sqlxDB.BeginTxx(context.Background(), nil)
	require.NoError(t, err)

	err = outbox.AppendTx(context.Background(), tx,
		Record{Type: TypeClassBooked, Payload: ClassBooked{UserID: 10, ClassID: 1}},
		Record{Type: TypeClassFull, Payload: ClassFull{ClassID: 1, WaitlistSize: 3}},
	)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutbox_ListPending(t *testing.T) {
	outbox, _, mock, closer := setupMockOutbox(t)
	defer closer()

	createdAt := time.Now()
	rows := sqlmock.NewRows([]string{"id", "event_type", "payload", "created_at", "published_at"}).
		AddRow(int64(1), TypeClassBooked, []byte(`{"user_id":10}`), createdAt, nil).
		AddRow(int64(2), TypeBookingCancelled, []byte(`{"user_id":11}`), createdAt, nil)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE published_at IS NULL")).
		WithArgs(100).
		WillReturnRows(rows)

	pending, err := outbox.ListPending(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, TypeClassBooked, pending[0].EventType)
	assert.Nil(t, pending[0].PublishedAt)
}

func TestOutbox_MarkPublished(t *testing.T) {
	outbox, _, mock, closer := setupMockOutbox(t)
	defer closer()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE domain_events SET published_at = NOW() WHERE id = $1")).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := outbox.MarkPublished(context.Background(), 1)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutbox_PendingCount(t *testing.T) {
	outbox, _, mock, closer := setupMockOutbox(t)
	defer closer()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM domain_events WHERE published_at IS NULL")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	count, err := outbox.PendingCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}
