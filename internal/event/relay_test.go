package event

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelay_Publish(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	sqlxDB := sqlx.NewDb(mockDB, "sqlmock")
	redisClient, redisMock := redismock.NewClientMock()

	relay := NewRelay(NewOutbox(sqlxDB), redisClient, time.Second)

	createdAt := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	row := Row{
		ID:        1,
		EventType: TypeClassBooked,
		Payload:   []byte(`{"user_id":10,"class_id":2}`),
		CreatedAt: createdAt,
	}

	expected, err := json.Marshal(envelope{
		ID:        row.ID,
		Type:      row.EventType,
		Payload:   json.RawMessage(row.Payload),
		CreatedAt: row.CreatedAt,
	})
	require.NoError(t, err)

	redisMock.ExpectLPush(Queue, expected).SetVal(1)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE domain_events SET published_at = NOW() WHERE id = $1")).
		WithArgs(row.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = relay.publish(context.Background(), row)
	require.NoError(t, err)
	assert.NoError(t, redisMock.ExpectationsWereMet())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRelay_PublishRedisDown(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	sqlxDB := sqlx.NewDb(mockDB, "sqlmock")
	redisClient, redisMock := redismock.NewClientMock()

	relay := NewRelay(NewOutbox(sqlxDB), redisClient, time.Second)

	row := Row{ID: 1, EventType: TypeClassBooked, Payload: []byte(`{}`), CreatedAt: time.Now()}

	redisMock.Regexp().ExpectLPush(Queue, `.*`).SetErr(assert.AnError)

	err = relay.publish(context.Background(), row)
	require.Error(t, err)
	// The row stays unpublished: no UPDATE reaches the database.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRelay_DrainEmptyOutbox(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	sqlxDB := sqlx.NewDb(mockDB, "sqlmock")
	redisClient, redisMock := redismock.NewClientMock()

	relay := NewRelay(NewOutbox(sqlxDB), redisClient, time.Second)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE published_at IS NULL")).
		WithArgs(relayBatchSize).
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_type", "payload", "created_at", "published_at"}))

	relay.drain(context.Background())

	assert.NoError(t, mock.ExpectationsWereMet())
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestNewRelay_DefaultsInterval(t *testing.T) {
	relay := NewRelay(nil, nil, 0)
	assert.Equal(t, time.Second, relay.interval)
}
