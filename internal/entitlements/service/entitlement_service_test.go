package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bid2Bid/bid2bid-backend/internal/entitlements/domain"
	"github.com/Bid2Bid/bid2bid-backend/internal/entitlements/repository"
)

func setupGate(t *testing.T) (*EntitlementService, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	svc := NewEntitlementService(
		repository.NewSubscriberRepository(db),
		repository.NewStatusCache(client, time.Minute),
	)
	return svc, mock, db
}

func statusRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"subscribed", "subscription_tier", "subscription_end"})
}

func TestStatusFailsClosedOnMissingRecord(t *testing.T) {
	svc, mock, _ := setupGate(t)

	mock.ExpectQuery(`SELECT subscribed`).
		WithArgs("user-404").
		WillReturnRows(statusRows())

	assert.False(t, svc.Subscribed(context.Background(), "user-404"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatusFailsClosedOnStorageError(t *testing.T) {
	svc, mock, _ := setupGate(t)

	mock.ExpectQuery(`SELECT subscribed`).
		WithArgs("user-1").
		WillReturnError(sql.ErrConnDone)

	assert.False(t, svc.Subscribed(context.Background(), "user-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatusExpiryOverridesStaleFlag(t *testing.T) {
	svc, mock, _ := setupGate(t)
	svc.now = func() time.Time { return time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC) }

	lapsed := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT subscribed`).
		WithArgs("user-1").
		WillReturnRows(statusRows().AddRow(true, "premium", lapsed))

	status := svc.Status(context.Background(), "user-1")
	assert.False(t, status.Subscribed, "a lapsed subscription_end wins over the stored flag")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatusCachesLookups(t *testing.T) {
	svc, mock, _ := setupGate(t)

	end := time.Now().Add(24 * time.Hour).UTC()
	mock.ExpectQuery(`SELECT subscribed`).
		WithArgs("user-1").
		WillReturnRows(statusRows().AddRow(true, "premium", end))

	assert.True(t, svc.Subscribed(context.Background(), "user-1"))

	// second check is served from the cache; sqlmock would fail on an
	// unexpected second query
	assert.True(t, svc.Subscribed(context.Background(), "user-1"))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatusCacheHitRespectsExpiry(t *testing.T) {
	svc, mock, _ := setupGate(t)

	end := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return end.Add(-time.Hour) }

	mock.ExpectQuery(`SELECT subscribed`).
		WithArgs("user-1").
		WillReturnRows(statusRows().AddRow(true, "premium", end))
	assert.True(t, svc.Subscribed(context.Background(), "user-1"))

	// the end date passes while the snapshot is still cached; the gate
	// must not stay open until the TTL runs out
	svc.now = func() time.Time { return end.Add(time.Hour) }
	assert.False(t, svc.Subscribed(context.Background(), "user-1"))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateInvalidatesCache(t *testing.T) {
	svc, mock, _ := setupGate(t)

	mock.ExpectQuery(`SELECT subscribed`).
		WithArgs("user-1").
		WillReturnRows(statusRows())
	assert.False(t, svc.Subscribed(context.Background(), "user-1"))

	end := time.Now().Add(30 * 24 * time.Hour).UTC()
	mock.ExpectExec(`INSERT INTO subscribers`).
		WithArgs("user-1", true, "premium", &end).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, svc.Update(context.Background(), "user-1", domain.Status{
		Subscribed:      true,
		Tier:            "premium",
		SubscriptionEnd: &end,
	}))

	mock.ExpectQuery(`SELECT subscribed`).
		WithArgs("user-1").
		WillReturnRows(statusRows().AddRow(true, "premium", end))
	assert.True(t, svc.Subscribed(context.Background(), "user-1"))

	require.NoError(t, mock.ExpectationsWereMet())
}
