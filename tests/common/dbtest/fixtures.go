//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// bcrypt hash of "password123"
const testPasswordHash = "$2a$12$uhAjVE9f92IGYv3E25pJNetg.27lVt0p7jmLWjqjmhOg92ldPS0A."

func CreateTestUser(t *testing.T, db DBLike, email, role string) uuid.UUID {
	t.Helper()

	userID := uuid.New()
	ctx := context.Background()

	tag, err := db.Exec(ctx, "INSERT INTO users (id, email, password_hash, role, is_active) VALUES ($1, $2, $3, $4, true) ON CONFLICT (email) DO NOTHING",
		userID, email, testPasswordHash, role)
	require.NoError(t, err)

	if tag.RowsAffected() == 0 {
		_ = db.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&userID)
	}

	return userID
}

func CreateTestSubscription(t *testing.T, db DBLike, userID uuid.UUID, routeID int32, semester, status string) uuid.UUID {
	t.Helper()

	subscriptionID := uuid.New()
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := db.Exec(ctx,
		"INSERT INTO subscriptions (id, user_id, route_id, semester, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $6)",
		subscriptionID, userID, routeID, semester, status, now)
	require.NoError(t, err)

	return subscriptionID
}

func CreateTestTrip(t *testing.T, db DBLike, routeID int32, subscriptionID, userID *uuid.UUID, date, kind, status string) uuid.UUID {
	t.Helper()

	tripID := uuid.New()
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := db.Exec(ctx,
		"INSERT INTO trips (id, route_id, subscription_id, user_id, date, kind, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5::date, $6, $7, $8, $8)",
		tripID, routeID, subscriptionID, userID, date, kind, status, now)
	require.NoError(t, err)

	return tripID
}

// SeedReferenceData is a hook for fixed reference rows. The schema currently
// has none, so it only verifies connectivity.
func SeedReferenceData(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return pool.Ping(ctx)
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables and reseeds reference data
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	if _, err := pool.Exec(ctx, sqlAny.(string)); err != nil {
		return err
	}

	return SeedReferenceData(pool)
}
