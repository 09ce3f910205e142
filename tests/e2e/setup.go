//go:build e2e

package e2e

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"shuttle-service/cmd/bootstrap"
	"shuttle-service/cmd/bootstrap/components"
	"shuttle-service/internal/handler/middleware"
	"shuttle-service/internal/infra/db"
	"shuttle-service/internal/pkg/config"
	"shuttle-service/tests/common/dbtest"

	"github.com/docker/go-connections/nat"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for wait.ForSQL
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/fx"
)

const (
	pgUser     = "test"
	pgPassword = "testpass"
	pgPort     = "5432/tcp"
)

// One postgres container is shared by every suite in the process; each test
// process then creates its own database inside it.
var (
	pgOnce      sync.Once
	pgContainer testcontainers.Container
)

type hostPort struct {
	host string
	port nat.Port
}

func (hp hostPort) adminDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/postgres?sslmode=disable",
		pgUser, pgPassword, hp.host, hp.port.Port())
}

// setupE2EEnvironment brings up postgres, creates a fresh database with the
// schema applied, and assembles the application against it.
func setupE2EEnvironment(t *testing.T) (*pgxpool.Pool, *gin.Engine, config.Config) {
	gin.SetMode(gin.TestMode)
	startPostgresOnce(t)

	addr, err := containerAddress(pgContainer, pgPort)
	require.NoError(t, err, "reading postgres container address")

	pool, dbConfig := prepareDatabase(t, addr)

	router, cfg, app := buildApp(pool, dbConfig)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.Stop(ctx); err != nil {
			slog.Warn("stopping fx application", "error", err.Error())
		}
	})

	slog.Info("e2e environment ready", "postgres", addr.host+":"+addr.port.Port())
	return pool, router, cfg
}

func startPostgresOnce(t *testing.T) {
	pgOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 180*time.Second)
		defer cancel()

		container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			Started: true,
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "postgres:17",
				ExposedPorts: []string{pgPort},
				Env: map[string]string{
					"POSTGRES_USER":     pgUser,
					"POSTGRES_PASSWORD": pgPassword,
					"POSTGRES_DB":       "postgres",
				},
				// Data lives in RAM and durability is off: throwaway databases.
				Tmpfs: map[string]string{"/var/lib/postgresql/data": "rw,size=512m"},
				Cmd: []string{
					"postgres",
					"-c", "fsync=off",
					"-c", "full_page_writes=off",
					"-c", "synchronous_commit=off",
					"-c", "shared_buffers=256MB",
					"-c", "max_connections=200",
					"-c", "log_statement=none",
				},
				WaitingFor: wait.ForSQL(pgPort, "pgx", func(host string, port nat.Port) string {
					return hostPort{host: host, port: port}.adminDSN()
				}).WithStartupTimeout(60 * time.Second),
				Name:   "postgres-e2e",
				Labels: map[string]string{"purpose": "e2e-tests"},
			},
		})
		require.NoError(t, err, "starting postgres container")
		pgContainer = container

		t.Cleanup(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := pgContainer.Terminate(ctx); err != nil {
				slog.Warn("terminating postgres container", "error", err.Error())
			}
		})
	})
}

func containerAddress(c testcontainers.Container, port string) (hostPort, error) {
	ctx := context.Background()
	mapped, err := c.MappedPort(ctx, nat.Port(port))
	if err != nil {
		return hostPort{}, err
	}
	host, err := c.Host(ctx)
	if err != nil {
		return hostPort{}, err
	}
	return hostPort{host: host, port: mapped}, nil
}

// prepareDatabase creates a database unique to this test process, applies the
// schema and returns a pool connected to it. The database is dropped on
// cleanup.
func prepareDatabase(t *testing.T, addr hostPort) (*pgxpool.Pool, config.DBConfig) {
	dbName := "testdb_" + strings.ReplaceAll(uuid.NewString(), "-", "")

	createDatabase(t, addr, dbName)
	t.Cleanup(func() { dropDatabase(addr, dbName) })

	dbConfig := config.DBConfig{
		Host:     addr.host,
		Port:     addr.port.Port(),
		User:     pgUser,
		Password: pgPassword,
		DBName:   dbName,
		SSLMode:  "disable",
	}

	pool, _, err := db.Connect(dbConfig)
	require.NoError(t, err, "connecting to test database")

	require.NoError(t, applyMigrations(t, dbConfig), "applying migrations")
	require.NoError(t, dbtest.SeedReferenceData(pool), "seeding reference data")

	return pool, dbConfig
}

func createDatabase(t *testing.T, addr hostPort, dbName string) {
	// Generous timeout: the retry backoffs alone can take several seconds.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	adminPool, err := pgxpool.New(ctx, addr.adminDSN())
	require.NoError(t, err, "opening admin connection")
	defer adminPool.Close()

	// Concurrent test processes can make postgres refuse briefly; back off
	// and retry.
	var createErr error
	for attempt := range 5 {
		if attempt > 0 {
			time.Sleep(min(time.Duration(attempt)*500*time.Millisecond, 3*time.Second))
		}
		if _, createErr = adminPool.Exec(ctx, "CREATE DATABASE "+dbName); createErr == nil {
			return
		}
		slog.Warn("retrying test database creation", "attempt", attempt+1, "error", createErr.Error())
	}
	require.NoError(t, createErr, "creating test database")
}

func dropDatabase(addr hostPort, dbName string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	adminPool, err := pgxpool.New(ctx, addr.adminDSN())
	if err != nil {
		slog.Warn("opening cleanup connection", "database", dbName, "error", err.Error())
		return
	}
	defer adminPool.Close()

	if _, err := adminPool.Exec(ctx, "DROP DATABASE IF EXISTS "+dbName); err != nil {
		slog.Warn("dropping test database", "database", dbName, "error", err.Error())
	}
}

func applyMigrations(t *testing.T, dbConfig config.DBConfig) error {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	pool, cleanup, err := db.Connect(dbConfig)
	if err != nil {
		return fmt.Errorf("connecting for migration: %w", err)
	}
	defer cleanup()

	for _, file := range []string{"migrations/001_initial_schema.sql"} {
		sqlContent, err := readFromRepoRoot(file)
		if err != nil {
			return err
		}
		if _, err := pool.Exec(ctx, string(sqlContent)); err != nil {
			return fmt.Errorf("executing migration %s: %w", file, err)
		}
	}
	return nil
}

// readFromRepoRoot resolves a repo-root-relative path from whichever package
// directory `go test` is running in.
func readFromRepoRoot(file string) ([]byte, error) {
	var lastErr error
	for _, up := range []string{".", "..", filepath.Join("..", ".."), filepath.Join("..", "..", "..")} {
		content, err := os.ReadFile(filepath.Join(up, file))
		if err == nil {
			return content, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("locating %s from the test working directory: %w", file, lastErr)
}

// buildApp assembles the application the same way cmd/main.go does, with the
// test pool and config supplied instead of the environment-driven modules.
func buildApp(pool *pgxpool.Pool, dbConfig config.DBConfig) (*gin.Engine, config.Config, *fx.App) {
	var router *gin.Engine
	var cfg config.Config

	testConfig := config.NewTestConfig()
	testConfig.DB = dbConfig

	app := fx.New(
		fx.Supply(pool, testConfig),
		fx.Provide(func() *gin.Engine { return gin.New() }),
		fx.Provide(func(c config.Config) *slog.Logger {
			return middleware.NewLogger(c.Log).GetSlogLogger()
		}),
		bootstrap.JWTModule,
		bootstrap.EventsModule,
		bootstrap.TasksModule,
		components.PersistenceModule,
		components.UseCaseModule,
		components.HandlerModule,

		fx.Populate(&router, &cfg),

		fx.NopLogger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		panic(fmt.Sprintf("starting fx app for tests: %v", err))
	}
	if router == nil {
		panic("fx application produced no router")
	}

	return router, cfg, app
}

// SharedSuite carries the pieces every e2e package needs. Suites embed it and
// get a clean database before each subtest.
type SharedSuite struct {
	suite.Suite
	Router *gin.Engine
	DB     *pgxpool.Pool
	Config config.Config
}

func (s *SharedSuite) SetupSuite() {
	s.DB, s.Router, s.Config = setupE2EEnvironment(s.T())
}

func (s *SharedSuite) SetupSubTest() {
	require.NoError(s.T(), dbtest.ResetDB(s.DB), "resetting database state")
}
