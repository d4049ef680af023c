// Package testhelpers provides shared infrastructure for integration tests.
package testhelpers

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for migrations
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/evinsights/analyst-engine/pkg/database"
)

// PostgresImage is the image used for integration test databases.
const PostgresImage = "postgres:16-alpine"

// TestDB holds a shared test database container and connection pool. The
// database carries the EV registration schema plus the engine's own tables.
type TestDB struct {
	Container testcontainers.Container
	Pool      *pgxpool.Pool
	DB        *database.DB
	ConnStr   string
}

var (
	sharedTestDB     *TestDB
	sharedTestDBOnce sync.Once
	sharedTestDBErr  error
)

// GetTestDB returns a shared PostgreSQL container for integration tests.
// The container is created once and reused across all tests in the run.
func GetTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	sharedTestDBOnce.Do(func() {
		sharedTestDB, sharedTestDBErr = setupTestDB()
	})

	if sharedTestDBErr != nil {
		t.Fatalf("Failed to setup test database: %v", sharedTestDBErr)
	}

	return sharedTestDB
}

func setupTestDB() (*TestDB, error) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        PostgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "ev_test",
			"POSTGRES_USER":     "analyst",
			"POSTGRES_PASSWORD": "test_password",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start test container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	connStr := fmt.Sprintf("postgres://analyst:test_password@%s:%s/ev_test?sslmode=disable",
		host, port.Port())

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err := pool.Ping(ctx); err == nil {
			break
		}
		time.Sleep(500 * time.Millisecond)
	}

	if err := seedRegistrationSchema(ctx, pool); err != nil {
		return nil, fmt.Errorf("failed to seed test schema: %w", err)
	}

	db, err := database.NewConnection(ctx, &database.Config{URL: connStr, MaxConnections: 5})
	if err != nil {
		return nil, fmt.Errorf("failed to create engine pool: %w", err)
	}

	sqlDB, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open migration connection: %w", err)
	}
	defer sqlDB.Close()

	if err := database.RunMigrations(sqlDB, migrationsDir(), zap.NewNop()); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &TestDB{
		Container: container,
		Pool:      pool,
		DB:        db,
		ConnStr:   connStr,
	}, nil
}

// seedRegistrationSchema creates a miniature copy of the EV registration
// tables with a handful of rows so introspection and query execution have
// something real to work against.
func seedRegistrationSchema(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS model (
			model_id SERIAL PRIMARY KEY,
			make TEXT NOT NULL,
			model TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS location (
			location_id SERIAL PRIMARY KEY,
			city TEXT NOT NULL,
			county TEXT NOT NULL,
			state TEXT NOT NULL,
			postal_code TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS vehicle (
			vin TEXT PRIMARY KEY,
			model_year INT NOT NULL,
			ev_type TEXT NOT NULL,
			electric_range INT NOT NULL,
			cafv_eligibility TEXT NOT NULL,
			model_id INT NOT NULL REFERENCES model(model_id),
			location_id INT NOT NULL REFERENCES location(location_id)
		)`,
		`TRUNCATE vehicle, model, location RESTART IDENTITY CASCADE`,
		`INSERT INTO model (make, model) VALUES
			('TESLA', 'MODEL 3'),
			('TESLA', 'MODEL S'),
			('NISSAN', 'LEAF'),
			('CHEVROLET', 'BOLT EV')`,
		`INSERT INTO location (city, county, state, postal_code) VALUES
			('Seattle', 'King', 'WA', '98101'),
			('Bellevue', 'King', 'WA', '98004'),
			('Spokane', 'Spokane', 'WA', '99201')`,
		`INSERT INTO vehicle (vin, model_year, ev_type, electric_range, cafv_eligibility, model_id, location_id) VALUES
			('5YJ3E1EA0KF000001', 2019, 'Battery Electric Vehicle (BEV)', 220, 'Clean Alternative Fuel Vehicle Eligible', 1, 1),
			('5YJ3E1EA0KF000002', 2021, 'Battery Electric Vehicle (BEV)', 263, 'Eligibility unknown as battery range has not been researched', 1, 2),
			('5YJSA1E40FF000003', 2015, 'Battery Electric Vehicle (BEV)', 208, 'Clean Alternative Fuel Vehicle Eligible', 2, 1),
			('1N4AZ0CP0FC000004', 2015, 'Battery Electric Vehicle (BEV)', 84, 'Clean Alternative Fuel Vehicle Eligible', 3, 3),
			('1G1FY6S00K4000005', 2019, 'Battery Electric Vehicle (BEV)', 238, 'Clean Alternative Fuel Vehicle Eligible', 4, 2)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("seed statement failed: %w", err)
		}
	}
	return nil
}
