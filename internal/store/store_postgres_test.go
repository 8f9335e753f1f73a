package store

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/loykin/apiscenario/internal/store/postgresql"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// waitForPostgresDSN pings the DSN until it responds or timeout elapses (pgx stdlib).
func waitForPostgresDSN(dsn string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		db, err := sql.Open("pgx", dsn)
		if err == nil {
			pingErr := db.Ping()
			_ = db.Close()
			if pingErr == nil {
				return nil
			}
			lastErr = pingErr
		} else {
			lastErr = err
		}
		time.Sleep(500 * time.Millisecond)
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("timeout waiting for postgres")
	}
	return lastErr
}

// Integration test with PostgreSQL via testcontainers
func TestPostgresStore_RecordAndList(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	tc.SkipIfProviderIsNotHealthy(t)
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	req := tc.ContainerRequest{
		Image:        "postgres:16",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "apiscenario_test",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections"),
		),
	}
	pg, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		// Skip on CI envs that cannot run containers, rather than failing whole suite
		t.Skipf("skipping Postgres container test: %v", err)
		return
	}
	defer func() { _ = pg.Terminate(ctx) }()

	host, err := pg.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := pg.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("container port: %v", err)
	}
	pgCfg := postgresql.Config{Host: host, Port: port.Int(), User: "test", Password: "test", DBName: "apiscenario_test"}
	dsn, err := pgCfg.ConnString()
	if err != nil {
		t.Fatal(err)
	}
	if err := waitForPostgresDSN(dsn, 30*time.Second); err != nil {
		t.Fatalf("postgres not ready: %v", err)
	}

	s, err := Open(ctx, Config{Type: DriverPostgres, Postgres: pgCfg, TablePrefix: "it"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = s.Close() }()

	// Ensure is idempotent
	if err := s.Ensure(ctx); err != nil {
		t.Fatalf("ensure twice: %v", err)
	}

	base := time.Now().UTC().Truncate(time.Millisecond)
	if err := s.RecordRun(ctx, Run{ID: "1", Feature: "Users", Scenario: "list", Passed: true, Duration: time.Second, StartedAt: base}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := s.RecordRun(ctx, Run{ID: "2", Feature: "Users", Scenario: "create", FailedStep: "step", Error: "boom", StartedAt: base.Add(time.Second)}); err != nil {
		t.Fatalf("record: %v", err)
	}

	runs, err := s.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "2" || runs[0].Passed || runs[0].Error != "boom" {
		t.Fatalf("unexpected runs: %+v", runs)
	}
	if !runs[1].Passed || runs[1].Duration != time.Second || !runs[1].StartedAt.Equal(base) {
		t.Fatalf("unexpected first run: %+v", runs[1])
	}
}
