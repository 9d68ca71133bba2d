//go:build integration

package database

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestConnectAgainstRealPostgres runs the full Connect path (connect + run
// migrations) against a throwaway postgres container, rather than the
// mocked paths exercised elsewhere. Build with -tags=integration; requires
// a working Docker daemon, which is why it is excluded from the default
// test run.
func TestConnectAgainstRealPostgres(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "username",
			"POSTGRES_PASSWORD": "password",
			"POSTGRES_DB":       "rakuten_materializer_test",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	defer container.Terminate(ctx)

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("container port: %v", err)
	}

	dsn := "postgres://username:password@" + host + ":" + port.Port() + "/rakuten_materializer_test?sslmode=disable"

	db, err := Connect(dsn)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		t.Fatalf("ping after migrations: %v", err)
	}

	var tableCount int
	query := `SELECT count(*) FROM information_schema.tables WHERE table_name = 'products_origin'`
	if err := db.GetContext(ctx, &tableCount, query); err != nil {
		t.Fatalf("inspect schema: %v", err)
	}
	if tableCount != 1 {
		t.Fatalf("expected migrations to create products_origin, found %d matching tables", tableCount)
	}
}
