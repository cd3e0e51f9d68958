//go:build integration

package web

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-forum-notifier/internal/infra/db/postgres/pgtest"
)

var (
	testDB   *pgtest.DB
	testPool *pgxpool.Pool
)

func TestMain(m *testing.M) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	db, err := pgtest.Start(ctx, "host_api_test")
	cancel()
	if err != nil {
		log.Fatalf("test database: %v", err)
	}
	testDB, testPool = db, db.Pool

	code := m.Run()
	db.Stop()
	os.Exit(code)
}

func cleanup(t *testing.T) {
	t.Helper()
	if err := testDB.Truncate(context.Background()); err != nil {
		t.Fatalf("truncate: %v", err)
	}
}
