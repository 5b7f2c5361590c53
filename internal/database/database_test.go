package database

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/lexcase/caseflow/internal/config"
)

func TestPostgresDSN(t *testing.T) {
	dsn := PostgresDSN(config.PostgresConfig{
		Host:     "db",
		Port:     "5432",
		User:     "caseflow",
		Password: "secret",
		DBName:   "firm",
		SSLMode:  "disable",
	})

	want := "host=db port=5432 user=caseflow password=secret dbname=firm sslmode=disable"
	if dsn != want {
		t.Errorf("PostgresDSN() = %q, want %q", dsn, want)
	}
}

func TestRetryStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := retry(ctx, "test", func() error {
		calls++
		return errors.New("not ready")
	}, zap.NewNop())

	if err == nil {
		t.Fatal("expected error from cancelled retry")
	}
	if calls > 1 {
		t.Errorf("operation called %d times after cancel, want at most 1", calls)
	}
}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := retry(context.Background(), "test", func() error {
		calls++
		if calls < 3 {
			return errors.New("not ready")
		}
		return nil
	}, zap.NewNop())

	if err != nil {
		t.Fatalf("retry() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestStoresCloseWithoutBackend(t *testing.T) {
	var s Stores
	if err := s.Close(context.Background()); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
