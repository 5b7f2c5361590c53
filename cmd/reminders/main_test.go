package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/lexcase/caseflow/internal/config"
	"github.com/lexcase/caseflow/internal/service"
)

func TestParsePasses(t *testing.T) {
	passes, err := parsePasses(nil)
	if err != nil || len(passes) != len(service.Passes) {
		t.Fatalf("no args: passes = %v, err = %v", passes, err)
	}

	passes, err = parsePasses([]string{"payments", "court"})
	if err != nil {
		t.Fatal(err)
	}
	if len(passes) != 2 || passes[0] != service.PassPromisedPayments || passes[1] != service.PassCourtDates {
		t.Errorf("passes = %v", passes)
	}

	if _, err := parsePasses([]string{"weekly"}); !errors.Is(err, service.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestRunReturnsSetupErrors(t *testing.T) {
	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Database.Driver = "postgres"
	cfg.Database.Postgres.Host = "127.0.0.1"
	cfg.Database.Postgres.Port = "1"

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	core, logs := observer.New(zap.InfoLevel)
	var out bytes.Buffer

	err = run(ctx, cfg, service.Passes, &out, zap.New(core))
	if err == nil {
		t.Fatal("run() error = nil, want database setup error")
	}
	if out.Len() != 0 {
		t.Errorf("output = %q, want nothing printed", out.String())
	}
	if logs.FilterMessage("Running reminder passes").Len() != 0 {
		t.Error("passes should not start when setup fails")
	}
}
