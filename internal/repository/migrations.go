package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
//
// The case and user tables belong to the case management service; they are
// created here so a fresh database is usable, and are only ever read.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS users (
	id          TEXT PRIMARY KEY,
	first_name  TEXT NOT NULL DEFAULT '',
	last_name   TEXT NOT NULL DEFAULT '',
	email       TEXT NOT NULL UNIQUE,
	is_active   BOOLEAN NOT NULL DEFAULT TRUE,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS legal_cases (
	id                 TEXT PRIMARY KEY,
	case_number        TEXT NOT NULL UNIQUE,
	title              TEXT NOT NULL,
	court_name         TEXT NOT NULL DEFAULT '',
	court_date         TIMESTAMPTZ,
	next_hearing_date  TIMESTAMPTZ,
	mentioning_date    TIMESTAMPTZ,
	assigned_to        TEXT REFERENCES users(id) ON DELETE SET NULL,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_legal_cases_court_date ON legal_cases(court_date);
CREATE INDEX IF NOT EXISTS idx_legal_cases_next_hearing_date ON legal_cases(next_hearing_date);
CREATE INDEX IF NOT EXISTS idx_legal_cases_mentioning_date ON legal_cases(mentioning_date);

CREATE TABLE IF NOT EXISTS credit_cases (
	id           TEXT PRIMARY KEY,
	case_number  TEXT NOT NULL UNIQUE,
	title        TEXT NOT NULL,
	debtor_name  TEXT NOT NULL DEFAULT '',
	assigned_to  TEXT REFERENCES users(id) ON DELETE SET NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS credit_case_notes (
	id              TEXT PRIMARY KEY,
	case_id         TEXT NOT NULL REFERENCES credit_cases(id) ON DELETE CASCADE,
	content         TEXT NOT NULL,
	follow_up_date  TIMESTAMPTZ,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_credit_case_notes_follow_up ON credit_case_notes(follow_up_date);

CREATE TABLE IF NOT EXISTS promised_payments (
	id             TEXT PRIMARY KEY,
	case_id        TEXT NOT NULL REFERENCES credit_cases(id) ON DELETE CASCADE,
	amount         NUMERIC(14, 2) NOT NULL,
	currency       TEXT NOT NULL DEFAULT 'KES',
	promised_date  TIMESTAMPTZ NOT NULL,
	status         TEXT NOT NULL DEFAULT 'pending',
	notes          TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_promised_payments_due ON promised_payments(promised_date, status);
`,
	},
	{
		version: 2,
		sql: `
CREATE TABLE IF NOT EXISTS notifications (
	id                   TEXT PRIMARY KEY,
	recipient            TEXT NOT NULL,
	title                TEXT NOT NULL,
	message              TEXT NOT NULL,
	category             TEXT NOT NULL,
	priority             TEXT NOT NULL DEFAULT 'medium',
	related_legal_case   TEXT,
	related_credit_case  TEXT,
	event_date           TIMESTAMPTZ,
	is_read              BOOLEAN NOT NULL DEFAULT FALSE,
	is_email_sent        BOOLEAN NOT NULL DEFAULT FALSE,
	email_sent_at        TIMESTAMPTZ,
	action_url           TEXT NOT NULL DEFAULT '',
	metadata             JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CHECK (related_legal_case IS NULL OR related_credit_case IS NULL)
);

CREATE INDEX IF NOT EXISTS idx_notifications_recipient_unread
	ON notifications(recipient, is_read, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_notifications_event
	ON notifications(recipient, category, event_date);
`,
	},
}

// Migrate checks the current schema version and applies any outstanding
// migrations in order, each in its own transaction.
func Migrate(ctx context.Context, db *sqlx.DB, logger *zap.Logger) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	var currentVersion int
	if err := db.GetContext(ctx, &currentVersion, `SELECT COALESCE(MAX(version), 0) FROM schema_version`); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		tx, err := db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("beginning migration v%d: %w", m.version, err)
		}
		if _, err := tx.ExecContext(ctx, m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES ($1)`, m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration v%d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration v%d: %w", m.version, err)
		}

		logger.Info("Applied schema migration", zap.Int("version", m.version))
	}

	return nil
}
