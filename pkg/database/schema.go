package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type migration struct {
	name      string
	statement string
}

// migrations are idempotent and applied in order on every boot.
var migrations = []migration{
	{
		name: "create_centers",
		statement: `CREATE TABLE IF NOT EXISTS centers (
    id TEXT PRIMARY KEY,
    c_reg INTEGER NOT NULL DEFAULT 1,
    fullname TEXT NOT NULL,
    email TEXT NOT NULL CONSTRAINT centers_email_key UNIQUE,
    password_hash TEXT NOT NULL,
    inst TEXT NOT NULL DEFAULT '',
    cen_adr TEXT NOT NULL DEFAULT '',
    state TEXT NOT NULL DEFAULT '',
    district TEXT NOT NULL DEFAULT '',
    city TEXT NOT NULL DEFAULT '',
    pincode TEXT NOT NULL DEFAULT '',
    t_pc TEXT NOT NULL DEFAULT '',
    staffs TEXT NOT NULL DEFAULT '',
    phone TEXT NOT NULL,
    files JSONB NOT NULL DEFAULT '{}'::jsonb,
    raw_body JSONB NOT NULL DEFAULT '{}'::jsonb,
    status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved', 'rejected')),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	},
	{
		name:      "index_centers_state_status",
		statement: `CREATE INDEX IF NOT EXISTS idx_centers_state_status ON centers (LOWER(state), status)`,
	},
	{
		name: "create_students",
		statement: `CREATE TABLE IF NOT EXISTS students (
    id TEXT PRIMARY KEY,
    student_id TEXT NOT NULL CONSTRAINT students_student_id_key UNIQUE,
    study_mode TEXT NOT NULL DEFAULT 'offline' CHECK (study_mode IN ('online', 'offline')),
    center JSONB NOT NULL DEFAULT '{}'::jsonb,
    course JSONB NOT NULL DEFAULT '{}'::jsonb,
    personal JSONB NOT NULL DEFAULT '{}'::jsonb,
    email TEXT NOT NULL CONSTRAINT students_auth_email_key UNIQUE,
    password_hash TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'inactive', 'suspended')),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	},
	{
		name:      "index_students_created_at",
		statement: `CREATE INDEX IF NOT EXISTS idx_students_created_at ON students (created_at)`,
	},
	{
		name:      "index_students_center",
		statement: `CREATE INDEX IF NOT EXISTS idx_students_center ON students ((center->>'id'))`,
	},
	{
		name: "create_certificates",
		statement: `CREATE TABLE IF NOT EXISTS certificates (
    id TEXT PRIMARY KEY,
    certificate_id TEXT NOT NULL CONSTRAINT certificates_certificate_id_key UNIQUE,
    verification_code TEXT NOT NULL CONSTRAINT certificates_verification_code_key UNIQUE,
    student_ref TEXT NOT NULL CONSTRAINT certificates_student_ref_key UNIQUE,
    student JSONB NOT NULL,
    course JSONB NOT NULL,
    center JSONB NOT NULL,
    certificate_type TEXT NOT NULL DEFAULT 'completion',
    grade TEXT NOT NULL DEFAULT 'Pass',
    issue_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    valid_until TIMESTAMPTZ NULL,
    status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'revoked', 'expired')),
    issued_by TEXT NOT NULL,
    metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	},
	{
		name:      "index_certificates_created_at",
		statement: `CREATE INDEX IF NOT EXISTS idx_certificates_created_at ON certificates (created_at)`,
	},
	{
		name: "create_contact_queries",
		statement: `CREATE TABLE IF NOT EXISTS contact_queries (
    id TEXT PRIMARY KEY,
    fullname TEXT NOT NULL,
    email TEXT NOT NULL,
    phone TEXT NOT NULL,
    message TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'new' CHECK (status IN ('new', 'in-progress', 'resolved', 'closed')),
    priority TEXT NOT NULL DEFAULT 'medium' CHECK (priority IN ('low', 'medium', 'high', 'urgent')),
    ip_address TEXT NOT NULL DEFAULT '',
    user_agent TEXT NOT NULL DEFAULT '',
    admin_notes TEXT NOT NULL DEFAULT '',
    assigned_to TEXT NOT NULL DEFAULT '',
    resolved_at TIMESTAMPTZ NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	},
	{
		name:      "index_contact_queries_recent",
		statement: `CREATE INDEX IF NOT EXISTS idx_contact_queries_recent ON contact_queries (created_at DESC)`,
	},
	{
		name: "create_callback_requests",
		statement: `CREATE TABLE IF NOT EXISTS callback_requests (
    id TEXT PRIMARY KEY,
    phone TEXT NOT NULL,
    ip_address TEXT NOT NULL DEFAULT '',
    user_agent TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'called', 'completed', 'cancelled')),
    notes TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	},
	{
		name:      "index_callback_requests_phone",
		statement: `CREATE INDEX IF NOT EXISTS idx_callback_requests_phone ON callback_requests (phone, created_at DESC)`,
	},
}

// Migrate applies the schema inside a single transaction.
func Migrate(ctx context.Context, db *sqlx.DB, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	for _, m := range migrations {
		if _, err := tx.ExecContext(ctx, m.statement); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %s: %w", m.name, err)
		}
		logger.Debug("migration applied", zap.String("migration", m.name))
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}
	logger.Info("database schema ready", zap.Int("migrations", len(migrations)))
	return nil
}
