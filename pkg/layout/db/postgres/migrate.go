// Copyright 2025 NexusGrid Authors
// SPDX-License-Identifier: Apache-2.0

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Ai-Chetan/NexusGrid/pkg/layout/db"
)

// Migrate runs database migrations for PostgreSQL.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INT PRIMARY KEY,
			applied_at TIMESTAMPTZ DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	return db.RunMigrations(ctx, &migrator{db: s.db})
}

// migrator implements db.Migrator for PostgreSQL.
type migrator struct {
	db *sql.DB
}

func (m *migrator) CurrentVersion(ctx context.Context) (int, error) {
	var version int
	err := m.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(version), 0) FROM schema_migrations
	`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("get current version: %w", err)
	}
	return version, nil
}

func (m *migrator) Apply(ctx context.Context, migration db.Migration) error {
	for _, stmt := range splitSQLStatements(migration.SQL) {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("execute statement: %w", err)
		}
	}
	return nil
}

func (m *migrator) SetVersion(ctx context.Context, version int) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO schema_migrations (version) VALUES ($1) ON CONFLICT (version) DO NOTHING
	`, version)
	if err != nil {
		return fmt.Errorf("record version: %w", err)
	}
	return nil
}

// splitSQLStatements splits a migration file into statements on semicolons
// and drops comment-only fragments. The schema files do not contain string
// literals with embedded semicolons, so a plain split is sufficient.
func splitSQLStatements(script string) []string {
	var statements []string
	for _, stmt := range strings.Split(script, ";") {
		var lines []string
		for _, line := range strings.Split(stmt, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || strings.HasPrefix(trimmed, "--") {
				continue
			}
			lines = append(lines, line)
		}
		if len(lines) > 0 {
			statements = append(statements, strings.Join(lines, "\n"))
		}
	}
	return statements
}
