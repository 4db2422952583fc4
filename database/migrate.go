package database

import (
	"context"
	"embed"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

//go:embed schema/*.sql
var schemaFiles embed.FS

// Migrate creates missing tables and indexes for the store's dialect
func (s *Store) Migrate(ctx context.Context) error {
	content, err := schemaFiles.ReadFile("schema/" + string(s.dialect) + ".sql")
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}

	statements := parseSQLStatements(string(content))
	failed := 0

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			// statements are idempotent; a failure here usually means the object already exists
			failed++
			logrus.WithFields(logrus.Fields{
				"component": "Store",
				"dialect":   s.dialect,
				"error":     err.Error(),
			}).Warn("Migration statement failed (continuing)")
		}
	}

	if failed == len(statements) && failed > 0 {
		return fmt.Errorf("all %d migration statements failed", failed)
	}

	logrus.WithFields(logrus.Fields{
		"component":  "Store",
		"dialect":    s.dialect,
		"statements": len(statements),
		"failed":     failed,
	}).Info("Database migration completed")
	return nil
}

// parseSQLStatements splits a schema file into statements, dropping comment-only lines
func parseSQLStatements(content string) []string {
	var statements []string
	var currentStatement strings.Builder

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}

		if currentStatement.Len() > 0 {
			currentStatement.WriteString(" ")
		}
		currentStatement.WriteString(line)

		if strings.HasSuffix(line, ";") {
			stmt := strings.TrimSpace(strings.TrimSuffix(currentStatement.String(), ";"))
			if stmt != "" {
				statements = append(statements, stmt)
			}
			currentStatement.Reset()
		}
	}

	if stmt := strings.TrimSpace(currentStatement.String()); stmt != "" {
		statements = append(statements, stmt)
	}

	return statements
}
