package application

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// MigrationManager applies embedded per-module schema files. Each file is
// executed once; applied file names are tracked in schema_migrations.
type MigrationManager interface {
	RegisterSchema(fsys *embed.FS)
	Apply(ctx context.Context) error
}

func NewMigrationManager(pool *pgxpool.Pool, logger *logrus.Logger) MigrationManager {
	return &migrationManager{pool: pool, logger: logger}
}

type migrationManager struct {
	pool    *pgxpool.Pool
	logger  *logrus.Logger
	schemas []*embed.FS
}

func (m *migrationManager) RegisterSchema(fsys *embed.FS) {
	m.schemas = append(m.schemas, fsys)
}

func (m *migrationManager) Apply(ctx context.Context) error {
	if _, err := m.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			filename TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	type schemaFile struct {
		name    string
		content []byte
	}
	var files []schemaFile
	for _, fsys := range m.schemas {
		err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			content, err := fsys.ReadFile(path)
			if err != nil {
				return err
			}
			files = append(files, schemaFile{name: path, content: content})
			return nil
		})
		if err != nil {
			return fmt.Errorf("walk schema fs: %w", err)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].name < files[j].name })

	for _, file := range files {
		var applied bool
		if err := m.pool.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE filename = $1)`, file.name,
		).Scan(&applied); err != nil {
			return err
		}
		if applied {
			continue
		}
		if _, err := m.pool.Exec(ctx, string(file.content)); err != nil {
			return fmt.Errorf("apply schema %s: %w", file.name, err)
		}
		if _, err := m.pool.Exec(ctx,
			`INSERT INTO schema_migrations (filename) VALUES ($1)`, file.name,
		); err != nil {
			return err
		}
		if m.logger != nil {
			m.logger.WithField("schema", file.name).Info("applied schema file")
		}
	}
	return nil
}
