// Package storage implements the simulated storage gateway: snapshot blobs
// in a local sqlite database, addressed by opaque uuid references.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"finsecure/internal/gateway"

	_ "modernc.org/sqlite"
)

const statusStored = "stored"

type SnapshotRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewSnapshotRepository(dbPath string, logger *slog.Logger) (*SnapshotRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SnapshotRepository{db: db, logger: logger}, nil
}

func (r *SnapshotRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Put stores a snapshot blob and returns its descriptor. The reference is a
// fresh uuid; callers treat it as opaque.
func (r *SnapshotRepository) Put(ctx context.Context, name string, data []byte) (gateway.StoredObject, error) {
	obj := gateway.StoredObject{
		Ref:       uuid.New().String(),
		Name:      name,
		Size:      int64(len(data)),
		CreatedAt: time.Now().UTC(),
		Status:    statusStored,
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO snapshots (ref, name, content, size, status, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		obj.Ref, obj.Name, data, obj.Size, obj.Status, obj.CreatedAt)
	if err != nil {
		return gateway.StoredObject{}, fmt.Errorf("insert snapshot: %w", err)
	}

	r.logger.InfoContext(ctx, "Snapshot stored",
		"ref", obj.Ref,
		"name", obj.Name,
		"size_bytes", obj.Size)

	return obj, nil
}

func (r *SnapshotRepository) Get(ctx context.Context, ref string) ([]byte, error) {
	var content []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT content FROM snapshots WHERE ref = ?`, ref).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("snapshot %s: %w", ref, gateway.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select snapshot: %w", err)
	}
	return content, nil
}

func (r *SnapshotRepository) List(ctx context.Context) ([]gateway.StoredObject, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT ref, name, size, status, created_at FROM snapshots ORDER BY created_at DESC, ref`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var objects []gateway.StoredObject
	for rows.Next() {
		var obj gateway.StoredObject
		if err := rows.Scan(&obj.Ref, &obj.Name, &obj.Size, &obj.Status, &obj.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		objects = append(objects, obj)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return objects, nil
}
