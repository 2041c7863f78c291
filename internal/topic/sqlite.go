package topic

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SQLiteStore reads and writes topic configurations in the topic_configs table.
// The schema is created by migrations/20260301_120000_topic_configs.up.sql.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a store backed by the given database handle.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// List returns every stored topic configuration keyed by topic.
func (s *SQLiteStore) List(ctx context.Context) (map[string]Config, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT topic, measurement, tag_key, sensor_name, value_field
		FROM topic_configs
		ORDER BY topic`)
	if err != nil {
		return nil, fmt.Errorf("querying topic configs: %w", err)
	}
	defer rows.Close()

	configs := make(map[string]Config)
	for rows.Next() {
		var name string
		var cfg Config
		if err := rows.Scan(&name, &cfg.Measurement, &cfg.TagKey, &cfg.SensorName, &cfg.ValueField); err != nil {
			return nil, fmt.Errorf("scanning topic config: %w", err)
		}
		configs[name] = cfg
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating topic configs: %w", err)
	}

	return configs, nil
}

// Load builds a Registry from the stored rows.
// Returns ErrNoTopics if the table is empty.
func (s *SQLiteStore) Load(ctx context.Context) (*Registry, error) {
	configs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(configs) == 0 {
		return nil, fmt.Errorf("topic_configs: %w", ErrNoTopics)
	}
	return NewRegistry(configs)
}

// Import upserts every entry of a registry in one transaction, replacing
// rows for topics that already exist. Used to seed the database from an
// existing topics file.
func (s *SQLiteStore) Import(ctx context.Context, r *Registry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting import: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	now := time.Now()
	for _, name := range r.Topics() {
		cfg, _ := r.Lookup(name)
		if err := upsertConfig(ctx, tx, name, cfg, now); err != nil {
			return fmt.Errorf("importing topic %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing import: %w", err)
	}
	return nil
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const upsertConfigSQL = `
	INSERT INTO topic_configs (topic, measurement, tag_key, sensor_name, value_field, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(topic) DO UPDATE SET
		measurement = excluded.measurement,
		tag_key = excluded.tag_key,
		sensor_name = excluded.sensor_name,
		value_field = excluded.value_field,
		updated_at = excluded.updated_at`

func upsertConfig(ctx context.Context, db execer, topic string, cfg Config, now time.Time) error {
	_, err := db.ExecContext(ctx, upsertConfigSQL,
		topic, cfg.Measurement, cfg.TagKey, cfg.SensorName, cfg.ValueField,
		now.UTC().Format(time.RFC3339),
	)
	return err
}
