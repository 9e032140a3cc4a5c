// Package store persists recordings in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/haptics/internal/monitoring"
	"github.com/banshee-data/haptics/internal/recording"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNotFound is returned by Load for an unknown recording.
var ErrNotFound = errors.New("recording not found")

// Store is a recording database.
type Store struct {
	*sql.DB
}

// Summary describes a stored recording without its frames.
type Summary struct {
	ID           uuid.UUID
	Started      time.Time
	SamplingRate int
	FrameCount   int
}

// Open opens (creating if needed) the database at path and applies pending
// migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	s := &Store{DB: db}
	if err := s.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// MigrateUp runs all pending migrations.
func (s *Store) MigrateUp() error {
	m, err := s.newMigrate()
	if err != nil {
		return err
	}
	// m is not closed: closing it would close the shared connection.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// MigrateVersion returns the current schema version and dirty state.
func (s *Store) MigrateVersion() (uint, bool, error) {
	m, err := s.newMigrate()
	if err != nil {
		return 0, false, err
	}
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func (s *Store) newMigrate() (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(s.DB, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	m.Log = migrateLogger{}
	return m, nil
}

type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...interface{}) {
	monitoring.Logf("[migrate] "+format, v...)
}

func (migrateLogger) Verbose() bool { return false }

// Save writes a recording and its frames in one transaction.
func (s *Store) Save(ctx context.Context, b *recording.Buffer) error {
	opts, err := json.Marshal(b.Options)
	if err != nil {
		return err
	}

	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO recordings (id, started_unix_ms, sampling_rate, options_json, frame_count) VALUES (?, ?, ?, ?, ?)`,
		b.ID.String(), b.Started.UnixMilli(), b.SamplingRate, string(opts), len(b.Frames),
	); err != nil {
		return fmt.Errorf("insert recording: %w", err)
	}

	frameStmt, err := tx.PrepareContext(ctx, `INSERT INTO frames (
		recording_id, frame, timestamp_ms, ticks,
		position_x, position_y, position_z,
		velocity_x, velocity_y, velocity_z,
		force_x, force_y, force_z, note
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer frameStmt.Close()

	forceStmt, err := tx.PrepareContext(ctx, `INSERT INTO interaction_forces (
		recording_id, frame, object_id, force_x, force_y, force_z
	) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer forceStmt.Close()

	id := b.ID.String()
	for i, f := range b.Frames {
		if _, err := frameStmt.ExecContext(ctx, id, i, f.Timestamp, f.Ticks,
			f.Position[0], f.Position[1], f.Position[2],
			f.Velocity[0], f.Velocity[1], f.Velocity[2],
			f.Force[0], f.Force[1], f.Force[2], f.Note,
		); err != nil {
			return fmt.Errorf("insert frame %d: %w", i, err)
		}
		for _, in := range f.Interactions {
			if _, err := forceStmt.ExecContext(ctx, id, i, in.Object, in.Force[0], in.Force[1], in.Force[2]); err != nil {
				return fmt.Errorf("insert interaction force frame %d object %d: %w", i, in.Object, err)
			}
		}
	}
	return tx.Commit()
}

// List returns every stored recording, oldest first.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.QueryContext(ctx,
		`SELECT id, started_unix_ms, sampling_rate, frame_count FROM recordings ORDER BY started_unix_ms, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			id      string
			started int64
			sum     Summary
		)
		if err := rows.Scan(&id, &started, &sum.SamplingRate, &sum.FrameCount); err != nil {
			return nil, err
		}
		if sum.ID, err = uuid.Parse(id); err != nil {
			return nil, err
		}
		sum.Started = time.UnixMilli(started).UTC()
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Load reads a recording back.
func (s *Store) Load(ctx context.Context, id uuid.UUID) (*recording.Buffer, error) {
	var (
		started int64
		opts    string
		b       = &recording.Buffer{ID: id}
	)
	err := s.QueryRowContext(ctx,
		`SELECT started_unix_ms, sampling_rate, options_json FROM recordings WHERE id = ?`, id.String(),
	).Scan(&started, &b.SamplingRate, &opts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	b.Started = time.UnixMilli(started).UTC()
	if err := json.Unmarshal([]byte(opts), &b.Options); err != nil {
		return nil, fmt.Errorf("decode options: %w", err)
	}

	rows, err := s.QueryContext(ctx, `SELECT timestamp_ms, ticks,
		position_x, position_y, position_z,
		velocity_x, velocity_y, velocity_z,
		force_x, force_y, force_z, note
		FROM frames WHERE recording_id = ? ORDER BY frame`, id.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var f recording.Frame
		if err := rows.Scan(&f.Timestamp, &f.Ticks,
			&f.Position[0], &f.Position[1], &f.Position[2],
			&f.Velocity[0], &f.Velocity[1], &f.Velocity[2],
			&f.Force[0], &f.Force[1], &f.Force[2], &f.Note,
		); err != nil {
			return nil, err
		}
		b.Frames = append(b.Frames, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	forces, err := s.QueryContext(ctx, `SELECT frame, object_id, force_x, force_y, force_z
		FROM interaction_forces WHERE recording_id = ? ORDER BY frame, object_id`, id.String())
	if err != nil {
		return nil, err
	}
	defer forces.Close()
	for forces.Next() {
		var (
			frame int
			in    recording.Interaction
		)
		if err := forces.Scan(&frame, &in.Object, &in.Force[0], &in.Force[1], &in.Force[2]); err != nil {
			return nil, err
		}
		if frame < 0 || frame >= len(b.Frames) {
			return nil, fmt.Errorf("interaction force for missing frame %d", frame)
		}
		b.Frames[frame].Interactions = append(b.Frames[frame].Interactions, in)
	}
	return b, forces.Err()
}
