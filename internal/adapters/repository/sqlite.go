package repository

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/okian/aimtune/internal/domain/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// timeLayout is fixed width so that text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

// SQLiteStore persists results and feedback in a SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) aimtune.db in dataDir and runs pending
// migrations. Pass MemoryDSN for an in-memory database.
func OpenSQLite(dataDir string) (*SQLiteStore, error) {
	var dsn string
	if dataDir == MemoryDSN {
		dsn = MemoryDSN
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "aimtune.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// One connection: writes are serialized and an in-memory database is
	// shared by every query.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}

		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}
	return nil
}

func parseMigrationVersion(filename string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
		return 0, fmt.Errorf("parsing migration version from %q: %w", filename, err)
	}
	return version, nil
}

// AppliedMigrations returns the applied migration versions in ascending order.
func (s *SQLiteStore) AppliedMigrations() ([]int, error) {
	rows, err := s.db.Query("SELECT version FROM schema_version ORDER BY version ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// --- Results ---

func (s *SQLiteStore) AppendResult(ctx context.Context, r model.CalculationResult) error {
	perAxis, err := json.Marshal(r.PerAxisSensitivity)
	if err != nil {
		return fmt.Errorf("encoding per-axis values: %w", err)
	}
	explanation, err := json.Marshal(r.ExplanationFactors)
	if err != nil {
		return fmt.Errorf("encoding explanation: %w", err)
	}
	device, err := json.Marshal(r.Device)
	if err != nil {
		return fmt.Errorf("encoding device: %w", err)
	}
	style, err := json.Marshal(r.Style)
	if err != nil {
		return fmt.Errorf("encoding style: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO results (id, game_id, mode, created_at, confidence, per_axis, explanation, device, style)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.GameID, r.Mode, formatTime(r.CreatedAt), r.Confidence,
		string(perAxis), string(explanation), string(device), string(style),
	)
	if err != nil {
		return fmt.Errorf("inserting result %s: %w", r.ID, err)
	}
	return requireInserted(res, "result", r.ID)
}

const resultColumns = `id, game_id, mode, created_at, confidence, per_axis, explanation, device, style`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (model.CalculationResult, error) {
	var (
		r                                           model.CalculationResult
		createdAt, perAxis, explanation, dev, style string
	)
	if err := row.Scan(&r.ID, &r.GameID, &r.Mode, &createdAt, &r.Confidence, &perAxis, &explanation, &dev, &style); err != nil {
		return model.CalculationResult{}, err
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return model.CalculationResult{}, err
	}
	r.CreatedAt = t
	if err := json.Unmarshal([]byte(perAxis), &r.PerAxisSensitivity); err != nil {
		return model.CalculationResult{}, fmt.Errorf("decoding per-axis values of %s: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(explanation), &r.ExplanationFactors); err != nil {
		return model.CalculationResult{}, fmt.Errorf("decoding explanation of %s: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(dev), &r.Device); err != nil {
		return model.CalculationResult{}, fmt.Errorf("decoding device of %s: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(style), &r.Style); err != nil {
		return model.CalculationResult{}, fmt.Errorf("decoding style of %s: %w", r.ID, err)
	}
	return r, nil
}

func (s *SQLiteStore) GetResult(ctx context.Context, id string) (model.CalculationResult, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+resultColumns+` FROM results WHERE id = ?`, id)
	r, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.CalculationResult{}, fmt.Errorf("%w: result %s", ErrNotFound, id)
	}
	if err != nil {
		return model.CalculationResult{}, err
	}
	return r, nil
}

func (s *SQLiteStore) ListResults(ctx context.Context, gameID string, limit int) ([]model.CalculationResult, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}

	query := `SELECT ` + resultColumns + ` FROM results`
	args := []any{}
	if gameID != "" {
		query += ` WHERE game_id = ?`
		args = append(args, gameID)
	}
	query += ` ORDER BY created_at DESC, rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing results: %w", err)
	}
	defer rows.Close()

	var out []model.CalculationResult
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// --- Feedback ---

func (s *SQLiteStore) AppendFeedback(ctx context.Context, f model.FeedbackRecord) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO feedback (id, result_id, game_id, axis, rating_delta, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.ResultID, f.GameID, string(f.Axis), f.RatingDelta, f.Note, formatTime(f.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("inserting feedback %s: %w", f.ID, err)
	}
	return requireInserted(res, "feedback", f.ID)
}

func (s *SQLiteStore) ReadHistory(ctx context.Context, gameID string) ([]model.FeedbackRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, result_id, game_id, axis, rating_delta, note, created_at
		FROM feedback WHERE game_id = ?
		ORDER BY created_at ASC, rowid ASC`, gameID)
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	defer rows.Close()

	var out []model.FeedbackRecord
	for rows.Next() {
		var (
			f        model.FeedbackRecord
			axis, ts string
		)
		if err := rows.Scan(&f.ID, &f.ResultID, &f.GameID, &axis, &f.RatingDelta, &f.Note, &ts); err != nil {
			return nil, err
		}
		f.Axis = model.Axis(axis)
		if f.Timestamp, err = parseTime(ts); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// --- Maintenance ---

func (s *SQLiteStore) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning clear: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM feedback`); err != nil {
		tx.Rollback()
		return fmt.Errorf("clearing feedback: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM results`); err != nil {
		tx.Rollback()
		return fmt.Errorf("clearing results: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	st := Stats{PerGame: make(map[string]int)}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM feedback`).Scan(&st.Feedback); err != nil {
		return Stats{}, fmt.Errorf("counting feedback: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT game_id, COUNT(*), MAX(created_at) FROM results GROUP BY game_id`)
	if err != nil {
		return Stats{}, fmt.Errorf("counting results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			game, last string
			n          int
		)
		if err := rows.Scan(&game, &n, &last); err != nil {
			return Stats{}, err
		}
		st.PerGame[game] = n
		st.Calculations += n
		t, err := parseTime(last)
		if err != nil {
			return Stats{}, err
		}
		if t.After(st.LastCalculation) {
			st.LastCalculation = t
		}
	}
	return st, rows.Err()
}

func requireInserted(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking %s insert: %w", kind, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %s", ErrDuplicate, kind, id)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing stored time %q: %w", s, err)
	}
	return t.UTC(), nil
}
