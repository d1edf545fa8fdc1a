package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/nvandessel/ezdiff/internal/simulation"

	_ "modernc.org/sqlite" // SQLite driver
)

// DBFileName is the name of the database file inside the data directory.
const DBFileName = "ezdiff.db"

// SQLiteRunStore implements RunStore using SQLite for persistence.
type SQLiteRunStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	dbPath string
}

// NewSQLiteRunStore opens (creating if needed) dir/ezdiff.db.
func NewSQLiteRunStore(dir string) (*SQLiteRunStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dir, DBFileName)

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteRunStore{db: db, dbPath: dbPath}, nil
}

// Path returns the database file path.
func (s *SQLiteRunStore) Path() string {
	return s.dbPath
}

// SaveRun stores the report and its results in one transaction.
func (s *SQLiteRunStore) SaveRun(ctx context.Context, report simulation.Report) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (created_at, seed, a, v, t) VALUES (?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339Nano),
		int64(report.Seed),
		report.Params.A, report.Params.V, report.Params.T)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}

	for i, r := range report.Results {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO results (run_id, position, n, bias, bias_squared) VALUES (?, ?, ?, ?, ?)`,
			id, i, r.N, nullableFloat(r.Bias), nullableFloat(r.BiasSquared)); err != nil {
			return 0, fmt.Errorf("failed to insert result N=%d: %w", r.N, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return id, nil
}

// GetRun returns a run by ID.
func (s *SQLiteRunStore) GetRun(ctx context.Context, id int64) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, seed, a, v, t FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %d: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return nil, err
	}

	results, err := s.loadResults(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	run.Results = results[id]
	return &run, nil
}

// ListRuns returns up to limit runs, newest first.
func (s *SQLiteRunStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, created_at, seed, a, v, t FROM runs ORDER BY id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	var ids []int64
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
		ids = append(ids, run.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	if len(runs) == 0 {
		return runs, nil
	}

	results, err := s.loadResults(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range runs {
		runs[i].Results = results[runs[i].ID]
	}
	return runs, nil
}

// Close closes the database.
func (s *SQLiteRunStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// loadResults returns the results of each run, keyed by run ID, in sweep order.
func (s *SQLiteRunStore) loadResults(ctx context.Context, ids []int64) (map[int64][]simulation.Result, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, n, bias, bias_squared FROM results
		 WHERE run_id IN (`+placeholders+`)
		 ORDER BY run_id, position`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]simulation.Result, len(ids))
	for rows.Next() {
		var runID int64
		var n int
		var bias, biasSq sql.NullFloat64
		if err := rows.Scan(&runID, &n, &bias, &biasSq); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		out[runID] = append(out[runID], simulation.Result{
			N:           n,
			Bias:        floatOrNaN(bias),
			BiasSquared: floatOrNaN(biasSq),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate results: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	var createdAt string
	var seed int64
	if err := row.Scan(&run.ID, &createdAt, &seed, &run.Params.A, &run.Params.V, &run.Params.T); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("failed to scan run: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Run{}, fmt.Errorf("run %d has invalid created_at %q: %w", run.ID, createdAt, err)
	}
	run.CreatedAt = t
	run.Seed = uint64(seed)
	return run, nil
}

// nullableFloat maps NaN to NULL. ±Inf is stored natively.
func nullableFloat(f float64) sql.NullFloat64 {
	if math.IsNaN(f) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}

func floatOrNaN(f sql.NullFloat64) float64 {
	if !f.Valid {
		return math.NaN()
	}
	return f.Float64
}

var _ RunStore = (*SQLiteRunStore)(nil)
