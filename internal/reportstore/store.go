package reportstore

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hochfrequenz/simul/internal/domain"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed run history
type Store struct {
	db *sql.DB
}

// New creates a new Store with the given database path
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// a single connection keeps :memory: databases alive across queries
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun inserts a run report
func (s *Store) SaveRun(r domain.RunReport) error {
	_, err := s.db.Exec(`
		INSERT INTO runs (id, scenario, strategy, units, started_at, finished_at, elapsed_ns, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.ID,
		r.Scenario,
		string(r.Strategy),
		r.Units,
		r.StartedAt.UTC(),
		r.FinishedAt.UTC(),
		int64(r.Elapsed),
		r.Err,
	)
	return err
}

// ErrAmbiguousID is returned when an ID prefix matches more than one run
var ErrAmbiguousID = errors.New("ambiguous run ID")

// GetRun retrieves a run by its full ID or a unique ID prefix.
// It returns sql.ErrNoRows when nothing matches.
func (s *Store) GetRun(id string) (*domain.RunReport, error) {
	if id == "" {
		return nil, sql.ErrNoRows
	}
	rows, err := s.db.Query(`
		SELECT id, scenario, strategy, units, started_at, finished_at, elapsed_ns, error
		FROM runs WHERE id = ? OR substr(id, 1, ?) = ?
		ORDER BY (id = ?) DESC
		LIMIT 2
	`, id, len(id), id, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var found []*domain.RunReport
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		found = append(found, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch {
	case len(found) == 0:
		return nil, sql.ErrNoRows
	case found[0].ID == id || len(found) == 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousID, id)
	}
}

// ListOptions specifies filters for listing runs
type ListOptions struct {
	Scenario string
	Strategy domain.Strategy
	Limit    int
}

// ListRuns returns runs matching opts, newest first
func (s *Store) ListRuns(opts ListOptions) ([]*domain.RunReport, error) {
	query := `SELECT id, scenario, strategy, units, started_at, finished_at, elapsed_ns, error FROM runs WHERE 1=1`
	var args []interface{}

	if opts.Scenario != "" {
		query += " AND scenario = ?"
		args = append(args, opts.Scenario)
	}
	if opts.Strategy != "" {
		query += " AND strategy = ?"
		args = append(args, string(opts.Strategy))
	}

	query += " ORDER BY started_at DESC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*domain.RunReport
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// StrategyStats summarises the recorded runs of one strategy
type StrategyStats struct {
	Strategy   domain.Strategy
	Runs       int
	AvgElapsed time.Duration
	MinElapsed time.Duration
}

// Stats aggregates successful runs per strategy. An empty scenario covers all scenarios.
func (s *Store) Stats(scenario string) ([]StrategyStats, error) {
	rows, err := s.db.Query(`
		SELECT strategy, COUNT(*), AVG(elapsed_ns), MIN(elapsed_ns)
		FROM runs
		WHERE (? = '' OR scenario = ?) AND (error IS NULL OR error = '')
		GROUP BY strategy
		ORDER BY strategy
	`, scenario, scenario)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []StrategyStats
	for rows.Next() {
		var st StrategyStats
		var strategy string
		var avg float64
		var min int64
		if err := rows.Scan(&strategy, &st.Runs, &avg, &min); err != nil {
			return nil, err
		}
		st.Strategy = domain.Strategy(strategy)
		st.AvgElapsed = time.Duration(avg)
		st.MinElapsed = time.Duration(min)
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*domain.RunReport, error) {
	var r domain.RunReport
	var strategy string
	var elapsed int64
	var errMsg sql.NullString

	err := row.Scan(&r.ID, &r.Scenario, &strategy, &r.Units, &r.StartedAt, &r.FinishedAt, &elapsed, &errMsg)
	if err != nil {
		return nil, err
	}

	r.Strategy = domain.Strategy(strategy)
	r.Elapsed = time.Duration(elapsed)
	if errMsg.Valid {
		r.Err = errMsg.String
	}
	return &r, nil
}
