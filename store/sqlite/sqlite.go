/*
Package sqlite provides a SQLite-backed implementation of the catalog interfaces.

PURPOSE:
  Stores the lookup dataset (colleges, salaries, state tax rates) used to
  build projections. Projections themselves are never stored.

INTERFACES IMPLEMENTED:
  catalog.Catalog: point lookups, search and listings
  catalog.Writer:  upserts used by seeding and the admin endpoints

KEY TABLES:
  colleges:     tuition by residency, keyed by normalized name
  salaries:     starting salary per (major, state); state '' = national
  state_taxes:  flat rate per state

MONEY:
  Amounts are stored as TEXT decimal strings and parsed back with
  shopspring/decimal, so no value ever passes through float64.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety, and a single connection so that
  ":memory:" databases are shared by every query.

USAGE:
  store, err := sqlite.New("./data/catalog.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  college, err := store.GetCollege(ctx, "University of Florida")

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - catalog/catalog.go: Interface definitions
  - store/memory/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/loan-projection/catalog"
)

// Store implements the catalog interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS colleges (
		key TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		state TEXT NOT NULL,
		private BOOLEAN NOT NULL DEFAULT FALSE,
		in_state_tuition TEXT NOT NULL,
		out_of_state_tuition TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- College search filters by state and sector
	CREATE INDEX IF NOT EXISTS idx_colleges_state_private
		ON colleges(state, private);

	-- Salaries: state '' is the national average
	CREATE TABLE IF NOT EXISTS salaries (
		major_key TEXT NOT NULL,
		major TEXT NOT NULL,
		state TEXT NOT NULL DEFAULT '',
		data_year INTEGER NOT NULL DEFAULT 0,
		average_starting_salary TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (major_key, state)
	);

	CREATE TABLE IF NOT EXISTS state_taxes (
		state TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		rate TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// COLLEGES
// =============================================================================

// SaveCollege upserts a college.
func (s *Store) SaveCollege(ctx context.Context, c catalog.College) error {
	if err := c.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO colleges (key, name, state, private, in_state_tuition, out_of_state_tuition, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			name = excluded.name,
			state = excluded.state,
			private = excluded.private,
			in_state_tuition = excluded.in_state_tuition,
			out_of_state_tuition = excluded.out_of_state_tuition,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		catalog.NormalizeCollege(c.Name),
		strings.TrimSpace(c.Name),
		catalog.NormalizeState(c.State),
		c.Private,
		c.InStateTuition.String(),
		c.OutOfStateTuition.String(),
		now(),
	)
	if err != nil {
		return fmt.Errorf("failed to save college: %w", err)
	}
	return nil
}

// GetCollege retrieves a college by name, case- and space-insensitively.
func (s *Store) GetCollege(ctx context.Context, name string) (*catalog.College, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT name, state, private, in_state_tuition, out_of_state_tuition FROM colleges WHERE key = ?",
		catalog.NormalizeCollege(name),
	)

	c, err := scanCollege(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// SearchColleges returns colleges matching f, ordered by name.
func (s *Store) SearchColleges(ctx context.Context, f catalog.Filter) ([]catalog.College, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var where []string
	var args []any
	if f.State != "" {
		where = append(where, "state = ?")
		args = append(args, catalog.NormalizeState(f.State))
	}
	if f.Private != nil {
		where = append(where, "private = ?")
		args = append(args, *f.Private)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		where = append(where, "key LIKE ? ESCAPE '\\'")
		args = append(args, "%"+escapeLike(catalog.NormalizeCollege(q))+"%")
	}

	query := "SELECT name, state, private, in_state_tuition, out_of_state_tuition FROM colleges"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY name"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var colleges []catalog.College
	for rows.Next() {
		c, err := scanCollege(rows)
		if err != nil {
			return nil, err
		}
		colleges = append(colleges, c)
	}
	return colleges, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCollege(row scanner) (catalog.College, error) {
	var c catalog.College
	var inState, outOfState string
	if err := row.Scan(&c.Name, &c.State, &c.Private, &inState, &outOfState); err != nil {
		return catalog.College{}, err
	}
	c.InStateTuition = parseDecimal(inState)
	c.OutOfStateTuition = parseDecimal(outOfState)
	return c, nil
}

// =============================================================================
// SALARIES
// =============================================================================

// SaveSalary upserts a salary record.
func (s *Store) SaveSalary(ctx context.Context, sal catalog.Salary) error {
	if err := sal.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO salaries (major_key, major, state, data_year, average_starting_salary, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(major_key, state) DO UPDATE SET
			major = excluded.major,
			data_year = excluded.data_year,
			average_starting_salary = excluded.average_starting_salary,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		catalog.NormalizeMajor(sal.Major),
		strings.TrimSpace(sal.Major),
		catalog.NormalizeState(sal.State),
		sal.DataYear,
		sal.AverageStartingSalary.String(),
		now(),
	)
	if err != nil {
		return fmt.Errorf("failed to save salary: %w", err)
	}
	return nil
}

// GetSalary retrieves the exact (major, state) record.
func (s *Store) GetSalary(ctx context.Context, major, state string) (*catalog.Salary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sal catalog.Salary
	var amount string

	err := s.db.QueryRowContext(ctx,
		"SELECT major, state, data_year, average_starting_salary FROM salaries WHERE major_key = ? AND state = ?",
		catalog.NormalizeMajor(major), catalog.NormalizeState(state),
	).Scan(&sal.Major, &sal.State, &sal.DataYear, &amount)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	sal.AverageStartingSalary = parseDecimal(amount)
	return &sal, nil
}

// ListMajors returns the distinct majors, preferring the spelling of the
// national record.
func (s *Store) ListMajors(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT COALESCE(
			(SELECT n.major FROM salaries n WHERE n.major_key = s.major_key AND n.state = ''),
			MIN(s.major)
		) AS major
		FROM salaries s
		GROUP BY s.major_key
		ORDER BY major
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var majors []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, err
		}
		majors = append(majors, m)
	}
	return majors, rows.Err()
}

// =============================================================================
// STATE TAXES
// =============================================================================

// SaveStateTax upserts a state tax rate.
func (s *Store) SaveStateTax(ctx context.Context, t catalog.StateTax) error {
	if err := t.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	name := t.Name
	if name == "" {
		name = catalog.States[catalog.NormalizeState(t.State)]
	}

	query := `
		INSERT INTO state_taxes (state, name, rate, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(state) DO UPDATE SET
			name = excluded.name,
			rate = excluded.rate,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query, catalog.NormalizeState(t.State), name, t.Rate.String(), now())
	if err != nil {
		return fmt.Errorf("failed to save state tax: %w", err)
	}
	return nil
}

// GetStateTax retrieves a state's tax rate.
func (s *Store) GetStateTax(ctx context.Context, state string) (*catalog.StateTax, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var t catalog.StateTax
	var rate string

	err := s.db.QueryRowContext(ctx,
		"SELECT state, name, rate FROM state_taxes WHERE state = ?",
		catalog.NormalizeState(state),
	).Scan(&t.State, &t.Name, &rate)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	t.Rate = parseDecimal(rate)
	return &t, nil
}

// ListStateTaxes returns every state tax rate ordered by state code.
func (s *Store) ListStateTaxes(ctx context.Context) ([]catalog.StateTax, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT state, name, rate FROM state_taxes ORDER BY state")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var taxes []catalog.StateTax
	for rows.Next() {
		var t catalog.StateTax
		var rate string
		if err := rows.Scan(&t.State, &t.Name, &rate); err != nil {
			return nil, err
		}
		t.Rate = parseDecimal(rate)
		taxes = append(taxes, t)
	}
	return taxes, rows.Err()
}

// =============================================================================
// ADMIN OPERATIONS
// =============================================================================

// Counts reports the number of rows per table.
type Counts struct {
	Colleges   int `json:"colleges"`
	Salaries   int `json:"salaries"`
	StateTaxes int `json:"state_taxes"`
}

// IsEmpty reports whether no record of any kind exists.
func (c Counts) IsEmpty() bool {
	return c.Colleges == 0 && c.Salaries == 0 && c.StateTaxes == 0
}

// Count returns row counts for every table.
func (s *Store) Count(ctx context.Context) (Counts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var c Counts
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM colleges),
			(SELECT COUNT(*) FROM salaries),
			(SELECT COUNT(*) FROM state_taxes)
	`).Scan(&c.Colleges, &c.Salaries, &c.StateTaxes)
	return c, err
}

// Reset clears all data (for dataset reloads).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"colleges", "salaries", "state_taxes"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func parseDecimal(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
