// Package store persists job descriptions and scored candidates in SQLite or
// PostgreSQL. The schema is managed by embedded goose migrations.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/spigell/resume-ranker/internal/candidate"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	// DefaultSQLiteDSN is the database file used when nothing else is configured.
	DefaultSQLiteDSN = "resume_screening.db"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnsupportedDriver is returned by Open for unknown drivers.
	ErrUnsupportedDriver = errors.New("unsupported database driver")
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrations embed.FS

type Config struct {
	Driver string
	DSN    string
}

// JobDescription is a persisted job description row.
type JobDescription struct {
	ID             int64
	Title          string
	RequiredSkills []string
}

type execer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db      *sql.DB
	pool    *pgxpool.Pool
	driver  string
	dialect goose.Dialect
	logger  *zap.Logger
}

// Open connects to the configured database and pings it. Migrate must be
// called before any other operation on a fresh database.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" {
		driver = DriverSQLite
	}

	s := &Store{driver: driver, logger: logger.With(zap.String("driver", driver))}

	switch driver {
	case DriverSQLite:
		dsn := cfg.DSN
		if strings.TrimSpace(dsn) == "" {
			dsn = DefaultSQLiteDSN
		}
		db, err := sql.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// A single connection keeps ":memory:" databases and pragmas consistent.
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable sqlite foreign keys: %w", err)
		}
		s.db = db
		s.dialect = goose.DialectSQLite3
	case DriverPostgres:
		pool, err := connectPostgres(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		s.pool = pool
		s.db = stdlib.OpenDBFromPool(pool)
		s.dialect = goose.DialectPostgres
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}

	if err := s.db.PingContext(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	return s, nil
}

func connectPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pgx config: %w", err)
	}
	config.MaxConns = 4
	config.MinConns = 0
	config.MaxConnLifetime = time.Hour
	config.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("open pgx pool: %w", err)
	}
	return pool, nil
}

// Migrate applies every pending migration for the store dialect.
func (s *Store) Migrate(ctx context.Context) error {
	fsys, err := fs.Sub(migrations, "migrations/"+s.driver)
	if err != nil {
		return fmt.Errorf("migrations for %s: %w", s.driver, err)
	}

	provider, err := goose.NewProvider(s.dialect, s.db, fsys)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	for _, r := range results {
		s.logger.Info("applied migration",
			zap.Int64("version", r.Source.Version),
			zap.String("path", r.Source.Path),
			zap.Duration("took", r.Duration),
		)
	}

	return nil
}

// InsertJobDescription stores a job description and returns its id.
func (s *Store) InsertJobDescription(ctx context.Context, title string, requiredSkills []string) (int64, error) {
	return s.insertJobDescription(ctx, s.db, title, requiredSkills)
}

func (s *Store) insertJobDescription(ctx context.Context, q execer, title string, requiredSkills []string) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, s.rebind(`
INSERT INTO job_description (title, required_skills)
VALUES (?, ?)
RETURNING id
`), title, strings.Join(requiredSkills, candidate.SkillsSeparator)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert job description: %w", err)
	}

	s.logger.Info("inserted job description", zap.Int64("id", id), zap.String("title", title))
	return id, nil
}

// InsertCandidate stores one candidate row for jobID. A zero jobID stores the
// row without a job reference.
func (s *Store) InsertCandidate(ctx context.Context, jobID int64, r candidate.Record) (int64, error) {
	return s.insertCandidate(ctx, s.db, jobID, r)
}

func (s *Store) insertCandidate(ctx context.Context, q execer, jobID int64, r candidate.Record) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, s.rebind(`
INSERT INTO candidates (job_id, name, email, phone, skills, experience, score, resume_path)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id
`), nullInt64(jobID), r.Name, nullString(r.Email), nullString(r.Phone),
		r.SkillsString(), r.Experience, r.Score, r.ResumePath).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert candidate %s: %w", r.ResumePath, err)
	}

	s.logger.Debug("inserted candidate", zap.Int64("id", id), zap.String("name", r.Name))
	return id, nil
}

// SaveRun stores a job description with all its candidates in one transaction
// and returns the records with their assigned ids.
func (s *Store) SaveRun(ctx context.Context, title string, requiredSkills []string, records []candidate.Record) (int64, []candidate.Record, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	jobID, err := s.insertJobDescription(ctx, tx, title, requiredSkills)
	if err != nil {
		return 0, nil, err
	}

	saved := make([]candidate.Record, 0, len(records))
	for _, r := range records {
		id, err := s.insertCandidate(ctx, tx, jobID, r)
		if err != nil {
			return 0, nil, err
		}
		r.ID = id
		r.JobID = jobID
		saved = append(saved, r)
	}

	if err := tx.Commit(); err != nil {
		return 0, nil, fmt.Errorf("commit run: %w", err)
	}

	s.logger.Info("saved ranking run", zap.Int64("job_id", jobID), zap.Int("candidates", len(saved)))
	return jobID, saved, nil
}

// FetchCandidates returns the candidate rows of jobID in insertion order.
// A zero jobID returns every row.
func (s *Store) FetchCandidates(ctx context.Context, jobID int64) ([]candidate.Record, error) {
	query := `
SELECT id, job_id, name, email, phone, skills, experience, score, resume_path
FROM candidates`
	var args []any
	if jobID != 0 {
		query += " WHERE job_id = ?"
		args = append(args, jobID)
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("fetch candidates: %w", err)
	}
	defer rows.Close()

	var out []candidate.Record
	for rows.Next() {
		var (
			r            candidate.Record
			job          sql.NullInt64
			email, phone sql.NullString
			skills       string
		)
		if err := rows.Scan(&r.ID, &job, &r.Name, &email, &phone, &skills, &r.Experience, &r.Score, &r.ResumePath); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		r.JobID = job.Int64
		r.Email = stringPtr(email)
		r.Phone = stringPtr(phone)
		r.Skills = candidate.SplitSkills(skills)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch candidates: %w", err)
	}

	return out, nil
}

// LatestJobDescription returns the most recently inserted job description.
func (s *Store) LatestJobDescription(ctx context.Context) (*JobDescription, error) {
	return s.jobDescription(ctx, `
SELECT id, title, required_skills FROM job_description ORDER BY id DESC LIMIT 1`)
}

// JobDescriptionByID returns the job description with the given id.
func (s *Store) JobDescriptionByID(ctx context.Context, id int64) (*JobDescription, error) {
	return s.jobDescription(ctx, `
SELECT id, title, required_skills FROM job_description WHERE id = ?`, id)
}

func (s *Store) jobDescription(ctx context.Context, query string, args ...any) (*JobDescription, error) {
	var (
		jd     JobDescription
		skills string
	)
	err := s.db.QueryRowContext(ctx, s.rebind(query), args...).Scan(&jd.ID, &jd.Title, &skills)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("job description: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("query job description: %w", err)
	}
	jd.RequiredSkills = candidate.SplitSkills(skills)
	return &jd, nil
}

// RankedPaths returns the distinct resume paths stored for job descriptions
// with the given title.
func (s *Store) RankedPaths(ctx context.Context, title string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
SELECT DISTINCT c.resume_path
FROM candidates c
JOIN job_description j ON j.id = c.job_id
WHERE j.title = ?
ORDER BY c.resume_path`), title)
	if err != nil {
		return nil, fmt.Errorf("query ranked resumes: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan ranked resume: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// History adapts the store to the ranked history filter for one job title.
func (s *Store) History(title string) *History {
	return &History{store: s, title: title}
}

type History struct {
	store *Store
	title string
}

func (h *History) RankedPaths(ctx context.Context) ([]string, error) {
	return h.store.RankedPaths(ctx, h.title)
}

// Close releases the database handle and, for PostgreSQL, the pool.
func (s *Store) Close() error {
	var err error
	if s.db != nil {
		err = s.db.Close()
	}
	if s.pool != nil {
		s.pool.Close()
	}
	return err
}

// rebind rewrites '?' placeholders into '$n' for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt64(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v != 0}
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
