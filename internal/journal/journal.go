// Package journal keeps an append-only SQLite audit trail of pipeline runs.
// Nothing in it is read back into a run.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/dusk-indust/agentforge/internal/orchestrator"
)

// timeLayout is fixed-width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned by Get for an unknown run ID.
var ErrNotFound = errors.New("run not found")

// Entry is one recorded run.
type Entry struct {
	ID           string          `json:"id"`
	CreatedAt    time.Time       `json:"createdAt"`
	Request      string          `json:"request"`
	ResponseType string          `json:"responseType"`
	Status       string          `json:"status"`
	Message      string          `json:"message"`
	ProjectPath  string          `json:"projectPath,omitempty"`
	Steps        int             `json:"steps"`
	Errors       []string        `json:"errors,omitempty"`
	Config       json.RawMessage `json:"config,omitempty"`
}

// Journal stores run entries in a SQLite database.
type Journal struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the journal database at path. Use ":memory:" for a
// private in-memory journal.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure journal: %w", err)
	}

	j := &Journal{db: db, now: time.Now}
	if err := j.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate journal: %w", err)
	}
	return j, nil
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		request TEXT NOT NULL,
		response_type TEXT NOT NULL,
		status TEXT NOT NULL,
		message TEXT NOT NULL,
		project_path TEXT,
		steps INTEGER NOT NULL DEFAULT 0,
		errors TEXT,
		config_json TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	`
	_, err := j.db.Exec(schema)
	return err
}

// Record stores the envelope of a finished run and returns its ID. The
// envelope's RunID is used when set.
func (j *Journal) Record(ctx context.Context, request string, env orchestrator.Envelope) (string, error) {
	id := env.RunID
	if id == "" {
		id = uuid.NewString()
	}

	var cfgJSON sql.NullString
	if env.FinalConfig != nil {
		data, err := env.FinalConfig.Marshal()
		if err != nil {
			return "", fmt.Errorf("serialize config: %w", err)
		}
		cfgJSON = sql.NullString{String: string(data), Valid: true}
	}
	var errsJSON sql.NullString
	if len(env.Errors) > 0 {
		data, err := json.Marshal(env.Errors)
		if err != nil {
			return "", fmt.Errorf("serialize errors: %w", err)
		}
		errsJSON = sql.NullString{String: string(data), Valid: true}
	}

	_, err := j.db.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, request, response_type, status, message, project_path, steps, errors, config_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, j.now().UTC().Format(timeLayout), request, string(env.ResponseType), string(env.Status),
		env.Message, env.ProjectPath, env.Steps, errsJSON, cfgJSON,
	)
	if err != nil {
		return "", fmt.Errorf("record run %s: %w", id, err)
	}
	return id, nil
}

const selectColumns = `SELECT id, created_at, request, response_type, status, message, project_path, steps, errors, config_json FROM runs`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*Entry, error) {
	var (
		e           Entry
		createdAt   string
		projectPath sql.NullString
		errsJSON    sql.NullString
		cfgJSON     sql.NullString
	)
	err := row.Scan(&e.ID, &createdAt, &e.Request, &e.ResponseType, &e.Status, &e.Message,
		&projectPath, &e.Steps, &errsJSON, &cfgJSON)
	if err != nil {
		return nil, err
	}

	e.CreatedAt, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("run %s: created_at: %w", e.ID, err)
	}
	e.ProjectPath = projectPath.String
	if errsJSON.Valid {
		if err := json.Unmarshal([]byte(errsJSON.String), &e.Errors); err != nil {
			return nil, fmt.Errorf("run %s: errors: %w", e.ID, err)
		}
	}
	if cfgJSON.Valid {
		e.Config = json.RawMessage(cfgJSON.String)
	}
	return &e, nil
}

// Get returns the entry with the given ID, or ErrNotFound.
func (j *Journal) Get(ctx context.Context, id string) (*Entry, error) {
	e, err := scanEntry(j.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	return e, nil
}

// List returns up to limit entries, newest first. A limit of zero or less
// returns every entry.
func (j *Journal) List(ctx context.Context, limit int) ([]Entry, error) {
	query := selectColumns + ` ORDER BY created_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}
