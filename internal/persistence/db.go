// Package persistence records simulation runs to SQLite: one row per run,
// the event stream, and daily agent snapshots.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/castaway/internal/agents"
	"github.com/talgya/castaway/internal/engine"
)

// ErrNoRun is returned by run-scoped writes before BeginRun.
var ErrNoRun = errors.New("no run started")

// DB wraps a SQLite connection holding recorded runs.
type DB struct {
	conn *sqlx.DB

	mu  sync.RWMutex // Guards run; a host reset switches it under API readers
	run string
}

// Run is one recorded simulation run.
type Run struct {
	ID        string         `db:"id" json:"id"`
	Seed      int64          `db:"seed" json:"seed"`
	StartedAt string         `db:"started_at" json:"started_at"`
	EndedAt   sql.NullString `db:"ended_at" json:"-"`
	LastTick  uint64         `db:"last_tick" json:"last_tick"`
	Digest    sql.NullString `db:"digest" json:"-"`
}

// AgentRow is one daily snapshot of an agent.
type AgentRow struct {
	Tick    uint64  `db:"tick"`
	AgentID uint64  `db:"agent_id"`
	Name    string  `db:"name"`
	Alive   bool    `db:"alive"`
	Stage   string  `db:"stage"`
	Task    string  `db:"task"`
	Hunger  float64 `db:"hunger"`
	Energy  float64 `db:"energy"`
	Health  float64 `db:"health"`
	Social  float64 `db:"social"`
	State   string  `db:"state_json"`
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		ended_at TEXT,
		last_tick INTEGER NOT NULL DEFAULT 0,
		digest TEXT
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS agent_snapshots (
		run_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		agent_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		alive INTEGER NOT NULL,
		stage TEXT NOT NULL,
		task TEXT NOT NULL,
		hunger REAL NOT NULL,
		energy REAL NOT NULL,
		health REAL NOT NULL,
		social REAL NOT NULL,
		state_json TEXT NOT NULL,
		PRIMARY KEY (run_id, tick, agent_id)
	);

	CREATE TABLE IF NOT EXISTS run_meta (
		run_id TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (run_id, key)
	);

	CREATE INDEX IF NOT EXISTS idx_events_run_tick ON events(run_id, tick);
	CREATE INDEX IF NOT EXISTS idx_snapshots_agent ON agent_snapshots(run_id, agent_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// BeginRun registers a new run and makes it current. It returns the run ID.
func (db *DB) BeginRun(seed int64) (string, error) {
	id := uuid.NewString()
	_, err := db.conn.Exec(
		"INSERT INTO runs (id, seed, started_at) VALUES (?, ?, ?)",
		id, seed, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("begin run: %w", err)
	}
	db.mu.Lock()
	db.run = id
	db.mu.Unlock()
	slog.Info("recording run", "run", id, "seed", seed)
	return id, nil
}

// RunID returns the current run, or "" before BeginRun.
func (db *DB) RunID() string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.run
}

// FinishRun stamps the current run with its final tick and state digest.
func (db *DB) FinishRun(tick uint64, digest string) error {
	run := db.RunID()
	if run == "" {
		return ErrNoRun
	}
	_, err := db.conn.Exec(
		"UPDATE runs SET ended_at = ?, last_tick = ?, digest = ? WHERE id = ?",
		time.Now().UTC().Format(time.RFC3339), tick, digest, run,
	)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", run, err)
	}
	return nil
}

// SaveEvents appends events to the current run.
func (db *DB) SaveEvents(events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}
	run := db.RunID()
	if run == "" {
		return ErrNoRun
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		_, err := tx.Exec(
			"INSERT INTO events (run_id, tick, description, category) VALUES (?, ?, ?, ?)",
			run, e.Tick, e.Description, e.Category,
		)
		if err != nil {
			return fmt.Errorf("insert event at tick %d: %w", e.Tick, err)
		}
	}

	return tx.Commit()
}

// SaveAgentStates writes one snapshot row per agent at tick.
func (db *DB) SaveAgentStates(tick uint64, states []engine.AgentState) error {
	run := db.RunID()
	if run == "" {
		return ErrNoRun
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`INSERT OR REPLACE INTO agent_snapshots
		(run_id, tick, agent_id, name, alive, stage, task, hunger, energy, health, social, state_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, st := range states {
		stateJSON, err := json.Marshal(st)
		if err != nil {
			return fmt.Errorf("encode agent %d: %w", st.ID, err)
		}
		_, err = stmt.Exec(
			run, tick, st.ID, st.Name, st.Alive, st.Stage, st.Task,
			st.Needs.Hunger, st.Needs.Energy, st.Needs.Health, st.Needs.Social,
			string(stateJSON),
		)
		if err != nil {
			return fmt.Errorf("insert agent %d: %w", st.ID, err)
		}
	}

	if _, err := tx.Exec("UPDATE runs SET last_tick = ? WHERE id = ?", tick, run); err != nil {
		return err
	}
	return tx.Commit()
}

// SaveMeta stores a key-value pair for the current run.
func (db *DB) SaveMeta(key, value string) error {
	run := db.RunID()
	if run == "" {
		return ErrNoRun
	}
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO run_meta (run_id, key, value) VALUES (?, ?, ?)",
		run, key, value,
	)
	return err
}

// GetMeta retrieves a metadata value of the current run.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM run_meta WHERE run_id = ? AND key = ?", db.RunID(), key)
	return value, err
}

// RecentEvents returns the most recent events of the current run, newest
// first.
func (db *DB) RecentEvents(limit int) ([]engine.Event, error) {
	var events []engine.Event
	err := db.conn.Select(&events,
		"SELECT tick, description, category FROM events WHERE run_id = ? ORDER BY id DESC LIMIT ?",
		db.RunID(), limit,
	)
	return events, err
}

// Runs lists every recorded run, oldest first.
func (db *DB) Runs() ([]Run, error) {
	var runs []Run
	err := db.conn.Select(&runs,
		"SELECT id, seed, started_at, ended_at, last_tick, digest FROM runs ORDER BY rowid",
	)
	return runs, err
}

// GetRun loads one run. A missing run returns an error wrapping sql.ErrNoRows.
func (db *DB) GetRun(id string) (Run, error) {
	var r Run
	err := db.conn.Get(&r,
		"SELECT id, seed, started_at, ended_at, last_tick, digest FROM runs WHERE id = ?", id,
	)
	if err != nil {
		return r, fmt.Errorf("get run %s: %w", id, err)
	}
	return r, nil
}

// AgentHistory returns every daily snapshot of one agent in the current run.
func (db *DB) AgentHistory(id agents.AgentID) ([]AgentRow, error) {
	var rows []AgentRow
	err := db.conn.Select(&rows, `SELECT tick, agent_id, name, alive, stage, task,
		hunger, energy, health, social, state_json
		FROM agent_snapshots WHERE run_id = ? AND agent_id = ? ORDER BY tick`,
		db.RunID(), uint64(id),
	)
	return rows, err
}
