// Package journal records spawn lifecycle events to a SQLite database.
//
// The journal exists for after-the-fact accounting: which children a reactor
// launched, with what argv, and how they ended. Writes go through a buffered
// channel consumed by a single writer goroutine, so a reactor thread-slot
// recording an event never blocks on disk I/O. When the buffer is full the
// event is dropped with a warning; the journal is an audit aid, not a
// correctness dependency.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	// Register the pure-Go SQLite driver (no CGO required).
	_ "modernc.org/sqlite"
)

// Kind labels one journal entry.
type Kind string

// Entry kinds.
const (
	KindSpawn Kind = "spawn"
	KindExit  Kind = "exit"
)

// bufferSize is the number of in-flight events the writer can fall behind by
// before Record calls start dropping.
const bufferSize = 256

// Entry is one recorded lifecycle event.
type Entry struct {
	HandleID string
	Kind     Kind
	PID      int
	Argv     string
	Status   int
	Outcome  string
	At       time.Time
}

// Journal is an open spawn journal. Record methods are safe to call from any
// goroutine; Close must be called exactly once, after all recording has
// stopped.
type Journal struct {
	db     *sql.DB
	events chan Entry
	done   chan struct{}
	log    *slog.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS spawn_events (
	seq       INTEGER PRIMARY KEY AUTOINCREMENT,
	handle_id TEXT    NOT NULL,
	kind      TEXT    NOT NULL,
	pid       INTEGER NOT NULL,
	argv      TEXT    NOT NULL DEFAULT '',
	status    INTEGER NOT NULL DEFAULT 0,
	outcome   TEXT    NOT NULL DEFAULT '',
	at_ns     INTEGER NOT NULL
)`

// Open creates or opens the journal database at path and starts the writer.
// If logger is nil, slog.Default() is used.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Journal, error) {
	if logger == nil {
		logger = slog.Default()
	}

	// WAL keeps the writer goroutine from stalling readers of Recent; the
	// busy timeout covers the brief overlap between them. NORMAL synchronous
	// is enough for accounting data.
	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)",
		path,
	)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create journal schema: %w", err)
	}

	j := &Journal{
		db:     db,
		events: make(chan Entry, bufferSize),
		done:   make(chan struct{}),
		log:    logger,
	}
	go j.writer()
	return j, nil
}

// writer drains the event channel into the database until Close closes it.
func (j *Journal) writer() {
	defer close(j.done)
	for e := range j.events {
		_, err := j.db.Exec(
			`INSERT INTO spawn_events (handle_id, kind, pid, argv, status, outcome, at_ns)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.HandleID, string(e.Kind), e.PID, e.Argv, e.Status, e.Outcome, e.At.UnixNano(),
		)
		if err != nil {
			j.log.Warn("journal write failed", "kind", e.Kind, "pid", e.PID, "err", err)
		}
	}
}

// record enqueues an entry without blocking, dropping it if the writer has
// fallen bufferSize events behind.
func (j *Journal) record(e Entry) {
	if j == nil {
		return
	}
	e.At = time.Now()
	select {
	case j.events <- e:
	default:
		j.log.Warn("journal buffer full, dropping event", "kind", e.Kind, "pid", e.PID)
	}
}

// RecordSpawn records a successful launch. Safe on a nil Journal.
func (j *Journal) RecordSpawn(handleID string, pid int, argv []string) {
	j.record(Entry{HandleID: handleID, Kind: KindSpawn, PID: pid, Argv: strings.Join(argv, " ")})
}

// RecordExit records a reaped child. Safe on a nil Journal.
func (j *Journal) RecordExit(handleID string, pid, status int, outcome string) {
	j.record(Entry{HandleID: handleID, Kind: KindExit, PID: pid, Status: status, Outcome: outcome})
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT handle_id, kind, pid, argv, status, outcome, at_ns
		 FROM spawn_events ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Entry
	for rows.Next() {
		var e Entry
		var kind string
		var atNS int64
		if err := rows.Scan(&e.HandleID, &kind, &e.PID, &e.Argv, &e.Status, &e.Outcome, &atNS); err != nil {
			return nil, fmt.Errorf("scan journal row: %w", err)
		}
		e.Kind = Kind(kind)
		e.At = time.Unix(0, atNS)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal rows: %w", err)
	}
	return out, nil
}

// Close stops the writer, flushes queued events and closes the database.
// Safe on a nil Journal.
func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	close(j.events)
	<-j.done
	return j.db.Close()
}
