// Package audit persists an append-only record of workflow actions:
// template uploads, document generation, submissions and review verdicts.
// Writes are asynchronous and batched so the request path never waits on
// the audit table.
package audit

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"time"

	"github.com/fillmate/fillmate/idgen"
)

// Schema for the audit_log table. Call Logger.Init() or apply manually.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_log (
	entry_id TEXT PRIMARY KEY,
	actor TEXT NOT NULL DEFAULT '',
	action TEXT NOT NULL,
	entity TEXT NOT NULL DEFAULT '',
	detail TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	error_message TEXT NOT NULL DEFAULT '',
	timestamp INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_audit_log_ts ON audit_log(timestamp);
CREATE INDEX IF NOT EXISTS idx_audit_log_entity ON audit_log(entity) WHERE entity != '';
`

// Entry is one audit record. Zero fields are filled in by the logger.
type Entry struct {
	EntryID   string
	Actor     string // user ID, or "" for system actions
	Action    string // e.g. "template.upload", "submission.approve"
	Entity    string // affected entity ID
	Detail    string // free-form context, usually JSON
	Status    string // "success" or "error"
	Error     string
	Timestamp int64 // unix millis
}

// Logger persists audit entries to SQLite asynchronously.
type Logger struct {
	db    *sql.DB
	newID idgen.Generator
	ch    chan *Entry
	done  chan struct{}
	once  sync.Once

	mu     sync.RWMutex // guards closed against the channel close
	closed bool
}

// Option customises a Logger.
type Option func(*Logger)

// WithIDGenerator overrides the entry ID generator.
func WithIDGenerator(gen idgen.Generator) Option {
	return func(l *Logger) { l.newID = gen }
}

// NewLogger creates an audit logger backed by db and starts its flush
// goroutine. Call Close to drain pending entries.
func NewLogger(db *sql.DB, opts ...Option) *Logger {
	l := &Logger{
		db:    db,
		newID: idgen.Prefixed("aud_", idgen.Default),
		ch:    make(chan *Entry, 1024),
		done:  make(chan struct{}),
	}
	for _, o := range opts {
		o(l)
	}
	go l.flushLoop()
	return l
}

// Init creates the audit_log table if it doesn't exist.
func (l *Logger) Init() error {
	_, err := l.db.Exec(Schema)
	return err
}

func (l *Logger) fillDefaults(e *Entry) {
	if e.EntryID == "" {
		e.EntryID = l.newID()
	}
	if e.Timestamp == 0 {
		e.Timestamp = time.Now().UnixMilli()
	}
	if e.Status == "" {
		if e.Error != "" {
			e.Status = "error"
		} else {
			e.Status = "success"
		}
	}
}

// Log persists an entry synchronously.
func (l *Logger) Log(ctx context.Context, e *Entry) error {
	l.fillDefaults(e)
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO audit_log (entry_id, actor, action, entity, detail, status, error_message, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.EntryID, e.Actor, e.Action, e.Entity, e.Detail, e.Status, e.Error, e.Timestamp)
	return err
}

// LogAsync queues an entry for background persistence. Non-blocking;
// drops the entry if the buffer is full or the logger is closed.
func (l *Logger) LogAsync(e *Entry) {
	l.fillDefaults(e)
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return
	}
	select {
	case l.ch <- e:
	default:
	}
}

// Close drains the buffer and stops the flush goroutine. Entries logged
// after Close are dropped.
func (l *Logger) Close() error {
	l.once.Do(func() {
		l.mu.Lock()
		l.closed = true
		close(l.ch)
		l.mu.Unlock()
		<-l.done
	})
	return nil
}

func (l *Logger) flushLoop() {
	defer close(l.done)

	batch := make([]*Entry, 0, 32)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case e, ok := <-l.ch:
			if !ok {
				l.flushBatch(batch)
				return
			}
			batch = append(batch, e)
			if len(batch) >= 32 {
				l.flushBatch(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				l.flushBatch(batch)
				batch = batch[:0]
			}
		}
	}
}

func (l *Logger) flushBatch(batch []*Entry) {
	if len(batch) == 0 {
		return
	}

	tx, err := l.db.Begin()
	if err != nil {
		slog.Error("audit: begin tx", "error", err)
		return
	}

	stmt, err := tx.Prepare(`INSERT INTO audit_log (entry_id, actor, action, entity, detail, status, error_message, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		slog.Error("audit: prepare", "error", err)
		return
	}
	defer stmt.Close()

	for _, e := range batch {
		if _, err := stmt.Exec(e.EntryID, e.Actor, e.Action, e.Entity, e.Detail, e.Status, e.Error, e.Timestamp); err != nil {
			slog.Error("audit: insert", "error", err)
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("audit: commit", "error", err)
	}
}
