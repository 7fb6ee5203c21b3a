package storage

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"sync"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"

	"github.com/tebeka/atexit"
)

// SQLiteWriter streams trace rows into a SQLite database, one table row
// per step. Rows are buffered and written in a transaction every batchSize
// rows, on Flush, on Close and at process exit.
type SQLiteWriter struct {
	db        *sql.DB
	insert    *sql.Stmt
	runID     string
	columns   []string
	pending   [][]float64
	batchSize int
	step      int
	closed    bool
	mu        sync.Mutex
}

// NewSQLiteWriter creates path and a trace table with one REAL column per
// trace column. It fails if path already exists.
func NewSQLiteWriter(path, runID string, columns []string) (*SQLiteWriter, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("file %s already exists", path)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	w := &SQLiteWriter{
		db:        db,
		runID:     runID,
		columns:   append([]string(nil), columns...),
		batchSize: 10000,
	}

	if err := w.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	atexit.Register(func() { w.Close() })
	return w, nil
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func (w *SQLiteWriter) createTables() error {
	defs := make([]string, 0, len(w.columns)+2)
	names := make([]string, 0, len(w.columns)+2)
	defs = append(defs, "run_id TEXT NOT NULL", "step INTEGER NOT NULL")
	names = append(names, "run_id", "step")
	for _, c := range w.columns {
		defs = append(defs, quote(c)+" REAL")
		names = append(names, quote(c))
	}

	stmts := []string{
		"CREATE TABLE IF NOT EXISTS trace (" + strings.Join(defs, ", ") + ")",
		"CREATE INDEX IF NOT EXISTS trace_step_index ON trace (run_id, step)",
		"CREATE TABLE IF NOT EXISTS columns (position INTEGER PRIMARY KEY, name TEXT NOT NULL)",
	}
	for _, s := range stmts {
		if _, err := w.db.Exec(s); err != nil {
			return fmt.Errorf("sqlite: %w", err)
		}
	}
	for i, c := range w.columns {
		if _, err := w.db.Exec("INSERT INTO columns (position, name) VALUES (?, ?)", i, c); err != nil {
			return fmt.Errorf("sqlite: %w", err)
		}
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ")
	stmt, err := w.db.Prepare("INSERT INTO trace (" + strings.Join(names, ", ") + ") VALUES (" + placeholders + ")")
	if err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}
	w.insert = stmt
	return nil
}

func (w *SQLiteWriter) WriteRow(row []float64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return fmt.Errorf("sqlite: writer closed")
	}
	if len(row) != len(w.columns) {
		return fmt.Errorf("sqlite: row has %d values, table has %d columns", len(row), len(w.columns))
	}
	w.pending = append(w.pending, append([]float64(nil), row...))
	if len(w.pending) >= w.batchSize {
		return w.flushLocked()
	}
	return nil
}

func (w *SQLiteWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flushLocked()
}

func (w *SQLiteWriter) flushLocked() error {
	if len(w.pending) == 0 || w.closed {
		return nil
	}

	tx, err := w.db.Begin()
	if err != nil {
		return err
	}
	stmt := tx.Stmt(w.insert)

	// Step numbers only advance once the batch is committed, so a failed
	// batch is retried with the same numbering.
	step := w.step
	args := make([]any, len(w.columns)+2)
	for _, row := range w.pending {
		args[0] = w.runID
		args[1] = step
		for i, v := range row {
			args[i+2] = v
		}
		if _, err := stmt.Exec(args...); err != nil {
			tx.Rollback()
			return fmt.Errorf("sqlite: step %d: %w", step, err)
		}
		step++
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	w.step = step
	w.pending = w.pending[:0]
	return nil
}

// Close flushes pending rows and closes the database. It is safe to call
// more than once.
func (w *SQLiteWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	err := w.flushLocked()
	w.closed = true
	w.insert.Close()
	if cerr := w.db.Close(); err == nil {
		err = cerr
	}
	return err
}

// ReadSQLite reads back the trace of runID from a database written by
// SQLiteWriter.
func ReadSQLite(path, runID string) ([]string, [][]float64, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, nil, err
	}
	defer db.Close()

	var columns []string
	rows, err := db.Query("SELECT name FROM columns ORDER BY position")
	if err != nil {
		return nil, nil, err
	}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, nil, err
		}
		columns = append(columns, name)
	}
	rows.Close()

	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = quote(c)
	}
	rows, err = db.Query("SELECT "+strings.Join(names, ", ")+" FROM trace WHERE run_id = ? ORDER BY step", runID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var out [][]float64
	for rows.Next() {
		row := make([]float64, len(columns))
		ptrs := make([]any, len(columns))
		for i := range row {
			ptrs[i] = &row[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		out = append(out, row)
	}
	return columns, out, rows.Err()
}
