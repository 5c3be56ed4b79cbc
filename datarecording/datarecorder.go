// Package datarecording stores simulation records in an SQLite database.
// Records are plain structs; each struct type gets its own table whose
// columns are the struct fields.
package datarecording

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"

	"github.com/fatih/structs"

	// Registers the sqlite3 driver.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

var (
	// ErrFileExists is returned when the database file is already there.
	ErrFileExists = errors.New("database file already exists")

	// ErrBadEntry is returned for entries that are not flat structs.
	ErrBadEntry = errors.New("entry must be a struct of basic fields")

	// ErrNoTable is returned when inserting into a table never created.
	ErrNoTable = errors.New("no such table")
)

// DefaultBatchSize is the number of buffered entries that triggers a flush.
const DefaultBatchSize = 10000

// DataRecorder buffers entries and writes them to tables.
type DataRecorder interface {
	// CreateTable creates a table whose columns are the fields of
	// sampleEntry.
	CreateTable(tableName string, sampleEntry any) error

	// InsertData buffers an entry of the type the table was created with.
	InsertData(tableName string, entry any) error

	// ListTables returns the table names in order.
	ListTables() []string

	// Flush writes every buffered entry.
	Flush() error

	// Close flushes and closes the database.
	Close() error
}

// New creates a recorder writing to path.sqlite3. An empty path picks a
// unique name. The recorder is flushed and closed when the process exits
// through atexit.
func New(path string) (DataRecorder, error) {
	if path == "" {
		path = "netsim_" + xid.New().String()
	}

	filename := path + ".sqlite3"
	if _, err := os.Stat(filename); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrFileExists, filename)
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, err
	}

	w := newWriter(db)
	w.filename = filename

	atexit.Register(func() { _ = w.Close() })

	return w, nil
}

// NewWithDB creates a recorder writing to an open database. Closing the
// recorder closes db.
func NewWithDB(db *sql.DB) DataRecorder {
	return newWriter(db)
}

type table struct {
	structType reflect.Type
	columns    []string
	entries    []any
}

type sqliteWriter struct {
	*sql.DB

	filename   string
	tables     map[string]*table
	batchSize  int
	entryCount int
	closed     bool
}

func newWriter(db *sql.DB) *sqliteWriter {
	return &sqliteWriter{
		DB:        db,
		tables:    make(map[string]*table),
		batchSize: DefaultBatchSize,
	}
}

func isAllowedKind(kind reflect.Kind) bool {
	switch kind {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.String:
		return true
	default:
		return false
	}
}

func checkEntry(entry any) error {
	t := reflect.TypeOf(entry)
	if t == nil || t.Kind() != reflect.Struct {
		return fmt.Errorf("%w: got %T", ErrBadEntry, entry)
	}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || !isAllowedKind(f.Type.Kind()) {
			return fmt.Errorf("%w: field %s of %T is %s",
				ErrBadEntry, f.Name, entry, f.Type.Kind())
		}
	}

	return nil
}

// quote makes a field or table name safe to use as an SQL identifier, even
// when it is a keyword such as Where or Order.
func quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteAll(names []string) []string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quote(n)
	}

	return quoted
}

func (w *sqliteWriter) CreateTable(tableName string, sampleEntry any) error {
	if err := checkEntry(sampleEntry); err != nil {
		return err
	}

	columns := strings.Join(quoteAll(structs.Names(sampleEntry)), ",\n\t")
	query := "CREATE TABLE " + quote(tableName) + " (\n\t" + columns + "\n);"

	if _, err := w.Exec(query); err != nil {
		return fmt.Errorf("creating table %s: %w", tableName, err)
	}

	w.tables[tableName] = &table{
		structType: reflect.TypeOf(sampleEntry),
		columns:    structs.Names(sampleEntry),
	}

	return nil
}

func (w *sqliteWriter) InsertData(tableName string, entry any) error {
	t, ok := w.tables[tableName]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoTable, tableName)
	}

	if reflect.TypeOf(entry) != t.structType {
		return fmt.Errorf("%w: table %s holds %s, got %T",
			ErrBadEntry, tableName, t.structType, entry)
	}

	t.entries = append(t.entries, entry)

	w.entryCount++
	if w.entryCount >= w.batchSize {
		return w.Flush()
	}

	return nil
}

func (w *sqliteWriter) ListTables() []string {
	names := make([]string, 0, len(w.tables))
	for name := range w.tables {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func (w *sqliteWriter) Flush() error {
	if w.entryCount == 0 {
		return nil
	}

	tx, err := w.Begin()
	if err != nil {
		return err
	}

	for _, name := range w.ListTables() {
		if err := w.flushTable(tx, name, w.tables[name]); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	w.entryCount = 0

	return nil
}

func (w *sqliteWriter) flushTable(tx *sql.Tx, name string, t *table) error {
	if len(t.entries) == 0 {
		return nil
	}

	marks := strings.TrimSuffix(strings.Repeat("?, ", len(t.columns)), ", ")
	columns := strings.Join(quoteAll(t.columns), ", ")

	stmt, err := tx.Prepare("INSERT INTO " + quote(name) +
		" (" + columns + ") VALUES (" + marks + ")")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, entry := range t.entries {
		if _, err := stmt.Exec(structs.Values(entry)...); err != nil {
			return fmt.Errorf("inserting into %s: %w", name, err)
		}
	}

	t.entries = nil

	return nil
}

func (w *sqliteWriter) Close() error {
	if w.closed {
		return nil
	}

	w.closed = true

	if err := w.Flush(); err != nil {
		_ = w.DB.Close()
		return err
	}

	if w.filename != "" {
		fmt.Fprintf(os.Stderr, "Data recorded to %s\n", w.filename)
	}

	return w.DB.Close()
}
