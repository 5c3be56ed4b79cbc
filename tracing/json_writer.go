package tracing

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// JSONTraceWriter writes records as a JSON array, one record per line.
type JSONTraceWriter struct {
	lock   sync.Mutex
	w      io.Writer
	closer io.Closer
	first  bool
	done   bool
}

// NewJSONTraceWriter creates a writer that writes to w. Close ends the
// array.
func NewJSONTraceWriter(w io.Writer) (*JSONTraceWriter, error) {
	if _, err := io.WriteString(w, "[\n"); err != nil {
		return nil, err
	}

	return &JSONTraceWriter{w: w, first: true}, nil
}

// CreateJSONTraceWriter creates path.json and a writer for it. An empty path
// picks a unique name. The array is ended when the process exits through
// atexit.
func CreateJSONTraceWriter(path string) (*JSONTraceWriter, string, error) {
	if path == "" {
		path = "netsim_trace_" + xid.New().String()
	}

	filename := path + ".json"
	if _, err := os.Stat(filename); err == nil {
		return nil, "", fmt.Errorf("%w: %s", ErrTraceExists, filename)
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, "", err
	}

	t, err := NewJSONTraceWriter(f)
	if err != nil {
		_ = f.Close()
		return nil, "", err
	}

	t.closer = f

	atexit.Register(func() { _ = t.Close() })

	return t, filename, nil
}

// Write writes a record.
func (t *JSONTraceWriter) Write(r Record) error {
	t.lock.Lock()
	defer t.lock.Unlock()

	b, err := json.Marshal(r)
	if err != nil {
		return err
	}

	if !t.first {
		if _, err := io.WriteString(t.w, ",\n"); err != nil {
			return err
		}
	}

	t.first = false

	_, err = t.w.Write(b)

	return err
}

// Flush does nothing. Records are written as they come.
func (t *JSONTraceWriter) Flush() error {
	return nil
}

// Close ends the array and closes the file the writer was created for.
func (t *JSONTraceWriter) Close() error {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.done {
		return nil
	}

	t.done = true

	_, err := io.WriteString(t.w, "\n]\n")

	if t.closer != nil {
		if cerr := t.closer.Close(); err == nil {
			err = cerr
		}
	}

	return err
}
