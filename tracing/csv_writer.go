package tracing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// ErrTraceExists is returned when the trace file is already there.
var ErrTraceExists = errors.New("trace file already exists")

var csvHeader = []string{
	"time", "where", "what", "kind", "src", "dst", "seq", "ttl", "size",
	"iface", "detail",
}

// CSVTraceWriter buffers records and writes them to a CSV file.
type CSVTraceWriter struct {
	path string
	file *os.File
	csv  *csv.Writer

	records    []Record
	bufferSize int
}

// NewCSVTraceWriter creates a writer for path.csv. An empty path picks a
// unique name.
func NewCSVTraceWriter(path string) *CSVTraceWriter {
	return &CSVTraceWriter{
		path:       path,
		bufferSize: 1000,
	}
}

// Path returns the name of the trace file.
func (t *CSVTraceWriter) Path() string {
	return t.path + ".csv"
}

// Init creates the trace file and writes the header. The file is flushed and
// closed when the process exits through atexit.
func (t *CSVTraceWriter) Init() error {
	if t.path == "" {
		t.path = "netsim_trace_" + xid.New().String()
	}

	filename := t.Path()
	if _, err := os.Stat(filename); err == nil {
		return fmt.Errorf("%w: %s", ErrTraceExists, filename)
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}

	t.file = file
	t.csv = csv.NewWriter(file)

	if err := t.csv.Write(csvHeader); err != nil {
		return err
	}

	atexit.Register(func() { _ = t.Close() })

	return nil
}

// Write buffers a record.
func (t *CSVTraceWriter) Write(r Record) error {
	t.records = append(t.records, r)
	if len(t.records) >= t.bufferSize {
		return t.Flush()
	}

	return nil
}

// Flush writes the buffered records.
func (t *CSVTraceWriter) Flush() error {
	for _, r := range t.records {
		row := []string{
			strconv.Itoa(r.Time), r.Where, r.What, r.Kind,
			strconv.Itoa(r.Src), strconv.Itoa(r.Dst), strconv.Itoa(r.Seq),
			strconv.Itoa(r.TTL), strconv.Itoa(r.Size), strconv.Itoa(r.Iface),
			r.Detail,
		}

		if err := t.csv.Write(row); err != nil {
			return err
		}
	}

	t.records = nil
	t.csv.Flush()

	return t.csv.Error()
}

// Close flushes and closes the file.
func (t *CSVTraceWriter) Close() error {
	if t.file == nil {
		return nil
	}

	err := t.Flush()
	if cerr := t.file.Close(); err == nil {
		err = cerr
	}

	t.file = nil

	return err
}
