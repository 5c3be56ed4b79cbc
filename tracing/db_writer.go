package tracing

import (
	"github.com/sarchlab/netsim/datarecording"
)

// TraceTable is the table packet records are stored in.
const TraceTable = "packet_trace"

// DBTraceWriter stores records through a data recorder.
type DBTraceWriter struct {
	backend datarecording.DataRecorder
}

// NewDBTraceWriter creates the trace table in backend.
func NewDBTraceWriter(backend datarecording.DataRecorder) (*DBTraceWriter, error) {
	if err := backend.CreateTable(TraceTable, Record{}); err != nil {
		return nil, err
	}

	return &DBTraceWriter{backend: backend}, nil
}

// Write buffers a record in the backend.
func (t *DBTraceWriter) Write(r Record) error {
	return t.backend.InsertData(TraceTable, r)
}

// Flush writes the buffered records.
func (t *DBTraceWriter) Flush() error {
	return t.backend.Flush()
}
