package tracing

// A Writer stores records.
type Writer interface {
	Write(r Record) error
	Flush() error
}
