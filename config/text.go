package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sarchlab/netsim/sim/timing"
)

// ErrMalformedLine is returned for text lines that cannot be understood.
var ErrMalformedLine = errors.New("malformed line")

// LineError tells which line of a text scenario is malformed.
type LineError struct {
	Line   int
	Text   string
	Reason string
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %s: %s: %q", e.Line, ErrMalformedLine, e.Reason, e.Text)
}

// Unwrap returns ErrMalformedLine.
func (e *LineError) Unwrap() error {
	return ErrMalformedLine
}

// Parse reads a text scenario. Each line is one statement:
//
//	parameter NAME [VALUE]
//	node ID IFACE_COUNT ROUTING APP [ARGS...]
//	link N.I N.I BANDWIDTH LATENCY ERROR_RATE JITTER [down]
//	traceroute TIME SRC DST
//	uplink|downlink TIME N.I N.I
//	dumproutes|dumpcontrolstate|dumpappstate|dumppacketstats TIME all|ID
//
// Keywords ignore case and may be written with underscores. Lines starting
// with # are comments.
func Parse(r io.Reader) (*Scenario, error) {
	s := &Scenario{}
	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++

		text := scanner.Text()
		if err := s.parseLine(lineNo, text); err != nil {
			return nil, err
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Scenario) parseLine(lineNo int, text string) error {
	fields := strings.Fields(text)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}

	malformed := func(format string, args ...any) error {
		return &LineError{Line: lineNo, Text: text, Reason: fmt.Sprintf(format, args...)}
	}

	keyword := strings.ToLower(fields[0])

	switch keyword {
	case "parameter":
		return s.parseParameter(fields, malformed)
	case "node":
		return s.parseNode(lineNo, fields, malformed)
	case "link":
		return s.parseLink(lineNo, fields, malformed)
	}

	kind, ok := EventKind(keyword)
	if !ok {
		return malformed("unknown statement %q", fields[0])
	}

	want := 3
	switch kind {
	case timing.EventTraceroute, timing.EventUpLink, timing.EventDownLink:
		want = 4
	}

	if len(fields) != want {
		return malformed("%s needs %d arguments", keyword, want-1)
	}

	t, err := strconv.Atoi(fields[1])
	if err != nil || t < 0 {
		return malformed("bad time %q", fields[1])
	}

	s.Events = append(s.Events, Event{
		Kind: kind.String(),
		Time: t,
		Args: fields[2:],
		Line: lineNo,
	})

	return nil
}

type malformedFunc func(format string, args ...any) error

func (s *Scenario) parseParameter(fields []string, malformed malformedFunc) error {
	switch len(fields) {
	case 2:
		s.Parameters = append(s.Parameters, Parameter{Name: fields[1]})
	case 3:
		s.Parameters = append(s.Parameters, Parameter{Name: fields[1], Value: fields[2]})
	default:
		return malformed("parameter with wrong number of arguments")
	}

	return nil
}

func (s *Scenario) parseNode(lineNo int, fields []string, malformed malformedFunc) error {
	if len(fields) < 5 {
		return malformed("node needs ID IFACE_COUNT ROUTING APP")
	}

	id, err := strconv.Atoi(fields[1])
	if err != nil {
		return malformed("bad node id %q", fields[1])
	}

	ifaces, err := strconv.Atoi(fields[2])
	if err != nil {
		return malformed("bad interface count %q", fields[2])
	}

	s.Nodes = append(s.Nodes, Node{
		ID:          id,
		Interfaces:  ifaces,
		Routing:     fields[3],
		Application: fields[4],
		Args:        fields[5:],
		Line:        lineNo,
	})

	return nil
}

func (s *Scenario) parseLink(lineNo int, fields []string, malformed malformedFunc) error {
	if len(fields) != 7 && len(fields) != 8 {
		return malformed("link needs N.I N.I BANDWIDTH LATENCY ERROR_RATE JITTER [down]")
	}

	for _, ep := range fields[1:3] {
		if _, err := ParseEndpoint(ep); err != nil {
			return malformed("%v", err)
		}
	}

	l := Link{A: fields[1], Z: fields[2], Line: lineNo}

	var err error

	if l.Bandwidth, err = strconv.ParseInt(fields[3], 10, 64); err != nil {
		return malformed("bad bandwidth %q", fields[3])
	}

	if l.Latency, err = strconv.Atoi(fields[4]); err != nil {
		return malformed("bad latency %q", fields[4])
	}

	if l.ErrorRate, err = strconv.ParseFloat(fields[5], 64); err != nil {
		return malformed("bad error rate %q", fields[5])
	}

	if l.Jitter, err = strconv.ParseFloat(fields[6], 64); err != nil {
		return malformed("bad jitter %q", fields[6])
	}

	if len(fields) == 8 {
		if !strings.EqualFold(fields[7], "down") {
			return malformed("unexpected %q after link", fields[7])
		}

		l.Down = true
	}

	s.Links = append(s.Links, l)

	return nil
}
