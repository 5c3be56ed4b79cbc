package ft21

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sarchlab/netsim/sim/node"
	"github.com/sarchlab/netsim/sim/packet"
	"github.com/sarchlab/netsim/sim/timing"
)

// ReceiverName is the name the receiver is registered under.
const ReceiverName = "FT21Receiver"

// CopyPrefix prefixes the name of every received file.
const CopyPrefix = "copy-of-"

// Receiver accepts blocks within a window after the next expected one, and
// writes them in order to a copy of the uploaded file.
type Receiver struct {
	endpoint

	window int
	outDir string

	nextSeq  int
	pending  map[int][]byte
	filename string
	out      *os.File
	done     bool
}

// NewReceiver creates a receiver.
func NewReceiver() *Receiver {
	return &Receiver{
		endpoint: newEndpoint(ReceiverName),
		pending:  make(map[int][]byte),
	}
}

// Initialise reads WINDOW [OUTDIR]. Files are written to the working
// directory by default.
func (r *Receiver) Initialise(
	now timing.VTimeInMs,
	nodeID int,
	host node.Host,
	args []string,
) (timing.VTimeInMs, error) {
	r.start(now, nodeID, host, args)

	if len(args) < 1 || len(args) > 2 {
		return 0, fmt.Errorf("%w: want WINDOW [OUTDIR], got %v", ErrBadArgs, args)
	}

	window, err := strconv.Atoi(args[0])
	if err != nil || window < 1 {
		return 0, fmt.Errorf("%w: window %q", ErrBadArgs, args[0])
	}

	r.window = window
	r.outDir = "."

	if len(args) == 2 {
		r.outDir = args[1]
	}

	return 0, nil
}

// Path returns where the received file is written, or "" before an upload.
func (r *Receiver) Path() string {
	if r.filename == "" {
		return ""
	}

	return filepath.Join(r.outDir, CopyPrefix+r.filename)
}

// Done tells if the whole file was received.
func (r *Receiver) Done() bool {
	return r.done
}

// OnReceive answers every message.
func (r *Receiver) OnReceive(now timing.VTimeInMs, p *packet.Packet) {
	m := r.receive(now, p)
	if m == nil {
		return
	}

	client := p.Source()

	switch m := m.(type) {
	case Upload:
		r.onUpload(now, client, m)
	case Data:
		r.onData(now, client, m)
	case Fin:
		r.onFin(now, client, m)
	default:
		r.send(now, client, Error{Reason: "Unexpected packet type " + m.Type().String()})
	}
}

func (r *Receiver) onUpload(now timing.VTimeInMs, client int, m Upload) {
	if r.nextSeq > 1 {
		r.send(now, client, Error{
			Reason: "Unexpected packet type...[Already initiated a transfer...]",
		})

		return
	}

	r.nextSeq = 1
	r.filename = filepath.Base(m.Filename)
	clear(r.pending)
	r.send(now, client, Ack{Seq: 0, Optional: m.Optional})
}

func (r *Receiver) onData(now timing.VTimeInMs, client int, m Data) {
	if r.nextSeq == 0 || m.Seq < r.nextSeq || m.Seq >= r.nextSeq+r.window {
		r.send(now, client, Ack{
			Seq:           max(r.nextSeq-1, 0),
			OutsideWindow: r.window != 1,
			Optional:      m.Optional,
		})

		return
	}

	if _, ok := r.pending[m.Seq]; !ok {
		r.pending[m.Seq] = m.Block
	}

	for {
		block, ok := r.pending[r.nextSeq]
		if !ok {
			break
		}

		if err := r.write(block); err != nil {
			r.Log(now, "cannot write %s: %v", r.Path(), err)
			r.send(now, client, Error{Reason: err.Error()})

			return
		}

		delete(r.pending, r.nextSeq)
		r.nextSeq++
	}

	r.send(now, client, Ack{Seq: r.nextSeq - 1, Optional: m.Optional})
}

func (r *Receiver) onFin(now timing.VTimeInMs, client int, m Fin) {
	if !r.done && len(r.pending) == 0 && r.nextSeq == m.Seq {
		if err := r.close(); err != nil {
			r.Log(now, "cannot close %s: %v", r.Path(), err)
		}

		r.done = true
		r.stats.Report(r.Host.Report(), r.Name(), now)
	}

	r.send(now, client, Ack{Seq: m.Seq, Optional: m.Optional})
}

func (r *Receiver) open() error {
	if r.out != nil {
		return nil
	}

	if err := os.MkdirAll(r.outDir, 0o755); err != nil {
		return err
	}

	f, err := os.Create(r.Path())
	if err != nil {
		return err
	}

	r.out = f

	return nil
}

func (r *Receiver) write(block []byte) error {
	if err := r.open(); err != nil {
		return err
	}

	_, err := r.out.Write(block)

	return err
}

func (r *Receiver) close() error {
	if err := r.open(); err != nil {
		return err
	}

	err := r.out.Close()
	r.out = nil

	return err
}
