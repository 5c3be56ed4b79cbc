package ft21

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sarchlab/netsim/sim/timing"
)

// Sender defaults.
const (
	DefaultReceiver                  = 1
	DefaultTimeout  timing.VTimeInMs = 1000
)

// ErrBadArgs is returned when an FT21 application cannot use its arguments.
var ErrBadArgs = errors.New("bad ft21 arguments")

// upload is the file a sender transfers, cut in blocks numbered from 1.
type upload struct {
	name      string
	data      []byte
	blockSize int
	last      int
}

func loadUpload(path, blockSize string) (*upload, error) {
	size, err := strconv.Atoi(blockSize)
	if err != nil || size < 1 {
		return nil, fmt.Errorf("%w: block size %q", ErrBadArgs, blockSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return &upload{
		name:      filepath.Base(path),
		data:      data,
		blockSize: size,
		last:      (len(data) + size - 1) / size,
	}, nil
}

func (u *upload) block(seq int) []byte {
	from := (seq - 1) * u.blockSize
	to := min(from+u.blockSize, len(u.data))

	return u.data[from:to]
}

// message returns what travels with sequence number seq: the upload request
// for 0, a block up to the last one, and the end of the transfer after it.
func (u *upload) message(seq int) Message {
	switch {
	case seq == 0:
		return Upload{Filename: u.name}
	case seq <= u.last:
		return Data{Seq: seq, Block: u.block(seq)}
	default:
		return Fin{Seq: seq}
	}
}

func parseReceiver(args []string, at int) (int, error) {
	if len(args) <= at {
		return DefaultReceiver, nil
	}

	dst, err := strconv.Atoi(args[at])
	if err != nil {
		return 0, fmt.Errorf("%w: receiver %q", ErrBadArgs, args[at])
	}

	return dst, nil
}

// remaining returns how long to wait for a message sent at since. It is at
// least 1 so that an overdue timer still fires.
func remaining(now, since, timeout timing.VTimeInMs) timing.VTimeInMs {
	return max(1, since+timeout-now)
}
