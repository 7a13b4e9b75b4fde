package command

import (
	"bufio"
	"errors"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Reader feeds the command queue from the external command FIFO. It reads
// newline-delimited lines, parses them, and pushes valid commands; when
// the stream runs dry it sleeps a second and tries again, matching the
// producer's append-style writes.
type Reader struct {
	path   string
	parser *Parser
	q      *Queue
	log    zerolog.Logger
}

// NewReader returns a reader for the FIFO at path, producing into q.
func NewReader(path string, parser *Parser, q *Queue, log zerolog.Logger) *Reader {
	return &Reader{path: path, parser: parser, q: q, log: log}
}

// Run blocks forever consuming the FIFO; callers start it on its own
// goroutine.
func (r *Reader) Run() {
	f, err := os.Open(r.path)
	if err != nil {
		r.log.Error().Err(err).Str("path", r.path).Msg("Failed to open command input path")
		return
	}
	defer f.Close()

	br := bufio.NewReader(f)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			r.Submit(line)
		}

		if err != nil {
			if !errors.Is(err, io.EOF) {
				r.log.Error().Err(err).Msg("Command input read failed")
			}
			time.Sleep(time.Second)
		}
	}
}

// Submit parses one command line and queues it if valid. Malformed lines
// are dropped with a diagnostic. This is also the entry point for
// commands arriving over the net server's boatcmd request.
func (r *Reader) Submit(line string) error {
	cmd, err := r.parser.Parse(line)
	if err != nil {
		r.log.Debug().Err(err).Msg("Discarding bad command line")
		return err
	}

	r.q.Push(cmd)
	return nil
}
