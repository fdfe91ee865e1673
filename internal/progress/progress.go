package progress

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"webhookutil/internal/core"
)

// Progress prints one line per attempt. Successes go to the output writer,
// failures go through the logger so they land on the error stream.
type Progress struct {
	log     zerolog.Logger
	quiet   bool
	workers int
	output  io.Writer
	mu      sync.Mutex
}

var _ core.Reporter = (*Progress)(nil)

// NewProgress takes the quiet flag and worker count from the run it reports on.
func NewProgress(log zerolog.Logger, run *core.RunConfig) *Progress {
	return &Progress{
		log:     log,
		quiet:   run.Quiet,
		workers: run.Workers,
		output:  os.Stdout,
	}
}

func (p *Progress) SetOutput(w io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.output = w
}

// Report is called concurrently by every worker.
func (p *Progress) Report(a core.Attempt) {
	if !a.Success {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.log.Error().
			Err(a.Err).
			Int("worker", a.Worker).
			Int("attempt", a.Attempt).
			Msg("failed to send JSON")
		return
	}

	if p.workers > 1 {
		p.Printf("[worker %d] Ping %d: JSON sent successfully", a.Worker, a.Attempt)
		return
	}
	p.Printf("Ping %d: JSON sent successfully", a.Attempt)
}

func (p *Progress) Print(message string) {
	if p.quiet {
		return
	}
	p.mu.Lock()
	fmt.Fprintln(p.output, message)
	p.mu.Unlock()
}

func (p *Progress) Printf(format string, args ...interface{}) {
	if p.quiet {
		return
	}
	p.mu.Lock()
	fmt.Fprintf(p.output, format+"\n", args...)
	p.mu.Unlock()
}
