// Package console implements capture.Provider over an io.Reader, one line per
// utterance. It stands in for a real speech recogniser during development and
// in end-to-end tests: type a line, get a finalized transcript.
package console

import (
	"bufio"
	"context"
	"io"
	"sync"
	"time"

	"github.com/anwaleed303-sys/AI-Voice-Assistant/pkg/provider/capture"
)

// Provider reads utterances line-by-line from an io.Reader.
type Provider struct {
	r io.Reader
}

// New returns a Provider reading from r (typically os.Stdin).
func New(r io.Reader) *Provider {
	return &Provider{r: r}
}

// Start opens a session that emits one transcript per non-empty line. In
// non-continuous mode the session ends after the first transcript, matching
// single-utterance recognition. With AutoStop set, the session also ends
// after SilenceTimeout with no input.
func (p *Provider) Start(ctx context.Context, cfg capture.Config) (capture.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := &session{
		transcripts: make(chan capture.Transcript, 1),
		errors:      make(chan capture.Error, 1),
		done:        make(chan struct{}),
	}

	go s.run(ctx, p.r, cfg)
	return s, nil
}

type session struct {
	transcripts chan capture.Transcript
	errors      chan capture.Error

	stopOnce sync.Once
	done     chan struct{}
}

func (s *session) run(ctx context.Context, r io.Reader, cfg capture.Config) {
	defer close(s.transcripts)
	defer close(s.errors)

	scanner := bufio.NewScanner(r)
	lines := make(chan string)
	go func() {
		defer close(lines)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-s.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	timeout := cfg.SilenceTimeout
	if timeout <= 0 {
		timeout = capture.DefaultSilenceTimeout
	}

	for {
		// The inactivity window restarts after every line.
		var idle <-chan time.Time
		if cfg.AutoStop {
			idle = time.After(timeout)
		}

		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-idle:
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			select {
			case s.transcripts <- capture.Transcript{Text: line, Confidence: 1, At: time.Now()}:
			case <-s.done:
				return
			case <-ctx.Done():
				return
			}
			if !cfg.Continuous {
				return
			}
		}
	}
}

func (s *session) Transcripts() <-chan capture.Transcript { return s.transcripts }
func (s *session) Errors() <-chan capture.Error           { return s.errors }

// Stop ends the session. Safe to call more than once.
func (s *session) Stop() error {
	s.stopOnce.Do(func() { close(s.done) })
	return nil
}

// Ensure the types satisfy the capture interfaces at compile time.
var (
	_ capture.Provider = (*Provider)(nil)
	_ capture.Session  = (*session)(nil)
)
