// Package console implements playback.Provider by writing replies to an
// io.Writer. It stands in for a real synthesiser during development: the
// assistant "speaks" by printing.
package console

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/anwaleed303-sys/AI-Voice-Assistant/pkg/provider/playback"
)

// Provider writes spoken text to an io.Writer.
type Provider struct {
	w io.Writer

	mu     sync.Mutex
	cancel context.CancelFunc
}

// New returns a Provider writing to w (typically os.Stdout).
func New(w io.Writer) *Provider {
	return &Provider{w: w}
}

// Speak prints the text prefixed with the voice tag. It completes
// immediately; a pending Cancel or context cancellation suppresses output.
func (p *Provider) Speak(ctx context.Context, text string, voice playback.Voice) error {
	speakCtx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	p.cancel = cancel
	p.mu.Unlock()
	defer cancel()

	select {
	case <-speakCtx.Done():
		return speakCtx.Err()
	default:
	}

	tag := voice.Lang
	if tag == "" {
		tag = "en-US"
	}
	_, err := fmt.Fprintf(p.w, "[%s] %s\n", tag, text)
	return err
}

// Cancel aborts an in-flight Speak.
func (p *Provider) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
	}
}

// Voices returns a single synthetic voice per supported language tag.
func (p *Provider) Voices(ctx context.Context) ([]playback.Voice, error) {
	return []playback.Voice{
		{ID: "console-en", Name: "Console English", Lang: "en-US", Local: true},
		{ID: "console-ur", Name: "Console Urdu", Lang: "ur-PK", Local: true},
		{ID: "console-ar", Name: "Console Arabic", Lang: "ar-SA", Local: true},
		{ID: "console-hi", Name: "Console Hindi", Lang: "hi-IN", Local: true},
		{ID: "console-zh", Name: "Console Chinese", Lang: "zh-CN", Local: true},
		{ID: "console-ja", Name: "Console Japanese", Lang: "ja-JP", Local: true},
		{ID: "console-ko", Name: "Console Korean", Lang: "ko-KR", Local: true},
	}, nil
}

// Ensure Provider implements playback.Provider at compile time.
var _ playback.Provider = (*Provider)(nil)
