package console

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/anwaleed303-sys/AI-Voice-Assistant/pkg/provider/capture"
)

func recv(t *testing.T, ch <-chan capture.Transcript) (capture.Transcript, bool) {
	t.Helper()
	select {
	case tr, ok := <-ch:
		return tr, ok
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting on transcripts channel")
		return capture.Transcript{}, false
	}
}

func TestContinuousEmitsEveryLine(t *testing.T) {
	t.Parallel()
	p := New(strings.NewReader("hello\nworld\n"))

	sess, err := p.Start(context.Background(), capture.Config{Continuous: true})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer sess.Stop()

	for _, want := range []string{"hello", "world"} {
		tr, ok := recv(t, sess.Transcripts())
		if !ok {
			t.Fatalf("channel closed before %q", want)
		}
		if tr.Text != want {
			t.Errorf("transcript = %q, want %q", tr.Text, want)
		}
	}
	if _, ok := recv(t, sess.Transcripts()); ok {
		t.Error("channel still open after input ended")
	}
}

func TestNonContinuousEndsAfterFirstTranscript(t *testing.T) {
	t.Parallel()
	p := New(strings.NewReader("first\nsecond\n"))

	sess, err := p.Start(context.Background(), capture.Config{Continuous: false})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer sess.Stop()

	tr, ok := recv(t, sess.Transcripts())
	if !ok || tr.Text != "first" {
		t.Fatalf("first transcript = %q, ok = %v", tr.Text, ok)
	}
	if _, ok := recv(t, sess.Transcripts()); ok {
		t.Error("non-continuous session emitted more than one transcript")
	}
}

func TestAutoStopEndsSessionAfterSilence(t *testing.T) {
	t.Parallel()

	// A pipe with no writes simulates a microphone that hears nothing.
	pr, pw := io.Pipe()
	t.Cleanup(func() { pw.Close() })
	p := New(pr)

	sess, err := p.Start(context.Background(), capture.Config{
		Continuous:     true,
		AutoStop:       true,
		SilenceTimeout: 20 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if _, ok := recv(t, sess.Transcripts()); ok {
		t.Error("silent session emitted a transcript")
	}
}

func TestStopEndsSession(t *testing.T) {
	t.Parallel()

	pr, pw := io.Pipe()
	t.Cleanup(func() { pw.Close() })
	p := New(pr)

	sess, err := p.Start(context.Background(), capture.Config{Continuous: true})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := sess.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := sess.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}

	if _, ok := recv(t, sess.Transcripts()); ok {
		t.Error("channel still open after Stop")
	}
}
