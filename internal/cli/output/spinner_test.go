package output

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestSpinner_StartStop(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "Signing in")
	s.Start()
	time.Sleep(150 * time.Millisecond)
	s.Stop()

	out := buf.String()
	if !strings.Contains(out, "Signing in") {
		t.Errorf("output = %q, want the message", out)
	}
	if !strings.HasSuffix(out, "\r\033[K") {
		t.Errorf("output = %q, want a cleared line at the end", out)
	}
}

func TestSpinner_Finish(t *testing.T) {
	tests := []struct {
		name   string
		finish func(*Spinner)
		want   string
	}{
		{"success", func(s *Spinner) { s.Success("signed in") }, "✓ signed in\n"},
		{"fail", func(s *Spinner) { s.Fail("canceled") }, "✗ canceled\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			s := NewSpinner(&buf, "Loading")
			s.Start()
			tt.finish(s)
			if !strings.HasSuffix(buf.String(), tt.want) {
				t.Errorf("output = %q, want suffix %q", buf.String(), tt.want)
			}
		})
	}
}

func TestSpinner_StopTwice(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "Loading")
	s.Start()
	s.Stop()
	s.Stop()
}
