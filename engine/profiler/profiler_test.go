package profiler

import (
	"io"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
)

func TestTickReportsAtInterval(t *testing.T) {
	now := time.Unix(0, 0)
	logger := log.New()
	logger.SetOutput(io.Discard)
	p := NewProfiler(WithClock(func() time.Time { return now }), WithLogger(logger), WithInterval(time.Second))

	for i := range 9 {
		now = now.Add(100 * time.Millisecond)
		if _, ok := p.Tick(i == 0); ok {
			t.Fatalf("tick %d reported before the interval elapsed", i)
		}
	}
	now = now.Add(100 * time.Millisecond)
	r, ok := p.Tick(false)
	if !ok {
		t.Fatal("expected a report after one second")
	}
	if r.FPS != 10 || r.Tilings != 1 {
		t.Errorf("unexpected report %+v", r)
	}

	now = now.Add(time.Second)
	if r, _ := p.Tick(false); r.Tilings != 0 || r.FPS != 1 {
		t.Errorf("counters must reset between reports, got %+v", r)
	}
}
