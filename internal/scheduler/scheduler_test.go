package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/guttosm/quantlevels/internal/ingestion"
)

type fakeJob struct {
	calls atomic.Int32
	err   error
	block chan struct{}
	ran   chan struct{}
}

func (f *fakeJob) RunIncremental(context.Context) (ingestion.Result, error) {
	f.calls.Add(1)
	if f.ran != nil {
		select {
		case f.ran <- struct{}{}:
		default:
		}
	}
	if f.block != nil {
		<-f.block
	}
	return ingestion.Result{Rows: 1}, f.err
}

func TestRegister_InvalidSpec(t *testing.T) {
	s := New(context.Background(), &fakeJob{})
	if err := s.Register("every day at noon"); err == nil {
		t.Fatalf("expected error for invalid spec")
	}
	// five-field specs lack the seconds field
	if err := s.Register("*/5 * * * *"); err == nil {
		t.Fatalf("expected error for spec without seconds")
	}
	if err := s.Register("0 30 21 * * 1-5"); err != nil {
		t.Fatalf("valid spec rejected: %v", err)
	}
}

func TestRunNow_FailureIsLogged(t *testing.T) {
	job := &fakeJob{err: errors.New("feed down")}
	s := New(context.Background(), job)

	s.RunNow()
	s.RunNow()
	if job.calls.Load() != 2 {
		t.Fatalf("calls=%d", job.calls.Load())
	}
}

func TestRunNow_SkipsOverlappingRuns(t *testing.T) {
	job := &fakeJob{block: make(chan struct{}), ran: make(chan struct{}, 1)}
	s := New(context.Background(), job)

	done := make(chan struct{})
	go func() {
		s.RunNow()
		close(done)
	}()
	<-job.ran

	s.RunNow() // skipped while the first run holds the lock
	close(job.block)
	<-done

	if job.calls.Load() != 1 {
		t.Fatalf("calls=%d want 1", job.calls.Load())
	}
}

func TestStartStop_TicksRun(t *testing.T) {
	job := &fakeJob{ran: make(chan struct{}, 1)}
	s := New(context.Background(), job)
	if err := s.Register("* * * * * *"); err != nil {
		t.Fatalf("register: %v", err)
	}

	s.Start()
	select {
	case <-job.ran:
	case <-time.After(3 * time.Second):
		t.Fatalf("no tick within 3s")
	}
	s.Stop()
}
