package sweep

import (
	"context"
	"errors"
	"testing"

	"github.com/haythemsaa/boxibox-backend/pkg/logger"
)

type fakeLock struct {
	granted  bool
	acquires int
	releases int
	err      error
}

func (f *fakeLock) Acquire(ctx context.Context) (bool, error) {
	f.acquires++
	return f.granted, f.err
}

func (f *fakeLock) Release(ctx context.Context) error {
	f.releases++
	return nil
}

func newSweepServiceTest(t *testing.T, lock *fakeLock, jobs ...Job) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Logger:   logger.New(logger.Options{ServiceName: "test"}),
		Registry: NewRegistry(jobs...),
		Lock:     lock,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestRunCycle_runsEveryJob(t *testing.T) {
	lock := &fakeLock{granted: true}
	first := &stubJob{name: "first"}
	second := &stubJob{name: "second"}
	svc := newSweepServiceTest(t, lock, first, second)

	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("runCycle: %v", err)
	}
	if first.runs != 1 || second.runs != 1 {
		t.Fatalf("expected both jobs to run, got %d and %d", first.runs, second.runs)
	}
	if lock.releases != 1 {
		t.Fatalf("expected lock released, got %d releases", lock.releases)
	}
}

func TestRunCycle_skipsWhenLockHeldElsewhere(t *testing.T) {
	lock := &fakeLock{granted: false}
	job := &stubJob{name: "first"}
	svc := newSweepServiceTest(t, lock, job)

	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("runCycle: %v", err)
	}
	if job.runs != 0 {
		t.Fatal("jobs must not run without the lock")
	}
	if lock.releases != 0 {
		t.Fatal("must not release a lock it does not hold")
	}
}

func TestRunCycle_lockErrorPropagates(t *testing.T) {
	lock := &fakeLock{err: errors.New("redis down")}
	svc := newSweepServiceTest(t, lock, &stubJob{name: "first"})

	if err := svc.runCycle(context.Background()); err == nil {
		t.Fatal("expected lock error")
	}
}

func TestRunCycle_jobFailureDoesNotBlockOthers(t *testing.T) {
	lock := &fakeLock{granted: true}
	failing := &stubJob{name: "failing", err: errors.New("boom")}
	healthy := &stubJob{name: "healthy"}
	svc := newSweepServiceTest(t, lock, failing, healthy)

	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("runCycle: %v", err)
	}
	if healthy.runs != 1 {
		t.Fatal("expected the healthy job to run after the failing one")
	}
}
