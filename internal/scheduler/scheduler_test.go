package scheduler_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lendaro/loanledger/internal/apperrors"
	"github.com/lendaro/loanledger/internal/core/domain"
	"github.com/lendaro/loanledger/internal/scheduler"
)

// MockAccrualService is a mock type for the AccrualSvcFacade interface
type MockAccrualService struct {
	mock.Mock
}

func (m *MockAccrualService) Run(ctx context.Context, start, end time.Time, userID string) (*domain.AccrualBatch, error) {
	args := m.Called(ctx, start, end, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccrualBatch), args.Error(1)
}

func (m *MockAccrualService) Resume(ctx context.Context, batchID string, userID string) (*domain.AccrualBatch, error) {
	args := m.Called(ctx, batchID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccrualBatch), args.Error(1)
}

func (m *MockAccrualService) GetBatchByID(ctx context.Context, batchID string) (*domain.AccrualBatch, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccrualBatch), args.Error(1)
}

func (m *MockAccrualService) ListBatches(ctx context.Context, limit, offset int) ([]domain.AccrualBatch, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccrualBatch), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitForSignal(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestScheduler_RunsJobsAndStopsOnCancel(t *testing.T) {
	s := scheduler.New(testLogger(), time.Second)

	ran := make(chan struct{}, 8)
	s.Register("tick", 5*time.Millisecond, func(ctx context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)

	waitForSignal(t, ran, "first run")
	waitForSignal(t, ran, "second run")

	cancel()
	done := make(chan struct{})
	go func() {
		s.Wait()
		close(done)
	}()
	waitForSignal(t, done, "scheduler shutdown")
}

func TestScheduler_SurvivesPanickingJob(t *testing.T) {
	s := scheduler.New(testLogger(), time.Second)

	var runs atomic.Int64
	ran := make(chan struct{}, 8)
	s.Register("flaky", 5*time.Millisecond, func(ctx context.Context) error {
		if runs.Add(1) == 1 {
			panic("job blew up")
		}
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	// A run after the panic proves the loop recovered.
	waitForSignal(t, ran, "run after panic")

	cancel()
	s.Wait()
	assert.GreaterOrEqual(t, runs.Load(), int64(2))
}

func TestScheduler_RunTimeoutBoundsEachRun(t *testing.T) {
	s := scheduler.New(testLogger(), 10*time.Millisecond)

	errs := make(chan error, 1)
	s.Register("slow", 5*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		select {
		case errs <- ctx.Err():
		default:
		}
		return ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)

	select {
	case err := <-errs:
		// The parent context is still live here, so the deadline must have
		// come from the per-run timeout.
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the run to be cut off")
	}

	cancel()
	s.Wait()
}

func TestAccrualDailyJob_Success(t *testing.T) {
	mockSvc := new(MockAccrualService)
	batch := &domain.AccrualBatch{
		BatchID:    "batch-1",
		Status:     domain.BatchCompleted,
		EntryCount: 3,
	}
	mockSvc.On("Run", mock.Anything, mock.Anything, mock.Anything, domain.SystemUserID).
		Return(batch, nil).Once()

	err := scheduler.AccrualDailyJob(mockSvc)(context.Background())

	require.NoError(t, err)
	mockSvc.AssertExpectations(t)

	// The job targets yesterday, a one day range ending at today's UTC midnight.
	call := mockSvc.Calls[0]
	start := call.Arguments.Get(1).(time.Time)
	end := call.Arguments.Get(2).(time.Time)
	assert.Equal(t, 24*time.Hour, end.Sub(start))
}

func TestAccrualDailyJob_DuplicateRangeIsNotAnError(t *testing.T) {
	mockSvc := new(MockAccrualService)
	mockSvc.On("Run", mock.Anything, mock.Anything, mock.Anything, domain.SystemUserID).
		Return(nil, apperrors.ErrDuplicateBatch).Once()

	err := scheduler.AccrualDailyJob(mockSvc)(context.Background())

	assert.NoError(t, err)
	mockSvc.AssertExpectations(t)
}

func TestAccrualDailyJob_PropagatesFailure(t *testing.T) {
	mockSvc := new(MockAccrualService)
	runErr := errors.New("posting engine unavailable")
	mockSvc.On("Run", mock.Anything, mock.Anything, mock.Anything, domain.SystemUserID).
		Return(nil, runErr).Once()

	err := scheduler.AccrualDailyJob(mockSvc)(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, runErr)
}
