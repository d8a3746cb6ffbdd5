package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alex-pricope/online-voting-system/logging"
	"github.com/alex-pricope/online-voting-system/storage"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logging.Log = logrus.New()
}

var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func seed(t *testing.T, polls *storage.MemoryPollStorage, id string, status storage.PollStatus, start, end time.Time) {
	t.Helper()
	require.NoError(t, polls.Create(context.Background(), &storage.Poll{
		ID:        id,
		Status:    status,
		StartTime: start,
		EndTime:   end,
		CreatedAt: base,
	}))
}

func status(t *testing.T, polls *storage.MemoryPollStorage, id string) storage.PollStatus {
	t.Helper()
	p, err := polls.Get(context.Background(), id)
	require.NoError(t, err)
	return p.Status
}

func TestRunOnce_MovesPollsForward(t *testing.T) {
	polls := storage.NewMemoryPollStorage()
	clock := clockwork.NewFakeClockAt(base)

	seed(t, polls, "due-start", storage.PollStatusNotStarted, base.Add(-time.Minute), base.Add(time.Hour))
	seed(t, polls, "future", storage.PollStatusNotStarted, base.Add(time.Hour), base.Add(2*time.Hour))
	seed(t, polls, "due-end", storage.PollStatusInProgress, base.Add(-time.Hour), base)
	seed(t, polls, "running", storage.PollStatusInProgress, base.Add(-time.Hour), base.Add(time.Hour))
	seed(t, polls, "missed", storage.PollStatusNotStarted, base.Add(-2*time.Hour), base.Add(-time.Hour))

	s := NewStatusScheduler(polls, clock, time.Minute)
	result, err := s.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, base, result.RanAt)
	assert.Equal(t, 1, result.Started)
	assert.Equal(t, 2, result.Ended)

	assert.Equal(t, storage.PollStatusInProgress, status(t, polls, "due-start"))
	assert.Equal(t, storage.PollStatusNotStarted, status(t, polls, "future"))
	assert.Equal(t, storage.PollStatusEnded, status(t, polls, "due-end"))
	assert.Equal(t, storage.PollStatusInProgress, status(t, polls, "running"))
	assert.Equal(t, storage.PollStatusEnded, status(t, polls, "missed"))
}

func TestRunOnce_SkipsDeletedPolls(t *testing.T) {
	polls := storage.NewMemoryPollStorage()
	clock := clockwork.NewFakeClockAt(base)

	seed(t, polls, "deleted", storage.PollStatusNotStarted, base.Add(-time.Minute), base.Add(time.Hour))
	require.NoError(t, polls.SoftDelete(context.Background(), "deleted", base))

	result, err := NewStatusScheduler(polls, clock, time.Minute).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Started)
	assert.Equal(t, storage.PollStatusNotStarted, status(t, polls, "deleted"))
}

func TestRunOnce_IsIdempotent(t *testing.T) {
	polls := storage.NewMemoryPollStorage()
	clock := clockwork.NewFakeClockAt(base)
	seed(t, polls, "p", storage.PollStatusNotStarted, base.Add(-time.Minute), base.Add(time.Hour))

	s := NewStatusScheduler(polls, clock, time.Minute)
	first, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	second, err := s.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, first.Started)
	assert.Zero(t, second.Started)
	assert.Zero(t, second.Ended)
}

func TestStart_SweepsOnEveryTick(t *testing.T) {
	polls := storage.NewMemoryPollStorage()
	clock := clockwork.NewFakeClockAt(base)
	seed(t, polls, "p", storage.PollStatusNotStarted, base.Add(30*time.Second), base.Add(90*time.Second))

	s := NewStatusScheduler(polls, clock, time.Minute)
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	clock.BlockUntil(1)
	assert.Equal(t, storage.PollStatusNotStarted, status(t, polls, "p"))

	clock.Advance(time.Minute)
	assert.Eventually(t, func() bool {
		return status(t, polls, "p") == storage.PollStatusInProgress
	}, time.Second, 5*time.Millisecond)

	clock.Advance(time.Minute)
	assert.Eventually(t, func() bool {
		return status(t, polls, "p") == storage.PollStatusEnded
	}, time.Second, 5*time.Millisecond)
}

func TestStart_Twice(t *testing.T) {
	s := NewStatusScheduler(storage.NewMemoryPollStorage(), clockwork.NewFakeClockAt(base), time.Minute)
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.ErrorIs(t, s.Start(context.Background()), ErrAlreadyRunning)
}

func TestStop_WithoutStart(t *testing.T) {
	s := NewStatusScheduler(storage.NewMemoryPollStorage(), clockwork.NewFakeClockAt(base), 0)
	assert.Equal(t, DefaultInterval, s.interval)
	assert.NotPanics(t, s.Stop)
}

type failingPolls struct {
	storage.PollStorage
	startErr error
	ended    int
}

func (f *failingPolls) StartDue(context.Context, time.Time) (int, error) {
	return 0, f.startErr
}

func (f *failingPolls) EndDue(context.Context, time.Time) (int, error) {
	f.ended++
	return 1, nil
}

func TestRunOnce_EndPassRunsAfterStartFailure(t *testing.T) {
	boom := errors.New("throttled")
	polls := &failingPolls{startErr: boom}

	result, err := NewStatusScheduler(polls, clockwork.NewFakeClockAt(base), time.Minute).RunOnce(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, polls.ended)
	assert.Equal(t, 1, result.Ended)
}

type panickingPolls struct {
	storage.PollStorage
}

func (panickingPolls) StartDue(context.Context, time.Time) (int, error) {
	panic("store exploded")
}

func TestTick_RecoversFromPanic(t *testing.T) {
	s := NewStatusScheduler(panickingPolls{}, clockwork.NewFakeClockAt(base), time.Minute)
	assert.NotPanics(t, func() { s.tick(context.Background()) })
}
