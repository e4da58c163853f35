package session

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore() (*Store, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	return NewStoreWithClock(clock.Now), clock
}

func TestCreateStartsWithZeroCounters(t *testing.T) {
	store, clock := newTestStore()

	sess, err := store.Create("u1", "🚀 TITLE: Two Sum")
	require.NoError(t, err)
	assert.Equal(t, "u1", sess.UserID)
	assert.Equal(t, 0, sess.HintsUsed)
	assert.Equal(t, 0, sess.Attempts)
	assert.Equal(t, clock.Now(), sess.StartTime)
	assert.Equal(t, "Two Sum", sess.ProblemFields.Title.Value)
	assert.Equal(t, 1, store.Count())
}

func TestCreateTwiceFails(t *testing.T) {
	store, _ := newTestStore()

	_, err := store.Create("u1", "first")
	require.NoError(t, err)

	_, err = store.Create("u1", "second")
	assert.ErrorIs(t, err, ErrSessionAlreadyActive)

	sess, ok := store.GetActive("u1")
	require.True(t, ok)
	assert.Equal(t, "first", sess.ProblemText)
}

func TestCreateAfterEndSucceeds(t *testing.T) {
	store, _ := newTestStore()

	_, err := store.Create("u1", "first")
	require.NoError(t, err)
	_, err = store.End("u1")
	require.NoError(t, err)

	_, err = store.Create("u1", "second")
	assert.NoError(t, err)
}

func TestOperationsWithoutSessionFail(t *testing.T) {
	store, _ := newTestStore()

	_, err := store.RecordHint("ghost")
	assert.ErrorIs(t, err, ErrNoActiveSession)

	_, err = store.RecordAttempt("ghost")
	assert.ErrorIs(t, err, ErrNoActiveSession)

	_, err = store.End("ghost")
	assert.ErrorIs(t, err, ErrNoActiveSession)

	_, ok := store.GetActive("ghost")
	assert.False(t, ok)
}

func TestRecordHintCounts(t *testing.T) {
	store, _ := newTestStore()
	_, err := store.Create("u1", "problem")
	require.NoError(t, err)

	for n := 1; n <= 4; n++ {
		sess, err := store.RecordHint("u1")
		require.NoError(t, err)
		assert.Equal(t, n, sess.HintsUsed)
	}

	sess, _ := store.GetActive("u1")
	assert.Equal(t, 4, sess.HintsUsed)
	assert.Equal(t, 0, sess.Attempts)
}

func TestRecordAttemptCounts(t *testing.T) {
	store, _ := newTestStore()
	_, err := store.Create("u1", "problem")
	require.NoError(t, err)

	_, err = store.RecordAttempt("u1")
	require.NoError(t, err)
	sess, err := store.RecordAttempt("u1")
	require.NoError(t, err)

	assert.Equal(t, 2, sess.Attempts)
}

func TestSnapshotsAreIsolated(t *testing.T) {
	store, _ := newTestStore()
	sess, err := store.Create("u1", "problem")
	require.NoError(t, err)

	sess.HintsUsed = 99
	active, _ := store.GetActive("u1")
	assert.Equal(t, 0, active.HintsUsed)
}

func TestEndRemovesAndReportsElapsed(t *testing.T) {
	store, clock := newTestStore()
	_, err := store.Create("u1", "problem")
	require.NoError(t, err)
	_, _ = store.RecordHint("u1")
	_, _ = store.RecordAttempt("u1")

	clock.Advance(12*time.Minute + 59*time.Second)

	sess, err := store.End("u1")
	require.NoError(t, err)
	assert.Equal(t, 12, sess.ElapsedMinutes(store.Now()))
	assert.Equal(t, 1, sess.HintsUsed)
	assert.Equal(t, 1, sess.Attempts)

	_, ok := store.GetActive("u1")
	assert.False(t, ok)
	assert.Equal(t, 0, store.Count())
}

func TestEndToEndProblemFields(t *testing.T) {
	store, _ := newTestStore()
	_, err := store.Create("u1", "🚀 TITLE: Two Sum\n🚀 DIFFICULTY: Easy\n🚀 STATEMENT: find pairs")
	require.NoError(t, err)

	sess, ok := store.GetActive("u1")
	require.True(t, ok)
	assert.Equal(t, "Two Sum", sess.ProblemFields.Title.Value)
	assert.Equal(t, "Easy", sess.ProblemFields.Difficulty.Value)
}

func TestConcurrentCreateOnlyOneWins(t *testing.T) {
	store, _ := newTestStore()

	var wins, conflicts int32
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Create("racer", "problem")
			switch err {
			case nil:
				atomic.AddInt32(&wins, 1)
			case ErrSessionAlreadyActive:
				atomic.AddInt32(&conflicts, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins)
	assert.Equal(t, int32(63), conflicts)
}

func TestOldest(t *testing.T) {
	store, clock := newTestStore()

	_, ok := store.Oldest()
	assert.False(t, ok)

	_, _ = store.Create("early", "p")
	clock.Advance(time.Minute)
	_, _ = store.Create("late", "p")

	oldest, ok := store.Oldest()
	require.True(t, ok)
	assert.Equal(t, "early", oldest.UserID)
}

func TestEndReturnsCopy(t *testing.T) {
	store, _ := newTestStore()
	_, err := store.Create("u1", "problem")
	require.NoError(t, err)

	store.mu.Lock()
	internal := store.sessions["u1"]
	store.mu.Unlock()

	sess, err := store.End("u1")
	require.NoError(t, err)
	assert.NotSame(t, internal, sess)
	assert.Equal(t, internal.UserID, sess.UserID)
}
