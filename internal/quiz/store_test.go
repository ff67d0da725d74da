package quiz

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mathquiz/internal/concepts"
	"github.com/abhisek/mathquiz/internal/questiongen"
)

// testStore returns a store with a controllable clock and sequential ids.
func testStore(ttl time.Duration) (*SessionStore, *time.Time) {
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	n := 0
	st := NewSessionStore(StoreConfig{
		Clock: func() time.Time { return now },
		NewID: func() string { n++; return fmt.Sprintf("sess-%d", n) },
		TTL:   ttl,
	})
	return st, &now
}

func TestCreateAndGet(t *testing.T) {
	st, _ := testStore(SessionTTL)

	s := st.Create("alice", "Algebra")
	require.Equal(t, "sess-1", s.ID)
	assert.Equal(t, MinLevel, s.Level)

	got, err := st.Get(s.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "Algebra", got.Topic)

	_, err = st.Get("nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestGetReturnsIndependentCopy(t *testing.T) {
	st, _ := testStore(SessionTTL)
	s := st.Create("bob", "Calculus")
	s.History = append(s.History, Record{Question: "q1", Correct: true})
	require.NoError(t, st.Update(s))

	a, err := st.Get(s.ID)
	require.NoError(t, err)
	a.History[0].Question = "mutated"
	a.Level = 5

	b, err := st.Get(s.ID)
	require.NoError(t, err)
	assert.Equal(t, "q1", b.History[0].Question)
	assert.Equal(t, MinLevel, b.Level)
}

func TestBackupAndRecover(t *testing.T) {
	st, _ := testStore(SessionTTL)
	s := st.Create("carol", "Geometry")
	s.Level = 3
	s.History = append(s.History, Record{Question: "q1", Correct: true, Level: 2})
	require.NoError(t, st.Update(s))
	require.NoError(t, st.Backup(s.ID))

	// Corrupt the live session past the backup point.
	s.Level = 1
	s.History = append(s.History, Record{Question: "q2"})
	require.NoError(t, st.Update(s))

	restored, err := st.Recover(s.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, restored.Level)
	assert.Len(t, restored.History, 1)

	// Recovery is repeatable.
	again, err := st.Recover(s.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, again.Level)
}

func TestBackupIsDeepCopy(t *testing.T) {
	st, _ := testStore(SessionTTL)
	s := st.Create("dave", "Statistics")
	s.Concepts = []concepts.Concept{{Name: "Mean", BaseDifficulty: 1}}
	s.Current = &questiongen.Result{Question: "q1", CorrectAnswer: "a1"}
	s.Asked = []string{"q1"}
	require.NoError(t, st.Update(s))
	require.NoError(t, st.Backup(s.ID))

	// Mutate the live session; the backup must not see it.
	s.Concepts[0].Name = "Median"
	s.Current.Question = "mutated"
	s.Asked[0] = "mutated"
	require.NoError(t, st.Update(s))

	restored, err := st.Recover(s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mean", restored.Concepts[0].Name)
	assert.Equal(t, "q1", restored.Current.Question)
	assert.Equal(t, []string{"q1"}, restored.Asked)
}

func TestRecoverWithoutBackup(t *testing.T) {
	st, _ := testStore(SessionTTL)
	s := st.Create("erin", "Algebra")

	_, err := st.Recover(s.ID)
	assert.ErrorIs(t, err, ErrNoBackup)
}

func TestHeartbeatAndExpiry(t *testing.T) {
	st, now := testStore(30 * time.Minute)
	stale := st.Create("frank", "Algebra")
	require.NoError(t, st.Backup(stale.ID))

	*now = now.Add(20 * time.Minute)
	fresh := st.Create("grace", "Calculus")

	*now = now.Add(15 * time.Minute)
	// stale is 35m idle, fresh is 15m idle.
	require.NoError(t, st.Heartbeat(fresh.ID))
	removed := st.CleanupExpired()
	assert.Equal(t, 1, removed)

	_, err := st.Get(stale.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = st.Recover(stale.ID)
	assert.ErrorIs(t, err, ErrNoBackup, "backup should be swept with its session")
	_, err = st.Get(fresh.ID)
	assert.NoError(t, err)
}

func TestCreateSweepsExpired(t *testing.T) {
	st, now := testStore(30 * time.Minute)
	old := st.Create("heidi", "Algebra")

	*now = now.Add(31 * time.Minute)
	_ = st.Create("ivan", "Geometry")

	_, err := st.Get(old.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, 1, st.Len())
}

func TestLockSession(t *testing.T) {
	st, _ := testStore(SessionTTL)
	s := st.Create("judy", "Algebra")

	unlock, err := st.LockSession(s.ID)
	require.NoError(t, err)
	unlock()

	_, err = st.LockSession("nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestDelete(t *testing.T) {
	st, _ := testStore(SessionTTL)
	s := st.Create("kate", "Algebra")
	require.NoError(t, st.Backup(s.ID))

	st.Delete(s.ID)
	_, err := st.Get(s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = st.Recover(s.ID)
	assert.ErrorIs(t, err, ErrNoBackup)
}
