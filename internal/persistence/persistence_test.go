package persistence

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/castaway/internal/engine"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestWritesNeedARun(t *testing.T) {
	db := openTestDB(t)
	assert.ErrorIs(t, db.SaveEvents([]engine.Event{{Tick: 1}}), ErrNoRun)
	assert.ErrorIs(t, db.SaveMeta("k", "v"), ErrNoRun)
	assert.ErrorIs(t, db.FinishRun(1, "x"), ErrNoRun)
	assert.NoError(t, db.SaveEvents(nil))
}

func TestRecordRun(t *testing.T) {
	db := openTestDB(t)
	id, err := db.BeginRun(42)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	assert.Equal(t, id, db.RunID())

	require.NoError(t, db.SaveEvents([]engine.Event{
		{Tick: 3, Description: "Ama caught a fish", Category: "fishing"},
		{Tick: 9, Description: "Kofi died (starvation) at age 30", Category: "death"},
	}))
	require.NoError(t, db.SaveMeta("tuning", "default"))
	require.NoError(t, db.FinishRun(10, "abc123"))

	events, err := db.RecentEvents(10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "death", events[0].Category)
	assert.Equal(t, uint64(3), events[1].Tick)

	v, err := db.GetMeta("tuning")
	require.NoError(t, err)
	assert.Equal(t, "default", v)

	run, err := db.GetRun(id)
	require.NoError(t, err)
	assert.Equal(t, int64(42), run.Seed)
	assert.Equal(t, uint64(10), run.LastTick)
	assert.Equal(t, "abc123", run.Digest.String)
	assert.True(t, run.EndedAt.Valid)

	_, err = db.GetRun("missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestEventsAreScopedToRun(t *testing.T) {
	db := openTestDB(t)
	_, err := db.BeginRun(1)
	require.NoError(t, err)
	require.NoError(t, db.SaveEvents([]engine.Event{{Tick: 1, Description: "first", Category: "weather"}}))

	_, err = db.BeginRun(2)
	require.NoError(t, err)
	events, err := db.RecentEvents(10)
	require.NoError(t, err)
	assert.Empty(t, events)

	runs, err := db.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, int64(1), runs[0].Seed)
	assert.Equal(t, int64(2), runs[1].Seed)
}

func TestSaveAgentStates(t *testing.T) {
	sim := engine.New(engine.DefaultConfig(), 7)
	sim.Step()
	states := sim.AgentStates()
	require.NotEmpty(t, states)

	db := openTestDB(t)
	_, err := db.BeginRun(7)
	require.NoError(t, err)
	require.NoError(t, db.SaveAgentStates(sim.Tick, states))
	// Rewriting the same tick replaces rows.
	require.NoError(t, db.SaveAgentStates(sim.Tick, states))

	rows, err := db.AgentHistory(states[0].ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, states[0].Name, rows[0].Name)
	assert.True(t, rows[0].Alive)
	assert.InDelta(t, states[0].Needs.Hunger, rows[0].Hunger, 1e-9)
	assert.Contains(t, rows[0].State, `"name":"`+states[0].Name+`"`)

	run, err := db.GetRun(db.RunID())
	require.NoError(t, err)
	assert.Equal(t, sim.Tick, run.LastTick)
}

func TestJournalRoundTrip(t *testing.T) {
	dir := t.TempDir()
	j := NewJournal(dir, "events")
	day2 := engine.TicksPerDay

	written := []engine.Event{
		{Tick: 1, Description: "a storm rolls in", Category: "weather"},
		{Tick: 2, Description: "Ama crafted a stone axe", Category: "craft"},
		{Tick: day2, Description: "Kofi was born to Ama", Category: "birth"},
	}
	for _, e := range written {
		require.NoError(t, j.Write(e))
	}
	require.NoError(t, j.Close())

	files, err := Files(dir, "events")
	require.NoError(t, err)
	require.Len(t, files, 2)

	var read []engine.Event
	for _, f := range files {
		events, err := ReadJournal(f)
		require.NoError(t, err)
		read = append(read, events...)
	}
	assert.Equal(t, written, read)
}

func TestJournalAppendsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 2; i++ {
		j := NewJournal(dir, "events")
		require.NoError(t, j.Write(engine.Event{Tick: uint64(i + 1), Category: "weather"}))
		require.NoError(t, j.Close())
	}
	files, err := Files(dir, "events")
	require.NoError(t, err)
	require.Len(t, files, 1)

	events, err := ReadJournal(files[0])
	require.NoError(t, err)
	assert.Len(t, events, 2)
}
