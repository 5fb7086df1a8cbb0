package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/castaway/internal/engine"
	"github.com/talgya/castaway/internal/persistence"
)

func TestRecorderStartsNewRunOnReset(t *testing.T) {
	db, err := persistence.Open(filepath.Join(t.TempDir(), "island.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	firstID, err := db.BeginRun(3)
	require.NoError(t, err)

	dir := t.TempDir()
	rec := &recorder{db: db, journalDir: dir}
	rec.openJournal(3, firstID)
	t.Cleanup(rec.closeJournal)

	host := engine.NewHost(engine.DefaultConfig(), 3)
	host.OnEvent(rec.event)
	host.OnReset(rec.reset)

	host.Step(int(engine.TicksPerDay))
	digest := host.Digest()
	host.Reset(4)
	host.Step(int(engine.TicksPerDay))
	require.NoError(t, rec.flush())

	runs, err := db.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, firstID, runs[0].ID)
	assert.Equal(t, int64(3), runs[0].Seed)
	assert.True(t, runs[0].EndedAt.Valid)
	assert.Equal(t, uint64(engine.TicksPerDay), runs[0].LastTick)
	assert.Equal(t, digest, runs[0].Digest.String)

	assert.Equal(t, int64(4), runs[1].Seed)
	assert.Equal(t, runs[1].ID, db.RunID())
	assert.False(t, runs[1].EndedAt.Valid)

	oldFiles, err := persistence.Files(dir, "events-seed3-"+firstID[:8])
	require.NoError(t, err)
	assert.NotEmpty(t, oldFiles)
	newFiles, err := persistence.Files(dir, "events-seed4-"+runs[1].ID[:8])
	require.NoError(t, err)
	assert.NotEmpty(t, newFiles)
}
