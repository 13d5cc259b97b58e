package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/agentforge/internal/orchestrator"
	"github.com/dusk-indust/agentforge/internal/project"
)

func openTest(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	var tick int
	j.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return j
}

func TestRecordAndGet(t *testing.T) {
	j := openTest(t)
	ctx := context.Background()

	cfg, err := project.Init(project.InitParams{ProjectName: "p", EntryPointKind: project.EntryAgent})
	require.NoError(t, err)

	env := orchestrator.Envelope{
		RunID:        "run-1",
		ResponseType: orchestrator.ResponseFinalConfig,
		Status:       orchestrator.StatusSuccess,
		Message:      "project 'p' generated: 0 tools, 0 agents",
		FinalConfig:  cfg,
		ProjectPath:  "generated/p",
		Steps:        8,
	}
	id, err := j.Record(ctx, "build p", env)
	require.NoError(t, err)
	assert.Equal(t, "run-1", id)

	got, err := j.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "build p", got.Request)
	assert.Equal(t, "FinalConfig", got.ResponseType)
	assert.Equal(t, "success", got.Status)
	assert.Equal(t, env.Message, got.Message)
	assert.Equal(t, "generated/p", got.ProjectPath)
	assert.Equal(t, 8, got.Steps)
	assert.Equal(t, time.Date(2025, 3, 1, 12, 0, 1, 0, time.UTC), got.CreatedAt)

	loaded, err := project.Load(got.Config)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestRecord_FailureWithoutConfig(t *testing.T) {
	j := openTest(t)
	ctx := context.Background()

	id, err := j.Record(ctx, "bad", orchestrator.Envelope{
		ResponseType: orchestrator.ResponseFinalConfig,
		Status:       orchestrator.StatusFailure,
		Message:      "planning failed: boom",
		Errors:       []string{"boom"},
		Steps:        1,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	got, err := j.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got.Config)
	assert.Equal(t, []string{"boom"}, got.Errors)
	assert.Empty(t, got.ProjectPath)
}

func TestRecord_DuplicateID(t *testing.T) {
	j := openTest(t)
	ctx := context.Background()
	env := orchestrator.Envelope{RunID: "same", Status: orchestrator.StatusFailure}

	_, err := j.Record(ctx, "a", env)
	require.NoError(t, err)
	_, err = j.Record(ctx, "b", env)
	assert.Error(t, err)
}

func TestGet_NotFound(t *testing.T) {
	j := openTest(t)
	_, err := j.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList_NewestFirst(t *testing.T) {
	j := openTest(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		_, err := j.Record(ctx, "req "+id, orchestrator.Envelope{RunID: id, Status: orchestrator.StatusSuccess})
		require.NoError(t, err)
	}

	all, err := j.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].ID)
	assert.Equal(t, "a", all[2].ID)

	two, err := j.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, two, 2)
	assert.Equal(t, "b", two[1].ID)
}

func TestList_Empty(t *testing.T) {
	entries, err := openTest(t).List(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestOpen_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	j, err := Open(path)
	require.NoError(t, err)
	_, err = j.Record(context.Background(), "x", orchestrator.Envelope{RunID: "keep", Status: orchestrator.StatusSuccess})
	require.NoError(t, err)
	require.NoError(t, j.Close())

	j, err = Open(path)
	require.NoError(t, err)
	defer j.Close()
	got, err := j.Get(context.Background(), "keep")
	require.NoError(t, err)
	assert.Equal(t, "x", got.Request)
}
