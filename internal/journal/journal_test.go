package journal

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decyphertek-ai/adminotaur/internal/registry"
	"github.com/decyphertek-ai/adminotaur/internal/runtime"
)

func openTemp(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "nested", "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func result(skill string, ok bool, at time.Time) *runtime.Result {
	r := &runtime.Result{
		InvocationID: uuid.New().String(),
		SkillID:      skill,
		Mode:         registry.NativeBinary,
		StartedAt:    at,
		Latency:      120 * time.Millisecond,
		Succeeded:    ok,
		Text:         "pong",
	}
	if !ok {
		r.FailureKind = runtime.NonZeroExit
		r.ExitCode = 2
		r.Text = "❌ MCP server '" + skill + "' error: boom"
	}
	return r
}

func TestRecordAndRecent(t *testing.T) {
	j := openTemp(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	require.NoError(t, j.Record(ctx, result("echo", true, base)))
	require.NoError(t, j.Record(ctx, result("rag", false, base.Add(time.Minute))))
	require.NoError(t, j.Record(ctx, result("echo", true, base.Add(2*time.Minute))))

	entries, err := j.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "echo", entries[0].SkillID)
	assert.Equal(t, "rag", entries[1].SkillID)
	assert.False(t, entries[1].Succeeded)
	assert.Equal(t, runtime.NonZeroExit, entries[1].FailureKind)
	assert.Equal(t, 2, entries[1].ExitCode)
	assert.Equal(t, 120*time.Millisecond, entries[0].Latency)
	assert.Equal(t, "native", entries[0].Mode)
	assert.Equal(t, registry.NativeBinary, ParseMode(entries[0].Mode))
	assert.WithinDuration(t, base.Add(2*time.Minute), entries[0].CreatedAt, time.Millisecond)
}

func TestRecord_NotFoundHasNoMode(t *testing.T) {
	j := openTemp(t)
	r := &runtime.Result{InvocationID: uuid.New().String(), SkillID: "ghost", StartedAt: time.Now(), FailureKind: runtime.NotFound}
	require.NoError(t, j.Record(context.Background(), r))

	entries, err := j.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "", entries[0].Mode)
	assert.Equal(t, registry.ExecutionMode(0), ParseMode(entries[0].Mode))
}

func TestRecord_PreviewClipped(t *testing.T) {
	j := openTemp(t)
	r := result("echo", true, time.Now())
	r.Text = strings.Repeat("é", 500)
	require.NoError(t, j.Record(context.Background(), r))

	entries, err := j.Recent(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, previewLen, len([]rune(entries[0].Preview)))
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, j.Record(context.Background(), result("echo", true, time.Now())))
	require.NoError(t, j.Close())

	j, err = Open(path)
	require.NoError(t, err)
	defer j.Close()
	entries, err := j.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
