package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatch(t *testing.T, files []string) (*atomic.Int32, context.CancelFunc, chan error) {
	t.Helper()
	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, files, 50*time.Millisecond, func() { calls.Add(1) })
	}()
	// Give the watcher time to register.
	time.Sleep(100 * time.Millisecond)
	return &calls, cancel, done
}

func TestRunTriggersOnChange(t *testing.T) {
	dir := t.TempDir()
	index := filepath.Join(dir, "metadata.json")
	require.NoError(t, os.WriteFile(index, []byte("{}"), 0o644))

	calls, cancel, done := startWatch(t, []string{index})

	// A burst of writes is debounced into one call.
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(index, []byte(`{"data": []}`), 0o644))
	}

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())

	cancel()
	assert.NoError(t, <-done)
}

func TestRunIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	index := filepath.Join(dir, "metadata.json")
	require.NoError(t, os.WriteFile(index, []byte("{}"), 0o644))

	calls, cancel, done := startWatch(t, []string{index})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0o644))
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())

	cancel()
	assert.NoError(t, <-done)
}

func TestRunWatchesDirectories(t *testing.T) {
	content := filepath.Join(t.TempDir(), "blog")
	require.NoError(t, os.Mkdir(content, 0o755))

	calls, cancel, done := startWatch(t, []string{content})

	require.NoError(t, os.WriteFile(filepath.Join(content, "new-post.md"), []byte("---\ntitle: x\n---\n"), 0o644))
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

func TestRunMissingDirectory(t *testing.T) {
	err := Run(context.Background(), []string{filepath.Join(t.TempDir(), "missing", "metadata.json")}, time.Millisecond, func() {})
	assert.Error(t, err)
}
