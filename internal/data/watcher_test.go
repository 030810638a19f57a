package data

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func testLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)

	return log
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "playlist.m3u")

	require.NoError(t, os.WriteFile(path, []byte("#EXTM3U\n"), 0o600))

	store := NewStore()
	w := NewWatcher(testLogger(), path, store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, w.Start(ctx))

	defer func() {
		require.NoError(t, w.Stop())
	}()

	playlist := "#EXTM3U\n#EXTINF:-1,Telefe\nhttp://stream.example.com/telefe\n"
	require.NoError(t, os.WriteFile(path, []byte(playlist), 0o600))

	require.Eventually(t, func() bool {
		channels, ok := store.Channels()

		return ok && len(channels) == 1 && channels[0].Name == "Telefe"
	}, 5*time.Second, 10*time.Millisecond)
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "playlist.m3u")

	require.NoError(t, os.WriteFile(path, []byte("#EXTM3U\n"), 0o600))

	store := NewStore()
	w := NewWatcher(testLogger(), path, store)

	require.NoError(t, w.Start(context.Background()))

	defer func() {
		require.NoError(t, w.Stop())
	}()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o600))

	time.Sleep(100 * time.Millisecond)
	require.False(t, store.HasChannels())
}

func TestWatcher_StartMissingDir(t *testing.T) {
	store := NewStore()
	w := NewWatcher(testLogger(), "/nonexistent/dir/playlist.m3u", store)

	require.Error(t, w.Start(context.Background()))
}

func TestWatcher_StopIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "playlist.m3u")

	store := NewStore()
	w := NewWatcher(testLogger(), path, store)

	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}
