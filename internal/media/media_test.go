package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icmoura/jarvis/internal/config"
)

type fakeExecutor struct {
	name string
	args []string
	out  string
	err  error
}

func (f *fakeExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	f.name = name
	f.args = args
	return f.out, f.err
}

func newPipeline(t *testing.T, exec *fakeExecutor) *Pipeline {
	t.Helper()
	return NewPipeline(config.MediaConfig{
		TempDir:      t.TempDir(),
		YTDLPBinary:  "yt-dlp",
		FFmpegBinary: "ffmpeg",
	}, exec)
}

func TestIsAudioIsVideo(t *testing.T) {
	assert.True(t, IsAudio("talk.MP3"))
	assert.True(t, IsAudio("talk.m4a"))
	assert.False(t, IsAudio("talk.mp4"))
	assert.True(t, IsVideo("clip.mkv"))
	assert.False(t, IsVideo("clip.wav"))
}

func TestSaveUpload(t *testing.T) {
	p := newPipeline(t, &fakeExecutor{})

	path, err := p.SaveUpload(strings.NewReader("fake video bytes"), "lecture.mp4")
	require.NoError(t, err)
	assert.Equal(t, ".mp4", filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "fake video bytes", string(data))
}

func TestSaveUploadUniqueNames(t *testing.T) {
	p := newPipeline(t, &fakeExecutor{})

	p1, err := p.SaveUpload(strings.NewReader("a"), "x.mp3")
	require.NoError(t, err)
	p2, err := p.SaveUpload(strings.NewReader("b"), "x.mp3")
	require.NoError(t, err)
	assert.NotEqual(t, p1, p2)
}

func TestSaveUploadRejectsUnknownExtension(t *testing.T) {
	p := newPipeline(t, &fakeExecutor{})

	_, err := p.SaveUpload(strings.NewReader("x"), "notes.txt")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestDownload(t *testing.T) {
	exec := &fakeExecutor{out: "/tmp/jarvis/download_abc.mp4\n"}
	p := newPipeline(t, exec)

	path, err := p.Download(context.Background(), "https://example.com/watch?v=abc")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/jarvis/download_abc.mp4", path)

	assert.Equal(t, "yt-dlp", exec.name)
	assert.Contains(t, exec.args, "--no-playlist")
	assert.Contains(t, exec.args, "after_move:filepath")
	assert.Equal(t, "https://example.com/watch?v=abc", exec.args[len(exec.args)-1])
}

func TestDownloadEmptyURL(t *testing.T) {
	p := newPipeline(t, &fakeExecutor{})

	_, err := p.Download(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrNoInput)
}

func TestDownloadFailure(t *testing.T) {
	p := newPipeline(t, &fakeExecutor{err: errors.New("yt-dlp: video unavailable")})

	_, err := p.Download(context.Background(), "https://example.com/watch?v=gone")
	assert.Error(t, err)
}

func TestExtractAudio(t *testing.T) {
	exec := &fakeExecutor{}
	p := newPipeline(t, exec)

	out, err := p.ExtractAudio(context.Background(), "/tmp/jarvis/upload_ab12.mp4")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/jarvis/upload_ab12.mp3", out)

	assert.Equal(t, "ffmpeg", exec.name)
	assert.Contains(t, exec.args, "-vn")
	assert.Contains(t, exec.args, "libmp3lame")
}

func TestCleanup(t *testing.T) {
	p := newPipeline(t, &fakeExecutor{})

	f := filepath.Join(t.TempDir(), "temp.mp3")
	require.NoError(t, os.WriteFile(f, []byte("x"), 0o644))
	p.Cleanup(f)
	_, err := os.Stat(f)
	assert.True(t, os.IsNotExist(err))

	// missing files are fine
	p.Cleanup(f)
	p.Cleanup("")
}
