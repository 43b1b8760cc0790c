// Package media turns user input (an uploaded file or a video link) into a
// local audio file ready for transcription. Downloads go through yt-dlp,
// audio extraction through ffmpeg; both run as external binaries.
package media

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/icmoura/jarvis/internal/config"
	"github.com/icmoura/jarvis/internal/executor"
	"github.com/icmoura/jarvis/internal/logger"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported media format")
	ErrNoInput           = errors.New("no media provided")
)

var (
	videoExts = map[string]bool{".mp4": true, ".avi": true, ".mov": true, ".mkv": true}
	audioExts = map[string]bool{".mp3": true, ".wav": true, ".m4a": true}
)

// IsAudio reports whether name has a supported bare-audio extension, which
// skips the extraction step.
func IsAudio(name string) bool {
	return audioExts[strings.ToLower(filepath.Ext(name))]
}

// IsVideo reports whether name has a supported video extension.
func IsVideo(name string) bool {
	return videoExts[strings.ToLower(filepath.Ext(name))]
}

// Pipeline acquires media and produces the audio file handed to the
// transcription service.
type Pipeline struct {
	cfg  config.MediaConfig
	exec executor.Executor
}

func NewPipeline(cfg config.MediaConfig, exec executor.Executor) *Pipeline {
	return &Pipeline{cfg: cfg, exec: exec}
}

// SaveUpload writes an uploaded file into the temp dir under a collision-free
// name, keeping the original extension.
func (p *Pipeline) SaveUpload(r io.Reader, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !videoExts[ext] && !audioExts[ext] {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	if err := os.MkdirAll(p.cfg.TempDir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(p.cfg.TempDir, "upload_"+randomSuffix()+ext)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("save upload: %w", err)
	}
	logger.Info("Saved upload %s as %s", filename, path)
	return path, nil
}

// Download fetches the video behind url with yt-dlp and returns the local
// file path it printed.
func (p *Pipeline) Download(ctx context.Context, url string) (string, error) {
	if strings.TrimSpace(url) == "" {
		return "", ErrNoInput
	}
	if err := os.MkdirAll(p.cfg.TempDir, 0o755); err != nil {
		return "", err
	}

	tmpl := filepath.Join(p.cfg.TempDir, "download_%(id)s.%(ext)s")
	args := []string{
		"-f", "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best",
		"--no-playlist",
		"--quiet",
		"--no-warnings",
		"-o", tmpl,
		"--no-simulate",
		"--print", "after_move:filepath",
		url,
	}

	logger.Info("Downloading media from %s", url)
	out, err := p.exec.Execute(ctx, p.cfg.YTDLPBinary, args...)
	if err != nil {
		return "", fmt.Errorf("download video: %w", err)
	}

	// yt-dlp prints the final path as the last output line.
	lines := strings.Split(strings.TrimSpace(out), "\n")
	path := strings.TrimSpace(lines[len(lines)-1])
	if path == "" {
		return "", fmt.Errorf("download video: yt-dlp did not report a file path")
	}
	logger.Info("Download finished: %s", path)
	return path, nil
}

// ExtractAudio pulls the audio track out of mediaPath as an MP3 next to it.
func (p *Pipeline) ExtractAudio(ctx context.Context, mediaPath string) (string, error) {
	audioPath := strings.TrimSuffix(mediaPath, filepath.Ext(mediaPath)) + ".mp3"

	args := []string{
		"-i", mediaPath,
		"-vn",
		"-acodec", "libmp3lame",
		"-y",
		audioPath,
	}
	logger.Info("Extracting audio from %s", mediaPath)
	if _, err := p.exec.Execute(ctx, p.cfg.FFmpegBinary, args...); err != nil {
		return "", fmt.Errorf("extract audio: %w", err)
	}
	return audioPath, nil
}

// Cleanup removes a temp file, logging instead of failing: leftover temp
// files are an annoyance, not an error.
func (p *Pipeline) Cleanup(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("Failed to remove temp file %s: %v", path, err)
	}
}

func randomSuffix() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
