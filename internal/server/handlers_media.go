package server

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/icmoura/jarvis/internal/analyze"
	"github.com/icmoura/jarvis/internal/docx"
	"github.com/icmoura/jarvis/internal/logger"
	"github.com/icmoura/jarvis/internal/media"
)

// handleAnalyzer renders the main page: the media form plus, when the user
// already processed something this session, the analysis and Q&A panels.
func (a *App) handleAnalyzer(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	data := a.baseData(r)
	if r.URL.Query().Get("pwok") == "1" {
		data.Flash = "Password changed."
		data.FlashKind = "ok"
	}
	if code := r.URL.Query().Get("err"); code != "" {
		data.Flash = analyzerErrMessage(code)
		data.FlashKind = "err"
	}

	if res := a.results.Get(data.Username); res != nil {
		data.HasResult = true
		data.SourceName = res.SourceName
		data.Transcript = res.Transcript
		data.AnalysisHTML = renderMarkdown(res.Analysis)
		data.Question = res.Question
		if res.Answer != "" {
			data.AnswerHTML = renderMarkdown(res.Answer)
		}
	}

	a.renderPage(w, "analyzer", data)
}

// handleAnalyze takes one media input (audio upload, video upload or video
// link, in that order of precedence), runs the pipeline and stores the
// result for the session.
func (a *App) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess := sessionFrom(r)

	r.Body = http.MaxBytesReader(w, r.Body, a.cfg.Media.MaxUploadMB<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Redirect(w, r, "/?err=upload", http.StatusSeeOther)
		return
	}

	var (
		mediaPath  string
		sourceName string
		err        error
	)
	switch {
	case hasFormFile(r, "audio_file"):
		mediaPath, sourceName, err = a.saveFormFile(r, "audio_file")
	case hasFormFile(r, "video_file"):
		mediaPath, sourceName, err = a.saveFormFile(r, "video_file")
	case strings.TrimSpace(r.FormValue("video_link")) != "":
		link := strings.TrimSpace(r.FormValue("video_link"))
		mediaPath, err = a.media.Download(r.Context(), link)
		sourceName = link
	default:
		http.Redirect(w, r, "/?err=noinput", http.StatusSeeOther)
		return
	}
	if err != nil {
		logger.Error("Analyze for %s: acquiring media failed: %v", sess.Username, err)
		http.Redirect(w, r, "/?err="+mediaErrCode(err), http.StatusSeeOther)
		return
	}
	defer a.media.Cleanup(mediaPath)

	audioPath := mediaPath
	if !media.IsAudio(mediaPath) {
		audioPath, err = a.media.ExtractAudio(r.Context(), mediaPath)
		if err != nil {
			logger.Error("Analyze for %s: audio extraction failed: %v", sess.Username, err)
			http.Redirect(w, r, "/?err=extract", http.StatusSeeOther)
			return
		}
		defer a.media.Cleanup(audioPath)
	}

	transcript, err := a.analyzer.Transcribe(r.Context(), audioPath)
	if err != nil {
		logger.Error("Analyze for %s: transcription failed: %v", sess.Username, err)
		http.Redirect(w, r, "/?err=transcribe", http.StatusSeeOther)
		return
	}

	analysis, err := a.analyzer.Analyze(r.Context(), transcript)
	if err != nil {
		logger.Error("Analyze for %s: analysis failed: %v", sess.Username, err)
		http.Redirect(w, r, "/?err=analyze", http.StatusSeeOther)
		return
	}

	a.results.Set(sess.Username, &analyze.Result{
		SourceName: sourceName,
		Transcript: transcript,
		Analysis:   analysis,
		CreatedAt:  time.Now(),
	})
	logger.Info("Analyze for %s: %q processed (%d chars transcript)", sess.Username, sourceName, len(transcript))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleAsk answers a follow-up question against the session's result.
func (a *App) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess := sessionFrom(r)

	res := a.results.Get(sess.Username)
	if res == nil {
		http.Redirect(w, r, "/?err=noresult", http.StatusSeeOther)
		return
	}
	_ = r.ParseForm()
	question := strings.TrimSpace(r.Form.Get("question"))
	if question == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	answer, err := a.analyzer.Answer(r.Context(), res.Transcript, res.Analysis, question)
	if err != nil {
		logger.Error("Q&A for %s failed: %v", sess.Username, err)
		http.Redirect(w, r, "/?err=answer", http.StatusSeeOther)
		return
	}

	a.results.SetQA(sess.Username, question, answer)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleExportDocx streams the session's analysis as a Word document.
func (a *App) handleExportDocx(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess := sessionFrom(r)

	res := a.results.Get(sess.Username)
	if res == nil {
		http.Redirect(w, r, "/?err=noresult", http.StatusSeeOther)
		return
	}

	outPath := filepath.Join(os.TempDir(), fmt.Sprintf("analysis_%s_%d.docx", sess.Username, time.Now().UnixNano()))
	defer a.media.Cleanup(outPath)

	if err := docx.WriteReport("Análise de Vídeo: "+res.SourceName, res.Analysis, res.Transcript, outPath); err != nil {
		logger.Error("DOCX export for %s failed: %v", sess.Username, err)
		http.Redirect(w, r, "/?err=export", http.StatusSeeOther)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
	w.Header().Set("Content-Disposition", `attachment; filename="analise_video.docx"`)
	http.ServeFile(w, r, outPath)
}

func hasFormFile(r *http.Request, field string) bool {
	if r.MultipartForm == nil {
		return false
	}
	return len(r.MultipartForm.File[field]) > 0
}

func (a *App) saveFormFile(r *http.Request, field string) (path, name string, err error) {
	f, hdr, err := r.FormFile(field)
	if err != nil {
		return "", "", err
	}
	defer f.Close()

	path, err = a.media.SaveUpload(f, hdr.Filename)
	return path, hdr.Filename, err
}

func mediaErrCode(err error) string {
	switch {
	case errors.Is(err, media.ErrUnsupportedFormat):
		return "format"
	case errors.Is(err, media.ErrNoInput):
		return "noinput"
	default:
		return "media"
	}
}

func analyzerErrMessage(code string) string {
	switch code {
	case "noinput":
		return "Provide an audio file, a video file or a video link."
	case "format":
		return "Unsupported file format. Use mp4, avi, mov, mkv, mp3, wav or m4a."
	case "upload":
		return "Upload failed. The file may be too large."
	case "media":
		return "Could not fetch the media. Check the link and try again."
	case "extract":
		return "Audio extraction failed."
	case "transcribe":
		return "Transcription failed."
	case "analyze":
		return "The analysis request failed."
	case "noresult":
		return "Process a media file first."
	case "answer":
		return "Could not answer the question. Try again."
	case "export":
		return "Could not generate the document."
	default:
		return "Operation failed."
	}
}
