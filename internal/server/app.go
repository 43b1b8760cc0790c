package server

import (
	"embed"
	"encoding/base64"
	"html/template"
	"net/http"
	"os"
	"time"

	"github.com/icmoura/jarvis/internal/analyze"
	"github.com/icmoura/jarvis/internal/auth"
	"github.com/icmoura/jarvis/internal/config"
	"github.com/icmoura/jarvis/internal/executor"
	"github.com/icmoura/jarvis/internal/github"
	"github.com/icmoura/jarvis/internal/logger"
	"github.com/icmoura/jarvis/internal/media"
	"github.com/icmoura/jarvis/internal/userdir"
)

//go:embed templates/*.html
var templatesFS embed.FS

const sessionTTL = 24 * time.Hour

type App struct {
	secret     []byte
	cookieName string
	pages      map[string]*template.Template

	cfg      *config.Config
	users    *userdir.Store
	media    *media.Pipeline
	analyzer analyze.Analyzer
	results  *analyze.ResultStore
}

// ViewData feeds the HTML templates.
type ViewData struct {
	Authed    bool
	Username  string
	Admin     bool
	HideNav   bool
	Flash     string
	FlashKind string // ok|err|""

	// login page
	TempPassword string

	// admin user list
	Users []UserRow

	// analyzer page
	HasResult    bool
	SourceName   string
	Transcript   string
	AnalysisHTML template.HTML
	Question     string
	AnswerHTML   template.HTML
}

type UserRow struct {
	Name         string
	Role         string
	FirstLogin   bool
	ResetByAdmin bool
}

func newApp(cfg *config.Config) (*App, error) {
	secretText := cfg.Server.JWTSecret
	if secretText == "" {
		// Ephemeral secret: sessions do not survive a restart.
		s, err := auth.NewRandomSecretB64(32)
		if err != nil {
			return nil, err
		}
		secretText = s
	}
	secretRaw, err := base64.RawURLEncoding.DecodeString(secretText)
	if err != nil {
		// Fallback: accept a raw string secret.
		secretRaw = []byte(secretText)
	}
	if len(secretRaw) < 16 {
		pad := make([]byte, 16)
		copy(pad, secretRaw)
		secretRaw = pad
	}

	pages, err := parsePages()
	if err != nil {
		return nil, err
	}

	gh := github.NewClient(cfg.GitHub.Owner(), cfg.GitHub.Name(), cfg.GitHub.FilePath, cfg.GitHub.Token)
	if base := os.Getenv("JARVIS_GITHUB_API"); base != "" {
		gh = gh.WithBaseURL(base)
	}

	return &App{
		secret:     secretRaw,
		cookieName: auth.DefaultCookieName,
		pages:      pages,
		cfg:        cfg,
		users:      userdir.NewStore(gh),
		media:      media.NewPipeline(cfg.Media, executor.New()),
		analyzer:   analyze.NewService(cfg.OpenAI),
		results:    analyze.NewResultStore(),
	}, nil
}

func parsePages() (map[string]*template.Template, error) {
	pages := map[string]*template.Template{}
	for _, page := range []string{"login", "password", "analyzer", "admin_users"} {
		t, err := template.New("layout.html").ParseFS(templatesFS, "templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, err
		}
		pages[page] = t
	}
	return pages, nil
}

func (a *App) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/login", a.handleLogin)
	mux.HandleFunc("/logout", a.requireAuth(a.handleLogout))
	mux.HandleFunc("/password", a.requireAuth(a.handlePassword))

	mux.HandleFunc("/", a.requireAuth(a.handleAnalyzer))
	mux.HandleFunc("/analyze", a.requireAuth(a.handleAnalyze))
	mux.HandleFunc("/ask", a.requireAuth(a.handleAsk))
	mux.HandleFunc("/export/docx", a.requireAuth(a.handleExportDocx))

	mux.HandleFunc("/admin/users", a.requireAdmin(a.handleAdminUsers))
	mux.HandleFunc("/admin/users/create", a.requireAdmin(a.handleAdminUsersCreate))
	mux.HandleFunc("/admin/users/reset", a.requireAdmin(a.handleAdminUsersReset))
	mux.HandleFunc("/admin/users/role", a.requireAdmin(a.handleAdminUsersRole))
	mux.HandleFunc("/admin/users/delete", a.requireAdmin(a.handleAdminUsersDelete))

	mux.HandleFunc("/api/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("{\"ok\":true}\n"))
	})

	return a.withSession(mux)
}

func (a *App) issueCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   false,
		MaxAge:   int(sessionTTL.Seconds()),
	})
}

func (a *App) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   false,
		MaxAge:   -1,
	})
}

func (a *App) renderPage(w http.ResponseWriter, page string, data *ViewData) {
	t, ok := a.pages[page]
	if !ok {
		http.Error(w, "page not found", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.ExecuteTemplate(w, "layout", data); err != nil {
		logger.Error("Rendering page %s failed: %v", page, err)
	}
}

func (a *App) baseData(r *http.Request) *ViewData {
	data := &ViewData{}
	if sess := sessionFrom(r); sess != nil {
		data.Authed = true
		data.Username = sess.Username
		data.Admin = sess.IsAdmin()
	}
	return data
}
