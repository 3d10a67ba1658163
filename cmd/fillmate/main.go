package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "modernc.org/sqlite"

	"github.com/fillmate/fillmate/audit"
	"github.com/fillmate/fillmate/config"
	"github.com/fillmate/fillmate/convert"
	"github.com/fillmate/fillmate/dbopen"
	"github.com/fillmate/fillmate/documents"
	"github.com/fillmate/fillmate/httpmw"
	"github.com/fillmate/fillmate/placeholder"
	"github.com/fillmate/fillmate/sign"
)

const maxUploadBytes = 32 << 20

func main() {
	cfg, err := config.Load(os.Getenv("FILLMATE_CONFIG"))
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}

	// Logging.
	var lvl slog.Level
	switch cfg.LogLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	// Signal context.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := dbopen.Open(cfg.DBPath, dbopen.WithMkdirAll())
	if err != nil {
		slog.Error("open db", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	auditLogger := audit.NewLogger(db)
	if err := auditLogger.Init(); err != nil {
		slog.Error("audit init", "error", err)
		os.Exit(1)
	}
	defer auditLogger.Close()

	conv := convert.New(convert.Config{
		Binary:  cfg.Convert.Binary,
		Timeout: cfg.Convert.Timeout,
		Logger:  logger,
	})

	svc, err := documents.New(db, documents.Config{
		DataDir: cfg.DataDir,
		Placement: sign.Placement{
			X:      cfg.Sign.X,
			Y:      cfg.Sign.Y,
			Width:  cfg.Sign.Width,
			Height: cfg.Sign.Height,
		},
		Logger: logger,
	}, documents.WithConverter(conv), documents.WithAudit(auditLogger))
	if err != nil {
		slog.Error("documents service", "error", err)
		os.Exit(1)
	}

	h := &handlers{svc: svc}

	r := chi.NewRouter()
	for _, mw := range httpmw.DefaultStack(maxUploadBytes) {
		r.Use(mw)
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, map[string]string{"status": "ok"})
	})

	// User provisioning has no identity requirement: the first HOD has to
	// come from somewhere.
	r.Post("/api/users", h.createUser)
	r.Get("/api/users/{id}", h.getUser)

	r.Group(func(r chi.Router) {
		r.Use(h.requireUser)

		r.Post("/api/me/signature", h.uploadSignature)

		r.Get("/api/templates", h.listTemplates)
		r.Get("/api/templates/{id}", h.getTemplate)
		r.Get("/api/templates/{id}/placeholders", h.listPlaceholders)
		r.Get("/api/templates/{id}/preview", h.previewTemplate)
		r.Post("/api/templates/{id}/generate", h.generate)
		r.Post("/api/templates/{id}/submissions", h.submit)

		r.Get("/api/submissions", h.mySubmissions)
		r.Get("/api/submissions/{id}", h.getSubmission)
		r.Get("/api/submissions/{id}/file", h.submissionFile)
		r.Get("/api/submissions/{id}/approved", h.approvedFile)

		r.Get("/api/notifications", h.listNotifications)
		r.Post("/api/notifications/{id}/read", h.markNotificationRead)

		r.Group(func(r chi.Router) {
			r.Use(h.requireHOD)

			r.Post("/api/templates", h.uploadTemplate)
			r.Delete("/api/templates/{id}", h.deleteTemplate)
			r.Get("/api/submissions/pending", h.pendingSubmissions)
			r.Post("/api/submissions/{id}/review", h.review)
		})
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second, // conversions can be slow
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
	slog.Info("server stopped")
}

type handlers struct {
	svc *documents.Service
}

// --- Identity middleware ---

// Callers identify themselves with the X-User-ID header; an upstream
// proxy is expected to authenticate. requireUser resolves the header to
// a stored user and rejects unknown IDs.

type ctxKey struct{}

// identity is the slice of the user record the handlers need.
type identity struct {
	ID    string
	IsHOD bool
}

func (h *handlers) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get("X-User-ID"))
		if id == "" {
			writeJSON(w, 401, map[string]string{"error": "X-User-ID header required"})
			return
		}
		u, err := h.svc.User(r.Context(), id)
		if err != nil {
			writeJSON(w, 401, map[string]string{"error": "unknown user"})
			return
		}
		ident := identity{ID: u.ID, IsHOD: u.IsHOD}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, ident)))
	})
}

func (h *handlers) requireHOD(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, ok := r.Context().Value(ctxKey{}).(identity); !ok || !u.IsHOD {
			writeJSON(w, 403, map[string]string{"error": "reviewer role required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// caller returns the identity resolved by requireUser.
func caller(r *http.Request) identity {
	u, _ := r.Context().Value(ctxKey{}).(identity)
	return u
}

func userID(r *http.Request) string {
	return caller(r).ID
}

// --- User handlers ---

func (h *handlers) createUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username    string `json:"username"`
		DisplayName string `json:"display_name"`
		IsHOD       bool   `json:"is_hod"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, err)
		return
	}
	u, err := h.svc.CreateUser(r.Context(), req.Username, req.DisplayName, req.IsHOD)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, 201, u)
}

func (h *handlers) getUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.User(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, 200, u)
}

func (h *handlers) uploadSignature(w http.ResponseWriter, r *http.Request) {
	name, data, err := formFile(r)
	if err != nil {
		writeError(w, 400, err)
		return
	}
	if err := h.svc.UploadSignature(r.Context(), userID(r), name, data); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, 200, map[string]string{"status": "ok"})
}

// --- Template handlers ---

func (h *handlers) uploadTemplate(w http.ResponseWriter, r *http.Request) {
	name, data, err := formFile(r)
	if err != nil {
		writeError(w, 400, err)
		return
	}
	if n := r.FormValue("name"); n != "" {
		name = n
	} else {
		name = strings.TrimSuffix(name, ".docx")
	}
	tpl, catalog, err := h.svc.UploadTemplate(r.Context(), userID(r), name, data)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, 201, map[string]any{"template": tpl, "placeholders": catalog})
}

func (h *handlers) listTemplates(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Templates(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, 200, list)
}

func (h *handlers) getTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, err := h.svc.Template(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, 200, tpl)
}

func (h *handlers) listPlaceholders(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Placeholders(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, 200, list)
}

func (h *handlers) previewTemplate(w http.ResponseWriter, r *http.Request) {
	art, err := h.svc.Preview(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeArtifact(w, art)
}

func (h *handlers) deleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteTemplate(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, 200, map[string]string{"status": "deleted"})
}

// --- Generation and submission handlers ---

type fillRequest struct {
	Values map[string]string `json:"values"`
	Format string            `json:"format"`
}

func (h *handlers) generate(w http.ResponseWriter, r *http.Request) {
	var req fillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, err)
		return
	}
	format, err := documents.ParseFormat(req.Format)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	_, art, err := h.svc.Generate(r.Context(), userID(r), chi.URLParam(r, "id"), req.Values, format)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeArtifact(w, art)
}

func (h *handlers) submit(w http.ResponseWriter, r *http.Request) {
	var req fillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, err)
		return
	}
	format, err := documents.ParseFormat(req.Format)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	sub, err := h.svc.Submit(r.Context(), userID(r), chi.URLParam(r, "id"), req.Values, format)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, 201, sub)
}

func (h *handlers) mySubmissions(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.MySubmissions(r.Context(), userID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, 200, list)
}

func (h *handlers) pendingSubmissions(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.PendingSubmissions(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, 200, list)
}

func (h *handlers) getSubmission(w http.ResponseWriter, r *http.Request) {
	sub, err := h.authorizedSubmission(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, 200, sub)
}

func (h *handlers) submissionFile(w http.ResponseWriter, r *http.Request) {
	if _, err := h.authorizedSubmission(r); err != nil {
		writeServiceError(w, err)
		return
	}
	art, err := h.svc.SubmissionFile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeArtifact(w, art)
}

func (h *handlers) approvedFile(w http.ResponseWriter, r *http.Request) {
	if _, err := h.authorizedSubmission(r); err != nil {
		writeServiceError(w, err)
		return
	}
	art, err := h.svc.ApprovedFile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeArtifact(w, art)
}

func (h *handlers) review(w http.ResponseWriter, r *http.Request) {
	var d documents.Decision
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		writeError(w, 400, err)
		return
	}
	sub, err := h.svc.Review(r.Context(), userID(r), chi.URLParam(r, "id"), d)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, 200, sub)
}

// authorizedSubmission fetches a submission and hides it from everyone
// but its submitter and reviewers.
func (h *handlers) authorizedSubmission(r *http.Request) (any, error) {
	sub, err := h.svc.Submission(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return nil, err
	}
	u := caller(r)
	if !u.IsHOD && sub.SubmittedBy != u.ID {
		return nil, fmt.Errorf("%w: submission %s", documents.ErrNotFound, sub.ID)
	}
	return sub, nil
}

// --- Notification handlers ---

func (h *handlers) listNotifications(w http.ResponseWriter, r *http.Request) {
	unreadOnly := r.URL.Query().Get("unread") == "1"
	list, err := h.svc.Notifications(r.Context(), userID(r), unreadOnly)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, 200, list)
}

func (h *handlers) markNotificationRead(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.MarkNotificationRead(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, 200, map[string]string{"status": "ok"})
}

// --- Helpers ---

func formFile(r *http.Request) (name string, data []byte, err error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return "", nil, err
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		return "", nil, err
	}
	defer f.Close()
	data, err = io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		return "", nil, err
	}
	return hdr.Filename, data, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func writeServiceError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, documents.ErrNotFound):
		return 404
	case errors.Is(err, documents.ErrInvalidInput),
		errors.Is(err, documents.ErrTemplateParse),
		errors.Is(err, documents.ErrReasonRequired),
		errors.Is(err, placeholder.ErrNoReplacements):
		return 400
	case errors.Is(err, documents.ErrAlreadyReviewed),
		errors.Is(err, documents.ErrSignatureMissing):
		return 409
	default:
		return 500
	}
}

func writeArtifact(w http.ResponseWriter, art *documents.Artifact) {
	w.Header().Set("Content-Type", art.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+art.Name+`"`)
	w.WriteHeader(200)
	w.Write(art.Data)
}
