package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/AhmedIzaan/ai-interview-coach/internal/app"
	"github.com/AhmedIzaan/ai-interview-coach/internal/models"
	"github.com/AhmedIzaan/ai-interview-coach/internal/service/interview"
	"github.com/AhmedIzaan/ai-interview-coach/internal/service/speech"
	"github.com/AhmedIzaan/ai-interview-coach/internal/storage"
)

const maxBody = 64 << 10

type handler struct {
	app *app.Application
}

type startRequest struct {
	Role string `json:"role"`
	Tone string `json:"tone"`
}

type errorResponse struct {
	Error string          `json:"error"`
	View  *interview.View `json:"view,omitempty"`
}

func (h *handler) tones(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"tones":   models.Tones(),
		"default": models.DefaultTone,
	})
}

func (h *handler) snapshot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.app.Orchestrator.Snapshot())
}

func (h *handler) start(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	q := r.URL.Query()
	if req.Role == "" {
		req.Role = q.Get("role")
	}
	if req.Tone == "" {
		req.Tone = q.Get("tone")
	}

	if err := h.app.Orchestrator.Start(req.Role, req.Tone); err != nil {
		h.actionError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, h.app.Orchestrator.Snapshot())
}

func (h *handler) toggleCapture(w http.ResponseWriter, _ *http.Request) {
	h.action(w, h.app.Orchestrator.ToggleCapture)
}

func (h *handler) submit(w http.ResponseWriter, _ *http.Request) {
	h.action(w, h.app.Orchestrator.Submit)
}

func (h *handler) retry(w http.ResponseWriter, _ *http.Request) {
	h.action(w, h.app.Orchestrator.Retry)
}

func (h *handler) restart(w http.ResponseWriter, _ *http.Request) {
	h.action(w, h.app.Orchestrator.Restart)
}

func (h *handler) dismissError(w http.ResponseWriter, _ *http.Request) {
	h.app.Orchestrator.DismissError()
	writeJSON(w, http.StatusOK, h.app.Orchestrator.Snapshot())
}

func (h *handler) action(w http.ResponseWriter, fn func() error) {
	if err := fn(); err != nil {
		h.actionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.app.Orchestrator.Snapshot())
}

func (h *handler) actionError(w http.ResponseWriter, err error) {
	view := h.app.Orchestrator.Snapshot()
	writeJSON(w, statusFor(err), errorResponse{Error: err.Error(), View: &view})
}

func (h *handler) listReports(w http.ResponseWriter, _ *http.Request) {
	ids, err := h.app.Reports.List()
	if err != nil {
		writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": ids})
}

func (h *handler) getReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.app.Reports.Load(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var captureErr *speech.CaptureError
	switch {
	case errors.Is(err, interview.ErrBusy), errors.Is(err, interview.ErrNotReady):
		return http.StatusConflict
	case errors.Is(err, interview.ErrTranscriptTooShort):
		return http.StatusUnprocessableEntity
	case errors.Is(err, interview.ErrClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, speech.ErrCaptureUnsupported):
		return http.StatusNotImplemented
	case errors.As(err, &captureErr):
		return http.StatusServiceUnavailable
	case errors.Is(err, models.ErrInvalidTone), errors.Is(err, storage.ErrInvalidReportID):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrReportNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("Failed to write response")
	}
}
