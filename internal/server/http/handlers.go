package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/musharraf10/MediMate/internal/errs"
	"github.com/musharraf10/MediMate/internal/model"
)

const maxBody = 1 << 20

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out, err := h.svc.List(r.Context(), userID)
	h.respondList(w, r, out, err)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	m, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, m)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	in, err := decodeInput(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	m, err := h.svc.Add(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, m)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	in, err := decodeInput(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	m, err := h.svc.Update(r.Context(), id, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, m)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) expired(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out, err := h.svc.Expired(r.Context(), userID)
	h.respondList(w, r, out, err)
}

func (h *Handler) expiringSoon(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out, err := h.svc.ExpiringSoon(r.Context(), userID)
	h.respondList(w, r, out, err)
}

func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	// 0 asks the service for its configured default; only an absent
	// parameter may select it.
	threshold := 0
	if q := r.URL.Query(); q.Has("threshold") {
		s := q.Get("threshold")
		if threshold, err = strconv.Atoi(s); err != nil || threshold < 1 {
			h.fail(w, r, fmt.Errorf("%w: threshold must be a positive number, got %q", errs.ErrValidation, s))
			return
		}
	}
	out, err := h.svc.LowStock(r.Context(), userID, threshold)
	h.respondList(w, r, out, err)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out, err := h.svc.Search(r.Context(), userID, r.URL.Query().Get("name"))
	h.respondList(w, r, out, err)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if h.ping != nil {
		if err := h.ping(r.Context()); err != nil {
			h.log.Warn("health: storage unreachable", zap.Error(err))
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) respondList(w http.ResponseWriter, r *http.Request, out []model.Medicine, err error) {
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if out == nil {
		out = []model.Medicine{}
	}
	respondJSON(w, http.StatusOK, out)
}

// fail maps err onto a plain-text "Error: <msg>" response: 400 for
// validation, 404 for missing records, 500 otherwise.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errs.ErrValidation):
		msg := strings.TrimPrefix(err.Error(), errs.ErrValidation.Error()+": ")
		writeText(w, http.StatusBadRequest, msg)
	case errors.Is(err, errs.ErrNotFound):
		writeText(w, http.StatusNotFound, "medicine not found")
	default:
		fields := []zap.Field{zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err)}
		if id, ok := RequestIDFromCtx(r.Context()); ok {
			fields = append(fields, zap.String("request_id", id.String()))
		}
		h.log.Error("request failed", fields...)
		writeText(w, http.StatusInternalServerError, "internal server error")
	}
}

func userIDParam(r *http.Request) (int64, error) {
	s := r.URL.Query().Get("userId")
	if s == "" {
		return 0, fmt.Errorf("%w: userId is required", errs.ErrValidation)
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid userId %q", errs.ErrValidation, s)
	}
	return id, nil
}

func idParam(r *http.Request) (int64, error) {
	s := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", errs.ErrValidation, s)
	}
	return id, nil
}

func decodeInput(w http.ResponseWriter, r *http.Request) (model.MedicineInput, error) {
	var in model.MedicineInput
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	if err := dec.Decode(&in); err != nil {
		return in, fmt.Errorf("%w: invalid request body: %v", errs.ErrValidation, err)
	}
	return in, nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, "Error: %s", msg)
}
