package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/MiguelSairitupa/voznota/internal/metrics"
	"github.com/MiguelSairitupa/voznota/internal/store"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// TranscriptionsHandler serves read access to stored transcriptions.
type TranscriptionsHandler struct {
	store store.Store
	log   zerolog.Logger
}

func NewTranscriptionsHandler(st store.Store, log zerolog.Logger) *TranscriptionsHandler {
	return &TranscriptionsHandler{
		store: st,
		log:   log.With().Str("handler", "transcriptions").Logger(),
	}
}

func (h *TranscriptionsHandler) Routes(r chi.Router) {
	r.Get("/transcriptions", h.List)
	r.Get("/transcriptions/{id}", h.Get)
}

// List returns stored transcriptions up to the requested limit.
func (h *TranscriptionsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := ParseLimit(r, defaultListLimit, maxListLimit)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	recs, err := h.store.List(r.Context(), limit)
	metrics.CloudantRequestSeconds.WithLabelValues("list").Observe(time.Since(start).Seconds())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list transcriptions")
		WriteErrorDetail(w, http.StatusInternalServerError, "Error al listar las transcripciones", err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"transcripciones": recs,
		"total":           len(recs),
	})
}

// Get returns one stored transcription by document ID.
func (h *TranscriptionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	start := time.Now()
	rec, err := h.store.Get(r.Context(), id)
	metrics.CloudantRequestSeconds.WithLabelValues("get").Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Transcripción no encontrada")
			return
		}
		h.log.Error().Err(err).Str("doc_id", id).Msg("failed to get transcription")
		WriteErrorDetail(w, http.StatusInternalServerError, "Error al obtener la transcripción", err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, rec)
}
