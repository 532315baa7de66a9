package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/MiguelSairitupa/voznota/internal/metrics"
	"github.com/MiguelSairitupa/voznota/internal/store"
	"github.com/MiguelSairitupa/voznota/internal/transcribe"
)

// multipartOverhead is slack on top of the audio limit for the form
// boundary and part headers before the body reader cuts off.
const multipartOverhead = 1 << 20

// allowedExtensions are the accepted upload filename extensions. A file
// without any extension is judged by content type alone.
var allowedExtensions = map[string]bool{
	".mp3": true,
	".wav": true,
}

// allowedContentTypes mirrors the formats the mobile clients send,
// including the generic octet-stream some recorders fall back to.
var allowedContentTypes = map[string]bool{
	"audio/wav":                true,
	"audio/mpeg":               true,
	"audio/mp3":                true,
	"audio/x-wav":              true,
	"audio/wave":               true,
	"application/octet-stream": true,
}

// TranscriptionResponse is the success payload for POST /api/transcribe.
type TranscriptionResponse struct {
	Titulo      string `json:"titulo"`
	Texto       string `json:"texto"`
	IDDocumento string `json:"id_documento"`
	Fecha       string `json:"fecha"`
}

// TranscribeHandler accepts an audio upload, recognizes it through the
// speech-to-text provider and persists the transcript.
type TranscribeHandler struct {
	provider transcribe.Provider
	store    store.Store
	maxBytes int64
	log      zerolog.Logger
}

// NewTranscribeHandler creates a new transcribe handler.
func NewTranscribeHandler(provider transcribe.Provider, st store.Store, maxBytes int64, log zerolog.Logger) *TranscribeHandler {
	return &TranscribeHandler{
		provider: provider,
		store:    st,
		maxBytes: maxBytes,
		log:      log.With().Str("handler", "transcribe").Logger(),
	}
}

// Routes registers the transcribe endpoint.
func (h *TranscribeHandler) Routes(r chi.Router) {
	r.Post("/transcribe", h.Transcribe)
}

// Transcribe handles POST /api/transcribe.
// The upload is validated (extension, content type, size) before any
// provider call; validation failures answer 400 without touching Watson
// or Cloudant. Provider and store failures answer 500.
func (h *TranscribeHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)

	file, header, err := r.FormFile("audio")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.reject(w, "too_large", "El archivo es demasiado grande",
				fmt.Sprintf("el tamaño máximo es %d MB", h.maxBytes/(1024*1024)))
			return
		}
		h.reject(w, "missing_field", "Solicitud inválida",
			"se requiere el campo 'audio' (multipart/form-data)")
		return
	}
	defer file.Close()

	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != "" && !allowedExtensions[ext] {
		h.reject(w, "extension", "Extensión de archivo no válida",
			"extensiones permitidas: .mp3, .wav")
		return
	}

	contentType := strings.ToLower(strings.TrimSpace(header.Header.Get("Content-Type")))
	if !allowedContentTypes[contentType] {
		h.reject(w, "content_type", "Formato de audio no válido",
			"formatos permitidos: audio/wav, audio/mpeg, audio/mp3, audio/x-wav, audio/wave, application/octet-stream")
		return
	}

	if header.Size > h.maxBytes {
		h.reject(w, "too_large", "El archivo es demasiado grande",
			fmt.Sprintf("el tamaño máximo es %d MB", h.maxBytes/(1024*1024)))
		return
	}

	audio, err := io.ReadAll(file)
	if err != nil {
		h.reject(w, "unreadable", "Solicitud inválida", "no se pudo leer el archivo de audio")
		return
	}

	h.log.Info().
		Str("filename", header.Filename).
		Str("content_type", contentType).
		Int64("size", header.Size).
		Msg("transcription request")

	start := time.Now()
	result, err := h.provider.Recognize(r.Context(), audio, contentType)
	metrics.WatsonRequestSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.TranscriptionsTotal.WithLabelValues("transcription_failed").Inc()
		h.log.Error().Err(err).Str("filename", header.Filename).Msg("transcription failed")
		if errors.Is(err, transcribe.ErrEmptyTranscript) {
			WriteErrorDetail(w, http.StatusInternalServerError, "Error al transcribir el audio",
				"el audio podría estar vacío o ser inaudible")
			return
		}
		WriteErrorDetail(w, http.StatusInternalServerError, "Error al transcribir el audio", err.Error())
		return
	}

	titulo := transcribe.DeriveTitle(result.Text)
	fecha := time.Now().UTC().Format(time.RFC3339)

	rec := &store.Record{
		Titulo:      titulo,
		Texto:       result.Text,
		Fecha:       fecha,
		AudioFormat: contentType,
		AudioSize:   header.Size,
	}

	start = time.Now()
	docID, err := h.store.Save(r.Context(), rec)
	metrics.CloudantRequestSeconds.WithLabelValues("save").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.TranscriptionsTotal.WithLabelValues("store_failed").Inc()
		h.log.Error().Err(err).Msg("failed to save transcription")
		// The transcript rides along in the error payload so the
		// recognition work is not lost with the failed write.
		WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "Error al guardar la transcripción",
			Detalle: err.Error(),
			Texto:   result.Text,
		})
		return
	}

	metrics.TranscriptionsTotal.WithLabelValues("ok").Inc()
	h.log.Info().
		Str("doc_id", docID).
		Int("chars", len(result.Text)).
		Float64("confidence", result.Confidence).
		Msg("transcription stored")

	WriteJSON(w, http.StatusOK, TranscriptionResponse{
		Titulo:      titulo,
		Texto:       result.Text,
		IDDocumento: docID,
		Fecha:       fecha,
	})
}

// reject answers a validation failure with 400 and counts it.
func (h *TranscribeHandler) reject(w http.ResponseWriter, reason, msg, detalle string) {
	metrics.UploadRejectionsTotal.WithLabelValues(reason).Inc()
	h.log.Warn().Str("reason", reason).Msg("upload rejected")
	WriteErrorDetail(w, http.StatusBadRequest, msg, detalle)
}
