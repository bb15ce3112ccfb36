package loan

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	loanModel "github.com/fintechfusion/loan-officer/internal/model/loan"
	"github.com/fintechfusion/loan-officer/internal/service/conversation"
	"github.com/fintechfusion/loan-officer/internal/service/sanction"
	"github.com/fintechfusion/loan-officer/pkg/utils"
)

// Handler exposes the conversation over HTTP.
type Handler struct {
	convSvc        *conversation.Service
	letters        *sanction.Renderer
	maxUploadBytes int64
}

// New creates the loan conversation handler.
func New(convSvc *conversation.Service, letters *sanction.Renderer, maxUploadBytes int64) *Handler {
	return &Handler{
		convSvc:        convSvc,
		letters:        letters,
		maxUploadBytes: maxUploadBytes,
	}
}

// RegisterRoutes registers the conversation endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Post("/upload", h.handleUpload)
	r.Get("/sanction_letter/{sessionID}", h.handleSanctionLetter)
	r.Get("/transcript/{sessionID}", h.handleTranscript)
}

type chatResponse struct {
	Reply     string            `json:"reply"`
	SessionID string            `json:"session_id"`
	State     loanModel.State   `json:"state"`
	Payload   loanModel.Payload `json:"payload"`
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID string `json:"session_id"`
		Message   string `json:"message"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.SessionID == "" {
		utils.RespondError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	reply, err := h.convSvc.Send(r.Context(), payload.SessionID, payload.Message)
	if err != nil {
		log.Printf("[chat] session=%s: %v", payload.SessionID, err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to process message")
		return
	}

	utils.RespondJSON(w, http.StatusOK, chatResponse{
		Reply:     reply.Text,
		SessionID: payload.SessionID,
		State:     reply.State,
		Payload:   reply.Payload,
	})
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid or oversized upload")
		return
	}

	sessionID := r.FormValue("session_id")
	if sessionID == "" {
		utils.RespondError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "could not read uploaded file")
		return
	}

	reply, err := h.convSvc.Upload(r.Context(), sessionID, header.Filename, data)
	if err != nil {
		if errors.Is(err, conversation.ErrSessionNotFound) {
			utils.RespondError(w, http.StatusNotFound, "session not found")
			return
		}
		log.Printf("[upload] session=%s: %v", sessionID, err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to process upload")
		return
	}

	utils.RespondJSON(w, http.StatusOK, chatResponse{
		Reply:     reply.Text,
		SessionID: sessionID,
		State:     reply.State,
		Payload:   reply.Payload,
	})
}

func (h *Handler) handleSanctionLetter(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	record, err := h.convSvc.SanctionRecord(r.Context(), sessionID)
	if err != nil {
		switch {
		case errors.Is(err, conversation.ErrSessionNotFound):
			utils.RespondError(w, http.StatusNotFound, "session not found")
		case errors.Is(err, conversation.ErrNotApproved):
			utils.RespondError(w, http.StatusBadRequest, "sanction letter not available")
		default:
			log.Printf("[sanction] session=%s: %v", sessionID, err)
			utils.RespondError(w, http.StatusInternalServerError, "failed to prepare sanction letter")
		}
		return
	}

	pdfBytes, err := h.letters.Render(record)
	if err != nil {
		log.Printf("[sanction] session=%s render: %v", sessionID, err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to render sanction letter")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="sanction_letter.pdf"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdfBytes); err != nil {
		log.Printf("[sanction] session=%s write: %v", sessionID, err)
	}
}

func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	messages, err := h.convSvc.Transcript(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, conversation.ErrSessionNotFound) {
			utils.RespondError(w, http.StatusNotFound, "session not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "failed to load transcript")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"messages":   messages,
	})
}
