package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/resumind/ragserver/internal/core/domain"
	"github.com/resumind/ragserver/internal/core/ports/driven"
	"github.com/resumind/ragserver/internal/core/ports/driving"
	"github.com/resumind/ragserver/internal/core/services"
	"github.com/resumind/ragserver/internal/logger"
)

// DefaultMaxUploadBytes caps uploads when no limit is configured.
const DefaultMaxUploadBytes = 20 << 20

// Handler holds the dependencies for HTTP handlers.
type Handler struct {
	ingester       driving.IngestionService
	ragChat        driving.RAGChatService
	plainChat      driving.PlainChatService
	index          driven.VectorIndex
	uploadDir      string
	maxUploadBytes int64
}

// NewHandler creates a new Handler. plainChat may be nil; the plain
// chat endpoint then reports 503.
func NewHandler(
	ingester driving.IngestionService,
	ragChat driving.RAGChatService,
	plainChat driving.PlainChatService,
	index driven.VectorIndex,
	uploadDir string,
	maxUploadBytes int64,
) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &Handler{
		ingester:       ingester,
		ragChat:        ragChat,
		plainChat:      plainChat,
		index:          index,
		uploadDir:      uploadDir,
		maxUploadBytes: maxUploadBytes,
	}
}

// uploadResponse is the POST /api/upload response body.
type uploadResponse struct {
	Success     bool   `json:"success"`
	ChunksCount int    `json:"chunksCount,omitempty"`
	Message     string `json:"message"`
}

// ragChatRequest is the POST /api/chat/rag request body. The RAG
// system prompt is server configuration; systemPrompt is decoded only
// so requests carrying it get rejected instead of silently ignored.
type ragChatRequest struct {
	Message      string               `json:"message"`
	History      []domain.ChatMessage `json:"history,omitempty"`
	TopK         int                  `json:"topK,omitempty"`
	SystemPrompt string               `json:"systemPrompt,omitempty"`
}

// plainChatRequest is the POST /api/chat request body.
type plainChatRequest struct {
	Message      string               `json:"message"`
	History      []domain.ChatMessage `json:"history,omitempty"`
	SystemPrompt string               `json:"systemPrompt,omitempty"`
}

// chatResponse is the chat endpoints' success response body.
type chatResponse struct {
	Success bool                     `json:"success"`
	Answer  string                   `json:"answer"`
	Sources []domain.RetrievedSource `json:"sources,omitempty"`
}

// errorResponse is the generic failure response body.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// HandleUpload handles POST /api/upload. The multipart "file" part is
// saved under the upload directory and ingested synchronously; the
// response reports how many chunks were indexed.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart form: " + err.Error()})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "missing \"file\" part"})
		return
	}
	defer file.Close()

	path, err := h.saveUpload(file, header.Filename)
	if err != nil {
		logger.Warn("Saving upload %s failed: %v", header.Filename, err)
		sendJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to save upload"})
		return
	}

	stats, err := h.ingester.IngestFile(r.Context(), path, nil)
	if err != nil {
		sendJSON(w, statusFor(err), errorResponse{Error: err.Error()})
		return
	}

	sendJSON(w, http.StatusOK, uploadResponse{
		Success:     true,
		ChunksCount: stats.ChunksCount,
		Message:     fmt.Sprintf("Ingested %s into %d chunks", header.Filename, stats.ChunksCount),
	})
}

// saveUpload writes the uploaded content to the upload directory. The
// timestamp prefix keeps repeated uploads of the same name distinct.
func (h *Handler) saveUpload(src io.Reader, name string) (string, error) {
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name = filepath.Base(name)
	path := filepath.Join(h.uploadDir, fmt.Sprintf("%d-%s", time.Now().UnixNano(), name))

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// HandleRAGChat handles POST /api/chat/rag.
func (h *Handler) HandleRAGChat(w http.ResponseWriter, r *http.Request) {
	var req ragChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON: " + err.Error()})
		return
	}
	if req.SystemPrompt != "" {
		sendJSON(w, http.StatusBadRequest, errorResponse{
			Error: "systemPrompt is not supported on the RAG endpoint; it is configured server-side",
		})
		return
	}

	var opts *domain.ChatOptions
	if req.TopK > 0 {
		opts = &domain.ChatOptions{TopK: req.TopK}
	}

	result, err := h.ragChat.Chat(r.Context(), req.Message, req.History, opts)
	if err != nil {
		sendJSON(w, statusFor(err), errorResponse{Error: err.Error()})
		return
	}

	sendJSON(w, http.StatusOK, chatResponse{
		Success: true,
		Answer:  result.Answer,
		Sources: result.Sources,
	})
}

// HandleChat handles POST /api/chat, answering without retrieval.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	if h.plainChat == nil {
		sendJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "plain chat is not configured"})
		return
	}

	var req plainChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON: " + err.Error()})
		return
	}

	answer, err := h.plainChat.Chat(r.Context(), req.Message, req.History, req.SystemPrompt)
	if err != nil {
		sendJSON(w, statusFor(err), errorResponse{Error: err.Error()})
		return
	}

	sendJSON(w, http.StatusOK, chatResponse{Success: true, Answer: answer})
}

// vectorStoreDebugResponse is the GET /api/debug/vectorstore response body.
type vectorStoreDebugResponse struct {
	Initialized bool   `json:"initialized"`
	Type        string `json:"type"`
	Records     int    `json:"records"`
	Dimensions  int    `json:"dimensions"`
}

// HandleVectorStoreDebug handles GET /api/debug/vectorstore.
func (h *Handler) HandleVectorStoreDebug(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, vectorStoreDebugResponse{
		Initialized: h.index.Initialized(),
		Type:        h.index.Type(),
		Records:     h.index.Len(),
		Dimensions:  h.index.Dimensions(),
	})
}

// HandleHealth handles GET /health.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusFor maps domain errors to HTTP status codes: caller mistakes
// are 400, provider outages are 502, everything else is 500.
func statusFor(err error) int {
	switch {
	case services.IsClientError(err):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrEmbeddingProvider), errors.Is(err, domain.ErrGenerationProvider):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// sendJSON sends a JSON response with the given status code.
func sendJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
