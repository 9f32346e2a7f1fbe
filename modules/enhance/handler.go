package enhance

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"
)

// Handler - 프롬프트 향상 API Handler
type Handler struct {
	service *Service
}

// EnhanceRequest - 프롬프트 향상 요청
type EnhanceRequest struct {
	Prompt string `json:"prompt"`
}

// EnhanceResponse - 프롬프트 향상 응답
type EnhanceResponse struct {
	Success        bool   `json:"success"`
	Error          string `json:"error,omitempty"`
	OriginalPrompt string `json:"originalPrompt,omitempty"`
	EnhancedPrompt string `json:"enhancedPrompt,omitempty"`
}

// NewHandler - Handler 생성
func NewHandler() *Handler {
	return &Handler{
		service: NewService(),
	}
}

// RegisterRoutes - 라우트 등록
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/prompt/enhance", h.HandleEnhance).Methods("POST", "OPTIONS")
	log.Println("✅ Enhance routes registered: /api/prompt/enhance")
}

// HandleEnhance - POST /api/prompt/enhance
func (h *Handler) HandleEnhance(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	var req EnhanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ [Enhance] Invalid request: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(EnhanceResponse{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	if req.Prompt == "" {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(EnhanceResponse{
			Success: false,
			Error:   "prompt is required",
		})
		return
	}

	log.Printf("📝 [Enhance] Enhancing prompt (%d chars)", len(req.Prompt))

	enhanced := h.service.Enhance(r.Context(), req.Prompt)

	json.NewEncoder(w).Encode(EnhanceResponse{
		Success:        true,
		OriginalPrompt: req.Prompt,
		EnhancedPrompt: enhanced,
	})
}
