package videogen

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	goredis "github.com/redis/go-redis/v9"
	appconfig "lumen-video-server/modules/common/config"
	"lumen-video-server/modules/common/database"
	"lumen-video-server/modules/common/model"
	redisutil "lumen-video-server/modules/common/redis"
)

// Handler - Video Generation API Handler
type Handler struct {
	rdb      *goredis.Client
	dbClient *database.Client
}

// GenerateRequest - 비디오 생성 요청
type GenerateRequest struct {
	UserID             string `json:"userId"`
	Mode               string `json:"mode"`
	Prompt             string `json:"prompt"`
	Model              string `json:"model,omitempty"`
	AspectRatio        string `json:"aspectRatio,omitempty"`
	Resolution         string `json:"resolution,omitempty"`
	IsLooping          bool   `json:"isLooping,omitempty"`
	StartFrameAttachID int    `json:"startFrameAttachId,omitempty"`
	EndFrameAttachID   int    `json:"endFrameAttachId,omitempty"`
	ReferenceAttachIDs []int  `json:"referenceAttachIds,omitempty"`
	StyleAttachID      int    `json:"styleAttachId,omitempty"`
	SourceVideoRef     string `json:"sourceVideoRef,omitempty"`
}

// GenerateResponse - 비디오 생성 응답
type GenerateResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message,omitempty"`
	Error         string `json:"error,omitempty"`
	JobID         string `json:"jobId,omitempty"`
	QueuePosition int64  `json:"queuePosition,omitempty"`
}

// JobStatusResponse - Job 상태 조회 응답
type JobStatusResponse struct {
	Success      bool   `json:"success"`
	Error        string `json:"error,omitempty"`
	JobID        string `json:"jobId,omitempty"`
	JobStatus    string `json:"jobStatus,omitempty"`
	VideoURL     string `json:"videoUrl,omitempty"`
	Extendable   bool   `json:"extendable"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// NewHandler - Handler 생성
func NewHandler() *Handler {
	cfg := appconfig.GetConfig()

	rdb := redisutil.Connect(cfg)
	if rdb == nil {
		log.Println("⚠️ [VideoGen] Failed to connect to Redis")
		return nil
	}

	dbClient := database.NewClient()
	if dbClient == nil {
		log.Println("⚠️ [VideoGen] Failed to initialize Database client")
		return nil
	}

	log.Println("✅ [VideoGen] Handler initialized")
	return &Handler{
		rdb:      rdb,
		dbClient: dbClient,
	}
}

// RegisterRoutes - 라우트 등록
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/video/generate", h.HandleGenerate).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/video/jobs/{jobId}", h.HandleJobStatus).Methods("GET", "OPTIONS")
	log.Println("✅ VideoGen routes registered: /api/video/generate, /api/video/jobs/{jobId}")
}

// HandleGenerate - POST /api/video/generate
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ [VideoGen] Invalid request: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(GenerateResponse{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	// 모드 검증 - 알 수 없는 모드는 큐에 넣기 전에 거부
	mode := GenerationMode(req.Mode)
	if !mode.IsValid() {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(GenerateResponse{
			Success: false,
			Error:   "unknown generation mode: " + req.Mode,
		})
		return
	}

	// extend 모드는 source video ref 필수
	if mode == ModeExtendVideo && req.SourceVideoRef == "" {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(GenerateResponse{
			Success: false,
			Error:   "sourceVideoRef is required for extend mode",
		})
		return
	}

	if req.UserID == "" {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(GenerateResponse{
			Success: false,
			Error:   "userId is required",
		})
		return
	}

	jobID := uuid.New().String()
	log.Printf("📥 [VideoGen] New video job: %s (mode: %s, user: %s)", jobID, mode, req.UserID)

	inputData := map[string]interface{}{
		"mode":        req.Mode,
		"prompt":      req.Prompt,
		"model":       req.Model,
		"aspectRatio": req.AspectRatio,
		"resolution":  req.Resolution,
		"isLooping":   req.IsLooping,
	}
	if req.StartFrameAttachID > 0 {
		inputData["startFrameAttachId"] = req.StartFrameAttachID
	}
	if req.EndFrameAttachID > 0 {
		inputData["endFrameAttachId"] = req.EndFrameAttachID
	}
	if len(req.ReferenceAttachIDs) > 0 {
		inputData["referenceAttachIds"] = req.ReferenceAttachIDs
	}
	if req.StyleAttachID > 0 {
		inputData["styleAttachId"] = req.StyleAttachID
	}
	if req.SourceVideoRef != "" {
		inputData["sourceVideoRef"] = req.SourceVideoRef
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	job := &model.VideoJob{
		JobID:        jobID,
		UserID:       req.UserID,
		JobType:      "video_generation",
		JobStatus:    model.StatusPending,
		JobInputData: inputData,
	}
	if err := h.dbClient.CreateVideoJob(ctx, job); err != nil {
		log.Printf("❌ [VideoGen] Failed to create job record: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(GenerateResponse{
			Success: false,
			Error:   "Failed to create job",
		})
		return
	}

	// Redis LPUSH
	if _, err := h.rdb.LPush(ctx, redisutil.VideoQueue, jobID).Result(); err != nil {
		log.Printf("❌ [VideoGen] Redis LPUSH failed: %v", err)
		h.dbClient.UpdateJobFailed(ctx, jobID, "failed to enqueue job")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(GenerateResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	queueLen, _ := h.rdb.LLen(ctx, redisutil.VideoQueue).Result()
	log.Printf("✅ [VideoGen] Job %s enqueued (position: %d)", jobID, queueLen)

	json.NewEncoder(w).Encode(GenerateResponse{
		Success:       true,
		Message:       "Video job enqueued",
		JobID:         jobID,
		QueuePosition: queueLen,
	})
}

// HandleJobStatus - GET /api/video/jobs/{jobId}
func (h *Handler) HandleJobStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	vars := mux.Vars(r)
	jobID := vars["jobId"]

	job, err := h.dbClient.FetchVideoJob(jobID)
	if err != nil {
		log.Printf("❌ [VideoGen] Job not found: %s", jobID)
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(JobStatusResponse{
			Success: false,
			Error:   "Job not found",
		})
		return
	}

	resp := JobStatusResponse{
		Success:    true,
		JobID:      job.JobID,
		JobStatus:  job.JobStatus,
		Extendable: job.Extendable,
	}
	if job.VideoURL != nil {
		resp.VideoURL = *job.VideoURL
	}
	if job.ErrorMessage != nil {
		resp.ErrorMessage = *job.ErrorMessage
	}

	json.NewEncoder(w).Encode(resp)
}
