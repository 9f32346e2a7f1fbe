package queue

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	goredis "github.com/redis/go-redis/v9"
	appconfig "lumen-video-server/modules/common/config"
	"lumen-video-server/modules/common/database"
	"lumen-video-server/modules/common/model"
	redisutil "lumen-video-server/modules/common/redis"
)

var startTime = time.Now()

// EnqueueHandler - 실패한 Job 재등록 핸들러
type EnqueueHandler struct {
	rdb      *goredis.Client
	dbClient *database.Client
}

// EnqueueRequest - 재등록 요청
type EnqueueRequest struct {
	JobID string `json:"jobId"`
}

// EnqueueResponse - 재등록 응답
type EnqueueResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message,omitempty"`
	Error         string `json:"error,omitempty"`
	JobID         string `json:"jobId,omitempty"`
	Queue         string `json:"queue,omitempty"`
	QueuePosition int64  `json:"queuePosition,omitempty"`
}

// NewEnqueueHandler - EnqueueHandler 생성
func NewEnqueueHandler() *EnqueueHandler {
	cfg := appconfig.GetConfig()

	rdb := redisutil.Connect(cfg)
	if rdb == nil {
		log.Println("⚠️ [Enqueue] Failed to connect to Redis")
		return nil
	}

	dbClient := database.NewClient()
	if dbClient == nil {
		log.Println("⚠️ [Enqueue] Failed to initialize Database client")
		return nil
	}

	log.Println("✅ [Enqueue] Handler initialized with Redis connection")
	return &EnqueueHandler{
		rdb:      rdb,
		dbClient: dbClient,
	}
}

// RegisterRoutes - 라우트 등록
func (h *EnqueueHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/video/enqueue", h.HandleEnqueue).Methods("POST", "OPTIONS")
	r.HandleFunc("/metrics", h.HandleMetrics).Methods("GET")
	log.Println("✅ Enqueue routes registered: /api/video/enqueue, /metrics")
}

// HandleMetrics - GET /metrics (큐 길이 및 업타임)
func (h *EnqueueHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	queueLen, err := h.rdb.LLen(ctx, redisutil.VideoQueue).Result()
	if err != nil {
		log.Printf("⚠️ [Enqueue] Failed to read queue length: %v", err)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"queue":       redisutil.VideoQueue,
		"queueLength": queueLen,
		"uptime":      time.Since(startTime).String(),
		"startTime":   startTime,
	})
}

// HandleEnqueue - POST /api/video/enqueue
// 실패하거나 취소된 job을 다시 큐에 넣고 재시도
func (h *EnqueueHandler) HandleEnqueue(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	var req EnqueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ [Enqueue] Invalid request: %v", err)
		json.NewEncoder(w).Encode(EnqueueResponse{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	if req.JobID == "" {
		json.NewEncoder(w).Encode(EnqueueResponse{
			Success: false,
			Error:   "jobId is required",
		})
		return
	}

	log.Printf("📥 [Enqueue] Re-enqueue requested for job: %s", req.JobID)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// job 상태 확인 - 실패/취소된 job만 재등록 가능
	job, err := h.dbClient.FetchVideoJob(req.JobID)
	if err != nil {
		json.NewEncoder(w).Encode(EnqueueResponse{
			Success: false,
			Error:   "Job not found",
		})
		return
	}
	if job.JobStatus != model.StatusFailed && job.JobStatus != model.StatusUserCancelled {
		json.NewEncoder(w).Encode(EnqueueResponse{
			Success: false,
			Error:   "Only failed or cancelled jobs can be re-enqueued (current: " + job.JobStatus + ")",
		})
		return
	}

	// 취소 플래그를 지우고 상태를 pending으로 되돌린 뒤 다시 큐에 등록
	if err := redisutil.ClearJobCancelled(h.rdb, req.JobID); err != nil {
		log.Printf("⚠️ [Enqueue] Failed to clear cancel flag: %v", err)
	}
	if err := h.dbClient.UpdateJobStatus(ctx, req.JobID, model.StatusPending); err != nil {
		log.Printf("⚠️ [Enqueue] Failed to reset job status: %v", err)
	}

	if _, err := h.rdb.LPush(ctx, redisutil.VideoQueue, req.JobID).Result(); err != nil {
		log.Printf("❌ [Enqueue] Redis LPUSH failed: %v", err)
		json.NewEncoder(w).Encode(EnqueueResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	queueLen, _ := h.rdb.LLen(ctx, redisutil.VideoQueue).Result()
	log.Printf("✅ [Enqueue] Job %s re-enqueued successfully (position: %d)", req.JobID, queueLen)

	json.NewEncoder(w).Encode(EnqueueResponse{
		Success:       true,
		Message:       "Job enqueued successfully",
		JobID:         req.JobID,
		Queue:         redisutil.VideoQueue,
		QueuePosition: queueLen,
	})
}
