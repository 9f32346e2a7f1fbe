package queue

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	goredis "github.com/redis/go-redis/v9"
	appconfig "lumen-video-server/modules/common/config"
	"lumen-video-server/modules/common/database"
	"lumen-video-server/modules/common/model"
	redisutil "lumen-video-server/modules/common/redis"
)

// CancelHandler - Job 취소 API 핸들러
type CancelHandler struct {
	rdb      *goredis.Client
	dbClient *database.Client
}

// NewCancelHandler - 핸들러 생성
func NewCancelHandler() *CancelHandler {
	cfg := appconfig.GetConfig()
	if cfg == nil {
		log.Println("❌ [CancelHandler] Failed to get config")
		return nil
	}

	rdb := redisutil.Connect(cfg)
	if rdb == nil {
		log.Println("❌ [CancelHandler] Failed to connect to Redis")
		return nil
	}

	dbClient := database.NewClient()
	if dbClient == nil {
		log.Println("❌ [CancelHandler] Failed to initialize Database client")
		return nil
	}

	return &CancelHandler{
		rdb:      rdb,
		dbClient: dbClient,
	}
}

// RegisterRoutes - 라우트 등록
func (h *CancelHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/video/jobs/{jobId}/cancel", h.CancelJob).Methods("POST", "OPTIONS")
	log.Println("✅ [CancelHandler] Routes registered: POST /api/video/jobs/{jobId}/cancel")
}

// CancelJob - Job 취소 처리
func (h *CancelHandler) CancelJob(w http.ResponseWriter, r *http.Request) {
	// CORS preflight
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	vars := mux.Vars(r)
	jobID := vars["jobId"]

	if jobID == "" {
		http.Error(w, `{"error": "jobId is required"}`, http.StatusBadRequest)
		return
	}

	log.Printf("🛑 [CancelHandler] Cancel requested for job: %s", jobID)

	// 1. DB에서 현재 job 상태 조회
	job, err := h.dbClient.FetchVideoJob(jobID)
	if err != nil {
		log.Printf("❌ [CancelHandler] Job not found: %s", jobID)
		http.Error(w, `{"error": "Job not found"}`, http.StatusNotFound)
		return
	}

	// 이미 완료/취소된 job은 취소 불가
	if job.JobStatus == model.StatusCompleted || job.JobStatus == model.StatusUserCancelled {
		log.Printf("⚠️ [CancelHandler] Job already %s: %s", job.JobStatus, jobID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":   false,
			"message":   "Job already " + job.JobStatus,
			"jobId":     jobID,
			"jobStatus": job.JobStatus,
		})
		return
	}

	// 2. Redis에 취소 플래그 설정 - 워커가 폴링 중 감지해서 중단
	if err := redisutil.SetJobCancelled(h.rdb, jobID); err != nil {
		log.Printf("❌ [CancelHandler] Failed to set cancel flag: %v", err)
		http.Error(w, `{"error": "Failed to set cancel flag"}`, http.StatusInternalServerError)
		return
	}

	log.Printf("✅ [CancelHandler] Cancel flag set for job: %s (current status: %s)", jobID, job.JobStatus)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":       true,
		"message":       "Cancel request sent. Job will stop at the next polling checkpoint.",
		"jobId":         jobID,
		"currentStatus": job.JobStatus,
	})
}
