package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"lumen-video-server/modules/common/config"
	"lumen-video-server/modules/common/progress"
	"lumen-video-server/modules/enhance"
	"lumen-video-server/modules/queue"
	"lumen-video-server/modules/videogen"
)

// CORS 헤더 추가
func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// 헬스 체크 엔드포인트
func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "lumen-video-generation",
	})
}

func main() {
	// 환경변수 로드
	if _, err := config.LoadConfig(); err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	// 진행 상황 WebSocket Hub
	hub := progress.NewHub()

	// Video Queue Worker 시작 (백그라운드)
	worker := videogen.NewWorker(hub)
	if worker == nil {
		log.Fatal("❌ Failed to initialize video worker")
	}
	go worker.StartWorker()

	// 라우터 설정
	r := mux.NewRouter()

	// CORS 미들웨어 적용
	r.Use(enableCORS)

	// 기본 라우트
	r.HandleFunc("/", healthCheck).Methods("GET")
	r.HandleFunc("/health", healthCheck).Methods("GET")

	// 진행 상황 WebSocket
	r.HandleFunc("/ws/jobs/{jobId}", func(w http.ResponseWriter, req *http.Request) {
		vars := mux.Vars(req)
		hub.HandleWS(w, req, vars["jobId"])
	})

	// 모듈 라우트 등록
	if h := videogen.NewHandler(); h != nil {
		h.RegisterRoutes(r)
	}
	if h := enhance.NewHandler(); h != nil {
		h.RegisterRoutes(r)
	}
	if h := queue.NewEnqueueHandler(); h != nil {
		h.RegisterRoutes(r)
	}
	if h := queue.NewCancelHandler(); h != nil {
		h.RegisterRoutes(r)
	}

	// 포트 설정 (Render.com은 PORT 환경변수 사용)
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("🚀 Lumen Video Generation Server starting on port %s", port)
	log.Printf("📡 Progress WebSocket: ws://localhost:%s/ws/jobs/{jobId}", port)
	log.Printf("❤️  Health check: http://localhost:%s/health", port)

	// 서버 시작
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
