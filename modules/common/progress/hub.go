package progress

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocket upgrader
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// 개발용 - 모든 origin 허용
		return true
	},
}

// Event - Job 진행 상황 이벤트
type Event struct {
	JobID    string `json:"jobId"`
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
	VideoURL string `json:"videoUrl,omitempty"`
	Attempt  int    `json:"attempt,omitempty"`
}

// subscriber - 연결된 클라이언트
type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub - Job별 진행 상황 구독 관리
type Hub struct {
	mutex sync.RWMutex
	subs  map[string]map[*subscriber]bool // jobID → subscribers
}

// NewHub - Hub 생성
func NewHub() *Hub {
	return &Hub{
		subs: make(map[string]map[*subscriber]bool),
	}
}

// Publish - 해당 Job 구독자 전원에게 이벤트 전송
func (h *Hub) Publish(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("❌ [Progress] Failed to marshal event: %v", err)
		return
	}

	h.mutex.RLock()
	defer h.mutex.RUnlock()

	for sub := range h.subs[event.JobID] {
		select {
		case sub.send <- data:
		default:
			// 수신이 막힌 클라이언트는 버림
		}
	}
}

// HandleWS - WebSocket 연결 처리 (jobId 구독)
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request, jobID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("❌ [Progress] WebSocket upgrade failed: %v", err)
		return
	}

	sub := &subscriber{
		conn: conn,
		send: make(chan []byte, 16),
	}

	h.mutex.Lock()
	if h.subs[jobID] == nil {
		h.subs[jobID] = make(map[*subscriber]bool)
	}
	h.subs[jobID][sub] = true
	count := len(h.subs[jobID])
	h.mutex.Unlock()

	log.Printf("👤 [Progress] Client subscribed to job %s (subscribers: %d)", jobID, count)

	go sub.writePump()
	h.readPump(sub, jobID)
}

// readPump - 연결 종료 감지용 수신 루프
func (h *Hub) readPump(sub *subscriber, jobID string) {
	defer func() {
		h.mutex.Lock()
		delete(h.subs[jobID], sub)
		if len(h.subs[jobID]) == 0 {
			delete(h.subs, jobID)
		}
		// Publish와 경합하지 않도록 락 안에서 닫음
		close(sub.send)
		h.mutex.Unlock()

		sub.conn.Close()
		log.Printf("👋 [Progress] Client unsubscribed from job %s", jobID)
	}()

	sub.conn.SetReadLimit(512)
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump - 이벤트 송신 루프
func (s *subscriber) writePump() {
	for data := range s.send {
		s.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}
