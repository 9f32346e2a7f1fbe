package videogen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// PollInterval - 상태 조회 간격 (고정, 백오프 없음)
	PollInterval = 10 * time.Second
	// MaxPollAttempts - 최대 폴링 횟수 (10초 x 60회 = 10분)
	MaxPollAttempts = 60
)

// Service - Veo long-running API 클라이언트
type Service struct {
	config     *Config
	httpClient *http.Client

	pollInterval    time.Duration
	maxPollAttempts int
}

// NewService - Service 생성
func NewService() *Service {
	return &Service{
		config: GetConfig(),
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		pollInterval:    PollInterval,
		maxPollAttempts: MaxPollAttempts,
	}
}

// SubmitGeneration - 비디오 생성 작업 제출
// 반환된 Operation은 아직 실행 중인 원격 작업의 핸들
func (s *Service) SubmitGeneration(ctx context.Context, payload *SubmissionPayload) (*Operation, error) {
	reqData := predictRequest{
		Instances:  []VideoInstance{payload.Instance},
		Parameters: &payload.Config,
	}

	reqBody, err := json.Marshal(reqData)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	submitURL := fmt.Sprintf("%s/models/%s:predictLongRunning?key=%s",
		s.config.BaseURL, payload.Model, apiKey())

	req, err := http.NewRequestWithContext(ctx, "POST", submitURL, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	log.Printf("🚀 [Veo] Submitting generation (model: %s)...", payload.Model)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	log.Printf("📥 [Veo] Submit response status: %d", resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var op Operation
	if err := json.Unmarshal(body, &op); err != nil {
		return nil, fmt.Errorf("failed to unmarshal operation: %w", err)
	}

	if op.Name == "" {
		return nil, fmt.Errorf("API returned no operation name: %s", string(body))
	}

	log.Printf("✅ [Veo] Operation created: %s", op.Name)
	return &op, nil
}

// PollOperation - 작업 상태 조회 (멱등, 핸들을 최신 상태로 교체)
func (s *Service) PollOperation(ctx context.Context, op *Operation) (*Operation, error) {
	pollURL := fmt.Sprintf("%s/%s?key=%s", s.config.BaseURL, op.Name, apiKey())

	req, err := http.NewRequestWithContext(ctx, "GET", pollURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var fresh Operation
	if err := json.Unmarshal(body, &fresh); err != nil {
		return nil, fmt.Errorf("failed to unmarshal operation: %w", err)
	}

	return &fresh, nil
}

// WaitForCompletion - 작업 완료 대기 (폴링)
// 고정 간격으로 최대 maxPollAttempts회 조회, 초과 시 TimeoutError
// ctx 취소 시 즉시 중단됨
func (s *Service) WaitForCompletion(ctx context.Context, op *Operation) (*Operation, error) {
	if op.Done {
		return op, nil
	}

	log.Printf("⏳ [Veo] Waiting for operation %s to complete...", op.Name)

	for attempt := 1; attempt <= s.maxPollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.pollInterval):
		}

		fresh, err := s.PollOperation(ctx, op)
		if err != nil {
			return nil, err
		}
		op = fresh

		log.Printf("📊 [Veo] Poll attempt %d/%d: done=%v", attempt, s.maxPollAttempts, op.Done)

		if op.Done {
			log.Printf("✅ [Veo] Operation %s completed", op.Name)
			return op, nil
		}
	}

	return nil, &TimeoutError{
		Attempts: s.maxPollAttempts,
		Elapsed:  s.pollInterval * time.Duration(s.maxPollAttempts),
	}
}

// FetchVideo - 비디오 바이너리 다운로드
// locator는 percent-encoded로 도착하므로 디코딩 후 API 키를 붙여 조회함
func (s *Service) FetchVideo(ctx context.Context, locator string) ([]byte, string, error) {
	decoded, err := url.PathUnescape(locator)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode video URI: %w", err)
	}

	sep := "?"
	if strings.Contains(decoded, "?") {
		sep = "&"
	}
	fetchURL := decoded + sep + "key=" + apiKey()

	req, err := http.NewRequestWithContext(ctx, "GET", fetchURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	log.Printf("📥 [Veo] Downloading video from: %s", decoded)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download video: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", &FetchError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read video data: %w", err)
	}

	log.Printf("✅ [Veo] Video downloaded: %d bytes", len(data))
	return data, decoded, nil
}
