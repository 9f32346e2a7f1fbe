package videogen

import (
	"fmt"
	"time"
)

// ValidationError - 모드에 필요한 입력이 누락됨 (제출 전에 발생)
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// TimeoutError - 폴링 횟수 제한까지 완료되지 않음 (원격 실패와 구분됨)
type TimeoutError struct {
	Attempts int
	Elapsed  time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("generation timed out after %d polls (%s)", e.Attempts, e.Elapsed)
}

// RemoteError - 작업은 종료됐지만 사용 가능한 결과가 없음
type RemoteError struct {
	Reason string
}

func (e *RemoteError) Error() string {
	return "generation failed: " + e.Reason
}

// FetchError - 비디오 다운로드가 비정상 상태 코드로 실패함
type FetchError struct {
	StatusCode int
	Status     string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("video download failed: %s", e.Status)
}
