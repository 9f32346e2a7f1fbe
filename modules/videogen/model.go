package videogen

import "lumen-video-server/modules/common/utils"

// GenerationMode - 비디오 생성 모드
type GenerationMode string

const (
	ModeTextToVideo       GenerationMode = "text-to-video"
	ModeFramesToVideo     GenerationMode = "frames-to-video"
	ModeReferencesToVideo GenerationMode = "references-to-video"
	ModeExtendVideo       GenerationMode = "extend-video"
)

// IsValid - 지원하는 모드인지 확인
func (m GenerationMode) IsValid() bool {
	switch m {
	case ModeTextToVideo, ModeFramesToVideo, ModeReferencesToVideo, ModeExtendVideo:
		return true
	}
	return false
}

// VideoRef - 이전 생성 결과를 가리키는 불변 레퍼런스
// extend 요청 시 원본 비디오 대신 이 레퍼런스를 전달해야 함
type VideoRef struct {
	URI string `json:"uri"`
}

// GenerationParameters - 한 번의 제출에 필요한 전체 입력 (읽기 전용)
type GenerationParameters struct {
	Prompt          string
	Model           string
	AspectRatio     string
	Resolution      string
	Mode            GenerationMode
	StartFrame      *utils.EncodedMedia
	EndFrame        *utils.EncodedMedia
	ReferenceImages []*utils.EncodedMedia // 최대 3장
	StyleImage      *utils.EncodedMedia
	InputVideoRef   *VideoRef
	Looping         bool
}

// ImagePayload - API로 전송되는 이미지
type ImagePayload struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
	MimeType           string `json:"mimeType"`
}

// ReferenceImage - 역할 태그가 붙은 레퍼런스 이미지
type ReferenceImage struct {
	Image         ImagePayload `json:"image"`
	ReferenceType string       `json:"referenceType"` // asset | style
}

const (
	RoleAsset = "asset"
	RoleStyle = "style"
)

// VideoInstance - 요청 instance 블록
type VideoInstance struct {
	Prompt string        `json:"prompt,omitempty"`
	Image  *ImagePayload `json:"image,omitempty"`
	Video  *VideoRef     `json:"video,omitempty"`
}

// VideoConfig - 요청 parameters 블록
type VideoConfig struct {
	SampleCount     int              `json:"sampleCount"`
	Resolution      string           `json:"resolution,omitempty"`
	AspectRatio     string           `json:"aspectRatio,omitempty"`
	ReferenceImages []ReferenceImage `json:"referenceImages,omitempty"`
	LastFrame       *ImagePayload    `json:"lastFrame,omitempty"`
}

// SubmissionPayload - 모드별 규칙 적용이 끝난 정규화된 제출 데이터
// 활성 모드와 무관한 필드는 모두 비워짐 (omitempty로 전송 자체가 생략됨)
type SubmissionPayload struct {
	Model    string
	Instance VideoInstance
	Config   VideoConfig
}

// predictRequest - :predictLongRunning 요청 바디
type predictRequest struct {
	Instances  []VideoInstance `json:"instances"`
	Parameters *VideoConfig    `json:"parameters,omitempty"`
}

// Operation - 진행 중인 원격 작업 핸들
// 로컬에서 변경하지 않으며, PollOperation으로 받은 최신 상태로 교체만 함
type Operation struct {
	Name     string             `json:"name"`
	Done     bool               `json:"done"`
	Error    *OperationError    `json:"error,omitempty"`
	Response *OperationResponse `json:"response,omitempty"`
}

// OperationError - 원격 작업 실패 정보
type OperationError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// OperationResponse - 완료된 작업의 응답
type OperationResponse struct {
	GenerateVideoResponse *GenerateVideoResponse `json:"generateVideoResponse,omitempty"`
}

// GenerateVideoResponse - 생성된 비디오 목록
type GenerateVideoResponse struct {
	GeneratedSamples []GeneratedSample `json:"generatedSamples"`
}

// GeneratedSample - 생성된 비디오 1건
type GeneratedSample struct {
	Video *GeneratedVideo `json:"video,omitempty"`
}

// GeneratedVideo - 다운로드 가능한 비디오 디스크립터
type GeneratedVideo struct {
	URI string `json:"uri,omitempty"`
}

// GenerationResult - 최종 결과물
// VideoRef는 materialize된 비디오와 항상 함께 다님 (없으면 extend 불가)
type GenerationResult struct {
	VideoData []byte
	RemoteURL string
	VideoRef  *VideoRef
}
