package model

import "time"

// VideoJob - lumen_video_jobs 테이블 구조
type VideoJob struct {
	JobID        string                 `json:"job_id"`
	UserID       string                 `json:"user_id"`
	JobType      string                 `json:"job_type"` // 생성 모드 (text-to-video 등)
	JobStatus    string                 `json:"job_status"`
	JobInputData map[string]interface{} `json:"job_input_data"`
	VideoURL     *string                `json:"video_url"`
	VideoRef     *string                `json:"video_ref"`  // Veo extend용 레퍼런스 URI
	Extendable   bool                   `json:"extendable"` // video_ref가 있어야 extend 가능
	AttachID     *int64                 `json:"attach_id"`
	ErrorMessage *string                `json:"error_message"`
	RetryCount   int                    `json:"retry_count"`
	CreatedAt    time.Time              `json:"created_at"`
	StartedAt    *time.Time             `json:"started_at"`
	CompletedAt  *time.Time             `json:"completed_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// Attach - lumen_attach 테이블 구조
type Attach struct {
	AttachID           int64     `json:"attach_id"`
	CreatedAt          time.Time `json:"created_at"`
	AttachOriginalName *string   `json:"attach_original_name"`
	AttachFileName     *string   `json:"attach_file_name"`
	AttachFilePath     *string   `json:"attach_file_path"`
	AttachFileSize     *int64    `json:"attach_file_size"`
	AttachFileType     *string   `json:"attach_file_type"`
	AttachDirectory    *string   `json:"attach_directory"`
	AttachStorageType  *string   `json:"attach_storage_type"`
}

const (
	StatusPending       = "pending"
	StatusProcessing    = "processing"
	StatusCompleted     = "completed"
	StatusFailed        = "failed"
	StatusUserCancelled = "user_cancelled"
)
