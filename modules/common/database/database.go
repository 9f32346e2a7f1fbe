package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/supabase-community/supabase-go"
	"lumen-video-server/modules/common/config"
	"lumen-video-server/modules/common/model"
)

type Client struct {
	supabase *supabase.Client
}

// NewClient - Database 클라이언트 생성
func NewClient() *Client {
	cfg := config.GetConfig()

	supabaseClient, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, &supabase.ClientOptions{})
	if err != nil {
		log.Printf("❌ Failed to create Supabase client: %v", err)
		return nil
	}

	return &Client{
		supabase: supabaseClient,
	}
}

// CreateVideoJob - lumen_video_jobs 테이블에 Job 레코드 생성
func (c *Client) CreateVideoJob(ctx context.Context, job *model.VideoJob) error {
	log.Printf("💾 Creating video job: %s (mode: %s)", job.JobID, job.JobType)

	insertData := map[string]interface{}{
		"job_id":         job.JobID,
		"user_id":        job.UserID,
		"job_type":       job.JobType,
		"job_status":     model.StatusPending,
		"job_input_data": job.JobInputData,
	}

	_, _, err := c.supabase.From("lumen_video_jobs").
		Insert(insertData, false, "", "", "").
		Execute()

	if err != nil {
		return fmt.Errorf("failed to insert video job: %w", err)
	}

	log.Printf("✅ Video job created: %s", job.JobID)
	return nil
}

// FetchVideoJob - Supabase에서 Job 데이터 조회
func (c *Client) FetchVideoJob(jobID string) (*model.VideoJob, error) {
	log.Printf("🔍 Fetching video job from Supabase: %s", jobID)

	var jobs []model.VideoJob

	data, _, err := c.supabase.From("lumen_video_jobs").
		Select("*", "exact", false).
		Eq("job_id", jobID).
		Execute()

	if err != nil {
		return nil, fmt.Errorf("failed to query Supabase: %w", err)
	}

	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(jobs) == 0 {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}

	job := &jobs[0]
	log.Printf("✅ Video job fetched: %s (status: %s, mode: %s)", job.JobID, job.JobStatus, job.JobType)

	return job, nil
}

// UpdateJobStatus - Job 상태 업데이트
func (c *Client) UpdateJobStatus(ctx context.Context, jobID string, status string) error {
	log.Printf("📝 Updating job %s status to: %s", jobID, status)

	updateData := map[string]interface{}{
		"job_status": status,
		"updated_at": "now()",
	}

	if status == model.StatusProcessing {
		updateData["started_at"] = "now()"
	} else if status == model.StatusCompleted || status == model.StatusFailed {
		updateData["completed_at"] = "now()"
	}

	_, _, err := c.supabase.From("lumen_video_jobs").
		Update(updateData, "", "").
		Eq("job_id", jobID).
		Execute()

	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}

	log.Printf("✅ Job %s status updated to: %s", jobID, status)
	return nil
}

// UpdateJobFailed - Job 실패 처리 (에러 메시지 포함)
func (c *Client) UpdateJobFailed(ctx context.Context, jobID string, errorMessage string) error {
	log.Printf("📝 Marking job %s as failed: %s", jobID, errorMessage)

	updateData := map[string]interface{}{
		"job_status":    model.StatusFailed,
		"error_message": errorMessage,
		"completed_at":  "now()",
		"updated_at":    "now()",
	}

	_, _, err := c.supabase.From("lumen_video_jobs").
		Update(updateData, "", "").
		Eq("job_id", jobID).
		Execute()

	if err != nil {
		return fmt.Errorf("failed to mark job failed: %w", err)
	}

	return nil
}

// UpdateJobCompleted - Job 완료 처리
// videoRef가 비어 있으면 extendable=false로 저장 (extend 불가 상태를 명시적으로 기록)
func (c *Client) UpdateJobCompleted(ctx context.Context, jobID, videoURL, videoRef string, attachID int) error {
	log.Printf("📝 Marking job %s as completed (extendable: %v)", jobID, videoRef != "")

	updateData := map[string]interface{}{
		"job_status":   model.StatusCompleted,
		"video_url":    videoURL,
		"extendable":   videoRef != "",
		"attach_id":    attachID,
		"completed_at": "now()",
		"updated_at":   "now()",
	}
	if videoRef != "" {
		updateData["video_ref"] = videoRef
	}

	_, _, err := c.supabase.From("lumen_video_jobs").
		Update(updateData, "", "").
		Eq("job_id", jobID).
		Execute()

	if err != nil {
		return fmt.Errorf("failed to mark job completed: %w", err)
	}

	log.Printf("✅ Job %s completed with video: %s", jobID, videoURL)
	return nil
}

// FetchAttachInfo - lumen_attach 테이블에서 파일 정보 조회
func (c *Client) FetchAttachInfo(attachID int) (*model.Attach, error) {
	log.Printf("🔍 Fetching attach info: %d", attachID)

	var attaches []model.Attach

	data, _, err := c.supabase.From("lumen_attach").
		Select("*", "exact", false).
		Eq("attach_id", fmt.Sprintf("%d", attachID)).
		Execute()

	if err != nil {
		return nil, fmt.Errorf("failed to query lumen_attach: %w", err)
	}

	if err := json.Unmarshal(data, &attaches); err != nil {
		return nil, fmt.Errorf("failed to parse attach response: %w", err)
	}

	if len(attaches) == 0 {
		return nil, fmt.Errorf("attach not found: %d", attachID)
	}

	return &attaches[0], nil
}

// CreateAttachRecord - lumen_attach 테이블에 레코드 생성
func (c *Client) CreateAttachRecord(ctx context.Context, filePath string, fileSize int64, fileType string) (int, error) {
	log.Printf("💾 Creating attach record for: %s", filePath)

	// 파일명 추출
	fileName := filePath
	if idx := strings.LastIndex(filePath, "/"); idx >= 0 {
		fileName = filePath[idx+1:]
	}

	insertData := map[string]interface{}{
		"attach_original_name": fileName,
		"attach_file_name":     fileName,
		"attach_file_path":     filePath,
		"attach_file_size":     fileSize,
		"attach_file_type":     fileType,
		"attach_directory":     filePath,
		"attach_storage_type":  "supabase",
	}

	data, _, err := c.supabase.From("lumen_attach").
		Insert(insertData, false, "", "", "").
		Execute()

	if err != nil {
		return 0, fmt.Errorf("failed to insert attach record: %w", err)
	}

	// attach_id 추출
	var attaches []model.Attach
	if err := json.Unmarshal(data, &attaches); err != nil {
		return 0, fmt.Errorf("failed to parse attach response: %w", err)
	}

	if len(attaches) == 0 {
		return 0, fmt.Errorf("no attach record returned")
	}

	attachID := int(attaches[0].AttachID)
	log.Printf("✅ Attach record created: ID=%d", attachID)

	return attachID, nil
}
