package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"time"

	"lumen-video-server/modules/common/config"
	"lumen-video-server/modules/common/database"
)

type Client struct {
	dbClient *database.Client
}

// NewClient - Storage 클라이언트 생성
func NewClient(dbClient *database.Client) *Client {
	return &Client{
		dbClient: dbClient,
	}
}

// DownloadAttachment - Supabase Storage에서 첨부 파일 다운로드
func (c *Client) DownloadAttachment(attachID int) ([]byte, error) {
	cfg := config.GetConfig()

	// 1. lumen_attach에서 파일 경로 조회
	attach, err := c.dbClient.FetchAttachInfo(attachID)
	if err != nil {
		return nil, err
	}

	// 2. attach_file_path 확인 (없으면 attach_directory 사용)
	var filePath string
	if attach.AttachFilePath != nil && *attach.AttachFilePath != "" {
		filePath = *attach.AttachFilePath
	} else if attach.AttachDirectory != nil && *attach.AttachDirectory != "" {
		filePath = *attach.AttachDirectory
	} else {
		log.Printf("❌ DB values - FilePath: %v, Directory: %v", attach.AttachFilePath, attach.AttachDirectory)
		return nil, fmt.Errorf("no file path found for attach_id: %d", attachID)
	}

	// 3. Full URL 생성 후 직접 다운로드
	fullURL := cfg.SupabaseStorageBaseURL + filePath
	log.Printf("📥 Downloading attachment from: %s", fullURL)

	httpResp, err := http.Get(fullURL)
	if err != nil {
		return nil, fmt.Errorf("failed to download attachment: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(httpResp.Body)
		log.Printf("❌ Download failed - Status: %d, URL: %s", httpResp.StatusCode, fullURL)
		return nil, fmt.Errorf("failed to download attachment: status %d, body: %s", httpResp.StatusCode, string(body))
	}

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read attachment data: %w", err)
	}

	log.Printf("✅ Attachment downloaded successfully: %d bytes", len(data))
	return data, nil
}

// UploadVideoToStorage - 생성된 비디오(MP4)를 Supabase Storage에 업로드
func (c *Client) UploadVideoToStorage(ctx context.Context, videoData []byte, userID string) (string, int64, error) {
	fileName := fmt.Sprintf("generated_%d_%d.mp4",
		time.Now().UnixNano()/int64(time.Millisecond), rand.Intn(999999))
	filePath := fmt.Sprintf("generated-videos/user-%s/%s", userID, fileName)

	if err := c.upload(ctx, filePath, videoData, "video/mp4"); err != nil {
		return "", 0, err
	}

	size := int64(len(videoData))
	log.Printf("✅ Video uploaded successfully: %s (%d bytes)", filePath, size)
	return filePath, size, nil
}

// UploadThumbnailToStorage - WebP 썸네일을 Supabase Storage에 업로드
func (c *Client) UploadThumbnailToStorage(ctx context.Context, webpData []byte, userID string) (string, int64, error) {
	fileName := fmt.Sprintf("thumb_%d_%d.webp",
		time.Now().UnixNano()/int64(time.Millisecond), rand.Intn(999999))
	filePath := fmt.Sprintf("generated-videos/user-%s/%s", userID, fileName)

	if err := c.upload(ctx, filePath, webpData, "image/webp"); err != nil {
		return "", 0, err
	}

	size := int64(len(webpData))
	log.Printf("✅ Thumbnail uploaded successfully: %s (%d bytes)", filePath, size)
	return filePath, size, nil
}

// upload - Supabase Storage API로 업로드 실행
func (c *Client) upload(ctx context.Context, filePath string, data []byte, contentType string) error {
	cfg := config.GetConfig()

	uploadURL := fmt.Sprintf("%s/storage/v1/object/attachments/%s", cfg.SupabaseURL, filePath)

	log.Printf("📤 Uploading to storage: %s (%s)", filePath, contentType)

	req, err := http.NewRequestWithContext(ctx, "POST", uploadURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create upload request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+cfg.SupabaseServiceKey)
	req.Header.Set("Content-Type", contentType)

	client := &http.Client{Timeout: 120 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}
