package videogen

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	goredis "github.com/redis/go-redis/v9"
	appconfig "lumen-video-server/modules/common/config"
	"lumen-video-server/modules/common/database"
	"lumen-video-server/modules/common/model"
	"lumen-video-server/modules/common/progress"
	redisutil "lumen-video-server/modules/common/redis"
	"lumen-video-server/modules/common/storage"
	"lumen-video-server/modules/common/utils"
)

// Worker - Veo Video Worker
type Worker struct {
	rdb      *goredis.Client
	dbClient *database.Client
	storage  *storage.Client
	service  *Service
	hub      *progress.Hub
}

// NewWorker - Worker 생성
func NewWorker(hub *progress.Hub) *Worker {
	cfg := appconfig.GetConfig()

	rdb := redisutil.Connect(cfg)
	if rdb == nil {
		log.Println("❌ [Veo Worker] Failed to connect to Redis")
		return nil
	}

	dbClient := database.NewClient()
	if dbClient == nil {
		log.Println("❌ [Veo Worker] Failed to initialize Database client")
		return nil
	}

	log.Println("✅ [Veo Worker] Initialized successfully")
	return &Worker{
		rdb:      rdb,
		dbClient: dbClient,
		storage:  storage.NewClient(dbClient),
		service:  NewService(),
		hub:      hub,
	}
}

// StartWorker - Redis 큐 감시 시작
func (w *Worker) StartWorker() {
	log.Println("🔄 [Veo Worker] Starting video queue worker...")
	log.Printf("👀 [Veo Worker] Watching queue: %s", redisutil.VideoQueue)

	ctx := context.Background()

	for {
		// Job 받기 (BRPOP - Blocking Right Pop)
		result, err := w.rdb.BRPop(ctx, 0, redisutil.VideoQueue).Result()
		if err != nil {
			log.Printf("❌ [Veo Worker] Redis BRPOP error: %v", err)
			time.Sleep(5 * time.Second)
			continue
		}

		// result[0]은 큐 이름, result[1]이 실제 job_id
		jobID := result[1]
		log.Printf("🎯 [Veo Worker] Received video job: %s", jobID)

		// Job 처리 (동기 처리 - 비디오 생성은 시간이 오래 걸림)
		w.processVideoJob(ctx, jobID)
	}
}

// processVideoJob - 비디오 작업 처리
func (w *Worker) processVideoJob(ctx context.Context, jobID string) {
	log.Printf("🚀 [Veo Worker] Processing video job: %s", jobID)

	// 1. Supabase에서 Job 데이터 조회
	job, err := w.dbClient.FetchVideoJob(jobID)
	if err != nil {
		log.Printf("❌ [Veo Worker] Failed to fetch job %s: %v", jobID, err)
		return
	}

	// 큐 대기 중에 이미 취소된 경우
	if redisutil.IsJobCancelled(w.rdb, jobID) {
		log.Printf("🛑 [Veo Worker] Job %s already cancelled, skipping", jobID)
		w.dbClient.UpdateJobStatus(ctx, jobID, model.StatusUserCancelled)
		return
	}

	// 2. Job 상태를 processing으로 업데이트
	if err := w.dbClient.UpdateJobStatus(ctx, jobID, model.StatusProcessing); err != nil {
		log.Printf("⚠️ [Veo Worker] Failed to update job status: %v", err)
	}
	w.publish(progress.Event{JobID: jobID, Status: model.StatusProcessing})

	// 3. Job 입력 데이터에서 생성 파라미터 구성 (첨부 이미지 다운로드 포함)
	params, err := w.buildParameters(job)
	if err != nil {
		w.failJob(ctx, jobID, err)
		return
	}

	// 4. 제출 데이터 생성 (모드별 규칙 적용)
	payload, err := BuildPayload(params)
	if err != nil {
		w.failJob(ctx, jobID, err)
		return
	}

	// 5. Veo API 호출 - 작업 제출
	op, err := w.service.SubmitGeneration(ctx, payload)
	if err != nil {
		w.failJob(ctx, jobID, err)
		return
	}
	w.publish(progress.Event{JobID: jobID, Status: "submitted", Message: op.Name})

	// 6. 작업 완료 대기 - 취소 플래그가 세워지면 폴링 중단
	jobCtx, cancelPoll := context.WithCancel(ctx)
	stopWatch := make(chan struct{})
	go w.watchCancel(jobCtx, cancelPoll, stopWatch, jobID)

	terminal, err := w.service.WaitForCompletion(jobCtx, op)
	cancelPoll()
	<-stopWatch

	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Printf("🛑 [Veo Worker] Job %s cancelled during polling", jobID)
			w.dbClient.UpdateJobStatus(ctx, jobID, model.StatusUserCancelled)
			w.publish(progress.Event{JobID: jobID, Status: model.StatusUserCancelled})
			return
		}
		w.failJob(ctx, jobID, err)
		return
	}

	// 7. 결과 추출 및 비디오 다운로드
	result, err := w.service.Resolve(ctx, terminal)
	if err != nil {
		w.failJob(ctx, jobID, err)
		return
	}

	// 8. 비디오를 Supabase Storage에 업로드
	filePath, fileSize, err := w.storage.UploadVideoToStorage(ctx, result.VideoData, job.UserID)
	if err != nil {
		w.failJob(ctx, jobID, fmt.Errorf("failed to store video: %w", err))
		return
	}

	attachID, err := w.dbClient.CreateAttachRecord(ctx, filePath, fileSize, "video/mp4")
	if err != nil {
		log.Printf("⚠️ [Veo Worker] Failed to create attach record: %v", err)
	}

	// 9. 시작 프레임이 있으면 WebP 썸네일 업로드 (실패해도 계속 진행)
	w.uploadThumbnail(ctx, params, job.UserID)

	// 10. Job 완료 처리 - video ref는 항상 materialize된 비디오와 함께 저장됨
	videoRef := ""
	if result.VideoRef != nil {
		videoRef = result.VideoRef.URI
	}

	cfg := appconfig.GetConfig()
	videoURL := cfg.SupabaseStorageBaseURL + filePath

	if err := w.dbClient.UpdateJobCompleted(ctx, jobID, videoURL, videoRef, attachID); err != nil {
		log.Printf("⚠️ [Veo Worker] Failed to update job with video URL: %v", err)
	}

	w.publish(progress.Event{JobID: jobID, Status: model.StatusCompleted, VideoURL: videoURL})
	log.Printf("✅ [Veo Worker] Video job %s completed successfully", jobID)
}

// watchCancel - Redis 취소 플래그 감시, 발견 시 폴링 컨텍스트 취소
func (w *Worker) watchCancel(ctx context.Context, cancel context.CancelFunc, stop chan struct{}, jobID string) {
	defer close(stop)

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if redisutil.IsJobCancelled(w.rdb, jobID) {
				log.Printf("🛑 [Veo Worker] Cancel flag detected for job %s", jobID)
				cancel()
				return
			}
		}
	}
}

// failJob - Job 실패 처리 및 이벤트 발행
func (w *Worker) failJob(ctx context.Context, jobID string, cause error) {
	log.Printf("❌ [Veo Worker] Job %s failed: %v", jobID, cause)
	w.dbClient.UpdateJobFailed(ctx, jobID, cause.Error())
	w.publish(progress.Event{JobID: jobID, Status: model.StatusFailed, Message: cause.Error()})
}

// publish - 진행 상황 이벤트 발행 (hub 미설정 시 무시)
func (w *Worker) publish(event progress.Event) {
	if w.hub != nil {
		w.hub.Publish(event)
	}
}

// buildParameters - job_input_data에서 GenerationParameters 구성
func (w *Worker) buildParameters(job *model.VideoJob) (*GenerationParameters, error) {
	in := job.JobInputData
	cfg := GetConfig()

	mode := GenerationMode(strVal(in, "mode"))
	if !mode.IsValid() {
		return nil, &ValidationError{Reason: fmt.Sprintf("unknown generation mode: %q", mode)}
	}

	params := &GenerationParameters{
		Prompt:      strVal(in, "prompt"),
		Model:       strVal(in, "model"),
		AspectRatio: strVal(in, "aspectRatio"),
		Resolution:  strVal(in, "resolution"),
		Mode:        mode,
		Looping:     boolVal(in, "isLooping"),
	}
	if params.Model == "" {
		params.Model = cfg.DefaultModel
	}
	if params.AspectRatio == "" {
		params.AspectRatio = "16:9"
	}
	if params.Resolution == "" {
		params.Resolution = "720p"
	}

	// 시작/끝 프레임 다운로드
	if id := intVal(in, "startFrameAttachId"); id > 0 {
		frame, err := w.loadImage(id)
		if err != nil {
			return nil, fmt.Errorf("failed to load start frame: %w", err)
		}
		params.StartFrame = frame
	}
	if id := intVal(in, "endFrameAttachId"); id > 0 {
		frame, err := w.loadImage(id)
		if err != nil {
			return nil, fmt.Errorf("failed to load end frame: %w", err)
		}
		params.EndFrame = frame
	}

	// 레퍼런스 이미지 (최대 3장)
	if raw, ok := in["referenceAttachIds"].([]interface{}); ok {
		for i, idRaw := range raw {
			if i >= 3 {
				log.Printf("⚠️ [Veo Worker] More than 3 reference images supplied, extra ones ignored")
				break
			}
			id, ok := idRaw.(float64)
			if !ok || int(id) <= 0 {
				continue
			}
			ref, err := w.loadImage(int(id))
			if err != nil {
				return nil, fmt.Errorf("failed to load reference image %d: %w", i+1, err)
			}
			params.ReferenceImages = append(params.ReferenceImages, ref)
		}
	}

	// 스타일 이미지
	if id := intVal(in, "styleAttachId"); id > 0 {
		style, err := w.loadImage(id)
		if err != nil {
			return nil, fmt.Errorf("failed to load style image: %w", err)
		}
		params.StyleImage = style
	}

	// extend용 video ref (이전 생성 결과의 레퍼런스 URI)
	if uri := strVal(in, "sourceVideoRef"); uri != "" {
		params.InputVideoRef = &VideoRef{URI: uri}
	}

	return params, nil
}

// loadImage - 첨부 이미지를 다운로드해 PNG로 정규화 후 인코딩
func (w *Worker) loadImage(attachID int) (*utils.EncodedMedia, error) {
	data, err := w.storage.DownloadAttachment(attachID)
	if err != nil {
		return nil, err
	}

	pngData, err := utils.NormalizeToPNG(data)
	if err != nil {
		return nil, err
	}

	media := utils.EncodeMedia(fmt.Sprintf("attach-%d", attachID), pngData)
	media.MimeType = "image/png"
	return media, nil
}

// uploadThumbnail - 시작 프레임을 WebP 썸네일로 업로드 (best-effort)
func (w *Worker) uploadThumbnail(ctx context.Context, params *GenerationParameters, userID string) {
	if params.StartFrame == nil {
		return
	}

	pngData, err := utils.DecodeBase64(params.StartFrame.Base64)
	if err != nil {
		log.Printf("⚠️ [Veo Worker] Failed to decode start frame for thumbnail: %v", err)
		return
	}

	webpData, err := utils.ConvertPNGToWebP(pngData, 80.0)
	if err != nil {
		log.Printf("⚠️ [Veo Worker] Failed to convert thumbnail: %v", err)
		return
	}

	if _, _, err := w.storage.UploadThumbnailToStorage(ctx, webpData, userID); err != nil {
		log.Printf("⚠️ [Veo Worker] Failed to upload thumbnail: %v", err)
	}
}

// strVal - job_input_data에서 문자열 추출
func strVal(in map[string]interface{}, key string) string {
	if v, ok := in[key].(string); ok {
		return v
	}
	return ""
}

// intVal - job_input_data에서 정수 추출 (JSON 숫자는 float64로 파싱됨)
func intVal(in map[string]interface{}, key string) int {
	if v, ok := in[key].(float64); ok {
		return int(v)
	}
	return 0
}

// boolVal - job_input_data에서 불리언 추출
func boolVal(in map[string]interface{}, key string) bool {
	if v, ok := in[key].(bool); ok {
		return v
	}
	return false
}
