package videogen

import (
	"context"
)

// extractVideo - 종료된 Operation에서 첫 번째 비디오 디스크립터 추출
// 실패 케이스별로 구분되는 메시지를 가진 RemoteError 반환
func extractVideo(op *Operation) (*GeneratedVideo, error) {
	if op.Response == nil {
		reason := "operation finished without a response"
		if op.Error != nil && op.Error.Message != "" {
			reason = "remote failure: " + op.Error.Message
		}
		return nil, &RemoteError{Reason: reason}
	}

	gvr := op.Response.GenerateVideoResponse
	if gvr == nil || len(gvr.GeneratedSamples) == 0 {
		return nil, &RemoteError{Reason: "no videos returned"}
	}

	// 여러 개가 반환돼도 항상 첫 번째만 사용 (단일 결과 설계)
	video := gvr.GeneratedSamples[0].Video
	if video == nil || video.URI == "" {
		return nil, &RemoteError{Reason: "generated video is missing a download URI"}
	}

	return video, nil
}

// Resolve - 종료된 Operation에서 비디오를 내려받아 최종 결과 생성
// 결과의 VideoRef는 이후 extend 요청에 그대로 전달됨
func (s *Service) Resolve(ctx context.Context, op *Operation) (*GenerationResult, error) {
	video, err := extractVideo(op)
	if err != nil {
		return nil, err
	}

	data, remoteURL, err := s.FetchVideo(ctx, video.URI)
	if err != nil {
		return nil, err
	}

	return &GenerationResult{
		VideoData: data,
		RemoteURL: remoteURL,
		VideoRef:  &VideoRef{URI: video.URI},
	}, nil
}
