package videogen

import (
	"strings"

	"lumen-video-server/modules/common/utils"
)

const (
	// ModelVeoFull - 레퍼런스 이미지 입력이 필요한 full 모델
	ModelVeoFull = "veo-3.1-generate-preview"
	// ModelVeoFast - 기본 fast 모델
	ModelVeoFast = "veo-3.1-fast-generate-preview"

	// TransitionPromptSuffix - extend 모드에서 마지막 프레임이 지정된 경우 프롬프트에 붙는 지시문
	TransitionPromptSuffix = " The video must end with a seamless, natural transition into the provided last frame."
)

// BuildPayload - 모드별 비즈니스 규칙을 적용해 정규화된 제출 데이터 생성
// 순수 함수 (I/O 없음). extend 모드에 video ref가 없는 경우만 실패함
func BuildPayload(p *GenerationParameters) (*SubmissionPayload, error) {
	// extend는 원본 비디오 파일만으로는 불가능 - 반드시 job reference가 필요
	if p.Mode == ModeExtendVideo && p.InputVideoRef == nil {
		return nil, &ValidationError{Reason: "extend-video requires the source video's job reference"}
	}

	config := VideoConfig{
		SampleCount: 1,
		Resolution:  p.Resolution,
	}

	// extend는 원본 비디오의 비율을 그대로 따름 - aspect ratio 전송 안 함
	if p.Mode != ModeExtendVideo {
		config.AspectRatio = p.AspectRatio
	}

	// 레퍼런스 이미지가 있으면 fast 모델로는 처리 불가 - full 모델로 강제
	model := p.Model
	if len(p.ReferenceImages) > 0 {
		model = ModelVeoFull
	}

	// 유효 마지막 프레임: 루핑 모드면 시작 프레임으로 닫음
	endFrame := p.EndFrame
	if p.Mode == ModeFramesToVideo && p.Looping {
		endFrame = p.StartFrame
	}

	// extend + 마지막 프레임 지정 시 전환 지시문 추가 (발신 프롬프트만 변경됨)
	prompt := p.Prompt
	if p.Mode == ModeExtendVideo && endFrame != nil {
		prompt += TransitionPromptSuffix
	}

	instance := VideoInstance{}
	if strings.TrimSpace(prompt) != "" {
		instance.Prompt = prompt
	}

	// 레퍼런스 이미지는 references/extend 모드에서만 전송
	// asset 이미지들 다음에 style 이미지가 마지막으로 붙음
	if p.Mode == ModeReferencesToVideo || p.Mode == ModeExtendVideo {
		for _, ref := range p.ReferenceImages {
			config.ReferenceImages = append(config.ReferenceImages, ReferenceImage{
				Image:         imagePayload(ref),
				ReferenceType: RoleAsset,
			})
		}
		if p.StyleImage != nil {
			config.ReferenceImages = append(config.ReferenceImages, ReferenceImage{
				Image:         imagePayload(p.StyleImage),
				ReferenceType: RoleStyle,
			})
		}
	}

	// 마지막 프레임은 frames/extend 모드에서만 전송
	if (p.Mode == ModeFramesToVideo || p.Mode == ModeExtendVideo) && endFrame != nil {
		lf := imagePayload(endFrame)
		config.LastFrame = &lf
	}

	// 모드별 주 미디어
	switch p.Mode {
	case ModeFramesToVideo:
		if p.StartFrame != nil {
			img := imagePayload(p.StartFrame)
			instance.Image = &img
		}
	case ModeExtendVideo:
		ref := *p.InputVideoRef
		instance.Video = &ref
	}

	return &SubmissionPayload{
		Model:    model,
		Instance: instance,
		Config:   config,
	}, nil
}

// imagePayload - EncodedMedia를 API 이미지 형태로 변환
func imagePayload(m *utils.EncodedMedia) ImagePayload {
	mime := m.MimeType
	if mime == "" {
		mime = "image/png"
	}
	return ImagePayload{
		BytesBase64Encoded: m.Base64,
		MimeType:           mime,
	}
}
