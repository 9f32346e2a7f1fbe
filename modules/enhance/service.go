package enhance

import (
	"context"
	"fmt"
	"log"
	"strings"

	appconfig "lumen-video-server/modules/common/config"
	"lumen-video-server/modules/common/gemini"
)

// 프롬프트 재작성 지시문 - 비디오 생성용 프롬프트를 시각적으로 구체화
const rewriteTemplate = `You are a prompt engineer for an AI video generation model. Rewrite the following prompt to be more visually descriptive and cinematic. Keep the original intent, add concrete visual details (lighting, camera movement, atmosphere), and keep it under 3 sentences. Output ONLY the rewritten prompt text, nothing else.

Prompt: %s`

// Service - 프롬프트 향상 서비스
type Service struct {
	apiKeys []string
	model   string

	// 테스트에서 주입 가능하도록 분리
	generate func(ctx context.Context, apiKeys []string, model string, prompt string) (string, error)
}

// NewService - Service 생성
func NewService() *Service {
	cfg := appconfig.GetConfig()
	return &Service{
		apiKeys:  cfg.GeminiAPIKeys,
		model:    cfg.EnhanceModel,
		generate: gemini.GenerateTextWithRetry,
	}
}

// Enhance - 프롬프트를 재작성. 어떤 실패든 원본 프롬프트를 그대로 반환
func (s *Service) Enhance(ctx context.Context, prompt string) string {
	if strings.TrimSpace(prompt) == "" {
		return prompt
	}

	request := fmt.Sprintf(rewriteTemplate, prompt)

	enhanced, err := s.generate(ctx, s.apiKeys, s.model, request)
	if err != nil {
		log.Printf("⚠️ [Enhance] Enhancement failed, returning original prompt: %v", err)
		return prompt
	}

	enhanced = strings.TrimSpace(enhanced)
	if enhanced == "" {
		log.Println("⚠️ [Enhance] Empty enhancement result, returning original prompt")
		return prompt
	}

	log.Printf("✅ [Enhance] Prompt enhanced: %d chars → %d chars", len(prompt), len(enhanced))
	return enhanced
}
