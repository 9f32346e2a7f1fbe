package videogen

import (
	"log"
	"os"
)

// Config - Veo API 설정
type Config struct {
	BaseURL      string
	DefaultModel string
}

var veoConfig *Config

// LoadConfig - 환경변수에서 설정 로드
func LoadConfig() *Config {
	if veoConfig != nil {
		return veoConfig
	}

	if apiKey() == "" {
		log.Println("⚠️ [Veo] VEO_API_KEY / GEMINI_API_KEY not set")
	}

	baseURL := os.Getenv("VEO_API_BASE_URL")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	defaultModel := os.Getenv("VEO_MODEL")
	if defaultModel == "" {
		defaultModel = ModelVeoFast
	}

	veoConfig = &Config{
		BaseURL:      baseURL,
		DefaultModel: defaultModel,
	}

	log.Printf("✅ [Veo] Config loaded - base URL: %s, model: %s", baseURL, defaultModel)
	return veoConfig
}

// GetConfig - 설정 반환
func GetConfig() *Config {
	if veoConfig == nil {
		return LoadConfig()
	}
	return veoConfig
}

// apiKey - API 키는 호출 시점에 환경변수에서 읽음 (캐시 안 함)
func apiKey() string {
	if key := os.Getenv("VEO_API_KEY"); key != "" {
		return key
	}
	return os.Getenv("GEMINI_API_KEY")
}
