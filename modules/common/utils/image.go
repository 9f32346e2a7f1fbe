package utils

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg" // JPEG 디코더 등록
	"image/png"
	"log"
	"net/http"

	_ "github.com/kolesa-team/go-webp/decoder" // WebP 디코더 등록
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
)

// EncodedMedia - 전송 가능한 형태로 인코딩된 미디어 파일
type EncodedMedia struct {
	FileRef  string `json:"fileRef"`  // 원본 파일 식별자
	Base64   string `json:"base64"`   // base64 인코딩된 바이너리
	MimeType string `json:"mimeType"` // 감지된 MIME 타입
}

// EncodeMedia - 바이너리를 {fileRef, base64, mime} 형태로 인코딩
func EncodeMedia(fileRef string, data []byte) *EncodedMedia {
	return &EncodedMedia{
		FileRef:  fileRef,
		Base64:   base64.StdEncoding.EncodeToString(data),
		MimeType: http.DetectContentType(data),
	}
}

// DecodeBase64 - base64 문자열을 바이너리로 복원
func DecodeBase64(encoded string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}
	return data, nil
}

// ConvertImageToBase64 - 이미지 바이너리를 base64로 변환
func ConvertImageToBase64(imageData []byte) string {
	base64Str := base64.StdEncoding.EncodeToString(imageData)
	log.Printf("🔄 Image converted to base64: %d chars", len(base64Str))
	return base64Str
}

// NormalizeToPNG - 이미지(WebP/JPEG/PNG)를 PNG로 정규화
// Storage에 WebP로 저장된 레퍼런스 이미지를 API 전송용 PNG로 변환
func NormalizeToPNG(imageData []byte) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	// 이미 PNG면 원본 그대로
	if format == "png" {
		return imageData, nil
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}

	log.Printf("🔄 Image normalized to PNG: %s → png (%d bytes)", format, buf.Len())
	return buf.Bytes(), nil
}

// ConvertPNGToWebP - PNG 바이너리를 WebP로 변환 (썸네일 업로드용)
func ConvertPNGToWebP(pngData []byte, quality float32) ([]byte, error) {
	log.Printf("🔄 Converting PNG to WebP (quality: %.1f)", quality)

	img, err := png.Decode(bytes.NewReader(pngData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode PNG: %w", err)
	}

	options, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, quality)
	if err != nil {
		return nil, fmt.Errorf("failed to create WebP encoder options: %w", err)
	}

	var webpBuffer bytes.Buffer
	if err := webp.Encode(&webpBuffer, img, options); err != nil {
		return nil, fmt.Errorf("failed to encode WebP: %w", err)
	}

	webpData := webpBuffer.Bytes()

	log.Printf("✅ PNG converted to WebP: %d bytes → %d bytes", len(pngData), len(webpData))
	return webpData, nil
}
