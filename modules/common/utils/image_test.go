package utils

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func makePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode PNG: %v", err)
	}
	return buf.Bytes()
}

func TestEncodeMedia(t *testing.T) {
	pngData := makePNG(t)

	media := EncodeMedia("frame-1.png", pngData)
	if media.FileRef != "frame-1.png" {
		t.Errorf("fileRef = %q", media.FileRef)
	}
	if media.MimeType != "image/png" {
		t.Errorf("mimeType = %q, want image/png", media.MimeType)
	}

	decoded, err := base64.StdEncoding.DecodeString(media.Base64)
	if err != nil {
		t.Fatalf("base64 invalid: %v", err)
	}
	if !bytes.Equal(decoded, pngData) {
		t.Error("encoded bytes do not round-trip")
	}
}

func TestDecodeBase64(t *testing.T) {
	original := []byte("hello media")
	decoded, err := DecodeBase64(base64.StdEncoding.EncodeToString(original))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(decoded, original) {
		t.Errorf("decoded = %q", decoded)
	}

	if _, err := DecodeBase64("not-valid-base64!!!"); err == nil {
		t.Error("invalid base64 should fail")
	}
}

func TestNormalizeToPNGKeepsPNG(t *testing.T) {
	pngData := makePNG(t)

	out, err := NormalizeToPNG(pngData)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(out, pngData) {
		t.Error("PNG input should be returned unmodified")
	}
}

func TestNormalizeToPNGConvertsJPEG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("failed to encode JPEG: %v", err)
	}

	out, err := NormalizeToPNG(buf.Bytes())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := png.Decode(bytes.NewReader(out)); err != nil {
		t.Errorf("output is not valid PNG: %v", err)
	}
}

func TestNormalizeToPNGRejectsGarbage(t *testing.T) {
	if _, err := NormalizeToPNG([]byte("not an image")); err == nil {
		t.Error("garbage input should fail")
	}
}
