package videogen

import (
	"errors"
	"strings"
	"testing"

	"lumen-video-server/modules/common/utils"
)

func testMedia(ref string) *utils.EncodedMedia {
	return &utils.EncodedMedia{
		FileRef:  ref,
		Base64:   "dGVzdC1kYXRhLQ==" + ref,
		MimeType: "image/png",
	}
}

func TestBuildPayloadTextToVideo(t *testing.T) {
	payload, err := BuildPayload(&GenerationParameters{
		Prompt:      "a cat surfing a wave",
		Model:       ModelVeoFast,
		AspectRatio: "16:9",
		Resolution:  "720p",
		Mode:        ModeTextToVideo,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if payload.Model != ModelVeoFast {
		t.Errorf("model = %q, want %q", payload.Model, ModelVeoFast)
	}
	if payload.Instance.Prompt != "a cat surfing a wave" {
		t.Errorf("prompt = %q", payload.Instance.Prompt)
	}
	if payload.Instance.Image != nil || payload.Instance.Video != nil {
		t.Error("text-to-video must not carry image or video inputs")
	}
	if payload.Config.SampleCount != 1 {
		t.Errorf("sampleCount = %d, want 1", payload.Config.SampleCount)
	}
	if payload.Config.AspectRatio != "16:9" {
		t.Errorf("aspectRatio = %q, want 16:9", payload.Config.AspectRatio)
	}
	if len(payload.Config.ReferenceImages) != 0 || payload.Config.LastFrame != nil {
		t.Error("text-to-video must not carry reference images or last frame")
	}
}

func TestBuildPayloadEmptyPromptOmitted(t *testing.T) {
	payload, err := BuildPayload(&GenerationParameters{
		Prompt:     "   ",
		Model:      ModelVeoFast,
		Mode:       ModeFramesToVideo,
		StartFrame: testMedia("start"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.Instance.Prompt != "" {
		t.Errorf("whitespace-only prompt should be omitted, got %q", payload.Instance.Prompt)
	}
}

func TestBuildPayloadFramesToVideo(t *testing.T) {
	start := testMedia("start")
	end := testMedia("end")

	payload, err := BuildPayload(&GenerationParameters{
		Prompt:     "morning to night",
		Model:      ModelVeoFast,
		Mode:       ModeFramesToVideo,
		StartFrame: start,
		EndFrame:   end,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if payload.Instance.Image == nil {
		t.Fatal("frames-to-video must carry the start frame as instance image")
	}
	if payload.Instance.Image.BytesBase64Encoded != start.Base64 {
		t.Error("instance image does not match start frame")
	}
	if payload.Config.LastFrame == nil {
		t.Fatal("last frame missing")
	}
	if payload.Config.LastFrame.BytesBase64Encoded != end.Base64 {
		t.Error("last frame does not match end frame")
	}
}

func TestBuildPayloadLoopingUsesStartAsLastFrame(t *testing.T) {
	start := testMedia("start")
	end := testMedia("end")

	payload, err := BuildPayload(&GenerationParameters{
		Model:      ModelVeoFast,
		Mode:       ModeFramesToVideo,
		StartFrame: start,
		EndFrame:   end,
		Looping:    true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if payload.Config.LastFrame == nil {
		t.Fatal("last frame missing")
	}
	if payload.Config.LastFrame.BytesBase64Encoded != start.Base64 {
		t.Error("looping mode must close the loop with the start frame, not the end frame")
	}
}

func TestBuildPayloadReferencesForceFullModel(t *testing.T) {
	payload, err := BuildPayload(&GenerationParameters{
		Prompt:          "product showcase",
		Model:           ModelVeoFast,
		Mode:            ModeReferencesToVideo,
		ReferenceImages: []*utils.EncodedMedia{testMedia("ref1")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.Model != ModelVeoFull {
		t.Errorf("reference images must force full model, got %q", payload.Model)
	}
}

func TestBuildPayloadNoReferencesKeepsRequestedModel(t *testing.T) {
	payload, err := BuildPayload(&GenerationParameters{
		Prompt: "empty references",
		Model:  ModelVeoFast,
		Mode:   ModeReferencesToVideo,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.Model != ModelVeoFast {
		t.Errorf("empty reference list must not upgrade the model, got %q", payload.Model)
	}
	if len(payload.Config.ReferenceImages) != 0 {
		t.Error("empty reference list must stay omitted")
	}
}

func TestBuildPayloadReferenceOrdering(t *testing.T) {
	refs := []*utils.EncodedMedia{testMedia("asset1"), testMedia("asset2")}
	style := testMedia("style")

	payload, err := BuildPayload(&GenerationParameters{
		Prompt:          "styled scene",
		Model:           ModelVeoFull,
		Mode:            ModeReferencesToVideo,
		ReferenceImages: refs,
		StyleImage:      style,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := payload.Config.ReferenceImages
	if len(got) != 3 {
		t.Fatalf("reference count = %d, want 3", len(got))
	}
	for i := 0; i < 2; i++ {
		if got[i].ReferenceType != RoleAsset {
			t.Errorf("reference %d type = %q, want %q", i, got[i].ReferenceType, RoleAsset)
		}
		if got[i].Image.BytesBase64Encoded != refs[i].Base64 {
			t.Errorf("reference %d out of order", i)
		}
	}
	if got[2].ReferenceType != RoleStyle {
		t.Errorf("style image must come last, got type %q", got[2].ReferenceType)
	}
	if got[2].Image.BytesBase64Encoded != style.Base64 {
		t.Error("style image payload mismatch")
	}
}

func TestBuildPayloadReferencesIgnoredOutsideReferenceModes(t *testing.T) {
	payload, err := BuildPayload(&GenerationParameters{
		Prompt:          "just text",
		Model:           ModelVeoFast,
		Mode:            ModeTextToVideo,
		ReferenceImages: []*utils.EncodedMedia{testMedia("ref1")},
		StyleImage:      testMedia("style"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(payload.Config.ReferenceImages) != 0 {
		t.Error("text-to-video must not send reference images")
	}
}

func TestBuildPayloadExtendVideo(t *testing.T) {
	ref := &VideoRef{URI: "operations/abc/videos/1"}

	payload, err := BuildPayload(&GenerationParameters{
		Prompt:        "the story continues",
		Model:         ModelVeoFast,
		AspectRatio:   "9:16",
		Mode:          ModeExtendVideo,
		InputVideoRef: ref,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if payload.Instance.Video == nil {
		t.Fatal("extend mode must carry the video ref")
	}
	if payload.Instance.Video.URI != ref.URI {
		t.Errorf("video ref URI = %q, want %q", payload.Instance.Video.URI, ref.URI)
	}
	if payload.Config.AspectRatio != "" {
		t.Errorf("extend mode must not send aspect ratio, got %q", payload.Config.AspectRatio)
	}
}

func TestBuildPayloadExtendWithoutRefFails(t *testing.T) {
	_, err := BuildPayload(&GenerationParameters{
		Prompt: "keep going",
		Model:  ModelVeoFast,
		Mode:   ModeExtendVideo,
	})
	if err == nil {
		t.Fatal("extend without a video ref must fail")
	}

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error type = %T, want *ValidationError", err)
	}
}

func TestBuildPayloadExtendTransitionPrompt(t *testing.T) {
	payload, err := BuildPayload(&GenerationParameters{
		Prompt:        "zoom out slowly",
		Model:         ModelVeoFast,
		Mode:          ModeExtendVideo,
		EndFrame:      testMedia("end"),
		InputVideoRef: &VideoRef{URI: "operations/abc/videos/1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "zoom out slowly" + TransitionPromptSuffix
	if payload.Instance.Prompt != want {
		t.Errorf("prompt = %q, want %q", payload.Instance.Prompt, want)
	}
	if payload.Config.LastFrame == nil {
		t.Error("extend with end frame must send last frame")
	}
}

func TestBuildPayloadExtendWithoutEndFrameKeepsPrompt(t *testing.T) {
	payload, err := BuildPayload(&GenerationParameters{
		Prompt:        "zoom out slowly",
		Model:         ModelVeoFast,
		Mode:          ModeExtendVideo,
		InputVideoRef: &VideoRef{URI: "operations/abc/videos/1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(payload.Instance.Prompt, TransitionPromptSuffix) {
		t.Error("transition suffix must only appear when an end frame is set")
	}
	if payload.Config.LastFrame != nil {
		t.Error("extend without end frame must not send last frame")
	}
}

func TestGenerationModeIsValid(t *testing.T) {
	for _, mode := range []GenerationMode{ModeTextToVideo, ModeFramesToVideo, ModeReferencesToVideo, ModeExtendVideo} {
		if !mode.IsValid() {
			t.Errorf("mode %q should be valid", mode)
		}
	}
	if GenerationMode("image-to-image").IsValid() {
		t.Error("unknown mode should be invalid")
	}
}
