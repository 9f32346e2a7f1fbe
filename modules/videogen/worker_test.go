package videogen

import (
	"errors"
	"testing"

	"lumen-video-server/modules/common/model"
)

func TestBuildParametersMapsInputData(t *testing.T) {
	w := &Worker{}
	job := &model.VideoJob{
		JobID:  "job-1",
		UserID: "user-1",
		JobInputData: map[string]interface{}{
			"mode":           "extend-video",
			"prompt":         "keep the camera rolling",
			"model":          ModelVeoFull,
			"resolution":     "1080p",
			"isLooping":      true,
			"sourceVideoRef": "files/prev.mp4",
		},
	}

	params, err := w.buildParameters(job)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if params.Mode != ModeExtendVideo {
		t.Errorf("mode = %q", params.Mode)
	}
	if params.Prompt != "keep the camera rolling" {
		t.Errorf("prompt = %q", params.Prompt)
	}
	if params.Model != ModelVeoFull {
		t.Errorf("model = %q", params.Model)
	}
	if params.Resolution != "1080p" {
		t.Errorf("resolution = %q", params.Resolution)
	}
	if !params.Looping {
		t.Error("looping flag lost")
	}
	if params.InputVideoRef == nil || params.InputVideoRef.URI != "files/prev.mp4" {
		t.Errorf("video ref = %+v", params.InputVideoRef)
	}
}

func TestBuildParametersDefaults(t *testing.T) {
	w := &Worker{}
	job := &model.VideoJob{
		JobID: "job-1",
		JobInputData: map[string]interface{}{
			"mode":   "text-to-video",
			"prompt": "a quiet forest",
		},
	}

	params, err := w.buildParameters(job)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if params.Model == "" {
		t.Error("model default missing")
	}
	if params.AspectRatio != "16:9" {
		t.Errorf("aspectRatio default = %q, want 16:9", params.AspectRatio)
	}
	if params.Resolution != "720p" {
		t.Errorf("resolution default = %q, want 720p", params.Resolution)
	}
}

func TestBuildParametersRejectsUnknownMode(t *testing.T) {
	w := &Worker{}
	job := &model.VideoJob{
		JobID: "job-1",
		JobInputData: map[string]interface{}{
			"mode": "teleport",
		},
	}

	_, err := w.buildParameters(job)
	if err == nil {
		t.Fatal("unknown mode must fail")
	}

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error type = %T, want *ValidationError", err)
	}
}
