package videogen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testService(t *testing.T, srv *httptest.Server) *Service {
	t.Helper()
	return &Service{
		config:          &Config{BaseURL: srv.URL, DefaultModel: ModelVeoFast},
		httpClient:      srv.Client(),
		pollInterval:    time.Millisecond,
		maxPollAttempts: MaxPollAttempts,
	}
}

func TestSubmitGeneration(t *testing.T) {
	t.Setenv("VEO_API_KEY", "test-key")

	var gotPath string
	var gotBody predictRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("key query param = %q, want test-key", r.URL.Query().Get("key"))
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(Operation{Name: "operations/job-1"})
	}))
	defer srv.Close()

	s := testService(t, srv)
	op, err := s.SubmitGeneration(context.Background(), &SubmissionPayload{
		Model:    ModelVeoFast,
		Instance: VideoInstance{Prompt: "hello"},
		Config:   VideoConfig{SampleCount: 1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if op.Name != "operations/job-1" {
		t.Errorf("operation name = %q", op.Name)
	}
	if gotPath != "/models/"+ModelVeoFast+":predictLongRunning" {
		t.Errorf("request path = %q", gotPath)
	}
	if len(gotBody.Instances) != 1 || gotBody.Instances[0].Prompt != "hello" {
		t.Errorf("request instances = %+v", gotBody.Instances)
	}
	if gotBody.Parameters == nil || gotBody.Parameters.SampleCount != 1 {
		t.Errorf("request parameters = %+v", gotBody.Parameters)
	}
}

func TestSubmitGenerationMissingOperationName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	s := testService(t, srv)
	if _, err := s.SubmitGeneration(context.Background(), &SubmissionPayload{Model: ModelVeoFast}); err == nil {
		t.Fatal("empty operation name must be an error")
	}
}

func TestWaitForCompletionReturnsImmediatelyWhenDone(t *testing.T) {
	polls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		polls++
	}))
	defer srv.Close()

	s := testService(t, srv)
	op := &Operation{Name: "operations/job-1", Done: true}

	got, err := s.WaitForCompletion(context.Background(), op)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != op {
		t.Error("already-done operation should be returned as is")
	}
	if polls != 0 {
		t.Errorf("polls = %d, want 0", polls)
	}
}

func TestWaitForCompletionPollsUntilDone(t *testing.T) {
	polls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		polls++
		json.NewEncoder(w).Encode(Operation{Name: "operations/job-1", Done: polls >= 3})
	}))
	defer srv.Close()

	s := testService(t, srv)
	op, err := s.WaitForCompletion(context.Background(), &Operation{Name: "operations/job-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !op.Done {
		t.Error("returned operation should be done")
	}
	if polls != 3 {
		t.Errorf("polls = %d, want 3", polls)
	}
}

func TestWaitForCompletionTimesOutAfterMaxAttempts(t *testing.T) {
	polls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		polls++
		json.NewEncoder(w).Encode(Operation{Name: "operations/job-1", Done: false})
	}))
	defer srv.Close()

	s := testService(t, srv)
	s.maxPollAttempts = 60

	_, err := s.WaitForCompletion(context.Background(), &Operation{Name: "operations/job-1"})
	if err == nil {
		t.Fatal("expected timeout error")
	}

	var terr *TimeoutError
	if !errors.As(err, &terr) {
		t.Fatalf("error type = %T, want *TimeoutError", err)
	}
	if terr.Attempts != 60 {
		t.Errorf("attempts = %d, want 60", terr.Attempts)
	}
	if polls != 60 {
		t.Errorf("polls = %d, want exactly 60", polls)
	}
}

func TestWaitForCompletionPollErrorAborts(t *testing.T) {
	polls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		polls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := testService(t, srv)
	_, err := s.WaitForCompletion(context.Background(), &Operation{Name: "operations/job-1"})
	if err == nil {
		t.Fatal("poll error must abort the wait")
	}
	var terr *TimeoutError
	if errors.As(err, &terr) {
		t.Error("poll failure must not be reported as a timeout")
	}
	if polls != 1 {
		t.Errorf("polls = %d, want 1", polls)
	}
}

func TestWaitForCompletionCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Operation{Name: "operations/job-1", Done: false})
	}))
	defer srv.Close()

	s := testService(t, srv)
	s.pollInterval = time.Hour // 취소가 폴링 대기를 끊는지 확인

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := s.WaitForCompletion(ctx, &Operation{Name: "operations/job-1"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if time.Since(start) > time.Second {
		t.Error("cancellation should interrupt the poll wait immediately")
	}
}

func TestFetchVideoDecodesLocatorAndAppendsKey(t *testing.T) {
	t.Setenv("VEO_API_KEY", "test-key")

	videoBytes := []byte("fake-mp4-bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/files/video-1.mp4" {
			t.Errorf("path = %q, want /files/video-1.mp4", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("key = %q, want test-key", r.URL.Query().Get("key"))
		}
		w.Write(videoBytes)
	}))
	defer srv.Close()

	s := testService(t, srv)
	locator := srv.URL + "/files%2Fvideo-1.mp4"

	data, remoteURL, err := s.FetchVideo(context.Background(), locator)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(data, videoBytes) {
		t.Error("downloaded bytes mismatch")
	}
	if remoteURL != srv.URL+"/files/video-1.mp4" {
		t.Errorf("remote URL = %q", remoteURL)
	}
}

func TestFetchVideoAppendsKeyToExistingQuery(t *testing.T) {
	t.Setenv("VEO_API_KEY", "test-key")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("alt") != "media" {
			t.Errorf("alt = %q, want media", r.URL.Query().Get("alt"))
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("key = %q, want test-key", r.URL.Query().Get("key"))
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	s := testService(t, srv)
	if _, _, err := s.FetchVideo(context.Background(), srv.URL+"/v/1?alt=media"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFetchVideoErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	s := testService(t, srv)
	_, _, err := s.FetchVideo(context.Background(), srv.URL+"/missing.mp4")
	if err == nil {
		t.Fatal("expected fetch error")
	}

	var ferr *FetchError
	if !errors.As(err, &ferr) {
		t.Fatalf("error type = %T, want *FetchError", err)
	}
	if ferr.StatusCode != http.StatusNotFound {
		t.Errorf("status code = %d, want 404", ferr.StatusCode)
	}
}
