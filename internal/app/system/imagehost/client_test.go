package imagehost

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestClient_Upload(t *testing.T) {
	var gotForm map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm() error: %v", err)
		}
		gotForm = map[string]string{
			"key":    r.PostFormValue("key"),
			"source": r.PostFormValue("source"),
			"action": r.PostFormValue("action"),
			"format": r.PostFormValue("format"),
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status_code": 200,
			"status_txt":  "OK",
			"image":       map[string]string{"url": "https://img.example/abc.png"},
		})
	}))
	defer srv.Close()

	c := New(Config{APIURL: srv.URL, APIKey: "k123"}, zap.NewNop())

	url, err := c.Upload(context.Background(), "aGVsbG8=")
	if err != nil {
		t.Fatalf("Upload() error: %v", err)
	}
	if url != "https://img.example/abc.png" {
		t.Errorf("url = %q", url)
	}
	if gotForm["key"] != "k123" || gotForm["source"] != "aGVsbG8=" {
		t.Errorf("form = %v", gotForm)
	}
	if gotForm["action"] != "upload" || gotForm["format"] != "json" {
		t.Errorf("form = %v", gotForm)
	}
}

func TestClient_Upload_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status_code": 400,
			"status_txt":  "Invalid API key",
		})
	}))
	defer srv.Close()

	c := New(Config{APIURL: srv.URL, APIKey: "bad"}, zap.NewNop())

	if _, err := c.Upload(context.Background(), "aGVsbG8="); !errors.Is(err, ErrUploadFailed) {
		t.Errorf("Upload() = %v, want ErrUploadFailed", err)
	}
}

func TestClient_Upload_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(Config{APIURL: srv.URL, APIKey: "k"}, zap.NewNop())

	if _, err := c.Upload(context.Background(), "aGVsbG8="); !errors.Is(err, ErrUploadFailed) {
		t.Errorf("Upload() = %v, want ErrUploadFailed", err)
	}
}

func TestClient_Upload_MissingImageURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"status_code": 200, "status_txt": "OK"})
	}))
	defer srv.Close()

	c := New(Config{APIURL: srv.URL, APIKey: "k"}, zap.NewNop())

	if _, err := c.Upload(context.Background(), "aGVsbG8="); !errors.Is(err, ErrUploadFailed) {
		t.Errorf("Upload() = %v, want ErrUploadFailed", err)
	}
}

func TestClient_Upload_Timeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	c := New(Config{APIURL: srv.URL, APIKey: "k", Timeout: 50 * time.Millisecond}, zap.NewNop())

	start := time.Now()
	_, err := c.Upload(context.Background(), "aGVsbG8=")
	if !errors.Is(err, ErrUploadFailed) {
		t.Errorf("Upload() = %v, want ErrUploadFailed", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Upload() took %v, timeout not enforced", elapsed)
	}
}
