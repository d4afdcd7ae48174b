package engine

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDemoEngine(t *testing.T) {
	res, err := Demo{}.Recognize(context.Background(), []byte("img"))
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if res.LaTeX != "x^2 + 2x + 1" || !res.Demo {
		t.Fatalf("unexpected result: %+v", res)
	}
	if err := (Demo{}).Health(context.Background()); err != nil {
		t.Fatalf("Health: %v", err)
	}
}

func TestHTTPEngineRecognize(t *testing.T) {
	image := []byte{0x89, 0x50, 0x4e, 0x47}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/recognize" || r.Method != http.MethodPost {
			t.Errorf("unexpected call %s %s", r.Method, r.URL.Path)
		}
		var req recognizeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Image != base64.StdEncoding.EncodeToString(image) {
			t.Errorf("image not base64 encoded: %q", req.Image)
		}
		json.NewEncoder(w).Encode(recognizeResponse{LaTeX: `\frac{1}{2}`})
	}))
	defer ts.Close()

	res, err := NewHTTPEngine(ts.URL).Recognize(context.Background(), image)
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if res.LaTeX != `\frac{1}{2}` || res.Demo {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestHTTPEngineRecognizeError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	if _, err := NewHTTPEngine(ts.URL).Recognize(context.Background(), []byte("x")); err == nil {
		t.Fatal("expected error on 500")
	}
}

func TestHTTPEngineHealth(t *testing.T) {
	healthy := true
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer ts.Close()

	eng := NewHTTPEngine(ts.URL)
	if err := eng.Health(context.Background()); err != nil {
		t.Fatalf("Health: %v", err)
	}
	healthy = false
	if err := eng.Health(context.Background()); err == nil {
		t.Fatal("expected error when backend is down")
	}
}
