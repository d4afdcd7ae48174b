package worker

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/process"

	"github.com/you/formulapool/internal/engine"
	"github.com/you/formulapool/internal/logx"
	"github.com/you/formulapool/internal/mathtex"
	"github.com/you/formulapool/internal/workerapi"
)

// StartServer starts the worker's HTTP server on addr and returns the
// address it is listening on. The server shuts down when ctx is cancelled.
func StartServer(ctx context.Context, addr string, eng engine.Engine) (string, error) {
	srv := &http.Server{Handler: newMux(eng)}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", err
	}
	actual := ln.Addr().String()
	go func() {
		<-ctx.Done()
		c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(c)
	}()
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			logx.Log.Error().Err(err).Str("addr", actual).Msg("worker server error")
		}
	}()
	return actual, nil
}

func newMux(eng engine.Engine) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /status", statusHandler)
	mux.HandleFunc("GET /health", healthHandler)
	mux.HandleFunc("POST /predict", predictHandler(eng))
	mux.Handle("GET /metrics", metricsHandler())
	mux.HandleFunc("GET /version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, GetVersionInfo())
	})
	return mux
}

func statusHandler(w http.ResponseWriter, r *http.Request) {
	st := statusSnapshot()
	st.MemoryMB = memoryMB()
	writeJSON(w, http.StatusOK, st)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"worker_id": workerID(),
		"ready":     engineReady(),
	})
}

func predictHandler(eng engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !engineReady() {
			writeJSON(w, http.StatusServiceUnavailable, workerapi.ErrorResponse{OK: false, Error: "engine not ready"})
			return
		}
		if !tryBeginJob() {
			writeJSON(w, http.StatusServiceUnavailable, workerapi.ErrorResponse{OK: false, Error: "busy"})
			return
		}
		processed := false
		defer func() { endJob(processed) }()
		JobStarted()
		start := time.Now()

		var req workerapi.PredictRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Image == "" {
			JobCompleted(false, time.Since(start))
			writeJSON(w, http.StatusBadRequest, workerapi.ErrorResponse{OK: false, Error: "missing 'image' field"})
			return
		}
		img, err := decodeImage(req.Image)
		if err != nil {
			JobCompleted(false, time.Since(start))
			writeJSON(w, http.StatusBadRequest, workerapi.ErrorResponse{OK: false, Error: fmt.Sprintf("invalid image: %v", err)})
			return
		}

		res, err := eng.Recognize(r.Context(), img)
		if err != nil {
			JobCompleted(false, time.Since(start))
			wl := logx.WithWorker(workerID())
			wl.Error().Err(err).Msg("recognition failed")
			writeJSON(w, http.StatusInternalServerError, workerapi.ErrorResponse{OK: false, Error: err.Error()})
			return
		}
		processed = true
		JobCompleted(true, time.Since(start))

		latex := mathtex.StripDelimiters(res.LaTeX)
		writeJSON(w, http.StatusOK, workerapi.PredictResponse{
			OK:        true,
			Latex:     latex,
			PlainMath: mathtex.ToPlainMath(latex),
			DemoMode:  res.Demo,
			WorkerID:  workerID(),
		})
	}
}

// decodeImage strips an optional data URL prefix, decodes the base64 payload
// and verifies the bytes are a parseable image.
func decodeImage(payload string) ([]byte, error) {
	s := strings.TrimSpace(payload)
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i != -1 {
			s = s[i+1:]
		}
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("unsupported image format: %w", err)
	}
	return raw, nil
}

func memoryMB() float64 {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0
	}
	mi, err := proc.MemoryInfo()
	if err != nil || mi == nil {
		return 0
	}
	return math.Round(float64(mi.RSS)/(1<<20)*10) / 10
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logx.Log.Error().Err(err).Msg("encode response")
	}
}
