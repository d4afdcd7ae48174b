package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/you/formulapool/internal/cluster"
	"github.com/you/formulapool/internal/logx"
	"github.com/you/formulapool/internal/workerapi"
)

// PredictHandler handles POST /predict: it validates the request and hands
// the job to the forwarder. The response is the chosen worker's payload,
// augmented with routing fields, under the worker's own status code.
func PredictHandler(fwd *cluster.Forwarder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req workerapi.PredictRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "request body must be JSON")
			return
		}
		if req.Image == "" {
			writeError(w, http.StatusBadRequest, "missing 'image' field")
			return
		}

		res, err := fwd.Forward(r.Context(), cluster.Job{Image: req.Image})
		if err != nil {
			handleForwardErr(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(res.StatusCode)
		if err := json.NewEncoder(w).Encode(res.Payload); err != nil {
			logx.Log.Error().Err(err).Msg("encode predict result")
		}
	}
}

func handleForwardErr(w http.ResponseWriter, err error) {
	var (
		rejection *cluster.RejectionError
		timeout   *cluster.TimeoutError
	)
	switch {
	case errors.Is(err, cluster.ErrNoCapacity):
		logx.Log.Warn().Err(err).Msg("no capacity")
		writeError(w, http.StatusServiceUnavailable, "no workers available")
	case errors.As(err, &timeout):
		writeError(w, http.StatusGatewayTimeout, timeout.Error())
	case errors.As(err, &rejection):
		// The worker already produced a complete reply; pass it through.
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(rejection.StatusCode)
		if _, err := w.Write(rejection.Body); err != nil {
			logx.Log.Error().Err(err).Msg("write worker rejection")
		}
	default:
		logx.Log.Error().Err(err).Msg("worker failure")
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(workerapi.ErrorResponse{OK: false, Error: msg}); err != nil {
		logx.Log.Error().Err(err).Msg("encode error response")
	}
}
