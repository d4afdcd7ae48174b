package workerapi

// StatusResponse is a worker's answer to GET /status. The balancer relies on
// Ready, Busy and RequestsProcessed; the rest is operator information.
type StatusResponse struct {
	WorkerID          string  `json:"worker_id"`
	Ready             bool    `json:"ready"`
	Busy              bool    `json:"busy"`
	RequestsProcessed uint64  `json:"requests_processed"`
	UptimeSeconds     float64 `json:"uptime_seconds"`
	Model             string  `json:"model"`
	MemoryMB          float64 `json:"memory_mb"`
}

// PredictRequest is the body of POST /predict, on the balancer and on workers.
// The image is base64 encoded, optionally with a data URL prefix.
type PredictRequest struct {
	Image string `json:"image"`
}

// PredictResponse is a worker's reply to a successful POST /predict.
type PredictResponse struct {
	OK        bool   `json:"ok"`
	Latex     string `json:"latex"`
	PlainMath string `json:"plain_math"`
	DemoMode  bool   `json:"demo_mode"`
	WorkerID  string `json:"worker_id"`
}

// ErrorResponse is the JSON body carried by any non-2xx reply.
type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}
