package worker

import (
	"math"
	"sync"
	"time"

	"github.com/you/formulapool/internal/workerapi"
)

type workerState struct {
	workerID          string
	model             string
	startTime         time.Time
	busy              bool
	engineReady       bool
	requestsProcessed uint64
}

type VersionInfo struct {
	Version   string `json:"version"`
	BuildSHA  string `json:"build_sha"`
	BuildDate string `json:"build_date"`
}

var (
	stateMu   sync.Mutex
	stateData = workerState{startTime: time.Now()}
	buildInfo = VersionInfo{Version: "dev", BuildSHA: "unknown", BuildDate: "unknown"}
)

func resetState() {
	stateMu.Lock()
	defer stateMu.Unlock()
	stateData = workerState{startTime: time.Now()}
}

func SetBuildInfo(v, sha, date string) {
	buildInfo = VersionInfo{Version: v, BuildSHA: sha, BuildDate: date}
}

func GetVersionInfo() VersionInfo {
	return buildInfo
}

func SetWorkerInfo(id, model string) {
	stateMu.Lock()
	stateData.workerID = id
	stateData.model = model
	stateMu.Unlock()
}

func SetEngineReady(v bool) {
	stateMu.Lock()
	stateData.engineReady = v
	stateMu.Unlock()
	setReady(v)
}

func engineReady() bool {
	stateMu.Lock()
	defer stateMu.Unlock()
	return stateData.engineReady
}

func workerID() string {
	stateMu.Lock()
	defer stateMu.Unlock()
	return stateData.workerID
}

// tryBeginJob claims the single job slot. It reports false when another job
// is already in flight.
func tryBeginJob() bool {
	stateMu.Lock()
	defer stateMu.Unlock()
	if stateData.busy {
		return false
	}
	stateData.busy = true
	setBusy(true)
	return true
}

// endJob releases the job slot. Only jobs that produced a result count
// toward requestsProcessed.
func endJob(processed bool) {
	stateMu.Lock()
	stateData.busy = false
	if processed {
		stateData.requestsProcessed++
	}
	stateMu.Unlock()
	setBusy(false)
}

func statusSnapshot() workerapi.StatusResponse {
	stateMu.Lock()
	defer stateMu.Unlock()
	uptime := time.Since(stateData.startTime).Seconds()
	return workerapi.StatusResponse{
		WorkerID:          stateData.workerID,
		Ready:             stateData.engineReady,
		Busy:              stateData.busy,
		RequestsProcessed: stateData.requestsProcessed,
		UptimeSeconds:     math.Round(uptime*10) / 10,
		Model:             stateData.model,
	}
}
