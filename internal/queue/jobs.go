package queue

import (
	gosync "sync"
	"time"

	"github.com/snifferhq/sniffer/internal/framesync"
	"github.com/snifferhq/sniffer/internal/types"
)

// Job is one video processing request.
type Job struct {
	ID          string
	RequestName string
	SourceType  string
	VideoPath   string
	Position    framesync.Position
	Transcribe  bool
	AllFrames   bool

	mu         gosync.Mutex
	status     string
	stage      string
	errMessage string
	resultPath string
	gdriveURL  string
	document   *types.ResultDocument
	CreatedAt  time.Time
}

// NewJob creates a queued job.
func NewJob(id, requestName, sourceType, videoPath string, position framesync.Position, transcribe bool) *Job {
	return &Job{
		ID:          id,
		RequestName: requestName,
		SourceType:  sourceType,
		VideoPath:   videoPath,
		Position:    position,
		Transcribe:  transcribe,
		status:      types.StatusQueued,
		CreatedAt:   time.Now(),
	}
}

// WithAllFrames additionally requests an exhaustive frame dump alongside
// the positioned extraction. Large output.
func (j *Job) WithAllFrames() *Job {
	j.AllFrames = true
	return j
}

// JobStatus is a point-in-time snapshot safe to serialize.
type JobStatus struct {
	ID         string    `json:"job_id"`
	Name       string    `json:"name"`
	SourceType string    `json:"source_type"`
	Status     string    `json:"status"`
	Stage      string    `json:"stage,omitempty"`
	Error      string    `json:"error,omitempty"`
	ResultPath string    `json:"result_path,omitempty"`
	GDriveURL  string    `json:"gdrive_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Snapshot returns the job's current externally visible state.
func (j *Job) Snapshot() JobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	return JobStatus{
		ID:         j.ID,
		Name:       j.RequestName,
		SourceType: j.SourceType,
		Status:     j.status,
		Stage:      j.stage,
		Error:      j.errMessage,
		ResultPath: j.resultPath,
		GDriveURL:  j.gdriveURL,
		CreatedAt:  j.CreatedAt,
	}
}

// Document returns the assembled result document, or nil while the job is
// still running.
func (j *Job) Document() *types.ResultDocument {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.document
}

// SetName renames the job. Ingest handlers resolve a better name (e.g. a
// page title) after the job is already visible in the registry.
func (j *Job) SetName(name string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.RequestName = name
}

// SetStage updates the externally visible status and pipeline stage.
func (j *Job) SetStage(status, stage string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.status = status
	j.stage = stage
}

// Fail marks the job failed. Callable before the job ever reaches the
// queue, e.g. when a background download dies.
func (j *Job) Fail(err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.status = types.StatusFailed
	j.errMessage = err.Error()
}

func (j *Job) complete(doc *types.ResultDocument, resultPath, gdriveURL string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.status = types.StatusCompleted
	j.stage = ""
	j.document = doc
	j.resultPath = resultPath
	j.gdriveURL = gdriveURL
}

// Registry tracks jobs by ID for the HTTP and websocket surfaces.
type Registry struct {
	mu   gosync.Mutex
	jobs map[string]*Job
}

// NewRegistry creates an empty job registry.
func NewRegistry() *Registry {
	return &Registry{jobs: make(map[string]*Job)}
}

// Add registers a job.
func (r *Registry) Add(job *Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = job
}

// Get looks up a job by ID.
func (r *Registry) Get(id string) (*Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	return job, ok
}
