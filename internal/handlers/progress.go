package handlers

import (
	"log"
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/snifferhq/sniffer/internal/queue"
	"github.com/snifferhq/sniffer/internal/types"
)

// ProgressHandler streams job status over a websocket so clients can watch
// a video move through the pipeline stages.
type ProgressHandler struct {
	registry *queue.Registry
}

// NewProgressHandler creates a progress stream handler.
func NewProgressHandler(registry *queue.Registry) *ProgressHandler {
	return &ProgressHandler{registry: registry}
}

// Handle pushes status snapshots until the job finishes or the client
// disconnects.
func (h *ProgressHandler) Handle(c *websocket.Conn) {
	jobID := c.Params("id")
	defer c.Close()

	job, ok := h.registry.Get(jobID)
	if !ok {
		c.WriteJSON(map[string]string{"error": "job not found", "job_id": jobID})
		return
	}

	log.Printf("Progress stream opened for job %s", jobID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	var last queue.JobStatus
	for range ticker.C {
		status := job.Snapshot()
		if status != last {
			if err := c.WriteJSON(status); err != nil {
				log.Printf("Progress stream for job %s closed: %v", jobID, err)
				return
			}
			last = status
		}

		if status.Status == types.StatusCompleted || status.Status == types.StatusFailed {
			log.Printf("Progress stream finished for job %s (%s)", jobID, status.Status)
			return
		}
	}
}
