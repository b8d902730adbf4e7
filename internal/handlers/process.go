package handlers

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/snifferhq/sniffer/internal/framesync"
	"github.com/snifferhq/sniffer/internal/queue"
	"github.com/snifferhq/sniffer/internal/types"
	"github.com/snifferhq/sniffer/internal/video"
)

// ProcessHandler accepts videos for processing, either as a multipart
// upload or as a path already on the server's filesystem.
type ProcessHandler struct {
	workerPool      *queue.WorkerPool
	tempDir         string
	maxSizeMB       int
	defaultPosition framesync.Position
}

// NewProcessHandler creates a process handler.
func NewProcessHandler(workerPool *queue.WorkerPool, tempDir string, maxSizeMB int, defaultPosition framesync.Position) *ProcessHandler {
	return &ProcessHandler{
		workerPool:      workerPool,
		tempDir:         tempDir,
		maxSizeMB:       maxSizeMB,
		defaultPosition: defaultPosition,
	}
}

// processOptions are the common request knobs.
type processOptions struct {
	name       string
	position   framesync.Position
	transcribe bool
	allFrames  bool
}

// parseOptions validates the shared form/query options.
func (h *ProcessHandler) parseOptions(c *fiber.Ctx) (processOptions, error) {
	opts := processOptions{
		name:       c.FormValue("name"),
		position:   h.defaultPosition,
		transcribe: c.FormValue("transcribe", "true") != "false",
		allFrames:  c.FormValue("all_frames") == "true",
	}

	if raw := c.FormValue("position"); raw != "" {
		position, err := framesync.ParsePosition(raw)
		if err != nil {
			return opts, err
		}
		opts.position = position
	}

	return opts, nil
}

// HandleUpload processes a multipart video upload.
func (h *ProcessHandler) HandleUpload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "No file uploaded",
			"code":  "ERR_NO_FILE",
		})
	}

	opts, err := h.parseOptions(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": err.Error(),
			"code":  "ERR_INVALID_POSITION",
		})
	}
	if opts.name == "" {
		opts.name = file.Filename
	}

	maxSize := int64(h.maxSizeMB) * 1024 * 1024
	if file.Size > maxSize {
		return c.Status(400).JSON(fiber.Map{
			"error": fmt.Sprintf("File too large (max %dMB)", h.maxSizeMB),
			"code":  "ERR_FILE_TOO_LARGE",
		})
	}

	if !video.ValidateVideoFormat(file.Filename) {
		return c.Status(400).JSON(fiber.Map{
			"error": "Unsupported video format",
			"code":  "ERR_INVALID_FORMAT",
		})
	}

	jobID := uuid.New().String()
	tempPath := filepath.Join(h.tempDir, fmt.Sprintf("%s%s", jobID, filepath.Ext(file.Filename)))

	if err := c.SaveFile(file, tempPath); err != nil {
		log.Printf("Failed to save uploaded file: %v", err)
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to save file",
			"code":  "ERR_SAVE_FAILED",
		})
	}

	job := queue.NewJob(jobID, opts.name, types.SourceUpload, tempPath, opts.position, opts.transcribe)
	if opts.allFrames {
		job.WithAllFrames()
	}
	h.workerPool.EnqueueJob(job)

	return c.JSON(fiber.Map{
		"job_id":  jobID,
		"status":  "queued",
		"message": "Video uploaded, processing started",
	})
}

// localPathRequest asks the server to process a video it can already see.
type localPathRequest struct {
	Path       string `json:"path"`
	Name       string `json:"name"`
	Position   string `json:"position"`
	Transcribe *bool  `json:"transcribe"`
	AllFrames  bool   `json:"all_frames"`
}

// HandleLocalPath processes a video that already exists on disk.
func (h *ProcessHandler) HandleLocalPath(c *fiber.Ctx) error {
	var req localPathRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Invalid request body",
			"code":  "ERR_INVALID_BODY",
		})
	}

	if req.Path == "" {
		return c.Status(400).JSON(fiber.Map{
			"error": "path is required",
			"code":  "ERR_NO_PATH",
		})
	}
	if fi, err := os.Stat(req.Path); err != nil || fi.IsDir() {
		return c.Status(400).JSON(fiber.Map{
			"error": "path does not point to a file",
			"code":  "ERR_BAD_PATH",
		})
	}
	if !video.ValidateVideoFormat(req.Path) {
		return c.Status(400).JSON(fiber.Map{
			"error": "Unsupported video format",
			"code":  "ERR_INVALID_FORMAT",
		})
	}

	position := h.defaultPosition
	if req.Position != "" {
		parsed, err := framesync.ParsePosition(req.Position)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{
				"error": err.Error(),
				"code":  "ERR_INVALID_POSITION",
			})
		}
		position = parsed
	}

	name := req.Name
	if name == "" {
		name = filepath.Base(req.Path)
	}
	transcribe := req.Transcribe == nil || *req.Transcribe

	jobID := uuid.New().String()
	job := queue.NewJob(jobID, name, types.SourceLocalPath, req.Path, position, transcribe)
	if req.AllFrames {
		job.WithAllFrames()
	}
	h.workerPool.EnqueueJob(job)

	return c.JSON(fiber.Map{
		"job_id":  jobID,
		"status":  "queued",
		"message": "Processing started",
	})
}
