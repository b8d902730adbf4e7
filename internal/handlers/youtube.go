package handlers

import (
	"context"
	"fmt"
	"log"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/snifferhq/sniffer/internal/framesync"
	"github.com/snifferhq/sniffer/internal/queue"
	"github.com/snifferhq/sniffer/internal/types"
)

// YouTubeHandler ingests YouTube videos: a headless Chrome probe resolves
// the video title for a readable job name, then yt-dlp downloads the mp4.
type YouTubeHandler struct {
	workerPool      *queue.WorkerPool
	tempDir         string
	defaultPosition framesync.Position
}

// NewYouTubeHandler creates a YouTube ingest handler.
func NewYouTubeHandler(workerPool *queue.WorkerPool, tempDir string, defaultPosition framesync.Position) *YouTubeHandler {
	return &YouTubeHandler{
		workerPool:      workerPool,
		tempDir:         tempDir,
		defaultPosition: defaultPosition,
	}
}

// YouTubeRequest is the request body.
type YouTubeRequest struct {
	URL        string `json:"url"`
	Name       string `json:"name"`
	Position   string `json:"position"`
	Transcribe *bool  `json:"transcribe"`
}

// Handle starts a download in the background and enqueues the job once the
// video is on disk. Long videos take a while; the response returns
// immediately with the job ID.
func (h *YouTubeHandler) Handle(c *fiber.Ctx) error {
	var req YouTubeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Invalid request body",
			"code":  "ERR_INVALID_BODY",
		})
	}

	if req.URL == "" {
		return c.Status(400).JSON(fiber.Map{
			"error": "URL is required",
			"code":  "ERR_NO_URL",
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

	jobID := uuid.New().String()
	tempPath := filepath.Join(h.tempDir, fmt.Sprintf("%s.mp4", jobID))
	transcribe := req.Transcribe == nil || *req.Transcribe

	name := req.Name
	if name == "" {
		name = "youtube_video"
	}

	// Register before the download starts so the job is visible (and can
	// report failure) while yt-dlp is still running.
	job := queue.NewJob(jobID, name, types.SourceYouTube, tempPath, position, transcribe)
	job.SetStage(types.StatusQueued, "downloading")
	h.workerPool.Registry().Add(job)

	go func() {
		if req.Name == "" {
			if title, err := h.probeVideoTitle(req.URL); err == nil && title != "" {
				job.SetName(title)
			}
		}

		if err := h.downloadVideo(req.URL, tempPath); err != nil {
			log.Printf("Failed to download YouTube video for job %s: %v", jobID, err)
			job.Fail(fmt.Errorf("youtube download failed: %w", err))
			return
		}

		h.workerPool.EnqueueJob(job)
	}()

	return c.JSON(fiber.Map{
		"job_id":  jobID,
		"status":  "downloading",
		"message": "YouTube download started (this may take a few minutes for long videos)",
	})
}

// probeVideoTitle loads the watch page headlessly and reads the document
// title, stripped of YouTube's suffix.
func (h *YouTubeHandler) probeVideoTitle(url string) (string, error) {
	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var title string
	err := chromedp.Run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Evaluate(`document.title.replace(/ - YouTube$/, "")`, &title,
			func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
				return p.WithReturnByValue(true)
			}),
	)
	if err != nil {
		return "", fmt.Errorf("failed to probe video title: %w", err)
	}

	log.Printf("Resolved YouTube title: %s", title)
	return title, nil
}

// downloadVideo fetches the video as mp4 with yt-dlp.
func (h *YouTubeHandler) downloadVideo(url, outputPath string) error {
	log.Printf("Using yt-dlp to download: %s", url)

	cmd := exec.Command("yt-dlp",
		"-f", "mp4/bestvideo[ext=mp4]+bestaudio[ext=m4a]",
		"-o", outputPath,
		url,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("yt-dlp failed: %v\nOutput: %s", err, string(output))
	}

	log.Printf("YouTube video downloaded successfully")
	return nil
}
