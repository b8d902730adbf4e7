package queue

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime/debug"
	"time"

	"github.com/snifferhq/sniffer/internal/framesync"
	"github.com/snifferhq/sniffer/internal/results"
	"github.com/snifferhq/sniffer/internal/storage"
	"github.com/snifferhq/sniffer/internal/transcription"
	"github.com/snifferhq/sniffer/internal/types"
	"github.com/snifferhq/sniffer/internal/video"
)

// WorkerPool runs the per-video sync pipeline: probe metadata, extract
// audio, transcribe, extract positioned frames, bucketize words, build the
// sync table, compute statistics, assemble and persist the result document.
type WorkerPool struct {
	jobQueue    chan *Job
	registry    *Registry
	workerCount int

	transcriber  *transcription.WhisperClient
	extractor    *video.FrameExtractor
	planner      *framesync.Planner
	localStorage *storage.LocalStorage
	driveClient  *storage.DriveClient
	db           *storage.MetadataDB
	audioDir     string
}

// NewWorkerPool creates a worker pool. transcriber and driveClient may be
// nil; the pipeline degrades to silence-only tables and local-only storage.
func NewWorkerPool(
	workerCount int,
	transcriber *transcription.WhisperClient,
	extractor *video.FrameExtractor,
	planner *framesync.Planner,
	localStorage *storage.LocalStorage,
	driveClient *storage.DriveClient,
	db *storage.MetadataDB,
	audioDir string,
) *WorkerPool {
	return &WorkerPool{
		jobQueue:     make(chan *Job, 100),
		registry:     NewRegistry(),
		workerCount:  workerCount,
		transcriber:  transcriber,
		extractor:    extractor,
		planner:      planner,
		localStorage: localStorage,
		driveClient:  driveClient,
		db:           db,
		audioDir:     audioDir,
	}
}

// Registry exposes job lookup to the HTTP surface.
func (wp *WorkerPool) Registry() *Registry {
	return wp.registry
}

// Start launches the workers.
func (wp *WorkerPool) Start() {
	log.Printf("Starting worker pool with %d workers", wp.workerCount)
	for i := 0; i < wp.workerCount; i++ {
		go wp.worker(i)
	}
}

// EnqueueJob registers and queues a job.
func (wp *WorkerPool) EnqueueJob(job *Job) {
	wp.registry.Add(job)
	wp.jobQueue <- job
	log.Printf("Job %s enqueued (source: %s, name: %s)", job.ID, job.SourceType, job.RequestName)
}

func (wp *WorkerPool) worker(id int) {
	log.Printf("Worker %d started", id)

	for job := range wp.jobQueue {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("Worker %d: PANIC processing job %s: %v\n%s",
						id, job.ID, r, string(debug.Stack()))
					job.Fail(fmt.Errorf("worker panic: %v", r))
				}
			}()

			wp.processJob(id, job)
		}()
	}
}

// processJob runs the complete pipeline for one video.
func (wp *WorkerPool) processJob(workerID int, job *Job) {
	ctx := context.Background()
	log.Printf("Worker %d: Processing job %s (%s)", workerID, job.ID, job.VideoPath)

	// Step 1: probe timing, then metadata. Frame planning cannot proceed
	// without duration and fps; the richer metadata probe may still fail,
	// which only degrades the result document.
	job.SetStage(types.StatusProcessing, "probing metadata")
	duration, fps, err := video.ProbeTiming(ctx, job.VideoPath)
	if err != nil || fps <= 0 {
		job.Fail(fmt.Errorf("%w: cannot determine fps for %s", framesync.ErrInvalidVideo, job.VideoPath))
		log.Printf("Worker %d: job %s failed: no usable fps (%v)", workerID, job.ID, err)
		return
	}

	metadata, err := video.ProbeMetadata(ctx, job.VideoPath)
	if err != nil {
		log.Printf("Worker %d: WARNING metadata probe failed for job %s, result document will omit derived fields: %v",
			workerID, job.ID, err)
		metadata = nil
	}

	// Step 2: transcribe (optional).
	var transcript *types.TranscriptionResult
	if job.Transcribe && wp.transcriber != nil {
		job.SetStage(types.StatusProcessing, "extracting audio")
		audioPath, err := video.ExtractAudio(ctx, job.VideoPath, wp.audioDir)
		if err != nil {
			job.Fail(fmt.Errorf("audio extraction failed: %w", err))
			log.Printf("Worker %d: audio extraction failed for job %s: %v", workerID, job.ID, err)
			return
		}
		defer wp.cleanupTempFile(audioPath)

		job.SetStage(types.StatusProcessing, "transcribing")
		transcript, err = wp.transcriber.Transcribe(ctx, audioPath)
		if err != nil {
			job.Fail(fmt.Errorf("transcription failed: %w", err))
			log.Printf("Worker %d: transcription failed for job %s: %v", workerID, job.ID, err)
			return
		}

		if _, err := wp.localStorage.SaveTranscript(job.RequestName, transcript); err != nil {
			log.Printf("Worker %d: WARNING failed to save transcript for job %s: %v", workerID, job.ID, err)
		}
	}

	// Step 3: extract one frame per second at the requested position.
	job.SetStage(types.StatusProcessing, "extracting frames")
	sampler := video.PositionSampler{Position: job.Position, Planner: wp.planner}
	frames, err := wp.extractor.ExtractBySecond(ctx, job.VideoPath, sampler, duration, fps)
	if err != nil {
		job.Fail(fmt.Errorf("frame extraction failed: %w", err))
		log.Printf("Worker %d: frame extraction failed for job %s: %v", workerID, job.ID, err)
		return
	}

	// Optional exhaustive dump. Failures here never fail the job; the
	// sync table only depends on the positioned frames.
	if job.AllFrames {
		job.SetStage(types.StatusProcessing, "extracting all frames")
		all, err := wp.extractor.Extract(ctx, job.VideoPath, video.ExhaustiveSampler{}, duration, fps)
		if err != nil {
			log.Printf("Worker %d: WARNING exhaustive frame dump failed for job %s: %v", workerID, job.ID, err)
		} else {
			log.Printf("Worker %d: exhaustive dump wrote %d frames for job %s", workerID, len(all), job.ID)
		}
	}

	// Step 4: synchronize frames with words.
	job.SetStage(types.StatusProcessing, "synchronizing")
	var words []types.BucketizedWord
	if transcript != nil {
		words = framesync.Bucketize(transcript.Words)
	}
	table := framesync.BuildTable(frames, words)
	stats := framesync.ComputeStatistics(table)

	log.Printf("Worker %d: sync table for job %s: %d rows, %s speech coverage",
		workerID, job.ID, stats.TotalSeconds, stats.SpeechCoverage)

	// Step 5: assemble and persist the result document.
	job.SetStage(types.StatusProcessing, "saving results")
	doc := results.Assemble(job.VideoPath, metadata, stats, table, transcript)

	resultPath, err := wp.localStorage.SaveResultDocument(job.RequestName, &doc)
	if err != nil {
		job.Fail(fmt.Errorf("failed to save results: %w", err))
		log.Printf("Worker %d: saving results failed for job %s: %v", workerID, job.ID, err)
		return
	}

	// Step 6: mirror to Google Drive (optional, retried with backoff —
	// retry policy lives here in orchestration, never in the sink).
	var driveURL string
	if wp.driveClient != nil {
		for attempt := 1; attempt <= 3; attempt++ {
			driveURL, err = wp.driveClient.UploadResult(job.RequestName, &doc)
			if err == nil {
				break
			}
			log.Printf("Worker %d: Drive upload attempt %d/3 failed: %v", workerID, attempt, err)
			if attempt < 3 {
				time.Sleep(time.Duration(attempt*attempt) * time.Second)
			}
		}
		if err != nil {
			log.Printf("Worker %d: WARNING Drive upload failed after 3 attempts, result kept locally", workerID)
		}
	}

	// Step 7: index the run.
	if wp.db != nil {
		record := storage.ResultRecord{
			JobID:          job.ID,
			VideoName:      job.RequestName,
			SourceType:     job.SourceType,
			ResultPath:     resultPath,
			GDriveURL:      driveURL,
			Duration:       duration,
			TotalWords:     stats.TotalWords,
			SpeechCoverage: stats.SpeechCoverage,
			CreatedAt:      time.Now(),
		}
		if err := wp.db.SaveResult(record); err != nil {
			log.Printf("Worker %d: WARNING database save failed: %v", workerID, err)
		}
	}

	job.complete(&doc, resultPath, driveURL)
	log.Printf("Worker %d: Job %s completed (result: %s)", workerID, job.ID, resultPath)
}

func (wp *WorkerPool) cleanupTempFile(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to cleanup temp file %s: %v", path, err)
	}
}
