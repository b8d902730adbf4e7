package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"gopkg.in/yaml.v3"

	"github.com/snifferhq/sniffer/internal/cleanup"
	"github.com/snifferhq/sniffer/internal/framesync"
	"github.com/snifferhq/sniffer/internal/handlers"
	"github.com/snifferhq/sniffer/internal/queue"
	"github.com/snifferhq/sniffer/internal/storage"
	"github.com/snifferhq/sniffer/internal/transcription"
	"github.com/snifferhq/sniffer/internal/video"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port int    `yaml:"port"`
		Host string `yaml:"host"`
	} `yaml:"server"`

	OpenAI struct {
		APIKey string `yaml:"api_key"`
		Model  string `yaml:"model"`
	} `yaml:"openai"`

	Frames struct {
		DefaultPosition string `yaml:"default_position"`
	} `yaml:"frames"`

	Workers struct {
		Count int `yaml:"count"`
	} `yaml:"workers"`

	Storage struct {
		TempDir        string `yaml:"temp_dir"`
		AudioDir       string `yaml:"audio_dir"`
		FramesDir      string `yaml:"frames_dir"`
		TranscriptsDir string `yaml:"transcripts_dir"`
		ResultsDir     string `yaml:"results_dir"`
		Database       string `yaml:"database"`
	} `yaml:"storage"`

	Cleanup struct {
		IntervalMinutes int `yaml:"interval_minutes"`
		MaxAgeHours     int `yaml:"max_age_hours"`
	} `yaml:"cleanup"`

	GoogleDrive struct {
		CredentialsFile string `yaml:"credentials_file"`
		TokenFile       string `yaml:"token_file"`
		FolderName      string `yaml:"folder_name"`
	} `yaml:"google_drive"`

	Limits struct {
		MaxFileSizeMB int `yaml:"max_file_size_mb"`
	} `yaml:"limits"`
}

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to configuration file")
	flag.Parse()

	config, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	defaultPosition, err := framesync.ParsePosition(config.Frames.DefaultPosition)
	if err != nil {
		log.Fatalf("Invalid default frame position: %v", err)
	}

	// Working directories
	if err := cleanup.EnsureDirs(
		config.Storage.TempDir,
		config.Storage.AudioDir,
		config.Storage.FramesDir,
		config.Storage.TranscriptsDir,
		config.Storage.ResultsDir,
	); err != nil {
		log.Fatalf("Failed to create working directories: %v", err)
	}

	// Custom logger setup
	logBuffer := &LogBuffer{
		lines: make([]string, 0, 1000),
	}
	multiWriter := io.MultiWriter(os.Stdout, logBuffer)
	log.SetOutput(multiWriter)

	log.Println("Initializing components...")

	// Transcription client (optional - transcription is skipped without it)
	var transcriber *transcription.WhisperClient
	if config.OpenAI.APIKey != "" {
		transcriber, err = transcription.NewWhisperClient(config.OpenAI.APIKey, config.OpenAI.Model)
		if err != nil {
			log.Fatalf("Failed to initialize transcription client: %v", err)
		}
	} else {
		log.Println("WARNING: no OpenAI API key configured - videos will be processed without transcription")
	}

	// Frame extraction
	planner := framesync.NewPlanner()
	extractor := video.NewFrameExtractor(config.Storage.FramesDir)

	// Local storage
	localStorage := storage.NewLocalStorage(config.Storage.ResultsDir, config.Storage.TranscriptsDir)

	// Google Drive client (optional - may fail if credentials not set up)
	var driveClient *storage.DriveClient
	if _, err := os.Stat(config.GoogleDrive.CredentialsFile); err == nil {
		driveClient, err = storage.NewDriveClient(
			config.GoogleDrive.CredentialsFile,
			config.GoogleDrive.TokenFile,
			config.GoogleDrive.FolderName,
		)
		if err != nil {
			log.Printf("WARNING: Google Drive not available: %v", err)
			log.Println("Result documents will only be saved locally")
			driveClient = nil
		} else {
			log.Println("Google Drive integration enabled")
		}
	} else {
		log.Println("Google Drive credentials not found - saving locally only")
	}

	// Database
	db, err := storage.NewMetadataDB(config.Storage.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Worker pool
	workerPool := queue.NewWorkerPool(
		config.Workers.Count,
		transcriber,
		extractor,
		planner,
		localStorage,
		driveClient,
		db,
		config.Storage.AudioDir,
	)
	workerPool.Start()

	// Cleanup scheduler
	cleanupScheduler := cleanup.NewScheduler(
		config.Storage.TempDir,
		config.Storage.FramesDir,
		config.Cleanup.IntervalMinutes,
		config.Cleanup.MaxAgeHours,
	)
	cleanupScheduler.Start()
	defer cleanupScheduler.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit: config.Limits.MaxFileSizeMB * 1024 * 1024,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	// Initialize handlers
	processHandler := handlers.NewProcessHandler(workerPool, config.Storage.TempDir, config.Limits.MaxFileSizeMB, defaultPosition)
	gdriveHandler := handlers.NewGDriveHandler(workerPool, config.Storage.TempDir, defaultPosition)
	youtubeHandler := handlers.NewYouTubeHandler(workerPool, config.Storage.TempDir, defaultPosition)
	progressHandler := handlers.NewProgressHandler(workerPool.Registry())

	// Routes
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"version": "1.0",
		})
	})

	app.Post("/process", processHandler.HandleUpload)
	app.Post("/process/path", processHandler.HandleLocalPath)
	app.Post("/gdrive", gdriveHandler.Handle)
	app.Post("/youtube", youtubeHandler.Handle)

	// WebSocket progress stream
	app.Get("/ws/jobs/:id", websocket.New(progressHandler.Handle))

	// Job status
	app.Get("/jobs/:id", func(c *fiber.Ctx) error {
		job, ok := workerPool.Registry().Get(c.Params("id"))
		if !ok {
			return c.Status(404).JSON(fiber.Map{"error": "Job not found"})
		}
		return c.JSON(job.Snapshot())
	})

	// Full result document for a finished job
	app.Get("/jobs/:id/result", func(c *fiber.Ctx) error {
		job, ok := workerPool.Registry().Get(c.Params("id"))
		if !ok {
			return c.Status(404).JSON(fiber.Map{"error": "Job not found"})
		}
		doc := job.Document()
		if doc == nil {
			return c.Status(409).JSON(fiber.Map{"error": "Job not finished", "status": job.Snapshot().Status})
		}
		return c.JSON(doc)
	})

	// Indexed results
	app.Get("/results", func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 50)
		records, err := db.ListResults(limit)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(records)
	})

	app.Get("/results/:id", func(c *fiber.Ctx) error {
		record, err := db.GetResult(c.Params("id"))
		if err != nil {
			return c.Status(404).JSON(fiber.Map{"error": "Result not found"})
		}
		content, err := os.ReadFile(record.ResultPath)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Failed to read result document"})
		}
		c.Set("Content-Type", "application/json")
		return c.Send(content)
	})

	// Get server logs
	app.Get("/logs", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"logs": logBuffer.GetLogs(),
		})
	})

	// Start server
	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	log.Printf("Server starting on %s", addr)
	log.Println("Endpoints:")
	log.Println("   POST /process         - Upload video file")
	log.Println("   POST /process/path    - Process video by local path")
	log.Println("   POST /gdrive          - Process Google Drive video link")
	log.Println("   POST /youtube         - Download and process YouTube video")
	log.Println("   GET  /jobs/:id        - Job status")
	log.Println("   GET  /jobs/:id/result - Result document for a finished job")
	log.Println("   GET  /ws/jobs/:id     - WebSocket job progress stream")
	log.Println("   GET  /results         - List indexed results")
	log.Println("   GET  /results/:id     - Fetch a stored result document")
	log.Println("   GET  /logs            - View server logs")
	log.Println("   GET  /health          - Health check")

	// Graceful shutdown
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Println("Shutting down gracefully...")
		app.Shutdown()
	}()

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// LogBuffer captures logs in memory
type LogBuffer struct {
	lines []string
	mu    sync.Mutex
}

func (lb *LogBuffer) Write(p []byte) (n int, err error) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	lb.lines = append(lb.lines, string(p))

	// Keep last 1000 lines
	if len(lb.lines) > 1000 {
		lb.lines = lb.lines[len(lb.lines)-1000:]
	}

	return len(p), nil
}

func (lb *LogBuffer) GetLogs() []string {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	logs := make([]string, len(lb.lines))
	copy(logs, lb.lines)
	return logs
}

// loadConfig loads configuration from YAML file
func loadConfig(path string) (*Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(file, &config); err != nil {
		return nil, err
	}

	applyDefaults(&config)
	return &config, nil
}

// applyDefaults fills in the values a minimal config file may omit.
func applyDefaults(config *Config) {
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Frames.DefaultPosition == "" {
		config.Frames.DefaultPosition = "middle"
	}
	if config.Workers.Count == 0 {
		config.Workers.Count = 2
	}
	if config.Storage.TempDir == "" {
		config.Storage.TempDir = "temp"
	}
	if config.Storage.AudioDir == "" {
		config.Storage.AudioDir = "data/audio"
	}
	if config.Storage.FramesDir == "" {
		config.Storage.FramesDir = "data/video_frames"
	}
	if config.Storage.TranscriptsDir == "" {
		config.Storage.TranscriptsDir = "data/transcripts"
	}
	if config.Storage.ResultsDir == "" {
		config.Storage.ResultsDir = "data/results"
	}
	if config.Storage.Database == "" {
		config.Storage.Database = "data/sniffer.db"
	}
	if config.Cleanup.IntervalMinutes == 0 {
		config.Cleanup.IntervalMinutes = 60
	}
	if config.Cleanup.MaxAgeHours == 0 {
		config.Cleanup.MaxAgeHours = 24
	}
	if config.Limits.MaxFileSizeMB == 0 {
		config.Limits.MaxFileSizeMB = 2048
	}
	if config.OpenAI.Model == "" {
		config.OpenAI.Model = "whisper-1"
	}
}
