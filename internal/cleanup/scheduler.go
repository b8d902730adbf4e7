package cleanup

import (
	"log"
	"os"
	"path/filepath"
	"time"
)

// Scheduler periodically removes stale temp files (downloaded videos,
// extracted audio) and stale frame directories. Frames are cheap to
// regenerate; the result documents are what we keep.
type Scheduler struct {
	tempDir         string
	framesDir       string
	intervalMinutes int
	maxAgeHours     int
	stopChan        chan struct{}
}

// NewScheduler creates a cleanup scheduler.
func NewScheduler(tempDir, framesDir string, intervalMinutes, maxAgeHours int) *Scheduler {
	return &Scheduler{
		tempDir:         tempDir,
		framesDir:       framesDir,
		intervalMinutes: intervalMinutes,
		maxAgeHours:     maxAgeHours,
		stopChan:        make(chan struct{}),
	}
}

// Start runs one sweep immediately, then sweeps on the configured interval.
func (s *Scheduler) Start() {
	log.Println("Running initial cleanup sweep...")
	s.sweep()

	ticker := time.NewTicker(time.Duration(s.intervalMinutes) * time.Minute)

	go func() {
		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.stopChan:
				ticker.Stop()
				return
			}
		}
	}()

	log.Printf("Cleanup scheduler started (interval: %dm, max age: %dh)",
		s.intervalMinutes, s.maxAgeHours)
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	close(s.stopChan)
	log.Println("Cleanup scheduler stopped")
}

func (s *Scheduler) sweep() {
	cutoff := time.Now().Add(-time.Duration(s.maxAgeHours) * time.Hour)

	deleted, freed := s.cleanStaleFiles(s.tempDir, cutoff)
	dirs := s.cleanStaleFrameDirs(cutoff)

	if deleted > 0 || dirs > 0 {
		log.Printf("Cleanup complete: %d temp files deleted (%.2fMB freed), %d frame dirs removed",
			deleted, float64(freed)/(1024*1024), dirs)
	}
}

// cleanStaleFiles removes regular files older than the cutoff.
func (s *Scheduler) cleanStaleFiles(root string, cutoff time.Time) (int, int64) {
	var deletedCount int
	var deletedSize int64

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip files we can't access
		}
		if info.IsDir() {
			return nil
		}

		if info.ModTime().Before(cutoff) {
			size := info.Size()
			if err := os.Remove(path); err != nil {
				log.Printf("Failed to delete stale file %s: %v", path, err)
			} else {
				deletedCount++
				deletedSize += size
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("Error during temp cleanup: %v", err)
	}

	return deletedCount, deletedSize
}

// cleanStaleFrameDirs removes whole per-video frame directories whose
// newest frame is older than the cutoff.
func (s *Scheduler) cleanStaleFrameDirs(cutoff time.Time) int {
	entries, err := os.ReadDir(s.framesDir)
	if err != nil {
		return 0
	}

	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(s.framesDir, entry.Name())
		if newestModTime(dir).Before(cutoff) {
			if err := os.RemoveAll(dir); err != nil {
				log.Printf("Failed to remove stale frame dir %s: %v", dir, err)
				continue
			}
			removed++
			log.Printf("Removed stale frame dir: %s", entry.Name())
		}
	}

	return removed
}

func newestModTime(dir string) time.Time {
	var newest time.Time
	filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err == nil && info.ModTime().After(newest) {
			newest = info.ModTime()
		}
		return nil
	})
	return newest
}

// EnsureDirs creates the working directories the pipeline writes into.
func EnsureDirs(dirs ...string) error {
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
