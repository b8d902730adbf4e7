package queue

import (
	"errors"
	"testing"

	"github.com/snifferhq/sniffer/internal/framesync"
	"github.com/snifferhq/sniffer/internal/types"
)

func TestJobVisibleBeforeQueueing(t *testing.T) {
	registry := NewRegistry()
	job := NewJob("job-1", "clip", types.SourceYouTube, "/tmp/job-1.mp4", framesync.PositionMiddle, true)
	job.SetStage(types.StatusQueued, "downloading")
	registry.Add(job)

	got, ok := registry.Get("job-1")
	if !ok {
		t.Fatal("job not found in registry before queueing")
	}

	snap := got.Snapshot()
	if snap.Status != types.StatusQueued {
		t.Errorf("status: got %q, want %q", snap.Status, types.StatusQueued)
	}
	if snap.Stage != "downloading" {
		t.Errorf("stage: got %q, want %q", snap.Stage, "downloading")
	}
}

func TestJobFailBeforeQueueing(t *testing.T) {
	registry := NewRegistry()
	job := NewJob("job-2", "clip", types.SourceYouTube, "/tmp/job-2.mp4", framesync.PositionMiddle, true)
	registry.Add(job)

	job.Fail(errors.New("youtube download failed: exit status 1"))

	got, _ := registry.Get("job-2")
	snap := got.Snapshot()
	if snap.Status != types.StatusFailed {
		t.Errorf("status: got %q, want %q", snap.Status, types.StatusFailed)
	}
	if snap.Error != "youtube download failed: exit status 1" {
		t.Errorf("error: got %q", snap.Error)
	}
}

func TestJobSetNameReflectedInSnapshot(t *testing.T) {
	job := NewJob("job-3", "youtube_video", types.SourceYouTube, "/tmp/job-3.mp4", framesync.PositionStart, false)
	job.SetName("Resolved Page Title")

	if got := job.Snapshot().Name; got != "Resolved Page Title" {
		t.Errorf("name: got %q", got)
	}
}
