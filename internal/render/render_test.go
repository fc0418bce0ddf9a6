package render

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tOgg1/trackline/internal/jobs"
	"github.com/tOgg1/trackline/internal/models"
	"github.com/tOgg1/trackline/internal/store"
	"github.com/tOgg1/trackline/internal/timescale"
)

func renderProject(name string) *models.Project {
	p := models.NewProject("", name)
	p.Video = []models.VideoClip{
		{ID: "v2", Position: 400, Duration: 200, Lane: 0},
		{ID: "v1", Position: 0, Duration: 400, Lane: 0, StartTime: 40},
	}
	p.Text = []models.TextClip{
		{ID: "t1", Content: "Title", Position: 80, Duration: 120, Lane: 0},
	}
	p.Sound = []models.SoundClip{
		{ID: "s1", Position: 0, Duration: 600, Lane: 0, Volume: 80, FadeIn: 40, FadeOut: 80},
	}
	return p
}

func TestBuildComposesAndSorts(t *testing.T) {
	doc, err := Build(renderProject("demo"))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if doc.Duration != 15.0 {
		t.Fatalf("duration = %v, want 15s", doc.Duration)
	}
	if doc.FrameRate != timescale.FrameRate {
		t.Fatalf("frame rate = %v", doc.FrameRate)
	}

	if len(doc.Video) != 2 || doc.Video[0].ClipID != "v1" {
		t.Fatalf("video segments not in playback order: %+v", doc.Video)
	}
	if doc.Video[0].TrimIn != 1.0 {
		t.Fatalf("trim offset = %v, want 1s", doc.Video[0].TrimIn)
	}
	if doc.Video[1].Start != 10.0 || doc.Video[1].End != 15.0 {
		t.Fatalf("segment times wrong: %+v", doc.Video[1])
	}

	if len(doc.Sound) != 1 {
		t.Fatalf("expected 1 sound segment")
	}
	if doc.Sound[0].FadeIn != 1.0 || doc.Sound[0].FadeOut != 2.0 {
		t.Fatalf("fades not converted: %+v", doc.Sound[0])
	}
}

func TestBuildRejectsOverlongTimeline(t *testing.T) {
	p := renderProject("long")
	p.Video = append(p.Video, models.VideoClip{
		ID: "v3", Position: timescale.HardLimitBase - 40, Duration: 200, Lane: 0,
	})

	_, err := Build(p)
	if !errors.Is(err, jobs.ErrTimelineTooLong) {
		t.Fatalf("expected ErrTimelineTooLong, got %v", err)
	}
}

func TestProcessorDrivesJobThroughStates(t *testing.T) {
	dir := t.TempDir()
	db, err := store.Open(filepath.Join(dir, "trackline.db"), 5000)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	projects := store.NewProjectRepository(db)
	renders := store.NewJobRepository(db)
	ctx := context.Background()

	project := renderProject("demo")
	if err := projects.Create(ctx, project); err != nil {
		t.Fatalf("create project: %v", err)
	}
	job := &jobs.Job{ProjectID: project.ID}
	if err := renders.Create(ctx, job); err != nil {
		t.Fatalf("create job: %v", err)
	}

	proc := NewProcessor(projects, renders, filepath.Join(dir, "out"))

	state, err := proc.Process(ctx, job.ID)
	if err != nil || state != jobs.StateRunning {
		t.Fatalf("first pass: state=%v err=%v", state, err)
	}

	state, err = proc.Process(ctx, job.ID)
	if err != nil || state != jobs.StateComplete {
		t.Fatalf("second pass: state=%v err=%v", state, err)
	}

	data, err := os.ReadFile(proc.OutputPath("demo"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if doc.ProjectID != project.ID || len(doc.Video) != 2 {
		t.Fatalf("unexpected document: %+v", doc)
	}

	// Terminal jobs are left alone.
	state, err = proc.Process(ctx, job.ID)
	if err != nil || state != jobs.StateComplete {
		t.Fatalf("terminal pass: state=%v err=%v", state, err)
	}

	got, err := renders.Get(ctx, job.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if got.Progress != 1 {
		t.Fatalf("progress = %v", got.Progress)
	}
}

func TestProcessorFailsOverlongTimeline(t *testing.T) {
	dir := t.TempDir()
	db, err := store.Open(filepath.Join(dir, "trackline.db"), 5000)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	projects := store.NewProjectRepository(db)
	renders := store.NewJobRepository(db)
	ctx := context.Background()

	project := renderProject("long")
	project.Video[0].Position = timescale.HardLimitBase - 80
	if err := projects.Create(ctx, project); err != nil {
		t.Fatalf("create project: %v", err)
	}
	job := &jobs.Job{ProjectID: project.ID, State: jobs.StateRunning}
	if err := renders.Create(ctx, job); err != nil {
		t.Fatalf("create job: %v", err)
	}

	proc := NewProcessor(projects, renders, filepath.Join(dir, "out"))
	state, err := proc.Process(ctx, job.ID)
	if err != nil || state != jobs.StateFailed {
		t.Fatalf("state=%v err=%v", state, err)
	}

	got, err := renders.Get(ctx, job.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if got.Error == "" {
		t.Fatal("expected failure reason on job")
	}
}
