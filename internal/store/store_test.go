package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/tOgg1/trackline/internal/jobs"
	"github.com/tOgg1/trackline/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "trackline.db"), 5000)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return db
}

func sampleProject(name string) *models.Project {
	p := models.NewProject("", name)
	p.Video = []models.VideoClip{
		{ID: "v1", Title: "intro", Position: 0, Duration: 200, Lane: 0, StartTime: 40, MaxDuration: 400},
	}
	p.Text = []models.TextClip{
		{ID: "t1", Content: "Hello", Position: 100, Duration: 120, Lane: 0},
	}
	p.Sound = []models.SoundClip{
		{ID: "s1", Position: 0, Duration: 300, Lane: 0, Volume: 80, FadeIn: 40, FadeOut: 40},
	}
	return p
}

func TestProjectRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewProjectRepository(db)
	ctx := context.Background()

	project := sampleProject("demo")
	if err := repo.Create(ctx, project); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if project.ID == "" {
		t.Fatal("expected generated project id")
	}

	got, err := repo.Get(ctx, project.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Name != "demo" {
		t.Fatalf("unexpected name: %s", got.Name)
	}
	if len(got.Video) != 1 || got.Video[0].StartTime != 40 {
		t.Fatalf("video clips did not round-trip: %+v", got.Video)
	}
	if len(got.Sound) != 1 || got.Sound[0].FadeIn != 40 {
		t.Fatalf("sound clips did not round-trip: %+v", got.Sound)
	}
	if len(got.VideoLanes) != 1 || got.VideoLanes[0] != 0 {
		t.Fatalf("lanes did not round-trip: %v", got.VideoLanes)
	}

	byName, err := repo.GetByName(ctx, "demo")
	if err != nil {
		t.Fatalf("GetByName failed: %v", err)
	}
	if byName.ID != project.ID {
		t.Fatalf("GetByName returned wrong project: %s", byName.ID)
	}
}

func TestProjectRepository_DuplicateName(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewProjectRepository(db)
	ctx := context.Background()

	if err := repo.Create(ctx, sampleProject("demo")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	err := repo.Create(ctx, sampleProject("demo"))
	if !errors.Is(err, ErrProjectAlreadyExists) {
		t.Fatalf("expected ErrProjectAlreadyExists, got %v", err)
	}
}

func TestProjectRepository_SaveAndDelete(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewProjectRepository(db)
	ctx := context.Background()

	project := sampleProject("demo")
	if err := repo.Create(ctx, project); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	project.Video[0].Position = 400
	project.VideoLanes = []int{0, 1}
	if err := repo.Save(ctx, project); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := repo.Get(ctx, project.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Video[0].Position != 400 {
		t.Fatalf("position not persisted: %v", got.Video[0].Position)
	}
	if len(got.VideoLanes) != 2 {
		t.Fatalf("lanes not persisted: %v", got.VideoLanes)
	}

	if err := repo.Delete(ctx, project.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.Get(ctx, project.ID); !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, project.ID); !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound on double delete, got %v", err)
	}
}

func TestProjectRepository_RejectsInvalidClips(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewProjectRepository(db)
	ctx := context.Background()

	project := sampleProject("broken")
	project.Video[0].Duration = 10 // below minimum width
	if err := repo.Create(ctx, project); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestJobRepository_Lifecycle(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	projects := NewProjectRepository(db)
	repo := NewJobRepository(db)
	ctx := context.Background()

	project := sampleProject("demo")
	if err := projects.Create(ctx, project); err != nil {
		t.Fatalf("Create project failed: %v", err)
	}

	job := &jobs.Job{ProjectID: project.ID}
	if err := repo.Create(ctx, job); err != nil {
		t.Fatalf("Create job failed: %v", err)
	}
	if job.State != jobs.StateQueued {
		t.Fatalf("new job state = %s, want queued", job.State)
	}

	if err := repo.UpdateState(ctx, job.ID, jobs.StateRunning, 0.5, ""); err != nil {
		t.Fatalf("UpdateState failed: %v", err)
	}

	got, err := repo.Get(ctx, job.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.State != jobs.StateRunning || got.Progress != 0.5 {
		t.Fatalf("job did not update: %+v", got)
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 job, got %d", len(all))
	}

	if err := repo.Delete(ctx, job.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := repo.UpdateState(ctx, job.ID, jobs.StateFailed, 0, "gone"); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
}
