// Package render composes a project's timeline into an export document and
// drives render jobs to completion. Rendering here means producing the
// machine-readable edit decision list an encoder consumes; all times in the
// document are seconds.
package render

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/tOgg1/trackline/internal/jobs"
	"github.com/tOgg1/trackline/internal/logging"
	"github.com/tOgg1/trackline/internal/models"
	"github.com/tOgg1/trackline/internal/store"
	"github.com/tOgg1/trackline/internal/timescale"
)

// Document is the composed timeline for one project.
type Document struct {
	ProjectID   string         `json:"projectId"`
	ProjectName string         `json:"projectName"`
	Duration    float64        `json:"duration"`
	FrameRate   float64        `json:"frameRate"`
	Video       []VideoSegment `json:"video"`
	Text        []TextSegment  `json:"text"`
	Sound       []SoundSegment `json:"sound"`
	RenderedAt  time.Time      `json:"renderedAt"`
}

// VideoSegment is one video clip's contribution to the composition.
type VideoSegment struct {
	ClipID string  `json:"clipId"`
	Title  string  `json:"title,omitempty"`
	Lane   int     `json:"lane"`
	Start  float64 `json:"start"`
	End    float64 `json:"end"`
	TrimIn float64 `json:"trimIn"`
}

// TextSegment is one text overlay's contribution.
type TextSegment struct {
	ClipID  string           `json:"clipId"`
	Content string           `json:"content"`
	Lane    int              `json:"lane"`
	Start   float64          `json:"start"`
	End     float64          `json:"end"`
	Style   models.TextStyle `json:"style"`
}

// SoundSegment is one audio clip's contribution.
type SoundSegment struct {
	ClipID  string  `json:"clipId"`
	Lane    int     `json:"lane"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	TrimIn  float64 `json:"trimIn"`
	Volume  int     `json:"volume"`
	FadeIn  float64 `json:"fadeIn"`
	FadeOut float64 `json:"fadeOut"`
}

// Build composes the export document. It fails when the timeline extends
// past the hard length limit.
func Build(project *models.Project) (*Document, error) {
	contentEnd := 0.0
	for _, c := range project.Video {
		contentEnd = max(contentEnd, c.Position+c.Duration)
	}
	for _, c := range project.Text {
		contentEnd = max(contentEnd, c.Position+c.Duration)
	}
	for _, c := range project.Sound {
		contentEnd = max(contentEnd, c.Position+c.Duration)
	}
	if err := jobs.ValidateRenderable(contentEnd); err != nil {
		return nil, err
	}

	doc := &Document{
		ProjectID:   project.ID,
		ProjectName: project.Name,
		Duration:    timescale.BaseToSeconds(contentEnd),
		FrameRate:   timescale.FrameRate,
		RenderedAt:  time.Now().UTC(),
	}

	for _, c := range project.Video {
		doc.Video = append(doc.Video, VideoSegment{
			ClipID: c.ID,
			Title:  c.Title,
			Lane:   c.LaneIndex(),
			Start:  timescale.BaseToSeconds(c.Position),
			End:    timescale.BaseToSeconds(c.Position + c.Duration),
			TrimIn: timescale.BaseToSeconds(c.StartTime),
		})
	}
	for _, c := range project.Text {
		doc.Text = append(doc.Text, TextSegment{
			ClipID:  c.ID,
			Content: c.Content,
			Lane:    c.LaneIndex(),
			Start:   timescale.BaseToSeconds(c.Position),
			End:     timescale.BaseToSeconds(c.Position + c.Duration),
			Style:   c.Style,
		})
	}
	for _, c := range project.Sound {
		doc.Sound = append(doc.Sound, SoundSegment{
			ClipID:  c.ID,
			Lane:    c.LaneIndex(),
			Start:   timescale.BaseToSeconds(c.Position),
			End:     timescale.BaseToSeconds(c.Position + c.Duration),
			TrimIn:  timescale.BaseToSeconds(c.StartTime),
			Volume:  models.ClampVolume(c.Volume),
			FadeIn:  timescale.BaseToSeconds(c.FadeIn),
			FadeOut: timescale.BaseToSeconds(c.FadeOut),
		})
	}

	// Encoders consume segments in playback order.
	sortSegments(doc)
	return doc, nil
}

func sortSegments(doc *Document) {
	sort.Slice(doc.Video, func(i, j int) bool {
		if doc.Video[i].Start != doc.Video[j].Start {
			return doc.Video[i].Start < doc.Video[j].Start
		}
		return doc.Video[i].Lane < doc.Video[j].Lane
	})
	sort.Slice(doc.Text, func(i, j int) bool {
		if doc.Text[i].Start != doc.Text[j].Start {
			return doc.Text[i].Start < doc.Text[j].Start
		}
		return doc.Text[i].Lane < doc.Text[j].Lane
	})
	sort.Slice(doc.Sound, func(i, j int) bool {
		if doc.Sound[i].Start != doc.Sound[j].Start {
			return doc.Sound[i].Start < doc.Sound[j].Start
		}
		return doc.Sound[i].Lane < doc.Sound[j].Lane
	})
}

// WriteFile writes the document as indented JSON.
func (d *Document) WriteFile(path string) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode render document: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write render document: %w", err)
	}
	return nil
}

// Processor drives render jobs: a queued job starts, a running job composes
// its project and writes the export document. It satisfies jobs.Processor.
type Processor struct {
	projects *store.ProjectRepository
	renders  *store.JobRepository
	outDir   string
	logger   zerolog.Logger
}

// NewProcessor creates a render Processor writing documents into outDir.
func NewProcessor(projects *store.ProjectRepository, renders *store.JobRepository, outDir string) *Processor {
	return &Processor{
		projects: projects,
		renders:  renders,
		outDir:   outDir,
		logger:   logging.Component("render"),
	}
}

// OutputPath returns where a project's render document lands.
func (p *Processor) OutputPath(projectName string) string {
	return filepath.Join(p.outDir, projectName+".json")
}

// Process advances one render job and returns its new state.
func (p *Processor) Process(ctx context.Context, jobID string) (jobs.State, error) {
	job, err := p.renders.Get(ctx, jobID)
	if err != nil {
		return "", err
	}
	if job.State.Terminal() {
		return job.State, nil
	}

	if job.State == jobs.StateQueued {
		if err := p.renders.UpdateState(ctx, jobID, jobs.StateRunning, 0, ""); err != nil {
			return "", err
		}
		return jobs.StateRunning, nil
	}

	project, err := p.projects.Get(ctx, job.ProjectID)
	if err != nil {
		return p.fail(ctx, jobID, err)
	}

	doc, err := Build(project)
	if err != nil {
		return p.fail(ctx, jobID, err)
	}

	path := p.OutputPath(project.Name)
	if err := doc.WriteFile(path); err != nil {
		return p.fail(ctx, jobID, err)
	}

	if err := p.renders.UpdateState(ctx, jobID, jobs.StateComplete, 1, ""); err != nil {
		return "", err
	}

	p.logger.Info().
		Str("job_id", jobID).
		Str("project", project.Name).
		Str("output", path).
		Msg("render complete")

	return jobs.StateComplete, nil
}

func (p *Processor) fail(ctx context.Context, jobID string, cause error) (jobs.State, error) {
	if err := p.renders.UpdateState(ctx, jobID, jobs.StateFailed, 0, cause.Error()); err != nil {
		return "", err
	}
	p.logger.Warn().Err(cause).Str("job_id", jobID).Msg("render failed")
	return jobs.StateFailed, nil
}
