package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tOgg1/trackline/internal/models"
)

// Project repository errors.
var (
	ErrProjectNotFound      = errors.New("project not found")
	ErrProjectAlreadyExists = errors.New("project with this name already exists")
)

// ProjectRepository handles project persistence.
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a new ProjectRepository.
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create adds a new project to the database.
func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	if err := project.Validate(); err != nil {
		return fmt.Errorf("invalid project: %w", err)
	}

	if project.ID == "" {
		project.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	project.CreatedAt = now
	project.UpdatedAt = now

	cols, err := marshalProject(project)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO projects (
			id, name, video_json, text_json, sound_json,
			video_lanes_json, text_lanes_json, sound_lanes_json,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		project.ID,
		project.Name,
		cols.video,
		cols.text,
		cols.sound,
		cols.videoLanes,
		cols.textLanes,
		cols.soundLanes,
		project.CreatedAt.Format(time.RFC3339),
		project.UpdatedAt.Format(time.RFC3339),
	)

	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrProjectAlreadyExists
		}
		return fmt.Errorf("failed to insert project: %w", err)
	}

	return nil
}

// Save persists the project's current clip collections and lane lists.
func (r *ProjectRepository) Save(ctx context.Context, project *models.Project) error {
	if err := project.Validate(); err != nil {
		return fmt.Errorf("invalid project: %w", err)
	}

	project.UpdatedAt = time.Now().UTC()

	cols, err := marshalProject(project)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE projects SET
			name = ?, video_json = ?, text_json = ?, sound_json = ?,
			video_lanes_json = ?, text_lanes_json = ?, sound_lanes_json = ?,
			updated_at = ?
		WHERE id = ?
	`,
		project.Name,
		cols.video,
		cols.text,
		cols.sound,
		cols.videoLanes,
		cols.textLanes,
		cols.soundLanes,
		project.UpdatedAt.Format(time.RFC3339),
		project.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return ErrProjectNotFound
	}

	return nil
}

// Get retrieves a project by id.
func (r *ProjectRepository) Get(ctx context.Context, id string) (*models.Project, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, name, video_json, text_json, sound_json,
			video_lanes_json, text_lanes_json, sound_lanes_json,
			created_at, updated_at
		FROM projects
		WHERE id = ?
	`, id)

	return scanProject(row.Scan)
}

// GetByName retrieves a project by its unique name.
func (r *ProjectRepository) GetByName(ctx context.Context, name string) (*models.Project, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, name, video_json, text_json, sound_json,
			video_lanes_json, text_lanes_json, sound_lanes_json,
			created_at, updated_at
		FROM projects
		WHERE name = ?
	`, name)

	return scanProject(row.Scan)
}

// List retrieves all projects ordered by most recently updated.
func (r *ProjectRepository) List(ctx context.Context) ([]*models.Project, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, name, video_json, text_json, sound_json,
			video_lanes_json, text_lanes_json, sound_lanes_json,
			created_at, updated_at
		FROM projects
		ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		project, err := scanProject(rows.Scan)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}

	return projects, nil
}

// Delete removes a project and, through the foreign key, its render jobs.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrProjectNotFound
	}

	return nil
}

type projectColumns struct {
	video, text, sound             string
	videoLanes, textLanes, soundLanes string
}

func marshalProject(project *models.Project) (projectColumns, error) {
	var cols projectColumns
	var err error

	if cols.video, err = marshalJSON(project.Video); err != nil {
		return cols, fmt.Errorf("failed to marshal video clips: %w", err)
	}
	if cols.text, err = marshalJSON(project.Text); err != nil {
		return cols, fmt.Errorf("failed to marshal text clips: %w", err)
	}
	if cols.sound, err = marshalJSON(project.Sound); err != nil {
		return cols, fmt.Errorf("failed to marshal sound clips: %w", err)
	}
	if cols.videoLanes, err = marshalJSON(project.VideoLanes); err != nil {
		return cols, fmt.Errorf("failed to marshal video lanes: %w", err)
	}
	if cols.textLanes, err = marshalJSON(project.TextLanes); err != nil {
		return cols, fmt.Errorf("failed to marshal text lanes: %w", err)
	}
	if cols.soundLanes, err = marshalJSON(project.SoundLanes); err != nil {
		return cols, fmt.Errorf("failed to marshal sound lanes: %w", err)
	}

	return cols, nil
}

func marshalJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func scanProject(scan func(dest ...any) error) (*models.Project, error) {
	var project models.Project
	var videoJSON, textJSON, soundJSON string
	var videoLanesJSON, textLanesJSON, soundLanesJSON string
	var createdAt, updatedAt string

	err := scan(
		&project.ID,
		&project.Name,
		&videoJSON,
		&textJSON,
		&soundJSON,
		&videoLanesJSON,
		&textLanesJSON,
		&soundLanesJSON,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to scan project: %w", err)
	}

	if err := json.Unmarshal([]byte(videoJSON), &project.Video); err != nil {
		return nil, fmt.Errorf("failed to parse video clips: %w", err)
	}
	if err := json.Unmarshal([]byte(textJSON), &project.Text); err != nil {
		return nil, fmt.Errorf("failed to parse text clips: %w", err)
	}
	if err := json.Unmarshal([]byte(soundJSON), &project.Sound); err != nil {
		return nil, fmt.Errorf("failed to parse sound clips: %w", err)
	}
	if err := json.Unmarshal([]byte(videoLanesJSON), &project.VideoLanes); err != nil {
		return nil, fmt.Errorf("failed to parse video lanes: %w", err)
	}
	if err := json.Unmarshal([]byte(textLanesJSON), &project.TextLanes); err != nil {
		return nil, fmt.Errorf("failed to parse text lanes: %w", err)
	}
	if err := json.Unmarshal([]byte(soundLanesJSON), &project.SoundLanes); err != nil {
		return nil, fmt.Errorf("failed to parse sound lanes: %w", err)
	}

	if project.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if project.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return &project, nil
}
