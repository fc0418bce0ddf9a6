package models

import (
	"fmt"
	"time"
)

// Project is one saved editing session: the three clip collections plus the
// lane lists for each kind.
type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	Video []VideoClip `json:"video"`
	Text  []TextClip  `json:"text"`
	Sound []SoundClip `json:"sound"`

	VideoLanes []int `json:"videoLanes"`
	TextLanes  []int `json:"textLanes"`
	SoundLanes []int `json:"soundLanes"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewProject returns an empty project with one lane per kind.
func NewProject(id, name string) *Project {
	return &Project{
		ID:         id,
		Name:       name,
		VideoLanes: []int{0},
		TextLanes:  []int{0},
		SoundLanes: []int{0},
	}
}

// Validate checks the project name and every clip in the project.
func (p *Project) Validate() error {
	v := &ValidationErrors{}
	if p.Name == "" {
		v.AddMessage("name", "name is required")
	}
	for i, c := range p.Video {
		v.Add(fmt.Sprintf("video[%d]", i), c.Validate())
	}
	for i, c := range p.Text {
		v.Add(fmt.Sprintf("text[%d]", i), c.Validate())
	}
	for i, c := range p.Sound {
		v.Add(fmt.Sprintf("sound[%d]", i), c.Validate())
	}
	return v.Err()
}
