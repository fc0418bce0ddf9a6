package models

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError represents a single validation failure.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (v ValidationError) Error() string {
	if v.Field == "" {
		return v.Message
	}
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

// ValidationErrors aggregates multiple validation failures.
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// Add records a validation error for a field.
func (v *ValidationErrors) Add(field string, err error) {
	if err == nil {
		return
	}

	var nested *ValidationErrors
	if errors.As(err, &nested) {
		for _, sub := range nested.Errors {
			v.Errors = append(v.Errors, ValidationError{
				Field:   joinField(field, sub.Field),
				Message: sub.Message,
				Cause:   sub.Cause,
			})
		}
		return
	}

	v.Errors = append(v.Errors, ValidationError{
		Field:   field,
		Message: err.Error(),
		Cause:   err,
	})
}

// AddMessage records a validation error with a custom message.
func (v *ValidationErrors) AddMessage(field, message string) {
	if message == "" {
		return
	}
	v.Errors = append(v.Errors, ValidationError{Field: field, Message: message})
}

// Err returns nil if there are no errors, otherwise the aggregate.
func (v *ValidationErrors) Err() error {
	if v == nil || len(v.Errors) == 0 {
		return nil
	}
	return v
}

// Error implements error.
func (v *ValidationErrors) Error() string {
	if v == nil || len(v.Errors) == 0 {
		return "validation failed"
	}
	if len(v.Errors) == 1 {
		return v.Errors[0].Error()
	}

	var builder strings.Builder
	for i, err := range v.Errors {
		if i > 0 {
			builder.WriteString("; ")
		}
		builder.WriteString(err.Error())
	}

	return builder.String()
}

func joinField(prefix, field string) string {
	switch {
	case prefix == "":
		return field
	case field == "":
		return prefix
	default:
		return prefix + "." + field
	}
}

// Validate checks the structural invariants of a video clip.
func (c VideoClip) Validate() error {
	v := &ValidationErrors{}
	validatePlacement(v, c.Position, c.Duration, c.Lane)
	if c.StartTime < 0 {
		v.AddMessage("startTime", "must not be negative")
	}
	if c.MaxDuration > 0 && c.Duration > c.MaxDuration {
		v.AddMessage("duration", "exceeds source length")
	}
	return v.Err()
}

// Validate checks the structural invariants of a text clip.
func (c TextClip) Validate() error {
	v := &ValidationErrors{}
	validatePlacement(v, c.Position, c.Duration, c.Lane)
	if !ValidEffect(c.Effect) {
		v.AddMessage("effect", fmt.Sprintf("unknown preset %q", c.Effect))
	}
	return v.Err()
}

// Validate checks the structural invariants of a sound clip.
func (c SoundClip) Validate() error {
	v := &ValidationErrors{}
	validatePlacement(v, c.Position, c.Duration, c.Lane)
	if c.Volume < 0 || c.Volume > 100 {
		v.AddMessage("volume", "must be between 0 and 100")
	}
	if c.FadeIn < 0 || c.FadeOut < 0 {
		v.AddMessage("fade", "must not be negative")
	}
	if c.FadeIn > c.Duration*0.5 || c.FadeOut > c.Duration*0.5 {
		v.AddMessage("fade", "must not exceed half the clip duration")
	}
	if c.FadeIn > MaxFadeWidth || c.FadeOut > MaxFadeWidth {
		v.AddMessage("fade", "must not exceed 10 seconds")
	}
	if c.FadeIn+c.FadeOut+FadeMinGap > c.Duration {
		v.AddMessage("fade", "envelopes overlap")
	}
	if c.StartTime < 0 {
		v.AddMessage("startTime", "must not be negative")
	}
	return v.Err()
}

func validatePlacement(v *ValidationErrors, position, duration float64, lane int) {
	if position < 0 {
		v.AddMessage("position", "must not be negative")
	}
	if duration < MinClipWidth {
		v.AddMessage("duration", fmt.Sprintf("must be at least %g base pixels", MinClipWidth))
	}
	if lane < 0 || lane >= MaxLanes {
		v.AddMessage("laneIndex", fmt.Sprintf("must be in [0, %d)", MaxLanes))
	}
}
