package generator

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gigfinder/internal/entity"
)

var (
	// ErrGeneration wraps every failure to obtain content from the model.
	ErrGeneration = errors.New("generation failed")
	// ErrMalformed marks model output that does not have the expected shape.
	ErrMalformed = errors.New("malformed generator output")
)

// DecodeJob turns the model's JSON text into a validated Job and assigns its id.
// title must be a non-empty string and payRate a number; anything else is ErrMalformed.
func DecodeJob(text string, now time.Time) (entity.Job, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &raw); err != nil {
		return entity.Job{}, fmt.Errorf("%w: job is not a json object: %v", ErrMalformed, err)
	}

	title, ok := raw["title"].(string)
	if !ok || strings.TrimSpace(title) == "" {
		return entity.Job{}, fmt.Errorf("%w: title must be a non-empty string", ErrMalformed)
	}
	payRate, ok := raw["payRate"].(float64)
	if !ok {
		return entity.Job{}, fmt.Errorf("%w: payRate must be a number", ErrMalformed)
	}

	job := entity.Job{
		Title:       title,
		Company:     stringField(raw, "company"),
		Location:    stringField(raw, "location"),
		Description: stringField(raw, "description"),
		PayRate:     payRate,
		PayType:     entity.PayType(stringField(raw, "payType")),
	}
	if err := job.Validate(); err != nil {
		return entity.Job{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	job.ID = entity.NewJobID(now, job.Title)
	return job, nil
}

// DecodeDemand expects a JSON array of {location, demand} objects.
func DecodeDemand(text string) ([]entity.DemandPoint, error) {
	var points []entity.DemandPoint
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &points); err != nil {
		return nil, fmt.Errorf("%w: demand is not an array of points: %v", ErrMalformed, err)
	}
	if points == nil {
		return nil, fmt.Errorf("%w: demand is null", ErrMalformed)
	}
	return points, nil
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
