package entity

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

type PayType string

const (
	PayHourly PayType = "hourly"
	PayFlat   PayType = "flat"
)

// SimulatedHours is how long an hourly gig is assumed to last when earnings are shown.
const SimulatedHours = 3

var ErrInvalidJob = errors.New("invalid job")

type Job struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Company     string  `json:"company"`
	Location    string  `json:"location"`
	Description string  `json:"description"`
	PayRate     float64 `json:"payRate"`
	PayType     PayType `json:"payType"`
}

func (t PayType) Valid() bool {
	return t == PayHourly || t == PayFlat
}

// Earnings returns the simulated payout for a completed job.
func (j Job) Earnings() float64 {
	if j.PayType == PayFlat {
		return j.PayRate
	}
	return j.PayRate * SimulatedHours
}

func (j Job) Validate() error {
	var missing []string
	if strings.TrimSpace(j.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(j.Company) == "" {
		missing = append(missing, "company")
	}
	if strings.TrimSpace(j.Location) == "" {
		missing = append(missing, "location")
	}
	if strings.TrimSpace(j.Description) == "" {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: empty %s", ErrInvalidJob, strings.Join(missing, ", "))
	}
	if j.PayRate <= 0 {
		return fmt.Errorf("%w: payRate must be positive, got %v", ErrInvalidJob, j.PayRate)
	}
	if !j.PayType.Valid() {
		return fmt.Errorf("%w: unknown payType %q", ErrInvalidJob, j.PayType)
	}
	return nil
}

var whitespace = regexp.MustCompile(`\s`)

// NewJobID derives an id from the generation time and the title,
// e.g. "1718000000000-Cattle-Station-Hand".
func NewJobID(at time.Time, title string) string {
	return fmt.Sprintf("%d-%s", at.UnixMilli(), whitespace.ReplaceAllString(title, "-"))
}
