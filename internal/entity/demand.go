package entity

const (
	MinDemand = 1
	MaxDemand = 10
)

// DemandLocations is the fixed set of places shown on the heat map, in display order.
var DemandLocations = []string{
	"Darwin",
	"Katherine",
	"Kakadu",
	"Arnhem Land",
	"Tennant Creek",
	"Alice Springs",
}

type DemandPoint struct {
	Location string  `json:"location"`
	Demand   float64 `json:"demand"`
}

type DemandEntry struct {
	Location string  `json:"location"`
	Demand   float64 `json:"demand"`
	Level    int     `json:"level"`
	Hot      bool    `json:"hot"`
}

// BuildDemandMap projects generator output onto DemandLocations. Unknown
// locations are dropped, missing ones read as zero, scores are clamped to 1..10.
func BuildDemandMap(points []DemandPoint) []DemandEntry {
	byLoc := make(map[string]float64, len(points))
	for _, p := range points {
		byLoc[p.Location] = clampDemand(p.Demand)
	}

	out := make([]DemandEntry, 0, len(DemandLocations))
	for _, loc := range DemandLocations {
		d := byLoc[loc]
		out = append(out, DemandEntry{
			Location: loc,
			Demand:   d,
			Level:    DemandLevel(d),
			Hot:      d > 8,
		})
	}
	return out
}

// DemandLevel buckets a score into 0 (no data) and 1..5 in steps of two.
func DemandLevel(d float64) int {
	switch {
	case d <= 0:
		return 0
	case d <= 2:
		return 1
	case d <= 4:
		return 2
	case d <= 6:
		return 3
	case d <= 8:
		return 4
	default:
		return 5
	}
}

func clampDemand(d float64) float64 {
	if d < MinDemand {
		return MinDemand
	}
	if d > MaxDemand {
		return MaxDemand
	}
	return d
}
