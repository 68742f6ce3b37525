package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"gigfinder/internal/entity"
)

const (
	DefaultModel   = "gemini-2.5-flash"
	DefaultBaseURL = "https://generativelanguage.googleapis.com"

	jobPrompt = "Generate a single, realistic job listing for a casual or gig worker based in Australia's " +
		"Northern Territory. The job should be something that can be done in a day or a few hours and " +
		"relevant to the region. Provide details according to the provided schema."
)

var demandPrompt = "Generate a JSON array of job demand data for these specific locations in Australia's " +
	"Northern Territory: " + strings.Join(entity.DemandLocations, ", ") + ". Each object must have a " +
	"'location' string matching one of these names exactly, and a 'demand' score from 1 (low) to 10 (high)."

type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	// RatePerSec and Burst bound outgoing calls; zero RatePerSec disables limiting.
	RatePerSec float64
	Burst      int
}

// Gemini calls the generateContent REST endpoint with a JSON response schema.
type Gemini struct {
	cfg     GeminiConfig
	client  *http.Client
	limiter *rate.Limiter
	now     func() time.Time
}

func NewGemini(cfg GeminiConfig, client *http.Client) *Gemini {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	lim := rate.NewLimiter(rate.Inf, 0)
	if cfg.RatePerSec > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		lim = rate.NewLimiter(rate.Limit(cfg.RatePerSec), burst)
	}
	return &Gemini{cfg: cfg, client: client, limiter: lim, now: time.Now}
}

func (g *Gemini) GenerateJob(ctx context.Context) (entity.Job, error) {
	text, err := g.generate(ctx, jobPrompt, jobSchema)
	if err != nil {
		return entity.Job{}, err
	}
	job, err := DecodeJob(text, g.now())
	if err != nil {
		return entity.Job{}, fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	return job, nil
}

func (g *Gemini) GenerateDemand(ctx context.Context) ([]entity.DemandPoint, error) {
	text, err := g.generate(ctx, demandPrompt, demandSchema)
	if err != nil {
		return nil, err
	}
	points, err := DecodeDemand(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	return points, nil
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents         []content      `json:"contents"`
	GenerationConfig map[string]any `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
}

// generate returns the text of the first candidate.
func (g *Gemini) generate(ctx context.Context, prompt string, schema map[string]any) (string, error) {
	start := time.Now()
	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: rate limit: %w", ErrGeneration, err)
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: map[string]any{
			"responseMimeType": "application/json",
			"responseSchema":   schema,
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %w", ErrGeneration, err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", strings.TrimRight(g.cfg.BaseURL, "/"), g.cfg.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.cfg.APIKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %w", ErrGeneration, err)
	}
	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("%w: status %d: %s", ErrGeneration, resp.StatusCode, truncate(string(raw), 256))
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("%w: decode response: %w", ErrGeneration, err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: %w: no candidates", ErrGeneration, ErrMalformed)
	}

	log.Printf("[generator] model=%s status=%d duration_ms=%d",
		g.cfg.Model, resp.StatusCode, time.Since(start).Milliseconds(),
	)
	return out.Candidates[0].Content.Parts[0].Text, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

var jobSchema = map[string]any{
	"type": "OBJECT",
	"properties": map[string]any{
		"title": map[string]any{
			"type":        "STRING",
			"description": "A realistic title for a casual, on-demand gig. E.g., 'Tourism Assistant', 'Cattle Station Hand', 'Mindil Beach Market Stall Helper'.",
		},
		"company": map[string]any{
			"type":        "STRING",
			"description": "A plausible, fictional name for a local company or individual hiring for the gig.",
		},
		"location": map[string]any{
			"type":        "STRING",
			"description": "A plausible town or region in the Northern Territory, Australia. E.g., 'Darwin, NT', 'Alice Springs, NT'.",
		},
		"description": map[string]any{
			"type":        "STRING",
			"description": "A brief, 2-3 sentence description of the job duties.",
		},
		"payRate": map[string]any{
			"type":        "NUMBER",
			"description": "A realistic pay rate for the gig in AUD. E.g., 30, 150.",
		},
		"payType": map[string]any{
			"type":        "STRING",
			"enum":        []string{string(entity.PayHourly), string(entity.PayFlat)},
			"description": "The type of pay. Must be either 'hourly' or 'flat'.",
		},
	},
	"required": []string{"title", "company", "location", "description", "payRate", "payType"},
}

var demandSchema = map[string]any{
	"type": "ARRAY",
	"items": map[string]any{
		"type": "OBJECT",
		"properties": map[string]any{
			"location": map[string]any{
				"type":        "STRING",
				"description": "The name of the city or region in the Northern Territory.",
			},
			"demand": map[string]any{
				"type":        "NUMBER",
				"description": "A score from 1 (low demand) to 10 (high demand).",
			},
		},
		"required": []string{"location", "demand"},
	},
}
