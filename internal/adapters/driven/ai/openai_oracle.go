package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/custodia-labs/clipsearch/internal/core/domain"
	"github.com/custodia-labs/clipsearch/internal/core/ports/driven"
)

// Ensure OpenAIOracle implements SemanticOracle
var _ driven.SemanticOracle = (*OpenAIOracle)(nil)

const (
	defaultModel   = "gpt-4o-mini"
	defaultTimeout = 60 * time.Second
)

// OracleConfig configures an OpenAI-compatible chat completion oracle
type OracleConfig struct {
	APIKey  string
	BaseURL string // empty means api.openai.com
	Model   string
	Timeout time.Duration
	Logger  *slog.Logger
}

// OpenAIOracle implements SemanticOracle with chat completions.
// Any OpenAI-compatible endpoint works, including a local Ollama server.
type OpenAIOracle struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// NewOpenAIOracle creates a new OpenAI-backed oracle
func NewOpenAIOracle(cfg OracleConfig) (*OpenAIOracle, error) {
	if cfg.APIKey == "" && cfg.BaseURL == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}

	return &OpenAIOracle{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  cfg.Logger,
	}, nil
}

const extractSystemPrompt = "You are a surveillance footage search query analyzer. " +
	"Extract key visual elements and time references from the user's search query."

const extractUserPrompt = `Analyze this search query: %q

The current date and time is %s (%s).

Extract and return a JSON object with these fields:
- keywords: list of important words or phrases to search for
- primary_objects: main subjects or objects in the query
- attributes: descriptive attributes (colors, sizes, etc.)
- actions: actions or behaviors mentioned
- time_references: object with these fields:
  - specific_date: ISO date YYYY-MM-DD if mentioned, null if not. If the year is missing use %d.
  - specific_time: time in 24h format HH:MM if mentioned, null if not
  - relative_time: the original wording such as "yesterday", "last week", "3 days ago", "before 8 pm"
  - time_period: object with "start" and "end" (YYYY-MM-DDTHH:MM:SS) if a range such as "between 1 pm and 3 pm" is mentioned
  - day_part: morning, afternoon, evening or night if mentioned

Return only the JSON without explanation.`

const rankSystemPrompt = "You are a clip search system. Evaluate how relevant each clip is to the user's search query. " +
	"Return a JSON list of objects with id and score fields, where score is between 0 and 1."

const rankUserPrompt = `User search query: %q

Clips to evaluate:
%s

For each clip, assign a relevance score from 0.0 to 1.0, where:
- 1.0: perfect match to the query
- 0.7-0.9: strong match with most elements present
- 0.4-0.6: moderate match with some elements present
- 0.1-0.3: weak match with few elements present
- 0.0: no relevance to the query

Return only a JSON array of objects with "id" and "score" fields, sorted by score in descending order.`

// ExtractTerms asks the model for structured search terms
func (o *OpenAIOracle) ExtractTerms(ctx context.Context, query string, anchor time.Time) (*domain.ExtractedTerms, error) {
	prompt := fmt.Sprintf(extractUserPrompt,
		query,
		anchor.Format(domain.TimestampLayout),
		anchor.Weekday(),
		anchor.Year(),
	)

	content, err := o.complete(ctx, extractSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrExtractionFailed, err)
	}

	terms, err := parseExtraction(content)
	if err != nil {
		o.logger.Debug("unparseable extraction response", "content", content)
		return nil, fmt.Errorf("%w: %w", domain.ErrExtractionFailed, err)
	}
	return terms, nil
}

// RankCandidates asks the model to score every candidate and keeps the
// scores at or above threshold, sorted descending.
func (o *OpenAIOracle) RankCandidates(ctx context.Context, query string, candidates []domain.ScoreCandidate, threshold float64) ([]domain.CandidateScore, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	payload, err := json.Marshal(candidates)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRankingFailed, err)
	}

	content, err := o.complete(ctx, rankSystemPrompt, fmt.Sprintf(rankUserPrompt, query, payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRankingFailed, err)
	}

	scores, err := parseRanking(content)
	if err != nil {
		o.logger.Debug("unparseable ranking response", "content", content)
		return nil, fmt.Errorf("%w: %w", domain.ErrRankingFailed, err)
	}

	kept := scores[:0]
	for _, s := range scores {
		if s.Score >= threshold {
			kept = append(kept, s)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Score > kept[j].Score })
	return kept, nil
}

// Model returns the chat model name
func (o *OpenAIOracle) Model() string {
	return o.model
}

// Close releases resources. The HTTP client needs no cleanup.
func (o *OpenAIOracle) Close() error {
	return nil
}

func (o *OpenAIOracle) complete(ctx context.Context, system, user string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}

	start := time.Now()
	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrServiceUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion")
	}

	o.logger.Debug("chat completion",
		"model", o.model,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"took", time.Since(start),
	)
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// extractionWire is the loosely typed response shape. Models return null,
// strings or objects for the same field, so decoding is lenient.
type extractionWire struct {
	Keywords       []string `json:"keywords"`
	PrimaryObjects []string `json:"primary_objects"`
	Attributes     []string `json:"attributes"`
	Actions        []string `json:"actions"`
	TimeReferences *struct {
		SpecificDate flexString      `json:"specific_date"`
		SpecificTime flexString      `json:"specific_time"`
		RelativeTime flexString      `json:"relative_time"`
		TimePeriod   json.RawMessage `json:"time_period"`
		DayPart      flexString      `json:"day_part"`
	} `json:"time_references"`
}

func parseExtraction(content string) (*domain.ExtractedTerms, error) {
	raw, err := sliceJSON(content, '{', '}')
	if err != nil {
		return nil, err
	}

	var wire extractionWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("decode terms: %w", err)
	}

	terms := &domain.ExtractedTerms{
		Keywords:       wire.Keywords,
		PrimaryObjects: wire.PrimaryObjects,
		Attributes:     wire.Attributes,
		Actions:        wire.Actions,
	}
	if tr := wire.TimeReferences; tr != nil {
		terms.TimeReference = domain.TimeReference{
			SpecificDate: string(tr.SpecificDate),
			SpecificTime: string(tr.SpecificTime),
			RelativeTime: string(tr.RelativeTime),
			DayPart:      string(tr.DayPart),
			Period:       parsePeriod(tr.TimePeriod),
		}
	}
	return terms, nil
}

// parsePeriod accepts {"start": ..., "end": ...}; anything else is no period
func parsePeriod(raw json.RawMessage) *domain.TimePeriod {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil
	}
	var p struct {
		Start flexString `json:"start"`
		End   flexString `json:"end"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil
	}
	if p.Start == "" && p.End == "" {
		return nil
	}
	return &domain.TimePeriod{Start: string(p.Start), End: string(p.End)}
}

func parseRanking(content string) ([]domain.CandidateScore, error) {
	raw, err := sliceJSON(content, '[', ']')
	if err != nil {
		return nil, err
	}

	var wire []struct {
		ID    flexString `json:"id"`
		Score float64    `json:"score"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("decode scores: %w", err)
	}

	scores := make([]domain.CandidateScore, 0, len(wire))
	for _, w := range wire {
		if w.ID == "" {
			continue
		}
		scores = append(scores, domain.CandidateScore{ID: string(w.ID), Score: w.Score})
	}
	return scores, nil
}

// sliceJSON cuts the outermost open..close span out of a model reply,
// dropping any prose or code fences around it.
func sliceJSON(content string, opening, closing byte) ([]byte, error) {
	start := strings.IndexByte(content, opening)
	end := strings.LastIndexByte(content, closing)
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON %c...%c in response", opening, closing)
	}
	return []byte(content[start : end+1]), nil
}

// flexString decodes a JSON string, number or null into a string
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || string(data) == "null":
		*f = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
	default:
		if _, err := strconv.ParseFloat(string(data), 64); err != nil {
			// objects, arrays and booleans carry nothing usable
			*f = ""
			return nil
		}
		*f = flexString(data)
	}
	return nil
}
