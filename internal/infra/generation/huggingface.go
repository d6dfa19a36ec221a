package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const defaultRequestTimeout = 30 * time.Second

// HuggingFace implements TextProvider against the Hugging Face Inference API
// wire format.
type HuggingFace struct {
	cfg        ProviderConfig
	httpClient *http.Client

	Monitor *Monitor
}

// NewHuggingFace creates a Hugging Face provider. A zero timeout defaults to
// 30 seconds per request.
func NewHuggingFace(cfg ProviderConfig) *HuggingFace {
	if cfg.Name == "" {
		cfg.Name = "huggingface"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultRequestTimeout
	}
	if cfg.MaxNewTokens <= 0 {
		cfg.MaxNewTokens = 500
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.8
	}
	if cfg.TopP <= 0 {
		cfg.TopP = 0.9
	}

	return &HuggingFace{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		Monitor: NewMonitor(),
	}
}

// Name returns the configured provider name.
func (p *HuggingFace) Name() string {
	return p.cfg.Name
}

type generateRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters generateParameters `json:"parameters"`
}

type generateParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	TopP           float64 `json:"top_p"`
	DoSample       bool    `json:"do_sample"`
	ReturnFullText bool    `json:"return_full_text"`
	WaitForModel   bool    `json:"wait_for_model"`
}

type generateResponse struct {
	GeneratedText string `json:"generated_text"`
}

type errorResponse struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time"` // seconds
}

// Generate makes a single generation call. 503 responses carrying an
// estimated_time field become ModelLoadingError so the caller can honor the
// wait hint; 429 becomes RateLimitError.
func (p *HuggingFace) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()

	reqBody := generateRequest{
		Inputs: prompt,
		Parameters: generateParameters{
			MaxNewTokens:   p.cfg.MaxNewTokens,
			Temperature:    p.cfg.Temperature,
			TopP:           p.cfg.TopP,
			DoSample:       true,
			ReturnFullText: false,
			WaitForModel:   p.cfg.WaitForModel,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		p.Monitor.RecordFailure()
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.cfg.URL, bytes.NewReader(jsonData))
	if err != nil {
		p.Monitor.RecordFailure()
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+p.cfg.Token)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.Monitor.RecordFailure()
		return "", fmt.Errorf("generation call: %w", err)
	}
	defer resp.Body.Close()

	latency := time.Since(start)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		p.Monitor.RecordFailure()
		return "", fmt.Errorf("read response: %w", err)
	}

	// Cold start: the provider reports how long until the model is loaded.
	if resp.StatusCode == http.StatusServiceUnavailable {
		p.Monitor.RecordModelLoading()
		var errBody errorResponse
		if json.Unmarshal(body, &errBody) == nil && errBody.EstimatedTime > 0 {
			wait := time.Duration(errBody.EstimatedTime * float64(time.Second))
			return "", &ModelLoadingError{EstimatedWait: wait}
		}
		return "", &HTTPError{Status: resp.StatusCode, Body: snippet(body)}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		p.Monitor.RecordThrottle()
		var retryAfter time.Duration
		if header := resp.Header.Get("Retry-After"); header != "" {
			if secs, err := strconv.Atoi(header); err == nil {
				retryAfter = time.Duration(secs) * time.Second
			}
		}
		return "", &RateLimitError{RetryAfter: retryAfter}
	}

	if resp.StatusCode != http.StatusOK {
		p.Monitor.RecordFailure()
		return "", &HTTPError{Status: resp.StatusCode, Body: snippet(body)}
	}

	var results []generateResponse
	if err := json.Unmarshal(body, &results); err != nil {
		p.Monitor.RecordFailure()
		return "", &MalformedResponseError{Reason: "response is not a generation array"}
	}
	if len(results) == 0 {
		p.Monitor.RecordFailure()
		return "", &MalformedResponseError{Reason: "empty generation array"}
	}

	text := strings.TrimSpace(results[0].GeneratedText)
	if text == "" {
		p.Monitor.RecordFailure()
		return "", &MalformedResponseError{Reason: "empty generated_text field"}
	}

	p.Monitor.RecordSuccess(latency)
	return text, nil
}

func snippet(body []byte) string {
	const maxLen = 200
	s := string(body)
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
