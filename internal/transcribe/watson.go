package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const recognizePath = "/v1/recognize"

// ErrEmptyTranscript is returned when Watson answers successfully but the
// joined transcript is empty or whitespace-only (silent or inaudible audio).
var ErrEmptyTranscript = errors.New("watson returned an empty transcript")

// wavFallbackTypes are tried in order when a WAV-labelled payload is rejected
// as untranscodable. Browser recorders commonly produce WebM/Ogg and upload
// it declared as audio/wav.
var wavFallbackTypes = []string{
	"audio/webm",
	"audio/webm;codecs=opus",
	"audio/ogg;codecs=opus",
	"audio/mp4",
	"audio/mpeg",
}

// WatsonClient calls the IBM Watson Speech to Text /v1/recognize endpoint.
// Implements the Provider interface.
type WatsonClient struct {
	apiKey  string
	baseURL string
	model   string // e.g. "es-ES_BroadbandModel"
	timeout time.Duration
	client  *http.Client
}

// watsonResponse is the JSON response from the Watson recognize API.
type watsonResponse struct {
	ResultIndex int            `json:"result_index"`
	Results     []watsonResult `json:"results"`
}

// watsonResult is one result block; Watson splits long audio into several.
type watsonResult struct {
	Final        bool                `json:"final"`
	Alternatives []watsonAlternative `json:"alternatives"`
}

type watsonAlternative struct {
	Transcript string  `json:"transcript"`
	Confidence float64 `json:"confidence"`
}

// NewWatsonClient creates a new Watson STT client. The API key is an IAM
// key sent as basic auth ("apikey" user), which is what Watson service
// credentials expect.
func NewWatsonClient(baseURL, apiKey, model string, timeout time.Duration) *WatsonClient {
	return &WatsonClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}
}

// Name returns the provider name.
func (wc *WatsonClient) Name() string { return "watson" }

// Model returns the configured model identifier.
func (wc *WatsonClient) Model() string { return wc.model }

// Recognize sends audio bytes to Watson STT and returns the transcript.
// A WAV-labelled payload that Watson rejects as untranscodable (or that
// yields no results) is retried under the fallback content types; any
// other failure propagates immediately, with no retry.
func (wc *WatsonClient) Recognize(ctx context.Context, audio []byte, contentType string) (*Result, error) {
	tryTypes := []string{contentType}
	if strings.Contains(strings.ToLower(contentType), "wav") {
		tryTypes = append(tryTypes, wavFallbackTypes...)
	}

	var lastErr error
	for _, ct := range tryTypes {
		res, err := wc.recognize(ctx, audio, ct)
		if err == nil {
			return res, nil
		}
		lastErr = err
		if !isTranscodeError(err) && !errors.Is(err, ErrEmptyTranscript) {
			return nil, err
		}
	}
	return nil, lastErr
}

// recognize performs a single recognize call with one declared content type.
func (wc *WatsonClient) recognize(ctx context.Context, audio []byte, contentType string) (*Result, error) {
	u := fmt.Sprintf("%s%s?model=%s&smart_formatting=true", wc.baseURL, recognizePath, url.QueryEscape(wc.model))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(audio))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.SetBasicAuth("apikey", wc.apiKey)

	resp, err := wc.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("watson request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("watson API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result watsonResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	// Join the best alternative of every result block. Confidence is the
	// lowest block confidence, so a weak segment is visible in logs.
	var parts []string
	confidence := 0.0
	for _, r := range result.Results {
		if len(r.Alternatives) == 0 {
			continue
		}
		alt := r.Alternatives[0]
		if t := strings.TrimSpace(alt.Transcript); t != "" {
			parts = append(parts, t)
		}
		if confidence == 0 || alt.Confidence < confidence {
			confidence = alt.Confidence
		}
	}

	text := strings.Join(parts, " ")
	if text == "" {
		return nil, ErrEmptyTranscript
	}

	return &Result{Text: text, Confidence: confidence}, nil
}

// isTranscodeError reports whether err is Watson rejecting the container
// format ("unable to transcode data stream ..."), which is worth retrying
// under a different declared content type.
func isTranscodeError(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "transcode")
}
