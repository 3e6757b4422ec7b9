package deepgram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
	"unicode/utf8"

	"LovePulse/internal/domain/models"
	drepo "LovePulse/internal/domain/repository"
	applogger "LovePulse/pkg/logger"
)

// Client implements a Transcriber backed by the Deepgram prerecorded API.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	httpc   *http.Client
	logger  *applogger.Logger
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpc = hc }
}

// WithLogger sets the structured logger.
func WithLogger(l *applogger.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Deepgram-backed Transcriber.
func New(apiKey, baseURL, model string, timeout time.Duration, opts ...Option) drepo.Transcriber {
	c := &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		httpc:   &http.Client{Timeout: timeout},
		logger:  applogger.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) richParams() url.Values {
	v := url.Values{}
	v.Set("model", c.model)
	v.Set("punctuate", "true")
	v.Set("smart_format", "true")
	v.Set("diarize", "true")
	v.Set("utterances", "true")
	v.Set("sentiment", "true")
	v.Set("intents", "true")
	v.Set("topics", "true")
	v.Set("detect_language", "true")
	return v
}

func (c *Client) minimalParams() url.Values {
	v := url.Values{}
	v.Set("model", c.model)
	v.Set("punctuate", "true")
	v.Set("smart_format", "true")
	v.Set("diarize", "true")
	v.Set("utterances", "true")
	return v
}

// Transcribe sends the audio with the full feature set and falls back to a
// minimal parameter set when the provider rejects the rich request. A failure
// of both attempts surfaces as a TranscriptionError.
func (c *Client) Transcribe(ctx context.Context, audio []byte, contentType string) (*models.TranscriptionResult, error) {
	if c.apiKey == "" {
		return nil, &models.TranscriptionError{Message: "transcription provider credentials are not configured"}
	}
	if len(audio) == 0 {
		return nil, &models.TranscriptionError{Message: "empty audio payload"}
	}

	res, status, err := c.listen(ctx, audio, contentType, c.richParams())
	if err == nil {
		return res, nil
	}
	if status < 400 || status >= 500 {
		return nil, err
	}

	c.logger.Warn("rich transcription request rejected, retrying minimal",
		applogger.Int("status", status),
		applogger.Error(err),
	)

	res, _, err = c.listen(ctx, audio, contentType, c.minimalParams())
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) listen(ctx context.Context, audio []byte, contentType string, params url.Values) (*models.TranscriptionResult, int, error) {
	endpoint := fmt.Sprintf("%s/v1/listen?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(audio))
	if err != nil {
		return nil, 0, &models.TranscriptionError{Message: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("Authorization", "Token "+c.apiKey)
	if contentType == "" {
		contentType = "audio/webm"
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, 0, &models.TranscriptionError{Message: fmt.Sprintf("transcription request failed: %v", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, resp.StatusCode, &models.TranscriptionError{Message: fmt.Sprintf("read response: %v", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, &models.TranscriptionError{
			Message: fmt.Sprintf("provider returned %d: %s", resp.StatusCode, truncate(string(body), 300)),
		}
	}

	var dg dgResponse
	if err := json.Unmarshal(body, &dg); err != nil {
		return nil, resp.StatusCode, &models.TranscriptionError{Message: fmt.Sprintf("decode response: %v", err)}
	}

	return dg.toResult(), resp.StatusCode, nil
}

// truncate shortens to n runes without splitting a multi-byte character.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

type dgResponse struct {
	Metadata struct {
		Warnings []struct {
			Parameter string `json:"parameter"`
			Type      string `json:"type"`
			Message   string `json:"message"`
		} `json:"warnings"`
	} `json:"metadata"`
	Results struct {
		Channels []struct {
			DetectedLanguage string `json:"detected_language"`
			Alternatives     []struct {
				Transcript string `json:"transcript"`
			} `json:"alternatives"`
		} `json:"channels"`
		Utterances []struct {
			Speaker    int     `json:"speaker"`
			Transcript string  `json:"transcript"`
			Start      float64 `json:"start"`
			End        float64 `json:"end"`
		} `json:"utterances"`
		Sentiments *struct {
			Segments []struct {
				Text           string  `json:"text"`
				Sentiment      string  `json:"sentiment"`
				SentimentScore float64 `json:"sentiment_score"`
			} `json:"segments"`
			Average *struct {
				Sentiment      string  `json:"sentiment"`
				SentimentScore float64 `json:"sentiment_score"`
			} `json:"average"`
		} `json:"sentiments"`
		Intents *struct {
			Segments []struct {
				Text    string `json:"text"`
				Intents []struct {
					Intent          string  `json:"intent"`
					ConfidenceScore float64 `json:"confidence_score"`
				} `json:"intents"`
			} `json:"segments"`
		} `json:"intents"`
	} `json:"results"`
}

func (d *dgResponse) toResult() *models.TranscriptionResult {
	res := &models.TranscriptionResult{}

	if len(d.Results.Channels) > 0 {
		ch := d.Results.Channels[0]
		res.DetectedLanguage = ch.DetectedLanguage
		if len(ch.Alternatives) > 0 {
			res.Transcript = ch.Alternatives[0].Transcript
		}
	}

	for _, u := range d.Results.Utterances {
		res.Utterances = append(res.Utterances, models.Utterance{
			Speaker: u.Speaker,
			Text:    u.Transcript,
			Start:   u.Start,
			End:     u.End,
		})
	}

	if d.Results.Sentiments != nil {
		for _, s := range d.Results.Sentiments.Segments {
			res.SentimentSegments = append(res.SentimentSegments, models.SentimentSegment{
				Text:           s.Text,
				Sentiment:      s.Sentiment,
				SentimentScore: s.SentimentScore,
			})
		}
		if avg := d.Results.Sentiments.Average; avg != nil {
			res.SentimentAverage = &models.SentimentAverage{
				Sentiment:      avg.Sentiment,
				SentimentScore: avg.SentimentScore,
			}
		}
	}

	if d.Results.Intents != nil {
		for _, seg := range d.Results.Intents.Segments {
			is := models.IntentSegment{Text: seg.Text}
			for _, in := range seg.Intents {
				is.Intents = append(is.Intents, models.Intent{
					Intent:          in.Intent,
					ConfidenceScore: in.ConfidenceScore,
				})
			}
			res.IntentSegments = append(res.IntentSegments, is)
		}
	}

	for _, w := range d.Metadata.Warnings {
		res.Warnings = append(res.Warnings, models.TranscriptionWarning{
			Parameter: w.Parameter,
			Type:      w.Type,
			Message:   w.Message,
		})
	}

	return res
}
