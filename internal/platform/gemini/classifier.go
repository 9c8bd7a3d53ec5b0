package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/newslens/internal/classifier"
	"github.com/phrazzld/newslens/internal/config"
	"github.com/sethvargo/go-retry"
	"google.golang.org/genai"
)

// generateContentAPI is the part of the genai client the classifier uses.
type generateContentAPI interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Classifier scores text against label pairs with a Gemini model.
// It is safe for concurrent use.
type Classifier struct {
	logger      *slog.Logger
	api         generateContentAPI
	model       string
	temperature float32
	maxRetries  int
	baseDelay   time.Duration
}

// NewClassifier creates a Gemini-backed classifier.
func NewClassifier(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Classifier, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", ErrInvalidConfig, err)
	}

	return newClassifier(client.Models, logger, cfg)
}

func newClassifier(api generateContentAPI, logger *slog.Logger, cfg config.LLMConfig) (*Classifier, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", ErrInvalidConfig)
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		logger.Warn("invalid max retries value, using default", "max_retries", 3)
		maxRetries = 3
	}
	delaySeconds := cfg.RetryDelaySeconds
	if delaySeconds < 1 {
		logger.Warn("invalid retry delay value, using default", "base_delay_seconds", 2)
		delaySeconds = 2
	}

	return &Classifier{
		logger:      logger.With("component", "gemini_classifier", "model", cfg.ModelName),
		api:         api,
		model:       cfg.ModelName,
		temperature: cfg.Temperature,
		maxRetries:  maxRetries,
		baseDelay:   time.Duration(delaySeconds) * time.Second,
	}, nil
}

// Predict implements classifier.Classifier.
func (c *Classifier) Predict(ctx context.Context, text string, labels classifier.Labels) (classifier.Probabilities, error) {
	prompt, err := renderPrompt(text, labels)
	if err != nil {
		return classifier.Probabilities{}, err
	}

	backoff := retry.NewExponential(c.baseDelay)
	backoff = retry.WithJitterPercent(50, backoff)
	backoff = retry.WithMaxRetries(uint64(c.maxRetries), backoff)

	var (
		result   classifier.Probabilities
		attempts int
		lastErr  error
	)
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		p, err := c.generate(ctx, prompt)
		if err == nil {
			result = p
			return nil
		}

		lastErr = err
		if errors.Is(err, ErrContentBlocked) || errors.Is(err, ErrInvalidResponse) {
			c.logger.WarnContext(ctx, "permanent error from Gemini, not retrying",
				"attempt", attempts, "error", err)
			return err
		}

		c.logger.WarnContext(ctx, "Gemini call failed, will retry",
			"attempt", attempts,
			"max_attempts", c.maxRetries+1,
			"error", err)
		return retry.RetryableError(err)
	})
	if err != nil {
		if errors.Is(err, ErrContentBlocked) || errors.Is(err, ErrInvalidResponse) {
			return classifier.Probabilities{}, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return classifier.Probabilities{}, ctxErr
		}
		return classifier.Probabilities{}, fmt.Errorf("%w after %d attempts: %v", ErrTransientFailure, attempts, lastErr)
	}

	return result, nil
}

func (c *Classifier) generate(ctx context.Context, prompt string) (classifier.Probabilities, error) {
	temperature := c.temperature
	resp, err := c.api.GenerateContent(ctx, c.model,
		[]*genai.Content{{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		}},
		&genai.GenerateContentConfig{
			Temperature:      &temperature,
			ResponseMIMEType: "application/json",
			ResponseSchema:   responseSchema,
		},
	)
	if err != nil {
		return classifier.Probabilities{}, err
	}

	switch {
	case resp == nil:
		return classifier.Probabilities{}, fmt.Errorf("%w: nil response", ErrInvalidResponse)
	case len(resp.Candidates) == 0:
		return classifier.Probabilities{}, fmt.Errorf("%w: no content generated", ErrInvalidResponse)
	case resp.Candidates[0].FinishReason == genai.FinishReasonSafety:
		return classifier.Probabilities{}, ErrContentBlocked
	case resp.Candidates[0].Content == nil:
		return classifier.Probabilities{}, fmt.Errorf("%w: empty content in response", ErrInvalidResponse)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}

	var parsed ResponseSchema
	if err := json.Unmarshal([]byte(sb.String()), &parsed); err != nil {
		return classifier.Probabilities{}, fmt.Errorf("%w: failed to parse JSON response: %v", ErrInvalidResponse, err)
	}

	p, err := classifier.Normalize(parsed.Scores)
	if err != nil {
		return classifier.Probabilities{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return p, nil
}

var responseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"scores": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeNumber},
		},
	},
	Required: []string{"scores"},
}
