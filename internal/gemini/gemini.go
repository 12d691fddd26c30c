// Package gemini wraps the Gemini API behind the generation operations the
// application needs: streamed article text, grounded search, video and web
// summaries, document answers, image analysis and translation, plus one-shot
// diagram rendering.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/jama7777/Inifinite-wiki/internal/session"
)

// Sentinel errors for generation operations.
var (
	// ErrEmptyResponse indicates the model finished without producing text.
	ErrEmptyResponse = errors.New("model returned empty response")

	// ErrNoImage indicates image generation finished without an image.
	ErrNoImage = errors.New("model returned no image")
)

// Event is one unit of streamed generation output. Exactly one field is
// set. The producing goroutine closes the channel after the final event;
// a closed channel with no Err event means the generation completed.
type Event struct {
	// Delta is an incremental piece of article text.
	Delta string

	// Sources carries web citations once grounding metadata arrives.
	Sources []session.Source

	// Err terminates the stream with a failure.
	Err error
}

// Config contains all required parameters for the Service.
type Config struct {
	APIKey      string
	TextModel   string // streamed text generation
	VisionModel string // document, image and video analysis
	ImageModel  string // diagram rendering
	Logger      *slog.Logger
}

// validate checks if all required parameters are present.
func (cfg Config) validate() error {
	if cfg.APIKey == "" {
		return errors.New("api key is required")
	}
	if cfg.TextModel == "" {
		return errors.New("text model is required")
	}
	if cfg.VisionModel == "" {
		return errors.New("vision model is required")
	}
	if cfg.ImageModel == "" {
		return errors.New("image model is required")
	}
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	return nil
}

// Service executes generation requests against the Gemini API.
// It is stateless and safe for concurrent use.
type Service struct {
	client      *genai.Client
	textModel   string
	visionModel string
	imageModel  string
	logger      *slog.Logger
}

// New creates a Service with required configuration.
func New(ctx context.Context, cfg Config) (*Service, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	cfg.Logger.Debug("gemini service initialized",
		"text_model", cfg.TextModel,
		"vision_model", cfg.VisionModel,
		"image_model", cfg.ImageModel,
	)

	return &Service{
		client:      client,
		textModel:   cfg.TextModel,
		visionModel: cfg.VisionModel,
		imageModel:  cfg.ImageModel,
		logger:      cfg.Logger,
	}, nil
}

// stream launches a streaming generation and fans its chunks into an Event
// channel. The channel is closed when the stream ends, for any reason.
func (s *Service) stream(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) <-chan Event {
	out := make(chan Event, 16)
	go func() {
		defer close(out)

		sawText := false
		sentSources := false
		for resp, err := range s.client.Models.GenerateContentStream(ctx, model, contents, config) {
			if err != nil {
				out <- Event{Err: fmt.Errorf("streaming from %s: %w", model, err)}
				return
			}
			if text := resp.Text(); text != "" {
				sawText = true
				select {
				case out <- Event{Delta: text}:
				case <-ctx.Done():
					out <- Event{Err: ctx.Err()}
					return
				}
			}
			if !sentSources {
				if sources := extractSources(resp); len(sources) > 0 {
					sentSources = true
					out <- Event{Sources: sources}
				}
			}
		}
		if !sawText {
			if err := ctx.Err(); err != nil {
				out <- Event{Err: err}
				return
			}
			out <- Event{Err: ErrEmptyResponse}
		}
	}()
	return out
}

// generate runs a one-shot (non-streaming) request and returns the full
// text plus any grounding citations.
func (s *Service) generate(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (string, []session.Source, error) {
	resp, err := s.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return "", nil, fmt.Errorf("generating with %s: %w", model, err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", nil, ErrEmptyResponse
	}
	return text, extractSources(resp), nil
}

// extractSources converts grounding metadata into web citations. Chunks
// without a URI are dropped here so nothing downstream has to re-validate.
func extractSources(resp *genai.GenerateContentResponse) []session.Source {
	if len(resp.Candidates) == 0 {
		return nil
	}
	md := resp.Candidates[0].GroundingMetadata
	if md == nil {
		return nil
	}
	var out []session.Source
	seen := make(map[string]bool)
	for _, chunk := range md.GroundingChunks {
		if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" {
			continue
		}
		if seen[chunk.Web.URI] {
			continue
		}
		seen[chunk.Web.URI] = true
		title := chunk.Web.Title
		if title == "" {
			title = chunk.Web.URI
		}
		out = append(out, session.Source{URI: chunk.Web.URI, Title: title})
	}
	return out
}

// systemConfig builds the shared generation config with the article system
// instruction for the given output language.
func systemConfig(language string) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(articleSystem(language), genai.RoleUser),
	}
}
