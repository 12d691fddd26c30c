package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/jama7777/Inifinite-wiki/internal/session"
)

// StreamDefinition streams a hypertext-style encyclopedia article for a
// topic. section > 0 requests a continuation of the article.
func (s *Service) StreamDefinition(ctx context.Context, topic string, section int, language string) <-chan Event {
	return s.stream(ctx, s.textModel, genai.Text(definitionPrompt(topic, section)), systemConfig(language))
}

// Search answers a query grounded in live web search. One-shot: the text
// and its citations are returned atomically.
func (s *Service) Search(ctx context.Context, query, language string) (string, []session.Source, error) {
	config := systemConfig(language)
	config.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	text, sources, err := s.generate(ctx, s.textModel, genai.Text(searchPrompt(query)), config)
	if err != nil {
		return "", nil, fmt.Errorf("search %q: %w", query, err)
	}
	return text, sources, nil
}

// StreamVideoSummary streams a structured summary of a YouTube video.
func (s *Service) StreamVideoSummary(ctx context.Context, url, language string) <-chan Event {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromURI(url, "video/mp4"),
			genai.NewPartFromText(videoPrompt()),
		}, genai.RoleUser),
	}
	return s.stream(ctx, s.visionModel, contents, systemConfig(language))
}

// StreamWebResource streams a readable rendition of one section of a
// fetched web page. The page text is supplied by the caller; section
// selects which slice of the article to present.
func (s *Service) StreamWebResource(ctx context.Context, url, title, pageText string, section int, language string) <-chan Event {
	return s.stream(ctx, s.textModel,
		genai.Text(webResourcePrompt(url, title, pageText, section)),
		systemConfig(language))
}

// StreamDocumentAnswer streams an answer to a query about an attached
// document. Text documents travel as inline context; binary documents
// (scanned PDFs and the like) travel as raw parts for the vision model.
// withSearch additionally grounds the answer in live web search.
func (s *Service) StreamDocumentAnswer(ctx context.Context, doc session.Document, query, language string, withSearch bool) <-chan Event {
	config := systemConfig(language)
	if withSearch {
		config.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	if doc.IsBinary() {
		contents := []*genai.Content{
			genai.NewContentFromParts([]*genai.Part{
				genai.NewPartFromBytes(doc.Binary, doc.MIME),
				genai.NewPartFromText(documentPrompt(doc.Name, "", query)),
			}, genai.RoleUser),
		}
		return s.stream(ctx, s.visionModel, contents, config)
	}

	return s.stream(ctx, s.textModel,
		genai.Text(documentPrompt(doc.Name, doc.Text, query)), config)
}

// StreamImageAnalysis streams an analysis of an attached image. query may
// be empty, in which case a general description is produced.
func (s *Service) StreamImageAnalysis(ctx context.Context, data []byte, mime, query, language string) <-chan Event {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(data, mime),
			genai.NewPartFromText(imagePrompt(query)),
		}, genai.RoleUser),
	}
	return s.stream(ctx, s.visionModel, contents, systemConfig(language))
}

// StreamTranslation streams a translation of text into the target
// language, preserving markup and diagram markers verbatim.
func (s *Service) StreamTranslation(ctx context.Context, text, language string) <-chan Event {
	// Translation replaces content verbatim, so the article system
	// instruction is deliberately omitted.
	return s.stream(ctx, s.textModel, genai.Text(translationPrompt(text, language)), nil)
}

// GenerateDiagram renders one diagram prompt into an encoded raster image.
func (s *Service) GenerateDiagram(ctx context.Context, prompt string) ([]byte, error) {
	resp, err := s.client.Models.GenerateImages(ctx, s.imageModel, diagramPrompt(prompt), &genai.GenerateImagesConfig{
		NumberOfImages: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("generating diagram: %w", err)
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil || len(resp.GeneratedImages[0].Image.ImageBytes) == 0 {
		return nil, ErrNoImage
	}
	return resp.GeneratedImages[0].Image.ImageBytes, nil
}
