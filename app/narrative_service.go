package app

import (
	"context"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"brokersum/domain/broker"
	"brokersum/internal"
	"brokersum/internal/errors"
	"brokersum/ports"
)

// NarrativeRequest selects the measure and window to narrate. Dates are
// raw query strings; empty values default like the summary endpoint.
type NarrativeRequest struct {
	Field string `json:"field"`
	From  string `json:"from"`
	To    string `json:"to"`
}

// NarrativeResult carries the digest that was sent to the model, the
// model's summary, and the summary rendered to HTML.
type NarrativeResult struct {
	Digest  string `json:"digest"`
	Summary string `json:"summary"`
	HTML    string `json:"html"`
}

// NarrativeService turns a reporting window into a natural-language
// market summary via the hosted model. A nil summarizer means no token
// was configured; requests then fail with an external-service error.
type NarrativeService struct {
	cache      *DatasetCache
	summaries  *SummaryService
	summarizer ports.Summarizer
	log        *internal.Logger
}

// NewNarrativeService wires the narrative pipeline.
func NewNarrativeService(cache *DatasetCache, summaries *SummaryService, summarizer ports.Summarizer) *NarrativeService {
	return &NarrativeService{
		cache:      cache,
		summaries:  summaries,
		summarizer: summarizer,
		log:        internal.DefaultLogger.WithComponent("NarrativeService"),
	}
}

// Narrate builds the statistical digest for the window and asks the
// hosted model to summarize it.
func (s *NarrativeService) Narrate(ctx context.Context, req NarrativeRequest) (*NarrativeResult, error) {
	if s.summarizer == nil {
		return nil, errors.New(errors.CodeExternalService, "summarization is not configured, set HF_TOKEN")
	}

	ds, err := s.cache.Get(ctx)
	if err != nil {
		return nil, err
	}
	if ds.IsEmpty() {
		return nil, errors.NotFound("broker data")
	}

	field := broker.FieldValue
	if req.Field != "" {
		if field, err = broker.ParseField(req.Field); err != nil {
			return nil, errors.InvalidInput(err.Error())
		}
	}
	from, to, err := s.summaries.resolveWindow(ds, req.From, req.To)
	if err != nil {
		return nil, err
	}

	digest, err := buildDigest(ds, field, from, to)
	if err != nil {
		return nil, errors.InvalidInput(err.Error())
	}

	s.log.Info("Requesting summary for %s window %s to %s", field, from.Format("2006-01-02"), to.Format("2006-01-02"))
	summary, err := s.summarizer.Summarize(ctx, digest)
	if err != nil {
		return nil, errors.ExternalServiceError("summarization", err)
	}

	return &NarrativeResult{
		Digest:  digest,
		Summary: summary,
		HTML:    renderMarkdown(summary),
	}, nil
}

// renderMarkdown converts model output to HTML for direct embedding.
func renderMarkdown(text string) string {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return string(markdown.ToHTML([]byte(text), p, renderer))
}
