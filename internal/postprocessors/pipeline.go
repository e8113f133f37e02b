// Package postprocessors turns a normalised document into indexable chunks
// by running named processors (text cleaning, chunking) in order.
package postprocessors

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/medibot/internal/core/domain"
	"github.com/custodia-labs/medibot/internal/core/ports/driven"
	"github.com/custodia-labs/medibot/internal/logger"
)

var _ driven.PostProcessorPipeline = (*Pipeline)(nil)

// Pipeline runs processors in order, each receiving the chunks of the one
// before. The first processor receives none.
type Pipeline struct {
	steps []driven.PostProcessor
}

func NewPipeline(steps ...driven.PostProcessor) *Pipeline {
	return &Pipeline{steps: steps}
}

// BuildPipeline builds the processors named in cfg from r.
func BuildPipeline(r *Registry, cfg domain.PipelineConfig) (*Pipeline, error) {
	if len(cfg.Processors) == 0 {
		return nil, errors.New("pipeline has no processors")
	}
	steps := make([]driven.PostProcessor, len(cfg.Processors))
	for i, name := range cfg.Processors {
		step, err := r.Build(name, cfg.GetProcessorConfig(name))
		if err != nil {
			return nil, err
		}
		steps[i] = step
	}
	return NewPipeline(steps...), nil
}

// Process chunks doc. Processors may rewrite doc in place; once one leaves
// it empty without chunks, the rest are skipped and no chunks are returned.
func (p *Pipeline) Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: nil document", domain.ErrInvalidInput)
	}

	var chunks []domain.Chunk
	for _, step := range p.steps {
		out, err := step.Process(ctx, doc, chunks)
		if err != nil {
			return nil, fmt.Errorf("%s on %s: %w", step.Name(), doc.URI, err)
		}
		if len(out) == 0 && doc.IsEmpty() {
			logger.Debug("%s left nothing of %s", step.Name(), doc.URI)
			return nil, nil
		}
		chunks = out
	}
	return chunks, nil
}

// Names lists the processors in run order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
