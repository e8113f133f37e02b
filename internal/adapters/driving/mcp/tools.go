package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/medibot/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the medical question to answer"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer   string          `json:"answer"`
	Outcome  string          `json:"outcome"`
	Matches  int             `json:"matches"`
	Keywords []string        `json:"keywords,omitempty"`
	Sources  []PassageOutput `json:"sources,omitempty"`
}

// PassageOutput describes one retrieved passage.
type PassageOutput struct {
	Title      string  `json:"title,omitempty"`
	URI        string  `json:"uri,omitempty"`
	Provenance string  `json:"provenance"`
	Score      float64 `json:"score"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "ask",
		Description: "Answer a medical question from trusted sources only. " +
			"Returns a refusal when the indexed sources do not cover the question.",
	}, s.handleAsk)
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Ask.Ask(ctx, input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer:   answer.Text,
		Outcome:  string(answer.Outcome),
		Matches:  answer.Matches,
		Keywords: answer.Keywords,
	}
	// Passages behind a refusal did not support an answer, so they are
	// not reported as sources.
	if answer.Outcome == domain.OutcomeAnswered {
		output.Sources = make([]PassageOutput, len(answer.Passages))
		for i, p := range answer.Passages {
			output.Sources[i] = PassageOutput{
				Title:      p.Title(),
				URI:        p.URI(),
				Provenance: string(p.Provenance),
				Score:      p.Score,
			}
		}
	}

	return nil, output, nil
}
