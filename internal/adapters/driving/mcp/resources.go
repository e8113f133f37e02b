package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/medibot/internal/core/domain"
)

const uriScheme = "medibot://"

// documentInfo is the listing entry for one ingested document.
type documentInfo struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	URI        string    `json:"uri"`
	Provenance string    `json:"provenance"`
	Chunks     int       `json:"chunks"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "sources",
		Name:        "sources",
		Description: "Documents ingested from the trusted medical sources",
		MIMEType:    "application/json",
	}, s.handleSourcesResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "sources/{provenance}",
		Name:        "sources-by-kind",
		Description: "Documents of one source kind: pdf, trusted_web or csv",
		MIMEType:    "application/json",
	}, s.handleSourcesResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "documents/{documentId}",
		Name:        "document-content",
		Description: "Cleaned text of one ingested document",
		MIMEType:    "text/plain",
	}, s.handleDocumentContentResource)
}

// handleSourcesResource lists catalog documents, optionally of one kind.
func (s *Server) handleSourcesResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	if s.ports.Catalog == nil {
		return textResult(req.Params.URI, "application/json", "[]"), nil
	}

	provenance, ok := extractProvenance(req.Params.URI)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	docs, err := s.ports.Catalog.ListDocuments(ctx, provenance)
	if errors.Is(err, domain.ErrInvalidInput) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	infos := make([]documentInfo, len(docs))
	for i, d := range docs {
		infos[i] = documentInfo{
			ID:         d.ID,
			Title:      d.Title,
			URI:        d.URI,
			Provenance: string(d.Provenance),
			Chunks:     d.Chunks,
			UpdatedAt:  d.UpdatedAt,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling documents: %w", err)
	}
	return textResult(req.Params.URI, "application/json", string(data)), nil
}

func (s *Server) handleDocumentContentResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := req.Params.URI
	id := extractDocumentID(uri)
	if s.ports.Catalog == nil || id == "" {
		return nil, mcp.ResourceNotFoundError(uri)
	}

	doc, err := s.ports.Catalog.GetDocument(ctx, id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil, mcp.ResourceNotFoundError(uri)
	case err != nil:
		return nil, fmt.Errorf("getting document: %w", err)
	}
	return textResult(uri, "text/plain", doc.Content), nil
}

func textResult(uri, mimeType, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{URI: uri, MIMEType: mimeType, Text: text}},
	}
}

// extractProvenance reads the kind from medibot://sources or
// medibot://sources/{provenance}. The bare form yields "" for all kinds.
func extractProvenance(uri string) (domain.Provenance, bool) {
	const base = uriScheme + "sources"

	if uri == base {
		return "", true
	}
	rest, ok := strings.CutPrefix(uri, base+"/")
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return domain.Provenance(rest), true
}

func extractDocumentID(uri string) string {
	id, _ := strings.CutPrefix(uri, uriScheme+"documents/")
	if id == uri {
		return ""
	}
	return id
}
