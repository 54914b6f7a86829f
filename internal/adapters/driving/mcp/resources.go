package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/kyc-onboard/internal/core/services"
)

const (
	// uriScheme is the custom URI scheme for kyc resources.
	uriScheme = "kyc://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing cases.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "cases",
		Name:        "cases",
		Description: "Client ids of all stored cases",
		MIMEType:    "application/json",
	}, s.handleCasesResource)

	// Template for a single case.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "cases/{clientId}",
		Name:        "case",
		Description: "Full case output of a stored case including its review session",
		MIMEType:    "application/json",
	}, s.handleCaseResource)
}

// handleCasesResource returns the ids of all stored cases.
func (s *Server) handleCasesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	ids := []string{}
	if s.ports.Review != nil {
		cases, err := s.ports.Review.Cases(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing cases: %w", err)
		}
		ids = append(ids, cases...)
	}

	data, err := json.MarshalIndent(ids, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling cases: %w", err)
	}
	return jsonResource(req.Params.URI, data), nil
}

// handleCaseResource returns the case output for kyc://cases/{clientId}.
func (s *Server) handleCaseResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Review == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	clientID := extractClientID(req.Params.URI)
	if clientID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	rc, err := s.ports.Review.Open(ctx, clientID)
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	data, err := json.MarshalIndent(services.CaseOutputFrom(rc.Checkpoint, rc.Session, time.Now()), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling case: %w", err)
	}
	return jsonResource(req.Params.URI, data), nil
}

func jsonResource(uri string, data []byte) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}
}

// extractClientID extracts the client ID from a URI like kyc://cases/{clientId}.
func extractClientID(uri string) string {
	const prefix = uriScheme + "cases/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
