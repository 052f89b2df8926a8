package server

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const reportURIPrefix = "sysscope://reports/"

func (s *Server) registerResources() {
	s.server.AddResourceTemplate(
		&mcp.ResourceTemplate{
			URITemplate: "sysscope://reports/{+id}",
			Name:        "sysscope-reports",
			Description: "Generated diagnostic reports. Use the sysscope_reports tool to list and search, then read a specific report via this resource.",
			MIMEType:    "text/markdown",
		},
		func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			uri := req.Params.URI
			if !strings.HasPrefix(uri, reportURIPrefix) {
				return nil, mcp.ResourceNotFoundError(uri)
			}

			r, err := s.store.Get(ctx, strings.TrimPrefix(uri, reportURIPrefix))
			if err != nil {
				return nil, mcp.ResourceNotFoundError(uri)
			}

			return &mcp.ReadResourceResult{
				Contents: []*mcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     r.Content,
				}},
			}, nil
		},
	)
}
