// Package mcp exposes the classifier, redactor and scanner as MCP tools so
// assistants can sanitize terminal output before reading it.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	gomcp "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bimmerbailey/logshare/internal/detect"
	"github.com/bimmerbailey/logshare/internal/redact"
)

// LogServer wraps the MCP server with the log pipeline.
type LogServer struct {
	classifier *detect.Classifier
	redactor   *redact.Redactor
	server     *server.MCPServer
	handlers   map[string]server.ToolHandlerFunc
}

// NewLogServer creates an MCP server with every tool registered. A nil
// classifier or redactor uses the built-in one.
func NewLogServer(version string, c *detect.Classifier, r *redact.Redactor) *LogServer {
	if c == nil {
		c = detect.Default()
	}
	if r == nil {
		r = redact.Default()
	}

	s := &LogServer{
		classifier: c,
		redactor:   r,
		server:     server.NewMCPServer("logshare", version),
		handlers:   make(map[string]server.ToolHandlerFunc),
	}
	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP server instance.
func (s *LogServer) MCPServer() *server.MCPServer {
	return s.server
}

func contentArg() gomcp.ToolOption {
	return gomcp.WithString("content",
		gomcp.Required(),
		gomcp.Description("Raw terminal output"),
	)
}

func (s *LogServer) registerTools() {
	s.addTool("classify_log",
		gomcp.NewTool("classify_log",
			gomcp.WithDescription("Detect which tool or framework produced a piece of terminal output"),
			contentArg(),
		),
		s.handleClassify,
	)

	s.addTool("redact_log",
		gomcp.NewTool("redact_log",
			gomcp.WithDescription("Replace secrets, emails, IPs, paths and keys in terminal output with [REDACTED_*] markers"),
			contentArg(),
		),
		s.handleRedact,
	)

	s.addTool("scan_log",
		gomcp.NewTool("scan_log",
			gomcp.WithDescription("List the kinds of sensitive data present in terminal output without changing it"),
			contentArg(),
		),
		s.handleScan,
	)
}

func (s *LogServer) addTool(name string, tool gomcp.Tool, handler server.ToolHandlerFunc) {
	s.handlers[name] = handler
	s.server.AddTool(tool, handler)
}

// classification is the classify_log result.
type classification struct {
	Context  string         `json:"context"`
	Language string         `json:"language"`
	Scores   []detect.Score `json:"scores"`
}

func (s *LogServer) handleClassify(_ context.Context, req gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return gomcp.NewToolResultError(err.Error()), nil
	}

	label := s.classifier.Classify(content)
	scores := s.classifier.Scores(content)
	if scores == nil {
		scores = []detect.Score{}
	}
	return jsonResult(classification{
		Context:  label,
		Language: detect.Language(label),
		Scores:   scores,
	})
}

func (s *LogServer) handleRedact(_ context.Context, req gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return gomcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.redactor.Redact(content))
}

func (s *LogServer) handleScan(_ context.Context, req gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return gomcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(redact.Scan(content))
}

func jsonResult(v any) (*gomcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return gomcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return gomcp.NewToolResultText(string(data)), nil
}
