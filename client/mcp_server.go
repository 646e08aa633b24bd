package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/Aashish23092/tax-form-engine/dto"
	"github.com/Aashish23092/tax-form-engine/logger"
	"github.com/Aashish23092/tax-form-engine/service"
)

const (
	ServerName    = "tax-form-engine"
	ServerVersion = "1.0.0"
)

// MCPServer exposes classification, extraction and calculation as MCP
// tools.
type MCPServer struct {
	taxService *service.TaxService
	loader     *service.DocumentLoader
	mcpServer  *server.MCPServer
	logger     *zap.Logger
}

func NewMCPServer(taxService *service.TaxService, loader *service.DocumentLoader, log *zap.Logger) (*MCPServer, error) {
	if taxService == nil || loader == nil {
		return nil, errors.New("tax service and loader are required")
	}

	s := &MCPServer{
		taxService: taxService,
		loader:     loader,
		mcpServer:  server.NewMCPServer(ServerName, ServerVersion, server.WithToolCapabilities(false)),
		logger:     logger.OrNop(log),
	}
	s.registerTools()
	return s, nil
}

func (s *MCPServer) registerTools() {
	classifyTool := mcp.NewTool(
		"classify_tax_document",
		mcp.WithDescription("Identify which IRS form (W-2 or a 1099 variant) a document is, with the scores behind the decision"),
		mcp.WithString("text", mcp.Description("Document text (plain, markdown or HTML)")),
		mcp.WithString("path", mcp.Description("Path to a .txt, .md, .html or .pdf file, used when text is empty")),
	)
	s.mcpServer.AddTool(classifyTool, s.handleClassify)

	extractTool := mcp.NewTool(
		"extract_tax_fields",
		mcp.WithDescription("Extract the canonical income and withholding fields of one tax document"),
		mcp.WithString("text", mcp.Description("Document text (plain, markdown or HTML)")),
		mcp.WithString("path", mcp.Description("Path to a .txt, .md, .html or .pdf file, used when text is empty")),
		mcp.WithString("key_values", mcp.Description("Optional JSON object of pre-extracted label/value pairs")),
	)
	s.mcpServer.AddTool(extractTool, s.handleExtract)

	calculateTool := mcp.NewTool(
		"calculate_tax",
		mcp.WithDescription("Aggregate tax documents and compute the 2024 federal tax, refund or amount due"),
		mcp.WithString("filing_status",
			mcp.Required(),
			mcp.Description("single, married_joint, married_separate, head_of_household or qualifying_surviving_spouse"),
		),
		mcp.WithString("documents", mcp.Description(`JSON array of documents: [{"filename":"w2.md","text":"...","key_values":{}}]`)),
		mcp.WithString("paths", mcp.Description("Comma-separated document file paths")),
		mcp.WithNumber("num_dependents", mcp.Description("Number of qualifying dependents")),
		mcp.WithString("education_credits", mcp.Description("Education credits amount")),
		mcp.WithString("earned_income_credit", mcp.Description("Earned income credit amount")),
		mcp.WithString("other_credits", mcp.Description("Other credits amount")),
	)
	s.mcpServer.AddTool(calculateTool, s.handleCalculate)
}

func (s *MCPServer) document(request mcp.CallToolRequest) (dto.RawDocument, error) {
	if text := request.GetString("text", ""); text != "" {
		return dto.RawDocument{Text: text}, nil
	}
	if path := request.GetString("path", ""); path != "" {
		return s.loader.LoadFile(path, "")
	}
	return dto.RawDocument{}, errors.New("either text or path is required")
}

func (s *MCPServer) handleClassify(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := s.document(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.taxService.Classify(doc))
}

func (s *MCPServer) handleExtract(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := s.document(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if raw := request.GetString("key_values", ""); raw != "" {
		if err := json.Unmarshal([]byte(raw), &doc.KeyValues); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("key_values must be a JSON object of strings: %v", err)), nil
		}
	}
	return jsonResult(s.taxService.ProcessDocument(doc))
}

func (s *MCPServer) handleCalculate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := request.RequireString("filing_status")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var docs []dto.RawDocument
	if raw := request.GetString("documents", ""); raw != "" {
		if err := json.Unmarshal([]byte(raw), &docs); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("documents must be a JSON array: %v", err)), nil
		}
	}
	for _, path := range strings.Split(request.GetString("paths", ""), ",") {
		if path = strings.TrimSpace(path); path == "" {
			continue
		}
		doc, err := s.loader.LoadFile(path, "")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		docs = append(docs, doc)
	}

	body := map[string]any{
		"documents":      docs,
		"filing_status":  status,
		"num_dependents": request.GetInt("num_dependents", 0),
	}
	for _, credit := range []string{"education_credits", "earned_income_credit", "other_credits"} {
		if v := strings.TrimSpace(request.GetString(credit, "")); v != "" {
			body[credit] = v
		}
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := service.ParseCalculationRequest(data)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := s.taxService.Calculate(ctx, req)
	if err != nil {
		s.logger.Warn("calculate_tax failed", zap.Error(err))
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(resp)
}

// ServeStdio blocks serving MCP over stdin/stdout.
func (s *MCPServer) ServeStdio() error {
	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(b)), nil
}
