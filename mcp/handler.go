// Package mcp 把文本处理阶段和完整生成流程暴露为 MCP 工具。
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"auto_seo_article_generator/illustrate"
	"auto_seo_article_generator/pipeline"
	"auto_seo_article_generator/seo"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const Version = "0.1.0"

// Runner 执行完整的生成流程。
type Runner interface {
	Run(ctx context.Context, req pipeline.Request, obs pipeline.Observer) (pipeline.Result, error)
}

type TextRequest struct {
	Text string `json:"text"` // 文章 Markdown
}

type OptimizeResponse struct {
	Text     string       `json:"text"`
	Metadata seo.Metadata `json:"metadata"`
}

type SelectResponse struct {
	Slots []illustrate.Slot `json:"slots"`
}

type GenerateRequest struct {
	Requirements string  `json:"requirements"`
	WordCount    int     `json:"word_count"`
	Watermark    *string `json:"watermark"`
	Position     string  `json:"position"`
}

type GenerateResponse struct {
	Title    string   `json:"title"`
	DOCX     string   `json:"docx"`
	Images   []string `json:"images"`
	Warnings []string `json:"warnings,omitempty"`
}

// NewServer creates the MCP server. generate_article 只在 runner 非 nil 时注册。
func NewServer(runner Runner) *server.MCPServer {
	s := server.NewMCPServer(
		"SEO Article MCP",
		Version,
		server.WithToolCapabilities(false),
	)

	textArg := mcp.WithString("text",
		mcp.Required(),
		mcp.Description("Article markdown"),
	)

	s.AddTool(mcp.NewTool("optimize_article",
		mcp.WithDescription("Rebalance keyword density, normalize headings and paragraphs, and embed SEO meta tags"),
		textArg,
	), mcp.NewTypedToolHandler(optimizeHandler))

	s.AddTool(mcp.NewTool("select_illustrations",
		mcp.WithDescription("Pick up to three paragraphs suitable for illustrations and return their prompts"),
		textArg,
	), mcp.NewTypedToolHandler(selectHandler))

	s.AddTool(mcp.NewTool("strip_metadata",
		mcp.WithDescription("Remove the embedded SEO meta tag block from an article"),
		textArg,
	), mcp.NewTypedToolHandler(stripHandler))

	if runner != nil {
		s.AddTool(mcp.NewTool("generate_article",
			mcp.WithDescription("Generate, optimize and illustrate an article, then write it as a .docx document"),
			mcp.WithString("requirements",
				mcp.Required(),
				mcp.Description("What the article should be about"),
			),
			mcp.WithNumber("word_count",
				mcp.Description("Target word count (default 1000)"),
			),
			mcp.WithString("watermark",
				mcp.Description("Watermark text; empty string disables the watermark"),
			),
			mcp.WithString("position",
				mcp.Description("Watermark position"),
				mcp.Enum("top-left", "top-right", "bottom-left", "bottom-right", "center"),
			),
		), mcp.NewTypedToolHandler(getGenerateHandler(runner)))
	}

	return s
}

func optimizeHandler(_ context.Context, _ mcp.CallToolRequest, args TextRequest) (*mcp.CallToolResult, error) {
	if args.Text == "" {
		return mcp.NewToolResultError("text is required"), nil
	}
	text := seo.Optimize(args.Text)
	meta, _ := seo.Decode(text)
	return jsonResult(OptimizeResponse{Text: text, Metadata: meta})
}

func selectHandler(_ context.Context, _ mcp.CallToolRequest, args TextRequest) (*mcp.CallToolResult, error) {
	slots := illustrate.Select(args.Text)
	if slots == nil {
		slots = []illustrate.Slot{}
	}
	return jsonResult(SelectResponse{Slots: slots})
}

func stripHandler(_ context.Context, _ mcp.CallToolRequest, args TextRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(seo.Extract(args.Text)), nil
}

func getGenerateHandler(runner Runner) func(ctx context.Context, request mcp.CallToolRequest, args GenerateRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args GenerateRequest) (*mcp.CallToolResult, error) {
		if args.Requirements == "" {
			return mcp.NewToolResultError("requirements is required"), nil
		}
		pos, err := illustrate.ParsePosition(args.Position)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		watermark := pipeline.DefaultWatermark
		if args.Watermark != nil {
			watermark = *args.Watermark
		}
		res, err := runner.Run(ctx, pipeline.Request{
			Requirements: args.Requirements,
			WordCount:    args.WordCount,
			Watermark:    watermark,
			Position:     pos,
		}, nil)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to generate article: %v", err)), nil
		}
		return jsonResult(GenerateResponse{
			Title:    res.Title,
			DOCX:     res.Files.DOCX,
			Images:   res.Images,
			Warnings: res.Warnings,
		})
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	responseBytes, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseBytes)), nil
}
