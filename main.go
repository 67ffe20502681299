package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"auto_seo_article_generator/config"
	"auto_seo_article_generator/generator"
	"auto_seo_article_generator/illustrate"
	"auto_seo_article_generator/mcp"
	"auto_seo_article_generator/pipeline"
	"auto_seo_article_generator/progress"
	"auto_seo_article_generator/server"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to config.yaml")
	requirements := flag.String("r", pipeline.DefaultRequirements, "article requirements")
	wordCount := flag.Int("w", pipeline.DefaultWordCount, "target word count")
	watermark := flag.String("m", "", "watermark text (default from config, \"-\" disables)")
	position := flag.String("position", "", "watermark position: bottom-right, bottom-left, top-right, top-left, center")
	withHTML := flag.Bool("html", false, "also write an HTML preview")
	verbose := flag.Bool("v", false, "enable debug logs")
	tui := flag.Bool("progress", false, "show an interactive progress view")
	serve := flag.Bool("serve", false, "start web server")
	addr := flag.String("addr", "", "http listen address when -serve (overrides config.server_addr)")
	mcpMode := flag.Bool("mcp", false, "serve MCP tools over stdio")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	// stdio 与进度界面占用终端，日志只写文件
	logger, err := newLogger(cfg.LogDir, *verbose, !*mcpMode && !*tui)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	p, err := buildPipeline(cfg, logger)
	if err != nil {
		logger.Error("setup failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case *mcpMode:
		logger.Info("serving MCP over stdio")
		if err := mcpserver.ServeStdio(mcp.NewServer(p)); err != nil {
			logger.Error("mcp server stopped", zap.Error(err))
			os.Exit(1)
		}
	case *serve:
		listen := cfg.ServerAddr
		if *addr != "" {
			listen = *addr
		}
		if listen == "" {
			listen = ":8080"
		}
		if err := runServer(ctx, p, cfg, listen, logger); err != nil {
			logger.Error("server stopped", zap.Error(err))
			os.Exit(1)
		}
	default:
		req := pipeline.Request{
			Requirements: *requirements,
			WordCount:    *wordCount,
			Watermark:    cfg.Watermark.Text,
			Position:     illustrate.Position(cfg.Watermark.Position),
			HTML:         *withHTML,
		}
		switch *watermark {
		case "":
		case "-":
			req.Watermark = ""
		default:
			req.Watermark = *watermark
		}
		if *position != "" {
			req.Position = illustrate.Position(*position)
		}
		if err := runOnce(ctx, p, req, *tui); err != nil {
			if !errors.Is(err, progress.ErrInterrupted) {
				logger.Error("generation failed", zap.Error(err))
			}
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}

func buildPipeline(cfg config.Config, logger *zap.Logger) (*pipeline.Pipeline, error) {
	llm, err := generator.NewLLM(cfg.LLMSettings())
	if err != nil {
		return nil, err
	}
	agent, err := generator.NewAgent(llm, cfg.RetryPolicy(), logger.Named("generator"))
	if err != nil {
		return nil, err
	}
	src, err := cfg.ImageSource()
	if err != nil {
		return nil, err
	}
	compositor := illustrate.NewCompositor(cfg.Watermark.FontPath, logger.Named("watermark"))
	il, err := illustrate.NewIllustrator(src, compositor, cfg.Image.Concurrency, logger.Named("illustrate"))
	if err != nil {
		return nil, err
	}
	return pipeline.New(pipeline.Options{
		Content:     agent,
		Illustrator: il,
		OutputDir:   cfg.OutputDir,
		Metrics:     pipeline.NewMetrics(prometheus.DefaultRegisterer),
		Logger:      logger.Named("pipeline"),
	})
}

func runOnce(ctx context.Context, p *pipeline.Pipeline, req pipeline.Request, tui bool) error {
	var (
		res pipeline.Result
		err error
	)
	if tui {
		res, err = progress.Run(ctx, func(ctx context.Context, obs pipeline.Observer) (pipeline.Result, error) {
			return p.Run(ctx, req, obs)
		})
	} else {
		res, err = p.Run(ctx, req, pipeline.ObserverFunc(func(e pipeline.Event) {
			if e.Status == pipeline.StatusRunning {
				fmt.Fprintf(os.Stderr, "[%3.0f%%] %s\n", e.Progress*100, e.Message)
			}
		}))
	}
	if err != nil {
		return err
	}
	fmt.Println(progress.RenderArticle(res.Text, 80))
	fmt.Println()
	fmt.Println(progress.RenderSummary(res))
	return nil
}

func runServer(ctx context.Context, p *pipeline.Pipeline, cfg config.Config, listen string, logger *zap.Logger) error {
	srv, err := server.New(p, server.Options{
		Watermark: &cfg.Watermark.Text,
		Position:  illustrate.Position(cfg.Watermark.Position),
		Logger:    logger.Named("server"),
	})
	if err != nil {
		return err
	}
	defer srv.Close()

	mux := http.NewServeMux()
	mux.Handle(mcp.DefaultEndpoint, mcp.NewHTTPServer(mcp.NewServer(p), mcp.DefaultEndpoint))
	mux.Handle("/", srv.Routes())

	hs := &http.Server{Addr: listen, Handler: mux}
	go func() {
		<-ctx.Done()
		_ = hs.Shutdown(context.Background())
	}()
	logger.Info("starting web server", zap.String("addr", listen), zap.String("mcp", mcp.DefaultEndpoint))
	if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
