package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/elsayed85/quick-rag/internal/config"
	"github.com/elsayed85/quick-rag/internal/logging"
	"github.com/elsayed85/quick-rag/internal/metrics"
	"github.com/elsayed85/quick-rag/internal/server"
	"github.com/elsayed85/quick-rag/internal/service"
	"github.com/elsayed85/quick-rag/internal/tui"
)

const usage = `Usage: rag <command> [--config=config.yaml] [args]

Commands:
  ingest <paths...>      index .txt files (form feed separates pages)
  ask "<question>"       answer one question and print it; --docs ingests first
  chat [paths...]        interactive chat; ingests paths first if given
  serve [paths...]       HTTP API; ingests paths first if given
`

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	cmd, args := os.Args[1], os.Args[2:]

	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	var cfgPath string
	var noSources bool
	var docs string
	fs.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/rag/config.yaml if not provided)")
	fs.BoolVar(&noSources, "no-sources", false, "ask: do not print sources")
	fs.StringVar(&docs, "docs", "", "ask: comma-separated .txt files or directories to ingest before answering")
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage); fs.PrintDefaults() }
	_ = fs.Parse(args)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "ingest":
		err = runIngest(ctx, cfg, fs.Args())
	case "ask":
		err = runAsk(ctx, cfg, strings.Join(fs.Args(), " "), splitList(docs), !noSources)
	case "chat":
		err = runChat(ctx, cfg, fs.Args())
	case "serve":
		err = runServe(ctx, cfg, fs.Args())
	default:
		fs.Usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", cmd, err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.AppConfig, error) {
	if path == "" {
		cfg, _, err := config.LoadDefault()
		return cfg, err
	}
	return config.Load(path)
}

func runIngest(ctx context.Context, cfg *config.AppConfig, paths []string) error {
	if len(paths) == 0 {
		return errors.New("no paths given")
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync()

	app, err := build(cfg, log, nil)
	if err != nil {
		return err
	}
	report, err := app.svc.Ingest(ctx, paths)
	if err != nil {
		return err
	}
	fmt.Println(formatReport(report, app.collection))
	return nil
}

func runAsk(ctx context.Context, cfg *config.AppConfig, question string, docs []string, withSources bool) error {
	log, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync()

	app, err := build(cfg, log, nil)
	if err != nil {
		return err
	}
	if _, err := prepare(ctx, app, docs); err != nil {
		return err
	}

	resp, err := app.svc.Ask(ctx, service.AskRequest{Question: question, IncludeSources: withSources})
	if err != nil {
		return err
	}
	fmt.Println(resp.Answer)
	for _, src := range resp.Sources {
		fmt.Printf("\n- %s, page %d\n  %s\n", src.SourceFile, src.Page, src.ContentPreview)
	}
	return nil
}

func runChat(ctx context.Context, cfg *config.AppConfig, paths []string) error {
	// The terminal belongs to the TUI; logs go to the configured file only.
	log, err := logging.NewFileOnly(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync()

	app, err := build(cfg, log, nil)
	if err != nil {
		return err
	}
	summary, err := prepare(ctx, app, paths)
	if err != nil {
		return err
	}

	_, err = tea.NewProgram(tui.New(ctx, app.svc, summary), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

func runServe(ctx context.Context, cfg *config.AppConfig, paths []string) error {
	log, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync()

	rec := metrics.New()
	app, err := build(cfg, log, rec)
	if err != nil {
		return err
	}
	if _, err := prepare(ctx, app, paths); err != nil {
		return err
	}

	srv := server.New(app.svc, func(o *server.Options) {
		o.Addr = cfg.Server.Addr
		o.AllowedOrigins = cfg.Server.AllowedOrigins
		o.Logger = log
		o.Metrics = rec
	})
	return srv.ListenAndServe(ctx)
}

// prepare ingests paths when given, then reports the state of the collection.
func prepare(ctx context.Context, app *application, paths []string) (string, error) {
	if len(paths) > 0 {
		started := time.Now()
		report, err := app.svc.Ingest(ctx, paths)
		if err != nil {
			return "", fmt.Errorf("ingest: %w", err)
		}
		app.log.Info("documents ingested", zap.Duration("elapsed", time.Since(started)))
		return formatSummary(report), nil
	}
	h := app.svc.WarnIfEmpty(ctx)
	if !h.IndexConnected {
		return "Vector index unreachable.", nil
	}
	return fmt.Sprintf("%d chunks in %s.", h.DocumentsCount, app.collection), nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
