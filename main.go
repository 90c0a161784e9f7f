package main

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v2"

	"agnt/internal/anthropic"
	"agnt/internal/app"
	"agnt/internal/config"
	"agnt/internal/mock"
	"agnt/internal/pipe"
)

func main() {
	cliApp := &cli.App{
		Name:  "agnt",
		Usage: "Chat with Claude, with server-side code execution and file retrieval",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "pipe",
				Usage: "Read the prompt from stdin and stream the reply to stdout",
			},
			&cli.StringFlag{
				Name:    "message",
				Aliases: []string{"m"},
				Usage:   "Prepend this text to the piped input",
			},
			&cli.BoolFlag{
				Name:    "code-execution",
				Aliases: []string{"x"},
				Usage:   "Enable the server-side code execution tool",
			},
			&cli.StringFlag{
				Name:    "output-dir",
				Aliases: []string{"o"},
				Usage:   "Directory for files generated by code execution",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to the YAML config file",
			},
			&cli.StringFlag{
				Name:  "model",
				Usage: "Model name",
			},
			&cli.StringFlag{
				Name:  "base-url",
				Usage: "API base URL (point at --mock for offline use)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn, error",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Write logs to this file instead of stderr",
			},
			&cli.BoolFlag{
				Name:  "mock",
				Usage: "Run the mock API server instead of the client",
			},
			&cli.IntFlag{
				Name:  "mock-port",
				Value: 8000,
				Usage: "Port for the mock server",
			},
		},
		Action: run,
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.Bool("mock") {
		return mock.NewServer(c.Int("mock-port")).Start()
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	log, closeLog, err := buildLogger(c, cfg)
	if err != nil {
		return err
	}
	if closeLog != nil {
		defer closeLog()
	}

	client := anthropic.NewClient(cfg.APIKey,
		anthropic.WithBaseURL(cfg.BaseURL),
		anthropic.WithModel(cfg.Model),
		anthropic.WithMaxTokens(cfg.MaxTokens),
		anthropic.WithCodeExecution(cfg.CodeExecution),
		anthropic.WithLogger(log),
	)

	if c.Bool("pipe") {
		return pipe.Run(context.Background(), client, pipe.Options{
			Prepend:   c.String("message"),
			OutputDir: cfg.OutputDir,
			Stdin:     os.Stdin,
			Stdout:    os.Stdout,
			Stderr:    os.Stderr,
			Log:       log,
		})
	}

	p := tea.NewProgram(
		app.New(client, cfg.OutputDir),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

// loadConfig layers the config sources: defaults, then the YAML file, then
// environment variables, then command-line flags.
func loadConfig(c *cli.Context) (*config.Config, error) {
	var cfg *config.Config

	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else if path := config.DefaultPath(); path != "" {
		if loaded, err := config.Load(path); err == nil {
			cfg = loaded
		}
	}
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}

	cfg.ApplyEnv()

	if v := c.String("model"); v != "" {
		cfg.Model = v
	}
	if v := c.String("base-url"); v != "" {
		cfg.BaseURL = v
	}
	if v := c.String("output-dir"); v != "" {
		cfg.OutputDir = v
	}
	if v := c.String("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if v := c.String("log-file"); v != "" {
		cfg.LogFile = v
	}
	if c.Bool("code-execution") {
		cfg.CodeExecution = true
	}

	// The mock server accepts any key; a real endpoint needs one.
	if cfg.BaseURL == "" || cfg.APIKey != "" {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// buildLogger constructs the client logger. In TUI mode logs go nowhere
// unless a log file is set; writing to stderr would corrupt the screen.
func buildLogger(c *cli.Context, cfg *config.Config) (*anthropic.Logger, func(), error) {
	if cfg.LogLevel == "" {
		return nil, nil, nil
	}
	level := anthropic.ParseLevel(cfg.LogLevel)
	if level == anthropic.LevelOff {
		return nil, nil, nil
	}

	var w io.Writer
	var closeFn func()
	switch {
	case cfg.LogFile != "":
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closeFn = func() { f.Close() }
	case c.Bool("pipe"):
		w = os.Stderr
	default:
		return nil, nil, nil
	}

	return anthropic.NewLogger(level, w), closeFn, nil
}
