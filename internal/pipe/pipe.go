// Package pipe implements the non-interactive mode: read a prompt from
// stdin, stream the reply to stdout, save generated files as they appear.
package pipe

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"agnt/internal/anthropic"
	"agnt/internal/sink"
)

// Options configures a pipe-mode run.
type Options struct {
	// Prepend is prefixed to the piped input, separated by a space.
	Prepend   string
	OutputDir string
	Stdin     io.Reader
	Stdout    io.Writer
	Stderr    io.Writer
	Log       *anthropic.Logger
}

// Run reads the prompt from Stdin, streams the response, and returns once
// the stream and any spawned file downloads are finished.
func Run(ctx context.Context, client *anthropic.Client, opts Options) error {
	input, err := io.ReadAll(opts.Stdin)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}

	content := string(input)
	if opts.Prepend != "" {
		content = opts.Prepend + " " + content
	}

	updates := make(chan anthropic.FileUpdate, anthropic.UpdateBuffer)
	s := &writerSink{
		ctx:       ctx,
		client:    client,
		outputDir: opts.OutputDir,
		stdout:    opts.Stdout,
		stderr:    opts.Stderr,
		updates:   updates,
		log:       opts.Log,
	}

	// Resolved names arrive out of band; report them as they land.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for up := range updates {
			fmt.Fprintf(opts.Stdout, "\nSaved: %s (ID: %s)\n", up.Name, up.ID)
		}
	}()

	events := client.StreamMessage(ctx, []anthropic.Message{{Role: "user", Content: content}})
	for ev := range events {
		sink.Dispatch(s, ev)
	}

	s.wg.Wait()
	close(updates)
	<-done
	fmt.Fprintln(opts.Stdout)
	return nil
}

// writerSink renders events onto a pair of writers.
type writerSink struct {
	ctx       context.Context
	client    *anthropic.Client
	outputDir string
	stdout    io.Writer
	stderr    io.Writer
	updates   chan anthropic.FileUpdate
	log       *anthropic.Logger
	wg        sync.WaitGroup
}

func (s *writerSink) Text(text string) {
	fmt.Fprint(s.stdout, text)
}

func (s *writerSink) ToolInput(code string) {
	fmt.Fprintf(s.stdout, "\n```python\n%s\n```\n", code)
}

func (s *writerSink) ToolOutput(out anthropic.ToolOutputEvent) {
	if out.Stdout != "" {
		fmt.Fprintf(s.stdout, "\nOutput:\n%s", out.Stdout)
	}
	if out.Stderr != "" {
		fmt.Fprintf(s.stderr, "\nError:\n%s", out.Stderr)
	}
	if out.ExitCode != 0 {
		fmt.Fprintf(s.stderr, "(Exit code: %d)\n", out.ExitCode)
	}
	if len(out.Files) == 0 {
		return
	}

	fmt.Fprintln(s.stdout, "\nCreated files:")
	for _, f := range out.Files {
		fmt.Fprintf(s.stdout, "  - %s (ID: %s)\n", f.DisplayName, f.ID)

		// Only real file IDs can be fetched from the Files API.
		if !strings.HasPrefix(f.ID, "file_") {
			fmt.Fprintf(s.stderr, "Note: Cannot download file %q - file ID not available in streaming mode\n", f.DisplayName)
			continue
		}

		s.wg.Add(1)
		go func(id string) {
			defer s.wg.Done()
			if err := s.client.DownloadAndSaveFile(s.ctx, s.outputDir, id, s.updates); err != nil {
				s.log.Warn("saving file failed", "id", id, "error", err)
			}
		}(f.ID)
	}
}

func (s *writerSink) ToolError(code string) {
	fmt.Fprintf(s.stderr, "\nCode execution error: %s\n", code)
}

func (s *writerSink) SessionInfo(id, expiresAt string) {
	// Container details are not printed in pipe mode.
}

func (s *writerSink) Status(message string) {
	// Connection progress is not printed in pipe mode.
}
