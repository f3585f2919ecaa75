// Package cli is the readline console transport: a local chat loop
// against the agent, streaming answers to the terminal.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/chzyer/readline"
	"github.com/vetevidence/vetagent/internal/config"
	"github.com/vetevidence/vetagent/internal/core"
	"github.com/vetevidence/vetagent/internal/service/agent"
	"github.com/vetevidence/vetagent/pkg/log"
)

const cliConversationID = "cli-local"

var (
	toolStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	citationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("36"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("160"))
)

type ReadLine struct {
	cfg   *config.AppConfig
	agent *agent.Agent
	rl    *readline.Instance
}

func NewReadLine(ag *agent.Agent, cfg *config.AppConfig) (*ReadLine, error) {
	if err := os.MkdirAll(cfg.RuntimePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">>> ",
		HistoryFile:     filepath.Join(cfg.RuntimePath, "input_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}

	return &ReadLine{
		cfg:   cfg,
		agent: ag,
		rl:    rl,
	}, nil
}

func (r *ReadLine) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	logger.Info().Msg("console chat started. Type 'exit' to quit.")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := r.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				if len(line) == 0 {
					return nil
				}
				continue
			} else if err == io.EOF {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "exit" {
			return nil
		}
		if line == "" {
			continue
		}

		r.ask(ctx, line)
	}
}

func (r *ReadLine) ask(ctx context.Context, question string) {
	out := r.rl.Stdout()

	req := core.Request{
		Messages:       []core.Turn{{Role: core.RoleUser, Content: question}},
		ConversationID: cliConversationID,
	}

	for ev := range r.agent.RunStreaming(ctx, req) {
		switch ev.Type {
		case core.EventTextDelta:
			if text, ok := ev.Data.(string); ok {
				fmt.Fprint(out, text)
			}
		case core.EventToolCall:
			fmt.Fprintln(out, toolStyle.Render(renderToolCall(ev.Data)))
		case core.EventCitations:
			if cites, ok := ev.Data.([]core.EnrichedCitation); ok {
				fmt.Fprintln(out)
				for _, c := range cites {
					fmt.Fprintln(out, citationStyle.Render(fmt.Sprintf("  [%d] %s (%s, Level %s)", c.ID, c.Title, c.Source, c.EvidenceLevel)))
				}
			}
		case core.EventError:
			fmt.Fprintln(out, errorStyle.Render(fmt.Sprintf("Error: %v", ev.Data)))
		case core.EventDone:
			fmt.Fprintln(out)
		}
	}
}

func renderToolCall(data any) string {
	m, ok := data.(map[string]any)
	if !ok {
		return "  > calling tool..."
	}
	input, _ := json.Marshal(m["input"])
	return fmt.Sprintf("  > %v %s", m["name"], input)
}

func (r *ReadLine) Shutdown(ctx context.Context) error {
	if r.rl != nil {
		return r.rl.Close()
	}
	return nil
}
