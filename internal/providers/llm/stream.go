package llm

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/vetevidence/vetagent/internal/core"
)

// ChatStream runs one model turn over SSE. onDelta receives each text
// fragment as it arrives; the returned response carries the fully
// assembled content blocks, so callers can treat it like Chat.
func (a *Anthropic) ChatStream(ctx context.Context, req core.ChatRequest, onDelta func(text string)) (core.ModelResponse, error) {
	payload := a.payload(req)
	payload["stream"] = true

	resp, err := a.doRequest(ctx, http.MethodPost, "/v1/messages", payload, a.headers())
	if err != nil {
		return core.ModelResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return core.ModelResponse{}, fmt.Errorf("http %d: %s", resp.StatusCode, string(data))
	}

	var (
		out      core.ModelResponse
		blocks   []core.ContentBlock
		jsonBufs = map[int]*strings.Builder{}
	)

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" || data == "[DONE]" {
			continue
		}

		var ev struct {
			Type  string `json:"type"`
			Index int    `json:"index"`

			Message struct {
				Usage struct {
					InputTokens int `json:"input_tokens"`
				} `json:"usage"`
			} `json:"message"`

			ContentBlock core.ContentBlock `json:"content_block"`

			Delta struct {
				Type        string `json:"type"`
				Text        string `json:"text"`
				PartialJSON string `json:"partial_json"`
				StopReason  string `json:"stop_reason"`
			} `json:"delta"`

			Usage struct {
				OutputTokens int `json:"output_tokens"`
			} `json:"usage"`

			Error struct {
				Type    string `json:"type"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			return core.ModelResponse{}, fmt.Errorf("decode stream event: %w", err)
		}

		switch ev.Type {
		case "message_start":
			out.Usage.InputTokens = ev.Message.Usage.InputTokens

		case "content_block_start":
			for len(blocks) <= ev.Index {
				blocks = append(blocks, core.ContentBlock{})
			}
			blocks[ev.Index] = ev.ContentBlock
			if ev.ContentBlock.Type == core.BlockToolUse {
				jsonBufs[ev.Index] = &strings.Builder{}
			}

		case "content_block_delta":
			if ev.Index >= len(blocks) {
				continue
			}
			switch ev.Delta.Type {
			case "text_delta":
				blocks[ev.Index].Text += ev.Delta.Text
				if onDelta != nil {
					onDelta(ev.Delta.Text)
				}
			case "input_json_delta":
				if buf, ok := jsonBufs[ev.Index]; ok {
					buf.WriteString(ev.Delta.PartialJSON)
				}
			}

		case "content_block_stop":
			if buf, ok := jsonBufs[ev.Index]; ok {
				raw := buf.String()
				if raw == "" {
					raw = "{}"
				}
				blocks[ev.Index].Input = json.RawMessage(raw)
				delete(jsonBufs, ev.Index)
			}

		case "message_delta":
			if ev.Delta.StopReason != "" {
				out.StopReason = ev.Delta.StopReason
			}
			out.Usage.OutputTokens = ev.Usage.OutputTokens

		case "error":
			return core.ModelResponse{}, fmt.Errorf("stream error %s: %s", ev.Error.Type, ev.Error.Message)
		}
	}
	if err := scanner.Err(); err != nil {
		return core.ModelResponse{}, fmt.Errorf("read stream: %w", err)
	}

	out.Content = blocks
	if out.StopReason == "" {
		out.StopReason = core.StopEndTurn
	}
	return out, nil
}
