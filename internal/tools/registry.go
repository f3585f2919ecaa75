// Package tools exposes the model-facing tool surface: a closed set of
// named tools with JSON Schema definitions and typed handlers.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vetevidence/vetagent/internal/core"
	"github.com/vetevidence/vetagent/internal/providers/knowledge"
	"github.com/vetevidence/vetagent/pkg/log"
)

// Tool names offered to the model. The set is closed: anything else
// dispatches to the unknown-tool payload.
const (
	ToolKnowledgeSearch       = "knowledge_search"
	ToolDrugInfo              = "drug_info"
	ToolDifferentialDiagnosis = "differential_diagnosis"
	ToolClinicalCalculator    = "clinical_calculator"
)

// Handler executes one tool call. A returned error is converted by the
// caller into a structured {error} result for the model, never raised
// to the end user.
type Handler func(ctx context.Context, input json.RawMessage) (any, error)

type Registry struct {
	defs     []core.Tool
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: map[string]Handler{}}
}

// NewDefaultRegistry wires the full tool surface.
func NewDefaultRegistry(vetpro *knowledge.VetPro, merger *knowledge.Merger) *Registry {
	r := NewRegistry()
	r.Register(NewKnowledgeSearch(vetpro, merger))
	r.Register(NewDrugInfo(vetpro, merger))
	r.Register(NewDifferentialDiagnosis(vetpro, merger))
	r.Register(NewClinicalCalculator())
	return r
}

func (r *Registry) Register(def core.Tool, h Handler) {
	r.defs = append(r.defs, def)
	r.handlers[def.Name] = h
}

// Definitions returns the tool schemas in registration order.
func (r *Registry) Definitions() []core.Tool {
	return r.defs
}

// Execute runs one tool call. An unknown name returns a structured
// error payload rather than an error: the model gets to see it and
// recover.
func (r *Registry) Execute(ctx context.Context, name string, input json.RawMessage) (any, error) {
	h, ok := r.handlers[name]
	if !ok {
		log.FromCtx(ctx).Warn().Str("tool", name).Msg("unknown tool requested")
		return map[string]string{"error": fmt.Sprintf("Unknown tool: %s", name)}, nil
	}

	result, err := h(ctx, input)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Str("tool", name).Msg("tool execution failed")
		return nil, err
	}
	return result, nil
}
