// Package tools defines the closed set of operations the assistant model may
// request. Every tool converts its failures into a descriptive string result:
// the only channel back to the model is textual tool output, so nothing here
// returns an execution error across the boundary.
package tools

import (
	"context"
	"errors"
	"fmt"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/sunrise-assist/server/internal/assistant/model"
	"github.com/sunrise-assist/server/internal/calendar"
	"github.com/sunrise-assist/server/internal/knowledge"
	"github.com/sunrise-assist/server/internal/store"
)

// Tool names form a closed enumeration: the orchestrator rejects any name
// the model invents outside this set.
const (
	ToolBookAppointment   = "book_appointment"
	ToolUpdateAppointment = "update_appointment"
	ToolCancelAppointment = "cancel_appointment"
	ToolAnalyzeSymptoms   = "analyze_symptoms"
	ToolHospitalInfo      = "hospital_info"
	ToolSearchKnowledge   = "search_knowledge"
)

// ErrUnknownTool is returned when the model requests a name outside the
// registered set.
var ErrUnknownTool = errors.New("unknown tool")

// Output is the uniform tool result payload.
type Output struct {
	Result string `json:"result"`
}

// Deps carries everything the tools touch.
type Deps struct {
	Store        store.AppointmentStore
	Calendar     calendar.Provider
	Threads      model.ThreadRepository
	KB           *knowledge.Base
	Knowledge    einomodel.BaseChatModel // plain model for triage/info tools
	Location     *time.Location
	HospitalName string
}

// Registry is the closed tool set advertised to the model.
type Registry struct {
	tools map[string]tool.InvokableTool
	order []string
}

// NewRegistry builds all six tools against the given dependencies.
func NewRegistry(deps Deps) (*Registry, error) {
	if deps.Store == nil || deps.Calendar == nil || deps.Threads == nil {
		return nil, fmt.Errorf("tools: store, calendar and thread repository are required")
	}
	if deps.KB == nil || deps.Knowledge == nil {
		return nil, fmt.Errorf("tools: knowledge base and knowledge model are required")
	}
	if deps.Location == nil {
		deps.Location = time.UTC
	}

	r := &Registry{tools: make(map[string]tool.InvokableTool)}
	for _, entry := range []struct {
		name string
		t    tool.InvokableTool
	}{
		{ToolBookAppointment, createBookAppointmentTool(deps)},
		{ToolUpdateAppointment, createUpdateAppointmentTool(deps)},
		{ToolCancelAppointment, createCancelAppointmentTool(deps)},
		{ToolAnalyzeSymptoms, createAnalyzeSymptomsTool(deps)},
		{ToolHospitalInfo, createHospitalInfoTool(deps)},
		{ToolSearchKnowledge, createSearchKnowledgeTool(deps)},
	} {
		r.tools[entry.name] = entry.t
		r.order = append(r.order, entry.name)
	}
	return r, nil
}

// Infos returns the tool schemas in registration order, for binding to the
// assistant model.
func (r *Registry) Infos(ctx context.Context) ([]*schema.ToolInfo, error) {
	infos := make([]*schema.ToolInfo, 0, len(r.order))
	for _, name := range r.order {
		info, err := r.tools[name].Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("tool info for %s: %w", name, err)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Has reports whether name belongs to the registered set.
func (r *Registry) Has(name string) bool {
	_, ok := r.tools[name]
	return ok
}

// Run validates the tool name against the registry and executes it with the
// supplied JSON arguments. Only an unknown name or a malformed argument
// payload yields an error; tool-level failures are already strings inside
// the result.
func (r *Registry) Run(ctx context.Context, name, argumentsJSON string) (string, error) {
	t, ok := r.tools[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
	out, err := t.InvokableRun(ctx, argumentsJSON)
	if err != nil {
		return "", fmt.Errorf("run tool %s: %w", name, err)
	}
	return out, nil
}
