package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/sunrise-assist/server/internal/assistant/model"
	"github.com/sunrise-assist/server/internal/assistant/tools"
)

//go:embed template/system_prompt.txt
var coreSystemPrompt string

// RenderSystem renders the assistant system prompt with the hospital name,
// tool names, and the current wall-clock time in the configured timezone.
func RenderSystem(ctx context.Context, config model.PromptConfig, loc *time.Location, now time.Time) (string, error) {
	if loc == nil {
		loc = time.UTC
	}

	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(coreSystemPrompt),
	)
	vars := map[string]any{
		"HospitalName": config.HospitalName,
		"Timezone":     config.Timezone,
		"Time":         now.In(loc).Format("2006-01-02 15:04:05"),
		"BookTool":     tools.ToolBookAppointment,
		"UpdateTool":   tools.ToolUpdateAppointment,
		"CancelTool":   tools.ToolCancelAppointment,
		"SymptomsTool": tools.ToolAnalyzeSymptoms,
		"InfoTool":     tools.ToolHospitalInfo,
		"SearchTool":   tools.ToolSearchKnowledge,
	}
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("system prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("system prompt render: empty result")
	}
	return msgs[0].Content, nil
}
