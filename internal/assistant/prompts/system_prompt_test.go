package prompts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunrise-assist/server/internal/assistant/model"
	"github.com/sunrise-assist/server/internal/assistant/tools"
)

func TestRenderSystemFillsTemplate(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	now := time.Date(2025, 12, 25, 9, 0, 0, 0, time.UTC)

	rendered, err := RenderSystem(context.Background(), model.PromptConfig{
		HospitalName: "Sunrise Medical Center",
		Timezone:     "Asia/Kolkata",
	}, loc, now)
	require.NoError(t, err)

	assert.Contains(t, rendered, "Sunrise Medical Center")
	assert.Contains(t, rendered, tools.ToolBookAppointment)
	assert.Contains(t, rendered, tools.ToolUpdateAppointment)
	assert.Contains(t, rendered, tools.ToolCancelAppointment)
	assert.Contains(t, rendered, tools.ToolAnalyzeSymptoms)
	// 09:00 UTC renders as 14:30 IST.
	assert.Contains(t, rendered, "2025-12-25 14:30:00")
	assert.Contains(t, rendered, "(Asia/Kolkata)")
	assert.NotContains(t, rendered, "{{")
}
