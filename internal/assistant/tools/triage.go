package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/sunrise-assist/server/internal/assistant/model"
	logx "github.com/sunrise-assist/server/pkg/logger"
)

const (
	symptomFallback = "Error in symptom analysis. Please consult a doctor for an accurate assessment."
	infoFallback    = "I could not retrieve that information right now. Please try again later."
)

// ===================================
// Analyze Symptoms Tool
// ===================================

type AnalyzeSymptomsInput struct {
	Symptoms string `json:"symptoms"`
}

func createAnalyzeSymptomsTool(deps Deps) tool.InvokableTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolAnalyzeSymptoms,
			Desc: "Analyze the patient's described symptoms and recommend the most suitable department and doctor. Use before booking when the user describes a health concern.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"symptoms": {
					Type:     "string",
					Desc:     "The symptoms in the user's words, e.g. 'fever, cough'.",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *AnalyzeSymptomsInput) (*Output, error) {
			symptoms := strings.TrimSpace(in.Symptoms)
			if symptoms == "" {
				return &Output{Result: "Please provide valid symptoms (e.g., 'fever, cough')."}, nil
			}

			departments := deps.KB.MatchDepartments(symptoms)

			var doctorHint string
			if len(departments) > 0 {
				if doctors := deps.KB.DoctorsForDepartment(departments[0]); len(doctors) > 0 {
					doctorHint = doctors[0].Name

					// Carry the recommendation so a later booking can fall
					// back to it when the model omits department or doctor.
					if threadID, ok := ThreadIDFromContext(ctx); ok {
						if err := deps.Threads.SetContext(ctx, threadID, model.ThreadContext{
							Department: departments[0],
							Doctor:     doctorHint,
						}); err != nil {
							logx.Warn().Err(err).Str("thread_id", threadID).Msg("failed to carry triage context")
						}
					}
				}
			}

			sys := fmt.Sprintf(
				"You are a compassionate medical triage assistant at %s. "+
					"Given the patient's symptoms, briefly explain which department fits best and name a suitable doctor. "+
					"Be warm and reassuring, keep it under four sentences, and remind the patient this is not a diagnosis.\n\n%s",
				deps.HospitalName, deps.KB.Render())

			user := fmt.Sprintf("Symptoms: %s", symptoms)
			if len(departments) > 0 {
				user += fmt.Sprintf("\nMatched departments: %s", strings.Join(departments, ", "))
			}
			if doctorHint != "" {
				user += fmt.Sprintf("\nSuggested doctor: %s", doctorHint)
			}

			resp, err := deps.Knowledge.Generate(ctx, []*schema.Message{
				schema.SystemMessage(sys),
				schema.UserMessage(user),
			})
			if err != nil || resp == nil || strings.TrimSpace(resp.Content) == "" {
				logx.Warn().Err(err).Msg("symptom analysis model call failed")
				return &Output{Result: symptomFallback}, nil
			}
			return &Output{Result: resp.Content}, nil
		},
	)
}

// ===================================
// Hospital Info Tool
// ===================================

type HospitalInfoInput struct {
	Query string `json:"query"`
}

func createHospitalInfoTool(deps Deps) tool.InvokableTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolHospitalInfo,
			Desc: "Answer questions about the hospital itself: address, contact details, departments, and the doctors who work in them.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": {
					Type:     "string",
					Desc:     "The question about the hospital, e.g. 'doctors in cardiology'.",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *HospitalInfoInput) (*Output, error) {
			query := strings.TrimSpace(in.Query)
			if query == "" {
				return &Output{Result: "Please provide a valid query (e.g., 'doctors in cardiology')."}, nil
			}

			sys := fmt.Sprintf(
				"You answer questions about %s using only the facts below. "+
					"Be concise and factual. If the facts do not cover the question, say so.\n\n%s",
				deps.HospitalName, deps.KB.Render())

			resp, err := deps.Knowledge.Generate(ctx, []*schema.Message{
				schema.SystemMessage(sys),
				schema.UserMessage(query),
			})
			if err != nil || resp == nil || strings.TrimSpace(resp.Content) == "" {
				logx.Warn().Err(err).Msg("hospital info model call failed")
				return &Output{Result: infoFallback}, nil
			}
			return &Output{Result: resp.Content}, nil
		},
	)
}
