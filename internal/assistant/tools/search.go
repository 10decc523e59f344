package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
)

type SearchKnowledgeInput struct {
	Query string `json:"query"`
}

// createSearchKnowledgeTool is a deterministic lookup over the clinic data.
// No model call: the assistant model itself phrases the answer from the raw
// matches this tool returns.
func createSearchKnowledgeTool(deps Deps) tool.InvokableTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolSearchKnowledge,
			Desc: "Search the clinic knowledge base for departments, symptoms, and doctors matching a keyword. Returns raw matches for you to phrase into an answer.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": {
					Type:     "string",
					Desc:     "Keyword or phrase to search for, e.g. 'cardiology' or 'chest pain'.",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *SearchKnowledgeInput) (*Output, error) {
			query := strings.TrimSpace(in.Query)
			if query == "" {
				return &Output{Result: "Please provide a search term."}, nil
			}

			var b strings.Builder

			if departments := deps.KB.MatchDepartments(query); len(departments) > 0 {
				b.WriteString("Matching departments:\n")
				for _, dept := range departments {
					b.WriteString(fmt.Sprintf("- %s (symptoms: %s)\n",
						dept, strings.Join(deps.KB.CommonSymptoms[dept], ", ")))
				}
			}

			lower := strings.ToLower(query)
			var doctors []string
			for _, d := range deps.KB.Doctors {
				if strings.Contains(strings.ToLower(d.Name), lower) ||
					strings.Contains(strings.ToLower(d.Specialty), lower) {
					doctors = append(doctors, fmt.Sprintf("- %s, %s, %s", d.Name, d.Specialty, d.Experience))
				}
			}
			if len(doctors) > 0 {
				b.WriteString("Matching doctors:\n")
				b.WriteString(strings.Join(doctors, "\n"))
				b.WriteString("\n")
			}

			if b.Len() == 0 {
				return &Output{Result: fmt.Sprintf("No knowledge base entries match %q.", query)}, nil
			}
			return &Output{Result: strings.TrimRight(b.String(), "\n")}, nil
		},
	)
}
