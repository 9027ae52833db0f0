package llmjudge

import (
	"fmt"
	"strings"

	"github.com/datar-psa/gojudge/api"
	"github.com/datar-psa/gojudge/judgment"
)

const judgeSystemPrompt = `You are an objective evaluator assigned to assess responses against provided criteria. Your role is to:
1. Analyze the response against the given evaluation criteria
2. Support your judgment with evidence from the response
3. Give a clear verdict together with your confidence in it

Your evaluation must be systematic and explicit.`

const assessmentPromptTemplate = `Answer the following assessment question by comparing the Instruction to Student with the Student Response for Evaluation.
Analyze the texts step by step.

### Assessment Question
%s

### Instruction to Student
%s
%s
### Student Response for Evaluation
%s

### Your Task
Answer the assessment question following the evaluation criteria above.

### Output Format
Reply with a single JSON object and nothing else, for example:
%s`

const referenceSectionTemplate = `
### Reference Answer
%s
`

// BuildPrompt renders the judge prompt pair for one assessment question.
// extraFields are asked for in the output format after the core fields.
func BuildPrompt(question string, in api.ScoreInputs, extraFields ...string) api.Prompt {
	instruction := strings.TrimSpace(in.Input)
	if instruction == "" {
		instruction = "(none provided)"
	}

	reference := ""
	if expected := strings.TrimSpace(in.Expected); expected != "" {
		reference = fmt.Sprintf(referenceSectionTemplate, expected)
	}

	return api.Prompt{
		System: judgeSystemPrompt,
		User: fmt.Sprintf(assessmentPromptTemplate,
			strings.TrimSpace(question),
			instruction,
			reference,
			strings.TrimSpace(in.Output),
			outputFormat(extraFields),
		),
	}
}

func outputFormat(extraFields []string) string {
	lines := []string{
		`    "reasoning": "Explanation and reasoning to answer the question"`,
		`    "verdict": "Pass/Fail"`,
		`    "confidence": "High/Medium/Low"`,
	}
	for _, f := range extraFields {
		if f == judgment.FieldReasoning || f == judgment.FieldVerdict || f == judgment.FieldConfidence {
			continue
		}
		lines = append(lines, fmt.Sprintf("    %q: \"...\"", f))
	}
	return "{\n" + strings.Join(lines, ",\n") + "\n}"
}
