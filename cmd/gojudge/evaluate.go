package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/datar-psa/gojudge"
)

type questionOutput struct {
	Question   string  `json:"question"`
	Scored     bool    `json:"scored"`
	Score      float64 `json:"score"`
	Verdict    string  `json:"verdict,omitempty"`
	Confidence string  `json:"confidence,omitempty"`
	Reasoning  string  `json:"reasoning,omitempty"`
	Strategy   string  `json:"strategy,omitempty"`
	Error      string  `json:"error,omitempty"`
}

type evaluateOutput struct {
	RunID     string           `json:"run_id"`
	Judge     string           `json:"judge"`
	MeanScore float64          `json:"mean_score"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Unscored  int              `json:"unscored"`
	Results   []questionOutput `json:"results"`
}

func evaluateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Ask the judge model assessment questions about a response",
		Long: `Send every assessment question, together with the instruction and the
student response, to the judge model configured in --config and print the
per-question judgments and a summary as JSON.

Questions that cannot be scored are reported as unscored and excluded from
the mean score. The command exits with status 2 when no question is scored.`,
		Example: `  gojudge evaluate -c judge.yaml --instruction task.md --response answer.md \
    --question q1.md --question q2.md`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, true)
			if err != nil {
				return err
			}
			logger, err := newLogger(cmd, cfg)
			if err != nil {
				return err
			}

			in, questions, err := readEvaluateInputs(cmd)
			if err != nil {
				return err
			}

			judge, err := gojudge.NewLLMJudgeFromConfig(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}

			summary := judge.Questionnaire(gojudge.QuestionnaireOptions{Questions: questions}).
				Run(cmd.Context(), in)

			out := evaluateOutput{
				RunID:     summary.RunID,
				Judge:     cfg.Judge.Name,
				MeanScore: summary.MeanScore,
				Passed:    summary.Passed,
				Failed:    summary.Failed,
				Unscored:  summary.Unscored,
			}
			var errs []error
			for _, r := range summary.Results {
				q := questionOutput{Question: r.Question, Score: r.Score.Score}
				if r.Score.Error != nil {
					q.Error = r.Score.Error.Error()
					errs = append(errs, r.Score.Error)
				} else {
					q.Scored = true
					q.Verdict, _ = r.Score.Metadata["verdict"].(string)
					q.Confidence, _ = r.Score.Metadata["confidence"].(string)
					q.Reasoning, _ = r.Score.Metadata["reasoning"].(string)
					q.Strategy, _ = r.Score.Metadata["strategy"].(string)
				}
				out.Results = append(out.Results, q)
			}

			if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
				return err
			}
			if summary.Unscored == len(summary.Results) {
				return fmt.Errorf("no question could be scored: %w", errors.Join(errs...))
			}
			return nil
		},
	}

	cmd.Flags().StringArrayP("question", "q", nil, "file holding one assessment question (repeatable)")
	cmd.Flags().StringP("instruction", "i", "", "file holding the instruction given to the student")
	cmd.Flags().StringP("response", "r", "", "file holding the student response (- for stdin)")
	cmd.Flags().String("reference", "", "file holding a reference answer shown to the judge")
	_ = cmd.MarkFlagRequired("question")
	_ = cmd.MarkFlagRequired("response")

	return cmd
}

func readEvaluateInputs(cmd *cobra.Command) (gojudge.ScoreInputs, []string, error) {
	var in gojudge.ScoreInputs

	questionFiles, _ := cmd.Flags().GetStringArray("question")
	questions := make([]string, 0, len(questionFiles))
	for _, path := range questionFiles {
		q, err := readInput(cmd, path)
		if err != nil {
			return in, nil, err
		}
		if strings.TrimSpace(q) == "" {
			return in, nil, fmt.Errorf("%s: %w", path, gojudge.ErrNoAssessmentQuestion)
		}
		questions = append(questions, strings.TrimSpace(q))
	}

	read := func(flag string, dst *string) error {
		path, _ := cmd.Flags().GetString(flag)
		if path == "" {
			return nil
		}
		text, err := readInput(cmd, path)
		if err != nil {
			return err
		}
		*dst = text
		return nil
	}
	if err := read("instruction", &in.Input); err != nil {
		return in, nil, err
	}
	if err := read("response", &in.Output); err != nil {
		return in, nil, err
	}
	if err := read("reference", &in.Expected); err != nil {
		return in, nil, err
	}

	if strings.TrimSpace(in.Output) == "" {
		return in, nil, gojudge.ErrNoStudentResponse
	}
	return in, questions, nil
}
