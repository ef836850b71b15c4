// Package eval grades the assistant's answers against a fixed set of policy questions.
package eval

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gamma-omg/policy-rag/answerer"
	"github.com/gamma-omg/policy-rag/llm"
)

// Case is one graded question. Fragments are the substrings a correct answer must contain,
// Expected is the description handed to the judge.
type Case struct {
	Question  string
	Expected  string
	Fragments []string
	// Refusal marks questions the policy does not answer.
	Refusal bool
}

var DefaultCases = []Case{
	{
		Question:  "What is the emergency dental limit for TravelEase?",
		Expected:  "$300 for pain relief and $3,000 for accidental dental",
		Fragments: []string{"$300", "$3,000"},
	},
	{
		Question:  "Which all-inclusive plan can a 77 year old buy for 45 days?",
		Expected:  "All-Inclusive plan with 45 day limit for age 75+",
		Fragments: []string{"All-Inclusive", "45"},
	},
	{
		Question: "Which plans cover hospital allowance?",
		Expected: "MUST contain ALL of these: " +
			"1. Emergency Medical covered at $50/day up to $500. " +
			"2. All-Inclusive covered at $50/day up to $500. " +
			"3. Youth All-Inclusive covered at $50/day up to $500. " +
			"4. Youth Deluxe All-Inclusive covered at $50/day up to $500. " +
			"5. Multi-Trip Emergency Medical covered at $50/day up to $500. " +
			"6. Multi-Trip All-Inclusive covered at $50/day up to $500. " +
			"7. TravelEase plans NOT covered. ",
		Fragments: []string{"$50", "$500", "TravelEase"},
	},
	{
		Question: "How do I file a claim?",
		Expected: "Information not available in the document",
		Refusal:  true,
	},
}

type Verdict struct {
	Pass   bool
	Reason string
}

type Grader interface {
	Grade(ctx context.Context, c Case, answer string) (Verdict, error)
}

// ContainsGrader passes refusal cases only on the exact refusal sentence and
// other cases when every fragment appears in the answer.
type ContainsGrader struct{}

func (g ContainsGrader) Grade(ctx context.Context, c Case, answer string) (Verdict, error) {
	if c.Refusal {
		if answer == answerer.Refusal {
			return Verdict{Pass: true, Reason: "answer is the refusal sentence"}, nil
		}
		return Verdict{Reason: "expected the refusal sentence"}, nil
	}

	var missing []string
	for _, f := range c.Fragments {
		if !strings.Contains(answer, f) {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return Verdict{Reason: fmt.Sprintf("missing %s", strings.Join(missing, ", "))}, nil
	}

	return Verdict{Pass: true, Reason: "all expected fragments present"}, nil
}

const judgeSystemPrompt = "You are a strict evaluator. " +
	"You will be given a question, expected information, and an actual answer. " +
	"Check if ALL expected information appears in the actual answer. " +
	"Extra correct information is NOT a reason to fail. " +
	"Reply with PASS or FAIL followed by one sentence explaining why. " +
	"Never ask for more information. Always give a verdict."

type chatModel interface {
	Complete(ctx context.Context, req llm.Request) (llm.Response, error)
}

// JudgeGrader asks a chat model for a PASS or FAIL verdict.
type JudgeGrader struct {
	model chatModel
}

func NewJudgeGrader(model chatModel) *JudgeGrader {
	return &JudgeGrader{model: model}
}

func (g *JudgeGrader) Grade(ctx context.Context, c Case, answer string) (Verdict, error) {
	resp, err := g.model.Complete(ctx, llm.Request{
		System: judgeSystemPrompt,
		User: fmt.Sprintf("Question: %s\nExpected information: %s\nActual answer: %s\n\nGive your verdict now.",
			c.Question, c.Expected, answer),
		Temperature: 0,
	})
	if err != nil {
		return Verdict{}, fmt.Errorf("judge failed: %w", err)
	}

	verdict := strings.TrimSpace(resp.Text)
	return Verdict{
		Pass:   strings.HasPrefix(verdict, "PASS"),
		Reason: verdict,
	}, nil
}

type asker interface {
	AskPolicy(ctx context.Context, question string) (string, error)
}

type Result struct {
	Case    Case
	Answer  string
	Verdict Verdict
}

type Report struct {
	Results []Result
	Passed  int
}

func (r Report) Score() float64 {
	if len(r.Results) == 0 {
		return 0
	}

	return float64(r.Passed) / float64(len(r.Results)) * 100
}

var (
	passed = color.New(color.FgGreen, color.Bold).SprintFunc()
	failed = color.New(color.FgRed, color.Bold).SprintFunc()
)

// Run asks every case, grades the answer and prints a line per case followed by the score.
// A failed question counts as a failed case; a failed grading aborts the run.
func Run(ctx context.Context, a asker, g Grader, cases []Case, out io.Writer) (Report, error) {
	var report Report
	for i, c := range cases {
		fmt.Fprintf(out, "\nTEST CASE %d\nQuestion: %s\n", i+1, c.Question)

		res := Result{Case: c}
		answer, err := a.AskPolicy(ctx, c.Question)
		if err != nil {
			res.Verdict = Verdict{Reason: fmt.Sprintf("error: %s", err)}
		} else {
			res.Answer = answer
			res.Verdict, err = g.Grade(ctx, c, answer)
			if err != nil {
				return report, fmt.Errorf("failed to grade case %d: %w", i+1, err)
			}
		}

		fmt.Fprintf(out, "Actual Answer: %s\n", res.Answer)
		status := failed("FAIL")
		if res.Verdict.Pass {
			status = passed("PASS")
			report.Passed++
		}
		fmt.Fprintf(out, "%s Test %d: %s\n   Verdict: %s\n", status, i+1, c.Question, res.Verdict.Reason)

		report.Results = append(report.Results, res)
	}

	fmt.Fprintf(out, "\nFinal Score: %d/%d = %.2f%% accuracy\n", report.Passed, len(report.Results), report.Score())
	return report, nil
}
