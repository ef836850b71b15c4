package answerer

import (
	"fmt"
	"strings"
)

// Refusal is emitted verbatim whenever the context does not contain the requested fact.
const Refusal = "I'm sorry, I cannot find the specific information in the policy documents."

// ColumnGroup lists the plans of one chart family in their left-to-right column order.
type ColumnGroup struct {
	Family string
	Plans  []string
}

// Profile carries the document specific knowledge embedded in the system prompt.
type Profile struct {
	Insurer string
	Columns []ColumnGroup
	Hints   []string
}

var TravelProfile = Profile{
	Insurer: "Manulife Travel Insurance",
	Columns: []ColumnGroup{
		{Family: "Single-Trip Medical", Plans: []string{"Emergency Medical", "TravelEase"}},
		{Family: "Single-Trip Non-Medical", Plans: []string{"Trip Cancellation", "Non-Medical Inclusive"}},
		{Family: "Single-Trip All-Inclusive", Plans: []string{"All-Inclusive", "Youth", "Youth Deluxe"}},
		{Family: "Multi-Trip", Plans: []string{"Medical", "TravelEase", "All-Inclusive"}},
	},
	Hints: []string{
		"'Delayed return' covers $150/day for meals/hotel.",
		"IMPORTANT: Quarantine is EXCLUDED in Canada, but COVERED internationally (e.g., Mexico) under 'Delayed return'.",
	},
}

func (p Profile) SystemPrompt() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "You are an expert insurance assistant for %s. ", p.Insurer)
	sb.WriteString("Answer strictly based on the provided context. ")

	sb.WriteString("\n\n### TABLE RULES:\n")
	sb.WriteString("Plan columns appear in this order (from left to right after the 'Feature' column):\n")
	for _, g := range p.Columns {
		cols := make([]string, len(g.Plans))
		for i, plan := range g.Plans {
			cols[i] = fmt.Sprintf("[%d] %s", i+1, plan)
		}
		fmt.Fprintf(&sb, "- %s: %s\n", g.Family, strings.Join(cols, ", "))
	}

	sb.WriteString("\n### LOGIC HINT:\n")
	for _, h := range p.Hints {
		fmt.Fprintf(&sb, "- %s\n", h)
	}

	sb.WriteString("\nAlways cite page numbers (Page X). If unsure, say you cannot find the info.\n")
	sb.WriteString("\nOnly speak from the provided context. If the answer is not explicitly word-for-word in the provided context, ")
	fmt.Fprintf(&sb, "you MUST say exactly: '%s'", Refusal)

	return sb.String()
}

func UserPrompt(question, contextBlock string) string {
	return fmt.Sprintf("CONTEXT:\n%s\n\nQUESTION: %s\n\n"+
		"INSTRUCTION: First, identify the potential benefit. Second, check ALL provided text for exclusions "+
		"that might apply to this specific scenario. Finally, provide your answer.", contextBlock, question)
}
