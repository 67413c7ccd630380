package prompt

import (
	"strings"
)

const jsonOnlyInstruction = "Respond with ONLY the JSON object. Do not wrap it in markdown fences and do not add any text before or after it."

// Render produces the single prompt string sent to the model.
// Sections always appear in the same order.
func (s *Spec) Render() string {
	var sb strings.Builder

	sb.WriteString(s.Role)
	sb.WriteString("\n\n")

	writeList(&sb, "GENERAL RULES", s.CommonRules)
	if len(s.TypeRules) > 0 {
		writeList(&sb, s.TypeRulesTitle, s.TypeRules)
	}
	if len(s.ModeBlock) > 0 {
		sb.WriteString(s.ModeTitle)
		sb.WriteString(":\n")
		for _, line := range s.ModeBlock {
			sb.WriteString(line)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("CAMPAIGN BRIEF:\n")
	for _, f := range s.UserContext {
		sb.WriteString(f.Label)
		sb.WriteString(": ")
		sb.WriteString(f.Value)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	sb.WriteString("OUTPUT FORMAT (reproduce this structure exactly and fill every empty value; lists may grow):\n")
	sb.Write(s.OutputSchema)
	sb.WriteString("\n\n")

	if len(s.FewShotExample) > 0 {
		sb.WriteString("EXAMPLE (illustrative only; the rules above decide counts and lengths):\n")
		sb.Write(s.FewShotExample)
		sb.WriteString("\n\n")
	}

	sb.WriteString(jsonOnlyInstruction)
	return sb.String()
}

func writeList(sb *strings.Builder, title string, items []string) {
	sb.WriteString(title)
	sb.WriteString(":\n")
	for _, item := range items {
		sb.WriteString("- ")
		sb.WriteString(item)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}
