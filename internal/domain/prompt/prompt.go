// Package prompt builds the scoring and insight prompts sent to the model.
package prompt

import (
	"fmt"
	"sort"
	"strings"

	"github.com/okian/swingcoach/internal/domain/metric"
	"github.com/okian/swingcoach/internal/domain/model"
	"github.com/okian/swingcoach/internal/domain/recipe"
)

// VideoUnclear is the phrase the model uses when it cannot judge a metric.
const VideoUnclear = "Video unclear"

const scoringPreamble = `You are a tour-level golf swing analyst who has coached professionals for twenty years.
Watch the attached swing video carefully, frame by frame, and score it honestly.`

var overallBands = []string{ //nolint:gochecknoglobals // static rubric
	"95-100: elite, tour-winning swing with no visible flaws",
	"88-94: exceptional, tour-ready with minor inefficiencies",
	"80-87: very good, low single-digit handicap",
	"70-79: competent, solid fundamentals with clear areas to improve",
	"60-69: developing, several fundamentals need work",
	"50-59: inconsistent, major compensations in the motion",
	"below 50: beginner, fundamentals not yet in place",
}

var bandLabels = [4]string{">=90", "70-89", "50-69", "<50"} //nolint:gochecknoglobals // static rubric

// ScoringInput carries the optional context for a scoring prompt.
type ScoringInput struct {
	Club       *model.Club
	Outcome    model.Outcome
	Ownership  model.Ownership
	ProName    string
	References []model.ReferenceModel
}

// Scoring builds the prompt that asks for overall and per-metric scores.
func Scoring(reg *metric.Registry, in ScoringInput) string {
	var b strings.Builder
	b.WriteString(scoringPreamble)
	b.WriteString("\n\nOVERALL SCORE RUBRIC:\n")
	for _, band := range overallBands {
		fmt.Fprintf(&b, "- %s\n", band)
	}

	b.WriteString("\nMETRIC RUBRICS (score each metric 0-100):\n")
	for _, m := range reg.All() {
		fmt.Fprintf(&b, "\n%s (%s, %s): %s\n", m.Key, m.Title, m.Category, m.Description)
		for i, desc := range m.Rubric {
			fmt.Fprintf(&b, "  %s: %s\n", bandLabels[i], desc)
		}
	}

	b.WriteString(`
SCORING RULES:
- Use the full 0-100 range. Do not cluster every metric in the same band; a real swing has clear strengths and weaknesses.
- Score only what the video shows.
- Give exactly three short, actionable recommendations targeting the weakest metrics.

RESPONSE FORMAT:
Your response MUST be a single valid JSON object and nothing else, with these keys:
{"overallScore": <integer 0-100>, "metrics": {"<metricKey>": <integer 0-100>, ...}, "recommendations": ["...", "...", "..."]}
Use the metric keys exactly as listed above.
`)

	if s := clubSentence(in.Club, in.Outcome); s != "" {
		b.WriteString("\n")
		b.WriteString(s)
		b.WriteString("\n")
	}
	if in.Ownership == model.OwnerPro && strings.TrimSpace(in.ProName) != "" {
		fmt.Fprintf(&b, "\nThe swing belongs to touring professional %s.\n", strings.TrimSpace(in.ProName))
	}
	if g := referenceGuidelines(in.References); g != "" {
		b.WriteString("\n")
		b.WriteString(g)
	}
	return b.String()
}

func clubSentence(c *model.Club, outcome model.Outcome) string {
	if c == nil || (c.Name == "" && c.Type == "") {
		if outcome == "" {
			return ""
		}
		return fmt.Sprintf("The golfer reported a %s ball flight.", outcome)
	}
	name := c.Name
	if name == "" {
		name = strings.ToLower(string(c.Type))
	}
	s := fmt.Sprintf("This swing was made with a %s", name)
	if c.Type != "" && !strings.EqualFold(name, string(c.Type)) {
		s += fmt.Sprintf(" (%s)", strings.ToLower(string(c.Type)))
	}
	s += "; judge setup and ball position for that club."
	if outcome != "" {
		s += fmt.Sprintf(" The golfer reported a %s ball flight.", outcome)
	}
	return s
}

func referenceGuidelines(refs []model.ReferenceModel) string {
	if len(refs) == 0 {
		return ""
	}
	sorted := append([]model.ReferenceModel(nil), refs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Metric < sorted[j].Metric })

	var b strings.Builder
	b.WriteString("REFERENCE GUIDELINES:\n")
	for _, r := range sorted {
		fmt.Fprintf(&b, "\n%s:\n", r.Metric)
		writeList(&b, "Technical guidelines", r.TechnicalGuidelines)
		writeList(&b, "Ideal form", r.IdealForm)
		writeList(&b, "Common mistakes", r.CommonMistakes)
		if s := strings.TrimSpace(r.ScoringRubric); s != "" {
			fmt.Fprintf(&b, "  Scoring criteria: %s\n", s)
		}
	}
	return b.String()
}

func writeList(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "  %s: %s\n", label, strings.Join(items, "; "))
}

// InsightInput carries what the insight prompt needs about one metric.
type InsightInput struct {
	MetricKey string
	Score     int
	Overall   int
	Club      *model.Club
	HasVideo  bool
	Recipe    *recipe.Entry
}

// Insight builds the per-metric coaching prompt.
func Insight(reg *metric.Registry, in InsightInput) string {
	key := reg.Canonical(in.MetricKey)
	m, known := reg.Get(key)

	var b strings.Builder
	b.WriteString("You are a PGA-certified golf coach explaining one part of a student's swing.\n\n")
	if known {
		fmt.Fprintf(&b, "Metric: %s (%s)\nCategory: %s\nDifficulty: %d/10\nWeight in overall score: %.0f%%\n",
			m.Title, key, m.Category, m.Difficulty, m.Weight*100)
		fmt.Fprintf(&b, "Description: %s\n", m.Description)
		fmt.Fprintf(&b, "What this score band looks like: %s\n", m.Rubric[metric.Band(in.Score)])
	} else {
		fmt.Fprintf(&b, "Metric: %s\nDescription: %s\n", key, metric.GenericDescription)
	}
	fmt.Fprintf(&b, "Observed score: %d/100 (overall %d/100)\n", in.Score, in.Overall)
	if s := clubSentence(in.Club, ""); s != "" {
		b.WriteString(s)
		b.WriteString("\n")
	}
	if r := in.Recipe; r != nil {
		b.WriteString("\nSWING RECIPE:\n")
		if r.Summary != "" {
			fmt.Fprintf(&b, "  Summary: %s\n", r.Summary)
		}
		writeList(&b, "Checkpoints", r.Checkpoints)
		writeList(&b, "Common faults", r.CommonFaults)
		writeList(&b, "Drills", r.Drills)
		writeList(&b, "Feel cues", r.FeelCues)
	}
	if in.HasVideo {
		b.WriteString("\nBase every observation on the attached video. ")
		fmt.Fprintf(&b, "If the video does not clearly show this part of the swing, write %q as the first technicalBreakdown item.\n", VideoUnclear)
	}
	b.WriteString(`
Respond with a single JSON object and nothing else:
{"goodAspects": [..], "improvementAreas": [..], "technicalBreakdown": [..], "recommendations": [..], "feelTips": [..]}
Each array holds two to four short sentences.
`)
	return b.String()
}
