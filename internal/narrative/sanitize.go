package narrative

import (
	"regexp"
	"strings"
)

var (
	headingRe    = regexp.MustCompile(`(?m)^\s*#{1,6}\s*`)
	bulletRe     = regexp.MustCompile(`(?m)^\s*[-*•]\s+`)
	numberedRe   = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
	spaceRunRe   = regexp.MustCompile(`[ \t]+`)
	blankLinesRe = regexp.MustCompile(`\n{3,}`)
	// Boilerplate disclaimers models like to append.
	disclaimerRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bini\s+adalah\s+ringkasan\s+internal\b.*?(?:\.\s*|$)`),
		regexp.MustCompile(`(?i)\bbukan\s+pendapat\s+hukum\s+final\b.*?(?:\.\s*|$)`),
	}
	symbolReplacer = strings.NewReplacer(
		"*", "",
		"_", "",
		"—", " ",
		";", ",",
		":", " ",
	)
)

// Sanitize flattens model output into plain prose: markdown headings, bold
// markers and list prefixes go, restricted punctuation is replaced, runs of
// spaces collapse and known disclaimers are dropped.
func Sanitize(text string) string {
	t := headingRe.ReplaceAllString(text, "")
	t = strings.ReplaceAll(t, "**", "")
	t = bulletRe.ReplaceAllString(t, "")
	t = numberedRe.ReplaceAllString(t, "")
	t = symbolReplacer.Replace(t)
	t = spaceRunRe.ReplaceAllString(t, " ")
	t = blankLinesRe.ReplaceAllString(t, "\n\n")
	for _, re := range disclaimerRes {
		t = re.ReplaceAllString(t, "")
	}
	return strings.TrimSpace(t)
}
