package processor

import (
	"regexp"
	"strings"

	"github.com/LJTian/FactHub/internal/factcheck"
)

var (
	// "Rating: False" / "Our ruling: Pants on Fire" / "Verdict - Misleading"
	ratingLabelRE = regexp.MustCompile(`(?i)\b(?:rating|verdict|our ruling|ruling|conclusion)\s*[:\-–]\s*([^\n.;|!?]{1,40})`)
	// 标题开头的评级："False: ..." / "Misleading - ..."
	titlePrefixRE = regexp.MustCompile(`^\s*([A-Za-z ]{2,25}?)\s*[:\-–|]\s+\S`)
	// 标题结尾的判断："... is misleading" / "... are false."
	titleSuffixRE = regexp.MustCompile(`(?i)\b(?:is|are|was|were)\s+(?:a\s+)?(mostly false|mostly true|half true|misleading|false|fake|fabricated|hoax|scam|true|unproven)\W*$`)
)

// InferRating 从标题与摘要中推断统一评级标签，识别不出返回空串
func InferRating(title, description string) string {
	for _, s := range []string{description, title} {
		if m := ratingLabelRE.FindStringSubmatch(s); m != nil {
			if v, ok := factcheck.MatchVerdict(m[1]); ok {
				return string(v)
			}
		}
	}
	// 标题前缀必须是完整的评级短语，"True Crime: ..." 这类普通标题不算
	if m := titlePrefixRE.FindStringSubmatch(title); m != nil {
		if v, ok := factcheck.ExactVerdict(strings.TrimSpace(m[1])); ok {
			return string(v)
		}
	}
	if m := titleSuffixRE.FindStringSubmatch(title); m != nil {
		if v, ok := factcheck.ExactVerdict(m[1]); ok {
			return string(v)
		}
	}
	return ""
}
