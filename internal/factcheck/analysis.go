package factcheck

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/LJTian/FactHub/internal/credibility"
)

const (
	analysisMaxTokens = 1500
	maxSummaryRunes   = 1500
	// NoConfidence 表示模型没有给出置信度
	NoConfidence = -1
)

// Analysis 是对模型分析文本解析后的结构
type Analysis struct {
	Verdict         Verdict  `json:"verdict"`
	Confidence      int      `json:"confidence"`
	Summary         string   `json:"summary"`
	EvidenceFor     []string `json:"evidenceFor"`
	EvidenceAgainst []string `json:"evidenceAgainst"`
	Context         string   `json:"context"`
}

func buildAnalysisPrompt(claim string, sources []credibility.Source) string {
	var b strings.Builder
	fmt.Fprintf(&b, `You are a meticulous, neutral fact-checker. Assess the claim using ONLY the numbered sources below.
Weigh higher-credibility sources more heavily. If the sources do not settle the question, say so.

Claim: %s

Sources:
`, claim)

	if len(sources) == 0 {
		b.WriteString("(no search results were found)\n")
	}
	for i, s := range sources {
		fmt.Fprintf(&b, "[%d] %s (%s, credibility %d/100)\nURL: %s\n", i+1, s.Title, s.Type, s.Credibility, s.URL)
		if s.Snippet != "" {
			fmt.Fprintf(&b, "Snippet: %s\n", s.Snippet)
		}
		if s.Excerpt != "" {
			fmt.Fprintf(&b, "Excerpt: %s\n", s.Excerpt)
		}
		b.WriteString("\n")
	}

	b.WriteString(`Respond EXACTLY in this format:
VERDICT: [True/Mostly True/Mixed/Mostly False/False/Unverified]
CONFIDENCE: [0-100]
SUMMARY: [2-4 sentences explaining the verdict]
EVIDENCE FOR:
- [evidence supporting the claim, cite sources like [1]]
EVIDENCE AGAINST:
- [evidence contradicting the claim, cite sources like [2]]
CONTEXT: [important nuance or missing context, or "None"]`)
	return b.String()
}

type section int

const (
	secVerdict section = iota
	secConfidence
	secSummary
	secFor
	secAgainst
	secContext
)

// 段落标题，兼容 **VERDICT:**、## Verdict:、> Summary: 等写法；列表项（- Context: ...）不算标题
var sectionHeaderRE = regexp.MustCompile(`(?im)^[ \t]*(?:[#>][ \t]*)*(?:\*\*|__)?[ \t]*(verdict|confidence|summary|evidence for|evidence against|context)[ \t]*(?:\*\*|__)?[ \t]*:[ \t*_]*`)

var (
	itemBulletRE = regexp.MustCompile(`^(?:[-*•]|\d+[.)])\s*`)
	confidenceRE = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(%)?`)
)

func sectionOf(name string) section {
	switch strings.ToLower(strings.Join(strings.Fields(name), " ")) {
	case "verdict":
		return secVerdict
	case "confidence":
		return secConfidence
	case "summary":
		return secSummary
	case "evidence for":
		return secFor
	case "evidence against":
		return secAgainst
	default:
		return secContext
	}
}

// ParseAnalysis 按段落标题切分模型的自由文本输出。缺少 VERDICT 时为 Unverified，缺少置信度时为 NoConfidence。
func ParseAnalysis(text string) Analysis {
	a := Analysis{Verdict: VerdictUnverified, Confidence: NoConfidence}

	locs := sectionHeaderRE.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		a.Summary = truncateRunes(collapse(text), maxSummaryRunes)
		return a
	}

	seen := make(map[section]bool)
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		sec := sectionOf(text[loc[2]:loc[3]])
		// 同一段落重复出现时只取第一次
		if seen[sec] {
			continue
		}
		seen[sec] = true
		body := strings.TrimSpace(text[loc[1]:end])

		switch sec {
		case secVerdict:
			line, _, _ := strings.Cut(body, "\n")
			a.Verdict = ParseVerdict(line)
		case secConfidence:
			if n, ok := parseConfidence(body); ok {
				a.Confidence = n
			}
		case secSummary:
			a.Summary = truncateRunes(collapse(body), maxSummaryRunes)
		case secFor:
			a.EvidenceFor = parseItems(body)
		case secAgainst:
			a.EvidenceAgainst = parseItems(body)
		case secContext:
			ctx := collapse(body)
			if !isNone(ctx) {
				a.Context = truncateRunes(ctx, maxSummaryRunes)
			}
		}
	}
	return a
}

// parseConfidence 接受 82、82%、0.82 三种写法；不带 % 且不大于 1 的数按比例换算
func parseConfidence(body string) (int, bool) {
	line, _, _ := strings.Cut(body, "\n")
	m := confidenceRE.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	if m[2] == "" && f <= 1 {
		f *= 100
	}
	return clamp(int(math.Round(f)), 0, 100), true
}

func parseItems(body string) []string {
	var items []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(itemBulletRE.ReplaceAllString(strings.TrimSpace(line), ""))
		if line == "" || isNone(line) {
			continue
		}
		items = append(items, line)
	}
	return items
}

func isNone(s string) bool {
	switch strings.ToLower(strings.Trim(s, " .[]")) {
	case "", "none", "n/a", "na", "none found", "no evidence found", "nothing":
		return true
	}
	return false
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, limit int) string {
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit]) + "…"
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
