package factcheck

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MaxQueries     = 3
	maxQueryRunes  = 200
	queryMaxTokens = 256
)

func buildQueryPrompt(claim string) string {
	return fmt.Sprintf(`You help professional fact-checkers research claims.

Write up to %d short web search queries that would surface evidence to confirm OR refute the claim below.
Prefer queries that find primary sources, official statistics, and existing fact-checks.
Keep each query under 12 words. Do not add explanations.

Return ONLY the queries, one per line.

Claim: %s`, MaxQueries, claim)
}

// 行首的编号或项目符号：1. / 2) / - / * / •
var queryBulletRE = regexp.MustCompile(`^\s*(?:\d+[.)]|[-*•])\s*`)

// parseQueries 从模型输出中逐行提取查询语句，去掉编号、引号与重复项；一条都没有时回退到声明本身
func parseQueries(text, claim string) []string {
	out := make([]string, 0, MaxQueries)
	seen := make(map[string]struct{})

	for _, line := range strings.Split(text, "\n") {
		q := queryBulletRE.ReplaceAllString(strings.TrimSpace(line), "")
		q = strings.Trim(q, " \t\"'`“”")
		q = strings.TrimPrefix(q, "Query: ")
		if q == "" || strings.HasSuffix(q, ":") || utf8.RuneCountInString(q) > maxQueryRunes {
			continue
		}
		key := strings.ToLower(q)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, q)
		if len(out) == MaxQueries {
			break
		}
	}

	if len(out) == 0 {
		out = append(out, claim)
	}
	return out
}
