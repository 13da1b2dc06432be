package factcheck

import (
	"sort"
	"strings"
)

// Verdict 是核查结论的固定标签集合
type Verdict string

const (
	VerdictTrue        Verdict = "True"
	VerdictMostlyTrue  Verdict = "Mostly True"
	VerdictMixed       Verdict = "Mixed"
	VerdictMostlyFalse Verdict = "Mostly False"
	VerdictFalse       Verdict = "False"
	VerdictUnverified  Verdict = "Unverified"
)

// AllVerdicts 按从真到假的顺序返回全部标签，最后是 Unverified
func AllVerdicts() []Verdict {
	return []Verdict{VerdictTrue, VerdictMostlyTrue, VerdictMixed, VerdictMostlyFalse, VerdictFalse, VerdictUnverified}
}

func (v Verdict) Valid() bool {
	for _, x := range AllVerdicts() {
		if v == x {
			return true
		}
	}
	return false
}

// 各家核查机构的评级说法到统一标签的映射，key 为规范化后的小写短语
var verdictSynonyms = map[string]Verdict{
	"true":                  VerdictTrue,
	"correct":               VerdictTrue,
	"accurate":              VerdictTrue,
	"correct attribution":   VerdictTrue,
	"mostly true":           VerdictMostlyTrue,
	"mostly correct":        VerdictMostlyTrue,
	"largely true":          VerdictMostlyTrue,
	"mixed":                 VerdictMixed,
	"mixture":               VerdictMixed,
	"half true":             VerdictMixed,
	"partly true":           VerdictMixed,
	"partly false":          VerdictMixed,
	"partially true":        VerdictMixed,
	"partially false":       VerdictMixed,
	"misleading":            VerdictMixed,
	"missing context":       VerdictMixed,
	"miscaptioned":          VerdictMixed,
	"out of context":        VerdictMixed,
	"mostly false":          VerdictMostlyFalse,
	"largely false":         VerdictMostlyFalse,
	"mostly inaccurate":     VerdictMostlyFalse,
	"false":                 VerdictFalse,
	"incorrect":             VerdictFalse,
	"inaccurate":            VerdictFalse,
	"pants on fire":         VerdictFalse,
	"fake":                  VerdictFalse,
	"fabricated":            VerdictFalse,
	"hoax":                  VerdictFalse,
	"scam":                  VerdictFalse,
	"unverified":            VerdictUnverified,
	"unproven":              VerdictUnverified,
	"unknown":               VerdictUnverified,
	"unsupported":           VerdictUnverified,
	"insufficient evidence": VerdictUnverified,
	"research in progress":  VerdictUnverified,
}

// 按长度降序的同义词，前缀匹配时优先命中更长的短语（mostly true 先于 true）
var synonymsByLength = func() []string {
	keys := make([]string, 0, len(verdictSynonyms))
	for k := range verdictSynonyms {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()

// normalizeLabel 小写、去掉 markdown 标记与引号，连字符/下划线视为空格
func normalizeLabel(s string) string {
	s = strings.ToLower(s)
	s = strings.Map(func(r rune) rune {
		switch r {
		case '*', '#', '"', '\'', '`', '[', ']', '(', ')', '“', '”', '’':
			return -1
		case '-', '_', '–', '—', '/':
			return ' '
		}
		return r
	}, s)
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimRight(s, ".!:;,")
}

// ParseVerdict 把模型或核查机构给出的评级文本映射为统一标签，无法识别时返回 Unverified
func ParseVerdict(s string) Verdict {
	v, _ := MatchVerdict(s)
	return v
}

// ExactVerdict 只接受完整的评级短语，不做前缀匹配；用于标题这类评级后面紧跟普通文字的场景
func ExactVerdict(s string) (Verdict, bool) {
	v, ok := verdictSynonyms[normalizeLabel(s)]
	if !ok {
		return VerdictUnverified, false
	}
	return v, true
}

// MatchVerdict 同 ParseVerdict，但额外返回是否真正识别出了评级
func MatchVerdict(s string) (Verdict, bool) {
	label := normalizeLabel(s)
	if label == "" {
		return VerdictUnverified, false
	}
	if v, ok := verdictSynonyms[label]; ok {
		return v, true
	}
	// "False. The claim ..." / "mostly false – the video ..." 这类带解释的写法
	for _, k := range synonymsByLength {
		if strings.HasPrefix(label, k) {
			rest := label[len(k):]
			if rest == "" || rest[0] == ' ' || rest[0] == '.' || rest[0] == ',' {
				return verdictSynonyms[k], true
			}
		}
	}
	return VerdictUnverified, false
}
