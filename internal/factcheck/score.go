package factcheck

import (
	"math"

	"github.com/LJTian/FactHub/internal/credibility"
)

const (
	defaultBaseConfidence = 50
	qualityTopN           = 5
	factCheckBonus        = 5
	maxFactCheckBonus     = 15
	thinEvidencePenalty   = 20
	unverifiedCap         = 40
)

// ScoreConfidence 综合模型自评与来源质量给出 0..100 的置信度：
// 0.6×模型置信度 + 0.4×前 5 个来源的平均可信度，事实核查机构来源每个 +5（最多 +15），
// 来源少于 2 个扣 20，Unverified 最高 40。
func ScoreConfidence(a Analysis, sources []credibility.Source) int {
	base := float64(defaultBaseConfidence)
	if a.Confidence >= 0 {
		base = float64(a.Confidence)
	}

	var quality float64
	top := sources
	if len(top) > qualityTopN {
		top = top[:qualityTopN]
	}
	if len(top) > 0 {
		sum := 0
		for _, s := range top {
			sum += s.Credibility
		}
		quality = float64(sum) / float64(len(top))
	}

	score := 0.6*base + 0.4*quality

	bonus := 0
	for _, s := range sources {
		if s.Type == credibility.TypeFactCheck {
			bonus += factCheckBonus
		}
	}
	if bonus > maxFactCheckBonus {
		bonus = maxFactCheckBonus
	}
	score += float64(bonus)

	if len(sources) < 2 {
		score -= thinEvidencePenalty
	}

	n := clamp(int(math.Round(score)), 0, 100)
	if a.Verdict == VerdictUnverified && n > unverifiedCap {
		n = unverifiedCap
	}
	return n
}
