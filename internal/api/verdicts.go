package api

import (
	"github.com/LJTian/FactHub/internal/factcheck"
	"github.com/gin-gonic/gin"
)

var verdictDescriptions = map[factcheck.Verdict]string{
	factcheck.VerdictTrue:        "The claim is accurate and nothing significant is missing.",
	factcheck.VerdictMostlyTrue:  "The claim is accurate but needs clarification or additional information.",
	factcheck.VerdictMixed:       "The claim is partially accurate but leaves out important details or takes things out of context.",
	factcheck.VerdictMostlyFalse: "The claim contains an element of truth but ignores critical facts.",
	factcheck.VerdictFalse:       "The claim is not accurate.",
	factcheck.VerdictUnverified:  "There is not enough reliable evidence to rate the claim.",
}

type verdictInfo struct {
	Label       factcheck.Verdict `json:"label"`
	Description string            `json:"description"`
}

func (s *Server) listVerdicts(c *gin.Context) {
	all := factcheck.AllVerdicts()
	out := make([]verdictInfo, 0, len(all))
	for _, v := range all {
		out = append(out, verdictInfo{Label: v, Description: verdictDescriptions[v]})
	}
	ok(c, out)
}
