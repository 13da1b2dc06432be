package factcheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseVerdict(t *testing.T) {
	cases := map[string]Verdict{
		"True":                                VerdictTrue,
		"**Mostly True**":                     VerdictMostlyTrue,
		"mostly-false":                        VerdictMostlyFalse,
		"MIXED":                               VerdictMixed,
		"Half True":                           VerdictMixed,
		"Misleading.":                         VerdictMixed,
		"Pants on Fire!":                      VerdictFalse,
		"[False]":                             VerdictFalse,
		"False. The video was edited.":        VerdictFalse,
		"Mostly false – the chart is cropped": VerdictMostlyFalse,
		"Unproven":                            VerdictUnverified,
		"insufficient evidence":               VerdictUnverified,
		"":                                    VerdictUnverified,
		"trueish":                             VerdictUnverified,
		"Probably":                            VerdictUnverified,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseVerdict(in), "ParseVerdict(%q)", in)
	}
}

func TestMatchVerdictReportsRecognition(t *testing.T) {
	v, ok := MatchVerdict("Unverified")
	assert.True(t, ok)
	assert.Equal(t, VerdictUnverified, v)

	v, ok = MatchVerdict("no idea")
	assert.False(t, ok)
	assert.Equal(t, VerdictUnverified, v)
}

func TestExactVerdictRejectsTrailingWords(t *testing.T) {
	v, ok := ExactVerdict("**Pants on Fire**")
	assert.True(t, ok)
	assert.Equal(t, VerdictFalse, v)

	for _, s := range []string{"True Crime", "Fake Meat", "Mixed signals", "False. The video was edited."} {
		_, ok := ExactVerdict(s)
		assert.False(t, ok, s)
	}
}

func TestAllVerdictsAreValid(t *testing.T) {
	all := AllVerdicts()
	assert.Len(t, all, 6)
	for _, v := range all {
		assert.True(t, v.Valid(), string(v))
	}
	assert.False(t, Verdict("Probably").Valid())
}
