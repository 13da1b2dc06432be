package factcheck

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAndValidateClaim(t *testing.T) {
	assert.Equal(t, "the moon is made of cheese", NormalizeClaim("  the moon \n is made\tof cheese "))

	assert.ErrorIs(t, ValidateClaim("too short"), ErrInvalidClaim)
	assert.ErrorIs(t, ValidateClaim(strings.Repeat("a", MaxClaimRunes+1)), ErrInvalidClaim)
	assert.NoError(t, ValidateClaim("the moon is made of cheese"))
	// 按 rune 计数
	assert.NoError(t, ValidateClaim(strings.Repeat("月", MinClaimRunes)))
}

func TestCacheKeyIgnoresCaseAndSpacing(t *testing.T) {
	a := CacheKey("The Moon is  made of cheese")
	b := CacheKey("the moon is made of cheese ")
	c := CacheKey("the moon is made of rock")

	assert.True(t, strings.HasPrefix(a, cacheKeyPrefix))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
