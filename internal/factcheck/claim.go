package factcheck

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/OneOfOne/xxhash"
)

const (
	MinClaimRunes = 10
	MaxClaimRunes = 1000

	cacheKeyPrefix = "factcheck:claim:"
)

var ErrInvalidClaim = errors.New("factcheck: invalid claim")

// NormalizeClaim 去掉首尾空白并折叠内部连续空白
func NormalizeClaim(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func ValidateClaim(claim string) error {
	n := utf8.RuneCountInString(claim)
	if n < MinClaimRunes {
		return fmt.Errorf("%w: must be at least %d characters", ErrInvalidClaim, MinClaimRunes)
	}
	if n > MaxClaimRunes {
		return fmt.Errorf("%w: must be at most %d characters", ErrInvalidClaim, MaxClaimRunes)
	}
	return nil
}

// ClaimHash 对规范化（小写）后的声明做 xxhash，返回十六进制串
func ClaimHash(claim string) string {
	h := xxhash.ChecksumString64(strings.ToLower(NormalizeClaim(claim)))
	return strconv.FormatUint(h, 16)
}

// CacheKey 相同声明命中同一缓存
func CacheKey(claim string) string {
	return cacheKeyPrefix + ClaimHash(claim)
}
