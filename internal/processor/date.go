package processor

import (
	"strings"
	"time"
)

// 各家 feed 实际出现过的时间格式，按常见程度排列
var dateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"January 2, 2006",
}

// parseDate 解析失败时返回 now()
func parseDate(raw string, now func() time.Time) time.Time {
	raw = strings.TrimSpace(raw)
	if raw != "" {
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return t
			}
		}
	}
	return now()
}
