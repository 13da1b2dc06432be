package collector

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const DefaultCronSpec = "*/30 * * * *"

// Feed 订阅源目录中的一项
type Feed struct {
	Code string `yaml:"code" json:"code"`
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url" json:"url"`
	Site string `yaml:"site" json:"site"`
	// 为空时使用全局 CRON_SPEC
	Cron string `yaml:"cron,omitempty" json:"cron,omitempty"`
}

type feedCatalog struct {
	Feeds []Feed `yaml:"feeds"`
}

// DefaultFeeds 内置的事实核查机构订阅源
func DefaultFeeds() []Feed {
	return []Feed{
		{Code: "snopes", Name: "Snopes", URL: "https://www.snopes.com/feed/", Site: "https://www.snopes.com"},
		{Code: "politifact", Name: "PolitiFact", URL: "https://www.politifact.com/rss/factchecks/", Site: "https://www.politifact.com"},
		{Code: "factcheck_org", Name: "FactCheck.org", URL: "https://www.factcheck.org/feed/", Site: "https://www.factcheck.org"},
		{Code: "scicheck", Name: "SciCheck", URL: "https://www.factcheck.org/scicheck/feed/", Site: "https://www.factcheck.org/scicheck/", Cron: "15 */2 * * *"},
		{Code: "fullfact", Name: "Full Fact", URL: "https://fullfact.org/feed/all/", Site: "https://fullfact.org"},
		{Code: "healthfeedback", Name: "Health Feedback", URL: "https://healthfeedback.org/feed/", Site: "https://healthfeedback.org", Cron: "45 */2 * * *"},
		{Code: "leadstories", Name: "Lead Stories", URL: "https://leadstories.com/atom.xml", Site: "https://leadstories.com"},
	}
}

// LoadFeeds 读取 YAML 订阅源目录；path 为空时返回内置列表
func LoadFeeds(path string) ([]Feed, error) {
	if path == "" {
		return DefaultFeeds(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("collector: read feeds file: %w", err)
	}
	return ParseFeeds(data)
}

func ParseFeeds(data []byte) ([]Feed, error) {
	var cat feedCatalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("collector: parse feeds: %w", err)
	}
	seen := make(map[string]bool, len(cat.Feeds))
	out := make([]Feed, 0, len(cat.Feeds))
	for i, f := range cat.Feeds {
		f.Code = strings.TrimSpace(f.Code)
		f.URL = strings.TrimSpace(f.URL)
		if f.Code == "" || f.URL == "" {
			return nil, fmt.Errorf("collector: feed #%d: code and url are required", i+1)
		}
		if !strings.HasPrefix(f.URL, "http://") && !strings.HasPrefix(f.URL, "https://") {
			return nil, fmt.Errorf("collector: feed %q: url must be http(s)", f.Code)
		}
		if seen[f.Code] {
			return nil, fmt.Errorf("collector: duplicate feed code %q", f.Code)
		}
		seen[f.Code] = true
		if f.Name == "" {
			f.Name = f.Code
		}
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("collector: feeds file has no feeds")
	}
	return out, nil
}

// CronFor 返回订阅源自己的 cron，未配置时使用 def
func (f Feed) CronFor(def string) string {
	if f.Cron != "" {
		return f.Cron
	}
	if def != "" {
		return def
	}
	return DefaultCronSpec
}
