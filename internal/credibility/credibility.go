// Package credibility 基于域名查表给搜索结果打可信度分，并归类来源类型。
package credibility

import (
	"net/url"
	"sort"
	"strings"

	"github.com/LJTian/FactHub/internal/search"
)

type SourceType string

const (
	TypeFactCheck  SourceType = "fact_check"
	TypeNewsWire   SourceType = "news_wire"
	TypeNews       SourceType = "news"
	TypeGovernment SourceType = "government"
	TypeAcademic   SourceType = "academic"
	TypeReference  SourceType = "reference"
	TypeSocial     SourceType = "social"
	TypeBlog       SourceType = "blog"
	TypeUnknown    SourceType = "unknown"
)

const unknownScore = 50

type entry struct {
	typ   SourceType
	score int
}

// 按可注册域名匹配（含子域名），例如 edition.cnn.com 命中 cnn.com
var domainTable = map[string]entry{
	// 事实核查机构
	"snopes.com":         {TypeFactCheck, 95},
	"politifact.com":     {TypeFactCheck, 95},
	"factcheck.org":      {TypeFactCheck, 95},
	"fullfact.org":       {TypeFactCheck, 93},
	"leadstories.com":    {TypeFactCheck, 90},
	"healthfeedback.org": {TypeFactCheck, 90},
	"sciencefeedback.co": {TypeFactCheck, 90},
	"checkyourfact.com":  {TypeFactCheck, 85},
	"truthorfiction.com": {TypeFactCheck, 85},
	"factcheck.afp.com":  {TypeFactCheck, 95},

	// 通讯社
	"apnews.com":  {TypeNewsWire, 92},
	"reuters.com": {TypeNewsWire, 92},
	"afp.com":     {TypeNewsWire, 90},

	// 主流媒体
	"bbc.com":            {TypeNews, 85},
	"bbc.co.uk":          {TypeNews, 85},
	"npr.org":            {TypeNews, 85},
	"nytimes.com":        {TypeNews, 82},
	"washingtonpost.com": {TypeNews, 82},
	"theguardian.com":    {TypeNews, 80},
	"wsj.com":            {TypeNews, 82},
	"economist.com":      {TypeNews, 82},
	"pbs.org":            {TypeNews, 82},
	"cnn.com":            {TypeNews, 75},
	"nbcnews.com":        {TypeNews, 75},
	"cbsnews.com":        {TypeNews, 75},
	"abcnews.go.com":     {TypeNews, 75},
	"usatoday.com":       {TypeNews, 72},
	"foxnews.com":        {TypeNews, 65},
	"nypost.com":         {TypeNews, 55},
	"dailymail.co.uk":    {TypeNews, 45},

	// 学术与科研
	"nature.com":              {TypeAcademic, 92},
	"science.org":             {TypeAcademic, 92},
	"thelancet.com":           {TypeAcademic, 92},
	"nejm.org":                {TypeAcademic, 92},
	"pubmed.ncbi.nlm.nih.gov": {TypeAcademic, 92},
	"arxiv.org":               {TypeAcademic, 75},
	"who.int":                 {TypeGovernment, 90},
	"un.org":                  {TypeGovernment, 85},
	"europa.eu":               {TypeGovernment, 85},

	// 参考资料
	"britannica.com": {TypeReference, 80},
	"wikipedia.org":  {TypeReference, 65},

	// 社交媒体与内容平台
	"twitter.com":   {TypeSocial, 25},
	"x.com":         {TypeSocial, 25},
	"facebook.com":  {TypeSocial, 25},
	"instagram.com": {TypeSocial, 25},
	"tiktok.com":    {TypeSocial, 20},
	"reddit.com":    {TypeSocial, 30},
	"youtube.com":   {TypeSocial, 30},
	"quora.com":     {TypeSocial, 30},

	// 博客平台
	"medium.com":    {TypeBlog, 40},
	"substack.com":  {TypeBlog, 40},
	"blogspot.com":  {TypeBlog, 35},
	"wordpress.com": {TypeBlog, 35},
	"tumblr.com":    {TypeBlog, 30},
}

// 顶级域名规则，仅在查表未命中时生效
var suffixRules = []struct {
	suffix string
	e      entry
}{
	{".gov", entry{TypeGovernment, 90}},
	{".mil", entry{TypeGovernment, 90}},
	{".gov.uk", entry{TypeGovernment, 90}},
	{".gov.au", entry{TypeGovernment, 90}},
	{".edu", entry{TypeAcademic, 85}},
	{".ac.uk", entry{TypeAcademic, 85}},
	{".edu.au", entry{TypeAcademic, 85}},
	{".org", entry{TypeUnknown, 55}},
}

// Source 是带可信度标注的引用来源
type Source struct {
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	Snippet     string     `json:"snippet"`
	Domain      string     `json:"domain"`
	Type        SourceType `json:"type"`
	Credibility int        `json:"credibility"`
	// Excerpt 为可选的正文摘录（正文抽取服务开启时填充）
	Excerpt string `json:"excerpt,omitempty"`
}

// Domain 返回去掉 www. 的小写 host，解析失败返回空串
func Domain(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}

// Classify 返回来源类型与 0..100 的可信度分
func Classify(rawURL string) (SourceType, int) {
	host := Domain(rawURL)
	if host == "" {
		return TypeUnknown, unknownScore
	}

	// 从完整 host 逐级剥离子域名查表
	for h := host; h != ""; {
		if e, ok := domainTable[h]; ok {
			return e.typ, e.score
		}
		i := strings.IndexByte(h, '.')
		if i < 0 {
			break
		}
		h = h[i+1:]
	}

	for _, r := range suffixRules {
		if strings.HasSuffix(host, r.suffix) || host == r.suffix[1:] {
			return r.e.typ, r.e.score
		}
	}
	return TypeUnknown, unknownScore
}

// Annotate 为搜索结果标注类型与分数，并按可信度降序（稳定）排序
func Annotate(results []search.Result) []Source {
	out := make([]Source, 0, len(results))
	for _, r := range results {
		typ, score := Classify(r.URL)
		out = append(out, Source{
			Title:       r.Title,
			URL:         r.URL,
			Snippet:     r.Snippet,
			Domain:      Domain(r.URL),
			Type:        typ,
			Credibility: score,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Credibility > out[j].Credibility
	})
	return out
}
