package collector

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rssFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Example Fact Checks</title>
  <item>
    <title>Fact Check: Moon landing   footage was staged?</title>
    <link>https://checks.test/moon</link>
    <description><![CDATA[<p>Rating: <b>False</b>. The footage is authentic.</p>]]></description>
    <author>editor@checks.test</author>
    <category>Space</category>
    <category> History </category>
    <pubDate>Mon, 03 Mar 2025 10:00:00 +0000</pubDate>
  </item>
  <item>
    <title>Guid only item</title>
    <guid>https://checks.test/guid-only</guid>
    <description>plain text</description>
  </item>
  <item>
    <title>Duplicate link</title>
    <link>https://checks.test/moon</link>
  </item>
  <item>
    <title></title>
    <link>https://checks.test/untitled</link>
  </item>
</channel>
</rss>`

const atomFixture = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Atom Checks</title>
  <entry>
    <title>Viral post about vaccines is misleading</title>
    <link rel="alternate" href="https://atom.test/vaccines"/>
    <summary>Experts say the claim lacks context.</summary>
    <author><name>Jane Doe</name></author>
    <category term="Health"/>
    <published>2025-03-04T08:30:00Z</published>
  </entry>
  <entry>
    <title>Entry with content only</title>
    <link href="https://atom.test/content"/>
    <content type="html">Body text</content>
    <updated>2025-03-05T09:00:00Z</updated>
  </entry>
</feed>`

func serveFeed(t *testing.T, contentType, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/feed" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRSSFetcherParsesRSS(t *testing.T) {
	srv := serveFeed(t, "application/rss+xml; charset=utf-8", rssFixture)

	f := &RSSFetcher{Code: "checks", URL: srv.URL + "/feed"}
	assert.Equal(t, "checks", f.Name())

	items, err := f.Fetch()
	require.NoError(t, err)
	require.Len(t, items, 2)

	first := items[0]
	assert.Equal(t, "Fact Check: Moon landing footage was staged?", first.Title)
	assert.Equal(t, "https://checks.test/moon", first.URL)
	assert.Equal(t, "checks", first.Source)
	assert.Contains(t, first.Description, "Rating:")
	assert.Equal(t, "editor@checks.test", first.Author)
	assert.Equal(t, []string{"Space", "History"}, first.Categories)
	assert.Equal(t, "Mon, 03 Mar 2025 10:00:00 +0000", first.PublishedRaw)
	assert.Equal(t, "rss", first.RawData["format"])

	assert.Equal(t, "https://checks.test/guid-only", items[1].URL)
	assert.Empty(t, items[1].Categories)
}

func TestRSSFetcherParsesAtom(t *testing.T) {
	srv := serveFeed(t, "application/atom+xml", atomFixture)

	items, err := (&RSSFetcher{Code: "atom", URL: srv.URL + "/feed"}).Fetch()
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "https://atom.test/vaccines", items[0].URL)
	assert.Equal(t, "Experts say the claim lacks context.", strings.TrimSpace(items[0].Description))
	assert.Equal(t, "Jane Doe", items[0].Author)
	assert.Equal(t, []string{"Health"}, items[0].Categories)
	assert.Equal(t, "2025-03-04T08:30:00Z", items[0].PublishedRaw)

	assert.Equal(t, "https://atom.test/content", items[1].URL)
	assert.Equal(t, "Body text", strings.TrimSpace(items[1].Description))
	assert.Equal(t, "2025-03-05T09:00:00Z", items[1].PublishedRaw)
}

func TestRSSFetcherCapsItems(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?><rss version="2.0"><channel>`)
	for i := 0; i < rssMaxItems+20; i++ {
		b.WriteString("<item><title>t</title><link>https://cap.test/")
		b.WriteString(strings.Repeat("x", i+1))
		b.WriteString("</link></item>")
	}
	b.WriteString(`</channel></rss>`)
	srv := serveFeed(t, "text/xml", b.String())

	items, err := (&RSSFetcher{Code: "cap", URL: srv.URL + "/feed"}).Fetch()
	require.NoError(t, err)
	assert.Len(t, items, rssMaxItems)
}

func TestRSSFetcherReportsHTTPErrors(t *testing.T) {
	srv := serveFeed(t, "application/rss+xml", rssFixture)

	_, err := (&RSSFetcher{Code: "missing", URL: srv.URL + "/nope"}).Fetch()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}
