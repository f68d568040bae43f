package article

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"mvdan.cc/xurls/v2"
)

// LinkKind distinguishes page links from embedded images in the links
// browser.
type LinkKind int

const (
	LinkURL LinkKind = iota
	LinkImage
)

// Link is one URL extracted from an item body.
type Link struct {
	URL  string
	Kind LinkKind
}

func (k LinkKind) String() string {
	if k == LinkImage {
		return "i"
	}
	return "u"
}

var relaxed = xurls.Relaxed()

// ExtractLinks collects anchors and image sources from an HTML fragment,
// then any bare URLs from its text, deduplicated in encounter order.
func ExtractLinks(raw string) []Link {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var out []Link
	seen := make(map[string]struct{})
	add := func(url string, kind LinkKind) {
		url = strings.TrimSpace(url)
		if url == "" {
			return
		}
		if _, dup := seen[url]; dup {
			return
		}
		seen[url] = struct{}{}
		out = append(out, Link{URL: url, Kind: kind})
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err == nil {
		doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
			href, _ := sel.Attr("href")
			add(href, LinkURL)
		})
		doc.Find("img[src]").Each(func(_ int, sel *goquery.Selection) {
			src, _ := sel.Attr("src")
			add(src, LinkImage)
		})
	}

	for _, url := range relaxed.FindAllString(Text(raw), -1) {
		if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
			add(url, LinkURL)
		}
	}
	return out
}
