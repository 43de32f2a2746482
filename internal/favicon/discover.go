package favicon

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/raysh454/phishscan/internal/utils"
)

// discoverIcon returns the absolute URL of the first <link> whose rel
// contains "icon" and which carries a non-empty href. The href is resolved
// against <base href> when present, else against pageURL.
func discoverIcon(body []byte, pageURL string) (string, bool) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", false
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", false
	}

	if href := getAttr(doc.Find("base[href]").First(), "href"); href != "" {
		if resolved, err := utils.ResolveReference(base, href); err == nil {
			if u, err := url.Parse(resolved); err == nil {
				base = u
			}
		}
	}

	var iconURL string
	doc.Find("link[rel]").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		if !strings.Contains(strings.ToLower(getAttr(link, "rel")), "icon") {
			return true
		}
		href := getAttr(link, "href")
		if href == "" {
			return true
		}
		resolved, err := utils.ResolveReference(base, href)
		if err != nil {
			return true
		}
		iconURL = resolved
		return false
	})
	return iconURL, iconURL != ""
}

// getAttr safely retrieves an attribute value from a goquery selection.
func getAttr(sel *goquery.Selection, attrName string) string {
	val, exists := sel.Attr(attrName)
	if exists {
		return strings.TrimSpace(val)
	}
	return ""
}
