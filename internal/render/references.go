package render

import (
	"regexp"
	"sort"
	"strings"
)

var (
	mdLinkRe   = regexp.MustCompile(`\[([^\]]+)\]\(\s*([^)\s]+)(?:\s+"[^"]*")?\s*\)`)
	autoLinkRe = regexp.MustCompile(`<((?:https?|ftp|mailto):[^>\s]+)>`)
	htmlLinkRe = regexp.MustCompile(`(?is)<a\s[^>]*href\s*=\s*["']([^"']+)["'][^>]*>(.*?)</a>`)
	tagRe      = regexp.MustCompile(`<[^>]+>`)
)

// Reference is a link found in a description.
type Reference struct {
	Text string
	URL  string
}

// references collects links in source order. A URL seen before is skipped.
type references struct {
	seen map[string]bool
	list []Reference
}

func newReferences() *references {
	return &references{seen: make(map[string]bool)}
}

type linkMatch struct {
	at   int
	text string
	url  string
}

func (r *references) scan(text string) {
	if text == "" {
		return
	}
	var found []linkMatch
	for _, m := range mdLinkRe.FindAllStringSubmatchIndex(text, -1) {
		found = append(found, linkMatch{m[0], text[m[2]:m[3]], text[m[4]:m[5]]})
	}
	for _, m := range autoLinkRe.FindAllStringSubmatchIndex(text, -1) {
		u := text[m[2]:m[3]]
		found = append(found, linkMatch{m[0], u, u})
	}
	for _, m := range htmlLinkRe.FindAllStringSubmatchIndex(text, -1) {
		label := strings.TrimSpace(tagRe.ReplaceAllString(text[m[4]:m[5]], ""))
		found = append(found, linkMatch{m[0], label, text[m[2]:m[3]]})
	}
	sort.SliceStable(found, func(i, j int) bool { return found[i].at < found[j].at })
	for _, f := range found {
		if r.seen[f.url] || strings.HasPrefix(f.url, "#") {
			continue
		}
		r.seen[f.url] = true
		if f.text == "" {
			f.text = f.url
		}
		r.list = append(r.list, Reference{Text: f.text, URL: f.url})
	}
}
