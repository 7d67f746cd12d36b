package render

import (
	"strconv"
	"strings"
)

var slugReplacer = strings.NewReplacer(
	" ", "-",
	"/", "-",
	".", "-",
	":", "-",
	"?", "-",
	"&", "-",
	"=", "-",
	",", "-",
	"_", "-",
	"(", "",
	")", "",
	"[", "",
	"]", "",
	"{", "",
	"}", "",
	"#", "",
	"'", "",
	`"`, "",
)

// Slugify turns a title or URI into an anchor-friendly string.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugReplacer.Replace(s)
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return strings.Trim(s, "-")
}

// ProseID is the anchor of a narrative section: the lower-cased title with
// spaces replaced by underscores.
func ProseID(title string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(title), " ", "_"))
}

// anchors hands out unique ids. A repeated id gets a -2, -3, ... suffix in
// the order it is requested.
type anchors struct {
	used map[string]int
}

func newAnchors() *anchors {
	return &anchors{used: make(map[string]int)}
}

func (a *anchors) unique(id string) string {
	if id == "" {
		id = "section"
	}
	n := a.used[id]
	a.used[id] = n + 1
	if n == 0 {
		return id
	}
	for {
		n++
		candidate := id + "-" + strconv.Itoa(n)
		if a.used[candidate] == 0 {
			a.used[candidate] = 1
			a.used[id] = n
			return candidate
		}
	}
}

func (a *anchors) prose(title string) string { return a.unique(ProseID(title)) }

func (a *anchors) prefixed(prefix, name string) string {
	return a.unique(prefix + "_" + Slugify(name))
}
