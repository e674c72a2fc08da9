package extraction

import (
	"bytes"
	"igmetrics/internal/models"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/goccy/go-json"
)

const sharedDataMarker = "window._sharedData"

// ParseStructured reads a profile page payload, either raw JSON or an HTML page
// carrying embedded JSON, and returns its counters and biography. ok is false
// when no known structure is present or all three counters are zero.
func ParseStructured(raw []byte) (models.Fields, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return models.Fields{}, false
	}
	if raw[0] == '{' || raw[0] == '[' {
		return fieldsFromJSON(raw)
	}

	for _, doc := range embeddedJSON(raw) {
		if f, ok := fieldsFromJSON(doc); ok {
			return f, true
		}
	}
	return models.Fields{}, false
}

func embeddedJSON(page []byte) [][]byte {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil
	}

	var out [][]byte
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if typ, _ := s.Attr("type"); typ == "application/json" {
			out = append(out, []byte(text))
			return
		}
		if i := strings.Index(text, sharedDataMarker); i >= 0 {
			body := text[i+len(sharedDataMarker):]
			start, end := strings.Index(body, "{"), strings.LastIndex(body, "}")
			if start >= 0 && end > start {
				out = append(out, []byte(body[start:end+1]))
			}
		}
	})
	return out
}

func fieldsFromJSON(raw []byte) (models.Fields, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var root any
	if err := dec.Decode(&root); err != nil {
		return models.Fields{}, false
	}

	user := findUser(root)
	if user == nil {
		return models.Fields{}, false
	}

	f := models.Fields{
		Followers:  counter(user, "edge_followed_by", "follower_count"),
		Following:  counter(user, "edge_follow", "following_count"),
		PostsCount: counter(user, "edge_owner_to_timeline_media", "media_count"),
	}
	if bio, ok := user["biography"].(string); ok {
		f.Bio = strings.TrimSpace(bio)
	}
	if f.Followers == 0 && f.Following == 0 && f.PostsCount == 0 {
		return models.Fields{}, false
	}
	return f, true
}

// findUser resolves the known payload shapes first and then falls back to a
// deterministic search for any object that looks like a profile node.
func findUser(root any) map[string]any {
	obj, _ := root.(map[string]any)
	if obj != nil {
		if pages, ok := dig(obj, "entry_data", "ProfilePage").([]any); ok && len(pages) > 0 {
			if page, ok := pages[0].(map[string]any); ok {
				if u, ok := dig(page, "graphql", "user").(map[string]any); ok {
					return u
				}
			}
		}
		if u, ok := dig(obj, "graphql", "user").(map[string]any); ok {
			return u
		}
		if u, ok := dig(obj, "data", "user").(map[string]any); ok {
			return u
		}
		if req, ok := obj["require"].(map[string]any); ok {
			for _, k := range sortedKeys(req) {
				if mod, ok := req[k].(map[string]any); ok {
					if u, ok := mod["user"].(map[string]any); ok {
						return u
					}
				}
			}
		}
	}
	return searchProfileNode(root, 0)
}

const maxSearchDepth = 12

func searchProfileNode(v any, depth int) map[string]any {
	if depth > maxSearchDepth {
		return nil
	}
	switch node := v.(type) {
	case map[string]any:
		if _, ok := node["edge_followed_by"]; ok {
			return node
		}
		if _, ok := node["follower_count"]; ok {
			return node
		}
		for _, k := range sortedKeys(node) {
			if u := searchProfileNode(node[k], depth+1); u != nil {
				return u
			}
		}
	case []any:
		for _, item := range node {
			if u := searchProfileNode(item, depth+1); u != nil {
				return u
			}
		}
	}
	return nil
}

func dig(obj map[string]any, path ...string) any {
	var cur any = obj
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[key]
	}
	return cur
}

func counter(user map[string]any, edge, flat string) int64 {
	if n := toInt(dig(user, edge, "count")); n > 0 {
		return n
	}
	return toInt(user[flat])
}

func toInt(v any) int64 {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil && i > 0 {
			return i
		}
		if f, err := n.Float64(); err == nil && f > 0 {
			return int64(f)
		}
	case float64:
		if n > 0 {
			return int64(n)
		}
	case string:
		if i, err := Normalize(n, ""); err == nil {
			return i
		}
	}
	return 0
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
