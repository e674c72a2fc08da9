package extraction

import (
	"igmetrics/internal/models"
	"sort"
	"strings"
	"unicode"
)

type labelVocab struct {
	label models.Label
	stems []string
}

// labelVocabulary is checked in order; a later stem cannot claim text already
// matched by an earlier one, so "новые подписчики" never counts as followers.
var labelVocabulary = []labelVocab{
	{models.LabelNewFollowers, []string{"новые подписч", "новых подписч", "new followers", "new follower"}},
	{models.LabelFollowers, []string{"подписчик", "followers", "follower"}},
	{models.LabelFollowing, []string{"подписк", "подписок", "following"}},
	{models.LabelPosts, []string{"публикац", "постов", "posts"}},
	{models.LabelViews, []string{"просмотр", "охват", "views"}},
	{models.LabelInteractions, []string{"взаимодейств", "interactions"}},
	{models.LabelMessages, []string{"сообщени", "messages"}},
	{models.LabelShares, []string{"поделил", "репост", "shares"}},
}

type labelHit struct {
	label      models.Label
	start, end int // rune offsets, widened to word boundaries
}

func findLabels(line string) []labelHit {
	lower := []rune(strings.ToLower(line))

	var hits []labelHit
	for _, v := range labelVocabulary {
		for _, stem := range v.stems {
			stemRunes := []rune(stem)
			for from := 0; from <= len(lower)-len(stemRunes); {
				i := indexRunes(lower[from:], stemRunes)
				if i < 0 {
					break
				}
				start := from + i
				end := start + len(stemRunes)
				from = end
				if !wordStart(lower, start) {
					continue
				}
				for end < len(lower) && unicode.IsLetter(lower[end]) {
					end++
				}
				if overlapsHit(hits, start, end) {
					continue
				}
				hits = append(hits, labelHit{label: v.label, start: start, end: end})
			}
		}
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].start < hits[j].start })
	return hits
}

func hasLabel(line string) bool {
	return len(findLabels(line)) > 0
}

// wordStart accepts a stem only at the beginning of a word so "reposts" is not "posts".
func wordStart(r []rune, i int) bool {
	return i == 0 || !unicode.IsLetter(r[i-1])
}

func overlapsHit(hits []labelHit, start, end int) bool {
	for _, h := range hits {
		if start < h.end && h.start < end {
			return true
		}
	}
	return false
}

func indexRunes(s, sub []rune) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		match := true
		for j := range sub {
			if s[i+j] != sub[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
