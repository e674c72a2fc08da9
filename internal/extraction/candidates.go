package extraction

import (
	"igmetrics/internal/models"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// labelWindow is how many runes may separate a number from its label on one line.
const labelWindow = 24

// noiseCeiling: values at or below it are OCR artifacts unless nothing else is found.
const noiseCeiling = 10

type numberToken struct {
	raw       string
	scale     models.ScaleSuffix
	decimal   bool
	intDigits int
	start     int
	end       int
}

type lineInfo struct {
	runes  []rune
	tokens []numberToken
	labels []labelHit
}

// ExtractCandidates mines a mixed Russian/English text blob for metric numbers.
func ExtractCandidates(text string) []models.NumberCandidate {
	lines := splitLines(text)
	infos := make([]lineInfo, len(lines))
	for i, l := range lines {
		r := []rune(l)
		labels := findLabels(l)
		infos[i] = lineInfo{runes: r, tokens: tokenizeLine(r, labels), labels: labels}
	}
	numberAbove := numberAboveLabel(infos)

	var out []models.NumberCandidate
	for li, info := range infos {
		labelFirst := len(info.labels) > 0 &&
			(len(info.tokens) == 0 || info.labels[0].start < info.tokens[0].start)

		for ti, tok := range info.tokens {
			label := nearestLabel(info, ti, labelFirst)
			if label == models.LabelNone && info.standaloneNumber() {
				label = adjacentLineLabel(infos, li, numberAbove)
			}
			if !acceptToken(tok, label) {
				continue
			}
			v, err := NormalizeScaled(tok.raw, tok.scale)
			if err != nil {
				continue
			}
			out = append(out, models.NumberCandidate{
				RawDigits: tok.raw,
				Scale:     tok.scale,
				Label:     label,
				Value:     v,
				Line:      li,
				Offset:    tok.start,
			})
		}
	}
	return dropNoise(out)
}

// splitLines normalizes OCR output and returns its non-blank lines.
func splitLines(text string) []string {
	text = norm.NFKC.String(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var lines []string
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimSpace(l)
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func tokenizeLine(line []rune, labels []labelHit) []numberToken {
	var out []numberToken
	for i := 0; i < len(line); {
		if !unicode.IsDigit(line[i]) {
			i++
			continue
		}
		// digits glued to a word or handle (user123, @abc2024) are not metrics
		if i > 0 && (unicode.IsLetter(line[i-1]) || line[i-1] == '_' || line[i-1] == '@') {
			for i < len(line) && (unicode.IsDigit(line[i]) || unicode.IsLetter(line[i]) || line[i] == '_') {
				i++
			}
			continue
		}

		start := i
		j := digitRun(line, i)
		intDigits := j - i

		if intDigits <= 3 {
			firstSpace, lead := -1, 0
			for j < len(line) && isGroupSep(line[j]) && j+4 <= len(line) &&
				digitRun(line, j+1) == j+4 {
				if line[j] == ' ' && firstSpace < 0 {
					firstSpace, lead = j, intDigits
				}
				j += 4
				intDigits += 3
			}
			// "44 500" is one number; "120 450 300" is a row of counters
			// unless a label or unit pins the run together.
			if firstSpace >= 0 && lead > 2 && !spacedRunAnchored(line, labels, start, j) {
				j, intDigits = firstSpace, lead
			}
		}

		decimal := false
		if j+1 < len(line) && (line[j] == '.' || line[j] == ',') && unicode.IsDigit(line[j+1]) {
			k := digitRun(line, j+1)
			// 12.05.2024 or 1.2.3 is a date or version, not a count
			if k+1 < len(line) && (line[k] == '.' || line[k] == ',') && unicode.IsDigit(line[k+1]) {
				i = skipNumberish(line, k)
				continue
			}
			decimal = true
			j = k
		}
		numEnd := j

		if isPercent(line, j) {
			i = j + 1
			continue
		}

		scale, end := readScale(line, j)
		if scale == models.ScaleNone {
			end = numEnd
		}

		out = append(out, numberToken{
			raw:       string(line[start:numEnd]),
			scale:     scale,
			decimal:   decimal,
			intDigits: intDigits,
			start:     start,
			end:       end,
		})
		i = end
	}
	return out
}

func digitRun(line []rune, i int) int {
	for i < len(line) && unicode.IsDigit(line[i]) {
		i++
	}
	return i
}

// spacedRunAnchored reports a label directly before the run, or a label or
// scale unit directly after it.
func spacedRunAnchored(line []rune, labels []labelHit, start, end int) bool {
	if scale, _ := readScale(line, end); scale != models.ScaleNone {
		return true
	}
	before := start
	for before > 0 && line[before-1] == ' ' {
		before--
	}
	after := end
	for after < len(line) && line[after] == ' ' {
		after++
	}
	for _, h := range labels {
		if h.end == before || h.start == after {
			return true
		}
	}
	return false
}

func isGroupSep(r rune) bool {
	return r == ',' || r == '.' || r == ' '
}

func skipNumberish(line []rune, i int) int {
	for i < len(line) && (unicode.IsDigit(line[i]) || line[i] == '.' || line[i] == ',') {
		i++
	}
	return i
}

func isPercent(line []rune, i int) bool {
	for i < len(line) && line[i] == ' ' {
		i++
	}
	return i < len(line) && line[i] == '%'
}

// readScale looks at the word following a number. It returns the scale and the
// offset just past the unit word when the word is a unit.
func readScale(line []rune, i int) (models.ScaleSuffix, int) {
	for i < len(line) && line[i] == ' ' {
		i++
	}
	w := i
	for w < len(line) && unicode.IsLetter(line[w]) {
		w++
	}
	if w == i {
		return models.ScaleNone, i
	}
	scale := ParseScale(string(line[i:w]))
	if scale != models.ScaleNone && w < len(line) && line[w] == '.' {
		w++
	}
	return scale, w
}

func acceptToken(tok numberToken, label models.Label) bool {
	switch {
	case tok.scale != models.ScaleNone:
		return true
	case tok.decimal:
		return false
	case tok.intDigits >= 3:
		return true
	default:
		return label != models.LabelNone
	}
}

// nearestLabel picks the closest label within the window on the token's line.
// Lines that start with a label ("подписчики 44,500") look backwards first,
// lines that start with a number ("44,5K followers") look forwards first.
func nearestLabel(info lineInfo, ti int, labelFirst bool) models.Label {
	tok := info.tokens[ti]
	pick := func(before bool) models.Label {
		best, bestDist := models.LabelNone, labelWindow+1
		for _, h := range info.labels {
			var d, gapStart, gapEnd int
			switch {
			case before && h.end <= tok.start:
				d, gapStart, gapEnd = tok.start-h.end, h.end, tok.start
			case !before && h.start >= tok.end:
				d, gapStart, gapEnd = h.start-tok.end, tok.end, h.start
			default:
				continue
			}
			if d >= bestDist || tokenBetween(info.tokens, ti, gapStart, gapEnd) {
				continue
			}
			best, bestDist = h.label, d
		}
		return best
	}
	if l := pick(labelFirst); l != models.LabelNone {
		return l
	}
	return pick(!labelFirst)
}

func tokenBetween(tokens []numberToken, self, from, to int) bool {
	for i, t := range tokens {
		if i != self && t.start >= from && t.end <= to {
			return true
		}
	}
	return false
}

// standaloneNumber reports a line holding a single number and nothing else wordy.
func (li lineInfo) standaloneNumber() bool {
	if len(li.tokens) != 1 || len(li.labels) != 0 {
		return false
	}
	tok := li.tokens[0]
	for i, r := range li.runes {
		if i >= tok.start && i < tok.end {
			continue
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func (li lineInfo) labelOnly() bool {
	return len(li.labels) > 0 && len(li.tokens) == 0
}

// numberAboveLabel detects the app layout where each counter sits on its own
// line directly above its caption. Defaults to true.
func numberAboveLabel(infos []lineInfo) bool {
	for i := 0; i+1 < len(infos); i++ {
		if infos[i].standaloneNumber() && infos[i+1].labelOnly() {
			return true
		}
		if infos[i].labelOnly() && infos[i+1].standaloneNumber() {
			return false
		}
	}
	return true
}

func adjacentLineLabel(infos []lineInfo, li int, numberAbove bool) models.Label {
	order := []int{li - 1, li + 1}
	if numberAbove {
		order = []int{li + 1, li - 1}
	}
	for _, n := range order {
		if n < 0 || n >= len(infos) || !infos[n].labelOnly() {
			continue
		}
		return infos[n].labels[0].label
	}
	return models.LabelNone
}

func dropNoise(cands []models.NumberCandidate) []models.NumberCandidate {
	kept := make([]models.NumberCandidate, 0, len(cands))
	for _, c := range cands {
		if c.Value > noiseCeiling {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		return cands
	}
	return kept
}
