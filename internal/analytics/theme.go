package analytics

import (
	"igmetrics/internal/models"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	ThemeSpirituality = "spirituality"
	ThemeBusiness     = "business"
	ThemeFitness      = "fitness"
	ThemeBeauty       = "beauty"
	ThemeEducation    = "education"
	ThemeTravel       = "travel"
	ThemeFood         = "food"
	ThemeLifestyle    = "lifestyle"
)

const (
	PositioningExpert     = "expert/mentor"
	PositioningSupport    = "audience support"
	PositioningConsulting = "consulting services"
	PositioningPersonal   = "personal brand"
)

const maxKeywords = 10

type stemGroup struct {
	tag   string
	stems []string
}

var themeStems = []stemGroup{
	{ThemeSpirituality, []string{"духовн", "осознанн", "медитац", "практик", "трансформац", "исцелен", "внутренн", "spiritual", "meditat", "mindful"}},
	{ThemeBusiness, []string{"бизнес", "предпринимател", "стартап", "продаж", "маркетинг", "business", "entrepreneur", "startup", "marketing"}},
	{ThemeFitness, []string{"фитнес", "тренировк", "спорт", "здоров", "тело", "диет", "fitness", "workout", "sport"}},
	{ThemeBeauty, []string{"красот", "макияж", "косметик", "уход", "стиль", "beauty", "makeup", "skincare"}},
	{ThemeEducation, []string{"обучен", "курс", "школ", "образован", "навык", "course", "school", "learning"}},
	{ThemeTravel, []string{"путешеств", "туризм", "страны", "отпуск", "travel", "tourism"}},
	{ThemeFood, []string{"еда", "рецепт", "кулинар", "ресторан", "готов", "recipe", "cooking", "food"}},
	{ThemeLifestyle, []string{"образ жизни", "лайфстайл", "стиль жизни", "lifestyle"}},
}

var positioningStems = []stemGroup{
	{PositioningExpert, []string{"наставник", "коуч", "тренер", "mentor", "coach"}},
	{PositioningSupport, []string{"помогаю", "помощь", "i help", "helping"}},
	{PositioningConsulting, []string{"консультац", "услуг", "consult"}},
}

var stopWords = map[string]struct{}{
	"этот": {}, "эта": {}, "это": {}, "которые": {}, "который": {}, "чтобы": {},
	"также": {}, "тоже": {}, "когда": {}, "свой": {}, "своих": {}, "только": {},
	"with": {}, "your": {}, "that": {}, "this": {}, "from": {}, "have": {}, "about": {},
}

// ClassifyTheme scores a biography against the theme and positioning tables.
// Themes come back in table order.
func ClassifyTheme(bio string) models.ThemeProfile {
	lower := strings.ToLower(bio)

	p := models.ThemeProfile{
		Themes:      matchGroups(lower, themeStems),
		Positioning: matchGroups(lower, positioningStems),
		Keywords:    Keywords(bio),
	}
	if len(p.Positioning) == 0 {
		p.Positioning = []string{PositioningPersonal}
	}
	return p
}

func matchGroups(lower string, groups []stemGroup) []string {
	var out []string
	if lower == "" {
		return out
	}
	for _, g := range groups {
		for _, stem := range g.stems {
			if strings.Contains(lower, stem) {
				out = append(out, g.tag)
				break
			}
		}
	}
	return out
}

// Keywords returns up to ten distinct words longer than three letters, in
// order of appearance.
func Keywords(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, maxKeywords)
	for _, w := range words {
		if len(out) == maxKeywords {
			break
		}
		if utf8.RuneCountInString(w) <= 3 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}
