package analytics

// MaxPartners caps the suggestion list handed to the report.
const MaxPartners = 10

var partnerGroups = map[string][]string{
	"education": {
		"Образовательные платформы (Skillbox, Praktikum, GetCourse)",
		"Онлайн-курсы и программы",
		"Платформы для обучения",
		"Образовательные сервисы",
	},
	"wellness": {
		"БАДы и витамины премиум-сегмента",
		"Продукты для здоровья и wellness",
		"Медитативные приложения",
		"ЗОЖ бренды",
		"Био-хакерские продукты",
	},
	"mindfulness": {
		"Приложения для медитации",
		"Трекеры привычек",
		"Тайм-менеджмент сервисы",
		"Нейрософты и ИИ-ассистенты",
		"Продукты для концентрации",
	},
	"communities": {
		"Закрытые клубы и сообщества",
		"Mastermind группы",
		"Пространства развития",
		"Ретриты и духовные практики",
	},
	"eco": {
		"Эко-бренды",
		"Sustainable бренды",
		"Одежда в стиле mindfulness",
		"Ароматы, свечи, благовония",
	},
	"sport": {
		"Спортивное питание",
		"Фитнес-клубы и студии",
		"Спортивная одежда и экипировка",
	},
	"beauty": {
		"Косметические бренды",
		"Салоны красоты",
		"Уходовая косметика",
	},
	"travel": {
		"Туристические сервисы и агрегаторы",
		"Отели и ретрит-центры",
		"Авиакомпании",
	},
	"food": {
		"Фермерские продукты",
		"Сервисы доставки еды",
		"Кухонная техника",
	},
}

var themePartners = []struct {
	theme  string
	groups []string
}{
	{ThemeSpirituality, []string{"wellness", "mindfulness", "communities", "eco"}},
	{ThemeEducation, []string{"education"}},
	{ThemeBusiness, []string{"education", "mindfulness"}},
	{ThemeFitness, []string{"sport", "wellness"}},
	{ThemeBeauty, []string{"beauty", "eco"}},
	{ThemeTravel, []string{"travel"}},
	{ThemeFood, []string{"food", "wellness"}},
	{ThemeLifestyle, []string{"eco", "communities"}},
}

// MatchPartners maps themes to advertiser categories. The result is the
// deduplicated union in table order, capped at MaxPartners.
func MatchPartners(themes []string) []string {
	has := make(map[string]bool, len(themes))
	for _, t := range themes {
		has[t] = true
	}

	seen := make(map[string]bool)
	var out []string
	for _, tp := range themePartners {
		if !has[tp.theme] {
			continue
		}
		for _, g := range tp.groups {
			for _, p := range partnerGroups[g] {
				if seen[p] {
					continue
				}
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	if len(out) > MaxPartners {
		out = out[:MaxPartners]
	}
	return out
}
