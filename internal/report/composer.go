// Package report turns reconciled metrics and derived signals into the
// advertiser-facing text report.
package report

import (
	"fmt"
	"igmetrics/internal/analytics"
	"igmetrics/internal/models"
	"strconv"
	"strings"
)

const (
	maxBioRunes      = 200
	reportKeywords   = 5
	reelsViewsRatio  = 50
	liveMonthlyER    = 5
	strongGrowthRate = 5
	fewMessages      = 50
	manySharesCount  = 30
	highMonthlyER    = 10
)

var themeNames = map[string]string{
	analytics.ThemeSpirituality: "духовность",
	analytics.ThemeBusiness:     "бизнес",
	analytics.ThemeFitness:      "фитнес",
	analytics.ThemeBeauty:       "красота",
	analytics.ThemeEducation:    "образование",
	analytics.ThemeTravel:       "путешествия",
	analytics.ThemeFood:         "еда",
	analytics.ThemeLifestyle:    "лайфстайл",
}

var positioningNames = map[string]string{
	analytics.PositioningExpert:     "эксперт/наставник",
	analytics.PositioningSupport:    "помощь аудитории",
	analytics.PositioningConsulting: "консультационные услуги",
	analytics.PositioningPersonal:   "личный бренд",
}

// Input is everything a report is composed from.
type Input struct {
	Profile    *models.ProfileMetrics
	Engagement analytics.Engagement
	Theme      models.ThemeProfile
	Partners   []string
}

// NewInput derives engagement, theme and partners from a reconciled profile.
func NewInput(p *models.ProfileMetrics) Input {
	theme := analytics.ClassifyTheme(p.Bio)
	return Input{
		Profile:    p,
		Engagement: analytics.Estimate(p),
		Theme:      theme,
		Partners:   analytics.MatchPartners(theme.Themes),
	}
}

// Compose renders the fixed-section Russian report. It has no side effects.
func Compose(in Input) string {
	p := in.Profile
	if p == nil {
		p = &models.ProfileMetrics{}
	}
	var b strings.Builder

	writeMetrics(&b, p, in)
	writeStatistics(&b, p, in.Engagement)
	writeEngagement(&b, in.Engagement)
	writeTheme(&b, p, in.Theme)
	writePartners(&b, in.Partners)
	writeStrengths(&b, p)
	b.WriteString(improvements)

	return b.String()
}

func writeMetrics(b *strings.Builder, p *models.ProfileMetrics, in Input) {
	fmt.Fprintf(b, "✅ 1. Цифры и статистика по аккаунту @%s\n\n", p.Username)
	b.WriteString("📊 Основные показатели профиля\n\n")
	fmt.Fprintf(b, "Подписчики: %s\n", FormatNumber(p.Followers))
	fmt.Fprintf(b, "Подписки: %s\n", FormatNumber(p.Following))
	fmt.Fprintf(b, "Количество публикаций: %s\n", FormatNumber(p.PostsCount))

	if p.Bio == "" {
		return
	}
	names := make([]string, 0, len(in.Theme.Positioning))
	for _, pos := range in.Theme.Positioning {
		names = append(names, localized(positioningNames, pos))
	}
	fmt.Fprintf(b, "Позиционирование: %s\n", strings.Join(names, ", "))

	if hasTelegramLink(p.Bio) {
		b.WriteString("Ссылка в био: активный переход в Telegram — это большой плюс для рекламодателей (конверсионная модель)\n")
	}
}

func writeStatistics(b *strings.Builder, p *models.ProfileMetrics, e analytics.Engagement) {
	if p.Views <= 0 && p.Interactions <= 0 {
		return
	}
	b.WriteString("\n📈 Профессиональная аналитика (за месяц)\n\nПо скриншоту:\n")

	if p.Views > 0 {
		fmt.Fprintf(b, "Просмотры: %s\n", FormatNumber(p.Views))
		if reelsReach(p) {
			b.WriteString("Это очень сильный показатель для профиля — значит, Reels хорошо разлетаются в рекомендации.\n")
		}
	}
	if p.Interactions > 0 {
		fmt.Fprintf(b, "Взаимодействия: %s\n", FormatNumber(p.Interactions))
		if e.MonthlyER != nil && *e.MonthlyER > liveMonthlyER {
			b.WriteString("Уровень выше среднего => аккаунт \"живой\", аудитория реально вовлечена.\n")
		}
	}
	if p.NewFollowers > 0 {
		fmt.Fprintf(b, "Новые подписчики: %s за 30 дней\n", FormatNumber(p.NewFollowers))
		if g := e.GrowthRate; g != nil {
			if *g > strongGrowthRate {
				fmt.Fprintf(b, "Рост ~%s в месяц — отличный органический показатель.\n", percent(*g))
			} else {
				fmt.Fprintf(b, "Рост ~%s в месяц — стабильный рост.\n", percent(*g))
			}
		}
	}
	if p.Messages > 0 {
		fmt.Fprintf(b, "Сообщений: %s\n", strconv.FormatInt(p.Messages, 10))
		if p.Messages < fewMessages {
			b.WriteString("Небольшой показатель — но это нормально, если основной фокус не на личных консультациях через Direct.\n")
		}
	}
	if p.Shares > 0 {
		fmt.Fprintf(b, "Контент, которым поделились: %s\n", strconv.FormatInt(p.Shares, 10))
		if p.Shares > manySharesCount {
			b.WriteString("Это очень хорошо. Шеринги — индикатор ценности контента.\n")
		}
	}
}

func writeEngagement(b *strings.Builder, e analytics.Engagement) {
	hasRate := e.Rate != nil && *e.Rate > 0
	if e.MonthlyER == nil && !hasRate {
		return
	}
	b.WriteString("\n📊 Расчёт ER (Engagement Rate)\n")

	if e.MonthlyER != nil {
		fmt.Fprintf(b, "Месячный ER ≈ %s\n", percent(*e.MonthlyER))
		if *e.MonthlyER > highMonthlyER {
			b.WriteString("Высокий месячный ER говорит:\n")
			b.WriteString("✔ контент \"цепляет\"\n")
			b.WriteString("✔ люди возвращаются\n")
			b.WriteString("✔ алгоритмы Instagram любят твои видео\n")
			b.WriteString("✔ высокий trust-фактор\n")
		}
		return
	}
	fmt.Fprintf(b, "ER на постах: %s\n", percent(*e.Rate*100))
}

func writeTheme(b *strings.Builder, p *models.ProfileMetrics, theme models.ThemeProfile) {
	b.WriteString("\n🌿 2. Анализ аккаунта: тематика, интересы аудитории, потенциальные рекламодатели\n\n")
	b.WriteString("🎯 Тематика аккаунта\n")

	if len(theme.Themes) > 0 {
		names := make([]string, 0, len(theme.Themes))
		for _, t := range theme.Themes {
			names = append(names, localized(themeNames, t))
		}
		b.WriteString(strings.Join(names, ", ") + "\n")
	}
	if len(theme.Keywords) > 0 {
		kw := theme.Keywords
		if len(kw) > reportKeywords {
			kw = kw[:reportKeywords]
		}
		fmt.Fprintf(b, "Ключевые слова: %s\n", strings.Join(kw, ", "))
	}
	if p.Bio != "" {
		fmt.Fprintf(b, "Биография: %s\n", truncateRunes(p.Bio, maxBioRunes))
	}
	b.WriteString(audience)
}

func writePartners(b *strings.Builder, partners []string) {
	if len(partners) == 0 {
		return
	}
	b.WriteString("\n🤝 Потенциальные рекламодатели / партнёры\n\n")
	b.WriteString("Твой профиль идеально подходит для нескольких категорий:\n\n")
	for i, partner := range partners {
		if i == analytics.MaxPartners {
			break
		}
		fmt.Fprintf(b, "%d. %s\n", i+1, partner)
	}
}

func writeStrengths(b *strings.Builder, p *models.ProfileMetrics) {
	b.WriteString("\n✨ 3. Рекомендации по улучшению аккаунта\n\n")
	b.WriteString("🌟 Сильные стороны\n\n")
	b.WriteString("✔ Чистое позиционирование\n")
	b.WriteString("✔ Высокий уровень вовлеченности\n")
	b.WriteString("✔ Органический рост аудитории\n")
	if reelsReach(p) {
		b.WriteString("✔ Reels работают отлично — высокий охват\n")
	}
}

const audience = `
👥 Предполагаемая аудитория

(по контенту и нише)

25–45 лет
Люди, ищущие поддержку, структуру, внутренний баланс
Интерес к саморазвитию и личностному росту
Аудитория готова покупать трансформационные услуги, консультации, курсы
`

const improvements = `
🔧 Что можно улучшить

1. Био сделать более продающим
   - Добавить конкретные выгоды для аудитории
   - Указать, что человек получит

2. Добавить формат: "вопрос–ответ" в сторис
   - Увеличит доверие
   - Углубит отношения с аудиторией

3. Расширить хайлайты
   - Добавить больше категорий контента
   - Сделать навигацию удобнее

4. Регулярный контент
   - Поддерживать активность
   - Постоянное взаимодействие с аудиторией
`

func reelsReach(p *models.ProfileMetrics) bool {
	return p.Views > 0 && p.Followers > 0 && float64(p.Views)/float64(p.Followers) > reelsViewsRatio
}

func hasTelegramLink(bio string) bool {
	lower := strings.ToLower(bio)
	return strings.Contains(lower, "t.me") || strings.Contains(lower, "telegram")
}

func truncateRunes(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}

func localized(names map[string]string, key string) string {
	if v, ok := names[key]; ok {
		return v
	}
	return key
}
