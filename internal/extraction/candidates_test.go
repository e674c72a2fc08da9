package extraction

import (
	"igmetrics/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func valuesByLabel(cands []models.NumberCandidate) map[models.Label][]int64 {
	out := make(map[models.Label][]int64)
	for _, c := range cands {
		out[c.Label] = append(out[c.Label], c.Value)
	}
	return out
}

func TestExtractCandidates_LabelFirstLines(t *testing.T) {
	text := "подписчики 44,500\nподписки 210\nпубликации 312\nДуховный наставник, помогаю людям"

	got := valuesByLabel(ExtractCandidates(text))

	assert.Equal(t, []int64{44500}, got[models.LabelFollowers])
	assert.Equal(t, []int64{210}, got[models.LabelFollowing])
	assert.Equal(t, []int64{312}, got[models.LabelPosts])
	assert.Empty(t, got[models.LabelNone])
}

func TestExtractCandidates_NumberAboveCaption(t *testing.T) {
	text := "312\nпубликации\n44,5 тыс.\nподписчики\n210\nподписки"

	got := valuesByLabel(ExtractCandidates(text))

	assert.Equal(t, []int64{312}, got[models.LabelPosts])
	assert.Equal(t, []int64{44500}, got[models.LabelFollowers])
	assert.Equal(t, []int64{210}, got[models.LabelFollowing])
}

func TestExtractCandidates_NumberFirstLine(t *testing.T) {
	cands := ExtractCandidates("44K Followers, 210 Following, 312 Posts")
	require.Len(t, cands, 3)

	assert.Equal(t, models.LabelFollowers, cands[0].Label)
	assert.Equal(t, int64(44000), cands[0].Value)
	assert.Equal(t, models.ScaleThousand, cands[0].Scale)
	assert.Equal(t, "44", cands[0].RawDigits)

	assert.Equal(t, models.LabelFollowing, cands[1].Label)
	assert.Equal(t, int64(210), cands[1].Value)
	assert.Equal(t, models.LabelPosts, cands[2].Label)
	assert.Equal(t, int64(312), cands[2].Value)
}

func TestExtractCandidates_StatisticsScreen(t *testing.T) {
	text := "Просмотры 120 500\nВзаимодействия 2 300\nНовые подписчики 150\nСообщения 12\nПоделились 40\nER 5,2%"

	got := valuesByLabel(ExtractCandidates(text))

	assert.Equal(t, []int64{120500}, got[models.LabelViews])
	assert.Equal(t, []int64{2300}, got[models.LabelInteractions])
	assert.Equal(t, []int64{150}, got[models.LabelNewFollowers])
	assert.Equal(t, []int64{12}, got[models.LabelMessages])
	assert.Equal(t, []int64{40}, got[models.LabelShares])
	assert.Empty(t, got[models.LabelFollowers])
	assert.Empty(t, got[models.LabelNone])
}

func TestExtractCandidates_SkipsHandlesAndDates(t *testing.T) {
	cands := ExtractCandidates("@user2024 12.05.2024 44,500 подписчиков")
	require.Len(t, cands, 1)
	assert.Equal(t, int64(44500), cands[0].Value)
	assert.Equal(t, models.LabelFollowers, cands[0].Label)
}

func TestExtractCandidates_DropsSmallNoise(t *testing.T) {
	cands := ExtractCandidates("5 posts\n44,500 followers")
	require.Len(t, cands, 1)
	assert.Equal(t, int64(44500), cands[0].Value)
}

func TestExtractCandidates_KeepsSmallValuesWhenAlone(t *testing.T) {
	cands := ExtractCandidates("3 публикации")
	require.Len(t, cands, 1)
	assert.Equal(t, int64(3), cands[0].Value)
	assert.Equal(t, models.LabelPosts, cands[0].Label)
}

func TestExtractCandidates_UnlabeledShortNumbersIgnored(t *testing.T) {
	assert.Empty(t, ExtractCandidates("в 12:30 было 45 человек"))
}

func TestExtractCandidates_DecimalNeedsScale(t *testing.T) {
	got := ExtractCandidates("рейтинг 4.75 и 1.2M")
	require.Len(t, got, 1)
	assert.Equal(t, int64(1_200_000), got[0].Value)
}

func TestExtractCandidates_NonBreakingSpaces(t *testing.T) {
	cands := ExtractCandidates("44\u00a0500\u00a0подписчиков")
	require.Len(t, cands, 1)
	assert.Equal(t, int64(44500), cands[0].Value)
	assert.Equal(t, models.LabelFollowers, cands[0].Label)
}

func TestExtractCandidates_Empty(t *testing.T) {
	assert.Empty(t, ExtractCandidates(""))
	assert.Empty(t, ExtractCandidates("\n\n  \n"))
}

func TestExtractCandidates_SpacedCounterRow(t *testing.T) {
	cands := ExtractCandidates("120 450 300")
	require.Len(t, cands, 3)
	assert.Equal(t, "120", cands[0].RawDigits)
	assert.Equal(t, []int64{120, 450, 300}, valuesByLabel(cands)[models.LabelNone])

	f := Disambiguate(cands)
	assert.Equal(t, int64(450), f.Followers)
	assert.Equal(t, int64(300), f.Following)
	assert.Equal(t, int64(120), f.PostsCount)

	assert.Equal(t, []int64{312, 210}, valuesByLabel(ExtractCandidates("312 210"))[models.LabelNone])
}

func TestExtractCandidates_SpacedThousandsAnchoredByLabel(t *testing.T) {
	assert.Equal(t, []int64{120450},
		valuesByLabel(ExtractCandidates("подписчики 120 450"))[models.LabelFollowers])
	assert.Equal(t, []int64{120450},
		valuesByLabel(ExtractCandidates("120 450 followers"))[models.LabelFollowers])
	assert.Equal(t, []int64{44500},
		valuesByLabel(ExtractCandidates("44 500"))[models.LabelNone])
}
