package extraction

import (
	"context"
	"errors"
	"igmetrics/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ogPage = `<html><head>
<meta property="og:description" content="44K Followers, 210 Following, 312 Posts - See Instagram photos and videos from Anna (@anna)">
</head><body><script>var x = 1;</script><div><span>Коуч по медитации и осознанности</span></div></body></html>`

func TestChain_FallsBackToDOMText(t *testing.T) {
	chain := Chain{StructuredExtractor{}, DOMTextExtractor{}}

	res, err := chain.Run(context.Background(), Input{Username: "anna", Page: []byte(ogPage)})
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, models.SourceDOM, res.Source)
	assert.Equal(t, int64(44000), res.Followers)
	assert.Equal(t, int64(210), res.Following)
	assert.Equal(t, int64(312), res.PostsCount)
	assert.Equal(t, "Коуч по медитации и осознанности", res.Bio)
}

func TestChain_StructuredWins(t *testing.T) {
	page := `{"graphql":{"user":{"edge_followed_by":{"count":9000},"edge_follow":{"count":10},"edge_owner_to_timeline_media":{"count":5}}}}`
	chain := Chain{StructuredExtractor{}, DOMTextExtractor{}}

	res, err := chain.Run(context.Background(), Input{Page: []byte(page)})
	require.NoError(t, err)
	assert.Equal(t, models.SourceStructured, res.Source)
	assert.Equal(t, int64(9000), res.Followers)
}

func TestChain_TextExtractor(t *testing.T) {
	text := "подписчики 44,500\nподписки 210\nпубликации 312\nДуховный наставник, помогаю людям"

	res, err := Chain{TextExtractor{}}.Run(context.Background(), Input{OCRText: text})
	require.NoError(t, err)

	assert.Equal(t, models.SourceOCR, res.Source)
	assert.Equal(t, int64(44500), res.Followers)
	assert.Equal(t, int64(210), res.Following)
	assert.Equal(t, int64(312), res.PostsCount)
	assert.Contains(t, res.Bio, "Духовный наставник")
	assert.Equal(t, 3, res.Candidates)
}

func TestChain_NothingUsable(t *testing.T) {
	chain := Chain{StructuredExtractor{}, TextExtractor{}}

	res, err := chain.Run(context.Background(), Input{Username: "ghost", OCRText: "просто текст без цифр"})
	assert.True(t, errors.Is(err, models.ErrExtractionAmbiguity))
	require.NotNil(t, res)
	assert.False(t, res.Usable())
	assert.Equal(t, "просто текст без цифр", res.Bio)
}

func TestChain_NoInput(t *testing.T) {
	res, err := Chain{StructuredExtractor{}, TextExtractor{}}.Run(context.Background(), Input{})
	assert.ErrorIs(t, err, models.ErrExtractionAmbiguity)
	assert.Nil(t, res)
}

func TestChain_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Chain{TextExtractor{}}.Run(ctx, Input{OCRText: "44,500 followers"})
	assert.ErrorIs(t, err, context.Canceled)
}
