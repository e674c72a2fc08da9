package main

import (
	"bytes"
	"context"
	"igmetrics/internal/models"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const screenText = "подписчики 44,500\nподписки 210\nпубликации 312\nКоуч по медитации и осознанности"

func TestParseText(t *testing.T) {
	out, err := parseText(context.Background(), "@Anna_Yoga", screenText, true)
	require.NoError(t, err)

	assert.Equal(t, "anna_yoga", out.Profile.Username)
	assert.Equal(t, int64(44500), out.Profile.Followers)
	assert.Equal(t, int64(210), out.Profile.Following)
	assert.Equal(t, int64(312), out.Profile.PostsCount)
	assert.Equal(t, models.SourceOCR, out.Source)
	assert.Contains(t, out.Report, "44.5K")
}

func TestParseText_NoText(t *testing.T) {
	_, err := parseText(context.Background(), "anna", "   ", false)
	assert.ErrorIs(t, err, models.ErrExtractionAmbiguity)
}

func TestParseCommand_Stdin(t *testing.T) {
	root := newRootCommand()
	var stdout bytes.Buffer
	root.SetOut(&stdout)
	root.SetIn(strings.NewReader(screenText))
	root.SetArgs([]string{"parse", "--username", "anna"})

	require.NoError(t, root.Execute())

	var out parseOutput
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
	assert.Equal(t, "anna", out.Profile.Username)
	assert.Equal(t, int64(44500), out.Profile.Followers)
	assert.Empty(t, out.Report)
}
