package telegram

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anton-sementsov/parser-upw/internal/models"
)

func TestFormatJobMessage_Layout(t *testing.T) {
	posted := time.Date(2026, 8, 29, 14, 30, 0, 0, time.UTC)
	record := models.JobRecord{
		Title:       "Go backend developer",
		URL:         "https://www.upwork.com/jobs/Go-backend_~05",
		Description: "Build a REST API in Go.",
		PostedAt:    &posted,
	}

	msg := FormatJobMessage(record)
	lines := strings.Split(msg, "\n")

	require.Len(t, lines, 9)
	assert.Equal(t, "---", lines[0])
	assert.Equal(t, "Go backend developer", lines[1])
	assert.Equal(t, "---", lines[2])
	assert.Equal(t, "https://www.upwork.com/jobs/Go-backend_~05", lines[3])
	assert.Equal(t, "---", lines[4])
	assert.Equal(t, "2026-08-29 14:30", lines[5])
	assert.Equal(t, "---", lines[6])
	assert.Equal(t, "Build a REST API in Go.", lines[7])
	assert.Equal(t, "---", lines[8])
}

func TestFormatJobMessage_TruncatesDescription(t *testing.T) {
	record := models.JobRecord{
		Title:       "Long gig",
		URL:         "https://www.upwork.com/jobs/Long_~08",
		Description: strings.Repeat("x", 900),
	}

	msg := FormatJobMessage(record)
	lines := strings.Split(msg, "\n")
	description := lines[7]

	runes := []rune(description)
	require.Len(t, runes, 801)
	assert.Equal(t, strings.Repeat("x", 800), string(runes[:800]))
	assert.Equal(t, '…', runes[800])
}

func TestFormatJobMessage_ShortDescriptionUntouched(t *testing.T) {
	record := models.JobRecord{
		Title:       "Short gig",
		URL:         "https://www.upwork.com/jobs/Short_~09",
		Description: strings.Repeat("x", 800),
	}

	msg := FormatJobMessage(record)
	assert.NotContains(t, msg, "…")
}

func TestFormatJobMessage_NoPostedDate(t *testing.T) {
	record := models.JobRecord{
		Title: "Undated gig",
		URL:   "https://www.upwork.com/jobs/Undated_~10",
	}

	lines := strings.Split(FormatJobMessage(record), "\n")
	require.Len(t, lines, 9)
	assert.Equal(t, "", lines[5])
}
