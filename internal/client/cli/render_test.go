package cli

import (
	"bytes"
	"image"
	"image/color"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/dreamteller/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderDreams(t *testing.T) {
	day := time.Date(2025, 11, 18, 9, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	renderDreams(&buf, day, nil)
	assert.Equal(t, "Dreams for Tuesday, 18 November 2025\n"+noDreamsText+"\n", buf.String())

	title, interp := "Sky", "freedom\nand change"
	buf.Reset()
	renderDreams(&buf, day, []models.Dream{
		{ID: "a", DateKey: "20251118", Input: "flying", Title: &title, Interpretation: &interp},
		{ID: "b", DateKey: "20251118", Input: "a door"},
	})
	out := buf.String()
	assert.Contains(t, out, "[a] Sky (dream1)")
	assert.Contains(t, out, "  Interpretation:\n  freedom\n  and change")
	assert.Contains(t, out, "[b] Dream (nodream)")
	assert.Contains(t, out, "Interpretation pending.")
}

func TestRenderCalendar_MondayFirst(t *testing.T) {
	var buf bytes.Buffer
	selected := time.Date(2025, 11, 18, 9, 0, 0, 0, time.UTC)
	renderCalendar(&buf, 2025, time.November, []models.DreamEntry{
		{DateKey: "20251103", HasEntry: true},
		{DateKey: "20251104", HasEntry: false},
		{DateKey: "20251118", HasEntry: true},
	}, selected)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Equal(t, "November 2025", lines[0])
	// 1 November 2025 is a Saturday.
	assert.Equal(t, strings.Repeat("     ", 5)+"  1    2", lines[2])
	assert.Equal(t, "  3 *  4    5    6    7    8    9", lines[3])
	assert.Contains(t, lines[5], "[18]*")
	assert.Len(t, lines, 2+5)
}

func TestRenderImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			if x >= 2 {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}

	var buf bytes.Buffer
	renderImage(&buf, img, 48)
	assert.Equal(t, "@@  \n@@  \n", buf.String())

	buf.Reset()
	renderImage(&buf, image.NewGray(image.Rect(0, 0, 0, 0)), 10)
	assert.Empty(t, buf.String())
}

func TestParseDay(t *testing.T) {
	now := time.Date(2025, 11, 18, 9, 0, 0, 0, time.UTC)
	sel := time.Date(2025, 11, 10, 9, 0, 0, 0, time.UTC)

	got, err := parseDay("today", sel, now)
	require.NoError(t, err)
	assert.Equal(t, now, got)

	got, err = parseDay("-3", sel, now)
	require.NoError(t, err)
	assert.Equal(t, "20251107", models.DateKey(got))

	got, err = parseDay("2024-02-29", sel, now)
	require.NoError(t, err)
	assert.Equal(t, "20240229", models.DateKey(got))

	_, err = parseDay("20230229", sel, now)
	assert.Error(t, err)
	_, err = parseDay("+x", sel, now)
	assert.Error(t, err)
}
