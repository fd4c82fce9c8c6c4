package cli

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/dreamteller/internal/client/models"
)

const noDreamsText = "No dreams for this day."

// renderDreams prints one block per dream; uninterpreted dreams are marked
// as pending.
func renderDreams(w io.Writer, day time.Time, dreams []models.Dream) {
	fmt.Fprintf(w, "Dreams for %s\n", day.Format("Monday, 2 January 2006"))
	if len(dreams) == 0 {
		fmt.Fprintln(w, noDreamsText)
		return
	}
	for _, d := range dreams {
		fmt.Fprintf(w, "\n[%s] %s (%s)\n", d.ID, d.TitleOrFallback(), d.ImageNameOrFallback())
		fmt.Fprintf(w, "  %s\n", indent(d.Input))
		if d.IsInterpreted() {
			fmt.Fprintf(w, "  Interpretation:\n  %s\n", indent(*d.Interpretation))
		} else {
			fmt.Fprintln(w, "  Interpretation pending.")
		}
	}
}

func indent(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "\n", "\n  ")
}

// renderCalendar prints a Monday-first month grid. Days with a dream carry a
// '*', the selected day is bracketed.
func renderCalendar(w io.Writer, year int, month time.Month, entries []models.DreamEntry, selected time.Time) {
	marked := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.HasEntry {
			marked[e.DateKey] = true
		}
	}

	first := time.Date(year, month, 1, 12, 0, 0, 0, time.UTC)
	fmt.Fprintf(w, "%s %d\n", month, year)
	fmt.Fprintln(w, "  Mo   Tu   We   Th   Fr   Sa   Su")

	var sb strings.Builder
	offset := (int(first.Weekday()) + 6) % 7
	sb.WriteString(strings.Repeat("     ", offset))

	selectedKey := models.DateKey(selected)
	for d := first; d.Month() == month; d = d.AddDate(0, 0, 1) {
		key := models.DateKey(d)
		mark := " "
		if marked[key] {
			mark = "*"
		}
		if key == selectedKey {
			fmt.Fprintf(&sb, "[%2d]%s", d.Day(), mark)
		} else {
			fmt.Fprintf(&sb, " %2d %s", d.Day(), mark)
		}
		if d.Weekday() == time.Sunday {
			fmt.Fprintln(w, strings.TrimRight(sb.String(), " "))
			sb.Reset()
		}
	}
	if sb.Len() > 0 {
		fmt.Fprintln(w, strings.TrimRight(sb.String(), " "))
	}
}

func renderSubscriptions(w io.Writer, sub models.NotificationSubscription) {
	fmt.Fprintf(w, "Daily reminder:         %s\n", onOff(sub.Daily))
	fmt.Fprintf(w, "Interpretation ready:   %s\n", onOff(sub.Interpretation))
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

// ramp goes from dark to light.
const ramp = "@%#*+=-:. "

// renderImage prints img as ASCII art width characters wide. Rows are
// sampled at twice the column step since terminal cells are about twice as
// tall as they are wide.
func renderImage(w io.Writer, img image.Image, width int) {
	b := img.Bounds()
	if b.Empty() || width <= 0 {
		return
	}
	if b.Dx() < width {
		width = b.Dx()
	}
	step := float64(b.Dx()) / float64(width)
	height := int(float64(b.Dy()) / (step * 2))
	if height == 0 {
		height = 1
	}

	var sb strings.Builder
	for row := 0; row < height; row++ {
		y := b.Min.Y + int(float64(row)*step*2)
		for col := 0; col < width; col++ {
			x := b.Min.X + int(float64(col)*step)
			g := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			sb.WriteByte(ramp[int(g.Y)*(len(ramp)-1)/255])
		}
		sb.WriteByte('\n')
	}
	io.WriteString(w, sb.String())
}
