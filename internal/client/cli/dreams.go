package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/dreamteller/internal/client/models"
	"github.com/dmitrijs2005/dreamteller/internal/client/services"
)

// imageWidth is the character width of rendered previews.
const imageWidth = 48

var errBadArgs = errors.New("bad arguments")

func (a *App) reportDreams(st services.DreamState) error {
	if st.ErrorMessage != "" {
		a.println("Error:", st.ErrorMessage)
		return errors.New(st.ErrorMessage)
	}
	return nil
}

// SelectDate moves the selection and loads the new day. arg is "today",
// a day offset such as +1 or -7, or a date in YYYYMMDD or YYYY-MM-DD form.
// With no argument the current selection is shown.
func (a *App) SelectDate(ctx context.Context, arg string) error {
	if arg == "" {
		a.println("Selected day:", formatDay(a.dreams.SelectedDate()))
		return nil
	}
	t, err := parseDay(arg, a.dreams.SelectedDate(), time.Now())
	if err != nil {
		a.println("Unrecognized date:", arg)
		return err
	}
	a.dreams.SelectDate(t)
	return a.Dreams(ctx)
}

// Dreams reloads and prints the selected day.
func (a *App) Dreams(ctx context.Context) error {
	a.dreams.LoadDreamsForSelectedDate(ctx)
	st := a.dreams.Snapshot()
	if err := a.reportDreams(st); err != nil {
		return err
	}
	renderDreams(a.out, st.SelectedDate, st.Dreams)
	return nil
}

// Month prints a calendar with the days that have dreams marked. arg is
// YYYY-MM; with no argument the month of the selected day is used.
func (a *App) Month(ctx context.Context, arg string) error {
	sel := a.dreams.SelectedDate()
	year, month := sel.Year(), int(sel.Month())
	if arg != "" {
		if _, err := fmt.Sscanf(arg, "%d-%d", &year, &month); err != nil {
			a.println("Usage: month YYYY-MM")
			return errBadArgs
		}
	}

	a.dreams.LoadMonthlyEntries(ctx, year, month)
	st := a.dreams.Snapshot()
	if err := a.reportDreams(st); err != nil {
		return err
	}
	renderCalendar(a.out, year, time.Month(month), st.MonthlyEntries, st.SelectedDate)
	return nil
}

// AddDream reads a multi-line description and submits it for the selected
// day.
func (a *App) AddDream(ctx context.Context) error {
	text, err := GetMultiline(a.reader, "Describe your dream for "+formatDay(a.dreams.SelectedDate()), a.out)
	if err != nil {
		return err
	}
	if text == "" {
		a.println("Nothing to submit.")
		return nil
	}

	a.dreams.SubmitDreamForInterpretation(ctx, text)
	st := a.dreams.Snapshot()
	if err := a.reportDreams(st); err != nil {
		return err
	}
	a.println("Dream submitted. The interpretation will appear after a reload.")
	renderDreams(a.out, st.SelectedDate, st.Dreams)
	return nil
}

func (a *App) Image(ctx context.Context, id string) error {
	if id == "" {
		a.println("Usage: image <dream id>")
		return errBadArgs
	}
	a.dreams.FetchDreamImage(ctx, id)
	st := a.dreams.Snapshot()
	if err := a.reportDreams(st); err != nil {
		return err
	}
	if st.FetchedImage == nil {
		a.println("No preview available.")
		return nil
	}
	renderImage(a.out, st.FetchedImage, imageWidth)
	return nil
}

func (a *App) Subscriptions(ctx context.Context) error {
	a.dreams.LoadSubscriptions(ctx)
	st := a.dreams.Snapshot()
	if err := a.reportDreams(st); err != nil {
		return err
	}
	renderSubscriptions(a.out, st.Subscriptions)
	return nil
}

// SetSubscriptions takes "daily on|off" and/or "interpretation on|off";
// a flag that is not named keeps its current value.
func (a *App) SetSubscriptions(ctx context.Context, args []string) error {
	sub := a.dreams.Snapshot().Subscriptions
	if len(args) == 0 || len(args)%2 != 0 {
		a.println("Usage: setsubs <daily on|off> <interpretation on|off>")
		return errBadArgs
	}
	for i := 0; i < len(args); i += 2 {
		v, err := parseSwitch(args[i+1])
		if err != nil {
			a.println("Expected on or off, got", args[i+1])
			return err
		}
		switch args[i] {
		case "daily":
			sub.Daily = v
		case "interpretation":
			sub.Interpretation = v
		default:
			a.println("Unknown subscription:", args[i])
			return errBadArgs
		}
	}

	a.dreams.UpdateSubscriptions(ctx, sub.Daily, sub.Interpretation)
	st := a.dreams.Snapshot()
	if err := a.reportDreams(st); err != nil {
		return err
	}
	renderSubscriptions(a.out, st.Subscriptions)
	return nil
}

func (a *App) RegisterPushToken(ctx context.Context, token string) error {
	if token == "" {
		a.println("Usage: fcm <token>")
		return errBadArgs
	}
	a.dreams.UpdateFCMToken(ctx, token)
	if err := a.reportDreams(a.dreams.Snapshot()); err != nil {
		return err
	}
	a.println("Push token registered.")
	return nil
}

func parseDay(arg string, selected, now time.Time) (time.Time, error) {
	switch {
	case arg == "today":
		return now, nil
	case strings.HasPrefix(arg, "+") || strings.HasPrefix(arg, "-"):
		n, err := strconv.Atoi(arg)
		if err != nil {
			return time.Time{}, err
		}
		return selected.AddDate(0, 0, n), nil
	}

	key := strings.ReplaceAll(arg, "-", "")
	t, err := models.ParseDateKey(key)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, now.Location()), nil
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	}
	return strconv.ParseBool(s)
}

func formatDay(t time.Time) string {
	return t.Format("2006-01-02")
}
