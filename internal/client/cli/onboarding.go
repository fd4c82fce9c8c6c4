package cli

import (
	"context"
	"strings"
)

type onboardingPage struct {
	title  string
	text   string
	button string
}

var onboardingPages = []onboardingPage{
	{
		title:  "Welcome to your dream journal",
		text:   "Write down what you dreamt while it is still fresh.",
		button: "Next",
	},
	{
		title:  "Track your dreams",
		text:   "Every entry is kept by date, so you can browse any day or month.",
		button: "Next",
	},
	{
		title:  "Analyze dream patterns",
		text:   "Each dream gets an interpretation and an image once it has been processed.",
		button: "Get Started",
	},
}

// showOnboarding walks through the intro pages. Unless force is set it runs
// only once per local database.
func (a *App) showOnboarding(ctx context.Context, force bool) error {
	if !force {
		seen, err := a.prefs.HasSeenOnboarding(ctx)
		if err != nil {
			return err
		}
		if seen {
			return nil
		}
	}

	for _, p := range onboardingPages {
		a.printf("\n%s\n%s\n%s\n", p.title, strings.Repeat("=", len(p.title)), p.text)
		if _, err := GetSimpleText(a.reader, "["+p.button+"]", a.out); err != nil {
			return err
		}
	}

	return a.prefs.MarkOnboardingSeen(ctx)
}

// Intro shows the onboarding pages again.
func (a *App) Intro(ctx context.Context) error {
	return a.showOnboarding(ctx, true)
}
