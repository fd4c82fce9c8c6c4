package interpret

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/dreamteller/internal/logging"
	"github.com/dmitrijs2005/dreamteller/internal/server/images"
	"github.com/dmitrijs2005/dreamteller/internal/server/models"
	"github.com/dmitrijs2005/dreamteller/internal/server/repositories/dreams"
	"github.com/dmitrijs2005/dreamteller/internal/server/repositories/notifications"
	"golang.org/x/sync/errgroup"
)

const queueSize = 256

var ErrQueueFull = errors.New("interpretation queue is full")

// Job asks for one stored dream to be interpreted.
type Job struct {
	DreamID string
	UserID  string
	Input   string
}

// Notifier delivers a push message to one device token.
type Notifier interface {
	Notify(ctx context.Context, userID, token, title, body string) error
}

type Pool struct {
	dreams   dreams.Repository
	subs     notifications.Repository
	images   images.Store
	notifier Notifier
	logger   logging.Logger

	workers int
	delay   time.Duration
	jobs    chan Job
}

func NewPool(d dreams.Repository, subs notifications.Repository, store images.Store, notifier Notifier,
	workers int, delay time.Duration, logger logging.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{
		dreams:   d,
		subs:     subs,
		images:   store,
		notifier: notifier,
		logger:   logger.With("module", "interpret"),
		workers:  workers,
		delay:    delay,
		jobs:     make(chan Job, queueSize),
	}
}

// Submit queues job without blocking.
func (p *Pool) Submit(job Job) error {
	select {
	case p.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run processes jobs until ctx is cancelled. Jobs still queued at that point
// are dropped and their dreams stay uninterpreted.
func (p *Pool) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < p.workers; i++ {
		g.Go(func() error {
			p.worker(ctx, i)
			return nil
		})
	}
	p.logger.Info(ctx, "interpretation workers started", "workers", p.workers)
	return g.Wait()
}

func (p *Pool) worker(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-p.jobs:
			if err := p.process(ctx, job); err != nil {
				if ctx.Err() != nil {
					return
				}
				p.logger.Error(ctx, "interpretation failed", "worker", id, "dream_id", job.DreamID, "error", err)
			}
		}
	}
}

func (p *Pool) process(ctx context.Context, job Job) error {
	if p.delay > 0 {
		t := time.NewTimer(p.delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}

	title, reading := Interpret(job.Input)

	img, err := RenderPreview(job.DreamID)
	if err != nil {
		return fmt.Errorf("render preview: %w", err)
	}
	if err := p.images.Put(ctx, job.DreamID, img, previewContentType); err != nil {
		return err
	}

	err = p.dreams.SetInterpretation(ctx, job.DreamID, models.Interpretation{
		Title:          title,
		Interpretation: reading,
		ImageName:      job.DreamID,
	})
	if err != nil {
		return fmt.Errorf("save interpretation: %w", err)
	}
	p.logger.Debug(ctx, "dream interpreted", "dream_id", job.DreamID)

	p.notify(ctx, job.UserID, title)
	return nil
}

// notify is best effort; failures are logged only.
func (p *Pool) notify(ctx context.Context, userID, title string) {
	if p.notifier == nil {
		return
	}
	sub, err := p.subs.GetSubscription(ctx, userID)
	if err != nil || !sub.Interpretation {
		return
	}
	tokens, err := p.subs.FCMTokens(ctx, userID)
	if err != nil {
		p.logger.Warn(ctx, "push tokens lookup failed", "user_id", userID, "error", err)
		return
	}
	for _, tok := range tokens {
		if err := p.notifier.Notify(ctx, userID, tok, "Your dream is interpreted", title); err != nil {
			p.logger.Warn(ctx, "push failed", "user_id", userID, "error", err)
		}
	}
}
