package worker

import (
	"context"
	"time"

	"sjsage522/bountyradar/config"
	"sjsage522/bountyradar/helpers"
	"sjsage522/bountyradar/internal/crawler"
	"sjsage522/bountyradar/internal/filter"
	"sjsage522/bountyradar/internal/listing"
	"sjsage522/bountyradar/logger"
	"sjsage522/bountyradar/services/publisher"
	"sjsage522/bountyradar/services/seen"
)

// State is a step of a cycle
type State string

const (
	StateStart    State = "start"
	StateLoaded   State = "loaded"
	StateFetched  State = "fetched"
	StateFiltered State = "filtered"
	StateNotified State = "notified"
	StateSaved    State = "saved"
	StateDone     State = "done"
)

// Notifier delivers a single listing
type Notifier interface {
	Notify(ctx context.Context, l listing.Listing) error
}

// Report summarizes one cycle
type Report struct {
	// States lists every state entered, in order
	States []State

	Fetched     int
	Listings    int
	Matched     int
	AlreadySeen int
	Notified    int
	Failed      int
	Diagnostics []listing.Diagnostic

	// Delivered and Recorded are links in the order they were handled
	Delivered []string
	Recorded  []string

	LoadErr  error
	FetchErr error
	SaveErr  error
	Saved    bool
}

// Reached reports whether the cycle entered s
func (r *Report) Reached(s State) bool {
	for _, state := range r.States {
		if state == s {
			return true
		}
	}
	return false
}

func (r *Report) enter(s State) {
	r.States = append(r.States, s)
}

// Worker runs the fetch, filter, dedup and notify cycle
type Worker struct {
	ctx          context.Context
	source       crawler.Source
	policy       filter.Policy
	store        seen.Store
	notifier     Notifier
	publisher    publisher.Publisher
	logger       helpers.LoggerInterface
	recordPolicy config.RecordPolicy
	interval     time.Duration
}

// Option configures optional Worker behaviour
type Option func(*Worker)

// WithPublisher fans every delivered listing out to pub
func WithPublisher(pub publisher.Publisher) Option {
	return func(w *Worker) {
		w.publisher = pub
	}
}

// WithRecordPolicy sets when links are marked as seen
func WithRecordPolicy(p config.RecordPolicy) Option {
	return func(w *Worker) {
		w.recordPolicy = p
	}
}

// WithInterval sets the delay between cycles for Start
func WithInterval(d time.Duration) Option {
	return func(w *Worker) {
		w.interval = d
	}
}

// NewWorker creates a new worker
func NewWorker(
	ctx context.Context,
	source crawler.Source,
	policy filter.Policy,
	store seen.Store,
	notifier Notifier,
	logger helpers.LoggerInterface,
	opts ...Option,
) *Worker {
	w := &Worker{
		ctx:          ctx,
		source:       source,
		policy:       policy,
		store:        store,
		notifier:     notifier,
		logger:       logger,
		recordPolicy: config.RecordAlways,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start runs cycles back to back, waiting the configured interval between
// them, until the worker's context is cancelled. Without an interval it runs
// a single cycle.
func (w *Worker) Start() error {
	for {
		start := time.Now()
		w.RunOnce(w.ctx)
		w.logger.LogInfo("Cycle finished in %s", time.Since(start))

		if w.interval <= 0 {
			return nil
		}

		select {
		case <-w.ctx.Done():
			return w.ctx.Err()
		case <-time.After(w.interval):
		}
	}
}

// RunOnce performs one cycle: load, fetch, filter, notify, save
func (w *Worker) RunOnce(ctx context.Context) *Report {
	report := &Report{}
	report.enter(StateStart)
	defer report.enter(StateDone)

	set, err := w.store.Load(ctx)
	if err != nil {
		report.LoadErr = err
		w.logger.LogError("store", err)
		return report
	}
	report.enter(StateLoaded)

	records, err := w.source.FetchRecords(ctx)
	if err != nil {
		report.FetchErr = err
		w.logger.LogError(w.source.GetName(), err)
		return report
	}
	report.Fetched = len(records)

	batch := listing.NormalizeBatch(records)
	report.Listings = len(batch.Listings)
	report.Diagnostics = batch.Diagnostics
	for _, d := range batch.Diagnostics {
		w.logger.LogError("normalizer", d.Err)
	}
	report.enter(StateFetched)

	matched := w.filter(batch.Listings)
	report.Matched = len(matched)
	report.enter(StateFiltered)

	if len(matched) == 0 {
		w.logger.LogInfo("No new matching bounty programs found.")
		return report
	}
	w.logger.LogInfo("Found %d matching bounty programs!", len(matched))

	for _, l := range matched {
		if set.Contains(l.Link) {
			report.AlreadySeen++
			continue
		}
		w.notifyOne(ctx, l, set, report)
	}
	report.enter(StateNotified)

	if err := w.store.Save(ctx, set); err != nil {
		report.SaveErr = err
		w.logger.LogError("store", err)
		return report
	}
	report.Saved = true
	report.enter(StateSaved)

	if w.publisher != nil && len(report.Delivered) > 0 {
		if err := w.publisher.TrimStreams(ctx); err != nil {
			w.logger.LogError("publisher", err)
		}
	}
	return report
}

func (w *Worker) filter(listings []listing.Listing) []listing.Listing {
	log := logger.ForWorker()
	matched := make([]listing.Listing, 0, len(listings))
	for _, l := range listings {
		verdict := w.policy.Evaluate(l)
		if !verdict.Pass {
			log.Debug().Str("title", l.Title).Str("link", l.Link).Str("rule", verdict.Rule).Msg("Listing filtered out")
			continue
		}
		matched = append(matched, l)
	}
	return matched
}

func (w *Worker) notifyOne(ctx context.Context, l listing.Listing, set *seen.SeenSet, report *Report) {
	err := w.notifier.Notify(ctx, l)
	if err != nil {
		report.Failed++
		w.logger.LogError("notifier", err)
	} else {
		report.Notified++
		report.Delivered = append(report.Delivered, l.Link)
		w.logger.LogInfo("Notification sent for %s", l.Link)
	}

	if err == nil || w.recordPolicy == config.RecordAlways {
		set.Record(l.Link)
		report.Recorded = append(report.Recorded, l.Link)
	}

	if err == nil && w.publisher != nil {
		if pubErr := w.publisher.Publish(ctx, l); pubErr != nil {
			w.logger.LogError("publisher", pubErr)
		}
	}
}
