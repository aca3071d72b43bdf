// Package monitor runs the evaluation loop and decides which signals are worth
// a notification. A run is synchronous and performs no locking on the store.
package monitor

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"SignalSentinel/internal/calculator"
	"SignalSentinel/internal/model"
	"SignalSentinel/internal/notifier"
	"SignalSentinel/internal/recorder"
	"SignalSentinel/internal/state"
)

// SeriesCollector fetches the short and long timeframe series of a symbol.
type SeriesCollector interface {
	Collect(ctx context.Context, symbol string) (short, long *model.PriceSeries, err error)
}

// Evaluator classifies a pair of series.
type Evaluator interface {
	Evaluate(short, long *model.PriceSeries) (*model.Evaluation, error)
}

// SentimentAnalyzer summarizes headline tone for a query.
type SentimentAnalyzer interface {
	Analyze(ctx context.Context, query string) (model.SentimentSummary, error)
}

// Metrics receives per-run counters. *metrics.Recorder implements it.
type Metrics interface {
	RecordEvaluation(symbol, outcome string)
	RecordNotification(symbol, kind string, ok bool)
	RecordStoreError(op string)
	RecordLastClose(symbol string, price float64)
	RecordRunDuration(mode string, seconds float64)
}

type nopMetrics struct{}

func (nopMetrics) RecordEvaluation(string, string)         {}
func (nopMetrics) RecordNotification(string, string, bool) {}
func (nopMetrics) RecordStoreError(string)                 {}
func (nopMetrics) RecordLastClose(string, float64)         {}
func (nopMetrics) RecordRunDuration(string, float64)       {}

// Deps are the collaborators of a Monitor. Analyzer, Recorder and Metrics are optional.
type Deps struct {
	Collector SeriesCollector
	Engine    Evaluator
	Analyzer  SentimentAnalyzer
	Sender    notifier.Sender
	Store     state.Store
	Recorder  recorder.Recorder
	Metrics   Metrics
}

// Options tune deduplication and digest behaviour.
type Options struct {
	Scope        state.KeyScope
	DigestPolicy DigestPolicy
	// RecordIdentity makes a successful digest overwrite the main key with the
	// current identity, or model.NoSignalIdentity when nothing fired.
	RecordIdentity bool
	Window         DigestWindow
	// RangeBars is the number of short bars scanned for the digest range; 0 disables it.
	RangeBars int
}

// DefaultOptions mirrors the shipped configuration defaults.
func DefaultOptions() Options {
	return Options{
		Scope:          state.ScopeInstrument,
		DigestPolicy:   PolicyAlways,
		RecordIdentity: true,
		Window:         DefaultDigestWindow(),
		RangeBars:      24,
	}
}

// Status is the per-instrument result of a run.
type Status string

const (
	StatusNotified    Status = "notified"
	StatusSuppressed  Status = "suppressed"
	StatusNoSignal    Status = "no_signal"
	StatusSkipped     Status = "skipped"
	StatusSendFailed  Status = "send_failed"
	StatusAlreadySent Status = "already_sent"
)

// Outcome reports what happened to one instrument.
type Outcome struct {
	Symbol   string
	Mode     Mode
	Status   Status
	Identity string
	// Err is the cause of a skipped or failed evaluation.
	Err error
	// StateErr is set when a notification went out but the store write failed.
	StateErr error
}

// Monitor evaluates instruments and notifies on signal changes.
type Monitor struct {
	Instruments []model.Instrument

	deps Deps
	opts Options
	log  zerolog.Logger
}

// New creates a Monitor. Collector, Engine, Sender and Store are required.
func New(instruments []model.Instrument, deps Deps, opts Options, log zerolog.Logger) *Monitor {
	if deps.Recorder == nil {
		deps.Recorder = recorder.NewNoopRecorder()
	}
	if deps.Metrics == nil {
		deps.Metrics = nopMetrics{}
	}
	if opts.Window.Length == 0 {
		opts.Window = DefaultDigestWindow()
	}
	return &Monitor{
		Instruments: instruments,
		deps:        deps,
		opts:        opts,
		log:         log.With().Str("component", "monitor").Logger(),
	}
}

// Run evaluates every instrument once. Failures on one instrument never stop the others.
func (m *Monitor) Run(ctx context.Context, mode Mode, now time.Time) []Outcome {
	start := time.Now()
	resolved := ResolveMode(mode, now, m.opts.Window)
	m.log.Info().Str("mode", string(resolved)).Int("instruments", len(m.Instruments)).Msg("run started")

	outcomes := make([]Outcome, 0, len(m.Instruments))
	for _, inst := range m.Instruments {
		if ctx.Err() != nil {
			m.log.Warn().Err(ctx.Err()).Msg("run cancelled")
			break
		}
		o, ev := m.evaluate(ctx, resolved, inst, now)
		m.observe(o, ev, now)
		outcomes = append(outcomes, o)
	}

	m.deps.Metrics.RecordRunDuration(string(resolved), time.Since(start).Seconds())
	m.log.Info().Str("mode", string(resolved)).Dur("took", time.Since(start)).Msg("run finished")
	return outcomes
}

func (m *Monitor) evaluate(ctx context.Context, mode Mode, inst model.Instrument, now time.Time) (Outcome, *model.Evaluation) {
	o := Outcome{Symbol: inst.Symbol, Mode: mode}

	short, long, err := m.deps.Collector.Collect(ctx, inst.Symbol)
	if err != nil {
		o.Status, o.Err = StatusSkipped, err
		return o, nil
	}
	ev, err := m.deps.Engine.Evaluate(short, long)
	if err != nil {
		o.Status, o.Err = StatusSkipped, err
		return o, nil
	}
	o.Identity = ev.Identity()
	m.deps.Metrics.RecordLastClose(inst.Symbol, ev.Last1h.Close)

	if mode == ModeDigest {
		return m.digest(ctx, inst, ev, short, now, o), ev
	}
	return m.normal(ctx, inst, ev, now, o), ev
}

func (m *Monitor) normal(ctx context.Context, inst model.Instrument, ev *model.Evaluation, now time.Time, o Outcome) Outcome {
	if ev.Signal == nil {
		o.Status = StatusNoSignal
		return o
	}

	key := m.opts.Scope.Key(inst.Symbol, ev.Signal.Kind)
	prev, found, err := m.deps.Store.Get(ctx, key)
	if err != nil {
		m.deps.Metrics.RecordStoreError("get")
		o.Status, o.Err = StatusSkipped, err
		return o
	}
	if found && prev == o.Identity {
		o.Status = StatusSuppressed
		return o
	}

	report := m.report(ctx, inst, ev, nil, now)
	if err := m.send(ctx, inst.Symbol, "ALERT", o.Identity, report, notifier.FormatSignalAlert(report)); err != nil {
		o.Status, o.Err = StatusSendFailed, err
		return o
	}
	o.Status = StatusNotified
	o.StateErr = m.set(ctx, key, o.Identity)
	return o
}

func (m *Monitor) digest(ctx context.Context, inst model.Instrument, ev *model.Evaluation, short *model.PriceSeries, now time.Time, o Outcome) Outcome {
	dkey := state.DigestKey(inst.Symbol)
	today := DigestDate(now)

	if m.opts.DigestPolicy == PolicyOncePerDay {
		sent, found, err := m.deps.Store.Get(ctx, dkey)
		if err != nil {
			m.deps.Metrics.RecordStoreError("get")
			o.Status, o.Err = StatusSkipped, err
			return o
		}
		if found && sent == today {
			o.Status = StatusAlreadySent
			return o
		}
	}

	report := m.report(ctx, inst, ev, short, now)
	if err := m.send(ctx, inst.Symbol, "DIGEST", o.Identity, report, notifier.FormatDigest(report)); err != nil {
		o.Status, o.Err = StatusSendFailed, err
		return o
	}
	o.Status = StatusNotified

	if m.opts.DigestPolicy == PolicyOncePerDay {
		o.StateErr = m.set(ctx, dkey, today)
	}
	if m.opts.RecordIdentity {
		for key, value := range m.identityWrites(inst.Symbol, ev) {
			if err := m.set(ctx, key, value); err != nil {
				o.StateErr = errors.Join(o.StateErr, err)
			}
		}
	}
	return o
}

// identityWrites returns the keys a digest records. Without a signal every key a
// normal run reads is reset to model.NoSignalIdentity.
func (m *Monitor) identityWrites(symbol string, ev *model.Evaluation) map[string]string {
	if ev.Signal != nil {
		return map[string]string{m.opts.Scope.Key(symbol, ev.Signal.Kind): ev.Identity()}
	}
	writes := map[string]string{}
	for _, kind := range []model.SignalKind{model.KindTrend, model.KindReversal} {
		writes[m.opts.Scope.Key(symbol, kind)] = model.NoSignalIdentity
	}
	return writes
}

// report gathers sentiment and, when short is given, the recent range.
func (m *Monitor) report(ctx context.Context, inst model.Instrument, ev *model.Evaluation, short *model.PriceSeries, now time.Time) *notifier.Report {
	r := &notifier.Report{Evaluation: ev, Time: now.In(Zone)}

	if m.deps.Analyzer != nil {
		summary, err := m.deps.Analyzer.Analyze(ctx, inst.Query())
		if err != nil {
			m.log.Warn().Err(err).Str("symbol", inst.Symbol).Msg("sentiment unavailable")
			r.SentimentErr = err
		} else {
			r.Sentiment = summary
		}
	}

	if short != nil && m.opts.RangeBars > 0 {
		high, low, err := calculator.CalculateRecentRange(short.Bars, m.opts.RangeBars)
		if err == nil {
			r.RangeHigh, r.RangeLow = high, low
			r.RangeBars = min(m.opts.RangeBars, short.Len())
			if pos, err := calculator.CalculateRangePosition(ev.Last1h.Close, high, low); err == nil {
				r.RangePosition = pos
			}
		}
	}
	return r
}

func (m *Monitor) send(ctx context.Context, symbol, kind, identity string, r *notifier.Report, text string) error {
	err := m.deps.Sender.Send(ctx, text)
	m.deps.Metrics.RecordNotification(symbol, kind, err == nil)

	rec := &recorder.NotificationRecord{
		Time:        r.Time,
		Symbol:      symbol,
		Kind:        kind,
		Identity:    identity,
		PositivePct: r.Sentiment.PositivePct,
		NegativePct: r.Sentiment.NegativePct,
		NeutralPct:  r.Sentiment.NeutralPct,
		Delivered:   err == nil,
	}
	if err != nil {
		rec.Error = err.Error()
		m.log.Error().Err(err).Str("symbol", symbol).Str("kind", kind).Msg("notification failed")
	}
	if rerr := m.deps.Recorder.RecordNotification(rec); rerr != nil {
		m.log.Warn().Err(rerr).Msg("record notification")
	}
	return err
}

func (m *Monitor) set(ctx context.Context, key, value string) error {
	if err := m.deps.Store.Set(ctx, key, value); err != nil {
		m.deps.Metrics.RecordStoreError("set")
		m.log.Error().Err(err).Str("key", key).Msg("state write failed")
		return err
	}
	return nil
}

func (m *Monitor) observe(o Outcome, ev *model.Evaluation, now time.Time) {
	m.deps.Metrics.RecordEvaluation(o.Symbol, string(o.Status))

	event := m.log.Info()
	if o.Err != nil {
		event = m.log.Warn().Err(o.Err)
	}
	event.Str("symbol", o.Symbol).Str("status", string(o.Status)).Str("identity", o.Identity).Msg("instrument evaluated")

	rec := &recorder.EvaluationRecord{
		Time:     now,
		Symbol:   o.Symbol,
		Mode:     string(o.Mode),
		Outcome:  string(o.Status),
		Identity: o.Identity,
	}
	if ev != nil {
		rec.Close = ev.Last1h.Close
		rec.RSI = ev.Last1h.RSI
		rec.BBUpper = ev.Last1h.Band.Upper
		rec.BBMid = ev.Last1h.Band.Mid
		rec.BBLower = ev.Last1h.Band.Lower
		rec.LongClose = ev.Last1d.Close
	}
	if o.Err != nil {
		rec.Error = o.Err.Error()
	}
	if err := m.deps.Recorder.RecordEvaluation(rec); err != nil {
		m.log.Warn().Err(err).Msg("record evaluation")
	}
}

// Report evaluates every instrument and formats a digest without sending or
// touching the store. It backs the /status bot command.
func (m *Monitor) Report(ctx context.Context, now time.Time) string {
	var parts []string
	for _, inst := range m.Instruments {
		short, long, err := m.deps.Collector.Collect(ctx, inst.Symbol)
		if err != nil {
			parts = append(parts, inst.Symbol+": data unavailable")
			continue
		}
		ev, err := m.deps.Engine.Evaluate(short, long)
		if err != nil {
			parts = append(parts, inst.Symbol+": "+err.Error())
			continue
		}
		parts = append(parts, notifier.FormatDigest(m.report(ctx, inst, ev, short, now)))
	}
	if len(parts) == 0 {
		return "No instruments configured"
	}
	return strings.Join(parts, "\n\n")
}

// StateList returns the stored records, or an error when the store cannot enumerate.
func (m *Monitor) StateList(ctx context.Context) (map[string]string, error) {
	l, ok := m.deps.Store.(state.Lister)
	if !ok {
		return nil, errors.New("state backend cannot list records")
	}
	return l.List(ctx)
}
