package notifier

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"SignalSentinel/internal/model"
)

// Report carries everything a message needs about one instrument.
type Report struct {
	Evaluation *model.Evaluation
	Sentiment  model.SentimentSummary
	// SentimentErr is set when headlines could not be analyzed.
	SentimentErr error
	RangeHigh    float64
	RangeLow     float64
	RangeBars    int
	// RangePosition is the close's position within the range, 0 to 1.
	RangePosition float64
	Time          time.Time
}

func formatSentiment(b *strings.Builder, r *Report) {
	if r.SentimentErr != nil {
		b.WriteString("Sentiment → unavailable\n")
		return
	}
	s := r.Sentiment
	b.WriteString(fmt.Sprintf("Sentiment → 🟢 %.1f%% | 🔴 %.1f%% | ⚪ %.1f%%\n",
		s.PositivePct, s.NegativePct, s.NeutralPct))
}

// FormatSignalAlert formats a change-triggered signal alert.
func FormatSignalAlert(r *Report) string {
	ev := r.Evaluation
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>%s Signal (%s)</b>", html.EscapeString(ev.Symbol), ev.Signal.Direction))
	b.WriteString(fmt.Sprintf(" [%s]\n", ev.Signal.Kind))
	b.WriteString(fmt.Sprintf("Close: %.4f\n", ev.Last1h.Close))
	b.WriteString(fmt.Sprintf("RSI: %.2f\n", ev.Last1h.RSI))
	b.WriteString(fmt.Sprintf("BB mid: %.4f\n", ev.Last1h.Band.Mid))
	formatSentiment(&b, r)
	b.WriteString(fmt.Sprintf("Time: %s", r.Time.Format("2006-01-02 15:04 MST")))
	return b.String()
}

// FormatDigest formats the scheduled status report, sent whether or not a signal fired.
func FormatDigest(r *Report) string {
	ev := r.Evaluation
	var b strings.Builder

	b.WriteString(fmt.Sprintf("⏰ <b>%s Status</b> | %s\n", html.EscapeString(ev.Symbol), r.Time.Format("2006-01-02 15:04 MST")))
	if ev.Signal != nil {
		b.WriteString(fmt.Sprintf("Signal: %s (%s)\n", ev.Signal.Direction, ev.Signal.Kind))
	} else {
		b.WriteString("Signal: No clear signal\n")
	}
	b.WriteString(fmt.Sprintf("Close: %.4f\n", ev.Last1h.Close))
	b.WriteString(fmt.Sprintf("RSI: %.2f\n", ev.Last1h.RSI))
	if r.RangeBars > 0 {
		b.WriteString(fmt.Sprintf("Range (%d bars): %.4f to %.4f\n", r.RangeBars, r.RangeLow, r.RangeHigh))
		b.WriteString(fmt.Sprintf("Position in range: %.0f%%\n", r.RangePosition*100))
	}
	formatSentiment(&b, r)
	return strings.TrimRight(b.String(), "\n")
}

// FormatStateList formats stored identities for the /state command.
func FormatStateList(records map[string]string) string {
	if len(records) == 0 {
		return "📦 <b>Signal state</b>\n\n(empty)"
	}
	keys := make([]string, 0, len(records))
	for k := range records {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("📦 <b>Signal state</b>\n\n")
	for _, k := range keys {
		b.WriteString(fmt.Sprintf("%s: %s\n", html.EscapeString(k), html.EscapeString(records[k])))
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatHelp lists the supported bot commands.
func FormatHelp() string {
	return "Available commands:\n• /status: current signal status for every instrument\n• /state: stored signal identities\n• /run: evaluate now and alert on changes"
}
