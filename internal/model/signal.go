package model

// Direction is the side implied by the short-interval bar.
type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
)

// SignalKind distinguishes the two setups the classifier recognises.
type SignalKind string

const (
	KindTrend    SignalKind = "Trend"
	KindReversal SignalKind = "Reversal"
)

// NoSignalIdentity is stored when a digest run observed no signal.
const NoSignalIdentity = "no_signal"

// Signal is a classifier outcome.
type Signal struct {
	Direction      Direction
	Kind           SignalKind
	SourceBarIndex int
}

// Identity is the deduplication key of a signal, e.g. "BUY_Trend".
// Direction and kind both take part, so BUY_Trend and BUY_Reversal differ.
func (s Signal) Identity() string {
	return string(s.Direction) + "_" + string(s.Kind)
}

// Evaluation is the result of running the strategy over one instrument.
// Signal is nil when the rule did not fire.
type Evaluation struct {
	Symbol string
	Signal *Signal
	Last1h EnrichedBar
	Last1d EnrichedBar
}

// Identity returns the signal identity, or "" when there is no signal.
func (e *Evaluation) Identity() string {
	if e.Signal == nil {
		return ""
	}
	return e.Signal.Identity()
}
