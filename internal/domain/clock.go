package domain

import "github.com/jonboulle/clockwork"

// clock is the time source EnrichReading stamps ProcessedAt from. The
// service runs on the real clock; tests and the fixture generator freeze it
// via SetClock so enriched readings come out reproducible.
var clock = clockwork.NewRealClock()

// SetClock swaps the enrichment time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
