package llm

import "sync"

// Diagnostics accumulates continuation counters. NewClient gives each
// Client one Diagnostics, which keeps counting across every Complete call
// made through that Client; it is safe for concurrent use since several
// agent goroutines may share a Client.
type Diagnostics struct {
	mu sync.Mutex

	Attempts         int
	ExactMatches     int
	HashMatches      int
	TokenMatches     int
	LLMJoins         int
	Fallbacks        int
	StructureRepairs int
}

// RecordAttempt increments the continuation attempt counter.
func (d *Diagnostics) RecordAttempt() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Attempts++
}

// RecordJoin increments the counter matching the strategy that produced a
// join result. Marker-strip joins are folded into ExactMatches since both
// represent a verbatim-overlap recovery.
func (d *Diagnostics) RecordJoin(strategy JoinStrategy) {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch strategy {
	case JoinMarkerStrip, JoinExactOverlap:
		d.ExactMatches++
	case JoinHashMatch:
		d.HashMatches++
	case JoinTokenMatch:
		d.TokenMatches++
	case JoinLLMStitch:
		d.LLMJoins++
	case JoinBasic:
		d.Fallbacks++
	}
}

// RecordStructureRepair increments the escape-sequence/structure repair
// counter.
func (d *Diagnostics) RecordStructureRepair() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.StructureRepairs++
}

// Snapshot returns a copy safe to export (e.g. as Prometheus gauges) or
// attach to a lineage event's Metrics field.
func (d *Diagnostics) Snapshot() map[string]int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return map[string]int{
		"attempts":          d.Attempts,
		"exact_matches":     d.ExactMatches,
		"hash_matches":      d.HashMatches,
		"token_matches":     d.TokenMatches,
		"llm_joins":         d.LLMJoins,
		"fallbacks":         d.Fallbacks,
		"structure_repairs": d.StructureRepairs,
	}
}
