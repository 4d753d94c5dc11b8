package report

import "time"

// DefaultCoalesceWindow bounds the time gap between adjacent members of a
// coalesced metadata run. Setting the window to zero disables the time
// bound, leaving adjacency and same-actor as the only conditions.
const DefaultCoalesceWindow = 5 * time.Minute

// Entry is one rendered unit of the timeline: either a single event, or a
// run of coalesced same-actor metadata events.
type Entry struct {
	Events []Event
}

// First returns the run's leading event; its date and actor represent the
// whole entry.
func (e Entry) First() Event { return e.Events[0] }

// IsGroup reports whether the entry is a coalesced run of more than one
// event.
func (e Entry) IsGroup() bool { return len(e.Events) > 1 }

// Coalesce scans a time-sorted event sequence left to right and groups
// consecutive same-actor metadata events into single entries. A run is
// extended only while the next event is metadata-kind, has the same actor,
// and follows the previous run member within the window. Any non-metadata
// event, actor change, or oversized gap ends the run.
func Coalesce(events []Event, window time.Duration) []Entry {
	var entries []Entry

	for i := 0; i < len(events); i++ {
		ev := events[i]
		if !ev.IsMetadata() {
			entries = append(entries, Entry{Events: []Event{ev}})
			continue
		}

		run := []Event{ev}
		for i+1 < len(events) {
			next := events[i+1]
			if !next.IsMetadata() || next.Actor != ev.Actor {
				break
			}
			if window > 0 && next.Date.Sub(run[len(run)-1].Date) > window {
				break
			}
			run = append(run, next)
			i++
		}

		entries = append(entries, Entry{Events: run})
	}

	return entries
}
