// Package tracker assigns logical joins and bracket nesting to an ordered
// entry stream.
//
// Tracking is a left fold: Step takes the running State and one entry and
// returns the next State plus the annotated entry. The only cross-entry
// effect is that an entry opening a bracket while one is already open
// closes the previous entry; Track applies that to its output.
package tracker

import (
	"io"
	"log/slog"
	"strings"
	"unicode"

	"github.com/roach88/aqlwizard/internal/aql"
	"github.com/roach88/aqlwizard/internal/entry"
	"github.com/roach88/aqlwizard/internal/wizerr"
)

// State is the accumulator threaded through the fold.
type State struct {
	// Open is true inside an unterminated bracket group.
	Open bool

	// Tracker counts entries since the last bracket opened.
	Tracker int

	// Index is the position of the next entry.
	Index int
}

// Tracked is an entry with its flags resolved.
type Tracked struct {
	entry.Entry

	Not   bool
	Or    bool
	Left  bool
	Right bool

	// Weight is a nesting hint for graphical builders: -1 opens a bracket,
	// 0 is top level, n > 0 is the nth entry inside a bracket.
	Weight int

	// Join is "", "and" or "or".
	Join string
}

func (t *Tracked) addFlag(f entry.Flag) {
	if !t.HasFlag(f) {
		t.Flags = append(t.Flags, f)
	}
}

func (t *Tracked) closeBracket() {
	t.Right = true
	t.addFlag(entry.FlagRight)
}

// Extract removes flag characters from the front of value and ")" from its
// end until neither end changes, returning the bare value and the flags
// merged with those already supplied.
func Extract(value string, flags []entry.Flag) (string, []entry.Flag) {
	out := append([]entry.Flag(nil), flags...)

	for {
		found := false
		for _, f := range entry.Flags {
			value = strings.TrimLeftFunc(value, unicode.IsSpace)
			if strings.HasPrefix(value, string(f)) {
				value = strings.TrimLeftFunc(value[len(f):], unicode.IsSpace)
				out = append(out, f)
				found = true
			}
		}
		if strings.HasSuffix(value, string(entry.FlagRight)) {
			value = strings.TrimSuffix(value, string(entry.FlagRight))
			value = strings.TrimSuffix(value, " ")
			out = append(out, entry.FlagRight)
			found = true
		}
		if !found {
			break
		}
	}
	return value, out
}

// Step folds one entry into the state.
//
// closePrevious reports that the entry opened a bracket while one was
// already open, so the previous entry must be marked as closing it.
func Step(s State, e entry.Entry) (next State, t Tracked, closePrevious bool) {
	value, flags := Extract(e.Value, e.Flags)

	t = Tracked{Entry: e}
	t.Value = value
	t.Flags = nil
	for _, f := range flags {
		t.addFlag(f)
	}
	t.Not = t.HasFlag(entry.FlagNot)
	t.Or = t.HasFlag(entry.FlagOr)
	t.Left = t.HasFlag(entry.FlagLeft)
	t.Right = t.HasFlag(entry.FlagRight)

	open, tracker := s.Open, s.Tracker

	if open && t.Left {
		closePrevious = true
	}

	if !open && t.Right {
		t.Left = true
		t.addFlag(entry.FlagLeft)
		t.Weight = -1
		tracker = 0
	}

	if open {
		tracker++
		t.Weight = tracker
	}

	if !open && !t.Left {
		t.Weight = 0
	}

	if t.Left {
		t.Weight = -1
		tracker = 0
		open = true
	}

	if t.Right {
		open = false
		tracker = 0
	}

	switch {
	case s.Index == 0:
		t.Join = aql.LogicNone
	case t.Or:
		t.Join = aql.LogicOr
	default:
		t.Join = aql.LogicAnd
	}

	return State{Open: open, Tracker: tracker, Index: s.Index + 1}, t, closePrevious
}

// Track runs the fold over entries. A bracket still open after the last
// entry is closed on it. A nil logger discards output.
func Track(entries []entry.Entry, log *slog.Logger) ([]Tracked, State, error) {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var (
		s   State
		out = make([]Tracked, 0, len(entries))
	)
	for _, e := range entries {
		next, t, closePrevious := Step(s, e)

		if strings.TrimSpace(t.Value) == "" {
			return nil, s, wizerr.New(wizerr.CodeMalformedEntry,
				"empty value after removing flags from %q", e.Value).At(e.Source)
		}
		if closePrevious && len(out) > 0 {
			log.Debug("bracket opened while open, closing previous entry", "entry", out[len(out)-1].Value)
			out[len(out)-1].closeBracket()
		}

		log.Debug("tracked entry",
			"entry", t.Value,
			"flags", t.Flags,
			"is_open", next.Open,
			"tracker", next.Tracker,
			"weight", t.Weight,
		)
		out = append(out, t)
		s = next
	}

	if s.Open && len(out) > 0 {
		last := &out[len(out)-1]
		log.Debug("last entry left a bracket open, closing it", "entry", last.Value)
		last.closeBracket()
		s.Open = false
		s.Tracker = 0
	}
	return out, s, nil
}
