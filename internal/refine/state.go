package refine

import (
	"maps"
	"slices"
	"time"

	"github.com/hpungsan/reelcraft/internal/content"
)

// HistoryEntry is one superseded value of a field.
type HistoryEntry struct {
	Value     content.Value `json:"value"`
	Timestamp time.Time     `json:"timestamp"`
}

// State is the editing session: the form that produced the content, the
// current content, the baseline captured at the last full generation, the
// fields that differ from that baseline and the per-field history.
type State struct {
	Form     content.Request                  `json:"form"`
	Current  *content.Content                 `json:"current,omitempty"`
	Baseline *content.Content                 `json:"baseline,omitempty"`
	Modified []content.Field                  `json:"modified,omitempty"`
	History  map[content.Field][]HistoryEntry `json:"history,omitempty"`
}

// NewState starts a session from form with c as both current and baseline.
func NewState(form content.Request, c *content.Content) State {
	s := State{Form: form}
	s.Form.Existing = nil
	s.reset(c)
	return s
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := s
	out.Form.TargetFields = slices.Clone(s.Form.TargetFields)
	out.Form.Existing = nil
	out.Current = s.Current.Clone()
	out.Baseline = s.Baseline.Clone()
	out.Modified = slices.Clone(s.Modified)
	out.History = nil
	if s.History != nil {
		out.History = maps.Clone(s.History)
		for f, entries := range out.History {
			out.History[f] = slices.Clone(entries)
		}
	}
	return out
}

// IsModified reports whether f differs from the baseline.
func (s State) IsModified(f content.Field) bool {
	return slices.Contains(s.Modified, f)
}

// HistoryOf returns the recorded values of f, oldest first.
func (s State) HistoryOf(f content.Field) []HistoryEntry {
	return slices.Clone(s.History[f])
}

// reset makes c the new baseline and clears the edit record.
func (s *State) reset(c *content.Content) {
	s.Current = c.Clone()
	s.Baseline = c.Clone()
	s.Modified = nil
	s.History = nil
}

// apply overwrites f with v, recording the previous value and recomputing
// whether f still matches the baseline.
func (s *State) apply(f content.Field, v content.Value, at time.Time) error {
	prev := s.Current.Get(f)
	if !prev.IsZero() {
		entries := s.History[f]
		if len(entries) == 0 || !entries[len(entries)-1].Value.Equal(prev) {
			if s.History == nil {
				s.History = make(map[content.Field][]HistoryEntry)
			}
			s.History[f] = append(entries, HistoryEntry{Value: prev, Timestamp: at})
		}
	}

	if err := s.Current.Set(f, v); err != nil {
		return err
	}

	var base content.Value
	if s.Baseline != nil {
		base = s.Baseline.Get(f)
	}
	s.setModified(f, !v.Equal(base))
	return nil
}

func (s *State) setModified(f content.Field, on bool) {
	i, found := slices.BinarySearch(s.Modified, f)
	switch {
	case on && !found:
		s.Modified = slices.Insert(s.Modified, i, f)
	case !on && found:
		s.Modified = slices.Delete(s.Modified, i, i+1)
	}
}
