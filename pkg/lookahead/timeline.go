package lookahead

import "sort"

// BlacklistFlag is one timeline entry's state.
type BlacklistFlag int

const (
	Cleared BlacklistFlag = iota
	Listed
)

// timelineEntry is a single blacklist status change for a registration root.
type timelineEntry struct {
	At   uint64
	Flag BlacklistFlag
}

// Timeline is a time-ordered sequence of blacklist status changes for one
// registration root.
type Timeline struct {
	entries []timelineEntry
}

// Record inserts a status change, keeping entries sorted by At.
func (t *Timeline) Record(at uint64, flag BlacklistFlag) {
	i := sort.Search(len(t.entries), func(i int) bool { return t.entries[i].At > at })
	t.entries = append(t.entries, timelineEntry{})
	copy(t.entries[i+1:], t.entries[i:])
	t.entries[i] = timelineEntry{At: at, Flag: flag}
}

// WasBlacklistedAt returns the last recorded flag at or before ts,
// defaulting to Cleared if no entry precedes it.
func (t *Timeline) WasBlacklistedAt(ts uint64) BlacklistFlag {
	i := sort.Search(len(t.entries), func(i int) bool { return t.entries[i].At > ts })
	if i == 0 {
		return Cleared
	}
	return t.entries[i-1].Flag
}
