// Package verify walks catalog and manifest trees, refetching every
// referenced document and comparing digests against the recorded
// checksums. Verification is report-oriented: individual failures become
// entry states, never early exits, so one corrupt object cannot hide the
// state of the rest of the tree.
package verify

// State tracks how far an entry progressed through verification.
type State int

const (
	// StatePending marks an entry that was never dispatched, typically
	// because the run was cancelled first.
	StatePending State = iota
	// StateFetched marks an entry whose bytes were retrieved but not yet
	// digested.
	StateFetched
	// StateDigestComputed marks an entry digested but not yet compared.
	StateDigestComputed
	// StateVerified marks a digest match.
	StateVerified
	// StateMismatch marks a digest that differs from the recorded
	// checksum.
	StateMismatch
	// StateStructuralError marks a document whose shape violates the
	// format.
	StateStructuralError
	// StateNotFound marks a reference whose target is absent.
	StateNotFound
	// StateIOError marks a fetch or read failure other than absence.
	StateIOError
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "PENDING"
	case StateFetched:
		return "FETCHED"
	case StateDigestComputed:
		return "DIGEST_COMPUTED"
	case StateVerified:
		return "VERIFIED"
	case StateMismatch:
		return "MISMATCH"
	case StateStructuralError:
		return "STRUCTURAL_ERROR"
	case StateNotFound:
		return "NOT_FOUND"
	case StateIOError:
		return "IO_ERROR"
	default:
		return "UNKNOWN"
	}
}

// MarshalJSON renders the state name rather than its ordinal so reports
// stay readable and stable across reorderings of the constants.
func (s State) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// Entry is one verified reference. Children hold the nested entries a
// recursive run produced beneath a playlist, or the media check beneath a
// video manifest in deep mode.
type Entry struct {
	Index    int     `json:"index"`
	Name     string  `json:"name"`
	URL      string  `json:"url"`
	State    State   `json:"state"`
	Expected string  `json:"expected,omitempty"`
	Actual   string  `json:"actual,omitempty"`
	Error    string  `json:"error,omitempty"`
	Children []Entry `json:"children,omitempty"`
}

// Report is the outcome of one verification run. It is well-formed even
// when the run was cancelled or failed structurally before any entry was
// fetched.
type Report struct {
	// Root names what was verified: the catalog key or the manifest
	// prefix.
	Root string `json:"root"`
	// State is the root document's own outcome. Entry states live in
	// Entries.
	State   State   `json:"state"`
	Error   string  `json:"error,omitempty"`
	Entries []Entry `json:"entries"`
}

// Summary counts verified entries against the total, walking nested
// entries.
func (r *Report) Summary() (passed, total int) {
	return countEntries(r.Entries)
}

// Passed reports whether the root document and every entry verified.
func (r *Report) Passed() bool {
	if r.State != StateVerified {
		return false
	}
	passed, total := r.Summary()
	return passed == total
}

// StateCounts tallies entries per state across the whole tree.
func (r *Report) StateCounts() map[State]int {
	counts := map[State]int{r.State: 1}
	var walk func(entries []Entry)
	walk = func(entries []Entry) {
		for _, entry := range entries {
			counts[entry.State]++
			walk(entry.Children)
		}
	}
	walk(r.Entries)
	return counts
}

func countEntries(entries []Entry) (passed, total int) {
	for _, entry := range entries {
		total++
		if entry.State == StateVerified {
			passed++
		}
		p, t := countEntries(entry.Children)
		passed += p
		total += t
	}
	return passed, total
}
