package headlines

import "strings"

// Store is an ordered, index-addressed list of headlines owned by one session.
// Insertion order is both the display order and the submission order.
// A Store is not safe for concurrent use; callers serialize access per session.
type Store struct {
	items []string
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{}
}

// Add trims text and appends it when non-empty.
// Returns true if an entry was appended.
func (s *Store) Add(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	s.items = append(s.items, text)
	return true
}

// ImportLines appends every non-blank line of block in order, without deduplication.
// Returns the number of lines appended.
func (s *Store) ImportLines(block string) int {
	lines := SplitLines(block)
	s.items = append(s.items, lines...)
	return len(lines)
}

// ImportFile decodes raw as UTF-8 and appends each non-blank line that is not
// already present verbatim in the list as it stood before the import.
// Repeats within the file itself are not collapsed against each other.
// The list is left untouched when decoding fails.
func (s *Store) ImportFile(raw []byte) (int, error) {
	text, err := DecodeText(raw)
	if err != nil {
		return 0, err
	}

	existing := make(map[string]struct{}, len(s.items))
	for _, item := range s.items {
		existing[item] = struct{}{}
	}

	added := 0
	for _, line := range SplitLines(text) {
		if _, ok := existing[line]; ok {
			continue
		}
		s.items = append(s.items, line)
		added++
	}
	return added, nil
}

// EditAt replaces the entry at index verbatim. Out-of-range indices are ignored.
func (s *Store) EditAt(index int, text string) bool {
	if index < 0 || index >= len(s.items) {
		return false
	}
	s.items[index] = text
	return true
}

// RemoveAt deletes the entry at index. Out-of-range indices are ignored.
func (s *Store) RemoveAt(index int) bool {
	if index < 0 || index >= len(s.items) {
		return false
	}
	s.items = append(s.items[:index], s.items[index+1:]...)
	return true
}

// ClearAll empties the list
func (s *Store) ClearAll() {
	s.items = nil
}

// Len returns the number of entries, blank ones included
func (s *Store) Len() int {
	return len(s.items)
}

// Snapshot returns a copy of the current list.
func (s *Store) Snapshot() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

// Scorable returns the entries that are not blank, in list order.
// Entries are submitted as stored; only whitespace-only entries are dropped.
func (s *Store) Scorable() []string {
	out := make([]string, 0, len(s.items))
	for _, item := range s.items {
		if strings.TrimSpace(item) != "" {
			out = append(out, item)
		}
	}
	return out
}
