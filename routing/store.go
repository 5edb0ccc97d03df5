// Package routing holds the per-guild channel routing tables and the
// command and message logic that reads and mutates them.
package routing

import "sync"

// Kind selects one of the routing tables.
type Kind int

const (
	// KindAI routes channel messages to the AI completion endpoint.
	KindAI Kind = iota
	// KindImage routes channel messages to the image generation endpoint.
	KindImage
)

// String returns the short name used in logs.
func (k Kind) String() string {
	switch k {
	case KindAI:
		return "ai"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

// other returns the opposite kind.
func (k Kind) other() Kind {
	if k == KindAI {
		return KindImage
	}
	return KindAI
}

// Store maps guild IDs to a single channel ID per Kind. Entries live for the
// lifetime of the process.
type Store struct {
	mu     sync.RWMutex
	tables map[Kind]map[string]string
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		tables: map[Kind]map[string]string{
			KindAI:    {},
			KindImage: {},
		},
	}
}

// Get returns the channel registered for the guild, if any.
func (s *Store) Get(guildID string, kind Kind) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	channelID, ok := s.tables[kind][guildID]
	return channelID, ok
}

// Set registers channelID for the guild, replacing any existing entry. The
// replaced channel is returned.
func (s *Store) Set(guildID string, kind Kind, channelID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	table := s.table(kind)
	previous, ok := table[guildID]
	table[guildID] = channelID
	return previous, ok
}

// Remove deletes the guild's entry only when it currently points at
// channelID. It reports whether an entry was removed.
func (s *Store) Remove(guildID string, kind Kind, channelID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	table := s.table(kind)
	current, ok := table[guildID]
	if !ok || current != channelID {
		return "", false
	}
	delete(table, guildID)
	return current, true
}

// Counts returns the number of guilds with an entry for each kind.
func (s *Store) Counts() map[Kind]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[Kind]int, len(s.tables))
	for kind, table := range s.tables {
		counts[kind] = len(table)
	}
	return counts
}

// table must be called with mu held for writing.
func (s *Store) table(kind Kind) map[string]string {
	t, ok := s.tables[kind]
	if !ok {
		t = map[string]string{}
		s.tables[kind] = t
	}
	return t
}
