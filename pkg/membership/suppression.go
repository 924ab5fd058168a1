package membership

import "sync"

// suppressionSet tracks members whose role changes are currently being
// made by the bot itself, so the update listener can skip persisting them.
// Suppression is scoped per member and counted, so overlapping flows for
// different members never interfere and nested flows for the same member
// release cleanly.
type suppressionSet struct {
	mu      sync.Mutex
	members map[string]int
}

func newSuppressionSet() *suppressionSet {
	return &suppressionSet{members: make(map[string]int)}
}

// suppress marks the member as suppressed and returns the release function.
// The release is idempotent.
func (s *suppressionSet) suppress(userID string) func() {
	s.mu.Lock()
	s.members[userID]++
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.members[userID] <= 1 {
				delete(s.members, userID)
			} else {
				s.members[userID]--
			}
		})
	}
}

// active reports whether the member is currently suppressed
func (s *suppressionSet) active(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.members[userID]
	return ok
}
