// Package report implements the Report Store: a thread-safe, append-only
// collection of testcases and a deterministic JUnit-XML rendering of it.
package report

import (
	"sync"

	"github.com/PatOConnor43/openapi-validator-proxy/internal/ovp"
)

// Store is safe for concurrent use. The zero value is ready to use.
type Store struct {
	mu        sync.Mutex
	testcases []ovp.Testcase
	failed    int
}

// Append records tc at the end of the report, under the store's single
// lock. Ordering of concurrent Append calls matches completion order.
func (s *Store) Append(tc ovp.Testcase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.testcases = append(s.testcases, tc)
	if tc.Outcome.Failed {
		s.failed++
	}
}

// Snapshot returns a consistent copy of the testcases recorded so far,
// taken under the lock, safe to render outside it.
func (s *Store) Snapshot() ([]ovp.Testcase, int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ovp.Testcase, len(s.testcases))
	copy(out, s.testcases)
	return out, len(s.testcases), s.failed
}
