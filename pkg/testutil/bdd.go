package testutil

import "testing"

// Scenario runs ordered Given/When/Then steps as subtests. Steps share
// state, so once one fails the remaining steps are skipped.
type Scenario struct {
	t      *testing.T
	failed string
}

// NewScenario starts a scenario on t.
func NewScenario(t *testing.T) *Scenario {
	return &Scenario{t: t}
}

func (s *Scenario) Given(desc string, fn func(t *testing.T)) { s.step("Given", desc, fn) }
func (s *Scenario) When(desc string, fn func(t *testing.T))  { s.step("When", desc, fn) }
func (s *Scenario) Then(desc string, fn func(t *testing.T))  { s.step("Then", desc, fn) }
func (s *Scenario) And(desc string, fn func(t *testing.T))   { s.step("And", desc, fn) }

func (s *Scenario) step(keyword, desc string, fn func(t *testing.T)) {
	s.t.Helper()
	name := keyword + " " + desc
	ok := s.t.Run(name, func(t *testing.T) {
		if s.failed != "" {
			t.Skipf("skipped after failed step %q", s.failed)
		}
		fn(t)
	})
	if !ok && s.failed == "" {
		s.failed = name
	}
}
