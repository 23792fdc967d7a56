package resolve

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	derrors "github.com/matzehuels/depends/pkg/errors"
	"github.com/matzehuels/depends/pkg/nuget"
)

// Policy chooses which satisfying candidate a solver tries first.
type Policy int

const (
	// PolicyLowest prefers the lowest version that satisfies every range.
	// This is what NuGet restore does and is the default.
	PolicyLowest Policy = iota
	// PolicyHighest prefers the highest satisfying version.
	PolicyHighest
)

// String implements fmt.Stringer.
func (p Policy) String() string {
	if p == PolicyHighest {
		return "highest"
	}
	return "lowest"
}

// Solver picks exactly one version per package from a discovered closure.
type Solver interface {
	Solve(roots []Dependency, available []*PackageInfo, policy Policy) (Selection, error)
}

// DefaultMaxSteps bounds the backtracking search.
const DefaultMaxSteps = 100_000

// BacktrackingSolver is the default [Solver]. It assigns packages in id
// order, trying candidates in policy order, and backtracks when a choice
// violates a range imposed by an already-selected package.
//
// Dependencies on packages with no candidates at all in the closure are
// treated as absent and do not constrain the result. A dependency whose
// candidates all violate its ranges makes the branch fail.
type BacktrackingSolver struct {
	MaxSteps int // Search budget (default: 100000)
}

// UnsatisfiableError describes the constraint that could not be met.
type UnsatisfiableError struct {
	Package     string
	Constraints []string // "requester requires range", one per constraint
}

// Error implements the error interface.
func (e *UnsatisfiableError) Error() string {
	return fmt.Sprintf("no version of %s satisfies: %s", e.Package, strings.Join(e.Constraints, "; "))
}

// Solve implements [Solver].
func (s BacktrackingSolver) Solve(roots []Dependency, available []*PackageInfo, policy Policy) (Selection, error) {
	maxSteps := s.MaxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}

	byID := make(map[string][]*PackageInfo)
	for _, p := range available {
		key := strings.ToLower(p.Identity.ID)
		byID[key] = append(byID[key], p)
	}
	for key, cands := range byID {
		slices.SortFunc(cands, func(a, b *PackageInfo) int {
			c := nuget.Compare(a.Identity.Version, b.Identity.Version)
			if policy == PolicyHighest {
				return -c
			}
			return c
		})
		byID[key] = slices.CompactFunc(cands, func(a, b *PackageInfo) bool {
			return a.Identity.Version.Equal(b.Identity.Version)
		})
	}

	st := &search{byID: byID, maxSteps: maxSteps}
	initial := state{
		selected:    make(Selection),
		constraints: make(map[string][]constraint),
	}
	for _, r := range roots {
		key := strings.ToLower(r.ID)
		if len(byID[key]) == 0 {
			return nil, derrors.New(derrors.ErrCodeMetadataNotFound, "requested package %s was not discovered", r.ID)
		}
		initial.constraints[key] = append(initial.constraints[key], constraint{from: "(root)", rng: r.Range})
	}

	if sel, ok := st.solve(initial); ok {
		return sel, nil
	}
	if st.exhausted {
		return nil, derrors.New(derrors.ErrCodeUnsatisfiableConstraints, "search gave up after %d steps", maxSteps)
	}
	return nil, derrors.Wrap(derrors.ErrCodeUnsatisfiableConstraints, st.conflict, "no consistent version set")
}

type constraint struct {
	from string
	rng  nuget.VersionRange
}

type state struct {
	selected    Selection
	constraints map[string][]constraint
}

func (s state) clone() state {
	cons := make(map[string][]constraint, len(s.constraints))
	for k, v := range s.constraints {
		cons[k] = slices.Clone(v)
	}
	return state{selected: maps.Clone(s.selected), constraints: cons}
}

type search struct {
	byID      map[string][]*PackageInfo
	maxSteps  int
	steps     int
	exhausted bool
	depth     int // selection size at the recorded conflict
	conflict  *UnsatisfiableError
}

func (s *search) solve(st state) (Selection, bool) {
	key, ok := nextUnselected(st)
	if !ok {
		return st.selected, true
	}
	for _, cand := range s.byID[key] {
		if s.steps++; s.steps > s.maxSteps {
			s.exhausted = true
			return nil, false
		}
		if !satisfiesAll(cand.Identity.Version, st.constraints[key]) {
			continue
		}
		next, ok := s.choose(st, key, cand)
		if !ok {
			continue
		}
		if sel, ok := s.solve(next); ok {
			return sel, true
		}
		if s.exhausted {
			return nil, false
		}
	}
	if s.conflict == nil || len(st.selected) >= s.depth {
		s.depth = len(st.selected)
		s.conflict = newConflict(s.byID[key], key, st.constraints[key])
	}
	return nil, false
}

// choose selects cand and adds its dependency ranges, failing if one of them
// rules out an already-selected package.
func (s *search) choose(st state, key string, cand *PackageInfo) (state, bool) {
	next := st.clone()
	next.selected[key] = cand
	for _, dep := range cand.Dependencies {
		depKey := strings.ToLower(dep.ID)
		if len(s.byID[depKey]) == 0 {
			continue // absent package
		}
		next.constraints[depKey] = append(next.constraints[depKey], constraint{from: cand.Identity.String(), rng: dep.Range})
		if sel, ok := next.selected[depKey]; ok && !dep.Range.Satisfies(sel.Identity.Version) {
			return state{}, false
		}
	}
	return next, true
}

func nextUnselected(st state) (string, bool) {
	keys := slices.Sorted(maps.Keys(st.constraints))
	for _, k := range keys {
		if _, ok := st.selected[k]; !ok {
			return k, true
		}
	}
	return "", false
}

func satisfiesAll(v nuget.Version, cons []constraint) bool {
	for _, c := range cons {
		if !c.rng.Satisfies(v) {
			return false
		}
	}
	return true
}

func newConflict(cands []*PackageInfo, key string, cons []constraint) *UnsatisfiableError {
	name := key
	if len(cands) > 0 {
		name = cands[0].Identity.ID
	}
	e := &UnsatisfiableError{Package: name}
	for _, c := range cons {
		e.Constraints = append(e.Constraints, c.from+" requires "+c.rng.String())
	}
	return e
}
