package simulation

import (
	"math"
	"reflect"
	"testing"
)

// AssertPath asserts that a step found exactly the given path.
func AssertPath(t testing.TB, result Result, step int, want ...string) {
	t.Helper()
	got := result.PathAt(step)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AssertPath: step %d: path %v, want %v", step, got, want)
	}
}

// AssertNoPath asserts that a path step ran and found nothing.
func AssertNoPath(t testing.TB, result Result, step int) {
	t.Helper()
	if step < 0 || step >= len(result.Steps) || result.Steps[step].Search == nil {
		t.Errorf("AssertNoPath: step %d is not a path step", step)
		return
	}
	if result.Steps[step].Search.Found {
		t.Errorf("AssertNoPath: step %d found %v", step, result.Steps[step].Search.Path)
	}
}

// AssertWeightNear asserts that a-b is within tol of want after a step.
func AssertWeightNear(t testing.TB, result Result, step int, a, b string, want, tol float64) {
	t.Helper()
	w, ok := result.WeightAfter(step, a, b)
	if !ok {
		t.Errorf("AssertWeightNear: step %d: synapse %s not found", step, EdgeKey(a, b))
		return
	}
	if math.Abs(w-want) > tol {
		t.Errorf("AssertWeightNear: step %d: synapse %s weight %.9f, want %.9f ± %g", step, EdgeKey(a, b), w, want, tol)
	}
}

// AssertWeightsBounded asserts that every weight stays in [min, max] after every step.
func AssertWeightsBounded(t testing.TB, result Result, min, max float64) {
	t.Helper()
	for _, sr := range result.Steps {
		for key, w := range sr.Weights {
			if w < min || w > max {
				t.Errorf("AssertWeightsBounded: step %d: synapse %s weight %.6f not in [%.4f, %.4f]", sr.Index, key, w, min, max)
			}
		}
	}
}

// AssertWeightIncreases asserts that a-b strictly grows across [from, to].
func AssertWeightIncreases(t testing.TB, result Result, a, b string, from, to int) {
	t.Helper()
	prev, ok := result.WeightAfter(from, a, b)
	if !ok {
		t.Errorf("AssertWeightIncreases: step %d: synapse %s not found", from, EdgeKey(a, b))
		return
	}
	for i := from + 1; i <= to; i++ {
		w, _ := result.WeightAfter(i, a, b)
		if w <= prev {
			t.Errorf("AssertWeightIncreases: step %d: synapse %s weight %.9f did not grow from %.9f", i, EdgeKey(a, b), w, prev)
		}
		prev = w
	}
}
