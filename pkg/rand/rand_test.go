// pkg/rand/rand_test.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package rand

import "testing"

func TestPermutationElement(t *testing.T) {
	for _, n := range []int{8, 31, 10523} {
		for _, h := range []uint32{0, 0xff, 0xfeedface} {
			m := make(map[int]int)

			for i := 0; i < n; i++ {
				perm := PermutationElement(i, n, h)
				if _, ok := m[perm]; ok {
					t.Errorf("%d: appeared multiple times", perm)
				}
				m[perm] = i
			}
		}
	}
}

func TestNewSeededDeterministic(t *testing.T) {
	a := NewSeeded(42)
	b := NewSeeded(42)

	for i := 0; i < 100; i++ {
		if a.Uint32() != b.Uint32() {
			t.Fatalf("same seed produced different sequences at step %d", i)
		}
	}
}

func TestNewSeededDiffers(t *testing.T) {
	a := NewSeeded(1)
	b := NewSeeded(2)

	same := true
	for i := 0; i < 10; i++ {
		if a.Uint32() != b.Uint32() {
			same = false
		}
	}
	if same {
		t.Fatalf("different seeds produced identical sequences")
	}
}

func TestPermuteSlice(t *testing.T) {
	s := []string{"a", "b", "c", "d", "e", "f", "g"}
	seen := make(map[int]bool)
	for i, v := range PermuteSlice(s, 0xfeedface) {
		if seen[i] {
			t.Errorf("index %d yielded twice", i)
		}
		seen[i] = true
		if s[i] != v {
			t.Errorf("index %d yielded value %q, want %q", i, v, s[i])
		}
	}
	if len(seen) != len(s) {
		t.Errorf("permutation visited %d elements, want %d", len(seen), len(s))
	}
}

func TestIntnBounds(t *testing.T) {
	r := NewSeeded(3)
	for i := 0; i < 1000; i++ {
		if v := r.Intn(7); v < 0 || v >= 7 {
			t.Fatalf("Intn(7) = %d, out of range", v)
		}
	}
}

func TestSampleWeightedSeq(t *testing.T) {
	a := []int{1, 2, 3, 4, 5, 0, 10, 13}
	counts := make([]int, len(a))
	r := NewSeeded(7)

	n := 100000
	for i := 0; i < n; i++ {
		idx, ok := SampleWeightedSeq(sliceSeq(a), func(v int) int { return v }, &r)
		if !ok {
			t.Fatal("expected a sample")
		}
		for j, v := range a {
			if v == idx {
				counts[j]++
				break
			}
		}
	}

	sum := 0
	for _, v := range a {
		sum += v
	}

	for i, c := range counts {
		expected := a[i] * n / sum
		if a[i] == 0 && c != 0 {
			t.Errorf("expected 0 samples for a[%d]=0, got %d", i, c)
		} else if a[i] != 0 && (c < expected-400 || c > expected+400) {
			t.Errorf("expected roughly %d samples for a[%d]=%d, got %d", expected, i, a[i], c)
		}
	}
}

func sliceSeq(s []int) func(func(int) bool) {
	return func(yield func(int) bool) {
		for _, v := range s {
			if !yield(v) {
				return
			}
		}
	}
}
