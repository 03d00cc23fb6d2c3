package rng

import "testing"

func TestPCGSource_Float64(t *testing.T) {
	t.Run("samples stay in the unit interval", func(t *testing.T) {
		src := New(42)
		for i := 0; i < 10000; i++ {
			v := src.Float64()
			if v < 0 || v >= 1 {
				t.Fatalf("Float64() = %v, want value in [0,1)", v)
			}
		}
	})

	t.Run("same seed replays the same stream", func(t *testing.T) {
		a, b := New(7), New(7)
		for i := 0; i < 1000; i++ {
			if x, y := a.Float64(), b.Float64(); x != y {
				t.Fatalf("draw %d differs: %v != %v", i, x, y)
			}
		}
	})

	t.Run("different seeds diverge", func(t *testing.T) {
		a, b := New(1), New(2)
		same := 0
		for i := 0; i < 100; i++ {
			if a.Float64() == b.Float64() {
				same++
			}
		}
		if same == 100 {
			t.Error("sources with different seeds produced identical streams")
		}
	})
}

func TestPCGSource_IntN(t *testing.T) {
	src := New(3)
	for i := 0; i < 1000; i++ {
		if v := src.IntN(5); v < 0 || v >= 5 {
			t.Fatalf("IntN(5) = %d, want value in [0,5)", v)
		}
	}
}

func TestDerive(t *testing.T) {
	tests := []struct {
		name  string
		base  uint64
		keyA  string
		keyB  string
		equal bool
	}{
		{"same inputs give same seed", 10, "a/alpha/0.30", "a/alpha/0.30", true},
		{"different keys give different seeds", 10, "a/alpha/0.30", "a/alpha/0.40", false},
		{"case is part of the key", 10, "a/alpha/0.30", "d/alpha/0.30", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Derive(tt.base, tt.keyA) == Derive(tt.base, tt.keyB)
			if got != tt.equal {
				t.Errorf("Derive equality = %v, want %v", got, tt.equal)
			}
		})
	}

	t.Run("base seed changes the result", func(t *testing.T) {
		if Derive(1, "k") == Derive(2, "k") {
			t.Error("expected different seeds for different bases")
		}
	})

	t.Run("never returns zero", func(t *testing.T) {
		for i := uint64(0); i < 100; i++ {
			if Derive(i, "x") == 0 {
				t.Fatalf("Derive(%d) returned reserved seed 0", i)
			}
		}
	})
}

func TestSequence(t *testing.T) {
	t.Run("replays samples then fill", func(t *testing.T) {
		seq := NewSequence(0.9, 0.1, 0.2)
		want := []float64{0.1, 0.2, 0.9, 0.9}
		for i, w := range want {
			if got := seq.Float64(); got != w {
				t.Errorf("draw %d = %v, want %v", i, got, w)
			}
		}
		if seq.Draws != len(want) {
			t.Errorf("Draws = %d, want %d", seq.Draws, len(want))
		}
	})

	t.Run("IntN scales samples", func(t *testing.T) {
		seq := NewSequence(0, 0.0, 0.5, 0.999)
		want := []int{0, 2, 3}
		for i, w := range want {
			if got := seq.IntN(4); got != w {
				t.Errorf("IntN draw %d = %d, want %d", i, got, w)
			}
		}
	})
}
