package sim

import (
	"testing"

	"github.com/danieljhkim/lanesim/internal/lattice"
)

func TestAccumulator(t *testing.T) {
	acc := NewAccumulator(2)
	s := lattice.New(2)

	s.A[0] = 1
	acc.Add(s)
	s.B[1] = 1
	acc.Add(s)

	rhoA, rhoB := acc.Densities(4)
	wantA := []float64{0.5, 0}
	wantB := []float64{0, 0.25}
	for i := range wantA {
		if rhoA[i] != wantA[i] || rhoB[i] != wantB[i] {
			t.Fatalf("densities = %v %v, want %v %v", rhoA, rhoB, wantA, wantB)
		}
	}
}

func TestAccumulator_ZeroMeasured(t *testing.T) {
	rhoA, rhoB := NewAccumulator(3).Densities(0)
	if len(rhoA) != 3 || len(rhoB) != 3 {
		t.Fatalf("unexpected lengths %d %d", len(rhoA), len(rhoB))
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{Length: 10, Particles: 5, Steps: 100, Warmup: 10, Alpha: 0.5, Beta: 0.5}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid config", func(c *Config) {}, false},
		{"rate of exactly one", func(c *Config) { c.Rates.HopA = 1 }, false},
		{"completely full lattice", func(c *Config) { c.Particles = 20 }, false},
		{"zero warmup", func(c *Config) { c.Warmup = 0 }, false},
		{"zero length", func(c *Config) { c.Length = 0 }, true},
		{"negative particles", func(c *Config) { c.Particles = -1 }, true},
		{"too many particles", func(c *Config) { c.Particles = 21 }, true},
		{"rate above one", func(c *Config) { c.Rates.ConvertBA = 1.5 }, true},
		{"negative alpha", func(c *Config) { c.Alpha = -0.1 }, true},
		{"zero steps", func(c *Config) { c.Steps = 0; c.Warmup = 0 }, true},
		{"warmup equals steps", func(c *Config) { c.Warmup = 100 }, true},
		{"negative warmup", func(c *Config) { c.Warmup = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
