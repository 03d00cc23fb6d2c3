package engine

import (
	"fmt"
	"strconv"

	"github.com/danieljhkim/lanesim/internal/config"
	"github.com/danieljhkim/lanesim/internal/hash"
	"github.com/danieljhkim/lanesim/internal/lattice"
	"github.com/danieljhkim/lanesim/internal/output"
	"github.com/danieljhkim/lanesim/internal/rng"
)

// Plan expands the cases of cfg into run specs, in case then value order.
// Each run's seed is derived from base and the run's case and value, so it
// does not depend on how many runs precede it or how they are scheduled.
func Plan(cfg *config.Config, base uint64) ([]RunSpec, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	template := cfg.Template()
	files := make(map[string]string)
	var specs []RunSpec

	for _, k := range cfg.Cases {
		for _, v := range k.Values {
			spec := RunSpec{
				Case:   k.ID,
				Param:  k.Vary,
				Value:  v,
				Config: k.RunConfig(template, v),
				FileA:  output.FileName(k.ID, lattice.LaneA, string(k.Vary), v),
				FileB:  output.FileName(k.ID, lattice.LaneB, string(k.Vary), v),
			}
			label := fmt.Sprintf("case %s %s=%s", k.ID, k.Vary, strconv.FormatFloat(v, 'g', -1, 64))
			if prev, ok := files[spec.FileA]; ok {
				return nil, fmt.Errorf("%w: %s and %s both write %s", ErrValidation, prev, label, spec.FileA)
			}
			files[spec.FileA] = label

			spec.Seed = rng.Derive(base, runKey(k.ID, k.Vary, v))
			spec.ID = hash.RunID(spec.Config, spec.Seed)
			specs = append(specs, spec)
		}
	}
	return specs, nil
}

func runKey(caseID string, param config.Param, v float64) string {
	return "case=" + caseID + ";" + string(param) + "=" + strconv.FormatFloat(v, 'g', -1, 64)
}
