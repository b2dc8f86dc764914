package sqlitemigrate

import (
	"fmt"
	"strings"
)

// Step is one versioned, idempotent unit of schema or data change.
type Step struct {
	Version     int
	Description string
	Effect      Effect
}

// Catalog is the validated, strictly ascending list of steps for one schema.
// The zero value is an empty catalog.
type Catalog struct {
	steps []Step
}

// NewCatalog validates steps and returns them as a catalog. Versions must be
// positive and strictly increasing; gaps are allowed.
func NewCatalog(steps ...Step) (Catalog, error) {
	prev := 0
	for i, step := range steps {
		if step.Version <= 0 {
			return Catalog{}, fmt.Errorf("step %d: version must be positive, got %d", i, step.Version)
		}
		if step.Version <= prev {
			return Catalog{}, fmt.Errorf("step %d: version %d does not follow %d", i, step.Version, prev)
		}
		if strings.TrimSpace(step.Description) == "" {
			return Catalog{}, fmt.Errorf("version %d: description is required", step.Version)
		}
		if step.Effect == nil {
			return Catalog{}, fmt.Errorf("version %d: effect is required", step.Version)
		}
		if err := step.Effect.validate(); err != nil {
			return Catalog{}, fmt.Errorf("version %d (%s): %w", step.Version, step.Description, err)
		}
		prev = step.Version
	}
	cloned := make([]Step, len(steps))
	copy(cloned, steps)
	return Catalog{steps: cloned}, nil
}

// Steps returns a copy of the ordered steps.
func (c Catalog) Steps() []Step {
	out := make([]Step, len(c.steps))
	copy(out, c.steps)
	return out
}

// Len returns the number of steps.
func (c Catalog) Len() int {
	return len(c.steps)
}

// Latest returns the highest version, or 0 for an empty catalog.
func (c Catalog) Latest() int {
	if len(c.steps) == 0 {
		return 0
	}
	return c.steps[len(c.steps)-1].Version
}

// Step returns the step recorded under version.
func (c Catalog) Step(version int) (Step, bool) {
	for _, step := range c.steps {
		if step.Version == version {
			return step, true
		}
	}
	return Step{}, false
}

// Until returns the prefix of the catalog up to and including version.
func (c Catalog) Until(version int) Catalog {
	n := 0
	for n < len(c.steps) && c.steps[n].Version <= version {
		n++
	}
	return Catalog{steps: c.steps[:n:n]}
}
