package engine

import "context"

// demoFormula is returned when no recognition backend is configured, so the
// rest of the pipeline can be exercised on machines without one.
const demoFormula = "x^2 + 2x + 1"

// Demo is a stand-in engine that always recognizes the same formula.
type Demo struct{}

func (Demo) Recognize(ctx context.Context, image []byte) (Result, error) {
	return Result{LaTeX: demoFormula, Demo: true}, nil
}

func (Demo) Health(ctx context.Context) error {
	return nil
}
