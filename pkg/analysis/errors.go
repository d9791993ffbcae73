package analysis

import (
	stderrors "errors"

	"github.com/jereyes4/Wahl-Chains/pkg/divisor"
	"github.com/jereyes4/Wahl-Chains/pkg/divisor/transform"
	"github.com/jereyes4/Wahl-Chains/pkg/errors"
	"github.com/jereyes4/Wahl-Chains/pkg/intmat"
)

// ErrDeterminantMismatch is returned with Options.Verify when Bareiss
// elimination and cofactor expansion disagree.
var ErrDeterminantMismatch = stderrors.New("determinant mismatch")

// ValidateGraph validates g, reporting failures as INVALID_GRAPH.
func ValidateGraph(g *divisor.Graph) error {
	if err := g.Validate(); err != nil {
		return invalidGraph(err)
	}
	return nil
}

// invalidGraph wraps a graph validation failure.
func invalidGraph(err error) error {
	return errors.Wrap(errors.ErrCodeInvalidGraph, err, "invalid graph")
}

// Classify maps an engine error raised while processing a selection to a
// coded error. Errors that already carry a code are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var coded *errors.Error
	if stderrors.As(err, &coded) {
		return err
	}
	switch {
	case stderrors.Is(err, transform.ErrOrderViolation),
		stderrors.Is(err, transform.ErrStaleReference):
		return errors.Wrap(errors.ErrCodeInvalidOrder, err, "invalid contraction order")
	case stderrors.Is(err, transform.ErrSelfLoop):
		return errors.Wrap(errors.ErrCodeInvalidGraph, err, "invalid graph")
	case stderrors.Is(err, divisor.ErrCurveOutOfRange),
		stderrors.Is(err, divisor.ErrDuplicateCurve),
		stderrors.Is(err, divisor.ErrNotExceptional):
		return errors.Wrap(errors.ErrCodeInvalidSelection, err, "invalid selection")
	case stderrors.Is(err, intmat.ErrInexactDivision),
		stderrors.Is(err, ErrDeterminantMismatch):
		return errors.Wrap(errors.ErrCodeInternal, err, "determinant")
	default:
		return errors.Wrap(errors.ErrCodeInternal, err, "analysis failed")
	}
}
