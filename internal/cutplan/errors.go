package cutplan

import (
	"fmt"

	"podknight/internal/services"
	"podknight/internal/timecode"
)

// InvalidPlanError names the interval that failed validation.
type InvalidPlanError struct {
	Index  int
	Start  float64
	End    float64
	Reason string
}

func (e *InvalidPlanError) Error() string {
	return fmt.Sprintf("part %d [%s - %s]: %s", e.Index+1, timecode.Format(e.Start), timecode.Format(e.End), e.Reason)
}

// Is lets callers classify the error with errors.Is(err, services.ErrInvalidPlan).
func (e *InvalidPlanError) Is(target error) bool {
	return target == services.ErrInvalidPlan
}
