package engine

import (
	"fmt"

	"github.com/Victor-armando18/storefront-pricing/internal/domain"
)

type executionLog struct {
	steps []domain.ExecutionStep
}

func (l *executionLog) add(phase PipelinePhase, offerID, format string, args ...interface{}) {
	l.steps = append(l.steps, domain.ExecutionStep{
		Phase:   string(phase),
		OfferID: offerID,
		Message: fmt.Sprintf(format, args...),
	})
}
