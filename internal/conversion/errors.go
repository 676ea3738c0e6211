package conversion

import "errors"

// ErrPrecondition is the umbrella error for conversion attempted on an
// ineligible source document. Callers match it with errors.Is; the
// concrete *PreconditionError carries the sub-reason.
var ErrPrecondition = errors.New("conversion_precondition")

// Precondition sub-reasons.
const (
	ReasonNotASale          = "not_a_sale"
	ReasonNoSalePrice       = "no_sale_price"
	ReasonNoBuyer           = "no_buyer"
	ReasonOrderAlreadyFinal = "order_already_final"
	ReasonEmptyDocument     = "empty_document"
)

type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return "conversion_precondition: " + e.Reason
}

func (e *PreconditionError) Unwrap() error { return ErrPrecondition }

func precondition(reason string) error {
	return &PreconditionError{Reason: reason}
}
