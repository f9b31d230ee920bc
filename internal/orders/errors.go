package orders

import "errors"

// Checkout failure kinds. Every error returned by Service.Checkout matches
// exactly one of these with errors.Is.
var (
	ErrInvalidCart            = errors.New("invalid cart")
	ErrProductNotFound        = errors.New("product not found")
	ErrPriceMismatch          = errors.New("price mismatch")
	ErrLineTotalMismatch      = errors.New("total price mismatch")
	ErrGrossTotalMismatch     = errors.New("gross total price mismatch")
	ErrDuplicateTransaction   = errors.New("transaction id already used")
	ErrOrderPersistenceFailed = errors.New("order persistence failed")
)

// ErrOrderNotFound is returned by the read side.
var ErrOrderNotFound = errors.New("order not found")

// Kind returns the checkout failure kind err matches, or nil.
func Kind(err error) error {
	for _, k := range []error{
		ErrInvalidCart,
		ErrProductNotFound,
		ErrPriceMismatch,
		ErrLineTotalMismatch,
		ErrGrossTotalMismatch,
		ErrDuplicateTransaction,
		ErrOrderPersistenceFailed,
	} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
