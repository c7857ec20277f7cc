package notifier

import (
	"errors"

	"github.com/amishk599/offerhound/internal/model"
)

// Multi fans offers out to every notifier. Every notifier is called even if
// an earlier one fails; the failures are joined.
type Multi []model.Notifier

func (m Multi) Notify(offers []model.Offer) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(offers); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
