package servicecache

import "github.com/cockroachdb/errors"

var (
	// ErrInvalidOperation marks errors raised when the requested operation
	// is not invocable on the given service. Raised before any storage
	// access.
	ErrInvalidOperation = errors.New("servicecache: invalid operation")

	// ErrStorageFailure marks errors propagated from the storage
	// collaborator. The underlying cause is preserved and can be inspected
	// with errors.Is / errors.As.
	ErrStorageFailure = errors.New("servicecache: storage failure")
)

func invalidOperation(operation, identity string) error {
	return errors.Mark(
		errors.Newf("operation %q is not invocable on service %s", operation, identity),
		ErrInvalidOperation,
	)
}

func storageFailure(err error) error {
	return errors.Mark(err, ErrStorageFailure)
}
