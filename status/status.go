// Package status defines the error categories shared by the HIP runtime (hip package) and the HIP runtime
// compiler (hiprtc package) errors.
//
// The two packages have separate, independently numbered, status code spaces that are never mixed: a
// hip.Status of 5 and a hiprtc.Result of 5 mean different things. But both map their codes to one of the
// categories defined here, so callers can decide how to react to a failure (retry, wait or give up)
// without knowing which library produced it.
package status

import (
	"github.com/pkg/errors"
)

//go:generate go tool enumer -type=Category -trimprefix=Category -output=gen_category_enumer.go

// Category classifies a native status code.
type Category int

const (
	// CategoryNone is the category of a nil error (success).
	CategoryNone Category = iota

	// CategoryResourceExhaustion covers out-of-memory and insufficient driver/resources failures.
	// The operation may succeed if retried after resources are released.
	CategoryResourceExhaustion

	// CategoryInvalidUsage covers invalid values, handles, devices, contexts, symbols, configurations,
	// sources, options, programs, names not found and uninitialized runtimes.
	CategoryInvalidUsage

	// CategoryLaunchFailure covers kernel failures: out-of-resources, timeouts, illegal addresses,
	// prior launch failures and device side asserts.
	CategoryLaunchFailure

	// CategoryStateConflict covers operations conflicting with the current state: already mapped or acquired,
	// context already current or in use, peer access already enabled, profiler already started, etc.
	CategoryStateConflict

	// CategoryNotReady is the "pending" signal of polling operations. It is not a failure.
	CategoryNotReady

	// CategoryUnsupported is the catch-all for "not supported", "unknown" and unrecognized codes.
	CategoryUnsupported
)

// Categorized is implemented by errors that carry a Category.
type Categorized interface {
	Category() Category
}

// CategoryOf returns the Category of the first error in err's chain that implements Categorized.
//
// It returns CategoryNone for a nil error, and CategoryUnsupported for errors that carry no category.
func CategoryOf(err error) Category {
	if err == nil {
		return CategoryNone
	}
	var categorized Categorized
	if errors.As(err, &categorized) {
		return categorized.Category()
	}
	return CategoryUnsupported
}

// IsRetryable returns whether the failure may go away if the operation is attempted again later:
// resource exhaustion or not ready.
func IsRetryable(err error) bool {
	switch CategoryOf(err) {
	case CategoryResourceExhaustion, CategoryNotReady:
		return true
	default:
		return false
	}
}

// IsNotReady returns whether err is the "not ready" signal of a polling operation.
func IsNotReady(err error) bool {
	return CategoryOf(err) == CategoryNotReady
}
