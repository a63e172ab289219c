package render

import (
	"fmt"

	"github.com/xob0t/GoToken/pkg/border"
	"github.com/xob0t/GoToken/pkg/codec"
)

// Error kinds returned by Processor. All are pointers; match them with
// errors.As.
type (
	DecodeError          = codec.DecodeError
	SizeMismatchError    = codec.SizeMismatchError
	ParseError           = border.ParseError
	BundleError          = border.BundleError
	ColorParseError      = border.ColorParseError
	NoSuitableFrameError = border.NoSuitableFrameError
)

// ValidationError reports a request that breaks the caller contract.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
