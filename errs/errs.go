// Package errs defines the sentinel errors shared by all menufit packages.
//
// Callers should compare with errors.Is, since most of these values are wrapped
// with extra context on their way up the call stack.
package errs

import "errors"

// Curve inversion errors.
var (
	// ErrThresholdOutOfRange is returned when a rate curve is asked for a rate that
	// falls outside the rates it sampled (the underflow or overflow region).
	ErrThresholdOutOfRange = errors.New("requested rate is outside the sampled range of the rate curve")
	// ErrInvalidCurveData is returned when a rate curve is rebuilt from inconsistent data.
	ErrInvalidCurveData = errors.New("invalid rate curve data")
	// ErrInvalidBinning is returned for a binning with no bins or an empty/inverted range.
	ErrInvalidBinning = errors.New("invalid binning")
	// ErrEmptySample is returned when a sample has no events or zero total weight.
	ErrEmptySample = errors.New("sample has no weighted events")
)

// Channel and menu errors.
var (
	// ErrUnknownParameter is returned when a channel is asked for a parameter it does not declare.
	ErrUnknownParameter = errors.New("unknown parameter")
	// ErrUnknownChannel is returned when the registry has no factory for a channel name/version.
	ErrUnknownChannel = errors.New("unknown channel")
	// ErrDuplicateChannel is returned when a channel name/version is registered twice.
	ErrDuplicateChannel = errors.New("channel already registered")
	// ErrIndexOutOfRange is returned for a menu position outside [0, Len()).
	ErrIndexOutOfRange = errors.New("menu index out of range")
	// ErrInvalidConstraintValue is returned when a constraint is given a value outside its domain,
	// e.g. a bandwidth fraction outside [0,1].
	ErrInvalidConstraintValue = errors.New("invalid constraint value")
)

// Fitting errors.
var (
	// ErrIterationLimitExceeded is returned when the fit does not converge within the iteration cap.
	ErrIterationLimitExceeded = errors.New("fit did not converge within the iteration limit")
	// ErrZeroPrimaryParameter is returned when co-scaled ratios cannot be taken because
	// the primary parameter is zero.
	ErrZeroPrimaryParameter = errors.New("primary parameter is zero, cannot derive scaling ratios")
	// ErrNoCurve is returned when a rate curve is requested for a channel that is not being fitted.
	ErrNoCurve = errors.New("no rate curve for channel")
)
