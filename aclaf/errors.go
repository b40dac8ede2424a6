package aclaf

import (
	"fmt"
	"strings"

	"github.com/aclaf/aclaf/internal/fuzzy"
)

// ErrorType enumerates the parse-error taxonomy from spec §7. It is a
// sealed set: every dispatch over ErrorType in this package is total.
type ErrorType string

const (
	ErrorTypeInvalidArity                         ErrorType = "invalid_arity"
	ErrorTypeInvalidSpec                          ErrorType = "invalid_spec"
	ErrorTypeInvalidPattern                       ErrorType = "invalid_pattern"
	ErrorTypeUnknownOption                        ErrorType = "unknown_option"
	ErrorTypeFlagTakesNoValue                     ErrorType = "flag_takes_no_value"
	ErrorTypeInsufficientOptionValues             ErrorType = "insufficient_option_values"
	ErrorTypeOptionCannotBeSpecifiedMultipleTimes ErrorType = "option_cannot_be_specified_multiple_times"
	ErrorTypeTooManyPositionals                   ErrorType = "too_many_positionals"
	ErrorTypeMissingPositional                    ErrorType = "missing_positional"
)

// ParseError is the single structured error type returned by every fallible
// operation in this package. Construction-time errors (InvalidArity,
// InvalidSpec, InvalidPattern) never carry a token Position because they
// are raised before any token stream exists; parse-time errors always do.
type ParseError struct {
	Type ErrorType

	// Message is a human-readable description, never used for programmatic
	// dispatch: switch on Type instead.
	Message string

	// Position is the offending token's index in the input slice, or -1 for
	// construction-time errors raised before any token stream exists.
	// End-of-stream errors (MissingPositional, a still-open pending option)
	// use len(tokens), one past the last valid index, since there is no
	// offending token, only an offending absence at the end of input.
	Position int

	// CommandPath names the command chain (root first, starting with the
	// root command's own name) the error occurred under. Set for every
	// parse-time error, including root-level ones; empty for
	// construction-time errors.
	CommandPath []string

	// OptionName or PositionalName identify the offending spec element,
	// when applicable.
	OptionName     string
	PositionalName string

	// Hint is an optional, non-authoritative suggestion (e.g. "did you mean
	// --foo?", or the negative-number disambiguation hint from spec §9).
	Hint string
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if len(e.CommandPath) > 0 {
		fmt.Fprintf(&b, " (in %s)", strings.Join(e.CommandPath, " "))
	}
	if e.Hint != "" {
		fmt.Fprintf(&b, " - %s", e.Hint)
	}
	return b.String()
}

func newPositionError(typ ErrorType, position int, message string) *ParseError {
	return &ParseError{Type: typ, Message: message, Position: position}
}

func errUnknownOption(name string, position int, known []string) *ParseError {
	e := &ParseError{
		Type:       ErrorTypeUnknownOption,
		Message:    "unknown option: " + optionDisplayName(name),
		Position:   position,
		OptionName: name,
	}
	if suggestion := fuzzy.FindBestFlag(name, known, 2); suggestion != "" {
		e.Hint = fmt.Sprintf("did you mean %s?", optionDisplayName(suggestion))
	}
	return e
}

// errAmbiguousNegativeNumber is raised as an UnknownOption whose Hint names
// the three disambiguation mechanisms from spec §9, for the case where
// allow_negative_numbers is off and the unrecognized option's first
// character is a digit.
func errAmbiguousNegativeNumber(token string, position int) *ParseError {
	return &ParseError{
		Type:       ErrorTypeUnknownOption,
		Message:    "unknown option: " + token,
		Position:   position,
		OptionName: token,
		Hint: "looks like a negative number: enable allow_negative_numbers, " +
			"place it after '--', or pass it as an option value instead",
	}
}

func optionDisplayName(name string) string {
	if len(name) == 1 {
		return "-" + name
	}
	return "--" + name
}
