package aclaf

import "regexp"

// DefaultNegativeNumberPattern is used when ParserConfig.NegativeNumberPattern
// is empty and AllowNegativeNumbers is true.
const DefaultNegativeNumberPattern = `^-\d+\.?\d*([eE][+-]?\d+)?$`

// nestedQuantifierHeuristic flags a quantified group whose interior itself
// contains '+' or '*' - a cheap, documented-incomplete ReDoS smell test
// (spec §4.3). It does not catch alternation-based ReDoS.
var nestedQuantifierHeuristic = regexp.MustCompile(`\([^)]*[+*][^)]*\)[+*]`)

// ParserConfig is immutable parser-wide configuration.
type ParserConfig struct {
	AllowNegativeNumbers  bool
	NegativeNumberPattern string
}

// compiledPattern is the validated, once-compiled negative-number matcher
// held by a Parser for its lifetime (spec §9's "compile once, reuse").
type compiledPattern struct {
	re *regexp.Regexp
}

// validateNegativeNumberPattern runs the three C3 gates from spec §4.3, in
// order, and returns the compiled matcher on success.
func validateNegativeNumberPattern(pattern string) (*compiledPattern, error) {
	if pattern == "" {
		pattern = DefaultNegativeNumberPattern
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, patternErr("negative-number pattern failed to compile: " + err.Error())
	}

	if re.MatchString("") {
		return nil, patternErr("negative-number pattern matches the empty string")
	}

	if nestedQuantifierHeuristic.MatchString(pattern) {
		return nil, patternErr("negative-number pattern contains a quantified group with nested +/*: " +
			"possible catastrophic backtracking")
	}

	return &compiledPattern{re: re}, nil
}

func (p *compiledPattern) matches(token string) bool {
	if p == nil || p.re == nil {
		return false
	}
	return p.re.MatchString(token)
}

func patternErr(message string) *ParseError {
	return &ParseError{Type: ErrorTypeInvalidPattern, Message: message, Position: -1}
}
