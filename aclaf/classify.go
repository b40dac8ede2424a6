package aclaf

import (
	"strings"
	"unicode/utf8"
)

// tokenKind is the sealed classification a raw token resolves to (spec
// §4.4). It is produced by classifyToken and consumed by the dispatcher.
type tokenKind int

const (
	tokDelimiter tokenKind = iota
	tokLongOption
	tokShortCluster
	tokSubcommandKeyword
	tokNegativeNumber
	tokPositional
)

// classifiedToken is the structural decomposition of one raw token.
// Which fields are meaningful depends on kind.
type classifiedToken struct {
	kind tokenKind

	// tokLongOption
	longName    string
	hasInline   bool
	inlineValue string

	// tokShortCluster. shortChars is the raw remainder of the token after
	// the leading '-', unsplit on '=' - any glued value (explicit
	// "=value" or juxtaposed) is resolved during the dispatcher's cluster
	// walk, which needs the untouched text to find it.
	shortChars string

	// tokSubcommandKeyword
	subcommand string
}

// classifyToken classifies one raw token given the dispatcher's current
// context, per the top-down, first-match-wins rules of spec §4.4. It is a
// pure function: no state is mutated, no lookahead beyond the token
// itself occurs.
func classifyToken(
	token string,
	cfg ParserConfig,
	pattern *compiledPattern,
	spec *CommandSpec,
	subcommandEligible bool,
	valueConsuming bool,
) (classifiedToken, *ParseError) {
	// Rule 1: the literal "--" is the end-of-options delimiter.
	if token == "--" {
		return classifiedToken{kind: tokDelimiter}, nil
	}

	// Rule 2: "--name" / "--name=value".
	if strings.HasPrefix(token, "--") && len(token) > 2 {
		rest := token[2:]
		name, value, hasValue := splitOnFirstEquals(rest)
		if name == "" {
			return classifiedToken{}, newPositionError(ErrorTypeUnknownOption, -1,
				"empty long option name: "+token)
		}
		return classifiedToken{kind: tokLongOption, longName: name, hasInline: hasValue, inlineValue: value}, nil
	}

	// Rule 3: a bare "-" is positional (stdin convention).
	if token == "-" {
		return classifiedToken{kind: tokPositional}, nil
	}

	// Rule 4: "-x", "-xyz", "-x=value", or a negative number.
	if strings.HasPrefix(token, "-") && len(token) > 1 {
		firstChar, _ := utf8.DecodeRuneInString(token[1:])
		firstCharIsDeclaredShort := false
		if spec != nil {
			_, firstCharIsDeclaredShort = spec.optionByShort(firstChar)
		}

		// Option-precedence rule: a declared short option is always the
		// option, never a negative number (spec §4.4, Testable Property 10).
		runNegativeCheck := cfg.AllowNegativeNumbers && valueConsuming && !firstCharIsDeclaredShort
		if runNegativeCheck && pattern.matches(token) {
			return classifiedToken{kind: tokNegativeNumber}, nil
		}

		return classifiedToken{kind: tokShortCluster, shortChars: token[1:]}, nil
	}

	// Rule 5: a declared subcommand keyword, only where eligible.
	if subcommandEligible && spec != nil {
		if _, ok := spec.subcommand(token); ok {
			return classifiedToken{kind: tokSubcommandKeyword, subcommand: token}, nil
		}
	}

	// Rule 6: everything else is positional.
	return classifiedToken{kind: tokPositional}, nil
}

// splitOnFirstEquals splits s on its first '=', reporting whether one was
// found. The value may itself contain further '=' characters (spec §6).
func splitOnFirstEquals(s string) (name, value string, hasValue bool) {
	if idx := strings.IndexByte(s, '='); idx != -1 {
		return s[:idx], s[idx+1:], true
	}
	return s, "", false
}
