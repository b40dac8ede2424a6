package aclaf

// Parser is an immutable, reentrant argument parser bound to one resolved
// command spec and configuration (spec §3/§5: "no process-wide state",
// safe for concurrent use, deterministic across repeated calls on the
// same input).
type Parser struct {
	spec    *CommandSpec
	config  ParserConfig
	pattern *compiledPattern
}

// NewParser validates spec and config and returns a ready-to-use Parser.
// It rejects a nil spec and, when negative numbers are enabled, validates
// the negative-number pattern, once. Arity bounds and duplicate names are
// already validated by NewArity and NewCommandSpec, so neither NewParser
// nor Parse revalidates static structure.
func NewParser(spec *CommandSpec, config ParserConfig) (*Parser, error) {
	if spec == nil {
		return nil, specErr("command spec must not be nil")
	}

	// Spec §4.3: the pattern validator runs only when the feature is
	// enabled; when disabled, an invalid custom pattern is simply unused,
	// not a construction error.
	var pattern *compiledPattern
	if config.AllowNegativeNumbers {
		p, err := validateNegativeNumberPattern(config.NegativeNumberPattern)
		if err != nil {
			return nil, err
		}
		pattern = p
	}

	return &Parser{spec: spec, config: config, pattern: pattern}, nil
}

// Parse classifies and dispatches tokens against the parser's command
// spec, per spec §4. Two calls to Parse on the same Parser with the same
// tokens always produce Equal results (spec §5, Testable Properties 1-3).
func (p *Parser) Parse(tokens []string) (*ParseResult, error) {
	levels := []*levelState{newLevelState(p.spec, []string{p.spec.Name()})}

	idx := 0
	for idx < len(tokens) {
		cur := levels[len(levels)-1]

		res, err := cur.dispatch(p.config, p.pattern, tokens, idx)
		if err != nil {
			err.CommandPath = cur.commandPath
			return nil, err
		}

		switch res.kind {
		case stepAdvance:
			idx++
		case stepReprocess:
			// pending option finalized mid-token; re-dispatch tokens[idx]
			// against the same level now that it has no pending option.
		case stepDescend:
			idx++
			levels = append(levels, newLevelState(res.childSpec, append(append([]string{}, cur.commandPath...), res.childName)))
		}
	}

	return finalizeLevels(levels, len(tokens))
}

// finalizeLevels runs end-of-stream finalization on the deepest level and
// links the chain of results back up through Subcommand, innermost first.
func finalizeLevels(levels []*levelState, endPosition int) (*ParseResult, error) {
	var child *ParseResult

	for i := len(levels) - 1; i >= 0; i-- {
		if i != len(levels)-1 {
			// Levels that terminated by descending into a subcommand are
			// not subject to end-of-stream positional/pending checks:
			// that termination already happened at the point of descent
			// (dispatch.go never leaves a pending option open across a
			// subcommand keyword; see DESIGN.md's open-question log).
			result, err := levels[i].finalizeWithoutPositionalCheck()
			if err != nil {
				err.CommandPath = levels[i].commandPath
				return nil, err
			}
			result.Subcommand = child
			child = result
			continue
		}

		result, err := levels[i].finalize(endPosition)
		if err != nil {
			err.CommandPath = levels[i].commandPath
			return nil, err
		}
		child = result
	}

	return child, nil
}
