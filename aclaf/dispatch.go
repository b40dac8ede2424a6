package aclaf

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/aclaf/aclaf/internal/fuzzy"
)

// occurrence is one observed appearance of an option on the input. values
// is empty (never nil) for bare flag occurrences.
type occurrence struct {
	values   []string
	position int // index of the option token that started this occurrence
}

// pendingOption is an option whose name has been consumed but whose
// values are still being collected from following tokens (spec
// glossary: "pending option").
type pendingOption struct {
	opt          *OptionSpec
	values       []string
	openPosition int
}

func (p *pendingOption) atMax() bool {
	max, hasMax := p.opt.Arity().Max()
	return hasMax && uint32(len(p.values)) >= max
}

func (p *pendingOption) minSatisfied() bool {
	return uint32(len(p.values)) >= p.opt.Arity().Min()
}

// levelState is the mutable dispatch state for one command level (spec
// §4.5's ParseState). A parse that descends into a subcommand pushes a
// new levelState rather than recursing through the Go call stack
// (SPEC_FULL.md supplemental feature #4).
type levelState struct {
	spec        *CommandSpec
	commandPath []string

	positionalCursor  int
	positionalBuffer  map[string][]string
	optionOccurrences map[string][]occurrence

	afterDelimiter    bool
	positionalStarted bool // disables subcommand recognition once true (spec §4.7)
	pending           *pendingOption
}

func newLevelState(spec *CommandSpec, commandPath []string) *levelState {
	return &levelState{
		spec:              spec,
		commandPath:       commandPath,
		positionalBuffer:  make(map[string][]string, len(spec.Positionals())),
		optionOccurrences: make(map[string][]occurrence, len(spec.Options())),
	}
}

// subcommandEligible implements spec §4.7: only before any positional has
// been consumed at this level and before the delimiter.
func (l *levelState) subcommandEligible() bool {
	return !l.positionalStarted && !l.afterDelimiter
}

// valueConsuming implements the glossary's "value-consuming context":
// a pending option not yet at its max, or a positional slot still able
// to accept input.
func (l *levelState) valueConsuming() bool {
	if l.pending != nil {
		return !l.pending.atMax()
	}
	if l.positionalCursor < len(l.spec.Positionals()) {
		pos := l.spec.Positionals()[l.positionalCursor]
		max, hasMax := pos.Arity().Max()
		consumed := uint32(len(l.positionalBuffer[pos.Name()]))
		return !hasMax || consumed < max
	}
	return false
}

func (l *levelState) currentPositional() (*PositionalSpec, bool) {
	if l.positionalCursor >= len(l.spec.Positionals()) {
		return nil, false
	}
	return l.spec.Positionals()[l.positionalCursor], true
}

// stepResult tells the driving loop in parser.go what happened.
type stepResultKind int

const (
	stepAdvance   stepResultKind = iota // token consumed, move to next index
	stepReprocess                       // pending finalized mid-token; re-dispatch the same token
	stepDescend                         // subcommand keyword consumed; push a child level
)

type stepResult struct {
	kind      stepResultKind
	childSpec *CommandSpec
	childName string
}

// dispatch processes one raw token against this level's state, per spec
// §4.5. tokens/idx are only used for error positions and subcommand
// keyword text; dispatch never looks beyond tokens[idx].
func (l *levelState) dispatch(cfg ParserConfig, pattern *compiledPattern, tokens []string, idx int) (stepResult, *ParseError) {
	token := tokens[idx]

	if l.pending != nil {
		return l.dispatchPending(cfg, pattern, token, idx)
	}
	return l.dispatchFresh(cfg, pattern, token, idx)
}

func (l *levelState) dispatchPending(cfg ParserConfig, pattern *compiledPattern, token string, idx int) (stepResult, *ParseError) {
	p := l.pending

	if p.atMax() {
		if err := l.finalizePending(idx); err != nil {
			return stepResult{}, err
		}
		return stepResult{kind: stepReprocess}, nil
	}

	cls, err := classifyToken(token, cfg, pattern, l.spec, false, true)
	if err != nil {
		return stepResult{}, withPosition(err, idx)
	}

	stop := false
	switch cls.kind {
	case tokDelimiter:
		stop = true
	case tokLongOption, tokShortCluster:
		stop = p.minSatisfied()
	default:
		stop = false
	}

	if stop {
		if err := l.finalizePending(idx); err != nil {
			return stepResult{}, err
		}
		return stepResult{kind: stepReprocess}, nil
	}

	p.values = append(p.values, token)
	if p.atMax() {
		if err := l.finalizePending(idx); err != nil {
			return stepResult{}, err
		}
	}
	return stepResult{kind: stepAdvance}, nil
}

func (l *levelState) finalizePending(idx int) *ParseError {
	p := l.pending
	if !p.opt.Arity().InRange(uint32(len(p.values))) {
		return &ParseError{
			Type:       ErrorTypeInsufficientOptionValues,
			Message:    "insufficient values for option " + optionDisplayName(p.opt.Long()),
			Position:   idx,
			OptionName: p.opt.Long(),
		}
	}
	l.optionOccurrences[p.opt.Long()] = append(l.optionOccurrences[p.opt.Long()],
		occurrence{values: p.values, position: p.openPosition})
	l.pending = nil
	return nil
}

func (l *levelState) dispatchFresh(cfg ParserConfig, pattern *compiledPattern, token string, idx int) (stepResult, *ParseError) {
	if l.afterDelimiter {
		return l.consumePositional(token, idx)
	}

	cls, err := classifyToken(token, cfg, pattern, l.spec, l.subcommandEligible(), l.valueConsuming())
	if err != nil {
		return stepResult{}, withPosition(err, idx)
	}

	switch cls.kind {
	case tokDelimiter:
		l.afterDelimiter = true
		return stepResult{kind: stepAdvance}, nil

	case tokLongOption:
		return l.dispatchLongOption(cls, idx)

	case tokShortCluster:
		return l.dispatchShortCluster(cfg, token, cls, idx)

	case tokSubcommandKeyword:
		child, _ := l.spec.subcommand(cls.subcommand)
		return stepResult{kind: stepDescend, childSpec: child, childName: cls.subcommand}, nil

	default: // tokNegativeNumber, tokPositional
		return l.consumePositional(token, idx)
	}
}

func (l *levelState) dispatchLongOption(cls classifiedToken, idx int) (stepResult, *ParseError) {
	opt, ok := l.spec.optionByLong(cls.longName)
	if !ok {
		return stepResult{}, errUnknownOption(cls.longName, idx, l.knownLongNames())
	}

	if cls.hasInline {
		max, hasMax := opt.Arity().Max()
		if hasMax && max == 0 {
			return stepResult{}, &ParseError{
				Type:       ErrorTypeFlagTakesNoValue,
				Message:    "flag takes no value: " + optionDisplayName(opt.Long()),
				Position:   idx,
				OptionName: opt.Long(),
			}
		}
		return l.recordInlineOccurrence(opt, cls.inlineValue, idx)
	}

	max, hasMax := opt.Arity().Max()
	if hasMax && max == 0 {
		l.optionOccurrences[opt.Long()] = append(l.optionOccurrences[opt.Long()], occurrence{values: []string{}, position: idx})
		return stepResult{kind: stepAdvance}, nil
	}

	l.pending = &pendingOption{opt: opt, values: []string{}, openPosition: idx}
	return stepResult{kind: stepAdvance}, nil
}

func (l *levelState) dispatchShortCluster(cfg ParserConfig, rawToken string, cls classifiedToken, idx int) (stepResult, *ParseError) {
	chars := []rune(cls.shortChars)

	for i := 0; i < len(chars); i++ {
		r := chars[i]
		opt, ok := l.spec.optionByShort(r)
		if !ok {
			if i == 0 && !cfg.AllowNegativeNumbers && unicode.IsDigit(r) {
				return stepResult{}, errAmbiguousNegativeNumber(rawToken, idx)
			}
			return stepResult{}, errUnknownOption(string(r), idx, l.knownLongNames())
		}

		remainder := string(chars[i+1:])
		max, hasMax := opt.Arity().Max()
		isFlag := hasMax && max == 0

		if isFlag {
			if strings.HasPrefix(remainder, "=") {
				return stepResult{}, &ParseError{
					Type:       ErrorTypeFlagTakesNoValue,
					Message:    "flag takes no value: " + optionDisplayName(opt.Long()),
					Position:   idx,
					OptionName: opt.Long(),
				}
			}
			l.optionOccurrences[opt.Long()] = append(l.optionOccurrences[opt.Long()], occurrence{values: []string{}, position: idx})
			continue
		}

		if remainder == "" {
			l.pending = &pendingOption{opt: opt, values: []string{}, openPosition: idx}
			return stepResult{kind: stepAdvance}, nil
		}

		// The remainder of the cluster from here on is the glued value
		// (spec §4.5/§9; SPEC_FULL.md supplemental feature #3). A leading
		// "=" is the explicit-separator form and is stripped; anything
		// after it, including further "=" characters, is part of the
		// value verbatim.
		value := strings.TrimPrefix(remainder, "=")
		return l.recordInlineOccurrence(opt, value, idx)
	}

	return stepResult{kind: stepAdvance}, nil
}

func (l *levelState) recordInlineOccurrence(opt *OptionSpec, value string, idx int) (stepResult, *ParseError) {
	if !opt.Arity().InRange(1) {
		return stepResult{}, &ParseError{
			Type:       ErrorTypeInsufficientOptionValues,
			Message:    "insufficient values for option " + optionDisplayName(opt.Long()),
			Position:   idx,
			OptionName: opt.Long(),
		}
	}
	l.optionOccurrences[opt.Long()] = append(l.optionOccurrences[opt.Long()], occurrence{values: []string{value}, position: idx})
	return stepResult{kind: stepAdvance}, nil
}

func (l *levelState) consumePositional(value string, idx int) (stepResult, *ParseError) {
	pos, ok := l.currentPositional()
	if !ok {
		err := &ParseError{
			Type:     ErrorTypeTooManyPositionals,
			Message:  "too many positional arguments",
			Position: idx,
		}
		// A token that missed subcommand recognition (spec §4.4 rule 5)
		// falls through to here when this level declares no positional to
		// absorb it; offer the same "did you mean" treatment as an unknown
		// option, grounded on the teacher's findBestCommandMatch path.
		if l.subcommandEligible() {
			if suggestion := fuzzy.FindBestCommand(value, l.knownSubcommandNames(), 2); suggestion != "" {
				err.Hint = fmt.Sprintf("did you mean the %q subcommand?", suggestion)
			}
		}
		return stepResult{}, err
	}

	l.positionalBuffer[pos.Name()] = append(l.positionalBuffer[pos.Name()], value)
	l.positionalStarted = true

	if max, hasMax := pos.Arity().Max(); hasMax && uint32(len(l.positionalBuffer[pos.Name()])) >= max {
		l.positionalCursor++
	}

	return stepResult{kind: stepAdvance}, nil
}

// finalize runs the end-of-stream checks from spec §4.5's Termination
// section and builds this level's accumulation (C6) into a ParseResult.
// endPosition is used as the error Position for end-of-stream failures
// (one past the last valid token index).
func (l *levelState) finalize(endPosition int) (*ParseResult, *ParseError) {
	if l.pending != nil {
		if err := l.finalizePending(endPosition); err != nil {
			return nil, err
		}
	}

	for _, pos := range l.spec.Positionals() {
		n := uint32(len(l.positionalBuffer[pos.Name()]))
		if n < pos.Arity().Min() {
			return nil, &ParseError{
				Type:           ErrorTypeMissingPositional,
				Message:        "missing required positional: " + pos.Name(),
				Position:       endPosition,
				PositionalName: pos.Name(),
			}
		}
	}

	options, err := accumulate(l.spec, l.optionOccurrences)
	if err != nil {
		return nil, err
	}

	positionals := make(map[string]PositionalValue, len(l.spec.Positionals()))
	for _, pos := range l.spec.Positionals() {
		positionals[pos.Name()] = PositionalValue{values: l.positionalBuffer[pos.Name()]}
	}

	name := ""
	if len(l.commandPath) > 0 {
		name = l.commandPath[len(l.commandPath)-1]
	}

	return &ParseResult{
		CommandName: name,
		Options:     options,
		Positionals: positionals,
	}, nil
}

// finalizeWithoutPositionalCheck builds a level's result without the
// end-of-stream MissingPositional check - used for a level that
// terminated because a subcommand keyword was recognized rather than
// because the token stream ran out (spec §4.7: a declared positional at
// a level that dispatches to a subcommand is simply never reached).
func (l *levelState) finalizeWithoutPositionalCheck() (*ParseResult, *ParseError) {
	options, err := accumulate(l.spec, l.optionOccurrences)
	if err != nil {
		return nil, err
	}

	positionals := make(map[string]PositionalValue, len(l.spec.Positionals()))
	for _, pos := range l.spec.Positionals() {
		positionals[pos.Name()] = PositionalValue{values: l.positionalBuffer[pos.Name()]}
	}

	name := ""
	if len(l.commandPath) > 0 {
		name = l.commandPath[len(l.commandPath)-1]
	}

	return &ParseResult{
		CommandName: name,
		Options:     options,
		Positionals: positionals,
	}, nil
}

func (l *levelState) knownLongNames() []string {
	names := make([]string, 0, len(l.spec.Options()))
	for _, opt := range l.spec.Options() {
		names = append(names, opt.Long())
	}
	return names
}

func (l *levelState) knownSubcommandNames() []string {
	names := make([]string, 0, len(l.spec.Subcommands()))
	for name := range l.spec.Subcommands() {
		names = append(names, name)
	}
	return names
}

func withPosition(err *ParseError, idx int) *ParseError {
	if err.Position == -1 {
		err.Position = idx
	}
	return err
}

// accumulate is the accumulation engine (C6): a total switch over
// AccumulationMode collapsing each option's raw occurrences into its
// final OptionValue. Options never observed get the unset sentinel.
func accumulate(spec *CommandSpec, occurrences map[string][]occurrence) (map[string]OptionValue, *ParseError) {
	result := make(map[string]OptionValue, len(spec.Options()))

	for _, opt := range spec.Options() {
		occs := occurrences[opt.Long()]
		if len(occs) == 0 {
			result[opt.Long()] = OptionValue{present: false, mode: opt.Mode()}
			continue
		}

		switch opt.Mode() { // exhaustive over AccumulationMode
		case AccumulateCollect:
			values := make([]string, 0, len(occs))
			for _, occ := range occs {
				values = append(values, occ.values...)
			}
			result[opt.Long()] = OptionValue{present: true, mode: AccumulateCollect, values: values, count: uint64(len(occs))}

		case AccumulateCount:
			result[opt.Long()] = OptionValue{present: true, mode: AccumulateCount, count: uint64(len(occs))}

		case AccumulateFirstWins:
			result[opt.Long()] = OptionValue{present: true, mode: AccumulateFirstWins, values: cloneStrings(occs[0].values), count: uint64(len(occs))}

		case AccumulateLastWins:
			last := occs[len(occs)-1]
			result[opt.Long()] = OptionValue{present: true, mode: AccumulateLastWins, values: cloneStrings(last.values), count: uint64(len(occs))}

		case AccumulateError:
			if len(occs) > 1 {
				return nil, &ParseError{
					Type:       ErrorTypeOptionCannotBeSpecifiedMultipleTimes,
					Message:    "option cannot be specified multiple times: " + optionDisplayName(opt.Long()),
					Position:   occs[1].position,
					OptionName: opt.Long(),
				}
			}
			result[opt.Long()] = OptionValue{present: true, mode: AccumulateError, values: cloneStrings(occs[0].values), count: 1}
		}
	}

	return result, nil
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
