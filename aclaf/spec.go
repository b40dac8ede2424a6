package aclaf

import "fmt"

// AccumulationMode is the sealed policy for collapsing multiple occurrences
// of the same option into one result value (spec §3).
type AccumulationMode int

const (
	// AccumulateCollect appends every occurrence's values into one ordered
	// sequence.
	AccumulateCollect AccumulationMode = iota
	// AccumulateCount counts occurrences; intended for is_flag options.
	AccumulateCount
	// AccumulateFirstWins keeps the first occurrence's value.
	AccumulateFirstWins
	// AccumulateLastWins keeps the last occurrence's value.
	AccumulateLastWins
	// AccumulateError rejects a second occurrence outright.
	AccumulateError
)

func (m AccumulationMode) String() string {
	switch m { // exhaustive over AccumulationMode
	case AccumulateCollect:
		return "collect"
	case AccumulateCount:
		return "count"
	case AccumulateFirstWins:
		return "first_wins"
	case AccumulateLastWins:
		return "last_wins"
	case AccumulateError:
		return "error"
	default:
		return "unknown"
	}
}

// OptionSpec is an immutable description of one declared option. Build one
// with NewOptionSpec or NewFlagSpec; both validate eagerly.
type OptionSpec struct {
	long        string
	short       rune // 0 when absent
	hasShort    bool
	arity       Arity
	isFlag      bool
	mode        AccumulationMode
	description string
}

// NewOptionSpec constructs a value-taking OptionSpec. short is ignored
// when hasShort is false. Construction fails with InvalidSpec when long
// is empty. The result is never a flag - use NewFlagSpec for flags.
func NewOptionSpec(long string, short rune, hasShort bool, arity Arity, mode AccumulationMode, description string) (*OptionSpec, error) {
	if long == "" {
		return nil, specErr("option long name must not be empty")
	}
	return &OptionSpec{
		long:        long,
		short:       short,
		hasShort:    hasShort,
		arity:       arity,
		mode:        mode,
		description: description,
	}, nil
}

// NewFlagSpec constructs a zero-arity, is_flag OptionSpec with the given
// accumulation mode; there is no default mode. AccumulateCount is the
// usual choice for flags (spec §3).
func NewFlagSpec(long string, short rune, hasShort bool, mode AccumulationMode, description string) (*OptionSpec, error) {
	if long == "" {
		return nil, specErr("flag long name must not be empty")
	}
	return &OptionSpec{
		long:        long,
		short:       short,
		hasShort:    hasShort,
		arity:       ArityZero,
		isFlag:      true,
		mode:        mode,
		description: description,
	}, nil
}

func (o *OptionSpec) Long() string           { return o.long }
func (o *OptionSpec) Short() (rune, bool)    { return o.short, o.hasShort }
func (o *OptionSpec) Arity() Arity           { return o.arity }
func (o *OptionSpec) IsFlag() bool           { return o.isFlag }
func (o *OptionSpec) Mode() AccumulationMode { return o.mode }
func (o *OptionSpec) Description() string    { return o.description }

// PositionalSpec is an immutable description of one declared positional
// slot.
type PositionalSpec struct {
	name        string
	arity       Arity
	description string
}

// NewPositionalSpec constructs a PositionalSpec.
func NewPositionalSpec(name string, arity Arity, description string) (*PositionalSpec, error) {
	if name == "" {
		return nil, specErr("positional name must not be empty")
	}
	return &PositionalSpec{name: name, arity: arity, description: description}, nil
}

func (p *PositionalSpec) Name() string        { return p.name }
func (p *PositionalSpec) Arity() Arity        { return p.arity }
func (p *PositionalSpec) Description() string { return p.description }

func (p *PositionalSpec) variadic() bool {
	max, hasMax := p.arity.Max()
	return !hasMax || max > 1
}

// CommandSpec is an immutable tree of options, positionals, and
// subcommands. Construct with NewCommandSpec, which validates the
// invariants in spec §3/§4.2: no name/short collision, no subcommand name
// colliding with an option's long name, distinct subcommand names, and at
// most one multi-or-unbounded positional, which must be last.
type CommandSpec struct {
	name        string
	options     []*OptionSpec
	positionals []*PositionalSpec
	subcommands map[string]*CommandSpec

	optionsByLong  map[string]*OptionSpec
	optionsByShort map[rune]*OptionSpec
}

// NewCommandSpec validates and constructs a CommandSpec. subcommands maps
// subcommand keyword to its child CommandSpec.
func NewCommandSpec(name string, options []*OptionSpec, positionals []*PositionalSpec, subcommands map[string]*CommandSpec) (*CommandSpec, error) {
	byLong := make(map[string]*OptionSpec, len(options))
	byShort := make(map[rune]*OptionSpec, len(options))

	for _, opt := range options {
		if _, dup := byLong[opt.long]; dup {
			return nil, specErr(fmt.Sprintf("duplicate option name %q in command %q", opt.long, name))
		}
		byLong[opt.long] = opt
		if opt.hasShort {
			if _, dup := byShort[opt.short]; dup {
				return nil, specErr(fmt.Sprintf("duplicate short option %q in command %q", string(opt.short), name))
			}
			byShort[opt.short] = opt
		}
		if opt.isFlag && !opt.arity.Equal(ArityZero) {
			return nil, specErr(fmt.Sprintf("option %q is a flag but has non-zero arity", opt.long))
		}
	}

	seenPositional := make(map[string]bool, len(positionals))
	for i, pos := range positionals {
		if seenPositional[pos.name] {
			return nil, specErr(fmt.Sprintf("duplicate positional name %q in command %q", pos.name, name))
		}
		seenPositional[pos.name] = true
		if pos.variadic() && i != len(positionals)-1 {
			return nil, specErr(fmt.Sprintf(
				"positional %q accepts more than one value but is not the last positional: "+
					"subsequent positionals would be unreachable", pos.name))
		}
	}

	for sub := range subcommands {
		if _, collides := byLong[sub]; collides {
			return nil, specErr(fmt.Sprintf("subcommand %q collides with option long name in command %q", sub, name))
		}
	}

	return &CommandSpec{
		name:           name,
		options:        options,
		positionals:    positionals,
		subcommands:    subcommands,
		optionsByLong:  byLong,
		optionsByShort: byShort,
	}, nil
}

func (c *CommandSpec) Name() string                         { return c.name }
func (c *CommandSpec) Options() []*OptionSpec                { return c.options }
func (c *CommandSpec) Positionals() []*PositionalSpec        { return c.positionals }
func (c *CommandSpec) Subcommands() map[string]*CommandSpec { return c.subcommands }

func (c *CommandSpec) optionByLong(name string) (*OptionSpec, bool) {
	opt, ok := c.optionsByLong[name]
	return opt, ok
}

func (c *CommandSpec) optionByShort(r rune) (*OptionSpec, bool) {
	opt, ok := c.optionsByShort[r]
	return opt, ok
}

func (c *CommandSpec) subcommand(name string) (*CommandSpec, bool) {
	if c.subcommands == nil {
		return nil, false
	}
	cmd, ok := c.subcommands[name]
	return cmd, ok
}

func specErr(message string) *ParseError {
	return &ParseError{Type: ErrorTypeInvalidSpec, Message: message, Position: -1}
}
