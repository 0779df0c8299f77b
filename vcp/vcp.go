// Package vcp describes the Virtual Control Panel features a DDC/CI
// display exposes as numbered feature codes.
package vcp

import "sort"

// Kind classifies how a feature's values are validated. Validation is
// data-driven: adding a feature is a table entry, not a new branch.
type Kind uint8

const (
	// Integer is a continuous feature with plain numeric values, bounded
	// by the device-reported maximum when the feature is readable.
	Integer Kind = iota

	// IntegerAliased is a continuous feature that also carries named
	// values.
	IntegerAliased

	// Enumerated is a discrete feature whose valid values are exactly its
	// named parameters.
	Enumerated
)

func (k Kind) String() string {
	switch k {
	case IntegerAliased:
		return "integer-aliased"
	case Enumerated:
		return "enumerated"
	default:
		return "integer"
	}
}

// Feature codes of the built-in commands.
const (
	CodeFactoryReset = 4
	CodeLuminance    = 16
	CodeContrast     = 18
	CodeColorPreset  = 20
	CodeInputSource  = 96
	CodeOrientation  = 170
	CodePowerMode    = 214
)

// Command is an immutable descriptor of one VCP feature code.
type Command struct {
	Code        byte
	Name        string
	Description string
	Kind        Kind
	Readable    bool
	Writable    bool

	// Params maps parameter names to their codes. Populated only for
	// features with named states.
	Params map[string]uint16
}

// Discrete reports whether the valid values form a closed enumerated set.
func (c *Command) Discrete() bool {
	return c.Kind == Enumerated
}

// ValidValue reports whether value is in the command's enumerated set.
// Non-discrete commands accept any value here; their bound is the
// device-reported maximum.
func (c *Command) ValidValue(value uint16) bool {
	if !c.Discrete() {
		return true
	}
	for _, code := range c.Params {
		if code == value {
			return true
		}
	}
	return false
}

// ParamName returns the name declared for a parameter code.
func (c *Command) ParamName(value uint16) (string, bool) {
	for name, code := range c.Params {
		if code == value {
			return name, true
		}
	}
	return "", false
}

// ParamNames returns the declared parameter names in sorted order.
func (c *Command) ParamNames() []string {
	names := make([]string, 0, len(c.Params))
	for name := range c.Params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FeatureReturn is the result of a feature read. Max is 0 for discrete
// features, whose hardware maximum is the option count and carries no
// useful information.
type FeatureReturn struct {
	Current uint16
	Max     uint16
}

// Toggle records the outcome of a toggle operation.
type Toggle struct {
	Old uint16
	New uint16
}

// Registry is an immutable table of Commands with O(1) lookup by code. It
// is the single source of truth for read/write-ability and the
// discrete/continuous classification of each feature.
type Registry struct {
	byCode map[byte]*Command
	byName map[string]*Command
}

// NewRegistry builds a registry holding the built-in command table.
func NewRegistry() *Registry {
	return newRegistry(builtins())
}

func newRegistry(cmds []Command) *Registry {
	r := &Registry{
		byCode: make(map[byte]*Command, len(cmds)),
		byName: make(map[string]*Command, len(cmds)),
	}
	for i := range cmds {
		com := &cmds[i]
		r.byCode[com.Code] = com
		r.byName[com.Name] = com
	}
	return r
}

// With returns a new registry extended with cmds. Existing codes are
// replaced; the receiver is unchanged. This is the extension point for
// vendor-specific codes.
func (r *Registry) With(cmds ...Command) *Registry {
	merged := make([]Command, 0, len(r.byCode)+len(cmds))
	for _, com := range r.Commands() {
		merged = append(merged, *com)
	}
	merged = append(merged, cmds...)
	return newRegistry(merged)
}

// Command returns the descriptor for a feature code.
func (r *Registry) Command(code byte) (*Command, bool) {
	com, ok := r.byCode[code]
	return com, ok
}

// CommandNamed returns the descriptor with the given name.
func (r *Registry) CommandNamed(name string) (*Command, bool) {
	com, ok := r.byName[name]
	return com, ok
}

// Commands returns all descriptors ordered by code.
func (r *Registry) Commands() []*Command {
	cmds := make([]*Command, 0, len(r.byCode))
	for _, com := range r.byCode {
		cmds = append(cmds, com)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Code < cmds[j].Code })
	return cmds
}
