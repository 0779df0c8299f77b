package vcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLookup(t *testing.T) {
	reg := NewRegistry()

	com, ok := reg.Command(CodeLuminance)
	require.True(t, ok)
	assert.Equal(t, "luminance", com.Name)
	assert.True(t, com.Readable)
	assert.True(t, com.Writable)
	assert.False(t, com.Discrete())

	com, ok = reg.CommandNamed("input_source")
	require.True(t, ok)
	assert.EqualValues(t, CodeInputSource, com.Code)
	assert.True(t, com.Discrete())

	_, ok = reg.Command(0xe0)
	assert.False(t, ok)
	_, ok = reg.CommandNamed("bogus")
	assert.False(t, ok)
}

func TestRegistryCommandsOrdered(t *testing.T) {
	cmds := NewRegistry().Commands()
	require.NotEmpty(t, cmds)
	for i := 1; i < len(cmds); i++ {
		assert.Less(t, cmds[i-1].Code, cmds[i].Code)
	}
}

func TestRegistryWith(t *testing.T) {
	reg := NewRegistry()
	ext := reg.With(Command{
		Code:     0xe0,
		Name:     "osd_language",
		Kind:     Enumerated,
		Readable: true,
		Writable: true,
		Params:   map[string]uint16{"english": 2},
	})

	com, ok := ext.Command(0xe0)
	require.True(t, ok)
	assert.Equal(t, "osd_language", com.Name)

	// The original registry is unchanged.
	_, ok = reg.Command(0xe0)
	assert.False(t, ok)

	// Existing codes can be replaced.
	ext = ext.With(Command{Code: CodeLuminance, Name: "brightness", Kind: Integer, Readable: true})
	com, ok = ext.Command(CodeLuminance)
	require.True(t, ok)
	assert.Equal(t, "brightness", com.Name)
}

func TestCommandGates(t *testing.T) {
	reg := NewRegistry()

	reset, ok := reg.CommandNamed("factory_reset")
	require.True(t, ok)
	assert.False(t, reset.Readable)
	assert.True(t, reset.Writable)

	orientation, ok := reg.CommandNamed("image_orientation")
	require.True(t, ok)
	assert.True(t, orientation.Readable)
	assert.False(t, orientation.Writable)
}

func TestValidValue(t *testing.T) {
	reg := NewRegistry()

	input, _ := reg.CommandNamed("input_source")
	assert.True(t, input.ValidValue(27))
	assert.True(t, input.ValidValue(17))
	assert.False(t, input.ValidValue(99))

	// Continuous features are bounded by the device maximum, not the
	// table.
	luminance, _ := reg.CommandNamed("luminance")
	assert.True(t, luminance.ValidValue(65535))
}

func TestParamNames(t *testing.T) {
	reg := NewRegistry()
	power, _ := reg.CommandNamed("power_mode")

	name, ok := power.ParamName(1)
	require.True(t, ok)
	assert.Equal(t, "on", name)

	_, ok = power.ParamName(42)
	assert.False(t, ok)

	names := power.ParamNames()
	assert.Equal(t, []string{"off_hard", "off_soft", "on", "standby", "suspend"}, names)
}
