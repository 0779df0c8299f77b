package ddc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BeatGlow/ddc/vcp"
)

const testCaps = "(prot(monitor)type(lcd)model(P2715Q)cmds(1 2 3)vcp(16 18 96(27 15 17) 214(1 2 4)))"

// fakeMonitor emulates a DDC/CI display behind a Channel: it validates
// incoming packet checksums, keeps per-code feature state and serves the
// capability string in fragments.
type fakeMonitor struct {
	features map[byte]*featureState
	caps     string

	pending   []byte
	setWrites int
	opens     int
	closes    int
}

type featureState struct {
	current uint16
	max     uint16
}

func newFakeMonitor() *fakeMonitor {
	return &fakeMonitor{
		features: map[byte]*featureState{
			vcp.CodeLuminance:   {current: 75, max: 100},
			vcp.CodeContrast:    {current: 50, max: 100},
			vcp.CodeInputSource: {current: 27, max: 19},
			vcp.CodePowerMode:   {current: 1, max: 5},
			vcp.CodeOrientation: {current: 2, max: 4},
		},
		caps: testCaps,
	}
}

type monitorChannel struct {
	m *fakeMonitor
}

func (c monitorChannel) Write(addr, dataAddr byte, p []byte) error {
	m := c.m
	if addr != DisplayAddress || dataAddr != DataAddress {
		return errors.New("wrong address")
	}
	if len(p) < 3 || int(p[1])+3 != len(p) {
		return errors.New("malformed packet")
	}

	seed := byte(DisplayAddress << 1)
	if p[1] > 1 {
		seed ^= DataAddress
	}
	if fold(seed, p[:len(p)-1]) != p[len(p)-1] {
		return errors.New("bad packet checksum")
	}

	payload := p[2 : 2+p[1]]
	switch {
	case len(payload) == 1 || payload[0] == capRequest:
		m.pending = append([]byte(nil), payload...)
	case len(payload) == 3:
		st := m.features[payload[0]]
		if st == nil {
			// Monitors don't complain about unknown codes.
			return nil
		}
		st.current = uint16(payload[1])<<8 | uint16(payload[2])
		m.setWrites++
	}
	return nil
}

func (c monitorChannel) Read(addr, dataAddr byte, p []byte) error {
	m := c.m
	if len(m.pending) == 0 {
		return errors.New("nothing to read")
	}

	var reply []byte
	if m.pending[0] == capRequest {
		offset := int(m.pending[1])<<8 | int(m.pending[2])
		frag := []byte(m.caps)
		if offset > len(frag) {
			offset = len(frag)
		}
		frag = frag[offset:]
		if len(frag) > capsFragLen {
			frag = frag[:capsFragLen]
		}
		reply = mkCapsReply(offset, frag)
	} else {
		st := m.features[m.pending[0]]
		if st == nil {
			st = &featureState{} // garbage for unknown codes
		}
		reply = mkFeatureReply(m.pending[0], st.current, st.max)
	}
	copy(p, reply)
	return nil
}

func (c monitorChannel) Close() error {
	c.m.closes++
	return nil
}

type monitorNode struct {
	m *fakeMonitor
}

func (n monitorNode) Class() NodeClass { return ClassAVServiceProxy }
func (n monitorNode) Path() string     { return "IOService:/proxy" }

func (n monitorNode) Property(key string) (string, bool) {
	if key == PropLocation {
		return LocationExternal, true
	}
	return "", false
}

func (n monitorNode) OpenChannel() (Channel, error) {
	n.m.opens++
	return monitorChannel{n.m}, nil
}

func testDisplay(m *fakeMonitor) *Display {
	d := &Display{
		Index:       1,
		ProductName: "P2715Q",
		Location:    LocationExternal,
		node:        monitorNode{m},
		policy:      quickPolicy(),
		x:           newExchanger(),
	}
	return d
}

func command(t *testing.T, name string) *vcp.Command {
	t.Helper()
	c, ok := vcp.NewRegistry().CommandNamed(name)
	require.True(t, ok, "unknown command %s", name)
	return c
}

func TestGetFeature(t *testing.T) {
	d := testDisplay(newFakeMonitor())

	ret, err := d.GetFeature(command(t, "luminance"))
	require.NoError(t, err)
	assert.Equal(t, vcp.FeatureReturn{Current: 75, Max: 100}, ret)
}

func TestGetFeatureDiscreteMaxZero(t *testing.T) {
	d := testDisplay(newFakeMonitor())

	// The hardware reports the option count as maximum; that is
	// meaningless for discrete features and is normalized to 0.
	ret, err := d.GetFeature(command(t, "input_source"))
	require.NoError(t, err)
	assert.Equal(t, vcp.FeatureReturn{Current: 27, Max: 0}, ret)
}

func TestSetThenGet(t *testing.T) {
	m := newFakeMonitor()
	d := testDisplay(m)
	luminance := command(t, "luminance")

	require.NoError(t, d.SetFeature(luminance, 42))

	ret, err := d.GetFeature(luminance)
	require.NoError(t, err)
	assert.Equal(t, uint16(42), ret.Current)
}

func TestSetFeatureContinuousOutOfRange(t *testing.T) {
	m := newFakeMonitor()
	d := testDisplay(m)

	err := d.SetFeature(command(t, "luminance"), 200)
	require.ErrorIs(t, err, ErrValueOutOfRange)
	assert.Zero(t, m.setWrites, "no bus write may be issued for a rejected value")
	assert.Equal(t, uint16(75), m.features[vcp.CodeLuminance].current)
}

func TestSetFeatureDiscreteInvalid(t *testing.T) {
	m := newFakeMonitor()
	d := testDisplay(m)

	err := d.SetFeature(command(t, "input_source"), 99)
	require.ErrorIs(t, err, ErrValueOutOfRange)
	assert.Zero(t, m.setWrites)
}

func TestSetFeatureDiscrete(t *testing.T) {
	m := newFakeMonitor()
	d := testDisplay(m)

	require.NoError(t, d.SetFeature(command(t, "input_source"), 17))
	assert.Equal(t, uint16(17), m.features[vcp.CodeInputSource].current)
}

func TestFeatureGates(t *testing.T) {
	m := newFakeMonitor()
	d := testDisplay(m)

	_, err := d.GetFeature(command(t, "factory_reset"))
	assert.ErrorIs(t, err, ErrUnsupported)

	err = d.SetFeature(command(t, "image_orientation"), 1)
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = d.ToggleFeature(command(t, "factory_reset"), 0, 1)
	assert.ErrorIs(t, err, ErrUnsupported)

	assert.Zero(t, m.opens, "unsupported operations must not touch the channel")
}

func TestToggleFeatureOscillates(t *testing.T) {
	d := testDisplay(newFakeMonitor())
	input := command(t, "input_source")

	tog, err := d.ToggleFeature(input, 27, 17)
	require.NoError(t, err)
	assert.Equal(t, vcp.Toggle{Old: 27, New: 17}, tog)

	tog, err = d.ToggleFeature(input, 27, 17)
	require.NoError(t, err)
	assert.Equal(t, vcp.Toggle{Old: 17, New: 27}, tog)
}

func TestToggleFeatureFromThirdValue(t *testing.T) {
	m := newFakeMonitor()
	m.features[vcp.CodeInputSource].current = 15
	d := testDisplay(m)

	// Current matches neither value: the first value wins.
	tog, err := d.ToggleFeature(command(t, "input_source"), 27, 17)
	require.NoError(t, err)
	assert.Equal(t, vcp.Toggle{Old: 15, New: 27}, tog)
}

func TestChannelScopedPerOperation(t *testing.T) {
	m := newFakeMonitor()
	d := testDisplay(m)
	luminance := command(t, "luminance")

	_, err := d.GetFeature(luminance)
	require.NoError(t, err)
	require.NoError(t, d.SetFeature(luminance, 10))
	_, err = d.ToggleFeature(command(t, "input_source"), 27, 17)
	require.NoError(t, err)

	assert.Equal(t, 3, m.opens, "one acquire per operation")
	assert.Equal(t, m.opens, m.closes, "channel released on every exit path")
}

func TestChannelReleasedOnFailure(t *testing.T) {
	m := newFakeMonitor()
	d := testDisplay(m)

	err := d.SetFeature(command(t, "luminance"), 200)
	require.ErrorIs(t, err, ErrValueOutOfRange)
	assert.Equal(t, m.opens, m.closes)
}

func TestRawCapabilities(t *testing.T) {
	d := testDisplay(newFakeMonitor())

	raw, err := d.RawCapabilities()
	require.NoError(t, err)
	assert.Equal(t, testCaps, raw, "chunked fragments must assemble into the full string")
}

func TestCapabilities(t *testing.T) {
	d := testDisplay(newFakeMonitor())

	doc, err := d.Capabilities()
	require.NoError(t, err)
	assert.Equal(t, "lcd", doc.Type)
	assert.Equal(t, "P2715Q", doc.Model)

	group, ok := doc.Group("vcp")
	require.True(t, ok)
	require.Len(t, group.Entries, 4)
	assert.Equal(t, 96, group.Entries[2].Code)
	assert.Equal(t, []int{27, 15, 17}, group.Entries[2].Values)
}

func TestGetFeatureCommunicationError(t *testing.T) {
	m := newFakeMonitor()
	d := testDisplay(m)
	d.node = &fakeNode{
		class: ClassAVServiceProxy,
		ch:    &scriptChannel{}, // every read fails
	}

	_, err := d.GetFeature(command(t, "luminance"))
	assert.ErrorIs(t, err, ErrCommunication)
}
