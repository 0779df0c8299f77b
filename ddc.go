// Package ddc controls external displays over the VESA Display Data
// Channel Command Interface (DDC/CI) carried on the display cable's I²C
// channel.
//
// Displays are found with ListDisplays and operated on through typed
// feature commands from the vcp package. All operations are blocking and
// single-threaded: simultaneous activity on one physical channel is unsafe
// and is never attempted; callers batch across displays sequentially.
package ddc

import (
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/BeatGlow/ddc/caps"
	"github.com/BeatGlow/ddc/vcp"
)

// Display identifies one physical display bound to one communication
// channel. The channel is opened at the start of each operation and
// released on every exit path; no persistent connection is held.
//
// Index is stable within one enumeration snapshot only.
type Display struct {
	Index               int
	EDIDUUID            string
	ManufacturerID      string
	ProductName         string
	SerialNumber        string
	AlphanumericSerial  string
	Location            string
	RegistryPath        string
	TransportUpstream   string
	TransportDownstream string

	node   Node
	policy RetryPolicy
	x      exchanger
}

func (d *Display) String() string {
	return fmt.Sprintf("display #%d %s (serial %s)", d.Index, d.ProductName, d.SerialNumber)
}

// SetRetryPolicy overrides the transport timing for this handle.
func (d *Display) SetRetryPolicy(policy RetryPolicy) {
	d.policy = policy
}

// SetLogger attaches a logger for per-attempt transport diagnostics.
func (d *Display) SetLogger(log zerolog.Logger) {
	d.x.log = log
}

// SetClock replaces the clock used for transport sleeps.
func (d *Display) SetClock(clock clockwork.Clock) {
	d.x.clock = clock
}

// open acquires the channel for the duration of one operation.
func (d *Display) open() (Channel, error) {
	ch, err := d.node.OpenChannel()
	if err != nil {
		return nil, fmt.Errorf("%w: open channel for %s: %v", ErrCommunication, d.ProductName, err)
	}
	return ch, nil
}

// GetFeature reads the current and maximum value of a feature. The maximum
// is 0 for discrete features.
func (d *Display) GetFeature(com *vcp.Command) (vcp.FeatureReturn, error) {
	if !com.Readable {
		return vcp.FeatureReturn{}, fmt.Errorf("%w: %s is not readable", ErrUnsupported, com.Name)
	}

	ch, err := d.open()
	if err != nil {
		return vcp.FeatureReturn{}, err
	}
	defer ch.Close()

	return d.getFeature(ch, com)
}

func (d *Display) getFeature(ch Channel, com *vcp.Command) (vcp.FeatureReturn, error) {
	reply, err := d.x.exchange(ch, []byte{com.Code}, true, d.policy)
	if err != nil {
		return vcp.FeatureReturn{}, fmt.Errorf("get %s: %w", com.Name, err)
	}

	current, max := decodeFeature(reply)
	if com.Discrete() {
		max = 0
	}
	return vcp.FeatureReturn{Current: current, Max: max}, nil
}

// SetFeature writes a feature value. Continuous features are validated
// against the device-reported maximum, discrete ones against the declared
// value set; a value that fails validation never reaches the bus. The write
// is unacknowledged: the protocol cannot confirm that the monitor applied
// it.
func (d *Display) SetFeature(com *vcp.Command, value uint16) error {
	if !com.Writable {
		return fmt.Errorf("%w: %s is not writable", ErrUnsupported, com.Name)
	}

	ch, err := d.open()
	if err != nil {
		return err
	}
	defer ch.Close()

	return d.setFeature(ch, com, value)
}

func (d *Display) setFeature(ch Channel, com *vcp.Command, value uint16) error {
	switch {
	case com.Discrete():
		if !com.ValidValue(value) {
			return fmt.Errorf("%w: %d is not a declared %s value", ErrValueOutOfRange, value, com.Name)
		}
	case com.Readable:
		ret, err := d.getFeature(ch, com)
		if err != nil {
			return fmt.Errorf("set %s: %w", com.Name, err)
		}
		if value > ret.Max {
			return fmt.Errorf("%w: %d exceeds maximum %d for %s", ErrValueOutOfRange, value, ret.Max, com.Name)
		}
	}

	payload := []byte{com.Code, byte(value >> 8), byte(value)}
	if _, err := d.x.exchange(ch, payload, false, d.policy); err != nil {
		return fmt.Errorf("set %s: %w", com.Name, err)
	}
	return nil
}

// ToggleFeature reads the current value and writes b if it equals a, else
// a. The read and the write are not atomic: an external change in between
// goes undetected, a limitation of the protocol's unacknowledged writes.
func (d *Display) ToggleFeature(com *vcp.Command, a, b uint16) (vcp.Toggle, error) {
	if !com.Readable {
		return vcp.Toggle{}, fmt.Errorf("%w: %s is not readable", ErrUnsupported, com.Name)
	}
	if !com.Writable {
		return vcp.Toggle{}, fmt.Errorf("%w: %s is not writable", ErrUnsupported, com.Name)
	}

	ch, err := d.open()
	if err != nil {
		return vcp.Toggle{}, err
	}
	defer ch.Close()

	ret, err := d.getFeature(ch, com)
	if err != nil {
		return vcp.Toggle{}, err
	}

	next := a
	if ret.Current == a {
		next = b
	}
	if err := d.setFeature(ch, com, next); err != nil {
		return vcp.Toggle{}, err
	}
	return vcp.Toggle{Old: ret.Current, New: next}, nil
}

// RawCapabilities fetches the display's capability string, assembling the
// chunked reply fragments into one logical string.
func (d *Display) RawCapabilities() (string, error) {
	ch, err := d.open()
	if err != nil {
		return "", err
	}
	defer ch.Close()

	var (
		raw    []byte
		offset int
	)
	for {
		payload := []byte{capRequest, byte(offset >> 8), byte(offset)}
		reply, err := d.x.exchange(ch, payload, true, d.policy)
		if err != nil {
			return "", fmt.Errorf("capabilities at offset %d: %w", offset, err)
		}

		frag, echoed, err := decodeCapsFragment(reply)
		if err != nil {
			return "", err
		}
		if echoed != offset {
			return "", fmt.Errorf("%w: capability fragment for offset %d, want %d", ErrCommunication, echoed, offset)
		}
		if len(frag) == 0 {
			break
		}
		raw = append(raw, frag...)
		offset += len(frag)
	}
	return string(raw), nil
}

// Capabilities fetches and parses the capability string.
func (d *Display) Capabilities() (*caps.Document, error) {
	raw, err := d.RawCapabilities()
	if err != nil {
		return nil, err
	}
	doc, err := caps.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse capabilities: %w", err)
	}
	return doc, nil
}
