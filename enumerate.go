package ddc

import "fmt"

// Property keys read off registry nodes during enumeration.
const (
	PropEDIDUUID            = "EDID UUID"
	PropManufacturerID      = "ManufacturerID"
	PropProductName         = "ProductName"
	PropSerialNumber        = "SerialNumber"
	PropAlphanumericSerial  = "AlphanumericSerialNumber"
	PropLocation            = "Location"
	PropTransportUpstream   = "TransportUpstream"
	PropTransportDownstream = "TransportDownstream"
)

// LocationExternal marks a proxy node wired to an external connector.
// Internal panels carry a different location and have no DDC channel.
const LocationExternal = "External"

// ListDisplays walks the device registry and returns a handle for every
// external display that has a communication channel, in location order.
//
// A registry that cannot be opened reports ErrEnumeration. A walk that dies
// mid-iteration returns the handles collected up to that point. The index
// counts every framebuffer node seen, so the returned list may skip indices
// held by internal panels.
func ListDisplays(reg Registry) ([]*Display, error) {
	var e enumerator
	if err := reg.Walk(e.visit); err != nil && len(e.displays) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrEnumeration, err)
	}
	return e.displays, nil
}

type enumerator struct {
	displays []*Display
	pending  *Display
	index    int
}

func (e *enumerator) visit(n Node) bool {
	switch n.Class() {
	case ClassFramebuffer:
		e.index++
		e.pending = &Display{
			Index:               e.index,
			EDIDUUID:            prop(n, PropEDIDUUID),
			ManufacturerID:      prop(n, PropManufacturerID),
			ProductName:         prop(n, PropProductName),
			SerialNumber:        prop(n, PropSerialNumber),
			AlphanumericSerial:  prop(n, PropAlphanumericSerial),
			RegistryPath:        n.Path(),
			TransportUpstream:   prop(n, PropTransportUpstream),
			TransportDownstream: prop(n, PropTransportDownstream),
			policy:              DefaultRetryPolicy,
			x:                   newExchanger(),
		}

	case ClassAVServiceProxy:
		d := e.pending
		e.pending = nil
		if d == nil {
			break
		}
		// Internal panels are filtered out entirely, never returned
		// with a nil channel.
		if loc := prop(n, PropLocation); loc == LocationExternal {
			d.Location = loc
			d.node = n
			e.displays = append(e.displays, d)
		}
	}
	return true
}

func prop(n Node, key string) string {
	v, _ := n.Property(key)
	return v
}
