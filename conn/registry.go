package conn

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/i2c/i2creg"

	"github.com/BeatGlow/ddc"
)

// SystemRegistry presents the host's I²C adapters as a display-service
// tree: one framebuffer node followed by one service-proxy node per
// adapter. On hosts where display connectors expose dedicated DDC adapters
// this makes every adapter an external display channel.
type SystemRegistry struct{}

// Walk implements ddc.Registry.
func (SystemRegistry) Walk(fn func(ddc.Node) bool) error {
	refs := i2creg.All()
	if len(refs) == 0 {
		return errors.New("conn: no I²C buses registered")
	}
	for _, ref := range refs {
		if !fn(&busNode{class: ddc.ClassFramebuffer, ref: ref}) {
			return nil
		}
		if !fn(&busNode{class: ddc.ClassAVServiceProxy, ref: ref}) {
			return nil
		}
	}
	return nil
}

type busNode struct {
	class ddc.NodeClass
	ref   *i2creg.Ref
}

func (n *busNode) Class() ddc.NodeClass {
	return n.class
}

func (n *busNode) Path() string {
	return "i2c/" + n.ref.Name
}

func (n *busNode) Property(key string) (string, bool) {
	switch key {
	case ddc.PropProductName:
		return n.ref.Name, true
	case ddc.PropLocation:
		if n.class == ddc.ClassAVServiceProxy {
			return ddc.LocationExternal, true
		}
	}
	return "", false
}

func (n *busNode) OpenChannel() (ddc.Channel, error) {
	if n.class != ddc.ClassAVServiceProxy {
		return nil, fmt.Errorf("conn: node %s has no channel", n.Path())
	}
	bus, err := n.ref.Open()
	if err != nil {
		return nil, err
	}
	return &I2C{bus: bus}, nil
}
