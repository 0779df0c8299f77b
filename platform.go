package ddc

// NodeClass classifies a device-registry node.
type NodeClass uint8

// Node classes matched during enumeration.
const (
	ClassOther NodeClass = iota

	// ClassFramebuffer identifies a physical display: product name,
	// serial, transport description.
	ClassFramebuffer

	// ClassAVServiceProxy supplies the communication channel for the
	// preceding framebuffer node.
	ClassAVServiceProxy
)

func (c NodeClass) String() string {
	switch c {
	case ClassFramebuffer:
		return "framebuffer"
	case ClassAVServiceProxy:
		return "av-service-proxy"
	default:
		return "other"
	}
}

// Registry is the host's display-device tree. Implementations live outside
// the core; conn provides one over the system I²C buses.
type Registry interface {
	// Walk calls fn for every node in depth-first order, stopping early
	// when fn returns false. An error means the tree could not be opened
	// or died mid-iteration.
	Walk(fn func(Node) bool) error
}

// Node is one entry in the device registry.
type Node interface {
	// Class reports the node class.
	Class() NodeClass

	// Path is the node's location in the registry plane.
	Path() string

	// Property returns a node property by key.
	Property(key string) (string, bool)

	// OpenChannel opens the communication channel of an AV-service-proxy
	// node. It fails for other classes.
	OpenChannel() (Channel, error)
}

// Channel is a raw byte channel to one display. Channels are opened per
// operation and closed when the operation returns; they are never pooled.
type Channel interface {
	// Write sends p to the device at addr using the given data address.
	Write(addr, dataAddr byte, p []byte) error

	// Read fills p with bytes from the device at addr.
	Read(addr, dataAddr byte, p []byte) error

	// Close releases the channel.
	Close() error
}
