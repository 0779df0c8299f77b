// Package conn implements DDC/CI channels and a display registry over the
// host's I²C buses.
package conn

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
)

// I2C is a DDC/CI channel over a periph.io I²C bus.
type I2C struct {
	bus i2c.BusCloser
}

// OpenI2C opens the named I²C bus, or the first available bus if name is
// empty.
func OpenI2C(name string) (*I2C, error) {
	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, err
	}
	return &I2C{bus: bus}, nil
}

func (c *I2C) String() string {
	return fmt.Sprintf("I²C bus %s", c.bus)
}

func (c *I2C) Close() error {
	return c.bus.Close()
}

// Write sends the data address followed by p to the device at addr.
func (c *I2C) Write(addr, dataAddr byte, p []byte) error {
	return c.bus.Tx(uint16(addr), append([]byte{dataAddr}, p...), nil)
}

// Read fills p with bytes from the device at addr.
func (c *I2C) Read(addr, dataAddr byte, p []byte) error {
	return c.bus.Tx(uint16(addr), nil, p)
}
