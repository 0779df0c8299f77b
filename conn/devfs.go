//go:build linux

package conn

import (
	"fmt"
	"io"
	"os"

	"github.com/BeatGlow/ddc/internal/ioctl"
)

// Definitions from <linux/i2c-dev.h>
const (
	i2cRetries = 0x0701
	i2cTimeout = 0x0702
	i2cSlave   = 0x0703
)

// Devfs is a DDC/CI channel over a raw /dev/i2c-N device node, for hosts
// where no periph.io driver claims the adapter.
type Devfs struct {
	f    *os.File
	addr byte
}

// OpenDevfs opens the i2c-dev node at path. The kernel driver keeps its
// own retry setting; the DDC retry loop is layered on top of it, so device
// retries are disabled here.
func OpenDevfs(path string) (*Devfs, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}

	c := &Devfs{f: f}
	if err := ioctl.Call(f.Fd(), i2cRetries, 0); err != nil {
		_ = f.Close()
		return nil, err
	}
	return c, nil
}

func (c *Devfs) String() string {
	return fmt.Sprintf("i2c-dev %s", c.f.Name())
}

func (c *Devfs) Close() error {
	return c.f.Close()
}

func (c *Devfs) setAddr(addr byte) error {
	if c.addr == addr {
		return nil
	}
	if err := ioctl.Call(c.f.Fd(), i2cSlave, uintptr(addr)); err != nil {
		return err
	}
	c.addr = addr
	return nil
}

// Write sends the data address followed by p to the device at addr.
func (c *Devfs) Write(addr, dataAddr byte, p []byte) error {
	if err := c.setAddr(addr); err != nil {
		return err
	}
	_, err := c.f.Write(append([]byte{dataAddr}, p...))
	return err
}

// Read fills p with bytes from the device at addr.
func (c *Devfs) Read(addr, dataAddr byte, p []byte) error {
	if err := c.setAddr(addr); err != nil {
		return err
	}
	_, err := io.ReadFull(c.f, p)
	return err
}
