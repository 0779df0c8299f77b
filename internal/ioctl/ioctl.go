package ioctl

import (
	"fmt"
	"syscall"
)

// Command to be sent over ioctl.
type Command uintptr

func (c Command) String() string {
	return fmt.Sprintf("ioctl 0x%04x", uintptr(c))
}

// Call does a plain ioctl system call.
func Call(fd, command, arg uintptr) error {
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, fd, command, arg)
	if errno != 0 {
		return fmt.Errorf("%s failed: %v", Command(command), errno)
	}
	return nil
}
