// SPDX-License-Identifier: Unlicense OR MIT

package evdev

import (
	"errors"
	"fmt"
	"sync"
	"time"
	"unsafe"

	"gioui.org/f32"
	syscall "golang.org/x/sys/unix"

	"github.com/gestalt-go/gestalt/io/pointer"
)

// ErrClosed is returned by Next when the Device is closed.
var ErrClosed = errors.New("evdev: device closed")

// Device reads frames from an evdev device node. Close may be
// called concurrently with Next.
type Device struct {
	fd   int
	name string
	dec  *Decoder

	// notify is a pipe whose read end wakes Next up from Close.
	notify struct {
		read, write int
	}
	wakeOnce sync.Once

	// mu is held by Next and guards closed.
	mu     sync.Mutex
	closed bool

	events [64]inputEvent
	frames []pointer.Frame
}

type inputEvent struct {
	Time  syscall.Timeval
	Type  uint16
	Code  uint16
	Value int32
}

type absInfo struct {
	Value      int32
	Minimum    int32
	Maximum    int32
	Fuzz       int32
	Flat       int32
	Resolution int32
}

// Open opens the device node at path, for example
// /dev/input/event3, and scales its positions to size.
func Open(path string, size f32.Point) (*Device, error) {
	fd, err := syscall.Open(path, syscall.O_RDONLY|syscall.O_NONBLOCK|syscall.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("evdev: open %s: %w", path, err)
	}
	x, errX := axis(fd, AbsMTPositionX, AbsX)
	y, errY := axis(fd, AbsMTPositionY, AbsY)
	if err := errors.Join(errX, errY); err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("evdev: %s: %w", path, err)
	}
	name, _ := deviceName(fd)
	d, err := newDevice(fd, name, NewDecoder(x, y, size))
	if err != nil {
		syscall.Close(fd)
		return nil, err
	}
	return d, nil
}

// newDevice returns a Device reading input_events from fd, which
// should be non-blocking.
func newDevice(fd int, name string, dec *Decoder) (*Device, error) {
	d := &Device{fd: fd, name: name, dec: dec}
	pipe := make([]int, 2)
	if err := syscall.Pipe2(pipe, syscall.O_NONBLOCK|syscall.O_CLOEXEC); err != nil {
		return nil, fmt.Errorf("evdev: failed to create pipe: %w", err)
	}
	d.notify.read, d.notify.write = pipe[0], pipe[1]
	return d, nil
}

// Name returns the name reported by the device driver.
func (d *Device) Name() string {
	return d.name
}

// Next blocks until at least one frame is decoded or the Device
// is closed. The returned slice is only valid until the next call.
func (d *Device) Next() ([]pointer.Frame, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrClosed
	}
	size := int(unsafe.Sizeof(inputEvent{}))
	buf := unsafe.Slice((*byte)(unsafe.Pointer(&d.events[0])), len(d.events)*size)
	d.frames = d.frames[:0]
	for len(d.frames) == 0 {
		if err := d.wait(); err != nil {
			return nil, err
		}
		n, err := syscall.Read(d.fd, buf)
		if err == syscall.EINTR || err == syscall.EAGAIN {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("evdev: read: %w", err)
		}
		if n == 0 || n%size != 0 {
			return nil, fmt.Errorf("evdev: short read of %d bytes", n)
		}
		for _, e := range d.events[:n/size] {
			d.frames = d.dec.Decode(d.frames, Event{
				Time:  time.Duration(e.Time.Nano()),
				Type:  e.Type,
				Code:  e.Code,
				Value: e.Value,
			})
		}
	}
	return d.frames, nil
}

// wait blocks until the device is readable or Close is called.
func (d *Device) wait() error {
	pollfds := []syscall.PollFd{
		{Fd: int32(d.fd), Events: syscall.POLLIN | syscall.POLLERR},
		{Fd: int32(d.notify.read), Events: syscall.POLLIN | syscall.POLLERR},
	}
	for {
		if _, err := syscall.Poll(pollfds, -1); err != nil {
			if err == syscall.EINTR {
				continue
			}
			return fmt.Errorf("evdev: poll: %w", err)
		}
		switch {
		case pollfds[1].Revents != 0:
			return ErrClosed
		case pollfds[0].Revents != 0:
			// Errors and hangups are reported by the read.
			return nil
		}
	}
}

// Close wakes up a blocked Next and closes the device node once
// Next has returned.
func (d *Device) Close() error {
	d.wakeOnce.Do(func() {
		syscall.Write(d.notify.write, []byte{0})
	})
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	return errors.Join(
		syscall.Close(d.fd),
		syscall.Close(d.notify.read),
		syscall.Close(d.notify.write),
	)
}

// axis returns the range of the first of codes the device reports.
func axis(fd int, codes ...int) (Axis, error) {
	var err error
	for _, c := range codes {
		var info absInfo
		if err = ioctl(fd, eviocgabs(c), unsafe.Pointer(&info)); err == nil {
			return Axis{Min: info.Minimum, Max: info.Maximum}, nil
		}
	}
	return Axis{}, fmt.Errorf("no absolute axis %#x: %w", codes[0], err)
}

func deviceName(fd int) (string, error) {
	var buf [256]byte
	if err := ioctl(fd, eviocgname(len(buf)), unsafe.Pointer(&buf[0])); err != nil {
		return "", err
	}
	n := 0
	for n < len(buf) && buf[n] != 0 {
		n++
	}
	return string(buf[:n]), nil
}

func ioctl(fd int, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

// Request encoding from linux/ioctl.h.
const (
	iocNRBits   = 8
	iocTypeBits = 8
	iocSizeBits = 14

	iocNRShift   = 0
	iocTypeShift = iocNRShift + iocNRBits
	iocSizeShift = iocTypeShift + iocTypeBits
	iocDirShift  = iocSizeShift + iocSizeBits

	iocRead = 2
)

func ior(nr, size uintptr) uintptr {
	return iocRead<<iocDirShift | 'E'<<iocTypeShift | nr<<iocNRShift | size<<iocSizeShift
}

func eviocgname(n int) uintptr {
	return ior(0x06, uintptr(n))
}

func eviocgabs(abs int) uintptr {
	return ior(0x40+uintptr(abs), unsafe.Sizeof(absInfo{}))
}
