// SPDX-License-Identifier: Unlicense OR MIT

package evdev

import (
	"errors"
	"testing"
	"time"
	"unsafe"

	syscall "golang.org/x/sys/unix"

	"github.com/gestalt-go/gestalt/io/pointer"
)

// pipeDevice returns a Device reading from a pipe, and the write
// end of the pipe.
func pipeDevice(t *testing.T) (*Device, int) {
	t.Helper()
	p := make([]int, 2)
	if err := syscall.Pipe2(p, syscall.O_NONBLOCK|syscall.O_CLOEXEC); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { syscall.Close(p[1]) })
	d, err := newDevice(p[0], "pipe", newTestDecoder())
	if err != nil {
		syscall.Close(p[0])
		t.Fatal(err)
	}
	return d, p[1]
}

func writeEvents(t *testing.T, fd int, evs ...inputEvent) {
	t.Helper()
	size := int(unsafe.Sizeof(inputEvent{}))
	buf := unsafe.Slice((*byte)(unsafe.Pointer(&evs[0])), len(evs)*size)
	if _, err := syscall.Write(fd, buf); err != nil {
		t.Fatal(err)
	}
}

func TestDeviceNext(t *testing.T) {
	d, w := pipeDevice(t)
	defer d.Close()
	writeEvents(t, w,
		inputEvent{Type: EvAbs, Code: AbsMTSlot, Value: 0},
		inputEvent{Type: EvAbs, Code: AbsMTTrackingID, Value: 3},
		inputEvent{Type: EvAbs, Code: AbsMTPositionX, Value: 500},
		inputEvent{Type: EvAbs, Code: AbsMTPositionY, Value: 1000},
		inputEvent{Type: EvSyn, Code: SynReport},
	)
	frames, err := d.Next()
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 1 || frames[0].Kind != pointer.Press {
		t.Fatalf("frames = %+v, want one press", frames)
	}
	if p := frames[0].Pointers[0]; p.ID != contactID(0, 3) || p.Position.X != 50 || p.Position.Y != 100 {
		t.Errorf("pointer = %+v, want contact 3 at (50,100)", p)
	}
}

func TestDeviceCloseUnblocksNext(t *testing.T) {
	d, _ := pipeDevice(t)
	errs := make(chan error, 1)
	go func() {
		_, err := d.Next()
		errs <- err
	}()
	// Let Next block in poll.
	time.Sleep(10 * time.Millisecond)
	if err := d.Close(); err != nil {
		t.Fatal(err)
	}
	select {
	case err := <-errs:
		if !errors.Is(err, ErrClosed) {
			t.Errorf("Next = %v, want ErrClosed", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Next still blocked after Close")
	}
	if _, err := d.Next(); !errors.Is(err, ErrClosed) {
		t.Errorf("Next after Close = %v, want ErrClosed", err)
	}
	if err := d.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}
}
