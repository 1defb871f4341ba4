//go:build linux
// +build linux

package device

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"syscall"
	"unsafe"
)

const (
	iocGAXES    uint = 0x80016a11
	iocGBUTTONS uint = 0x80016a12
	iocGNAME    uint = 0x80ff6a13

	jsInit   uint8 = 0x80
	jsButton uint8 = 0x01
	jsAxis   uint8 = 0x02
)

// jsEvent is struct js_event from linux/joystick.h.
type jsEvent struct {
	Time   uint32
	Value  int16
	Type   uint8
	Number uint8
}

type joystick struct {
	file    *os.File
	index   int
	name    string
	axes    uint8
	buttons uint8
}

// Open opens /dev/input/jsN.
func Open(index int) (Device, error) {
	f, err := os.OpenFile(fmt.Sprintf("/dev/input/js%d", index), os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	js := &joystick{file: f, index: index}
	var name [256]byte
	for _, q := range []struct {
		req uint
		ptr unsafe.Pointer
	}{
		{iocGAXES, unsafe.Pointer(&js.axes)},
		{iocGBUTTONS, unsafe.Pointer(&js.buttons)},
		{iocGNAME, unsafe.Pointer(&name)},
	} {
		if errno := js.ioctl(q.req, q.ptr); errno != 0 {
			f.Close()
			return nil, errno
		}
	}
	if pos := bytes.IndexByte(name[:], 0); pos >= 0 {
		js.name = string(name[:pos])
	} else {
		js.name = string(name[:])
	}
	return js, nil
}

// DetectAndOpen opens the first joystick from startIndex, nil if none.
func DetectAndOpen(startIndex int) (Device, error) {
	for index := startIndex; index < 256; index++ {
		js, err := Open(index)
		if os.IsNotExist(err) {
			continue
		}
		return js, err
	}
	return nil, nil
}

func (js *joystick) Close() error {
	return js.file.Close()
}

func (js *joystick) Index() int {
	return js.index
}

func (js *joystick) Name() string {
	return js.name
}

func (js *joystick) AxisCount() int {
	return int(js.axes)
}

func (js *joystick) ButtonCount() int {
	return int(js.buttons)
}

// ReadEvent skips event types other than buttons and axes.
func (js *joystick) ReadEvent() (Event, error) {
	for {
		var ev jsEvent
		if err := binary.Read(js.file, binary.LittleEndian, &ev); err != nil {
			return Event{}, err
		}
		out := Event{
			Index: int(ev.Number),
			Value: int(ev.Value),
			Init:  ev.Type&jsInit != 0,
		}
		switch ev.Type &^ jsInit {
		case jsButton:
			out.Kind = KindButton
		case jsAxis:
			out.Kind = KindAxis
		default:
			continue
		}
		return out, nil
	}
}

func (js *joystick) ioctl(req uint, ptr unsafe.Pointer) syscall.Errno {
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, js.file.Fd(), uintptr(req), uintptr(ptr))
	return errno
}
