//go:build linux

package uinput

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"unsafe"

	"golang.org/x/sys/unix"

	"kuldippatel.dev/dargo/internal/input"
)

var ErrNoDevices = errors.New("devices are not found")

// InputDevice A Linux input node that looks like a multitouch trackpad
type InputDevice struct {
	Name     string
	Path     string
	Slots    int32
	TouchX   input.AbsInfo
	TouchY   input.AbsInfo
	AbsBits  *[input.AbsCnt / 8]byte
	KeyBits  *[input.KeyCnt / 8]byte
	PropBits *[input.InputPropCnt / 8]byte
}

// Lookup scans /dev/input for pointer-type multitouch devices. An empty
// name matches every trackpad.
func Lookup(name string) ([]*InputDevice, error) {
	paths, err := filepath.Glob("/dev/input/event*")
	if err != nil {
		return nil, err
	}

	var ids []*InputDevice

	for _, path := range paths {
		if !isCharDevice(path) {
			continue
		}

		id, err := probe(path)
		if err != nil || id == nil {
			continue
		}
		if name != "" && id.Name != name {
			continue
		}
		ids = append(ids, id)
	}

	if len(ids) == 0 {
		return nil, ErrNoDevices
	}
	return ids, nil
}

func probe(path string) (*InputDevice, error) {
	inDev, err := os.OpenFile(path, unix.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, err
	}
	defer inDev.Close()

	// Read Abs data
	absBits := new([input.AbsCnt / 8]byte)
	err = ioctl(inDev.Fd(), EVIOCGBIT(input.EvAbs, len(absBits)), uintptr(unsafe.Pointer(absBits)))
	if err != nil {
		return nil, err
	}

	// Read Prop data
	propBits := new([input.InputPropCnt / 8]byte)
	err = ioctl(inDev.Fd(), EVIOCGPROP(), uintptr(unsafe.Pointer(propBits)))
	if err != nil {
		return nil, err
	}

	// Read Key data
	keyBits := new([input.KeyCnt / 8]byte)
	err = ioctl(inDev.Fd(), EVIOCGBIT(input.EvKey, len(keyBits)), uintptr(unsafe.Pointer(keyBits)))
	if err != nil {
		return nil, err
	}

	// Devices with ABS_MT_SLOT - 1 aren't MT devices, libevdev:libevdev.c#L319
	if hasBit(absBits[:], input.AbsMtSlot-1) ||
		!hasBit(absBits[:], input.AbsMtSlot) ||
		!hasBit(absBits[:], input.AbsMtTrackingID) ||
		!hasBit(absBits[:], input.AbsMtPositionX) ||
		!hasBit(absBits[:], input.AbsMtPositionY) ||
		!hasBit(propBits[:], input.InputPropPointer) ||
		!hasBit(keyBits[:], input.BtnTouch) {
		return nil, nil
	}

	id := &InputDevice{
		Path:     path,
		Name:     getDeviceName(inDev),
		AbsBits:  absBits,
		KeyBits:  keyBits,
		PropBits: propBits,
	}

	if absInfo, err := getAbsInfo(inDev, input.AbsMtSlot); err == nil {
		id.Slots = absInfo.Maximum + 1
	}
	if id.TouchX, err = getAbsInfo(inDev, input.AbsMtPositionX); err != nil {
		return nil, err
	}
	if id.TouchY, err = getAbsInfo(inDev, input.AbsMtPositionY); err != nil {
		return nil, err
	}

	return id, nil
}

// HasAbs Determine if input device has specified Abs axis.
func (dev *InputDevice) HasAbs(code int) bool {
	return hasBit(dev.AbsBits[:], code)
}

// HasKey Determine if input device has specified Key.
func (dev *InputDevice) HasKey(code int) bool {
	return hasBit(dev.KeyBits[:], code)
}

// Determine if a path exist and is a character input device.
func isCharDevice(path string) bool {
	fi, err := os.Stat(path)
	if err != nil {
		return false
	}

	return fi.Mode()&os.ModeCharDevice != 0
}

func hasBit(bits []byte, key int) bool {
	if key < 0 || key/8 >= len(bits) {
		return false
	}
	return bits[key/8]&(1<<uint(key%8)) != 0
}

// Read Input Device's ABS Data
func getAbsInfo(f *os.File, key int) (input.AbsInfo, error) {
	absData := input.AbsInfo{}

	err := ioctl(f.Fd(), EVIOCGABS(key), uintptr(unsafe.Pointer(&absData)))
	if err != nil {
		return input.AbsInfo{}, err
	}

	return absData, nil
}

// Read Event's Device Name
func getDeviceName(f *os.File) string {
	name := new([uinputMaxNameSize]byte)

	err := ioctl(f.Fd(), EVIOCGNAME(), uintptr(unsafe.Pointer(name)))
	if err != nil {
		return "Default"
	}

	idx := bytes.IndexByte(name[:], 0)
	if idx < 0 {
		idx = len(name)
	}

	return string(name[:idx])
}
