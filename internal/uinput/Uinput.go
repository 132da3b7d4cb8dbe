//go:build linux

package uinput

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"runtime"
	"unsafe"

	"github.com/lunixbochs/struc"
	"golang.org/x/sys/unix"

	"kuldippatel.dev/dargo/internal/input"
)

const DefaultName = "Dargo virtual trackpad"

type InputEvent struct {
	Time  unix.Timeval
	Type  uint16
	Code  uint16
	Value int32
}

// Registrar creates virtual input devices through /dev/uinput.
type Registrar struct {
	Path string
	Name string
}

func NewRegistrar(name string) *Registrar {
	if name == "" {
		name = DefaultName
	}
	return &Registrar{
		Path: uinputPath,
		Name: name,
	}
}

// Device A virtual input device created through uinput
type Device struct {
	Name string
	File *os.File
}

// Register declares caps on a fresh uinput handle and creates the device.
func (r *Registrar) Register(caps input.Capabilities) (input.Sink, error) {
	dev, err := r.newDevice(caps)
	if err != nil {
		return nil, err
	}
	return dev, nil
}

func (r *Registrar) newDevice(caps input.Capabilities) (*Device, error) {
	//Open UInput
	deviceFile, err := os.OpenFile(r.Path, unix.O_WRONLY|unix.O_NONBLOCK, 0660)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", r.Path, err)
	}

	fail := func(step string, err error) (*Device, error) {
		_ = releaseDevice(deviceFile)
		_ = deviceFile.Close()
		return nil, fmt.Errorf("%s: %w", step, err)
	}

	//Setup EV_KEY
	if len(caps.Keys) > 0 {
		err = ioctl(deviceFile.Fd(), UISETEVBIT(), input.EvKey)
		if err != nil {
			return fail("enable EV_KEY", err)
		}
		for _, key := range caps.Keys {
			err = ioctl(deviceFile.Fd(), UISETKEYBIT(), uintptr(key))
			if err != nil {
				return fail(fmt.Sprintf("enable %s", input.CodeName(input.EvKey, key)), err)
			}
		}
	}

	//Setup EV_ABS
	var absMins [input.AbsCnt]int32
	var absMaxs [input.AbsCnt]int32
	var absFuzz [input.AbsCnt]int32
	var absFlat [input.AbsCnt]int32

	if len(caps.Axes) > 0 {
		err = ioctl(deviceFile.Fd(), UISETEVBIT(), input.EvAbs)
		if err != nil {
			return fail("enable EV_ABS", err)
		}
	}
	for _, axis := range caps.Axes {
		if axis.Code > input.AbsMax {
			return fail("enable axis", fmt.Errorf("abs code %#x out of range", axis.Code))
		}

		err = ioctl(deviceFile.Fd(), UISETABSBIT(), uintptr(axis.Code))
		if err != nil {
			return fail(fmt.Sprintf("enable %s", input.CodeName(input.EvAbs, axis.Code)), err)
		}

		absMins[axis.Code] = axis.Info.Minimum
		absMaxs[axis.Code] = axis.Info.Maximum
		absFuzz[axis.Code] = axis.Info.Fuzz
		absFlat[axis.Code] = axis.Info.Flat
	}

	//Setup INPUT_PROP_*
	for _, prop := range caps.Props {
		err = ioctl(deviceFile.Fd(), UISETPROPBIT(), uintptr(prop))
		if err != nil {
			return fail(fmt.Sprintf("enable input prop %#x", prop), err)
		}
	}

	//Setup User Device
	uiDev := UinputUserDev{
		Name: toUInputName([]byte(r.Name)),
		ID: input.InputID{
			BusType: input.BusVirtual,
			Version: 1,
		},
		AbsMax:  absMaxs,
		AbsMin:  absMins,
		AbsFuzz: absFuzz,
		AbsFlat: absFlat,
	}

	//Write to Input Sub-System
	buf, err := pack(&uiDev)
	if err != nil {
		return fail("pack uinput_user_dev", err)
	}
	_, err = deviceFile.Write(buf)
	if err != nil {
		return fail("write uinput_user_dev", err)
	}

	//Resolution only travels through UI_ABS_SETUP
	for _, axis := range caps.Axes {
		if axis.Info.Resolution == 0 {
			continue
		}
		err = absSetup(deviceFile, axis)
		if err != nil {
			return fail(fmt.Sprintf("setup %s", input.CodeName(input.EvAbs, axis.Code)), err)
		}
	}

	//Declare Input Device
	err = createDevice(deviceFile)
	if err != nil {
		return fail("create device", err)
	}

	return &Device{
		File: deviceFile,
		Name: r.Name,
	}, nil
}

// Emit writes one event to the device.
func (dev *Device) Emit(evType, code uint16, value int32) error {
	buf, err := pack(&InputEvent{
		Type:  evType,
		Code:  code,
		Value: value,
	})
	if err != nil {
		return err
	}

	_, err = dev.File.Write(buf)
	if err != nil {
		return fmt.Errorf("write %s: %w", input.CodeName(evType, code), err)
	}
	return nil
}

// Close destroys the virtual device and releases the handle.
func (dev *Device) Close() error {
	err := releaseDevice(dev.File)
	cerr := dev.File.Close()
	if err != nil {
		return fmt.Errorf("destroy device: %w", err)
	}
	return cerr
}

func absSetup(f *os.File, axis input.AbsAxis) error {
	buf, err := pack(&UinputAbsSetup{
		Code:    axis.Code,
		AbsInfo: axis.Info,
	})
	if err != nil {
		return err
	}

	err = ioctl(f.Fd(), UIABSSETUP(), uintptr(unsafe.Pointer(&buf[0])))
	runtime.KeepAlive(buf)
	return err
}

func toUInputName(name []byte) [uinputMaxNameSize]byte {
	var fixedSizeName [uinputMaxNameSize]byte
	// keep the trailing NUL
	copy(fixedSizeName[:uinputMaxNameSize-1], name)
	return fixedSizeName
}

func pack(data interface{}) ([]byte, error) {
	var buf bytes.Buffer
	err := struc.PackWithOptions(&buf, data, &struc.Options{Order: binary.LittleEndian})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func createDevice(f *os.File) (err error) {
	return ioctl(f.Fd(), UIDEVCREATE(), uintptr(0))
}

func releaseDevice(f *os.File) (err error) {
	return ioctl(f.Fd(), UIDEVDESTROY(), uintptr(0))
}

// Syscall
func ioctl(fd uintptr, name int, data uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, uintptr(name), data)
	if errno != 0 {
		return errno
	}
	return nil
}
