//go:build !linux

package uinput

import (
	"errors"
	"runtime"

	"kuldippatel.dev/dargo/internal/input"
)

const DefaultName = "Dargo virtual trackpad"

var (
	ErrNoDevices   = errors.New("devices are not found")
	errUnsupported = errors.New("uinput is not available on " + runtime.GOOS)
)

type Registrar struct {
	Path string
	Name string
}

func NewRegistrar(name string) *Registrar {
	if name == "" {
		name = DefaultName
	}
	return &Registrar{Path: uinputPath, Name: name}
}

func (r *Registrar) Register(caps input.Capabilities) (input.Sink, error) {
	return nil, errUnsupported
}

type InputDevice struct {
	Name   string
	Path   string
	Slots  int32
	TouchX input.AbsInfo
	TouchY input.AbsInfo
}

func (dev *InputDevice) HasAbs(code int) bool { return false }

func (dev *InputDevice) HasKey(code int) bool { return false }

func Lookup(name string) ([]*InputDevice, error) {
	return nil, errUnsupported
}
