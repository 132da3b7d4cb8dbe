// Package trackpad turns client touch messages into the Linux type B
// multitouch protocol of a virtual trackpad.
//
// For libinput to treat the device as a touchpad, udev has to label it
// ID_INPUT_TOUCHPAD=1. That needs:
//   - BTN_TOUCH while at least one touch is active
//   - the BTN_TOOL_* key matching the number of touches
//   - every point reported through ABS_MT_* events, slot by slot
//   - the oldest active touch mirrored to ABS_X/ABS_Y
//   - INPUT_PROP_POINTER, so it is not taken for a touchscreen
//
// See https://kernel.org/doc/html/latest/input/multi-touch-protocol.html
package trackpad

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"kuldippatel.dev/dargo/internal/input"
	"kuldippatel.dev/dargo/internal/message"
)

const (
	trackingIDMax  = 15
	orientationMax = 90
	pressureMax    = 255
)

// Geometry Surface size in client units, plus units per mm
type Geometry struct {
	Width      int32
	Height     int32
	Resolution int32
}

func (g Geometry) validate() error {
	if g.Width < 1 || g.Height < 1 {
		return &ProtocolError{Reason: fmt.Sprintf("invalid dimensions %dx%d", g.Width, g.Height)}
	}
	if g.Resolution < 0 {
		return &ProtocolError{Reason: fmt.Sprintf("invalid resolution %d", g.Resolution)}
	}
	return nil
}

var errClosed = errors.New("trackpad closed")

type Option func(*Engine)

// WithExtendedReporting also reports contact size, orientation and pressure.
func WithExtendedReporting() Option {
	return func(e *Engine) {
		e.extended = true
	}
}

func WithLogger(log *zap.SugaredLogger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// Engine owns one virtual trackpad. It is not safe for concurrent use:
// messages must be processed one at a time, in arrival order.
type Engine struct {
	registrar input.Registrar
	dev       input.Sink
	geometry  Geometry
	extended  bool
	log       *zap.SugaredLogger

	slots slotTable

	// Oldest first, one entry per used slot.
	activeTouches []activeTouch
}

// New registers a trackpad with the given geometry.
func New(registrar input.Registrar, geometry Geometry, opts ...Option) (*Engine, error) {
	e := &Engine{
		registrar: registrar,
		log:       zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := geometry.validate(); err != nil {
		return nil, err
	}

	dev, err := e.register(geometry)
	if err != nil {
		return nil, err
	}

	e.dev = dev
	e.geometry = geometry
	e.resetSlots()
	return e, nil
}

func (e *Engine) Geometry() Geometry {
	return e.geometry
}

// ActiveTouches returns the number of touches currently down.
func (e *Engine) ActiveTouches() int {
	return len(e.activeTouches)
}

// ProcessMessage applies msg and writes one complete frame. A touch message
// that cannot be applied in full is rejected without writing anything.
func (e *Engine) ProcessMessage(msg message.Message) error {
	if e.dev == nil {
		return &DeviceError{Op: "write", Err: errClosed}
	}

	w := &frameWriter{}

	switch m := msg.(type) {
	case message.DimensionsUpdate:
		err := e.updateDimensions(Geometry(m.DimensionsData))
		if err != nil {
			return err
		}
		w.dev = e.dev
	case message.TouchUpdate:
		w.dev = e.dev
		err := e.processTouchUpdate(w, m.Touches)
		if err != nil {
			return err
		}
	case message.TouchEnd:
		w.dev = e.dev
		err := e.processTouchEnd(w, m.IDs)
		if err != nil {
			return err
		}
	default:
		return &ProtocolError{Reason: fmt.Sprintf("unexpected message %T", msg)}
	}

	e.reportLegacyAndTool(w)
	e.sync(w)

	if w.err != nil {
		return &DeviceError{Op: "write", Err: w.err}
	}
	return nil
}

// Close destroys the virtual device.
func (e *Engine) Close() error {
	if e.dev == nil {
		return nil
	}
	err := e.dev.Close()
	e.dev = nil
	return err
}

// updateDimensions replaces the device, since its axis ranges cannot be
// changed once created. Touches active on the old device are dropped.
func (e *Engine) updateDimensions(geometry Geometry) error {
	if err := geometry.validate(); err != nil {
		return err
	}

	dev, err := e.register(geometry)
	if err != nil {
		return err
	}

	if e.dev != nil {
		if cerr := e.dev.Close(); cerr != nil {
			e.log.Warnw("failed to destroy replaced device", "error", cerr)
		}
	}

	e.dev = dev
	e.geometry = geometry
	e.resetSlots()
	return nil
}

func (e *Engine) register(geometry Geometry) (input.Sink, error) {
	dev, err := e.registrar.Register(capabilities(geometry, e.extended))
	if err != nil {
		return nil, &DeviceError{Op: "register", Err: err}
	}
	return dev, nil
}

type assignment struct {
	slot  int
	isNew bool
}

func (e *Engine) processTouchUpdate(w *frameWriter, touches []message.Touch) error {
	// Resolve every slot before touching any state.
	plan := e.slots
	assigned := make([]assignment, len(touches))
	for i, touch := range touches {
		slot, isNew, err := plan.findSlotForID(touch.ID)
		if err != nil {
			return err
		}
		plan.assign(slot, touch.ID)
		assigned[i] = assignment{slot: slot, isNew: isNew}
	}

	for i := range touches {
		touch := touches[i]
		a := assigned[i]

		e.slots.assign(a.slot, touch.ID)
		x, y := truncate(touch.X), truncate(touch.Y)
		if a.isNew {
			e.pushActive(a.slot, x, y)
		} else {
			e.moveActive(a.slot, x, y)
		}

		e.reportMtSlot(w, a.slot, &touch)
	}
	return nil
}

func (e *Engine) processTouchEnd(w *frameWriter, ids []int32) error {
	plan := e.slots
	slots := make([]int, len(ids))
	for i, id := range ids {
		slot, ok := plan.lookup(id)
		if !ok {
			return &ProtocolError{Reason: fmt.Sprintf("end of unknown touch %d", id)}
		}
		plan.free(slot)
		slots[i] = slot
	}

	for _, slot := range slots {
		e.slots.free(slot)
		e.removeActive(slot)
		e.reportMtSlot(w, slot, nil)
	}
	return nil
}

func (e *Engine) contactMax() int32 {
	return i32Max(e.geometry.Width, e.geometry.Height)
}

// capabilities The fixed capability set for a trackpad of the given size.
func capabilities(g Geometry, extended bool) input.Capabilities {
	xInfo := input.AbsInfo{Maximum: g.Width - 1, Fuzz: 1, Resolution: g.Resolution}
	yInfo := input.AbsInfo{Maximum: g.Height - 1, Fuzz: 1, Resolution: g.Resolution}

	caps := input.Capabilities{
		Keys: []uint16{
			input.BtnTouch,
			input.BtnToolFinger,
			input.BtnToolDoubleTap,
			input.BtnToolTripleTap,
			input.BtnToolQuadTap,
			input.BtnToolQuintTap,
		},
		Props: []uint16{input.InputPropPointer},
		Axes: []input.AbsAxis{
			{Code: input.AbsMtSlot, Info: input.AbsInfo{Maximum: NumSlots - 1}},
			{Code: input.AbsMtTrackingID, Info: input.AbsInfo{Maximum: trackingIDMax}},
			{Code: input.AbsMtToolType, Info: input.AbsInfo{Maximum: input.MtToolMax}},
			{Code: input.AbsX, Info: xInfo},
			{Code: input.AbsMtPositionX, Info: xInfo},
			{Code: input.AbsY, Info: yInfo},
			{Code: input.AbsMtPositionY, Info: yInfo},
		},
	}

	if extended {
		contact := input.AbsInfo{Maximum: i32Max(g.Width, g.Height)}
		caps.Axes = append(caps.Axes,
			input.AbsAxis{Code: input.AbsMtTouchMajor, Info: contact},
			input.AbsAxis{Code: input.AbsMtTouchMinor, Info: contact},
			input.AbsAxis{Code: input.AbsMtOrientation, Info: input.AbsInfo{Minimum: -orientationMax, Maximum: orientationMax}},
			input.AbsAxis{Code: input.AbsMtPressure, Info: input.AbsInfo{Maximum: pressureMax}},
		)
	}

	return caps
}
