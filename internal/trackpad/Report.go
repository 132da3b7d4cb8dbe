package trackpad

import (
	"kuldippatel.dev/dargo/internal/input"
	"kuldippatel.dev/dargo/internal/message"
)

var toolKeys = [...]uint16{
	input.BtnToolFinger,
	input.BtnToolDoubleTap,
	input.BtnToolTripleTap,
	input.BtnToolQuadTap,
	input.BtnToolQuintTap,
}

// frameWriter keeps the first write error so a report can be written
// without checking every event.
type frameWriter struct {
	dev input.Sink
	err error
}

func (w *frameWriter) event(evType, code uint16, value int32) {
	if w.err != nil {
		return
	}
	w.err = w.dev.Emit(evType, code, value)
}

func (w *frameWriter) abs(code uint16, value int32) {
	w.event(input.EvAbs, code, value)
}

func (w *frameWriter) key(code uint16, pressed bool) {
	w.event(input.EvKey, code, boolValue(pressed))
}

// reportMtSlot writes the type B slot state; a nil touch releases the slot.
func (e *Engine) reportMtSlot(w *frameWriter, slot int, touch *message.Touch) {
	w.abs(input.AbsMtSlot, int32(slot))
	if touch == nil {
		w.abs(input.AbsMtTrackingID, -1)
		return
	}

	w.abs(input.AbsMtToolType, input.MtToolFinger)
	w.abs(input.AbsMtTrackingID, touch.ID)
	w.abs(input.AbsMtPositionX, truncate(touch.X))
	w.abs(input.AbsMtPositionY, truncate(touch.Y))

	if e.extended {
		major, minor := touch.RadiusX, touch.RadiusY
		if minor > major {
			major, minor = minor, major
		}
		w.abs(input.AbsMtTouchMajor, clamp(truncate(2*float64(major)), 0, e.contactMax()))
		w.abs(input.AbsMtTouchMinor, clamp(truncate(2*float64(minor)), 0, e.contactMax()))
		w.abs(input.AbsMtOrientation, clamp(truncate(float64(touch.RotationAngle)), -orientationMax, orientationMax))
		w.abs(input.AbsMtPressure, clamp(truncate(float64(touch.Pressure)*pressureMax), 0, pressureMax))
	}
}

// reportLegacyAndTool writes ABS_X, ABS_Y, BTN_TOUCH and BTN_TOOL_*, the way
// input_mt_report_finger_count and input_mt_report_pointer_emulation do in
// drivers/input/input-mt.c. The oldest active touch drives the pointer.
func (e *Engine) reportLegacyAndTool(w *frameWriter) {
	count := len(e.activeTouches)

	if count != 0 {
		oldest := e.activeTouches[0]
		w.abs(input.AbsX, oldest.x)
		w.abs(input.AbsY, oldest.y)
	}

	w.key(input.BtnTouch, count != 0)
	for i, key := range toolKeys {
		w.key(key, count == i+1)
	}
}

func (e *Engine) sync(w *frameWriter) {
	w.event(input.EvSyn, input.SynReport, 0)
}
