package input

import "fmt"

//---------------------------------EVCodes--------------------------------------//

// Ref: input-event-codes.h
const (
	EvSyn = 0x00
	EvKey = 0x01
	EvAbs = 0x03

	SynReport = 0

	BtnToolFinger    = 0x145
	BtnToolQuintTap  = 0x148
	BtnTouch         = 0x14a
	BtnToolDoubleTap = 0x14d
	BtnToolTripleTap = 0x14e
	BtnToolQuadTap   = 0x14f

	AbsX             = 0x00
	AbsY             = 0x01
	AbsMtSlot        = 0x2f
	AbsMtTouchMajor  = 0x30
	AbsMtTouchMinor  = 0x31
	AbsMtOrientation = 0x34
	AbsMtPositionX   = 0x35
	AbsMtPositionY   = 0x36
	AbsMtToolType    = 0x37
	AbsMtTrackingID  = 0x39
	AbsMtPressure    = 0x3a

	InputPropPointer = 0x00

	EvMax        = 0x1f
	EvCnt        = EvMax + 1
	KeyMax       = 0x2ff
	KeyCnt       = KeyMax + 1
	AbsMax       = 0x3f
	AbsCnt       = AbsMax + 1
	InputPropMax = 0x1f
	InputPropCnt = InputPropMax + 1
)

// Ref: input.h
const (
	MtToolFinger = 0x00
	MtToolMax    = 0x0f

	BusVirtual = 0x06
)

//---------------------------------Input--------------------------------------//

type InputID struct {
	BusType uint16
	Vendor  uint16
	Product uint16
	Version uint16
}

type AbsInfo struct {
	Value      int32
	Minimum    int32
	Maximum    int32
	Fuzz       int32
	Flat       int32
	Resolution int32
}

// AbsAxis An absolute axis declared on a device
type AbsAxis struct {
	Code uint16
	Info AbsInfo
}

// Capabilities Everything a virtual device declares before it is created
type Capabilities struct {
	Keys  []uint16
	Props []uint16
	Axes  []AbsAxis
}

// Axis returns the declared info for code.
func (c Capabilities) Axis(code uint16) (AbsInfo, bool) {
	for _, axis := range c.Axes {
		if axis.Code == code {
			return axis.Info, true
		}
	}
	return AbsInfo{}, false
}

// Event A single typed event plus value, as written to a device
type Event struct {
	Type  uint16
	Code  uint16
	Value int32
}

func (e Event) String() string {
	return fmt.Sprintf("%s %d", CodeName(e.Type, e.Code), e.Value)
}

var (
	keyNames = map[uint16]string{
		BtnTouch:         "BTN_TOUCH",
		BtnToolFinger:    "BTN_TOOL_FINGER",
		BtnToolDoubleTap: "BTN_TOOL_DOUBLETAP",
		BtnToolTripleTap: "BTN_TOOL_TRIPLETAP",
		BtnToolQuadTap:   "BTN_TOOL_QUADTAP",
		BtnToolQuintTap:  "BTN_TOOL_QUINTTAP",
	}
	absNames = map[uint16]string{
		AbsX:             "ABS_X",
		AbsY:             "ABS_Y",
		AbsMtSlot:        "ABS_MT_SLOT",
		AbsMtTouchMajor:  "ABS_MT_TOUCH_MAJOR",
		AbsMtTouchMinor:  "ABS_MT_TOUCH_MINOR",
		AbsMtOrientation: "ABS_MT_ORIENTATION",
		AbsMtPositionX:   "ABS_MT_POSITION_X",
		AbsMtPositionY:   "ABS_MT_POSITION_Y",
		AbsMtToolType:    "ABS_MT_TOOL_TYPE",
		AbsMtTrackingID:  "ABS_MT_TRACKING_ID",
		AbsMtPressure:    "ABS_MT_PRESSURE",
	}
)

// CodeName Human readable name of an event code, e.g. ABS_MT_SLOT
func CodeName(evType, code uint16) string {
	var name string
	var ok bool

	switch evType {
	case EvSyn:
		if code == SynReport {
			return "SYN_REPORT"
		}
	case EvKey:
		name, ok = keyNames[code]
	case EvAbs:
		name, ok = absNames[code]
	}

	if ok {
		return name
	}
	return fmt.Sprintf("EV_%#x/%#x", evType, code)
}
