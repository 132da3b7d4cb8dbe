package uinput

import (
	"kuldippatel.dev/dargo/internal/input"
)

//---------------------------------IOCTL--------------------------------------//

// Ref: ioctl.h
const (
	iocNone  = 0x0
	iocWrite = 0x1
	iocRead  = 0x2

	iocNrbits   = 8
	iocTypebits = 8
	iocSizebits = 14
	iocNrshift  = 0

	iocTypeshift = iocNrshift + iocNrbits
	iocSizeshift = iocTypeshift + iocTypebits
	iocDirshift  = iocSizeshift + iocSizebits
)

func ioc(dir int, t int, nr int, size int) int {
	return (dir << iocDirshift) | (t << iocTypeshift) |
		(nr << iocNrshift) | (size << iocSizeshift)
}

func ior(t int, nr int, size int) int {
	return ioc(iocRead, t, nr, size)
}

func iow(t int, nr int, size int) int {
	return ioc(iocWrite, t, nr, size)
}

// Ref: input.h
func EVIOCGNAME() int {
	return ioc(iocRead, 'E', 0x06, uinputMaxNameSize)
}

func EVIOCGPROP() int {
	return ioc(iocRead, 'E', 0x09, input.InputPropCnt/8)
}

func EVIOCGABS(abs int) int {
	return ior('E', 0x40+abs, 24) //sizeof(struct input_absinfo)
}

func EVIOCGBIT(ev, len int) int {
	return ioc(iocRead, 'E', 0x20+ev, len)
}

//---------------------------------UInput--------------------------------------//

// Ref: uinput.h
const (
	uinputMaxNameSize = 80
	uinputPath        = "/dev/uinput"
)

type UinputUserDev struct {
	Name       [uinputMaxNameSize]byte
	ID         input.InputID
	EffectsMax uint32
	AbsMax     [input.AbsCnt]int32
	AbsMin     [input.AbsCnt]int32
	AbsFuzz    [input.AbsCnt]int32
	AbsFlat    [input.AbsCnt]int32
}

// UinputAbsSetup carries the resolution, which UinputUserDev has no room for.
type UinputAbsSetup struct {
	Code    uint16
	Pad     [2]byte
	AbsInfo input.AbsInfo
}

// Ref: uinput.h
func UISETEVBIT() int {
	return iow('U', 100, 4) //sizeof(int)
}

func UISETKEYBIT() int {
	return iow('U', 101, 4) //sizeof(int)
}

func UISETABSBIT() int {
	return iow('U', 103, 4) //sizeof(int)
}

func UISETPROPBIT() int {
	return iow('U', 110, 4) //sizeof(int)
}

func UIABSSETUP() int {
	return iow('U', 4, 28) //sizeof(struct uinput_abs_setup)
}

func UIDEVCREATE() int {
	return ioc(iocNone, 'U', 1, 0)
}

func UIDEVDESTROY() int {
	return ioc(iocNone, 'U', 2, 0)
}
