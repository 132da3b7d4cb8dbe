package trackpad

// NumSlots Number of multitouch slots, and so simultaneous touches
const NumSlots = 10

type slotEntry struct {
	id   int32
	used bool
}

// slotTable Maps multitouch slot numbers to the client's touch ids
type slotTable [NumSlots]slotEntry

// activeTouch A live touch and its last reported position
type activeTouch struct {
	slot int
	x, y int32
}

// lookup returns the slot already holding id.
func (t *slotTable) lookup(id int32) (int, bool) {
	for i, entry := range t {
		if entry.used && entry.id == id {
			return i, true
		}
	}
	return -1, false
}

// findSlotForID returns the slot for id and whether it had to be newly
// assigned. The lowest numbered slot wins.
func (t *slotTable) findSlotForID(id int32) (int, bool, error) {
	if slot, ok := t.lookup(id); ok {
		return slot, false, nil
	}

	// id not known, need to assign to an empty slot
	for i, entry := range t {
		if !entry.used {
			return i, true, nil
		}
	}
	return -1, false, &CapacityError{ID: id}
}

func (t *slotTable) assign(slot int, id int32) {
	t[slot] = slotEntry{id: id, used: true}
}

func (t *slotTable) free(slot int) {
	t[slot] = slotEntry{}
}

// Queue of active touches, oldest first.

func (e *Engine) pushActive(slot int, x, y int32) {
	e.activeTouches = append(e.activeTouches, activeTouch{slot: slot, x: x, y: y})
}

func (e *Engine) moveActive(slot int, x, y int32) {
	for i := range e.activeTouches {
		if e.activeTouches[i].slot == slot {
			e.activeTouches[i].x = x
			e.activeTouches[i].y = y
			return
		}
	}
}

func (e *Engine) removeActive(slot int) {
	for i, touch := range e.activeTouches {
		if touch.slot == slot {
			e.activeTouches = append(e.activeTouches[:i], e.activeTouches[i+1:]...)
			return
		}
	}
}

func (e *Engine) resetSlots() {
	e.slots = slotTable{}
	e.activeTouches = make([]activeTouch, 0, NumSlots)
}
