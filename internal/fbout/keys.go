package fbout

import "encoding/binary"

// Linux input-event-codes.h
const (
	evKey = 0x01

	KeyEsc   = 1
	Key1     = 2
	Key0     = 11
	KeyQ     = 16
	KeyP     = 25
	KeyT     = 20
	KeyC     = 46
	KeyN     = 49
	KeyM     = 50
	KeySpace = 57
	KeyF4    = 62
	KeyUp    = 103
	KeyLeft  = 105
	KeyRight = 106
	KeyDown  = 108
)

// Key values of an EV_KEY event.
const (
	Released = 0
	Pressed  = 1
	Repeated = 2
)

// KeyEvent is one EV_KEY record.
type KeyEvent struct {
	Code  uint16
	Value int32
}

// eventSize is the size of a struct input_event whose timeval takes tvSize
// bytes.
func eventSize(tvSize int) int { return tvSize + 2 + 2 + 4 }

// parseEvents decodes the key events in buf, a run of little-endian
// input_event records. Trailing partial records and non-key events are
// skipped.
func parseEvents(buf []byte, tvSize int) []KeyEvent {
	size := eventSize(tvSize)
	var out []KeyEvent
	for off := 0; off+size <= len(buf); off += size {
		rec := buf[off : off+size]
		if binary.LittleEndian.Uint16(rec[tvSize:]) != evKey {
			continue
		}
		out = append(out, KeyEvent{
			Code:  binary.LittleEndian.Uint16(rec[tvSize+2:]),
			Value: int32(binary.LittleEndian.Uint32(rec[tvSize+4:])),
		})
	}
	return out
}
