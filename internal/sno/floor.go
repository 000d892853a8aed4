package sno

// Floor classifies a logical mesh.
type Floor uint8

const (
	FloorIgnored Floor = iota + 1
	FloorFloor
	FloorWater
)

// Raw floor values as stored on disk.
const (
	rawFloorIgnored uint32 = 536870912
	rawFloorFloor   uint32 = 1073741825
	rawFloorWater   uint32 = 2147483648
)

// ParseFloor maps a raw u32 to a Floor. There is no fallback value.
func ParseFloor(raw uint32) (Floor, error) {
	switch raw {
	case rawFloorIgnored:
		return FloorIgnored, nil
	case rawFloorFloor:
		return FloorFloor, nil
	case rawFloorWater:
		return FloorWater, nil
	}
	return 0, &UnknownEnumValueError{Raw: raw}
}

// Raw returns the on-disk value of f.
func (f Floor) Raw() uint32 {
	switch f {
	case FloorIgnored:
		return rawFloorIgnored
	case FloorFloor:
		return rawFloorFloor
	case FloorWater:
		return rawFloorWater
	}
	return 0
}

func (f Floor) String() string {
	switch f {
	case FloorIgnored:
		return "ignored"
	case FloorFloor:
		return "floor"
	case FloorWater:
		return "water"
	}
	return "unknown"
}

// MarshalText lets floors key JSON maps and appear as names in reports.
func (f Floor) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}
