package dynamics

// Phase identifies one of the six block-partition passes of a full step.
type Phase uint8

const (
	XEven Phase = iota
	YOdd
	ZEven
	XOdd
	YEven
	ZOdd
)

// ForwardOrder is the phase sequence of one forward step. The reverse step
// applies the inverse of each phase in the opposite order.
var ForwardOrder = [6]Phase{XEven, YOdd, ZEven, XOdd, YEven, ZOdd}

// Axis returns the spatial axis (0, 1, 2) the phase pairs along.
func (p Phase) Axis() int {
	switch p {
	case XEven, XOdd:
		return 0
	case YOdd, YEven:
		return 1
	default:
		return 2
	}
}

// Parity returns the coordinate parity (0 or 1) of a block's lower node.
func (p Phase) Parity() int {
	switch p {
	case XEven, YEven, ZEven:
		return 0
	default:
		return 1
	}
}

func (p Phase) String() string {
	switch p {
	case XEven:
		return "x-even"
	case YOdd:
		return "y-odd"
	case ZEven:
		return "z-even"
	case XOdd:
		return "x-odd"
	case YEven:
		return "y-even"
	case ZOdd:
		return "z-odd"
	default:
		return "invalid"
	}
}
