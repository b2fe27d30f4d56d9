package mode

import "fmt"

// Mode selects which charts an HTML report contains.
type Mode uint8

const (
	All Mode = iota
	Streamlines
	Magnitude
)

func UnmarshalText(text string) (Mode, error) {
	switch text {
	case "a":
		return All, nil
	case "s":
		return Streamlines, nil
	case "m":
		return Magnitude, nil
	default:
		return 0, fmt.Errorf("invalid mode: %q", text)
	}
}

func (m Mode) Streamlines() bool {
	return m == All || m == Streamlines
}

func (m Mode) Magnitude() bool {
	return m == All || m == Magnitude
}
