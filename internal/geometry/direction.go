package geometry

import (
	"fmt"
	"strings"
)

// Direction is a compass direction relative to a rectangle.
type Direction int

const (
	North Direction = iota
	South
	East
	West
)

var directionNames = [...]string{
	North: "north",
	South: "south",
	East:  "east",
	West:  "west",
}

func (d Direction) String() string {
	if d < North || d > West {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return directionNames[d]
}

// Opposite returns the direction facing away from d.
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	default:
		return East
	}
}

// ParseDirection accepts the lowercase names and the single-letter forms.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "north", "n", "up":
		return North, nil
	case "south", "s", "down":
		return South, nil
	case "east", "e", "right":
		return East, nil
	case "west", "w", "left":
		return West, nil
	}
	return North, fmt.Errorf("invalid direction %q", s)
}

func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(b []byte) error {
	v, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Tightness selects how strictly OnDirSide decides that a rectangle lies
// in a direction.
type Tightness int

const (
	Low Tightness = iota
	High
)

func (t Tightness) String() string {
	if t == High {
		return "high"
	}
	return "low"
}

func ParseTightness(s string) (Tightness, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return Low, nil
	case "high":
		return High, nil
	}
	return High, fmt.Errorf("invalid tightness %q (want low or high)", s)
}

func (t Tightness) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Tightness) UnmarshalText(b []byte) error {
	v, err := ParseTightness(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
