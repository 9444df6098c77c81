package topology

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	coordinateSeparator = ","
	valueSeparator      = "="
)

// Coordinate is one named component of a Location
type Coordinate struct {
	Name  string
	Value int
}

// Location is an ordered set of named coordinates, outermost first
type Location struct {
	coords []Coordinate
}

// ParseLocation parses "Pod=1,Rack=2,Drawer=3". An empty string is an empty Location.
func ParseLocation(s string) (Location, error) {
	var loc Location
	s = strings.TrimSpace(s)
	if s == "" {
		return loc, nil
	}

	for _, part := range strings.Split(s, coordinateSeparator) {
		name, value, ok := strings.Cut(part, valueSeparator)
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return Location{}, fmt.Errorf("malformed location coordinate %q in %q", part, s)
		}
		v, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return Location{}, fmt.Errorf("malformed location value for %s in %q: %w", name, s, err)
		}
		loc = loc.With(name, v)
	}
	return loc, nil
}

// NewLocation builds a Location from coordinates in order
func NewLocation(coords ...Coordinate) Location {
	var loc Location
	for _, c := range coords {
		loc = loc.With(c.Name, c.Value)
	}
	return loc
}

// With returns a copy of l with name set to value. An existing coordinate keeps
// its position; a new one is appended innermost.
func (l Location) With(name string, value int) Location {
	coords := make([]Coordinate, 0, len(l.coords)+1)
	replaced := false
	for _, c := range l.coords {
		if c.Name == name {
			c.Value = value
			replaced = true
		}
		coords = append(coords, c)
	}
	if !replaced {
		coords = append(coords, Coordinate{Name: name, Value: value})
	}
	return Location{coords: coords}
}

// Get returns the value of the named coordinate
func (l Location) Get(name string) (int, bool) {
	for _, c := range l.coords {
		if c.Name == name {
			return c.Value, true
		}
	}
	return 0, false
}

// Parent drops the innermost coordinate
func (l Location) Parent() Location {
	if len(l.coords) == 0 {
		return l
	}
	coords := make([]Coordinate, len(l.coords)-1)
	copy(coords, l.coords)
	return Location{coords: coords}
}

// Coordinates returns the coordinates, outermost first
func (l Location) Coordinates() []Coordinate {
	out := make([]Coordinate, len(l.coords))
	copy(out, l.coords)
	return out
}

// Len returns the number of coordinates
func (l Location) Len() int {
	return len(l.coords)
}

// IsEmpty reports whether l has no coordinates
func (l Location) IsEmpty() bool {
	return len(l.coords) == 0
}

// Equal compares coordinates and their order
func (l Location) Equal(other Location) bool {
	if len(l.coords) != len(other.coords) {
		return false
	}
	for i := range l.coords {
		if l.coords[i] != other.coords[i] {
			return false
		}
	}
	return true
}

func (l Location) String() string {
	parts := make([]string, len(l.coords))
	for i, c := range l.coords {
		parts[i] = c.Name + valueSeparator + strconv.Itoa(c.Value)
	}
	return strings.Join(parts, coordinateSeparator)
}
