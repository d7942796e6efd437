package gfa

import (
	"fmt"
	"strings"

	"github.com/inodb/minigfa/internal/seqerr"
)

// Orientation is the direction in which a path traverses a segment.
type Orientation uint8

const (
	Forward Orientation = iota
	Reverse
)

func (o Orientation) String() string {
	if o == Reverse {
		return "-"
	}
	return "+"
}

// Step is one oriented segment reference of a path.
type Step struct {
	SegmentID   string
	Orientation Orientation
}

func (s Step) String() string {
	return s.SegmentID + s.Orientation.String()
}

// Path is an ordered list of oriented segment references, e.g. "s1+,s2-".
// Steps are kept in their textual form and interpreted on access; a
// referenced segment need not exist in the graph.
type Path struct {
	name  string
	steps []string
}

// NewPath creates a path from raw step strings.
func NewPath(name string, steps []string) *Path {
	return &Path{name: name, steps: steps}
}

// ParsePath parses a full P record line: P<TAB>name<TAB>steps[<TAB>...].
func ParsePath(line string) (*Path, error) {
	line = strings.TrimRight(line, "\r\n")
	fields := strings.SplitN(line, "\t", 4)
	if len(fields) < 3 || fields[0] != PathTag {
		return nil, seqerr.Recordf(0, seqerr.ErrMalformedRecord, "not a path record: %.40q", line)
	}
	if fields[1] == "" {
		return nil, seqerr.Recordf(0, seqerr.ErrMalformedRecord, "path record without name")
	}
	return NewPath(fields[1], strings.Split(fields[2], ",")), nil
}

// Name returns the path name.
func (p *Path) Name() string {
	return p.name
}

// Len returns the number of steps.
func (p *Path) Len() int {
	return len(p.steps)
}

// StepAt returns step i as written, orientation suffix included.
func (p *Path) StepAt(i int) string {
	return p.steps[i]
}

// IsReverse reports whether step i traverses its segment in reverse.
func (p *Path) IsReverse(i int) (bool, error) {
	step := p.steps[i]
	if step == "" {
		return false, fmt.Errorf("path %s step %d: empty step: %w", p.name, i, seqerr.ErrMalformedRecord)
	}
	switch step[len(step)-1] {
	case '+':
		return false, nil
	case '-':
		return true, nil
	default:
		return false, fmt.Errorf("path %s step %d %q: missing orientation: %w",
			p.name, i, step, seqerr.ErrMalformedRecord)
	}
}

// SegmentID returns the segment identifier of step i without its orientation.
func (p *Path) SegmentID(i int) string {
	step := p.steps[i]
	if step == "" {
		return ""
	}
	return step[:len(step)-1]
}

// Step returns step i in parsed form.
func (p *Path) Step(i int) (Step, error) {
	rev, err := p.IsReverse(i)
	if err != nil {
		return Step{}, err
	}
	id := p.SegmentID(i)
	if id == "" {
		return Step{}, fmt.Errorf("path %s step %d: empty segment id: %w", p.name, i, seqerr.ErrMalformedRecord)
	}
	o := Forward
	if rev {
		o = Reverse
	}
	return Step{SegmentID: id, Orientation: o}, nil
}

// Steps parses every step, failing on the first malformed one.
func (p *Path) Steps() ([]Step, error) {
	out := make([]Step, len(p.steps))
	for i := range p.steps {
		s, err := p.Step(i)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// PositionsByStep maps each distinct oriented step ("s1+", "s1-") to the
// ascending step indices where it occurs. The two orientations of a segment
// are tracked independently.
func (p *Path) PositionsByStep() map[string][]int {
	positions := make(map[string][]int)
	for i, step := range p.steps {
		positions[step] = append(positions[step], i)
	}
	return positions
}
