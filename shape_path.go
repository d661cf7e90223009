package easel

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/gogpu/gg"
)

// PathCommand is one absolute path command: M, L, C, Q or Z.
type PathCommand struct {
	Op   byte
	Args []float64
}

// Path is a free-form outline. Commands are absolute; PathOffset is the
// centre of their bounds, which maps to the object's centre.
type Path struct {
	Commands   []PathCommand
	PathOffset Point
	// SourcePath, when set, is emitted instead of the commands by dataless
	// serialization.
	SourcePath string
}

// NewPath parses SVG path data and returns a path object positioned at its
// bounds.
func NewPath(d string) (*Object, error) {
	cmds, err := ParsePathData(d)
	if err != nil {
		return nil, err
	}
	return NewPathFromCommands(cmds), nil
}

// NewPathFromCommands returns a path object over already absolute commands.
func NewPathFromCommands(cmds []PathCommand) *Object {
	p := &Path{Commands: cmds}
	o := NewObject(p)
	b := p.bounds()
	o.Left, o.Top = b.X, b.Y
	p.setDimensions(o)
	return o
}

func (*Path) Type() string { return "path" }

// setDimensions recomputes size and PathOffset from the commands.
func (p *Path) setDimensions(o *Object) {
	b := p.bounds()
	o.Width, o.Height = b.Width, b.Height
	p.PathOffset = Pt(b.X+b.Width/2, b.Y+b.Height/2)
}

// bounds returns the command bounds, sampling curves.
func (p *Path) bounds() Rect {
	var pts []Point
	var cur, start Point
	for _, c := range p.Commands {
		switch c.Op {
		case 'M':
			cur = Pt(c.Args[0], c.Args[1])
			start = cur
			pts = append(pts, cur)
		case 'L':
			cur = Pt(c.Args[0], c.Args[1])
			pts = append(pts, cur)
		case 'Q':
			c1, end := Pt(c.Args[0], c.Args[1]), Pt(c.Args[2], c.Args[3])
			for i := 1; i <= 16; i++ {
				t := float64(i) / 16
				pts = append(pts, quadAt(cur, c1, end, t))
			}
			cur = end
		case 'C':
			c1, c2, end := Pt(c.Args[0], c.Args[1]), Pt(c.Args[2], c.Args[3]), Pt(c.Args[4], c.Args[5])
			for i := 1; i <= 16; i++ {
				t := float64(i) / 16
				pts = append(pts, cubicAt(cur, c1, c2, end, t))
			}
			cur = end
		case 'Z':
			cur = start
		}
	}
	return boundsOf(pts)
}

func quadAt(p0, p1, p2 Point, t float64) Point {
	mt := 1 - t
	return Pt(mt*mt*p0.X+2*mt*t*p1.X+t*t*p2.X, mt*mt*p0.Y+2*mt*t*p1.Y+t*t*p2.Y)
}

func cubicAt(p0, p1, p2, p3 Point, t float64) Point {
	mt := 1 - t
	a, b, c, d := mt*mt*mt, 3*mt*mt*t, 3*mt*t*t, t*t*t
	return Pt(a*p0.X+b*p1.X+c*p2.X+d*p3.X, a*p0.Y+b*p1.Y+c*p2.Y+d*p3.Y)
}

func (p *Path) Render(o *Object, dc *gg.Context, rs RenderState) {
	dc.ClearPath()
	traceCommands(dc, p.Commands, p.PathOffset.X, p.PathOffset.Y)
	o.fillAndStroke(dc, rs)
}

// traceCommands appends cmds to the current path, shifted by (-ox, -oy).
func traceCommands(dc *gg.Context, cmds []PathCommand, ox, oy float64) {
	for _, c := range cmds {
		a := c.Args
		switch c.Op {
		case 'M':
			dc.MoveTo(a[0]-ox, a[1]-oy)
		case 'L':
			dc.LineTo(a[0]-ox, a[1]-oy)
		case 'Q':
			dc.QuadraticTo(a[0]-ox, a[1]-oy, a[2]-ox, a[3]-oy)
		case 'C':
			dc.CubicTo(a[0]-ox, a[1]-oy, a[2]-ox, a[3]-oy, a[4]-ox, a[5]-oy)
		case 'Z':
			dc.ClosePath()
		}
	}
}

func (p *Path) Props(o *Object, opts SerializeOptions) map[string]any {
	if opts.Dataless && p.SourcePath != "" {
		return map[string]any{"sourcePath": p.SourcePath}
	}
	return map[string]any{"path": commandsValue(p.Commands)}
}

func commandsValue(cmds []PathCommand) []any {
	out := make([]any, len(cmds))
	for i, c := range cmds {
		row := make([]any, 0, len(c.Args)+1)
		row = append(row, string(c.Op))
		for _, v := range c.Args {
			row = append(row, round(v))
		}
		out[i] = row
	}
	return out
}

func (p *Path) SVG(o *Object) string {
	return fmt.Sprintf(`<path d="%s" stroke-linecap="round" transform="translate(%s, %s)" style="%s" />`,
		PathData(p.Commands), num(-p.PathOffset.X), num(-p.PathOffset.Y), o.svgStyle())
}

// PathData formats commands as SVG path data.
func PathData(cmds []PathCommand) string {
	var b strings.Builder
	for i, c := range cmds {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteByte(c.Op)
		for _, v := range c.Args {
			b.WriteByte(' ')
			b.WriteString(num(v))
		}
	}
	return b.String()
}

// parseCommandsValue reads the serialized [["M", x, y], ...] form.
func parseCommandsValue(v any) ([]PathCommand, error) {
	rows, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: path is not an array", ErrInvalidScene)
	}
	cmds := make([]PathCommand, 0, len(rows))
	for _, r := range rows {
		row, ok := r.([]any)
		if !ok || len(row) == 0 {
			return nil, fmt.Errorf("%w: malformed path command", ErrInvalidScene)
		}
		op, ok := row[0].(string)
		if !ok || op == "" {
			return nil, fmt.Errorf("%w: malformed path command", ErrInvalidScene)
		}
		args := make([]float64, 0, len(row)-1)
		for _, a := range row[1:] {
			f, ok := a.(float64)
			if !ok {
				return nil, fmt.Errorf("%w: non-numeric path argument", ErrInvalidScene)
			}
			args = append(args, f)
		}
		cmds = append(cmds, PathCommand{Op: op[0], Args: args})
	}
	return normalizeCommands(cmds)
}

// ParsePathData parses SVG path data with M, L, H, V, C, Q and Z commands in
// absolute or relative form, returning absolute M, L, C, Q and Z commands.
func ParsePathData(d string) ([]PathCommand, error) {
	var cmds []PathCommand
	var op byte
	var args []float64
	flush := func() {
		if op != 0 {
			cmds = append(cmds, PathCommand{Op: op, Args: args})
		}
		args = nil
	}
	i := 0
	for i < len(d) {
		ch := d[i]
		switch {
		case unicode.IsLetter(rune(ch)):
			flush()
			op = ch
			i++
		case ch == ' ' || ch == ',' || ch == '\n' || ch == '\t' || ch == '\r':
			i++
		default:
			j := scanNumber(d, i)
			if j == i {
				return nil, fmt.Errorf("%w: bad path data at %d", ErrInvalidScene, i)
			}
			v, err := strconv.ParseFloat(d[i:j], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bad number %q", ErrInvalidScene, d[i:j])
			}
			args = append(args, v)
			i = j
		}
	}
	flush()
	return normalizeCommands(cmds)
}

func scanNumber(s string, i int) int {
	j := i
	if j < len(s) && (s[j] == '-' || s[j] == '+') {
		j++
	}
	dot, exp := false, false
	for j < len(s) {
		c := s[j]
		switch {
		case c >= '0' && c <= '9':
		case c == '.' && !dot && !exp:
			dot = true
		case (c == 'e' || c == 'E') && !exp && j > i:
			exp = true
			if j+1 < len(s) && (s[j+1] == '-' || s[j+1] == '+') {
				j++
			}
		default:
			return j
		}
		j++
	}
	return j
}

var commandArity = map[byte]int{'M': 2, 'L': 2, 'H': 1, 'V': 1, 'C': 6, 'Q': 4, 'Z': 0}

// normalizeCommands expands repeated argument groups and converts relative,
// horizontal and vertical commands to absolute M, L, C, Q and Z.
func normalizeCommands(in []PathCommand) ([]PathCommand, error) {
	var out []PathCommand
	var cur, start Point
	for _, c := range in {
		upper := byte(unicode.ToUpper(rune(c.Op)))
		rel := c.Op != upper
		n, ok := commandArity[upper]
		if !ok {
			return nil, fmt.Errorf("%w: unsupported path command %q", ErrInvalidScene, c.Op)
		}
		if n == 0 {
			out = append(out, PathCommand{Op: 'Z'})
			cur = start
			continue
		}
		if len(c.Args) == 0 || len(c.Args)%n != 0 {
			return nil, fmt.Errorf("%w: command %q has %d arguments", ErrInvalidScene, c.Op, len(c.Args))
		}
		for k := 0; k < len(c.Args); k += n {
			a := c.Args[k : k+n]
			op := upper
			if op == 'M' && k > 0 {
				op = 'L'
			}
			switch op {
			case 'M', 'L':
				p := Pt(a[0], a[1])
				if rel {
					p = p.Add(cur)
				}
				out = append(out, PathCommand{Op: op, Args: []float64{p.X, p.Y}})
				cur = p
				if op == 'M' {
					start = p
				}
			case 'H':
				x := a[0]
				if rel {
					x += cur.X
				}
				cur = Pt(x, cur.Y)
				out = append(out, PathCommand{Op: 'L', Args: []float64{cur.X, cur.Y}})
			case 'V':
				y := a[0]
				if rel {
					y += cur.Y
				}
				cur = Pt(cur.X, y)
				out = append(out, PathCommand{Op: 'L', Args: []float64{cur.X, cur.Y}})
			case 'C', 'Q':
				args := make([]float64, n)
				copy(args, a)
				if rel {
					for j := 0; j < n; j += 2 {
						args[j] += cur.X
						args[j+1] += cur.Y
					}
				}
				out = append(out, PathCommand{Op: op, Args: args})
				cur = Pt(args[n-2], args[n-1])
			}
		}
	}
	return out, nil
}

// polyPathLength is used by the pencil brush to drop degenerate strokes.
func polyPathLength(pts []Point) float64 {
	l := 0.0
	for i := 1; i < len(pts); i++ {
		l += math.Hypot(pts[i].X-pts[i-1].X, pts[i].Y-pts[i-1].Y)
	}
	return l
}
