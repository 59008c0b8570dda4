package extract

import (
	"math"

	"rsc.io/pdf"
)

// matrix is a PDF affine transform [a b c d e f].
type matrix [6]float64

var identity = matrix{1, 0, 0, 1, 0, 0}

// mul returns m × n.
func (m matrix) mul(n matrix) matrix {
	return matrix{
		m[0]*n[0] + m[1]*n[2],
		m[0]*n[1] + m[1]*n[3],
		m[2]*n[0] + m[3]*n[2],
		m[2]*n[1] + m[3]*n[3],
		m[4]*n[0] + m[5]*n[2] + n[4],
		m[4]*n[1] + m[5]*n[3] + n[5],
	}
}

func translate(tx, ty float64) matrix {
	return matrix{1, 0, 0, 1, tx, ty}
}

// textRun is one shown string in device space.
type textRun struct {
	x, y, w, size float64
	s             string
}

// gstate holds the parts of the graphics state that affect text placement.
type gstate struct {
	ctm    matrix
	font   pdf.Font
	enc    pdf.TextEncoding
	tfs    float64 // font size
	tc, tw float64 // character and word spacing
	th     float64 // horizontal scaling
	tl     float64 // leading
	rise   float64
}

// textInterpreter executes the text operators of a content stream and
// records every shown string.
type textInterpreter struct {
	page    pdf.Page
	g       gstate
	saved   []gstate
	tm, tlm matrix
	runs    []textRun
}

func newTextInterpreter(p pdf.Page) *textInterpreter {
	return &textInterpreter{
		page: p,
		g:    gstate{ctm: identity, th: 1},
		tm:   identity,
		tlm:  identity,
	}
}

func (in *textInterpreter) do(stk *pdf.Stack, op string) {
	n := stk.Len()
	args := make([]pdf.Value, n)
	for i := n - 1; i >= 0; i-- {
		args[i] = stk.Pop()
	}
	num := func(i int) float64 {
		if i < len(args) {
			return args[i].Float64()
		}
		return 0
	}

	switch op {
	case "q":
		in.saved = append(in.saved, in.g)
	case "Q":
		if len(in.saved) > 0 {
			in.g = in.saved[len(in.saved)-1]
			in.saved = in.saved[:len(in.saved)-1]
		}
	case "cm":
		if len(args) == 6 {
			in.g.ctm = matrix{num(0), num(1), num(2), num(3), num(4), num(5)}.mul(in.g.ctm)
		}
	case "BT":
		in.tm, in.tlm = identity, identity
	case "Tf":
		if len(args) == 2 {
			in.g.font = in.page.Font(args[0].Name())
			in.g.enc = in.g.font.Encoder()
			in.g.tfs = num(1)
		}
	case "Tc":
		in.g.tc = num(0)
	case "Tw":
		in.g.tw = num(0)
	case "Tz":
		in.g.th = num(0) / 100
	case "TL":
		in.g.tl = num(0)
	case "Ts":
		in.g.rise = num(0)
	case "Td":
		in.moveLine(num(0), num(1))
	case "TD":
		in.g.tl = -num(1)
		in.moveLine(num(0), num(1))
	case "Tm":
		if len(args) == 6 {
			in.tlm = matrix{num(0), num(1), num(2), num(3), num(4), num(5)}
			in.tm = in.tlm
		}
	case "T*":
		in.moveLine(0, -in.g.tl)
	case "Tj":
		if len(args) == 1 {
			in.show(args[0].RawString())
		}
	case "'":
		in.moveLine(0, -in.g.tl)
		if len(args) == 1 {
			in.show(args[0].RawString())
		}
	case "\"":
		if len(args) == 3 {
			in.g.tw, in.g.tc = num(0), num(1)
			in.moveLine(0, -in.g.tl)
			in.show(args[2].RawString())
		}
	case "TJ":
		if len(args) != 1 {
			return
		}
		arr := args[0]
		for i := 0; i < arr.Len(); i++ {
			v := arr.Index(i)
			if v.Kind() == pdf.String {
				in.show(v.RawString())
				continue
			}
			tx := -v.Float64() / 1000 * in.g.tfs * in.g.th
			in.tm = translate(tx, 0).mul(in.tm)
		}
	}
}

func (in *textInterpreter) moveLine(tx, ty float64) {
	in.tlm = translate(tx, ty).mul(in.tlm)
	in.tm = in.tlm
}

// show records raw as one run and advances the text matrix past it.
func (in *textInterpreter) show(raw string) {
	g := &in.g
	trm := matrix{g.tfs * g.th, 0, 0, g.tfs, 0, g.rise}.mul(in.tm).mul(g.ctm)

	var advance float64
	for i := 0; i < len(raw); i++ {
		w0 := g.font.Width(int(raw[i]))
		tx := w0/1000*g.tfs + g.tc
		if raw[i] == ' ' {
			tx += g.tw
		}
		advance += tx * g.th
	}

	text := raw
	if g.enc != nil {
		text = g.enc.Decode(raw)
	}

	dev := in.tm.mul(g.ctm)
	in.runs = append(in.runs, textRun{
		x:    trm[4],
		y:    trm[5],
		w:    advance * math.Hypot(dev[0], dev[1]),
		size: math.Hypot(trm[2], trm[3]),
		s:    text,
	})

	in.tm = translate(advance, 0).mul(in.tm)
}
