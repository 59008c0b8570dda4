package extract

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"

	"rsc.io/pdf"
)

// PDF extracts text in-process with rsc.io/pdf.
type PDF struct{}

// NewPDF creates an in-process extractor.
func NewPDF() *PDF {
	return &PDF{}
}

// ExtractText concatenates the text of every page in order, with no
// separator between pages. Pages without text contribute "". The file is
// closed before returning on every path.
func (e *PDF) ExtractText(ctx context.Context, pdfPath string) (text string, err error) {
	f, err := os.Open(pdfPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}

	// rsc.io/pdf reports malformed input by panicking.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("malformed PDF %s: %v", pdfPath, r)
		}
	}()

	r, err := pdf.NewReader(f, info.Size())
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		b.WriteString(pageText(r.Page(i)))
	}
	return b.String(), nil
}

// contentStreams returns the page's content streams in order. /Contents may
// be a single stream or an array of streams that form one logical stream.
func contentStreams(p pdf.Page) []pdf.Value {
	contents := p.V.Key("Contents")
	switch contents.Kind() {
	case pdf.Stream:
		return []pdf.Value{contents}
	case pdf.Array:
		streams := make([]pdf.Value, 0, contents.Len())
		for i := 0; i < contents.Len(); i++ {
			if s := contents.Index(i); s.Kind() == pdf.Stream {
				streams = append(streams, s)
			}
		}
		return streams
	}
	return nil
}

// pageText rebuilds running text from positioned text runs. A baseline move
// of more than half the font size starts a new line; a horizontal gap wider
// than a fifth of the font size becomes a space.
func pageText(p pdf.Page) string {
	if p.V.IsNull() {
		return ""
	}
	streams := contentStreams(p)
	if len(streams) == 0 {
		return ""
	}

	// Graphics and text state carry over from one stream to the next.
	in := newTextInterpreter(p)
	for _, s := range streams {
		pdf.Interpret(s, in.do)
	}

	var b strings.Builder
	var prev textRun
	for i, t := range in.runs {
		if i > 0 {
			size := math.Max(t.size, prev.size)
			switch {
			case math.Abs(t.y-prev.y) > 0.5*size:
				b.WriteByte('\n')
			case t.x-(prev.x+prev.w) > 0.2*size &&
				!strings.HasSuffix(prev.s, " ") && !strings.HasPrefix(t.s, " "):
				b.WriteByte(' ')
			}
		}
		b.WriteString(t.s)
		prev = t
	}
	return b.String()
}
