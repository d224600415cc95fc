package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/yndnr/respkv/pkg/resp"
)

// Format selects how replies are printed.
type Format string

const (
	FormatDefault Format = "default"
	FormatRaw     Format = "raw"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", FormatDefault:
		return FormatDefault, nil
	case FormatRaw:
		return FormatRaw, nil
	default:
		return "", fmt.Errorf("unknown output format %q", s)
	}
}

// Formatter writes replies to w.
type Formatter interface {
	Format(w io.Writer, v resp.Value) error
}

// NewFormatter creates a formatter for the given format.
func NewFormatter(format Format) Formatter {
	if format == FormatRaw {
		return rawFormatter{}
	}
	return styledFormatter{}
}

type styledFormatter struct{}

func (styledFormatter) Format(w io.Writer, v resp.Value) error {
	var b strings.Builder
	writeStyled(&b, v, "")
	_, err := io.WriteString(w, b.String())
	return err
}

// writeStyled renders v. indent is the column where nested array lines
// start.
func writeStyled(b *strings.Builder, v resp.Value, indent string) {
	switch v.Kind {
	case resp.KindSimpleString:
		b.WriteString(v.Str)
	case resp.KindError:
		b.WriteString("(error) ")
		b.WriteString(v.Str)
	case resp.KindInteger:
		b.WriteString("(integer) ")
		b.WriteString(strconv.FormatInt(v.Int, 10))
	case resp.KindBulkString:
		if v.Null {
			b.WriteString("(nil)")
		} else {
			b.WriteString(strconv.Quote(string(v.Bulk)))
		}
	case resp.KindArray:
		switch {
		case v.Null:
			b.WriteString("(nil)")
		case len(v.Array) == 0:
			b.WriteString("(empty array)")
		default:
			width := len(strconv.Itoa(len(v.Array)))
			for i, e := range v.Array {
				if i > 0 {
					b.WriteString(indent)
				}
				label := fmt.Sprintf("%*d) ", width, i+1)
				b.WriteString(label)
				writeStyled(b, e, indent+strings.Repeat(" ", len(label)))
				if i < len(v.Array)-1 {
					b.WriteByte('\n')
				}
			}
			if indent == "" {
				b.WriteByte('\n')
			}
			return
		}
	default:
		fmt.Fprintf(b, "(unknown %s)", v.Kind)
	}
	if indent == "" {
		b.WriteByte('\n')
	}
}

type rawFormatter struct{}

func (rawFormatter) Format(w io.Writer, v resp.Value) error {
	var b strings.Builder
	writeRaw(&b, v)
	_, err := io.WriteString(w, b.String())
	return err
}

func writeRaw(b *strings.Builder, v resp.Value) {
	switch v.Kind {
	case resp.KindSimpleString, resp.KindError:
		b.WriteString(v.Str)
	case resp.KindInteger:
		b.WriteString(strconv.FormatInt(v.Int, 10))
	case resp.KindBulkString:
		if !v.Null {
			b.Write(v.Bulk)
		}
	case resp.KindArray:
		for _, e := range v.Array {
			writeRaw(b, e)
		}
		return
	}
	b.WriteByte('\n')
}
