package output

import (
	"bytes"
	"testing"

	"github.com/yndnr/respkv/pkg/resp"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatDefault, false},
		{"default", FormatDefault, false},
		{"RAW", FormatRaw, false},
		{"json", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

// ============================================================================
// Default style
// ============================================================================

func TestStyledFormatter(t *testing.T) {
	tests := []struct {
		name string
		v    resp.Value
		want string
	}{
		{"simple", resp.SimpleString("OK"), "OK\n"},
		{"error", resp.Error("ERR syntax error"), "(error) ERR syntax error\n"},
		{"integer", resp.Integer(-2), "(integer) -2\n"},
		{"bulk", resp.BulkString("hello"), "\"hello\"\n"},
		{"bulk escapes", resp.BulkString("a\r\nb"), "\"a\\r\\nb\"\n"},
		{"null bulk", resp.NullBulk(), "(nil)\n"},
		{"null array", resp.NullArray(), "(nil)\n"},
		{"empty array", resp.ArrayOf(), "(empty array)\n"},
		{
			"flat array",
			resp.ArrayOf(resp.BulkString("maxmemory"), resp.BulkString("0")),
			"1) \"maxmemory\"\n2) \"0\"\n",
		},
		{
			"nested array",
			resp.ArrayOf(resp.BulkString("a"), resp.ArrayOf(resp.Integer(1), resp.NullBulk())),
			"1) \"a\"\n2) 1) (integer) 1\n   2) (nil)\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := NewFormatter(FormatDefault).Format(&buf, tt.v); err != nil {
				t.Fatalf("Format() error = %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("Format() = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestStyledFormatter_WideIndex(t *testing.T) {
	elems := make([]resp.Value, 10)
	for i := range elems {
		elems[i] = resp.Integer(int64(i))
	}

	var buf bytes.Buffer
	NewFormatter(FormatDefault).Format(&buf, resp.ArrayOf(elems...))

	lines := bytes.Split(bytes.TrimSuffix(buf.Bytes(), []byte("\n")), []byte("\n"))
	if len(lines) != 10 {
		t.Fatalf("got %d lines, want 10", len(lines))
	}
	if string(lines[0]) != " 1) (integer) 0" || string(lines[9]) != "10) (integer) 9" {
		t.Errorf("unexpected alignment: %q ... %q", lines[0], lines[9])
	}
}

// ============================================================================
// Raw style
// ============================================================================

func TestRawFormatter(t *testing.T) {
	tests := []struct {
		name string
		v    resp.Value
		want string
	}{
		{"simple", resp.SimpleString("PONG"), "PONG\n"},
		{"error", resp.Error("ERR x"), "ERR x\n"},
		{"integer", resp.Integer(7), "7\n"},
		{"bulk kept verbatim", resp.BulkString("# Server\r\nk:v\r\n"), "# Server\r\nk:v\r\n\n"},
		{"null bulk", resp.NullBulk(), "\n"},
		{"array", resp.ArrayOf(resp.BulkString("a"), resp.Integer(2)), "a\n2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := NewFormatter(FormatRaw).Format(&buf, tt.v); err != nil {
				t.Fatalf("Format() error = %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("Format() = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}
