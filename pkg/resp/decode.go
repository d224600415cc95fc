package resp

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
)

// Protocol limits. A header that announces more than these is rejected
// before any payload is buffered.
const (
	// MaxDepth limits array nesting. Requests are flat arrays; replies nest
	// at most one level, so 8 leaves ample headroom.
	MaxDepth = 8

	// MaxArrayLen limits the number of elements in a single array.
	MaxArrayLen = 1 << 20

	// MaxBulkLen limits the size of a single bulk string (64MB).
	MaxBulkLen = 64 << 20

	// MaxLineLen limits simple strings, errors and length headers (64KB).
	MaxLineLen = 64 << 10
)

var (
	// ErrIncomplete reports that buf holds a valid prefix of a value but not
	// the whole value. No bytes were consumed.
	ErrIncomplete = errors.New("resp: incomplete value")

	// ErrProtocol reports malformed input. The caller must resynchronize.
	ErrProtocol = errors.New("resp: protocol error")

	// ErrLimitExceeded reports input that violates a protocol limit.
	// Errors wrapping it also match ErrProtocol.
	ErrLimitExceeded = errors.New("resp: limit exceeded")
)

var crlf = []byte("\r\n")

// Decode decodes the first complete value in buf.
//
// On success it returns the value and the number of bytes it occupies.
// When buf holds only a prefix of a value it returns ErrIncomplete and
// consumes nothing, so the caller can append more input and retry.
// Malformed input yields an error wrapping ErrProtocol.
//
// Decoded payloads never alias buf.
func Decode(buf []byte) (Value, int, error) {
	return decode(buf, 0)
}

func decode(buf []byte, depth int) (Value, int, error) {
	if len(buf) == 0 {
		return Value{}, 0, ErrIncomplete
	}

	switch buf[0] {
	case '+':
		line, next, err := readLine(buf, 1)
		if err != nil {
			return Value{}, 0, err
		}
		return SimpleString(string(line)), next, nil
	case '-':
		line, next, err := readLine(buf, 1)
		if err != nil {
			return Value{}, 0, err
		}
		return Error(string(line)), next, nil
	case ':':
		n, next, err := readInteger(buf, 1)
		if err != nil {
			return Value{}, 0, err
		}
		return Integer(n), next, nil
	case '$':
		return decodeBulk(buf)
	case '*':
		return decodeArray(buf, depth)
	default:
		return Value{}, 0, fmt.Errorf("%w: unknown type marker %q", ErrProtocol, buf[0])
	}
}

func decodeBulk(buf []byte) (Value, int, error) {
	n, next, err := readInteger(buf, 1)
	if err != nil {
		return Value{}, 0, err
	}
	if n == -1 {
		return NullBulk(), next, nil
	}
	if n < -1 {
		return Value{}, 0, fmt.Errorf("%w: invalid bulk length %d", ErrProtocol, n)
	}
	if n > MaxBulkLen {
		return Value{}, 0, limitError("bulk length %d exceeds limit %d", n, MaxBulkLen)
	}

	end := next + int(n)
	if len(buf) < end+2 {
		return Value{}, 0, ErrIncomplete
	}
	if buf[end] != '\r' || buf[end+1] != '\n' {
		return Value{}, 0, fmt.Errorf("%w: bulk string missing terminator", ErrProtocol)
	}
	return Bulk(bytes.Clone(buf[next:end])), end + 2, nil
}

func decodeArray(buf []byte, depth int) (Value, int, error) {
	n, next, err := readInteger(buf, 1)
	if err != nil {
		return Value{}, 0, err
	}
	if n == -1 {
		return NullArray(), next, nil
	}
	if n < -1 {
		return Value{}, 0, fmt.Errorf("%w: invalid array length %d", ErrProtocol, n)
	}
	if n > MaxArrayLen {
		return Value{}, 0, limitError("array length %d exceeds limit %d", n, MaxArrayLen)
	}
	if n > 0 && depth >= MaxDepth {
		return Value{}, 0, limitError("array nesting exceeds depth %d", MaxDepth)
	}

	// The count is untrusted; grow as elements actually arrive.
	elems := make([]Value, 0, min(int(n), 16))
	cursor := next
	for i := int64(0); i < n; i++ {
		if cursor >= len(buf) {
			return Value{}, 0, ErrIncomplete
		}
		v, used, err := decode(buf[cursor:], depth+1)
		if err != nil {
			return Value{}, 0, err
		}
		elems = append(elems, v)
		cursor += used
	}
	return ArrayOf(elems...), cursor, nil
}

// readLine returns the bytes between start and the first CRLF, and the
// offset just past the CRLF.
func readLine(buf []byte, start int) ([]byte, int, error) {
	i := bytes.Index(buf[start:], crlf)
	if i < 0 {
		if len(buf)-start > MaxLineLen {
			return nil, 0, limitError("line length exceeds limit %d", MaxLineLen)
		}
		return nil, 0, ErrIncomplete
	}
	if i > MaxLineLen {
		return nil, 0, limitError("line length exceeds limit %d", MaxLineLen)
	}
	return buf[start : start+i], start + i + 2, nil
}

// readInteger reads a CRLF-terminated signed decimal starting at start.
func readInteger(buf []byte, start int) (int64, int, error) {
	line, next, err := readLine(buf, start)
	if err != nil {
		return 0, 0, err
	}
	n, err := parseInteger(line)
	if err != nil {
		return 0, 0, err
	}
	return n, next, nil
}

func parseInteger(line []byte) (int64, error) {
	digits := line
	if len(digits) > 0 && (digits[0] == '+' || digits[0] == '-') {
		digits = digits[1:]
	}
	if len(digits) == 0 {
		return 0, fmt.Errorf("%w: invalid integer %q", ErrProtocol, line)
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%w: invalid integer %q", ErrProtocol, line)
		}
	}
	n, err := strconv.ParseInt(string(line), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: integer out of range %q", ErrProtocol, line)
	}
	return n, nil
}

func limitError(format string, args ...any) error {
	return fmt.Errorf("%w: %w: "+format, append([]any{ErrProtocol, ErrLimitExceeded}, args...)...)
}
