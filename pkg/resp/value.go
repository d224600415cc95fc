package resp

import "strconv"

// Kind identifies the wire type of a Value.
type Kind uint8

const (
	KindSimpleString Kind = iota + 1
	KindError
	KindInteger
	KindBulkString
	KindArray
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindSimpleString:
		return "simple-string"
	case KindError:
		return "error"
	case KindInteger:
		return "integer"
	case KindBulkString:
		return "bulk-string"
	case KindArray:
		return "array"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a tagged RESP value.
//
// Str carries the payload of SimpleString and Error values, Bulk the payload
// of BulkString values, Int the payload of Integer values and Array the
// elements of Array values. Null is meaningful only for BulkString and Array;
// a null value carries no payload.
type Value struct {
	Kind  Kind
	Str   string
	Int   int64
	Bulk  []byte
	Array []Value
	Null  bool
}

// SimpleString returns a simple string value.
func SimpleString(s string) Value {
	return Value{Kind: KindSimpleString, Str: s}
}

// Error returns an error value. The message is sent verbatim.
func Error(msg string) Value {
	return Value{Kind: KindError, Str: msg}
}

// Integer returns an integer value.
func Integer(n int64) Value {
	return Value{Kind: KindInteger, Int: n}
}

// Bulk returns a bulk string value. A nil slice is encoded as an empty,
// non-null bulk string; use NullBulk for the null value.
func Bulk(b []byte) Value {
	if b == nil {
		b = []byte{}
	}
	return Value{Kind: KindBulkString, Bulk: b}
}

// BulkString returns a bulk string value holding s.
func BulkString(s string) Value {
	return Value{Kind: KindBulkString, Bulk: []byte(s)}
}

// NullBulk returns the null bulk string ($-1).
func NullBulk() Value {
	return Value{Kind: KindBulkString, Null: true}
}

// ArrayOf returns an array value holding elems.
func ArrayOf(elems ...Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{Kind: KindArray, Array: elems}
}

// NullArray returns the null array (*-1).
func NullArray() Value {
	return Value{Kind: KindArray, Null: true}
}

// Command builds a request array of bulk strings from args.
func Command(args ...string) Value {
	elems := make([]Value, len(args))
	for i, a := range args {
		elems[i] = BulkString(a)
	}
	return ArrayOf(elems...)
}

// IsError reports whether v is an error value.
func (v Value) IsError() bool {
	return v.Kind == KindError
}

// BulkArgs returns the payloads of an array made only of non-null bulk
// strings. ok is false for any other shape, including a null array.
func (v Value) BulkArgs() (args [][]byte, ok bool) {
	if v.Kind != KindArray || v.Null {
		return nil, false
	}
	args = make([][]byte, len(v.Array))
	for i, e := range v.Array {
		if e.Kind != KindBulkString || e.Null {
			return nil, false
		}
		args[i] = e.Bulk
	}
	return args, true
}
