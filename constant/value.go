package constant

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
)

type Type int

const (
	Illegal = Type(iota)
	Bool
	String
	Int
)

func (t Type) String() string {
	switch t {
	case Illegal:
		return "illegal"
	case Int:
		return "int"
	case String:
		return "string"
	case Bool:
		return "bool"
	default:
		panic("unknown type")
	}
}

type Value interface {
	// Type returns the Type of the Value.
	Type() Type
	// String returns the original literal of the Value.
	String() string
	// any must return the underlying value.
	any() any
}

// FromLiteral creates a Value from the literal text of the given kind.
// String literals are expected to be unquoted already.
func FromLiteral(kind Type, literal string) (Value, error) {
	switch kind {
	case Int:
		return makeInt(literal)
	case Bool:
		return makeBool(literal)
	case String:
		return makeString(literal), nil
	default:
		return nil, fmt.Errorf("unexpected literal kind %s", kind)
	}
}

// AsUint returns the value as an unsigned word.
func AsUint(value Value) (uint64, error) {
	intVal, ok := value.(intValue)
	if !ok {
		return 0, errors.New("value is not an integer")
	}
	if intVal.v.Sign() < 0 {
		return 0, errors.New("value is negative")
	}
	if intVal.v.BitLen() > 64 {
		return 0, errors.New("value is too big for unsigned int")
	}
	return intVal.v.Uint64(), nil
}

// AsInt returns the value as a signed word.
func AsInt(value Value) (int64, error) {
	intVal, ok := value.(intValue)
	if !ok {
		return 0, errors.New("value is not an integer")
	}
	if !intVal.v.IsInt64() {
		return 0, errors.New("value is too big for signed int")
	}
	return intVal.v.Int64(), nil
}

// AsWord returns the 64-bit two's complement representation of an
// integer or bool value.
func AsWord(value Value) (uint64, error) {
	switch v := value.(type) {
	case boolValue:
		if v.v {
			return 1, nil
		}
		return 0, nil
	case intValue:
		if v.v.Sign() < 0 {
			i, err := AsInt(v)
			return uint64(i), err
		}
		return AsUint(v)
	default:
		return 0, fmt.Errorf("%s value has no word representation", value.Type())
	}
}

func AsBool(value Value) (bool, error) {
	boolValue, ok := value.(boolValue)
	if !ok {
		return false, errors.New("value is not a boolean")
	}
	return boolValue.v, nil
}

func AsString(value Value) (string, error) {
	str, ok := value.(stringValue)
	if !ok {
		return "", errors.New("value is not a string")
	}
	return str.v, nil
}

func As[T any](value Value) (T, bool) {
	v, ok := (value.any()).(T)
	return v, ok
}

// Negate returns -value for integer values.
func Negate(value Value) (Value, error) {
	intVal, ok := value.(intValue)
	if !ok {
		return nil, errors.New("value is not an integer")
	}
	n := new(big.Int).Neg(intVal.v)
	if n.Cmp(big.NewInt(math.MinInt64)) < 0 {
		return nil, fmt.Errorf("-%s overflows signed int", intVal.literal)
	}
	return intValue{literal: n.String(), v: n}, nil
}

// IsNegative reports whether value is an integer below zero.
func IsNegative(value Value) bool {
	intVal, ok := value.(intValue)
	return ok && intVal.v.Sign() < 0
}

type boolValue struct {
	literal string
	v       bool
}

func (b boolValue) Type() Type {
	return Bool
}

func (b boolValue) String() string {
	return b.literal
}

func (b boolValue) any() any {
	return b.v
}

func makeBool(literal string) (Value, error) {
	v, err := strconv.ParseBool(literal)
	if err != nil {
		return nil, fmt.Errorf("failed to convert literal to bool: %w", err)
	}

	return boolValue{
		literal: literal,
		v:       v,
	}, nil
}

type stringValue struct {
	v string
}

func (str stringValue) Type() Type {
	return String
}

func (str stringValue) String() string {
	return strconv.Quote(str.v)
}

func (str stringValue) any() any {
	return str.v
}

func makeString(literal string) Value {
	return stringValue{v: literal}
}

type intValue struct {
	literal string
	v       *big.Int
}

func (iv intValue) Type() Type {
	return Int
}

func (iv intValue) String() string {
	return iv.literal
}

func (iv intValue) any() any {
	return iv.v.Int64()
}

func makeInt(literal string) (Value, error) {
	bigInt, ok := new(big.Int).SetString(literal, 0)
	if !ok {
		return nil, fmt.Errorf("%s is not a valid integer", literal)
	}
	if bigInt.BitLen() > 64 {
		return nil, fmt.Errorf("%s does not fit into a word", literal)
	}

	return intValue{
		literal: literal,
		v:       bigInt,
	}, nil
}
