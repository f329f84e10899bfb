package constant

import (
	"fmt"
	"math/big"
)

func Make(v any) Value {
	switch underlyingV := v.(type) {
	case int:
		return MakeInt(int64(underlyingV))
	case int64:
		return MakeInt(underlyingV)
	case uint64:
		return MakeUint(underlyingV)
	case bool:
		return MakeBool(underlyingV)
	case string:
		return MakeString(underlyingV)
	default:
		panic(fmt.Sprintf("unsupported type %T", v))
	}
}

func MakeInt(v int64) Value {
	return intValue{
		literal: fmt.Sprintf("%d", v),
		v:       big.NewInt(v),
	}
}

func MakeUint(v uint64) Value {
	return intValue{
		literal: fmt.Sprintf("%d", v),
		v:       new(big.Int).SetUint64(v),
	}
}

func MakeString(v string) Value {
	return stringValue{v: v}
}

func MakeBool(v bool) Value {
	return boolValue{
		literal: fmt.Sprintf("%v", v),
		v:       v,
	}
}
