package stdlib

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/emberlang/ember/internal/value"
)

// newMathLibrary builds the `math` library: pi/e as constants (filled
// in from manifest.yaml by buildRegistry) plus the function table
// mirroring Elysabettian's Libraries/Math.cpp, implemented on Go's
// math package.
func newMathLibrary() *Library {
	return &Library{
		Name:      "math",
		Constants: make(map[string]value.Value),
		Functions: map[string]value.NativeFn{
			"sqrt":    oneArgNumeric("sqrt", math.Sqrt),
			"abs":     oneArgNumeric("abs", math.Abs),
			"floor":   oneArgNumeric("floor", math.Floor),
			"ceil":    oneArgNumeric("ceil", math.Ceil),
			"roundf":  oneArgNumeric("roundf", math.Round),
			"acos":    oneArgNumeric("acos", math.Acos),
			"acosh":   oneArgNumeric("acosh", math.Acosh),
			"asin":    oneArgNumeric("asin", math.Asin),
			"asinh":   oneArgNumeric("asinh", math.Asinh),
			"atanh":   oneArgNumeric("atanh", math.Atanh),
			"cbrt":    oneArgNumeric("cbrt", math.Cbrt),
			"cos":     oneArgNumeric("cos", math.Cos),
			"cosh":    oneArgNumeric("cosh", math.Cosh),
			"exp":     oneArgNumeric("exp", math.Exp),
			"expm1":   oneArgNumeric("expm1", math.Expm1),
			"log":     oneArgNumeric("log", math.Log),
			"log10":   oneArgNumeric("log10", math.Log10),
			"log1p":   oneArgNumeric("log1p", math.Log1p),
			"log2":    oneArgNumeric("log2", math.Log2),
			"sin":     oneArgNumeric("sin", math.Sin),
			"sinh":    oneArgNumeric("sinh", math.Sinh),
			"signbit": mathSignbit,
			"pow":     mathPow,
			"atan2":   twoArgNumeric("atan2", math.Atan2),
			"hypot":   twoArgNumeric("hypot", math.Hypot),
			"random":  mathRandom,
			"min":     variadicNumeric("min", math.Min, math.Inf(1)),
			"max":     variadicNumeric("max", math.Max, math.Inf(-1)),
			"sum":     mathSum,
		},
	}
}

func oneArgNumeric(name string, fn func(float64) float64) value.NativeFn {
	return func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return value.Null, fmt.Errorf("%s() expects 1 argument, got %d", name, len(args))
		}
		if args[0].Kind() != value.KindNumber {
			return value.Null, fmt.Errorf("%s() expects a number argument", name)
		}
		return value.Number(fn(args[0].AsNumber())), nil
	}
}

func twoArgNumeric(name string, fn func(float64, float64) float64) value.NativeFn {
	return func(args []value.Value) (value.Value, error) {
		if len(args) != 2 || args[0].Kind() != value.KindNumber || args[1].Kind() != value.KindNumber {
			return value.Null, fmt.Errorf("%s() expects 2 number arguments", name)
		}
		return value.Number(fn(args[0].AsNumber(), args[1].AsNumber())), nil
	}
}

func mathPow(args []value.Value) (value.Value, error) {
	if len(args) != 2 || args[0].Kind() != value.KindNumber || args[1].Kind() != value.KindNumber {
		return value.Null, fmt.Errorf("pow() expects 2 number arguments")
	}
	return value.Number(math.Pow(args[0].AsNumber(), args[1].AsNumber())), nil
}

func mathSignbit(args []value.Value) (value.Value, error) {
	if len(args) != 1 || args[0].Kind() != value.KindNumber {
		return value.Null, fmt.Errorf("signbit() expects 1 number argument")
	}
	return value.Bool(math.Signbit(args[0].AsNumber())), nil
}

func mathRandom(args []value.Value) (value.Value, error) {
	if len(args) != 2 || args[0].Kind() != value.KindNumber || args[1].Kind() != value.KindNumber {
		return value.Null, fmt.Errorf("random() expects 2 number arguments")
	}
	lo, hi := args[0].AsNumber(), args[1].AsNumber()
	return value.Number(lo + rand.Float64()*(hi-lo)), nil
}

// variadicNumeric folds fn (math.Min or math.Max) over one or more
// numeric arguments, matching Elysabettian's variadic min/max rather
// than this library's earlier fixed-arity-2 versions.
func variadicNumeric(name string, fn func(float64, float64) float64, identity float64) value.NativeFn {
	return func(args []value.Value) (value.Value, error) {
		if len(args) < 1 {
			return value.Null, fmt.Errorf("%s() expects at least 1 argument", name)
		}
		result := identity
		for _, a := range args {
			if a.Kind() != value.KindNumber {
				return value.Null, fmt.Errorf("%s() operands must be numbers", name)
			}
			result = fn(result, a.AsNumber())
		}
		return value.Number(result), nil
	}
}

func mathSum(args []value.Value) (value.Value, error) {
	if len(args) < 1 {
		return value.Null, fmt.Errorf("sum() expects at least 1 argument")
	}
	total := 0.0
	for _, a := range args {
		if a.Kind() != value.KindNumber {
			return value.Null, fmt.Errorf("sum() operands must be numbers")
		}
		total += a.AsNumber()
	}
	return value.Number(total), nil
}
