// Package stdlib registers ember's native-function surface: the
// always-on builtins (clock, date, version, exit, string, import) and
// the importable libraries (math, stdio, cstdio) that import() can
// pull into globals, per SPEC_FULL.md §6.1/§6.3.
package stdlib

import (
	"fmt"
	"os"
	"time"

	"github.com/emberlang/ember/internal/value"
)

const version = "0.1.0"

// registrar is the minimal surface Install needs from a *vm.VM,
// expressed as an interface so this package never imports internal/vm
// directly — it only needs to push globals, the same capability a
// script's own `var` declarations use.
type registrar interface {
	DefineGlobal(name string, v value.Value)
}

// Install registers every always-on builtin and makes the importable
// libraries available to a subsequent `import(name)` call.
func Install(v registrar) {
	libs, err := buildRegistry()
	if err != nil {
		// The manifest is compiled into the binary; a parse failure here
		// is a packaging defect, not a user-facing runtime condition.
		panic(fmt.Sprintf("stdlib: invalid manifest: %v", err))
	}

	native := func(name string, fn value.NativeFn) {
		v.DefineGlobal(name, value.Obj(value.KindNative, &value.NativeFunction{Name: name, Fn: fn}))
	}

	native("clock", nativeClock)
	native("date", nativeDate)
	native("version", nativeVersion)
	native("exit", nativeExit)
	native("string", nativeString)
	native("import", nativeImport(v, libs))
}

func nativeClock(args []value.Value) (value.Value, error) {
	return value.Number(float64(time.Now().UnixNano()) / 1e9), nil
}

func nativeDate(args []value.Value) (value.Value, error) {
	return value.Str(time.Now().Format("2006-01-02 15:04:05")), nil
}

func nativeVersion(args []value.Value) (value.Value, error) {
	return value.Str(version), nil
}

func nativeExit(args []value.Value) (value.Value, error) {
	code := 0
	if len(args) == 1 && args[0].Kind() == value.KindNumber {
		code = int(args[0].AsNumber())
	}
	os.Exit(code)
	return value.Null, nil
}

// nativeString renders its argument as a string, per SPEC_FULL.md
// §6.3. For a number it groups thousands (e.g. 1234567 -> "1,234,567")
// via value.Humanize rather than the plain, ungrouped rendering that
// backs `print` and Add's string-coercion, since a value explicitly
// converted for display benefits from the grouping a mid-expression
// concatenation would not want.
func nativeString(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Null, fmt.Errorf("string() expects 1 argument, got %d", len(args))
	}
	if args[0].Kind() == value.KindNumber {
		return value.Str(value.Humanize(args[0].AsNumber())), nil
	}
	return value.Str(args[0].String()), nil
}

// nativeImport implements `import(name)`: on a known library name it
// installs that library's functions and constants into globals and
// returns true; on an unknown name it prints a diagnostic to stderr
// and returns false — spec.md §6 leaves this case's exact behavior
// open (Elysabettian's ExecEnv/Library.cpp silently no-ops instead),
// resolved in DESIGN.md.
func nativeImport(v registrar, libs map[string]*Library) value.NativeFn {
	return func(args []value.Value) (value.Value, error) {
		if len(args) != 1 || args[0].Kind() != value.KindString {
			return value.Null, fmt.Errorf("import() expects a library name string")
		}
		name := args[0].AsString()
		lib, ok := libs[name]
		if !ok {
			fmt.Fprintf(os.Stderr, "import: unknown library %q\n", name)
			return value.Bool(false), nil
		}
		for fname, fn := range lib.Functions {
			v.DefineGlobal(fname, value.Obj(value.KindNative, &value.NativeFunction{Name: fname, Fn: fn}))
		}
		for cname, cval := range lib.Constants {
			v.DefineGlobal(cname, cval)
		}
		return value.Bool(true), nil
	}
}
