package stdlib

import (
	"fmt"
	"strings"

	"github.com/emberlang/ember/internal/value"
)

// newCstdioLibrary builds the `cstdio` library: a single printf-style
// formatter mirroring Elysabettian's Libraries/StdIO.cpp, restricted
// to `%v`-style conversions since every ember Value already knows how
// to render itself via String().
func newCstdioLibrary() *Library {
	return &Library{
		Name:      "cstdio",
		Constants: make(map[string]value.Value),
		Functions: map[string]value.NativeFn{
			"format": cstdioFormat,
		},
	}
}

func cstdioFormat(args []value.Value) (value.Value, error) {
	if len(args) == 0 || args[0].Kind() != value.KindString {
		return value.Null, fmt.Errorf("format() expects a format string as its first argument")
	}
	format := args[0].AsString()
	rendered := make([]interface{}, len(args)-1)
	for i, a := range args[1:] {
		rendered[i] = a.String()
	}
	out := strings.ReplaceAll(format, "%d", "%v")
	out = strings.ReplaceAll(out, "%s", "%v")
	out = strings.ReplaceAll(out, "%f", "%v")
	return value.Str(fmt.Sprintf(out, rendered...)), nil
}
