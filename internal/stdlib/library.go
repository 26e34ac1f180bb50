package stdlib

import "github.com/emberlang/ember/internal/value"

// Library is one importable native library: a table of functions and
// constant Values that `import(name)` copies into the VM's globals.
type Library struct {
	Name      string
	Functions map[string]value.NativeFn
	Constants map[string]value.Value
}

// registry is built once by buildRegistry, combining the YAML-sourced
// constants with the Go-defined native functions for each library.
func buildRegistry() (map[string]*Library, error) {
	m, err := loadManifest()
	if err != nil {
		return nil, err
	}

	libs := map[string]*Library{
		"math":   newMathLibrary(),
		"stdio":  newStdioLibrary(),
		"cstdio": newCstdioLibrary(),
	}

	for name, entry := range m.Libraries {
		lib, ok := libs[name]
		if !ok {
			continue
		}
		for cname, n := range entry.Constants {
			lib.Constants[cname] = value.Number(n)
		}
	}

	return libs, nil
}
