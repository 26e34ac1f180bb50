package stdlib

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/emberlang/ember/internal/value"
)

// newStdioLibrary builds the `stdio` library: text-mode file handles
// (mirroring Elysabettian's ExecEnv/IoFile.cpp) plus a regex-backed
// match/replace pair. No buffering-mode or binary-mode distinctions
// are exposed, per SPEC_FULL.md §6.3.
func newStdioLibrary() *Library {
	return &Library{
		Name:      "stdio",
		Constants: make(map[string]value.Value),
		Functions: map[string]value.NativeFn{
			"open":      stdioOpen,
			"readLine":  stdioReadLine,
			"write":     stdioWrite,
			"close":     stdioClose,
			"match":     stdioMatch,
			"replace":   stdioReplace,
		},
	}
}

func asFile(v value.Value, fn string) (*value.File, error) {
	if v.Kind() != value.KindFile {
		return nil, fmt.Errorf("%s() expects a file argument", fn)
	}
	return v.AsObj().(*value.File), nil
}

func stdioOpen(args []value.Value) (value.Value, error) {
	if len(args) != 2 || args[0].Kind() != value.KindString || args[1].Kind() != value.KindString {
		return value.Null, fmt.Errorf("open() expects (path, mode) strings")
	}
	path, mode := args[0].AsString(), args[1].AsString()

	var flag int
	switch mode {
	case "r":
		flag = os.O_RDONLY
	case "w":
		flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	case "a":
		flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	default:
		return value.Null, fmt.Errorf("open() unknown mode %q", mode)
	}

	handle, err := os.OpenFile(path, flag, 0644)
	if err != nil {
		return value.Null, err
	}
	f := &value.File{Path: path, Handle: handle}
	if flag == os.O_RDONLY {
		f.Reader = bufio.NewReader(handle)
	}
	return value.Obj(value.KindFile, f), nil
}

func stdioReadLine(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Null, fmt.Errorf("readLine() expects a file argument")
	}
	f, err := asFile(args[0], "readLine")
	if err != nil {
		return value.Null, err
	}
	if f.Reader == nil {
		return value.Null, fmt.Errorf("readLine() called on a file not opened for reading")
	}
	line, err := f.Reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return value.Null, err
	}
	if line == "" && err == io.EOF {
		return value.Null, nil
	}
	return value.Str(strings.TrimRight(line, "\r\n")), nil
}

func stdioWrite(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return value.Null, fmt.Errorf("write() expects (file, text)")
	}
	f, err := asFile(args[0], "write")
	if err != nil {
		return value.Null, err
	}
	if _, err := f.Handle.WriteString(args[1].String()); err != nil {
		return value.Null, err
	}
	return value.Null, nil
}

func stdioClose(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Null, fmt.Errorf("close() expects a file argument")
	}
	f, err := asFile(args[0], "close")
	if err != nil {
		return value.Null, err
	}
	return value.Null, f.Handle.Close()
}

func stdioMatch(args []value.Value) (value.Value, error) {
	if len(args) != 2 || args[0].Kind() != value.KindString || args[1].Kind() != value.KindString {
		return value.Null, fmt.Errorf("match() expects (text, pattern) strings")
	}
	re, err := regexp2.Compile(args[1].AsString(), 0)
	if err != nil {
		return value.Null, err
	}
	m, err := re.MatchString(args[0].AsString())
	if err != nil {
		return value.Null, err
	}
	return value.Bool(m), nil
}

func stdioReplace(args []value.Value) (value.Value, error) {
	if len(args) != 3 {
		return value.Null, fmt.Errorf("replace() expects (text, pattern, replacement) strings")
	}
	for _, a := range args {
		if a.Kind() != value.KindString {
			return value.Null, fmt.Errorf("replace() expects string arguments")
		}
	}
	re, err := regexp2.Compile(args[1].AsString(), 0)
	if err != nil {
		return value.Null, err
	}
	out, err := re.Replace(args[0].AsString(), args[2].AsString(), -1, -1)
	if err != nil {
		return value.Null, err
	}
	return value.Str(out), nil
}
