package migrate

import (
	_ "embed"
	"fmt"
	"slices"
)

//go:embed builtin/0002-taxonomy.yaml
var taxonomyScript []byte

// builtins are the migrations shipped with the binary, by name.
var builtins = map[string][]byte{
	"0002-taxonomy": taxonomyScript,
}

// Builtin returns a shipped migration by name.
func Builtin(name string) (Script, bool, error) {
	data, ok := builtins[name]
	if !ok {
		return Script{}, false, nil
	}
	s, err := ParseScript(data)
	if err != nil {
		return Script{}, true, fmt.Errorf("builtin %s: %w", name, err)
	}
	if s.Name == "" {
		s.Name = name
	}
	return s, true, nil
}

// BuiltinNames lists the shipped migrations in order.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Resolve returns the built-in migration called arg, or else loads arg as
// a script path.
func Resolve(arg string) (Script, error) {
	s, ok, err := Builtin(arg)
	if ok {
		return s, err
	}
	return LoadScript(arg)
}
