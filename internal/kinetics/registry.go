package kinetics

import (
	"errors"
	"fmt"
	"sort"
)

var ErrUnknownKinetics = errors.New("kinetics: unknown channel kinetics")

var registry = map[string]func() Kinetics{
	"Kd":       func() Kinetics { return NewKd() },
	"KCaAB":    func() Kinetics { return NewKCaAB() },
	"ACurrent": func() Kinetics { return NewACurrent() },
	"Kslow":    func() Kinetics { return NewKslow() },
	"CaT":      func() Kinetics { return NewCaT() },
	"CaS":      func() Kinetics { return NewCaS() },
	"NaV":      func() Kinetics { return NewNaV() },
	"Leak":     func() Kinetics { return NewLeak() },
}

func Lookup(name string) (Kinetics, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKinetics, name)
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
