package tools

import (
	"github.com/mcgeq/mcg/pkg/manager"
)

// Options configures the adapters built by RegisterBuiltins.
type Options struct {
	// Runner launches the tools. Nil means a default executor.
	Runner Runner

	// Binaries overrides the executable per kind (e.g., pip → pip3).
	Binaries map[manager.Kind]string
}

// New builds the adapter for one built-in kind.
func New(kind manager.Kind) (manager.Manager, bool) {
	switch kind {
	case manager.KindCargo:
		return NewCargo(), true
	case manager.KindNpm:
		return NewNpm(), true
	case manager.KindPnpm:
		return NewPnpm(), true
	case manager.KindYarn:
		return NewYarn(), true
	case manager.KindBun:
		return NewBun(), true
	case manager.KindPip:
		return NewPip(), true
	case manager.KindPdm:
		return NewPdm(), true
	case manager.KindPoetry:
		return NewPoetry(), true
	}
	return nil, false
}

// base exposes the embedded BaseManager of every built-in adapter.
type base interface {
	SetRunner(Runner)
	SetBinary(string)
}

// RegisterBuiltins registers a factory for every built-in kind.
func RegisterBuiltins(reg *manager.Registry, opts Options) {
	for _, kind := range manager.BuiltinKinds {
		reg.Register(kind, func() manager.Manager {
			mgr, _ := New(kind)
			if b, ok := mgr.(base); ok {
				b.SetRunner(opts.Runner)
				b.SetBinary(opts.Binaries[kind])
			}
			return mgr
		})
	}
}

// NewRegistry returns a registry populated with every built-in adapter.
func NewRegistry(opts Options) *manager.Registry {
	reg := manager.NewRegistry()
	RegisterBuiltins(reg, opts)
	return reg
}
