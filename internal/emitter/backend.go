package emitter

import (
	"bytes"

	"github.com/kievzenit/izc/internal/config"
	"github.com/kievzenit/izc/internal/ir"
)

// Artifacts holds the generated outputs of one module, by kind.
type Artifacts map[config.Artifact]*bytes.Buffer

// Backend is implemented by every code generator.
type Backend interface {
	// Generate turns one lowered module into the artifacts requested by cfg.
	// Artifacts the backend cannot produce are left out.
	Generate(module *ir.Module, cfg *config.Config) (Artifacts, error)
}

func NewBackend(cfg *config.Config) Backend {
	if cfg.Backend == config.BackendQBE {
		return NewQBEBackend()
	}
	return NewLLVMBackend()
}
