// Package buildcache skips rewriting artifacts whose inputs did not change.
// Each artifact gets a sidecar file holding the key of the build that wrote it.
package buildcache

import (
	"fmt"
	"os"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/kievzenit/izc/internal/config"
	"github.com/kievzenit/izc/internal/ir"
)

const sidecarSuffix = ".izc-key"

// Key identifies the build of one artifact from one module.
func Key(module *ir.Module, cfg *config.Config, artifact config.Artifact) uint64 {
	digest := xxhash.New()
	digest.WriteString(module.String())
	digest.WriteString("\x00" + cfg.Backend)
	if cfg.Backend == config.BackendQBE {
		digest.WriteString("\x00" + cfg.QbeTarget)
	}
	digest.WriteString("\x00" + artifact.String())
	return digest.Sum64()
}

func sidecar(output string) string {
	return output + sidecarSuffix
}

// UpToDate reports whether output exists and was written by a build with key.
func UpToDate(output string, key uint64) bool {
	if _, err := os.Stat(output); err != nil {
		return false
	}

	data, err := os.ReadFile(sidecar(output))
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(data)) == format(key)
}

// Record marks output as written by a build with key.
func Record(output string, key uint64) error {
	if err := os.WriteFile(sidecar(output), []byte(format(key)+"\n"), 0o644); err != nil {
		return fmt.Errorf("record build key: %w", err)
	}
	return nil
}

func format(key uint64) string {
	return fmt.Sprintf("%016x", key)
}
