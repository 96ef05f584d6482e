package config

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"modernc.org/libqbe"
)

type Artifact int

const (
	ArtifactObj Artifact = iota
	ArtifactAsm
	ArtifactLL
	ArtifactIR
	ArtifactCount
)

type Info struct {
	Name        string
	Extension   string
	Description string
}

var artifacts = map[Artifact]Info{
	ArtifactObj: {"obj", ".o", "Native object file."},
	ArtifactAsm: {"asm", ".s", "Native assembly."},
	ArtifactLL:  {"ll", ".ll", "Textual LLVM IR."},
	ArtifactIR:  {"ir", ".ir", "Textual izc IR, printed before code generation."},
}

func (a Artifact) String() string    { return artifacts[a].Name }
func (a Artifact) Extension() string { return artifacts[a].Extension }

func ParseArtifact(name string) (Artifact, error) {
	for artifact, info := range artifacts {
		if info.Name == name {
			return artifact, nil
		}
	}
	return 0, fmt.Errorf("unknown artifact '%s'. Supported: obj, asm, ll, ir", name)
}

const (
	BackendLLVM = "llvm"
	BackendQBE  = "qbe"
)

const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

type Config struct {
	Backend   string
	Emit      map[Artifact]bool
	OutputDir string
	Color     string
	DumpAST   bool
	Force     bool
	Verbose   bool

	QbeTarget string
	WordType  string
}

func NewConfig() *Config {
	return &Config{
		Backend: BackendLLVM,
		Emit:    map[Artifact]bool{ArtifactObj: true},
		Color:   ColorAuto,
	}
}

// SetTarget picks the QBE target, the host one when qbeTarget is empty.
func (c *Config) SetTarget(goos, goarch, qbeTarget string) {
	if qbeTarget == "" {
		qbeTarget = libqbe.DefaultTarget(goos, goarch)
	}
	c.QbeTarget = qbeTarget

	switch c.QbeTarget {
	case "arm", "rv32":
		c.WordType = "w"
	default:
		c.WordType = "l"
	}
}

// SetEmit replaces the requested artifacts with a comma separated list.
func (c *Config) SetEmit(list string) error {
	emit := make(map[Artifact]bool)
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		artifact, err := ParseArtifact(name)
		if err != nil {
			return err
		}
		emit[artifact] = true
	}

	if len(emit) == 0 {
		return fmt.Errorf("nothing to emit")
	}
	c.Emit = emit
	return nil
}

func (c *Config) Emits(artifact Artifact) bool { return c.Emit[artifact] }

// Artifacts lists the requested artifacts in a stable order.
func (c *Config) Artifacts() []Artifact {
	list := make([]Artifact, 0, len(c.Emit))
	for artifact, enabled := range c.Emit {
		if enabled {
			list = append(list, artifact)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
	return list
}

func (c *Config) Validate() error {
	switch c.Backend {
	case BackendLLVM:
	case BackendQBE:
		for _, artifact := range []Artifact{ArtifactObj, ArtifactLL} {
			if c.Emits(artifact) {
				return fmt.Errorf("backend '%s' cannot emit '%s'", c.Backend, artifact)
			}
		}
		if c.QbeTarget == "" {
			return fmt.Errorf("backend '%s' needs a target", c.Backend)
		}
	default:
		return fmt.Errorf("unsupported backend '%s'. Supported: 'llvm', 'qbe'", c.Backend)
	}

	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("unsupported color mode '%s'. Supported: 'auto', 'always', 'never'", c.Color)
	}

	if len(c.Artifacts()) == 0 {
		return fmt.Errorf("nothing to emit")
	}
	return nil
}

// OutputPath names the artifact built from sourcePath: next to the source,
// or inside OutputDir when one is set.
func (c *Config) OutputPath(sourcePath string, artifact Artifact) string {
	base := strings.TrimSuffix(sourcePath, filepath.Ext(sourcePath)) + artifact.Extension()
	if c.OutputDir == "" {
		return base
	}
	return filepath.Join(c.OutputDir, filepath.Base(base))
}
