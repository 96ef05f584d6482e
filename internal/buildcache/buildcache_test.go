package buildcache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kievzenit/izc/internal/config"
	"github.com/kievzenit/izc/internal/ir"
)

func module(name string) *ir.Module {
	fn := ir.NewFunc("main", ir.TypeI32)
	fn.NewBlock("entry").Term = &ir.Ret{Value: &ir.Const{Typ: ir.TypeI32, Value: 0}}
	return &ir.Module{Name: name, Funcs: []*ir.Func{fn}}
}

func TestKey(t *testing.T) {
	cfg := config.NewConfig()

	base := Key(module("a.iz"), cfg, config.ArtifactObj)
	if base != Key(module("a.iz"), cfg, config.ArtifactObj) {
		t.Errorf("Key() differs for equal inputs")
	}
	if base == Key(module("b.iz"), cfg, config.ArtifactObj) {
		t.Errorf("Key() ignores the module")
	}
	if base == Key(module("a.iz"), cfg, config.ArtifactAsm) {
		t.Errorf("Key() ignores the artifact")
	}

	qbe := config.NewConfig()
	qbe.Backend = config.BackendQBE
	if base == Key(module("a.iz"), qbe, config.ArtifactObj) {
		t.Errorf("Key() ignores the backend")
	}
}

func TestUpToDate(t *testing.T) {
	output := filepath.Join(t.TempDir(), "main.o")

	if UpToDate(output, 1) {
		t.Errorf("UpToDate() = true for a missing output")
	}

	if err := os.WriteFile(output, []byte("object"), 0o644); err != nil {
		t.Fatal(err)
	}
	if UpToDate(output, 1) {
		t.Errorf("UpToDate() = true without a recorded key")
	}

	if err := Record(output, 1); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if !UpToDate(output, 1) {
		t.Errorf("UpToDate() = false after Record")
	}
	if UpToDate(output, 2) {
		t.Errorf("UpToDate() = true for another key")
	}

	if err := os.Remove(output); err != nil {
		t.Fatal(err)
	}
	if UpToDate(output, 1) {
		t.Errorf("UpToDate() = true after the output was removed")
	}
}
