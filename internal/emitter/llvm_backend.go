package emitter

import (
	"bytes"
	"fmt"
	"sync"

	"tinygo.org/x/go-llvm"

	"github.com/kievzenit/izc/internal/config"
	"github.com/kievzenit/izc/internal/ir"
)

type llvmBackend struct{}

func NewLLVMBackend() Backend { return &llvmBackend{} }

var (
	initNativeOnce sync.Once
	initNativeErr  error
)

func initNativeTarget() error {
	initNativeOnce.Do(func() {
		if err := llvm.InitializeNativeTarget(); err != nil {
			initNativeErr = fmt.Errorf("initialize native target: %w", err)
			return
		}
		if err := llvm.InitializeNativeAsmPrinter(); err != nil {
			initNativeErr = fmt.Errorf("initialize native asm printer: %w", err)
		}
	})
	return initNativeErr
}

func (b *llvmBackend) Generate(module *ir.Module, cfg *config.Config) (Artifacts, error) {
	emitter := NewEmitter(module)
	defer emitter.Dispose()

	llvmModule := emitter.Emit()
	if err := llvm.VerifyModule(llvmModule, llvm.ReturnStatusAction); err != nil {
		return nil, fmt.Errorf("verify module %s: %w", module.Name, err)
	}

	artifacts := make(Artifacts)
	if !cfg.Emits(config.ArtifactObj) && !cfg.Emits(config.ArtifactAsm) {
		if cfg.Emits(config.ArtifactLL) {
			artifacts[config.ArtifactLL] = bytes.NewBufferString(llvmModule.String())
		}
		return artifacts, nil
	}

	if err := initNativeTarget(); err != nil {
		return nil, err
	}

	triple := llvm.DefaultTargetTriple()
	target, err := llvm.GetTargetFromTriple(triple)
	if err != nil {
		return nil, fmt.Errorf("target for %s: %w", triple, err)
	}
	machine := target.CreateTargetMachine(triple, "", "", llvm.CodeGenLevelDefault, llvm.RelocPIC, llvm.CodeModelDefault)
	defer machine.Dispose()

	targetData := machine.CreateTargetData()
	defer targetData.Dispose()
	llvmModule.SetTarget(triple)
	llvmModule.SetDataLayout(targetData.String())

	if cfg.Emits(config.ArtifactLL) {
		artifacts[config.ArtifactLL] = bytes.NewBufferString(llvmModule.String())
	}

	fileTypes := map[config.Artifact]llvm.CodeGenFileType{
		config.ArtifactObj: llvm.ObjectFile,
		config.ArtifactAsm: llvm.AssemblyFile,
	}
	for _, artifact := range []config.Artifact{config.ArtifactObj, config.ArtifactAsm} {
		if !cfg.Emits(artifact) {
			continue
		}

		buf, err := machine.EmitToMemoryBuffer(llvmModule, fileTypes[artifact])
		if err != nil {
			return nil, fmt.Errorf("emit %s for %s: %w", artifact, module.Name, err)
		}
		artifacts[artifact] = bytes.NewBuffer(append([]byte(nil), buf.Bytes()...))
		buf.Dispose()
	}

	return artifacts, nil
}
