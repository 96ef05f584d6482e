package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"regexp"
	"runtime"
	"strings"

	"github.com/sanity-io/litter"
	"golang.org/x/term"

	"github.com/kievzenit/izc/internal/ast"
	"github.com/kievzenit/izc/internal/buildcache"
	"github.com/kievzenit/izc/internal/compiler_errors"
	"github.com/kievzenit/izc/internal/config"
	"github.com/kievzenit/izc/internal/emitter"
	"github.com/kievzenit/izc/internal/ir"
	"github.com/kievzenit/izc/internal/lowerer"
	"github.com/kievzenit/izc/internal/parser"
	"github.com/kievzenit/izc/internal/scope"
	"github.com/kievzenit/izc/internal/semantic_analyzer"
	"github.com/kievzenit/izc/internal/source"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type logger struct {
	writer  io.Writer
	verbose bool
}

func (l logger) Infof(format string, args ...any) {
	if l.verbose {
		fmt.Fprintf(l.writer, "izc: info: "+format+"\n", args...)
	}
}

func (l logger) Errorf(format string, args ...any) {
	fmt.Fprintf(l.writer, "izc: error: "+format+"\n", args...)
}

func parseFlags(args []string, stderr io.Writer) (*config.Config, []string, error) {
	cfg := config.NewConfig()

	fs := flag.NewFlagSet("izc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: izc [flags] file.iz [file.iz ...]")
		fs.PrintDefaults()
	}

	emit := fs.String("emit", "obj", "comma separated artifacts: obj, asm, ll, ir")
	fs.StringVar(&cfg.Backend, "backend", config.BackendLLVM, "code generator: llvm or qbe")
	fs.StringVar(&cfg.OutputDir, "o", "", "output directory (default: next to the source)")
	fs.StringVar(&cfg.Color, "color", config.ColorAuto, "diagnostic colors: auto, always or never")
	fs.BoolVar(&cfg.DumpAST, "dump-ast", false, "print the analyzed tree to stdout")
	fs.BoolVar(&cfg.Force, "force", false, "rebuild artifacts even when they are up to date")
	fs.BoolVar(&cfg.Verbose, "v", false, "print progress on stderr")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return nil, nil, fmt.Errorf("no input files")
	}
	if err := cfg.SetEmit(*emit); err != nil {
		return nil, nil, err
	}
	cfg.SetTarget(runtime.GOOS, runtime.GOARCH, "")
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	return cfg, fs.Args(), nil
}

func useColor(mode string, stderr io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}

	file, ok := stderr.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, files, err := parseFlags(args, stderr)
	if err == flag.ErrHelp {
		return exitOK
	}
	if err != nil {
		fmt.Fprintf(stderr, "izc: error: %v\n", err)
		return exitUsage
	}

	log := logger{writer: stderr, verbose: cfg.Verbose}
	reporter := compiler_errors.NewReporter(stderr, useColor(cfg.Color, stderr))
	eh := compiler_errors.NewErrorHandler()

	units := make([]*ast.Unit, 0, len(files))
	for _, file := range files {
		unit, err := source.Load(file)
		if err != nil {
			log.Errorf("%v", err)
			return exitError
		}

		parsed, err := parser.ParseSource(unit, eh)
		if err != nil {
			log.Infof("%v", err)
			continue
		}
		units = append(units, parsed)
	}
	if eh.Count() > 0 {
		reporter.Report(eh)
		return exitError
	}
	log.Infof("parsed %d files", len(units))

	analyzer := semantic_analyzer.NewSemanticAnalyzer(eh, units)
	errors := analyzer.Analyze()
	if cfg.DumpAST {
		dumpAST(stdout, units, analyzer.Global())
	}
	if errors > 0 {
		reporter.Report(eh)
		return exitError
	}

	program := lowerer.NewLowerer(units).Lower()
	log.Infof("lowered %d modules, fingerprint %016x", len(program.Modules), program.Fingerprint())

	backend := emitter.NewBackend(cfg)
	for _, module := range program.Modules {
		if err := emitModule(module, backend, cfg, log); err != nil {
			log.Errorf("%v", err)
			return exitError
		}
	}

	return exitOK
}

func dumpAST(stdout io.Writer, units []*ast.Unit, global *scope.Scope) {
	fmt.Fprintf(stdout, "// %d globals: %s\n", global.Len(), strings.Join(global.Names(), ", "))

	options := litter.Options{
		HidePrivateFields: true,
		// Decl points back into the tree, Source is the raw file.
		FieldExclusions: regexp.MustCompile(`^(Decl|Source)$`),
	}
	for _, unit := range units {
		fmt.Fprintf(stdout, "// %s\n", unit.Source.Path)
		fmt.Fprintln(stdout, options.Sdump(unit.Decls))
	}
}

// emitModule writes the requested artifacts of module, skipping those a build
// with the same inputs already wrote.
func emitModule(module *ir.Module, backend emitter.Backend, cfg *config.Config, log logger) error {
	stale := make(map[config.Artifact]uint64)
	for _, artifact := range cfg.Artifacts() {
		key := buildcache.Key(module, cfg, artifact)
		output := cfg.OutputPath(module.Name, artifact)
		if !cfg.Force && buildcache.UpToDate(output, key) {
			log.Infof("%s is up to date", output)
			continue
		}
		stale[artifact] = key
	}
	if len(stale) == 0 {
		return nil
	}

	if cfg.OutputDir != "" {
		if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	contents := make(map[config.Artifact][]byte)
	if _, ok := stale[config.ArtifactIR]; ok {
		contents[config.ArtifactIR] = []byte(module.String())
	}
	if len(stale) > len(contents) {
		artifacts, err := backend.Generate(module, cfg)
		if err != nil {
			return err
		}
		for artifact, buf := range artifacts {
			contents[artifact] = buf.Bytes()
		}
	}

	for _, artifact := range cfg.Artifacts() {
		key, ok := stale[artifact]
		if !ok {
			continue
		}
		data, ok := contents[artifact]
		if !ok {
			return fmt.Errorf("backend '%s' produced no %s for %s", cfg.Backend, artifact, module.Name)
		}

		output := cfg.OutputPath(module.Name, artifact)
		if err := os.WriteFile(output, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", output, err)
		}
		if err := buildcache.Record(output, key); err != nil {
			return err
		}
		log.Infof("wrote %s", output)
	}

	return nil
}
