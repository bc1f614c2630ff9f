// Package gala is an abstract interpretation engine. It computes, for
// every procedure of an ingested program, the abstract state valid
// before and after each statement, by chaotic fixpoint iteration with
// widening inside procedures and memoized summaries across them.
//
// A program is built with the cfg package, abstract domains implement
// the state.Domain contract (ready-made ones live in analysis/domains),
// and an Analyzer ties them together under a config.Config.
package gala

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gala-analyzer/gala/analysis/cfg"
	"github.com/gala-analyzer/gala/analysis/interproc"
	"github.com/gala-analyzer/gala/config"
	"github.com/gala-analyzer/gala/utils"
)

// Analyzer drives a whole-program analysis: it validates the ingested
// program, resolves its calls, and computes a fixpoint for every
// procedure.
type Analyzer struct {
	conf    *config.Config
	log     *config.LogGroup
	prog    *cfg.Program
	initial interproc.StateSupplier
}

// NewAnalyzer assembles an analyzer. The supplier provides the empty
// abstract state procedures start from; a nil config means defaults.
func NewAnalyzer(prog *cfg.Program, conf *config.Config, initial interproc.StateSupplier) *Analyzer {
	if conf == nil {
		conf = config.Default()
	}
	return &Analyzer{
		conf:    conf,
		log:     config.NewLogGroup(conf),
		prog:    prog,
		initial: initial,
	}
}

// Logger exposes the analyzer's log group, so embedding applications can
// redirect its output.
func (a *Analyzer) Logger() *config.LogGroup { return a.log }

// Results is the outcome of a whole-program run.
type Results struct {
	Program   *cfg.Program
	Fixpoints *interproc.ProgramResult
}

// Run validates the program and analyzes every procedure. Either every
// procedure receives a result or the first fatal error is returned.
func (a *Analyzer) Run() (*Results, error) {
	utils.SetColorize(a.conf.Colorize)

	if err := a.prog.Validate(); err != nil {
		return nil, fmt.Errorf("program validation: %w", err)
	}
	if a.conf.DumpCFG {
		if err := a.dumpCFGs(); err != nil {
			return nil, err
		}
	}

	an, err := interproc.New(a.prog, a.conf, a.log, a.initial)
	if err != nil {
		return nil, err
	}
	fixpoints, err := an.AnalyzeProgram()
	if err != nil {
		return nil, err
	}
	a.log.Infof("analyzed %d procedures", len(a.prog.Procedures()))
	return &Results{Program: a.prog, Fixpoints: fixpoints}, nil
}

// dumpCFGs writes a dot rendering of every procedure into the configured
// reports directory, plus an image per procedure when an image format is
// configured.
func (a *Analyzer) dumpCFGs() error {
	dir := a.conf.ReportsDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, g := range a.prog.Procedures() {
		base := strings.ReplaceAll(g.Name(), ".", "-")
		path := filepath.Join(dir, base+".dot")
		if err := os.WriteFile(path, g.Dot(), 0o644); err != nil {
			return err
		}
		a.log.Debugf("wrote %s", path)
		if format := a.conf.CFGImageFormat; format != "" {
			img := filepath.Join(dir, base+"."+format)
			if err := g.RenderImage(img, format); err != nil {
				return err
			}
			a.log.Debugf("wrote %s", img)
		}
	}
	return nil
}

// Render produces a deterministic textual report: every procedure in
// qualified-name order, with its joined exit state and the abstract
// value of its return variable.
func (r *Results) Render() string {
	var b strings.Builder
	for _, g := range r.Fixpoints.Graphs() {
		res, _ := r.Fixpoints.ResultOf(g)
		fmt.Fprintf(&b, "== %s\n", g.Name())
		exit, reached := res.ExitState()
		if !reached {
			b.WriteString("   diverges\n")
			continue
		}
		ret := g.ReturnVariable()
		val, verr := exit.EvalValue(ret)
		typ, terr := exit.EvalTypes(ret)
		if verr != nil || terr != nil {
			fmt.Fprintf(&b, "   exit: %s\n", exit)
			continue
		}
		fmt.Fprintf(&b, "   returns %s : %s\n", val, typ)
		fmt.Fprintf(&b, "   exit: %s\n", exit.State().Value())
	}
	return b.String()
}
