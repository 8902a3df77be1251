// Package validator implements lint checks over BlockScript programs.
//
// Everything it reports is a warning: the evaluator remains the authority
// on what is an error, and a program with warnings still runs.
package validator

import (
	"fmt"

	mapset "github.com/deckarep/golang-set"

	"github.com/blockcraft/blockscript/pkg/ast"
	"github.com/blockcraft/blockscript/pkg/diagnostics"
)

// scope mirrors one evaluator frame: the variable and function names
// declared directly in it.
type scope struct {
	vars  mapset.Set
	funcs mapset.Set
}

func newScope() *scope {
	return &scope{vars: mapset.NewThreadUnsafeSet(), funcs: mapset.NewThreadUnsafeSet()}
}

type validator struct {
	diags     []diagnostics.Diagnostic
	loopDepth int
	funcDepth int
}

// Validate lints a program and returns its warnings in source order.
func Validate(program *ast.Program) []diagnostics.Diagnostic {
	v := &validator{}
	v.validateStatements(program.Statements, newScope())
	return v.diags
}

func (v *validator) addWarning(code, msg string, span ast.Span, hint string) {
	v.diags = append(v.diags, diagnostics.MakeWarning(code, msg, &span, hint))
}

func (v *validator) validateStatements(stmts []ast.Statement, sc *scope) {
	terminated, reported := false, false
	for _, stmt := range stmts {
		if terminated && !reported {
			v.addWarning(diagnostics.WUnreachable, "unreachable statement", stmt.NodeSpan(), "")
			reported = true
		}
		v.validateStmt(stmt, sc)
		switch stmt.(type) {
		case *ast.Break, *ast.Continue, *ast.Return:
			terminated = true
		}
	}
}

func (v *validator) validateStmt(stmt ast.Statement, sc *scope) {
	switch s := stmt.(type) {
	case *ast.Declaration:
		if !sc.vars.Add(s.Name) {
			v.addWarning(diagnostics.WDuplicateDecl,
				fmt.Sprintf("variable '%s' is declared twice in this block", s.Name), s.Span,
				"the second declaration fails at run time; assign with '=' instead")
		}

	case *ast.FunctionDeclaration:
		if !sc.funcs.Add(s.Name) {
			v.addWarning(diagnostics.WDuplicateDecl,
				fmt.Sprintf("function '%s' is declared twice in this block", s.Name), s.Span, "")
		}
		params := mapset.NewThreadUnsafeSet()
		for _, p := range s.Params {
			if !params.Add(p.Name) {
				v.addWarning(diagnostics.WDuplicateDecl,
					fmt.Sprintf("parameter '%s' is declared twice in '%s'", p.Name, s.Name), p.Span, "")
			}
		}
		// loops outside the function do not catch its break or continue
		outerLoops := v.loopDepth
		v.loopDepth = 0
		v.funcDepth++
		v.validateStatements(s.Body.Statements, newScope())
		v.funcDepth--
		v.loopDepth = outerLoops

	case *ast.Block:
		v.validateStatements(s.Statements, newScope())

	case *ast.IfElse:
		for _, br := range s.Branches {
			v.validateStatements(br.Body.Statements, newScope())
		}
		if s.Else != nil {
			v.validateStatements(s.Else.Statements, newScope())
		}

	case *ast.ForLoop:
		loopScope := newScope()
		if s.Init != nil {
			v.validateStmt(s.Init, loopScope)
		}
		v.validateLoopBody(s.Body)

	case *ast.WhileLoop:
		v.validateLoopBody(s.Body)

	case *ast.Break, *ast.Continue:
		if v.loopDepth == 0 {
			kw := "break"
			if _, ok := s.(*ast.Continue); ok {
				kw = "continue"
			}
			v.addWarning(diagnostics.WBreakOutsideLoop,
				fmt.Sprintf("'%s' is not inside a loop", kw), stmt.NodeSpan(),
				"this fails at run time with E_CONTROL_FLOW")
		}

	case *ast.Return:
		if v.funcDepth == 0 {
			v.addWarning(diagnostics.WReturnOutsideFunc, "'return' is not inside a function", s.Span,
				"this fails at run time with E_CONTROL_FLOW")
		}
	}
}

func (v *validator) validateLoopBody(body *ast.Block) {
	v.loopDepth++
	v.validateStatements(body.Statements, newScope())
	v.loopDepth--
}
