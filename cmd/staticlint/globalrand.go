package main

import (
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// randConstructors build an explicit generator and stay allowed.
var randConstructors = map[string]bool{
	"New":         true,
	"NewSource":   true,
	"NewZipf":     true,
	"NewPCG":      true,
	"NewChaCha8":  true,
	"NewChaCha8X": true,
}

// GlobalRandAnalyzer reports calls to the package-level functions of math/rand
// and math/rand/v2. Weighted selection must draw from an injected source so it
// can be made deterministic in tests.
var GlobalRandAnalyzer = &analysis.Analyzer{
	Name:     "globalrandcheck",
	Doc:      "check for package-level math/rand calls",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      runGlobalRand,
}

func runGlobalRand(pass *analysis.Pass) (interface{}, error) {
	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	insp.Preorder([]ast.Node{(*ast.CallExpr)(nil)}, func(n ast.Node) {
		call := n.(*ast.CallExpr)
		sel, ok := call.Fun.(*ast.SelectorExpr)
		if !ok {
			return
		}
		ident, ok := sel.X.(*ast.Ident)
		if !ok {
			return
		}
		pkgName, ok := pass.TypesInfo.Uses[ident].(*types.PkgName)
		if !ok {
			return
		}
		switch pkgName.Imported().Path() {
		case "math/rand", "math/rand/v2":
		default:
			return
		}
		if randConstructors[sel.Sel.Name] {
			return
		}
		pass.Reportf(call.Pos(), "globalrandcheck: rand.%s uses the global source, inject a *rand.Rand", sel.Sel.Name)
	})
	return nil, nil
}
