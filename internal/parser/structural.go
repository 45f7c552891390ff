package parser

import (
	"bufio"
	"bytes"
	"errors"
	"io"

	"github.com/yuin/gopher-lua/ast"
	"github.com/yuin/gopher-lua/parse"
)

// utf8BOM is accepted by the game client at the start of a file but is not
// valid Lua.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// StructuralScanner extracts occurrences by walking the Lua syntax tree.
//
// It recognizes two shapes:
//   - table["key"] (or table.key) anywhere in an expression: key only;
//   - table["key"] = "literal" as a single-target assignment: explicit value.
//
// Assignment targets are not counted as plain references, so a key whose
// only appearance is table["key"] = f() is not reported.
type StructuralScanner struct {
	table string
}

// NewStructuralScanner creates a scanner matching the given table identifier.
func NewStructuralScanner(table string) *StructuralScanner {
	if table == "" {
		table = DefaultTable
	}
	return &StructuralScanner{table: table}
}

func (s *StructuralScanner) Extract(path string, r io.Reader) ([]Occurrence, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	chunk, err := parse.Parse(br, path)
	if err != nil {
		perr := &ParseError{Path: path, Err: err}
		var lerr *parse.Error
		if errors.As(err, &lerr) {
			perr.Line = lerr.Pos.Line
		}
		return nil, perr
	}

	w := &treeWalker{table: s.table, path: path}
	w.stmts(chunk)
	return w.out, nil
}

type treeWalker struct {
	table string
	path  string
	line  int // line of the enclosing statement
	out   []Occurrence
}

// indexKey returns the key of an index expression on the table.
func (w *treeWalker) indexKey(e ast.Expr) (string, bool) {
	get, ok := e.(*ast.AttrGetExpr)
	if !ok {
		return "", false
	}
	ident, ok := get.Object.(*ast.IdentExpr)
	if !ok || ident.Value != w.table {
		return "", false
	}
	key, ok := get.Key.(*ast.StringExpr)
	if !ok {
		return "", false
	}
	return key.Value, true
}

func (w *treeWalker) emit(e ast.Expr, key, value string, hasValue bool) {
	line := e.Line()
	if line == 0 {
		line = w.line
	}
	w.out = append(w.out, newOccurrence(w.path, line, key, value, hasValue))
}

func (w *treeWalker) stmts(stmts []ast.Stmt) {
	for _, st := range stmts {
		w.stmt(st)
	}
}

func (w *treeWalker) stmt(st ast.Stmt) {
	w.line = st.Line()

	switch st := st.(type) {
	case *ast.AssignStmt:
		w.assign(st)
	case *ast.LocalAssignStmt:
		w.exprs(st.Exprs)
	case *ast.FuncCallStmt:
		w.expr(st.Expr)
	case *ast.DoBlockStmt:
		w.stmts(st.Stmts)
	case *ast.WhileStmt:
		w.expr(st.Condition)
		w.stmts(st.Stmts)
	case *ast.RepeatStmt:
		w.stmts(st.Stmts)
		w.expr(st.Condition)
	case *ast.IfStmt:
		w.expr(st.Condition)
		w.stmts(st.Then)
		w.stmts(st.Else)
	case *ast.NumberForStmt:
		w.expr(st.Init)
		w.expr(st.Limit)
		w.expr(st.Step)
		w.stmts(st.Stmts)
	case *ast.GenericForStmt:
		w.exprs(st.Exprs)
		w.stmts(st.Stmts)
	case *ast.FuncDefStmt:
		if st.Name != nil {
			w.expr(st.Name.Func)
			w.expr(st.Name.Receiver)
		}
		w.expr(st.Func)
	case *ast.ReturnStmt:
		w.exprs(st.Exprs)
	}
}

func (w *treeWalker) assign(st *ast.AssignStmt) {
	single := len(st.Lhs) == 1 && len(st.Rhs) == 1

	for _, target := range st.Lhs {
		key, ok := w.indexKey(target)
		if !ok {
			w.expr(target)
			continue
		}
		if !single {
			continue
		}
		if str, isLiteral := st.Rhs[0].(*ast.StringExpr); isLiteral {
			w.emit(target, key, str.Value, true)
		}
	}

	w.exprs(st.Rhs)
}

func (w *treeWalker) exprs(exprs []ast.Expr) {
	for _, e := range exprs {
		w.expr(e)
	}
}

func (w *treeWalker) expr(e ast.Expr) {
	if e == nil {
		return
	}

	switch e := e.(type) {
	case *ast.AttrGetExpr:
		if key, ok := w.indexKey(e); ok {
			w.emit(e, key, "", false)
			return
		}
		w.expr(e.Object)
		w.expr(e.Key)
	case *ast.FuncCallExpr:
		w.expr(e.Func)
		w.expr(e.Receiver)
		w.exprs(e.Args)
	case *ast.TableExpr:
		for _, f := range e.Fields {
			w.expr(f.Key)
			w.expr(f.Value)
		}
	case *ast.FunctionExpr:
		outer := w.line
		w.stmts(e.Stmts)
		w.line = outer
	case *ast.LogicalOpExpr:
		w.expr(e.Lhs)
		w.expr(e.Rhs)
	case *ast.RelationalOpExpr:
		w.expr(e.Lhs)
		w.expr(e.Rhs)
	case *ast.StringConcatOpExpr:
		w.expr(e.Lhs)
		w.expr(e.Rhs)
	case *ast.ArithmeticOpExpr:
		w.expr(e.Lhs)
		w.expr(e.Rhs)
	case *ast.UnaryMinusOpExpr:
		w.expr(e.Expr)
	case *ast.UnaryNotOpExpr:
		w.expr(e.Expr)
	case *ast.UnaryLenOpExpr:
		w.expr(e.Expr)
	}
}
