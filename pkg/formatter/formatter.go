// Package formatter implements the BlockScript source code formatter.
package formatter

import (
	"math"
	"strconv"
	"strings"

	"github.com/blockcraft/blockscript/pkg/ast"
)

const indent = "  "

// Binding strength of each expression level (higher = tighter binding).
const (
	precAssign = iota
	precLogical
	precNot
	precCompare
	precAdditive
	precMultiplicative
	precUnary
	precPostfix
	precPrimary
)

func precedence(op ast.Operation) int {
	switch e := op.(type) {
	case *ast.AssignOp:
		return precAssign
	case *ast.Logical:
		if e.Op == ast.OpNot {
			return precNot
		}
		return precLogical
	case *ast.Comparison:
		return precCompare
	case *ast.Binary:
		if e.Op == ast.OpAdd || e.Op == ast.OpSub {
			return precAdditive
		}
		return precMultiplicative
	case *ast.Unary:
		return precUnary
	case *ast.ArrayElement, *ast.MethodCall:
		return precPostfix
	}
	return precPrimary
}

// Format pretty-prints a BlockScript program back to source code.
func Format(program *ast.Program) string {
	if len(program.Statements) == 0 {
		return ""
	}
	return formatStatements(program.Statements, 0) + "\n"
}

// FormatOperation renders a single expression with the fewest parentheses
// that parse back to the same tree.
func FormatOperation(op ast.Operation) string {
	return formatExpr(op)
}

// HasComments checks if a source string contains comments (# prefix), which
// formatting would drop.
func HasComments(source string) bool {
	for _, line := range strings.Split(source, "\n") {
		var quote byte
		for i := 0; i < len(line); i++ {
			c := line[i]
			switch {
			case quote != 0 && c == '\\':
				i++
			case quote != 0 && c == quote:
				quote = 0
			case quote != 0:
			case c == '"' || c == '\'':
				quote = c
			case c == '#':
				return true
			}
		}
	}
	return false
}

func formatStatements(stmts []ast.Statement, depth int) string {
	prefix := strings.Repeat(indent, depth)
	lines := make([]string, len(stmts))
	for i, s := range stmts {
		line := formatStmt(s, depth)
		// A statement opening with one of these would continue the
		// previous line's expression.
		if _, ok := s.(*ast.ExpressionStatement); ok && i > 0 && line != "" && strings.ContainsAny(line[:1], "([-+") {
			line = ";" + line
		}
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

func formatBlock(b *ast.Block, depth int) string {
	if len(b.Statements) == 0 {
		return "{}"
	}
	return "{\n" + formatStatements(b.Statements, depth+1) + "\n" + strings.Repeat(indent, depth) + "}"
}

func formatStmt(s ast.Statement, depth int) string {
	switch stmt := s.(type) {
	case *ast.Declaration, *ast.Assignment, *ast.ArrayElementAssignment, *ast.ExpressionStatement:
		return formatSimple(stmt)
	case *ast.Block:
		return formatBlock(stmt, depth)
	case *ast.IfElse:
		var sb strings.Builder
		for i, br := range stmt.Branches {
			if i == 0 {
				sb.WriteString("if ")
			} else {
				sb.WriteString(" elif ")
			}
			sb.WriteString(formatExpr(br.Cond))
			sb.WriteString(" ")
			sb.WriteString(formatBlock(br.Body, depth))
		}
		if stmt.Else != nil {
			sb.WriteString(" else ")
			sb.WriteString(formatBlock(stmt.Else, depth))
		}
		return sb.String()
	case *ast.ForLoop:
		parts := make([]string, 3)
		if stmt.Init != nil {
			parts[0] = formatSimple(stmt.Init)
		}
		if stmt.Cond != nil {
			parts[1] = formatExpr(stmt.Cond)
		}
		if stmt.Step != nil {
			parts[2] = formatSimple(stmt.Step)
		}
		return "for (" + strings.Join(parts, "; ") + ") " + formatBlock(stmt.Body, depth)
	case *ast.WhileLoop:
		return "while " + formatExpr(stmt.Cond) + " " + formatBlock(stmt.Body, depth)
	case *ast.Break:
		return "break"
	case *ast.Continue:
		return "continue"
	case *ast.Return:
		if stmt.Value == nil {
			return "return"
		}
		return "return " + formatExpr(stmt.Value)
	case *ast.Print:
		return "print " + formatExpr(stmt.Value)
	case *ast.FunctionDeclaration:
		params := make([]string, len(stmt.Params))
		for i, p := range stmt.Params {
			params[i] = p.Name + ": " + formatType(p.Type)
		}
		return "func " + stmt.Name + "(" + strings.Join(params, ", ") + ") " + formatBlock(stmt.Body, depth)
	}
	return ""
}

// formatSimple renders the statements allowed in a for header.
func formatSimple(s ast.Statement) string {
	switch stmt := s.(type) {
	case *ast.Declaration:
		out := stmt.Name + ": " + formatType(stmt.Type)
		if stmt.Init != nil {
			out += " = " + formatExpr(stmt.Init)
		}
		return out
	case *ast.Assignment:
		return stmt.Name + " = " + formatExpr(stmt.Value)
	case *ast.ArrayElementAssignment:
		return stmt.Name + "[" + formatExpr(stmt.Index) + "] = " + formatExpr(stmt.Value)
	case *ast.ExpressionStatement:
		return formatExpr(stmt.Expr)
	}
	return ""
}

func formatType(t ast.VariableType) string {
	switch vt := t.(type) {
	case *ast.ScalarType:
		return string(vt.Name)
	case *ast.ArrayType:
		return "Array<" + formatType(vt.Elem) + ">(" + formatExpr(vt.Size) + ")"
	}
	return ""
}

// operand renders child, parenthesized if it binds looser than min.
func operand(child ast.Operation, min int) string {
	s := formatExpr(child)
	if precedence(child) < min {
		return "(" + s + ")"
	}
	return s
}

func formatExpr(e ast.Operation) string {
	switch expr := e.(type) {
	case *ast.IntLiteral:
		return strconv.FormatInt(expr.Value, 10)
	case *ast.DoubleLiteral:
		return formatDoubleLiteral(expr.Value)
	case *ast.StringLiteral:
		return quote(expr.Value)
	case *ast.BoolLiteral:
		if expr.Value {
			return "true"
		}
		return "false"
	case *ast.ArrayLiteral:
		return "[" + formatList(expr.Elements) + "]"
	case *ast.VariableRef:
		return expr.Name
	case *ast.FunctionCall:
		return expr.Name + "(" + formatList(expr.Args) + ")"
	case *ast.MethodCall:
		recv := operand(expr.Receiver, precPostfix)
		switch expr.Receiver.(type) {
		case *ast.IntLiteral, *ast.DoubleLiteral:
			recv = "(" + recv + ")"
		}
		return recv + "." + expr.Method + "(" + formatList(expr.Args) + ")"
	case *ast.ArrayElement:
		return operand(expr.Array, precPostfix) + "[" + formatExpr(expr.Index) + "]"
	case *ast.Unary:
		inner := operand(expr.Operand, precUnary)
		if _, nested := expr.Operand.(*ast.Unary); nested {
			inner = "(" + inner + ")"
		}
		return string(expr.Op) + inner
	case *ast.Binary:
		p := precedence(expr)
		return operand(expr.Left, p) + " " + string(expr.Op) + " " + operand(expr.Right, p+1)
	case *ast.Comparison:
		return operand(expr.Left, precCompare) + " " + string(expr.Op) + " " + operand(expr.Right, precCompare+1)
	case *ast.Logical:
		if expr.Op == ast.OpNot {
			return "not " + operand(expr.Left, precNot)
		}
		return operand(expr.Left, precLogical) + " " + string(expr.Op) + " " + operand(expr.Right, precNot)
	case *ast.AssignOp:
		return operand(expr.Target, precPostfix) + " = " + formatExpr(expr.Value)
	}
	return ""
}

func formatList(ops []ast.Operation) string {
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = formatExpr(op)
	}
	return strings.Join(parts, ", ")
}

// quote writes s as a double-quoted literal using only the escapes the
// lexer understands.
func quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// formatDoubleLiteral writes value in plain positional notation, since
// the lexer has no exponent syntax.
func formatDoubleLiteral(value float64) string {
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return strconv.FormatFloat(value, 'f', -1, 64)
	}

	raw := strconv.FormatFloat(value, 'g', -1, 64)
	if strings.ContainsAny(raw, "eE") {
		raw = expandScientificNotation(raw)
	}
	if !strings.Contains(raw, ".") {
		raw += ".0"
	}
	return raw
}

func expandScientificNotation(value string) string {
	lower := strings.ToLower(value)
	parts := strings.SplitN(lower, "e", 2)
	if len(parts) != 2 {
		return value
	}

	mantissa := parts[0]
	exponent, err := strconv.Atoi(parts[1])
	if err != nil {
		return value
	}

	sign := ""
	digits := mantissa
	if strings.HasPrefix(digits, "-") {
		sign = "-"
		digits = digits[1:]
	}

	intPart, fracPart, _ := strings.Cut(digits, ".")
	compact := intPart + fracPart
	decimalIndex := len(intPart) + exponent

	if decimalIndex <= 0 {
		return sign + "0." + strings.Repeat("0", -decimalIndex) + compact
	}
	if decimalIndex >= len(compact) {
		return sign + compact + strings.Repeat("0", decimalIndex-len(compact)) + ".0"
	}
	return sign + compact[:decimalIndex] + "." + compact[decimalIndex:]
}
