// Package help holds the reference text printed by `bs help`.
package help

import (
	"fmt"
	"strings"

	"github.com/blockcraft/blockscript/pkg/stdlib"
)

// Version is the language version the reference describes.
const Version = "v0.1"

// QUICKREF is the one-screen summary printed by `bs help` with no topic.
const QUICKREF = `BlockScript ` + Version + ` quick reference

  x: Int = 1                 declare (Int, Double, String, Bool, Array<T>(n), T[n])
  x = x + 1                  assign an existing variable
  print x                    append a line to the console output
  if c { } elif c { } else { }
  for (i: Int = 0; i < n; i = i + 1) { }
  while c { }                break / continue inside loops
  func f(a: Int) { return a }

  bs run prog.bs             run a program
  bs check prog.bs           parse and lint without running
  bs fmt prog.bs             print the program in canonical layout
  bs repl                    interactive shell

Topics (bs help <topic>): syntax, types, operators, flow, functions, builtins, errors
`

// TopicList is the display order of the help topics.
var TopicList = []string{"syntax", "types", "operators", "flow", "functions", "builtins", "errors"}

// Topics maps topic names to their text.
var Topics = map[string]string{
	"syntax": `SYNTAX

A program is a sequence of statements. Statements end at a newline or ';'.
An expression continues onto the next line while it is incomplete, so
  total: Int = a +
    b
is one declaration. '#' starts a comment that runs to the end of the line.

Identifiers start with a letter, '_' or '$'. Keywords:
  if elif else for while break continue return func print
  true false and or not Int Double String Bool Array

Literals:
  42            Int
  2.5  3.       Double
  "hi"  'hi'    String (escapes: \n \t \\ \" \')
  true false    Bool
  [1, 2, 3]     array literal
`,

	"types": `TYPES

  Int           64-bit signed integer
  Double        64-bit floating point
  String        text
  Bool          true or false
  Array<T>(n)   fixed-size array of n elements of type T
  T[n]          same as Array<T>(n); T[n][m] is n arrays of m elements

Declarations:
  x: Int              uninitialized; reading it prints "Uninitialized Int"
  x: Double = 1       an Int value is widened to Double
  a: Int[3]           arrays are created filled with zero values
  a: Array<Int>(4) = [2, 4, 6, 7]

Initializers are evaluated lazily, on the first read of the variable, and
then cached. Array sizes are evaluated at declaration and never change.
Assigning an array copies it.
`,

	"operators": `OPERATORS (loosest first)

  = (assignment, right-assoc, usable as an expression)
  and  &&   or  ||     Bool operands, short-circuit
  not  !               Bool operand
  == != < > <= >=      numbers compare across Int and Double;
                       strings compare with strings; Bool supports == and !=
  + -                  Int+Int is Int; any Double makes a Double;
                       String+String concatenates
  * /                  Int/Int divides and truncates; n * "ab" repeats
  unary - +
  a[i]  f(x)  v.m(x)   index, call, method call

Mixing other kinds is a type error (E_TYPE). Int division by zero is E_ARITH.
`,

	"flow": `CONTROL FLOW

  if x > 0 {
    print "pos"
  } elif x < 0 {       'else if' is accepted too
    print "neg"
  } else {
    print "zero"
  }

  for (i: Int = 0; i < 3; i = i + 1) { }   parentheses optional
  while cond { }

Conditions must be Bool. 'break' leaves the innermost loop; 'continue' runs
the for step and re-checks the condition. Using them outside a loop, or
'return' outside a function, is E_CONTROL_FLOW at run time and a warning
from bs check.
`,

	"functions": `FUNCTIONS

  func add(a: Int, b: Double) {
    return a + b
  }
  print add(1, 2.5)

Arguments are converted to the parameter types. A function with no return
value yields Void. Functions see the variables of the block they are declared
in; a call from elsewhere does not add the caller's variables. Recursion is
limited to Run.MaxCallDepth frames (E_STACK_OVERFLOW). A user function
hides a builtin of the same name.
`,

	"builtins": `BUILTINS

Functions:
  len(x)          length of a String or Array
  str(x)          printed form of any value
  int(x)          Double truncated, String parsed, Bool as 0/1
  double(x)       Int, Double or String as Double
  abs(n) min(a, b) max(a, b) pow(a, b) sqrt(x)

Methods:
  String  length() upper() lower() title() trim() contains(s)
          substring(start, end) charAt(i)
  Array   size() length() contains(v) indexOf(v)
  Int, Double   toString() toInt() toDouble() abs()

Number receivers need parentheses: (5).toString()
`,

	"errors": `ERRORS

  E_LEX             malformed literal, unterminated string (strict mode)
  E_SYNTAX          unexpected token, unclosed bracket
  E_NAME            undeclared or duplicate name
  E_TYPE            operand, argument or declaration type mismatch
  E_CONTROL_FLOW    break, continue or return outside their construct
  E_INDEX           array index out of range
  E_ARITH           integer division by zero
  E_STACK_OVERFLOW  recursion deeper than Run.MaxCallDepth

Lex and syntax errors stop before anything runs. A runtime error stops the
run; lines printed before it are kept. Lint warnings (W_*) never stop a run.
`,
}

// MatchTopic resolves a topic name or unambiguous prefix.
func MatchTopic(query string) (name, content string, err error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if content, ok := Topics[query]; ok {
		return query, content, nil
	}
	var matches []string
	for _, t := range TopicList {
		if query != "" && strings.HasPrefix(t, query) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return "", "", fmt.Errorf("unknown topic %q (available: %s)", query, strings.Join(TopicList, ", "))
	case 1:
		return matches[0], Topics[matches[0]], nil
	}
	return "", "", fmt.Errorf("ambiguous topic %q matches %s", query, strings.Join(matches, ", "))
}

// BuiltinIndex lists every builtin function and method in a registry.
func BuiltinIndex(r *stdlib.Registry) string {
	var b strings.Builder
	names := r.Names()
	methods := r.MethodNames()

	b.WriteString("Functions:\n")
	for _, n := range names {
		fmt.Fprintf(&b, "  %-8s %s\n", n, arity(r.Get(n).Arity))
	}
	b.WriteString("Methods:\n")
	for _, m := range methods {
		fmt.Fprintf(&b, "  %s\n", m)
	}
	fmt.Fprintf(&b, "Total: %d functions, %d methods\n", len(names), len(methods))
	return b.String()
}

func arity(n int) string {
	switch n {
	case -1:
		return "any arguments"
	case 1:
		return "1 argument"
	}
	return fmt.Sprintf("%d arguments", n)
}
