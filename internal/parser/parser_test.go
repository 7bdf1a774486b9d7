package parser

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/hassan/kotlinc/internal/lexer"
	"github.com/hassan/kotlinc/internal/parser/ast"
)

// sexpr renders an expression tree with explicit grouping so tests can
// check how operators bind.
func sexpr(node ast.Node) string {
	switch n := node.(type) {
	case *ast.LiteralExpr:
		return ast.Print(n)
	case *ast.IdentifierExpr:
		return n.Name
	case *ast.ThisExpr:
		return "this"
	case *ast.TemplateExpr:
		parts := make([]string, len(n.Parts))
		for i, p := range n.Parts {
			parts[i] = sexpr(p)
		}
		return "(template " + strings.Join(parts, " ") + ")"
	case *ast.GroupingExpr:
		return "(group " + sexpr(n.Expr) + ")"
	case *ast.UnaryExpr:
		if n.IsPostfix {
			return "(post" + n.Operator.Lexeme + " " + sexpr(n.Operand) + ")"
		}
		return "(" + n.Operator.Lexeme + " " + sexpr(n.Operand) + ")"
	case *ast.BinaryExpr:
		return "(" + n.Operator.Lexeme + " " + sexpr(n.Left) + " " + sexpr(n.Right) + ")"
	case *ast.RangeExpr:
		return "(.. " + sexpr(n.Low) + " " + sexpr(n.High) + ")"
	case *ast.InfixCallExpr:
		return "(" + n.Function.Name + " " + sexpr(n.Left) + " " + sexpr(n.Right) + ")"
	case *ast.AssignmentExpr:
		return "(" + n.Operator.Lexeme + " " + sexpr(n.Target) + " " + sexpr(n.Value) + ")"
	case *ast.MemberExpr:
		return "(. " + sexpr(n.Object) + " " + n.Member.Name + ")"
	case *ast.IndexExpr:
		return "([] " + sexpr(n.Object) + " " + sexpr(n.Index) + ")"
	case *ast.CallExpr:
		s := "(call " + sexpr(n.Callee)
		for _, a := range n.Args {
			s += " " + sexpr(a)
		}
		return s + ")"
	case *ast.ArrayLiteralExpr:
		s := "(arrayOf"
		if n.ElementType != nil {
			s += "<" + n.ElementType.String() + ">"
		}
		for _, e := range n.Elements {
			s += " " + sexpr(e)
		}
		return s + ")"
	case *ast.IfExpr:
		s := "(if " + sexpr(n.Condition) + " " + sexpr(n.Then)
		if n.Else != nil {
			s += " " + sexpr(n.Else)
		}
		return s + ")"
	case *ast.ExprStmt:
		return sexpr(n.Expression)
	case *ast.BlockStmt:
		parts := make([]string, len(n.Statements))
		for i, s := range n.Statements {
			parts[i] = sexpr(s)
		}
		return "{" + strings.Join(parts, "; ") + "}"
	case *ast.ReturnStmt:
		if n.Value == nil {
			return "return"
		}
		return "(return " + sexpr(n.Value) + ")"
	}
	return fmt.Sprintf("<%T>", node)
}

func parseBody(t *testing.T, body string) []ast.Stmt {
	t.Helper()
	prog, err := ParseSource("fun main() {\n"+body+"\n}", "test.kt")
	if err != nil {
		t.Fatalf("ParseSource(%q): %v", body, err)
	}
	return prog.Decls[0].(*ast.FunDecl).Body.Statements
}

func parseExpr(t *testing.T, src string) ast.Expr {
	t.Helper()
	stmts := parseBody(t, src)
	if len(stmts) != 1 {
		t.Fatalf("%q: got %d statements, want 1", src, len(stmts))
	}
	stmt, ok := stmts[0].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("%q: got %T, want *ast.ExprStmt", src, stmts[0])
	}
	return stmt.Expression
}

func TestParser_Expressions(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"1 + 2 * 3", "(+ 1 (* 2 3))"},
		{"1 - 2 - 3", "(- (- 1 2) 3)"},
		{"a = b = c", "(= a (= b c))"},
		{"a || b && c", "(|| a (&& b c))"},
		{"a == b < c", "(== a (< b c))"},
		{"a === b", "(=== a b)"},
		{"x in 0 until n", "(in x (until 0 n))"},
		{"x !in r", "(!in x r)"},
		{"0..n step 2", "(step (.. 0 n) 2)"},
		{"10 downTo 0 step 2", "(step (downTo 10 0) 2)"},
		{"1..n + 1", "(.. 1 (+ n 1))"},
		{"-a.b", "(- (. a b))"},
		{"!a == b", "(== (! a) b)"},
		{"-x * y", "(* (- x) y)"},
		{"a[i][j] += 1", "(+= ([] ([] a i) j) 1)"},
		{"i++ + ++j", "(+ (post++ i) (++ j))"},
		{"f(1, 2,)", "(call f 1 2)"},
		{"f()", "(call f)"},
		{"p.move(1).x", "(. (call (. p move) 1) x)"},
		{"this.x = 2", "(= (. this x) 2)"},
		{"arrayOf<Int>(1, 2)", "(arrayOf<Int> 1 2)"},
		{"arrayOf<Array<Int>>(arrayOf<Int>(1))", "(arrayOf<Array<Int>> (arrayOf<Int> 1))"},
		{"arrayOf(1)", "(arrayOf 1)"},
		{"arrayOf < b", "(< arrayOf b)"},
		{"(1 + 2) * 3", "(* (group (+ 1 2)) 3)"},
		{"if (a) 1 else 2", "(if a 1 2)"},
		{"if (a) { 1 } else if (b) 2 else 3", "(if a {1} (if b 2 3))"},
		{"x = if (a) 1 else 2", "(= x (if a 1 2))"},
		{"1.5 + 0.5f", "(+ 1.5 0.5f)"},
		{`"n = $n"`, `(template "n = " n)`},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			got := sexpr(parseExpr(t, tt.source))
			if got != tt.want {
				t.Errorf("parse(%q) = %s, want %s", tt.source, got, tt.want)
			}
		})
	}
}

func TestParser_Newlines(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		counts int
	}{
		{"plus starts a new statement", "val a = 1\n+ 2", 2},
		{"dot continues", "val a = b\n.c", 1},
		{"and continues", "val a = b\n&& c", 1},
		{"or continues", "val a = b\n|| c", 1},
		{"call on next line is a new statement", "val a = f\n(1)", 2},
		{"inside parentheses", "val a = (1\n+ 2)", 1},
		{"inside arguments", "f(1,\n2)", 1},
		{"bare return", "return\n1", 2},
		{"else on next line", "if (a) b\nelse c", 1},
		{"semicolons", "x++; y++;", 2},
		{"postfix on next line", "val a = b\n++c", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmts := parseBody(t, tt.body)
			if len(stmts) != tt.counts {
				var got []string
				for _, s := range stmts {
					got = append(got, sexpr(s))
				}
				t.Errorf("got %d statements %v, want %d", len(stmts), got, tt.counts)
			}
		})
	}
}

func TestParser_Statements(t *testing.T) {
	stmts := parseBody(t, `
for (i in 0..n) println(i)
for (x: Int in arr) {
    total += x
}
while (i < 10) i++
do {
    i--
} while (i > 0)
val local = 1
var counter: Int = 0
fun helper(): Int = 1
class Local {
    var b = 10
}
return
`)

	expected := []string{
		"*ast.ForStmt", "*ast.ForStmt", "*ast.WhileStmt", "*ast.DoWhileStmt",
		"*ast.PropertyDecl", "*ast.PropertyDecl", "*ast.FunDecl", "*ast.ClassDecl",
		"*ast.ReturnStmt",
	}
	if len(stmts) != len(expected) {
		t.Fatalf("got %d statements, want %d", len(stmts), len(expected))
	}
	for i, want := range expected {
		if got := fmt.Sprintf("%T", stmts[i]); got != want {
			t.Errorf("statement %d = %s, want %s", i, got, want)
		}
	}

	loop := stmts[0].(*ast.ForStmt)
	if loop.Variable.Name != "i" || sexpr(loop.Iterable) != "(.. 0 n)" {
		t.Errorf("for header = %s in %s", loop.Variable.Name, sexpr(loop.Iterable))
	}
	if _, ok := loop.Body.(*ast.ExprStmt); !ok {
		t.Errorf("single statement body = %T, want *ast.ExprStmt", loop.Body)
	}
	if typed := stmts[1].(*ast.ForStmt); typed.VarType == nil || typed.VarType.String() != "Int" {
		t.Errorf("loop variable type = %v, want Int", typed.VarType)
	}
	if !stmts[5].(*ast.PropertyDecl).Mutable() || stmts[4].(*ast.PropertyDecl).Mutable() {
		t.Error("val/var mutability not recorded")
	}
	if ret := stmts[8].(*ast.ReturnStmt); ret.Value != nil {
		t.Errorf("bare return has value %s", sexpr(ret.Value))
	}
}

func TestParser_Declarations(t *testing.T) {
	src := `val n = 5

class Point {
    var x : Double = 0.0
    var y : Double = 0.0
    fun len2(): Double = x * x + y * y
}

class Empty

fun sqrDist(p1: Point, p2: Point,) : Double = sqr(p2.x - p1.x)

fun main() {
    println("Hello")
}
`
	prog, err := ParseSource(src, "Sample.kt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prog.Filename != "Sample.kt" {
		t.Errorf("filename = %q", prog.Filename)
	}
	if len(prog.Decls) != 5 {
		t.Fatalf("got %d declarations, want 5", len(prog.Decls))
	}

	point := prog.Decls[1].(*ast.ClassDecl)
	if point.Name.Name != "Point" || len(point.Properties) != 2 || len(point.Methods) != 1 || len(point.Members) != 3 {
		t.Errorf("class Point: %d properties, %d methods", len(point.Properties), len(point.Methods))
	}
	if point.Properties[0].Type.String() != "Double" {
		t.Errorf("x type = %s, want Double", point.Properties[0].Type)
	}

	if empty := prog.Decls[2].(*ast.ClassDecl); len(empty.Members) != 0 {
		t.Errorf("class Empty has %d members", len(empty.Members))
	}

	fn := prog.Decls[3].(*ast.FunDecl)
	if len(fn.Params) != 2 || fn.Params[1].Type.String() != "Point" {
		t.Errorf("sqrDist params = %d", len(fn.Params))
	}
	if fn.ReturnType.String() != "Double" || fn.ExprBody == nil || fn.Body != nil {
		t.Errorf("sqrDist should have an expression body returning Double")
	}

	if prog.Function("main") == nil {
		t.Error("Function(main) = nil")
	}
	if prog.Function("missing") != nil {
		t.Error("Function(missing) != nil")
	}
}

func TestParser_PropertyWithoutInitializer(t *testing.T) {
	prog, err := ParseSource("fun main() {\n    var x: Int\n    x = 1\n}", "test.kt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decl := prog.Function("main").Body.Statements[0].(*ast.PropertyDecl)
	if decl.Value != nil || decl.Type.String() != "Int" || !decl.Mutable() {
		t.Errorf("var x: Int parsed as %s", ast.Print(decl))
	}
	if end := decl.End(); end.Line != 2 || end.Column != 15 {
		t.Errorf("End() = %v, want 2:15", end)
	}
}

func TestParser_SmallestInt(t *testing.T) {
	for _, src := range []string{"val x = -2147483648", "val x = -2147483648 + 1", "val x = (-2147483648)"} {
		prog, err := ParseSource(src, "test.kt")
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", src, err)
		}
		if got := ast.Print(prog); got != src+"\n" {
			t.Errorf("Print(%s) = %q", src, got)
		}
	}

	prog, err := ParseSource("val x = -2147483648", "test.kt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	neg := prog.Decls[0].(*ast.PropertyDecl).Value.(*ast.UnaryExpr)
	lit := neg.Operand.(*ast.LiteralExpr)
	if v, ok := lit.Value.(int32); !ok || v != math.MinInt32 {
		t.Errorf("operand value = %#v, want int32(%d)", lit.Value, math.MinInt32)
	}
}

func TestPrint_Program(t *testing.T) {
	prog, err := ParseSource("val n = 5\nfun main() { var x: Int; x = n }\nclass A", "test.kt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "val n = 5\n\nfun main() {\n    var x: Int\n    x = n\n}\n\nclass A\n"
	if got := ast.Print(prog); got != want {
		t.Errorf("Print() = %q, want %q", got, want)
	}
}

func TestParser_TemplatePositions(t *testing.T) {
	prog, err := ParseSource(`val s = "a${b + c}"`, "test.kt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tmpl := prog.Decls[0].(*ast.PropertyDecl).Value.(*ast.TemplateExpr)
	if len(tmpl.Parts) != 2 {
		t.Fatalf("got %d parts, want 2", len(tmpl.Parts))
	}
	sum, ok := tmpl.Parts[1].(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("part 1 = %T, want *ast.BinaryExpr", tmpl.Parts[1])
	}
	if pos := sum.Left.Pos(); pos.Line != 1 || pos.Column != 13 {
		t.Errorf("b position = %v, want 1:13", pos)
	}
	if pos := sum.Right.Pos(); pos.Column != 17 || pos.Filename != "test.kt" {
		t.Errorf("c position = %v, want test.kt:1:17", pos)
	}
}

func TestParser_Errors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		message string
		line    int
		column  int
	}{
		{"no type and no initializer", "val x", "this variable must either have a type annotation or be initialized: expected ':' or '=', found end of file", 1, 6},
		{"two statements on a line", "fun main() { val a = 1 val b = 2 }", "expected newline or ';', found 'val'", 1, 24},
		{"missing operand", "fun main() { 1 + }", "expected expression, found '}'", 1, 18},
		{"invalid target", "fun main() { (1 + 2) = 3 }", "invalid assignment target", 1, 22},
		{"missing colon", "fun f(a Int) {}", "expected ':', found 'Int'", 1, 9},
		{"bad class member", "class A { println() }", "expected class member, found 'println'", 1, 11},
		{"statement at top level", "println()", "expected declaration, found 'println'", 1, 1},
		{"empty if branch", "fun main() { if (a) }", "expected expression, found '}'", 1, 21},
		{"unclosed block", "fun main() {\n", "unterminated block: expected '}', found end of file", 2, 1},
		{"unclosed call", "fun main() { f(1 }", "expected ')', found '}'", 1, 18},
		{"bad template", `val s = "${1 +}"`, "expected expression, found end of file", 1, 15},
		{"missing body", "fun f()", "expected function body, found end of file", 1, 8},
		{"int out of range", "val x = 2147483648", "the value is out of range", 1, 9},
		{"int out of range after minus", "val x = -2147483648.toString()", "the value is out of range", 1, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSource(tt.source, "test.kt")
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, ErrSyntax) {
				t.Fatalf("errors.Is(err, ErrSyntax) = false for %v", err)
			}
			var syntaxErr *SyntaxError
			if !errors.As(err, &syntaxErr) {
				t.Fatalf("error %T is not *SyntaxError", err)
			}
			if syntaxErr.Message() != tt.message {
				t.Errorf("message = %q, want %q", syntaxErr.Message(), tt.message)
			}
			if syntaxErr.Pos.Line != tt.line || syntaxErr.Pos.Column != tt.column {
				t.Errorf("position = %d:%d, want %d:%d", syntaxErr.Pos.Line, syntaxErr.Pos.Column, tt.line, tt.column)
			}
			if !strings.Contains(err.Error(), "syntax error") {
				t.Errorf("Error() = %q", err.Error())
			}
		})
	}
}

func TestParser_TemplateLexError(t *testing.T) {
	_, err := ParseSource(`val s = "${1 # 2}"`, "test.kt")
	var lexErr *lexer.LexError
	if !errors.As(err, &lexErr) {
		t.Fatalf("got %v, want *lexer.LexError", err)
	}
	if lexErr.Pos.Column != 14 {
		t.Errorf("column = %d, want 14", lexErr.Pos.Column)
	}
}

func TestParseStatements(t *testing.T) {
	tokens, err := lexer.Tokenize("val x = 1\nprintln(x)\nfun f() = 2", "<repl>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stmts, err := New(tokens).ParseStatements()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stmts) != 3 {
		t.Fatalf("got %d statements, want 3", len(stmts))
	}
	if _, ok := stmts[2].(*ast.FunDecl); !ok {
		t.Errorf("statement 2 = %T, want *ast.FunDecl", stmts[2])
	}
}

func TestParser_RoundTrip(t *testing.T) {
	sources := []string{
		`/**
 * Comments
 */

val n = 5
val m = 10

fun sqrDist(x1 : Double, y1 : Double, x2 : Double, y2 : Double) : Double = (x2 - x1) * (x2 - x1) + (y2 - y1) * (y2 - y1)

fun round(x : Double) : Int = (x * 10000.0).toInt()

fun main() {
    println("Hello, world!!!")

    for (i in 0..n) {
        for (j in 0..m)
        	println(round(sqrDist(0.5, 0.5, 1.0 / n * i, 1.0 / m * j)))
		println("row")
    }
}`,
		`class A {
	var a = 2
	fun test() {
		println(++a)
	}
}

fun main() {
	val a = A()
	class A {
		var b = 10
	}
	if (a.a > 1) println("big") else { println("small") }
	var i = 0
	do i++ while (i < 3)
	while (true) { if (i == 3) break else continue }
	val s = "i=$i, next=${i + 1}, \$literal"
	val arr = arrayOf<Array<Int>>(arrayOf<Int>(1, 2))
	arr[0][1] -= -1
	for (k in 10 downTo 0 step 2) print(k)
	println(!(i !in 0 until 5) && i === i)
}`,
	}

	for i, src := range sources {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			prog, err := ParseSource(src, "test.kt")
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			first := ast.Print(prog)

			again, err := ParseSource(first, "test.kt")
			if err != nil {
				t.Fatalf("reparse printed output: %v\n%s", err, first)
			}
			second := ast.Print(again)
			if first != second {
				t.Errorf("round trip mismatch:\nfirst:\n%s\nsecond:\n%s", first, second)
			}
		})
	}
}
