package optimizer

import (
	"strings"
	"testing"

	"github.com/hassan/kotlinc/internal/interp"
	"github.com/hassan/kotlinc/internal/parser"
	"github.com/hassan/kotlinc/internal/parser/ast"
	"github.com/hassan/kotlinc/internal/semantic"
	"github.com/hassan/kotlinc/internal/semantic/types"
)

func analyze(t *testing.T, src string) (*ast.Program, *semantic.Info) {
	t.Helper()
	prog, err := parser.ParseSource(src, "test.kt")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	info, err := semantic.New().Analyze(prog)
	if err != nil {
		t.Fatalf("semantic error: %v", err)
	}
	return prog, info
}

func optimize(t *testing.T, src string) (string, *Stats) {
	t.Helper()
	prog, info := analyze(t, src)
	stats, err := NewOptimizer().Optimize(prog, info)
	if err != nil {
		t.Fatalf("Optimize() error: %v", err)
	}
	return ast.Print(prog), stats
}

// TestConstantFolding tests the constant folding pass
func TestConstantFolding(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		want   string
		folded int
	}{
		{
			name:   "fold nested arithmetic",
			src:    "fun main() {\n    val x = (2 + 3) * 4\n    println(x)\n}",
			want:   "fun main() {\n    val x = 20\n    println(x)\n}\n",
			folded: 2,
		},
		{
			name:   "int arithmetic wraps",
			src:    "fun main() { println(2147483647 + 1) }",
			want:   "fun main() {\n    println(-2147483648)\n}\n",
			folded: 1,
		},
		{
			name:   "mixed numeric operands",
			src:    "fun main() { println(1.0 / 4) }",
			want:   "fun main() {\n    println(0.25)\n}\n",
			folded: 1,
		},
		{
			name:   "string concatenation",
			src:    `fun main() { println("a" + 1 + true) }`,
			want:   "fun main() {\n    println(\"a1true\")\n}\n",
			folded: 2,
		},
		{
			name:   "template with constant parts",
			src:    `fun main() { println("n=${1 + 1}") }`,
			want:   "fun main() {\n    println(\"n=2\")\n}\n",
			folded: 2,
		},
		{
			name:   "comparison and negation",
			src:    "fun main() { val b = !(3 < 2) }",
			want:   "fun main() {\n    val b = true\n}\n",
			folded: 2,
		},
		{
			name:   "unary minus",
			src:    "fun main() { val d = -(1.5) }",
			want:   "fun main() {\n    val d = -1.5\n}\n",
			folded: 1,
		},
		{
			name:   "short circuit keeps right operand",
			src:    "fun f(): Boolean = true\nfun main() { val b = true && f() }",
			want:   "fun f(): Boolean = true\n\nfun main() {\n    val b = f()\n}\n",
			folded: 1,
		},
		{
			name:   "short circuit drops right operand",
			src:    "fun f(): Boolean = true\nfun main() { val b = false && f() }",
			want:   "fun f(): Boolean = true\n\nfun main() {\n    val b = false\n}\n",
			folded: 1,
		},
		{
			name: "division by zero is left alone",
			src:  "fun main() { val y = 1 / 0 }",
			want: "fun main() {\n    val y = 1 / 0\n}\n",
		},
		{
			name: "infinite result is left alone",
			src:  "fun main() { val y = 1.0 / 0.0 }",
			want: "fun main() {\n    val y = 1.0 / 0.0\n}\n",
		},
		{
			name: "variables are not folded",
			src:  "fun main() {\n    var a = 1\n    a = a + 2\n}",
			want: "fun main() {\n    var a = 1\n    a = a + 2\n}\n",
		},
		{
			name:   "index inside an assignment target",
			src:    "fun main() {\n    val xs = arrayOf(1, 2)\n    xs[0 + 1] = 5\n}",
			want:   "fun main() {\n    val xs = arrayOf(1, 2)\n    xs[1] = 5\n}\n",
			folded: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, info := analyze(t, tt.src)
			stats := NewStats()
			if _, err := (&ConstantFoldingPass{}).Run(prog, info, stats); err != nil {
				t.Fatalf("Run() error: %v", err)
			}
			if got := ast.Print(prog); got != tt.want {
				t.Errorf("Print() =\n%s\nwant\n%s", got, tt.want)
			}
			if stats.ConstantsFolded != tt.folded {
				t.Errorf("ConstantsFolded = %d, want %d", stats.ConstantsFolded, tt.folded)
			}
		})
	}
}

func TestConstantFolding_RecordsTypes(t *testing.T) {
	prog, info := analyze(t, "fun main() { val x = 1.5f * 2 }")
	if _, err := (&ConstantFoldingPass{}).Run(prog, info, NewStats()); err != nil {
		t.Fatal(err)
	}
	decl := prog.Decls[0].(*ast.FunDecl).Body.Statements[0].(*ast.PropertyDecl)
	lit, ok := decl.Value.(*ast.LiteralExpr)
	if !ok {
		t.Fatalf("initializer is %T, want *ast.LiteralExpr", decl.Value)
	}
	if lit.Value != float32(3) {
		t.Errorf("folded value = %v, want 3", lit.Value)
	}
	if got := info.TypeOf(lit); !got.Equals(types.Float) {
		t.Errorf("TypeOf(folded) = %v, want Float", got)
	}
}

// TestDeadCodeElimination tests the dead code elimination pass
func TestDeadCodeElimination(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		want    string
		removed int
	}{
		{
			name:    "statements after return",
			src:     "fun f(): Int {\n    return 1\n    println(\"dead\")\n    println(\"dead\")\n}",
			want:    "fun f(): Int {\n    return 1\n}\n",
			removed: 2,
		},
		{
			name:    "statements after break",
			src:     "fun main() {\n    while (true) {\n        break\n        println(1)\n    }\n}",
			want:    "fun main() {\n    while (true) {\n        break\n    }\n}\n",
			removed: 1,
		},
		{
			name:    "while false",
			src:     "fun main() {\n    while (false) println(1)\n    println(2)\n}",
			want:    "fun main() {\n    println(2)\n}\n",
			removed: 1,
		},
		{
			name:    "if true keeps the then branch",
			src:     "fun main() {\n    if (true) println(1) else println(2)\n}",
			want:    "fun main() {\n    {\n        println(1)\n    }\n}\n",
			removed: 1,
		},
		{
			name:    "if false without else",
			src:     "fun main() {\n    if (false) {\n        println(1)\n    }\n    println(2)\n}",
			want:    "fun main() {\n    println(2)\n}\n",
			removed: 1,
		},
		{
			name:    "loop body becomes empty",
			src:     "fun main() {\n    for (i in 0..2) if (false) println(i)\n}",
			want:    "fun main() {\n    for (i in 0..2) {\n    }\n}\n",
			removed: 1,
		},
		{
			name:    "methods are visited",
			src:     "class A {\n    fun m() {\n        return\n        println(0)\n    }\n}",
			want:    "class A {\n    fun m() {\n        return\n    }\n}\n",
			removed: 1,
		},
		{
			name: "value if is kept",
			src:  "fun main() {\n    val x = if (true) 1 else 2\n}",
			want: "fun main() {\n    val x = if (true) 1 else 2\n}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, info := analyze(t, tt.src)
			stats := NewStats()
			if _, err := (&DeadCodeEliminationPass{}).Run(prog, info, stats); err != nil {
				t.Fatalf("Run() error: %v", err)
			}
			if got := ast.Print(prog); got != tt.want {
				t.Errorf("Print() =\n%s\nwant\n%s", got, tt.want)
			}
			if stats.StatementsRemoved != tt.removed {
				t.Errorf("StatementsRemoved = %d, want %d", stats.StatementsRemoved, tt.removed)
			}
		})
	}
}

// TestOptimizer_FixedPoint checks that folding exposes dead code to the
// next pass and that the loop stops once nothing changes.
func TestOptimizer_FixedPoint(t *testing.T) {
	got, stats := optimize(t, "fun main() {\n    if (1 > 2) println(\"a\") else println(\"b\")\n}")
	want := "fun main() {\n    {\n        println(\"b\")\n    }\n}\n"
	if got != want {
		t.Errorf("Print() =\n%s\nwant\n%s", got, want)
	}
	if stats.ConstantsFolded != 1 || stats.StatementsRemoved != 1 {
		t.Errorf("stats = %s", stats)
	}
	if stats.Iterations != 2 {
		t.Errorf("Iterations = %d, want 2", stats.Iterations)
	}
	if stats.PassExecutions[PassConstantFolding] != 2 || stats.PassExecutions[PassDeadCode] != 2 {
		t.Errorf("PassExecutions = %v", stats.PassExecutions)
	}
}

func TestOptimizer_MaxIterations(t *testing.T) {
	prog, info := analyze(t, "fun main() { val x = 1 + 2 }")
	o := NewOptimizer()
	o.SetMaxIterations(1)
	stats, err := o.Optimize(prog, info)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Iterations != 1 {
		t.Errorf("Iterations = %d, want 1", stats.Iterations)
	}
}

func TestFromNames(t *testing.T) {
	o, err := FromNames([]string{PassDeadCode})
	if err != nil {
		t.Fatal(err)
	}
	if len(o.passes) != 1 || o.passes[0].Name() != PassDeadCode {
		t.Errorf("passes = %v", o.passes)
	}
	if _, err := FromNames([]string{"inline"}); err == nil || !strings.Contains(err.Error(), `"inline"`) {
		t.Errorf("FromNames(inline) error = %v", err)
	}
}

// TestOptimizer_PreservesOutput runs each program with and without the
// optimizer and compares what it prints.
func TestOptimizer_PreservesOutput(t *testing.T) {
	programs := map[string]string{
		"numerics": `fun main() {
    println(0.1 + 0.2)
    println(1 / 3.0f)
    println(7 % -3)
    println(1e300 * 1e300)
    println(-(2147483647 + 1))
    println(1e7 + 0)
}`,
		"strings": `fun main() {
    val n = 3
    println("n=${n}, k=${2 * 2}")
    println("" + 1.0 + 2.5f + false)
}`,
		"control flow": `fun f(n: Int): Int {
    if (2 > 1) {
        return n * (3 - 1)
    }
    return 0
}
fun main() {
    var i = 0
    while (true) {
        i++
        if (i > 2 * 2) break
        continue
        println("never")
    }
    while (1 == 2) println("never")
    println(f(i))
    println(true || f(0) > 0)
}`,
	}

	for name, src := range programs {
		t.Run(name, func(t *testing.T) {
			plain := runProgram(t, src, false)
			optimized := runProgram(t, src, true)
			if plain != optimized {
				t.Errorf("optimized output = %q, want %q", optimized, plain)
			}
		})
	}
}

func runProgram(t *testing.T, src string, opt bool) string {
	t.Helper()
	prog, info := analyze(t, src)
	if opt {
		if _, err := NewOptimizer().Optimize(prog, info); err != nil {
			t.Fatal(err)
		}
	}
	var out strings.Builder
	if err := interp.New(prog, info).Run(&out); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	return out.String()
}
