package mathtex

import "testing"

func TestStripDelimiters(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"$$x^2$$", "x^2"},
		{"$x+1$", "x+1"},
		{"$x", "x"},
		{"x$", "x"},
		{"  $$ x + y $$  ", "x + y"},
		{"x^2", "x^2"},
		{"$", ""},
		{"$$", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := StripDelimiters(tt.in); got != tt.want {
			t.Errorf("StripDelimiters(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestToPlainMath(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"passthrough", "x^2 + 2x + 1", "x^2 + 2x + 1"},
		{"simple fraction", `\frac{a}{b}`, "a/b"},
		{"compound fraction keeps parens", `\frac{a+1}{b}`, "(a+1)/(b)"},
		{"nested fraction", `\frac{\frac{a}{b}}{c}`, "(a/b)/(c)"},
		{"square root", `\sqrt{x}`, "sqrt(x)"},
		{"nth root", `\sqrt[3]{x}`, "root(x,3)"},
		{"root of fraction", `\sqrt{\frac{a}{b}}`, "sqrt(a/b)"},
		{"braced power", "x^{10}", "x^(10)"},
		{"braced subscript", "a_{ij}", "a_(ij)"},
		{"nested power", "x^{a^{b}}", "x^(a^(b))"},
		{"cdot", `a \cdot b`, "a * b"},
		{"times", `a \times b`, "a * b"},
		{"div", `a \div b`, "a / b"},
		{"plus minus", `a \pm b`, "a ± b"},
		{"leq", `x \leq y`, "x ≤ y"},
		{"le shorthand", `x \le y`, "x ≤ y"},
		{"neq", `x \neq y`, "x ≠ y"},
		{"pi", `\pi r^2`, "π r^2"},
		{"sum with bounds", `\sum_{i=1}^{n} i`, "Σ_(i=1)^(n) i"},
		{"integral", `\int_0^\infty f(x) dx`, "∫_0^∞ f(x) dx"},
		{"sized parens", `\left( x \right)`, "( x )"},
		{"invisible delimiter", `\left. x \right|`, "x |"},
		{"greek letters", `\alpha + \beta`, "α + β"},
		{"unknown command dropped", `\mathbf{x}`, "x"},
		{"stray braces removed", "{x} + {y}", "x + y"},
		{"whitespace collapsed", "a   +\t b", "a + b"},
		{"quadratic formula", `x = \frac{-b \pm \sqrt{b^{2} - 4ac}}{2a}`, "x = (-b ± sqrt(b^(2) - 4ac))/(2a)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToPlainMath(tt.in); got != tt.want {
				t.Errorf("ToPlainMath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
