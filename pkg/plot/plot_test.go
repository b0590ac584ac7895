package plot_test

import (
	"context"
	"testing"

	"github.com/woven-lang/woven/pkg/compiler"
	"github.com/woven-lang/woven/pkg/plot"
)

func TestLinspace(t *testing.T) {
	tests := []struct {
		from, to float64
		n        int
		want     []float64
	}{
		{0, 1, 5, []float64{0, 0.25, 0.5, 0.75, 1}},
		{2, 2, 1, []float64{2}},
		{-1, 1, 3, []float64{-1, 0, 1}},
		{0, 1, 0, nil},
	}
	for _, tt := range tests {
		got := plot.Linspace(tt.from, tt.to, tt.n)
		if len(got) != len(tt.want) {
			t.Fatalf("Linspace(%v, %v, %d) = %v", tt.from, tt.to, tt.n, got)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Linspace(%v, %v, %d)[%d] = %v, want %v", tt.from, tt.to, tt.n, i, got[i], tt.want[i])
			}
		}
	}
}

func TestParseDefinitionFoldsConstants(t *testing.T) {
	d, err := plot.ParseDefinition("f(x) = (1/2 + 1/2) * x^2 + 2*3")
	if err != nil {
		t.Fatal(err)
	}
	if d.Head != "f(x)" {
		t.Errorf("head %q", d.Head)
	}
	if d.Body != "6 + 1 * x^2" {
		t.Errorf("body %q", d.Body)
	}
	if d.Source() != "fn f(x) = 6 + 1 * x^2;" {
		t.Errorf("source %q", d.Source())
	}
}

func TestParseDefinitionKeepsUnfoldableBody(t *testing.T) {
	d, err := plot.ParseDefinition("g(x) = x / (1 - 1)")
	if err != nil {
		t.Fatal(err)
	}
	if d.Body != "x / (1 - 1)" && d.Body != "x / 0" {
		t.Errorf("body %q", d.Body)
	}

	d, err = plot.ParseDefinition("h(x) = [x, x][1]")
	if err != nil {
		t.Fatal(err)
	}
	if d.Body != "[x, x][1]" {
		t.Errorf("non-algebraic body rewritten to %q", d.Body)
	}
}

func TestParseDefinitionErrors(t *testing.T) {
	for _, def := range []string{"x^2", "f(x) =", "= x", "f = x"} {
		if _, err := plot.ParseDefinition(def); err == nil {
			t.Errorf("ParseDefinition(%q) should fail", def)
		}
	}
}

func TestSample(t *testing.T) {
	c := compiler.New(compiler.Settings{})
	points, err := plot.Sample(context.Background(), c, "f(x) = x^2 + 1", []float64{-1, 0, 2})
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{2, 1, 5}
	for i, p := range points {
		if !p.Valid || p.Y != want[i] {
			t.Errorf("point %d = %+v, want y=%v", i, p, want[i])
		}
	}
}

func TestSampleInvalidPoints(t *testing.T) {
	c := compiler.New(compiler.Settings{})
	points, err := plot.Sample(context.Background(), c, "f(x) = 1 / x", []float64{-2, 0, 4})
	if err != nil {
		t.Fatal(err)
	}
	if !points[0].Valid || points[0].Y != -0.5 {
		t.Errorf("point 0 = %+v", points[0])
	}
	if points[1].Valid {
		t.Errorf("division by zero should be no data point, got %+v", points[1])
	}
	if !points[2].Valid || points[2].Y != 0.25 {
		t.Errorf("point 2 = %+v", points[2])
	}

	points, err = plot.Sample(context.Background(), c, `s(x) = "text"`, []float64{1})
	if err != nil {
		t.Fatal(err)
	}
	if points[0].Valid {
		t.Error("a string result should be no data point")
	}

	points, err = plot.Sample(context.Background(), c, "r(x) = sqrt(x)", []float64{-1})
	if err != nil {
		t.Fatal(err)
	}
	if points[0].Valid {
		t.Error("NaN should be no data point")
	}
}

func TestSampleBadDefinition(t *testing.T) {
	c := compiler.New(compiler.Settings{})
	points, err := plot.Sample(context.Background(), c, "f(x) = x +", []float64{1, 2})
	if err == nil {
		t.Fatal("expected a syntax error")
	}
	if len(points) != 2 || points[0].Valid || points[1].Valid || points[1].X != 2 {
		t.Errorf("points %+v", points)
	}
}

func TestSampleCancelled(t *testing.T) {
	c := compiler.New(compiler.Settings{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := plot.Sample(ctx, c, "f(x) = x", []float64{1}); err == nil {
		t.Error("expected a cancellation error")
	}
}
