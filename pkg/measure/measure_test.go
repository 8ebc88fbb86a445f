package measure

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/typediagram/pkg/richtext"
)

const tolerance = 1e-9

func approxEqual(a, b float64) bool { return math.Abs(a-b) < tolerance }

func TestMemoCachesSuccessfulMeasurements(t *testing.T) {
	calls := 0
	inner := Func(func(run richtext.Run) (Size, error) {
		calls++
		return Size{Width: float64(len(run.String())), Height: 10}, nil
	})
	m := Memo(inner)

	for i := 0; i < 3; i++ {
		s, err := m.Measure(richtext.Plain("abc"))
		if err != nil {
			t.Fatalf("Measure: %v", err)
		}
		if s.Width != 3 {
			t.Errorf("Width = %v, want 3", s.Width)
		}
	}
	if calls != 1 {
		t.Errorf("inner called %d times, want 1", calls)
	}

	if _, err := m.Measure(richtext.Italic("abc")); err != nil {
		t.Fatalf("Measure: %v", err)
	}
	if calls != 2 {
		t.Errorf("differently styled run should miss the cache; calls = %d", calls)
	}
}

func TestMemoDoesNotCacheErrors(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	m := Memo(Func(func(richtext.Run) (Size, error) {
		calls++
		return Size{}, boom
	}))

	for i := 0; i < 2; i++ {
		if _, err := m.Measure(richtext.Plain("x")); !errors.Is(err, boom) {
			t.Fatalf("Measure error = %v, want %v", err, boom)
		}
	}
	if calls != 2 {
		t.Errorf("errors should not be cached; calls = %d", calls)
	}
}

func TestMemoEvictsLeastRecentlyUsed(t *testing.T) {
	calls := map[string]int{}
	m := MemoSize(Func(func(run richtext.Run) (Size, error) {
		calls[run.String()]++
		return Size{Width: 1, Height: 1}, nil
	}), 2)

	for _, text := range []string{"a", "b", "a", "c", "a", "b"} {
		if _, err := m.Measure(richtext.Plain(text)); err != nil {
			t.Fatalf("Measure(%q): %v", text, err)
		}
	}
	// "b" was evicted by "c"; "a" stayed because it was used again.
	want := map[string]int{"a": 1, "b": 2, "c": 1}
	if diff := cmp.Diff(want, calls); diff != "" {
		t.Errorf("inner calls mismatch (-want +got):\n%s", diff)
	}
	if n := m.(*memo).sizes.Len(); n != 2 {
		t.Errorf("memo holds %d runs, want at most 2", n)
	}
}

func TestMemoIsIdempotent(t *testing.T) {
	m := Memo(Approximate{Typography: DefaultTypography()})
	if Memo(m) != m {
		t.Error("Memo of a memo should return it unchanged")
	}
}

func TestApproximate(t *testing.T) {
	a := Approximate{Typography: DefaultTypography()}

	tests := []struct {
		name      string
		run       richtext.Run
		wantWidth float64
	}{
		{"empty", richtext.Plain(""), 0},
		{"two normal runes", richtext.Plain("ab"), 2 * 30 * charWidthRatio},
		{"lambda counts as one rune", richtext.Plain("λ"), 30 * charWidthRatio},
		{"subscript is narrower", richtext.Concat(richtext.Italic("t"), richtext.Sub("1")), 30*charWidthRatio + 15*charWidthRatio},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.Measure(tt.run)
			if err != nil {
				t.Fatalf("Measure: %v", err)
			}
			if !approxEqual(got.Width, tt.wantWidth) {
				t.Errorf("Width = %v, want %v", got.Width, tt.wantWidth)
			}
		})
	}
}

func TestApproximateSubscriptExtendsHeight(t *testing.T) {
	a := Approximate{Typography: DefaultTypography()}
	plain, _ := a.Measure(richtext.Plain("t"))
	sub, _ := a.Measure(richtext.Concat(richtext.Plain("t"), richtext.Sub("1")))
	if sub.Height <= plain.Height {
		t.Errorf("subscripted height %v should exceed plain height %v", sub.Height, plain.Height)
	}
}

func TestTypographyValidate(t *testing.T) {
	if err := DefaultTypography().Validate(); err != nil {
		t.Errorf("default typography should be valid: %v", err)
	}
	bad := DefaultTypography()
	bad.SubscriptSize = 0
	if err := bad.Validate(); err == nil {
		t.Error("zero subscript size should be invalid")
	}
}

func TestTypographyBaseline(t *testing.T) {
	typo := DefaultTypography()
	if got := typo.Baseline(richtext.StyleNormal, 0, 0); got != 23 {
		t.Errorf("normal baseline = %v, want 23", got)
	}
	if got := typo.Baseline(richtext.StyleSubscript, 0, 0); got != 28 {
		t.Errorf("subscript baseline = %v, want 28", got)
	}
	// A middle line box [base-asc, base+desc] is centered on the anchor.
	asc, desc := 18.0, 4.0
	base := typo.Baseline(richtext.StyleMiddle, asc, desc)
	if !approxEqual((base-asc)+(base+desc), 0) {
		t.Errorf("middle line box not centered: top=%v bottom=%v", base-asc, base+desc)
	}
}
