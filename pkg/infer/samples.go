package infer

import "strings"

// Sample is a named example program.
type Sample struct {
	Name       string `json:"name"`
	Expression string `json:"expression"`
}

// Samples are the example programs of the original web interface, in menu
// order.
var Samples = []Sample{
	{"fst", "λx.y.x"},
	{"snd", "λx.y.y"},
	{"List Construction", "1::2::3::4::nil"},
	{"Arithmetic 1", "1+2*3-4"},
	{"Arithmetic 2", "(1-(-2))/3"},
	{"Logic 1", "not (true equiv false)"},
	{"Logic 2", "false or true and false"},
	{"Comparison", "1<2 and 3!=4"},
}

// LookupSample finds a sample by name. Matching ignores case and treats
// spaces, hyphens and underscores alike, so "list-construction" finds
// "List Construction".
func LookupSample(name string) (Sample, bool) {
	want := sampleSlug(name)
	for _, s := range Samples {
		if sampleSlug(s.Name) == want {
			return s, true
		}
	}
	return Sample{}, false
}

// SampleSlug returns the command-line friendly form of a sample name.
func SampleSlug(name string) string { return sampleSlug(name) }

func sampleSlug(name string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '_' {
			return '-'
		}
		return r
	}, strings.ToLower(strings.TrimSpace(name)))
}

var lambdaReplacer = strings.NewReplacer(`\`, "λ", "¥", "λ")

// NormalizeExpression trims surrounding space and turns backslashes and yen
// signs into λ, the input shorthand of the original interface.
func NormalizeExpression(expr string) string {
	return lambdaReplacer.Replace(strings.TrimSpace(expr))
}
