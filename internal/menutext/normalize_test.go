package menutext

import (
	"math/rand/v2"
	"strings"
	"testing"
	"unicode/utf8"
)

const sampleBook = `BOOK FICHES RECETTES 2024 – édition printemps
SOMMAIRE
12
iv.
–POSTE PIZZA
Pizza

Margherita
Pâte 250 g , sauce tomate 80 g
Mozzarella 120 g ★★★
Cuisson : four à 300 °C pendant 90 s
e speck fumé



Calzone
***
ok
Burrata di   bufala   et   basilic
`

func TestNormalize_SampleBook(t *testing.T) {
	got := Normalize(sampleBook)

	for _, gone := range []string{"BOOK", "SOMMAIRE", "POSTE", "★", "***", "\n12\n", "iv."} {
		if strings.Contains(got, gone) {
			t.Errorf("expected %q to be removed, got:\n%s", gone, got)
		}
	}
	for _, line := range strings.Split(got, "\n") {
		if line == "Pizza" || line == "Calzone" {
			t.Errorf("repeated area title %q survived", line)
		}
		if line == "" {
			t.Error("blank lines should be dropped")
		}
	}

	for _, want := range []string{
		"Margherita",
		"Pâte 250g , sauce tomate 80g",
		"Mozzarella 120g",
		"Cuisson : four à 300°C pendant 90 s",
		"especk fumé",
		"Burrata di bufala et basilic",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, got)
		}
	}
}

func TestNormalize_Empty(t *testing.T) {
	for _, in := range []string{"", "   \n\n\t", "12\n34\n", "★★★"} {
		if got := Normalize(in); got != "" {
			t.Errorf("Normalize(%q) = %q, want empty", in, got)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		sampleBook,
		"5 k g de farine\n1 l 2 g",
		"s a l t and p e p p e r\r\nline two\rline three",
		"a b POSTE chaud\nx\n\n\n\nab\n5g",
		"Tarte  Tatin\n\n\n\n\n  Crème   anglaise 0,5 L  \n",
		"l ' eau 2 dl, huile d ' olive 3 cl\nxy\nSOMMAIRE\nrecette\n",
		"pizza\nPIZZETTA\nRotolini\nRotolini alla nutella",
		"température 180 °F (cuisson) ; temps 12 min\n\u00a0\u2003indent\n",
		"1 kgSOMMAIRE%",
		"ok a é c r e m a15 mgSOMMAIRE é",
		"Sauce 3 clCONTENANTS/ bacs\n2 gLISTE DES RECETTES",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("not idempotent for %q:\nonce:  %q\ntwice: %q", in, once, twice)
		}
	}
}

// soupTokens mixes the constructs the pipeline steps react to: markers,
// quantities, units, single letters, titles and line breaks.
var soupTokens = []string{
	"SOMMAIRE", "POSTE", "CONTENANTS/", "LISTE DES RECETTES", "BOOK FICHES RECETTES",
	"PRÉPARATIONS EN MISE EN PLACE", "Pizza", "Calzone",
	"1", "15", "250", "0,5", "a15", "iv.", "12",
	"g", "kg", "mg", "ml", "cl", "dl", "l", "L", "°C", "%",
	"a", "b", "e", "é", "s", "x", "ok", "sel", "Margherita", "fumé",
	"€", "★", "***", ",", ".", "-",
	"\n", "\n\n\n", "\t", "  ",
}

func randomSoup(r *rand.Rand) string {
	var b strings.Builder
	n := 1 + r.IntN(14)
	for i := 0; i < n; i++ {
		if i > 0 && r.IntN(4) != 0 {
			b.WriteByte(' ')
		}
		b.WriteString(soupTokens[r.IntN(len(soupTokens))])
	}
	return b.String()
}

func TestNormalize_IdempotentSampled(t *testing.T) {
	r := rand.New(rand.NewPCG(20240601, 7))
	failures := 0
	for i := 0; i < 20000; i++ {
		in := randomSoup(r)
		once := Normalize(in)
		if twice := Normalize(once); once != twice {
			failures++
			if failures <= 5 {
				t.Errorf("not idempotent for %q:\nonce:  %q\ntwice: %q", in, once, twice)
			}
		}
	}
	if failures > 5 {
		t.Errorf("%d more inputs were not idempotent", failures-5)
	}
}

func TestNormalize_NeverGrows(t *testing.T) {
	inputs := []string{sampleBook, "a b c d e", "100 g 200 ml", "x\n\n\n\n\ny"}
	for _, in := range inputs {
		if out := Normalize(in); utf8.RuneCountInString(out) > utf8.RuneCountInString(in) {
			t.Errorf("Normalize grew %q to %q", in, out)
		}
	}
}

func TestSteps_Order(t *testing.T) {
	var names []string
	for _, s := range Steps() {
		names = append(names, s.Name)
	}
	want := "charset,units,ocr-merge,boilerplate,index-lines,rejoin-units,whitespace,blank-lines,short-lines,trim"
	if got := strings.Join(names, ","); got != want {
		t.Errorf("steps = %s, want %s", got, want)
	}
}

func TestFilterCharset(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Crème brûlée ★ 7,50€", "Crème brûlée  7,50€"},
		{"a\tb\u00a0c", "a b c"},
		{"one\r\ntwo\rthree", "one\ntwo\nthree"},
		{"50% (x) [y] {z} 'q' \"d\" a/b - c_d", "50% (x) [y] {z} 'q' \"d\" a/b - c_d"},
		{"→ • © ™", "   "},
	}
	for _, tt := range tests {
		if got := FilterCharset(tt.in); got != tt.want {
			t.Errorf("FilterCharset(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestJoinUnits(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"200 g", "200g"},
		{"1,5 kg de farine", "1,5kg de farine"},
		{"250   ml", "250ml"},
		{"0,5 L, 2 cl", "0,5L, 2cl"},
		{"180 °C", "180°C"},
		{"15 %", "15%"},
		{"1 l 2 g", "1l 2g"},
		{"3 gousses", "3 gousses"},
		{"2 litres", "2 litres"},
		{"12 min", "12 min"},
	}
	for _, tt := range tests {
		if got := JoinUnits(tt.in); got != tt.want {
			t.Errorf("JoinUnits(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMergeOCRFragments(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"e speck", "especk"},
		{"s a l t", "salt"},
		{"p o ivre noir", "poivre noir"},
		{"Pizza e speck", "Pizza especk"},
		{"Café a", "Café a"},
		{"A B C", "A B C"},
		{"5 k g", "5 k g"},
		{"5 k g de farine", "5 k g de farine"},
		{"ligne un\ne speck", "ligne un\nespeck"},
		{"seul", "seul"},
	}
	for _, tt := range tests {
		if got := MergeOCRFragments(tt.in); got != tt.want {
			t.Errorf("MergeOCRFragments(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStripBoilerplate(t *testing.T) {
	in := "intro\nBOOK FICHES RECETTES hiver\nLISTE DES RECETTES p.2\ncontenants/bacs gn\nPRÉPARATIONS EN MISE EN PLACE\n  Pizzetta  \nPizza Regina\nriposte\n"
	got := StripBoilerplate(in)
	want := "intro\n\n\n\n\n\nPizza Regina\nriposte\n"
	if got != want {
		t.Errorf("StripBoilerplate = %q, want %q", got, want)
	}
}

func TestStripIndexLines(t *testing.T) {
	in := "12\n  7 \nxii.\nIV.\n--- ...\nPizza 4 saisons\nvi. pâte"
	got := StripIndexLines(in)
	want := "\n\n\n\n\nPizza 4 saisons\nvi. pâte"
	if got != want {
		t.Errorf("StripIndexLines = %q, want %q", got, want)
	}
}

func TestCollapseWhitespaceAndBlankLines(t *testing.T) {
	got := CollapseBlankLines(CollapseWhitespace("  a   b  \n \n\n\n c "))
	if want := "a b\n\nc"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDropShortLines(t *testing.T) {
	got := DropShortLines("ab\n5g\n\nÉté\n--\nok!\nx")
	if want := "ab\nÉté\nok!\nx"; got != want {
		t.Errorf("DropShortLines = %q, want %q", got, want)
	}
}
