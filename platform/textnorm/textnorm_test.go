package textnorm

import (
	"reflect"
	"testing"
)

func TestFold(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"Toyota", "toyota"},
		{"  Máxima  ", "maxima"},
		{"Citroën", "citroen"},
		{"VOLKSWAGEN", "volkswagen"},
		{"señor", "senor"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := Fold(tc.input); got != tc.want {
			t.Errorf("Fold(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestTokens(t *testing.T) {
	got := Tokens("¿Cuánto cuesta el Corolla 2020?")
	want := []string{"cuanto", "cuesta", "el", "corolla", "2020"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokens() = %v, want %v", got, want)
	}
}
