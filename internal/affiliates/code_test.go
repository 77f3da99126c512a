package affiliates

import (
	"strings"
	"testing"
)

func TestGenerateCodeShape(t *testing.T) {
	seen := map[string]struct{}{}
	for i := 0; i < 100; i++ {
		code, err := generateCode()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(code) != codeLength {
			t.Fatalf("expected %d chars, got %q", codeLength, code)
		}
		for _, r := range code {
			if !strings.ContainsRune(codeAlphabet, r) {
				t.Fatalf("code %q contains %q outside the alphabet", code, r)
			}
		}
		seen[code] = struct{}{}
	}
	if len(seen) < 95 {
		t.Fatalf("expected mostly unique codes, got %d distinct of 100", len(seen))
	}
}

func TestCodeAlphabetExcludesAmbiguousCharacters(t *testing.T) {
	for _, r := range "01OIL" {
		if strings.ContainsRune(codeAlphabet, r) {
			t.Errorf("alphabet should not contain %q", r)
		}
	}
}
