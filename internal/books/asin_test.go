package books

import "testing"

func TestNormalizeASIN(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"b0abc1234x", "B0ABC1234X"},
		{" B0-ABC 1234X ", "B0ABC1234X"},
		{"b0_abc.1234x", "B0ABC1234X"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeASIN(tc.in); got != tc.want {
			t.Errorf("NormalizeASIN(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestValidASIN(t *testing.T) {
	valid := []string{"B0ABC1234X", "1234567890", "B07XJ8C8F5", "b07xj8c8f5"}
	for _, asin := range valid {
		if !ValidASIN(asin) {
			t.Errorf("expected %q to be valid", asin)
		}
	}

	invalid := []string{"", "B0ABC1234", "B0ABC1234XZ", "B0ABC!234X"}
	for _, asin := range invalid {
		if ValidASIN(asin) {
			t.Errorf("expected %q to be invalid", asin)
		}
	}
}
