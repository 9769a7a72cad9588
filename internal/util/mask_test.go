package util

import "testing"

func TestMaskEmail(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"ab", "***"},
		{"abcd", "a…d"},
		{"Ana.Perez@Example.COM", "a…@e….com"},
		{"a@b.co", "a@b.co"},
		{"  juan@mail.example.org ", "j…@m….example.org"},
	}
	for _, c := range cases {
		if got := MaskEmail(c.in); got != c.want {
			t.Errorf("MaskEmail(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
