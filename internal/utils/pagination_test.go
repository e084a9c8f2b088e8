package utils

import "testing"

func TestAtoiDefault(t *testing.T) {
	cases := []struct {
		in   string
		def  int
		want int
	}{
		{"42", 0, 42},
		{"", 10, 10},
		{"x", 5, 5},
		{"-3", 1, -3},
	}
	for _, tc := range cases {
		if got := AtoiDefault(tc.in, tc.def); got != tc.want {
			t.Fatalf("AtoiDefault(%q, %d) = %d; want %d", tc.in, tc.def, got, tc.want)
		}
	}
}

func TestClampPage(t *testing.T) {
	cases := []struct {
		page, size         int
		wantPage, wantSize int
	}{
		{0, 0, 1, 20},
		{-5, 500, 1, 100},
		{3, 50, 3, 50},
	}
	for _, tc := range cases {
		p, s := ClampPage(tc.page, tc.size, 20, 100)
		if p != tc.wantPage || s != tc.wantSize {
			t.Fatalf("ClampPage(%d, %d) = (%d, %d); want (%d, %d)",
				tc.page, tc.size, p, s, tc.wantPage, tc.wantSize)
		}
	}
}
