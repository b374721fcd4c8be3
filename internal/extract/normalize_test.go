package extract

import "testing"

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2024年12月20日", "2024-12-20", true},
		{"2024年1月5日", "2024-01-05", true},
		{"2024/12/20", "2024-12-20", true},
		{"2024-12-20", "2024-12-20", true},
		{"2024.3.7", "2024-03-07", true},
		{"２０２４年１２月２０日", "2024-12-20", true},
		{"2024年13月40日", "", false},
		{"2024年0月1日", "", false},
		{"no date here", "", false},
	}
	for _, tc := range cases {
		got, ok := normalizeDate(tc.in)
		if ok != tc.ok {
			t.Fatalf("normalizeDate(%q) ok = %v, want %v", tc.in, ok, tc.ok)
		}
		if ok && got != tc.want {
			t.Fatalf("normalizeDate(%q) = %q, want %q", tc.in, got, tc.want)
		}
		if !ok && got != tc.in {
			t.Fatalf("normalizeDate(%q) rejected value = %q, want input unchanged", tc.in, got)
		}
	}
}

func TestNormalizeAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"100,000円", "100000", true},
		{"¥150,000", "150000", true},
		{"￥1,234", "1234", true},
		{"１２３，４５６円", "123456", true},
		{"500", "500", true},
		{"円", "", false},
		{"12a3", "", false},
	}
	for _, tc := range cases {
		got, ok := normalizeAmount(tc.in)
		if ok != tc.ok {
			t.Fatalf("normalizeAmount(%q) ok = %v, want %v", tc.in, ok, tc.ok)
		}
		if ok && got != tc.want {
			t.Fatalf("normalizeAmount(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeCollapseSpaces(t *testing.T) {
	got, ok := normalizeCollapseSpaces("  株式会社 \t サンプル \n")
	if !ok {
		t.Fatalf("collapse_spaces must be total")
	}
	if got != "株式会社 サンプル" {
		t.Fatalf("got %q", got)
	}
}

func TestNormalizersAreTotal(t *testing.T) {
	// Feeding arbitrary junk must never panic, only reject.
	inputs := []string{"", "\x00\xff", "🙂", "年月日", "999999999999999999999年1月1日"}
	for _, n := range []Normalizer{NormalizerDate, NormalizerAmount, NormalizerCollapseSpaces, NormalizerNone} {
		fn := normalizerFor(n)
		for _, in := range inputs {
			fn(in)
		}
	}
}
