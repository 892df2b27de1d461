package state

import "testing"

func TestParseChoice(t *testing.T) {
	cases := []struct {
		in   string
		n    int
		want int
		ok   bool
	}{
		{"1", 3, 1, true},
		{" 3 ", 3, 3, true},
		{"٢", 3, 2, true},
		{"۳", 3, 3, true},
		{"١٠", 10, 10, true},
		{"0", 3, 0, false},
		{"4", 3, 0, false},
		{"-1", 3, 0, false},
		{"two", 3, 0, false},
		{"", 3, 0, false},
		{"1", 0, 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseChoice(tc.in, tc.n)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ParseChoice(%q, %d) = %d, %v; want %d, %v", tc.in, tc.n, got, ok, tc.want, tc.ok)
		}
	}
}

func TestTokens(t *testing.T) {
	for _, in := range []string{"إلغاء", " الغاء ", "Cancel"} {
		if !IsCancel(in) {
			t.Errorf("IsCancel(%q) = false", in)
		}
	}
	if IsCancel("الغ") {
		t.Errorf("partial token accepted")
	}
	if !IsConfirm("تأكيد") || !IsConfirm("CONFIRM") || IsConfirm("نعم") {
		t.Errorf("IsConfirm mismatch")
	}
	if !IsYes(" نعم") || !IsYes("yes") || IsYes("لا") {
		t.Errorf("IsYes mismatch")
	}
}

func TestGuard(t *testing.T) {
	g := NewGuard()
	release, ok := g.TryAcquire(1)
	if !ok {
		t.Fatalf("first acquire failed")
	}
	if _, ok := g.TryAcquire(1); ok {
		t.Fatalf("second acquire for the same user must fail")
	}
	if r2, ok := g.TryAcquire(2); !ok {
		t.Fatalf("other user blocked")
	} else {
		r2()
	}
	release()
	release()
	if r, ok := g.TryAcquire(1); !ok {
		t.Fatalf("acquire after release failed")
	} else {
		r()
	}
}
