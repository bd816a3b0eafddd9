package core

import "testing"

func TestParseDecimalToSen(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.0051", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"12500", 1250000, true},
		{"1.500", 150000, true}, // single group of three is thousands
		{"1.500.000", 150000000, true},
		{"Rp 1.500,75", 150075, true},
		{"1,500.75", 150075, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"1.50.000", 0, false},
		{"1,5,0.0", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToSen(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error, got %d", tc.in, got)
			}
		}
	}
}

func TestFormatRupiah(t *testing.T) {
	cases := []struct {
		in   Money
		want string
	}{
		{Money{}, "Rp 0"},
		{Rupiah(100), "Rp 100"},
		{Rupiah(1500), "Rp 1.500"},
		{Rupiah(1234567), "Rp 1.234.567"},
		{Money{Sen: 149}, "Rp 1"},
		{Money{Sen: 150}, "Rp 2"},
		{Rupiah(-25000), "-Rp 25.000"},
	}
	for _, tc := range cases {
		if got := FormatRupiah(tc.in); got != tc.want {
			t.Errorf("FormatRupiah(%d) = %q, want %q", tc.in.Sen, got, tc.want)
		}
	}
}

func TestMoneyArithmetic(t *testing.T) {
	m := Rupiah(10).Add(Money{Sen: 5}).Sub(Rupiah(3))
	if m.Sen != 705 {
		t.Fatalf("got %d sen, want 705", m.Sen)
	}
	if !(Money{}).IsZero() {
		t.Fatal("zero money should be zero")
	}
}
