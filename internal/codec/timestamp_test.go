package codec

import "testing"

func TestParseTimestampZeroIsNil(t *testing.T) {
	if got := ParseTimestamp(0, 65535, HFSEpoch); got != nil {
		t.Fatalf("expected nil for raw=0, got %v", got)
	}
}

func TestParseHFSScalar(t *testing.T) {
	cases := []struct {
		name    string
		seconds uint32
		wantNil bool
	}{
		{"zero is null", 0, true},
		{"one day after epoch", 86400, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := ParseHFSScalar(c.seconds)
			if (got == nil) != c.wantNil {
				t.Fatalf("ParseHFSScalar(%d) = %v, wantNil=%v", c.seconds, got, c.wantNil)
			}
			if !c.wantNil && got.Year() != 1904 {
				t.Fatalf("expected 1904, got %d", got.Year())
			}
		})
	}
}

func TestParseHFSCompoundWrongLength(t *testing.T) {
	if got := ParseHFSCompound([]byte{1, 2, 3}); got != nil {
		t.Fatalf("expected nil for short buffer, got %v", got)
	}
}

func TestParseMacAbsoluteTime(t *testing.T) {
	got := ParseMacAbsoluteTime(0)
	if got != nil {
		t.Fatalf("expected nil for 0 seconds, got %v", got)
	}
	got = ParseMacAbsoluteTime(1)
	if got == nil || got.Year() != 2001 {
		t.Fatalf("expected a 2001 timestamp, got %v", got)
	}
}

func TestRoundHalfEvenTiesRoundToEven(t *testing.T) {
	cases := []struct {
		in   float64
		want int64
	}{
		{0.5, 0},
		{1.5, 2},
		{2.5, 2},
		{3.5, 4},
		{0.4, 0},
		{0.6, 1},
	}
	for _, c := range cases {
		if got := roundHalfEven(c.in); got != c.want {
			t.Errorf("roundHalfEven(%v) = %d, want %d", c.in, got, c.want)
		}
	}
}
