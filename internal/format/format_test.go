package format

import (
	"testing"
	"time"
)

func TestBytes(t *testing.T) {
	tests := []struct {
		name string
		n    int64
		want string
	}{
		{"zero", 0, "0 Bytes"},
		{"one byte", 1, "1 Bytes"},
		{"below one KB", 512, "512 Bytes"},
		{"exactly one KB", 1024, "1 KB"},
		{"one and a half KB", 1536, "1.5 KB"},
		{"exactly one MB", 1048576, "1 MB"},
		{"fractional MB", 2621440, "2.5 MB"},
		{"exactly one GB", 1073741824, "1 GB"},
		{"beyond the unit table", 1099511627776, "1024 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Bytes(tt.n); got != tt.want {
				t.Errorf("Bytes(%d) = %q, want %q", tt.n, got, tt.want)
			}
		})
	}
}

func TestBytes_Negative(t *testing.T) {
	if got := Bytes(-1); got != "0 Bytes" {
		t.Errorf("Bytes(-1) = %q, want '0 Bytes'", got)
	}
}

func TestSuccessRate(t *testing.T) {
	tests := []struct {
		name    string
		success int
		total   int
		want    string
	}{
		{"ninety percent", 180, 200, "90.00%"},
		{"all succeeded", 100, 100, "100.00%"},
		{"none succeeded", 0, 50, "0.00%"},
		{"rounds not truncates", 2, 3, "66.67%"},
		{"zero total guarded", 0, 0, "0.00%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SuccessRate(tt.success, tt.total); got != tt.want {
				t.Errorf("SuccessRate(%d, %d) = %q, want %q", tt.success, tt.total, got, tt.want)
			}
		})
	}
}

func TestRate1(t *testing.T) {
	if got := Rate1(180, 200); got != "90.0%" {
		t.Errorf("Rate1(180, 200) = %q, want '90.0%%'", got)
	}
	if got := Rate1(0, 0); got != "0.0%" {
		t.Errorf("Rate1(0, 0) = %q, want '0.0%%'", got)
	}
}

func TestMillis(t *testing.T) {
	if got := Millis(42); got != "42ms" {
		t.Errorf("Millis(42) = %q, want '42ms'", got)
	}
	if got := Millis(12.345); got != "12.35ms" {
		t.Errorf("Millis(12.345) = %q, want '12.35ms'", got)
	}
}

func TestTimestamp(t *testing.T) {
	// A valid RFC3339 timestamp is converted to the local display layout
	got := Timestamp("2025-06-01T12:30:45Z")
	parsed, err := time.Parse("2006-01-02 15:04:05", got)
	if err != nil {
		t.Fatalf("Timestamp returned unparsable output %q: %v", got, err)
	}
	if parsed.IsZero() {
		t.Error("Timestamp returned zero time")
	}

	// Garbage is passed through untouched
	if got := Timestamp("not-a-time"); got != "not-a-time" {
		t.Errorf("Timestamp('not-a-time') = %q, want input unchanged", got)
	}
}

func TestDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{450 * time.Millisecond, "450ms"},
		{1200 * time.Millisecond, "1.2s"},
		{125 * time.Second, "2m5s"},
	}

	for _, tt := range tests {
		if got := Duration(tt.d); got != tt.want {
			t.Errorf("Duration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
