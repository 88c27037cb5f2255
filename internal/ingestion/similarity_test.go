package ingestion

import "testing"

func TestNormalizeSubject(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Help!", "help!"},
		{"  Help!  ", "help!"},
		{"Help   with\tBooking", "help with booking"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeSubject(tt.in); got != tt.want {
			t.Errorf("NormalizeSubject(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeSender(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"bob@x.com", "bob@x.com"},
		{"Bob@X.com", "bob@x.com"},
		{"bob+support@x.com", "bob@x.com"},
		{"Bob Jones <bob+tag@x.com>", "bob@x.com"},
		{"not-an-address", "not-an-address"},
	}
	for _, tt := range tests {
		if got := NormalizeSender(tt.in); got != tt.want {
			t.Errorf("NormalizeSender(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSubjectSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{"identical after normalization", "Help!", "  help!  ", 1.0},
		{"substring containment", "Re: Booking issue", "Booking issue", 0.9},
		{"containment is symmetric", "Booking issue", "Re: Booking issue", 0.9},
		{"disjoint alphabets", "abc", "xyz", 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SubjectSimilarity(tt.a, tt.b); got != tt.want {
				t.Errorf("SubjectSimilarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}

	t.Run("character overlap is a ratio", func(t *testing.T) {
		got := SubjectSimilarity("abcd", "abxy")
		if got <= 0 || got >= 0.9 {
			t.Errorf("overlap score = %v, want between 0 and 0.9", got)
		}
	})
}
