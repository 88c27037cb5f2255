package ingestion

import "testing"

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "tags removed",
			in:   "<div><p>Hello</p></div>",
			want: "Hello",
		},
		{
			name: "script and style dropped wholesale",
			in:   "<style>p { color: red; }</style><script>alert('x')</script>Visible",
			want: "Visible",
		},
		{
			name: "entities decoded",
			in:   "Tom &amp; Jerry &lt;3",
			want: "Tom & Jerry <3",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripHTML(tt.in); got != tt.want {
				t.Errorf("StripHTML(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestStripSignature(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "dash-dash delimiter",
			in:   "Please help.\n\n-- \nJohn Doe\nCEO",
			want: "Please help.\n\n",
		},
		{
			name: "dash line",
			in:   "Please help.\n----------\nJohn Doe",
			want: "Please help.\n",
		},
		{
			name: "best regards closing",
			in:   "Please help.\nBest regards,\nJohn",
			want: "Please help.\n",
		},
		{
			name: "sent from device",
			in:   "Please help.\nSent from my iPhone",
			want: "Please help.\n",
		},
		{
			name: "no signature",
			in:   "Please help.",
			want: "Please help.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripSignature(tt.in); got != tt.want {
				t.Errorf("StripSignature(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTruncateQuotedReply(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "angle-quoted lines",
			in:   "Thanks!\n> earlier message\n> more",
			want: "Thanks!",
		},
		{
			name: "on wrote marker",
			in:   "Any update?\nOn Tue, Jan 1, 2025, Alice wrote:\n> hi",
			want: "Any update?",
		},
		{
			name: "forwarded header",
			in:   "See below.\nFrom: Alice [alice@x.com]\nhello",
			want: "See below.",
		},
		{
			name: "no marker passes through",
			in:   "Just the message.",
			want: "Just the message.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateQuotedReply(tt.in); got != tt.want {
				t.Errorf("TruncateQuotedReply(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
