package draft

import (
	"reflect"
	"testing"
)

func TestParseAddressList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "simple comma list",
			raw:  "a@x.com, b@x.com",
			want: []string{"a@x.com", "b@x.com"},
		},
		{
			name: "display names and semicolons",
			raw:  "Jane Doe <jane@x.com>; bob@y.com",
			want: []string{"jane@x.com", "bob@y.com"},
		},
		{
			name: "junk tokens dropped",
			raw:  "undisclosed recipients, carol@z.org",
			want: []string{"carol@z.org"},
		},
		{
			name: "null bytes cleaned",
			raw:  "a@x.com\x00, �b@x.com",
			want: []string{"a@x.com", "b@x.com"},
		},
		{
			name: "empty",
			raw:  "",
			want: nil,
		},
		{
			name: "only junk",
			raw:  "no address here",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAddressList(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseAddressList(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseAddressListIdempotent(t *testing.T) {
	first := ParseAddressList("a@x.com, b@x.com")
	second := ParseAddressList(JoinAddressList(first))
	if !reflect.DeepEqual(first, second) {
		t.Errorf("re-split after join = %v, want %v", second, first)
	}
}

func TestCleanHeaderText(t *testing.T) {
	got := CleanHeaderText("  Quarterly Report\x00� ")
	if got != "Quarterly Report" {
		t.Errorf("CleanHeaderText() = %q, want %q", got, "Quarterly Report")
	}
	if CleanHeaderText("") != "" {
		t.Error("CleanHeaderText(\"\") should be empty")
	}
}

func TestSanitizeFilename(t *testing.T) {
	if got := SanitizeFilename("repor\x00t.xlsx�"); got != "report.xlsx" {
		t.Errorf("SanitizeFilename() = %q, want report.xlsx", got)
	}
	if got := SanitizeFilename("\x00"); got != "untitled_attachment" {
		t.Errorf("SanitizeFilename(control only) = %q, want untitled_attachment", got)
	}
}

func TestReduceHTML(t *testing.T) {
	html := `<html><head><style type="text/css">P { margin: 0; }</style></head>` +
		"<body><script>alert(1)</script><p>Hello &amp; welcome,</p>\n\n \n<p>Bye &gt;</p></body></html>"
	got := ReduceHTML(html)
	want := "Hello & welcome,\n\nBye >"
	if got != want {
		t.Errorf("ReduceHTML() = %q, want %q", got, want)
	}
	if ReduceHTML("") != "" {
		t.Error("ReduceHTML(\"\") should be empty")
	}
}
