package draft

import (
	"regexp"
	"strings"
)

var angleAddrPattern = regexp.MustCompile(`<([^<>]+)>`)

// CleanHeaderText removes null bytes and replacement characters that
// extracted message headers tend to carry, then trims whitespace.
func CleanHeaderText(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "\x00", "")
	s = strings.ReplaceAll(s, "�", "")
	return strings.TrimSpace(s)
}

// ParseAddressList splits a raw comma/semicolon-delimited header value
// into bare addresses. Display-name forms like "Jane Doe <jane@x.com>"
// yield the angle-bracket address; other tokens are kept only when
// they contain an "@".
func ParseAddressList(raw string) []string {
	raw = CleanHeaderText(raw)
	if raw == "" {
		return nil
	}
	raw = strings.ReplaceAll(raw, ";", ",")

	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if m := angleAddrPattern.FindStringSubmatch(part); m != nil {
			out = append(out, strings.TrimSpace(m[1]))
			continue
		}
		if strings.Contains(part, "@") {
			out = append(out, part)
		}
	}
	return out
}

// JoinAddressList renders an address list back into the editable
// comma-separated form shown in the UI.
func JoinAddressList(addrs []string) string {
	return strings.Join(addrs, ", ")
}

// SanitizeFilename strips null bytes and replacement characters often
// found in extracted attachment names. Empty names become
// "untitled_attachment".
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\x00", "")
	name = strings.ReplaceAll(name, "�", "")
	name = strings.TrimSpace(name)
	if name == "" {
		return "untitled_attachment"
	}
	return name
}
