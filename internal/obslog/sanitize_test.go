package obslog

import "testing"

func TestSanitizeString_Empty(t *testing.T) {
	if got := SanitizeString(""); got != "" {
		t.Errorf("SanitizeString(\"\") = %q, want \"\"", got)
	}
}

func TestSanitizeString_Normal(t *testing.T) {
	input := "/var/lib/lecturebench/artifacts/payload.bin"
	if got := SanitizeString(input); got != input {
		t.Errorf("SanitizeString(%q) = %q, want %q", input, got, input)
	}
}

func TestSanitizeString_ControlCharacters(t *testing.T) {
	tests := []struct {
		name, input, want string
	}{
		{"newline", "path\nmore", "path\\nmore"},
		{"carriage return", "path\rmore", "path\\rmore"},
		{"CRLF", "path\r\nmore", "path\\r\\nmore"},
		{"tab", "col1\tcol2", "col1\\tcol2"},
		{"null byte", "before\x00after", "before\\x00after"},
		{"fake log injection", "/cfg/run.toml\n2026-01-01 INFO fabricated entry", "/cfg/run.toml\\n2026-01-01 INFO fabricated entry"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeString(tt.input); got != tt.want {
				t.Errorf("SanitizeString(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeString_Backslash(t *testing.T) {
	input := `path\to\file`
	want := `path\\to\\file`
	if got := SanitizeString(input); got != want {
		t.Errorf("SanitizeString(%q) = %q, want %q", input, got, want)
	}
}

func TestSanitizeString_Truncation(t *testing.T) {
	long := make([]byte, MaxSanitizedLen+100)
	for i := range long {
		long[i] = 'a'
	}
	got := SanitizeString(string(long))
	if len(got) > MaxSanitizedLen+10 {
		t.Errorf("SanitizeString did not truncate: len=%d", len(got))
	}
	if got[len(got)-3:] != "..." {
		t.Errorf("truncated string should end with '...', got %q", got[len(got)-10:])
	}
}

func TestSanitizePath(t *testing.T) {
	input := "/etc/lecturebench/\n/etc/passwd"
	want := "/etc/lecturebench/\\n/etc/passwd"
	if got := SanitizePath(input); got != want {
		t.Errorf("SanitizePath(%q) = %q, want %q", input, got, want)
	}
}
