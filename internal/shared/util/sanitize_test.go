package util

import "testing"

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"informe.pdf", "informe.pdf"},
		{"análisis clínico.pdf", "analisis_clinico.pdf"},
		{"año-2025 (v2).docx", "ano_2025__v2_.docx"},
		{"reporte/final.txt", "reporte_final.txt"},
	}
	for _, tc := range cases {
		got, err := SanitizeFileName(tc.in)
		if err != nil {
			t.Errorf("SanitizeFileName(%q) error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeFileNameRejectsInvalid(t *testing.T) {
	for _, in := range []string{"", "   ", "../etc/passwd", "..", "///"} {
		if _, err := SanitizeFileName(in); err == nil {
			t.Errorf("SanitizeFileName(%q) should fail", in)
		}
	}
}
