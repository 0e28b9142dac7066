package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain filename passes through", "Worldwide.xls", "Worldwide.xls"},
		{"query string is stripped", "AllOrgs.xls?v=2", "AllOrgs.xls"},
		{"everything after first question mark goes", "a.xlsx?x=1?y=2", "a.xlsx"},
		{"reserved characters become underscores", `a<b>c:d"e.xls`, "a_b_c_d_e.xls"},
		{"slashes become underscores", `dir/file\name.xls`, "dir_file_name.xls"},
		{"surrounding whitespace is trimmed", "  report.xls  ", "report.xls"},
		{"trailing dots are trimmed", "report.xls...", "report.xls"},
		{"interleaved trailing spaces and dots go in one pass", "report. .", "report"},
		{"empty input stays empty", "", ""},
		{"only reserved characters", "???", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.input))
		})
	}
}

func TestSanitizeFilename_Idempotent(t *testing.T) {
	inputs := []string{
		"Worldwide.xls",
		"AllOrgs.xls?v=2",
		`a<b>c:d"e|f.xls`,
		"  spaced.xlsx  ",
		"dots.xls...",
		"name .",
		"x. .",
		"report.\t.",
		"Mixed Case-File_NAME.XLSX?download=1",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			once := SanitizeFilename(input)
			assert.Equal(t, once, SanitizeFilename(once))
		})
	}
}

func TestFilenameFromURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			"simple document link",
			"https://brimr.org/wp-content/uploads/2023/02/Worldwide.xlsx",
			"Worldwide.xlsx",
		},
		{
			"percent-encoded name is decoded",
			"https://brimr.org/files/School%20of%20Medicine.xls",
			"School of Medicine.xls",
		},
		{
			"query string is dropped",
			"https://brimr.org/files/AllOrgs.xls?v=2",
			"AllOrgs.xls",
		},
		{
			"no path component",
			"https://brimr.org",
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilenameFromURL(tt.url))
		})
	}
}
