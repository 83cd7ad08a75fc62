package tmpl

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	at := time.Date(2024, 1, 15, 10, 30, 0, 0, time.Local)

	tests := []struct {
		name    string
		tmpl    string
		data    any
		want    string
		wantErr bool
	}{
		{
			name: "simple substitution",
			tmpl: "hello {{ .Name }}",
			data: map[string]string{"Name": "world"},
			want: "hello world",
		},
		{
			name: "struct data",
			tmpl: "{{ .User }}: {{ .Text }}",
			data: struct {
				User string
				Text string
			}{User: "ada", Text: "hi"},
			want: "ada: hi",
		},
		{
			name: "oneline",
			tmpl: "{{ oneline .Text }}",
			data: map[string]string{"Text": "first\nsecond  third"},
			want: "first second third",
		},
		{
			name: "trunc",
			tmpl: "{{ trunc 5 .Text }}",
			data: map[string]string{"Text": "hello world"},
			want: "hell…",
		},
		{
			name: "trunc short text untouched",
			tmpl: "{{ trunc 20 .Text }}",
			data: map[string]string{"Text": "hello"},
			want: "hello",
		},
		{
			name: "when",
			tmpl: `{{ when "15:04" .At }}`,
			data: map[string]*time.Time{"At": &at},
			want: "10:30",
		},
		{
			name: "when unset",
			tmpl: `{{ when "15:04" .At }}`,
			data: map[string]*time.Time{"At": nil},
			want: "-",
		},
		{
			name:    "missing key errors",
			tmpl:    "{{ .Missing }}",
			data:    map[string]string{},
			wantErr: true,
		},
		{
			name:    "invalid template errors",
			tmpl:    "{{ .Name",
			data:    nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.tmpl, tt.data)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTrunc(t *testing.T) {
	assert.Equal(t, "…", trunc(1, "abc"))
	assert.Equal(t, "abc", trunc(0, "abc"))
	assert.Equal(t, "héł…", trunc(4, "héłło"))
}
