package gen

import (
	"io"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/vkleino/contrapunctus/checks"
)

var explainTemplate = template.Must(template.New("explain").
	Funcs(sprig.TxtFuncMap()).
	Parse(`{{- range .Violations -}}
{{ .Rule }} at {{ .Where }}
{{ wrap 68 .Msg | indent 4 }}
{{ if .Badness }}    badness: {{ printf "%g" .Badness }}
{{ end }}{{ if .Ugliness }}    ugliness: {{ printf "%g" .Ugliness }}
{{ end }}{{ end -}}
badness: {{ printf "%g" .Badness }} ugliness: {{ printf "%g" .Ugliness }} fitness: {{ printf "%g" .Fitness }}
`))

// Explain writes a human-readable report of an evaluation: every
// violation with its position and weight, then the totals.
func Explain(w io.Writer, e *checks.Evaluation) error {
	return explainTemplate.Execute(w, e)
}
