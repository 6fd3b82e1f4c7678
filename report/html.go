// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"fmt"
	"io"

	"github.com/google/safehtml/template"
	"github.com/ptsp-tools/expstat/expproc"
)

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"f4": func(x float64) string { return fmt.Sprintf("%.4f", x) },
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
table.expstat { border-collapse: collapse; margin-bottom: 1em; }
table.expstat td, table.expstat th { padding: 0 0.6em; text-align: right; }
table.expstat td.name, table.expstat th.name { text-align: left; }
tr.significant { font-weight: bold; }
tr.error { color: #999; }
</style>
</head>
<body>
{{- if .Summaries}}
<table class="expstat">
<tr><th class="name">algorithm<th class="name">map<th>n<th>min<th>max<th>mean<th>stddev
{{- range .Summaries}}
<tr><td class="name">{{.Algorithm}}<td class="name">{{.MapID}}<td>{{.N}}<td>{{f4 .Min}}<td>{{f4 .Max}}<td>{{f4 .Mean}}<td>{{f4 .StdDev}}
{{- end}}
</table>
{{- end}}
{{- range .Comparisons}}
<h2>{{.AlgorithmA}} {{.Metric}} {{.Direction}} than {{.AlgorithmB}}</h2>
<table class="expstat">
<tr><th class="name">map<th>statistics<th>p-value<th class="name">note
{{- range .Lines}}
{{- if .Err}}
<tr class="error"><td class="name">{{.MapID}}<td><td><td class="name">{{.Err.Reason}}
{{- else}}
<tr{{if .Result.Significant}} class="significant"{{end}}><td class="name">{{.MapID}}<td>{{f4 .Result.T}}<td>{{f4 .Result.P}}<td>
{{- end}}
{{- end}}
<tr><td class="name">average<td><td>{{f4 .Average}}<td>
</table>
{{- end}}
</body>
</html>
`))

type htmlComparison struct {
	*Comparison
	Lines   []line
	Average float64
}

// WriteHTML writes a standalone HTML page holding the summary table
// and one table per comparison. Significant results are marked with
// the class "significant".
func WriteHTML(w io.Writer, title string, sums []expproc.GroupedSummary, cmps []*Comparison) error {
	data := struct {
		Title       string
		Summaries   []expproc.GroupedSummary
		Comparisons []htmlComparison
	}{Title: title, Summaries: sums}
	for _, c := range cmps {
		data.Comparisons = append(data.Comparisons, htmlComparison{c, c.lines(), c.AveragePValue()})
	}
	return htmlTemplate.Execute(w, data)
}
