package render

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/seo-optimizer/competitor/comparison"
	"github.com/seo-optimizer/competitor/competitor"
)

// Style is how a verdict is shown.
type Style struct {
	Icon  string
	Class string
}

var styles = map[comparison.Verdict]Style{
	comparison.Better: {Icon: "✅", Class: "positive"},
	comparison.Worse:  {Icon: "⚠️", Class: "negative"},
	comparison.Equal:  {Icon: "ℹ️", Class: "neutral"},
}

// StyleFor returns the icon and CSS class of v.
func StyleFor(v comparison.Verdict) Style {
	if s, ok := styles[v]; ok {
		return s
	}
	return styles[comparison.Equal]
}

// Text writes a plain-text rendering of result.
func Text(w io.Writer, result competitor.Result) error {
	if result.Status != competitor.StatusDone || result.Report == nil {
		_, err := fmt.Fprintln(w, result.Message)
		return err
	}

	var b strings.Builder
	report := result.Report
	fmt.Fprintf(&b, "Your site:   %s\nCompetitor:  %s\n", report.YourURL, report.CompetitorURL)

	section := ""
	for _, e := range report.Entries {
		if e.Section != section {
			section = e.Section
			fmt.Fprintf(&b, "\n== %s ==\n", section)
		}
		if e.TextLabel != "" {
			fmt.Fprintf(&b, "  Your %s: %s\n  Competitor %s: %s\n", e.TextLabel, e.YourText, e.TextLabel, e.CompetitorText)
		}
		fmt.Fprintf(&b, "  %-24s %6d vs %-6d %s %s\n",
			e.Label, e.Yours, e.Competitor, StyleFor(e.Verdict).Icon, e.Verdict.Feedback(e.Label))
	}

	s := report.Summary()
	fmt.Fprintf(&b, "\nSummary: %d better, %d worse, %d similar\n", s.Better, s.Worse, s.Equal)

	_, err := io.WriteString(w, b.String())
	return err
}

var funcs = template.FuncMap{
	"style":    StyleFor,
	"feedback": func(e comparison.Entry) string { return e.Verdict.Feedback(e.Label) },
	"newSection": func(entries []comparison.Entry, i int) bool {
		return i == 0 || entries[i-1].Section != entries[i].Section
	},
}

// Templates returns the page and report templates, for use with
// gin's SetHTMLTemplate.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(funcs).Parse(pageTemplate))
}

var templates = Templates()

// HTML writes the report fragment for result.
func HTML(w io.Writer, result competitor.Result) error {
	return templates.ExecuteTemplate(w, "report", result)
}

// PageData is what the index page template expects.
type PageData struct {
	Request competitor.Request
	Result  *competitor.Result
}

const pageTemplate = `
{{define "report"}}
{{- if eq .Status "done"}}
<div id="report">
{{- $entries := .Report.Entries}}
{{- range $i, $e := $entries}}
{{- if newSection $entries $i}}
  <h3>{{$e.Section}}</h3>
{{- end}}
{{- if $e.TextLabel}}
  <p><strong>Your {{$e.TextLabel}}:</strong> {{$e.YourText}}</p>
  <p><strong>Competitor {{$e.TextLabel}}:</strong> {{$e.CompetitorText}}</p>
{{- end}}
  <p><strong>Your {{$e.Label}}:</strong> {{$e.Yours}} &middot; <strong>Competitor:</strong> {{$e.Competitor}}</p>
  {{- $s := style $e.Verdict}}
  <p class="{{$s.Class}}">{{$s.Icon}} {{feedback $e}}</p>
{{- end}}
</div>
{{- else if .Message}}
<div id="comparisonResults">{{.Message}}</div>
{{- end}}
{{end}}

{{define "index"}}<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Competitor SEO Analysis</title>
  <style>
    .positive { color: #1a7f37; }
    .negative { color: #b35900; }
    .neutral { color: #555; }
  </style>
</head>
<body>
  <h1>Competitor SEO Analysis</h1>
  <form method="post" action="/">
    <input type="url" name="yourUrl" placeholder="Your website URL" value="{{.Request.YourURL}}">
    <input type="url" name="competitorUrl" placeholder="Competitor website URL" value="{{.Request.CompetitorURL}}">
    <button type="submit">Analyze</button>
  </form>
  {{- with .Result}}{{template "report" .}}{{end}}
</body>
</html>
{{end}}
`
