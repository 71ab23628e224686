package comparison

import (
	"fmt"
	"unicode/utf8"

	"github.com/seo-optimizer/competitor/analyzer"
)

// Verdict is the outcome of one metric, seen from "your" side.
type Verdict string

const (
	Better Verdict = "better"
	Worse  Verdict = "worse"
	Equal  Verdict = "equal"
)

// Section names group entries the way they are presented.
const (
	SectionTitleMeta = "Title & Meta Description"
	SectionHeadings  = "Headings"
	SectionLinks     = "Links"
	SectionImages    = "Images"
)

// Entry compares one metric of both pages.
type Entry struct {
	Label      string  `json:"label"`
	Section    string  `json:"section"`
	Yours      int     `json:"yours"`
	Competitor int     `json:"competitor"`
	Verdict    Verdict `json:"verdict"`

	// YourText and CompetitorText carry the raw value for metrics that are
	// compared by length; TextLabel names that value for display.
	TextLabel      string `json:"textLabel,omitempty"`
	YourText       string `json:"yourText,omitempty"`
	CompetitorText string `json:"competitorText,omitempty"`
}

// Report is the ordered comparison of two pages.
type Report struct {
	YourURL       string  `json:"yourUrl"`
	CompetitorURL string  `json:"competitorUrl"`
	Entries       []Entry `json:"entries"`
}

// Summary counts entries per verdict.
type Summary struct {
	Better int `json:"better"`
	Worse  int `json:"worse"`
	Equal  int `json:"equal"`
}

// Judge classifies yours against theirs by exact comparison.
func Judge(yours, theirs int) Verdict {
	switch {
	case yours > theirs:
		return Better
	case yours < theirs:
		return Worse
	default:
		return Equal
	}
}

// Mirror returns the verdict the competitor would get for the same metric.
func (v Verdict) Mirror() Verdict {
	switch v {
	case Better:
		return Worse
	case Worse:
		return Better
	default:
		return v
	}
}

// Feedback is the sentence shown under a metric.
func (v Verdict) Feedback(label string) string {
	switch v {
	case Better:
		return fmt.Sprintf("Your %s is better than your competitor. Keep up the good work!", label)
	case Worse:
		return fmt.Sprintf("Your competitor has a better %s. Consider improving it.", label)
	default:
		return fmt.Sprintf("Your %s is similar to your competitor.", label)
	}
}

// Compare builds the report for yours against theirs. It has no side effects
// and the same inputs always give the same report.
func Compare(yours, theirs analyzer.SignalRecord) Report {
	entries := []Entry{
		textEntry(SectionTitleMeta, "Title Length", "Title", yours.Title, theirs.Title),
		textEntry(SectionTitleMeta, "Meta Description Length", "Description", yours.Description, theirs.Description),
		countEntry(SectionHeadings, "H1 Tags", yours.Headings.H1, theirs.Headings.H1),
		countEntry(SectionHeadings, "H2 Tags", yours.Headings.H2, theirs.Headings.H2),
		countEntry(SectionLinks, "Total Links", yours.Links.Total, theirs.Links.Total),
		countEntry(SectionLinks, "Internal Links", yours.Links.Internal, theirs.Links.Internal),
		countEntry(SectionLinks, "External Links", yours.Links.External, theirs.Links.External),
		countEntry(SectionImages, "Total Images", yours.Images.Total, theirs.Images.Total),
		countEntry(SectionImages, "Images Missing Alt Text", yours.Images.MissingAlt, theirs.Images.MissingAlt),
	}

	return Report{
		YourURL:       yours.URL,
		CompetitorURL: theirs.URL,
		Entries:       entries,
	}
}

func countEntry(section, label string, yours, theirs int) Entry {
	return Entry{
		Label:      label,
		Section:    section,
		Yours:      yours,
		Competitor: theirs,
		Verdict:    Judge(yours, theirs),
	}
}

func textEntry(section, label, textLabel, yours, theirs string) Entry {
	e := countEntry(section, label, utf8.RuneCountInString(yours), utf8.RuneCountInString(theirs))
	e.TextLabel = textLabel
	e.YourText = yours
	e.CompetitorText = theirs
	return e
}

// Summary tallies the verdicts in the report.
func (r Report) Summary() Summary {
	var s Summary
	for _, e := range r.Entries {
		switch e.Verdict {
		case Better:
			s.Better++
		case Worse:
			s.Worse++
		default:
			s.Equal++
		}
	}
	return s
}
