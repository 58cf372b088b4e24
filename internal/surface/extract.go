package surface

import (
	"strings"
)

const (
	// MinAnalyzeLength is the shortest extracted text worth sending.
	MinAnalyzeLength = 30

	maxExtractRunes   = 2000
	maxHeadings       = 5
	maxMainRunes      = 1000
	maxBodyRunes      = 800
	minSectionsNoBody = 3
)

// PageSnapshot is what a host hands the widget about the current page.
type PageSnapshot struct {
	URL           string
	Title         string
	Description   string
	OGTitle       string
	OGDescription string
	Headings      []string
	MainContent   string
	Body          string
	Keywords      string
}

// Text assembles the labelled sections sent for analysis. Body text is only
// used when fewer than three other sections were found.
func (p PageSnapshot) Text() string {
	var parts []string
	add := func(label, value string) {
		if value != "" {
			parts = append(parts, "["+label+"] "+value)
		}
	}

	add("Title", p.Title)
	add("Description", p.Description)
	add("OG Title", p.OGTitle)
	add("OG Description", p.OGDescription)

	headings := make([]string, 0, maxHeadings)
	for i, h := range p.Headings {
		if i >= maxHeadings {
			break
		}
		if h = strings.TrimSpace(h); h != "" {
			headings = append(headings, h)
		}
	}
	if len(headings) > 0 {
		add("Headings", strings.Join(headings, " | "))
	}

	add("Main Content", truncate(collapseSpace(p.MainContent), maxMainRunes))

	if len(parts) < minSectionsNoBody {
		add("Body", truncate(collapseSpace(p.Body), maxBodyRunes))
	}

	add("Keywords", p.Keywords)

	return truncate(strings.Join(parts, "\n\n"), maxExtractRunes)
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
