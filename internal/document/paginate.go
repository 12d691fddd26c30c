package document

import "strings"

// pageRuneBudget is the soft size of one reading page. Pages break on
// paragraph boundaries, so actual pages run a little over or under.
const pageRuneBudget = 2800

// Paginate splits plain text into reading pages on paragraph boundaries.
// A single paragraph longer than the budget becomes its own page rather
// than being split mid-sentence. Empty input yields no pages.
func Paginate(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	paras := strings.Split(text, "\n\n")
	var (
		pages []string
		cur   strings.Builder
		size  int
	)
	flush := func() {
		if cur.Len() > 0 {
			pages = append(pages, strings.TrimSpace(cur.String()))
			cur.Reset()
			size = 0
		}
	}

	for _, p := range paras {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n := len([]rune(p))
		if size > 0 && size+n > pageRuneBudget {
			flush()
		}
		if cur.Len() > 0 {
			cur.WriteString("\n\n")
		}
		cur.WriteString(p)
		size += n
	}
	flush()
	return pages
}
