package pag

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxChars is the default upper limit of characters on a single page.
const DefaultMaxChars = 2000

// PaginatorOption defines a function signature for Paginator's functional options.
type PaginatorOption func(*Paginator)

// WithMaxChars sets the maximum number of characters per page, prefix and suffix included.
func WithMaxChars(max int) PaginatorOption {
	return func(p *Paginator) {
		p.maxChars = max
	}
}

// WithMaxLines sets the maximum number of lines per page. Zero means no limit.
func WithMaxLines(max int) PaginatorOption {
	return func(p *Paginator) {
		p.maxLines = max
	}
}

// WithPrefix sets a string prepended to every page, such as a code block opener.
// A line break is appended when the prefix does not end with whitespace.
func WithPrefix(prefix string) PaginatorOption {
	return func(p *Paginator) {
		if prefix != "" && !strings.HasSuffix(prefix, "\n") && !strings.HasSuffix(prefix, " ") {
			prefix += "\n"
		}
		p.prefix = prefix
	}
}

// WithSuffix sets a string appended to every page.
// A line break is prepended when the suffix does not start with whitespace.
func WithSuffix(suffix string) PaginatorOption {
	return func(p *Paginator) {
		if suffix != "" && !strings.HasPrefix(suffix, "\n") && !strings.HasPrefix(suffix, " ") {
			suffix = "\n" + suffix
		}
		p.suffix = suffix
	}
}

// pageBreak marks a requested page break in Paginator.lines.
// A NUL byte never appears in text meant for Discord.
const pageBreak = "\x00"

// Paginator collects lines of text and packs them into pages of bounded size.
type Paginator struct {
	maxChars int
	maxLines int
	prefix   string
	suffix   string
	lines    []string
}

// NewPaginator creates a Paginator with the given options.
func NewPaginator(options ...PaginatorOption) *Paginator {
	p := &Paginator{
		maxChars: DefaultMaxChars,
	}

	for _, opt := range options {
		opt(p)
	}

	return p
}

// Add appends text, treating every line break as a line boundary.
func (p *Paginator) Add(text string) *Paginator {
	for _, line := range strings.Split(text, "\n") {
		p.AddLine(line)
	}
	return p
}

// AddLine appends a single line. Line breaks in line are kept as they are.
func (p *Paginator) AddLine(line string) *Paginator {
	p.lines = append(p.lines, strings.ReplaceAll(line, pageBreak, ""))
	return p
}

// AddPageBreak forces following lines onto a new page.
func (p *Paginator) AddPageBreak() *Paginator {
	p.lines = append(p.lines, pageBreak)
	return p
}

// Pages packs the collected lines into pages.
// Lines are never merged, but a line too long for a single page is split,
// preferably at a space. Empty pages are dropped.
func (p *Paginator) Pages() ([]string, error) {
	budget := p.maxChars - utf8.RuneCountInString(p.prefix) - utf8.RuneCountInString(p.suffix)
	if budget <= 0 {
		return nil, ErrPageTooSmall
	}

	var pages []string
	var current []string
	size := 0

	flush := func() {
		body := strings.Join(current, "\n")
		if strings.TrimSpace(body) != "" {
			pages = append(pages, p.prefix+body+p.suffix)
		}
		current = current[:0]
		size = 0
	}

	for _, line := range p.lines {
		if line == pageBreak {
			flush()
			continue
		}

		for _, chunk := range splitLine(line, budget) {
			length := utf8.RuneCountInString(chunk)
			if len(current) > 0 {
				// Account for the joining line break.
				length++
			}

			full := size+length > budget || (p.maxLines > 0 && len(current) >= p.maxLines)
			if full {
				flush()
				length = utf8.RuneCountInString(chunk)
			}

			current = append(current, chunk)
			size += length
		}
	}
	flush()

	return pages, nil
}

// splitLine cuts line into chunks of at most budget runes.
func splitLine(line string, budget int) []string {
	var chunks []string
	runes := []rune(line)
	for len(runes) > budget {
		cut := budget
		if i := lastSpace(runes[:budget+1]); i > 0 {
			cut = i
		}

		if chunk := strings.TrimRight(string(runes[:cut]), " "); chunk != "" {
			chunks = append(chunks, chunk)
		}
		runes = runes[cut:]
		for len(runes) > 0 && runes[0] == ' ' {
			runes = runes[1:]
		}
	}
	return append(chunks, string(runes))
}

func lastSpace(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == ' ' {
			return i
		}
	}
	return -1
}
