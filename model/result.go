package model

// Block is a paragraph-level unit of extracted prose.
type Block struct {
	Text         string
	BBox         BBox
	HeadingLevel int // 0 = body text, 1-3 = markdown heading level
}

// PageResult holds the fully processed content of one page.
type PageResult struct {
	Number int

	Prose  []Block
	Tables []*Table
	Charts []Region

	// PageNumber is the page-number token stripped from the header or
	// footer, if one was recognized. Empty otherwise.
	PageNumber string

	OCRUsed bool

	// Err is non-nil when the page could not be processed. The page still
	// occupies its slot in the document so ordering is preserved.
	Err error
}

// DocumentResult is the final output for one source document.
type DocumentResult struct {
	Path     string
	Pages    []PageResult
	Markdown string
}

// FailedPages returns the numbers of pages that ended in an error state
func (r *DocumentResult) FailedPages() []int {
	var failed []int
	for _, p := range r.Pages {
		if p.Err != nil {
			failed = append(failed, p.Number)
		}
	}
	return failed
}
