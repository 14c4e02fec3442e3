package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/glonorce/docuforge/model"
)

// renderDocument assembles the final markdown for one document. Pages are
// separated by page headings; within a page, prose, tables, and chart
// placeholders interleave in vertical position order.
func renderDocument(pages []model.PageResult) string {
	var sb strings.Builder
	for i, page := range pages {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("## Page %d\n\n", page.Number))
		if page.Err != nil {
			sb.WriteString(ErrorPlaceholder(page))
			sb.WriteString("\n")
			continue
		}
		sb.WriteString(renderPage(page))
	}
	return sb.String()
}

// pageItem is one renderable unit with its vertical anchor.
type pageItem struct {
	y    float64
	text string
}

func renderPage(page model.PageResult) string {
	items := make([]pageItem, 0, len(page.Prose)+len(page.Tables)+len(page.Charts))

	for _, b := range page.Prose {
		items = append(items, pageItem{y: b.BBox.Y0, text: renderBlock(b)})
	}
	for _, t := range page.Tables {
		items = append(items, pageItem{y: t.BBox.Y0, text: strings.TrimRight(t.ToMarkdown(), "\n")})
	}
	for _, ch := range page.Charts {
		items = append(items, pageItem{y: ch.BBox.Y0, text: "*[Chart]*"})
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].y < items[j].y })

	var sb strings.Builder
	for _, item := range items {
		if item.text == "" {
			continue
		}
		sb.WriteString(item.text)
		sb.WriteString("\n\n")
	}
	return sb.String()
}

func renderBlock(b model.Block) string {
	if b.HeadingLevel > 0 {
		// Page headings are level 2, so promoted content starts below.
		level := b.HeadingLevel + 2
		if level > 6 {
			level = 6
		}
		return strings.Repeat("#", level) + " " + b.Text
	}
	return b.Text
}
