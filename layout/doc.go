// Package layout classifies page geometry into semantic regions.
//
// The [Classifier] partitions a page into table, chart, and unclassified
// regions from purely geometric evidence: clustered gridlines form bordered
// table candidates, vertical whitespace rivers through aligned text rows
// form borderless candidates, and clusters of curves and diagonal lines
// mark charts. No content is read during classification.
//
// The [Pruner] works document-wide after extraction, stripping running
// headers, footers, and standalone page numbers by repetition analysis.
package layout
