// Package export renders processed invoices for people: an XLSX workbook for
// bookkeeping, a PDF review report for checking flagged values and an
// annotated copy of the invoice itself.
package export

import (
	"github.com/joseph-ayodele/invoice-analyst/constants"
	"github.com/joseph-ayodele/invoice-analyst/internal/entity"
	"github.com/joseph-ayodele/invoice-analyst/internal/llm"
	"github.com/joseph-ayodele/invoice-analyst/internal/validate"
)

// Document is everything known about one processed file. Table, Invoice and
// Report are nil when the corresponding stage did not run or failed.
type Document struct {
	Name     string
	Supplier string
	Status   constants.ExtractionStatus
	Error    string
	Table    *entity.TableRegion
	Invoice  *llm.StructuredInvoice
	Report   *validate.Report
}

// ArticleStatus is the validation outcome of article i.
func (d Document) ArticleStatus(i int) string {
	if d.Report == nil {
		return ""
	}
	for _, m := range d.Report.Articles {
		if m.Index == i {
			if m.Valid {
				return "valid"
			}
			return "invalid"
		}
	}
	return "not located"
}

// ArticleMatch returns the validation match of article i, if any.
func (d Document) ArticleMatch(i int) (validate.ArticleMatch, bool) {
	if d.Report == nil {
		return validate.ArticleMatch{}, false
	}
	for _, m := range d.Report.Articles {
		if m.Index == i {
			return m, true
		}
	}
	return validate.ArticleMatch{}, false
}
