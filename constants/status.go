package constants

// ExtractionStatus is the canonical outcome of one document run.
type ExtractionStatus string

// Stable values (written into invoice.json and batch reports).
const (
	StatusOK               ExtractionStatus = "OK"                // table found, structuring done (or skipped)
	StatusNoTemplate       ExtractionStatus = "NO_TEMPLATE"       // no template identifiers matched
	StatusNoTable          ExtractionStatus = "NO_TABLE"          // template matched but no table instance detected
	StatusStructuringError ExtractionStatus = "STRUCTURING_ERROR" // external structuring step failed
	StatusFailed           ExtractionStatus = "FAILED"            // input or configuration error
)

// ErrUnsupportedInvoice is the message reported when no template applies.
const ErrUnsupportedInvoice = "Invoice type not supported"
