package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/invoice-analyst/constants"
)

// WriteArtifacts writes the artifacts of res into dir and returns their paths.
// The markdown files are always written; invoice.json only after structuring,
// validation.json only after validation and annotated.pdf only when the
// report was drawn.
func WriteArtifacts(dir string, res *Result) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	files := map[string][]byte{
		constants.TableMarkdownFile: []byte(res.TableMarkdown),
		constants.InfoMarkdownFile:  []byte(res.InfoMarkdown),
	}
	if len(res.RawJSON) > 0 && res.Invoice != nil {
		var buf bytes.Buffer
		if err := json.Indent(&buf, res.RawJSON, "", "  "); err != nil {
			return nil, fmt.Errorf("indent invoice json: %w", err)
		}
		files[constants.InvoiceJSONFile] = buf.Bytes()
	}
	if res.Report != nil {
		b, err := json.MarshalIndent(res.Report, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode validation report: %w", err)
		}
		files[constants.ValidationFile] = b
	}
	if len(res.Annotated) > 0 {
		files[constants.AnnotatedPDFFile] = res.Annotated
	}

	var written []string
	for _, name := range []string{
		constants.TableMarkdownFile,
		constants.InfoMarkdownFile,
		constants.InvoiceJSONFile,
		constants.ValidationFile,
		constants.AnnotatedPDFFile,
	} {
		body, ok := files[name]
		if !ok {
			continue
		}
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, body, 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", name, err)
		}
		written = append(written, path)
	}
	return written, nil
}
