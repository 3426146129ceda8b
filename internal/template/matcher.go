package template

import (
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/invoice-analyst/internal/entity"
)

// Matches reports whether every identifier of tpl is found, case-insensitively,
// in the space-joined text of all runs.
func Matches(runs []entity.TextRun, tpl *Template) bool {
	if tpl == nil {
		return false
	}
	all := joinText(runs)
	for _, id := range tpl.Identifiers {
		re, err := SearchFold(id)
		if err != nil || !re.MatchString(all) {
			return false
		}
	}
	return true
}

func joinText(runs []entity.TextRun) string {
	var b strings.Builder
	for i, r := range runs {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(r.Text)
	}
	return b.String()
}

// Matcher picks the template that applies to a document.
type Matcher struct {
	cache  *Cache
	logger *slog.Logger
}

func NewMatcher(cache *Cache, logger *slog.Logger) *Matcher {
	if cache == nil {
		cache = NewCache()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Matcher{cache: cache, logger: logger}
}

// FindMatching returns the first template in dir (by file name) that matches runs,
// or nil when none does. Templates that fail to load are logged and skipped.
// A missing directory is returned as an error.
func (m *Matcher) FindMatching(runs []entity.TextRun, dir string) (*Template, error) {
	paths, err := Discover(dir)
	if err != nil {
		return nil, err
	}
	for _, path := range paths {
		tpl, err := m.cache.Get(path)
		if err != nil {
			m.logger.Warn("template.load_failed", "path", path, "error", err)
			continue
		}
		if Matches(runs, tpl) {
			m.logger.Info("template.matched", "path", path, "supplier", tpl.Supplier)
			return tpl, nil
		}
	}
	m.logger.Info("template.no_match", "dir", dir, "candidates", len(paths))
	return nil, nil
}
