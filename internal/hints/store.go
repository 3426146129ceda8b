// Package hints keeps the brands and categories already known to the user.
// They are passed to the structuring prompt so the model reuses existing
// spellings instead of inventing new ones.
package hints

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/joseph-ayodele/invoice-analyst/internal/common"
)

// Hints are the known names, sorted and de-duplicated.
type Hints struct {
	Brands     []string `json:"brands"`
	Categories []string `json:"categories"`
}

type Store interface {
	Brands(ctx context.Context) ([]string, error)
	Categories(ctx context.Context) ([]string, error)
	AddBrand(ctx context.Context, name string) error
	AddCategory(ctx context.Context, name string) error
	Ping(ctx context.Context) error
	Close() error
}

// Load reads both lists from s.
func Load(ctx context.Context, s Store) (Hints, error) {
	brands, err := s.Brands(ctx)
	if err != nil {
		return Hints{}, fmt.Errorf("%w: list brands: %v", common.ErrDatabase, err)
	}
	cats, err := s.Categories(ctx)
	if err != nil {
		return Hints{}, fmt.Errorf("%w: list categories: %v", common.ErrDatabase, err)
	}
	return Hints{Brands: brands, Categories: cats}, nil
}

// Open returns the store selected by cfg.Driver. "none" yields an empty Static store.
func Open(ctx context.Context, cfg common.HintsConfig, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Driver {
	case "", "none":
		return &Static{}, nil
	case "sqlite":
		return OpenSQLite(ctx, cfg.DSN, logger)
	case "postgres":
		return OpenPostgres(ctx, PoolConfig{
			DSN:         cfg.DSN,
			MaxConns:    cfg.MaxConns,
			MinConns:    cfg.MinConns,
			DialTimeout: cfg.DialTimeout,
		}, logger)
	}
	return nil, common.NewAppError("CONFIG_ERROR", "unknown hints driver "+cfg.Driver, common.ErrInvalidInput)
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	v := common.NewValidator()
	v.Field("name", name, common.Required, common.MaxLength(200))
	if v.HasErrors() {
		return "", v.Error()
	}
	return name, nil
}

// Static is an in-memory Store.
type Static struct {
	Known Hints
}

func (s *Static) Brands(context.Context) ([]string, error)     { return slices.Clone(s.Known.Brands), nil }
func (s *Static) Categories(context.Context) ([]string, error) { return slices.Clone(s.Known.Categories), nil }
func (s *Static) Ping(context.Context) error                   { return nil }
func (s *Static) Close() error                                 { return nil }

func (s *Static) AddBrand(_ context.Context, name string) error {
	n, err := cleanName(name)
	if err != nil {
		return err
	}
	s.Known.Brands = insertSorted(s.Known.Brands, n)
	return nil
}

func (s *Static) AddCategory(_ context.Context, name string) error {
	n, err := cleanName(name)
	if err != nil {
		return err
	}
	s.Known.Categories = insertSorted(s.Known.Categories, n)
	return nil
}

func insertSorted(list []string, name string) []string {
	i, found := slices.BinarySearch(list, name)
	if found {
		return list
	}
	return slices.Insert(list, i, name)
}
