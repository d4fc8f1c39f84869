package models

import (
	"errors"
	"regexp"
	"strings"

	"gorm.io/gorm"
)

// ErrPartNotFound is returned when a part is not found.
var ErrPartNotFound = errors.New("part not found")

// SortMode selects the result ordering of a catalog search.
type SortMode int

const (
	// SortStockDescending keeps only in-stock rows, highest stock first.
	SortStockDescending SortMode = iota + 1
	// SortPriceAscending orders by worst unit price, cheapest first.
	SortPriceAscending
	// SortInStockPriceAscending keeps only in-stock rows, cheapest first.
	SortInStockPriceAscending
)

// PartFilters describes a catalog search. Keywords and Packages are
// space-separated token lists; see Search for how they combine.
type PartFilters struct {
	Keywords        string
	Packages        string
	IncludeExtended bool
	Sort            SortMode
	Limit           int
}

type PartsRepository struct {
	db *gorm.DB
}

func NewPartsRepository(db *gorm.DB) *PartsRepository {
	return &PartsRepository{
		db: db,
	}
}

// lcscPartPattern matches a vendor part id: "C" followed by digits only.
var lcscPartPattern = regexp.MustCompile(`^C[0-9]+$`)

// Search executes a filtered, sorted catalog query. Every keyword token
// must match (case-insensitive substring) at least one of the two category
// columns, the description, or the manufacturer part; a filter consisting
// of a single vendor-id-shaped token is an exact lcsc_part lookup instead.
// Package tokens are OR-combined substring matches. All sort modes order
// by library type second so Basic parts surface first on ties. Search
// never mutates the store.
func (r *PartsRepository) Search(f PartFilters) ([]Part, error) {
	query := r.db.Model(&Part{})

	if !f.IncludeExtended {
		query = query.Where("library_type = ?", LibraryTypeBasic)
	}

	keywords := strings.Fields(f.Keywords)
	if len(keywords) == 1 && lcscPartPattern.MatchString(keywords[0]) {
		query = query.Where("lcsc_part = ?", keywords[0])
	} else {
		for _, token := range keywords {
			pattern := likePattern(token)
			query = query.Where(
				"(LOWER(first_category) LIKE ? OR LOWER(second_category) LIKE ? OR LOWER(description) LIKE ? OR LOWER(mfr_part) LIKE ?)",
				pattern, pattern, pattern, pattern,
			)
		}
	}

	if packages := strings.Fields(f.Packages); len(packages) > 0 {
		cond := r.db.Where("LOWER(package) LIKE ?", likePattern(packages[0]))
		for _, token := range packages[1:] {
			cond = cond.Or("LOWER(package) LIKE ?", likePattern(token))
		}
		query = query.Where(cond)
	}

	switch f.Sort {
	case SortStockDescending:
		query = query.Where("CAST(stock AS INTEGER) > 0").
			Order("CAST(stock AS INTEGER) DESC")
	case SortPriceAscending:
		query = query.Order("worst_unit_price ASC")
	case SortInStockPriceAscending:
		query = query.Where("CAST(stock AS INTEGER) > 0").
			Order("worst_unit_price ASC")
	}
	query = query.Order("library_type ASC")

	if f.Limit > 0 {
		query = query.Limit(f.Limit)
	}

	var parts []Part
	if err := query.Find(&parts).Error; err != nil {
		return nil, err
	}
	return parts, nil
}

// GetByLCSC returns the part with the given vendor id.
func (r *PartsRepository) GetByLCSC(code string) (*Part, error) {
	var part Part
	if err := r.db.Where("lcsc_part = ?", code).First(&part).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPartNotFound
		}
		return nil, err // Other DB error
	}
	return &part, nil
}

// MatchBOM finds the best candidate for a BOM line: comment tokens must all
// match the description/category columns, footprint tokens must all match
// the description/category/package columns; Basic parts first, then highest
// stock. Returns ErrPartNotFound when nothing matches.
func (r *PartsRepository) MatchBOM(comment, footprint string) (*Part, error) {
	query := r.db.Model(&Part{})

	for _, token := range strings.Fields(comment) {
		pattern := likePattern(token)
		query = query.Where(
			"(LOWER(first_category) LIKE ? OR LOWER(second_category) LIKE ? OR LOWER(description) LIKE ?)",
			pattern, pattern, pattern,
		)
	}
	for _, token := range strings.Fields(footprint) {
		pattern := likePattern(token)
		query = query.Where(
			"(LOWER(first_category) LIKE ? OR LOWER(second_category) LIKE ? OR LOWER(description) LIKE ? OR LOWER(package) LIKE ?)",
			pattern, pattern, pattern, pattern,
		)
	}

	var parts []Part
	err := query.
		Order("library_type ASC").
		Order("CAST(stock AS INTEGER) DESC").
		Limit(1).
		Find(&parts).Error
	if err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return nil, ErrPartNotFound
	}
	return &parts[0], nil
}

// Rebuild discards all prior store content and recreates the parts table.
// Conversions always replace the store wholesale.
func (r *PartsRepository) Rebuild() error {
	migrator := r.db.Migrator()
	if migrator.HasTable(&Part{}) {
		if err := migrator.DropTable(&Part{}); err != nil {
			return err
		}
	}
	return r.db.AutoMigrate(&Part{})
}

// Append inserts one normalized part row. Ingestion is append-only, so an
// aborted conversion leaves a valid (merely incomplete) store.
func (r *PartsRepository) Append(p *Part) error {
	return r.db.Create(p).Error
}

func likePattern(token string) string {
	return "%" + strings.ToLower(token) + "%"
}
