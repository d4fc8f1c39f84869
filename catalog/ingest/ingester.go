// Package ingest streams a vendor catalog CSV into the parts store.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jlctools/jlcsearch/catalog/images"
	"github.com/jlctools/jlcsearch/catalog/normalize"
	"github.com/jlctools/jlcsearch/catalog/pricing"
	"github.com/jlctools/jlcsearch/models"
)

// Column order of the vendor CSV. The later schema appends a minimum order
// quantity column after the reserved worst-price slot.
const (
	colLCSCPart = iota
	colFirstCategory
	colSecondCategory
	colMfrPart
	colPackage
	colSolderJoint
	colManufacturer
	colLibraryType
	colDescription
	colDatasheet
	colPrice
	colStock
	colWorstPrice
	colMinOrderQty

	fieldCount      = 13
	fieldCountNewer = 14
)

// PartWriter is the slice of the store the ingester needs.
type PartWriter interface {
	Rebuild() error
	Append(p *models.Part) error
}

// ImageResolver resolves a part photo; see catalog/images.
type ImageResolver interface {
	Resolve(ctx context.Context, p images.Part) string
}

// Options control one conversion run.
type Options struct {
	// CacheImages forces image resolution for every row whose image is
	// neither cached nor known-failed. Expensive: hours and gigabytes on a
	// full catalog.
	CacheImages bool

	// Progress, when set, is called once per ingested row.
	Progress func(rows int)
}

// Ingester converts the vendor CSV into store rows. Dependencies are
// explicit; the resolver may be nil when image caching is off.
type Ingester struct {
	store    PartWriter
	resolver ImageResolver
	log      *slog.Logger
}

func New(store PartWriter, resolver ImageResolver, log *slog.Logger) *Ingester {
	return &Ingester{
		store:    store,
		resolver: resolver,
		log:      log,
	}
}

// Ingest replaces the store content with the rows of the CSV read from r.
// The vendor exports in a legacy single-byte encoding, honored here via a
// Windows-1252 decoder. Rows that do not match the expected shape (the
// header row included) are skipped silently. Cancellation is checked
// once per row; an aborted run leaves the partially populated store as is.
func (in *Ingester) Ingest(ctx context.Context, r io.Reader, opts Options) (int, error) {
	if err := in.store.Rebuild(); err != nil {
		return 0, err
	}

	reader := csv.NewReader(transform.NewReader(r, charmap.Windows1252.NewDecoder()))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows := 0
	for {
		select {
		case <-ctx.Done():
			in.log.Warn("conversion aborted", "rows", rows)
			return rows, ctx.Err()
		default:
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}
			return rows, err
		}
		if !validRow(record) {
			continue
		}

		part := in.buildPart(record)
		if opts.CacheImages && in.resolver != nil {
			// The resolver skips parts already cached or known-failed on
			// its own, so this only pays for images not yet seen.
			part.ImageFilename = in.resolver.Resolve(ctx, images.Part{
				LCSCPart:     part.LCSCPart,
				DatasheetURL: part.DatasheetURL,
				Manufacturer: part.Manufacturer,
				MfrPart:      part.MfrPart,
			})
		}
		if err := in.store.Append(part); err != nil {
			return rows, err
		}

		rows++
		if opts.Progress != nil {
			opts.Progress(rows)
		}
	}

	in.log.Info("conversion finished", "rows", rows)
	return rows, nil
}

// partIDPattern matches a vendor part id: "C" followed by digits.
var partIDPattern = regexp.MustCompile(`^C[0-9]+$`)

// validRow rejects rows that do not match the catalog shape. The header row
// fails the part-id check, so it is skipped like any other malformed row.
func validRow(record []string) bool {
	if len(record) != fieldCount && len(record) != fieldCountNewer {
		return false
	}
	return partIDPattern.MatchString(record[colLCSCPart])
}

func (in *Ingester) buildPart(record []string) *models.Part {
	_, summary := pricing.Parse(record[colPrice])

	minQty := summary.MinOrderQty
	if len(record) == fieldCountNewer {
		if qty, err := strconv.Atoi(strings.TrimSpace(record[colMinOrderQty])); err == nil && qty > 0 {
			minQty = qty
		}
	}

	return &models.Part{
		LCSCPart:       record[colLCSCPart],
		FirstCategory:  normalize.Text(record[colFirstCategory]),
		SecondCategory: normalize.Text(record[colSecondCategory]),
		MfrPart:        record[colMfrPart],
		Package:        record[colPackage],
		SolderJoint:    record[colSolderJoint],
		Manufacturer:   record[colManufacturer],
		LibraryType:    record[colLibraryType],
		Description:    normalize.Text(record[colDescription]),
		DatasheetURL:   record[colDatasheet],
		RawPriceTiers:  record[colPrice],
		Stock:          record[colStock],
		WorstUnitPrice: summary.WorstUnitPrice,
		MinOrderQty:    minQty,
	}
}
