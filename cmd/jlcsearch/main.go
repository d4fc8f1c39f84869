// Command jlcsearch converts a JLCPCB/LCSC parts CSV into a local SQLite
// store, searches it, reconciles BOM files against it, and can serve the
// catalog over a small local JSON API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/joho/godotenv"

	"github.com/jlctools/jlcsearch/app/bomcheck"
	"github.com/jlctools/jlcsearch/app/parts"
	"github.com/jlctools/jlcsearch/app/search"
	"github.com/jlctools/jlcsearch/catalog/bom"
	"github.com/jlctools/jlcsearch/catalog/images"
	"github.com/jlctools/jlcsearch/catalog/ingest"
	"github.com/jlctools/jlcsearch/config"
	"github.com/jlctools/jlcsearch/logger"
	"github.com/jlctools/jlcsearch/models"
)

const usage = `usage: jlcsearch <command> [flags]

commands:
  convert   convert a vendor parts CSV into the local store
  search    query the local store
  bom       match a BOM file against the local store
  serve     serve the catalog over a local JSON API

Download the parts CSV from:
https://jlcpcb.com/componentSearch/uploadComponentInfo
`

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: could not load .env: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	switch os.Args[1] {
	case "convert":
		err = runConvert(cfg, log, os.Args[2:])
	case "search":
		err = runSearch(cfg, log, os.Args[2:])
	case "bom":
		err = runBom(cfg, log, os.Args[2:])
	case "serve":
		err = runServe(cfg, log, os.Args[2:])
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		log.Error(os.Args[1]+" failed", "err", err)
		os.Exit(1)
	}
}

func runConvert(cfg *config.Config, log *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	csvPath := fs.String("csv", "", "vendor parts CSV file (required)")
	dbPath := fs.String("db", cfg.DBFile, "database file to (re)build")
	cacheImages := fs.Bool("cache-images", false,
		"force all images to be cached (takes hours and gigabytes of disk space)")
	clearFailed := fs.Bool("clear-failed", false, "clear the list of failed images first")
	fs.Parse(args)

	if *csvPath == "" {
		fs.Usage()
		return errors.New("-csv is required")
	}

	file, err := os.Open(*csvPath)
	if err != nil {
		return err
	}
	defer file.Close()

	db, err := models.Open(*dbPath)
	if err != nil {
		return err
	}
	repo := models.NewPartsRepository(db)

	resolver, failed, err := newResolver(cfg, log)
	if err != nil {
		return err
	}
	if *clearFailed {
		if err := failed.Clear(); err != nil {
			return err
		}
	}

	// Ctrl-C stops cleanly after the current row; the partial store is
	// kept as is.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ingester := ingest.New(repo, resolver, log)
	rows, err := ingester.Ingest(ctx, file, ingest.Options{
		CacheImages: *cacheImages,
		Progress: func(n int) {
			if n%10000 == 0 {
				log.Info("converting", "rows", n)
			}
		},
	})
	if err != nil {
		return err
	}

	log.Info("store rebuilt", "db", *dbPath, "rows", rows)
	return nil
}

func runSearch(cfg *config.Config, log *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	keywords := fs.String("keywords", "", "space-separated keywords, all must match")
	packages := fs.String("packages", "", "space-separated package tokens, any may match")
	extended := fs.Bool("extended", false, "include Extended library parts")
	sortMode := fs.String("sort", "stock", "sort order: stock, price, instock-price")
	limit := fs.Int("limit", 50, "maximum rows to print")
	dbPath := fs.String("db", cfg.DBFile, "database file")
	fs.Parse(args)

	db, err := models.OpenExisting(*dbPath)
	if err != nil {
		return err
	}
	repo := models.NewPartsRepository(db)

	results, err := repo.Search(models.PartFilters{
		Keywords:        *keywords,
		Packages:        *packages,
		IncludeExtended: *extended,
		Sort:            parseSortFlag(*sortMode),
		Limit:           *limit,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PART\tTYPE\tDESCRIPTION\tPACKAGE\tMANF\tPRICE\tMOQ\tSTOCK")
	for _, p := range results {
		fmt.Fprintf(w, "%s\t%s\t%s %s\t%s\t%s %s\t%.4f\t%d\t%s\n",
			p.LCSCPart, p.LibraryType, p.SecondCategory, p.Description,
			p.Package, p.Manufacturer, p.MfrPart,
			p.WorstUnitPrice, p.MinOrderQty, p.Stock)
	}
	return w.Flush()
}

func runBom(cfg *config.Config, log *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("bom", flag.ExitOnError)
	inPath := fs.String("in", "", "BOM CSV to match (required)")
	outPath := fs.String("out", "", "write the matched BOM here (optional)")
	dbPath := fs.String("db", cfg.DBFile, "database file")
	fs.Parse(args)

	if *inPath == "" {
		fs.Usage()
		return errors.New("-in is required")
	}

	db, err := models.OpenExisting(*dbPath)
	if err != nil {
		return err
	}
	repo := models.NewPartsRepository(db)

	file, err := os.Open(*inPath)
	if err != nil {
		return err
	}
	lines, err := bom.Load(file)
	file.Close()
	if err != nil {
		return err
	}

	matcher := bom.NewMatcher(repo)
	found := matcher.MatchAll(lines)
	log.Info("BOM matched", "found", found, "lines", len(lines))

	for _, line := range lines {
		mark := " "
		if line.VendorPartHint == "" {
			mark = "?"
		}
		fmt.Printf("%s %-20s %-12s %-24s %s\n",
			mark, line.Comment, line.Designator, line.Footprint, line.VendorPartHint)
	}

	if *outPath != "" {
		out, err := os.Create(*outPath)
		if err != nil {
			return err
		}
		defer out.Close()
		if err := bom.Export(out, lines); err != nil {
			return err
		}
		log.Info("BOM exported", "file", *outPath)
	}
	return nil
}

func runServe(cfg *config.Config, log *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", cfg.ListenAddr, "listen address")
	dbPath := fs.String("db", cfg.DBFile, "database file")
	fs.Parse(args)

	db, err := models.OpenExisting(*dbPath)
	if err != nil {
		return err
	}
	repo := models.NewPartsRepository(db)

	resolver, _, err := newResolver(cfg, log)
	if err != nil {
		return err
	}

	searchHandler := search.NewSearchHandler(repo)
	partHandler := parts.NewPartHandler(repo, resolver)
	bomHandler := bomcheck.NewBomCheckHandler(bom.NewMatcher(repo))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/search", searchHandler.HandleGet)
	mux.HandleFunc("GET /api/parts/{code}", partHandler.HandleGetPart)
	mux.HandleFunc("POST /api/bom/check", bomHandler.HandleCheck)
	mux.Handle("GET /images/", http.StripPrefix("/images/",
		http.FileServer(http.Dir(cfg.ImageCacheDir))))

	log.Info("serving catalog", "addr", *addr, "db", *dbPath)
	return http.ListenAndServe(*addr, mux)
}

func newResolver(cfg *config.Config, log *slog.Logger) (*images.Resolver, *images.FailedSet, error) {
	cache, err := images.LoadCacheIndex(cfg.ImageCacheDir)
	if err != nil {
		return nil, nil, err
	}
	failed, err := images.LoadFailedSet(cfg.FailedListFile())
	if err != nil {
		return nil, nil, err
	}
	client := &http.Client{Timeout: cfg.HTTPTimeout}
	return images.NewResolver(client, cfg.AssetHost, cache, failed, log), failed, nil
}

func parseSortFlag(s string) models.SortMode {
	switch s {
	case "price":
		return models.SortPriceAscending
	case "instock-price":
		return models.SortInStockPriceAscending
	default:
		return models.SortStockDescending
	}
}
