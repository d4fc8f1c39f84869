package search

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/jlctools/jlcsearch/models"
)

type Response struct {
	Total int    `json:"total"`
	Parts []Part `json:"parts"`
}

type Part struct {
	LCSCPart       string  `json:"lcscPart"`
	LibraryType    string  `json:"libraryType"`
	Description    string  `json:"description"`
	SecondCategory string  `json:"secondCategory"`
	Package        string  `json:"package"`
	Manufacturer   string  `json:"manufacturer"`
	MfrPart        string  `json:"mfrPart"`
	PriceTiers     string  `json:"priceTiers"`
	WorstUnitPrice float64 `json:"worstUnitPrice"`
	MinOrderQty    int     `json:"minOrderQty"`
	Stock          string  `json:"stock"`
}

type PartsSearcher interface {
	Search(f models.PartFilters) ([]models.Part, error)
}

type SearchHandler struct {
	repo PartsSearcher
}

func NewSearchHandler(r PartsSearcher) *SearchHandler {
	return &SearchHandler{
		repo: r,
	}
}

func (h *SearchHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	// Parse query params
	limit := 100
	if lStr := r.URL.Query().Get("limit"); lStr != "" {
		if l, err := strconv.Atoi(lStr); err == nil && l > 0 {
			limit = l
		}
	}

	filters := models.PartFilters{
		Keywords:        r.URL.Query().Get("keywords"),
		Packages:        r.URL.Query().Get("packages"),
		IncludeExtended: r.URL.Query().Get("extended") == "true",
		Sort:            parseSortMode(r.URL.Query().Get("sort")),
		Limit:           limit,
	}

	res, err := h.repo.Search(filters)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	parts := make([]Part, len(res))
	for i, p := range res {
		parts[i] = Part{
			LCSCPart:       p.LCSCPart,
			LibraryType:    p.LibraryType,
			Description:    p.Description,
			SecondCategory: p.SecondCategory,
			Package:        p.Package,
			Manufacturer:   p.Manufacturer,
			MfrPart:        p.MfrPart,
			PriceTiers:     p.RawPriceTiers,
			WorstUnitPrice: p.WorstUnitPrice,
			MinOrderQty:    p.MinOrderQty,
			Stock:          p.Stock,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	response := Response{
		Total: len(parts),
		Parts: parts,
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// parseSortMode maps the query value to a store sort mode, defaulting to
// stock descending like the original search screen.
func parseSortMode(s string) models.SortMode {
	switch s {
	case "price":
		return models.SortPriceAscending
	case "instock-price":
		return models.SortInStockPriceAscending
	default:
		return models.SortStockDescending
	}
}
