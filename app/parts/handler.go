package parts

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/jlctools/jlcsearch/catalog/images"
	"github.com/jlctools/jlcsearch/models"
)

type PartProvider interface {
	GetByLCSC(code string) (*models.Part, error)
}

// Resolver resolves a part photo lazily at display time.
type Resolver interface {
	Resolve(ctx context.Context, p images.Part) string
}

type PartHandler struct {
	repo     PartProvider
	resolver Resolver
}

func NewPartHandler(r PartProvider, resolver Resolver) *PartHandler {
	return &PartHandler{
		repo:     r,
		resolver: resolver,
	}
}

func (h *PartHandler) HandleGetPart(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	part, err := h.repo.GetByLCSC(code)
	if err != nil {
		http.Error(w, "Part not found", http.StatusNotFound)
		return
	}

	imageFilename := part.ImageFilename
	if imageFilename == "" && h.resolver != nil {
		imageFilename = h.resolver.Resolve(r.Context(), images.Part{
			LCSCPart:     part.LCSCPart,
			DatasheetURL: part.DatasheetURL,
			Manufacturer: part.Manufacturer,
			MfrPart:      part.MfrPart,
		})
	}

	response := struct {
		LCSCPart       string  `json:"lcscPart"`
		LibraryType    string  `json:"libraryType"`
		FirstCategory  string  `json:"firstCategory"`
		SecondCategory string  `json:"secondCategory"`
		Description    string  `json:"description"`
		Package        string  `json:"package"`
		SolderJoint    string  `json:"solderJoint"`
		Manufacturer   string  `json:"manufacturer"`
		MfrPart        string  `json:"mfrPart"`
		DatasheetURL   string  `json:"datasheetUrl"`
		PriceTiers     string  `json:"priceTiers"`
		WorstUnitPrice float64 `json:"worstUnitPrice"`
		MinOrderQty    int     `json:"minOrderQty"`
		Stock          string  `json:"stock"`
		ImageFilename  string  `json:"imageFilename"`
	}{
		LCSCPart:       part.LCSCPart,
		LibraryType:    part.LibraryType,
		FirstCategory:  part.FirstCategory,
		SecondCategory: part.SecondCategory,
		Description:    part.Description,
		Package:        part.Package,
		SolderJoint:    part.SolderJoint,
		Manufacturer:   part.Manufacturer,
		MfrPart:        part.MfrPart,
		DatasheetURL:   part.DatasheetURL,
		PriceTiers:     part.RawPriceTiers,
		WorstUnitPrice: part.WorstUnitPrice,
		MinOrderQty:    part.MinOrderQty,
		Stock:          part.Stock,
		ImageFilename:  imageFilename,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
