package bomcheck

import (
	"encoding/json"
	"net/http"

	"github.com/jlctools/jlcsearch/catalog/bom"
	"github.com/jlctools/jlcsearch/models"
)

type LineRequest struct {
	Comment    string `json:"comment"`
	Designator string `json:"designator"`
	Footprint  string `json:"footprint"`
}

type LineResponse struct {
	Comment    string `json:"comment"`
	Designator string `json:"designator"`
	Footprint  string `json:"footprint"`
	LCSCPart   string `json:"lcscPart"`
	Found      bool   `json:"found"`
}

// LineMatcher reconciles one BOM line against the catalog.
type LineMatcher interface {
	Match(line *bom.Line) (*models.Part, bool)
}

type BomCheckHandler struct {
	matcher LineMatcher
}

func NewBomCheckHandler(m LineMatcher) *BomCheckHandler {
	return &BomCheckHandler{matcher: m}
}

// HandleCheck matches the posted BOM lines and reports, per line, the
// resolved vendor part id and whether anything was found. Found or not
// found is the whole signal.
func (h *BomCheckHandler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Lines []LineRequest `json:"lines"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	if len(input.Lines) == 0 {
		http.Error(w, "Missing lines", http.StatusBadRequest)
		return
	}

	response := make([]LineResponse, len(input.Lines))
	for i, req := range input.Lines {
		line := bom.Line{
			Comment:    req.Comment,
			Designator: req.Designator,
			Footprint:  req.Footprint,
		}
		_, found := h.matcher.Match(&line)

		response[i] = LineResponse{
			Comment:    line.Comment,
			Designator: line.Designator,
			Footprint:  line.Footprint,
			LCSCPart:   line.VendorPartHint,
			Found:      found,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
