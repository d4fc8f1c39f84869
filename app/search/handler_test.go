package search

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jlctools/jlcsearch/models"
)

// --- Mock Repo ---

type MockPartsRepo struct {
	Parts []models.Part
	Err   error

	lastFilters models.PartFilters
}

func (m *MockPartsRepo) Search(f models.PartFilters) ([]models.Part, error) {
	m.lastFilters = f
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Parts, nil
}

// --- Helpers ---

func newTestPart(lcsc, libraryType, description string, price float64) models.Part {
	return models.Part{
		LCSCPart:       lcsc,
		LibraryType:    libraryType,
		Description:    description,
		Package:        "0805",
		Manufacturer:   "YAGEO",
		MfrPart:        "RC0805",
		RawPriceTiers:  "1-199:0.01",
		WorstUnitPrice: price,
		MinOrderQty:    1,
		Stock:          "1000",
	}
}

// --- Tests ---

func TestHandleGet(t *testing.T) {
	testCases := []struct {
		name               string
		url                string
		mockRepoSetup      func() *MockPartsRepo
		expectedStatusCode int
		checkResponse      func(t *testing.T, rec *httptest.ResponseRecorder)
		checkRepoCalls     func(t *testing.T, repo *MockPartsRepo)
	}{
		{
			name: "Success with results",
			url:  "/api/search?keywords=resistor+10k&packages=0805&limit=5",
			mockRepoSetup: func() *MockPartsRepo {
				return &MockPartsRepo{Parts: []models.Part{
					newTestPart("C17414", "Basic", "10kOhm Chip Resistor", 0.004),
					newTestPart("C25804", "Extended", "10kOhm Chip Resistor", 0.002),
				}}
			},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp Response
				err := json.NewDecoder(rec.Body).Decode(&resp)
				assert.NoError(t, err)
				assert.Equal(t, 2, resp.Total)
				assert.Equal(t, "C17414", resp.Parts[0].LCSCPart)
				assert.Equal(t, "1-199:0.01", resp.Parts[0].PriceTiers)
				assert.InDelta(t, 0.004, resp.Parts[0].WorstUnitPrice, 1e-9)
			},
			checkRepoCalls: func(t *testing.T, repo *MockPartsRepo) {
				assert.Equal(t, "resistor 10k", repo.lastFilters.Keywords)
				assert.Equal(t, "0805", repo.lastFilters.Packages)
				assert.Equal(t, 5, repo.lastFilters.Limit)
				assert.False(t, repo.lastFilters.IncludeExtended)
				assert.Equal(t, models.SortStockDescending, repo.lastFilters.Sort)
			},
		},
		{
			name: "Sort and extended flags are forwarded",
			url:  "/api/search?keywords=C1234&extended=true&sort=price",
			mockRepoSetup: func() *MockPartsRepo {
				return &MockPartsRepo{}
			},
			expectedStatusCode: http.StatusOK,
			checkRepoCalls: func(t *testing.T, repo *MockPartsRepo) {
				assert.True(t, repo.lastFilters.IncludeExtended)
				assert.Equal(t, models.SortPriceAscending, repo.lastFilters.Sort)
			},
		},
		{
			name: "In-stock price sort",
			url:  "/api/search?keywords=led&sort=instock-price",
			mockRepoSetup: func() *MockPartsRepo {
				return &MockPartsRepo{}
			},
			expectedStatusCode: http.StatusOK,
			checkRepoCalls: func(t *testing.T, repo *MockPartsRepo) {
				assert.Equal(t, models.SortInStockPriceAscending, repo.lastFilters.Sort)
			},
		},
		{
			name: "Empty result is an empty list, not null",
			url:  "/api/search?keywords=nothing",
			mockRepoSetup: func() *MockPartsRepo {
				return &MockPartsRepo{}
			},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp Response
				err := json.NewDecoder(rec.Body).Decode(&resp)
				assert.NoError(t, err)
				assert.Equal(t, 0, resp.Total)
				assert.NotNil(t, resp.Parts)
			},
		},
		{
			name: "Repository error becomes 500",
			url:  "/api/search?keywords=resistor",
			mockRepoSetup: func() *MockPartsRepo {
				return &MockPartsRepo{Err: errors.New("store gone")}
			},
			expectedStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := tc.mockRepoSetup()
			handler := NewSearchHandler(repo)

			req := httptest.NewRequest(http.MethodGet, tc.url, nil)
			rec := httptest.NewRecorder()
			handler.HandleGet(rec, req)

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			if tc.checkResponse != nil {
				tc.checkResponse(t, rec)
			}
			if tc.checkRepoCalls != nil {
				tc.checkRepoCalls(t, repo)
			}
		})
	}
}
