package bomcheck

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jlctools/jlcsearch/catalog/bom"
	"github.com/jlctools/jlcsearch/models"
)

// --- Mock Matcher ---

type MockMatcher struct {
	Matches map[string]string // comment -> lcsc part
}

func (m *MockMatcher) Match(line *bom.Line) (*models.Part, bool) {
	if lcsc, ok := m.Matches[line.Comment]; ok {
		line.VendorPartHint = lcsc
		return &models.Part{LCSCPart: lcsc}, true
	}
	return nil, false
}

// --- Tests ---

func TestHandleCheck(t *testing.T) {
	testCases := []struct {
		name               string
		body               string
		matcherSetup       func() *MockMatcher
		expectedStatusCode int
		checkResponse      func(t *testing.T, rec *httptest.ResponseRecorder)
	}{
		{
			name: "Mixed found and not found",
			body: `{"lines":[
				{"comment":"100nF","designator":"C1","footprint":"0603"},
				{"comment":"unobtainium","designator":"U9","footprint":"DIP-88"}
			]}`,
			matcherSetup: func() *MockMatcher {
				return &MockMatcher{Matches: map[string]string{"100nF": "C1525"}}
			},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp []LineResponse
				assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Len(t, resp, 2)

				assert.True(t, resp[0].Found)
				assert.Equal(t, "C1525", resp[0].LCSCPart)
				assert.Equal(t, "C1", resp[0].Designator)

				assert.False(t, resp[1].Found)
				assert.Empty(t, resp[1].LCSCPart)
			},
		},
		{
			name:               "Invalid JSON body",
			body:               `{"lines": [`,
			matcherSetup:       func() *MockMatcher { return &MockMatcher{} },
			expectedStatusCode: http.StatusBadRequest,
		},
		{
			name:               "Missing lines",
			body:               `{"lines":[]}`,
			matcherSetup:       func() *MockMatcher { return &MockMatcher{} },
			expectedStatusCode: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewBomCheckHandler(tc.matcherSetup())

			req := httptest.NewRequest(http.MethodPost, "/api/bom/check", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			handler.HandleCheck(rec, req)

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			if tc.checkResponse != nil {
				tc.checkResponse(t, rec)
			}
		})
	}
}
