package repository

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"testing"
	"time"

	"suggestion_board_backend/internal/config"
	"suggestion_board_backend/pkg/liststore"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testBaseURL = "https://lists.example.test/v1.0"
	testSiteID  = "board"
	testSite    = testBaseURL + "/sites/site-1"
)

func setupHTTPMock(t *testing.T) {
	t.Helper()
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)
}

func testBoardConfig() *config.BoardConfig {
	return &config.BoardConfig{
		VoteQuota:         5,
		PageSize:          20,
		ScanPageSize:      200,
		PurgeConcurrency:  2,
		SuggestionsList:   "Suggestions",
		VotesList:         "SuggestionVotes",
		CommentsList:      "SuggestionComments",
		CategoriesList:    "SuggestionCategories",
		SubcategoriesList: "SuggestionSubcategories",
		StatusesList:      "SuggestionStatuses",
	}
}

func newTestStore(t *testing.T) *liststore.Client {
	t.Helper()
	httpmock.RegisterResponder(http.MethodGet, testBaseURL+"/sites/"+testSiteID,
		httpmock.NewStringResponder(http.StatusOK, `{"id":"site-1"}`))
	return liststore.New(&liststore.Config{
		BaseURL: testBaseURL,
		SiteID:  testSiteID,
		Token:   "test-token",
	}, zap.NewNop())
}

// registerList wires the display-name lookup of one list to a fixed ID.
func registerList(t *testing.T, name, id string) {
	t.Helper()
	httpmock.RegisterResponderWithQuery(http.MethodGet, testSite+"/lists",
		url.Values{"$filter": []string{liststore.DisplayNameEq(name)}},
		httpmock.NewStringResponder(http.StatusOK,
			fmt.Sprintf(`{"value":[{"id":%q,"displayName":%q}]}`, id, name)))
}

func itemsURL(listID string) string {
	return testSite + "/lists/" + listID + "/items"
}

func testItem(id int64, fields map[string]any, createdAt time.Time, email, displayName string) map[string]any {
	return map[string]any{
		"id":              strconv.FormatInt(id, 10),
		"fields":          fields,
		"createdDateTime": createdAt.UTC().Format(time.RFC3339),
		"createdBy": map[string]any{
			"user": map[string]any{"email": email, "displayName": displayName},
		},
	}
}

// pageBody renders one collection page. count < 0 omits the total.
func pageBody(t *testing.T, items []map[string]any, nextLink string, count int) string {
	t.Helper()
	body := map[string]any{"value": items}
	if nextLink != "" {
		body["@odata.nextLink"] = nextLink
	}
	if count >= 0 {
		body["@odata.count"] = count
	}
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	return string(raw)
}

func decodeBody(t *testing.T, req *http.Request) map[string]any {
	t.Helper()
	defer req.Body.Close()
	var body map[string]any
	require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
	return body
}

// bodyFields unwraps the fields payload of a create request; patch
// requests carry the fields at the top level.
func bodyFields(t *testing.T, req *http.Request) map[string]any {
	t.Helper()
	body := decodeBody(t, req)
	if fields, ok := body["fields"].(map[string]any); ok {
		return fields
	}
	return body
}
