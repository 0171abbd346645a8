package repository

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"suggestion_board_backend/internal/model"
	"suggestion_board_backend/internal/util"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSuggestionRepo(t *testing.T) *SuggestionRepository {
	t.Helper()
	store := newTestStore(t)
	registerList(t, "Suggestions", "list-sugg")
	return NewSuggestionRepository(store, NewSchemaRepository(store), testBoardConfig())
}

func suggestionItem(id int64, title, details, status string, createdAt time.Time) map[string]any {
	return testItem(id, map[string]any{
		model.FieldTitle:   title,
		model.FieldDetails: details,
		model.FieldStatus:  status,
	}, createdAt, "author@example.com", "Author")
}

func TestGetSuggestions_ServerSideQuery(t *testing.T) {
	setupHTTPMock(t)
	repo := newSuggestionRepo(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var captured map[string][]string
	httpmock.RegisterResponder(http.MethodGet, itemsURL("list-sugg"),
		func(req *http.Request) (*http.Response, error) {
			captured = req.URL.Query()
			return httpmock.NewStringResponse(http.StatusOK, pageBody(t, []map[string]any{
				suggestionItem(2, "Second", "", "Active", base.Add(time.Hour)),
				suggestionItem(1, "First", "", "Active", base),
			}, "", 2)), nil
		})

	page, err := repo.GetSuggestions(context.Background(), SuggestionFilter{
		Statuses: []string{"Active"},
	}, Page{})
	require.NoError(t, err)

	assert.Equal(t, "fields/Status eq 'Active'", captured["$filter"][0])
	assert.Equal(t, "createdDateTime desc", captured["$orderby"][0])
	assert.Equal(t, "20", captured["$top"][0])
	assert.Equal(t, "true", captured["$count"][0])

	require.Len(t, page.Items, 2)
	assert.Equal(t, int64(2), page.Items[0].ID)
	assert.Equal(t, "Second", page.Items[0].Title)
	assert.Equal(t, "author@example.com", page.Items[0].CreatedBy)
	assert.Equal(t, int64(2), page.Total)
	assert.Empty(t, page.NextPageToken)
}

func TestGetSuggestions_VoteOrderAsksServer(t *testing.T) {
	setupHTTPMock(t)
	repo := newSuggestionRepo(t)

	var orderBy, prefer string
	httpmock.RegisterResponder(http.MethodGet, itemsURL("list-sugg"),
		func(req *http.Request) (*http.Response, error) {
			orderBy = req.URL.Query().Get("$orderby")
			prefer = req.Header.Get("Prefer")
			return httpmock.NewStringResponse(http.StatusOK, `{"value":[]}`), nil
		})

	_, err := repo.GetSuggestions(context.Background(), SuggestionFilter{
		OrderBy: OrderByVotes,
	}, Page{})
	require.NoError(t, err)

	assert.Equal(t, "fields/VoteCount desc,createdDateTime desc", orderBy)
	assert.NotEmpty(t, prefer, "vote-sorted queries must tolerate unindexed columns")
}

func TestGetSuggestions_TextSearchScansLocally(t *testing.T) {
	setupHTTPMock(t)
	repo := newSuggestionRepo(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var filters []string
	httpmock.RegisterResponder(http.MethodGet, itemsURL("list-sugg"),
		func(req *http.Request) (*http.Response, error) {
			filters = append(filters, req.URL.Query().Get("$filter"))
			return httpmock.NewStringResponse(http.StatusOK, pageBody(t, []map[string]any{
				suggestionItem(1, "Fix the Roof", "", "Active", base),
				suggestionItem(2, "Water damage", "<p>The <b>roof</b> is leaking</p>", "Active", base.Add(time.Minute)),
				suggestionItem(3, "New coffee machine", "For the kitchen", "Active", base.Add(2*time.Minute)),
			}, "", -1)), nil
		})

	page, err := repo.GetSuggestions(context.Background(), SuggestionFilter{
		TitleQuery:   "roof",
		DetailsQuery: "roof",
	}, Page{})
	require.NoError(t, err)

	for _, f := range filters {
		assert.NotContains(t, f, "contains(", "text matching must never reach the server")
	}

	require.Len(t, page.Items, 2)
	ids := []int64{page.Items[0].ID, page.Items[1].ID}
	assert.ElementsMatch(t, []int64{1, 2}, ids)
	assert.Equal(t, int64(2), page.Total)
}

func TestGetSuggestions_FallsBackWhenServerRejectsQuery(t *testing.T) {
	setupHTTPMock(t)
	repo := newSuggestionRepo(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	scans := 0
	httpmock.RegisterResponder(http.MethodGet, itemsURL("list-sugg"),
		func(req *http.Request) (*http.Response, error) {
			if strings.HasPrefix(req.URL.Query().Get("$orderby"), "createdDateTime") {
				return httpmock.NewStringResponse(http.StatusBadRequest,
					`{"error":{"code":"BadRequest","message":"Field 'Status' cannot be used in the query"}}`), nil
			}
			scans++
			return httpmock.NewStringResponse(http.StatusOK, pageBody(t, []map[string]any{
				suggestionItem(1, "Only one", "", "Active", base),
			}, "", -1)), nil
		})

	page, err := repo.GetSuggestions(context.Background(), SuggestionFilter{
		Statuses: []string{"Active"},
	}, Page{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Only one", page.Items[0].Title)
	assert.Equal(t, 1, scans, "the rejection must drop into exactly one scan")
}

func TestGetSuggestions_ScanPagination(t *testing.T) {
	setupHTTPMock(t)
	repo := newSuggestionRepo(t)

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	items := make([]map[string]any, 0, 25)
	for i := int64(1); i <= 25; i++ {
		items = append(items, suggestionItem(i, "Idea", "", "Active", base.Add(time.Duration(i)*time.Minute)))
	}
	httpmock.RegisterResponder(http.MethodGet, itemsURL("list-sugg"),
		httpmock.NewStringResponder(http.StatusOK, pageBody(t, items, "", -1)))

	filter := SuggestionFilter{TitleQuery: "idea"}
	seen := make(map[int64]bool)

	page, err := repo.GetSuggestions(context.Background(), filter, Page{Top: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 10)
	assert.Equal(t, int64(25), page.Total)
	assert.Equal(t, "offset:10", page.NextPageToken)
	// Newest first.
	assert.Equal(t, int64(25), page.Items[0].ID)
	for _, s := range page.Items {
		seen[s.ID] = true
	}

	page, err = repo.GetSuggestions(context.Background(), filter, Page{Top: 10, Token: page.NextPageToken})
	require.NoError(t, err)
	require.Len(t, page.Items, 10)
	assert.Equal(t, "offset:20", page.NextPageToken)
	for _, s := range page.Items {
		require.False(t, seen[s.ID], "item %d repeated across pages", s.ID)
		seen[s.ID] = true
	}

	page, err = repo.GetSuggestions(context.Background(), filter, Page{Top: 10, Token: page.NextPageToken})
	require.NoError(t, err)
	require.Len(t, page.Items, 5)
	assert.Empty(t, page.NextPageToken)
	for _, s := range page.Items {
		require.False(t, seen[s.ID])
		seen[s.ID] = true
	}
	assert.Len(t, seen, 25)
}

func TestGetSuggestions_ByIDsStopsEarly(t *testing.T) {
	setupHTTPMock(t)
	store := newTestStore(t)
	registerList(t, "Suggestions", "list-sugg")
	cfg := testBoardConfig()
	cfg.ScanPageSize = 2
	repo := NewSuggestionRepository(store, NewSchemaRepository(store), cfg)

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	pages := 0
	httpmock.RegisterResponder(http.MethodGet, itemsURL("list-sugg"),
		func(req *http.Request) (*http.Response, error) {
			pages++
			switch req.URL.Query().Get("$skiptoken") {
			case "":
				next := itemsURL("list-sugg") + "?%24skiptoken=p2"
				return httpmock.NewStringResponse(http.StatusOK, pageBody(t, []map[string]any{
					suggestionItem(1, "One", "", "Active", base),
					suggestionItem(2, "Two", "", "Active", base.Add(time.Minute)),
				}, next, -1)), nil
			default:
				return httpmock.NewStringResponse(http.StatusOK, pageBody(t, []map[string]any{
					suggestionItem(3, "Three", "", "Active", base.Add(2*time.Minute)),
					suggestionItem(4, "Four", "", "Active", base.Add(3*time.Minute)),
				}, "", -1)), nil
			}
		})

	page, err := repo.GetSuggestions(context.Background(), SuggestionFilter{
		IDs: []int64{1, 2},
	}, Page{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, 1, pages, "scan must stop once every requested ID was seen")
}

func TestCreate_RetriesWithoutTaxonomyFields(t *testing.T) {
	setupHTTPMock(t)
	repo := newSuggestionRepo(t)

	var attempts []map[string]any
	httpmock.RegisterResponder(http.MethodPost, itemsURL("list-sugg"),
		func(req *http.Request) (*http.Response, error) {
			attempts = append(attempts, bodyFields(t, req))
			if len(attempts) == 1 {
				return httpmock.NewStringResponse(http.StatusBadRequest,
					`{"error":{"code":"invalidRequest","message":"The property 'Category' is not recognized"}}`), nil
			}
			return httpmock.NewStringResponse(http.StatusCreated,
				`{"id":"11","fields":{"Title":"Fix the roof","Status":"Active"}}`), nil
		})

	created, err := repo.Create(context.Background(), &model.Suggestion{
		Title:    "Fix the roof",
		Status:   "Active",
		Category: "Facilities",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), created.ID)

	require.Len(t, attempts, 2)
	assert.Contains(t, attempts[0], model.FieldCategory)
	assert.NotContains(t, attempts[1], model.FieldCategory)
	assert.NotContains(t, attempts[1], model.FieldSubcategory)
	assert.Equal(t, "Fix the roof", attempts[1][model.FieldTitle])
}

func TestSetVoteCount_MissingColumnIsNotAnError(t *testing.T) {
	setupHTTPMock(t)
	repo := newSuggestionRepo(t)

	httpmock.RegisterResponder(http.MethodPatch, itemsURL("list-sugg")+"/7/fields",
		httpmock.NewStringResponder(http.StatusBadRequest,
			`{"error":{"code":"invalidRequest","message":"The property 'VoteCount' is not recognized"}}`))

	assert.NoError(t, repo.SetVoteCount(context.Background(), 7, 3))
}

func TestGet_MissingSuggestion(t *testing.T) {
	setupHTTPMock(t)
	repo := newSuggestionRepo(t)

	httpmock.RegisterResponder(http.MethodGet, itemsURL("list-sugg")+"/99",
		httpmock.NewStringResponder(http.StatusNotFound,
			`{"error":{"code":"itemNotFound","message":"Item not found"}}`))

	_, err := repo.Get(context.Background(), 99)
	assert.ErrorIs(t, err, util.ErrSuggestionNotFound)
}

func TestParseOffsetToken(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		want    int
		wantErr bool
	}{
		{"empty", "", 0, false},
		{"valid", "offset:30", 30, false},
		{"zero", "offset:0", 0, false},
		{"negative", "offset:-1", 0, true},
		{"garbage", "offset:xyz", 0, true},
		{"native_token", "https://lists.example.test/continuations/abc", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseOffsetToken(tt.token)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSortScanned(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	mk := func(id int64, votes int, created time.Time) scannedSuggestion {
		return scannedSuggestion{
			suggestion: model.Suggestion{ID: id, CreatedAt: created},
			votes:      votes,
		}
	}

	t.Run("votes_desc_ties_newest_first", func(t *testing.T) {
		items := []scannedSuggestion{
			mk(1, 2, base),
			mk(2, 5, base.Add(time.Minute)),
			mk(3, 2, base.Add(2*time.Minute)),
		}
		sortScanned(items, OrderByVotes)
		assert.Equal(t, int64(2), items[0].suggestion.ID)
		assert.Equal(t, int64(3), items[1].suggestion.ID)
		assert.Equal(t, int64(1), items[2].suggestion.ID)
	})

	t.Run("default_newest_first", func(t *testing.T) {
		items := []scannedSuggestion{
			mk(1, 9, base),
			mk(2, 0, base.Add(time.Minute)),
		}
		sortScanned(items, OrderByCreated)
		assert.Equal(t, int64(2), items[0].suggestion.ID)
	})
}
