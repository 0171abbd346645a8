package repository

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"suggestion_board_backend/internal/config"
	"suggestion_board_backend/internal/model"
	"suggestion_board_backend/internal/util"

	"suggestion_board_backend/pkg/liststore"
	"suggestion_board_backend/pkg/logger"
	"suggestion_board_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// OrderBy values accepted by GetSuggestions.
const (
	OrderByCreated = "created"
	OrderByVotes   = "votes"
)

// offsetTokenPrefix marks page tokens minted by the full-scan path.
// Tokens without the prefix are native continuation tokens from the
// remote store and are passed back verbatim.
const offsetTokenPrefix = "offset:"

// SuggestionFilter narrows a suggestion query. Text queries and
// CreatedBy filtering are served by the scan path because the remote
// contains function is not reliably supported and the author lives
// outside the fields map.
type SuggestionFilter struct {
	Statuses     []string
	Category     string
	Subcategory  string
	TitleQuery   string
	DetailsQuery string
	IDs          []int64
	CreatedBy    string
	OrderBy      string
}

func (f SuggestionFilter) hasTextSearch() bool {
	return strings.TrimSpace(f.TitleQuery) != "" || strings.TrimSpace(f.DetailsQuery) != ""
}

// structural returns the filter clauses every deployment can evaluate
// server-side.
func (f SuggestionFilter) structural() string {
	var clauses []string
	if len(f.Statuses) > 0 {
		clauses = append(clauses, liststore.AnyEq(model.FieldStatus, f.Statuses))
	}
	if f.Category != "" {
		clauses = append(clauses, liststore.FieldEq(model.FieldCategory, f.Category))
	}
	if f.Subcategory != "" {
		clauses = append(clauses, liststore.FieldEq(model.FieldSubcategory, f.Subcategory))
	}
	return liststore.And(clauses...)
}

// Page selects one page of results.
type Page struct {
	Top   int
	Token string
}

// SuggestionPage is one page of suggestions. Total is -1 when the store
// did not report a count.
type SuggestionPage struct {
	Items         []model.Suggestion
	NextPageToken string
	Total         int64
}

// SuggestionRepository executes suggestion queries and writes against
// the suggestions list.
type SuggestionRepository struct {
	Store        *liststore.Client
	Schema       *SchemaRepository
	Spec         ListSpec
	PageSize     int
	ScanPageSize int
}

func NewSuggestionRepository(store *liststore.Client, schema *SchemaRepository, cfg *config.BoardConfig) *SuggestionRepository {
	return &SuggestionRepository{
		Store:        store,
		Schema:       schema,
		Spec:         SuggestionsSpec(cfg),
		PageSize:     cfg.PageSize,
		ScanPageSize: cfg.ScanPageSize,
	}
}

func (r *SuggestionRepository) listID(ctx context.Context) (string, error) {
	return r.Schema.ListID(ctx, r.Spec)
}

// GetSuggestions plans and executes a suggestion query. The strategy is
// chosen up front: explicit ID sets short-circuit into a bounded scan,
// free-text terms and scan-minted page tokens go straight to the
// full-scan path, everything else runs as one server-side query. A
// server-side rejection of the query still drops this call into the
// scan path as a safety net without disabling the primary path for
// later calls.
func (r *SuggestionRepository) GetSuggestions(ctx context.Context, f SuggestionFilter, page Page) (*SuggestionPage, error) {
	if page.Top <= 0 {
		page.Top = r.PageSize
	}

	if len(f.IDs) > 0 {
		return r.collectByIDs(ctx, f)
	}
	if f.hasTextSearch() || f.CreatedBy != "" || strings.HasPrefix(page.Token, offsetTokenPrefix) {
		monitoring.FallbackScans.WithLabelValues("planned").Inc()
		return r.scanSuggestions(ctx, f, page)
	}

	result, err := r.querySuggestions(ctx, f, page)
	if liststore.IsUnsupportedQuery(err) {
		logger.Log.Warn("server rejected suggestion query, falling back to scan",
			zap.Error(err))
		monitoring.FallbackScans.WithLabelValues("rejected").Inc()
		page.Token = ""
		return r.scanSuggestions(ctx, f, page)
	}
	return result, err
}

// querySuggestions is the primary path: one server-side filtered and
// sorted page.
func (r *SuggestionRepository) querySuggestions(ctx context.Context, f SuggestionFilter, page Page) (*SuggestionPage, error) {
	listID, err := r.listID(ctx)
	if err != nil {
		return nil, err
	}

	q := liststore.Query{
		Filter:    f.structural(),
		OrderBy:   "createdDateTime desc",
		Expand:    []string{"fields"},
		Top:       page.Top,
		SkipToken: page.Token,
		Count:     true,
	}
	if f.OrderBy == OrderByVotes {
		// Index coverage for the derived vote-count column is unreliable.
		q.OrderBy = fmt.Sprintf("fields/%s desc,createdDateTime desc", FieldVoteCount)
		q.AllowUnindexed = true
	}

	items, err := r.Store.Items(ctx, listID, q)
	if liststore.IsNotFound(err) {
		return &SuggestionPage{Items: []model.Suggestion{}, Total: 0}, nil
	}
	if err != nil {
		return nil, err
	}

	result := &SuggestionPage{
		Items:         make([]model.Suggestion, 0, len(items.Items)),
		NextPageToken: items.NextToken,
		Total:         items.Count,
	}
	for i := range items.Items {
		result.Items = append(result.Items, model.SuggestionFromItem(&items.Items[i]))
	}
	return result, nil
}

// scannedSuggestion carries the denormalized vote total alongside the
// entity for client-side sorting.
type scannedSuggestion struct {
	suggestion model.Suggestion
	votes      int
}

// scanSuggestions pages through the whole list using only structural
// filters, matches text locally and paginates in memory with
// offset-encoded tokens.
func (r *SuggestionRepository) scanSuggestions(ctx context.Context, f SuggestionFilter, page Page) (*SuggestionPage, error) {
	offset, err := parseOffsetToken(page.Token)
	if err != nil {
		return nil, err
	}

	titleTokens := searchTokens(f.TitleQuery)
	detailTokens := searchTokens(f.DetailsQuery)
	creator := model.NormalizeVoter(f.CreatedBy)

	matched := make([]scannedSuggestion, 0)
	scan := func(item *liststore.Item) bool {
		s := model.SuggestionFromItem(item)
		if creator != "" && model.NormalizeVoter(s.CreatedBy) != creator {
			return true
		}
		match := len(titleTokens) == 0 && len(detailTokens) == 0
		if !match && len(titleTokens) > 0 {
			match = matchesAny(s.Title, titleTokens)
		}
		if !match && len(detailTokens) > 0 {
			match = matchesAny(s.Details, detailTokens)
		}
		if !match {
			return true
		}
		matched = append(matched, scannedSuggestion{
			suggestion: s,
			votes:      voteHint(item),
		})
		return true
	}
	if err := r.scanAll(ctx, f.structural(), scan); err != nil {
		return nil, err
	}

	sortScanned(matched, f.OrderBy)

	total := int64(len(matched))
	end := offset + page.Top
	if offset > len(matched) {
		offset = len(matched)
	}
	if end > len(matched) {
		end = len(matched)
	}

	result := &SuggestionPage{
		Items: make([]model.Suggestion, 0, end-offset),
		Total: total,
	}
	for _, m := range matched[offset:end] {
		result.Items = append(result.Items, m.suggestion)
	}
	if end < len(matched) {
		result.NextPageToken = fmt.Sprintf("%s%d", offsetTokenPrefix, end)
	}
	return result, nil
}

// collectByIDs scans for an explicit ID set, stopping as soon as every
// requested ID has been observed. The result is fully materialized and
// reports the matched count as the total.
func (r *SuggestionRepository) collectByIDs(ctx context.Context, f SuggestionFilter) (*SuggestionPage, error) {
	wanted := make(map[int64]bool, len(f.IDs))
	for _, id := range f.IDs {
		wanted[id] = true
	}

	matched := make([]scannedSuggestion, 0, len(wanted))
	scan := func(item *liststore.Item) bool {
		s := model.SuggestionFromItem(item)
		if wanted[s.ID] {
			matched = append(matched, scannedSuggestion{suggestion: s, votes: voteHint(item)})
			delete(wanted, s.ID)
		}
		return len(wanted) > 0
	}
	if err := r.scanAll(ctx, f.structural(), scan); err != nil {
		return nil, err
	}

	sortScanned(matched, f.OrderBy)

	result := &SuggestionPage{
		Items: make([]model.Suggestion, 0, len(matched)),
		Total: int64(len(matched)),
	}
	for _, m := range matched {
		result.Items = append(result.Items, m.suggestion)
	}
	return result, nil
}

// scanAll pages through the whole list server-side in a deterministic
// order, invoking visit per item until it returns false or the list is
// exhausted. A missing list reads as empty.
func (r *SuggestionRepository) scanAll(ctx context.Context, filter string, visit func(*liststore.Item) bool) error {
	listID, err := r.listID(ctx)
	if err != nil {
		return err
	}

	token := ""
	for {
		q := liststore.Query{
			Filter:    filter,
			OrderBy:   "id asc",
			Expand:    []string{"fields"},
			Top:       r.ScanPageSize,
			SkipToken: token,
		}
		page, err := r.Store.Items(ctx, listID, q)
		if liststore.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}

		for i := range page.Items {
			if !visit(&page.Items[i]) {
				return nil
			}
		}
		if page.NextToken == "" {
			return nil
		}
		token = page.NextToken
	}
}

// Get fetches one suggestion by ID. A missing item maps to
// util.ErrSuggestionNotFound.
func (r *SuggestionRepository) Get(ctx context.Context, id int64) (*model.Suggestion, error) {
	listID, err := r.listID(ctx)
	if err != nil {
		return nil, err
	}

	item, err := r.Store.Item(ctx, listID, strconv.FormatInt(id, 10))
	if liststore.IsNotFound(err) {
		return nil, util.ErrSuggestionNotFound
	}
	if err != nil {
		return nil, err
	}
	s := model.SuggestionFromItem(item)
	return &s, nil
}

// Create inserts a suggestion. Deployments with narrower, hand-built
// schemas may not define the taxonomy columns; on a schema rejection the
// write is retried once with those fields stripped.
func (r *SuggestionRepository) Create(ctx context.Context, s *model.Suggestion) (*model.Suggestion, error) {
	listID, err := r.listID(ctx)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{
		model.FieldTitle:   s.Title,
		model.FieldDetails: s.Details,
		model.FieldStatus:  s.Status,
		FieldVoteCount:     0,
	}
	if s.Category != "" {
		fields[model.FieldCategory] = s.Category
	}
	if s.Subcategory != "" {
		fields[model.FieldSubcategory] = s.Subcategory
	}

	item, err := r.Store.CreateItem(ctx, listID, fields)
	if liststore.IsSchemaMismatch(err) {
		logger.Log.Warn("suggestion create rejected by schema, retrying without taxonomy fields",
			zap.Error(err))
		item, err = r.Store.CreateItem(ctx, listID, stripTaxonomyFields(fields))
	}
	if err != nil {
		return nil, err
	}

	created := model.SuggestionFromItem(item)
	return &created, nil
}

// Update patches the editable fields, with the same one-shot
// taxonomy-stripping retry as Create.
func (r *SuggestionRepository) Update(ctx context.Context, id int64, s *model.Suggestion) error {
	listID, err := r.listID(ctx)
	if err != nil {
		return err
	}

	fields := map[string]any{
		model.FieldTitle:       s.Title,
		model.FieldDetails:     s.Details,
		model.FieldCategory:    s.Category,
		model.FieldSubcategory: s.Subcategory,
	}

	itemID := strconv.FormatInt(id, 10)
	err = r.Store.PatchItemFields(ctx, listID, itemID, fields)
	if liststore.IsSchemaMismatch(err) {
		logger.Log.Warn("suggestion update rejected by schema, retrying without taxonomy fields",
			zap.Error(err))
		err = r.Store.PatchItemFields(ctx, listID, itemID, stripTaxonomyFields(fields))
	}
	if liststore.IsNotFound(err) {
		return util.ErrSuggestionNotFound
	}
	return err
}

// UpdateStatus writes the new status and stamps or clears the completion
// date.
func (r *SuggestionRepository) UpdateStatus(ctx context.Context, id int64, status string, completedAt *time.Time) error {
	listID, err := r.listID(ctx)
	if err != nil {
		return err
	}

	fields := map[string]any{model.FieldStatus: status}
	if completedAt != nil {
		fields[model.FieldCompletedDate] = completedAt.UTC().Format(time.RFC3339)
	} else {
		fields[model.FieldCompletedDate] = nil
	}

	err = r.Store.PatchItemFields(ctx, listID, strconv.FormatInt(id, 10), fields)
	if liststore.IsNotFound(err) {
		return util.ErrSuggestionNotFound
	}
	return err
}

// SetVoteCount refreshes the denormalized vote total. Best-effort: a
// list without the column just skips it.
func (r *SuggestionRepository) SetVoteCount(ctx context.Context, id int64, count int) error {
	listID, err := r.listID(ctx)
	if err != nil {
		return err
	}

	fields := map[string]any{FieldVoteCount: count}
	err = r.Store.PatchItemFields(ctx, listID, strconv.FormatInt(id, 10), fields)
	if liststore.IsSchemaMismatch(err) {
		logger.Log.Debug("suggestions list has no vote count column", zap.Int64("id", id))
		return nil
	}
	return err
}

// Delete removes the suggestion row itself. Cascading vote and comment
// purges are the service's responsibility.
func (r *SuggestionRepository) Delete(ctx context.Context, id int64) error {
	listID, err := r.listID(ctx)
	if err != nil {
		return err
	}

	err = r.Store.DeleteItem(ctx, listID, strconv.FormatInt(id, 10))
	if liststore.IsNotFound(err) {
		return util.ErrSuggestionNotFound
	}
	return err
}

func stripTaxonomyFields(fields map[string]any) map[string]any {
	narrowed := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == model.FieldCategory || k == model.FieldSubcategory {
			continue
		}
		narrowed[k] = v
	}
	return narrowed
}

func voteHint(item *liststore.Item) int {
	switch v := item.Fields[FieldVoteCount].(type) {
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	default:
		return 0
	}
}

// sortScanned orders scan results client-side: vote order when asked,
// otherwise newest first. Ties always break by creation time, newest
// first, so equal keys page stably.
func sortScanned(items []scannedSuggestion, orderBy string) {
	sort.SliceStable(items, func(i, j int) bool {
		if orderBy == OrderByVotes && items[i].votes != items[j].votes {
			return items[i].votes > items[j].votes
		}
		return items[i].suggestion.CreatedAt.After(items[j].suggestion.CreatedAt)
	})
}

func parseOffsetToken(token string) (int, error) {
	if token == "" {
		return 0, nil
	}
	raw := strings.TrimPrefix(token, offsetTokenPrefix)
	if raw == token {
		// A native continuation token leaked into the scan path; the
		// caller mixed tokens across strategies.
		return 0, fmt.Errorf("invalid page token %q", token)
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid page token %q", token)
	}
	return n, nil
}
