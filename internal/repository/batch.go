package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"suggestion_board_backend/pkg/liststore"
	"suggestion_board_backend/pkg/monitoring"
)

// PartialBatchError reports a cascading delete in which some rows failed.
// Every row is attempted regardless of earlier failures; nothing is
// rolled back.
type PartialBatchError struct {
	List   string
	Failed map[string]error
}

func (e *PartialBatchError) Error() string {
	ids := make([]string, 0, len(e.Failed))
	for id := range e.Failed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return fmt.Sprintf("%d of the deletes on list %s failed (items %v)", len(e.Failed), e.List, ids)
}

// deleteEach fans out independent per-row deletes with bounded
// concurrency. Rows the server reports as already gone are not treated
// as failures; retrying them would only provoke double-delete errors.
func deleteEach(ctx context.Context, store *liststore.Client, listID string, itemIDs []string, concurrency int) error {
	if len(itemIDs) == 0 {
		return nil
	}
	if concurrency < 1 {
		concurrency = 1
	}

	var (
		mu     sync.Mutex
		failed = make(map[string]error)
		wg     sync.WaitGroup
		sem    = make(chan struct{}, concurrency)
	)

	for _, id := range itemIDs {
		wg.Add(1)
		sem <- struct{}{}
		go func(itemID string) {
			defer wg.Done()
			defer func() { <-sem }()

			err := store.DeleteItem(ctx, listID, itemID)
			if err != nil && !liststore.IsNotFound(err) {
				mu.Lock()
				failed[itemID] = err
				mu.Unlock()
			}
		}(id)
	}
	wg.Wait()

	if len(failed) > 0 {
		monitoring.PurgeFailures.WithLabelValues(listID).Add(float64(len(failed)))
		return &PartialBatchError{List: listID, Failed: failed}
	}
	return nil
}
