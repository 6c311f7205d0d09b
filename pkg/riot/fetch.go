package riot

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Doc pairs a match id with the raw document fetched for it.
type Doc struct {
	MatchID string
	Body    json.RawMessage
}

// FetchMatches downloads the given match documents with bounded
// concurrency. Individual failures are logged and dropped; the returned
// count is the number of failed fetches. Order of the result follows the
// input order.
func FetchMatches(ctx context.Context, client Client, matchIDs []string, concurrency int) ([]Doc, int) {
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]*Doc, len(matchIDs))
	var mu sync.Mutex
	failed := 0

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, id := range matchIDs {
		g.Go(func() error {
			body, err := client.GetMatch(ctx, id)
			if err != nil {
				zap.L().Warn("fetch: match download failed",
					zap.String("match_id", id),
					zap.Error(err),
				)
				mu.Lock()
				failed++
				mu.Unlock()
				return nil
			}
			results[i] = &Doc{MatchID: id, Body: body}
			return nil
		})
	}
	_ = g.Wait()

	docs := make([]Doc, 0, len(matchIDs))
	for _, d := range results {
		if d != nil {
			docs = append(docs, *d)
		}
	}
	return docs, failed
}
