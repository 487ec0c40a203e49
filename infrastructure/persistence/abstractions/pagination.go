package abstractions

import (
	"context"

	"clothing-api/domain/core/entities"
)

// PageFetcher reads one page starting after the continuation token. An
// empty next token means the store is exhausted.
type PageFetcher func(ctx context.Context, token string, limit int) (items []*entities.ClothingItem, next string, err error)

// CollectPages walks a store page by page until no continuation token is
// returned. Pages are fetched strictly one after another and any failure
// discards what was collected so far.
func CollectPages(ctx context.Context, pageSize int, fetch PageFetcher) ([]*entities.ClothingItem, error) {
	items := make([]*entities.ClothingItem, 0)
	token := ""
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, next, err := fetch(ctx, token, pageSize)
		if err != nil {
			return nil, err
		}
		items = append(items, page...)

		if next == "" {
			return items, nil
		}
		token = next
	}
}
