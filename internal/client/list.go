package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/apim-client/internal/constants"
	"github.com/fivetwenty-io/apim-client/internal/http"
	"github.com/fivetwenty-io/apim-client/pkg/apim"
)

// listAll follows nextLink until the collection is exhausted. The first
// request carries query; later ones use the link as returned.
func listAll[T any](ctx context.Context, httpClient *http.Client, path string, query url.Values) ([]T, error) {
	items := []T{}
	next := path

	for page := 0; next != ""; page++ {
		if page >= constants.MaxListPages {
			return nil, fmt.Errorf("%w: %s", constants.ErrTooManyPages, path)
		}

		var pageQuery url.Values
		if page == 0 {
			pageQuery = query
		}

		resp, err := httpClient.Get(ctx, next, pageQuery)
		if err != nil {
			return nil, err
		}

		var list apim.ListResponse[T]

		err = json.Unmarshal(resp.Body, &list)
		if err != nil {
			return nil, fmt.Errorf("parsing list response: %w", err)
		}

		items = append(items, list.Value...)
		next = list.NextLink
	}

	return items, nil
}
