package processor

import (
	"context"
	"fmt"
)

// ContentTypes the runner accepts as a --content-type filter.
var ContentTypes = []string{"podcast", "study_notes", "classroom"}

// Run validates the content-type filter and processes up to limit
// pending rows. An empty contentType runs every type in one batch.
func Run(ctx context.Context, p *Processor, contentType string, limit int) (int, error) {
	if contentType != "" && !validContentType(contentType) {
		return 0, fmt.Errorf("unknown content type %q, expected one of %v", contentType, ContentTypes)
	}
	if limit <= 0 {
		limit = 10
	}
	return p.Process(ctx, contentType, limit)
}

func validContentType(ct string) bool {
	for _, known := range ContentTypes {
		if ct == known {
			return true
		}
	}
	return false
}
