package ports

import (
	"context"

	"github.com/aretw0/folio/pkg/domain"
)

// Producer generates the content of a new page. Implementations may be slow or fail;
// the caller owns cancellation through ctx. The engine never calls a Producer itself:
// hosts call it and fold the result in with graph.Attach.
type Producer interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (domain.Generated, error)
}

// ProducerFunc adapts a function to the Producer interface.
type ProducerFunc func(ctx context.Context, req domain.GenerationRequest) (domain.Generated, error)

// Generate calls f(ctx, req).
func (f ProducerFunc) Generate(ctx context.Context, req domain.GenerationRequest) (domain.Generated, error) {
	return f(ctx, req)
}
