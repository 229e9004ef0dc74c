package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/panmirror/pkg/domain"
)

// LoggingHooks logs conversion boundaries at info level and every dropped node as a
// warning. Token dispatch and node close are logged at debug level.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnConvertStart: func(ctx context.Context, e *domain.ConvertEvent) {
			logger.InfoContext(ctx, "convert_start", "blocks", e.Blocks)
		},
		OnConvertEnd: func(ctx context.Context, e *domain.ConvertEvent) {
			if e.Err != nil {
				logger.ErrorContext(ctx, "convert_end", "blocks", e.Blocks, "duration", e.Duration, "err", e.Err)
				return
			}
			logger.InfoContext(ctx, "convert_end", "blocks", e.Blocks, "duration", e.Duration)
		},
		OnTokenDispatch: func(ctx context.Context, e *domain.TokenEvent) {
			logger.DebugContext(ctx, "token", "tag", e.Tag, "path", e.Path, "depth", e.Depth)
		},
		OnNodeClose: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "node_close", "type", e.NodeType, "path", e.Path, "children", e.Children)
		},
		OnNodeDropped: func(ctx context.Context, e *domain.NodeEvent) {
			logger.WarnContext(ctx, "node_dropped", "type", e.NodeType, "path", e.Path, "err", e.Err)
		},
	}
}
