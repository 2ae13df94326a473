package ports

import (
	"context"
	"io"

	"stockboard/domain/core"
	"stockboard/domain/dataset"
)

// AnalysisClient is the dashboard's view of the remote analysis service.
// Every call is keyed by the token returned from Upload.
type AnalysisClient interface {
	// Upload sends a file as multipart field "file" and returns the envelope.
	Upload(ctx context.Context, filename string, file io.Reader) (*dataset.UploadResult, error)

	// Stock analysis
	Metrics(ctx context.Context, token core.Token) (dataset.StockMetrics, error)
	StockCharts(ctx context.Context, token core.Token) (*dataset.StockCharts, error)
	Returns(ctx context.Context, token core.Token) (*dataset.StockReturns, error)

	// Meta analysis
	MetaKPIs(ctx context.Context, token core.Token) (*dataset.MetaKPIs, error)
	MetaCharts(ctx context.Context, token core.Token) (*dataset.MetaCharts, error)
	MetaAdvanced(ctx context.Context, token core.Token) (*dataset.MetaAdvanced, error)
}
