package repository

import (
	"context"

	"tab-sweeper/domain/model"
)

// MaxBatchSize is the hard per-request ID limit of the YouTube Data API
// videos.list endpoint.
const MaxBatchSize = 50

// IYouTube fetches video metadata from the YouTube Data API.
type IYouTube interface {
	// ListVideos fetches metadata for up to MaxBatchSize video IDs in one
	// upstream request. IDs the API does not know (deleted or private
	// videos) are simply absent from the result; that is not an error.
	ListVideos(ctx context.Context, ids []string) ([]model.VideoMeta, error)
}
