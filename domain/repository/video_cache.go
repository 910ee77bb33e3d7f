package repository

import (
	"context"

	"tab-sweeper/domain/model"
)

// IVideoCache is the durable store for the video metadata snapshot. The
// whole collection lives under one key and is read and written wholesale.
type IVideoCache interface {
	// Load reads the persisted snapshot. A missing key is not an error and
	// yields an empty snapshot.
	Load(ctx context.Context) (model.VideoSnapshot, error)
	// Save overwrites the persisted snapshot in a single write.
	Save(ctx context.Context, snapshot model.VideoSnapshot) error
	// Clear removes the persisted snapshot entirely.
	Clear(ctx context.Context) error
}
