package dto

import "tab-sweeper/domain/model"

// SweepDomainRequest asks the sweeper to close every tab on a domain.
type SweepDomainRequest struct {
	Domain string `json:"domain" binding:"required"`
}

// SweepChannelRequest asks the sweeper to close every tab playing a video
// from the same channel as the given watch URL.
type SweepChannelRequest struct {
	VideoURL string `json:"video_url" binding:"required"`
}

// SweepReport is the terminal outcome of one sweep: how many tabs were
// closed and the human-readable message that was also sent to the notifier.
type SweepReport struct {
	ClosedTabs   int    `json:"closed_tabs"`
	ChannelID    string `json:"channel_id,omitempty"`
	ChannelTitle string `json:"channel_title,omitempty"`
	Message      string `json:"message"`
}

// ResolveResult is the outcome of a metadata batch resolution. A non-nil
// result with zero videos means "nothing matched", which is distinct from
// the error returns (credential missing, storage fault) that mean the call
// itself failed. FailedChunks counts upstream sub-requests that were lost to
// network or API errors; their IDs are simply absent from Videos.
type ResolveResult struct {
	Videos       []model.VideoMeta `json:"videos"`
	FailedChunks int               `json:"failed_chunks"`
}

// CachedVideosResponse is the ops view of the persisted snapshot.
type CachedVideosResponse struct {
	Count  int               `json:"count"`
	Videos []model.VideoMeta `json:"videos"`
}
