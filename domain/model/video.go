package model

import "time"

// CacheTTL is how long a cached video entry stays valid before it must be
// refetched from the YouTube Data API.
const CacheTTL = 24 * time.Hour

// VideoMeta represents the slice of YouTube video metadata the sweeper needs
type VideoMeta struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	ChannelID    string    `json:"channel_id"`
	ChannelTitle string    `json:"channel_title"`
	PublishedAt  time.Time `json:"published_at"`
}

// CachedVideo is one persisted cache entry: the metadata plus the instant it
// was fetched from upstream.
type CachedVideo struct {
	FetchedAt time.Time `json:"fetched_at"`
	Video     VideoMeta `json:"video"`
}

// Valid reports whether the entry is still fresh at the given instant.
func (c CachedVideo) Valid(now time.Time) bool {
	return now.Sub(c.FetchedAt) < CacheTTL
}

// VideoSnapshot is the whole persisted cache collection, keyed by video ID.
// It is loaded and saved wholesale; at most one entry exists per ID.
type VideoSnapshot map[string]CachedVideo

// Prune returns a copy of the snapshot with every expired entry removed.
// It never mutates the receiver, and pruning twice with the same now is the
// same as pruning once.
func (s VideoSnapshot) Prune(now time.Time) VideoSnapshot {
	out := make(VideoSnapshot, len(s))
	for id, entry := range s {
		if entry.Valid(now) {
			out[id] = entry
		}
	}
	return out
}

// Put inserts or refreshes an entry keyed by the ID the upstream payload
// declares, stamped with the given fetch time.
func (s VideoSnapshot) Put(video VideoMeta, fetchedAt time.Time) {
	s[video.ID] = CachedVideo{FetchedAt: fetchedAt, Video: video}
}
