package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"tab-sweeper/domain/dto"
	"tab-sweeper/domain/model"
	"tab-sweeper/domain/repository"
	"tab-sweeper/infrastructure/logger"
	"tab-sweeper/infrastructure/utils"
)

// ErrNotVideoURL means the given URL is not a recognizable YouTube watch link.
var ErrNotVideoURL = errors.New("url does not reference a youtube video")

// youtubeHosts are the domains whose tabs can carry a video the channel
// sweep should consider.
var youtubeHosts = []string{"youtube.com", "youtu.be"}

// ISweeperUseCase drives the two sweep paths and the cache ops endpoints.
type ISweeperUseCase interface {
	// CloseDomain closes every tab on the given domain (or its subdomains).
	CloseDomain(ctx context.Context, domain string) (*dto.SweepReport, error)
	// CloseChannel identifies the channel behind the given video URL and
	// closes every open tab playing a video from that channel.
	CloseChannel(ctx context.Context, videoURL string) (*dto.SweepReport, error)
	// CachedVideos lists the currently valid snapshot entries.
	CachedVideos(ctx context.Context) (*dto.CachedVideosResponse, error)
	// ClearCache drops the persisted snapshot.
	ClearCache(ctx context.Context) error
}

// SweeperUseCase implements the sweeps on top of the tab collaborator and
// the batch resolver.
type SweeperUseCase struct {
	tabs     repository.ITabs
	resolver IResolverUseCase
	store    repository.IVideoCache
	notifier repository.INotifier
}

func NewSweeperUseCase(
	tabs repository.ITabs,
	resolver IResolverUseCase,
	store repository.IVideoCache,
	notifier repository.INotifier,
) *SweeperUseCase {
	return &SweeperUseCase{
		tabs:     tabs,
		resolver: resolver,
		store:    store,
		notifier: notifier,
	}
}

func (u *SweeperUseCase) CloseDomain(ctx context.Context, domain string) (*dto.SweepReport, error) {
	if domain == "" {
		return nil, fmt.Errorf("domain is required")
	}

	tabs, err := u.tabs.Query(ctx, domain)
	if err != nil {
		return nil, fmt.Errorf("close domain %s: %w", domain, err)
	}
	if len(tabs) == 0 {
		message := fmt.Sprintf("No tabs found for %s", domain)
		u.notifier.Notify(ctx, message)
		return &dto.SweepReport{Message: message}, nil
	}

	ids := make([]string, 0, len(tabs))
	for _, tab := range tabs {
		ids = append(ids, tab.ID)
	}
	if err := u.tabs.Close(ctx, ids); err != nil {
		return nil, fmt.Errorf("close domain %s: %w", domain, err)
	}

	message := fmt.Sprintf("Closed %d tabs for %s", len(tabs), domain)
	u.notifier.Notify(ctx, message)
	return &dto.SweepReport{ClosedTabs: len(tabs), Message: message}, nil
}

func (u *SweeperUseCase) CloseChannel(ctx context.Context, videoURL string) (*dto.SweepReport, error) {
	seedID := utils.VideoIDFromURL(videoURL)
	if seedID == "" {
		return nil, ErrNotVideoURL
	}

	seed, err := u.resolver.Resolve(ctx, []string{seedID})
	if err != nil {
		return nil, err
	}
	if len(seed.Videos) == 0 {
		message := "Could not identify the channel for this video"
		u.notifier.Notify(ctx, message)
		return &dto.SweepReport{Message: message}, nil
	}
	channel := seed.Videos[0]

	tabs, err := u.queryYouTubeTabs(ctx)
	if err != nil {
		return nil, fmt.Errorf("close channel: %w", err)
	}

	// One ID batch for every open video tab; this is where chunked
	// resolution earns its keep on tab-hoarder sessions.
	tabByVideo := make(map[string][]string, len(tabs))
	videoIDs := make([]string, 0, len(tabs))
	for _, tab := range tabs {
		id := utils.VideoIDFromURL(tab.URL)
		if id == "" {
			continue
		}
		if _, seen := tabByVideo[id]; !seen {
			videoIDs = append(videoIDs, id)
		}
		tabByVideo[id] = append(tabByVideo[id], tab.ID)
	}

	resolved, err := u.resolver.Resolve(ctx, videoIDs)
	if err != nil {
		return nil, err
	}

	closeIDs := make([]string, 0, len(tabs))
	for _, video := range resolved.Videos {
		if video.ChannelID != channel.ChannelID {
			continue
		}
		closeIDs = append(closeIDs, tabByVideo[video.ID]...)
	}

	if len(closeIDs) == 0 {
		message := fmt.Sprintf("No tabs found for channel %s", channel.ChannelTitle)
		u.notifier.Notify(ctx, message)
		return &dto.SweepReport{
			ChannelID:    channel.ChannelID,
			ChannelTitle: channel.ChannelTitle,
			Message:      message,
		}, nil
	}

	if err := u.tabs.Close(ctx, closeIDs); err != nil {
		return nil, fmt.Errorf("close channel %s: %w", channel.ChannelID, err)
	}

	message := fmt.Sprintf("Closed %d tabs from channel %s", len(closeIDs), channel.ChannelTitle)
	if resolved.FailedChunks > 0 {
		message = fmt.Sprintf("%s (%d metadata requests failed)", message, resolved.FailedChunks)
	}
	u.notifier.Notify(ctx, message)
	return &dto.SweepReport{
		ClosedTabs:   len(closeIDs),
		ChannelID:    channel.ChannelID,
		ChannelTitle: channel.ChannelTitle,
		Message:      message,
	}, nil
}

func (u *SweeperUseCase) queryYouTubeTabs(ctx context.Context) ([]model.Tab, error) {
	seen := make(map[string]bool)
	var all []model.Tab
	for _, host := range youtubeHosts {
		tabs, err := u.tabs.Query(ctx, host)
		if err != nil {
			return nil, err
		}
		for _, tab := range tabs {
			if seen[tab.ID] {
				continue
			}
			seen[tab.ID] = true
			all = append(all, tab)
		}
	}
	return all, nil
}

func (u *SweeperUseCase) CachedVideos(ctx context.Context) (*dto.CachedVideosResponse, error) {
	snapshot, err := u.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("cached videos: %w", err)
	}
	valid := snapshot.Prune(utils.GetCurrentTime())
	videos := make([]model.VideoMeta, 0, len(valid))
	for _, entry := range valid {
		videos = append(videos, entry.Video)
	}
	sort.Slice(videos, func(i, j int) bool { return videos[i].ID < videos[j].ID })
	return &dto.CachedVideosResponse{Count: len(videos), Videos: videos}, nil
}

func (u *SweeperUseCase) ClearCache(ctx context.Context) error {
	if err := u.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	logger.GetLogger().Info("Video snapshot cleared")
	return nil
}
