package youtube

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"tab-sweeper/domain/model"
	"tab-sweeper/domain/repository"
)

// Client fetches video metadata from the YouTube Data API v3.
type Client struct {
	service *youtube.Service
}

// Config carries the upstream credential. With only an API key the client
// runs in read-only key mode; with an access/refresh token pair it uses an
// auto-refreshing OAuth2 HTTP client instead.
type Config struct {
	APIKey       string
	ClientID     string
	ClientSecret string
	AccessToken  string
	RefreshToken string
}

// NewClient creates a YouTube API client from the given credential.
func NewClient(ctx context.Context, cfg *Config) (repository.IYouTube, error) {
	if cfg.AccessToken != "" && cfg.RefreshToken != "" {
		oauthConfig := &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Scopes:       []string{youtube.YoutubeReadonlyScope},
			Endpoint:     google.Endpoint,
		}
		token := &oauth2.Token{
			AccessToken:  cfg.AccessToken,
			RefreshToken: cfg.RefreshToken,
			TokenType:    "Bearer",
			Expiry:       time.Now().Add(-1 * time.Minute), // Force refresh on first use
		}
		service, err := youtube.NewService(ctx, option.WithHTTPClient(oauthConfig.Client(ctx, token)))
		if err != nil {
			return nil, fmt.Errorf("failed to create YouTube service: %w", err)
		}
		return &Client{service: service}, nil
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("youtube client requires an API key or OAuth token pair")
	}
	service, err := youtube.NewService(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service with API key: %w", err)
	}
	return &Client{service: service}, nil
}

// ListVideos fetches snippet metadata for up to repository.MaxBatchSize IDs
// in a single videos.list call. Unknown IDs are absent from the response.
func (c *Client) ListVideos(ctx context.Context, ids []string) ([]model.VideoMeta, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > repository.MaxBatchSize {
		return nil, fmt.Errorf("videos.list accepts at most %d ids, got %d", repository.MaxBatchSize, len(ids))
	}

	call := c.service.Videos.List([]string{"snippet"}).
		Id(strings.Join(ids, ",")).
		MaxResults(int64(repository.MaxBatchSize)).
		Context(ctx)

	response, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}

	videos := make([]model.VideoMeta, 0, len(response.Items))
	for _, item := range response.Items {
		videos = append(videos, convertToVideoMeta(item))
	}
	return videos, nil
}

func convertToVideoMeta(video *youtube.Video) model.VideoMeta {
	meta := model.VideoMeta{ID: video.Id}
	if video.Snippet != nil {
		meta.Title = video.Snippet.Title
		meta.ChannelID = video.Snippet.ChannelId
		meta.ChannelTitle = video.Snippet.ChannelTitle
		if publishedAt, err := time.Parse(time.RFC3339, video.Snippet.PublishedAt); err == nil {
			meta.PublishedAt = publishedAt
		}
	}
	return meta
}
