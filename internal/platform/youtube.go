package platform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/harshit961695/unipost/internal/models"
	"github.com/harshit961695/unipost/internal/transfer"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// YoutubeAdapter uploads videos and reads per-video statistics through
// the official API client. Extra client options exist for tests.
type YoutubeAdapter struct {
	opts []option.ClientOption
}

func NewYoutubeAdapter(opts ...option.ClientOption) *YoutubeAdapter {
	return &YoutubeAdapter{opts: opts}
}

func (a *YoutubeAdapter) Name() string { return "youtube" }

func (a *YoutubeAdapter) NeedsPublicURL() bool { return false }

func (a *YoutubeAdapter) RequiresMedia(kind string) bool { return true }

func (a *YoutubeAdapter) service(ctx context.Context, accessToken string) (*youtube.Service, error) {
	token := &oauth2.Token{AccessToken: accessToken}
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	opts := append([]option.ClientOption{option.WithHTTPClient(client)}, a.opts...)
	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("error creating YouTube service: %w", err)
	}
	return service, nil
}

func (a *YoutubeAdapter) Publish(ctx context.Context, conn *models.Connection, job *transfer.PlatformJob) (*PublishResult, error) {
	if conn.AccessToken == "" {
		return nil, errors.New("incomplete youtube connection data")
	}
	if job.Media == nil || !strings.HasPrefix(job.Media.ContentType, "video") {
		return nil, errors.New("youtube requires a video file")
	}

	service, err := a.service(ctx, conn.AccessToken)
	if err != nil {
		return nil, err
	}

	title := job.Title
	if title == "" {
		title = "New Video"
	}
	privacy := job.Privacy
	if privacy == "" {
		privacy = "private"
	}

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       title,
			Description: job.Description,
			CategoryId:  "22",
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus: privacy,
		},
	}

	call := service.Videos.Insert([]string{"snippet", "status"}, video)
	response, err := call.Media(bytes.NewReader(job.Media.Data)).Do()
	if err != nil {
		return nil, fmt.Errorf("error uploading video: %w", err)
	}

	if job.Thumbnail != nil && response.Id != "" {
		// Thumbnail upload is cosmetic; the video is already live.
		_, err := service.Thumbnails.Set(response.Id).Media(bytes.NewReader(job.Thumbnail.Data)).Do()
		if err != nil {
			slog.Info("thumbnail upload failed", "video_id", response.Id, "error", err.Error())
		}
	}

	return &PublishResult{PostID: response.Id}, nil
}

// FetchMetrics reads per-video statistics. Views count toward views,
// impressions and reach; likes+comments make up engagement. An unknown
// video id yields a zero sample, not an error.
func (a *YoutubeAdapter) FetchMetrics(ctx context.Context, conn *models.Connection, postID string) (*models.MetricSample, error) {
	if conn.AccessToken == "" {
		return nil, errors.New("incomplete youtube connection data")
	}

	service, err := a.service(ctx, conn.AccessToken)
	if err != nil {
		return nil, err
	}

	response, err := service.Videos.List([]string{"statistics"}).Id(postID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("error fetching video statistics: %w", err)
	}

	sample := &models.MetricSample{}
	if len(response.Items) == 0 || response.Items[0].Statistics == nil {
		return sample, nil
	}

	stats := response.Items[0].Statistics
	views := int64(stats.ViewCount)
	likes := int64(stats.LikeCount)
	comments := int64(stats.CommentCount)

	sample.Views = views
	sample.Likes = likes
	sample.Comments = comments
	sample.Impressions = views
	sample.Reach = views
	sample.Engagement = likes + comments

	return sample, nil
}
