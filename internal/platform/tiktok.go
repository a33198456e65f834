package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/harshit961695/unipost/internal/models"
	"github.com/harshit961695/unipost/internal/transfer"
)

const tiktokAPIURL = "https://open.tiktokapis.com/v2"

// TiktokAdapter uses the Content Posting API direct-post flow with
// PULL_FROM_URL, so it consumes a staged public URL like Instagram.
type TiktokAdapter struct {
	apiURL string
	client *http.Client
}

func NewTiktokAdapter() *TiktokAdapter {
	return &TiktokAdapter{
		apiURL: tiktokAPIURL,
		client: http.DefaultClient,
	}
}

func (a *TiktokAdapter) Name() string { return "tiktok" }

func (a *TiktokAdapter) NeedsPublicURL() bool { return true }

func (a *TiktokAdapter) RequiresMedia(kind string) bool { return true }

type tiktokVideoPostInfo struct {
	Title                 string `json:"title"`
	PrivacyLevel          string `json:"privacy_level"`
	DisableDuet           bool   `json:"disable_duet"`
	DisableComment        bool   `json:"disable_comment"`
	DisableStitch         bool   `json:"disable_stitch"`
	VideoCoverTimestampMs int    `json:"video_cover_timestamp_ms"`
}

type tiktokVideoSourceInfo struct {
	Source   string `json:"source"`
	VideoURL string `json:"video_url"`
}

type tiktokError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	LogID   string `json:"log_id"`
}

func (a *TiktokAdapter) Publish(ctx context.Context, conn *models.Connection, job *transfer.PlatformJob) (*PublishResult, error) {
	if conn.AccessToken == "" {
		return nil, errors.New("incomplete tiktok connection data")
	}
	if job.MediaURL == "" {
		return nil, errors.New("no staged media URL for tiktok")
	}

	privacy := job.Privacy
	if privacy == "" {
		privacy = "PUBLIC_TO_EVERYONE"
	}

	uploadRequest := struct {
		PostInfo   tiktokVideoPostInfo   `json:"post_info"`
		SourceInfo tiktokVideoSourceInfo `json:"source_info"`
	}{
		PostInfo: tiktokVideoPostInfo{
			Title:                 job.Caption,
			PrivacyLevel:          privacy,
			VideoCoverTimestampMs: 1000,
		},
		SourceInfo: tiktokVideoSourceInfo{
			Source:   "PULL_FROM_URL",
			VideoURL: job.MediaURL,
		},
	}

	jsonData, err := json.Marshal(uploadRequest)
	if err != nil {
		return nil, fmt.Errorf("error marshalling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", a.apiURL+"/post/publish/video/init/", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+conn.AccessToken)
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		Data struct {
			PublishID string `json:"publish_id"`
		} `json:"data"`
		Error tiktokError `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("error parsing response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || (result.Error.Code != "" && result.Error.Code != "ok") {
		if result.Error.Message != "" {
			return nil, fmt.Errorf("tiktok API error: %s", result.Error.Message)
		}
		return nil, fmt.Errorf("unexpected status code from TikTok: %d", resp.StatusCode)
	}

	return &PublishResult{PostID: result.Data.PublishID}, nil
}

// FetchMetrics queries per-video counters. Views count toward views,
// impressions and reach; likes, comments and shares make up engagement.
func (a *TiktokAdapter) FetchMetrics(ctx context.Context, conn *models.Connection, postID string) (*models.MetricSample, error) {
	if conn.AccessToken == "" {
		return nil, errors.New("incomplete tiktok connection data")
	}

	queryRequest := struct {
		Filters struct {
			VideoIDs []string `json:"video_ids"`
		} `json:"filters"`
	}{}
	queryRequest.Filters.VideoIDs = []string{postID}

	jsonData, err := json.Marshal(queryRequest)
	if err != nil {
		return nil, fmt.Errorf("error marshalling payload: %w", err)
	}

	reqURL := a.apiURL + "/video/query/?fields=view_count,like_count,comment_count,share_count"
	req, err := http.NewRequestWithContext(ctx, "POST", reqURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+conn.AccessToken)
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		Data struct {
			Videos []struct {
				ViewCount    int64 `json:"view_count"`
				LikeCount    int64 `json:"like_count"`
				CommentCount int64 `json:"comment_count"`
				ShareCount   int64 `json:"share_count"`
			} `json:"videos"`
		} `json:"data"`
		Error tiktokError `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("error parsing response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if result.Error.Message != "" {
			return nil, fmt.Errorf("tiktok API error: %s", result.Error.Message)
		}
		return nil, fmt.Errorf("unexpected status code from TikTok: %d", resp.StatusCode)
	}

	sample := &models.MetricSample{}
	for _, video := range result.Data.Videos {
		sample.Views += video.ViewCount
		sample.Impressions += video.ViewCount
		sample.Reach += video.ViewCount
		sample.Likes += video.LikeCount
		sample.Comments += video.CommentCount
		sample.Engagement += video.LikeCount + video.CommentCount + video.ShareCount
	}

	return sample, nil
}
