package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/harshit961695/unipost/internal/models"
	"github.com/harshit961695/unipost/internal/transfer"
)

const instagramGraphURL = "https://graph.facebook.com/v25.0"

// InstagramAdapter publishes through the Graph API container flow:
// create a media container from a public URL, then publish it. The
// orchestrator stages the media and hands the URL in via job.MediaURL.
type InstagramAdapter struct {
	graphURL string
	client   *http.Client
}

func NewInstagramAdapter() *InstagramAdapter {
	return &InstagramAdapter{
		graphURL: instagramGraphURL,
		client:   http.DefaultClient,
	}
}

func (a *InstagramAdapter) Name() string { return "instagram" }

func (a *InstagramAdapter) NeedsPublicURL() bool { return true }

func (a *InstagramAdapter) RequiresMedia(kind string) bool { return true }

func (a *InstagramAdapter) Publish(ctx context.Context, conn *models.Connection, job *transfer.PlatformJob) (*PublishResult, error) {
	if conn.BusinessAccountID == "" || conn.AccessToken == "" {
		return nil, errors.New("incomplete instagram connection data")
	}
	if job.MediaURL == "" {
		return nil, errors.New("no staged media URL for instagram")
	}

	isVideo := job.Media != nil && strings.HasPrefix(job.Media.ContentType, "video")

	payload := map[string]interface{}{
		"access_token": conn.AccessToken,
	}
	switch job.Kind {
	case models.KindStory:
		payload["media_type"] = "STORIES"
		if isVideo {
			payload["video_url"] = job.MediaURL
		} else {
			payload["image_url"] = job.MediaURL
		}
	case models.KindReel:
		payload["media_type"] = "REELS"
		payload["video_url"] = job.MediaURL
		payload["caption"] = job.Caption
	default:
		payload["image_url"] = job.MediaURL
		payload["caption"] = job.Caption
	}

	containerID, err := a.postJSON(ctx, fmt.Sprintf("%s/%s/media", a.graphURL, conn.BusinessAccountID), payload)
	if err != nil {
		return nil, err
	}
	if containerID == "" {
		return nil, errors.New("no media ID returned from Instagram")
	}

	mediaID, err := a.postJSON(ctx, fmt.Sprintf("%s/%s/media_publish", a.graphURL, conn.BusinessAccountID), map[string]interface{}{
		"creation_id":  containerID,
		"access_token": conn.AccessToken,
	})
	if err != nil {
		return nil, err
	}
	if mediaID == "" {
		mediaID = containerID
	}

	return &PublishResult{PostID: mediaID}, nil
}

// FetchMetrics reads media insights plus the basic like/comment counts.
// When no insight metric comes back at all (common for older media and
// personal accounts), engagement falls back to likes+comments.
func (a *InstagramAdapter) FetchMetrics(ctx context.Context, conn *models.Connection, postID string) (*models.MetricSample, error) {
	if conn.AccessToken == "" {
		return nil, errors.New("incomplete instagram connection data")
	}

	sample := &models.MetricSample{}

	insightsURL := fmt.Sprintf("%s/%s/insights?metric=impressions,reach,engagement&access_token=%s",
		a.graphURL, postID, url.QueryEscape(conn.AccessToken))

	var insights struct {
		Data []struct {
			Name   string `json:"name"`
			Values []struct {
				Value int64 `json:"value"`
			} `json:"values"`
		} `json:"data"`
	}
	if err := a.getJSON(ctx, insightsURL, &insights); err != nil {
		return nil, err
	}

	foundMetric := false
	for _, insight := range insights.Data {
		if len(insight.Values) == 0 {
			continue
		}
		val := insight.Values[0].Value
		switch insight.Name {
		case "impressions":
			sample.Impressions += val
			foundMetric = true
		case "reach":
			sample.Reach += val
			foundMetric = true
		case "engagement":
			sample.Engagement += val
			foundMetric = true
		}
	}

	basicURL := fmt.Sprintf("%s/%s?fields=like_count,comments_count&access_token=%s",
		a.graphURL, postID, url.QueryEscape(conn.AccessToken))

	var basic struct {
		LikeCount     int64 `json:"like_count"`
		CommentsCount int64 `json:"comments_count"`
	}
	if err := a.getJSON(ctx, basicURL, &basic); err != nil {
		return nil, err
	}

	sample.Likes += basic.LikeCount
	sample.Comments += basic.CommentsCount
	if !foundMetric {
		sample.Engagement += basic.LikeCount + basic.CommentsCount
	}

	return sample, nil
}

// postJSON issues a Graph API POST and returns the id field of the
// response, surfacing the platform's own error message when present.
func (a *InstagramAdapter) postJSON(ctx context.Context, endpoint string, payload map[string]interface{}) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("error marshalling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response body: %w", err)
	}

	var result struct {
		ID    string `json:"id"`
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("error parsing response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if result.Error.Message != "" {
			return "", fmt.Errorf("instagram API error: %s", result.Error.Message)
		}
		return "", fmt.Errorf("unexpected status code from Instagram: %d", resp.StatusCode)
	}

	return result.ID, nil
}

func (a *InstagramAdapter) getJSON(ctx context.Context, reqURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error parsing response: %w", err)
	}

	return nil
}
