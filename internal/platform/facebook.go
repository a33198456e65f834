package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/harshit961695/unipost/internal/models"
	"github.com/harshit961695/unipost/internal/transfer"
)

const facebookGraphURL = "https://graph.facebook.com/v25.0"

// FacebookAdapter publishes to a Facebook page feed and reads post
// insights. Media is uploaded as raw bytes, so no staging URL is needed.
type FacebookAdapter struct {
	graphURL string
	client   *http.Client
}

func NewFacebookAdapter() *FacebookAdapter {
	return &FacebookAdapter{
		graphURL: facebookGraphURL,
		client:   http.DefaultClient,
	}
}

func (a *FacebookAdapter) Name() string { return "facebook" }

func (a *FacebookAdapter) NeedsPublicURL() bool { return false }

// A plain text post is fine without media; every other kind needs it.
func (a *FacebookAdapter) RequiresMedia(kind string) bool {
	return kind != models.KindPost
}

func (a *FacebookAdapter) Publish(ctx context.Context, conn *models.Connection, job *transfer.PlatformJob) (*PublishResult, error) {
	if conn.PageID == "" || conn.AccessToken == "" {
		return nil, errors.New("incomplete facebook connection data")
	}

	isVideo := job.Media != nil && strings.HasPrefix(job.Media.ContentType, "video")
	endpoint := fmt.Sprintf("%s/%s/photos", a.graphURL, conn.PageID)
	captionField := "caption"
	if isVideo {
		endpoint = fmt.Sprintf("%s/%s/videos", a.graphURL, conn.PageID)
		captionField = "description"
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("access_token", conn.AccessToken); err != nil {
		return nil, fmt.Errorf("error building request body: %w", err)
	}
	if job.Caption != "" {
		if err := writer.WriteField(captionField, job.Caption); err != nil {
			return nil, fmt.Errorf("error building request body: %w", err)
		}
	}
	if job.Media != nil {
		part, err := writer.CreateFormFile("source", job.Media.FileName)
		if err != nil {
			return nil, fmt.Errorf("error building request body: %w", err)
		}
		if _, err := part.Write(job.Media.Data); err != nil {
			return nil, fmt.Errorf("error building request body: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("error building request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	// Facebook returns the created id as "id" for photos and
	// "post_id" for some video uploads; accept either.
	var result struct {
		ID     string `json:"id"`
		PostID string `json:"post_id"`
		Error  struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("error parsing response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if result.Error.Message != "" {
			return nil, fmt.Errorf("facebook API error: %s", result.Error.Message)
		}
		return nil, fmt.Errorf("unexpected status code from Facebook: %d", resp.StatusCode)
	}

	postID := result.ID
	if postID == "" {
		postID = result.PostID
	}

	return &PublishResult{PostID: postID}, nil
}

// FetchMetrics reads post insights plus the likes/comments summaries.
// Insight metrics the page cannot report are counted as zero.
func (a *FacebookAdapter) FetchMetrics(ctx context.Context, conn *models.Connection, postID string) (*models.MetricSample, error) {
	if conn.AccessToken == "" {
		return nil, errors.New("incomplete facebook connection data")
	}

	sample := &models.MetricSample{}

	insightsURL := fmt.Sprintf("%s/%s/insights?metric=post_impressions,post_impressions_unique,post_engaged_users&access_token=%s",
		a.graphURL, postID, url.QueryEscape(conn.AccessToken))

	var insights struct {
		Data []struct {
			Name   string `json:"name"`
			Values []struct {
				Value int64 `json:"value"`
			} `json:"values"`
		} `json:"data"`
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := a.getJSON(ctx, insightsURL, &insights); err != nil {
		return nil, err
	}

	if insights.Error.Message != "" {
		slog.Info("skipping facebook insights", "post_id", postID, "error", insights.Error.Message)
	}
	for _, insight := range insights.Data {
		if len(insight.Values) == 0 {
			continue
		}
		val := insight.Values[0].Value
		switch insight.Name {
		case "post_impressions":
			sample.Impressions += val
		case "post_impressions_unique":
			sample.Reach += val
		case "post_engaged_users":
			sample.Engagement += val
		}
	}

	summaryURL := fmt.Sprintf("%s/%s?fields=likes.summary(true),comments.summary(true)&access_token=%s",
		a.graphURL, postID, url.QueryEscape(conn.AccessToken))

	var summary struct {
		Likes struct {
			Summary struct {
				TotalCount int64 `json:"total_count"`
			} `json:"summary"`
		} `json:"likes"`
		Comments struct {
			Summary struct {
				TotalCount int64 `json:"total_count"`
			} `json:"summary"`
		} `json:"comments"`
	}
	if err := a.getJSON(ctx, summaryURL, &summary); err != nil {
		return nil, err
	}

	sample.Likes += summary.Likes.Summary.TotalCount
	sample.Comments += summary.Comments.Summary.TotalCount

	return sample, nil
}

func (a *FacebookAdapter) getJSON(ctx context.Context, reqURL string, out interface{}) error {
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
