package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/harshit961695/unipost/internal/models"
	"github.com/harshit961695/unipost/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTiktokTestAdapter(srv *httptest.Server) *TiktokAdapter {
	a := NewTiktokAdapter()
	a.apiURL = srv.URL
	return a
}

func tiktokConn() *models.Connection {
	return &models.Connection{
		UserID:      7,
		Platform:    "tiktok",
		AccessToken: "tt-token",
	}
}

func TestTiktokPublish(t *testing.T) {
	var gotAuth string
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"data":{"publish_id":"v_pub_1"},"error":{"code":"ok","message":""}}`))
	}))
	defer srv.Close()

	a := newTiktokTestAdapter(srv)
	result, err := a.Publish(context.Background(), tiktokConn(), &transfer.PlatformJob{
		Platform: "tiktok",
		Caption:  "dance",
		MediaURL: "https://media.example.com/clip",
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer tt-token", gotAuth)
	postInfo := gotBody["post_info"].(map[string]interface{})
	assert.Equal(t, "dance", postInfo["title"])
	assert.Equal(t, "PUBLIC_TO_EVERYONE", postInfo["privacy_level"])
	sourceInfo := gotBody["source_info"].(map[string]interface{})
	assert.Equal(t, "PULL_FROM_URL", sourceInfo["source"])
	assert.Equal(t, "https://media.example.com/clip", sourceInfo["video_url"])
	assert.Equal(t, "v_pub_1", result.PostID)
}

func TestTiktokPublishSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{},"error":{"code":"spam_risk_too_many_posts","message":"Daily post cap reached"}}`))
	}))
	defer srv.Close()

	a := newTiktokTestAdapter(srv)
	_, err := a.Publish(context.Background(), tiktokConn(), &transfer.PlatformJob{
		Platform: "tiktok",
		MediaURL: "https://media.example.com/clip",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Daily post cap reached")
}

func TestTiktokPublishRequiresStagedURL(t *testing.T) {
	a := NewTiktokAdapter()
	_, err := a.Publish(context.Background(), tiktokConn(), &transfer.PlatformJob{Platform: "tiktok"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no staged media URL")
}

func TestTiktokFetchMetrics(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.Contains(r.URL.RawQuery, "fields="))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"data":{"videos":[
			{"view_count":1000,"like_count":50,"comment_count":10,"share_count":5}
		]},"error":{"code":"ok"}}`))
	}))
	defer srv.Close()

	a := newTiktokTestAdapter(srv)
	sample, err := a.FetchMetrics(context.Background(), tiktokConn(), "v_pub_1")
	require.NoError(t, err)

	filters := gotBody["filters"].(map[string]interface{})
	videoIDs := filters["video_ids"].([]interface{})
	require.Len(t, videoIDs, 1)
	assert.Equal(t, "v_pub_1", videoIDs[0])

	assert.Equal(t, int64(1000), sample.Views)
	assert.Equal(t, int64(1000), sample.Impressions)
	assert.Equal(t, int64(1000), sample.Reach)
	assert.Equal(t, int64(50), sample.Likes)
	assert.Equal(t, int64(10), sample.Comments)
	assert.Equal(t, int64(65), sample.Engagement)
}

func TestTiktokFetchMetricsUnknownVideo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"videos":[]},"error":{"code":"ok"}}`))
	}))
	defer srv.Close()

	a := newTiktokTestAdapter(srv)
	sample, err := a.FetchMetrics(context.Background(), tiktokConn(), "missing")
	require.NoError(t, err)
	assert.Equal(t, &models.MetricSample{}, sample)
}
