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

func newInstagramTestAdapter(srv *httptest.Server) *InstagramAdapter {
	a := NewInstagramAdapter()
	a.graphURL = srv.URL
	return a
}

func instagramConn() *models.Connection {
	return &models.Connection{
		UserID:            7,
		Platform:          "instagram",
		BusinessAccountID: "ig_biz_1",
		AccessToken:       "ig-token",
	}
}

func TestInstagramPublishImage(t *testing.T) {
	var containerPayload map[string]interface{}
	var publishPayload map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/media"):
			require.NoError(t, json.NewDecoder(r.Body).Decode(&containerPayload))
			w.Write([]byte(`{"id":"container_1"}`))
		case strings.HasSuffix(r.URL.Path, "/media_publish"):
			require.NoError(t, json.NewDecoder(r.Body).Decode(&publishPayload))
			w.Write([]byte(`{"id":"media_1"}`))
		}
	}))
	defer srv.Close()

	a := newInstagramTestAdapter(srv)
	result, err := a.Publish(context.Background(), instagramConn(), &transfer.PlatformJob{
		Platform: "instagram",
		Caption:  "sunset",
		Media:    &transfer.MediaPayload{FileName: "a.jpg", ContentType: "image/jpeg", Data: []byte{1}},
		MediaURL: "https://media.example.com/abc",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://media.example.com/abc", containerPayload["image_url"])
	assert.Equal(t, "sunset", containerPayload["caption"])
	assert.Equal(t, "container_1", publishPayload["creation_id"])
	assert.Equal(t, "media_1", result.PostID)
}

func TestInstagramPublishReel(t *testing.T) {
	var containerPayload map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/media") {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&containerPayload))
			w.Write([]byte(`{"id":"container_2"}`))
			return
		}
		w.Write([]byte(`{"id":"media_2"}`))
	}))
	defer srv.Close()

	a := newInstagramTestAdapter(srv)
	_, err := a.Publish(context.Background(), instagramConn(), &transfer.PlatformJob{
		Platform: "instagram",
		Kind:     models.KindReel,
		Caption:  "a reel",
		Media:    &transfer.MediaPayload{FileName: "a.mp4", ContentType: "video/mp4", Data: []byte{1}},
		MediaURL: "https://media.example.com/def",
	})
	require.NoError(t, err)

	assert.Equal(t, "REELS", containerPayload["media_type"])
	assert.Equal(t, "https://media.example.com/def", containerPayload["video_url"])
	assert.Nil(t, containerPayload["image_url"])
}

func TestInstagramPublishStoryImage(t *testing.T) {
	var containerPayload map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/media") {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&containerPayload))
			w.Write([]byte(`{"id":"container_3"}`))
			return
		}
		w.Write([]byte(`{"id":"media_3"}`))
	}))
	defer srv.Close()

	a := newInstagramTestAdapter(srv)
	_, err := a.Publish(context.Background(), instagramConn(), &transfer.PlatformJob{
		Platform: "instagram",
		Kind:     models.KindStory,
		Media:    &transfer.MediaPayload{FileName: "a.jpg", ContentType: "image/jpeg", Data: []byte{1}},
		MediaURL: "https://media.example.com/ghi",
	})
	require.NoError(t, err)

	assert.Equal(t, "STORIES", containerPayload["media_type"])
	assert.Equal(t, "https://media.example.com/ghi", containerPayload["image_url"])
}

func TestInstagramPublishRequiresStagedURL(t *testing.T) {
	a := NewInstagramAdapter()
	_, err := a.Publish(context.Background(), instagramConn(), &transfer.PlatformJob{
		Platform: "instagram",
		Media:    &transfer.MediaPayload{FileName: "a.jpg", ContentType: "image/jpeg", Data: []byte{1}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no staged media URL")
}

func TestInstagramPublishSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"Media URL is not reachable"}}`))
	}))
	defer srv.Close()

	a := newInstagramTestAdapter(srv)
	_, err := a.Publish(context.Background(), instagramConn(), &transfer.PlatformJob{
		Platform: "instagram",
		MediaURL: "https://media.example.com/abc",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Media URL is not reachable")
}

func TestInstagramFetchMetricsWithInsights(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/insights") {
			w.Write([]byte(`{"data":[
				{"name":"impressions","values":[{"value":300}]},
				{"name":"reach","values":[{"value":250}]},
				{"name":"engagement","values":[{"value":40}]}
			]}`))
			return
		}
		w.Write([]byte(`{"like_count":30,"comments_count":4}`))
	}))
	defer srv.Close()

	a := newInstagramTestAdapter(srv)
	sample, err := a.FetchMetrics(context.Background(), instagramConn(), "media_1")
	require.NoError(t, err)

	assert.Equal(t, int64(300), sample.Impressions)
	assert.Equal(t, int64(250), sample.Reach)
	assert.Equal(t, int64(40), sample.Engagement)
	assert.Equal(t, int64(30), sample.Likes)
	assert.Equal(t, int64(4), sample.Comments)
}

func TestInstagramFetchMetricsEngagementFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/insights") {
			w.Write([]byte(`{"data":[]}`))
			return
		}
		w.Write([]byte(`{"like_count":12,"comments_count":3}`))
	}))
	defer srv.Close()

	a := newInstagramTestAdapter(srv)
	sample, err := a.FetchMetrics(context.Background(), instagramConn(), "media_1")
	require.NoError(t, err)

	assert.Equal(t, int64(15), sample.Engagement)
	assert.Equal(t, int64(12), sample.Likes)
	assert.Equal(t, int64(3), sample.Comments)
}
