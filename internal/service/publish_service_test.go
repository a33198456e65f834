package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	config "github.com/harshit961695/unipost/configs"
	"github.com/harshit961695/unipost/internal/models"
	"github.com/harshit961695/unipost/internal/platform"
	"github.com/harshit961695/unipost/internal/transfer"
	"github.com/harshit961695/unipost/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecretKey = "0123456789abcdef0123456789abcdef"

type fakeConnectionRepo struct {
	conns map[string]*models.Connection
	err   error
}

func (f *fakeConnectionRepo) GetByUserAndPlatform(ctx context.Context, userID int64, platform string) (*models.Connection, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.conns[platform], nil
}

func (f *fakeConnectionRepo) ListByUserID(ctx context.Context, userID int64) ([]*models.Connection, error) {
	return nil, nil
}

func (f *fakeConnectionRepo) ListActive(ctx context.Context) ([]*models.Connection, error) {
	return nil, nil
}

type fakePostLogRepo struct {
	mu   sync.Mutex
	logs []*models.PostLog
	err  error
}

func (f *fakePostLogRepo) Create(ctx context.Context, l *models.PostLog) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.logs = append(f.logs, l)
	return int64(len(f.logs)), nil
}

func (f *fakePostLogRepo) ListSuccessful(ctx context.Context, userIDs []int64) ([]*models.PostLog, error) {
	return nil, nil
}

func (f *fakePostLogRepo) ListByUserID(ctx context.Context, userID int64) ([]*models.PostLog, error) {
	return nil, nil
}

func (f *fakePostLogRepo) byPlatform(platformName string) *models.PostLog {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.logs {
		if l.Platform == platformName {
			return l
		}
	}
	return nil
}

type fakeAdapter struct {
	name           string
	needsPublicURL bool
	requiresMedia  bool
	publishErr     error
	postID         string

	mu           sync.Mutex
	published    []*transfer.PlatformJob
	seenTokens   []string
	seenMediaURL string
}

func (f *fakeAdapter) Name() string              { return f.name }
func (f *fakeAdapter) NeedsPublicURL() bool      { return f.needsPublicURL }
func (f *fakeAdapter) RequiresMedia(string) bool { return f.requiresMedia }

func (f *fakeAdapter) Publish(ctx context.Context, conn *models.Connection, job *transfer.PlatformJob) (*platform.PublishResult, error) {
	f.mu.Lock()
	f.published = append(f.published, job)
	f.seenTokens = append(f.seenTokens, conn.AccessToken)
	f.seenMediaURL = job.MediaURL
	f.mu.Unlock()
	if f.publishErr != nil {
		return nil, f.publishErr
	}
	return &platform.PublishResult{PostID: f.postID}, nil
}

func (f *fakeAdapter) FetchMetrics(ctx context.Context, conn *models.Connection, postID string) (*models.MetricSample, error) {
	return &models.MetricSample{}, nil
}

func (f *fakeAdapter) publishCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.published)
}

type fakeStager struct {
	mu      sync.Mutex
	puts    []string
	deletes []string
	putErr  error
}

func (f *fakeStager) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return "", f.putErr
	}
	f.puts = append(f.puts, key)
	return "https://media.example.com/" + key, nil
}

func (f *fakeStager) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, key)
	return nil
}

func encryptedConn(t *testing.T, platformName string) *models.Connection {
	t.Helper()
	token, err := utils.Encrypt([]byte("token-"+platformName), []byte(testSecretKey))
	require.NoError(t, err)
	return &models.Connection{
		UserID:      7,
		Platform:    platformName,
		AccessToken: token,
	}
}

func newTestPublishService(cr *fakeConnectionRepo, pl *fakePostLogRepo, stager *fakeStager, adapters ...platform.Adapter) PublishService {
	cfg := config.Config{SecretKey: testSecretKey}
	return NewPublishService(cfg, cr, pl, platform.NewRegistry(adapters...), stager)
}

func TestPublishNoPlatformsSelected(t *testing.T) {
	s := newTestPublishService(&fakeConnectionRepo{}, &fakePostLogRepo{}, &fakeStager{})

	_, err := s.Publish(context.Background(), 7, nil)
	require.Error(t, err)
	assert.Equal(t, "no platforms selected", err.Error())
}

func TestPublishAllPlatformsSucceed(t *testing.T) {
	fb := &fakeAdapter{name: "facebook", postID: "fb_1"}
	yt := &fakeAdapter{name: "youtube", postID: "yt_1"}
	cr := &fakeConnectionRepo{conns: map[string]*models.Connection{
		"facebook": encryptedConn(t, "facebook"),
		"youtube":  encryptedConn(t, "youtube"),
	}}
	pl := &fakePostLogRepo{}
	s := newTestPublishService(cr, pl, &fakeStager{}, fb, yt)

	jobs := []transfer.PlatformJob{
		{Platform: "facebook", Caption: "hello"},
		{Platform: "youtube", Title: "hello"},
	}
	report, err := s.Publish(context.Background(), 7, jobs)
	require.NoError(t, err)

	assert.Len(t, report.Results, 2)
	assert.Equal(t, models.PublishStatusSuccess, report.Results["facebook"])
	assert.Equal(t, models.PublishStatusSuccess, report.Results["youtube"])
	assert.Empty(t, report.Errors)

	require.Len(t, pl.logs, 2)
	fbLog := pl.byPlatform("facebook")
	require.NotNil(t, fbLog)
	assert.Equal(t, "fb_1", fbLog.PlatformPostID)
	assert.Equal(t, models.PublishStatusSuccess, fbLog.Status)
	assert.Empty(t, fbLog.ErrorMessage)
}

func TestPublishFailureDoesNotAffectSiblings(t *testing.T) {
	fb := &fakeAdapter{name: "facebook", postID: "fb_1"}
	yt := &fakeAdapter{name: "youtube", publishErr: errors.New("quota exceeded")}
	cr := &fakeConnectionRepo{conns: map[string]*models.Connection{
		"facebook": encryptedConn(t, "facebook"),
		"youtube":  encryptedConn(t, "youtube"),
	}}
	pl := &fakePostLogRepo{}
	s := newTestPublishService(cr, pl, &fakeStager{}, fb, yt)

	jobs := []transfer.PlatformJob{
		{Platform: "facebook"},
		{Platform: "youtube"},
	}
	report, err := s.Publish(context.Background(), 7, jobs)
	require.NoError(t, err)

	assert.Equal(t, models.PublishStatusSuccess, report.Results["facebook"])
	assert.Equal(t, models.PublishStatusFailure, report.Results["youtube"])
	assert.Equal(t, "quota exceeded", report.Errors["youtube"])
	assert.NotContains(t, report.Errors, "facebook")

	require.Len(t, pl.logs, 2)
	ytLog := pl.byPlatform("youtube")
	require.NotNil(t, ytLog)
	assert.Equal(t, models.PublishStatusFailure, ytLog.Status)
	assert.Equal(t, "quota exceeded", ytLog.ErrorMessage)
}

func TestPublishUnsupportedPlatform(t *testing.T) {
	pl := &fakePostLogRepo{}
	s := newTestPublishService(&fakeConnectionRepo{}, pl, &fakeStager{})

	report, err := s.Publish(context.Background(), 7, []transfer.PlatformJob{{Platform: "myspace"}})
	require.NoError(t, err)

	assert.Equal(t, models.PublishStatusFailure, report.Results["myspace"])
	assert.Equal(t, "unsupported platform: myspace", report.Errors["myspace"])
	require.Len(t, pl.logs, 1)
}

func TestPublishMissingMediaFailsBeforeNetwork(t *testing.T) {
	ig := &fakeAdapter{name: "instagram", requiresMedia: true}
	cr := &fakeConnectionRepo{conns: map[string]*models.Connection{
		"instagram": encryptedConn(t, "instagram"),
	}}
	s := newTestPublishService(cr, &fakePostLogRepo{}, &fakeStager{}, ig)

	report, err := s.Publish(context.Background(), 7, []transfer.PlatformJob{{Platform: "instagram", Kind: "post"}})
	require.NoError(t, err)

	assert.Equal(t, models.PublishStatusFailure, report.Results["instagram"])
	assert.Equal(t, "media file is required for instagram", report.Errors["instagram"])
	assert.Zero(t, ig.publishCalls())
}

func TestPublishAccountNotConnected(t *testing.T) {
	fb := &fakeAdapter{name: "facebook"}
	s := newTestPublishService(&fakeConnectionRepo{}, &fakePostLogRepo{}, &fakeStager{}, fb)

	report, err := s.Publish(context.Background(), 7, []transfer.PlatformJob{{Platform: "facebook"}})
	require.NoError(t, err)

	assert.Equal(t, "facebook account not connected", report.Errors["facebook"])
	assert.Zero(t, fb.publishCalls())
}

func TestPublishDecryptsAccessToken(t *testing.T) {
	fb := &fakeAdapter{name: "facebook"}
	cr := &fakeConnectionRepo{conns: map[string]*models.Connection{
		"facebook": encryptedConn(t, "facebook"),
	}}
	s := newTestPublishService(cr, &fakePostLogRepo{}, &fakeStager{}, fb)

	_, err := s.Publish(context.Background(), 7, []transfer.PlatformJob{{Platform: "facebook"}})
	require.NoError(t, err)

	require.Len(t, fb.seenTokens, 1)
	assert.Equal(t, "token-facebook", fb.seenTokens[0])
}

func TestPublishStagesMediaForPublicURLPlatform(t *testing.T) {
	ig := &fakeAdapter{name: "instagram", needsPublicURL: true}
	cr := &fakeConnectionRepo{conns: map[string]*models.Connection{
		"instagram": encryptedConn(t, "instagram"),
	}}
	stager := &fakeStager{}
	s := newTestPublishService(cr, &fakePostLogRepo{}, stager, ig)

	jobs := []transfer.PlatformJob{{
		Platform: "instagram",
		Media:    &transfer.MediaPayload{FileName: "a.jpg", ContentType: "image/jpeg", Data: []byte{1, 2}},
	}}
	report, err := s.Publish(context.Background(), 7, jobs)
	require.NoError(t, err)

	assert.Equal(t, models.PublishStatusSuccess, report.Results["instagram"])
	require.Len(t, stager.puts, 1)
	assert.Equal(t, "https://media.example.com/"+stager.puts[0], ig.seenMediaURL)
	assert.Equal(t, stager.puts, stager.deletes)
}

func TestPublishCleansUpStagedMediaOnFailure(t *testing.T) {
	ig := &fakeAdapter{name: "instagram", needsPublicURL: true, publishErr: errors.New("container expired")}
	cr := &fakeConnectionRepo{conns: map[string]*models.Connection{
		"instagram": encryptedConn(t, "instagram"),
	}}
	stager := &fakeStager{}
	s := newTestPublishService(cr, &fakePostLogRepo{}, stager, ig)

	jobs := []transfer.PlatformJob{{
		Platform: "instagram",
		Media:    &transfer.MediaPayload{FileName: "a.jpg", ContentType: "image/jpeg", Data: []byte{1, 2}},
	}}
	report, err := s.Publish(context.Background(), 7, jobs)
	require.NoError(t, err)

	assert.Equal(t, "container expired", report.Errors["instagram"])
	require.Len(t, stager.puts, 1)
	assert.Equal(t, stager.puts, stager.deletes)
}

func TestPublishStagingFailureFailsJob(t *testing.T) {
	ig := &fakeAdapter{name: "instagram", needsPublicURL: true}
	cr := &fakeConnectionRepo{conns: map[string]*models.Connection{
		"instagram": encryptedConn(t, "instagram"),
	}}
	stager := &fakeStager{putErr: errors.New("bucket unavailable")}
	s := newTestPublishService(cr, &fakePostLogRepo{}, stager, ig)

	jobs := []transfer.PlatformJob{{
		Platform: "instagram",
		Media:    &transfer.MediaPayload{FileName: "a.jpg", ContentType: "image/jpeg", Data: []byte{1, 2}},
	}}
	report, err := s.Publish(context.Background(), 7, jobs)
	require.NoError(t, err)

	assert.Equal(t, models.PublishStatusFailure, report.Results["instagram"])
	assert.Contains(t, report.Errors["instagram"], "failed to upload temporary media")
	assert.Zero(t, ig.publishCalls())
}

func TestPublishLogInsertFailureDoesNotChangeReport(t *testing.T) {
	fb := &fakeAdapter{name: "facebook", postID: "fb_1"}
	cr := &fakeConnectionRepo{conns: map[string]*models.Connection{
		"facebook": encryptedConn(t, "facebook"),
	}}
	pl := &fakePostLogRepo{err: errors.New("db down")}
	s := newTestPublishService(cr, pl, &fakeStager{}, fb)

	report, err := s.Publish(context.Background(), 7, []transfer.PlatformJob{{Platform: "facebook"}})
	require.NoError(t, err)
	assert.Equal(t, models.PublishStatusSuccess, report.Results["facebook"])
	assert.Empty(t, report.Errors)
}
