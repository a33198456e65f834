package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"time"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	"github.com/harshit961695/unipost/internal/models"
	"github.com/harshit961695/unipost/internal/repository"
	"github.com/harshit961695/unipost/internal/transfer"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// PostService owns deferred publishing: it persists a scheduled post
// with its targets and staged media, and later rebuilds the platform
// jobs for the queue worker to hand to the orchestrator.
type PostService interface {
	CreatePost(ctx context.Context, userID int64, pc *transfer.PostCreation, files []*multipart.FileHeader) (int64, time.Duration, error)
	List(ctx context.Context, userID int64) ([]*models.Post, error)
	Remove(ctx context.Context, userID, postID int64) error
	BuildJobs(ctx context.Context, postID int64) (int64, []transfer.PlatformJob, error)
}

type postService struct {
	db     *sql.DB
	pr     repository.PostRepository
	pt     repository.PostTargetRepository
	ma     repository.MediaAssetRepository
	pm     repository.PostMediaRepository
	stager MediaStager
}

func NewPostService(
	db *sql.DB,
	pr repository.PostRepository,
	pt repository.PostTargetRepository,
	ma repository.MediaAssetRepository,
	pm repository.PostMediaRepository,
	stager MediaStager) PostService {
	return &postService{
		db:     db,
		pr:     pr,
		pt:     pt,
		ma:     ma,
		pm:     pm,
		stager: stager,
	}
}

func (s *postService) CreatePost(ctx context.Context, userID int64, pc *transfer.PostCreation, files []*multipart.FileHeader) (int64, time.Duration, error) {
	if pc == nil {
		err := errors.New("post creation data is nil")
		slog.Error(err.Error())
		return 0, 0, err
	}
	if pc.Caption == "" {
		err := errors.New("caption cannot be empty")
		slog.Info(err.Error())
		return 0, 0, err
	}

	scheduledTime, err := time.Parse("2006-01-02T15:04", pc.ScheduledTime)
	if err != nil {
		err = fmt.Errorf("invalid scheduled time format: %w", err)
		slog.Error(err.Error())
		return 0, 0, err
	}

	var targets []transfer.PostTargetInput
	if err := json.Unmarshal([]byte(pc.Targets), &targets); err != nil {
		err = fmt.Errorf("invalid targets format: %w", err)
		slog.Error(err.Error())
		return 0, 0, err
	}
	if len(targets) == 0 {
		err := errors.New("no platforms selected")
		slog.Error(err.Error())
		return 0, 0, err
	}

	if len(files) == 0 {
		err := errors.New("no files provided for the post")
		slog.Error(err.Error())
		return 0, 0, err
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		}
	}()

	post := models.Post{
		UserID:        userID,
		Caption:       pc.Caption,
		Title:         pc.Title,
		Description:   pc.Description,
		Privacy:       pc.Privacy,
		ScheduledTime: scheduledTime,
		Status:        models.PostStatusScheduled,
	}

	postID, err := s.pr.Create(ctx, tx, &post)
	if err != nil {
		return 0, 0, fmt.Errorf("error creating post: %w", err)
	}

	for _, target := range targets {
		pt := models.PostTarget{
			PostID:   postID,
			Platform: target.Platform,
			PostKind: target.Kind,
		}
		if err = s.pt.Create(ctx, tx, &pt); err != nil {
			return 0, 0, fmt.Errorf("error saving target %s: %w", target.Platform, err)
		}
	}

	if err = s.processFiles(ctx, tx, userID, postID, files); err != nil {
		return 0, 0, fmt.Errorf("error processing files: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	delay := time.Until(scheduledTime)
	if delay < 0 {
		delay = 0
	}

	return postID, delay, nil
}

func (s *postService) processFiles(ctx context.Context, tx *sql.Tx, userID, postID int64, files []*multipart.FileHeader) error {
	allowedTypes := map[string]struct{}{
		"mp4": {}, "mov": {}, "jpeg": {}, "png": {}, "jpg": {},
	}

	for i, file := range files {
		fileContent, err := file.Open()
		if err != nil {
			return fmt.Errorf("error opening file: %w", err)
		}
		defer fileContent.Close()

		fileBytes, err := io.ReadAll(fileContent)
		if err != nil {
			return fmt.Errorf("error reading file content: %w", err)
		}

		fileType, err := filetype.Match(fileBytes)
		if err != nil || fileType == types.Unknown {
			return fmt.Errorf("unsupported file type: %w", err)
		}
		if _, ok := allowedTypes[fileType.Extension]; !ok {
			return fmt.Errorf("file type %s is not allowed", fileType.Extension)
		}

		assetID, err := s.saveFile(ctx, tx, userID, fileType.MIME.Value, fileBytes)
		if err != nil {
			return fmt.Errorf("error uploading file: %w", err)
		}

		postMedia := models.PostMedia{
			PostID:       postID,
			AssetID:      assetID,
			DisplayOrder: i,
		}
		if err := s.pm.Create(ctx, tx, &postMedia); err != nil {
			return fmt.Errorf("error saving media file: %w", err)
		}
	}
	return nil
}

func (s *postService) saveFile(ctx context.Context, tx *sql.Tx, userID int64, fileType string, file []byte) (int64, error) {
	key, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	fileURL, err := s.stager.Put(ctx, key, file, fileType)
	if err != nil {
		return 0, err
	}

	ma := models.MediaAsset{
		UserID:   userID,
		FileName: key,
		FileType: fileType,
		FileSize: int64(len(file)),
		FileURL:  fileURL,
	}

	assetID, err := s.ma.Create(ctx, tx, &ma)
	if err != nil {
		return 0, err
	}

	return assetID, nil
}

// BuildJobs reconstructs the platform jobs for a stored post: one job
// per target, all sharing the post's first media asset downloaded back
// from staging.
func (s *postService) BuildJobs(ctx context.Context, postID int64) (int64, []transfer.PlatformJob, error) {
	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return 0, nil, err
	}
	if post == nil {
		return 0, nil, fmt.Errorf("post %d not found", postID)
	}

	targets, err := s.pt.ListByPostID(ctx, postID)
	if err != nil {
		return 0, nil, err
	}
	if len(targets) == 0 {
		return 0, nil, fmt.Errorf("no targets for post %d", postID)
	}

	var media *transfer.MediaPayload
	postMedia, err := s.pm.GetByPostID(ctx, postID)
	if err != nil {
		return 0, nil, err
	}
	if postMedia != nil {
		asset, err := s.ma.GetByID(ctx, postMedia.AssetID)
		if err != nil {
			return 0, nil, err
		}
		if asset == nil || asset.FileURL == "" {
			return 0, nil, fmt.Errorf("media asset is missing or incomplete for post %d", postID)
		}

		data, err := FetchStagedBytes(ctx, asset.FileURL)
		if err != nil {
			return 0, nil, err
		}
		media = &transfer.MediaPayload{
			FileName:    asset.FileName,
			ContentType: asset.FileType,
			Data:        data,
		}
	}

	jobs := make([]transfer.PlatformJob, 0, len(targets))
	for _, target := range targets {
		jobs = append(jobs, transfer.PlatformJob{
			Platform:    target.Platform,
			Kind:        target.PostKind,
			Caption:     post.Caption,
			Title:       post.Title,
			Description: post.Description,
			Privacy:     post.Privacy,
			Media:       media,
		})
	}

	return post.UserID, jobs, nil
}

func (s *postService) List(ctx context.Context, userID int64) ([]*models.Post, error) {
	posts, err := s.pr.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing posts: %w", err)
	}
	return posts, nil
}

func (s *postService) Remove(ctx context.Context, userID, postID int64) error {
	if userID == 0 || postID == 0 {
		err := errors.New("post id is not valid")
		slog.Info(err.Error())
		return err
	}

	isValid, err := s.pr.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return err
	}
	if !isValid {
		err = errors.New("post doesn't exist")
		slog.Info(err.Error())
		return err
	}

	if err := s.pr.Remove(ctx, postID); err != nil {
		return fmt.Errorf("error removing post: %w", err)
	}

	return nil
}
