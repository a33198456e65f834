package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/h2non/filetype"
	"github.com/harshit961695/unipost/internal/service"
	"github.com/harshit961695/unipost/internal/transfer"
)

type PublishHandler struct {
	s service.PublishService
}

func NewPublishHandler(service service.PublishService) *PublishHandler {
	return &PublishHandler{s: service}
}

// Publish fans one composed post out to every enabled platform in the
// request. Per-platform failures come back in the errors map with a
// 200; only batch-level failures produce an error status.
func (h *PublishHandler) Publish(c *fiber.Ctx) error {
	userID := GetUserID(c)

	form, err := c.MultipartForm()
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse form",
		})
	}

	metadataStr := c.FormValue("metadata")
	if metadataStr == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing metadata",
		})
	}

	var metadata map[string]transfer.PlatformConfig
	if err := json.Unmarshal([]byte(metadataStr), &metadata); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid metadata format",
		})
	}

	jobs := make([]transfer.PlatformJob, 0, len(metadata))
	for platform, cfg := range metadata {
		if !cfg.Enabled {
			continue
		}

		job := transfer.PlatformJob{
			Platform:    platform,
			Kind:        cfg.Type,
			Caption:     cfg.Caption,
			Title:       cfg.Title,
			Description: cfg.Description,
			Privacy:     cfg.Privacy,
		}

		if files := form.File["media_"+platform]; len(files) > 0 {
			media, err := readUpload(files[0])
			if err != nil {
				slog.Error(err.Error())
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Unable to read media file",
				})
			}
			job.Media = media
		}
		if files := form.File["thumbnail_"+platform]; len(files) > 0 {
			thumbnail, err := readUpload(files[0])
			if err != nil {
				slog.Error(err.Error())
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Unable to read thumbnail file",
				})
			}
			job.Thumbnail = thumbnail
		}

		jobs = append(jobs, job)
	}

	report, err := h.s.Publish(c.Context(), userID, jobs)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": len(report.Errors) == 0,
		"results": report.Results,
		"errors":  report.Errors,
	})
}

func readUpload(fh *multipart.FileHeader) (*transfer.MediaPayload, error) {
	file, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	contentType := fh.Header.Get("Content-Type")
	if kind, err := filetype.Match(data); err == nil && kind.MIME.Value != "" {
		contentType = kind.MIME.Value
	}

	return &transfer.MediaPayload{
		FileName:    fh.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}
