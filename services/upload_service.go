package services

import (
	"context"
	"mime/multipart"

	"spooky-styles/libs"
	"spooky-styles/logger"
	"spooky-styles/utils"
)

type UploadService struct {
	store   ImageStore
	maxSize int64
}

func NewUploadService(store ImageStore, maxSize int64) *UploadService {
	return &UploadService{store: store, maxSize: maxSize}
}

// UploadImage validates an uploaded image and hands it to the image store.
func (s *UploadService) UploadImage(ctx context.Context, header *multipart.FileHeader) (*libs.UploadResult, error) {
	file, err := header.Open()
	if err != nil {
		return nil, utils.BadRequest("Failed to read uploaded file")
	}
	defer file.Close()

	contentType, err := utils.ValidateImage(header, file, s.maxSize)
	if err != nil {
		return nil, err
	}

	res, err := s.store.Upload(ctx, file, utils.SafeFilename(header.Filename), contentType)
	if err != nil {
		return nil, utils.Internal("Failed to upload image", err)
	}

	logger.FromContext(ctx).Info().Str("id", res.ID).Msg("image uploaded")
	return res, nil
}

func (s *UploadService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return utils.Internal("Failed to delete image", err)
	}
	return nil
}
