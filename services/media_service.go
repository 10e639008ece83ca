package services

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"
	"mime/multipart"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	fig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/nfnt/resize"

	"github.com/amorlink/amorlink/config"
	"github.com/amorlink/amorlink/db"
	"github.com/amorlink/amorlink/models"
)

type MediaService interface {
	// UploadChatImage stores a chat image attachment plus a thumbnail in S3
	// and returns the stored media record; the URL becomes the content of an
	// image-type message.
	UploadChatImage(fileHeader *multipart.FileHeader, userID uint) (*models.Media, error)
}

type mediaService struct {
	Config    *config.Config
	mediaRepo db.MediaRepository
}

func NewMediaService(mediaRepo db.MediaRepository, conf *config.Config) MediaService {
	return &mediaService{
		Config:    conf,
		mediaRepo: mediaRepo,
	}
}

func createS3Client() (*s3.Client, error) {
	cfg, err := fig.LoadDefaultConfig(context.Background(),
		fig.WithRegion(os.Getenv("AWS_REGION")),
		fig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			os.Getenv("AWS_ACCESS_KEY_ID"),
			os.Getenv("AWS_SECRET_ACCESS_KEY"),
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config, %v", err)
	}

	return s3.NewFromConfig(cfg), nil
}

func (m *mediaService) UploadChatImage(fileHeader *multipart.FileHeader, userID uint) (*models.Media, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %v", err)
	}
	defer file.Close()

	img, err := imaging.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("unsupported image file: %v", err)
	}

	var full bytes.Buffer
	if err := jpeg.Encode(&full, img, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %v", err)
	}

	thumb := resize.Resize(200, 0, img, resize.Lanczos3)
	var thumbBuf bytes.Buffer
	if err := jpeg.Encode(&thumbBuf, thumb, &jpeg.Options{Quality: 75}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %v", err)
	}

	client, err := createS3Client()
	if err != nil {
		return nil, err
	}

	// everything is re-encoded to jpeg above
	name := uuid.NewString() + ".jpg"
	url, err := m.putObject(client, fmt.Sprintf("chat/%d/%s", userID, name), full.Bytes())
	if err != nil {
		return nil, err
	}
	thumbURL, err := m.putObject(client, fmt.Sprintf("chat/%d/thumb_%s", userID, name), thumbBuf.Bytes())
	if err != nil {
		return nil, err
	}

	media := &models.Media{
		UserID:       userID,
		FileType:     models.MessageTypeImage,
		URL:          url,
		ThumbnailURL: thumbURL,
	}
	if err := m.mediaRepo.SaveMedia(media); err != nil {
		return nil, err
	}
	return media, nil
}

func (m *mediaService) putObject(client *s3.Client, key string, body []byte) (string, error) {
	bucket := m.Config.AwsBucket
	if bucket == "" {
		bucket = os.Getenv("AWS_BUCKET")
	}

	_, err := client.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ACL:         types.ObjectCannedACLPublicRead,
		ContentType: aws.String("image/jpeg"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s to S3: %v", key, err)
	}

	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", bucket, key), nil
}
