package services

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
)

// StorageService uploads review photos to S3. Keys are date-partitioned
// under reviews/ so the bucket stays browsable.
type StorageService struct {
	client     *s3.S3
	bucketName string
	region     string
}

func NewStorageService(region, bucketName, accessKey, secretKey string) *StorageService {
	sess := session.Must(session.NewSession(&aws.Config{
		Region: aws.String(region),
		Credentials: credentials.NewStaticCredentials(
			accessKey,
			secretKey,
			"",
		),
	}))

	return &StorageService{
		client:     s3.New(sess),
		bucketName: bucketName,
		region:     region,
	}
}

type PhotoUploadResult struct {
	Key      string `json:"key"`
	URL      string `json:"url"`
	FileName string `json:"file_name"`
	Size     int64  `json:"size"`
}

const maxPhotoSize = 10 * 1024 * 1024 // 10MB

func (s *StorageService) UploadReviewPhoto(file multipart.File, header *multipart.FileHeader) (*PhotoUploadResult, error) {
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = contentTypeFromExtension(header.Filename)
	}
	if !isValidImageType(contentType) {
		return nil, fmt.Errorf("invalid file type: %s", contentType)
	}
	if header.Size > maxPhotoSize {
		return nil, fmt.Errorf("file size too large: %d bytes (max: %d bytes)", header.Size, maxPhotoSize)
	}

	fileExt := filepath.Ext(header.Filename)
	datePrefix := time.Now().Format("2006/01/02")
	key := fmt.Sprintf("reviews/%s/%s%s", datePrefix, uuid.New().String(), fileExt)

	buffer := bytes.NewBuffer(nil)
	if _, err := io.Copy(buffer, file); err != nil {
		return nil, fmt.Errorf("failed to read file: %v", err)
	}

	_, err := s.client.PutObject(&s3.PutObjectInput{
		Bucket:       aws.String(s.bucketName),
		Key:          aws.String(key),
		Body:         bytes.NewReader(buffer.Bytes()),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("max-age=31536000"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %v", err)
	}

	url := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucketName, s.region, key)

	return &PhotoUploadResult{
		Key:      key,
		URL:      url,
		FileName: header.Filename,
		Size:     header.Size,
	}, nil
}

// UploadReviewPhotos uploads a batch; on any failure the already uploaded
// objects are removed so a review never references half a batch.
func (s *StorageService) UploadReviewPhotos(files []*multipart.FileHeader) ([]*PhotoUploadResult, error) {
	var results []*PhotoUploadResult
	var uploadErrors []string

	for i, fileHeader := range files {
		file, err := fileHeader.Open()
		if err != nil {
			uploadErrors = append(uploadErrors, fmt.Sprintf("file %d: failed to open - %v", i+1, err))
			continue
		}

		result, err := s.UploadReviewPhoto(file, fileHeader)
		file.Close()

		if err != nil {
			uploadErrors = append(uploadErrors, fmt.Sprintf("file %d (%s): %v", i+1, fileHeader.Filename, err))
			continue
		}

		results = append(results, result)
	}

	if len(uploadErrors) > 0 {
		for _, result := range results {
			s.DeletePhoto(result.Key)
		}
		return nil, fmt.Errorf("upload errors: %s", strings.Join(uploadErrors, "; "))
	}

	return results, nil
}

func (s *StorageService) DeletePhoto(key string) error {
	if key == "" {
		return nil
	}

	_, err := s.client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	return err
}

func isValidImageType(contentType string) bool {
	validTypes := []string{
		"image/jpeg",
		"image/jpg",
		"image/png",
		"image/webp",
	}

	for _, validType := range validTypes {
		if strings.EqualFold(contentType, validType) {
			return true
		}
	}
	return false
}

func contentTypeFromExtension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
