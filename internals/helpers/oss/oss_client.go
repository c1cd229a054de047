// internals/helpers/oss/oss_client.go
package helper

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"

	"bookshelf_backend/internals/configs"
	"bookshelf_backend/internals/helpers/apperr"
)

// ErrNotConfigured is returned when the ALI_OSS_* settings are incomplete.
var ErrNotConfigured = errors.New("object storage is not configured")

const defaultPresignExpiry = 15 * time.Minute

/* =======================================================================
   OSS Service
======================================================================= */

type OSSService struct {
	Client     *oss.Client
	Bucket     *oss.Bucket
	Endpoint   string
	BucketName string
	Folder     string // every key is placed under this folder
	Expires    time.Duration
}

// NewOSSService builds the client without contacting the endpoint, so a
// bad bucket only shows up when a signed URL is used.
func NewOSSService(cfg configs.OSSConfig) (*OSSService, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}

	var (
		client *oss.Client
		err    error
	)
	if cfg.SecurityToken != "" {
		client, err = oss.New(cfg.Endpoint, cfg.AccessKey, cfg.SecretKey, oss.SecurityToken(cfg.SecurityToken))
	} else {
		client, err = oss.New(cfg.Endpoint, cfg.AccessKey, cfg.SecretKey)
	}
	if err != nil {
		return nil, fmt.Errorf("oss.New: %w", err)
	}

	bkt, err := client.Bucket(cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("client.Bucket: %w", err)
	}

	expires := cfg.PresignExpires
	if expires <= 0 {
		expires = defaultPresignExpiry
	}
	return &OSSService{
		Client:     client,
		Bucket:     bkt,
		Endpoint:   cfg.Endpoint,
		BucketName: cfg.Bucket,
		Folder:     strings.Trim(cfg.Folder, "/"),
		Expires:    expires,
	}, nil
}

/* =======================================================================
   Presigned URLs
======================================================================= */

// SignPutURL returns a URL that lets the holder upload key with the given
// content type until the expiry passes.
func (s *OSSService) SignPutURL(key, contentType string) (string, string, error) {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return "", "", fmt.Errorf("%w: content type is required", apperr.ErrInvalidArgument)
	}
	objectKey, err := s.ObjectKey(key)
	if err != nil {
		return "", "", err
	}
	u, err := s.Bucket.SignURL(objectKey, oss.HTTPPut, s.seconds(), oss.ContentType(contentType))
	if err != nil {
		return "", "", fmt.Errorf("sign put %s: %w", objectKey, err)
	}
	return u, objectKey, nil
}

// SignGetURL returns a time limited download URL for key.
func (s *OSSService) SignGetURL(key string) (string, string, error) {
	objectKey, err := s.ObjectKey(key)
	if err != nil {
		return "", "", err
	}
	u, err := s.Bucket.SignURL(objectKey, oss.HTTPGet, s.seconds())
	if err != nil {
		return "", "", fmt.Errorf("sign get %s: %w", objectKey, err)
	}
	return u, objectKey, nil
}

func (s *OSSService) ExpiresAt(now time.Time) time.Time {
	return now.Add(time.Duration(s.seconds()) * time.Second)
}

func (s *OSSService) seconds() int64 {
	sec := int64(s.Expires / time.Second)
	if sec <= 0 {
		sec = int64(defaultPresignExpiry / time.Second)
	}
	return sec
}

/* =======================================================================
   Key utils
======================================================================= */

// ObjectKey places key under the folder. Empty keys, empty segments and
// "." or ".." segments are rejected.
func (s *OSSService) ObjectKey(key string) (string, error) {
	key = strings.Trim(strings.TrimSpace(key), "/")
	if key == "" {
		return "", fmt.Errorf("%w: key is required", apperr.ErrInvalidArgument)
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return "", fmt.Errorf("%w: invalid key %q", apperr.ErrInvalidArgument, key)
		}
	}
	if s.Folder == "" {
		return key, nil
	}
	return s.Folder + "/" + key, nil
}

// PublicURL is where an object is served once uploaded (public-read buckets).
func (s *OSSService) PublicURL(objectKey string) string {
	if objectKey == "" || s.Endpoint == "" || s.BucketName == "" {
		return ""
	}
	end := strings.TrimPrefix(strings.TrimPrefix(s.Endpoint, "https://"), "http://")
	return fmt.Sprintf("https://%s.%s/%s", s.BucketName, end, objectKey)
}
