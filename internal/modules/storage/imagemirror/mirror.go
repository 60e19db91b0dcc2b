// Package imagemirror copies Notion-hosted images to S3-compatible storage so
// rendered pages do not depend on Notion's expiring signed URLs.
package imagemirror

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"
)

// Options configures the target bucket.
type Options struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
	CustomDomain    string
	PathStyle       bool
}

// ObjectAPI is the subset of the S3 client the mirror uses.
type ObjectAPI interface {
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Mirror uploads images under a key derived from their source URL.
type Mirror struct {
	api    ObjectAPI
	opts   Options
	logger *zap.Logger
}

// New validates opts and builds an S3 client for them.
func New(opts Options, logger *zap.Logger) (*Mirror, error) {
	opts.Bucket = strings.TrimSpace(opts.Bucket)
	opts.Region = strings.TrimSpace(opts.Region)
	opts.AccessKeyID = strings.TrimSpace(opts.AccessKeyID)
	opts.SecretAccessKey = strings.TrimSpace(opts.SecretAccessKey)
	if opts.Bucket == "" || opts.Region == "" || opts.AccessKeyID == "" || opts.SecretAccessKey == "" {
		return nil, fmt.Errorf("incomplete s3 config: bucket/region/access_key_id/secret_access_key are required")
	}

	endpoint := strings.TrimSuffix(strings.TrimSpace(opts.Endpoint), "/")
	if endpoint != "" && !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}
	opts.Endpoint = endpoint
	// Custom endpoints (R2, MinIO, ...) generally only speak path style.
	if endpoint != "" {
		opts.PathStyle = true
	}

	client := s3.New(s3.Options{
		Region:       opts.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		UsePathStyle: opts.PathStyle,
		HTTPClient:   &http.Client{Timeout: 45 * time.Second},
	}, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return NewWithAPI(client, opts, logger), nil
}

// NewWithAPI builds a mirror over an existing client.
func NewWithAPI(api ObjectAPI, opts Options, logger *zap.Logger) *Mirror {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts.CustomDomain = strings.TrimRight(strings.TrimSpace(opts.CustomDomain), "/")
	opts.Prefix = strings.Trim(strings.TrimSpace(opts.Prefix), "/")
	return &Mirror{api: api, opts: opts, logger: logger.Named("imagemirror")}
}

// Mirror stores data unless an object for sourceURL already exists and
// returns the public URL of the copy.
func (m *Mirror) Mirror(ctx context.Context, sourceURL string, data []byte) (string, error) {
	key := m.ObjectKey(sourceURL)

	_, err := m.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(m.opts.Bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return m.PublicURL(key), nil
	}
	var notFound *types.NotFound
	if !errors.As(err, &notFound) {
		return "", fmt.Errorf("head %s: %w", key, err)
	}

	_, err = m.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(m.opts.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(http.DetectContentType(data)),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	m.logger.Debug("image mirrored", zap.String("key", key), zap.Int("bytes", len(data)))
	return m.PublicURL(key), nil
}

// ObjectKey hashes the URL without its query string; Notion re-signs the
// query on every request while the path stays stable.
func (m *Mirror) ObjectKey(sourceURL string) string {
	stable := sourceURL
	ext := ""
	if u, err := url.Parse(sourceURL); err == nil {
		u.RawQuery = ""
		u.Fragment = ""
		stable = u.String()
		ext = strings.ToLower(path.Ext(u.Path))
	}
	if len(ext) > 6 {
		ext = ""
	}
	sum := sha256.Sum256([]byte(stable))
	name := hex.EncodeToString(sum[:16]) + ext
	if m.opts.Prefix == "" {
		return name
	}
	return m.opts.Prefix + "/" + name
}

// PublicURL returns where key is served from.
func (m *Mirror) PublicURL(key string) string {
	switch {
	case m.opts.CustomDomain != "":
		return m.opts.CustomDomain + "/" + key
	case m.opts.Endpoint != "":
		return m.opts.Endpoint + "/" + m.opts.Bucket + "/" + key
	case m.opts.PathStyle:
		return fmt.Sprintf("https://s3.%s.amazonaws.com/%s/%s", m.opts.Region, m.opts.Bucket, key)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", m.opts.Bucket, m.opts.Region, key)
	}
}
