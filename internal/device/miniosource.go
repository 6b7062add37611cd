package device

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig identifies a bucket prefix holding staged device media.
type MinioConfig struct {
	Endpoint  string
	Bucket    string
	Prefix    string
	AccessKey string
	SecretKey string
}

// MinioSource reads the device tree from a MinIO/S3 bucket, for media
// that has been staged to object storage before the local copy. Rolls
// are the first-level prefixes under the configured prefix.
type MinioSource struct {
	cfg    MinioConfig
	client *minio.Client
}

func NewMinioSource(cfg MinioConfig) *MinioSource {
	cfg.Prefix = strings.Trim(cfg.Prefix, "/")
	if cfg.Prefix != "" {
		cfg.Prefix += "/"
	}
	return &MinioSource{cfg: cfg}
}

func (s *MinioSource) Open(ctx context.Context) error {
	tr := &http.Transport{
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	client, err := minio.New(s.cfg.Endpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(s.cfg.AccessKey, s.cfg.SecretKey, ""),
		Secure:       true,
		Transport:    tr,
		Region:       "auto",
		BucketLookup: minio.BucketLookupAuto,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	exists, err := client.BucketExists(ctx, s.cfg.Bucket)
	if err != nil || !exists {
		return fmt.Errorf("%w: bucket %s not reachable", ErrDeviceUnavailable, s.cfg.Bucket)
	}

	s.client = client
	return nil
}

func (s *MinioSource) ListRolls(ctx context.Context) ([]Roll, error) {
	if s.client == nil {
		return nil, fmt.Errorf("source not opened")
	}
	var rolls []Roll
	for obj := range s.client.ListObjects(ctx, s.cfg.Bucket, minio.ListObjectsOptions{
		Prefix: s.cfg.Prefix,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("listing rolls: %w", obj.Err)
		}
		if !strings.HasSuffix(obj.Key, "/") {
			continue
		}
		name := strings.TrimSuffix(strings.TrimPrefix(obj.Key, s.cfg.Prefix), "/")
		if name != "" {
			rolls = append(rolls, Roll{Name: name})
		}
	}
	sort.Slice(rolls, func(i, j int) bool { return rolls[i].Name < rolls[j].Name })
	for i := range rolls {
		rolls[i].Ordinal = i
	}
	return rolls, nil
}

func (s *MinioSource) ListFiles(ctx context.Context, roll Roll) ([]FileEntry, error) {
	prefix := s.cfg.Prefix + roll.Name + "/"
	var files []FileEntry
	for obj := range s.client.ListObjects(ctx, s.cfg.Bucket, minio.ListObjectsOptions{
		Prefix: prefix,
	}) {
		if obj.Err != nil {
			return nil, &EnumerationError{Roll: roll.Name, Err: obj.Err}
		}
		name := strings.TrimPrefix(obj.Key, prefix)
		if name == "" || strings.Contains(name, "/") {
			continue
		}
		files = append(files, FileEntry{
			Roll:    roll.Name,
			Name:    name,
			Size:    obj.Size,
			ModTime: obj.LastModified,
			ref:     obj.Key,
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

func (s *MinioSource) OpenStream(ctx context.Context, entry FileEntry) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.cfg.Bucket, entry.ref, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("opening %s/%s: %w", entry.Roll, entry.Name, err)
	}
	return obj, nil
}

func (s *MinioSource) Close() error {
	s.client = nil
	return nil
}
