package aws

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/diillson/ads-budget-realloc-go/internal/domain/repository"
)

// s3PutObjectAPI é o subconjunto do cliente S3 usado pelo upload.
type s3PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3ArchiveRepositoryImpl implementa o ArchiveRepository com cache do cliente.
type S3ArchiveRepositoryImpl struct {
	profile string
	client  s3PutObjectAPI
	mu      sync.Mutex
}

// NewS3ArchiveRepository cria um uploader de relatórios. Com profile vazio
// vale a cadeia padrão de credenciais do SDK.
func NewS3ArchiveRepository(profile string) repository.ArchiveRepository {
	return &S3ArchiveRepositoryImpl{profile: profile}
}

func (r *S3ArchiveRepositoryImpl) getClient(ctx context.Context) (s3PutObjectAPI, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client != nil {
		return r.client, nil
	}

	var opts []func(*config.LoadOptions) error
	if r.profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(r.profile))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for profile %q: %w", r.profile, err)
	}

	r.client = s3.NewFromConfig(cfg)
	return r.client, nil
}

// Upload envia o arquivo local para s3://bucket/prefix/<nome do arquivo>.
func (r *S3ArchiveRepositoryImpl) Upload(ctx context.Context, localPath, bucket, prefix string) (string, error) {
	if bucket == "" {
		return "", fmt.Errorf("s3 bucket is empty")
	}

	client, err := r.getClient(ctx)
	if err != nil {
		return "", err
	}

	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("error opening report %s: %w", localPath, err)
	}
	defer file.Close()

	key := objectKey(prefix, localPath)
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType(localPath)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s to bucket %s: %w", filepath.Base(localPath), bucket, err)
	}

	return fmt.Sprintf("s3://%s/%s", bucket, key), nil
}

func objectKey(prefix, localPath string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return filepath.Base(localPath)
	}
	return path.Join(prefix, filepath.Base(localPath))
}

func contentType(localPath string) string {
	switch strings.ToLower(filepath.Ext(localPath)) {
	case ".csv":
		return "text/csv"
	case ".json":
		return "application/json"
	case ".pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
