package devserver

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/reactpy-go/client/internal/config"
	"github.com/reactpy-go/client/internal/rerrors"
)

// Mirror caches import-source module bundles from S3 into a local
// directory, so `reactpy-devtools serve` can serve ImportSource NAME
// modules offline once mirrored, and `reactpy-devtools mirror` can
// pre-populate that cache.
type Mirror struct {
	client *s3.Client
	bucket string
	prefix string
	dir    string
}

// NewMirror builds a Mirror from cfg.Mirror. accessKeyID/secretAccessKey
// may be empty, in which case the SDK's default credential chain
// (environment, shared config, instance role) is used.
func NewMirror(ctx context.Context, cfg *config.Config, accessKeyID, secretAccessKey string) (*Mirror, error) {
	if cfg.Mirror.Bucket == "" {
		return nil, nil
	}

	var optFns []func(*awsconfig.LoadOptions) error
	optFns = append(optFns, awsconfig.WithRegion(cfg.Mirror.Region))
	if accessKeyID != "" {
		optFns = append(optFns, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, rerrors.New("E603").WithHint("check AWS credentials and region").Wrap(err)
	}

	return &Mirror{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.Mirror.Bucket,
		prefix: cfg.Mirror.Prefix,
		dir:    cfg.Server.ModulesDir,
	}, nil
}

// Fetch downloads the module bundle named name from S3 into the local
// modules directory, returning the local path. If the file is already
// cached it is not re-downloaded.
func (m *Mirror) Fetch(ctx context.Context, name string) (string, error) {
	localPath := filepath.Join(m.dir, name)
	if _, err := os.Stat(localPath); err == nil {
		return localPath, nil
	}

	key := m.prefix + name
	out, err := m.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &m.bucket,
		Key:    &key,
	})
	if err != nil {
		return "", rerrors.New("E603").WithHint(fmt.Sprintf("s3://%s/%s not found", m.bucket, key)).Wrap(err)
	}
	defer out.Body.Close()

	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return "", rerrors.New("E603").Wrap(err)
	}
	f, err := os.Create(localPath)
	if err != nil {
		return "", rerrors.New("E603").Wrap(err)
	}
	defer f.Close()

	if _, err := io.Copy(f, out.Body); err != nil {
		return "", rerrors.New("E603").Wrap(err)
	}

	return localPath, nil
}

// resolveModule finds name's module bundle locally, fetching it through
// the configured Mirror on a cache miss.
func (s *Server) resolveModule(ctx context.Context, name string) (string, error) {
	localPath := filepath.Join(s.cfg.Server.ModulesDir, name)
	if _, err := os.Stat(localPath); err == nil {
		return localPath, nil
	}
	if s.mirror == nil {
		return "", fmt.Errorf("module %q not found and no mirror configured", name)
	}
	return s.mirror.Fetch(ctx, name)
}
