package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	gonanoid "github.com/matoous/go-nanoid/v2"

	cfg "github.com/maheshrc27/contentflow/configs"
)

// HostingService accepts raw image bytes and returns a durable public URL
// that the publishing provider can fetch.
type HostingService interface {
	UploadImage(ctx context.Context, image []byte) (string, error)
}

type r2Service struct {
	config cfg.Config
}

func NewR2Service(cfg cfg.Config) HostingService {
	return &r2Service{config: cfg}
}

func (r *r2Service) client(ctx context.Context) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(r.config.R2.AccessKey, r.config.R2.SecretKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", r.config.R2.AccountID))
	}), nil
}

// UploadImage stores the image in Cloudflare R2 under a generated key and
// returns its public URL.
func (r *r2Service) UploadImage(ctx context.Context, image []byte) (string, error) {
	kind, err := filetype.Match(image)
	if err != nil || kind == types.Unknown || kind.MIME.Type != "image" {
		return "", &UploadError{Err: errors.New("unrecognized image format")}
	}

	id, err := gonanoid.New()
	if err != nil {
		return "", &UploadError{Err: err}
	}
	key := fmt.Sprintf("%s.%s", id, kind.Extension)

	r2Client, err := r.client(ctx)
	if err != nil {
		return "", &UploadError{Err: err}
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(r.config.R2.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(image),
		ContentType: aws.String(kind.MIME.Value),
	}

	if _, err := r2Client.PutObject(ctx, input); err != nil {
		slog.Info(err.Error())
		return "", &UploadError{Err: err}
	}

	return fmt.Sprintf("%s/%s", strings.TrimSuffix(r.config.R2.PublicBaseURL, "/"), key), nil
}
