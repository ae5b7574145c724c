// Package archive keeps model snapshots and training data in an S3 bucket.
package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/ioutil"
	"path"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"

	"github.com/jgreitemann/svm/logger"
)

var ErrNotFound = errors.New("archive: object not found")

var clientLogger = logger.NewLogger("S3Client")
var sdkLogger = logger.NewLogger("S3-SDK")

type Client struct {
	api    s3iface.S3API
	bucket string
	prefix string
}

type EnvironmentConfig struct {
	BucketName  string `envconfig:"SVM_ARCHIVE_BUCKET" required:"true"`
	Region      string `envconfig:"SVM_ARCHIVE_REGION" required:"true"`
	Prefix      string `envconfig:"SVM_ARCHIVE_PREFIX" default:""`
	AwsEndpoint string `envconfig:"SVM_ARCHIVE_ENDPOINT_URL" default:""`
	AccessKeyID string `envconfig:"SVM_ARCHIVE_ACCESS_ID" default:""`
	AccessKey   string `envconfig:"SVM_ARCHIVE_ACCESS_KEY" default:""`
}

// New opens a session for the bucket named by the SVM_ARCHIVE_*
// variables. Without static credentials the default provider chain is
// used.
func New() (*Client, error) {
	env, err := readEnvironment()
	if err != nil {
		clientLogger.Err(err).Msg("Failed to get proper variables from environment")
		return nil, err
	}
	sess, err := session.NewSession(createConfig(env))
	if err != nil {
		clientLogger.Error().Err(err).Msg("Could not initialize S3 session")
		return nil, err
	}
	clientLogger.Info().Str("bucket", env.BucketName).Msg("S3 session initialized")
	return NewWithAPI(s3.New(sess), env.BucketName, env.Prefix), nil
}

// NewWithAPI wraps an existing S3 client. Keys are placed below prefix.
func NewWithAPI(api s3iface.S3API, bucket, prefix string) *Client {
	return &Client{api: api, bucket: bucket, prefix: prefix}
}

func createConfig(env EnvironmentConfig) *aws.Config {
	cfg := aws.NewConfig().
		WithRegion(env.Region).
		WithMaxRetries(4).
		WithLogger(getLogger(sdkLogger.With().Str("bucket", env.BucketName).Logger())).
		WithLogLevel(aws.LogDebug)
	if env.AccessKeyID != "" {
		cfg = cfg.WithCredentials(credentials.NewStaticCredentials(env.AccessKeyID, env.AccessKey, ""))
	}
	if env.AwsEndpoint != "" {
		cfg = cfg.WithEndpoint(env.AwsEndpoint).WithS3ForcePathStyle(true)
	}
	return cfg
}

func (client *Client) objectKey(key string) string {
	if client.prefix == "" {
		return key
	}
	return path.Join(client.prefix, key)
}

func (client *Client) Upload(ctx context.Context, key string, data []byte) error {
	objectKey := client.objectKey(key)
	requestLogger := clientLogger.With().
		Str("key", objectKey).
		Str("bucket", client.bucket).Logger()

	requestLogger.Debug().Int("bytes", len(data)).Msg("Uploading the file")
	_, err := client.api.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket: aws.String(client.bucket),
		Key:    aws.String(objectKey),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		requestLogger.Error().Err(err).Msg("Failed to upload file")
	}
	return err
}

func (client *Client) Download(ctx context.Context, key string) ([]byte, error) {
	objectKey := client.objectKey(key)
	requestLogger := clientLogger.With().
		Str("key", objectKey).
		Str("bucket", client.bucket).Logger()

	requestLogger.Debug().Msg("Downloading file")
	out, err := client.api.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(client.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && aerr.Code() == s3.ErrCodeNoSuchKey {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, objectKey)
		}
		requestLogger.Error().Err(err).Msg("Failed to download file")
		return nil, err
	}
	defer out.Body.Close()
	b, err := ioutil.ReadAll(out.Body)
	if err != nil {
		return nil, err
	}
	requestLogger.Debug().Msgf("Downloaded %v bytes", len(b))
	return b, nil
}

func readEnvironment() (EnvironmentConfig, error) {
	var config EnvironmentConfig
	err := envconfig.Process("", &config)
	return config, err
}

type s3Logger struct {
	sdk zerolog.Logger
}

func getLogger(sdk zerolog.Logger) *s3Logger {
	return &s3Logger{
		sdk,
	}
}

func (logger *s3Logger) Log(v ...interface{}) {
	logger.sdk.Debug().Msg(fmt.Sprint(v...))
}
