// internal/storage/archive.go
package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/dpp-backend/internal/config"
)

// CertificateSnapshot is the ownership state written to the archive after a
// ledger write, keyed by product and transaction.
type CertificateSnapshot struct {
	Event          string `json:"event"`
	ProductID      string `json:"productId"`
	CertificateID  string `json:"certificateId,omitempty"`
	OwnerID        string `json:"ownerId"`
	PreviousOwner  string `json:"previousOwnerId,omitempty"`
	TransactionID  string `json:"transactionId"`
	BlockchainHash string `json:"blockchainHash"`
	Timestamp      string `json:"timestamp"`
	Network        string `json:"network"`
}

// Archive stores certificate snapshots. Archiving failures never undo an
// ownership change; callers log and continue.
type Archive interface {
	Put(ctx context.Context, snapshot CertificateSnapshot) (string, error)
}

// NewArchive returns the S3 archive when CERTIFICATE_ARCHIVE=s3 and credentials
// are configured, otherwise a log-only archive.
func NewArchive(cfg *config.Config) (Archive, error) {
	if cfg.Blockchain.CertificateArchiveMode != "s3" {
		return LogArchive{}, nil
	}
	if cfg.AWS.AccessKeyID == "" {
		logrus.Warn("CERTIFICATE_ARCHIVE=s3 without AWS credentials, falling back to log archive")
		return LogArchive{}, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AWS.AccessKeyID,
			cfg.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &S3Archive{
		client: s3.New(sess),
		bucket: cfg.AWS.S3Bucket,
		prefix: cfg.AWS.ArchivePrefix,
	}, nil
}

type S3Archive struct {
	client *s3.S3
	bucket string
	prefix string
}

func (a *S3Archive) Put(ctx context.Context, snapshot CertificateSnapshot) (string, error) {
	body, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}

	key := SnapshotKey(a.prefix, snapshot)
	_, err = a.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String("application/json"),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	return fmt.Sprintf("s3://%s/%s", a.bucket, key), nil
}

// LogArchive records snapshots in the application log only.
type LogArchive struct{}

func (LogArchive) Put(_ context.Context, snapshot CertificateSnapshot) (string, error) {
	logrus.WithFields(logrus.Fields{
		"event":          snapshot.Event,
		"product_id":     snapshot.ProductID,
		"owner_id":       snapshot.OwnerID,
		"transaction_id": snapshot.TransactionID,
	}).Info("Certificate snapshot recorded")
	return "", nil
}

// SnapshotKey is <prefix>/<productId>/<transactionId>.json.
func SnapshotKey(prefix string, snapshot CertificateSnapshot) string {
	return path.Join(prefix, snapshot.ProductID, snapshot.TransactionID+".json")
}
