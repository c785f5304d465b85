// Package inventory lists objects from an AWS S3 Inventory report instead of
// the live bucket.
//
// A report is a manifest.json naming a sequence of CSV, gzipped CSV or
// Parquet data files in the destination bucket. The Lister streams those
// files in manifest order and cuts their rows into pages.
package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Format is the format of the inventory data files.
type Format int

const (
	// FormatCSV indicates CSV data files, optionally gzipped.
	FormatCSV Format = iota
	// FormatParquet indicates Parquet data files.
	FormatParquet
)

// String returns the manifest spelling of the format.
func (f Format) String() string {
	if f == FormatParquet {
		return "Parquet"
	}
	return "CSV"
}

// Manifest is an S3 Inventory manifest.json.
type Manifest struct {
	SourceBucket      string         `json:"sourceBucket"`
	DestinationBucket string         `json:"destinationBucket"`
	Version           string         `json:"version"`
	CreationTimestamp string         `json:"creationTimestamp"`
	FileFormat        string         `json:"fileFormat"`
	FileSchema        string         `json:"fileSchema"`
	Files             []ManifestFile `json:"files"`
}

// ManifestFile is one data file listed in the manifest.
type ManifestFile struct {
	Key         string `json:"key"`
	Size        int64  `json:"size"`
	MD5Checksum string `json:"MD5checksum"`
}

// ObjectAPI is the subset of the S3 client used to read a report.
// *s3.Client satisfies it.
type ObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// ParseManifest decodes and validates a manifest.
func ParseManifest(r io.Reader) (*Manifest, error) {
	var m Manifest
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("validate manifest: %w", err)
	}
	return &m, nil
}

// LoadManifest fetches and parses the manifest at an s3:// URI.
func LoadManifest(ctx context.Context, api ObjectAPI, uri string) (*Manifest, error) {
	bucket, key, err := ParseS3URI(uri)
	if err != nil {
		return nil, fmt.Errorf("parse manifest URI: %w", err)
	}

	resp, err := api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get manifest from s3://%s/%s: %w", bucket, key, err)
	}
	defer resp.Body.Close()

	m, err := ParseManifest(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse manifest from s3://%s/%s: %w", bucket, key, err)
	}
	return m, nil
}

func (m *Manifest) validate() error {
	if m.DestinationBucket == "" {
		return errors.New("manifest missing destinationBucket")
	}
	if m.FileFormat != "" {
		upper := strings.ToUpper(m.FileFormat)
		if upper != "CSV" && upper != "PARQUET" {
			return fmt.Errorf("unsupported file format: %s (supported: CSV, Parquet)", m.FileFormat)
		}
	}
	return nil
}

// DetectFormat returns the declared fileFormat, falling back to the
// extension of the first data file and then to CSV.
func (m *Manifest) DetectFormat() Format {
	switch strings.ToUpper(m.FileFormat) {
	case "CSV":
		return FormatCSV
	case "PARQUET":
		return FormatParquet
	}
	if len(m.Files) > 0 && strings.HasSuffix(strings.ToLower(m.Files[0].Key), ".parquet") {
		return FormatParquet
	}
	return FormatCSV
}

// DataBucket returns the bucket holding the data files. The manifest may
// name it as a bucket ARN.
func (m *Manifest) DataBucket() (string, error) {
	return ParseBucketIdentifier(m.DestinationBucket)
}

// Columns resolves the CSV columns needed for records from FileSchema.
func (m *Manifest) Columns() (Columns, error) {
	var cols Columns
	var err error
	if cols.Key, err = m.columnIndex("Key"); err != nil {
		return cols, err
	}
	if cols.Size, err = m.columnIndex("Size"); err != nil {
		return cols, err
	}
	if cols.LastModified, err = m.columnIndex("LastModifiedDate"); err != nil {
		return cols, err
	}
	return cols, nil
}

func (m *Manifest) columnIndex(name string) (int, error) {
	for i, col := range strings.Split(m.FileSchema, ",") {
		if strings.EqualFold(strings.TrimSpace(col), name) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("column %q not found in schema: %s", name, m.FileSchema)
}

// ParseBucketIdentifier returns the bucket name from a plain bucket name or
// an S3 bucket ARN such as "arn:aws:s3:::my-bucket".
func ParseBucketIdentifier(bucketOrARN string) (string, error) {
	if bucketOrARN == "" {
		return "", errors.New("empty bucket identifier")
	}
	if !strings.HasPrefix(bucketOrARN, "arn:") {
		if strings.Contains(bucketOrARN, "://") {
			return "", fmt.Errorf("invalid bucket identifier %q: looks like a URI", bucketOrARN)
		}
		return bucketOrARN, nil
	}

	// arn:partition:service:region:account:resource
	parts := strings.Split(bucketOrARN, ":")
	if len(parts) < 6 {
		return "", fmt.Errorf("invalid ARN %q: expected at least 6 colon-separated parts", bucketOrARN)
	}
	if parts[2] != "s3" {
		return "", fmt.Errorf("invalid S3 ARN %q: service must be 's3', got %q", bucketOrARN, parts[2])
	}
	resource := strings.Join(parts[5:], ":")
	resource, _, _ = strings.Cut(resource, "/")
	if resource == "" {
		return "", fmt.Errorf("invalid S3 ARN %q: missing bucket name", bucketOrARN)
	}
	return resource, nil
}

// ParseS3URI splits an s3://bucket/key URI.
func ParseS3URI(uri string) (bucket, key string, err error) {
	if !strings.HasPrefix(uri, "s3://") {
		return "", "", errors.New("invalid S3 URI: must start with s3://")
	}
	bucket, key, _ = strings.Cut(strings.TrimPrefix(uri, "s3://"), "/")
	if bucket == "" {
		return "", "", errors.New("invalid S3 URI: missing bucket name")
	}
	return bucket, key, nil
}
