package util

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// hook for tests to swap the client construction
var newGCSClientHook = func(ctx context.Context) (*storage.Client, error) {
	return storage.NewClient(ctx)
}

// UploadBase64ToGCS writes a base64 payload (optionally a data: URL) to the
// bucket and returns the gs:// URL with the byte size.
func UploadBase64ToGCS(ctx context.Context, base64Data, contentType, bucketName, objectName string) (string, int64, error) {
	client, err := newGCSClientHook(ctx)
	if err != nil {
		return "", 0, err
	}
	defer client.Close()

	// strip "data:application/pdf;base64," prefix
	if strings.Contains(base64Data, ",") {
		parts := strings.Split(base64Data, ",")
		base64Data = parts[1]
	}

	data, err := base64.StdEncoding.DecodeString(base64Data)
	if err != nil {
		return "", 0, err
	}

	w := client.Bucket(bucketName).Object(objectName).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}

	sizeBytes, err := w.Write(data)
	if err != nil {
		return "", 0, err
	}

	if err := w.Close(); err != nil {
		return "", 0, err
	}

	return fmt.Sprintf("gs://%s/%s", bucketName, objectName), int64(sizeBytes), nil
}

// DeleteFromGCS removes an object from the bucket. An already-gone object is
// not an error.
func DeleteFromGCS(ctx context.Context, bucketName, objectName string) error {
	client, err := newGCSClientHook(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	err = client.Bucket(bucketName).Object(objectName).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	return err
}

// AttachmentObjectName builds the object path for a file-field attachment:
// attachments/<user>/<field>/<timestamp>_<rand>_<name><ext>
func AttachmentObjectName(userID uint, fieldName, fileName, mimeType string) string {
	ext := ExtFromFilenameOrMime(fileName, mimeType)
	base := strings.TrimSuffix(fileName, ext)
	return fmt.Sprintf(
		"attachments/%d/%s/%s_%s_%s%s",
		userID,
		SanitizePart(fieldName),
		time.Now().UTC().Format("20060102150405"),
		uuid.NewString()[:8],
		SanitizePart(base),
		ext,
	)
}

// Builds a simple GCS URL. If your objects are private and you use signed
// URLs, regenerate signed URLs instead of using this.
func PublicGCSURL(bucket, objectPath string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, objectPath)
}

// Extract object path from common GCS URL formats.
// Supports:
//   - https://storage.googleapis.com/<bucket>/<object>
//   - https://<bucket>.storage.googleapis.com/<object>
//   - signed URLs (query params are ignored)
func ExtractObjectPathFromGCSURL(bucket, raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	u.RawQuery = ""
	u.Fragment = ""

	host := u.Host
	p := strings.TrimPrefix(u.Path, "/")

	if strings.EqualFold(host, "storage.googleapis.com") {
		prefix := bucket + "/"
		if strings.HasPrefix(p, prefix) {
			return strings.TrimPrefix(p, prefix), nil
		}
		return p, nil
	}

	if strings.HasSuffix(strings.ToLower(host), ".storage.googleapis.com") {
		return p, nil
	}

	// Unknown host; best effort: return path
	return p, nil
}
