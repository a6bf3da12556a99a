package utils

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/nodewee/page-ocr/pkg/constants"
)

// DefaultHTTPClient is used for document downloads
var DefaultHTTPClient = &http.Client{Timeout: 5 * time.Minute}

// DownloadFile fetches url into dest. Responses larger than
// constants.MaxFileSize are rejected and the partial file is removed.
func DownloadFile(ctx context.Context, client *http.Client, url, dest string) (err error) {
	if client == nil {
		client = DefaultHTTPClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return NewValidationError("invalid document URL", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return WrapError(err, ErrorTypeNetwork, "failed to download document")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return NewError(ErrorTypeNetwork,
			fmt.Sprintf("failed to download document: HTTP %d", resp.StatusCode), nil)
	}

	f, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, constants.DefaultFilePermission)
	if err != nil {
		return WrapError(err, ErrorTypeIO, "failed to create download target")
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = WrapError(cerr, ErrorTypeIO, "failed to write downloaded document")
		}
		if err != nil {
			os.Remove(dest)
		}
	}()

	n, err := io.Copy(f, io.LimitReader(resp.Body, constants.MaxFileSize+1))
	if err != nil {
		return WrapError(err, ErrorTypeNetwork, "failed to read document body")
	}
	if n > constants.MaxFileSize {
		return NewValidationError(
			fmt.Sprintf("downloaded document exceeds %d bytes", constants.MaxFileSize), nil)
	}
	return nil
}
