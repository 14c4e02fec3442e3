//go:build !ocr

package ocr

import "errors"

// ErrOCRNotEnabled is returned when recognition is requested but OCR
// support was not compiled in. Rebuild with -tags ocr to enable it.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// Client is the stub recognition client used when the "ocr" build tag is
// not set. All recognition calls fail with ErrOCRNotEnabled.
type Client struct{}

// NewClient returns an error indicating OCR support is not enabled
func NewClient(languages string) (*Client, error) {
	return nil, ErrOCRNotEnabled
}

// Close is a no-op for the stub client
func (c *Client) Close() error {
	return nil
}

// RecognizePage returns an error indicating OCR support is not enabled
func (c *Client) RecognizePage(imageData []byte) (string, error) {
	return "", ErrOCRNotEnabled
}
