//go:build ocr

package ocr

import (
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Client wraps the Tesseract engine for page recognition. Requires the
// "ocr" build tag and a system Tesseract installation:
//
//	apt-get install tesseract-ocr tesseract-ocr-tur
//	go build -tags ocr
type Client struct {
	client *gosseract.Client
}

// NewClient creates an OCR client recognizing the given languages, as a
// "+"-separated Tesseract language string (e.g. "tur+eng"). Close the
// client when done to release engine resources.
func NewClient(languages string) (*Client, error) {
	c := gosseract.NewClient()
	if languages != "" {
		if err := c.SetLanguage(strings.Split(languages, "+")...); err != nil {
			c.Close()
			return nil, fmt.Errorf("setting OCR languages: %w", err)
		}
	}
	return &Client{client: c}, nil
}

// Close releases engine resources
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// RecognizePage runs recognition on an encoded page image. Oversized
// images are downsampled before being handed to the engine. Returns the
// recognized text with surrounding whitespace trimmed.
func (c *Client) RecognizePage(imageData []byte) (string, error) {
	prepared, err := PrepareImage(imageData, MaxImageDim)
	if err != nil {
		return "", err
	}
	if err := c.client.SetImageFromBytes(prepared); err != nil {
		return "", fmt.Errorf("setting page image: %w", err)
	}
	text, err := c.client.Text()
	if err != nil {
		return "", fmt.Errorf("recognizing page: %w", err)
	}
	return strings.TrimSpace(text), nil
}
