package validation

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/seminarhub/core/internal/domain/entities"
)

const (
	msgNotAnImage   = "photo must link to an image"
	msgCheckFailed  = "could not verify the image"
	maxDrainedBytes = 4 << 10
)

// ImageChecker verifies that a photo URL resolves to an image by issuing
// a GET and inspecting the declared content type.
type ImageChecker struct {
	client  *http.Client
	limiter *rate.Limiter
}

// NewImageChecker creates a checker with the given per-request timeout.
// Outbound requests are limited to perSecond with a burst of the same size.
func NewImageChecker(timeout time.Duration, perSecond int) *ImageChecker {
	if perSecond <= 0 {
		perSecond = 1
	}
	return &ImageChecker{
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(perSecond), perSecond),
	}
}

// NewImageCheckerWithClient is like NewImageChecker but reuses client
func NewImageCheckerWithClient(client *http.Client, perSecond int) *ImageChecker {
	c := NewImageChecker(0, perSecond)
	c.client = client
	return c
}

// Check returns nil when rawURL serves an image/* content type, and a
// *entities.ValidationError on the photo field otherwise.
func (c *ImageChecker) Check(ctx context.Context, rawURL string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return photoError(msgCheckFailed)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return photoError(msgCheckFailed)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return photoError(msgCheckFailed)
	}
	defer resp.Body.Close()
	_, _ = io.CopyN(io.Discard, resp.Body, maxDrainedBytes)

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return photoError(msgNotAnImage)
	}

	return nil
}

func photoError(msg string) error {
	verr := &entities.ValidationError{}
	verr.Add("photo", msg)
	return verr
}

// String describes the checker for logs
func (c *ImageChecker) String() string {
	return fmt.Sprintf("image checker (timeout %s, %.0f req/s)", c.client.Timeout, float64(c.limiter.Limit()))
}
