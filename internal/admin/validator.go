package admin

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

const (
	DefaultValidationTimeout = 7 * time.Second

	// MaxImageBytes caps files picked in the admin panel.
	MaxImageBytes = 5 * 1024 * 1024

	// sources fetched for validation may be larger than local picks
	maxFetchBytes = 20 * 1024 * 1024
)

const (
	msgTimeout    = "Timeout validation image"
	msgUnreadable = "Impossible de lire l'image"
	msgMissing    = "Image manquante"
)

var errMissing = errors.New("empty image source")

// Validator decodes images and checks them against Rules within a bounded
// time. Any failure to fetch or decode fails the check.
type Validator struct {
	http    *http.Client
	timeout time.Duration
}

func NewValidator(timeout time.Duration) *Validator {
	if timeout <= 0 {
		timeout = DefaultValidationTimeout
	}
	return &Validator{http: &http.Client{}, timeout: timeout}
}

// Validate checks an image reference: a data URL or an http(s) URL.
func (v *Validator) Validate(ctx context.Context, src string, r Rules) Check {
	return v.run(ctx, r, func(ctx context.Context) ([]byte, error) {
		return v.load(ctx, strings.TrimSpace(src))
	})
}

// ValidateBytes checks raw image data.
func (v *Validator) ValidateBytes(ctx context.Context, data []byte, r Rules) Check {
	return v.run(ctx, r, func(context.Context) ([]byte, error) { return data, nil })
}

type decoded struct {
	w, h int
	err  error
}

func (v *Validator) run(ctx context.Context, r Rules, load func(context.Context) ([]byte, error)) Check {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	done := make(chan decoded, 1)
	go func() {
		data, err := load(ctx)
		if err != nil {
			done <- decoded{err: err}
			return
		}
		img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
		if err != nil {
			done <- decoded{err: err}
			return
		}
		b := img.Bounds()
		done <- decoded{w: b.Dx(), h: b.Dy()}
	}()

	select {
	case <-ctx.Done():
		return Check{Message: msgTimeout}
	case res := <-done:
		switch {
		case errors.Is(res.err, errMissing):
			return Check{Message: msgMissing}
		case errors.Is(res.err, context.DeadlineExceeded):
			return Check{Message: msgTimeout}
		case res.err != nil:
			return Check{Message: msgUnreadable}
		}
		return CheckDimensions(res.w, res.h, r)
	}
}

func (v *Validator) load(ctx context.Context, src string) ([]byte, error) {
	if src == "" {
		return nil, errMissing
	}
	if strings.HasPrefix(src, "data:") {
		_, data, err := ParseDataURL(src)
		return data, err
	}

	u, err := url.Parse(src)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported image source %q", u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := v.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image source returned %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
}

// DataURL embeds data inline, the fallback when remote upload fails.
func DataURL(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ParseDataURL decodes a base64 data URL.
func ParseDataURL(src string) (contentType string, data []byte, err error) {
	rest, ok := strings.CutPrefix(src, "data:")
	if !ok {
		return "", nil, errors.New("not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return "", nil, errors.New("data URL is not base64")
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode data URL: %w", err)
	}
	return strings.TrimSuffix(meta, ";base64"), data, nil
}
