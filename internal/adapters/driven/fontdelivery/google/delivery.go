// Package google fetches font assets from the Google Fonts css2 endpoint.
package google

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/typetide/typetide/internal/core/domain"
	"github.com/typetide/typetide/internal/core/ports/driven"
)

// Ensure Delivery implements the interface.
var _ driven.FontDelivery = (*Delivery)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://fonts.googleapis.com/css2"
	DefaultTimeout = 30 * time.Second
)

// Config holds configuration for the Google Fonts delivery service.
type Config struct {
	// BaseURL is the stylesheet endpoint (default: css2).
	BaseURL string

	// Timeout is the fetch timeout (default: 30s).
	Timeout time.Duration
}

// Delivery fetches stylesheets from the Google Fonts API.
type Delivery struct {
	client  *http.Client
	baseURL string
}

// NewDelivery creates a Google Fonts delivery service.
func NewDelivery(cfg Config) *Delivery {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Delivery{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
	}
}

// StylesheetURL builds one css2 URL covering every request of a flush.
// Requests are grouped per family and sorted so identical request sets
// always produce the same URL.
func (d *Delivery) StylesheetURL(requests []driven.AssetRequest) string {
	type face struct {
		italic bool
		weight int
	}
	families := make(map[string][]face)
	chars := make(map[rune]struct{})
	for _, req := range requests {
		families[req.Family] = append(families[req.Family], face{req.Italic, req.Weight})
		for _, r := range req.Characters {
			chars[r] = struct{}{}
		}
	}

	names := make([]string, 0, len(families))
	for name := range families {
		names = append(names, name)
	}
	sort.Strings(names)

	var query strings.Builder
	for _, name := range names {
		faces := families[name]
		sort.Slice(faces, func(i, j int) bool {
			if faces[i].italic != faces[j].italic {
				return !faces[i].italic
			}
			return faces[i].weight < faces[j].weight
		})

		// css2 axis tuple list: ital,wght@0,400;1,700
		specs := make([]string, 0, len(faces))
		seen := make(map[face]struct{}, len(faces))
		for _, f := range faces {
			if _, dup := seen[f]; dup {
				continue
			}
			seen[f] = struct{}{}
			ital := "0"
			if f.italic {
				ital = "1"
			}
			specs = append(specs, ital+","+strconv.Itoa(f.weight))
		}

		query.WriteString("&family=")
		query.WriteString(url.QueryEscape(name))
		query.WriteString(":ital,wght@")
		query.WriteString(strings.Join(specs, ";"))
	}

	text := make([]rune, 0, len(chars))
	for r := range chars {
		text = append(text, r)
	}
	sort.Slice(text, func(i, j int) bool { return text[i] < text[j] })

	u := d.baseURL + "?display=swap" + query.String()
	if len(text) > 0 {
		u += "&text=" + url.QueryEscape(string(text))
	}
	return u
}

// Fetch retrieves the stylesheet, blocking until it is delivered.
func (d *Delivery) Fetch(ctx context.Context, stylesheetURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, stylesheetURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrFontDelivery, err)
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused.
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return fmt.Errorf("%w: read stylesheet: %w", domain.ErrFontDelivery, err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: delivery service returned status %d", domain.ErrFontDelivery, resp.StatusCode)
	}
	return nil
}
