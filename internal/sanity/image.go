package sanity

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const imageCDN = "https://cdn.sanity.io/images"

// ImageOptions are the transformation parameters of an image URL.
type ImageOptions struct {
	Width   int
	Height  int
	Fit     string // "clip", "crop", "fill", "max", "min", "scale"
	Quality int
	Format  string // forces an output format; empty lets the CDN pick via auto=format
}

// ImageBuilder turns image asset references into CDN URLs.
type ImageBuilder struct {
	projectID string
	dataset   string
}

// NewImageBuilder creates a builder for one project and dataset.
func NewImageBuilder(projectID, dataset string) ImageBuilder {
	return ImageBuilder{projectID: projectID, dataset: dataset}
}

// URL builds the CDN URL for an asset reference such as
// "image-Tb9Ew8CXIwaY6R1kjMvI0uRR-2000x3000-jpg".
func (b ImageBuilder) URL(ref string, opts ImageOptions) (string, error) {
	id, dims, ext, err := parseImageRef(ref)
	if err != nil {
		return "", err
	}

	u := fmt.Sprintf("%s/%s/%s/%s-%s.%s", imageCDN, b.projectID, b.dataset, id, dims, ext)

	q := url.Values{}
	if opts.Width > 0 {
		q.Set("w", strconv.Itoa(opts.Width))
	}
	if opts.Height > 0 {
		q.Set("h", strconv.Itoa(opts.Height))
	}
	if opts.Fit != "" {
		q.Set("fit", opts.Fit)
	}
	if opts.Quality > 0 {
		q.Set("q", strconv.Itoa(opts.Quality))
	}
	if opts.Format != "" {
		q.Set("fm", opts.Format)
	} else {
		q.Set("auto", "format")
	}
	return u + "?" + q.Encode(), nil
}

func parseImageRef(ref string) (id, dims, ext string, err error) {
	parts := strings.Split(ref, "-")
	if len(parts) != 4 || parts[0] != "image" {
		return "", "", "", fmt.Errorf("sanity: malformed image reference %q", ref)
	}
	id, dims, ext = parts[1], parts[2], parts[3]
	wh := strings.Split(dims, "x")
	if len(wh) != 2 {
		return "", "", "", fmt.Errorf("sanity: malformed image dimensions in %q", ref)
	}
	for _, n := range wh {
		if _, err := strconv.Atoi(n); err != nil {
			return "", "", "", fmt.Errorf("sanity: malformed image dimensions in %q", ref)
		}
	}
	return id, dims, ext, nil
}
