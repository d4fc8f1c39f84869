// Package images resolves part photos from the vendor's asset host with a
// local cache and a permanent negative cache.
//
// There is no published URL scheme for part images; the variants below are
// all derived from the datasheet filename (for want of a better algorithm)
// and some of them look like typos on the vendor's side. They are probed in
// order and the first hit wins.
package images

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/sync/singleflight"
)

// DefaultImage is the sentinel filename returned when no image can be
// resolved for a part.
const DefaultImage = "no_image.png"

// urlVariants are appended to the asset host, parameterized by the derived
// basename. Distinct date-stamp prefixes and suffix variants, extension
// case included, all observed serving real images.
var urlVariants = []string{
	"/images/lcsc/900x900/20180914_%s_front.jpg",
	"/images/lcsc/900x900/20180914_%s_front_10.jpg",
	"/images/lcsc/900x900/20180914_%s_front_10.JPG",
	"/images/lcsc/900x900/20180914_%s_front_11.jpg",
	"/images/lcsc/900x900/20280914_%s_front.jpg",
	"/images/lcsc/900x900/20180914_%s_1.jpg",
	"/images/lcsc/900x900/20180914_%s_package.jpg",
}

// Part carries the identifiers the resolver derives candidate URLs from.
type Part struct {
	LCSCPart     string
	DatasheetURL string
	Manufacturer string
	MfrPart      string
}

// Resolver probes the asset host for part photos. All dependencies are
// explicit: resolution is a function of the part, the cache index, the
// failed set, and the injected HTTP client.
type Resolver struct {
	client *http.Client
	host   string
	cache  *CacheIndex
	failed *FailedSet
	group  singleflight.Group
	log    *slog.Logger
}

// NewResolver creates a resolver. The client should carry a short timeout
// (about 3 seconds) so a stalled host never stalls the caller for long.
func NewResolver(client *http.Client, host string, cache *CacheIndex, failed *FailedSet, log *slog.Logger) *Resolver {
	return &Resolver{
		client: client,
		host:   strings.TrimSuffix(host, "/"),
		cache:  cache,
		failed: failed,
		log:    log,
	}
}

// Resolve returns the cache filename for the part's image, downloading it
// if needed. Cache hits and known failures return without any network call.
// Network errors of any kind mean "try the next variant"; only exhausting
// the whole list is terminal, and that outcome is cached forever in the
// failed set. Concurrent calls for the same part share one probe.
func (r *Resolver) Resolve(ctx context.Context, p Part) string {
	name := p.LCSCPart + ".jpg"

	if r.cache.Has(name) {
		return name
	}
	if r.failed.Has(name) {
		return DefaultImage
	}

	v, _, _ := r.group.Do(p.LCSCPart, func() (any, error) {
		// A concurrent caller may have finished while we queued.
		if r.cache.Has(name) {
			return name, nil
		}
		if r.failed.Has(name) {
			return DefaultImage, nil
		}
		return r.probe(ctx, p, name), nil
	})
	return v.(string)
}

func (r *Resolver) probe(ctx context.Context, p Part, name string) string {
	basename := deriveBasename(p)

	for _, variant := range urlVariants {
		url := r.host + fmt.Sprintf(variant, basename)

		data, ok := r.fetch(ctx, url)
		if !ok {
			continue
		}
		if err := r.cache.Save(name, data); err != nil {
			r.log.Error("saving image failed", "part", p.LCSCPart, "err", err)
			return DefaultImage
		}
		return name
	}

	// A canceled context fails every variant without trying it; that is an
	// interrupted run, not proof the image is unavailable, so it must not
	// enter the permanent failure list.
	if ctx.Err() != nil {
		return DefaultImage
	}

	if err := r.failed.Add(name); err != nil {
		r.log.Error("recording failed image", "part", p.LCSCPart, "err", err)
	}
	r.log.Debug("no image variant resolved", "part", p.LCSCPart)
	return DefaultImage
}

// fetch downloads one candidate URL. Timeouts, DNS errors and non-200
// statuses are all the same outcome: this variant is unavailable.
func (r *Resolver) fetch(ctx context.Context, url string) ([]byte, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, false
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false
	}
	return data, true
}

// deriveBasename extracts the middle segment of the datasheet filename:
// everything after the first underscore with the extension stripped. Parts
// without a datasheet fall back to a name synthesized from the manufacturer
// identifiers.
func deriveBasename(p Part) string {
	if ds := strings.TrimSpace(p.DatasheetURL); ds != "" {
		if _, rest, ok := strings.Cut(ds, "_"); ok {
			if i := strings.LastIndex(rest, "."); i > 0 {
				return rest[:i]
			}
			return rest
		}
	}
	return p.Manufacturer + "-" + p.MfrPart + "_" + p.LCSCPart
}
