package csl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driven"
	"github.com/custodia-labs/kyc-onboard/internal/logger"
)

// Ensure List implements the interface.
var _ driven.ScreeningList = (*List)(nil)

const (
	// DefaultURL is the Trade.gov CSL search endpoint.
	DefaultURL = "https://api.trade.gov/gateway/v2/consolidated_screening_list/search"

	// DefaultTTL is how long loaded entries and API responses are kept.
	DefaultTTL = 24 * time.Hour

	// APIKeyEnv optionally supplies a Trade.gov API key.
	APIKeyEnv = "TRADE_GOV_API_KEY"

	// CacheFile is the conventional name of the local list.
	CacheFile = "csl_cache.json"

	sourceName  = "Trade.gov CSL"
	entriesKey  = "entries"
	remoteLimit = 10
	httpTimeout = 30 * time.Second
)

// Config configures a List.
type Config struct {
	// Path is the local cache file. Empty disables local matching.
	Path string

	// URL is the search endpoint. Empty disables remote lookups.
	URL string

	// APIKey is sent as api_key when set.
	APIKey string

	// TTL overrides DefaultTTL.
	TTL time.Duration

	// HTTPClient overrides the default client.
	HTTPClient *http.Client
}

// List searches the Consolidated Screening List.
type List struct {
	path   string
	url    string
	apiKey string
	client *http.Client
	cache  *gocache.Cache
}

type entry struct {
	Name     string   `json:"name"`
	Source   string   `json:"source"`
	Type     string   `json:"type"`
	Programs []string `json:"programs"`
	Country  string   `json:"country"`
	Remarks  string   `json:"remarks"`
	AltNames []string `json:"alt_names"`
}

type cacheFile struct {
	Entries []entry `json:"entries"`
}

type searchResponse struct {
	Results []entry `json:"results"`
}

// New creates a screening list. At least one of Path or URL should be set.
func New(cfg Config) *List {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: httpTimeout}
	}
	return &List{
		path:   cfg.Path,
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		client: client,
		cache:  gocache.New(ttl, ttl/2),
	}
}

// Sources returns the list names covered.
func (l *List) Sources() []string {
	return []string{sourceName}
}

// Search returns entries resembling name at or above opts.Threshold, best first.
// A source that fails is skipped; an error is returned only when every
// configured source failed.
func (l *List) Search(ctx context.Context, name string, opts driven.ScreeningOptions) ([]driven.ScreeningHit, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: empty screening name", domain.ErrInvalidInput)
	}
	if l.path == "" && l.url == "" {
		return nil, fmt.Errorf("%w: no screening source configured", domain.ErrInvalidInput)
	}

	var (
		candidates []entry
		failures   []error
	)

	if l.url != "" {
		remote, err := l.searchRemote(ctx, name)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("screening list API search for %q failed: %v", name, err)
			failures = append(failures, err)
		}
		candidates = append(candidates, remote...)
	}

	if l.path != "" {
		local, err := l.entries()
		if err != nil {
			logger.Warn("screening list cache unavailable: %v", err)
			failures = append(failures, err)
		}
		candidates = append(candidates, local...)
	}

	configured := 0
	if l.url != "" {
		configured++
	}
	if l.path != "" {
		configured++
	}
	if len(failures) == configured {
		return nil, fmt.Errorf("screening list search: %w", errors.Join(failures...))
	}

	hits := match(name, candidates, opts)
	logger.Debug("screening list: %q matched %d of %d candidates", name, len(hits), len(candidates))
	return hits, nil
}

// Refresh drops cached entries and responses and reloads the local file.
// It returns the number of entries loaded.
func (l *List) Refresh(_ context.Context) (int, error) {
	l.cache.Flush()
	if l.path == "" {
		return 0, nil
	}
	entries, err := l.entries()
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

// match scores candidates, keeping the first occurrence of each name.
func match(name string, candidates []entry, opts driven.ScreeningOptions) []driven.ScreeningHit {
	seen := make(map[string]bool)
	var hits []driven.ScreeningHit
	for _, e := range candidates {
		key := strings.ToLower(strings.TrimSpace(e.Name))
		if key == "" || seen[key] {
			continue
		}
		if opts.EntityType != "" && e.Type != "" && !strings.EqualFold(opts.EntityType, e.Type) {
			continue
		}
		score, matched := bestScore(name, e)
		if score < opts.Threshold {
			continue
		}
		seen[key] = true
		hits = append(hits, toHit(name, matched, score, e))
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if opts.Limit > 0 && len(hits) > opts.Limit {
		hits = hits[:opts.Limit]
	}
	return hits
}

// bestScore compares the query against the primary and alternate names.
func bestScore(name string, e entry) (float64, string) {
	best, matched := Similarity(name, e.Name), e.Name
	for _, alt := range e.AltNames {
		if s := Similarity(name, alt); s > best {
			best, matched = s, alt
		}
	}
	return best, matched
}

func toHit(query, matched string, score float64, e entry) driven.ScreeningHit {
	source := e.Source
	if source == "" {
		source = sourceName
	}
	hit := driven.ScreeningHit{
		Name:        query,
		MatchedName: matched,
		Source:      source,
		EntityType:  e.Type,
		Programs:    e.Programs,
		Remarks:     e.Remarks,
		Score:       score,
	}
	if e.Country != "" {
		hit.Countries = []string{e.Country}
	}
	return hit
}

// entries returns the local list, loading it when the cache has expired.
// A missing file is an empty list.
func (l *List) entries() ([]entry, error) {
	if v, ok := l.cache.Get(entriesKey); ok {
		return v.([]entry), nil
	}

	data, err := os.ReadFile(l.path)
	if errors.Is(err, os.ErrNotExist) {
		l.cache.SetDefault(entriesKey, []entry(nil))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", l.path, err)
	}

	var file cacheFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", l.path, err)
	}
	l.cache.SetDefault(entriesKey, file.Entries)
	logger.Debug("screening list: loaded %d entries from %s", len(file.Entries), l.path)
	return file.Entries, nil
}

func (l *List) searchRemote(ctx context.Context, name string) ([]entry, error) {
	key := "q:" + strings.ToLower(strings.TrimSpace(name))
	if v, ok := l.cache.Get(key); ok {
		return v.([]entry), nil
	}

	params := url.Values{}
	params.Set("q", name)
	params.Set("limit", fmt.Sprintf("%d", remoteLimit))
	if l.apiKey != "" {
		params.Set("api_key", l.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode, body)
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	l.cache.SetDefault(key, result.Results)
	return result.Results, nil
}

func statusError(status int, body []byte) error {
	if status == http.StatusTooManyRequests {
		return fmt.Errorf("csl: %w: %s", domain.ErrRateLimited, strings.TrimSpace(string(body)))
	}
	return fmt.Errorf("csl error (status %d): %s", status, strings.TrimSpace(string(body)))
}
