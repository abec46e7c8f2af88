// Package sheets talks to the spreadsheet web app that holds every office record.
package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultTimeout  = 10 * time.Second
	DefaultCacheTTL = 5 * time.Minute
	// NoCache as Options.CacheTTL sends every Fetch to the store.
	NoCache time.Duration = -1

	// SuccessBody is the only response the store sends for an accepted write.
	SuccessBody = "OK"
)

// Record is one row as the store returns it.
type Record = map[string]any

// Options configures a Gateway.
type Options struct {
	URL       string
	Timeout   time.Duration
	CacheTTL  time.Duration     // zero uses DefaultCacheTTL, negative disables caching
	Cache     Cache             // defaults to an in-process MemoryCache
	Transport http.RoundTripper // overrides the HTTP transport, used by tests
	Now       func() time.Time  // clock for date defaults
}

// Gateway fetches and submits records against the external store.
type Gateway struct {
	client *resty.Client
	url    string
	ttl    time.Duration
	cache  Cache
	group  singleflight.Group
	now    func() time.Time
}

// New creates a gateway for the store at opts.URL.
func New(opts Options) *Gateway {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.CacheTTL == 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.Cache == nil {
		opts.Cache = NewMemoryCache()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	client := resty.New().
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json")
	if opts.Transport != nil {
		client.SetTransport(opts.Transport)
	}

	return &Gateway{
		client: client,
		url:    opts.URL,
		ttl:    opts.CacheTTL,
		cache:  opts.Cache,
		now:    opts.Now,
	}
}

// Fetch returns every record of recordType. Results are cached per record type
// for the configured TTL; failures are never cached. On error the returned
// slice is empty, never nil.
//
// Concurrent misses for one record type share a single request. That request
// is detached from any one caller's cancellation and bounded by the client
// timeout; a caller whose ctx ends stops waiting without failing the others.
func (g *Gateway) Fetch(ctx context.Context, recordType string) ([]Record, error) {
	caching := g.ttl > 0
	if caching {
		if body, ok := g.cache.Get(ctx, recordType); ok {
			if records, err := decodeArray(body); err == nil {
				return records, nil
			}
			g.cache.Delete(ctx, recordType)
		}
	}

	shared := context.WithoutCancel(ctx)
	ch := g.group.DoChan(recordType, func() (any, error) {
		body, err := g.fetchRemote(shared, recordType)
		if err != nil {
			return nil, err
		}
		if caching {
			g.cache.Set(shared, recordType, body, g.ttl)
		}
		return body, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return []Record{}, &GatewayError{Kind: Unreachable, RecordType: recordType, Err: ctx.Err()}
	}
	if res.Err != nil {
		return []Record{}, res.Err
	}

	records, err := decodeArray(res.Val.([]byte))
	if err != nil {
		return []Record{}, &GatewayError{Kind: MalformedResponse, RecordType: recordType, Err: err}
	}
	return records, nil
}

func (g *Gateway) fetchRemote(ctx context.Context, recordType string) ([]byte, error) {
	start := time.Now()
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParam("tipo", recordType).
		Get(g.url)
	if err != nil {
		observe("fetch", "unreachable", start)
		log.Warn().Err(err).Str("tipo", recordType).Msg("External store unreachable")
		return nil, &GatewayError{Kind: Unreachable, RecordType: recordType, Err: err}
	}
	if resp.IsError() {
		observe("fetch", "unreachable", start)
		log.Warn().Int("status", resp.StatusCode()).Str("tipo", recordType).Msg("External store returned error status")
		return nil, &GatewayError{Kind: Unreachable, RecordType: recordType, StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	body := resp.Body()
	if _, err := decodeArray(body); err != nil {
		observe("fetch", "malformed", start)
		log.Warn().Err(err).Str("tipo", recordType).Msg("External store returned a non-array body")
		return nil, &GatewayError{Kind: MalformedResponse, RecordType: recordType, Body: resp.String(), Err: err}
	}

	observe("fetch", "ok", start)
	return body, nil
}

// Submit appends one record of recordType. record is any JSON-encodable value;
// its fields are merged with the "tipo" discriminator. The write succeeds only if
// the store answers with the literal OK (surrounding whitespace ignored).
func (g *Gateway) Submit(ctx context.Context, recordType string, record any) error {
	payload, err := toPayload(record)
	if err != nil {
		return err
	}
	payload["tipo"] = recordType

	start := time.Now()
	resp, err := g.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(g.url)
	if err != nil {
		observe("submit", "unreachable", start)
		log.Warn().Err(err).Str("tipo", recordType).Msg("External store unreachable on submit")
		return &GatewayError{Kind: Unreachable, RecordType: recordType, Err: err}
	}

	body := resp.String()
	if strings.TrimSpace(body) != SuccessBody {
		observe("submit", "rejected", start)
		log.Warn().Int("status", resp.StatusCode()).Str("tipo", recordType).Str("body", body).Msg("External store rejected record")
		return &GatewayError{Kind: Rejected, RecordType: recordType, StatusCode: resp.StatusCode(), Body: body}
	}

	observe("submit", "ok", start)
	log.Info().Str("tipo", recordType).Msg("Record submitted to external store")
	return nil
}

// Invalidate drops the cached records of recordType.
func (g *Gateway) Invalidate(ctx context.Context, recordType string) {
	g.cache.Delete(ctx, recordType)
}

func decodeArray(body []byte) ([]Record, error) {
	var records []Record
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

func toPayload(record any) (map[string]any, error) {
	if m, ok := record.(map[string]any); ok {
		out := make(map[string]any, len(m)+1)
		for k, v := range m {
			out[k] = v
		}
		return out, nil
	}
	b, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}
