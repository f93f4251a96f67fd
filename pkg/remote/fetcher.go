// Package remote resolves option lists and default values from HTTP lookup
// endpoints described in the schema. Requests are dependency-gated: when a
// descriptor names snapshot fields it depends on and any of them is unset,
// no request is made and an empty list is returned.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-formrules/pkg/schema"
)

// Doer is the subset of http.Client the fetcher needs.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option customises a Fetcher.
type Option func(*Fetcher)

// WithClient swaps the HTTP client, e.g. for a transport with custom TLS.
func WithClient(client Doer) Option {
	return func(f *Fetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// WithLogger attaches a logger; the default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(f *Fetcher) {
		f.log = logger
	}
}

// Fetcher executes remote-option and remote-default lookups.
type Fetcher struct {
	client Doer
	log    zerolog.Logger
}

// NewFetcher builds a Fetcher with a 10s-timeout default client.
func NewFetcher(options ...Option) *Fetcher {
	f := &Fetcher{
		client: &http.Client{Timeout: 10 * time.Second},
		log:    zerolog.Nop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// Options fetches the option list a descriptor points at, wiring the current
// values of its dependency fields into the query string. An unset dependency
// short-circuits to an empty list without issuing a request.
func (f *Fetcher) Options(ctx context.Context, desc *schema.RemoteOptions, values map[string]any) ([]schema.Option, error) {
	if desc == nil || desc.EndpointURL == "" {
		return nil, nil
	}

	endpoint, err := url.Parse(desc.EndpointURL)
	if err != nil {
		return nil, fmt.Errorf("remote: parse endpoint %q: %w", desc.EndpointURL, err)
	}

	query := endpoint.Query()
	for _, dep := range desc.Dependencies {
		value, ok := values[dep.Field]
		if !ok || value == nil || value == "" {
			f.log.Debug().
				Str("endpoint", desc.EndpointURL).
				Str("dependency", dep.Field).
				Msg("dependency unset, skipping options request")
			return nil, nil
		}
		param := dep.Param
		if param == "" {
			param = dep.Field
		}
		query.Set(param, fmt.Sprint(value))
	}
	endpoint.RawQuery = query.Encode()

	payload, err := f.get(ctx, endpoint.String())
	if err != nil {
		return nil, err
	}

	items, err := navigateList(payload, desc.Path)
	if err != nil {
		return nil, fmt.Errorf("remote: endpoint %q: %w", desc.EndpointURL, err)
	}

	options := make([]schema.Option, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		label, _ := entry[desc.LabelKey].(string)
		options = append(options, schema.Option{Label: label, Value: entry[desc.ValueKey]})
	}
	f.log.Debug().
		Str("endpoint", desc.EndpointURL).
		Int("options", len(options)).
		Msg("fetched remote options")
	return options, nil
}

// DefaultValues fetches an initial value map for the form.
func (f *Fetcher) DefaultValues(ctx context.Context, desc *schema.RemoteDefaults) (map[string]any, error) {
	if desc == nil || desc.EndpointURL == "" {
		return nil, nil
	}

	payload, err := f.get(ctx, desc.EndpointURL)
	if err != nil {
		return nil, err
	}

	node, err := navigate(payload, desc.Path)
	if err != nil {
		return nil, fmt.Errorf("remote: endpoint %q: %w", desc.EndpointURL, err)
	}
	values, ok := node.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("remote: endpoint %q: defaults payload is not an object", desc.EndpointURL)
	}
	return values, nil
}

func (f *Fetcher) get(ctx context.Context, endpoint string) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("remote: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote: GET %s: %w", endpoint, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		io.Copy(io.Discard, res.Body)
		return nil, fmt.Errorf("remote: GET %s: unexpected status %d", endpoint, res.StatusCode)
	}

	var payload any
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("remote: GET %s: decode body: %w", endpoint, err)
	}
	return payload, nil
}

// navigate walks a dot path into a decoded JSON payload.
func navigate(payload any, path string) (any, error) {
	if path == "" {
		return payload, nil
	}
	node := payload
	for _, segment := range strings.Split(path, ".") {
		object, ok := node.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("path %q: segment %q is not an object", path, segment)
		}
		node, ok = object[segment]
		if !ok {
			return nil, fmt.Errorf("path %q: segment %q missing", path, segment)
		}
	}
	return node, nil
}

func navigateList(payload any, path string) ([]any, error) {
	node, err := navigate(payload, path)
	if err != nil {
		return nil, err
	}
	list, ok := node.([]any)
	if !ok {
		return nil, fmt.Errorf("path %q does not lead to a list", path)
	}
	return list, nil
}
