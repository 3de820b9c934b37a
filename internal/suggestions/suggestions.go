// Package suggestions fetches search suggestions from DuckDuckGo's
// autocomplete endpoint.
package suggestions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/adamwoolhether/httpkit/endpoint"
	"github.com/adamwoolhether/httpkit/reachability"
	"github.com/adamwoolhether/httpkit/restclient"
	"github.com/adamwoolhether/httpkit/server"
	"github.com/adamwoolhether/httpkit/stream"
)

// DuckDuckGo is the autocomplete server.
type DuckDuckGo struct {
	desc server.Description
}

// New returns the public DuckDuckGo server.
func New() DuckDuckGo {
	return DuckDuckGo{desc: server.MustDescription("duckduckgo.com", "duckduckgo.com")}
}

// At returns a DuckDuckGo server reached at desc instead.
func At(desc server.Description) DuckDuckGo {
	return DuckDuckGo{desc: desc}
}

// Description implements server.Server.
func (d DuckDuckGo) Description() server.Description {
	return d.desc
}

// List is an OpenSearch suggestions response: ["query", ["a", "b"]].
type List struct {
	Query       string
	Suggestions []string
}

// UnmarshalJSON decodes the two element OpenSearch array.
func (l *List) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decoding list: %w", err)
	}
	if len(raw) < 2 {
		return errors.New("suggestions list must hold a query and its suggestions")
	}

	if err := json.Unmarshal(raw[0], &l.Query); err != nil {
		return fmt.Errorf("decoding query: %w", err)
	}
	if err := json.Unmarshal(raw[1], &l.Suggestions); err != nil {
		return fmt.Errorf("decoding suggestions: %w", err)
	}

	return nil
}

// Endpoint returns the autocomplete endpoint for query.
func Endpoint(query string) endpoint.Endpoint[List, DuckDuckGo] {
	return endpoint.New[List, DuckDuckGo](endpoint.MethodGet, "ac/",
		endpoint.WithQueryItems(
			endpoint.QueryItem{Name: "q", Value: query},
			endpoint.QueryItem{Name: "type", Value: "list"},
		),
	)
}

// Fetch returns the suggestions for query.
func Fetch[R reachability.Adapter](ctx context.Context, c *restclient.Client[DuckDuckGo, R], query string) ([]string, error) {
	list, err := restclient.Await(ctx, c, Endpoint(query), "")
	if err != nil {
		return nil, fmt.Errorf("fetching suggestions for %q: %w", query, err)
	}

	return list.Suggestions, nil
}

// Stream returns a producer emitting the suggestions for query once per start.
func Stream[R reachability.Adapter](c *restclient.Client[DuckDuckGo, R], query string) stream.Producer[List] {
	return restclient.StreamRequest(c, Endpoint(query), "")
}
