package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/reputationlabs/repstress/internal/auth"
	"github.com/reputationlabs/repstress/internal/runner"
)

// rankingPath is the fixed endpoint template the target is interpolated into.
const rankingPath = "/rest/Reputation+API/1.0.0/domain/ranking/"

// RankingURL derives the request URL for a target deterministically from
// the configured base URL.
func RankingURL(base, target string) string {
	return strings.TrimRight(base, "/") + rankingPath + url.PathEscape(target)
}

// ReputationRequester performs one timed GET against the reputation ranking
// endpoint for a given target. It implements runner.Requester: every failure
// mode is converted into a tagged outcome, never returned as an error.
type ReputationRequester struct {
	client *http.Client
	base   string
	auth   auth.Provider
}

func NewReputationRequester(client *http.Client, base string, provider auth.Provider) *ReputationRequester {
	return &ReputationRequester{
		client: client,
		base:   base,
		auth:   provider,
	}
}

func (r *ReputationRequester) Do(ctx context.Context, target string) runner.Outcome {
	if ctx == nil {
		ctx = context.Background()
	}

	out := runner.Outcome{Target: target}
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, RankingURL(r.base, target), nil)
	if err != nil {
		out.Kind = runner.KindTransportError
		out.Err = fmt.Errorf("build request: %w", err)
		out.Elapsed = time.Since(start)
		return out
	}
	if r.auth != nil {
		if err := r.auth.InjectHeader(ctx, req); err != nil {
			out.Kind = runner.KindTransportError
			out.Err = fmt.Errorf("inject auth header: %w", err)
			out.Elapsed = time.Since(start)
			return out
		}
	}

	resp, err := r.client.Do(req)
	if err != nil {
		out.Kind = runner.KindTransportError
		out.Err = err
		out.Elapsed = time.Since(start)
		return out
	}
	defer resp.Body.Close()

	// Elapsed covers the full download so it is comparable with prior
	// reports, which timed the complete response.
	body, readErr := io.ReadAll(resp.Body)
	out.Elapsed = time.Since(start)
	out.Status = resp.StatusCode

	if readErr != nil {
		out.Kind = runner.KindTransportError
		out.Err = fmt.Errorf("read body: %w", readErr)
		return out
	}

	if resp.StatusCode != http.StatusOK {
		out.Kind = runner.KindHTTPError
		return out
	}

	if !gjson.ValidBytes(body) {
		out.Kind = runner.KindParseError
		out.Payload = body
		return out
	}

	out.Kind = runner.KindSuccess
	out.Payload = body
	return out
}
