package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/yourname/bloomhealth/internal"
	"github.com/yourname/bloomhealth/internal/health"
)

// HTTP reads samples from a remote health-data gateway:
//
//	POST {base}/users/{id}/authorization        {"kinds": [...]} -> {"granted": bool}
//	GET  {base}/users/{id}/samples/{kind}/latest -> Sample, 204/404 when none
//	GET  {base}/users/{id}/characteristics      -> Profile
//
// Each call is a single attempt. Requests carry no deadline of their own and
// stop only when the caller's context is done.
type HTTP struct {
	client *resty.Client
	logger internal.Logger
}

// ErrUnknownUser is returned when the gateway has no record of the user.
var ErrUnknownUser = errors.New("provider: unknown user")

type authorizationRequest struct {
	Kinds []health.Kind `json:"kinds"`
}

type authorizationResponse struct {
	Granted bool `json:"granted"`
}

func NewHTTP(baseURL string, logger internal.Logger) *HTTP {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Accept", "application/json").
		SetLogger(logger)
	return &HTTP{client: client, logger: logger}
}

func (h *HTTP) For(userID string) health.Provider {
	return &httpProvider{http: h, userID: userID}
}

var _ Source = (*HTTP)(nil)

type httpProvider struct {
	http   *HTTP
	userID string
}

func (p *httpProvider) request(ctx context.Context) *resty.Request {
	return p.http.client.R().
		SetContext(ctx).
		SetPathParam("id", p.userID)
}

func (p *httpProvider) RequestAuthorization(ctx context.Context, kinds []health.Kind) (bool, error) {
	var out authorizationResponse
	resp, err := p.request(ctx).
		SetBody(authorizationRequest{Kinds: kinds}).
		SetResult(&out).
		Post("/users/{id}/authorization")
	if err != nil {
		p.http.logger.Errorf("provider: authorization request failed: %v", err)
		return false, err
	}
	if resp.IsError() {
		return false, fmt.Errorf("provider: authorization returned %d", resp.StatusCode())
	}
	return out.Granted, nil
}

func (p *httpProvider) QueryLatest(ctx context.Context, kind health.Kind) (*health.Sample, error) {
	var out health.Sample
	resp, err := p.request(ctx).
		SetPathParam("kind", string(kind)).
		SetResult(&out).
		Get("/users/{id}/samples/{kind}/latest")
	if err != nil {
		return nil, err
	}
	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusNoContent, http.StatusNotFound:
		return nil, nil
	default:
		return nil, fmt.Errorf("provider: %s query returned %d", kind, resp.StatusCode())
	}
	if out.Kind == "" {
		out.Kind = kind
	}
	return &out, nil
}

func (p *httpProvider) characteristics(ctx context.Context) (Profile, error) {
	var out Profile
	resp, err := p.request(ctx).
		SetResult(&out).
		Get("/users/{id}/characteristics")
	if err != nil {
		return Profile{}, err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return Profile{}, fmt.Errorf("%w: %s", ErrUnknownUser, p.userID)
	}
	if resp.IsError() {
		return Profile{}, fmt.Errorf("provider: characteristics returned %d", resp.StatusCode())
	}
	return out, nil
}

func (p *httpProvider) BloodType(ctx context.Context) (internal.BloodType, error) {
	prof, err := p.characteristics(ctx)
	return prof.BloodType, err
}

func (p *httpProvider) BiologicalSex(ctx context.Context) (internal.BiologicalSex, error) {
	prof, err := p.characteristics(ctx)
	return prof.BiologicalSex, err
}

func (p *httpProvider) DateOfBirth(ctx context.Context) (*time.Time, error) {
	prof, err := p.characteristics(ctx)
	return prof.DateOfBirth, err
}
