// file: internals/features/sync/identity/identity_client.go
package identity

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	reconcileService "absensiku_backend/internals/features/sync/reconcile/service"
	"absensiku_backend/internals/helpers/errs"
)

// Source: akses read-only ke store identitas biometrik on-prem.
// Tidak ada write-back; pipeline hanya menarik record untuk direkonsiliasi.
type Source interface {
	FindByName(ctx context.Context, name string) (*reconcileService.IdentityRecord, error)
}

/* =========================
   HTTP client (agent local API)
========================= */

type HTTPSource struct {
	client *resty.Client
}

// NewHTTPSource membangun client ke API lokal agent.
// baseURL kosong = sumber identitas tidak dikonfigurasi (nil Source).
func NewHTTPSource(baseURL, apiKey string) *HTTPSource {
	if baseURL == "" {
		return nil
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetHeader("Accept", "application/json")
	if apiKey != "" {
		client.SetHeader("X-Api-Key", apiKey)
	}
	return &HTTPSource{client: client}
}

type identityEnvelope struct {
	Success bool                             `json:"success"`
	Data    *reconcileService.IdentityRecord `json:"data"`
}

func (s *HTTPSource) FindByName(ctx context.Context, name string) (*reconcileService.IdentityRecord, error) {
	var out identityEnvelope
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("name", name).
		SetResult(&out).
		Get("/identities")
	if err != nil {
		return nil, errs.Wrap(errs.KindDependencyUnavailable, "identity source tidak bisa dihubungi", err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
		if out.Data == nil {
			return nil, errs.NotFound("identity record tidak ditemukan")
		}
		return out.Data, nil
	case http.StatusNotFound:
		return nil, errs.NotFound("identity record tidak ditemukan")
	default:
		return nil, errs.Wrap(errs.KindDependencyUnavailable,
			fmt.Sprintf("identity source balas status %d", resp.StatusCode()), nil)
	}
}
