// file: internals/features/attendance/notifications/transport/sms_gateway.go
package transport

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"absensiku_backend/internals/helpers/errs"
)

/* =========================
   SMS via HTTP gateway
========================= */

type SmsGateway struct {
	client   *resty.Client
	senderID string
}

// NewSmsGateway: gateway SMS JSON generik (Arkesel/Hubtel-style).
// baseURL kosong → channel SMS tidak tersedia (return nil).
func NewSmsGateway(baseURL, apiKey, senderID string) *SmsGateway {
	if baseURL == "" {
		return nil
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second).
		SetHeader("Content-Type", "application/json")
	if apiKey != "" {
		client.SetHeader("api-key", apiKey)
	}
	return &SmsGateway{client: client, senderID: senderID}
}

type smsSendRequest struct {
	Sender     string   `json:"sender"`
	Message    string   `json:"message"`
	Recipients []string `json:"recipients"`
}

type smsSendResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Error selalu ber-kind transport: dispatcher menangkapnya jadi teks
// outcome per channel, tidak pernah dipropagasi ke caller HTTP.
func (g *SmsGateway) SendSms(ctx context.Context, to, body string) error {
	var out smsSendResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(smsSendRequest{
			Sender:     g.senderID,
			Message:    body,
			Recipients: []string{to},
		}).
		SetResult(&out).
		Post("/v2/sms/send")
	if err != nil {
		return errs.Wrap(errs.KindTransport, "sms gateway tidak bisa dihubungi", err)
	}
	if resp.IsError() {
		return errs.New(errs.KindTransport,
			fmt.Sprintf("sms gateway status %d: %s", resp.StatusCode(), out.Message))
	}
	return nil
}
