package transport

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"absensiku_backend/internals/helpers/errs"
)

func TestNewSendersUnconfigured(t *testing.T) {
	assert.Nil(t, NewSmtpEmailSender("", "587", "u", "p", "f"))
	assert.Nil(t, NewSmsGateway("", "key", "Absensiku"))
}

// Relay yang hang tidak boleh menahan sender lewat dari deadline ctx.
func TestSmtpSenderHonorsDeadline(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	// accept lalu diam: tidak pernah kirim greeting SMTP
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		_, _ = io.Copy(io.Discard, conn)
	}()

	host, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)

	s := NewSmtpEmailSender(host, port, "", "", "noreply@absensiku.id")
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	err = s.SendEmail(ctx, "wali@example.com", "Kehadiran", "tes")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestSmsGatewayErrorsAreTransportKind(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"status":"error","message":"provider down"}`))
	}))
	defer srv.Close()

	g := NewSmsGateway(srv.URL, "key", "Absensiku")
	err := g.SendSms(context.Background(), "+233555", "tes")
	require.Error(t, err)
	assert.Equal(t, errs.KindTransport, errs.KindOf(err))
	assert.Contains(t, err.Error(), "502")
}

func TestSmsGatewayUnreachableIsTransportKind(t *testing.T) {
	g := NewSmsGateway("http://127.0.0.1:1", "key", "Absensiku")
	err := g.SendSms(context.Background(), "+233555", "tes")
	require.Error(t, err)
	assert.Equal(t, errs.KindTransport, errs.KindOf(err))
}
