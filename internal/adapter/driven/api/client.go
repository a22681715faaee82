package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/diillson/finance-dashboard-go/internal/logger"
	"github.com/diillson/finance-dashboard-go/internal/shared/types"
)

const (
	headerRequestID = "X-Request-ID"
	maxBodyBytes    = 4 << 20
)

// Client performs JSON calls against the finance service and maps every failure
// onto the shared error taxonomy.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a client for baseURL (for example http://localhost:8080/api).
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log.With().Str("component", "api").Logger(),
	}
}

// request describes one call. authKind is the kind reported for 401/403.
type request struct {
	method      string
	path        string
	query       url.Values
	token       string
	body        io.Reader
	contentType string
	authKind    types.ErrorKind
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, token string, out any) error {
	return c.do(ctx, request{method: http.MethodGet, path: path, query: query, token: token, authKind: types.KindAuthExpired}, out)
}

func (c *Client) postJSON(ctx context.Context, path, token string, authKind types.ErrorKind, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return types.NewError(types.KindUnknown, "cannot encode request", err)
	}
	return c.do(ctx, request{
		method:      http.MethodPost,
		path:        path,
		token:       token,
		body:        bytes.NewReader(payload),
		contentType: "application/json",
		authKind:    authKind,
	}, out)
}

func (c *Client) postMultipart(ctx context.Context, path, token, field, filename, contentType string, data []byte, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return types.NewError(types.KindUnknown, "cannot build upload", err)
	}
	if _, err := part.Write(data); err != nil {
		return types.NewError(types.KindUnknown, "cannot build upload", err)
	}
	if err := w.Close(); err != nil {
		return types.NewError(types.KindUnknown, "cannot build upload", err)
	}

	return c.do(ctx, request{
		method:      http.MethodPost,
		path:        path,
		token:       token,
		body:        &buf,
		contentType: w.FormDataContentType(),
		authKind:    types.KindAuthExpired,
	}, out)
}

func (c *Client) do(ctx context.Context, r request, out any) error {
	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, r.body)
	if err != nil {
		return types.NewError(types.KindNetworkFailure, "cannot build request", err)
	}
	requestID := uuid.NewString()
	req.Header.Set(headerRequestID, requestID)
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	log := c.requestLogger(ctx)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug().Err(err).
			Str("method", r.method).
			Str("path", r.path).
			Str("request_id", requestID).
			Msg("request failed")
		if errors.Is(err, context.Canceled) {
			return types.NewError(types.KindNetworkFailure, "request cancelled", err)
		}
		return types.NewError(types.KindNetworkFailure, "could not reach the server", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return types.NewError(types.KindNetworkFailure, "connection dropped while reading response", err)
	}

	log.Debug().
		Str("method", r.method).
		Str("path", r.path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Str("request_id", requestID).
		Msg("request completed")

	if err := statusError(resp.StatusCode, data, r.authKind); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return types.NewError(types.KindMalformedResponse, "unexpected response from server", err)
	}
	return nil
}

// requestLogger prefers the request-scoped logger the CLI attaches to ctx.
func (c *Client) requestLogger(ctx context.Context) zerolog.Logger {
	if l := logger.FromContext(ctx); l.GetLevel() != zerolog.Disabled {
		return l.With().Str("component", "api").Logger()
	}
	return c.log
}

// statusError maps a non-2xx status to an AppError carrying the server's message when present.
func statusError(status int, body []byte, authKind types.ErrorKind) error {
	if status >= 200 && status < 300 {
		return nil
	}
	msg := serverMessage(body)
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		if msg == "" {
			msg = "not authorized"
		}
		return &types.AppError{Kind: authKind, Status: status, Message: msg}
	default:
		if msg == "" {
			msg = http.StatusText(status)
		}
		return &types.AppError{Kind: types.KindServerError, Status: status, Message: msg}
	}
}

// maxMessageRunes caps a plain-text error body surfaced to the user.
const maxMessageRunes = 200

func serverMessage(body []byte) string {
	var payload struct {
		Message      string `json:"message"`
		ErrorMessage string `json:"errorMessage"`
		Error        string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		text := []rune(strings.TrimSpace(string(body)))
		if len(text) > maxMessageRunes {
			text = text[:maxMessageRunes]
		}
		return string(text)
	}
	switch {
	case payload.Message != "":
		return payload.Message
	case payload.ErrorMessage != "":
		return payload.ErrorMessage
	default:
		return payload.Error
	}
}
