// Command chat-lambda serves the booking assistant behind API Gateway HTTP APIs.
package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"net/http"
	"strings"
	_ "time/tzdata"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/wolfman30/salon-booking-assistant/cmd/mainconfig"
	"github.com/wolfman30/salon-booking-assistant/internal/app/bootstrap"
	appconfig "github.com/wolfman30/salon-booking-assistant/internal/config"
	"github.com/wolfman30/salon-booking-assistant/pkg/logging"
)

func main() {
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	app, err := bootstrap.Build(context.Background(), cfg, logger, bootstrap.WithAWSConfigLoader(mainconfig.AWSLoader(cfg)))
	if err != nil {
		logger.Error("failed to build application", "error", err)
		panic(err)
	}
	lambda.Start(func(ctx context.Context, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		return handle(ctx, app.Handler, evt)
	})
}

// handle replays an API Gateway v2 event through the HTTP handler.
func handle(ctx context.Context, h http.Handler, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	method := strings.ToUpper(strings.TrimSpace(evt.RequestContext.HTTP.Method))
	path := strings.TrimSpace(evt.RawPath)
	if path == "" {
		path = evt.RequestContext.HTTP.Path
	}
	if strings.HasSuffix(path, "/ws") {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusNotImplemented, Body: "websocket chat is not available on this endpoint"}, nil
	}

	body, err := decodeBody(evt)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusBadRequest, Body: `{"error":"Invalid request"}`}, nil
	}

	target := path
	if evt.RawQueryString != "" {
		target += "?" + evt.RawQueryString
	}
	req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(body))
	if err != nil {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusBadRequest, Body: `{"error":"Invalid request"}`}, nil
	}
	for k, v := range evt.Headers {
		req.Header.Set(k, v)
	}
	if ip := evt.RequestContext.HTTP.SourceIP; ip != "" {
		req.RemoteAddr = ip + ":0"
		req.Header.Set("X-Real-Ip", ip)
	}

	rw := newBufferedResponse()
	h.ServeHTTP(rw, req)

	out := events.APIGatewayV2HTTPResponse{
		StatusCode: rw.status,
		Body:       rw.body.String(),
		Headers:    map[string]string{},
	}
	for k := range rw.header {
		out.Headers[strings.ToLower(k)] = rw.header.Get(k)
	}
	return out, nil
}

func decodeBody(evt events.APIGatewayV2HTTPRequest) ([]byte, error) {
	if !evt.IsBase64Encoded {
		return []byte(evt.Body), nil
	}
	return base64.StdEncoding.DecodeString(evt.Body)
}

// bufferedResponse collects a handler's output for the Lambda response.
type bufferedResponse struct {
	header http.Header
	body   bytes.Buffer
	status int
}

func newBufferedResponse() *bufferedResponse {
	return &bufferedResponse{header: http.Header{}, status: http.StatusOK}
}

func (b *bufferedResponse) Header() http.Header { return b.header }

func (b *bufferedResponse) Write(p []byte) (int, error) { return b.body.Write(p) }

func (b *bufferedResponse) WriteHeader(code int) { b.status = code }
