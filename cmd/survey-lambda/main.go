package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/wolfman30/survey-assistant/cmd/mainconfig"
	"github.com/wolfman30/survey-assistant/internal/app/bootstrap"
	appconfig "github.com/wolfman30/survey-assistant/internal/config"
	"github.com/wolfman30/survey-assistant/internal/conversation"
	"github.com/wolfman30/survey-assistant/pkg/logging"
)

const chatPrefix = "/api/chat/"

func main() {
	cfg := appconfig.Load()
	logger := logging.NewWithFormat(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	if cfg.SessionBackend != "redis" {
		logger.Warn("lambda running without redis; sessions will not survive cold starts", "backend", cfg.SessionBackend)
	}

	ctx := context.Background()
	awsCfg, err := mainconfig.OptionalAWSConfig(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}
	rt, err := bootstrap.BuildRuntime(ctx, cfg, awsCfg, logger, bootstrap.Overrides{})
	if err != nil {
		logger.Error("failed to build conversation runtime", "error", err)
		os.Exit(1)
	}
	defer rt.Close()

	lambda.Start(func(ctx context.Context, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		return handle(ctx, rt.Engine, logger, evt)
	})
}

func handle(ctx context.Context, svc conversation.Service, logger *logging.Logger, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	method := strings.ToUpper(strings.TrimSpace(evt.RequestContext.HTTP.Method))
	path := strings.TrimSpace(evt.RequestContext.HTTP.Path)
	if path == "" {
		path = strings.TrimSpace(evt.RawPath)
	}

	if path == "/health" {
		return jsonResponse(http.StatusOK, map[string]string{"status": "ok"}), nil
	}

	if !strings.HasPrefix(path, chatPrefix) {
		return jsonResponse(http.StatusNotFound, errorBody("not found")), nil
	}
	sessionID := strings.Trim(strings.TrimPrefix(path, chatPrefix), "/")
	if sessionID == "" || strings.Contains(sessionID, "/") {
		return jsonResponse(http.StatusNotFound, errorBody("not found")), nil
	}

	switch method {
	case http.MethodPost:
		body, err := decodeBody(evt)
		if err != nil {
			return jsonResponse(http.StatusBadRequest, errorBody("invalid body")), nil
		}
		var req conversation.MessageRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return jsonResponse(http.StatusBadRequest, errorBody("invalid request body")), nil
		}
		reply, err := svc.ProcessTurn(ctx, sessionID, req.Content)
		if err != nil {
			logger.Error("failed to process message", "session_id", sessionID, "error", err)
			failure := conversation.ClassifyError(err)
			return jsonResponse(failure.Status, errorBody(failure.Message)), nil
		}
		return jsonResponse(http.StatusOK, reply), nil
	case http.MethodGet:
		sess, err := svc.Snapshot(ctx, sessionID)
		if errors.Is(err, conversation.ErrSessionNotFound) {
			return jsonResponse(http.StatusNotFound, errorBody("session not found")), nil
		}
		if err != nil {
			logger.Error("failed to load session", "session_id", sessionID, "error", err)
			return jsonResponse(http.StatusInternalServerError, errorBody("failed to load session")), nil
		}
		return jsonResponse(http.StatusOK, conversation.NewSessionView(sess)), nil
	default:
		return jsonResponse(http.StatusMethodNotAllowed, errorBody("method not allowed")), nil
	}
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func jsonResponse(status int, payload any) events.APIGatewayV2HTTPResponse {
	body, err := json.Marshal(payload)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"error":"failed to encode response"}`)
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    map[string]string{"content-type": "application/json"},
		Body:       string(body),
	}
}

func decodeBody(evt events.APIGatewayV2HTTPRequest) ([]byte, error) {
	if !evt.IsBase64Encoded {
		return []byte(evt.Body), nil
	}
	return base64.StdEncoding.DecodeString(evt.Body)
}
