package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"milty-server/internal/milty"
	"milty-server/internal/shared/config"
	"milty-server/internal/shared/errors"
	"milty-server/internal/shared/logger"
	"milty-server/internal/shared/response"
	"milty-server/internal/tile"
)

var jsonHeader = map[string]string{
	"Content-Type": "application/json",
}

// generator serves one draft per Function URL invocation. Drafts are not stored.
type generator struct {
	service *milty.Service
	logger  *slog.Logger
}

func (g *generator) handle(ctx context.Context, event events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	if event.RequestContext.HTTP.Method != "" && event.RequestContext.HTTP.Method != http.MethodPost {
		return g.errResp(errors.MethodNotAllowed(event.RequestContext.HTTP.Method))
	}

	body := event.Body
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return g.errResp(errors.WrapValidation("invalid base64 body", err))
		}
		body = string(decoded)
	}

	var req milty.GenerateRequest
	if body != "" {
		if err := json.Unmarshal([]byte(body), &req); err != nil {
			return g.errResp(errors.WrapValidation("invalid JSON in request body", err))
		}
	}

	draft, err := g.service.Generate(ctx, req)
	if err != nil {
		return g.errResp(err)
	}

	respJSON, err := json.Marshal(draft)
	if err != nil {
		return g.errResp(errors.WrapInternal("failed to encode draft", err))
	}
	return events.LambdaFunctionURLResponse{StatusCode: http.StatusOK, Headers: jsonHeader, Body: string(respJSON)}, nil
}

func (g *generator) errResp(err error) (events.LambdaFunctionURLResponse, error) {
	code := response.StatusCode(err)
	g.logger.Info("Request failed", "status_code", code, "error_type", errors.GetType(err), "error", err)

	body, _ := json.Marshal(response.ErrorResponse{
		Error:   string(errors.GetType(err)),
		Message: err.Error(),
		Code:    code,
	})
	return events.LambdaFunctionURLResponse{StatusCode: code, Headers: jsonHeader, Body: string(body)}, nil
}

func main() {
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize configuration: %v\n", err)
		os.Exit(1)
	}
	cfg := config.GlobalConfig
	log := logger.New(os.Stderr, cfg.Logging)

	catalog, err := tile.DefaultCatalog()
	if err != nil {
		log.Error("Failed to load tile catalog", "error", err)
		os.Exit(1)
	}
	presets, err := milty.NewPresets()
	if err != nil {
		log.Error("Failed to build presets", "error", err)
		os.Exit(1)
	}

	g := &generator{
		service: milty.NewService(tile.NewService(catalog, log), presets, nil, nil, cfg.Milty, log),
		logger:  log.With("component", "lambda"),
	}
	lambda.Start(g.handle)
}
