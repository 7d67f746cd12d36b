package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"regexp"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/apib-renderer/renderer/internal/pipeline"
	"github.com/apib-renderer/renderer/internal/result"
)

var nameRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// LambdaEvent is the invocation payload (e.g. from API Gateway).
type LambdaEvent struct {
	Body       string `json:"body"` // API description (raw or base64 if isBase64)
	IsBase64   bool   `json:"isBase64,omitempty"`
	Name       string `json:"name,omitempty"`
	StrictJSON bool   `json:"strictJson,omitempty"`
	Cover      bool   `json:"cover,omitempty"`
}

// LambdaResponse is returned to the client (API Gateway).
type LambdaResponse struct {
	StatusCode int               `json:"statusCode"`
	Success    bool              `json:"success"`
	Errors     []result.Error    `json:"errors,omitempty"`
	Warnings   []result.Warning  `json:"warnings,omitempty"`
	Files      map[string]string `json:"files,omitempty"` // filename -> content (base64)
}

// APIGatewayResponse is the shape expected by API Gateway proxy integration (body = JSON string).
type APIGatewayResponse struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers,omitempty"`
	Body       string            `json:"body"`
}

func handler(ctx context.Context, event LambdaEvent) (APIGatewayResponse, error) {
	out := LambdaResponse{StatusCode: 200}

	body := event.Body
	if event.IsBase64 {
		dec, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			out.StatusCode = 400
			out.Errors = []result.Error{{Type: "invalid_input", Severity: "error", Message: "invalid base64 body: " + err.Error()}}
			return wrap(out), nil
		}
		body = string(dec)
	}
	if event.Name != "" && !nameRe.MatchString(event.Name) {
		out.StatusCode = 400
		out.Errors = []result.Error{{Type: "invalid_input", Severity: "error",
			Message: "invalid name: " + event.Name, Suggestion: "Use letters, digits, - and _ only"}}
		return wrap(out), nil
	}

	opts := pipeline.DefaultOptions()
	opts.StrictJSON = event.StrictJSON
	opts.Cover = event.Cover
	if event.Name != "" {
		opts.Name = event.Name
	}
	p, err := pipeline.New(opts)
	if err != nil {
		out.StatusCode = 500
		out.Errors = []result.Error{result.FromError(err, "")}
		return wrap(out), nil
	}
	res, err := p.Render(ctx, body)
	if err != nil {
		out.StatusCode = 500
		out.Errors = []result.Error{result.FromError(err, "")}
		return wrap(out), nil
	}

	out.Success = res.Success
	out.Errors = res.Errors
	out.Warnings = res.Warnings
	if res.Success && len(res.Files) > 0 {
		out.Files = make(map[string]string)
		for name, content := range res.Files {
			out.Files[name] = base64.StdEncoding.EncodeToString(content)
		}
	}
	if !res.Success {
		out.StatusCode = 422
	}
	return wrap(out), nil
}

func wrap(out LambdaResponse) APIGatewayResponse {
	bodyBytes, _ := json.Marshal(out)
	return APIGatewayResponse{
		StatusCode: out.StatusCode,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(bodyBytes),
	}
}

func main() {
	lambda.Start(handler)
}
