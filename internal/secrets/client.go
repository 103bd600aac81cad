// Package secrets loads the token signing key from AWS Secrets Manager.
package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/smithy-go"

	"transfers/pkg/logger"
)

const (
	resourceNotFoundException = "ResourceNotFoundException"
	accessDeniedException     = "AccessDeniedException"
)

var (
	ErrSecretNotFound = errors.New("secret not found")
	ErrSecretEmpty    = errors.New("secret value is empty")
	ErrAccessDenied   = errors.New("access denied to secret")
	ErrFieldNotFound  = errors.New("secret field not found")
)

// API is the subset of the Secrets Manager client used here.
type API interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

type Client struct {
	api API
}

func New(awsConfig aws.Config) *Client {
	return &Client{api: secretsmanager.NewFromConfig(awsConfig)}
}

func NewWithAPI(api API) *Client {
	return &Client{api: api}
}

// GetSecret returns the string (or binary) value of name.
func (c *Client) GetSecret(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("secret name cannot be empty")
	}
	logger.Ctx(ctx).Debug().Str("secret_name", name).Msg("retrieving secret")

	output, err := c.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.ErrorCode() {
			case resourceNotFoundException:
				return "", fmt.Errorf("GetSecret %s: %w", name, ErrSecretNotFound)
			case accessDeniedException:
				return "", fmt.Errorf("GetSecret %s: %w", name, ErrAccessDenied)
			}
			return "", fmt.Errorf("GetSecret operation failed: %s: %s", apiErr.ErrorCode(), apiErr.ErrorMessage())
		}
		return "", fmt.Errorf("GetSecret operation failed: %w", err)
	}

	switch {
	case output.SecretString != nil && *output.SecretString != "":
		return *output.SecretString, nil
	case len(output.SecretBinary) > 0:
		return string(output.SecretBinary), nil
	default:
		return "", fmt.Errorf("GetSecret %s: %w", name, ErrSecretEmpty)
	}
}

// SigningKey resolves the JWT signing key stored under name. A secret that
// holds a JSON object yields the string at field; any other value is used
// as the key verbatim.
func (c *Client) SigningKey(ctx context.Context, name, field string) ([]byte, error) {
	value, err := c.GetSecret(ctx, name)
	if err != nil {
		return nil, err
	}
	return extractKey(value, field)
}

func extractKey(value, field string) ([]byte, error) {
	trimmed := strings.TrimSpace(value)
	if !strings.HasPrefix(trimmed, "{") {
		return []byte(value), nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &fields); err != nil {
		return []byte(value), nil
	}
	raw, ok := fields[field]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrFieldNotFound, field)
	}

	var key string
	if err := json.Unmarshal(raw, &key); err != nil {
		return nil, fmt.Errorf("secret field %q is not a string: %w", field, err)
	}
	if key == "" {
		return nil, fmt.Errorf("secret field %q: %w", field, ErrSecretEmpty)
	}
	return []byte(key), nil
}
