package constants

import (
	"github.com/go-playground/validator/v10"

	"github.com/sanjaithai/backoffice/pkg/serrors"
)

type ContextKey string

const (
	AppKey       ContextKey = "app"
	TxKey        ContextKey = "tx"
	PoolKey      ContextKey = "pool"
	LoggerKey    ContextKey = "logger"
	RequestStart ContextKey = "requestStart"
	RequestIDKey ContextKey = "requestID"
	IdentityKey  ContextKey = "identity"
)

var Validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(serrors.JSONTagName)
	return v
}
