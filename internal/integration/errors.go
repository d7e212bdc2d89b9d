package integration

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"

	"barricade.gg/backend/internal/constant"
	"barricade.gg/backend/internal/pkg/bcerr"
)

// ErrRemoteBanNotFound is returned by ReverseBan when the remote ban is already gone.
var ErrRemoteBanNotFound = errors.New("remote ban not found")

// ConfigError reports a configuration the external system rejects. It
// matches bcerr.ErrIntegrationConfig.
type ConfigError struct {
	Type   constant.IntegrationType
	Reason string
	Err    error
}

func NewConfigError(typ constant.IntegrationType, reason string, err error) *ConfigError {
	return &ConfigError{Type: typ, Reason: reason, Err: err}
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s integration misconfigured: %s: %v", e.Type, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s integration misconfigured: %s", e.Type, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func (e *ConfigError) Is(target error) bool {
	t, ok := target.(*bcerr.BarricadeError)
	return ok && t.ErrorCode == bcerr.CodeIntegrationConfig
}

// DispatchError reports a failed ban or unban call against one integration.
// It matches bcerr.ErrIntegrationDispatch.
type DispatchError struct {
	Key           Key
	IntegrationID int64
	Op            string
	PlayerID      string
	Err           error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("%s of player %s via %s integration #%d (community %d) failed: %v",
		e.Op, e.PlayerID, e.Key.Type, e.IntegrationID, e.Key.CommunityID, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

func (e *DispatchError) Is(target error) bool {
	t, ok := target.(*bcerr.BarricadeError)
	return ok && t.ErrorCode == bcerr.CodeIntegrationDispatch
}

// StatusError is a non-2xx response of an external API.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// classify turns credential rejections into a *ConfigError. Any other error is
// returned unchanged.
func classify(typ constant.IntegrationType, err error) error {
	var se *StatusError
	if errors.As(err, &se) {
		switch se.StatusCode {
		case http.StatusUnauthorized:
			return NewConfigError(typ, "credentials were rejected", err)
		case http.StatusForbidden:
			return NewConfigError(typ, "missing permissions", err)
		}
	}
	return err
}

func isStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}
