package repository

import (
	"context"
	"errors"

	apperrors "event_marketplace/pkg/errors"
)

// normalizeErr приводит ошибки контекста к таксономии pkg/errors.
// Истекший дедлайн запроса означает, что операция не применилась.
func normalizeErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.ErrTimeout
	}
	return err
}
