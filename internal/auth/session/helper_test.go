package session

import (
	"testing"

	"go.uber.org/zap"
)

func newTestLogger(t *testing.T) *zap.Logger {
	t.Helper()
	return zap.NewNop()
}
