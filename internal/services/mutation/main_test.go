package mutation

import (
	"log/slog"
	"os"
	"testing"

	"github.com/j-veylop/gateway-console/internal/logger"
)

func TestMain(m *testing.M) {
	logger.Logger = slog.New(slog.DiscardHandler)
	os.Exit(m.Run())
}
