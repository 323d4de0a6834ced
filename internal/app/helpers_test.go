package app

import (
	"io"
	"log/slog"
	"time"
)

var testNow = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *ServiceConfig {
	return &ServiceConfig{
		Logger: discardLogger(),
		Now:    func() time.Time { return testNow },
	}
}

func days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}

func boolPtr(b bool) *bool {
	return &b
}
