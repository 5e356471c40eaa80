package main

import (
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/scholarpath/internal/config"
	"github.com/sells-group/scholarpath/pkg/scholarapi"
)

func newAPIClient(c config.ClientConfig) scholarapi.Client {
	return scholarapi.NewClient(c.BaseURL, scholarapi.WithTimeout(time.Duration(c.TimeoutSecs)*time.Second))
}

// quietLogs silences the global logger while a full-screen view owns the
// terminal. The returned func restores the previous logger.
func quietLogs() func() {
	return zap.ReplaceGlobals(zap.NewNop())
}
