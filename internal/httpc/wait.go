package httpc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/loykin/apiscenario/internal/common"
	"github.com/loykin/apiscenario/internal/constants"
)

// WaitConfig describes the pre-flight probe run before any scenario.
type WaitConfig struct {
	URL      string        `mapstructure:"url"`
	Method   string        `mapstructure:"method"`
	Status   int           `mapstructure:"status"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Interval time.Duration `mapstructure:"interval"`
}

// normalized fills defaults: GET, 200, 60s timeout, 2s interval.
func (wc WaitConfig) normalized() WaitConfig {
	wc.URL = strings.TrimSpace(wc.URL)
	wc.Method = strings.ToUpper(strings.TrimSpace(wc.Method))
	if wc.Method == "" {
		wc.Method = constants.DefaultWaitMethod
	}
	if wc.Status == 0 {
		wc.Status = constants.DefaultWaitStatus
	}
	if wc.Timeout <= 0 {
		wc.Timeout = constants.DefaultWaitTimeout
	}
	if wc.Interval <= 0 {
		wc.Interval = constants.DefaultWaitInterval
	}
	return wc
}

// Wait polls wc.URL until it answers with the expected status or the timeout
// elapses. An empty URL returns immediately.
func (h *Httpc) Wait(ctx context.Context, wc WaitConfig) error {
	if strings.TrimSpace(wc.URL) == "" {
		return nil
	}
	wc = wc.normalized()
	logger := common.GetLogger().WithComponent("wait").WithRequest(wc.Method, wc.URL)

	client := h.New()
	deadline := time.Now().Add(wc.Timeout)
	var lastStatus int
	var lastErr error

	for {
		resp, err := client.R().SetContext(ctx).Execute(wc.Method, wc.URL)
		if err == nil && resp.StatusCode() == wc.Status {
			logger.Info("endpoint ready", "status", wc.Status)
			return nil
		}
		lastErr = err
		if resp != nil {
			lastStatus = resp.StatusCode()
		}
		logger.Debug("endpoint not ready", "status", lastStatus, "error", err)

		if time.Now().After(deadline) {
			if lastErr != nil {
				return fmt.Errorf("wait: timeout waiting for %s to return %d: %w", wc.URL, wc.Status, lastErr)
			}
			return fmt.Errorf("wait: timeout waiting for %s to return %d (last=%d)", wc.URL, wc.Status, lastStatus)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("wait: %w", ctx.Err())
		case <-time.After(wc.Interval):
		}
	}
}
