// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package controller

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// refreshTimeout bounds one scheduled refresh pass.
const refreshTimeout = 45 * time.Second

// Poller re-fetches event state on a cron schedule. The backend offers
// no push channel, so approvals, deletions and edits made by other
// users only become visible through these refreshes.
type Poller struct {
	cron   *cron.Cron
	ctrl   *Controller
	logger *slog.Logger
}

// NewPoller creates a Poller on a standard 5-field cron schedule.
func NewPoller(schedule string, ctrl *Controller, logger *slog.Logger) (*Poller, error) {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Poller{
		cron:   cron.New(),
		ctrl:   ctrl,
		logger: logger,
	}
	if _, err := p.cron.AddFunc(schedule, p.run); err != nil {
		return nil, fmt.Errorf("invalid poll schedule %q: %w", schedule, err)
	}
	return p, nil
}

func (p *Poller) run() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	start := time.Now()
	if err := p.ctrl.Refresh(ctx); err != nil {
		p.logger.Warn("scheduled refresh failed", "error", err)
		return
	}
	p.logger.Debug("scheduled refresh completed", "duration", time.Since(start))
}

// Start begins scheduled refreshes.
func (p *Poller) Start() {
	p.cron.Start()
	p.logger.Info("poller started")
}

// Stop halts the schedule and waits for a running refresh to finish.
func (p *Poller) Stop() {
	ctx := p.cron.Stop()
	<-ctx.Done()
	p.logger.Info("poller stopped")
}
