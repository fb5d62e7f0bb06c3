package app

import (
	"context"
	"fmt"
	"time"

	"modelscan/internal/shared/observability"
)

type HealthService struct {
	svc *Service
}

func NewHealthService(svc *Service) *HealthService {
	return &HealthService{svc: svc}
}

func (h *HealthService) Check(ctx context.Context) observability.HealthStatus {
	status := observability.HealthStatus{
		Status:     "up",
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]string),
	}

	if h.svc == nil || h.svc.loader == nil {
		status.Status = "degraded"
		status.Components["grammars"] = "missing"
	} else {
		enabled := 0
		for _, spec := range h.svc.loader.LanguageRegistry() {
			if spec.Enabled {
				enabled++
			}
		}
		status.Components["grammars"] = fmt.Sprintf("ok (%d languages)", enabled)
	}

	if h.svc == nil || h.svc.rules == nil {
		status.Status = "degraded"
		status.Components["rules"] = "missing"
	} else if h.svc.rules.Empty() {
		status.Components["rules"] = "empty rule set"
	} else {
		status.Components["rules"] = "ok"
	}

	if h.svc != nil && h.svc.history != nil {
		status.Components["history"] = fmt.Sprintf("ok (%s)", h.svc.history.Path())
	} else if h.svc != nil && h.svc.cfg != nil && h.svc.cfg.History.Enabled {
		status.Status = "degraded"
		status.Components["history"] = "missing but enabled in config"
	}

	return status
}
