package scheduler

import (
	"context"

	"github.com/alexkh/token-ledger/pkg/models"
)

// RepairScheduler defines the interface for a component that schedules a
// balance repair for asynchronous processing.
type RepairScheduler interface {
	// ScheduleRepair enqueues a repair request for the given user.
	ScheduleRepair(ctx context.Context, repair *models.RepairRequest) error
}
