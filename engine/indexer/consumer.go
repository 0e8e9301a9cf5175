package indexer

import (
	"context"
	"log/slog"

	"github.com/StaffPilotAI/staffpilot/engine/domain"
	"github.com/StaffPilotAI/staffpilot/pkg/natsutil"
	"github.com/nats-io/nats.go"
)

// ReindexSubject carries employee records that need (re-)indexing, published
// whenever a directory record is created or replaced.
const ReindexSubject = "directory.employee.upserted"

// ReindexHandler indexes one published record. Per-record failures are
// logged and swallowed so the subscription stays alive.
func ReindexHandler(ix *Indexer, logger *slog.Logger) func(context.Context, domain.Employee) {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, e domain.Employee) {
		if err := ix.IndexOne(ctx, e); err != nil {
			logger.Error("indexer: reindex failed", "id", e.ID, "error", err)
			return
		}
		logger.Info("indexer: reindexed", "id", e.ID)
	}
}

// StartConsumer subscribes to ReindexSubject and indexes each published
// record.
func StartConsumer(nc *nats.Conn, ix *Indexer, logger *slog.Logger) (*nats.Subscription, error) {
	return natsutil.Subscribe(nc, ReindexSubject, ReindexHandler(ix, logger))
}
