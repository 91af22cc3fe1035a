package knowledge

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/hybridchat/internal/domain/knowledge"
	"github.com/kailas-cloud/hybridchat/internal/usecase/guard"
)

// LoadSnapshot loads every record from src once and freezes them into a snapshot.
// A nil source, a load error or a panic yields an empty snapshot; startup never aborts.
// recordsGauge has label "kind" and may be nil.
func LoadSnapshot(
	ctx context.Context,
	src Source,
	logger *zap.Logger,
	recordsGauge *prometheus.GaugeVec,
) *knowledge.Snapshot {
	snap := load(ctx, src, logger)
	if recordsGauge != nil {
		for kind, n := range snap.Counts() {
			recordsGauge.WithLabelValues(string(kind)).Set(float64(n))
		}
	}
	return snap
}

func load(ctx context.Context, src Source, logger *zap.Logger) *knowledge.Snapshot {
	if src == nil {
		logger.Info("No knowledge source configured, serving an empty snapshot")
		return knowledge.Empty()
	}

	records, err := guard.Call(func() ([]knowledge.Record, error) {
		return src.Load(ctx)
	})
	if err != nil {
		logger.Warn("Knowledge load failed, serving an empty snapshot", zap.Error(err))
		return knowledge.Empty()
	}

	snap := knowledge.NewSnapshot(records)
	counts := snap.Counts()
	logger.Info("Knowledge snapshot loaded",
		zap.Int("customers", counts[knowledge.KindCustomer]),
		zap.Int("products", counts[knowledge.KindProduct]),
		zap.Int("policies", counts[knowledge.KindPolicy]),
	)
	return snap
}
