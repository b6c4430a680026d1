package monitoring

import (
	"context"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
)

// LagFetcher resolves consumer group lag for a sink connector.
type LagFetcher interface {
	Lag(ctx context.Context, group string) (int64, error)
}

// GroupLagFetcher reads consumer group lag from the Kafka brokers. Sink
// connectors consume under the group "connect-<connector name>".
type GroupLagFetcher struct {
	adm *kadm.Client
}

func NewGroupLagFetcher(client *kgo.Client) *GroupLagFetcher {
	return &GroupLagFetcher{adm: kadm.NewClient(client)}
}

func (f *GroupLagFetcher) Lag(ctx context.Context, group string) (int64, error) {
	lags, err := f.adm.Lag(ctx, group)
	if err != nil {
		return 0, fmt.Errorf("fetch group lag: %w", err)
	}
	l, ok := lags[group]
	if !ok {
		return 0, nil
	}
	if err := l.Error(); err != nil {
		return 0, fmt.Errorf("fetch group lag: %w", err)
	}
	return l.Lag.Total(), nil
}
