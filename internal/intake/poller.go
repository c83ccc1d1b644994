package intake

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"neighborly/internal/mailbox"
	"neighborly/internal/model"
	"neighborly/pkg/circuitbreaker"
	"neighborly/pkg/metrics"
)

// Catalog supplies the classification vocabulary, already ordered for
// first-match-wins precedence.
type Catalog interface {
	ListAll(ctx context.Context) ([]string, error)
}

// Directory resolves an email address to a known user. A miss is
// (nil, nil), not an error.
type Directory interface {
	ResolveByEmail(ctx context.Context, email string) (*model.User, error)
}

// Writer fans a classified message out into per-group requests.
type Writer interface {
	Fanout(ctx context.Context, user *model.User, body, serviceType string) (int, error)
}

// MessageLedger guards against turning the same message into requests
// twice across poll cycles.
type MessageLedger interface {
	Acquire(ctx context.Context, messageID string) (bool, error)
	Commit(ctx context.Context, messageID string) error
	Rollback(ctx context.Context, messageID string)
}

// Result summarizes one poll cycle. Created is valid even when Run also
// returns an error; it counts requests confirmed before the failure.
type Result struct {
	Created    int
	Skipped    int
	Duplicates int
}

// Poller drives one pass over the inbound mailbox: list a bounded batch,
// filter by recipient, then extract, resolve, classify and fan out each
// message in listing order. It is stateless between runs apart from the
// ledger.
type Poller struct {
	source  mailbox.Source
	catalog Catalog
	users   Directory
	writer  Writer
	ledger  MessageLedger
	breaker *circuitbreaker.CircuitBreaker

	serviceAddress string
	batchSize      int64

	logger *zap.Logger
}

func NewPoller(
	source mailbox.Source,
	catalog Catalog,
	users Directory,
	writer Writer,
	ledger MessageLedger,
	serviceAddress string,
	batchSize int64,
	logger *zap.Logger,
) *Poller {
	return &Poller{
		source:         source,
		catalog:        catalog,
		users:          users,
		writer:         writer,
		ledger:         ledger,
		breaker:        circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig()),
		serviceAddress: strings.ToLower(serviceAddress),
		batchSize:      batchSize,
		logger:         logger,
	}
}

// Run executes one poll cycle and returns the number of requests created.
// The catalog is re-fetched every cycle; nothing is cached across runs.
func (p *Poller) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	var result Result

	labels, err := p.catalog.ListAll(ctx)
	if err != nil {
		metrics.RecordIntakeCycleLatency("failed", time.Since(start))
		return result, fmt.Errorf("%w: load service types: %v", ErrStoreUnavailable, err)
	}

	var ids []string
	err = p.breaker.Execute(func() error {
		var listErr error
		ids, listErr = p.source.ListRecent(ctx, p.batchSize)
		return listErr
	})
	if err != nil {
		metrics.RecordIntakeCycleLatency("failed", time.Since(start))
		return result, fmt.Errorf("%w: list messages: %v", ErrSourceUnavailable, err)
	}

	for _, id := range ids {
		created, err := p.processMessage(ctx, id, labels, &result)
		result.Created += created
		if err != nil {
			metrics.RecordIntakeCycleLatency("failed", time.Since(start))
			return result, err
		}
	}

	metrics.RecordIntakeCycleLatency("ok", time.Since(start))
	p.logger.Info("Inbound poll cycle finished",
		zap.Int("messages", len(ids)),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
		zap.Int("duplicates", result.Duplicates),
	)
	return result, nil
}

func (p *Poller) processMessage(ctx context.Context, id string, labels []string, result *Result) (int, error) {
	var msg *mailbox.Message
	err := p.breaker.Execute(func() error {
		var fetchErr error
		msg, fetchErr = p.source.Fetch(ctx, id)
		return fetchErr
	})
	if err != nil {
		metrics.IncrementIntakeMessage("failed")
		return 0, fmt.Errorf("%w: fetch message %s: %v", ErrSourceUnavailable, id, err)
	}

	// 只处理寄给服务邮箱的邮件
	if !strings.Contains(strings.ToLower(msg.To), p.serviceAddress) {
		result.Skipped++
		metrics.IncrementIntakeMessage("skipped_recipient")
		return 0, nil
	}

	ok, err := p.ledger.Acquire(ctx, msg.ID)
	if err != nil {
		metrics.IncrementIntakeMessage("failed")
		return 0, fmt.Errorf("%w: ledger lookup for message %s: %v", ErrStoreUnavailable, msg.ID, err)
	}
	if !ok {
		result.Duplicates++
		metrics.IncrementIntakeMessage("duplicate")
		return 0, nil
	}

	user, err := p.users.ResolveByEmail(ctx, ParseAddress(msg.From))
	if err != nil {
		p.ledger.Rollback(ctx, msg.ID)
		metrics.IncrementIntakeMessage("failed")
		return 0, fmt.Errorf("%w: resolve sender of message %s: %v", ErrStoreUnavailable, msg.ID, err)
	}
	if user == nil {
		// Unknown sender is a skip, not an error. The ledger is not
		// committed, so the message resolves again if the sender
		// registers while it is still inside the poll window.
		p.ledger.Rollback(ctx, msg.ID)
		result.Skipped++
		metrics.IncrementIntakeMessage("skipped_sender")
		p.logger.Info("Skipping message from unknown sender",
			zap.String("message_id", msg.ID),
		)
		return 0, nil
	}

	body := ExtractText(msg)
	serviceType := Classify(body, labels)

	created, err := p.writer.Fanout(ctx, user, body, serviceType)
	if err != nil {
		p.ledger.Rollback(ctx, msg.ID)
		metrics.IncrementIntakeMessage("failed")
		return created, err
	}

	if err := p.ledger.Commit(ctx, msg.ID); err != nil {
		// 请求已经写入，只记日志，短期内靠 redis 锁兜底
		p.logger.Warn("Failed to mark message processed",
			zap.String("message_id", msg.ID),
			zap.Error(err),
		)
	}

	metrics.IncrementIntakeMessage("created")
	p.logger.Info("Created requests from inbound message",
		zap.String("message_id", msg.ID),
		zap.Int("user_id", user.ID),
		zap.String("service_type", serviceType),
		zap.Int("created", created),
	)
	return created, nil
}
