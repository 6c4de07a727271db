package quiz

import (
	"context"

	"github.com/gokatarajesh/math-quiz/internal/question"
	ws "github.com/gokatarajesh/math-quiz/pkg/http/ws"
)

// ReloadPublisher delivers bank reload events to clients.
type ReloadPublisher interface {
	Publish(ctx context.Context, evt ws.BankReloadedPayload) error
}

// BankNotifier tells connected clients that the shared bank changed so they
// can request a fresh view.
type BankNotifier struct {
	publisher ReloadPublisher
	counter   interface{ BankReloadBroadcast() }
}

var _ question.ReloadNotifier = (*BankNotifier)(nil)

// NewBankNotifier creates a notifier. counter may be nil.
func NewBankNotifier(publisher ReloadPublisher, counter interface{ BankReloadBroadcast() }) *BankNotifier {
	return &BankNotifier{publisher: publisher, counter: counter}
}

func (n *BankNotifier) BankReloaded(ctx context.Context, version question.Version, notice error) error {
	evt := ws.BankReloadedPayload{Version: int64(version)}
	if notice != nil {
		evt.Notice = notice.Error()
	}
	if err := n.publisher.Publish(ctx, evt); err != nil {
		return err
	}
	if n.counter != nil {
		n.counter.BankReloadBroadcast()
	}
	return nil
}
