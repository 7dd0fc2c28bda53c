package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/quillhq/quill/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const deliveryTimeout = 10 * time.Second

// Notification is one outbound message to one recipient.
type Notification struct {
	Recipient string
	Subject   string
	Body      string
}

// Mailer delivers a single message. Retries and dedup are the transport's
// concern, not the dispatcher's.
type Mailer interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// Dispatcher fans notifications out to a bounded worker pool. Each
// notification is attempted at most once; a failed delivery is logged and
// never affects the triggering request or sibling deliveries.
type Dispatcher struct {
	mailer    Mailer
	publicURL string
	workers   int
	queue     chan Notification
	log       *zap.Logger
}

func NewDispatcher(mailer Mailer, publicURL string, workers, queueSize int, log *zap.Logger) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &Dispatcher{
		mailer:    mailer,
		publicURL: publicURL,
		workers:   workers,
		queue:     make(chan Notification, queueSize),
		log:       log,
	}
}

// Run consumes the queue until the context is cancelled and the queue is
// closed. Call in a goroutine.
func (d *Dispatcher) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < d.workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case n, ok := <-d.queue:
					if !ok {
						return nil
					}
					d.deliver(n)
				}
			}
		})
	}
	return g.Wait()
}

// Close stops accepting work and lets Run drain what is queued.
func (d *Dispatcher) Close() {
	close(d.queue)
}

// EnqueueNewPost queues one notification per follower with a direct link to
// the post. A full queue drops the remainder rather than blocking the
// request path.
func (d *Dispatcher) EnqueueNewPost(post *domain.Post, recipients []string) {
	subject := "New post in your feed"
	body := fmt.Sprintf("@%s published a new post: %s/post/%s",
		post.AuthorUsername, d.publicURL, post.ID)

	for _, recipient := range recipients {
		select {
		case d.queue <- Notification{Recipient: recipient, Subject: subject, Body: body}:
		default:
			d.log.Warn("notification queue full, dropping",
				zap.String("recipient", recipient),
				zap.String("post_id", post.ID.String()),
			)
		}
	}
}

func (d *Dispatcher) deliver(n Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()

	if err := d.mailer.Send(ctx, n.Recipient, n.Subject, n.Body); err != nil {
		d.log.Error("notification delivery failed",
			zap.String("recipient", n.Recipient),
			zap.Error(err),
		)
	}
}
