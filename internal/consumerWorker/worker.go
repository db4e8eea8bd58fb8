package consumerWorker

import (
	"context"
	"encoding/json"

	"github.com/wb-go/wbf/zlog"

	"clubhub/internal/dto"
	"clubhub/internal/mailer"
	"clubhub/internal/rabbit"
	"clubhub/internal/repo"
)

// Reader drains payment expiry messages. A message that finds its
// registration still pending frees the seat; anything else is a no-op.
type Reader struct {
	rmq    rabbit.Consumer
	repo   repo.Repository
	mail   mailer.Mailer
	done   chan struct{}
	cancel context.CancelFunc
}

func NewReader(rmq rabbit.Consumer, repo repo.Repository, mail mailer.Mailer) *Reader {
	return &Reader{
		rmq:  rmq,
		repo: repo,
		mail: mail,
		done: make(chan struct{}),
	}
}

func (r *Reader) Start(ctx context.Context) {
	cctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	zlog.Logger.Info().Msg("payment expiry worker started")

	go func() {
		defer close(r.done)

		if err := r.rmq.Consume(r.handler(cctx)); err != nil {
			zlog.Logger.Error().Err(err).Msg("failed to start consuming")
			return
		}

		<-cctx.Done()
		zlog.Logger.Info().Msg("payment expiry worker stopped")
	}()
}

func (r *Reader) handler(ctx context.Context) func([]byte) error {
	return func(body []byte) error {
		var msg dto.PaymentExpiryMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			zlog.Logger.Error().Err(err).Msgf("failed to unmarshal expiry message: %s", string(body))
			return err
		}

		zlog.Logger.Info().
			Int64("registration_id", msg.RegistrationID).
			Int64("event_id", msg.EventID).
			Msg("expiry message received")

		// snapshot the registration first, the delete erases it
		reg, regErr := r.repo.GetRegistrationByID(ctx, msg.RegistrationID)

		deleted, err := r.repo.DeleteIfPaymentPendingTx(ctx, msg.RegistrationID)
		if err != nil {
			zlog.Logger.Error().
				Err(err).
				Int64("registration_id", msg.RegistrationID).
				Msg("failed to expire registration")
			return err
		}

		if !deleted {
			zlog.Logger.Info().
				Int64("registration_id", msg.RegistrationID).
				Msg("registration confirmed or already gone, nothing to expire")
			return nil
		}

		zlog.Logger.Info().
			Int64("registration_id", msg.RegistrationID).
			Msg("pending registration expired, seat released")

		if regErr != nil {
			return nil
		}

		title := ""
		if event, err := r.repo.GetEventByID(ctx, msg.EventID); err == nil {
			title = event.Title
		}

		if err := r.mail.SendRegistrationEmail(title, "expired", reg.Email, 0); err != nil {
			zlog.Logger.Warn().Err(err).Msg("failed to send expiry email")
		}

		return nil
	}
}

func (r *Reader) Stop() {
	if r.cancel != nil {
		r.cancel()
		<-r.done
	}
}
