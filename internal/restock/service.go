package restock

import (
	"context"
	"fmt"
	"strings"

	"sportshop-be/internal/background"
	"sportshop-be/internal/logger"
	"sportshop-be/internal/notify"
	"sportshop-be/internal/product"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ProductFinder resolves the product a subscription is for.
type ProductFinder interface {
	Get(ctx context.Context, id int64) (*product.Product, error)
}

type Service interface {
	Subscribe(ctx context.Context, productID int64, email string) error
	// ProductRestocked mails every subscriber in the background.
	ProductRestocked(ctx context.Context, p product.Product)
}

type service struct {
	repo     Repository
	products ProductFinder
	notifier notify.Notifier
	runner   *background.Runner
	validate *validator.Validate
}

func NewService(repo Repository, products ProductFinder, notifier notify.Notifier, runner *background.Runner) Service {
	return &service{
		repo:     repo,
		products: products,
		notifier: notifier,
		runner:   runner,
		validate: validator.New(),
	}
}

func (s *service) Subscribe(ctx context.Context, productID int64, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.validate.Var(email, "required,email"); err != nil {
		return ErrInvalidEmail
	}

	p, err := s.products.Get(ctx, productID)
	if err != nil {
		return err
	}
	if p.Available() {
		return ErrAlreadyAvailable
	}

	return s.repo.Subscribe(ctx, productID, email)
}

func (s *service) ProductRestocked(ctx context.Context, p product.Product) {
	ctx = context.WithoutCancel(ctx)
	s.runner.Go("restock-notify", func() {
		s.notifyAll(ctx, p)
	})
}

func (s *service) notifyAll(ctx context.Context, p product.Product) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ProductRestocked"),
		zap.Int64("product_id", p.ID),
	)

	emails, err := s.repo.ListEmails(ctx, p.ID)
	if err != nil {
		log.Error("list subscribers failed", zap.Error(err))
		return
	}
	if len(emails) == 0 {
		return
	}

	q := p.Quote()
	msg := notify.Message{
		Subject: fmt.Sprintf("%s is back in stock", p.Name),
		Body: fmt.Sprintf("%s is available again at %s (%d in stock).",
			p.Name, q.DiscountedPrice.StringFixed(2), p.Stock),
	}

	sent := make([]string, 0, len(emails))
	for _, e := range emails {
		if err := s.notifier.Notify(ctx, e, msg); err != nil {
			log.Warn("restock notification failed", zap.String("to", e), zap.Error(err))
			continue
		}
		sent = append(sent, e)
	}

	if err := s.repo.Clear(ctx, p.ID, sent); err != nil {
		log.Error("clear subscriptions failed", zap.Error(err))
		return
	}
	log.Info("restock notifications sent", zap.Int("sent", len(sent)), zap.Int("subscribers", len(emails)))
}
