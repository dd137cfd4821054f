package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bistroboss/bistro/app/models"
	"github.com/bistroboss/bistro/app/repositories"
	"github.com/bistroboss/bistro/pkg/apperr"
	"github.com/bistroboss/bistro/pkg/docstore"
	"github.com/bistroboss/bistro/pkg/logger"
	"github.com/bistroboss/bistro/pkg/metrics"
	"github.com/bistroboss/bistro/pkg/payment"
)

// IntentInput is the body of POST /create-payment-intent.
type IntentInput struct {
	Price float64 `json:"price" validate:"gt=0"`
}

// IntentResult carries what the client needs to confirm the card payment.
type IntentResult struct {
	ClientSecret string `json:"clientSecret"`
	Amount       int64  `json:"amount"`
	IntentID     string `json:"intentId"`
}

// PaymentInput is the body of POST /payments, sent after the client has
// confirmed the intent.
type PaymentInput struct {
	Email         string   `json:"email"         validate:"nullable,email"`
	Price         float64  `json:"price"         validate:"gt=0"`
	TransactionID string   `json:"transactionId" validate:"required,max=255"`
	CartIDs       []string `json:"cartIds"       validate:"max=200,dive,objectid"`
	MenuItemIDs   []string `json:"menuItemIds"   validate:"max=200,dive,objectid"`
}

// PaymentResult reports the stored record and how many cart entries the
// payment cleared.
type PaymentResult struct {
	Payment       models.Payment            `json:"payment"`
	PaymentResult repositories.InsertResult `json:"paymentResult"`
	DeleteResult  repositories.DeleteResult `json:"deleteResult"`
	Duplicate     bool                      `json:"duplicate,omitempty"`
}

// PaymentOptions holds the processor-facing settings.
type PaymentOptions struct {
	Currency string
	// Verify re-reads the intent from the processor before recording.
	Verify bool
}

type PaymentService struct {
	processor payment.Processor
	payments  *repositories.PaymentRepository
	carts     *repositories.CartRepository
	opts      PaymentOptions
	now       func() time.Time
}

func NewPaymentService(p payment.Processor, payments *repositories.PaymentRepository, carts *repositories.CartRepository, opts PaymentOptions) *PaymentService {
	if opts.Currency == "" {
		opts.Currency = "usd"
	}
	return &PaymentService{
		processor: p,
		payments:  payments,
		carts:     carts,
		opts:      opts,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateIntent asks the processor to authorize price. Nothing is stored.
// A non-empty caller is attached to the intent and checked again by Record.
func (s *PaymentService) CreateIntent(ctx context.Context, caller string, price float64) (IntentResult, error) {
	amount, err := payment.MinorUnits(price)
	if err != nil {
		metrics.PaymentIntents.WithLabelValues("rejected").Inc()
		return IntentResult{}, apperr.Invalid("price must be a positive amount")
	}

	intent, err := s.processor.CreateIntent(ctx, payment.IntentRequest{Amount: amount, Currency: s.opts.Currency, Email: caller})
	if err != nil {
		metrics.PaymentIntents.WithLabelValues("failed").Inc()
		logger.WithCtx(ctx).Error("payment intent failed", "amount", amount, "error", err)
		return IntentResult{}, apperr.Upstream(err)
	}

	metrics.PaymentIntents.WithLabelValues("created").Inc()
	return IntentResult{ClientSecret: intent.ClientSecret, Amount: intent.Amount, IntentID: intent.ID}, nil
}

// Record stores a payment for caller and clears the paid cart entries.
// Sending the same transaction twice returns the first record.
func (s *PaymentService) Record(ctx context.Context, caller string, in PaymentInput) (PaymentResult, error) {
	log := logger.WithCtx(ctx)

	if in.Email != "" && in.Email != caller {
		metrics.PaymentsRecorded.WithLabelValues("rejected").Inc()
		return PaymentResult{}, apperr.Forbidden()
	}
	amount, err := payment.MinorUnits(in.Price)
	if err != nil {
		metrics.PaymentsRecorded.WithLabelValues("rejected").Inc()
		return PaymentResult{}, apperr.Invalid("price must be a positive amount")
	}

	if res, ok, err := s.existing(ctx, caller, in.TransactionID); ok || err != nil {
		return res, err
	}

	status := models.PaymentPending
	if s.opts.Verify {
		if err := s.verify(ctx, caller, in.TransactionID, amount); err != nil {
			metrics.PaymentsRecorded.WithLabelValues("rejected").Inc()
			return PaymentResult{}, err
		}
		status = models.PaymentConfirmed
	}

	p := models.Payment{
		Email:         caller,
		Price:         payment.FromMinorUnits(amount),
		TransactionID: in.TransactionID,
		Date:          s.now(),
		CartIDs:       nonNil(in.CartIDs),
		MenuItemIDs:   nonNil(in.MenuItemIDs),
		Status:        status,
	}
	id, err := s.payments.Create(ctx, p)
	if errors.Is(err, docstore.ErrDuplicate) {
		if res, ok, err := s.existing(ctx, caller, in.TransactionID); ok || err != nil {
			return res, err
		}
	}
	if err != nil {
		metrics.PaymentsRecorded.WithLabelValues("failed").Inc()
		return PaymentResult{}, apperr.Internal(err)
	}

	metrics.PaymentsRecorded.WithLabelValues("recorded").Inc()
	log.Info("payment recorded", "transaction_id", p.TransactionID, "amount", amount, "status", status)

	p.ID, _ = primitive.ObjectIDFromHex(id)
	return PaymentResult{
		Payment:       p,
		PaymentResult: repositories.InsertResult{InsertedID: id},
		DeleteResult:  s.reconcile(ctx, caller, p.CartIDs),
	}, nil
}

// List returns the caller's own payments.
func (s *PaymentService) List(ctx context.Context, caller string) ([]models.Payment, error) {
	out, err := s.payments.ByEmail(ctx, caller)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}

func (s *PaymentService) existing(ctx context.Context, caller, txID string) (PaymentResult, bool, error) {
	p, err := s.payments.FindByTransaction(ctx, txID)
	if errors.Is(err, docstore.ErrNotFound) {
		return PaymentResult{}, false, nil
	}
	if err != nil {
		return PaymentResult{}, false, apperr.Internal(err)
	}
	if p.Email != caller {
		metrics.PaymentsRecorded.WithLabelValues("rejected").Inc()
		return PaymentResult{}, false, apperr.Forbidden()
	}

	metrics.PaymentsRecorded.WithLabelValues("duplicate").Inc()
	return PaymentResult{
		Payment:       p,
		PaymentResult: repositories.InsertResult{InsertedID: p.ID.Hex()},
		Duplicate:     true,
	}, true, nil
}

// verify checks the processor actually captured amount in the configured
// currency, for an intent created by caller or by nobody in particular.
func (s *PaymentService) verify(ctx context.Context, caller, intentID string, amount int64) error {
	intent, err := s.processor.GetIntent(ctx, intentID)
	if errors.Is(err, payment.ErrIntentNotFound) {
		return apperr.Invalid("unknown transaction")
	}
	if err != nil {
		logger.WithCtx(ctx).Warn("payment verification failed", "transaction_id", intentID, "error", err)
		return apperr.Upstream(err)
	}
	if intent.Email != "" && intent.Email != caller {
		logger.WithCtx(ctx).Warn("payment intent belongs to another payer", "transaction_id", intentID)
		return apperr.Forbidden()
	}
	if intent.Status != payment.StatusSucceeded {
		return apperr.Invalid("payment has not succeeded")
	}
	if intent.Amount != amount {
		logger.WithCtx(ctx).Warn("payment amount mismatch",
			"transaction_id", intentID, "charged", intent.Amount, "claimed", amount)
		return apperr.Invalid("payment amount does not match the charged amount")
	}
	if !strings.EqualFold(intent.Currency, s.opts.Currency) {
		logger.WithCtx(ctx).Warn("payment currency mismatch",
			"transaction_id", intentID, "charged", intent.Currency, "expected", s.opts.Currency)
		return apperr.Invalid("payment currency does not match")
	}
	return nil
}

// reconcile removes the paid entries from the caller's cart. Failures are
// logged; the payment itself is already stored.
func (s *PaymentService) reconcile(ctx context.Context, caller string, cartIDs []string) repositories.DeleteResult {
	var total repositories.DeleteResult
	for _, id := range cartIDs {
		res, err := s.carts.DeleteOwned(ctx, id, caller)
		if err != nil {
			logger.WithCtx(ctx).Error("cart reconciliation failed", "cart_id", id, "error", err)
			continue
		}
		total.DeletedCount += res.DeletedCount
	}
	return total
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
