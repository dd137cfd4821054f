package repositories

import (
	"context"

	"github.com/bistroboss/bistro/app/models"
	"github.com/bistroboss/bistro/pkg/docstore"
)

// CartRepository scopes every read and delete to the owning email.
type CartRepository struct {
	store docstore.Store
}

func NewCartRepository(store docstore.Store) *CartRepository {
	return &CartRepository{store: store}
}

func (r *CartRepository) ByOwner(ctx context.Context, email string) ([]models.CartEntry, error) {
	return docstore.Many[models.CartEntry](ctx, r.store, CartsCollection, docstore.Filter{"userEmail": email})
}

func (r *CartRepository) Create(ctx context.Context, e models.CartEntry) (string, error) {
	return r.store.Insert(ctx, CartsCollection, e)
}

// DeleteOwned removes the entry only if email owns it.
func (r *CartRepository) DeleteOwned(ctx context.Context, id, email string) (DeleteResult, error) {
	n, err := r.store.DeleteOne(ctx, CartsCollection, docstore.Filter{
		"_id":       docstore.IDValue(id),
		"userEmail": email,
	})
	return DeleteResult{DeletedCount: n}, err
}

// PaymentRepository is append-only: there is no update or delete.
type PaymentRepository struct {
	store docstore.Store
}

func NewPaymentRepository(store docstore.Store) *PaymentRepository {
	return &PaymentRepository{store: store}
}

// Create returns docstore.ErrDuplicate when the transaction is already recorded.
func (r *PaymentRepository) Create(ctx context.Context, p models.Payment) (string, error) {
	return r.store.Insert(ctx, PaymentsCollection, p)
}

func (r *PaymentRepository) FindByTransaction(ctx context.Context, txID string) (models.Payment, error) {
	return docstore.One[models.Payment](ctx, r.store, PaymentsCollection, docstore.Filter{"transactionId": txID})
}

func (r *PaymentRepository) ByEmail(ctx context.Context, email string) ([]models.Payment, error) {
	return docstore.Many[models.Payment](ctx, r.store, PaymentsCollection, docstore.Filter{"email": email})
}

func (r *PaymentRepository) All(ctx context.Context) ([]models.Payment, error) {
	return docstore.Many[models.Payment](ctx, r.store, PaymentsCollection, nil)
}

func (r *PaymentRepository) Count(ctx context.Context) (int64, error) {
	return r.store.Count(ctx, PaymentsCollection)
}
