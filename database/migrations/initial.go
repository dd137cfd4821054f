package migrations

import (
	"github.com/bistroboss/bistro/app/repositories"
	"github.com/bistroboss/bistro/pkg/docstore"
	"github.com/bistroboss/bistro/pkg/migration"
)

func init() {
	migration.Register("20240301000000_users_email_unique", migration.Indexes(
		docstore.Index{Collection: repositories.UsersCollection, Keys: []string{"email"}, Unique: true},
	))
	migration.Register("20240301000001_carts_owner", migration.Indexes(
		docstore.Index{Collection: repositories.CartsCollection, Keys: []string{"userEmail"}},
	))
	migration.Register("20240301000002_payments_indexes", migration.Indexes(
		docstore.Index{Collection: repositories.PaymentsCollection, Keys: []string{"email"}},
		docstore.Index{Collection: repositories.PaymentsCollection, Keys: []string{"transactionId"}, Unique: true},
	))
	migration.Register("20240301000003_menu_category", migration.Indexes(
		docstore.Index{Collection: repositories.MenuCollection, Keys: []string{"category"}},
	))
}
