package sales

import (
	"fmt"

	"github.com/sellerdesk/sellerdesk-backend/internal/ledger"
	"github.com/sellerdesk/sellerdesk-backend/pkg/db/models"
	"github.com/sellerdesk/sellerdesk-backend/pkg/enums"
	"github.com/sellerdesk/sellerdesk-backend/pkg/errors"
)

// mutableStatuses are the lifecycle states in which a seller may still
// change a sale's ledger. Once a sale enters review or gets approved the
// record is frozen for the seller.
func statusAllowsMutation(status enums.SaleStatus) bool {
	return status == enums.SaleStatusPending || status == enums.SaleStatusRejected
}

// CanRegisterPayment gates payment registration: the sale must be in a
// mutable status and must still have an outstanding balance. The returned
// error message is surfaced verbatim to clients.
func CanRegisterPayment(sale *models.Sale) error {
	if sale == nil {
		return errors.New(errors.CodeNotFound, "sale not found")
	}
	if !statusAllowsMutation(sale.Status) {
		return errors.New(errors.CodeStateConflict,
			fmt.Sprintf("payments cannot be registered while the sale is %s", sale.Status))
	}
	if ledger.ForSale(sale).IsPaid() {
		return errors.New(errors.CodeStateConflict, "sale is already fully paid")
	}
	return nil
}

// CanDeleteSale gates sale deletion.
func CanDeleteSale(sale *models.Sale) error {
	if sale == nil {
		return errors.New(errors.CodeNotFound, "sale not found")
	}
	if !statusAllowsMutation(sale.Status) {
		return errors.New(errors.CodeStateConflict,
			fmt.Sprintf("sales in status %s cannot be deleted", sale.Status))
	}
	return nil
}

// CanDeletePayment gates payment deletion; it mirrors the sale-deletion gate
// since removing a payment rewrites the same frozen ledger.
func CanDeletePayment(sale *models.Sale) error {
	if sale == nil {
		return errors.New(errors.CodeNotFound, "sale not found")
	}
	if !statusAllowsMutation(sale.Status) {
		return errors.New(errors.CodeStateConflict,
			fmt.Sprintf("payments cannot be removed while the sale is %s", sale.Status))
	}
	return nil
}
