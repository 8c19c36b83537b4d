package finance

import (
	"errors"
	"fmt"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
)

var (
	// ErrSnapshotIsNotConstructed is returned when a FinancialSnapshot was not
	// created through ComputeSnapshot or RestoreSnapshot.
	ErrSnapshotIsNotConstructed = errors.New("FinancialSnapshot must be created via ComputeSnapshot or RestoreSnapshot")

	// ErrNoOrderLines is returned when a snapshot is requested for an empty order.
	ErrNoOrderLines = errors.New("at least one order line is required")

	// ErrSnapshotDoesNotFoot is returned when a restored snapshot violates its
	// conservation invariants. A stored snapshot that does not foot indicates
	// corrupted data, never a rounding artifact.
	ErrSnapshotDoesNotFoot = errors.New("financial snapshot totals do not foot")
)

// LineSnapshot is the per-product financial breakdown of one order line.
// It is owned exclusively by its FinancialSnapshot and never shared or
// mutated after computation.
type LineSnapshot struct {
	productID       kernel.UUID
	quantity        int
	unitPriceIncVat kernel.Money
	unitPriceExVat  kernel.Money

	lineSubtotalExVat kernel.Money
	lineVat           kernel.Money
	lineTotal         kernel.Money

	commissionExVat kernel.Money
	commissionVat   kernel.Money
	commissionTotal kernel.Money

	merchantPayout kernel.Money
}

// ProductID returns the product this line breaks down.
func (l LineSnapshot) ProductID() kernel.UUID { return l.productID }

// Quantity returns the number of units covered by this line.
func (l LineSnapshot) Quantity() int { return l.quantity }

// UnitPriceIncVat returns the frozen VAT-inclusive unit price.
func (l LineSnapshot) UnitPriceIncVat() kernel.Money { return l.unitPriceIncVat }

// UnitPriceExVat returns the extracted ex-VAT unit price.
func (l LineSnapshot) UnitPriceExVat() kernel.Money { return l.unitPriceExVat }

// LineSubtotalExVat returns quantity times the ex-VAT unit price, rounded.
func (l LineSnapshot) LineSubtotalExVat() kernel.Money { return l.lineSubtotalExVat }

// LineVat returns VAT charged on the line subtotal.
func (l LineSnapshot) LineVat() kernel.Money { return l.lineVat }

// LineTotal returns the VAT-inclusive line total.
func (l LineSnapshot) LineTotal() kernel.Money { return l.lineTotal }

// CommissionExVat returns the platform commission on the ex-VAT subtotal.
func (l LineSnapshot) CommissionExVat() kernel.Money { return l.commissionExVat }

// CommissionVat returns VAT charged on the commission itself.
func (l LineSnapshot) CommissionVat() kernel.Money { return l.commissionVat }

// CommissionTotal returns the VAT-inclusive commission.
func (l LineSnapshot) CommissionTotal() kernel.Money { return l.commissionTotal }

// MerchantPayout returns what the merchant receives for this line:
// line total minus the inclusive commission.
func (l LineSnapshot) MerchantPayout() kernel.Money { return l.merchantPayout }

// FinancialSnapshot is the immutable financial breakdown of an order,
// computed once at placement with the store's VAT and commission rates
// frozen in. Aggregate fields are sums of the already-rounded per-line
// fields, never re-derived from aggregate inputs.
type FinancialSnapshot struct {
	lines []LineSnapshot

	vatRate        kernel.Rate
	commissionRate kernel.Rate

	subtotalExVat  kernel.Money
	vatOnProducts  kernel.Money
	subtotalIncVat kernel.Money

	deliveryFeeExVat  kernel.Money
	vatOnDelivery     kernel.Money
	deliveryFeeIncVat kernel.Money

	commissionExVat  kernel.Money
	commissionVat    kernel.Money
	commissionIncVat kernel.Money

	merchantPayout kernel.Money
	orderTotal     kernel.Money

	isConstructed bool
}

// ComputeSnapshot decomposes the order lines and delivery fee into the full
// financial breakdown. It is a pure function: identical frozen inputs yield
// an identical snapshot.
//
// Per line: the ex-VAT unit price is extracted from the frozen inclusive
// price, the subtotal and VAT are rounded per line, commission is computed
// on the ex-VAT subtotal and itself carries VAT, and the merchant payout is
// the line total minus the inclusive commission. The delivery fee is split
// like a product line but carries no commission.
func ComputeSnapshot(
	lines []OrderLine,
	deliveryFeeIncVat kernel.Money,
	vatRate kernel.Rate,
	commissionRate kernel.Rate,
) (FinancialSnapshot, error) {
	if len(lines) == 0 {
		return FinancialSnapshot{}, ErrNoOrderLines
	}
	if err := errors.Join(vatRate.Validate(), commissionRate.Validate()); err != nil {
		return FinancialSnapshot{}, err
	}
	if deliveryFeeIncVat.IsNegative() {
		return FinancialSnapshot{}, errs.NewValueIsInvalidErrorWithCause("delivery fee",
			fmt.Errorf("%s is negative", deliveryFeeIncVat))
	}

	snap := FinancialSnapshot{
		vatRate:        vatRate,
		commissionRate: commissionRate,
		lines:          make([]LineSnapshot, 0, len(lines)),
		isConstructed:  true,
	}

	for _, line := range lines {
		if err := line.Validate(); err != nil {
			return FinancialSnapshot{}, err
		}

		ls := computeLine(line, vatRate, commissionRate)
		snap.lines = append(snap.lines, ls)

		snap.subtotalExVat = snap.subtotalExVat.Add(ls.lineSubtotalExVat)
		snap.vatOnProducts = snap.vatOnProducts.Add(ls.lineVat)
		snap.subtotalIncVat = snap.subtotalIncVat.Add(ls.lineTotal)
		snap.commissionExVat = snap.commissionExVat.Add(ls.commissionExVat)
		snap.commissionVat = snap.commissionVat.Add(ls.commissionVat)
		snap.commissionIncVat = snap.commissionIncVat.Add(ls.commissionTotal)
		snap.merchantPayout = snap.merchantPayout.Add(ls.merchantPayout)
	}

	snap.deliveryFeeIncVat = deliveryFeeIncVat
	snap.deliveryFeeExVat, snap.vatOnDelivery = kernel.ExtractExVat(deliveryFeeIncVat, vatRate)
	snap.orderTotal = snap.subtotalIncVat.Add(deliveryFeeIncVat)

	return snap, nil
}

// computeLine performs the per-line decomposition. Every multiplication by a
// rate rounds before its result is combined with other rounded values.
func computeLine(line OrderLine, vatRate, commissionRate kernel.Rate) LineSnapshot {
	unitExVat, _ := kernel.ExtractExVat(line.UnitPriceIncVat(), vatRate)

	lineSubtotalExVat := unitExVat.MulInt(line.Quantity())
	lineVat := lineSubtotalExVat.MulRate(vatRate)
	lineTotal := lineSubtotalExVat.Add(lineVat)

	commissionExVat := lineSubtotalExVat.MulRate(commissionRate)
	commissionVat := commissionExVat.MulRate(vatRate)
	commissionTotal := commissionExVat.Add(commissionVat)

	return LineSnapshot{
		productID:         line.ProductID(),
		quantity:          line.Quantity(),
		unitPriceIncVat:   line.UnitPriceIncVat(),
		unitPriceExVat:    unitExVat,
		lineSubtotalExVat: lineSubtotalExVat,
		lineVat:           lineVat,
		lineTotal:         lineTotal,
		commissionExVat:   commissionExVat,
		commissionVat:     commissionVat,
		commissionTotal:   commissionTotal,
		merchantPayout:    lineTotal.Sub(commissionTotal),
	}
}

// Validate ensures the snapshot was created via its constructors.
func (s FinancialSnapshot) Validate() error {
	if !s.isConstructed {
		return ErrSnapshotIsNotConstructed
	}
	return nil
}

// Lines returns a copy of the per-line breakdowns.
func (s FinancialSnapshot) Lines() []LineSnapshot {
	out := make([]LineSnapshot, len(s.lines))
	copy(out, s.lines)
	return out
}

// VatRate returns the VAT rate frozen into the snapshot.
func (s FinancialSnapshot) VatRate() kernel.Rate { return s.vatRate }

// CommissionRate returns the commission rate frozen into the snapshot.
func (s FinancialSnapshot) CommissionRate() kernel.Rate { return s.commissionRate }

// SubtotalExVat returns the sum of ex-VAT line subtotals.
func (s FinancialSnapshot) SubtotalExVat() kernel.Money { return s.subtotalExVat }

// VatOnProducts returns the sum of per-line VAT.
func (s FinancialSnapshot) VatOnProducts() kernel.Money { return s.vatOnProducts }

// SubtotalIncVat returns the sum of VAT-inclusive line totals.
func (s FinancialSnapshot) SubtotalIncVat() kernel.Money { return s.subtotalIncVat }

// DeliveryFeeExVat returns the ex-VAT delivery fee.
func (s FinancialSnapshot) DeliveryFeeExVat() kernel.Money { return s.deliveryFeeExVat }

// VatOnDelivery returns the VAT component of the delivery fee.
func (s FinancialSnapshot) VatOnDelivery() kernel.Money { return s.vatOnDelivery }

// DeliveryFeeIncVat returns the inclusive delivery fee charged to the customer.
func (s FinancialSnapshot) DeliveryFeeIncVat() kernel.Money { return s.deliveryFeeIncVat }

// CommissionExVat returns the aggregated ex-VAT platform commission.
func (s FinancialSnapshot) CommissionExVat() kernel.Money { return s.commissionExVat }

// CommissionVat returns the aggregated VAT on the commission.
func (s FinancialSnapshot) CommissionVat() kernel.Money { return s.commissionVat }

// CommissionIncVat returns the aggregated inclusive commission.
func (s FinancialSnapshot) CommissionIncVat() kernel.Money { return s.commissionIncVat }

// MerchantPayout returns the aggregated merchant payout.
func (s FinancialSnapshot) MerchantPayout() kernel.Money { return s.merchantPayout }

// OrderTotal returns what the customer pays: product totals plus delivery.
func (s FinancialSnapshot) OrderTotal() kernel.Money { return s.orderTotal }

// LineSnapshotRecord is the persistence shape of a LineSnapshot.
type LineSnapshotRecord struct {
	ProductID         string       `json:"product_id"`
	Quantity          int          `json:"quantity"`
	UnitPriceIncVat   kernel.Money `json:"unit_price_inc_vat"`
	UnitPriceExVat    kernel.Money `json:"unit_price_ex_vat"`
	LineSubtotalExVat kernel.Money `json:"line_subtotal_ex_vat"`
	LineVat           kernel.Money `json:"line_vat"`
	LineTotal         kernel.Money `json:"line_total"`
	CommissionExVat   kernel.Money `json:"commission_ex_vat"`
	CommissionVat     kernel.Money `json:"commission_vat"`
	CommissionTotal   kernel.Money `json:"commission_total"`
	MerchantPayout    kernel.Money `json:"merchant_payout"`
}

// SnapshotRecord is the persistence shape of a FinancialSnapshot.
// Repositories serialize it; RestoreSnapshot revalidates it on the way back.
type SnapshotRecord struct {
	Lines             []LineSnapshotRecord `json:"lines"`
	VatRate           kernel.Rate          `json:"vat_rate"`
	CommissionRate    kernel.Rate          `json:"commission_rate"`
	SubtotalExVat     kernel.Money         `json:"subtotal_ex_vat"`
	VatOnProducts     kernel.Money         `json:"vat_on_products"`
	SubtotalIncVat    kernel.Money         `json:"subtotal_inc_vat"`
	DeliveryFeeExVat  kernel.Money         `json:"delivery_fee_ex_vat"`
	VatOnDelivery     kernel.Money         `json:"vat_on_delivery"`
	DeliveryFeeIncVat kernel.Money         `json:"delivery_fee_inc_vat"`
	CommissionExVat   kernel.Money         `json:"commission_ex_vat"`
	CommissionVat     kernel.Money         `json:"commission_vat"`
	CommissionIncVat  kernel.Money         `json:"commission_inc_vat"`
	MerchantPayout    kernel.Money         `json:"merchant_payout"`
	OrderTotal        kernel.Money         `json:"order_total"`
}

// Record converts the snapshot to its persistence shape.
func (s FinancialSnapshot) Record() SnapshotRecord {
	lines := make([]LineSnapshotRecord, len(s.lines))
	for i, l := range s.lines {
		lines[i] = LineSnapshotRecord{
			ProductID:         l.productID.String(),
			Quantity:          l.quantity,
			UnitPriceIncVat:   l.unitPriceIncVat,
			UnitPriceExVat:    l.unitPriceExVat,
			LineSubtotalExVat: l.lineSubtotalExVat,
			LineVat:           l.lineVat,
			LineTotal:         l.lineTotal,
			CommissionExVat:   l.commissionExVat,
			CommissionVat:     l.commissionVat,
			CommissionTotal:   l.commissionTotal,
			MerchantPayout:    l.merchantPayout,
		}
	}

	return SnapshotRecord{
		Lines:             lines,
		VatRate:           s.vatRate,
		CommissionRate:    s.commissionRate,
		SubtotalExVat:     s.subtotalExVat,
		VatOnProducts:     s.vatOnProducts,
		SubtotalIncVat:    s.subtotalIncVat,
		DeliveryFeeExVat:  s.deliveryFeeExVat,
		VatOnDelivery:     s.vatOnDelivery,
		DeliveryFeeIncVat: s.deliveryFeeIncVat,
		CommissionExVat:   s.commissionExVat,
		CommissionVat:     s.commissionVat,
		CommissionIncVat:  s.commissionIncVat,
		MerchantPayout:    s.merchantPayout,
		OrderTotal:        s.orderTotal,
	}
}

// RestoreSnapshot reconstructs a FinancialSnapshot from persistence.
// Conservation invariants are re-checked: a record whose totals do not foot
// is rejected with ErrSnapshotDoesNotFoot rather than silently accepted.
func RestoreSnapshot(rec SnapshotRecord) (FinancialSnapshot, error) {
	if len(rec.Lines) == 0 {
		return FinancialSnapshot{}, ErrNoOrderLines
	}
	if err := errors.Join(rec.VatRate.Validate(), rec.CommissionRate.Validate()); err != nil {
		return FinancialSnapshot{}, err
	}

	snap := FinancialSnapshot{
		vatRate:           rec.VatRate,
		commissionRate:    rec.CommissionRate,
		subtotalExVat:     rec.SubtotalExVat,
		vatOnProducts:     rec.VatOnProducts,
		subtotalIncVat:    rec.SubtotalIncVat,
		deliveryFeeExVat:  rec.DeliveryFeeExVat,
		vatOnDelivery:     rec.VatOnDelivery,
		deliveryFeeIncVat: rec.DeliveryFeeIncVat,
		commissionExVat:   rec.CommissionExVat,
		commissionVat:     rec.CommissionVat,
		commissionIncVat:  rec.CommissionIncVat,
		merchantPayout:    rec.MerchantPayout,
		orderTotal:        rec.OrderTotal,
		lines:             make([]LineSnapshot, 0, len(rec.Lines)),
		isConstructed:     true,
	}

	for _, lr := range rec.Lines {
		productID, err := kernel.UUIDFromString(lr.ProductID)
		if err != nil {
			return FinancialSnapshot{}, err
		}
		snap.lines = append(snap.lines, LineSnapshot{
			productID:         productID,
			quantity:          lr.Quantity,
			unitPriceIncVat:   lr.UnitPriceIncVat,
			unitPriceExVat:    lr.UnitPriceExVat,
			lineSubtotalExVat: lr.LineSubtotalExVat,
			lineVat:           lr.LineVat,
			lineTotal:         lr.LineTotal,
			commissionExVat:   lr.CommissionExVat,
			commissionVat:     lr.CommissionVat,
			commissionTotal:   lr.CommissionTotal,
			merchantPayout:    lr.MerchantPayout,
		})
	}

	if err := snap.foot(); err != nil {
		return FinancialSnapshot{}, err
	}

	return snap, nil
}

// foot re-checks the conservation invariants over the per-line fields.
func (s FinancialSnapshot) foot() error {
	sumTotals := kernel.ZeroMoney()
	sumPayouts := kernel.ZeroMoney()
	sumCommissions := kernel.ZeroMoney()

	for _, l := range s.lines {
		if !l.merchantPayout.Add(l.commissionTotal).IsEqual(l.lineTotal) {
			return fmt.Errorf("%w: line %s payout plus commission differs from line total",
				ErrSnapshotDoesNotFoot, l.productID)
		}
		sumTotals = sumTotals.Add(l.lineTotal)
		sumPayouts = sumPayouts.Add(l.merchantPayout)
		sumCommissions = sumCommissions.Add(l.commissionTotal)
	}

	if !sumTotals.Add(s.deliveryFeeIncVat).IsEqual(s.orderTotal) {
		return fmt.Errorf("%w: line totals plus delivery differ from order total", ErrSnapshotDoesNotFoot)
	}
	if !sumPayouts.IsEqual(s.merchantPayout) {
		return fmt.Errorf("%w: line payouts differ from merchant payout", ErrSnapshotDoesNotFoot)
	}
	if !sumCommissions.IsEqual(s.commissionIncVat) {
		return fmt.Errorf("%w: line commissions differ from aggregate commission", ErrSnapshotDoesNotFoot)
	}
	if !s.deliveryFeeExVat.Add(s.vatOnDelivery).IsEqual(s.deliveryFeeIncVat) {
		return fmt.Errorf("%w: delivery fee components differ from inclusive fee", ErrSnapshotDoesNotFoot)
	}

	return nil
}
