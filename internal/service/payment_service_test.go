package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gym-core-api/internal/models"
	appErrors "github.com/noah-isme/gym-core-api/pkg/errors"
)

type mockPaymentRepo struct {
	payments     map[string]models.Payment
	created      *models.Payment
	registration *models.Registration
	settled      []string
	settleResult bool
	refundResult bool
	refundNote   string
}

func (m *mockPaymentRepo) List(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentDetail, int, error) {
	return nil, 0, nil
}

func (m *mockPaymentRepo) FindByID(ctx context.Context, id string) (*models.Payment, error) {
	if p, ok := m.payments[id]; ok {
		return &p, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockPaymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = "new-payment"
	}
	m.created = payment
	return nil
}

func (m *mockPaymentRepo) CreateWithRegistration(ctx context.Context, registration *models.Registration, payment *models.Payment) error {
	if registration.ID == "" {
		registration.ID = "new-registration"
	}
	if payment.ID == "" {
		payment.ID = "new-payment"
	}
	payment.RegistrationID = &registration.ID
	m.registration = registration
	m.created = payment
	return nil
}

func (m *mockPaymentRepo) Settle(ctx context.Context, paymentID string, gatewayTxnNo *string, paidAt time.Time, note string) (bool, error) {
	m.settled = append(m.settled, paymentID)
	return m.settleResult, nil
}

func (m *mockPaymentRepo) Refund(ctx context.Context, paymentID, note string) (bool, error) {
	m.refundNote = note
	return m.refundResult, nil
}

type mockRegistrationRepo struct {
	open       bool
	cancelled  []string
	cancelOK   bool
	expiredIDs []string
}

func (m *mockRegistrationRepo) FindByID(ctx context.Context, id string) (*models.Registration, error) {
	return &models.Registration{ID: id, MemberID: "member-1", Status: models.RegistrationStatusActive}, nil
}

func (m *mockRegistrationRepo) HasOpen(ctx context.Context, memberID string, kind models.RegistrationKind, targetID string) (bool, error) {
	return m.open, nil
}

func (m *mockRegistrationRepo) Cancel(ctx context.Context, id, note string, from ...models.RegistrationStatus) (bool, error) {
	m.cancelled = append(m.cancelled, id)
	return m.cancelOK, nil
}

func (m *mockRegistrationRepo) ExpireDue(ctx context.Context, now time.Time) ([]string, error) {
	return m.expiredIDs, nil
}

type mockMemberReader struct {
	members map[string]*models.Member
}

func (m *mockMemberReader) FindByID(ctx context.Context, id string) (*models.Member, error) {
	if member, ok := m.members[id]; ok {
		return member, nil
	}
	return nil, sql.ErrNoRows
}

type mockPackageReader struct {
	pkg *models.MembershipPackage
}

func (m *mockPackageReader) FindByID(ctx context.Context, id string) (*models.MembershipPackage, error) {
	if m.pkg == nil || m.pkg.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.pkg, nil
}

type mockClassReader struct {
	class *models.GymClass
}

func (m *mockClassReader) FindByID(ctx context.Context, id string) (*models.GymClass, error) {
	if m.class == nil || m.class.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.class, nil
}

type mockPromoReader struct {
	promo *models.Promotion
}

func (m *mockPromoReader) FindByCode(ctx context.Context, code string) (*models.Promotion, error) {
	if m.promo == nil || m.promo.Code != code {
		return nil, sql.ErrNoRows
	}
	return m.promo, nil
}

type mockNotifier struct {
	settled  []string
	refunded []string
}

func (m *mockNotifier) PaymentSettled(ctx context.Context, memberID string, amount int64) {
	m.settled = append(m.settled, memberID)
}

func (m *mockNotifier) PaymentRefunded(ctx context.Context, memberID string, amount int64, reason string) {
	m.refunded = append(m.refunded, memberID)
}

func newPaymentServiceForTest(payments *mockPaymentRepo, regs *mockRegistrationRepo, members *mockMemberReader, packages *mockPackageReader, classes *mockClassReader, promos *mockPromoReader, notifier *mockNotifier) *PaymentService {
	svc := NewPaymentService(payments, regs, members, packages, classes, promos, nil, notifier, nil, nil)
	svc.now = func() time.Time { return time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC) }
	return svc
}

func activeMember() *mockMemberReader {
	return &mockMemberReader{members: map[string]*models.Member{
		"member-1": {ID: "member-1", FullName: "Tran Binh", Active: true},
	}}
}

func TestCreatePackagePaymentMonthlyRate(t *testing.T) {
	payments := &mockPaymentRepo{}
	regs := &mockRegistrationRepo{}
	packages := &mockPackageReader{pkg: &models.MembershipPackage{
		ID: "pkg-1", Name: "Standard", MonthlyRate: 500000, DurationMonths: 12, ListPrice: 5400000, Active: true,
	}}

	svc := newPaymentServiceForTest(payments, regs, activeMember(), packages, &mockClassReader{}, &mockPromoReader{}, &mockNotifier{})

	intent, err := svc.CreatePackagePayment(context.Background(), CreateRegistrationPaymentRequest{
		MemberID: "member-1",
		TargetID: "pkg-1",
		Months:   3,
		Method:   models.PaymentMethodCash,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1500000), intent.Payment.Amount)
	assert.Equal(t, models.PaymentStatusPending, intent.Payment.Status)
	require.NotNil(t, intent.Registration)
	assert.Equal(t, models.RegistrationStatusPendingPayment, intent.Registration.Status)
	assert.Equal(t, int64(1500000), intent.Registration.Fee)
}

func TestCreatePackagePaymentListPriceForFullDuration(t *testing.T) {
	payments := &mockPaymentRepo{}
	regs := &mockRegistrationRepo{}
	packages := &mockPackageReader{pkg: &models.MembershipPackage{
		ID: "pkg-1", Name: "Standard", MonthlyRate: 500000, DurationMonths: 12, ListPrice: 5400000, Active: true,
	}}

	svc := newPaymentServiceForTest(payments, regs, activeMember(), packages, &mockClassReader{}, &mockPromoReader{}, &mockNotifier{})

	intent, err := svc.CreatePackagePayment(context.Background(), CreateRegistrationPaymentRequest{
		MemberID: "member-1",
		TargetID: "pkg-1",
		Months:   12,
		Method:   models.PaymentMethodCash,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5400000), intent.Payment.Amount)
}

func TestCreatePackagePaymentAppliesPromo(t *testing.T) {
	payments := &mockPaymentRepo{}
	regs := &mockRegistrationRepo{}
	packages := &mockPackageReader{pkg: &models.MembershipPackage{
		ID: "pkg-1", Name: "Standard", MonthlyRate: 500000, DurationMonths: 12, Active: true,
	}}
	promos := &mockPromoReader{promo: &models.Promotion{
		ID:         "promo-1",
		Code:       "SUMMER10",
		PercentOff: 10,
		ValidFrom:  time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		ValidUntil: time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		Active:     true,
	}}

	svc := newPaymentServiceForTest(payments, regs, activeMember(), packages, &mockClassReader{}, promos, &mockNotifier{})

	intent, err := svc.CreatePackagePayment(context.Background(), CreateRegistrationPaymentRequest{
		MemberID:  "member-1",
		TargetID:  "pkg-1",
		Months:    3,
		Method:    models.PaymentMethodCash,
		PromoCode: "SUMMER10",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1350000), intent.Payment.Amount)
	require.NotNil(t, intent.Registration.PromoID)
	assert.Equal(t, "promo-1", *intent.Registration.PromoID)
}

func TestCreatePackagePaymentRejectsExpiredPromo(t *testing.T) {
	packages := &mockPackageReader{pkg: &models.MembershipPackage{
		ID: "pkg-1", Name: "Standard", MonthlyRate: 500000, DurationMonths: 12, Active: true,
	}}
	promos := &mockPromoReader{promo: &models.Promotion{
		ID:         "promo-1",
		Code:       "OLD",
		PercentOff: 10,
		ValidFrom:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		ValidUntil: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Active:     true,
	}}

	svc := newPaymentServiceForTest(&mockPaymentRepo{}, &mockRegistrationRepo{}, activeMember(), packages, &mockClassReader{}, promos, &mockNotifier{})

	_, err := svc.CreatePackagePayment(context.Background(), CreateRegistrationPaymentRequest{
		MemberID:  "member-1",
		TargetID:  "pkg-1",
		Months:    3,
		Method:    models.PaymentMethodCash,
		PromoCode: "OLD",
	})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
}

func TestCreatePackagePaymentRejectsOpenRegistration(t *testing.T) {
	packages := &mockPackageReader{pkg: &models.MembershipPackage{
		ID: "pkg-1", Name: "Standard", MonthlyRate: 500000, DurationMonths: 12, Active: true,
	}}
	regs := &mockRegistrationRepo{open: true}

	svc := newPaymentServiceForTest(&mockPaymentRepo{}, regs, activeMember(), packages, &mockClassReader{}, &mockPromoReader{}, &mockNotifier{})

	_, err := svc.CreatePackagePayment(context.Background(), CreateRegistrationPaymentRequest{
		MemberID: "member-1",
		TargetID: "pkg-1",
		Months:   3,
		Method:   models.PaymentMethodCash,
	})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestCreateClassPaymentUsesTermPriceForFixedSchedule(t *testing.T) {
	classes := &mockClassReader{class: &models.GymClass{
		ID: "class-1", Name: "Yoga Term", MonthlyFee: 400000, FixedSchedule: true, TermPrice: 2000000, Active: true,
	}}

	svc := newPaymentServiceForTest(&mockPaymentRepo{}, &mockRegistrationRepo{}, activeMember(), &mockPackageReader{}, classes, &mockPromoReader{}, &mockNotifier{})

	intent, err := svc.CreateClassPayment(context.Background(), CreateRegistrationPaymentRequest{
		MemberID: "member-1",
		TargetID: "class-1",
		Months:   3,
		Method:   models.PaymentMethodCash,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2000000), intent.Payment.Amount)
}

func TestProcessCashPaymentNotifiesOnSettle(t *testing.T) {
	memberID := "member-1"
	payments := &mockPaymentRepo{
		payments: map[string]models.Payment{
			"pay-1": {ID: "pay-1", MemberID: &memberID, Amount: 1500000, Status: models.PaymentStatusPending},
		},
		settleResult: true,
	}
	notifier := &mockNotifier{}

	svc := newPaymentServiceForTest(payments, &mockRegistrationRepo{}, activeMember(), &mockPackageReader{}, &mockClassReader{}, &mockPromoReader{}, notifier)

	settled, err := svc.ProcessCashPayment(context.Background(), "pay-1")
	require.NoError(t, err)
	assert.True(t, settled)
	assert.Equal(t, []string{"member-1"}, notifier.settled)
}

func TestProcessCashPaymentAlreadySettledIsNoop(t *testing.T) {
	memberID := "member-1"
	payments := &mockPaymentRepo{
		payments: map[string]models.Payment{
			"pay-1": {ID: "pay-1", MemberID: &memberID, Amount: 1500000, Status: models.PaymentStatusSuccess},
		},
		settleResult: false,
	}
	notifier := &mockNotifier{}

	svc := newPaymentServiceForTest(payments, &mockRegistrationRepo{}, activeMember(), &mockPackageReader{}, &mockClassReader{}, &mockPromoReader{}, notifier)

	settled, err := svc.ProcessCashPayment(context.Background(), "pay-1")
	require.NoError(t, err)
	assert.False(t, settled)
	assert.Empty(t, notifier.settled)
}

func TestRefundPaymentWrongStateIsNoop(t *testing.T) {
	memberID := "member-1"
	payments := &mockPaymentRepo{
		payments: map[string]models.Payment{
			"pay-1": {ID: "pay-1", MemberID: &memberID, Amount: 1500000, Status: models.PaymentStatusPending},
		},
		refundResult: false,
	}
	notifier := &mockNotifier{}

	svc := newPaymentServiceForTest(payments, &mockRegistrationRepo{}, activeMember(), &mockPackageReader{}, &mockClassReader{}, &mockPromoReader{}, notifier)

	refunded, err := svc.RefundPayment(context.Background(), "pay-1", "member request")
	require.NoError(t, err)
	assert.False(t, refunded)
	assert.Empty(t, notifier.refunded)
}

func TestRefundPaymentNotifiesAndAppendsReason(t *testing.T) {
	memberID := "member-1"
	payments := &mockPaymentRepo{
		payments: map[string]models.Payment{
			"pay-1": {ID: "pay-1", MemberID: &memberID, Amount: 1500000, Status: models.PaymentStatusSuccess, Note: "package Standard x3 months"},
		},
		refundResult: true,
	}
	notifier := &mockNotifier{}

	svc := newPaymentServiceForTest(payments, &mockRegistrationRepo{}, activeMember(), &mockPackageReader{}, &mockClassReader{}, &mockPromoReader{}, notifier)

	refunded, err := svc.RefundPayment(context.Background(), "pay-1", "member request")
	require.NoError(t, err)
	assert.True(t, refunded)
	assert.Equal(t, "package Standard x3 months; refund: member request", payments.refundNote)
	assert.Equal(t, []string{"member-1"}, notifier.refunded)
}

func TestExpireRegistrationsCounts(t *testing.T) {
	regs := &mockRegistrationRepo{expiredIDs: []string{"reg-1", "reg-2"}}

	svc := newPaymentServiceForTest(&mockPaymentRepo{}, regs, activeMember(), &mockPackageReader{}, &mockClassReader{}, &mockPromoReader{}, &mockNotifier{})

	count, err := svc.ExpireRegistrations(context.Background(), time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
