package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/gym-core-api/internal/models"
	appErrors "github.com/noah-isme/gym-core-api/pkg/errors"
	"github.com/noah-isme/gym-core-api/pkg/vnpay"
)

type paymentRepository interface {
	List(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Payment, error)
	Create(ctx context.Context, payment *models.Payment) error
	CreateWithRegistration(ctx context.Context, registration *models.Registration, payment *models.Payment) error
	Settle(ctx context.Context, paymentID string, gatewayTxnNo *string, paidAt time.Time, note string) (bool, error)
	Refund(ctx context.Context, paymentID, note string) (bool, error)
}

type paymentRegistrationRepository interface {
	FindByID(ctx context.Context, id string) (*models.Registration, error)
	HasOpen(ctx context.Context, memberID string, kind models.RegistrationKind, targetID string) (bool, error)
	Cancel(ctx context.Context, id, note string, from ...models.RegistrationStatus) (bool, error)
	ExpireDue(ctx context.Context, now time.Time) ([]string, error)
}

type memberReader interface {
	FindByID(ctx context.Context, id string) (*models.Member, error)
}

type packageReader interface {
	FindByID(ctx context.Context, id string) (*models.MembershipPackage, error)
}

type gymClassReader interface {
	FindByID(ctx context.Context, id string) (*models.GymClass, error)
}

type promoReader interface {
	FindByCode(ctx context.Context, code string) (*models.Promotion, error)
}

type paymentNotifier interface {
	PaymentSettled(ctx context.Context, memberID string, amount int64)
	PaymentRefunded(ctx context.Context, memberID string, amount int64, reason string)
}

// CreateRegistrationPaymentRequest starts a package or class purchase.
type CreateRegistrationPaymentRequest struct {
	MemberID  string               `json:"member_id" validate:"required"`
	TargetID  string               `json:"target_id" validate:"required"`
	Months    int                  `json:"months" validate:"required,min=1,max=36"`
	Method    models.PaymentMethod `json:"method" validate:"required"`
	PromoCode string               `json:"promo_code"`
	StartDate *time.Time           `json:"start_date"`
	ClientIP  string               `json:"-"`
}

// PaymentService drives the registration/payment lifecycle.
type PaymentService struct {
	payments      paymentRepository
	registrations paymentRegistrationRepository
	members       memberReader
	packages      packageReader
	classes       gymClassReader
	promos        promoReader
	gateway       *vnpay.Client
	notifier      paymentNotifier
	validator     *validator.Validate
	logger        *zap.Logger
	now           func() time.Time
}

// NewPaymentService constructs PaymentService.
func NewPaymentService(payments paymentRepository, registrations paymentRegistrationRepository, members memberReader, packages packageReader, classes gymClassReader, promos promoReader, gateway *vnpay.Client, notifier paymentNotifier, validate *validator.Validate, logger *zap.Logger) *PaymentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		payments:      payments,
		registrations: registrations,
		members:       members,
		packages:      packages,
		classes:       classes,
		promos:        promos,
		gateway:       gateway,
		notifier:      notifier,
		validator:     validate,
		logger:        logger,
		now:           time.Now,
	}
}

// List returns payments with pagination metadata.
func (s *PaymentService) List(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentDetail, *models.Pagination, error) {
	payments, total, err := s.payments.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list payments")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return payments, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a single payment.
func (s *PaymentService) Get(ctx context.Context, id string) (*models.Payment, error) {
	payment, err := s.payments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment")
	}
	return payment, nil
}

// CreatePackagePayment opens a package registration in PENDING_PAYMENT
// with its PENDING payment. The fee is the list price when the duration
// matches the package default, otherwise monthly rate times months.
func (s *PaymentService) CreatePackagePayment(ctx context.Context, req CreateRegistrationPaymentRequest) (*models.PaymentIntent, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}
	if !req.Method.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported payment method")
	}

	member, err := s.loadActiveMember(ctx, req.MemberID)
	if err != nil {
		return nil, err
	}

	pkg, err := s.packages.FindByID(ctx, req.TargetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "package not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load package")
	}
	if !pkg.Active {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "package is not available")
	}

	open, err := s.registrations.HasOpen(ctx, member.ID, models.RegistrationKindPackage, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate registration")
	}
	if open {
		return nil, appErrors.Clone(appErrors.ErrConflict, "member already has an open package registration")
	}

	fee := pkg.MonthlyRate * int64(req.Months)
	if req.Months == pkg.DurationMonths && pkg.ListPrice > 0 {
		fee = pkg.ListPrice
	}

	return s.createIntent(ctx, member, req, models.RegistrationKindPackage, &pkg.ID, nil, fee,
		fmt.Sprintf("package %s x%d months", pkg.Name, req.Months))
}

// CreateClassPayment opens a class registration. Fixed-schedule classes
// charge their term price regardless of months.
func (s *PaymentService) CreateClassPayment(ctx context.Context, req CreateRegistrationPaymentRequest) (*models.PaymentIntent, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}
	if !req.Method.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported payment method")
	}

	member, err := s.loadActiveMember(ctx, req.MemberID)
	if err != nil {
		return nil, err
	}

	class, err := s.classes.FindByID(ctx, req.TargetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	if !class.Active {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "class is not available")
	}

	open, err := s.registrations.HasOpen(ctx, member.ID, models.RegistrationKindClass, class.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate registration")
	}
	if open {
		return nil, appErrors.Clone(appErrors.ErrConflict, "member already has an open registration for this class")
	}

	fee := class.MonthlyFee * int64(req.Months)
	if class.FixedSchedule {
		fee = class.TermPrice
	}

	return s.createIntent(ctx, member, req, models.RegistrationKindClass, nil, &class.ID, fee,
		fmt.Sprintf("class %s x%d months", class.Name, req.Months))
}

// ProcessCashPayment settles a pending cash payment at the counter.
// A payment that is no longer PENDING is left untouched and reported as
// not settled.
func (s *PaymentService) ProcessCashPayment(ctx context.Context, paymentID string) (bool, error) {
	payment, err := s.Get(ctx, paymentID)
	if err != nil {
		return false, err
	}

	settled, err := s.payments.Settle(ctx, paymentID, nil, s.now().UTC(), "activated after cash payment")
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to settle payment")
	}
	if !settled {
		return false, nil
	}

	if payment.MemberID != nil && s.notifier != nil {
		s.notifier.PaymentSettled(ctx, *payment.MemberID, payment.Amount)
	}
	return true, nil
}

// HandleGatewayReturn verifies a VNPay return and settles the referenced
// payment. A failed signature rejects the callback outright; a declined
// transaction leaves the payment PENDING.
func (s *PaymentService) HandleGatewayReturn(ctx context.Context, query url.Values) (*models.Payment, bool, error) {
	if s.gateway == nil {
		return nil, false, appErrors.Clone(appErrors.ErrPreconditionFailed, "payment gateway is not configured")
	}

	ret, err := s.gateway.VerifyReturn(query)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInvalidSignature.Code, appErrors.ErrInvalidSignature.Status, "gateway signature verification failed")
	}

	payment, err := s.Get(ctx, ret.TxnRef)
	if err != nil {
		return nil, false, err
	}

	if !ret.Success() {
		s.logger.Info("gateway declined transaction",
			zap.String("payment_id", payment.ID),
			zap.String("response_code", ret.ResponseCode))
		return payment, false, nil
	}
	if ret.Amount != payment.Amount {
		return nil, false, appErrors.Clone(appErrors.ErrPaymentState, "gateway amount does not match payment")
	}

	txnNo := ret.TransactionNo
	settled, err := s.payments.Settle(ctx, payment.ID, &txnNo, s.now().UTC(), "activated after gateway payment")
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to settle payment")
	}
	if settled && payment.MemberID != nil && s.notifier != nil {
		s.notifier.PaymentSettled(ctx, *payment.MemberID, payment.Amount)
	}
	return payment, settled, nil
}

// RefundPayment moves a settled payment to REFUND. The registration is
// left as-is; cancelling it is a separate call. Wrong-state payments
// report false without error and emit no notification.
func (s *PaymentService) RefundPayment(ctx context.Context, paymentID, reason string) (bool, error) {
	payment, err := s.Get(ctx, paymentID)
	if err != nil {
		return false, err
	}

	note := payment.Note
	if note != "" {
		note += "; "
	}
	note += "refund: " + reason

	refunded, err := s.payments.Refund(ctx, paymentID, note)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to refund payment")
	}
	if !refunded {
		return false, nil
	}

	if payment.MemberID != nil && s.notifier != nil {
		s.notifier.PaymentRefunded(ctx, *payment.MemberID, payment.Amount, reason)
	}
	return true, nil
}

// CancelRegistration moves an open registration to CANCELED with a note.
// Terminal registrations report false without error.
func (s *PaymentService) CancelRegistration(ctx context.Context, registrationID, reason string) (bool, error) {
	if _, err := s.registrations.FindByID(ctx, registrationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration")
	}

	cancelled, err := s.registrations.Cancel(ctx, registrationID, reason,
		models.RegistrationStatusPendingPayment, models.RegistrationStatusActive)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel registration")
	}
	return cancelled, nil
}

// ExpireRegistrations closes ACTIVE registrations whose end date passed.
func (s *PaymentService) ExpireRegistrations(ctx context.Context, asOf time.Time) (int, error) {
	if asOf.IsZero() {
		asOf = s.now().UTC()
	}
	ids, err := s.registrations.ExpireDue(ctx, asOf)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to expire registrations")
	}
	if len(ids) > 0 {
		s.logger.Info("expired registrations", zap.Int("count", len(ids)))
	}
	return len(ids), nil
}

func (s *PaymentService) loadActiveMember(ctx context.Context, memberID string) (*models.Member, error) {
	member, err := s.members.FindByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "member not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load member")
	}
	if !member.Active {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "member is inactive")
	}
	return member, nil
}

func (s *PaymentService) createIntent(ctx context.Context, member *models.Member, req CreateRegistrationPaymentRequest, kind models.RegistrationKind, packageID, classID *string, fee int64, orderInfo string) (*models.PaymentIntent, error) {
	var promoID *string
	if req.PromoCode != "" {
		promo, err := s.promos.FindByCode(ctx, req.PromoCode)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "promo code not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load promotion")
		}
		if !promo.Usable(s.now().UTC()) {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "promo code is not usable")
		}
		fee = promo.Apply(fee)
		promoID = &promo.ID
	}

	start := s.now().UTC()
	if req.StartDate != nil {
		start = *req.StartDate
	}
	registration := &models.Registration{
		MemberID:  member.ID,
		Kind:      kind,
		PackageID: packageID,
		ClassID:   classID,
		StartDate: start,
		EndDate:   start.AddDate(0, req.Months, 0),
		Months:    req.Months,
		Fee:       fee,
		Status:    models.RegistrationStatusPendingPayment,
		PromoID:   promoID,
	}
	payment := &models.Payment{
		MemberID: &member.ID,
		Amount:   fee,
		Method:   req.Method,
		Status:   models.PaymentStatusPending,
		Note:     orderInfo,
	}

	if err := s.payments.CreateWithRegistration(ctx, registration, payment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create registration payment")
	}

	intent := &models.PaymentIntent{Payment: *payment, Registration: registration}
	if req.Method == models.PaymentMethodVNPay {
		if s.gateway == nil {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "payment gateway is not configured")
		}
		redirect, err := s.gateway.BuildPaymentURL(vnpay.PaymentRequest{
			TxnRef:    payment.ID,
			Amount:    payment.Amount,
			OrderInfo: orderInfo,
			ClientIP:  req.ClientIP,
		})
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build payment redirect")
		}
		intent.RedirectURL = redirect
	}
	return intent, nil
}
