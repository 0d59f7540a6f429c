package services

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"rapidmandados_backend/internal/config"
	"rapidmandados_backend/internal/email"
	"rapidmandados_backend/internal/models"
	"rapidmandados_backend/internal/repositories"

	"gorm.io/gorm"
)

func setTestConfig(t *testing.T) {
	t.Helper()
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.TTL = 60
	cfg.Commission.Rate = 0.15
	cfg.Commission.ServiceFee = 15.0
	cfg.Commission.PremiumSubscriptionMonthly = 200.0
	cfg.Orders.MinPrice = 50.0
	cfg.Orders.MaxPrice = 10000.0
	cfg.Verification.CodeTTLHours = 24
	cfg.Verification.MaxAttempts = 3
	config.AppConfig = cfg
}

// --- user repo ---

type fakeUserRepo struct {
	users map[string]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*models.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) FindByID(_ *gorm.DB, id string) (*models.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) FindByEmail(_ *gorm.DB, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) Create(_ *gorm.DB, user *models.User) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return repositories.ErrUserAlreadyExists
		}
	}
	if user.ID == "" {
		user.ID = "user-" + user.Email
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Save(_ *gorm.DB, user *models.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) UpdateFields(_ *gorm.DB, userID string, fields map[string]interface{}) error {
	u, ok := r.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	for k, v := range fields {
		switch k {
		case "documents_uploaded":
			u.DocumentsUploaded = v.(bool)
		case "admin_approved":
			u.AdminApproved = v.(bool)
		case "admin_comments":
			u.AdminComments = v.(string)
		case "status":
			u.Status = v.(models.UserStatus)
		case "total_orders":
			// gorm.Expr в тестах трактуем как инкремент
			u.TotalOrders++
		}
	}
	return nil
}

func (r *fakeUserRepo) UpdateStatus(_ *gorm.DB, userID string, status models.UserStatus) error {
	u, ok := r.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.Status = status
	return nil
}

func (r *fakeUserRepo) SetEmailVerified(_ *gorm.DB, userID string) error {
	u, ok := r.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.IsEmailVerified = true
	return nil
}

func (r *fakeUserRepo) SetActive(_ *gorm.DB, userID string, active bool) error {
	u, ok := r.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.IsActive = active
	return nil
}

func (r *fakeUserRepo) FindByRole(_ *gorm.DB, role models.UserRole, _, _ int) ([]models.User, error) {
	var out []models.User
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) FindAllNonAdmin(_ *gorm.DB) ([]models.User, error) {
	var out []models.User
	for _, u := range r.users {
		if u.Role != models.UserRoleAdmin {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) FindPendingDrivers(_ *gorm.DB) ([]models.User, error) {
	var out []models.User
	for _, u := range r.users {
		if u.Role == models.UserRoleDriver && u.Status == models.UserStatusPending {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) CountActiveNonAdmin(_ *gorm.DB) (int64, error) {
	var n int64
	for _, u := range r.users {
		if u.Role != models.UserRoleAdmin && u.IsActive {
			n++
		}
	}
	return n, nil
}

func (r *fakeUserRepo) CountActiveDrivers(_ *gorm.DB) (int64, error) {
	var n int64
	for _, u := range r.users {
		if u.Role == models.UserRoleDriver && u.IsActive {
			n++
		}
	}
	return n, nil
}

func (r *fakeUserRepo) CountAll(_ *gorm.DB) (int64, error) {
	return int64(len(r.users)), nil
}

// --- order repo ---

type fakeOrderRepo struct {
	orders map[string]*models.Order
}

func newFakeOrderRepo(orders ...*models.Order) *fakeOrderRepo {
	r := &fakeOrderRepo{orders: make(map[string]*models.Order)}
	for _, o := range orders {
		r.orders[o.ID] = o
	}
	return r
}

func (r *fakeOrderRepo) Create(_ *gorm.DB, order *models.Order) error {
	if order.ID == "" {
		order.ID = "order-" + order.Title
	}
	r.orders[order.ID] = order
	return nil
}

func (r *fakeOrderRepo) FindByID(_ *gorm.DB, id string) (*models.Order, error) {
	if o, ok := r.orders[id]; ok {
		return o, nil
	}
	return nil, repositories.ErrOrderNotFound
}

func (r *fakeOrderRepo) FindByIDWithUsers(db *gorm.DB, id string) (*models.Order, error) {
	return r.FindByID(db, id)
}

func (r *fakeOrderRepo) FindPending(_ *gorm.DB, _, _ int) ([]models.Order, error) {
	var out []models.Order
	for _, o := range r.orders {
		if o.Status == models.OrderStatusPending && o.DriverID == nil {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) FindByClient(_ *gorm.DB, clientID string) ([]models.Order, error) {
	var out []models.Order
	for _, o := range r.orders {
		if o.ClientID == clientID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) FindByDriver(_ *gorm.DB, driverID string) ([]models.Order, error) {
	var out []models.Order
	for _, o := range r.orders {
		if o.DriverID != nil && *o.DriverID == driverID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) FindAll(_ *gorm.DB, _, _ int) ([]models.Order, error) {
	var out []models.Order
	for _, o := range r.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (r *fakeOrderRepo) Accept(_ *gorm.DB, orderID, driverID string) error {
	o, ok := r.orders[orderID]
	if !ok {
		return repositories.ErrOrderNotFound
	}
	if o.Status != models.OrderStatusPending || o.DriverID != nil {
		return repositories.ErrOrderTaken
	}
	now := time.Now()
	o.DriverID = &driverID
	o.Status = models.OrderStatusAccepted
	o.AcceptedAt = &now
	return nil
}

func (r *fakeOrderRepo) UpdateStatus(_ *gorm.DB, orderID string, from, to models.OrderStatus) error {
	o, ok := r.orders[orderID]
	if !ok || o.Status != from {
		return repositories.ErrOrderNotFound
	}
	o.Status = to
	return nil
}

func (r *fakeOrderRepo) SetCashPending(_ *gorm.DB, orderID string, fin models.OrderFinancials) error {
	o, ok := r.orders[orderID]
	if !ok {
		return repositories.ErrOrderNotFound
	}
	method := models.PaymentMethodCash
	o.PaymentMethod = &method
	o.PaymentStatus = models.PaymentStatusPending
	o.Financials = fin
	return nil
}

func (r *fakeOrderRepo) UpdatePaymentStatus(_ *gorm.DB, orderID string, from, to models.PaymentStatus) error {
	o, ok := r.orders[orderID]
	if !ok || o.PaymentStatus != from {
		return repositories.ErrOrderNotUpdatable
	}
	o.PaymentStatus = to
	return nil
}

func (r *fakeOrderRepo) MarkDelivered(_ *gorm.DB, orderID string) (*models.Order, error) {
	o, ok := r.orders[orderID]
	if !ok {
		return nil, repositories.ErrOrderNotFound
	}
	if o.Status != models.OrderStatusInProgress {
		return nil, repositories.ErrOrderNotUpdatable
	}
	now := time.Now()
	o.Status = models.OrderStatusDelivered
	o.DeliveredAt = &now
	return o, nil
}

func (r *fakeOrderRepo) CountByStatus(_ *gorm.DB, status models.OrderStatus) (int64, error) {
	var n int64
	for _, o := range r.orders {
		if o.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *fakeOrderRepo) CountAll(_ *gorm.DB) (int64, error) {
	return int64(len(r.orders)), nil
}

func (r *fakeOrderRepo) SumDeliveredFinancials(_ *gorm.DB, since *time.Time) (*repositories.DeliveredTotals, error) {
	totals := &repositories.DeliveredTotals{}
	for _, o := range r.orders {
		if o.Status != models.OrderStatusDelivered {
			continue
		}
		if since != nil && o.CreatedAt.Before(*since) {
			continue
		}
		totals.Count++
		totals.Revenue += o.Financials.Total
		totals.OwnerEarnings += o.Financials.OwnerEarnings
		totals.ServiceFees += o.Financials.ServiceFee
		totals.DriverEarnings += o.Financials.DriverEarnings
	}
	return totals, nil
}

// --- payment repo ---

type fakePaymentRepo struct {
	transactions []*models.PaymentTransaction
	payouts      []*models.DriverPayout
	collections  []*models.CashCollection
	settled      map[string]bool
	orders       *fakeOrderRepo
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{settled: make(map[string]bool)}
}

func (r *fakePaymentRepo) CreateTransaction(_ *gorm.DB, tx *models.PaymentTransaction) error {
	if tx.ID == "" {
		tx.ID = fmt.Sprintf("tx-%d", len(r.transactions)+1)
	}
	r.transactions = append(r.transactions, tx)
	return nil
}

func (r *fakePaymentRepo) FindTransactionsByUser(_ *gorm.DB, userID string) ([]models.PaymentTransaction, error) {
	var out []models.PaymentTransaction
	for _, tx := range r.transactions {
		if tx.UserID != nil && *tx.UserID == userID {
			out = append(out, *tx)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) FindAllTransactions(_ *gorm.DB) ([]models.PaymentTransaction, error) {
	var out []models.PaymentTransaction
	for _, tx := range r.transactions {
		out = append(out, *tx)
	}
	return out, nil
}

func (r *fakePaymentRepo) SettleCashOrder(_ *gorm.DB, orderID string, payout *models.DriverPayout, collection *models.CashCollection) error {
	if r.settled[orderID] {
		return repositories.ErrAlreadySettled
	}
	if r.orders != nil {
		order, ok := r.orders.orders[orderID]
		if !ok || order.PaymentStatus == models.PaymentStatusPaid {
			return repositories.ErrAlreadySettled
		}
		order.PaymentStatus = models.PaymentStatusPaid
	}
	for _, tx := range r.transactions {
		if tx.OrderID != nil && *tx.OrderID == orderID &&
			tx.PaymentMethod == models.PaymentMethodCash &&
			tx.PaymentStatus == models.PaymentStatusPending {
			tx.PaymentStatus = models.PaymentStatusPaid
		}
	}
	r.settled[orderID] = true
	if payout.ID == "" {
		payout.ID = "payout-" + payout.OrderID
	}
	if collection.ID == "" {
		collection.ID = "collection-" + collection.OrderID
	}
	r.payouts = append(r.payouts, payout)
	r.collections = append(r.collections, collection)
	return nil
}

func (r *fakePaymentRepo) FindPayouts(_ *gorm.DB, status *models.TransferStatus) ([]models.DriverPayout, error) {
	var out []models.DriverPayout
	for _, p := range r.payouts {
		if status == nil || p.TransferStatus == *status {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) FindPayoutsByDriver(_ *gorm.DB, driverID string) ([]models.DriverPayout, error) {
	var out []models.DriverPayout
	for _, p := range r.payouts {
		if p.DriverID == driverID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) CompletePayout(_ *gorm.DB, payoutID string) error {
	for _, p := range r.payouts {
		if p.ID != payoutID {
			continue
		}
		if p.TransferStatus == models.TransferStatusCompleted {
			return repositories.ErrAlreadySettled
		}
		p.TransferStatus = models.TransferStatusCompleted
		return nil
	}
	return repositories.ErrPayoutNotFound
}

func (r *fakePaymentRepo) FindCollections(_ *gorm.DB, status *models.PaymentStatus) ([]models.CashCollection, error) {
	var out []models.CashCollection
	for _, c := range r.collections {
		if status == nil || c.PaymentStatus == *status {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) FindCollectionsByDriver(_ *gorm.DB, driverID string) ([]models.CashCollection, error) {
	var out []models.CashCollection
	for _, c := range r.collections {
		if c.DriverID == driverID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) MarkCommissionPaid(_ *gorm.DB, collectionID string) error {
	for _, c := range r.collections {
		if c.ID != collectionID {
			continue
		}
		if c.PaymentStatus == models.PaymentStatusPaid {
			return repositories.ErrAlreadySettled
		}
		c.PaymentStatus = models.PaymentStatusPaid
		return nil
	}
	return repositories.ErrCollectionNotFound
}

func (r *fakePaymentRepo) SumPendingPayouts(_ *gorm.DB) (float64, error) {
	var sum float64
	for _, p := range r.payouts {
		if p.TransferStatus == models.TransferStatusPending {
			sum += p.Amount
		}
	}
	return sum, nil
}

func (r *fakePaymentRepo) SumPendingCommission(_ *gorm.DB) (float64, error) {
	var sum float64
	for _, c := range r.collections {
		if c.PaymentStatus == models.PaymentStatusPending {
			sum += c.CommissionOwed
		}
	}
	return sum, nil
}

// --- document repo ---

type fakeDocumentRepo struct {
	docs []*models.Document
}

func newFakeDocumentRepo(docs ...*models.Document) *fakeDocumentRepo {
	return &fakeDocumentRepo{docs: docs}
}

func (r *fakeDocumentRepo) Create(_ *gorm.DB, doc *models.Document) error {
	if doc.ID == "" {
		doc.ID = "doc-" + string(doc.DocumentType)
	}
	r.docs = append(r.docs, doc)
	return nil
}

func (r *fakeDocumentRepo) FindByID(_ *gorm.DB, id string) (*models.Document, error) {
	for _, d := range r.docs {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, repositories.ErrDocumentNotFound
}

func (r *fakeDocumentRepo) FindByUser(_ *gorm.DB, userID string) ([]models.Document, error) {
	var out []models.Document
	for _, d := range r.docs {
		if d.UserID == userID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *fakeDocumentRepo) FindByUserAndType(_ *gorm.DB, userID string, docType models.DocumentType) (*models.Document, error) {
	var latest *models.Document
	for _, d := range r.docs {
		if d.UserID == userID && d.DocumentType == docType {
			if latest == nil || d.UploadDate.After(latest.UploadDate) {
				latest = d
			}
		}
	}
	if latest == nil {
		return nil, repositories.ErrDocumentNotFound
	}
	return latest, nil
}

func (r *fakeDocumentRepo) FindPending(_ *gorm.DB) ([]models.Document, error) {
	var out []models.Document
	for _, d := range r.docs {
		if d.Status == models.DocumentStatusPending {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *fakeDocumentRepo) ReplaceForSlot(_ *gorm.DB, doc *models.Document) error {
	kept := r.docs[:0]
	for _, d := range r.docs {
		if d.UserID != doc.UserID || d.DocumentType != doc.DocumentType {
			kept = append(kept, d)
		}
	}
	r.docs = kept
	return r.Create(nil, doc)
}

func (r *fakeDocumentRepo) Review(_ *gorm.DB, docID string, status models.DocumentStatus, comments *string) error {
	for _, d := range r.docs {
		if d.ID == docID {
			d.Status = status
			d.AdminComments = comments
			return nil
		}
	}
	return repositories.ErrDocumentNotFound
}

// --- verification repo ---

type fakeVerificationRepo struct {
	records map[string]*models.EmailVerification
	nextID  int
}

func newFakeVerificationRepo(records ...*models.EmailVerification) *fakeVerificationRepo {
	r := &fakeVerificationRepo{records: make(map[string]*models.EmailVerification)}
	for _, v := range records {
		r.records[v.ID] = v
	}
	return r
}

func (r *fakeVerificationRepo) FindPendingByUser(_ *gorm.DB, userID string) (*models.EmailVerification, error) {
	for _, v := range r.records {
		if v.UserID == userID && v.Status == models.VerificationStatusPending {
			return v, nil
		}
	}
	return nil, repositories.ErrVerificationNotFound
}

func (r *fakeVerificationRepo) Create(_ *gorm.DB, v *models.EmailVerification) error {
	if v.ID == "" {
		r.nextID++
		v.ID = fmt.Sprintf("verification-%d", r.nextID)
	}
	r.records[v.ID] = v
	return nil
}

func (r *fakeVerificationRepo) Save(_ *gorm.DB, v *models.EmailVerification) error {
	r.records[v.ID] = v
	return nil
}

func (r *fakeVerificationRepo) IncrementAttempts(_ *gorm.DB, id string) (int, error) {
	v, ok := r.records[id]
	if !ok {
		return 0, repositories.ErrVerificationNotFound
	}
	v.Attempts++
	return v.Attempts, nil
}

func (r *fakeVerificationRepo) SetStatus(_ *gorm.DB, id string, status models.VerificationStatus) error {
	v, ok := r.records[id]
	if !ok {
		return repositories.ErrVerificationNotFound
	}
	v.Status = status
	return nil
}

func (r *fakeVerificationRepo) MarkVerified(_ *gorm.DB, id string) error {
	v, ok := r.records[id]
	if !ok {
		return repositories.ErrVerificationNotFound
	}
	now := time.Now()
	v.Status = models.VerificationStatusVerified
	v.VerifiedAt = &now
	return nil
}

func (r *fakeVerificationRepo) ExpireStale(_ *gorm.DB, now time.Time) (int64, error) {
	var n int64
	for _, v := range r.records {
		if v.Status == models.VerificationStatusPending && v.IsExpired(now) {
			v.Status = models.VerificationStatusExpired
			n++
		}
	}
	return n, nil
}

// --- commission repo ---

type fakeCommissionRepo struct {
	cfg *models.CommissionConfig
}

func (r *fakeCommissionRepo) Get(_ *gorm.DB) (*models.CommissionConfig, error) {
	if r.cfg == nil {
		return nil, repositories.ErrCommissionConfigNotFound
	}
	return r.cfg, nil
}

func (r *fakeCommissionRepo) GetOrCreate(_ *gorm.DB, defaults models.CommissionConfig) (*models.CommissionConfig, error) {
	if r.cfg == nil {
		r.cfg = &defaults
	}
	return r.cfg, nil
}

func (r *fakeCommissionRepo) Update(_ *gorm.DB, cfg *models.CommissionConfig) error {
	r.cfg = cfg
	return nil
}

// --- sms provider ---

type fakeSMSProvider struct {
	mu   sync.Mutex
	sent []string
}

func (p *fakeSMSProvider) Send(phone, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, phone)
	return nil
}

// --- email provider ---

type fakeEmailProvider struct {
	mu   sync.Mutex
	sent []string
}

func (p *fakeEmailProvider) Send(_ *email.Email) error { return nil }
func (p *fakeEmailProvider) SendWithTemplate(_ string, _ email.TemplateData, _ *email.Email) error {
	return nil
}
func (p *fakeEmailProvider) SendVerification(to string, _ string, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, to)
	return nil
}
func (p *fakeEmailProvider) SendTemplate(_ []string, _ string, _ string, _ email.TemplateData) error {
	return nil
}
func (p *fakeEmailProvider) Validate() error { return nil }
func (p *fakeEmailProvider) Close() error    { return nil }
