package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/finacct/ledger_backend/internal/apperrors"
	"github.com/finacct/ledger_backend/internal/core/domain"
	portsrepo "github.com/finacct/ledger_backend/internal/core/ports/repositories"
	portssvc "github.com/finacct/ledger_backend/internal/core/ports/services"
	"github.com/finacct/ledger_backend/internal/core/services"
	"github.com/finacct/ledger_backend/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock JournalRepository ---
type MockJournalRepository struct {
	mock.Mock
}

// Ensure MockJournalRepository implements portsrepo.JournalRepositoryFacade
var _ portsrepo.JournalRepositoryFacade = (*MockJournalRepository)(nil)

func (m *MockJournalRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.JournalTransaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalTransaction), args.Error(1)
}

func (m *MockJournalRepository) FindTransactionByReferenceNo(ctx context.Context, referenceNo string) (*domain.JournalTransaction, error) {
	args := m.Called(ctx, referenceNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalTransaction), args.Error(1)
}

func (m *MockJournalRepository) ReferenceNoExists(ctx context.Context, referenceNo string, excludeTransactionID string) (bool, error) {
	args := m.Called(ctx, referenceNo, excludeTransactionID)
	return args.Bool(0), args.Error(1)
}

func (m *MockJournalRepository) ListTransactions(ctx context.Context, filter portsrepo.TransactionListFilter) ([]domain.JournalTransaction, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.JournalTransaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockJournalRepository) FindLineItemsByTransactionID(ctx context.Context, transactionID string) ([]domain.JournalLineItem, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalLineItem), args.Error(1)
}

func (m *MockJournalRepository) FindTransactionsByDateRange(ctx context.Context, from, to *time.Time) ([]domain.JournalTransaction, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalTransaction), args.Error(1)
}

func (m *MockJournalRepository) FindMovementsByAccountPeriod(ctx context.Context, accountID string, periodStart, periodEnd time.Time) ([]domain.AccountMovement, error) {
	args := m.Called(ctx, accountID, periodStart, periodEnd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountMovement), args.Error(1)
}

func (m *MockJournalRepository) SumAccountMovements(ctx context.Context, accountID string, before time.Time) (decimal.Decimal, decimal.Decimal, error) {
	args := m.Called(ctx, accountID, before)
	return args.Get(0).(decimal.Decimal), args.Get(1).(decimal.Decimal), args.Error(2)
}

func (m *MockJournalRepository) SaveTransaction(ctx context.Context, txn domain.JournalTransaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockJournalRepository) UpdateTransaction(ctx context.Context, txn domain.JournalTransaction) (int64, error) {
	args := m.Called(ctx, txn)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockJournalRepository) DeleteTransaction(ctx context.Context, transactionID string, deletedBy string, deletedAt time.Time) (int64, error) {
	args := m.Called(ctx, transactionID, deletedBy, deletedAt)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockJournalRepository) MarkTransactionPosted(ctx context.Context, transactionID string, postedBy string, postedAt time.Time) (int64, error) {
	args := m.Called(ctx, transactionID, postedBy, postedAt)
	return args.Get(0).(int64), args.Error(1)
}

// --- Mock COARepository ---
type MockCOARepository struct {
	mock.Mock
}

var _ portsrepo.COAReader = (*MockCOARepository)(nil)

func (m *MockCOARepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockCOARepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

// --- Test Suite Setup ---
type JournalServiceTestSuite struct {
	suite.Suite
	mockJournalRepo *MockJournalRepository
	mockCOARepo     *MockCOARepository
	service         portssvc.JournalSvcFacade
	cashAccount     domain.Account
	revenueAccount  domain.Account
	txnDate         time.Time
}

func (suite *JournalServiceTestSuite) SetupTest() {
	suite.mockJournalRepo = new(MockJournalRepository)
	suite.mockCOARepo = new(MockCOARepository)
	suite.service = services.NewJournalService(suite.mockJournalRepo, suite.mockCOARepo)

	suite.cashAccount = domain.Account{
		AccountID: uuid.NewString(),
		Code:      "1000",
		Name:      "Cash",
		IsActive:  true,
	}
	suite.revenueAccount = domain.Account{
		AccountID: uuid.NewString(),
		Code:      "4000",
		Name:      "Revenue",
		IsActive:  true,
	}
	suite.txnDate = time.Now().UTC().AddDate(0, 0, -1)
}

func (suite *JournalServiceTestSuite) accountsMap() map[string]domain.Account {
	return map[string]domain.Account{
		suite.cashAccount.AccountID:    suite.cashAccount,
		suite.revenueAccount.AccountID: suite.revenueAccount,
	}
}

func (suite *JournalServiceTestSuite) saveRequest(referenceNo string) dto.SaveJournalTransactionRequest {
	return dto.SaveJournalTransactionRequest{
		ReferenceNo: referenceNo,
		Date:        suite.txnDate,
		Description: "Cash sale",
		Items: []dto.JournalLineItemRequest{
			{AccountID: suite.cashAccount.AccountID, Debit: decimal.NewFromInt(100), Remark: "cash in"},
			{AccountID: suite.revenueAccount.AccountID, Credit: decimal.NewFromInt(100), Remark: "revenue"},
		},
	}
}

// --- Test Cases ---

func (suite *JournalServiceTestSuite) TestCreateTransaction_Success() {
	ctx := context.Background()
	req := suite.saveRequest("INV-001")

	suite.mockCOARepo.On("FindAccountsByIDs", ctx, mock.AnythingOfType("[]string")).Return(suite.accountsMap(), nil).Once()
	suite.mockJournalRepo.On("ReferenceNoExists", ctx, "INV-001", "").Return(false, nil).Once()
	suite.mockJournalRepo.On("SaveTransaction", ctx, mock.MatchedBy(func(txn domain.JournalTransaction) bool {
		return txn.ReferenceNo == "INV-001" &&
			txn.Status == domain.Draft &&
			txn.TransactionID != "" &&
			len(txn.Items) == 2 &&
			txn.Items[0].TransactionID == txn.TransactionID
	})).Return(nil).Once()

	transactionID, err := suite.service.CreateTransaction(ctx, req)

	suite.Require().NoError(err)
	suite.NotEmpty(transactionID)
	suite.mockJournalRepo.AssertExpectations(suite.T())
	suite.mockCOARepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestCreateTransaction_ValidationFailure() {
	ctx := context.Background()
	req := suite.saveRequest("INV-002")
	// Unbalance the request: the service must refuse before touching the writer.
	req.Items[1].Credit = decimal.NewFromInt(90)

	suite.mockCOARepo.On("FindAccountsByIDs", ctx, mock.AnythingOfType("[]string")).Return(suite.accountsMap(), nil).Once()
	suite.mockJournalRepo.On("ReferenceNoExists", ctx, "INV-002", "").Return(false, nil).Once()

	transactionID, err := suite.service.CreateTransaction(ctx, req)

	suite.Require().Error(err)
	suite.Empty(transactionID)
	suite.ErrorIs(err, apperrors.ErrValidation)

	var validationErrs apperrors.ValidationErrors
	suite.Require().ErrorAs(err, &validationErrs)
	suite.Len(validationErrs, 1)
	suite.Equal("items", validationErrs[0].Field)

	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveTransaction", mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestCreateTransaction_DuplicateReferenceNo() {
	ctx := context.Background()
	req := suite.saveRequest("INV-003")

	suite.mockCOARepo.On("FindAccountsByIDs", ctx, mock.AnythingOfType("[]string")).Return(suite.accountsMap(), nil).Once()
	suite.mockJournalRepo.On("ReferenceNoExists", ctx, "INV-003", "").Return(true, nil).Once()

	_, err := suite.service.CreateTransaction(ctx, req)

	suite.Require().Error(err)
	var validationErrs apperrors.ValidationErrors
	suite.Require().ErrorAs(err, &validationErrs)
	suite.Equal("referenceNo", validationErrs[0].Field)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveTransaction", mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestCreateTransaction_DuplicateRace() {
	ctx := context.Background()
	req := suite.saveRequest("INV-004")

	// The pre-check passes but the storage-level unique constraint trips:
	// callers must still see a validation failure, not an internal error.
	suite.mockCOARepo.On("FindAccountsByIDs", ctx, mock.AnythingOfType("[]string")).Return(suite.accountsMap(), nil).Once()
	suite.mockJournalRepo.On("ReferenceNoExists", ctx, "INV-004", "").Return(false, nil).Once()
	suite.mockJournalRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.JournalTransaction")).Return(apperrors.ErrDuplicate).Once()

	_, err := suite.service.CreateTransaction(ctx, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *JournalServiceTestSuite) TestGetTransactionByID_HydratesItemsAndAccounts() {
	ctx := context.Background()
	transactionID := uuid.NewString()
	header := &domain.JournalTransaction{
		TransactionID: transactionID,
		ReferenceNo:   "INV-005",
		Date:          suite.txnDate,
		Status:        domain.Draft,
	}
	items := []domain.JournalLineItem{
		{LineItemID: uuid.NewString(), TransactionID: transactionID, AccountID: suite.cashAccount.AccountID, Debit: decimal.NewFromInt(100)},
		{LineItemID: uuid.NewString(), TransactionID: transactionID, AccountID: suite.revenueAccount.AccountID, Credit: decimal.NewFromInt(100)},
	}

	suite.mockJournalRepo.On("FindTransactionByID", ctx, transactionID).Return(header, nil).Once()
	suite.mockJournalRepo.On("FindLineItemsByTransactionID", ctx, transactionID).Return(items, nil).Once()
	suite.mockCOARepo.On("FindAccountsByIDs", ctx, mock.AnythingOfType("[]string")).Return(suite.accountsMap(), nil).Once()

	txn, err := suite.service.GetTransactionByID(ctx, transactionID)

	suite.Require().NoError(err)
	suite.Require().NotNil(txn)
	suite.Len(txn.Items, 2)
	suite.Require().NotNil(txn.Items[0].Account)
	suite.Equal("1000", txn.Items[0].Account.Code)
	suite.True(txn.TotalDebit().Equal(txn.TotalCredit()))
}

func (suite *JournalServiceTestSuite) TestGetTransactionByID_NotFound() {
	ctx := context.Background()
	transactionID := uuid.NewString()

	suite.mockJournalRepo.On("FindTransactionByID", ctx, transactionID).Return(nil, apperrors.ErrNotFound).Once()

	txn, err := suite.service.GetTransactionByID(ctx, transactionID)

	suite.Require().Error(err)
	suite.Nil(txn)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *JournalServiceTestSuite) TestListTransactions_NormalizesPaging() {
	ctx := context.Background()
	params := dto.ListJournalTransactionsParams{Page: 0, PageSize: 0, Keyword: "  INV  "}

	suite.mockJournalRepo.On("ListTransactions", ctx, mock.MatchedBy(func(filter portsrepo.TransactionListFilter) bool {
		return filter.Limit == 25 && filter.Offset == 0 && filter.Keyword == "INV"
	})).Return([]domain.JournalTransaction{}, int64(0), nil).Once()

	txns, total, err := suite.service.ListTransactions(ctx, params)

	suite.Require().NoError(err)
	suite.Empty(txns)
	suite.Zero(total)
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestUpdateTransaction_Success() {
	ctx := context.Background()
	transactionID := uuid.NewString()
	existing := &domain.JournalTransaction{
		TransactionID: transactionID,
		ReferenceNo:   "INV-006",
		Status:        domain.Draft,
	}
	req := suite.saveRequest("INV-006")

	suite.mockJournalRepo.On("FindTransactionByID", ctx, transactionID).Return(existing, nil).Once()
	suite.mockCOARepo.On("FindAccountsByIDs", ctx, mock.AnythingOfType("[]string")).Return(suite.accountsMap(), nil).Once()
	// The transaction keeps its own reference number across an update.
	suite.mockJournalRepo.On("ReferenceNoExists", ctx, "INV-006", transactionID).Return(false, nil).Once()
	suite.mockJournalRepo.On("UpdateTransaction", ctx, mock.MatchedBy(func(txn domain.JournalTransaction) bool {
		return txn.TransactionID == transactionID && len(txn.Items) == 2
	})).Return(int64(1), nil).Once()

	rowsAffected, err := suite.service.UpdateTransaction(ctx, transactionID, req)

	suite.Require().NoError(err)
	suite.Equal(int64(1), rowsAffected)
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestUpdateTransaction_PostedRejected() {
	ctx := context.Background()
	transactionID := uuid.NewString()
	existing := &domain.JournalTransaction{
		TransactionID: transactionID,
		Status:        domain.Posted,
	}

	suite.mockJournalRepo.On("FindTransactionByID", ctx, transactionID).Return(existing, nil).Once()

	_, err := suite.service.UpdateTransaction(ctx, transactionID, suite.saveRequest("INV-007"))

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "UpdateTransaction", mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestDeleteTransaction_Success() {
	ctx := context.Background()
	transactionID := uuid.NewString()
	existing := &domain.JournalTransaction{TransactionID: transactionID, Status: domain.Draft}

	suite.mockJournalRepo.On("FindTransactionByID", ctx, transactionID).Return(existing, nil).Once()
	suite.mockJournalRepo.On("DeleteTransaction", ctx, transactionID, "system", mock.AnythingOfType("time.Time")).Return(int64(1), nil).Once()

	rowsAffected, err := suite.service.DeleteTransaction(ctx, transactionID)

	suite.Require().NoError(err)
	suite.Equal(int64(1), rowsAffected)
}

func (suite *JournalServiceTestSuite) TestDeleteTransaction_PostedRejected() {
	ctx := context.Background()
	transactionID := uuid.NewString()
	existing := &domain.JournalTransaction{TransactionID: transactionID, Status: domain.Posted}

	suite.mockJournalRepo.On("FindTransactionByID", ctx, transactionID).Return(existing, nil).Once()

	_, err := suite.service.DeleteTransaction(ctx, transactionID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "DeleteTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestPostTransaction_Success() {
	ctx := context.Background()
	transactionID := uuid.NewString()
	existing := &domain.JournalTransaction{TransactionID: transactionID, Status: domain.Draft}

	suite.mockJournalRepo.On("FindTransactionByID", ctx, transactionID).Return(existing, nil).Once()
	suite.mockJournalRepo.On("MarkTransactionPosted", ctx, transactionID, "system", mock.AnythingOfType("time.Time")).Return(int64(1), nil).Once()

	rowsAffected, err := suite.service.PostTransaction(ctx, transactionID)

	suite.Require().NoError(err)
	suite.Equal(int64(1), rowsAffected)
}

func (suite *JournalServiceTestSuite) TestPostTransaction_AlreadyPostedIsNoOp() {
	ctx := context.Background()
	transactionID := uuid.NewString()
	existing := &domain.JournalTransaction{TransactionID: transactionID, Status: domain.Posted}

	suite.mockJournalRepo.On("FindTransactionByID", ctx, transactionID).Return(existing, nil).Once()

	rowsAffected, err := suite.service.PostTransaction(ctx, transactionID)

	suite.Require().NoError(err)
	suite.Zero(rowsAffected)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "MarkTransactionPosted", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestPostTransaction_NotFound() {
	ctx := context.Background()
	transactionID := uuid.NewString()

	suite.mockJournalRepo.On("FindTransactionByID", ctx, transactionID).Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.PostTransaction(ctx, transactionID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *JournalServiceTestSuite) TestReverseTransaction_SwapsDebitAndCredit() {
	ctx := context.Background()
	originalID := uuid.NewString()
	original := &domain.JournalTransaction{
		TransactionID: originalID,
		ReferenceNo:   "REF-1",
		Date:          suite.txnDate,
		Description:   "Original entry",
		Status:        domain.Posted,
	}
	originalItems := []domain.JournalLineItem{
		{LineItemID: uuid.NewString(), TransactionID: originalID, AccountID: suite.cashAccount.AccountID, Debit: decimal.NewFromInt(250), Remark: "in"},
		{LineItemID: uuid.NewString(), TransactionID: originalID, AccountID: suite.revenueAccount.AccountID, Credit: decimal.NewFromInt(250), Remark: "out"},
	}

	suite.mockJournalRepo.On("FindTransactionByReferenceNo", ctx, "REF-1").Return(original, nil).Once()
	suite.mockJournalRepo.On("FindLineItemsByTransactionID", ctx, originalID).Return(originalItems, nil).Once()
	suite.mockCOARepo.On("FindAccountsByIDs", ctx, mock.AnythingOfType("[]string")).Return(suite.accountsMap(), nil).Once()
	suite.mockJournalRepo.On("ReferenceNoExists", ctx, mock.AnythingOfType("string"), "").Return(false, nil).Once()

	var saved domain.JournalTransaction
	suite.mockJournalRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.JournalTransaction")).Run(func(args mock.Arguments) {
		saved = args.Get(1).(domain.JournalTransaction)
	}).Return(nil).Once()

	newID, err := suite.service.ReverseTransactionByReferenceNo(ctx, "REF-1")

	suite.Require().NoError(err)
	suite.NotEmpty(newID)
	suite.NotEqual(originalID, saved.TransactionID)
	suite.Contains(saved.ReferenceNo, "REF-1-RV-")
	suite.Contains(saved.Description, "Reversal of REF-1")
	suite.Equal(domain.Draft, saved.Status)

	// The mirror entry: debit and credit swap per line, accounts unchanged.
	suite.Require().Len(saved.Items, 2)
	suite.Equal(suite.cashAccount.AccountID, saved.Items[0].AccountID)
	suite.True(saved.Items[0].Credit.Equal(decimal.NewFromInt(250)))
	suite.True(saved.Items[0].Debit.IsZero())
	suite.True(saved.Items[1].Debit.Equal(decimal.NewFromInt(250)))
	suite.True(saved.Items[1].Credit.IsZero())
	suite.True(saved.TotalDebit().Equal(saved.TotalCredit()))
}

func (suite *JournalServiceTestSuite) TestReverseTransaction_NotFound() {
	ctx := context.Background()

	suite.mockJournalRepo.On("FindTransactionByReferenceNo", ctx, "MISSING").Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.ReverseTransactionByReferenceNo(ctx, "MISSING")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveTransaction", mock.Anything, mock.Anything)
}

func TestJournalServiceTestSuite(t *testing.T) {
	suite.Run(t, new(JournalServiceTestSuite))
}
