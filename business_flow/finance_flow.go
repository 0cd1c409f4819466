// Package businessflow contains the core business logic and use cases for finance workflows
package businessflow

import (
	"context"
	"fmt"

	"github.com/amirphl/Shirahama-Clinic/app/dto"
	"github.com/amirphl/Shirahama-Clinic/models"
	"github.com/amirphl/Shirahama-Clinic/repository"
	"github.com/amirphl/Shirahama-Clinic/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FinanceFlow handles the clinic ledger: listing entries, the cash summary,
// and manual adjustments
type FinanceFlow interface {
	ListTransactions(ctx context.Context, clinicID uint, request *dto.ListTransactionsRequest) (*dto.ListTransactionsResponse, error)
	Summary(ctx context.Context, clinicID uint, request *dto.FinanceSummaryRequest) (*dto.FinanceSummaryResponse, error)
	RecordAdjustment(ctx context.Context, clinicID, userID uint, request *dto.RecordAdjustmentRequest, metadata *ClientMetadata) (*dto.TransactionDTO, error)
}

// FinanceFlowImpl implements the finance business flow
type FinanceFlowImpl struct {
	transactionRepo repository.TransactionRepository
	auditRepo       repository.AuditLogRepository
	db              *gorm.DB
}

// NewFinanceFlow creates a new finance flow instance
func NewFinanceFlow(
	transactionRepo repository.TransactionRepository,
	auditRepo repository.AuditLogRepository,
	db *gorm.DB,
) FinanceFlow {
	return &FinanceFlowImpl{
		transactionRepo: transactionRepo,
		auditRepo:       auditRepo,
		db:              db,
	}
}

// ListTransactions returns a page of the clinic's ledger entries
func (f *FinanceFlowImpl) ListTransactions(ctx context.Context, clinicID uint, request *dto.ListTransactionsRequest) (*dto.ListTransactionsResponse, error) {
	page, pageSize, err := normalizePage(request.Page, request.PageSize)
	if err != nil {
		return nil, NewBusinessError("LIST_TRANSACTIONS_VALIDATION_FAILED", "Invalid pagination", err)
	}
	if request.From != nil && request.To != nil && request.From.After(*request.To) {
		return nil, NewBusinessError("LIST_TRANSACTIONS_VALIDATION_FAILED", "Invalid date range", ErrStartDateAfterEndDate)
	}

	filter := models.TransactionFilter{
		ClinicID:    &clinicID,
		EntryAfter:  request.From,
		EntryBefore: request.To,
	}
	if request.Type != nil {
		filter.Type = utils.ToPtr(models.TransactionType(*request.Type))
	}

	transactions, err := f.transactionRepo.ByFilter(ctx, filter, "entry_date DESC, id DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("LIST_TRANSACTIONS_FAILED", "Failed to list transactions", err)
	}
	total, err := f.transactionRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("LIST_TRANSACTIONS_FAILED", "Failed to count transactions", err)
	}

	items := make([]dto.TransactionDTO, 0, len(transactions))
	for _, tx := range transactions {
		items = append(items, ToTransactionDTO(*tx))
	}

	return &dto.ListTransactionsResponse{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// Summary aggregates income and expense totals over the reporting window
func (f *FinanceFlowImpl) Summary(ctx context.Context, clinicID uint, request *dto.FinanceSummaryRequest) (*dto.FinanceSummaryResponse, error) {
	if request.From.After(request.To) {
		return nil, NewBusinessError("FINANCE_SUMMARY_VALIDATION_FAILED", "Invalid date range", ErrStartDateAfterEndDate)
	}

	income, err := f.transactionRepo.SumByClinicAndRange(ctx, clinicID, models.TransactionTypeIncome, request.From, request.To)
	if err != nil {
		return nil, NewBusinessError("FINANCE_SUMMARY_FAILED", "Failed to sum income", err)
	}
	expense, err := f.transactionRepo.SumByClinicAndRange(ctx, clinicID, models.TransactionTypeExpense, request.From, request.To)
	if err != nil {
		return nil, NewBusinessError("FINANCE_SUMMARY_FAILED", "Failed to sum expenses", err)
	}

	return &dto.FinanceSummaryResponse{
		From:         request.From,
		To:           request.To,
		TotalIncome:  income,
		TotalExpense: expense,
		NetResult:    income - expense,
	}, nil
}

// RecordAdjustment writes a manual ledger entry outside the appointment flow,
// e.g. supply purchases or corrections
func (f *FinanceFlowImpl) RecordAdjustment(ctx context.Context, clinicID, userID uint, request *dto.RecordAdjustmentRequest, metadata *ClientMetadata) (*dto.TransactionDTO, error) {
	if request.Amount <= 0 {
		return nil, NewBusinessError("ADJUSTMENT_VALIDATION_FAILED", "Amount must be positive", ErrAmountInvalid)
	}
	txType := models.TransactionType(request.Type)
	if txType != models.TransactionTypeIncome && txType != models.TransactionTypeExpense {
		return nil, NewBusinessError("ADJUSTMENT_VALIDATION_FAILED", "Transaction type is invalid", ErrAmountInvalid)
	}

	transaction := &models.Transaction{
		UUID:          uuid.New(),
		CorrelationID: uuid.New(),
		ClinicID:      clinicID,
		Type:          txType,
		Category:      models.TransactionCategoryAdjustment,
		Amount:        request.Amount,
		Currency:      utils.BRLCurrency,
		Description:   request.Description,
		EntryDate:     request.EntryDate,
	}

	err := repository.WithTransaction(ctx, f.db, func(ctx context.Context) error {
		return f.transactionRepo.Save(ctx, transaction)
	})

	if err != nil {
		errMsg := fmt.Sprintf("Adjustment recording failed: %s", err.Error())
		_ = f.LogFinanceEvent(ctx, userID, clinicID, models.AuditActionTransactionRecorded, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("ADJUSTMENT_FAILED", "Adjustment recording failed", err)
	}

	msg := fmt.Sprintf("Adjustment recorded: %d, %s %.2f", transaction.ID, transaction.Type, transaction.Amount)
	_ = f.LogFinanceEvent(ctx, userID, clinicID, models.AuditActionTransactionRecorded, msg, true, nil, metadata)

	out := ToTransactionDTO(*transaction)
	return &out, nil
}

func (f *FinanceFlowImpl) LogFinanceEvent(ctx context.Context, userID, clinicID uint, action string, description string, success bool, errMsg *string, metadata *ClientMetadata) error {
	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		UserID:       &userID,
		ClinicID:     &clinicID,
		Action:       action,
		Description:  &description,
		Success:      utils.ToPtr(success),
		IPAddress:    &ipAddress,
		UserAgent:    &userAgent,
		ErrorMessage: errMsg,
	}

	requestID := ctx.Value(utils.RequestIDKey)
	if requestID != nil {
		requestIDStr, ok := requestID.(string)
		if ok {
			audit.RequestID = &requestIDStr
		}
	}

	return f.auditRepo.Save(ctx, audit)
}
