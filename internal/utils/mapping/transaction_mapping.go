package mapping

import (
	"github.com/shipdesk/settlement-core/internal/core/domain"
	"github.com/shipdesk/settlement-core/internal/models"
)

// ToModelTransaction converts a domain Transaction to a model Transaction
func ToModelTransaction(d domain.Transaction) models.Transaction {
	m := models.Transaction{
		TransactionID:   d.TransactionID,
		AccountID:       d.AccountID,
		TransactionType: string(d.TransactionType),
		Category:        string(d.Category),
		Amount:          d.Amount,
		OpeningBalance:  d.OpeningBalance,
		ClosingBalance:  d.ClosingBalance,
		Status:          string(d.Status),
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
	if d.IdempotencyKey != "" {
		m.IdempotencyKey = &d.IdempotencyKey
	}
	if d.RelatedEntityRef != "" {
		m.RelatedEntityRef = &d.RelatedEntityRef
	}
	return m
}

// ToDomainTransaction converts a model Transaction to a domain Transaction
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	d := domain.Transaction{
		TransactionID:   m.TransactionID,
		AccountID:       m.AccountID,
		TransactionType: domain.TransactionType(m.TransactionType),
		Category:        domain.TransactionCategory(m.Category),
		Amount:          m.Amount,
		OpeningBalance:  m.OpeningBalance,
		ClosingBalance:  m.ClosingBalance,
		Status:          domain.TransactionStatus(m.Status),
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
	if m.IdempotencyKey != nil {
		d.IdempotencyKey = *m.IdempotencyKey
	}
	if m.RelatedEntityRef != nil {
		d.RelatedEntityRef = *m.RelatedEntityRef
	}
	return d
}

// ToDomainTransactionSlice converts a slice of model Transactions to domain Transactions
func ToDomainTransactionSlice(ms []models.Transaction) []domain.Transaction {
	ds := make([]domain.Transaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTransaction(m)
	}
	return ds
}
