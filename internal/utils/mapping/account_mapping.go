package mapping

import (
	"github.com/shipdesk/settlement-core/internal/core/domain"
	"github.com/shipdesk/settlement-core/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:      d.AccountID,
		ClientID:       d.ClientID,
		Name:           d.Name,
		CurrentBalance: d.CurrentBalance,
		IsActive:       d.IsActive,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:      m.AccountID,
		ClientID:       m.ClientID,
		Name:           m.Name,
		CurrentBalance: m.CurrentBalance,
		IsActive:       m.IsActive,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}
