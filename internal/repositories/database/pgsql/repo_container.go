package pgsql

import (
	portsrepo "github.com/shipdesk/settlement-core/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		LedgerRepo:      newPgxLedgerRepository(dbPool),
		RemittanceRepo:  newPgxRemittanceRepository(dbPool),
		DiscrepancyRepo: newPgxDiscrepancyRepository(dbPool),
		ShipmentRepo:    newPgxShipmentRepository(dbPool),
	}
}
