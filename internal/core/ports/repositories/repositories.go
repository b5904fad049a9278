package repositories

// RepositoryProvider holds all repository implementations for injection into
// the service layer.
type RepositoryProvider struct {
	LedgerRepo      LedgerRepository
	RemittanceRepo  RemittanceRepository
	DiscrepancyRepo DiscrepancyRepository
	ShipmentRepo    ShipmentRepository
}
