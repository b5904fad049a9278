package services

// ServiceContainer holds all service facades for injection into the HTTP and
// event layers.
type ServiceContainer struct {
	Ledger     LedgerSvcFacade
	Remittance RemittanceSvcFacade
	Dispute    DisputeSvcFacade
	Shipment   ShipmentSvcFacade
}
