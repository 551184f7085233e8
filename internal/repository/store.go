package repository

import "gorm.io/gorm"

// Store bundles every repository behind one value so services can be wired against either
// the relational store or the in-memory one.
type Store struct {
	Projects    ProjectRepository
	Contractors ContractorRepository
	Checkouts   CheckoutRepository
	Leads       LeadRepository
	Users       UserRepository
	Audit       AuditRepository
	Statistics  StatisticsRepository
	Revenue     RevenueRepository
	Tx          TransactionManager
}

// NewGormStore wires the gorm implementations around one connection pool.
func NewGormStore(db *gorm.DB) *Store {
	return &Store{
		Projects:    NewProjectRepository(db),
		Contractors: NewContractorRepository(db),
		Checkouts:   NewCheckoutRepository(db),
		Leads:       NewLeadRepository(db),
		Users:       NewUserRepository(db),
		Audit:       NewAuditRepository(db),
		Statistics:  NewStatisticsRepository(db),
		Revenue:     NewRevenueRepository(db),
		Tx:          NewTransactionManager(db),
	}
}
