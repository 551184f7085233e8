package service

import (
	"vastustructural/internal/catalog"
	"vastustructural/internal/payment"
	"vastustructural/internal/repository"
)

// Services is the wired service layer shared by the API server and vastuctl.
type Services struct {
	Users       UserService
	Contractors ContractorService
	Projects    ProjectService
	Lifecycle   LifecycleService
	Feed        FeedService
	Checkout    CheckoutService
	Leads       LeadService
	Audit       AuditService
	Statistics  StatisticsService
	Revenue     RevenueService
}

// NewServices wires every service over one store. publisher may be nil.
func NewServices(store *repository.Store, plans *catalog.Catalog, gateway payment.Gateway, publisher EventPublisher, tokens *TokenIssuer) *Services {
	return &Services{
		Users:       NewUserService(store, tokens),
		Contractors: NewContractorService(store, tokens),
		Projects:    NewProjectService(store),
		Lifecycle:   NewLifecycleService(store, publisher),
		Feed:        NewFeedService(store.Projects),
		Checkout:    NewCheckoutService(store, plans, gateway, publisher),
		Leads:       NewLeadService(store.Leads),
		Audit:       NewAuditService(store.Audit),
		Statistics:  NewStatisticsService(store.Statistics, store.Contractors),
		Revenue:     NewRevenueService(store.Revenue, plans),
	}
}
