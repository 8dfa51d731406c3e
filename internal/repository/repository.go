package repository

import "gorm.io/gorm"

// Repositories bundles every repository used by the services.
type Repositories struct {
	Tx         TransactionManager
	Users      UserRepository
	Roles      RoleRepository
	Tokens     TokenRepository
	Categories CategoryRepository
	Products   ProductRepository
	Bulletins  BulletinRepository
	Contacts   ContactRepository
	Audit      AuditRepository
	Statistics StatisticsRepository
}

// New wires the gorm repositories around one connection pool.
func New(db *gorm.DB) Repositories {
	return Repositories{
		Tx:         NewTransactionManager(db),
		Users:      NewUserRepository(db),
		Roles:      NewRoleRepository(db),
		Tokens:     NewTokenRepository(db),
		Categories: NewCategoryRepository(db),
		Products:   NewProductRepository(db),
		Bulletins:  NewBulletinRepository(db),
		Contacts:   NewContactRepository(db),
		Audit:      NewAuditRepository(db),
		Statistics: NewStatisticsRepository(db),
	}
}
