package models

import "bitbucket.org/kargodata/forwarding_backend/config"

// MigrateTable keeps the schema in sync at startup.
func MigrateTable() error {
	db := config.GetDB()
	return db.AutoMigrate(
		&Business{},
		&User{},
		&Customer{},
		&ChargeType{},
		&Currency{},
		&CurrencyExchange{},
		&Booking{},
		&InvoiceTerm{},
		&ShipmentDocument{},
		&CostItem{},
		&RevenueItem{},
	)
}
