package models

import (
	"log"

	"github.com/odouglasrocha/apiplano/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&PlanRecord{},
		&IntermediateStock{},
		&Recipient{},
		&EmailLog{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
