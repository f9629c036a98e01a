// Package main wires the blood donor registry together.
//
// Each init_*.go file builds one layer; main.go calls them in order.
package main

import (
	"database/sql"

	"github.com/adarshgogate/BloodDonorApp/repository"
)

// Repositories groups every repository so constructors take one argument
// instead of a growing list.
type Repositories struct {
	User         repository.UserRepository
	Donor        repository.DonorRepository
	BloodRequest repository.BloodRequestRepository
}

// initRepositories builds the SQLite repositories. *sql.DB is a pool and
// safe to share.
func initRepositories(conn *sql.DB) *Repositories {
	return &Repositories{
		User:         repository.NewSQLiteUserRepo(conn),
		Donor:        repository.NewSQLiteDonorRepo(conn),
		BloodRequest: repository.NewSQLiteBloodRequestRepo(conn),
	}
}
