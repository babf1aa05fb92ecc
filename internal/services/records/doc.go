// Package records hosts the records service: the REST API the backoffice
// console reads contacts, domains and country reference data from.
//
// The service owns its SQLite database. Console code only reaches it through
// HTTP, so both processes can be deployed and restarted independently.
package records
