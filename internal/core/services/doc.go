// Package services contains the core application services implementing
// the driving ports. Services orchestrate domain logic using driven
// ports for persistence and external calls, keeping the core free of
// adapter concerns.
package services
