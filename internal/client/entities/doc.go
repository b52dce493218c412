// Package entities holds the declarative table that drives the console:
// one Descriptor per entity kind with its REST endpoint, ordered form fields
// and the two label templates used for list cards, search and select
// options.
//
// The built-in table is embedded from descriptors.yaml. An alternative table
// can be loaded with Load; every table is validated on load, including the
// referential integrity of select fields.
package entities
