// Package domain contains the core business entities and rules for the
// Gioia document archive. It has no dependencies on infrastructure and
// defines the vocabulary shared by all ports and adapters.
package domain
