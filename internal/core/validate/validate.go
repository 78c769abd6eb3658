// Package validate provides shared validation functions.
package validate

import (
	"fmt"
	"strings"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/tkt/internal/core/ticket"
)

// TicketName validates a ticket name: lowercase letters, digits, and single
// dashes.
func TicketName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name is required")
	}
	if !ticket.ValidName(name) {
		return fmt.Errorf("%q must be lowercase letters, digits, and single dashes (e.g. add-login)", name)
	}
	return nil
}

// TicketType validates s is a supported ticket type.
func TicketType(s string) error {
	if !ticket.Type(s).IsValid() {
		names := make([]string, len(ticket.Types))
		for i, t := range ticket.Types {
			names[i] = string(t)
		}
		return fmt.Errorf("%q must be one of %s", s, strings.Join(names, ", "))
	}
	return nil
}

// TicketNameField returns a criterio validator for ticket names.
func TicketNameField(field, name string) error {
	return criterio.Run(field, name, TicketName)
}

// TicketTypeField returns a criterio validator for ticket types.
func TicketTypeField(field, s string) error {
	return criterio.Run(field, s, TicketType)
}
