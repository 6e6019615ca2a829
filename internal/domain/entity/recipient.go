package entity

import "fmt"

// RecipientKind variante del receptor de una entrega de EPP o préstamo.
type RecipientKind string

const (
	RecipientWorker     RecipientKind = "WORKER"      // trabajador sin usuario en el sistema
	RecipientSystemUser RecipientKind = "SYSTEM_USER" // usuario registrado
)

// Recipient unión etiquetada Worker(id) | SystemUser(id).
type Recipient struct {
	Kind RecipientKind
	ID   string
	Name string
}

// Worker construye un receptor trabajador.
func Worker(id, name string) Recipient {
	return Recipient{Kind: RecipientWorker, ID: id, Name: name}
}

// SystemUser construye un receptor usuario del sistema.
func SystemUser(id, name string) Recipient {
	return Recipient{Kind: RecipientSystemUser, ID: id, Name: name}
}

// Validate exige variante conocida e id.
func (r Recipient) Validate() error {
	if r.Kind != RecipientWorker && r.Kind != RecipientSystemUser {
		return fmt.Errorf("tipo de receptor desconocido: %q", r.Kind)
	}
	if r.ID == "" {
		return fmt.Errorf("receptor sin id")
	}
	return nil
}

// DisplayName nombre a mostrar; cae al id si no hay nombre.
func (r Recipient) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return string(r.Kind) + ":" + r.ID
}
