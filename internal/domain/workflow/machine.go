// Package workflow contiene las tablas de transición de las familias documentales y el cálculo
// perezoso de los estados que dependen del tiempo.
package workflow

import (
	"sort"

	"github.com/jhoicas/Inventario-minero/internal/domain"
	"github.com/jhoicas/Inventario-minero/internal/domain/entity"
)

// Nombres de transición expuestos por la API.
const (
	Submit  = "submit"
	Send    = "send"
	Receive = "receive"
	Approve = "approve"
	Reject  = "reject"
	Void    = "void"
	Fulfill = "fulfill"
	Deliver = "deliver"
	Return  = "return"
	Lose    = "lose"
	Damage  = "damage"
	Renew   = "renew"
)

// Machine tabla de transiciones de una familia: transición -> estados de origen permitidos.
type Machine struct {
	family entity.DocumentFamily
	from   map[string]map[string]struct{}
}

// NewMachine construye la tabla. rules: transición -> estados de origen.
func NewMachine(family entity.DocumentFamily, rules map[string][]string) *Machine {
	m := &Machine{family: family, from: make(map[string]map[string]struct{}, len(rules))}
	for t, states := range rules {
		set := make(map[string]struct{}, len(states))
		for _, s := range states {
			set[s] = struct{}{}
		}
		m.from[t] = set
	}
	return m
}

// Family familia documental de la tabla.
func (m *Machine) Family() entity.DocumentFamily { return m.family }

// Knows indica si la transición existe para la familia.
func (m *Machine) Knows(transition string) bool {
	_, ok := m.from[transition]
	return ok
}

// Check valida que la transición sea legal desde current.
func (m *Machine) Check(current, transition string) error {
	set, ok := m.from[transition]
	if ok {
		if _, legal := set[current]; legal {
			return nil
		}
	}
	return &domain.IllegalTransitionError{
		Family:     string(m.family),
		Transition: transition,
		Current:    current,
		Allowed:    m.origins(transition),
	}
}

// Available transiciones legales desde current, ordenadas.
func (m *Machine) Available(current string) []string {
	var out []string
	for t, set := range m.from {
		if _, ok := set[current]; ok {
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

func (m *Machine) origins(transition string) []string {
	set := m.from[transition]
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
