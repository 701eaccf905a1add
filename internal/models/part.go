package models

import (
	"strings"

	"github.com/google/uuid"
)

// Part is an inventory row keyed by normalized detected class name.
// Detections only ever create parts with quantity 0; stock is changed by
// explicit user updates.
type Part struct {
	ID       string
	Name     string
	Quantity int
}

func NewPart(name string) *Part {
	return &Part{
		ID:   uuid.New().String(),
		Name: name,
	}
}

func (p *Part) InStock() bool {
	return p.Quantity > 0
}

// NormalizePartName maps a detector class name onto the inventory key:
// trimmed, lowercased, whitespace runs collapsed to single underscores.
// Idempotent.
func NormalizePartName(name string) string {
	fields := strings.Fields(strings.ToLower(name))
	return strings.Join(fields, "_")
}
