package abstractions

import (
	"errors"
	"fmt"
	"strings"

	"clothing-api/domain/core/entities"
)

// Placeholders for the timestamp assignment that closes every plan.
const (
	UpdatedAtName  = "#updatedAt"
	UpdatedAtValue = ":updatedAt"
)

// ErrNoFields is returned when nothing whitelisted is left to update.
var ErrNoFields = errors.New("no valid fields for update")

// Assignment is a single "field = value" step of a partial update.
type Assignment struct {
	Field            string
	NamePlaceholder  string
	ValuePlaceholder string
	Value            interface{}
}

// UpdatePlan is a store independent partial update. Assignments follow the
// whitelist order and the updatedAt assignment is always last.
type UpdatePlan struct {
	Assignments []Assignment
}

// BuildUpdatePlan turns sanitized fields into an ordered plan. Placeholders
// are numbered over the supplied fields only, so they are always contiguous.
func BuildUpdatePlan(fields entities.FieldSet, updatedAt string) (UpdatePlan, error) {
	ordered := fields.Fields()
	if len(ordered) == 0 {
		return UpdatePlan{}, ErrNoFields
	}

	plan := UpdatePlan{Assignments: make([]Assignment, 0, len(ordered)+1)}
	for idx, field := range ordered {
		plan.Assignments = append(plan.Assignments, Assignment{
			Field:            field,
			NamePlaceholder:  fmt.Sprintf("#f%d", idx),
			ValuePlaceholder: fmt.Sprintf(":v%d", idx),
			Value:            fields[field],
		})
	}
	plan.Assignments = append(plan.Assignments, Assignment{
		Field:            entities.FieldUpdatedAt,
		NamePlaceholder:  UpdatedAtName,
		ValuePlaceholder: UpdatedAtValue,
		Value:            updatedAt,
	})
	return plan, nil
}

// Fields lists the assigned attributes in plan order.
func (p UpdatePlan) Fields() []string {
	fields := make([]string, len(p.Assignments))
	for i, a := range p.Assignments {
		fields[i] = a.Field
	}
	return fields
}

// UpdateExpression renders the plan as a DynamoDB SET expression.
func (p UpdatePlan) UpdateExpression() string {
	parts := make([]string, len(p.Assignments))
	for i, a := range p.Assignments {
		parts[i] = a.NamePlaceholder + " = " + a.ValuePlaceholder
	}
	return "SET " + strings.Join(parts, ", ")
}

// Names maps name placeholders to attribute names.
func (p UpdatePlan) Names() map[string]string {
	names := make(map[string]string, len(p.Assignments))
	for _, a := range p.Assignments {
		names[a.NamePlaceholder] = a.Field
	}
	return names
}

// Values maps value placeholders to their raw values.
func (p UpdatePlan) Values() map[string]interface{} {
	values := make(map[string]interface{}, len(p.Assignments))
	for _, a := range p.Assignments {
		values[a.ValuePlaceholder] = a.Value
	}
	return values
}

// SQLSet renders the plan as a positional SET list ("name = ?, ...") with
// its ordered arguments. column maps attribute names to column names.
func (p UpdatePlan) SQLSet(column func(field string) string) (string, []interface{}) {
	parts := make([]string, len(p.Assignments))
	args := make([]interface{}, len(p.Assignments))
	for i, a := range p.Assignments {
		parts[i] = column(a.Field) + " = ?"
		args[i] = a.Value
	}
	return strings.Join(parts, ", "), args
}
