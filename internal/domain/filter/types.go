// Package filter describes list conditions that repositories translate to SQL.
package filter

// ComparisonType defines the supported comparisons.
type ComparisonType string

const (
	Equal          ComparisonType = "eq"
	NotEqual       ComparisonType = "neq"
	LessOrEqual    ComparisonType = "lte"
	GreaterOrEqual ComparisonType = "gte"
	InList         ComparisonType = "in"
	Contains       ComparisonType = "contains" // ILIKE %val%
	IsNull         ComparisonType = "null"
	IsNotNull      ComparisonType = "not_null"
)

// Item is a single condition on one column.
type Item struct {
	Field    string         `json:"field"` // snake_case column name
	Operator ComparisonType `json:"operator"`
	Value    any            `json:"value"`
}

// Eq is shorthand for an Equal condition.
func Eq(field string, value any) Item {
	return Item{Field: field, Operator: Equal, Value: value}
}

// Between returns the gte/lte pair for a range. Nil bounds are skipped.
func Between[T any](field string, from, to *T) []Item {
	var items []Item
	if from != nil {
		items = append(items, Item{Field: field, Operator: GreaterOrEqual, Value: *from})
	}
	if to != nil {
		items = append(items, Item{Field: field, Operator: LessOrEqual, Value: *to})
	}
	return items
}
