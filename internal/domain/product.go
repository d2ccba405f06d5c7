package domain

import (
	"fmt"
	"strings"
)

// FieldStatus is the review state of a single field value
type FieldStatus string

const (
	StatusReviewed    FieldStatus = "reviewed"
	StatusNeedsReview FieldStatus = "needs_review"
)

// FieldValue holds the alternative raw values of one field across sources
type FieldValue struct {
	CRMValue       string      `json:"crm_value,omitempty" yaml:"crm_value,omitempty"`
	ExtractedValue string      `json:"extracted_value,omitempty" yaml:"extracted_value,omitempty"`
	NetsuiteValue  string      `json:"netsuite_value,omitempty" yaml:"netsuite_value,omitempty"`
	Value          string      `json:"value,omitempty" yaml:"value,omitempty"` // user override
	Source         string      `json:"source,omitempty" yaml:"source,omitempty"`
	Status         FieldStatus `json:"status,omitempty" yaml:"status,omitempty"`
}

// GroupingName returns the value used to compare products: extracted, then CRM,
// then the override.
func (f FieldValue) GroupingName() string {
	switch {
	case f.ExtractedValue != "":
		return f.ExtractedValue
	case f.CRMValue != "":
		return f.CRMValue
	default:
		return f.Value
	}
}

// DisplayValue returns the value shown to a reviewer. An override wins.
func (f FieldValue) DisplayValue() string {
	switch {
	case f.Value != "":
		return f.Value
	case f.ExtractedValue != "":
		return f.ExtractedValue
	default:
		return f.CRMValue
	}
}

// SourceIcon identifies the kind of system a value came from
type SourceIcon string

const (
	IconSalesforce SourceIcon = "salesforce"
	IconNetsuite   SourceIcon = "netsuite"
	IconDocument   SourceIcon = "document"
)

// SourceInfo describes where a field value originated
type SourceInfo struct {
	Label string     `json:"label"`
	Icon  SourceIcon `json:"icon"`
}

// SourceInfo classifies the value's origin for display
func (f FieldValue) SourceInfo() SourceInfo {
	source := strings.ToLower(f.Source)

	switch {
	case strings.Contains(source, "salesforce") || f.CRMValue != "":
		return SourceInfo{Label: "Salesforce", Icon: IconSalesforce}
	case strings.Contains(source, "netsuite"):
		return SourceInfo{Label: "NetSuite", Icon: IconNetsuite}
	case strings.Contains(source, "order form"):
		return SourceInfo{Label: "Order Form", Icon: IconDocument}
	case strings.Contains(source, "master service agreement"):
		return SourceInfo{Label: "Master Service Agreement", Icon: IconDocument}
	}

	if f.Source != "" {
		return SourceInfo{Label: f.Source, Icon: IconDocument}
	}
	return SourceInfo{Label: "Document", Icon: IconDocument}
}

// Product is one line item on a quote or order as seen by the review tool
type Product struct {
	LineItemID  string      `json:"line_item_id" yaml:"line_item_id"`
	ProductName FieldValue  `json:"product_name" yaml:"product_name"`
	YourProduct *FieldValue `json:"your_product,omitempty" yaml:"your_product,omitempty"`
	Description *FieldValue `json:"description,omitempty" yaml:"description,omitempty"`
	UnitPrice   *FieldValue `json:"unit_price,omitempty" yaml:"unit_price,omitempty"`
	Quantity    *FieldValue `json:"quantity,omitempty" yaml:"quantity,omitempty"`
	Discount    *FieldValue `json:"discount,omitempty" yaml:"discount,omitempty"`
	TotalFees   *FieldValue `json:"total_fees,omitempty" yaml:"total_fees,omitempty"`
}

// Name returns the name the grouper compares for this product
func (p Product) Name() string {
	return p.ProductName.GroupingName()
}

// ProductGroup is a set of line items believed to describe the same product
type ProductGroup struct {
	Index    int       `json:"index"`
	Label    string    `json:"label"`
	Products []Product `json:"products"`
}

// GroupLabel names a group after its first member, falling back to its position
func GroupLabel(index int, products []Product) string {
	if len(products) > 0 {
		if name := products[0].Name(); name != "" {
			return name
		}
	}
	return fmt.Sprintf("Product Line %d", index+1)
}

// GroupingMode controls how candidates are compared against a group
type GroupingMode string

const (
	// ModeSeed compares candidates only against the product that opened the group
	ModeSeed GroupingMode = "seed"
	// ModeTransitive compares candidates against every member already in the group
	ModeTransitive GroupingMode = "transitive"
)

// EmptyNamePolicy controls how products without any name are grouped
type EmptyNamePolicy string

const (
	// EmptyNamesIsolate puts every unnamed product in its own group
	EmptyNamesIsolate EmptyNamePolicy = "isolate"
	// EmptyNamesMerge lets unnamed products match each other with score 1.0
	EmptyNamesMerge EmptyNamePolicy = "merge"
)

// DefaultThreshold is the similarity cutoff used when none is given
const DefaultThreshold = 0.85

// GroupOptions tunes a single grouping run
type GroupOptions struct {
	Threshold  float64         `json:"threshold"`
	Mode       GroupingMode    `json:"mode"`
	EmptyNames EmptyNamePolicy `json:"empty_names"`
}

// GroupRequest represents a request to group a list of products
type GroupRequest struct {
	Products   []Product       `json:"products" binding:"required"`
	Threshold  *float64        `json:"threshold,omitempty"`
	Mode       GroupingMode    `json:"mode,omitempty"`
	EmptyNames EmptyNamePolicy `json:"empty_names,omitempty"`
	Query      string          `json:"query,omitempty"`
}

// GroupResult is the outcome of a grouping run
type GroupResult struct {
	Groups       []ProductGroup `json:"groups"`
	ProductCount int            `json:"productCount"`
	GroupCount   int            `json:"groupCount"`
	Options      GroupOptions   `json:"options"`
	Source       string         `json:"source"` // "Computed" or "Cache"
}

// Selection maps a group index to the line item chosen to represent it
type Selection map[int]string

// ConfirmRequest carries the reviewer's choice for every group
type ConfirmRequest struct {
	Groups    []ProductGroup `json:"groups" binding:"required"`
	Selection Selection      `json:"selection" binding:"required"`
}

// ConfirmedSelection is the chosen product of each group, in group order
type ConfirmedSelection struct {
	Products []Product `json:"products"`
}

// CompareRequest asks how two product names relate
type CompareRequest struct {
	A         string   `json:"a"`
	B         string   `json:"b"`
	Threshold *float64 `json:"threshold,omitempty"`
}

// Comparison explains how two product names relate
type Comparison struct {
	A           string  `json:"a"`
	B           string  `json:"b"`
	NormalizedA string  `json:"normalizedA"`
	NormalizedB string  `json:"normalizedB"`
	Similarity  float64 `json:"similarity"`
	Threshold   float64 `json:"threshold"`
	WouldGroup  bool    `json:"wouldGroup"`
}
