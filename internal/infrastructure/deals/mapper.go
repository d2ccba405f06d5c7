package deals

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dealdesk/backend/internal/domain"
)

// lineItemsResponse is the upstream payload for a deal's line items
type lineItemsResponse struct {
	DealID    string            `json:"deal_id"`
	LineItems []lineItemPayload `json:"line_items"`
}

type lineItemPayload struct {
	ID          string        `json:"id"`
	ProductName fieldPayload  `json:"product_name"`
	YourProduct *fieldPayload `json:"your_product"`
	Description *fieldPayload `json:"description"`
	UnitPrice   *fieldPayload `json:"unit_price"`
	Quantity    *fieldPayload `json:"quantity"`
	Discount    *fieldPayload `json:"discount"`
	TotalFees   *fieldPayload `json:"total_fees"`
}

type fieldPayload struct {
	CRMValue       flexString `json:"crm_value"`
	ExtractedValue flexString `json:"extracted_value"`
	NetsuiteValue  flexString `json:"netsuite_value"`
	Value          flexString `json:"value"`
	Source         string     `json:"source"`
	Status         string     `json:"status"`
}

// flexString accepts JSON strings, numbers and null. Prices and quantities
// arrive as numbers from some CRMs.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*f = flexString(n.String())
	return nil
}

// MapToProducts converts upstream line items to domain products.
// Items without an id get a positional one so every product stays addressable.
func MapToProducts(dealID string, items []lineItemPayload) []domain.Product {
	products := make([]domain.Product, 0, len(items))
	for i, item := range items {
		id := strings.TrimSpace(item.ID)
		if id == "" {
			id = fmt.Sprintf("%s_line_%d", dealID, i+1)
		}

		products = append(products, domain.Product{
			LineItemID:  id,
			ProductName: mapField(item.ProductName),
			YourProduct: mapOptionalField(item.YourProduct),
			Description: mapOptionalField(item.Description),
			UnitPrice:   mapOptionalField(item.UnitPrice),
			Quantity:    mapOptionalField(item.Quantity),
			Discount:    mapOptionalField(item.Discount),
			TotalFees:   mapOptionalField(item.TotalFees),
		})
	}
	return products
}

func mapField(f fieldPayload) domain.FieldValue {
	return domain.FieldValue{
		CRMValue:       string(f.CRMValue),
		ExtractedValue: string(f.ExtractedValue),
		NetsuiteValue:  string(f.NetsuiteValue),
		Value:          string(f.Value),
		Source:         strings.TrimSpace(f.Source),
		Status:         mapStatus(f.Status),
	}
}

func mapOptionalField(f *fieldPayload) *domain.FieldValue {
	if f == nil {
		return nil
	}
	v := mapField(*f)
	return &v
}

// mapStatus treats anything other than an explicit review as pending
func mapStatus(status string) domain.FieldStatus {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case string(domain.StatusReviewed):
		return domain.StatusReviewed
	default:
		return domain.StatusNeedsReview
	}
}
