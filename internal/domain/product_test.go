package domain

import "testing"

func TestFieldValue_GroupingName(t *testing.T) {
	tests := []struct {
		name  string
		field FieldValue
		want  string
	}{
		{"extracted wins", FieldValue{ExtractedValue: "G2 Content: Widget", CRMValue: "Widget", Value: "Override"}, "G2 Content: Widget"},
		{"falls back to CRM", FieldValue{CRMValue: "Widget", Value: "Override"}, "Widget"},
		{"falls back to override", FieldValue{Value: "Override"}, "Override"},
		{"netsuite value is ignored", FieldValue{NetsuiteValue: "NS Widget"}, ""},
		{"empty", FieldValue{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.field.GroupingName(); got != tt.want {
				t.Errorf("GroupingName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFieldValue_DisplayValue(t *testing.T) {
	tests := []struct {
		name  string
		field FieldValue
		want  string
	}{
		{"override wins", FieldValue{ExtractedValue: "Extracted", CRMValue: "CRM", Value: "Override"}, "Override"},
		{"then extracted", FieldValue{ExtractedValue: "Extracted", CRMValue: "CRM"}, "Extracted"},
		{"then CRM", FieldValue{CRMValue: "CRM"}, "CRM"},
		{"empty", FieldValue{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.field.DisplayValue(); got != tt.want {
				t.Errorf("DisplayValue() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFieldValue_SourceInfo(t *testing.T) {
	tests := []struct {
		name  string
		field FieldValue
		want  SourceInfo
	}{
		{"salesforce source", FieldValue{Source: "Salesforce Opportunity"}, SourceInfo{Label: "Salesforce", Icon: IconSalesforce}},
		{"CRM value implies salesforce", FieldValue{CRMValue: "Widget", Source: "Order Form"}, SourceInfo{Label: "Salesforce", Icon: IconSalesforce}},
		{"netsuite", FieldValue{Source: "NetSuite ERP"}, SourceInfo{Label: "NetSuite", Icon: IconNetsuite}},
		{"order form", FieldValue{Source: "order form p.2"}, SourceInfo{Label: "Order Form", Icon: IconDocument}},
		{"master service agreement", FieldValue{Source: "Master Service Agreement"}, SourceInfo{Label: "Master Service Agreement", Icon: IconDocument}},
		{"other document", FieldValue{Source: "SOW"}, SourceInfo{Label: "SOW", Icon: IconDocument}},
		{"no source", FieldValue{}, SourceInfo{Label: "Document", Icon: IconDocument}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.field.SourceInfo(); got != tt.want {
				t.Errorf("SourceInfo() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestGroupLabel(t *testing.T) {
	named := Product{LineItemID: "a", ProductName: FieldValue{CRMValue: "Premium Support Package"}}
	unnamed := Product{LineItemID: "b"}

	if got := GroupLabel(0, []Product{named, unnamed}); got != "Premium Support Package" {
		t.Errorf("GroupLabel() = %q, want first member's name", got)
	}
	if got := GroupLabel(2, []Product{unnamed, named}); got != "Product Line 3" {
		t.Errorf("GroupLabel() = %q, want Product Line 3", got)
	}
	if got := GroupLabel(0, nil); got != "Product Line 1" {
		t.Errorf("GroupLabel() = %q, want Product Line 1", got)
	}
}
