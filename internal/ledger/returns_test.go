package ledger

import (
	"errors"
	"testing"

	"github.com/noah-isme/backend-bangunan/internal/common"
)

func originalPurchase() Transaction {
	return Transaction{
		ID:   "orig",
		Type: TypePurchase,
		Items: []Item{
			{ProductID: "cement", ProductName: "Semen 50kg", Unit: "sak", Qty: 10, UnitPrice: 500, Subtotal: 5_000},
			{ProductID: "sand", ProductName: "Pasir Cor", Unit: "m3", Qty: 2, UnitPrice: 3_000, Subtotal: 6_000},
		},
		Total: 11_000,
	}
}

func TestPlanReturnValuesItemsAtOriginalPrice(t *testing.T) {
	plan, warnings, err := PlanReturn(originalPurchase(), nil, ReturnRequest{
		ReferenceID: "orig",
		Items:       []ReturnItem{{ProductID: "cement", Qty: 2}},
		Reason:      "damaged bags",
	})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if plan.Ceiling != 1_000 {
		t.Fatalf("expected ceiling 1000, got %d", plan.Ceiling)
	}
	if plan.AmountReturned != 1_000 {
		t.Fatalf("expected default amount = ceiling, got %d", plan.AmountReturned)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings %v", warnings)
	}
}

func TestPlanReturnClampsAmountToCeiling(t *testing.T) {
	plan, warnings, err := PlanReturn(originalPurchase(), nil, ReturnRequest{
		ReferenceID:    "orig",
		Items:          []ReturnItem{{ProductID: "sand", Qty: 2}},
		AmountReturned: 7_500,
		Reason:         "wrong grade",
	})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if plan.AmountReturned != 6_000 {
		t.Fatalf("expected amount clamped to 6000, got %d", plan.AmountReturned)
	}
	if len(warnings) != 1 || warnings[0].Code != WarnReturnAmountClamped {
		t.Fatalf("expected clamp warning, got %v", warnings)
	}
}

func TestPlanReturnAllowsPartialValue(t *testing.T) {
	plan, warnings, err := PlanReturn(originalPurchase(), nil, ReturnRequest{
		ReferenceID:    "orig",
		Items:          []ReturnItem{{ProductID: "sand", Qty: 2}},
		AmountReturned: 5_000,
		Reason:         "restocking fee",
	})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if plan.AmountReturned != 5_000 {
		t.Fatalf("expected partial amount kept, got %d", plan.AmountReturned)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings %v", warnings)
	}
}

func TestPlanReturnRejectsQuantityAboveOriginal(t *testing.T) {
	_, _, err := PlanReturn(originalPurchase(), nil, ReturnRequest{
		ReferenceID: "orig",
		Items:       []ReturnItem{{ProductID: "cement", Qty: 12}},
		Reason:      "damaged",
	})
	var validation *common.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPlanReturnCountsPriorReturns(t *testing.T) {
	prior := []Transaction{{
		ID:          "ret1",
		Type:        TypeReturn,
		ReferenceID: "orig",
		Items:       []Item{{ProductID: "cement", Qty: 6}},
	}}
	// 6 already returned; only 4 of the original 10 remain.
	_, _, err := PlanReturn(originalPurchase(), prior, ReturnRequest{
		ReferenceID: "orig",
		Items:       []ReturnItem{{ProductID: "cement", Qty: 5}},
		Reason:      "damaged",
	})
	var validation *common.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	plan, _, err := PlanReturn(originalPurchase(), prior, ReturnRequest{
		ReferenceID: "orig",
		Items:       []ReturnItem{{ProductID: "cement", Qty: 4}},
		Reason:      "damaged",
	})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if plan.Ceiling != 2_000 {
		t.Fatalf("expected ceiling 2000, got %d", plan.Ceiling)
	}
}

func TestPlanReturnRejectsForeignProductAndBlankReason(t *testing.T) {
	_, _, err := PlanReturn(originalPurchase(), nil, ReturnRequest{
		ReferenceID: "orig",
		Items:       []ReturnItem{{ProductID: "gravel", Qty: 1}},
		Reason:      "damaged",
	})
	var validation *common.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error for foreign product, got %v", err)
	}

	_, _, err = PlanReturn(originalPurchase(), nil, ReturnRequest{
		ReferenceID: "orig",
		Items:       []ReturnItem{{ProductID: "cement", Qty: 1}},
	})
	if !errors.As(err, &validation) || validation.Field != "reason" {
		t.Fatalf("expected reason validation error, got %v", err)
	}
}

func TestPlanReturnRejectsNonSaleReference(t *testing.T) {
	deposit := Transaction{ID: "dep", Type: TypeDeposit}
	_, _, err := PlanReturn(deposit, nil, ReturnRequest{
		ReferenceID: "dep",
		Items:       []ReturnItem{{ProductID: "cement", Qty: 1}},
		Reason:      "mistake",
	})
	var validation *common.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
