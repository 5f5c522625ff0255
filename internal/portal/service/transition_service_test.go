package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bitfantasy/seapod-portal/internal/portal/entity"
	"go.uber.org/zap"
)

func newTransitionFixture() (*TransitionService, *fakeOrderStore, *fakeSeapodStore, *fakeWizardStore) {
	orders := newFakeOrderStore()
	seapods := newFakeSeapodStore()
	wizards := newFakeWizardStore()
	svc := NewTransitionService(orders, seapods, wizards, zap.NewNop())
	return svc, orders, seapods, wizards
}

func seedOrder(orders *fakeOrderStore, status string, items ...entity.OrderItem) *entity.Order {
	order := &entity.Order{
		ID:          "ord-1",
		OrderNumber: "SO-202608270001",
		Vessel:      "MV Aurora",
		Status:      status,
	}
	orders.addOrder(order, items...)
	return order
}

func TestRequestStatusNoSeapodLines(t *testing.T) {
	svc, orders, _, _ := newTransitionFixture()
	seedOrder(orders, entity.OrderStatusInPreparation,
		entity.OrderItem{ID: "it-1", OrderID: "ord-1", Piece: "Cable", Quantity: 2},
	)

	outcome, err := svc.RequestStatus(context.Background(), "ord-1", entity.OrderStatusInBox, entity.RoleOperation)
	if err != nil {
		t.Fatalf("RequestStatus: %v", err)
	}
	if !outcome.Applied || outcome.Status != entity.OrderStatusInBox {
		t.Fatalf("expected applied transition, got %+v", outcome)
	}
	if orders.orders["ord-1"].Status != entity.OrderStatusInBox {
		t.Fatalf("order status not persisted: %s", orders.orders["ord-1"].Status)
	}
}

func TestRequestStatusSameStatusIsNoop(t *testing.T) {
	svc, orders, seapods, _ := newTransitionFixture()
	// 设备行没有序列号：若门禁被执行会报错，同状态请求必须先短路
	seedOrder(orders, entity.OrderStatusInBox,
		entity.OrderItem{ID: "it-1", OrderID: "ord-1", Piece: "SeaPod Device"},
	)

	outcome, err := svc.RequestStatus(context.Background(), "ord-1", entity.OrderStatusInBox, entity.RoleVendor)
	if err != nil {
		t.Fatalf("RequestStatus: %v", err)
	}
	if !outcome.Applied {
		t.Fatalf("expected no-op apply, got %+v", outcome)
	}
	if seapods.created != 0 {
		t.Fatal("no seapod should be touched on a no-op")
	}
}

func TestRequestStatusUnknownStatus(t *testing.T) {
	svc, orders, _, _ := newTransitionFixture()
	seedOrder(orders, entity.OrderStatusNew)

	if _, err := svc.RequestStatus(context.Background(), "ord-1", "Delivered", entity.RoleAdmin); !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRequestStatusLockedForVendor(t *testing.T) {
	svc, orders, _, _ := newTransitionFixture()
	seedOrder(orders, entity.OrderStatusShipped)

	if _, err := svc.RequestStatus(context.Background(), "ord-1", entity.OrderStatusNew, entity.RoleVendor); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}

func TestRequestStatusMissingSerial(t *testing.T) {
	svc, orders, _, _ := newTransitionFixture()
	seedOrder(orders, entity.OrderStatusInPreparation,
		entity.OrderItem{ID: "it-1", OrderID: "ord-1", Piece: "SeaPod Device", Serial: "   "},
	)

	_, err := svc.RequestStatus(context.Background(), "ord-1", entity.OrderStatusInBox, entity.RoleOperation)
	if !IsValidation(err) {
		t.Fatalf("expected validation error for blank serial, got %v", err)
	}
	if orders.orders["ord-1"].Status != entity.OrderStatusInPreparation {
		t.Fatal("order status must not change on gate failure")
	}
}

func TestRequestStatusMultipleSeapodLines(t *testing.T) {
	svc, orders, _, _ := newTransitionFixture()
	seedOrder(orders, entity.OrderStatusInPreparation,
		entity.OrderItem{ID: "it-1", OrderID: "ord-1", Piece: "SeaPod Device", Serial: "SN-1"},
		entity.OrderItem{ID: "it-2", OrderID: "ord-1", Piece: "seapod spare", Serial: "SN-2"},
	)

	if _, err := svc.RequestStatus(context.Background(), "ord-1", entity.OrderStatusInBox, entity.RoleOperation); !IsValidation(err) {
		t.Fatalf("expected validation error for multiple seapod lines, got %v", err)
	}
}

func TestRequestStatusOpensWizardForUnknownSerial(t *testing.T) {
	svc, orders, _, wizards := newTransitionFixture()
	seedOrder(orders, entity.OrderStatusInPreparation,
		entity.OrderItem{ID: "it-1", OrderID: "ord-1", Piece: "SeaPod Device", Serial: "SN-404"},
	)

	outcome, err := svc.RequestStatus(context.Background(), "ord-1", entity.OrderStatusInBox, entity.RoleOperation)
	if err != nil {
		t.Fatalf("RequestStatus: %v", err)
	}
	if !outcome.RequiresWizard || outcome.Applied {
		t.Fatalf("expected wizard outcome, got %+v", outcome)
	}
	if orders.orders["ord-1"].Status != entity.OrderStatusInPreparation {
		t.Fatal("status must stay pending while wizard is open")
	}

	session, err := wizards.Get(context.Background(), "ord-1")
	if err != nil {
		t.Fatalf("wizard session not saved: %v", err)
	}
	if session.SerialNumber != "SN-404" || session.PendingStatus != entity.OrderStatusInBox {
		t.Fatalf("unexpected session: %+v", session)
	}
	if session.Step != entity.WizardStepSelectTemplate {
		t.Fatalf("wizard should start at template selection, got %q", session.Step)
	}
}

func TestRequestStatusClaimsCompletedSeapod(t *testing.T) {
	svc, orders, seapods, _ := newTransitionFixture()
	seedOrder(orders, entity.OrderStatusInPreparation,
		entity.OrderItem{ID: "it-1", OrderID: "ord-1", Piece: "SeaPod Device", Serial: "SN-100"},
	)
	seapods.add(&entity.SeapodProduction{ID: "sp-1", SerialNumber: "SN-100", Status: entity.SeapodStatusCompleted})

	outcome, err := svc.RequestStatus(context.Background(), "ord-1", entity.OrderStatusInBox, entity.RoleOperation)
	if err != nil {
		t.Fatalf("RequestStatus: %v", err)
	}
	if !outcome.Applied {
		t.Fatalf("expected applied transition, got %+v", outcome)
	}

	sp := seapods.bySerial["SN-100"]
	if sp.Status != entity.SeapodStatusAssigned || sp.OrderNumber != "SO-202608270001" {
		t.Fatalf("seapod not claimed: %+v", sp)
	}
}

func TestRequestStatusConflictLeavesEverythingUntouched(t *testing.T) {
	svc, orders, seapods, _ := newTransitionFixture()
	seedOrder(orders, entity.OrderStatusInPreparation,
		entity.OrderItem{ID: "it-1", OrderID: "ord-1", Piece: "SeaPod Device", Serial: "SN-200"},
	)
	seapods.add(&entity.SeapodProduction{
		ID: "sp-2", SerialNumber: "SN-200",
		Status: entity.SeapodStatusAssigned, OrderNumber: "SO-202608190007",
	})

	_, err := svc.RequestStatus(context.Background(), "ord-1", entity.OrderStatusReadyForPickup, entity.RoleOperation)
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if conflict.AssignedOrder != "SO-202608190007" {
		t.Fatalf("conflict should name the holding order, got %q", conflict.AssignedOrder)
	}
	if orders.orders["ord-1"].Status != entity.OrderStatusInPreparation {
		t.Fatal("order status must not change on conflict")
	}
	if seapods.bySerial["SN-200"].OrderNumber != "SO-202608190007" {
		t.Fatal("seapod assignment must not change on conflict")
	}
}

func TestRequestStatusInProgressSeapodRejected(t *testing.T) {
	svc, orders, seapods, _ := newTransitionFixture()
	seedOrder(orders, entity.OrderStatusInPreparation,
		entity.OrderItem{ID: "it-1", OrderID: "ord-1", Piece: "SeaPod Device", Serial: "SN-300"},
	)
	seapods.add(&entity.SeapodProduction{ID: "sp-3", SerialNumber: "SN-300", Status: entity.SeapodStatusInProgress})

	if _, err := svc.RequestStatus(context.Background(), "ord-1", entity.OrderStatusInBox, entity.RoleOperation); !IsValidation(err) {
		t.Fatalf("expected validation error for In Progress seapod, got %v", err)
	}
}

func TestRequestStatusShippedRequiresVessel(t *testing.T) {
	svc, orders, seapods, _ := newTransitionFixture()
	order := seedOrder(orders, entity.OrderStatusReadyForPickup,
		entity.OrderItem{ID: "it-1", OrderID: "ord-1", Piece: "SeaPod Device", Serial: "SN-400"},
	)
	order.Vessel = entity.VesselPlaceholder
	seapods.add(&entity.SeapodProduction{
		ID: "sp-4", SerialNumber: "SN-400",
		Status: entity.SeapodStatusAssigned, OrderNumber: order.OrderNumber,
	})

	if _, err := svc.RequestStatus(context.Background(), "ord-1", entity.OrderStatusShipped, entity.RoleOperation); !IsValidation(err) {
		t.Fatalf("expected validation error for placeholder vessel, got %v", err)
	}
}

func TestRequestStatusShippedDefersToConfirmation(t *testing.T) {
	svc, orders, seapods, _ := newTransitionFixture()
	order := seedOrder(orders, entity.OrderStatusReadyForPickup,
		entity.OrderItem{ID: "it-1", OrderID: "ord-1", Piece: "SeaPod Device", Serial: "SN-500"},
	)
	seapods.add(&entity.SeapodProduction{
		ID: "sp-5", SerialNumber: "SN-500",
		Status: entity.SeapodStatusAssigned, OrderNumber: order.OrderNumber,
	})

	outcome, err := svc.RequestStatus(context.Background(), "ord-1", entity.OrderStatusShipped, entity.RoleOperation)
	if err != nil {
		t.Fatalf("RequestStatus: %v", err)
	}
	if !outcome.RequiresShipConfirm || outcome.Applied {
		t.Fatalf("expected ship confirmation outcome, got %+v", outcome)
	}
	if orders.orders["ord-1"].Status != entity.OrderStatusReadyForPickup {
		t.Fatal("Shipped must only be written by the shipping confirmation")
	}
}

func TestResolveSeapodConflictClearsSerial(t *testing.T) {
	svc, orders, _, _ := newTransitionFixture()
	seedOrder(orders, entity.OrderStatusInPreparation,
		entity.OrderItem{ID: "it-1", OrderID: "ord-1", Piece: "SeaPod Device", Serial: "SN-200"},
		entity.OrderItem{ID: "it-2", OrderID: "ord-1", Piece: "Cable", Serial: "C-1"},
	)

	if err := svc.ResolveSeapodConflict(context.Background(), "ord-1", entity.RoleVendor); err != nil {
		t.Fatalf("ResolveSeapodConflict: %v", err)
	}
	items, _ := orders.GetItems(context.Background(), "ord-1")
	if items[0].Serial != "" {
		t.Fatalf("seapod line serial should be cleared, got %q", items[0].Serial)
	}
	if items[1].Serial != "C-1" {
		t.Fatal("non-seapod line must keep its serial")
	}
}
