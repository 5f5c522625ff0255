package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bitfantasy/seapod-portal/internal/portal/entity"
	"go.uber.org/zap"
)

func newShippingFixture(notifier *fakeNotifier, vessels *fakeVessels) (*ShippingService, *fakeOrderStore, *fakeSeapodStore) {
	orders := newFakeOrderStore()
	seapods := newFakeSeapodStore()
	svc := NewShippingService(orders, seapods, notifier, vessels, fakeFileResolver{}, nil, zap.NewNop())
	return svc, orders, seapods
}

func seedShippableOrder(orders *fakeOrderStore, seapods *fakeSeapodStore) *entity.Order {
	order := &entity.Order{
		ID:          "ord-1",
		OrderNumber: "SO-202608270001",
		Vessel:      "MV Aurora",
		AccountName: "Aurora Shipping Co",
		Status:      entity.OrderStatusReadyForPickup,
	}
	orders.addOrder(order,
		entity.OrderItem{ID: "it-1", OrderID: "ord-1", Piece: "SeaPod Device", Quantity: 1, Serial: "SN-100"},
		entity.OrderItem{ID: "it-2", OrderID: "ord-1", Piece: "Mounting Kit", Quantity: 2},
	)
	orders.files["ord-1"] = []entity.OrderFile{
		{ID: "f-1", OrderID: "ord-1", FileName: "packing-list.pdf", FilePath: "orders/2026/08/27/abc.pdf"},
	}
	seapods.add(&entity.SeapodProduction{
		ID: "sp-1", SerialNumber: "SN-100",
		HWVersion: "3.1", SWVersion: "2.0.4", SeapodVersion: "3.0",
		Status: entity.SeapodStatusAssigned, OrderNumber: order.OrderNumber,
	})
	return order
}

func TestConfirmShipmentSuccess(t *testing.T) {
	notifier := &fakeNotifier{}
	svc, orders, seapods := newShippingFixture(notifier, &fakeVessels{})
	seedShippableOrder(orders, seapods)

	before := time.Now()
	order, err := svc.ConfirmShipment(context.Background(), "ord-1", entity.RoleOperation)
	if err != nil {
		t.Fatalf("ConfirmShipment: %v", err)
	}
	if order.Status != entity.OrderStatusShipped {
		t.Fatalf("expected Shipped, got %q", order.Status)
	}
	if order.ShippedAt == nil || order.ShippedAt.Before(before) {
		t.Fatalf("shipped_at not set correctly: %v", order.ShippedAt)
	}

	if len(notifier.payloads) != 1 {
		t.Fatalf("webhook should fire exactly once, got %d", len(notifier.payloads))
	}
	payload := notifier.payloads[0]
	items, ok := payload.Items.([]entity.OrderItem)
	if !ok || len(items) != 2 {
		t.Fatalf("payload should carry all line items, got %T with %d", payload.Items, len(items))
	}
	if len(payload.Files) != 1 || payload.Files[0].DownloadURL != "https://files.test/orders/2026/08/27/abc.pdf" {
		t.Fatalf("payload files missing download url: %+v", payload.Files)
	}
	if payload.SeapodInfo == nil || payload.SeapodInfo.HWVersion != "3.1" {
		t.Fatalf("payload should carry seapod versions, got %+v", payload.SeapodInfo)
	}
	if payload.TriggeredAt.IsZero() {
		t.Fatal("triggered_at must be set")
	}
}

func TestConfirmShipmentWebhookFailureLeavesOrder(t *testing.T) {
	notifier := &fakeNotifier{fail: true}
	svc, orders, seapods := newShippingFixture(notifier, &fakeVessels{})
	seedShippableOrder(orders, seapods)

	if _, err := svc.ConfirmShipment(context.Background(), "ord-1", entity.RoleAdmin); err == nil {
		t.Fatal("expected error when webhook fails")
	}
	o := orders.orders["ord-1"]
	if o.Status != entity.OrderStatusReadyForPickup || o.ShippedAt != nil {
		t.Fatalf("order must be untouched after webhook failure: %+v", o)
	}
}

func TestConfirmShipmentVendorForbidden(t *testing.T) {
	svc, orders, seapods := newShippingFixture(&fakeNotifier{}, &fakeVessels{})
	seedShippableOrder(orders, seapods)

	if _, err := svc.ConfirmShipment(context.Background(), "ord-1", entity.RoleVendor); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestConfirmShipmentReplayIsNoop(t *testing.T) {
	notifier := &fakeNotifier{}
	svc, orders, seapods := newShippingFixture(notifier, &fakeVessels{})
	seedShippableOrder(orders, seapods)
	ctx := context.Background()

	if _, err := svc.ConfirmShipment(ctx, "ord-1", entity.RoleOperation); err != nil {
		t.Fatalf("first confirm: %v", err)
	}
	order, err := svc.ConfirmShipment(ctx, "ord-1", entity.RoleOperation)
	if err != nil {
		t.Fatalf("replay confirm: %v", err)
	}
	if order.Status != entity.OrderStatusShipped {
		t.Fatalf("replay should return the shipped order, got %q", order.Status)
	}
	if len(notifier.payloads) != 1 {
		t.Fatalf("replay must not re-fire the webhook, got %d calls", len(notifier.payloads))
	}
}

func TestConfirmShipmentPlaceholderVesselRejected(t *testing.T) {
	svc, orders, seapods := newShippingFixture(&fakeNotifier{}, &fakeVessels{})
	order := seedShippableOrder(orders, seapods)
	order.Vessel = entity.VesselPlaceholder

	if _, err := svc.ConfirmShipment(context.Background(), "ord-1", entity.RoleOperation); !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCheckVesselFoundWritesBack(t *testing.T) {
	vessels := &fakeVessels{accounts: map[string]string{"mv aurora": "Aurora Shipping Co"}}
	svc, orders, seapods := newShippingFixture(&fakeNotifier{}, vessels)
	seedShippableOrder(orders, seapods)

	result, err := svc.CheckVessel(context.Background(), "ord-1", "MV Aurora")
	if err != nil {
		t.Fatalf("CheckVessel: %v", err)
	}
	if !result.Found || result.Account != "Aurora Shipping Co" {
		t.Fatalf("unexpected result: %+v", result)
	}
	o := orders.orders["ord-1"]
	if o.Vessel != "MV Aurora" || o.AccountName != "Aurora Shipping Co" {
		t.Fatalf("vessel/account not written back: %+v", o)
	}
}

func TestCheckVesselMissClearsOrderFields(t *testing.T) {
	svc, orders, seapods := newShippingFixture(&fakeNotifier{}, &fakeVessels{accounts: map[string]string{}})
	seedShippableOrder(orders, seapods)

	result, err := svc.CheckVessel(context.Background(), "ord-1", "MV Ghost")
	if err != nil {
		t.Fatalf("CheckVessel: %v", err)
	}
	if result.Found {
		t.Fatalf("unknown vessel must not be found: %+v", result)
	}
	o := orders.orders["ord-1"]
	if o.Vessel != "" || o.AccountName != "" {
		t.Fatalf("miss must clear vessel and account, got %+v", o)
	}
}

func TestCheckVesselBlankRejected(t *testing.T) {
	svc, orders, seapods := newShippingFixture(&fakeNotifier{}, &fakeVessels{})
	seedShippableOrder(orders, seapods)

	if _, err := svc.CheckVessel(context.Background(), "ord-1", "   "); !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
