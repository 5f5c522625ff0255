package service

import (
	"context"
	"testing"
	"time"

	"github.com/bitfantasy/seapod-portal/internal/portal/entity"
	"github.com/bitfantasy/seapod-portal/internal/portal/repository"
	"go.uber.org/zap"
)

func newWizardFixture() (*WizardService, *fakeOrderStore, *fakeSeapodStore, *fakeWizardStore) {
	orders := newFakeOrderStore()
	seapods := newFakeSeapodStore()
	wizards := newFakeWizardStore()
	templates := &fakeTemplateStore{templates: map[string]*entity.SeapodTemplate{
		"tpl-1": {
			ID: "tpl-1", Name: "SeaPod v3", HWVersion: "3.1", SWVersion: "2.0.4", SeapodVersion: "3.0",
			Items: []entity.SeapodTemplateItem{
				{ID: "ti-1", TemplateID: "tpl-1", Piece: "Mainboard", Quantity: 1, SortOrder: 0},
				{ID: "ti-2", TemplateID: "tpl-1", Piece: "Sensor Array", Quantity: 1, SortOrder: 1},
			},
		},
	}}
	svc := NewWizardService(orders, seapods, templates, wizards, zap.NewNop())
	return svc, orders, seapods, wizards
}

func startWizard(t *testing.T, orders *fakeOrderStore, wizards *fakeWizardStore, pendingStatus string) {
	t.Helper()
	orders.addOrder(&entity.Order{
		ID: "ord-1", OrderNumber: "SO-202608270001",
		Vessel: "MV Aurora", Status: entity.OrderStatusInPreparation,
	})
	wizards.Save(context.Background(), &entity.WizardSession{
		OrderID:       "ord-1",
		OrderNumber:   "SO-202608270001",
		SerialNumber:  "SN-NEW",
		PendingStatus: pendingStatus,
		Step:          entity.WizardStepSelectTemplate,
		StartedAt:     time.Now(),
	})
}

func TestWizardFullFlowAppliesPendingStatus(t *testing.T) {
	svc, orders, seapods, wizards := newWizardFixture()
	startWizard(t, orders, wizards, entity.OrderStatusInBox)
	ctx := context.Background()

	view, err := svc.SelectTemplate(ctx, "ord-1", "tpl-1")
	if err != nil {
		t.Fatalf("SelectTemplate: %v", err)
	}
	if view.Session.Step != entity.WizardStepEditSerials {
		t.Fatalf("expected edit_serials step, got %q", view.Session.Step)
	}
	if len(view.Items) != 2 {
		t.Fatalf("expected 2 template items copied, got %d", len(view.Items))
	}

	sp := seapods.bySerial["SN-NEW"]
	if sp == nil || sp.Status != entity.SeapodStatusInProgress {
		t.Fatalf("seapod should be created In Progress, got %+v", sp)
	}
	if sp.HWVersion != "3.1" || sp.TemplateName != "SeaPod v3" {
		t.Fatalf("template versions not copied: %+v", sp)
	}

	for _, it := range view.Items {
		if err := svc.UpdateItemSerial(ctx, "ord-1", it.ID, "CMP-"+it.ID); err != nil {
			t.Fatalf("UpdateItemSerial: %v", err)
		}
	}

	if _, err := svc.ConfirmSerials(ctx, "ord-1"); err != nil {
		t.Fatalf("ConfirmSerials: %v", err)
	}

	outcome, err := svc.Acknowledge(ctx, "ord-1")
	if err != nil {
		t.Fatalf("Acknowledge: %v", err)
	}
	if !outcome.Applied || outcome.Status != entity.OrderStatusInBox {
		t.Fatalf("pending status should be applied, got %+v", outcome)
	}
	if orders.orders["ord-1"].Status != entity.OrderStatusInBox {
		t.Fatal("order status not persisted after acknowledge")
	}

	sp = seapods.bySerial["SN-NEW"]
	if sp.Status != entity.SeapodStatusAssigned || sp.OrderNumber != "SO-202608270001" {
		t.Fatalf("seapod should be assigned to the order, got %+v", sp)
	}
	if seapods.created != 1 {
		t.Fatalf("exactly one seapod should exist, created %d", seapods.created)
	}

	if _, err := wizards.Get(ctx, "ord-1"); err == nil {
		t.Fatal("wizard session should be deleted after acknowledge")
	}
}

func TestWizardConfirmSerialsRejectsBlank(t *testing.T) {
	svc, orders, _, wizards := newWizardFixture()
	startWizard(t, orders, wizards, entity.OrderStatusInBox)
	ctx := context.Background()

	view, err := svc.SelectTemplate(ctx, "ord-1", "tpl-1")
	if err != nil {
		t.Fatalf("SelectTemplate: %v", err)
	}
	// 只填第一行
	if err := svc.UpdateItemSerial(ctx, "ord-1", view.Items[0].ID, "CMP-1"); err != nil {
		t.Fatalf("UpdateItemSerial: %v", err)
	}

	if _, err := svc.ConfirmSerials(ctx, "ord-1"); !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	session, _ := wizards.Get(ctx, "ord-1")
	if session.Step != entity.WizardStepEditSerials {
		t.Fatalf("step must stay at edit_serials, got %q", session.Step)
	}
}

func TestWizardStepOrderEnforced(t *testing.T) {
	svc, orders, _, wizards := newWizardFixture()
	startWizard(t, orders, wizards, entity.OrderStatusInBox)
	ctx := context.Background()

	// 模板未选，直接确认序列号
	if _, err := svc.ConfirmSerials(ctx, "ord-1"); !IsValidation(err) {
		t.Fatalf("expected validation error when skipping template step, got %v", err)
	}
	// 模板未选，直接 acknowledge
	if _, err := svc.Acknowledge(ctx, "ord-1"); !IsValidation(err) {
		t.Fatalf("expected validation error when skipping to acknowledge, got %v", err)
	}
	// 选两次模板
	if _, err := svc.SelectTemplate(ctx, "ord-1", "tpl-1"); err != nil {
		t.Fatalf("SelectTemplate: %v", err)
	}
	if _, err := svc.SelectTemplate(ctx, "ord-1", "tpl-1"); !IsValidation(err) {
		t.Fatalf("expected validation error on second template select, got %v", err)
	}
}

func TestWizardBackFromAcknowledge(t *testing.T) {
	svc, orders, _, wizards := newWizardFixture()
	startWizard(t, orders, wizards, entity.OrderStatusInBox)
	ctx := context.Background()

	view, _ := svc.SelectTemplate(ctx, "ord-1", "tpl-1")
	for _, it := range view.Items {
		svc.UpdateItemSerial(ctx, "ord-1", it.ID, "CMP-"+it.ID)
	}
	if _, err := svc.ConfirmSerials(ctx, "ord-1"); err != nil {
		t.Fatalf("ConfirmSerials: %v", err)
	}

	back, err := svc.Back(ctx, "ord-1")
	if err != nil {
		t.Fatalf("Back: %v", err)
	}
	if back.Session.Step != entity.WizardStepEditSerials {
		t.Fatalf("expected edit_serials after back, got %q", back.Session.Step)
	}
}

func TestWizardAcknowledgeDefersShippedToConfirmation(t *testing.T) {
	svc, orders, seapods, wizards := newWizardFixture()
	startWizard(t, orders, wizards, entity.OrderStatusShipped)
	ctx := context.Background()

	view, _ := svc.SelectTemplate(ctx, "ord-1", "tpl-1")
	for _, it := range view.Items {
		svc.UpdateItemSerial(ctx, "ord-1", it.ID, "CMP-"+it.ID)
	}
	svc.ConfirmSerials(ctx, "ord-1")

	outcome, err := svc.Acknowledge(ctx, "ord-1")
	if err != nil {
		t.Fatalf("Acknowledge: %v", err)
	}
	if outcome.Applied || !outcome.RequiresShipConfirm {
		t.Fatalf("Shipped must defer to ship confirmation, got %+v", outcome)
	}
	if orders.orders["ord-1"].Status == entity.OrderStatusShipped {
		t.Fatal("order must not be Shipped by the wizard")
	}
	// 设备绑定仍然生效
	if seapods.bySerial["SN-NEW"].Status != entity.SeapodStatusAssigned {
		t.Fatal("seapod should still be assigned")
	}
}

func TestWizardCancelDeletesInProgressSeapod(t *testing.T) {
	svc, orders, seapods, wizards := newWizardFixture()
	startWizard(t, orders, wizards, entity.OrderStatusInBox)
	ctx := context.Background()

	if _, err := svc.SelectTemplate(ctx, "ord-1", "tpl-1"); err != nil {
		t.Fatalf("SelectTemplate: %v", err)
	}
	if err := svc.Cancel(ctx, "ord-1"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	if _, ok := seapods.bySerial["SN-NEW"]; ok {
		t.Fatal("cancel must delete the in-progress seapod, no orphans")
	}
	if _, err := wizards.Get(ctx, "ord-1"); err == nil {
		t.Fatal("wizard session should be deleted on cancel")
	}
	if orders.orders["ord-1"].Status != entity.OrderStatusInPreparation {
		t.Fatal("order status must be untouched on cancel")
	}
}

func TestWizardCancelBeforeTemplateSelection(t *testing.T) {
	svc, orders, _, wizards := newWizardFixture()
	startWizard(t, orders, wizards, entity.OrderStatusInBox)

	if err := svc.Cancel(context.Background(), "ord-1"); err != nil {
		t.Fatalf("Cancel without seapod: %v", err)
	}
	if _, err := wizards.Get(context.Background(), "ord-1"); err != repository.ErrNotFound {
		t.Fatalf("session should be gone, got %v", err)
	}
}
