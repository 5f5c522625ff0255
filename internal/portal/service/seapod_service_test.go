package service

import (
	"context"
	"strings"
	"testing"

	"github.com/bitfantasy/seapod-portal/internal/portal/entity"
	"github.com/bitfantasy/seapod-portal/internal/portal/repository"
	"github.com/bitfantasy/seapod-portal/internal/portal/testutil"
	"go.uber.org/zap"
)

func TestValidateCompletionAllSerialsPresent(t *testing.T) {
	items := []entity.SeapodItem{
		{Piece: "Mainboard", Serial: "CMP-1"},
		{Piece: "Sensor Array", Serial: "CMP-2"},
	}
	if err := ValidateCompletion(items); err != nil {
		t.Fatalf("expected pass, got %v", err)
	}
}

func TestValidateCompletionNamesMissingPiece(t *testing.T) {
	items := []entity.SeapodItem{
		{Piece: "Mainboard", Serial: "CMP-1"},
		{Piece: "Sensor Array", Serial: "   "},
	}
	err := ValidateCompletion(items)
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Sensor Array") {
		t.Fatalf("error should name the offending piece: %v", err)
	}
}

func TestValidateCompletionEmptyListPasses(t *testing.T) {
	if err := ValidateCompletion(nil); err != nil {
		t.Fatalf("no components means nothing to check, got %v", err)
	}
}

func TestAddItemRejectedAfterCompletion(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	svc := NewSeapodService(repos.Seapod, repos.Template, zap.NewNop())
	ctx := context.Background()

	sp, err := svc.Create(ctx, CreateSeapodRequest{SerialNumber: "SN-DONE-1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	item, err := svc.AddItem(ctx, sp.ID, "Mainboard", 1)
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if err := svc.UpdateItemSerial(ctx, sp.ID, item.ID, "CMP-1"); err != nil {
		t.Fatalf("UpdateItemSerial: %v", err)
	}
	if _, err := svc.RequestCompletion(ctx, sp.ID); err != nil {
		t.Fatalf("RequestCompletion: %v", err)
	}

	// 完工后再加组件会留下一行空序列号，必须拒绝
	if _, err := svc.AddItem(ctx, sp.ID, "Extra Sensor", 1); !IsValidation(err) {
		t.Fatalf("expected validation error after completion, got %v", err)
	}
}
