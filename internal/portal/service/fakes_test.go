package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bitfantasy/seapod-portal/internal/portal/entity"
	"github.com/bitfantasy/seapod-portal/internal/portal/repository"
	"github.com/bitfantasy/seapod-portal/internal/shared/n8n"
)

// 内存假实现，覆盖门禁/向导/发货依赖的窄接口。

type fakeOrderStore struct {
	orders map[string]*entity.Order
	items  map[string][]entity.OrderItem
	files  map[string][]entity.OrderFile
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{
		orders: map[string]*entity.Order{},
		items:  map[string][]entity.OrderItem{},
		files:  map[string][]entity.OrderFile{},
	}
}

func (f *fakeOrderStore) addOrder(o *entity.Order, items ...entity.OrderItem) {
	f.orders[o.ID] = o
	f.items[o.ID] = items
}

func (f *fakeOrderStore) GetByID(_ context.Context, id string) (*entity.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrderStore) GetItems(_ context.Context, orderID string) ([]entity.OrderItem, error) {
	return append([]entity.OrderItem(nil), f.items[orderID]...), nil
}

func (f *fakeOrderStore) GetFiles(_ context.Context, orderID string) ([]entity.OrderFile, error) {
	return append([]entity.OrderFile(nil), f.files[orderID]...), nil
}

func (f *fakeOrderStore) UpdateStatus(_ context.Context, id, status string) error {
	o, ok := f.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.Status = status
	return nil
}

func (f *fakeOrderStore) SetShipped(_ context.Context, id string, at time.Time) error {
	o, ok := f.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.Status = entity.OrderStatusShipped
	o.ShippedAt = &at
	return nil
}

func (f *fakeOrderStore) SetVessel(_ context.Context, id, vessel, account string) error {
	o, ok := f.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.Vessel = vessel
	o.AccountName = account
	return nil
}

func (f *fakeOrderStore) UpdateItemSerial(_ context.Context, itemID, serial string) error {
	for orderID, items := range f.items {
		for i := range items {
			if items[i].ID == itemID {
				f.items[orderID][i].Serial = serial
				return nil
			}
		}
	}
	return repository.ErrNotFound
}

type fakeSeapodStore struct {
	bySerial map[string]*entity.SeapodProduction
	items    map[string][]entity.SeapodItem
	created  int
}

func newFakeSeapodStore() *fakeSeapodStore {
	return &fakeSeapodStore{
		bySerial: map[string]*entity.SeapodProduction{},
		items:    map[string][]entity.SeapodItem{},
	}
}

func (f *fakeSeapodStore) add(sp *entity.SeapodProduction, items ...entity.SeapodItem) {
	f.bySerial[sp.SerialNumber] = sp
	f.items[sp.ID] = items
}

func (f *fakeSeapodStore) byID(id string) *entity.SeapodProduction {
	for _, sp := range f.bySerial {
		if sp.ID == id {
			return sp
		}
	}
	return nil
}

func (f *fakeSeapodStore) GetBySerial(_ context.Context, serial string) (*entity.SeapodProduction, error) {
	sp, ok := f.bySerial[serial]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *sp
	return &cp, nil
}

func (f *fakeSeapodStore) Create(_ context.Context, sp *entity.SeapodProduction) error {
	if _, exists := f.bySerial[sp.SerialNumber]; exists {
		return fmt.Errorf("duplicate serial %s", sp.SerialNumber)
	}
	cp := *sp
	f.bySerial[sp.SerialNumber] = &cp
	f.created++
	return nil
}

func (f *fakeSeapodStore) BatchCreateItems(_ context.Context, items []entity.SeapodItem) error {
	for _, it := range items {
		f.items[it.SeapodID] = append(f.items[it.SeapodID], it)
	}
	return nil
}

func (f *fakeSeapodStore) GetItems(_ context.Context, seapodID string) ([]entity.SeapodItem, error) {
	return append([]entity.SeapodItem(nil), f.items[seapodID]...), nil
}

func (f *fakeSeapodStore) UpdateItemSerial(_ context.Context, itemID, serial string) error {
	for seapodID, items := range f.items {
		for i := range items {
			if items[i].ID == itemID {
				f.items[seapodID][i].Serial = serial
				return nil
			}
		}
	}
	return repository.ErrNotFound
}

func (f *fakeSeapodStore) Assign(_ context.Context, id, orderNumber string, _ time.Time) error {
	sp := f.byID(id)
	if sp == nil {
		return repository.ErrNotFound
	}
	sp.Status = entity.SeapodStatusAssigned
	sp.OrderNumber = orderNumber
	return nil
}

func (f *fakeSeapodStore) Claim(_ context.Context, serial, orderNumber string) (bool, error) {
	sp, ok := f.bySerial[serial]
	if !ok {
		return false, nil
	}
	claimable := sp.Status == entity.SeapodStatusCompleted ||
		(sp.Status == entity.SeapodStatusAssigned && sp.OrderNumber == orderNumber)
	if !claimable || (sp.OrderNumber != "" && sp.OrderNumber != orderNumber) {
		return false, nil
	}
	sp.Status = entity.SeapodStatusAssigned
	sp.OrderNumber = orderNumber
	return true, nil
}

func (f *fakeSeapodStore) Delete(_ context.Context, id string) error {
	for serial, sp := range f.bySerial {
		if sp.ID == id {
			delete(f.bySerial, serial)
			delete(f.items, id)
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeWizardStore struct {
	sessions map[string]*entity.WizardSession
}

func newFakeWizardStore() *fakeWizardStore {
	return &fakeWizardStore{sessions: map[string]*entity.WizardSession{}}
}

func (f *fakeWizardStore) Get(_ context.Context, orderID string) (*entity.WizardSession, error) {
	s, ok := f.sessions[orderID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeWizardStore) Save(_ context.Context, session *entity.WizardSession) error {
	cp := *session
	f.sessions[session.OrderID] = &cp
	return nil
}

func (f *fakeWizardStore) Delete(_ context.Context, orderID string) error {
	delete(f.sessions, orderID)
	return nil
}

type fakeTemplateStore struct {
	templates map[string]*entity.SeapodTemplate
}

func (f *fakeTemplateStore) GetByID(_ context.Context, id string) (*entity.SeapodTemplate, error) {
	tpl, ok := f.templates[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return tpl, nil
}

type fakeNotifier struct {
	payloads []*n8n.ShipmentPayload
	fail     bool
}

func (f *fakeNotifier) NotifyShipment(_ context.Context, payload *n8n.ShipmentPayload) error {
	if f.fail {
		return fmt.Errorf("webhook returned status 500")
	}
	f.payloads = append(f.payloads, payload)
	return nil
}

type fakeVessels struct {
	accounts map[string]string
	calls    int
}

func (f *fakeVessels) LookupVessel(_ context.Context, vessel string) (string, bool, error) {
	f.calls++
	account, ok := f.accounts[strings.ToLower(vessel)]
	return account, ok, nil
}

type fakeFileResolver struct{}

func (fakeFileResolver) DownloadURL(_ context.Context, path string) (string, error) {
	return "https://files.test/" + path, nil
}
