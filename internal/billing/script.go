package billing

import (
	"context"
	"fmt"

	"storepos/internal/model"
)

// ScriptLine is one requested cart line of a scripted checkout.
type ScriptLine struct {
	ProductID int64
	Quantity  int
}

// Rejection records why a scripted line was not added.
type Rejection struct {
	Index     int
	ProductID int64
	Err       error
}

// Script is an Operator that replays a fixed request, as the HTTP checkout does.
// It cannot re-prompt, so a rejected phone or customer aborts with that error.
type Script struct {
	phone   string
	name    string
	address string
	lines   []ScriptLine

	pos        int
	lastErr    error
	askedPhone bool
	askedName  bool

	Customer   *model.Customer
	Created    bool
	Rejections []Rejection
	Added      []model.BillItem
	Notes      []string
}

func NewScript(phone, name, address string, lines []ScriptLine) *Script {
	return &Script{phone: phone, name: name, address: address, lines: lines}
}

func (s *Script) Phone(ctx context.Context) (string, error) {
	if s.askedPhone {
		return "", s.lastErr
	}
	s.askedPhone = true
	return s.phone, nil
}

func (s *Script) NewCustomer(ctx context.Context, phone string) (string, string, error) {
	if s.askedName {
		return "", "", s.lastErr
	}
	s.askedName = true
	return s.name, s.address, nil
}

func (s *Script) Next(ctx context.Context) (Command, error) {
	if s.pos >= len(s.lines) {
		return Finalize(), nil
	}
	l := s.lines[s.pos]
	s.pos++
	return AddItem(l.ProductID, l.Quantity), nil
}

func (s *Script) Notify(ev Event) {
	switch ev.Kind {
	case EventRejected:
		s.lastErr = ev.Err
		if ev.State == StateBuildingCart && s.pos > 0 {
			l := s.lines[s.pos-1]
			s.Rejections = append(s.Rejections, Rejection{Index: s.pos - 1, ProductID: l.ProductID, Err: ev.Err})
			return
		}
		s.Notes = append(s.Notes, ev.Err.Error())
	case EventCustomerResolved:
		s.Customer = ev.Customer
		s.Created = ev.Created
	case EventItemAdded:
		s.Added = append(s.Added, *ev.Line)
	case EventReceiptFailed:
		s.Notes = append(s.Notes, fmt.Sprintf("receipt not written: %v", ev.Err))
	}
}
