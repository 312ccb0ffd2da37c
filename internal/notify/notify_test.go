package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type fakeAPI struct {
	sent []*twilioApi.CreateMessageParams
	err  error
}

func (f *fakeAPI) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, params)
	sid := "SM123"
	return &twilioApi.ApiV2010Message{Sid: &sid}, nil
}

func notice() Notice {
	return Notice{StoreName: "GROCERY SHOP", ProductID: 3, ProductName: "Milk", Quantity: 4, Supplier: "Dairy Co", SupplierPhone: "+15550001111"}
}

func TestSMSNotifierSendsMessage(t *testing.T) {
	api := &fakeAPI{}
	n := &SMSNotifier{api: api, from: "+15559990000"}

	require.NoError(t, n.Notify(context.Background(), notice()))
	require.Len(t, api.sent, 1)
	assert.Equal(t, "+15550001111", *api.sent[0].To)
	assert.Equal(t, "+15559990000", *api.sent[0].From)
	assert.Contains(t, *api.sent[0].Body, "restock of Milk (product 3). Current stock: 4.")
}

func TestSMSNotifierErrors(t *testing.T) {
	api := &fakeAPI{err: errors.New("401 unauthorized")}
	n := &SMSNotifier{api: api, from: "+15559990000"}

	err := n.Notify(context.Background(), notice())
	assert.ErrorContains(t, err, "401 unauthorized")

	missing := notice()
	missing.SupplierPhone = " "
	assert.ErrorIs(t, n.Notify(context.Background(), missing), ErrNoSupplierPhone)
}

func TestNewFallsBackToLog(t *testing.T) {
	assert.Equal(t, "log", New("", "", "").Channel())
	assert.Equal(t, "sms", New("AC1", "tok", "+1555").Channel())
}
