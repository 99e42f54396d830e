package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tbuchert/accounting-api/internal/models"
)

const viesValidEnvelope = `<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
<soap:Body>
<checkVatResponse xmlns="urn:ec.europa.eu:taxud:vies:services:checkVat:types">
<valid>true</valid>
<name>ACME GMBH</name>
<address>MUSTERSTR. 1, 10115 BERLIN</address>
</checkVatResponse>
</soap:Body>
</soap:Envelope>`

func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func TestClientCRUD(t *testing.T) {
	e, _ := newTestServer(t, "")
	access, _ := login(t, e, adminEmail, adminPassword)

	rec := doJSON(e, http.MethodPost, "/api/v1/clients", access, `{"type":"client"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/v1/clients", access,
		`{"name":"ACME GmbH","notes":"net 30","contacts":[{"first_name":"Max","last_name":"Muster","email":"max@acme.example"}]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created models.Client
	decode(t, rec, &created)
	require.Equal(t, "ACME GmbH", created.Name)
	require.Equal(t, models.ClientTypeClient, created.Type)
	require.True(t, created.IsActive)
	require.Len(t, created.Contacts, 1)

	rec = doJSON(e, http.MethodGet, "/api/v1/clients/"+created.ID.String(), access, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodPatch, "/api/v1/clients/"+created.ID.String(), access,
		`{"notes":"net 14","is_active":false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var patched models.Client
	decode(t, rec, &patched)
	require.Equal(t, "net 14", patched.Notes)
	require.False(t, patched.IsActive)

	rec = doJSON(e, http.MethodGet, "/api/v1/clients", access, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.Client
	decode(t, rec, &list)
	require.Len(t, list, 1)

	rec = doJSON(e, http.MethodGet, "/api/v1/clients/00000000-0000-0000-0000-00000000dead", access, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestClientContacts(t *testing.T) {
	e, _ := newTestServer(t, "")
	access, _ := login(t, e, adminEmail, adminPassword)

	rec := doJSON(e, http.MethodPost, "/api/v1/clients", access, `{"name":"ACME GmbH"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var client models.Client
	decode(t, rec, &client)

	rec = doJSON(e, http.MethodPost, "/api/v1/clients/"+client.ID.String()+"/contacts", access,
		`{"first_name":"Erika","last_name":"Muster","position":"CFO"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var contact models.ContactPerson
	decode(t, rec, &contact)

	rec = doJSON(e, http.MethodPatch, "/api/v1/clients/contacts/"+contact.ID.String(), access,
		`{"first_name":"Erika","last_name":"Muster","position":"CEO"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodGet, "/api/v1/clients/"+client.ID.String()+"/contacts", access, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var contacts []models.ContactPerson
	decode(t, rec, &contacts)
	require.Len(t, contacts, 1)
	require.Equal(t, "CEO", contacts[0].Position)

	rec = doJSON(e, http.MethodDelete, "/api/v1/clients/contacts/"+contact.ID.String(), access, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(e, http.MethodDelete, "/api/v1/clients/contacts/"+contact.ID.String(), access, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestClientAttachments(t *testing.T) {
	e, _ := newTestServer(t, "")
	access, _ := login(t, e, adminEmail, adminPassword)

	rec := doJSON(e, http.MethodPost, "/api/v1/clients", access, `{"name":"ACME GmbH"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var client models.Client
	decode(t, rec, &client)

	rec = doJSON(e, http.MethodPost, "/api/v1/clients/"+client.ID.String()+"/attachments", access,
		`{"file_type":"application/pdf"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/v1/clients/00000000-0000-0000-0000-00000000dead/attachments", access,
		`{"file_name":"contract.pdf","file_url":"https://files.example.com/contract.pdf"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/v1/clients/"+client.ID.String()+"/attachments", access,
		`{"file_name":"contract.pdf","file_type":"application/pdf","file_url":"https://files.example.com/contract.pdf","uploaded_by":"admin@example.com","notes":"signed copy"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var attachment models.DocumentAttachment
	decode(t, rec, &attachment)
	require.Equal(t, client.ID, attachment.ClientID)
	require.Equal(t, "contract.pdf", attachment.FileName)
	require.False(t, attachment.UploadedAt.IsZero())

	rec = doJSON(e, http.MethodGet, "/api/v1/clients/"+client.ID.String()+"/attachments", access, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var attachments []models.DocumentAttachment
	decode(t, rec, &attachments)
	require.Len(t, attachments, 1)

	rec = doJSON(e, http.MethodGet, "/api/v1/clients/attachments/"+attachment.ID.String(), access, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodDelete, "/api/v1/clients/attachments/"+attachment.ID.String(), access, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(e, http.MethodDelete, "/api/v1/clients/attachments/"+attachment.ID.String(), access, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestClientVATValidation(t *testing.T) {
	vies := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, viesValidEnvelope)
	}))
	defer vies.Close()

	e, _ := newTestServer(t, vies.URL)
	access, _ := login(t, e, adminEmail, adminPassword)

	rec := doJSON(e, http.MethodPost, "/api/v1/clients", access,
		`{"name":"ACME GmbH","ust_id":"DE123456789"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var client models.Client
	decode(t, rec, &client)
	require.True(t, client.UstIDValidated)
	require.NotNil(t, client.UstIDCheckedAt)

	rec = doJSON(e, http.MethodPost, "/api/v1/clients/"+client.ID.String()+"/validate-vat", access, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var result struct {
		Valid bool   `json:"valid"`
		Name  string `json:"name"`
	}
	decode(t, rec, &result)
	require.True(t, result.Valid)
	require.Equal(t, "ACME GMBH", result.Name)
}

func TestItemCRUD(t *testing.T) {
	e, _ := newTestServer(t, "")
	access, _ := login(t, e, adminEmail, adminPassword)

	rec := doJSON(e, http.MethodPost, "/api/v1/items", access, `{"description":"no name"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/v1/items", access, `{"name":"Consulting"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var item models.Item
	decode(t, rec, &item)
	require.Equal(t, models.ItemTypeService, item.Type)
	require.Equal(t, "hour", item.Unit)
	require.Equal(t, 19.0, item.VATRate)
	require.True(t, item.IsActive)

	rec = doJSON(e, http.MethodPatch, "/api/v1/items/"+item.ID.String(), access,
		`{"unit_price":120.5,"vat_rate":7}`)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &item)
	require.Equal(t, 120.5, item.UnitPrice)
	require.Equal(t, 7.0, item.VATRate)

	rec = doJSON(e, http.MethodDelete, "/api/v1/items/"+item.ID.String(), access, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(e, http.MethodGet, "/api/v1/items/"+item.ID.String(), access, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInvoiceLifecycle(t *testing.T) {
	e, _ := newTestServer(t, "")
	access, _ := login(t, e, adminEmail, adminPassword)

	rec := doJSON(e, http.MethodPost, "/api/v1/clients", access, `{"name":"ACME GmbH"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var client models.Client
	decode(t, rec, &client)

	body := `{"number":"INV-2026-001","client_id":"` + client.ID.String() + `",
		"issue_date":"2026-08-01T00:00:00Z","due_date":"2026-08-31T00:00:00Z",
		"subtotal":100,"vat":19,"total":119,
		"items":[{"description":"Consulting","quantity":2,"unit":"hour","unit_price":50,"vat_rate":19,"position":1}]}`
	rec = doJSON(e, http.MethodPost, "/api/v1/invoices", access, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var invoice models.Invoice
	decode(t, rec, &invoice)
	require.Equal(t, models.InvoiceStatusDraft, invoice.Status)
	require.Len(t, invoice.Items, 1)

	// duplicate numbers are rejected
	rec = doJSON(e, http.MethodPost, "/api/v1/invoices", access, body)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(e, http.MethodPatch, "/api/v1/invoices/"+invoice.ID.String(), access, `{"status":"issued"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &invoice)
	require.Equal(t, models.InvoiceStatusIssued, invoice.Status)

	rec = doJSON(e, http.MethodPost, "/api/v1/invoices/"+invoice.ID.String()+"/payments", access,
		`{"method":"bank_transfer","amount":119}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var payment models.Payment
	decode(t, rec, &payment)
	require.Equal(t, 119.0, payment.Amount)

	rec = doJSON(e, http.MethodPost, "/api/v1/invoices/"+invoice.ID.String()+"/payments", access,
		`{"method":"bank_transfer","amount":0}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(e, http.MethodGet, "/api/v1/invoices/"+invoice.ID.String()+"/payments", access, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var payments []models.Payment
	decode(t, rec, &payments)
	require.Len(t, payments, 1)

	rec = doJSON(e, http.MethodDelete, "/api/v1/payments/"+payment.ID.String(), access, "")
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSearchEndpointValidation(t *testing.T) {
	e, _ := newTestServer(t, "")
	access, _ := login(t, e, adminEmail, adminPassword)

	rec := doJSON(e, http.MethodGet, "/api/v1/search", access, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// no cluster configured in tests
	rec = doJSON(e, http.MethodGet, "/api/v1/search?q=acme", access, "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestPreferencesSingleton(t *testing.T) {
	e, _ := newTestServer(t, "")
	access, _ := login(t, e, adminEmail, adminPassword)

	rec := doJSON(e, http.MethodGet, "/api/v1/admin/preferences", access, "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(e, http.MethodPut, "/api/v1/admin/preferences", access, `{"company_name":"ACME GmbH"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var prefs models.SystemPreferences
	decode(t, rec, &prefs)
	require.Equal(t, models.CurrencyEUR, prefs.DefaultCurrency)
	require.Equal(t, "INV", prefs.InvoicePrefix)

	rec = doJSON(e, http.MethodPut, "/api/v1/admin/preferences", access,
		`{"company_name":"ACME GmbH","invoice_prefix":"RE"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodGet, "/api/v1/admin/preferences", access, "")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &prefs)
	require.Equal(t, "RE", prefs.InvoicePrefix)
}
