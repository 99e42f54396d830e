package vat

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const validEnvelope = `<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
<soap:Body>
<checkVatResponse xmlns="urn:ec.europa.eu:taxud:vies:services:checkVat:types">
<countryCode>DE</countryCode>
<vatNumber>123456789</vatNumber>
<valid>true</valid>
<name>ACME GMBH</name>
<address> MUSTERSTR. 1, 10115 BERLIN </address>
</checkVatResponse>
</soap:Body>
</soap:Envelope>`

const invalidEnvelope = `<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
<soap:Body>
<checkVatResponse xmlns="urn:ec.europa.eu:taxud:vies:services:checkVat:types">
<valid>false</valid>
<name>---</name>
<address>---</address>
</checkVatResponse>
</soap:Body>
</soap:Envelope>`

func faultEnvelope(code string) string {
	return fmt.Sprintf(`<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
<soap:Body>
<soap:Fault>
<faultcode>soap:Server</faultcode>
<faultstring>%s</faultstring>
</soap:Fault>
</soap:Body>
</soap:Envelope>`, code)
}

func newTestValidator(url string) *Validator {
	return NewValidator(url, 3, time.Millisecond, time.Second)
}

func TestValidateShortInputSkipsNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("registry must not be contacted for short input")
	}))
	defer srv.Close()

	res := newTestValidator(srv.URL).Validate(context.Background(), "DE")
	require.False(t, res.Valid)
	require.False(t, res.CheckedAt.IsZero())
}

func TestValidateValid(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, validEnvelope)
	}))
	defer srv.Close()

	res := newTestValidator(srv.URL).Validate(context.Background(), "de 123 456 789")
	require.True(t, res.Valid)
	require.Equal(t, "ACME GMBH", res.Name)
	require.Equal(t, "MUSTERSTR. 1, 10115 BERLIN", res.Address)
	require.Equal(t, int32(1), calls.Load())
}

func TestValidateInvalidNumber(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, invalidEnvelope)
	}))
	defer srv.Close()

	res := newTestValidator(srv.URL).Validate(context.Background(), "DE000000000")
	require.False(t, res.Valid)
}

func TestValidateRetriesTransientFault(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			fmt.Fprint(w, faultEnvelope("MS_UNAVAILABLE"))
			return
		}
		fmt.Fprint(w, validEnvelope)
	}))
	defer srv.Close()

	res := newTestValidator(srv.URL).Validate(context.Background(), "DE123456789")
	require.True(t, res.Valid)
	require.Equal(t, int32(3), calls.Load())
}

func TestValidateRetryBudgetExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, faultEnvelope("SERVICE_UNAVAILABLE"))
	}))
	defer srv.Close()

	res := newTestValidator(srv.URL).Validate(context.Background(), "DE123456789")
	require.False(t, res.Valid)
	require.Equal(t, int32(3), calls.Load())
}

func TestValidatePermanentFaultStops(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, faultEnvelope("INVALID_INPUT"))
	}))
	defer srv.Close()

	res := newTestValidator(srv.URL).Validate(context.Background(), "DE123456789")
	require.False(t, res.Valid)
	require.Equal(t, int32(1), calls.Load())
}

func TestValidateServerErrorRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, validEnvelope)
	}))
	defer srv.Close()

	res := newTestValidator(srv.URL).Validate(context.Background(), "DE123456789")
	require.True(t, res.Valid)
	require.Equal(t, int32(2), calls.Load())
}

func TestValidatorMinimumOneAttempt(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, faultEnvelope("MS_UNAVAILABLE"))
	}))
	defer srv.Close()

	// a zero budget must not wrap around into unlimited retries
	v := NewValidator(srv.URL, 0, time.Millisecond, time.Second)
	require.Equal(t, 1, v.Retries)

	res := v.Validate(context.Background(), "DE123456789")
	require.False(t, res.Valid)
	require.Equal(t, int32(1), calls.Load())
}

func TestValidateUnreachableRegistry(t *testing.T) {
	v := newTestValidator("http://127.0.0.1:1")
	res := v.Validate(context.Background(), "DE123456789")
	require.False(t, res.Valid)
	require.False(t, res.CheckedAt.IsZero())
}
