package vat

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/tbuchert/accounting-api/internal/logging"
)

// Result is always returned, even when the registry is unreachable; an
// inconclusive check comes back as Valid=false, never as an error.
type Result struct {
	Valid     bool      `json:"valid"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	CheckedAt time.Time `json:"checked_at"`
}

type Validator struct {
	URL        string
	Retries    int
	RetryDelay time.Duration
	Client     *http.Client
}

func NewValidator(url string, retries int, delay, timeout time.Duration) *Validator {
	// at least one attempt; retries-1 feeds an unsigned retry budget
	if retries < 1 {
		retries = 1
	}
	return &Validator{
		URL:        url,
		Retries:    retries,
		RetryDelay: delay,
		Client:     &http.Client{Timeout: timeout},
	}
}

const envelopeTmpl = `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns:urn="urn:ec.europa.eu:taxud:vies:services:checkVat:types"><soapenv:Body><urn:checkVat><urn:countryCode>%s</urn:countryCode><urn:vatNumber>%s</urn:vatNumber></urn:checkVat></soapenv:Body></soapenv:Envelope>`

type checkVatResponse struct {
	XMLName xml.Name
	Body    struct {
		CheckVatResponse struct {
			Valid   bool   `xml:"valid"`
			Name    string `xml:"name"`
			Address string `xml:"address"`
		} `xml:"checkVatResponse"`
		Fault struct {
			FaultString string `xml:"faultstring"`
		} `xml:"Fault"`
	} `xml:"Body"`
}

// Validate checks vatID against the VIES registry. Inputs shorter than three
// characters are rejected locally without a network call. Transient registry
// faults are retried with a fixed delay up to the configured budget; a
// permanent fault stops immediately.
func (v *Validator) Validate(ctx context.Context, vatID string) Result {
	checkedAt := time.Now().UTC()
	if len(vatID) < 3 {
		return Result{CheckedAt: checkedAt}
	}

	l := logging.FromContext(ctx).With("svc", "vat.validate")

	countryCode := strings.ToUpper(vatID[:2])
	vatNumber := strings.TrimSpace(strings.ReplaceAll(vatID[2:], " ", ""))

	var out Result
	backoff := retry.WithMaxRetries(uint64(v.Retries-1), retry.NewConstant(v.RetryDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		res, err := v.checkVat(ctx, countryCode, vatNumber)
		if err != nil {
			return err
		}
		out = res
		return nil
	})
	if err != nil {
		l.Warn("vies check failed", "country", countryCode, "error", err)
		return Result{CheckedAt: checkedAt}
	}

	out.CheckedAt = checkedAt
	return out
}

func (v *Validator) checkVat(ctx context.Context, countryCode, vatNumber string) (Result, error) {
	body := fmt.Sprintf(envelopeTmpl, xmlEscape(countryCode), xmlEscape(vatNumber))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.URL, strings.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")

	resp, err := v.Client.Do(req)
	if err != nil {
		// transport failure, worth another try
		return Result{}, retry.RetryableError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, retry.RetryableError(err)
	}
	if resp.StatusCode >= 500 {
		return Result{}, retry.RetryableError(fmt.Errorf("vies status %d", resp.StatusCode))
	}

	var parsed checkVatResponse
	if err := xml.Unmarshal(raw, &parsed); err != nil {
		return Result{}, fmt.Errorf("vies response parse: %w", err)
	}

	if fault := parsed.Body.Fault.FaultString; fault != "" {
		if isTransientFault(fault) {
			return Result{}, retry.RetryableError(fmt.Errorf("vies fault: %s", fault))
		}
		return Result{}, fmt.Errorf("vies fault: %s", fault)
	}

	r := parsed.Body.CheckVatResponse
	return Result{
		Valid:   r.Valid,
		Name:    strings.TrimSpace(r.Name),
		Address: strings.TrimSpace(r.Address),
	}, nil
}

// Only availability-class faults are worth retrying; anything else (invalid
// input, blocked requester) is permanent.
func isTransientFault(fault string) bool {
	f := strings.ToUpper(fault)
	for _, code := range []string{
		"MS_UNAVAILABLE",
		"SERVICE_UNAVAILABLE",
		"MS_MAX_CONCURRENT_REQ",
		"GLOBAL_MAX_CONCURRENT_REQ",
		"TIMEOUT",
	} {
		if strings.Contains(f, code) {
			return true
		}
	}
	return false
}

func xmlEscape(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
