package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin      Role = "Admin"
	RoleAccountant Role = "Accountant"
)

type Language string

const (
	LanguageEN Language = "en"
	LanguageDE Language = "de"
)

type Currency string

const (
	CurrencyEUR Currency = "EUR"
	CurrencyUSD Currency = "USD"
	CurrencyCHF Currency = "CHF"
)

type ClientType string

const (
	ClientTypeClient   ClientType = "client"
	ClientTypeSupplier ClientType = "supplier"
	ClientTypeBoth     ClientType = "both"
)

type ItemType string

const (
	ItemTypeService ItemType = "service"
	ItemTypeProduct ItemType = "product"
	ItemTypeBundle  ItemType = "bundle"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusIssued    InvoiceStatus = "issued"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

type PaymentMethod string

const (
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodPaypal       PaymentMethod = "paypal"
	PaymentMethodOther        PaymentMethod = "other"
)

type TaxScheme string

const (
	TaxSchemeStandard      TaxScheme = "standard"
	TaxSchemeSmallBusiness TaxScheme = "small_business"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"       json:"id"`
	Email        string    `gorm:"uniqueIndex;size:320;not null" json:"email"`
	PasswordHash string    `gorm:"not null"                   json:"-"`

	FirstName string `gorm:"size:50" json:"first_name"`
	LastName  string `gorm:"size:50" json:"last_name"`

	PreferredLanguage Language `gorm:"size:2;default:en"   json:"preferred_language"`
	PreferredCurrency Currency `gorm:"size:3;default:EUR"  json:"preferred_currency"`

	Role     Role `gorm:"size:32;not null;default:Accountant" json:"role"`
	IsActive bool `gorm:"default:true"                        json:"is_active"`

	LastLogin   *time.Time `json:"last_login,omitempty"`
	Preferences string     `gorm:"type:text;default:'{}'" json:"preferences"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// RefreshToken rows are never deleted; rotation marks the spent row revoked
// and creates the replacement.
type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"        json:"id"`
	Token     string    `gorm:"uniqueIndex;not null"        json:"token"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null"    json:"user_id"`
	CreatedAt time.Time `gorm:"not null"                    json:"created_at"`
	ExpiresAt time.Time `gorm:"not null"                    json:"expires_at"`
	Revoked   bool      `gorm:"default:false"               json:"revoked"`
}

func (r *RefreshToken) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (r *RefreshToken) IsExpired() bool {
	return !time.Now().UTC().Before(r.ExpiresAt)
}

type Client struct {
	ID   uuid.UUID  `gorm:"type:uuid;primaryKey"      json:"id"`
	Name string     `gorm:"size:255;not null"         json:"name"`
	Type ClientType `gorm:"size:16;default:client"    json:"type"`

	UstID          string     `gorm:"size:20"       json:"ust_id"`
	UstIDValidated bool       `gorm:"default:false" json:"ust_id_validated"`
	UstIDCheckedAt *time.Time `json:"ust_id_checked_at,omitempty"`

	Notes        string `gorm:"type:text"             json:"notes"`
	DunningLevel int    `gorm:"default:0;check:dunning_level >= 0 AND dunning_level <= 3" json:"dunning_level"`
	IsActive     bool   `gorm:"default:true"          json:"is_active"`

	Contacts    []ContactPerson      `gorm:"constraint:OnDelete:CASCADE" json:"contacts,omitempty"`
	Attachments []DocumentAttachment `gorm:"constraint:OnDelete:CASCADE" json:"attachments,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type ContactPerson struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"     json:"id"`
	ClientID uuid.UUID `gorm:"type:uuid;index;not null" json:"client_id"`

	FirstName string `gorm:"size:50"  json:"first_name"`
	LastName  string `gorm:"size:50"  json:"last_name"`
	Email     string `gorm:"size:320" json:"email"`
	Phone     string `gorm:"size:50"  json:"phone"`
	Position  string `gorm:"size:100" json:"position"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *ContactPerson) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// DocumentAttachment stores metadata for a file attached to a client; the
// file itself lives wherever FileURL points.
type DocumentAttachment struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"     json:"id"`
	ClientID uuid.UUID `gorm:"type:uuid;index;not null" json:"client_id"`

	FileName string `gorm:"size:255;not null" json:"file_name"`
	FileType string `gorm:"size:100"          json:"file_type"`
	FileURL  string `gorm:"size:512;not null" json:"file_url"`

	UploadedBy string    `gorm:"size:100" json:"uploaded_by"`
	UploadedAt time.Time `gorm:"not null" json:"uploaded_at"`

	Notes string `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (d *DocumentAttachment) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

type Item struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"   json:"id"`
	Name        string    `gorm:"size:512;not null"      json:"name"`
	Description string    `gorm:"type:text"              json:"description"`
	Type        ItemType  `gorm:"size:16;default:service" json:"type"`

	Unit      string  `gorm:"size:50;default:hour" json:"unit"`
	UnitPrice float64 `gorm:"not null;default:0"   json:"unit_price"`
	CostPrice float64 `gorm:"default:0"            json:"cost_price"`
	VATRate   float64 `gorm:"default:19"           json:"vat_rate"`

	ExternalID string `gorm:"size:100"     json:"external_id"`
	IsActive   bool   `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (i *Item) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

type Invoice struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"           json:"id"`
	Number string    `gorm:"uniqueIndex;size:64;not null"   json:"number"`

	ClientID uuid.UUID `gorm:"type:uuid;index;not null" json:"client_id"`

	IssueDate time.Time  `gorm:"not null" json:"issue_date"`
	DueDate   time.Time  `gorm:"not null" json:"due_date"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`

	Status   InvoiceStatus `gorm:"size:16;default:draft" json:"status"`
	Currency Currency      `gorm:"size:3"                json:"currency"`
	Language Language      `gorm:"size:2"                json:"language"`

	Subtotal float64 `json:"subtotal"`
	VAT      float64 `json:"vat"`
	Total    float64 `json:"total"`

	ReverseCharge bool `gorm:"default:false" json:"reverse_charge"`
	OSS           bool `gorm:"default:false" json:"oss"`

	DunningLevel       int        `gorm:"default:0" json:"dunning_level"`
	DunningFee         float64    `gorm:"default:0" json:"dunning_fee"`
	ReminderCount      int        `gorm:"default:0" json:"reminder_count"`
	LastReminderSentAt *time.Time `json:"last_reminder_sent_at,omitempty"`

	Notes string `gorm:"type:text" json:"notes"`
	Terms string `gorm:"type:text" json:"terms"`

	Items    []InvoiceItem `gorm:"constraint:OnDelete:CASCADE" json:"items,omitempty"`
	Payments []Payment     `gorm:"constraint:OnDelete:CASCADE" json:"payments,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

type InvoiceItem struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"     json:"id"`
	InvoiceID uuid.UUID  `gorm:"type:uuid;index;not null" json:"invoice_id"`
	ItemID    *uuid.UUID `gorm:"type:uuid"                json:"item_id,omitempty"`

	Description string  `gorm:"size:512" json:"description"`
	Quantity    float64 `gorm:"default:1" json:"quantity"`
	Unit        string  `gorm:"size:50"  json:"unit"`
	UnitPrice   float64 `json:"unit_price"`
	VATRate     float64 `json:"vat_rate"`
	Position    int     `gorm:"default:0" json:"position"`
}

func (i *InvoiceItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

type Payment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"     json:"id"`
	InvoiceID uuid.UUID `gorm:"type:uuid;index;not null" json:"invoice_id"`

	Method        PaymentMethod `gorm:"size:32"  json:"method"`
	TransactionID string        `gorm:"size:128" json:"transaction_id"`

	Amount     float64   `json:"amount"`
	ReceivedAt time.Time `gorm:"not null" json:"received_at"`
	Notes      string    `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `json:"created_at"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// SystemPreferencesID pins the preferences table to a single row.
var SystemPreferencesID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

type SystemPreferences struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	CompanyName    string `gorm:"size:512"  json:"company_name"`
	CompanyLogoURL string `gorm:"size:2048" json:"company_logo_url"`

	DefaultCurrency Currency  `gorm:"size:3;default:EUR"        json:"default_currency"`
	DefaultLanguage Language  `gorm:"size:2;default:en"         json:"default_language"`
	TaxScheme       TaxScheme `gorm:"size:32;default:standard"  json:"tax_scheme"`

	InvoicePrefix       string `gorm:"size:16;default:INV" json:"invoice_prefix"`
	EnableReverseCharge bool   `gorm:"default:false"       json:"enable_reverse_charge"`
	EnableOSS           bool   `gorm:"default:false"       json:"enable_oss"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
