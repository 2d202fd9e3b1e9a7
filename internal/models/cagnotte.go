package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Cagnotte statuses.
const (
	StatusActive  = "active"
	StatusClosed  = "closed"
	StatusPending = "pending"
)

// Cagnotte visibility types.
const (
	TypePublic  = "public"
	TypePrivate = "private"
)

// AnonymousName is the display name recorded for anonymous contributors.
const AnonymousName = "Anonyme"

// UnknownCagnotteTitle is the denormalized title used when a contribution
// references a cagnotte that is not (or no longer) in the collection.
const UnknownCagnotteTitle = "Cagnotte inconnue"

// Cagnotte represents a fundraising pool. CurrentAmount is the only writable
// aggregate; the legacy collectedAmount name survives as a JSON alias and the
// CollectedAmount accessor.
type Cagnotte struct {
	Id            string
	Title         string
	Description   string
	GoalAmount    decimal.Decimal
	CurrentAmount decimal.Decimal
	Currency      string
	Status        string
	Type          string
	Deadline      *time.Time
	CreatorId     string
	Contributors  []string
	ImageUrl      string
	CreatedAt     time.Time
}

// CollectedAmount is the read-only legacy alias for CurrentAmount.
func (c *Cagnotte) CollectedAmount() decimal.Decimal {
	return c.CurrentAmount
}

// Progress returns the collected percentage of the goal, capped at 100.
// A zero goal reports 0 rather than dividing by zero.
func (c *Cagnotte) Progress() int {
	if c.GoalAmount.IsZero() {
		return 0
	}
	pct := c.CurrentAmount.Div(c.GoalAmount).Mul(decimal.NewFromInt(100)).IntPart()
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return int(pct)
}

// Normalize fills the defaults the remote payload may omit: active/public,
// fallback creator, non-nil contributors.
func (c *Cagnotte) Normalize(defaultCreatorId string) {
	if c.Status == "" {
		c.Status = StatusActive
	}
	if c.Type == "" {
		c.Type = TypePublic
	}
	if c.CreatorId == "" {
		c.CreatorId = defaultCreatorId
	}
	if c.Contributors == nil {
		c.Contributors = []string{}
	}
}

// Clone returns a deep copy, so snapshots cannot alias store-owned slices.
func (c *Cagnotte) Clone() Cagnotte {
	out := *c
	out.Contributors = append([]string(nil), c.Contributors...)
	if c.Deadline != nil {
		d := *c.Deadline
		out.Deadline = &d
	}
	return out
}

type cagnotteWire struct {
	Id              json.RawMessage `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	GoalAmount      json.RawMessage `json:"goalAmount"`
	CurrentAmount   json.RawMessage `json:"currentAmount"`
	CollectedAmount json.RawMessage `json:"collectedAmount"`
	Currency        string          `json:"currency"`
	Status          string          `json:"status"`
	Type            string          `json:"type"`
	Deadline        json.RawMessage `json:"deadline"`
	CreatorId       json.RawMessage `json:"creatorId"`
	Contributors    []string        `json:"contributors"`
	ImageUrl        string          `json:"imageUrl"`
	CreatedAt       json.RawMessage `json:"createdAt"`
}

// UnmarshalJSON tolerates the duck-typed payloads the backend historically
// produced: numeric ids, string amounts, either currentAmount or the
// collectedAmount alias, and assorted date formats. Malformed numerics decode
// to zero rather than failing the whole document.
func (c *Cagnotte) UnmarshalJSON(data []byte) error {
	var w cagnotteWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	current := coerceAmount(w.CurrentAmount)
	if len(w.CurrentAmount) == 0 || isJSONNull(w.CurrentAmount) {
		current = coerceAmount(w.CollectedAmount)
	}

	*c = Cagnotte{
		Id:            coerceId(w.Id),
		Title:         w.Title,
		Description:   w.Description,
		GoalAmount:    coerceAmount(w.GoalAmount),
		CurrentAmount: current,
		Currency:      w.Currency,
		Status:        w.Status,
		Type:          w.Type,
		Deadline:      coerceTime(w.Deadline),
		CreatorId:     coerceId(w.CreatorId),
		Contributors:  w.Contributors,
		ImageUrl:      w.ImageUrl,
	}
	if t := coerceTime(w.CreatedAt); t != nil {
		c.CreatedAt = *t
	}
	return nil
}

// MarshalJSON emits both currentAmount and its collectedAmount alias so
// consumers written against either name keep working.
func (c Cagnotte) MarshalJSON() ([]byte, error) {
	out := struct {
		Id              string          `json:"id"`
		Title           string          `json:"title"`
		Description     string          `json:"description"`
		GoalAmount      decimal.Decimal `json:"goalAmount"`
		CurrentAmount   decimal.Decimal `json:"currentAmount"`
		CollectedAmount decimal.Decimal `json:"collectedAmount"`
		Currency        string          `json:"currency"`
		Status          string          `json:"status"`
		Type            string          `json:"type"`
		Deadline        *time.Time      `json:"deadline,omitempty"`
		CreatorId       string          `json:"creatorId"`
		Contributors    []string        `json:"contributors"`
		ImageUrl        string          `json:"imageUrl,omitempty"`
		CreatedAt       time.Time       `json:"createdAt"`
	}{
		Id:              c.Id,
		Title:           c.Title,
		Description:     c.Description,
		GoalAmount:      c.GoalAmount,
		CurrentAmount:   c.CurrentAmount,
		CollectedAmount: c.CurrentAmount,
		Currency:        c.Currency,
		Status:          c.Status,
		Type:            c.Type,
		Deadline:        c.Deadline,
		CreatorId:       c.CreatorId,
		Contributors:    c.Contributors,
		ImageUrl:        c.ImageUrl,
		CreatedAt:       c.CreatedAt,
	}
	return json.Marshal(out)
}

// Contribution is a single donation record. UserId is nil for anonymous or
// guest contributions. Immutable once created; destroyed only when its parent
// cagnotte is deleted.
type Contribution struct {
	Id               string
	CagnotteId       string
	UserId           *string
	Amount           decimal.Decimal
	Anonymous        bool
	Message          string
	User             string
	CagnotteTitle    string
	Currency         string
	PaymentReference string
	CreatedAt        time.Time
}

// DisplayName resolves the name shown in contributor lists: the supplied name,
// or Anonyme when the contribution is anonymous or carries no name.
func (c *Contribution) DisplayName() string {
	if c.Anonymous || c.User == "" {
		return AnonymousName
	}
	return c.User
}

type contributionWire struct {
	Id               json.RawMessage `json:"id"`
	CagnotteId       json.RawMessage `json:"cagnotteId"`
	UserId           json.RawMessage `json:"userId"`
	Amount           json.RawMessage `json:"amount"`
	Anonymous        bool            `json:"anonymous"`
	Message          string          `json:"message"`
	User             string          `json:"user"`
	CagnotteTitle    string          `json:"cagnotteTitle"`
	Currency         string          `json:"currency"`
	PaymentReference string          `json:"paymentReference"`
	CreatedAt        json.RawMessage `json:"createdAt"`
}

func (c *Contribution) UnmarshalJSON(data []byte) error {
	var w contributionWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*c = Contribution{
		Id:               coerceId(w.Id),
		CagnotteId:       coerceId(w.CagnotteId),
		UserId:           coerceUserId(w.UserId),
		Amount:           coerceAmount(w.Amount),
		Anonymous:        w.Anonymous,
		Message:          w.Message,
		User:             w.User,
		CagnotteTitle:    w.CagnotteTitle,
		Currency:         w.Currency,
		PaymentReference: w.PaymentReference,
	}
	if t := coerceTime(w.CreatedAt); t != nil {
		c.CreatedAt = *t
	}
	return nil
}

func (c Contribution) MarshalJSON() ([]byte, error) {
	out := struct {
		Id               string          `json:"id"`
		CagnotteId       string          `json:"cagnotteId"`
		UserId           *string         `json:"userId"`
		Amount           decimal.Decimal `json:"amount"`
		Anonymous        bool            `json:"anonymous"`
		Message          string          `json:"message,omitempty"`
		User             string          `json:"user,omitempty"`
		CagnotteTitle    string          `json:"cagnotteTitle"`
		Currency         string          `json:"currency,omitempty"`
		PaymentReference string          `json:"paymentReference,omitempty"`
		CreatedAt        time.Time       `json:"createdAt"`
	}{
		Id:               c.Id,
		CagnotteId:       c.CagnotteId,
		UserId:           c.UserId,
		Amount:           c.Amount,
		Anonymous:        c.Anonymous,
		Message:          c.Message,
		User:             c.User,
		CagnotteTitle:    c.CagnotteTitle,
		Currency:         c.Currency,
		PaymentReference: c.PaymentReference,
		CreatedAt:        c.CreatedAt,
	}
	return json.Marshal(out)
}

// Transaction mirrors the payment processor's record for a contribution.
type Transaction struct {
	Id                string          `json:"id"`
	ContributionId    string          `json:"contributionId"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	Status            string          `json:"status"`
	ProviderReference string          `json:"providerReference"`
	ProviderResponse  string          `json:"providerResponse,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// ParseAmount safe-parses a free-form amount. Malformed input yields zero;
// form-level validation is the caller's concern, not the store's.
func ParseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func isJSONNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func coerceAmount(raw json.RawMessage) decimal.Decimal {
	if len(raw) == 0 || isJSONNull(raw) {
		return decimal.Zero
	}
	var d decimal.Decimal
	if err := json.Unmarshal(raw, &d); err != nil {
		return decimal.Zero
	}
	return d
}

// coerceId accepts string or numeric JSON ids and renders them as strings.
func coerceId(raw json.RawMessage) string {
	if len(raw) == 0 || isJSONNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// coerceUserId maps null and 0 to nil (anonymous/guest), everything else to
// its string form.
func coerceUserId(raw json.RawMessage) *string {
	id := coerceId(raw)
	if id == "" || id == "0" {
		return nil
	}
	return &id
}

var timeLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"}

func coerceTime(raw json.RawMessage) *time.Time {
	if len(raw) == 0 || isJSONNull(raw) {
		return nil
	}
	s, err := strconv.Unquote(string(raw))
	if err != nil {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
