package mpesa

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// ResultSuccess is the ResultCode Daraja sends for a completed payment.
const ResultSuccess = 0

// CallbackEnvelope is the webhook body posted to the callback URL.
type CallbackEnvelope struct {
	Body struct {
		STKCallback STKCallback `json:"stkCallback"`
	} `json:"Body"`
}

type STKCallback struct {
	MerchantRequestID string            `json:"MerchantRequestID"`
	CheckoutRequestID string            `json:"CheckoutRequestID"`
	ResultCode        ResultCode        `json:"ResultCode"`
	ResultDesc        string            `json:"ResultDesc"`
	CallbackMetadata  *CallbackMetadata `json:"CallbackMetadata,omitempty"`
}

// UnmarshalJSON treats a missing ResultCode as a failure rather than as 0.
func (c *STKCallback) UnmarshalJSON(b []byte) error {
	type plain STKCallback
	p := plain{ResultCode: -1}
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*c = STKCallback(p)
	return nil
}

func (c STKCallback) Succeeded() bool { return c.ResultCode == ResultSuccess }

// ResultCode accepts both 0 and "0".
type ResultCode int

func (r *ResultCode) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || string(b) == "null" {
		*r = -1
		return nil
	}
	n, err := strconv.Atoi(string(b))
	if err != nil {
		return fmt.Errorf("ResultCode: %w", err)
	}
	*r = ResultCode(n)
	return nil
}

type MetadataItem struct {
	Name  string          `json:"Name"`
	Value json.RawMessage `json:"Value,omitempty"`
}

// CallbackMetadata normalizes Item, which arrives either as a list or as a single object.
type CallbackMetadata struct {
	Items []MetadataItem
}

func (m *CallbackMetadata) UnmarshalJSON(b []byte) error {
	var raw struct {
		Item json.RawMessage `json:"Item"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	item := bytes.TrimSpace(raw.Item)
	switch {
	case len(item) == 0 || string(item) == "null":
		m.Items = nil
	case item[0] == '[':
		return json.Unmarshal(item, &m.Items)
	case item[0] == '{':
		var one MetadataItem
		if err := json.Unmarshal(item, &one); err != nil {
			return err
		}
		m.Items = []MetadataItem{one}
	default:
		return fmt.Errorf("CallbackMetadata.Item: unexpected %q", item)
	}
	return nil
}

func (m CallbackMetadata) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Item []MetadataItem `json:"Item"`
	}{m.Items})
}

func (m *CallbackMetadata) lookup(name string) json.RawMessage {
	if m == nil {
		return nil
	}
	for _, it := range m.Items {
		if it.Name == name {
			return it.Value
		}
	}
	return nil
}

// String returns the named value as text. Numbers keep their literal digits.
func (m *CallbackMetadata) String(name string) string {
	v := m.lookup(name)
	if len(v) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(v))
}

// Int returns the named value rounded to a whole number, or 0.
func (m *CallbackMetadata) Int(name string) int64 {
	f, err := strconv.ParseFloat(m.String(name), 64)
	if err != nil {
		return 0
	}
	return int64(math.Round(f))
}

func (c STKCallback) ReceiptNumber() string { return c.CallbackMetadata.String("MpesaReceiptNumber") }
func (c STKCallback) PaidAmount() int64     { return c.CallbackMetadata.Int("Amount") }
func (c STKCallback) PaidPhone() string     { return c.CallbackMetadata.String("PhoneNumber") }
