package mpesa

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const successBody = `{
  "Body": {
    "stkCallback": {
      "MerchantRequestID": "29115-34620561-1",
      "CheckoutRequestID": "ws_CO_191220191020363925",
      "ResultCode": 0,
      "ResultDesc": "The service request is processed successfully.",
      "CallbackMetadata": {
        "Item": [
          {"Name": "Amount", "Value": 500.00},
          {"Name": "MpesaReceiptNumber", "Value": "NLJ7RT61SV"},
          {"Name": "Balance"},
          {"Name": "TransactionDate", "Value": 20191219102115},
          {"Name": "PhoneNumber", "Value": 254712345678}
        ]
      }
    }
  }
}`

func TestDecodeSuccessCallback(t *testing.T) {
	var env CallbackEnvelope
	require.NoError(t, json.Unmarshal([]byte(successBody), &env))

	cb := env.Body.STKCallback
	assert.True(t, cb.Succeeded())
	assert.Equal(t, "ws_CO_191220191020363925", cb.CheckoutRequestID)
	require.NotNil(t, cb.CallbackMetadata)
	assert.Len(t, cb.CallbackMetadata.Items, 5)
	assert.Equal(t, "NLJ7RT61SV", cb.ReceiptNumber())
	assert.Equal(t, int64(500), cb.PaidAmount())
	assert.Equal(t, "254712345678", cb.PaidPhone())
	assert.Equal(t, "", cb.CallbackMetadata.String("Balance"))
}

func TestDecodeSingleObjectItem(t *testing.T) {
	body := `{"Body":{"stkCallback":{"CheckoutRequestID":"ws_1","ResultCode":"0","ResultDesc":"ok",
	  "CallbackMetadata":{"Item":{"Name":"MpesaReceiptNumber","Value":"QWE123"}}}}}`

	var env CallbackEnvelope
	require.NoError(t, json.Unmarshal([]byte(body), &env))

	cb := env.Body.STKCallback
	assert.True(t, cb.Succeeded())
	require.Len(t, cb.CallbackMetadata.Items, 1)
	assert.Equal(t, "QWE123", cb.ReceiptNumber())
	assert.Zero(t, cb.PaidAmount())
}

func TestDecodeFailureCallback(t *testing.T) {
	body := `{"Body":{"stkCallback":{"MerchantRequestID":"m","CheckoutRequestID":"ws_2",
	  "ResultCode":1032,"ResultDesc":"Request cancelled by user"}}}`

	var env CallbackEnvelope
	require.NoError(t, json.Unmarshal([]byte(body), &env))

	cb := env.Body.STKCallback
	assert.False(t, cb.Succeeded())
	assert.Equal(t, ResultCode(1032), cb.ResultCode)
	assert.Nil(t, cb.CallbackMetadata)
	assert.Empty(t, cb.ReceiptNumber())
}

func TestMissingResultCodeIsNotSuccess(t *testing.T) {
	var env CallbackEnvelope
	require.NoError(t, json.Unmarshal([]byte(`{"Body":{"stkCallback":{"CheckoutRequestID":"ws_3"}}}`), &env))
	assert.False(t, env.Body.STKCallback.Succeeded())
}

func TestMetadataRoundTripsAsList(t *testing.T) {
	m := CallbackMetadata{Items: []MetadataItem{{Name: "Amount", Value: json.RawMessage(`1`)}}}
	b, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Item":[{"Name":"Amount","Value":1}]}`, string(b))
}
