package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordID_AcceptsStringAndNumber(t *testing.T) {
	var tx UnmatchedTransaction
	require.NoError(t, json.Unmarshal([]byte(`{"id":"trx-9","amount":12.5}`), &tx))
	assert.Equal(t, RecordID("trx-9"), tx.ID)
	assert.Equal(t, "12.5", tx.Amount.String())

	var entry UnmatchedBankEntry
	require.NoError(t, json.Unmarshal([]byte(`{"id":42,"amount":"7.10","bankName":"BCA"}`), &entry))
	assert.Equal(t, RecordID("42"), entry.ID)
	assert.Equal(t, "7.1", entry.Amount.String())
}

func TestRecordID_RejectsObjects(t *testing.T) {
	var id RecordID
	assert.Error(t, json.Unmarshal([]byte(`{"x":1}`), &id))
}

func TestDetailRecordCategories(t *testing.T) {
	var records []DetailRecord = []DetailRecord{UnmatchedTransaction{ID: "a"}, UnmatchedBankEntry{ID: "1"}}
	assert.Equal(t, CategoryTransaction, records[0].Category())
	assert.Equal(t, CategoryBank, records[1].Category())
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory(" Bank ")
	require.NoError(t, err)
	assert.Equal(t, CategoryBank, c)

	c, err = ParseCategory("transactions")
	require.NoError(t, err)
	assert.Equal(t, CategoryTransaction, c)

	_, err = ParseCategory("ledger")
	assert.Error(t, err)
}

func TestTaskRequest_OmitsAbsentDates(t *testing.T) {
	b, err := json.Marshal(TaskRequest{TaskID: "t1", BankName: "BCA"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"taskID":"t1","bankName":"BCA"}`, string(b))
}

func TestBundleExpired(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	assert.False(t, UploadEndpointBundle{}.Expired(now))
	assert.False(t, UploadEndpointBundle{ExpiresAt: now.Add(time.Minute)}.Expired(now))
	assert.True(t, UploadEndpointBundle{ExpiresAt: now}.Expired(now))
}

func TestTypedErrorsMatchSentinels(t *testing.T) {
	assert.True(t, errors.Is(&UploadFailedError{StatusCode: 500, Body: "boom"}, ErrUploadFailed))
	assert.True(t, errors.Is(&SubmissionFailedError{Reason: "x"}, ErrSubmissionFailed))
	assert.True(t, errors.Is(&LoadError{Message: "x"}, ErrLoad))
	assert.True(t, errors.Is(ValidationError("bank name required"), ErrValidation))

	cause := errors.New("502 bad gateway")
	unavailable := &EndpointUnavailableError{Err: cause}
	assert.True(t, errors.Is(unavailable, ErrEndpointUnavailable))
	assert.True(t, errors.Is(unavailable, cause))
	assert.Equal(t, "upload endpoints unavailable: 502 bad gateway", unavailable.Error())

	assert.Equal(t, "upload failed with status: 403 - denied", (&UploadFailedError{StatusCode: 403, Body: "denied"}).Error())
}
