package ofx

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/tally/internal/model"
)

const sampleBankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240301090000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>021000021
<ACCTID>9876543210
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240201000000[0:GMT]
<DTEND>20240229000000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240203120000[0:GMT]
<TRNAMT>-200.00
<FITID>20240203-1
<NAME>POS PURCHASE CORNER GROCERY
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240215120000[0:GMT]
<TRNAMT>250.00
<FITID>20240215-1
<NAME>DEPOSIT
<MEMO>ACME PAYROLL
</STMTTRN>
<STMTTRN>
<TRNTYPE>CHECK
<DTPOSTED>20240220120000[0:GMT]
<TRNAMT>-12.5
<FITID>20240220-1
<CHECKNUM>301
<NAME>CHECK #301
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1037.50
<DTASOF>20240229000000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

const sampleCreditCardOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240301090000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>USD
<CCACCTFROM>
<ACCTID>4000123412341234
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20240201000000[0:GMT]
<DTEND>20240229000000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240210120000[0:GMT]
<TRNAMT>-30.00
<FITID>CC-0210
<NAME>CINEMA CITY
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-30.00
<DTASOF>20240229000000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func TestParseFile(t *testing.T) {
	tests := []struct {
		name          string
		ofxData       string
		expectedCount int
		expectedError bool
	}{
		{name: "valid bank statement", ofxData: sampleBankOFX, expectedCount: 3},
		{name: "valid credit card statement", ofxData: sampleCreditCardOFX, expectedCount: 1},
		{name: "invalid OFX data", ofxData: "not valid OFX", expectedError: true},
		{name: "empty OFX", ofxData: "", expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := NewParser().ParseFile(context.Background(), strings.NewReader(tt.ofxData))
			if tt.expectedError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, entries, tt.expectedCount)
		})
	}
}

func TestParseBankEntries(t *testing.T) {
	entries, err := NewParser().ParseFile(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	require.Len(t, entries, 3)

	grocery := entries[0]
	assert.Equal(t, "20240203-1", grocery.FITID)
	assert.Equal(t, "CORNER GROCERY", grocery.Description)
	assert.Equal(t, model.KindExpense, grocery.Kind)
	assert.Equal(t, "200.00", grocery.Amount.String())
	assert.Equal(t, "9876543210", grocery.SourceAccount)
	assert.Equal(t, "DEBIT", grocery.Type)
	assert.Equal(t, time.Date(2024, time.February, 3, 0, 0, 0, 0, time.UTC), grocery.Date)

	pay := entries[1]
	assert.Equal(t, model.KindIncome, pay.Kind)
	assert.Equal(t, "250.00", pay.Amount.String())
	assert.Equal(t, "ACME PAYROLL", pay.Description, "generic NAME falls back to MEMO")

	check := entries[2]
	assert.Equal(t, "12.50", check.Amount.String())
	assert.Equal(t, "CHECK", check.Type)
}

func TestParseCreditCardEntries(t *testing.T) {
	entries, err := NewParser().ParseFile(context.Background(), strings.NewReader(sampleCreditCardOFX))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.Equal(t, "CC-0210", entries[0].FITID)
	assert.Equal(t, "CINEMA CITY", entries[0].Description)
	assert.Equal(t, model.KindExpense, entries[0].Kind)
	assert.Equal(t, "30.00", entries[0].Amount.String())
	assert.Equal(t, "4000123412341234", entries[0].SourceAccount)
}

func TestExtractMerchantName(t *testing.T) {
	parser := NewParser()

	tests := []struct {
		name     string
		tx       ofxgo.Transaction
		expected string
	}{
		{
			name:     "remove POS prefix",
			tx:       ofxgo.Transaction{Name: "POS PURCHASE BAKERY"},
			expected: "BAKERY",
		},
		{
			name:     "remove leading date",
			tx:       ofxgo.Transaction{Name: "CHECK CARD 02/14 FLORIST"},
			expected: "FLORIST",
		},
		{
			name:     "payee wins",
			tx:       ofxgo.Transaction{Name: "ACH DEBIT 1234", Payee: &ofxgo.Payee{Name: "City Water"}},
			expected: "City Water",
		},
		{
			name:     "trim whitespace",
			tx:       ofxgo.Transaction{Name: "  BOOKSHOP  "},
			expected: "BOOKSHOP",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parser.extractMerchantName(tt.tx))
		})
	}
}

func TestGetAccounts(t *testing.T) {
	parser := NewParser()

	accounts, err := parser.GetAccounts(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	assert.Equal(t, []string{"9876543210"}, accounts)

	accounts, err = parser.GetAccounts(context.Background(), strings.NewReader(sampleCreditCardOFX))
	require.NoError(t, err)
	assert.Equal(t, []string{"4000123412341234"}, accounts)
}
