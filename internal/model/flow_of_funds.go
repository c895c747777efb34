package model

// Amount is a currency-tagged number of minor units.
type Amount struct {
	Currency string `json:"currency"`
	Cents    int64  `json:"cents"`
}

// FlowOfFunds describes how money moved for one transaction event: what the
// buyer's issuer moved, what settled in the processor account, the platform's
// share and, for connected accounts, what reached the seller's merchant account.
type FlowOfFunds struct {
	IssuedAmount               Amount  `json:"issued_amount"`
	SettledAmount              Amount  `json:"settled_amount"`
	GumroadAmount              Amount  `json:"gumroad_amount"`
	MerchantAccountGrossAmount *Amount `json:"merchant_account_gross_amount,omitempty"`
	MerchantAccountNetAmount   *Amount `json:"merchant_account_net_amount,omitempty"`
}
